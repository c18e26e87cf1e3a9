package engine

import "github.com/woxQAQ/termwire/internal/term"

// ansi16 maps ANSI colors 0-15 to the RGB values most terminals ship with.
var ansi16 = [16][3]uint8{
	{0, 0, 0},       // 0: Black
	{205, 49, 49},   // 1: Red
	{13, 188, 121},  // 2: Green
	{229, 229, 16},  // 3: Yellow
	{36, 114, 200},  // 4: Blue
	{188, 63, 188},  // 5: Magenta
	{17, 168, 205},  // 6: Cyan
	{229, 229, 229}, // 7: White
	{102, 102, 102}, // 8: Bright Black (Gray)
	{241, 76, 76},   // 9: Bright Red
	{35, 209, 139},  // 10: Bright Green
	{245, 245, 67},  // 11: Bright Yellow
	{59, 142, 234},  // 12: Bright Blue
	{214, 112, 214}, // 13: Bright Magenta
	{41, 184, 219},  // 14: Bright Cyan
	{255, 255, 255}, // 15: Bright White
}

// paletteRGB resolves one index of the 256-entry palette: the 16 ANSI
// colors, the 6x6x6 color cube (16-231), and the grayscale ramp (232-255).
func paletteRGB(index uint8) term.RGB {
	switch {
	case index < 16:
		rgb := ansi16[index]
		return term.RGB{R: rgb[0], G: rgb[1], B: rgb[2]}
	case index < 232:
		// index = 16 + 36r + 6g + b with r,g,b in 0-5
		idx := index - 16
		return term.RGB{
			R: cubeChannel(idx / 36),
			G: cubeChannel((idx % 36) / 6),
			B: cubeChannel(idx % 6),
		}
	default:
		// 24 shades from dark to light gray
		gray := 8 + (index-232)*10
		return term.RGB{R: gray, G: gray, B: gray}
	}
}

// cubeChannel converts a cube coordinate 0-5 to its channel value:
// 0, 95, 135, 175, 215, 255.
func cubeChannel(v uint8) uint8 {
	if v == 0 {
		return 0
	}
	return 55 + v*40
}
