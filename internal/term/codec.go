package term

import "github.com/woxQAQ/termwire/pkg/wire"

// Palette is the color resolution surface the cell codec needs: the 256
// entry palette plus the terminal's dynamic default colors. Engine satisfies
// it.
type Palette interface {
	PaletteColor(index uint8) RGB
	DefaultForeground() (RGB, bool)
	DefaultBackground() (RGB, bool)
}

// resolveCell converts one logical cell and its resolved style into the flat
// wire representation. Pure function of its inputs; safe to call for
// different cells of one read as long as the engine is not mutated
// concurrently.
func resolveCell(c Cell, st Style, p Palette) wire.Cell {
	fg := resolveForeground(st.Fg, p)
	bg := resolveBackground(c.Background, st.Bg, p)

	return wire.Cell{
		Codepoint: c.Codepoint,
		FgR:       fg.R, FgG: fg.G, FgB: fg.B,
		BgR: bg.R, BgG: bg.G, BgB: bg.B,
		Flags: packFlags(st),
		Width: c.Width,
	}
}

// resolveForeground applies the foreground cascade: palette index, explicit
// RGB, configured dynamic foreground, fixed fallback. First match wins.
func resolveForeground(c Color, p Palette) RGB {
	switch c.Kind {
	case ColorPalette:
		return p.PaletteColor(c.Index)
	case ColorRGB:
		return c.RGB
	}
	if rgb, ok := p.DefaultForeground(); ok {
		return rgb
	}
	return FallbackForeground
}

// resolveBackground applies the background cascade: cell-level override
// (itself palette-resolvable), style background, configured dynamic
// background, fixed fallback.
func resolveBackground(override, styleBg Color, p Palette) RGB {
	if rgb, ok := resolveDirect(override, p); ok {
		return rgb
	}
	if rgb, ok := resolveDirect(styleBg, p); ok {
		return rgb
	}
	if rgb, ok := p.DefaultBackground(); ok {
		return rgb
	}
	return FallbackBackground
}

// resolveDirect resolves a color that does not fall through to terminal
// defaults. Reports false for ColorNone.
func resolveDirect(c Color, p Palette) (RGB, bool) {
	switch c.Kind {
	case ColorPalette:
		return p.PaletteColor(c.Index), true
	case ColorRGB:
		return c.RGB, true
	}
	return RGB{}, false
}

// packFlags packs the style attributes into the wire flag byte, bit for bit.
func packFlags(st Style) uint8 {
	var f uint8
	if st.Bold {
		f |= wire.FlagBold
	}
	if st.Italic {
		f |= wire.FlagItalic
	}
	if st.Underline {
		f |= wire.FlagUnderline
	}
	if st.Strikethrough {
		f |= wire.FlagStrikethrough
	}
	if st.Inverse {
		f |= wire.FlagInverse
	}
	if st.Invisible {
		f |= wire.FlagInvisible
	}
	if st.Blink {
		f |= wire.FlagBlink
	}
	if st.Faint {
		f |= wire.FlagFaint
	}
	return f
}
