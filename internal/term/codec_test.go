package term

import (
	"testing"

	"github.com/woxQAQ/termwire/pkg/wire"
)

// fakePalette scripts the three resolution surfaces independently of an
// engine instance.
type fakePalette struct {
	entries map[uint8]RGB
	fg, bg  *RGB
}

func (p *fakePalette) PaletteColor(i uint8) RGB { return p.entries[i] }
func (p *fakePalette) DefaultForeground() (RGB, bool) {
	if p.fg == nil {
		return RGB{}, false
	}
	return *p.fg, true
}
func (p *fakePalette) DefaultBackground() (RGB, bool) {
	if p.bg == nil {
		return RGB{}, false
	}
	return *p.bg, true
}

func TestResolveForeground_Cascade(t *testing.T) {
	red := RGB{205, 49, 49}
	dynamic := RGB{0x10, 0x20, 0x30}

	tests := map[string]struct {
		color Color
		pal   fakePalette
		want  RGB
	}{
		"palette index wins": {
			color: PaletteColor(1),
			pal:   fakePalette{entries: map[uint8]RGB{1: red}, fg: &dynamic},
			want:  red,
		},
		"explicit rgb wins": {
			color: RGBColor(9, 8, 7),
			pal:   fakePalette{fg: &dynamic},
			want:  RGB{9, 8, 7},
		},
		"none uses dynamic foreground": {
			color: Color{},
			pal:   fakePalette{fg: &dynamic},
			want:  dynamic,
		},
		"none without dynamic uses fallback": {
			color: Color{},
			pal:   fakePalette{},
			want:  FallbackForeground,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := resolveForeground(tt.color, &tt.pal); got != tt.want {
				t.Errorf("resolveForeground = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveBackground_Cascade(t *testing.T) {
	blue := RGB{49, 49, 205}
	dynamic := RGB{0x40, 0x50, 0x60}

	tests := map[string]struct {
		override Color
		styleBg  Color
		pal      fakePalette
		want     RGB
	}{
		"cell override wins and resolves via palette": {
			override: PaletteColor(4),
			styleBg:  RGBColor(1, 1, 1),
			pal:      fakePalette{entries: map[uint8]RGB{4: blue}, bg: &dynamic},
			want:     blue,
		},
		"style background next": {
			styleBg: RGBColor(7, 7, 7),
			pal:     fakePalette{bg: &dynamic},
			want:    RGB{7, 7, 7},
		},
		"dynamic background next": {
			pal:  fakePalette{bg: &dynamic},
			want: dynamic,
		},
		"fallback last": {
			pal:  fakePalette{},
			want: FallbackBackground,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := resolveBackground(tt.override, tt.styleBg, &tt.pal); got != tt.want {
				t.Errorf("resolveBackground = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPackFlags_BitForBit(t *testing.T) {
	tests := map[string]struct {
		style Style
		want  uint8
	}{
		"bold":          {Style{Bold: true}, wire.FlagBold},
		"italic":        {Style{Italic: true}, wire.FlagItalic},
		"underline":     {Style{Underline: true}, wire.FlagUnderline},
		"strikethrough": {Style{Strikethrough: true}, wire.FlagStrikethrough},
		"inverse":       {Style{Inverse: true}, wire.FlagInverse},
		"invisible":     {Style{Invisible: true}, wire.FlagInvisible},
		"blink":         {Style{Blink: true}, wire.FlagBlink},
		"faint":         {Style{Faint: true}, wire.FlagFaint},
		"none":          {Style{}, 0},
		"combined": {
			Style{Bold: true, Underline: true, Faint: true},
			wire.FlagBold | wire.FlagUnderline | wire.FlagFaint,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := packFlags(tt.style); got != tt.want {
				t.Errorf("packFlags = %08b, want %08b", got, tt.want)
			}
		})
	}
}

func TestResolveCell(t *testing.T) {
	pal := &fakePalette{entries: map[uint8]RGB{1: {205, 49, 49}}}

	got := resolveCell(
		Cell{Codepoint: 'R', Width: WidthNormal},
		Style{Fg: PaletteColor(1), Bold: true},
		pal,
	)

	want := wire.Cell{
		Codepoint: 'R',
		FgR:       205, FgG: 49, FgB: 49,
		BgR: FallbackBackground.R, BgG: FallbackBackground.G, BgB: FallbackBackground.B,
		Flags: wire.FlagBold,
		Width: wire.WidthNormal,
	}
	if got != want {
		t.Errorf("resolveCell = %+v, want %+v", got, want)
	}
}

func TestResolveCell_EmptyCell(t *testing.T) {
	got := resolveCell(Cell{}, Style{}, &fakePalette{})

	if got.Codepoint != 0 {
		t.Errorf("empty cell codepoint = %d, want 0", got.Codepoint)
	}
	if got.FgR != FallbackForeground.R || got.BgB != FallbackBackground.B {
		t.Error("empty cell should carry resolved default colors")
	}
}

func TestResolveCell_WidthPassthrough(t *testing.T) {
	pal := &fakePalette{}
	for _, w := range []uint8{WidthZero, WidthNormal, WidthWide} {
		got := resolveCell(Cell{Codepoint: 'x', Width: w}, Style{}, pal)
		if got.Width != w {
			t.Errorf("width %d not copied verbatim, got %d", w, got.Width)
		}
	}
}
