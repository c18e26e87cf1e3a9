package engine

import (
	"testing"

	"github.com/woxQAQ/termwire/internal/term"
)

func TestPaletteRGB(t *testing.T) {
	tests := map[string]struct {
		index uint8
		want  term.RGB
	}{
		"ansi black":      {0, term.RGB{R: 0, G: 0, B: 0}},
		"ansi red":        {1, term.RGB{R: 205, G: 49, B: 49}},
		"ansi bright red": {9, term.RGB{R: 241, G: 76, B: 76}},
		"cube origin":     {16, term.RGB{R: 0, G: 0, B: 0}},
		"cube pure blue":  {21, term.RGB{R: 0, G: 0, B: 255}},
		"cube pure red":   {196, term.RGB{R: 255, G: 0, B: 0}},
		"cube mid":        {110, term.RGB{R: 135, G: 175, B: 215}},
		"cube white":      {231, term.RGB{R: 255, G: 255, B: 255}},
		"gray darkest":    {232, term.RGB{R: 8, G: 8, B: 8}},
		"gray lightest":   {255, term.RGB{R: 238, G: 238, B: 238}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := paletteRGB(tt.index); got != tt.want {
				t.Errorf("paletteRGB(%d) = %+v, want %+v", tt.index, got, tt.want)
			}
		})
	}
}

func TestPaletteRGB_RedDominance(t *testing.T) {
	// The resolution cascade relies on the red slots actually being red.
	for _, index := range []uint8{1, 9, 196} {
		rgb := paletteRGB(index)
		if rgb.R <= rgb.G || rgb.R <= rgb.B {
			t.Errorf("palette %d = %+v is not red dominant", index, rgb)
		}
	}
}
