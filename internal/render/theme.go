package render

import (
	"image/color"

	"github.com/park285/chess-session-client/internal/session"
)

// Theme is the palette for one display mode.
type Theme struct {
	Light      color.RGBA
	Dark       color.RGBA
	Selection  color.NRGBA
	LastMove   color.NRGBA
	Coordinate color.NRGBA
}

var themes = map[session.DisplayMode]Theme{
	session.DisplayClassic: {
		Light:      color.RGBA{233, 207, 163, 255},
		Dark:       color.RGBA{187, 136, 96, 255},
		Selection:  color.NRGBA{R: 255, G: 228, B: 120, A: 140},
		LastMove:   color.NRGBA{R: 148, G: 207, B: 255, A: 170},
		Coordinate: color.NRGBA{R: 8, G: 214, B: 120, A: 255},
	},
	session.DisplayGreen: {
		Light:      color.RGBA{238, 238, 210, 255},
		Dark:       color.RGBA{118, 150, 86, 255},
		Selection:  color.NRGBA{R: 246, G: 246, B: 105, A: 150},
		LastMove:   color.NRGBA{R: 255, G: 170, B: 0, A: 160},
		Coordinate: color.NRGBA{R: 236, G: 239, B: 255, A: 255},
	},
	session.DisplayMono: {
		Light:      color.RGBA{220, 220, 220, 255},
		Dark:       color.RGBA{120, 120, 120, 255},
		Selection:  color.NRGBA{R: 182, G: 184, B: 190, A: 130},
		LastMove:   color.NRGBA{R: 40, G: 40, B: 40, A: 140},
		Coordinate: color.NRGBA{R: 204, G: 210, B: 236, A: 255},
	},
}

// ThemeFor returns the palette of mode, defaulting to classic.
func ThemeFor(mode session.DisplayMode) Theme {
	if t, ok := themes[mode]; ok {
		return t
	}
	return themes[session.DisplayClassic]
}
