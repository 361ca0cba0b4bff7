// Package display implements panekit.Display by drawing a pane tree as
// nested rectangles with Ebitengine, animating damage with gween tweens.
// It is an application-level collaborator, not part of the kernel: the
// kernel's Non-goals exclude character rendering, so everything here is
// additive and optional — an Editor works fully headless without it.
package display

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color is an RGBA color with components in [0, 1], not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is fully opaque white.
var ColorWhite = Color{1, 1, 1, 1}

func (c Color) toRGBA() (r, g, b, a float64) { return c.R, c.G, c.B, c.A }

// lerpColor returns the color a fraction t of the way from a to b.
func lerpColor(a, b Color, t float64) Color {
	return Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}

// Rect is an axis-aligned rectangle in screen space, origin top-left.
type Rect struct {
	X, Y, Width, Height float64
}

// Intersects reports whether r and other overlap, including shared edges.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// whitePixel is a 1x1 white image used as the base texture for every pane
// rectangle; color and alpha are applied via DrawImage's ColorScale.
var whitePixel *ebiten.Image

func init() {
	whitePixel = ebiten.NewImage(1, 1)
	whitePixel.Fill(color.White)
}
