package display

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{a, b, c, d, -(a*m[4] + c*m[5]), -(b*m[4] + d*m[5])}
}

func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// scrollAnim holds an in-flight pan tween for one axis pair.
type scrollAnim struct {
	tweenX, tweenY *gween.Tween
	doneX, doneY   bool
}

// Camera controls the view into the pane tree: pan position, zoom, and the
// screen-space viewport it renders into. It has no notion of panes itself
// — Backend.Refresh is responsible for walking the tree and applying the
// camera's view matrix to whatever it draws.
type Camera struct {
	X, Y     float64
	Zoom     float64
	Viewport Rect

	BoundsEnabled bool
	Bounds        Rect

	viewMatrix    [6]float64
	invViewMatrix [6]float64
	dirty         bool

	scroll *scrollAnim
}

// NewCamera returns a 1:1 camera over viewport.
func NewCamera(viewport Rect) *Camera {
	return &Camera{Zoom: 1, Viewport: viewport, dirty: true}
}

// ScrollTo animates the camera's pan to (x, y) over duration seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	c.scroll = &scrollAnim{
		tweenX: gween.New(float32(c.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(c.Y), float32(y), duration, easeFn),
	}
}

// SetBounds enables clamping of the camera's pan to bounds.
func (c *Camera) SetBounds(bounds Rect) {
	c.BoundsEnabled = true
	c.Bounds = bounds
}

// Update advances any in-flight scroll tween and bounds clamping by dt
// seconds. Backend.Refresh calls this once per repaint.
func (c *Camera) Update(dt float32) {
	if c.scroll != nil {
		if !c.scroll.doneX {
			v, done := c.scroll.tweenX.Update(dt)
			c.X, c.scroll.doneX = float64(v), done
		}
		if !c.scroll.doneY {
			v, done := c.scroll.tweenY.Update(dt)
			c.Y, c.scroll.doneY = float64(v), done
		}
		if c.scroll.doneX && c.scroll.doneY {
			c.scroll = nil
		}
		c.dirty = true
	}
	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

func (c *Camera) clampToBounds() {
	halfW := c.Viewport.Width / (2 * c.Zoom)
	halfH := c.Viewport.Height / (2 * c.Zoom)
	minX, maxX := c.Bounds.X+halfW, c.Bounds.X+c.Bounds.Width-halfW
	minY, maxY := c.Bounds.Y+halfH, c.Bounds.Y+c.Bounds.Height-halfH
	if minX > maxX {
		c.X = c.Bounds.X + c.Bounds.Width/2
	} else {
		c.X = math.Max(minX, math.Min(c.X, maxX))
	}
	if minY > maxY {
		c.Y = c.Bounds.Y + c.Bounds.Height/2
	} else {
		c.Y = math.Max(minY, math.Min(c.Y, maxY))
	}
}

// viewMatrixOf returns the cached view matrix, recomputing it if dirty.
func (c *Camera) viewMatrixOf() [6]float64 {
	if !c.dirty {
		return c.viewMatrix
	}
	c.dirty = false
	cx := c.Viewport.X + c.Viewport.Width/2
	cy := c.Viewport.Y + c.Viewport.Height/2
	z := c.Zoom
	c.viewMatrix = [6]float64{z, 0, 0, z, cx - z*c.X, cy - z*c.Y}
	c.invViewMatrix = invertAffine(c.viewMatrix)
	return c.viewMatrix
}

// WorldToScreen converts a pane-tree coordinate to a screen coordinate.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return transformPoint(c.viewMatrixOf(), wx, wy)
}
