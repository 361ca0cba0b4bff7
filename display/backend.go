package display

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/brindlecode/panekit"
)

// flashDuration is how long a pane's fill glows after it is repainted,
// purely as a visual aid for watching the damage scheduler work.
const flashDuration = float32(0.25)

// flashState tracks one pane's damage-flash tween, keyed by pane identity.
type flashState struct {
	tween *gween.Tween
	value float32
}

// Backend implements panekit.Display by rendering every visible pane as a
// flat rectangle, nested by AbsZ order, through an Ebitengine image. It
// never touches pane content — text storage and character rendering are
// Non-goals of the kernel this backend sits on top of — so panes paint as
// plain colored boxes whose fill flashes briefly whenever the damage
// scheduler marks them DamageContent.
type Backend struct {
	Camera *Camera

	screen *ebiten.Image
	lastW  int
	lastH  int

	flashes  map[*panekit.Pane]*flashState
	lastTick time.Time
}

// NewBackend returns a Backend with a default 1:1 camera over a w×h
// viewport.
func NewBackend(w, h int) *Backend {
	return &Backend{
		Camera:   NewCamera(Rect{Width: float64(w), Height: float64(h)}),
		flashes:  make(map[*panekit.Pane]*flashState),
		lastTick: time.Time{},
	}
}

// Size reports the backend's current viewport in pane-geometry units.
func (b *Backend) Size() (int, int) {
	return int(b.Camera.Viewport.Width), int(b.Camera.Viewport.Height)
}

// Resize changes the backend's viewport, e.g. in response to a host window
// resize; it does not itself resize any pane — callers are expected to
// also call root.Resize.
func (b *Backend) Resize(w, h int) {
	b.Camera.Viewport.Width, b.Camera.Viewport.Height = float64(w), float64(h)
	b.Camera.dirty = true
}

// Refresh implements panekit.Display. It is called once per event-loop
// iteration after the damage scheduler finishes; it updates the camera and
// every in-flight flash tween, then draws the tree into an internal image
// retrievable via Image.
func (b *Backend) Refresh(root *panekit.Pane) {
	dt := b.tickSeconds()
	b.Camera.Update(dt)

	w, h := b.Size()
	if b.screen == nil || b.lastW != w || b.lastH != h {
		b.screen = ebiten.NewImage(w, h)
		b.lastW, b.lastH = w, h
	}
	b.screen.Fill(color.Black)

	b.stepFlashes(root, dt)
	b.draw(root, 0, 0, ColorWhite)
}

// Image returns the most recently rendered frame.
func (b *Backend) Image() *ebiten.Image { return b.screen }

func (b *Backend) tickSeconds() float32 {
	now := time.Now()
	if b.lastTick.IsZero() {
		b.lastTick = now
		return 0
	}
	dt := now.Sub(b.lastTick).Seconds()
	b.lastTick = now
	return float32(dt)
}

// stepFlashes starts a new flash tween for any pane freshly marked
// DamageContent and advances every tween already in flight, pruning
// finished or closed entries.
func (b *Backend) stepFlashes(p *panekit.Pane, dt float32) {
	if p.Damage()&panekit.DamageContent != 0 {
		if _, ok := b.flashes[p]; !ok {
			b.flashes[p] = &flashState{tween: gween.New(1, 0, flashDuration, ease.OutQuad)}
		}
	}
	if fs, ok := b.flashes[p]; ok {
		v, done := fs.tween.Update(dt)
		fs.value = v
		if done || p.Closed() {
			delete(b.flashes, p)
		}
	}
	for _, c := range p.Children() {
		b.stepFlashes(c, dt)
	}
}

// draw paints p and its children, in AbsZ order, offset by (originX,
// originY) — the pane-tree position of p's own origin. inherited is the
// parent's color; it is passed on to the children but does not change the
// color p is drawn in.
func (b *Backend) draw(p *panekit.Pane, originX, originY float64, inherited Color) {
	if p.Closed() {
		return
	}

	sx, sy := b.Camera.WorldToScreen(originX, originY)
	ex, ey := b.Camera.WorldToScreen(originX+float64(p.W), originY+float64(p.H))
	w, h := ex-sx, ey-sy

	paneColor := paneBaseColor(p)
	if fs, ok := b.flashes[p]; ok {
		paneColor = lerpColor(paneColor, Color{R: 1, G: 1, B: 1, A: paneColor.A}, float64(fs.value))
	}

	if w > 0 && h > 0 {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(w, h)
		op.GeoM.Translate(sx, sy)
		op.ColorScale.Scale(
			float32(paneColor.R),
			float32(paneColor.G),
			float32(paneColor.B),
			float32(paneColor.A),
		)
		b.screen.DrawImage(whitePixel, op)
	}

	for _, c := range orderedByAbsZ(p.Children()) {
		b.draw(c, originX+float64(c.X), originY+float64(c.Y), paneColor)
	}
}

// paneBaseColor derives a stable, distinguishing color from a pane's
// stacking order so adjacent panes in a demo are visually separable
// without the kernel needing to expose any styling concept of its own.
func paneBaseColor(p *panekit.Pane) Color {
	shade := 0.15 + 0.05*float64(p.AbsZ%6)
	return Color{R: shade, G: shade + 0.05, B: shade + 0.1, A: 1}
}

// orderedByAbsZ returns children sorted by AbsZ ascending, so overlays
// painted later sit visually on top.
func orderedByAbsZ(children []*panekit.Pane) []*panekit.Pane {
	out := append([]*panekit.Pane(nil), children...)
	for i := 1; i < len(out); i++ {
		j := i
		for j > 0 && out[j-1].AbsZ > out[j].AbsZ {
			out[j-1], out[j] = out[j], out[j-1]
			j--
		}
	}
	return out
}
