package display

import "testing"

func TestCameraWorldToScreenIdentity(t *testing.T) {
	c := NewCamera(Rect{Width: 100, Height: 100})
	sx, sy := c.WorldToScreen(0, 0)
	if sx != 50 || sy != 50 {
		t.Errorf("WorldToScreen(0,0) = (%v,%v), want viewport center (50,50)", sx, sy)
	}
}

func TestCameraZoom(t *testing.T) {
	c := NewCamera(Rect{Width: 100, Height: 100})
	c.Zoom = 2
	c.dirty = true
	sx, _ := c.WorldToScreen(10, 0)
	if sx != 70 {
		t.Errorf("WorldToScreen(10,0) at zoom 2 = %v, want 70", sx)
	}
}

func TestCameraBoundsClamp(t *testing.T) {
	c := NewCamera(Rect{Width: 100, Height: 100})
	c.SetBounds(Rect{X: 0, Y: 0, Width: 100, Height: 100})
	c.X, c.Y = 1000, 1000
	c.Update(0)
	if c.X > 100 || c.Y > 100 {
		t.Errorf("camera position (%v,%v) not clamped to bounds", c.X, c.Y)
	}
}
