// Command panedemo wires an Editor to an Ebitengine window so the pane
// tree, damage scheduler, and dispatch chain can be watched running live
// instead of only through tests. It registers a few sibling panes at
// different Z layers, resizes the root to track the window, and logs a
// dispatch backtrace when "b" is pressed.
package main

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/brindlecode/panekit"
	"github.com/brindlecode/panekit/display"
)

const (
	windowW = 960
	windowH = 600
)

// game implements ebiten.Game by delegating to an Editor and its display
// Backend, the same shell shape the teacher used around its own Scene.
type game struct {
	ed      *panekit.Editor
	backend *display.Backend
}

func newGame() *game {
	ed := panekit.NewEditor()
	backend := display.NewBackend(windowW, windowH)
	ed.SetDisplay(backend)

	root := ed.Root()
	root.Resize(0, 0, windowW, windowH)

	layout := panekit.NewCommand("layout-pane", func(c *panekit.Call) panekit.Result {
		return panekit.Efallthrough
	}, false)

	left := panekit.NewPane(ed, layout.Ref(), nil)
	root.Register(left)
	left.Resize(40, 40, 380, 520)

	right := panekit.NewPane(ed, layout.Ref(), nil)
	root.Register(right)
	right.Resize(460, 40, 460, 240)

	overlay := panekit.NewPane(ed, layout.Ref(), nil)
	overlay.Z = 1
	root.Register(overlay)
	overlay.Resize(500, 320, 340, 120)

	ed.GlobalKeymap().Add("Chr-b", panekit.NewCommand("dump-backtrace", func(c *panekit.Call) panekit.Result {
		log.Printf("backtrace: %v", ed.Backtrace())
		return 1
	}, false))

	return &game{ed: ed, backend: backend}
}

func (g *game) Update() error {
	for _, r := range ebiten.AppendInputChars(nil) {
		if r == 'b' {
			g.ed.Handle(&panekit.Call{Key: "Chr-b", Home: g.ed.Root()})
		}
	}
	g.ed.RunRefresh()
	g.ed.FreeClosed()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.backend.Image(), nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := g.backend.Size()
	if outsideWidth != w || outsideHeight != h {
		g.backend.Resize(outsideWidth, outsideHeight)
		g.ed.Root().Resize(0, 0, outsideWidth, outsideHeight)
	}
	return g.backend.Size()
}

func main() {
	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowTitle("panekit demo")
	if err := ebiten.RunGame(newGame()); err != nil {
		log.Fatal(err)
	}
}
