package display

import (
	"testing"

	"github.com/brindlecode/panekit"
)

func TestBackendSizeMatchesViewport(t *testing.T) {
	b := NewBackend(320, 240)
	w, h := b.Size()
	if w != 320 || h != 240 {
		t.Errorf("Size() = (%d,%d), want (320,240)", w, h)
	}
}

func TestOrderedByAbsZ(t *testing.T) {
	ed := panekit.NewEditor()
	root := ed.Root()
	root.Resize(0, 0, 100, 100)

	a := panekit.NewPane(ed, panekit.NewCommand("a", nil, false), nil)
	b := panekit.NewPane(ed, panekit.NewCommand("b", nil, false), nil)
	root.Register(a)
	root.Register(b)
	a.AbsZ, b.AbsZ = 5, 1

	got := orderedByAbsZ(root.Children())
	if len(got) != 2 || got[0] != b || got[1] != a {
		t.Errorf("orderedByAbsZ did not sort ascending by AbsZ")
	}
}
