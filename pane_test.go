package panekit

import "testing"

func newChildPane(ed *Editor, name string) *Pane {
	return NewPane(ed, newTestCommand(name), nil)
}

func TestRegisterOrdersByZ(t *testing.T) {
	ed := NewEditor()
	root := ed.Root()
	a := newChildPane(ed, "a")
	b := newChildPane(ed, "b")
	b.Z = -1
	root.Register(a)
	root.Register(b)

	kids := root.Children()
	if len(kids) != 2 || kids[0] != b || kids[1] != a {
		t.Errorf("Children() = %v, want [b(z=-1) a(z=0)]", kids)
	}
}

func TestRegisterVeto(t *testing.T) {
	ed := NewEditor()
	root := ed.Root()
	vetoCmd := NewCommand("veto", func(c *Call) Result {
		if c.Key == "Notify:ChildRegistered" {
			return Efail
		}
		return Efallthrough
	}, false)
	root.SetHandler(vetoCmd)

	child := NewPane(ed, newTestCommand("child"), nil)
	if root.Register(child) {
		t.Errorf("Register succeeded despite veto")
	}
	if len(root.Children()) != 0 {
		t.Errorf("vetoed child still attached")
	}
}

func TestReparentRejectsCycle(t *testing.T) {
	ed := NewEditor()
	root := ed.Root()
	a := newChildPane(ed, "a")
	root.Register(a)
	b := newChildPane(ed, "b")
	a.Register(b)

	defer func() {
		if recover() == nil {
			t.Errorf("Reparent into own descendant did not panic")
		}
	}()
	root.Reparent(b)
}

func TestMoveAfter(t *testing.T) {
	ed := NewEditor()
	root := ed.Root()
	a, b, c := newChildPane(ed, "a"), newChildPane(ed, "b"), newChildPane(ed, "c")
	root.Register(a)
	root.Register(b)
	root.Register(c)

	a.MoveAfter(c)
	kids := root.Children()
	if len(kids) != 3 || kids[0] != b || kids[1] != c || kids[2] != a {
		t.Errorf("Children() after MoveAfter = %v, want [b c a]", kids)
	}
}

func TestSubsumeMovesChildren(t *testing.T) {
	ed := NewEditor()
	root := ed.Root()
	oldParent := newChildPane(ed, "old")
	root.Register(oldParent)
	c1, c2 := newChildPane(ed, "c1"), newChildPane(ed, "c2")
	oldParent.Register(c1)
	oldParent.Register(c2)

	newParent := newChildPane(ed, "new")
	root.Register(newParent)

	oldParent.Subsume(newParent)
	if len(oldParent.Children()) != 0 {
		t.Errorf("old parent still has children after Subsume")
	}
	if len(newParent.Children()) != 2 {
		t.Errorf("new parent has %d children, want 2", len(newParent.Children()))
	}
}

func TestResizeMarksDamage(t *testing.T) {
	ed := NewEditor()
	root := ed.Root()
	c := newChildPane(ed, "c")
	root.Register(c)
	ClearDamage(c, c.Damage())

	c.Resize(1, 2, 30, 40)
	if !c.Damage().any(DamageSize) {
		t.Errorf("Resize did not set DamageSize")
	}
	if c.X != 1 || c.Y != 2 || c.W != 30 || c.H != 40 {
		t.Errorf("geometry after Resize = (%d,%d,%d,%d), want (1,2,30,40)", c.X, c.Y, c.W, c.H)
	}
}

func TestCloseIsPostOrderAndRepairsFocus(t *testing.T) {
	ed := NewEditor()
	root := ed.Root()
	parent := newChildPane(ed, "parent")
	root.Register(parent)
	child1 := newChildPane(ed, "child1")
	child2 := newChildPane(ed, "child2")
	parent.Register(child1)
	parent.Register(child2)
	child1.SetFocus()

	var order []string
	for _, p := range []*Pane{child1, child2, parent} {
		name := p.Handler().Name()
		p.SetHandler(NewCommand(name, func(c *Call) Result {
			if c.Key == "Notify:Close" {
				order = append(order, c.Home.Handler().Name())
			}
			return Efallthrough
		}, true))
	}

	child1.Close()
	if !child1.Closed() {
		t.Errorf("child1 not marked closed")
	}
	if parent.Focus != child2 {
		t.Errorf("parent.Focus = %v after its focused child closed, want child2 (focus repair picks the last open sibling)", parent.Focus)
	}

	parent.Close()
	want := []string{"child1", "child2", "parent"}
	if len(order) != 3 || order[0] != want[0] || order[1] != want[1] || order[2] != want[2] {
		t.Errorf("Notify:Close order = %v, want %v (children before parent)", order, want)
	}
}

// TestCloseRepairsFocusPicksLastSibling traces the literal scenario: root
// has children A (focus), B, C; closing A leaves focus on C, not B.
func TestCloseRepairsFocusPicksLastSibling(t *testing.T) {
	ed := NewEditor()
	root := ed.Root()
	a := newChildPane(ed, "a")
	b := newChildPane(ed, "b")
	c := newChildPane(ed, "c")
	root.Register(a)
	root.Register(b)
	root.Register(c)
	a.SetFocus()

	a.Close()
	if root.Focus != c {
		t.Errorf("root.Focus = %v after closing A, want C", root.Focus)
	}
}

func TestMaskedDetectsOcclusion(t *testing.T) {
	ed := NewEditor()
	root := ed.Root()
	root.Resize(0, 0, 100, 100)
	back := newChildPane(ed, "back")
	front := newChildPane(ed, "front")
	root.Register(back)
	root.Register(front)
	back.Resize(0, 0, 50, 50)
	front.Resize(0, 0, 50, 50)
	front.Z = 1
	NewRefreshScheduler(ed).Run(root)

	masked, uw, uh := back.Masked(10, 10, back.AbsZ, 0, 0)
	if !masked || uw != 0 || uh != 0 {
		t.Errorf("back.Masked(10,10,...) = (%v,%d,%d), want fully masked by overlapping front pane", masked, uw, uh)
	}
}

func TestMaskedReducesRectToUnoccludedPrefix(t *testing.T) {
	ed := NewEditor()
	root := ed.Root()
	root.Resize(0, 0, 100, 100)
	back := newChildPane(ed, "back")
	front := newChildPane(ed, "front")
	root.Register(back)
	root.Register(front)
	back.Resize(0, 0, 50, 50)
	front.Resize(30, 0, 50, 50)
	front.Z = 1
	NewRefreshScheduler(ed).Run(root)

	masked, uw, uh := back.Masked(0, 0, back.AbsZ, 40, 10)
	if !masked || uw != 30 || uh != 10 {
		t.Errorf("back.Masked(0,0,z,40,10) = (%v,%d,%d), want (true,30,10) — prefix clipped at front's left edge", masked, uw, uh)
	}
}

// TestFreezeUnlinksReciprocalNotifyEdges traces AddNotify(A,B) followed by
// B.Close()/FreeClosed(): A must not be left with a dangling B in its
// notifiees, and B's own links must be gone too.
func TestFreezeUnlinksReciprocalNotifyEdges(t *testing.T) {
	ed := NewEditor()
	root := ed.Root()
	a := newChildPane(ed, "a")
	b := newChildPane(ed, "b")
	root.Register(a)
	root.Register(b)

	AddNotify(a, b)
	AddNotify(b, a)

	b.Close()
	ed.FreeClosed()

	if len(a.notifiees) != 0 {
		t.Errorf("a.notifiees = %v after freezing b, want empty", a.notifiees)
	}
	if len(a.notifiers) != 0 {
		t.Errorf("a.notifiers = %v after freezing b, want empty", a.notifiers)
	}
	if len(b.notifiers) != 0 || len(b.notifiees) != 0 {
		t.Errorf("b's own notify links not cleared after freeze")
	}
}

func TestAttrGetWalksParentward(t *testing.T) {
	ed := NewEditor()
	root := ed.Root()
	root.AttrSet("theme", "dark")
	child := newChildPane(ed, "child")
	root.Register(child)

	v, ok := child.AttrGet("theme", false)
	if !ok || v != "dark" {
		t.Errorf("AttrGet(theme) = (%q,%v), want (dark,true)", v, ok)
	}
	if _, ok := child.AttrGet("theme", true); ok {
		t.Errorf("AttrGet(theme, local=true) found parent's attribute, want local-only miss")
	}
}

func TestScaleInheritsFromAncestor(t *testing.T) {
	ed := NewEditor()
	root := ed.Root()
	root.AttrSet("scale", "2/1")
	child := newChildPane(ed, "child")
	root.Register(child)
	grandchild := newChildPane(ed, "grandchild")
	child.Register(grandchild)

	n, d := grandchild.Scale()
	if n != 2 || d != 1 {
		t.Errorf("Scale() = %d/%d, want 2/1", n, d)
	}
}
