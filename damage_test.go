package panekit

import "testing"

func TestMarkDamagedPropagatesToParent(t *testing.T) {
	ed := NewEditor()
	root := ed.Root()
	child := newChildPane(ed, "child")
	root.Register(child)
	ClearDamage(root, root.Damage())
	ClearDamage(child, child.Damage())

	MarkDamaged(child, DamageNeedCall)
	if !root.Damage().any(DamageChild) {
		t.Errorf("parent did not receive DamageChild after child's DamageNeedCall")
	}
}

func TestMarkDamagedStopsAtLightWeightPane(t *testing.T) {
	ed := NewEditor()
	root := ed.Root()
	child := newChildPane(ed, "child")
	child.Z = -1
	root.Register(child)
	ClearDamage(root, root.Damage())

	MarkDamaged(child, DamageNeedCall)
	if root.Damage().any(DamageChild) {
		t.Errorf("light-weight pane's damage propagated to parent, should not")
	}
}

func TestRefreshScheduerClearsDamage(t *testing.T) {
	ed := NewEditor()
	root := ed.Root()
	root.Resize(0, 0, 80, 24)
	child := newChildPane(ed, "child")
	root.Register(child)
	child.Resize(0, 0, 80, 24)

	NewRefreshScheduler(ed).Run(root)

	if anyDamage(root) {
		t.Errorf("damage remains after refresh pass: root=%v child=%v", root.Damage(), child.Damage())
	}
}

func TestEachChildSafeToleratesMutation(t *testing.T) {
	ed := NewEditor()
	root := ed.Root()
	a := newChildPane(ed, "a")
	b := newChildPane(ed, "b")
	root.Register(a)
	root.Register(b)

	var visited []string
	eachChildSafe(root, func(c *Pane) {
		visited = append(visited, c.Handler().Name())
		if c == a {
			extra := newChildPane(ed, "extra")
			root.Register(extra)
		}
	})

	names := map[string]bool{}
	for _, n := range visited {
		names[n] = true
	}
	if !names["a"] || !names["b"] || !names["extra"] {
		t.Errorf("eachChildSafe visited = %v, want a, b and extra all present", visited)
	}
}
