package panekit

import "testing"

func TestHandleFallsThroughToParent(t *testing.T) {
	ed := NewEditor()
	root := ed.Root()
	root.SetHandler(NewCommand("root", func(c *Call) Result {
		if c.Key == "do-it" {
			return 42
		}
		return Efallthrough
	}, false))

	child := NewPane(ed, nil, nil)
	root.Register(child)

	r := ed.Handle(&Call{Key: "do-it", Home: child})
	if r != 42 {
		t.Errorf("Handle = %v, want 42 (answered by parent after child fell through)", r)
	}
}

func TestHandleHomeFirst(t *testing.T) {
	ed := NewEditor()
	root := ed.Root()
	root.SetHandler(NewCommand("root", func(c *Call) Result { return 1 }, false))
	child := newChildPane(ed, "child")
	root.Register(child)
	child.SetHandler(NewCommand("child", func(c *Call) Result { return 2 }, false))

	r := ed.Handle(&Call{Key: "x", Home: child})
	if r != 2 {
		t.Errorf("Handle = %v, want 2 (home pane should answer first)", r)
	}
}

func TestHandleUnboundReturnsFallthrough(t *testing.T) {
	ed := NewEditor()
	child := NewPane(ed, nil, nil)
	ed.Root().Register(child)
	// root's default handler is a lookup command over an empty global
	// keymap, which itself returns Efallthrough for an unbound key.
	r := ed.Handle(&Call{Key: "nothing-bound", Home: child})
	if !r.IsFallthrough() {
		t.Errorf("Handle of unbound key = %v, want Efallthrough", r)
	}
}

func TestHandleRecursionDepthGuard(t *testing.T) {
	ed := NewEditor()
	p := newChildPane(ed, "p")
	ed.Root().Register(p)

	var recurse CommandFunc
	recurse = func(c *Call) Result {
		return ed.callHandler(p, &Call{Key: c.Key, Home: p})
	}
	p.SetHandler(NewCommand("recurse", recurse, false))

	r := ed.Handle(&Call{Key: "loop", Home: p})
	if r != Efail {
		t.Errorf("Handle of unbounded recursion = %v, want Efail", r)
	}
}

func TestBacktraceRecordsChain(t *testing.T) {
	ed := NewEditor()
	root := ed.Root()
	var bt []string
	root.SetHandler(NewCommand("root", func(c *Call) Result {
		bt = ed.Backtrace()
		return 1
	}, false))
	child := newChildPane(ed, "child")
	root.Register(child)

	ed.Handle(&Call{Key: "k", Home: child})
	if len(bt) == 0 {
		t.Errorf("Backtrace() was empty during handler execution")
	}
}
