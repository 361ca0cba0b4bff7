package panekit

import "testing"

func TestCommandInvoke(t *testing.T) {
	called := false
	c := NewCommand("test", func(call *Call) Result {
		called = true
		return 1
	}, false)
	if r := c.Invoke(&Call{}); r != 1 {
		t.Errorf("Invoke = %v, want 1", r)
	}
	if !called {
		t.Errorf("command function not called")
	}
}

func TestCommandInvokeNilFunc(t *testing.T) {
	c := &Command{name: "empty"}
	if r := c.Invoke(&Call{}); r != Efallthrough {
		t.Errorf("Invoke with nil fn = %v, want Efallthrough", r)
	}
}

func TestCommandRefCounting(t *testing.T) {
	freed := false
	c := NewCommand("ref", nil, false)
	c.SetOnFree(func() { freed = true })
	c.Ref()
	c.Unref()
	if freed {
		t.Errorf("freed after one Unref with refcount 2, want still alive")
	}
	c.Unref()
	if !freed {
		t.Errorf("not freed after refcount reached zero")
	}
}

func TestNewPrefixCommand(t *testing.T) {
	c := NewPrefixCommand("mode-x", "x-mode")
	call := &Call{}
	r := c.Invoke(call)
	if r != Efalse {
		t.Errorf("prefix command result = %v, want Efalse", r)
	}
	if call.Str != "x-mode" {
		t.Errorf("call.Str = %q, want x-mode", call.Str)
	}
	mode, isPrefix := c.IsPrefix()
	if !isPrefix || mode != "x-mode" {
		t.Errorf("IsPrefix() = (%q,%v), want (x-mode,true)", mode, isPrefix)
	}
}

func TestNewLookupCommand(t *testing.T) {
	km := NewKeymap()
	target := NewCommand("target", func(c *Call) Result { return 7 }, false)
	km.Add("Chr-a", target)

	lookup := NewLookupCommand("lookup", km)
	r := lookup.Invoke(&Call{Key: "Chr-a"})
	if r != 7 {
		t.Errorf("lookup command result = %v, want 7", r)
	}

	gotKM, isLookup := lookup.IsLookup()
	if !isLookup || gotKM != km {
		t.Errorf("IsLookup() did not return the bound keymap")
	}
}
