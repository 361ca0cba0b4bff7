package panekit

// Call is the single record shape used for every inter-pane invocation
// (§4.5). It is built on the stack by the caller and passed by pointer;
// handlers may mutate Comm and Home while routing but must treat every
// other field as read-only.
type Call struct {
	Key   string
	Home  *Pane
	Focus *Pane

	Num  int
	Num2 int

	Mark  *Mark
	Mark2 *Mark

	Str  string
	Str2 string

	X, Y int

	// Comm is the command currently being invoked — handlers read it for
	// its name/flags; the dispatcher sets it on each routing attempt.
	Comm *Command
	// Comm2 is an optional secondary/callback command, e.g. the command a
	// caller wants invoked with a result via the "return by callback"
	// idiom.
	Comm2 *Command

	// hash is a precomputed key hash a caller may stash to avoid
	// recomputing it across repeated lookups of the same key.
	hash uint32
}

// WithComm2 sets Comm2 to a callback that records into dst and returns c,
// so callers can chain it at the construction site:
//
//	var result *Pane
//	c := (&Call{Key: "some:call", Focus: p}).WithComm2(PaneReturner(&result))
func (c *Call) WithComm2(cb *Command) *Call {
	c.Comm2 = cb
	return c
}

// PaneReturner builds a close-safe callback command that stores the
// caller's Focus pane into *dst when invoked — the canonical "return a
// pane via comm2" idiom.
func PaneReturner(dst **Pane) *Command {
	return NewCommand("return-pane", func(c *Call) Result {
		*dst = c.Focus
		return 1
	}, true)
}

// MarkReturner builds a callback command that stores the caller's Mark
// field into *dst when invoked.
func MarkReturner(dst **Mark) *Command {
	return NewCommand("return-mark", func(c *Call) Result {
		*dst = c.Mark
		return 1
	}, true)
}

// CommReturner builds a callback command that stores the caller's Comm
// field into *dst when invoked.
func CommReturner(dst **Command) *Command {
	return NewCommand("return-comm", func(c *Call) Result {
		*dst = c.Comm
		return 1
	}, true)
}

// StrReturner builds a callback command that stores the caller's Str
// field into *dst when invoked.
func StrReturner(dst *string) *Command {
	return NewCommand("return-str", func(c *Call) Result {
		*dst = c.Str
		return 1
	}, true)
}

// TupleReturner builds a callback command that copies every field of the
// invoking Call into *dst, for helpers that need the full tuple rather
// than a single projection.
func TupleReturner(dst *Call) *Command {
	return NewCommand("return-tuple", func(c *Call) Result {
		*dst = *c
		return 1
	}, true)
}
