package panekit

// CommandFunc is the function a Command wraps. It receives the call-info
// record for the invocation and returns one of the sentinels in errors.go,
// a positive success value, or Efalse.
type CommandFunc func(c *Call) Result

// Command is an invocable, refcounted object: the atom of dispatch. A
// Command may be a plain wrapped function, a "prefix command" that stashes
// a mode string to be consulted on the next call, or a "lookup command"
// that forwards to a Keymap.
type Command struct {
	name      string
	fn        CommandFunc
	refCount  int32
	closeSafe bool

	prefixMode string
	isPrefix   bool

	lookup   *Keymap
	isLookup bool

	// onFree, if set, runs once when the refcount drops to zero.
	onFree func()
}

// NewCommand wraps fn as a named Command with an initial refcount of 1.
// closeSafe marks the command as safe to run on a pane after that pane has
// been CLOSED but before it is freed — reserved for Close handlers and
// similar cleanup operations.
func NewCommand(name string, fn CommandFunc, closeSafe bool) *Command {
	return &Command{name: name, fn: fn, refCount: 1, closeSafe: closeSafe}
}

// NewPrefixCommand returns a command that records mode on the call and
// returns Efalse without otherwise acting. Callers that chain prefix
// commands (e.g. a keymap mode translator) read call.Str to pick up the
// mode on the following dispatch.
func NewPrefixCommand(name, mode string) *Command {
	c := &Command{name: name, refCount: 1, prefixMode: mode, isPrefix: true}
	c.fn = func(call *Call) Result {
		call.Str = mode
		return Efalse
	}
	return c
}

// NewLookupCommand returns a command that forwards every call to km's
// Lookup/invoke machinery using call.Key.
func NewLookupCommand(name string, km *Keymap) *Command {
	c := &Command{name: name, refCount: 1, lookup: km, isLookup: true}
	c.fn = func(call *Call) Result {
		return km.Dispatch(call)
	}
	return c
}

// Name returns the command's stable name.
func (c *Command) Name() string { return c.name }

// CloseSafe reports whether this command may run on a CLOSED pane.
func (c *Command) CloseSafe() bool { return c.closeSafe }

// IsPrefix reports whether this is a prefix command and returns its mode.
func (c *Command) IsPrefix() (string, bool) { return c.prefixMode, c.isPrefix }

// IsLookup reports whether this is a lookup command and returns its keymap.
func (c *Command) IsLookup() (*Keymap, bool) { return c.lookup, c.isLookup }

// Ref increments the reference count and returns c, so Ref can be chained
// at the call site that stores the extra reference.
func (c *Command) Ref() *Command {
	c.refCount++
	return c
}

// Unref decrements the reference count. When it reaches zero, onFree (if
// set via SetOnFree) runs and the command is no longer safe to call.
func (c *Command) Unref() {
	c.refCount--
	if c.refCount == 0 && c.onFree != nil {
		c.onFree()
	}
}

// RefCount returns the current reference count, mostly for diagnostics.
func (c *Command) RefCount() int32 { return c.refCount }

// SetOnFree installs a callback run exactly once when the refcount reaches
// zero.
func (c *Command) SetOnFree(fn func()) { c.onFree = fn }

// Invoke calls the wrapped function. Invoke itself performs no dispatch
// bookkeeping — use Editor.Handle for routed calls; Invoke is for direct
// calls where the caller already knows the target command.
func (c *Command) Invoke(call *Call) Result {
	if c.fn == nil {
		return Efallthrough
	}
	return c.fn(call)
}
