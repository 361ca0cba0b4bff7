package panekit

import "time"

// maxCallDepth bounds re-entrant dispatch: a Handle chain that nests deeper
// than this is almost certainly a broken fallback loop rather than a
// legitimate feature pane, and is aborted with Efail (§5).
const maxCallDepth = 100

// callBudget is how long a single Handle call chain may run before Handle
// starts returning Efail instead of continuing to route — the cooperative
// scheduler's only defense against one pane monopolizing the event loop.
const callBudget = 200 * time.Millisecond

// frame is one entry of the dispatcher's backtrace stack, recorded for the
// duration of a single Handle call so panics and "times-up" diagnostics can
// report which chain of panes and keys produced them.
type frame struct {
	pane *Pane
	key  string
}

// Handle routes call starting at call.Home (or call.Focus when Home is
// nil): the home pane's handler is tried first; if it declines
// (Efallthrough), routing walks up through the home pane's parent chain,
// trying each handler in turn, until one answers or the root is exhausted.
//
// Handle enforces the recursion-depth guard and per-chain time budget
// described in §5: once either is exceeded, it stops calling further
// handlers and returns Efail, leaving a backtrace available via
// Editor.Backtrace for diagnostics.
func (ed *Editor) Handle(call *Call) Result {
	if ed.depth == 0 {
		ed.chainStart = nowFunc()
	}
	if ed.depth >= maxCallDepth {
		ed.logf("dispatch: recursion depth exceeded at key %q", call.Key)
		return Efail
	}
	if ed.depth > 0 && nowFunc().Sub(ed.chainStart) > callBudget {
		ed.logf("dispatch: time budget exceeded at key %q", call.Key)
		return Efail
	}

	home := call.Home
	if home == nil {
		home = call.Focus
	}
	if home == nil {
		return Efallthrough
	}

	for p := home; p != nil; p = p.Parent {
		if p.closed && (p.handler == nil || !p.handler.CloseSafe()) {
			continue
		}
		r := ed.callHandler(p, call)
		if !r.IsFallthrough() {
			return r
		}
	}
	return Efallthrough
}

// callHandler invokes p's handler directly, pushing/popping a backtrace
// frame and bumping the recursion depth for the duration of the call.
// Handle, notify, the refresh scheduler and the pane lifecycle calls all go
// through it, so their calls count against the recursion depth. It does not
// check the time budget itself; only Handle does. Pane.AttrGet's "get-attr"
// call invokes the handler directly and does not pass through here.
func (ed *Editor) callHandler(p *Pane, call *Call) Result {
	if p == nil || p.handler == nil {
		return Efallthrough
	}
	if p.closed && !p.handler.CloseSafe() {
		return Efallthrough
	}

	ed.depth++
	ed.backtrace = append(ed.backtrace, frame{pane: p, key: call.Key})
	defer func() {
		ed.backtrace = ed.backtrace[:len(ed.backtrace)-1]
		ed.depth--
	}()

	if ed.depth >= maxCallDepth {
		ed.logf("dispatch: recursion depth exceeded at key %q", call.Key)
		return Efail
	}

	call.Comm = p.handler
	return p.handler.Invoke(call)
}

// Backtrace returns the current call stack as a slice of the keys being
// handled, outermost call first. Intended for error logging from within a
// handler, not for control flow.
func (ed *Editor) Backtrace() []string {
	out := make([]string, len(ed.backtrace))
	for i, f := range ed.backtrace {
		out[i] = f.key
	}
	return out
}

// Depth reports the current dispatch recursion depth.
func (ed *Editor) Depth() int { return ed.depth }

// nowFunc is indirected so tests can't be flaked by scheduling jitter
// without means to fake time; production always uses time.Now.
var nowFunc = time.Now
