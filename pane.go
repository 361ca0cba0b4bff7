package panekit

import (
	"strconv"
	"strings"
)

// Pane is the kernel's sole structural type: every visible or invisible
// extension point in the tree is a Pane. A Pane carries no behavior of its
// own — everything it can do is delegated to its Handler command, reached
// via Editor.Handle (§4.4).
type Pane struct {
	Parent   *Pane
	children []*Pane

	// Focus is the child that currently holds input focus within this
	// pane's subtree, or nil if none of its children do.
	Focus *Pane

	// Z is the pane's relative stacking order among its siblings. Z<0
	// marks a "light-weight" pane: its damage is not propagated to its
	// parent (see damage.go) and Masked does not treat it as an occluder.
	// Z>0 marks an overlay pane that floats over its z==0 siblings.
	Z int
	// AbsZ is the absolute stacking depth: among a pane's children, the
	// lowest-Z layer gets the pane's AbsZ+1 and each higher Z layer one more
	// than the layer below. Recomputed by the resize phase of the refresh
	// pass.
	AbsZ int

	X, Y, W, H int

	damage Damage

	handler *Command
	data    any

	attrs AttrStore

	notifiers    []*Pane
	notifiees    []*Pane
	notifieesGen uint64
	notifying    map[string]bool

	closed bool
	dead   bool

	ed *Editor
}

// NewPane constructs a detached pane bound to handler, with no parent. Call
// Register to attach it to a tree.
func NewPane(ed *Editor, handler *Command, data any) *Pane {
	return &Pane{ed: ed, handler: handler, data: data}
}

// Handler returns the pane's handler command.
func (p *Pane) Handler() *Command { return p.handler }

// SetHandler replaces the pane's handler command, unref'ing the old one and
// ref'ing the new one.
func (p *Pane) SetHandler(c *Command) {
	if p.handler != nil {
		p.handler.Unref()
	}
	p.handler = c
	if c != nil {
		c.Ref()
	}
}

// Data returns the pane's opaque, handler-private data.
func (p *Pane) Data() any { return p.data }

// SetData replaces the pane's opaque data.
func (p *Pane) SetData(d any) { p.data = d }

// Children returns the pane's children in sibling order. The slice MUST NOT
// be mutated by the caller.
func (p *Pane) Children() []*Pane { return p.children }

// Closed reports whether Close has been called on this pane.
func (p *Pane) Closed() bool { return p.closed }

// Register attaches child to p as the last of p's children with the same Z
// (children stay ordered by ascending Z), after giving p's handler a chance
// to veto via a "Notify:ChildRegistered" call: a failure result (a negative
// error code other than Efallthrough) aborts the registration and Register
// returns false.
func (p *Pane) Register(child *Pane) bool {
	if child == nil || child.Parent != nil {
		panic("panekit: Register requires a detached child")
	}
	call := &Call{Key: "Notify:ChildRegistered", Home: p, Focus: child}
	if r := p.ed.callHandler(p, call); r.Failed() {
		return false
	}

	child.Parent = p
	idx := len(p.children)
	for i, c := range p.children {
		if c.Z > child.Z {
			idx = i
			break
		}
	}
	p.children = append(p.children, nil)
	copy(p.children[idx+1:], p.children[idx:])
	p.children[idx] = child

	MarkDamaged(p, DamageChild)
	MarkDamaged(child, DamageSize|DamageView|DamageContent)
	return true
}

// indexOf returns the index of child within p.children, or -1.
func (p *Pane) indexOf(child *Pane) int {
	for i, c := range p.children {
		if c == child {
			return i
		}
	}
	return -1
}

// Reparent detaches p from its current parent and registers it under
// newParent, keeping its Z but not its sibling position — callers that care
// about ordering should follow with MoveAfter. It panics if newParent is p
// or a descendant of p, which would create a cycle.
func (p *Pane) Reparent(newParent *Pane) {
	if newParent == p || newParent.isDescendantOf(p) {
		panic("panekit: Reparent would create a cycle")
	}
	old := p.Parent
	if old != nil {
		idx := old.indexOf(p)
		if idx < 0 {
			panic("panekit: pane not found among its parent's children")
		}
		old.children = append(old.children[:idx], old.children[idx+1:]...)
		if old.Focus == p {
			old.Focus = nil
		}
		MarkDamaged(old, DamageChild)
	}
	p.Parent = nil
	newParent.Register(p)
}

// isDescendantOf reports whether p is ancestor, or a descendant of ancestor.
func (p *Pane) isDescendantOf(ancestor *Pane) bool {
	for n := p; n != nil; n = n.Parent {
		if n == ancestor {
			return true
		}
	}
	return false
}

// MoveAfter repositions p among its siblings to immediately follow sibling
// (or to the front, if sibling is nil), without altering Z. Both panes must
// share the same parent.
func (p *Pane) MoveAfter(sibling *Pane) {
	parent := p.Parent
	if parent == nil || (sibling != nil && sibling.Parent != parent) {
		panic("panekit: MoveAfter requires panes sharing a parent")
	}
	idx := parent.indexOf(p)
	parent.children = append(parent.children[:idx], parent.children[idx+1:]...)

	insertAt := 0
	if sibling != nil {
		insertAt = parent.indexOf(sibling) + 1
	}
	parent.children = append(parent.children, nil)
	copy(parent.children[insertAt+1:], parent.children[insertAt:])
	parent.children[insertAt] = p
	MarkDamaged(parent, DamageChild)
}

// Subsume moves every child of p onto newParent, preserving their relative
// order, then leaves p childless. Used when a pane hands its entire subtree
// over to a freshly-inserted intermediary (e.g. wrapping a doc pane with a
// new view pane without disturbing the doc's own children).
func (p *Pane) Subsume(newParent *Pane) {
	moving := p.children
	p.children = nil
	for _, c := range moving {
		c.Parent = nil
		newParent.Register(c)
	}
	MarkDamaged(p, DamageChild)
	MarkDamaged(newParent, DamageChild)
}

// Resize sets p's geometry, per §4.4: a negative x or y means "keep the
// current value" rather than move p there; w and h below 1 clamp to 1
// rather than collapsing the pane. Any resulting change marks p
// DamageSize (which also fires a Notify:resize notification and
// propagates DamageSizeChild to the parent, per damage.go); a change in
// position additionally marks DamageContent, since a moved pane's old
// screen area needs repainting even when its size didn't change. A call
// that changes nothing marks no damage.
func (p *Pane) Resize(x, y, w, h int) {
	newX, newY := p.X, p.Y
	if x >= 0 {
		newX = x
	}
	if y >= 0 {
		newY = y
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	posChanged := newX != p.X || newY != p.Y
	sizeChanged := w != p.W || h != p.H
	if !posChanged && !sizeChanged {
		return
	}

	p.X, p.Y, p.W, p.H = newX, newY, w, h
	flags := DamageSize
	if posChanged {
		flags |= DamageContent
	}
	MarkDamaged(p, flags)
}

// Close tears p's subtree down in post-order: every child is closed before
// p itself, so a parent's Close handler only ever sees closed children
// (they stay in its child list until FreeClosed).
// Closed panes are tagged DamageClosed immediately but are not unlinked
// from their parent or freed until FreeClosed is called, so handlers
// already holding a *Pane reference can still safely query it (Closed,
// Parent, Children) during the remainder of the current call chain — see
// the closed-pane parent-link decision in the design notes.
func (p *Pane) Close() {
	if p.closed {
		return
	}
	for _, c := range append([]*Pane(nil), p.children...) {
		c.Close()
	}
	p.closed = true
	p.damage |= DamageClosed

	call := &Call{Key: "Notify:Close", Home: p, Focus: p}
	p.ed.callHandler(p, call)

	if p.Parent != nil && p.Parent.Focus == p {
		p.Parent.repairFocus()
	}
	p.ed.queueFree(p)
}

// repairFocus picks a new Focus child for p after its focused child closed.
// It takes the last still-open sibling in child order, not the first — an
// arbitrary-looking rule inherited unchanged from the original kernel,
// which itself called it the "worst credible focus" policy. If no sibling
// remains open, p itself becomes unfocused.
func (p *Pane) repairFocus() {
	p.Focus = nil
	for i := len(p.children) - 1; i >= 0; i-- {
		if !p.children[i].closed {
			p.Focus = p.children[i]
			break
		}
	}
	p.ed.callHandler(p, &Call{Key: "Notify:pane:refocus", Home: p, Focus: p})
}

// freeze unlinks a closed pane from its parent's child list, breaks every
// notify edge it holds at either end, and releases its handler reference.
// Called only by Editor once it is safe to forget the pane entirely (see
// queueFree/FreeClosed).
func (p *Pane) freeze() {
	if p.Parent != nil {
		if idx := p.Parent.indexOf(p); idx >= 0 {
			p.Parent.children = append(p.Parent.children[:idx], p.Parent.children[idx+1:]...)
		}
	}
	for _, notifier := range append([]*Pane(nil), p.notifiers...) {
		RemoveNotify(notifier, p)
	}
	for _, notifiee := range append([]*Pane(nil), p.notifiees...) {
		RemoveNotify(p, notifiee)
	}
	if p.handler != nil {
		p.handler.Unref()
		p.handler = nil
	}
	p.notifiers = nil
	p.notifiees = nil
	p.notifying = nil
	p.dead = true
	p.damage = DamageDead
}

// Focused reports whether p is the currently-focused pane, i.e. every
// ancestor's Focus points down the chain to p.
func (p *Pane) Focused() bool {
	for n := p; n.Parent != nil; n = n.Parent {
		if n.Parent.Focus != n {
			return false
		}
	}
	return true
}

// SetFocus makes p the focused pane: it walks up from p, setting Focus at
// each ancestor, firing "Notify:pane:defocus" on the pane that previously
// held focus along that path and "Notify:pane:refocus" on the new one.
func (p *Pane) SetFocus() {
	for n := p; n.Parent != nil; n = n.Parent {
		prev := n.Parent.Focus
		if prev == n {
			continue
		}
		if prev != nil {
			p.ed.callHandler(prev, &Call{Key: "Notify:pane:defocus", Home: prev, Focus: prev})
		}
		n.Parent.Focus = n
		p.ed.callHandler(n, &Call{Key: "Notify:pane:refocus", Home: n, Focus: n})
	}
}

// Masked reports whether the rectangle (x, y, w, h), in p's own
// coordinate space, is occluded at stacking layer z by a higher-AbsZ
// sibling or cousin pane — i.e. whether that rectangle would actually be
// visible were the tree rendered at z. w and h below 1 clamp to 1, so a
// bare point test is just Masked(x, y, z, 0, 0). When the rectangle is
// only partially occluded, the returned (unoccludedW, unoccludedH) is the
// largest leading prefix, in each axis, a renderer could still safely
// draw; masked is true whenever that prefix is smaller than the
// requested rectangle (including when it's fully occluded, where both
// come back 0). Used by renderers and input routers, both external
// collaborators — z is caller-supplied rather than read from p.AbsZ so a
// renderer can test occlusion at a layer other than p's own.
func (p *Pane) Masked(x, y, z, w, h int) (masked bool, unoccludedW, unoccludedH int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	uw, uh := w, h
	p.clipToUnoccluded(x, y, z, &uw, &uh)
	if uw <= 0 || uh <= 0 {
		return true, 0, 0
	}
	return uw < w || uh < h, uw, uh
}

// clipToUnoccluded walks p's ancestor chain, reducing the rectangle at
// (x, y, *uw, *uh) — in p's own coordinate space — down to the largest
// leading prefix, in each axis, not covered by a sibling or cousin pane
// whose AbsZ exceeds z.
func (p *Pane) clipToUnoccluded(x, y, z int, uw, uh *int) {
	if p.Parent == nil {
		return
	}
	ax, ay := p.X+x, p.Y+y
	for _, sib := range p.Parent.children {
		if sib == p || sib.AbsZ <= z || sib.Z < 0 {
			continue
		}
		if sib.Y < ay+*uh && sib.Y+sib.H > ay {
			switch {
			case sib.X <= ax && sib.X+sib.W > ax:
				*uw = 0
			case sib.X > ax && sib.X < ax+*uw:
				*uw = sib.X - ax
			}
		}
		if sib.X < ax+*uw && sib.X+sib.W > ax {
			switch {
			case sib.Y <= ay && sib.Y+sib.H > ay:
				*uh = 0
			case sib.Y > ay && sib.Y < ay+*uh:
				*uh = sib.Y - ay
			}
		}
	}
	p.Parent.clipToUnoccluded(ax, ay, z, uw, uh)
}

// AttrGet resolves key by first consulting p's own attribute store, then
// (if nothing was found) p's handler via a "get-attr" call, then, unless
// local is true, recursing to p's parent. It stops at the first pane that
// answers.
func (p *Pane) AttrGet(key string, local bool) (string, bool) {
	if v, ok := p.attrs.Get(key); ok {
		return v, true
	}
	if p.handler != nil {
		var result string
		call := (&Call{Key: "get-attr", Home: p, Focus: p, Str: key}).WithComm2(StrReturner(&result))
		if r := p.handler.Invoke(call); !r.Failed() && !r.IsFallthrough() && result != "" {
			return result, true
		}
	}
	if local || p.Parent == nil {
		return "", false
	}
	return p.Parent.AttrGet(key, false)
}

// AttrSet binds key to value in p's own attribute store.
func (p *Pane) AttrSet(key, value string) { p.attrs.Set(key, value) }

// Scale returns the (numerator, denominator) pair a pane's handler should
// use to convert its logical geometry units into its parent's, following
// the chain of ancestors that declare a "scale" attribute. A pane that
// declares none inherits its parent's scale; the root is 1:1.
func (p *Pane) Scale() (int, int) {
	if v, ok := p.attrs.Get("scale"); ok {
		if n, d, ok := parseScale(v); ok && d != 0 {
			return n, d
		}
	}
	if p.Parent == nil {
		return 1, 1
	}
	return p.Parent.Scale()
}

// parseScale parses a "N/D" scale attribute value.
func parseScale(v string) (n, d int, ok bool) {
	before, after, found := strings.Cut(v, "/")
	if !found {
		return 0, 0, false
	}
	num, err := strconv.Atoi(before)
	if err != nil {
		return 0, 0, false
	}
	den, err := strconv.Atoi(after)
	if err != nil {
		return 0, 0, false
	}
	return num, den, true
}
