package panekit

// Damage is a bitmask of pending work recorded on a Pane (§4.6).
type Damage uint16

const (
	DamageSize Damage = 1 << iota
	DamageSizeChild
	DamageView
	DamageViewChild
	DamageContent
	DamageCursor
	DamageChild
	DamageNeedCall
	DamagePostorder
	DamagePostorderChild
	DamageClosed
	DamageDead
	// DamageNotHandled exists for parity with the flag set described in
	// the design notes; the refresh scheduler tracks "handled this phase"
	// itself as transient per-call state (see eachChildSafe) rather than
	// persisting it on the pane, since it never needs to survive past a
	// single phase.
	DamageNotHandled
)

// has reports whether all bits in mask are set.
func (d Damage) has(mask Damage) bool { return d&mask == mask }

// any reports whether any bit in mask is set.
func (d Damage) any(mask Damage) bool { return d&mask != 0 }

// propagateUp maps a child's freshly-set damage bits to the reduced set
// that should be OR'd into its parent, per §4.6.
func propagateUp(set Damage) Damage {
	var up Damage
	if set.any(DamageSize) {
		up |= DamageSizeChild
	}
	if set.any(DamageView) {
		up |= DamageViewChild
	}
	if set.any(DamageNeedCall) {
		up |= DamageChild
	}
	if set.any(DamagePostorder) {
		up |= DamagePostorderChild
	}
	return up
}

// MarkDamaged ORs flags into p's damage mask and propagates the reduced
// set upward through ancestors, stopping as soon as an ancestor already
// has the propagated bit(s) set, or at a light-weight (z<0) pane, which
// does not propagate damage at all. SIZE additionally fires a
// Notify:resize notification; a SIZE change on an overlay (z>0) child
// also sets CONTENT on its parent.
func MarkDamaged(p *Pane, flags Damage) {
	if p == nil {
		return
	}
	newBits := flags &^ p.damage
	p.damage |= flags
	if newBits == 0 {
		return
	}

	if flags.any(DamageSize) {
		notify(p, "resize", &Call{Focus: p})
	}

	if p.Z < 0 {
		return
	}

	up := propagateUp(newBits)
	if up == 0 {
		return
	}

	parent := p.Parent
	if parent != nil && parent != p {
		if flags.any(DamageSize) && p.Z > 0 {
			up |= DamageContent
		}
		alreadySet := parent.damage&up == up
		if !alreadySet {
			MarkDamaged(parent, up)
		}
	}
}

// ClearDamage clears exactly the bits in mask from p's damage word. Damage
// is only ever cleared from inside the refresh phase responsible for it.
func ClearDamage(p *Pane, mask Damage) {
	p.damage &^= mask
}

// Damage returns p's current damage mask.
func (p *Pane) Damage() Damage { return p.damage }

// RefreshScheduler runs the multi-phase damage-resolution walk described
// in §4.6, starting at root. It iterates up to maxRefreshIterations times
// until no pane has outstanding damage (other than DamageClosed), guarding
// against refresh livelock the same way the dispatcher guards against
// unbounded recursion.
type RefreshScheduler struct {
	ed *Editor
}

// maxRefreshIterations bounds a single refresh pass; exceeding it leaves
// residual damage in place and logs a warning rather than looping forever.
// The warning is logged on every pass that ends with damage left; it is not
// rate-limited.
const maxRefreshIterations = 5

// NewRefreshScheduler binds a scheduler to ed, whose backtrace/logging
// facilities it reuses for livelock diagnostics.
func NewRefreshScheduler(ed *Editor) *RefreshScheduler {
	return &RefreshScheduler{ed: ed}
}

// Run drives the refresh pass from root. It is normally called once after
// each batch of input processing.
func (rs *RefreshScheduler) Run(root *Pane) {
	for i := 0; i < maxRefreshIterations; i++ {
		if !anyDamage(root) {
			return
		}
		rs.resizePhase(root)
		rs.viewPhase(root)
		rs.contentPhase(root)
		rs.postorderPhase(root)
	}
	if anyDamage(root) {
		rs.ed.logf("refresh: livelock — damage remains after %d iterations", maxRefreshIterations)
	}
}

func anyDamage(p *Pane) bool {
	if p.damage&^DamageClosed != 0 {
		return true
	}
	for _, c := range p.children {
		if anyDamage(c) {
			return true
		}
	}
	return false
}

// eachChildSafe iterates p's children, tolerant of the list mutating
// mid-walk (a handler closing, reparenting, or adding a sibling from
// inside visit). It tracks which children have already been visited this
// round in a local set and restarts the scan whenever the slice changes
// underneath it, so every child present at any point during the walk is
// visited exactly once, including ones inserted mid-walk.
func eachChildSafe(p *Pane, visit func(*Pane)) {
	done := make(map[*Pane]bool, len(p.children))
restart:
	for _, c := range p.children {
		if done[c] {
			continue
		}
		done[c] = true
		before := append([]*Pane(nil), p.children...)
		visit(c)
		changed := len(p.children) != len(before)
		for i := 0; !changed && i < len(before); i++ {
			changed = p.children[i] != before[i]
		}
		if changed {
			goto restart
		}
	}
}

func (rs *RefreshScheduler) resizePhase(p *Pane) {
	if p.damage.any(DamageSize) && p.Z == 0 {
		refitToParent(p)
	}
	if p.damage.any(DamageSize) {
		rs.ed.callHandler(p, &Call{Key: "Refresh:size", Home: p, Focus: p})
	}
	computeAbsZ(p)
	ClearDamage(p, DamageSize|DamageSizeChild)
	p.damage |= DamageContent | DamageChild

	eachChildSafe(p, func(c *Pane) { rs.resizePhase(c) })
}

func refitToParent(p *Pane) {
	if p.Parent == nil || p.Parent == p {
		return
	}
	// A z=0 pane that hasn't been explicitly sized tracks its parent.
	if p.W == 0 && p.H == 0 {
		p.W, p.H = p.Parent.W, p.Parent.H
	}
}

func computeAbsZ(p *Pane) {
	if len(p.children) == 0 {
		return
	}
	ordered := append([]*Pane(nil), p.children...)
	sortByZ(ordered)
	absZHi := p.AbsZ + 1
	i := 0
	for i < len(ordered) {
		z := ordered[i].Z
		layerStart := absZHi
		j := i
		for j < len(ordered) && ordered[j].Z == z {
			ordered[j].AbsZ = layerStart
			j++
		}
		absZHi = layerStart + 1
		i = j
	}
}

func sortByZ(panes []*Pane) {
	for i := 1; i < len(panes); i++ {
		key := panes[i]
		j := i - 1
		for j >= 0 && panes[j].Z > key.Z {
			panes[j+1] = panes[j]
			j--
		}
		panes[j+1] = key
	}
}

func (rs *RefreshScheduler) viewPhase(p *Pane) {
	eachChildSafe(p, func(c *Pane) {
		if c.damage.any(DamageView) {
			rs.ed.callHandler(c, &Call{Key: "Refresh:view", Home: c, Focus: c})
			ClearDamage(c, DamageView)
			c.damage &^= DamageViewChild
		}
		rs.viewPhase(c)
	})
	ClearDamage(p, DamageViewChild)
}

func (rs *RefreshScheduler) contentPhase(p *Pane) {
	if p.damage.any(DamageContent) {
		p.damage |= DamageCursor
	}
	if p.damage.any(DamageNeedCall | DamageContent | DamageCursor | DamageChild) {
		if p.damage.any(DamageNeedCall | DamageContent | DamageCursor) {
			rs.ed.callHandler(p, &Call{Key: "Refresh", Home: p, Focus: p})
		}
		ClearDamage(p, DamageNeedCall|DamageContent|DamageCursor|DamageChild)
	}
	eachChildSafe(p, func(c *Pane) { rs.contentPhase(c) })
}

func (rs *RefreshScheduler) postorderPhase(p *Pane) {
	eachChildSafe(p, func(c *Pane) { rs.postorderPhase(c) })
	if p.damage.any(DamagePostorder | DamagePostorderChild) {
		if p.damage.any(DamagePostorder) {
			rs.ed.callHandler(p, &Call{Key: "Refresh:postorder", Home: p, Focus: p})
		}
		ClearDamage(p, DamagePostorder|DamagePostorderChild)
	}
}
