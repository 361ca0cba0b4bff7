package panekit

// AddNotify links p as a notifiee of notifier: whenever notifier fires
// name, p's handler is invoked. The link is idempotent — calling AddNotify
// twice with the same pair is a no-op, not a double registration.
func AddNotify(notifier, p *Pane) {
	for _, n := range notifier.notifiees {
		if n == p {
			return
		}
	}
	notifier.notifiees = append(notifier.notifiees, p)
	notifier.notifieesGen++
	p.notifiers = append(p.notifiers, notifier)
}

// RemoveNotify unlinks p as a notifiee of notifier, if linked.
func RemoveNotify(notifier, p *Pane) {
	for i, n := range notifier.notifiees {
		if n == p {
			notifier.notifiees = append(notifier.notifiees[:i], notifier.notifiees[i+1:]...)
			notifier.notifieesGen++
			break
		}
	}
	for i, n := range p.notifiers {
		if n == notifier {
			p.notifiers = append(p.notifiers[:i], p.notifiers[i+1:]...)
			break
		}
	}
}

// notify fans a "Notify:"+name call out to every current notifiee of p, in
// reverse insertion order (most-recently-registered first, matching the
// convention that specific overrides register after general ones and
// should see the event first).
//
// p itself is tagged in-flight for (p, name) for the duration of the whole
// fan-out; if a notifiee's handler re-enters notify for the same (p, name)
// pair — directly or through some chain of calls — that is a recursive
// same-name notification and is rejected with Efail rather than risking
// infinite recursion. If the notifiee list mutates while iterating (a
// handler adds or removes a notifiee of p), the scan restarts from the
// beginning but skips every pane already handled this round, so no
// notifiee is ever invoked twice in the same round and newly-added
// notifiees are still reached. Mutation is detected via p.notifieesGen
// rather than the slice's length, since a handler that adds one notifiee
// and removes another in the same call leaves the length unchanged.
func notify(p *Pane, name string, call *Call) Result {
	if p.notifying == nil {
		p.notifying = make(map[string]bool)
	}
	if p.notifying[name] {
		return Efail
	}
	p.notifying[name] = true
	defer delete(p.notifying, name)

	round := make(map[*Pane]bool, len(p.notifiees))

restart:
	for i := len(p.notifiees) - 1; i >= 0; i-- {
		n := p.notifiees[i]
		if round[n] {
			continue
		}
		gen := p.notifieesGen

		c := *call
		c.Key = "Notify:" + name
		c.Home = n
		r := n.ed.callHandler(n, &c)

		round[n] = true

		if r.Failed() {
			return r
		}
		if p.notifieesGen != gen {
			goto restart
		}
	}

	return Efalse
}

// Notify fires a named notification from p to all of its registered
// notifiees. It is the exported entry point to notify, which damage code
// calls directly (MarkDamaged's "resize" notification); feature code
// normally triggers notifications indirectly by calling pane operations
// rather than calling Notify itself.
func Notify(p *Pane, name string, call *Call) Result {
	if call == nil {
		call = &Call{}
	}
	return notify(p, name, call)
}
