package panekit

import (
	"hash/fnv"
	"sort"
	"strings"
)

// keyEntry is one binding in a Keymap's ordered entry list.
type keyEntry struct {
	key          string
	cmd          *Command
	isRangeStart bool
}

// bloomWords is the size, in 64-bit words, of a Keymap's negative-lookup
// bloom filter. 8 words (512 bits) comfortably covers the few hundred
// bindings a single pane's keymap typically holds.
const bloomWords = 8

type bloomFilter struct {
	bits [bloomWords]uint64
}

func bloomHash(s string) (h1, h2 uint32) {
	f := fnv.New32a()
	_, _ = f.Write([]byte(s))
	h1 = f.Sum32()
	g := fnv.New32()
	_, _ = g.Write([]byte(s))
	h2 = g.Sum32()
	if h2 == 0 {
		h2 = 1
	}
	return h1, h2
}

func (b *bloomFilter) add(s string) {
	h1, h2 := bloomHash(s)
	total := uint32(bloomWords * 64)
	for i := uint32(0); i < 3; i++ {
		bit := (h1 + i*h2) % total
		b.bits[bit/64] |= 1 << (bit % 64)
	}
}

// mayContain reports whether s could be present. False means definitely
// absent; true means "maybe, go check the real entries".
func (b *bloomFilter) mayContain(s string) bool {
	h1, h2 := bloomHash(s)
	total := uint32(bloomWords * 64)
	for i := uint32(0); i < 3; i++ {
		bit := (h1 + i*h2) % total
		if b.bits[bit/64]&(1<<(bit%64)) == 0 {
			return false
		}
	}
	return true
}

func (b *bloomFilter) reset() { *b = bloomFilter{} }

// keyPrefix returns the portion of key up to (not including) the first '-'
// or ':', matching the convention used by mode-qualified key strings like
// "Chr-A" or "K:Tab".
func keyPrefix(key string) string {
	if i := strings.IndexAny(key, "-:"); i >= 0 {
		return key[:i]
	}
	return key
}

// Keymap is an ordered sequence of (key, command) bindings, optionally
// chained to a fallback keymap consulted when a key is unbound here. A
// binding may be an exact match or a range-start marker; see Lookup for
// the resolution rule and AddRange for how ranges are represented.
type Keymap struct {
	entries []keyEntry
	chain   *Keymap

	bloom      bloomFilter
	prefixes   bloomFilter
	bloomDirty bool
}

// NewKeymap returns an empty keymap with no fallback chain.
func NewKeymap() *Keymap {
	return &Keymap{}
}

// Chain sets the fallback keymap consulted when a lookup fails here.
func (k *Keymap) Chain(fallback *Keymap) {
	k.chain = fallback
}

func (k *Keymap) search(key string) int {
	return sort.Search(len(k.entries), func(i int) bool {
		return k.entries[i].key >= key
	})
}

func (k *Keymap) markModified() {
	k.bloomDirty = true
}

func (k *Keymap) rebuildBloom() {
	k.bloom.reset()
	k.prefixes.reset()
	for _, e := range k.entries {
		k.bloom.add(e.key)
		k.prefixes.add(keyPrefix(e.key))
	}
	k.bloomDirty = false
}

// Add binds key to cmd exactly. If key falls strictly inside an existing
// open range, an exact entry is created at key AND a new range-start entry
// is inserted immediately after key carrying the original range's command,
// so that keys after key continue to resolve to that range (see §3.3).
func (k *Keymap) Add(key string, cmd *Command) {
	idx := k.search(key)
	if idx < len(k.entries) && k.entries[idx].key == key {
		k.entries[idx].cmd = cmd
		k.entries[idx].isRangeStart = false
		k.markModified()
		return
	}

	// Does an open range cover key? That's true iff the entry immediately
	// preceding the insertion point is a range-start.
	var reopenCmd *Command
	if idx > 0 && k.entries[idx-1].isRangeStart {
		reopenCmd = k.entries[idx-1].cmd
	}

	entry := keyEntry{key: key, cmd: cmd}
	k.insertAt(idx, entry)

	if reopenCmd != nil {
		reopenKey := key + "\x00"
		k.insertAt(k.search(reopenKey), keyEntry{key: reopenKey, cmd: reopenCmd, isRangeStart: true})
	}
	k.markModified()
}

// AddRange binds every key in [low, high] (inclusive, lexicographic) to
// cmd. Internally this inserts a range-start entry at low and, unless one
// already exists, a terminator entry at the lexicographic successor of
// high so that lookups past the range fall through to unbound (or to the
// chained keymap). Lookup reaches a range only past its prefix filter, so a
// key in [low, high] whose prefix (the part before the first '-' or ':')
// matches no bound key's prefix is reported unbound here.
func (k *Keymap) AddRange(low, high string, cmd *Command) {
	idx := k.search(low)
	if idx < len(k.entries) && k.entries[idx].key == low {
		k.entries[idx].cmd = cmd
		k.entries[idx].isRangeStart = true
	} else {
		k.insertAt(idx, keyEntry{key: low, cmd: cmd, isRangeStart: true})
	}

	succ := stringSuccessor(high)
	sidx := k.search(succ)
	if sidx >= len(k.entries) || k.entries[sidx].key != succ {
		k.insertAt(sidx, keyEntry{key: succ, cmd: nil, isRangeStart: false})
	}
	k.markModified()
}

// stringSuccessor returns the lexicographically smallest string strictly
// greater than s among strings that do not extend s — i.e. s with its
// trailing byte incremented. Keys in this system are plain ASCII-ish
// identifiers, so this never needs to handle the 0xFF-overflow case.
func stringSuccessor(s string) string {
	if s == "" {
		return "\x00"
	}
	b := []byte(s)
	b[len(b)-1]++
	return string(b)
}

func (k *Keymap) insertAt(idx int, e keyEntry) {
	k.entries = append(k.entries, keyEntry{})
	copy(k.entries[idx+1:], k.entries[idx:])
	k.entries[idx] = e
}

// Remove deletes the exact binding at key, if present. Any reopen entry
// synthesized by a prior Add that shadowed a range is left in place — it
// is harmless (see Lookup) and removing it is not required for lookups to
// resolve correctly again.
func (k *Keymap) Remove(key string) {
	idx := k.search(key)
	if idx >= len(k.entries) || k.entries[idx].key != key {
		return
	}
	k.entries = append(k.entries[:idx], k.entries[idx+1:]...)
	k.markModified()
}

// Lookup resolves key to a command following §3.3's rule:
//  1. binary search for the first entry >= key;
//  2. an exact match at that entry (range-start or not) answers directly;
//  3. otherwise, if the preceding entry is a range-start, its command
//     answers (key falls inside that still-open range);
//  4. otherwise key is unbound here, and the chained keymap (if any) is
//     consulted.
//
// A nil return means "unbound", distinct from a bound command that itself
// happens to be nil — the keymap never stores nil as a live binding except
// as a range terminator, which is precisely the "unbound" case.
func (k *Keymap) Lookup(key string) *Command {
	if k.bloomDirty {
		k.rebuildBloom()
	}
	if !k.bloom.mayContain(key) && !k.prefixes.mayContain(keyPrefix(key)) {
		if k.chain != nil {
			return k.chain.Lookup(key)
		}
		return nil
	}

	idx := k.search(key)
	if idx < len(k.entries) && k.entries[idx].key == key {
		if k.entries[idx].cmd != nil {
			return k.entries[idx].cmd
		}
	} else if idx > 0 && k.entries[idx-1].isRangeStart {
		return k.entries[idx-1].cmd
	}

	if k.chain != nil {
		return k.chain.Lookup(key)
	}
	return nil
}

// Dispatch looks up call.Key and invokes the bound command, if any,
// returning its result. Unbound keys yield Efallthrough so that a
// lookup-command-backed handler composes naturally with Editor.Handle's
// parentward search.
func (k *Keymap) Dispatch(call *Call) Result {
	cmd := k.Lookup(call.Key)
	if cmd == nil {
		return Efallthrough
	}
	call.Comm = cmd
	return cmd.Invoke(call)
}

// PrefixLookup enumerates every key bound under prefix, in key order, and
// invokes the command of each in turn until one returns something other
// than Efallthrough. This drives notifier broadcast and similar
// prefix-addressed protocols (§4.2). It returns the first non-Efallthrough
// result, or Efallthrough if every candidate declined.
func (k *Keymap) PrefixLookup(prefix string, call *Call) Result {
	idx := k.search(prefix)
	for idx < len(k.entries) && strings.HasPrefix(k.entries[idx].key, prefix) {
		e := k.entries[idx]
		idx++
		if e.cmd == nil {
			continue
		}
		call.Comm = e.cmd
		if r := e.cmd.Invoke(call); !r.IsFallthrough() {
			return r
		}
	}
	return Efallthrough
}

// Len returns the number of entries, including synthetic range markers.
// Mostly useful for tests and diagnostics.
func (k *Keymap) Len() int { return len(k.entries) }
