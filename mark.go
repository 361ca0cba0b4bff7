package panekit

// DocRef is an opaque, document-supplied reference to a position. The
// kernel never interprets it — it is handed back unchanged to the
// Document collaborator on every comparison or update call. Two DocRefs
// naming the same location must compare equal under Document.Compare.
type DocRef any

// Document is the external collaborator that owns text storage — a
// Non-goal of this kernel (§6.2). Marks are meaningless without one: every
// mark position is a DocRef supplied and interpreted by a Document.
type Document interface {
	// Compare returns -1, 0 or 1 ordering a relative to b, the same way
	// bytes.Compare does for positions.
	Compare(a, b DocRef) int
}

// MarkOwner identifies the collaborator (typically a Pane) that created a
// Mark and is responsible for disposing of it.
type MarkOwner = *Pane

// Mark is a totally-ordered reference into a Document. Marks are grouped
// into MarkSets (a "view"); within a set, marks are kept in document
// order and assigned a monotonically increasing Seq used to break ties and
// to answer "which of two marks comes first" without re-consulting the
// document on the hot path.
type Mark struct {
	Doc Document
	Ref DocRef
	Seq uint64

	Owner MarkOwner
	attrs AttrStore

	set *MarkSet
}

// Attrs returns the mark's attribute store, for handler-private metadata
// (e.g. "this is the selection's other end").
func (m *Mark) Attrs() *AttrStore { return &m.attrs }

// MarkSet is an ordered collection of Marks sharing one Document — a
// "view" in §3.4's terms. All marks belonging to one logical document
// segment are normally kept in a single MarkSet so that edit-time updates
// only need to walk one list.
type MarkSet struct {
	doc   Document
	marks []*Mark
	nextSeq uint64
}

// NewMarkSet returns an empty mark set over doc.
func NewMarkSet(doc Document) *MarkSet {
	return &MarkSet{doc: doc}
}

// seqRenumberThreshold triggers a full renumbering pass once the sequence
// counter gets within this many values of wrapping, so two marks can never
// collide even after extremely long editing sessions.
const seqRenumberThreshold = 1<<64 - 1<<20

func (ms *MarkSet) nextSequence() uint64 {
	if ms.nextSeq >= seqRenumberThreshold {
		ms.renumber()
	}
	ms.nextSeq++
	return ms.nextSeq
}

// renumber reassigns Seq to every mark, densely, in current document
// order, resetting the counter back to a small value.
func (ms *MarkSet) renumber() {
	for i, m := range ms.marks {
		m.Seq = uint64(i + 1)
	}
	ms.nextSeq = uint64(len(ms.marks))
}

// indexOf finds m's position in the ordered list by a linear scan.
func (ms *MarkSet) indexOf(m *Mark) int {
	for i, x := range ms.marks {
		if x == m {
			return i
		}
	}
	return -1
}

// Create inserts a new mark at ref, owned by owner, in correct document
// order relative to the set's existing marks.
func (ms *MarkSet) Create(owner MarkOwner, ref DocRef) *Mark {
	m := &Mark{Doc: ms.doc, Ref: ref, Owner: owner, set: ms}
	idx := ms.searchPos(ref)
	ms.marks = append(ms.marks, nil)
	copy(ms.marks[idx+1:], ms.marks[idx:])
	ms.marks[idx] = m
	m.Seq = ms.nextSequence()
	ms.fixupSeqAround(idx)
	return m
}

// searchPos returns the index at which a mark at ref belongs, preserving
// document order among existing marks (ties broken by insertion order,
// i.e. inserted after marks already at the same position).
func (ms *MarkSet) searchPos(ref DocRef) int {
	lo, hi := 0, len(ms.marks)
	for lo < hi {
		mid := (lo + hi) / 2
		if ms.doc.Compare(ms.marks[mid].Ref, ref) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// fixupSeqAround assigns idx's mark a Seq strictly between its neighbors
// when there is room, else triggers a renumber; keeps Seq usable as a fast
// ordering proxy without consulting Compare on every comparison.
func (ms *MarkSet) fixupSeqAround(idx int) {
	var lo, hi uint64
	if idx > 0 {
		lo = ms.marks[idx-1].Seq
	}
	if idx < len(ms.marks)-1 {
		hi = ms.marks[idx+1].Seq
	} else {
		hi = lo + 2
	}
	if hi > lo+1 {
		ms.marks[idx].Seq = lo + (hi-lo)/2
	} else {
		ms.renumber()
	}
}

// Duplicate creates a new mark at the same position as m, owned by owner,
// ordered immediately after m.
func (ms *MarkSet) Duplicate(m *Mark, owner MarkOwner) *Mark {
	idx := ms.indexOf(m)
	if idx < 0 {
		return ms.Create(owner, m.Ref)
	}
	n := &Mark{Doc: ms.doc, Ref: m.Ref, Owner: owner, set: ms}
	ms.marks = append(ms.marks, nil)
	copy(ms.marks[idx+2:], ms.marks[idx+1:])
	ms.marks[idx+1] = n
	ms.fixupSeqAround(idx + 1)
	return n
}

// Free removes m from its set. m must not be used afterward.
func (ms *MarkSet) Free(m *Mark) {
	idx := ms.indexOf(m)
	if idx < 0 {
		return
	}
	ms.marks = append(ms.marks[:idx], ms.marks[idx+1:]...)
	m.set = nil
}

// Next returns the mark immediately after m in document order, or nil at
// the end of the set.
func (ms *MarkSet) Next(m *Mark) *Mark {
	idx := ms.indexOf(m)
	if idx < 0 || idx+1 >= len(ms.marks) {
		return nil
	}
	return ms.marks[idx+1]
}

// Prev returns the mark immediately before m in document order, or nil at
// the start of the set.
func (ms *MarkSet) Prev(m *Mark) *Mark {
	idx := ms.indexOf(m)
	if idx <= 0 {
		return nil
	}
	return ms.marks[idx-1]
}

// First and Last return the extreme marks of the set, or nil if empty.
func (ms *MarkSet) First() *Mark {
	if len(ms.marks) == 0 {
		return nil
	}
	return ms.marks[0]
}

func (ms *MarkSet) Last() *Mark {
	if len(ms.marks) == 0 {
		return nil
	}
	return ms.marks[len(ms.marks)-1]
}

// Len reports the number of marks in the set.
func (ms *MarkSet) Len() int { return len(ms.marks) }

// Clip removes every mark strictly between lo and hi (exclusive of both),
// in document order. Used when a document collaborator discards a range
// outright rather than reporting it as a destroyed-chunk edit.
func (ms *MarkSet) Clip(lo, hi *Mark) {
	loIdx, hiIdx := ms.indexOf(lo), ms.indexOf(hi)
	if loIdx < 0 || hiIdx < 0 || hiIdx <= loIdx+1 {
		return
	}
	ms.marks = append(ms.marks[:loIdx+1], ms.marks[hiIdx:]...)
}

// EditUpdate describes one document mutation for ApplyReplaceUpdate's
// purposes: the half-open range [From, To) was replaced by content whose
// new end position is NewTo. The document collaborator supplies Destroyed
// and Remap because only it knows chunk boundaries (§4.3): Destroyed
// reports whether a mark's anchor was inside storage that no longer
// exists, and Remap (for a mark that survived the edit) returns the
// mark's equivalent position in the post-edit document.
type EditUpdate struct {
	From, To DocRef
	NewTo    DocRef

	Destroyed func(ref DocRef) bool
	Remap     func(ref DocRef) DocRef
}

// ApplyReplaceUpdate walks ms in document order and repositions every mark
// affected by edit, per §4.3:
//   - a mark strictly before From is untouched;
//   - a mark at or after To is shifted by Remap (the document's own
//     translation of "old position past the edit" to "new position");
//   - a mark inside [From, To) that Destroyed reports as gone is pinned to
//     NewTo (the edit's insertion point), so it reports a sane position
//     rather than a dangling one;
//   - a mark inside [From, To) that Destroyed does not report as gone
//     (its anchor survived, e.g. a chunk split around it) is repositioned
//     via Remap rather than pinned.
//
// The kernel does not attempt to infer any of this itself: text storage
// layout is a Non-goal, so the predicates are supplied by the Document.
func (ms *MarkSet) ApplyReplaceUpdate(edit EditUpdate) {
	for _, m := range ms.marks {
		switch {
		case ms.doc.Compare(m.Ref, edit.From) < 0:
			// before the edit: untouched
		case ms.doc.Compare(m.Ref, edit.To) >= 0:
			m.Ref = edit.Remap(m.Ref)
		case edit.Destroyed(m.Ref):
			m.Ref = edit.NewTo
		default:
			m.Ref = edit.Remap(m.Ref)
		}
	}
	ms.resort()
}

// resort restores document-order invariants after ApplyReplaceUpdate may
// have reordered marks relative to one another (an edit can, in principle,
// cause two marks pinned to the same destroyed chunk to tie). Marks that
// tie in document order keep their relative Seq order, a stable sort.
func (ms *MarkSet) resort() {
	n := len(ms.marks)
	for i := 1; i < n; i++ {
		j := i
		for j > 0 && ms.doc.Compare(ms.marks[j-1].Ref, ms.marks[j].Ref) > 0 {
			ms.marks[j-1], ms.marks[j] = ms.marks[j], ms.marks[j-1]
			j--
		}
	}
}
