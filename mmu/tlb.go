package mmu

// tlbEntry caches one (virtual page, address space) -> physical frame
// translation, matching §3's invariants: at most one entry per (page,
// space); a write-through entry carries a dirty-written flag so the
// first write to a clean page goes through the slow path to set the PTE
// modify bit before caching.
type tlbEntry struct {
	valid    bool
	space    uint8 // Address-space tag: current=0, previous=1 (VAX) or AC-block/section (PDP-10).
	page     uint32
	frame    uint32
	writable bool // Set only once the PTE modify bit has been stamped.
	user     bool
}

// TLB is a map-backed translation cache with no size limit, shared by both ISA
// pagers, grounded on the teacher's fixed-size `tlb [256]uint32` array in
// emu/cpu/cpudefs.go, generalized from a flat index into a tagged
// (space, page) lookup so VAX current/previous space and PDP-10
// section/AC-block translations can't alias each other.
type TLB struct {
	entries map[tlbKey]tlbEntry
}

type tlbKey struct {
	space uint8
	page  uint32
}

func NewTLB() *TLB {
	return &TLB{entries: make(map[tlbKey]tlbEntry)}
}

func (t *TLB) Lookup(space uint8, page uint32) (tlbEntry, bool) {
	e, ok := t.entries[tlbKey{space, page}]
	return e, ok && e.valid
}

func (t *TLB) Insert(space uint8, page, frame uint32, writable, user bool) {
	t.entries[tlbKey{space, page}] = tlbEntry{
		valid: true, space: space, page: page, frame: frame, writable: writable, user: user,
	}
}

// MarkWritable stamps the dirty-written flag after the slow path has set
// the underlying PTE's modify bit, so subsequent writes to the same page
// hit the fast path (§4.3 invariant: "a cached entry's writable bit is
// set iff the first write has succeeded and updated the PTE modify bit").
func (t *TLB) MarkWritable(space uint8, page uint32) {
	k := tlbKey{space, page}
	if e, ok := t.entries[k]; ok {
		e.writable = true
		t.entries[k] = e
	}
}

// Invalidate drops a single page's cached translation (TBIS).
func (t *TLB) Invalidate(space uint8, page uint32) {
	delete(t.entries, tlbKey{space, page})
}

// InvalidateAll drops every cached translation (TBIA, or any MMU-control
// register write per §4.3's invariant).
func (t *TLB) InvalidateAll() {
	t.entries = make(map[tlbKey]tlbEntry)
}
