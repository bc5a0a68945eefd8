package sat

// ClauseRef is an opaque handle into a ClauseArena. It stays valid across
// appends but is only guaranteed stable across a GC if the caller applies the
// relocation map returned by (*ClauseArena).gc.
type ClauseRef int32

// NoClauseRef is the sentinel used where a reason or conflict clause-ref is
// absent (decision literals, "no conflict").
const NoClauseRef ClauseRef = -1

// ClauseArena is an append-mostly region allocator for clauses. Clauses are
// addressed exclusively through ClauseRef so that the whole store can be
// compacted (relocated) without invalidating outstanding references, as long
// as every holder of a ref applies the relocation map handed back by gc.
type ClauseArena struct {
	clauses []*Clause
	holes   int // number of deleted (but not yet compacted) slots
}

func newClauseArena() *ClauseArena {
	return &ClauseArena{}
}

// alloc stores c and returns its handle.
func (a *ClauseArena) alloc(c *Clause) ClauseRef {
	a.clauses = append(a.clauses, c)
	return ClauseRef(len(a.clauses) - 1)
}

func (a *ClauseArena) get(ref ClauseRef) *Clause {
	return a.clauses[ref]
}

// free marks ref's clause dead. The slot is retained as a hole until gc.
func (a *ClauseArena) free(ref ClauseRef) {
	c := a.clauses[ref]
	if c.deleted() {
		return
	}
	c.statusMask |= statusDeleted
	c.literals = nil
	a.holes++
}

// size returns the number of slots in use, including holes.
func (a *ClauseArena) size() int { return len(a.clauses) }

// wasted returns the number of dead slots awaiting compaction.
func (a *ClauseArena) wasted() int { return a.holes }

// wastedFraction reports wasted()/size(), the quantity compared against
// garbage_frac to decide whether a GC is due.
func (a *ClauseArena) wastedFraction() float64 {
	if len(a.clauses) == 0 {
		return 0
	}
	return float64(a.holes) / float64(len(a.clauses))
}

// gc compacts the arena in place, dropping dead clauses, and returns the
// mapping from old ClauseRef to new ClauseRef so that callers can fix up
// every watch-list entry, reason pointer, and bucket that stores refs into
// this arena. Refs to deleted clauses map to NoClauseRef.
func (a *ClauseArena) gc() []ClauseRef {
	relocation := make([]ClauseRef, len(a.clauses))
	live := a.clauses[:0]
	for old, c := range a.clauses {
		if c.deleted() {
			relocation[old] = NoClauseRef
			continue
		}
		relocation[old] = ClauseRef(len(live))
		live = append(live, c)
	}
	a.clauses = live
	a.holes = 0
	return relocation
}
