package sat

// watcher is an entry on a literal's watch list: a clause together with the
// "blocker" literal the propagator can check cheaply before touching the
// clause itself.
type watcher struct {
	ref     ClauseRef
	blocker Literal
}

// watchLists holds the two watch structures described by the spec: one for
// binary clauses (watchesBin), one for everything else (watches). Both are
// indexed by literal.
type watchLists struct {
	watchesBin [][]watcher
	watches    [][]watcher
}

func newWatchLists() *watchLists {
	return &watchLists{}
}

// grow adds watch lists for one more variable (two more literals).
func (w *watchLists) grow() {
	w.watchesBin = append(w.watchesBin, nil, nil)
	w.watches = append(w.watches, nil, nil)
}

func (w *watchLists) attachBinary(ref ClauseRef, l0, l1 Literal) {
	w.watchesBin[l0.Opposite()] = append(w.watchesBin[l0.Opposite()], watcher{ref, l1})
	w.watchesBin[l1.Opposite()] = append(w.watchesBin[l1.Opposite()], watcher{ref, l0})
}

func (w *watchLists) attach(ref ClauseRef, watched, blocker Literal) {
	w.watches[watched.Opposite()] = append(w.watches[watched.Opposite()], watcher{ref, blocker})
}

// detachBinary removes a binary clause from both its watch lists.
func (w *watchLists) detachBinary(ref ClauseRef, l0, l1 Literal) {
	w.removeFrom(w.watchesBin, l0.Opposite(), ref)
	w.removeFrom(w.watchesBin, l1.Opposite(), ref)
}

// detach removes a non-binary clause from both its watch lists.
func (w *watchLists) detach(ref ClauseRef, l0, l1 Literal) {
	w.removeFrom(w.watches, l0.Opposite(), ref)
	w.removeFrom(w.watches, l1.Opposite(), ref)
}

func (w *watchLists) removeFrom(lists [][]watcher, l Literal, ref ClauseRef) {
	ws := lists[l]
	j := 0
	for i := range ws {
		if ws[i].ref != ref {
			ws[j] = ws[i]
			j++
		}
	}
	lists[l] = ws[:j]
}

// relocate rewrites every watcher's clause-ref according to the relocation
// map produced by a ClauseArena GC pass, dropping watchers for refs that were
// collected (mapped to NoClauseRef).
func (w *watchLists) relocate(relocation []ClauseRef) {
	relocateList := func(lists [][]watcher) {
		for i, ws := range lists {
			j := 0
			for _, e := range ws {
				nr := relocation[e.ref]
				if nr == NoClauseRef {
					continue
				}
				e.ref = nr
				ws[j] = e
				j++
			}
			lists[i] = ws[:j]
		}
	}
	relocateList(w.watchesBin)
	relocateList(w.watches)
}
