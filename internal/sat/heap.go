package sat

import "github.com/rhartert/yagh"

// orderHeap is a max-heap of variables keyed by a branching activity score.
// Two independent instances are kept by the solver, one per heuristic
// (VSIDS and LRB/CHB); only one is consulted per decision, chosen by the
// active branching mode. yagh.IntMap is a min-heap, so scores are negated on
// the way in.
type orderHeap struct {
	heap   *yagh.IntMap[float64]
	scores []float64
	n      int // number of variables currently present in heap
}

func newOrderHeap() *orderHeap {
	return &orderHeap{heap: yagh.New[float64](0)}
}

// addVar registers a newly created variable with the given initial score and
// inserts it into the heap.
func (h *orderHeap) addVar(initScore float64) int {
	v := len(h.scores)
	h.scores = append(h.scores, initScore)
	h.heap.Put(v, -initScore)
	h.n++
	return v
}

func (h *orderHeap) contains(v int) bool {
	return h.heap.Contains(v)
}

func (h *orderHeap) score(v int) float64 {
	return h.scores[v]
}

// setScore overwrites v's score and, if v is currently in the heap, updates
// its key so the heap invariant holds.
func (h *orderHeap) setScore(v int, score float64) {
	h.scores[v] = score
	if h.heap.Contains(v) {
		h.heap.Put(v, -score)
	}
}

// bump adds delta to v's score.
func (h *orderHeap) bump(v int, delta float64) {
	h.setScore(v, h.scores[v]+delta)
}

// insert (re-)inserts v into the heap using its last known score. Used when
// a variable is unassigned and becomes eligible for selection again.
func (h *orderHeap) insert(v int) {
	if h.heap.Contains(v) {
		return
	}
	h.heap.Put(v, -h.scores[v])
	h.n++
}

// rescale multiplies every stored score by factor, whether or not the
// variable is currently in the heap, keeping heap keys in sync for the ones
// that are.
func (h *orderHeap) rescale(factor float64) {
	for v := range h.scores {
		h.scores[v] *= factor
		if h.heap.Contains(v) {
			h.heap.Put(v, -h.scores[v])
		}
	}
}

// top returns the variable with the current best score without disturbing
// the heap, or ok=false if it is empty. It pops then immediately reinserts,
// since the underlying heap does not expose a dedicated peek.
func (h *orderHeap) top() (v int, score float64, ok bool) {
	e, has := h.heap.Pop()
	if !has {
		return 0, 0, false
	}
	h.heap.Put(e.Elem, -h.scores[e.Elem])
	return e.Elem, h.scores[e.Elem], true
}

// popEligible pops variables until one satisfies eligible, or the heap runs
// out (ok=false, model found / nothing left to branch on).
func (h *orderHeap) popEligible(eligible func(int) bool) (v int, ok bool) {
	for {
		e, has := h.heap.Pop()
		if !has {
			return 0, false
		}
		h.n--
		if eligible(e.Elem) {
			return e.Elem, true
		}
	}
}

func (h *orderHeap) size() int {
	return h.n
}
