package sat

// lrbState holds the per-variable bookkeeping and step-size schedule for the
// LRB/CHB reward-based branching heuristic (spec sec 4.7).
type lrbState struct {
	stepSize    float64
	stepSizeDec float64
	minStepSize float64

	pickedAtConflict   []int64
	participated       []int32
	almostParticipated []int32

	// canceledAtConflict records the conflict count at which a variable was
	// last unassigned by an exploration walk rather than a genuine backtrack
	// reward update. A positive value marks it pending anti-exploration decay.
	canceledAtConflict []int64
}

func newLRBState(stepSize, stepSizeDec, minStepSize float64) *lrbState {
	return &lrbState{
		stepSize:    stepSize,
		stepSizeDec: stepSizeDec,
		minStepSize: minStepSize,
	}
}

func (lr *lrbState) growVar() {
	lr.pickedAtConflict = append(lr.pickedAtConflict, 0)
	lr.participated = append(lr.participated, 0)
	lr.almostParticipated = append(lr.almostParticipated, 0)
	lr.canceledAtConflict = append(lr.canceledAtConflict, 0)
}

// onDecay decays the reward blending rate once per conflict, per spec.
func (lr *lrbState) onDecay() {
	lr.stepSize -= lr.stepSizeDec
	if lr.stepSize < lr.minStepSize {
		lr.stepSize = lr.minStepSize
	}
}

// onAssign resets v's per-episode counters when it is (re)assigned and
// records the conflict count at which it was picked, per uncheckedEnqueue.
func (lr *lrbState) onAssign(v int, conflicts int64) {
	lr.pickedAtConflict[v] = conflicts
	lr.participated[v] = 0
	lr.almostParticipated[v] = 0
}

// applyAntiExplorationDecay discounts v's heap score if it is still pending
// a decay from having been unassigned by an exploration walk, then clears
// the pending marker. Called both before an assignment uses the score
// (uncheckedEnqueue) and on the heap top just before pickBranchLit pops it.
func (lr *lrbState) applyAntiExplorationDecay(v int, conflicts int64, heap *orderHeap) {
	if lr.canceledAtConflict[v] == 0 {
		return
	}
	age := conflicts - lr.canceledAtConflict[v]
	factor := pow95(age)
	heap.setScore(v, heap.score(v)*factor)
	lr.canceledAtConflict[v] = 0
}

// markCanceledByExploration records that v was just unassigned as part of an
// exploration walk rollback, rather than a real backtrack.
func (lr *lrbState) markCanceledByExploration(v int, conflicts int64) {
	lr.canceledAtConflict[v] = conflicts
}

// onBacktrack applies the CHB reward update for v, which is being unassigned
// by a genuine (non-exploration) backtrack, and reinserts it into heap.
func (lr *lrbState) onBacktrack(v int, conflicts int64, heap *orderHeap) {
	age := conflicts - lr.pickedAtConflict[v]
	if age > 0 {
		reward := float64(lr.participated[v]+lr.almostParticipated[v]) / float64(age)
		newScore := lr.stepSize*reward + (1-lr.stepSize)*heap.score(v)
		heap.setScore(v, newScore)
	}
	heap.insert(v)
}

func pow95(age int64) float64 {
	if age <= 0 {
		return 1
	}
	// 0.95^age computed iteratively; ages involved are small enough (bounded
	// by conflicts since the last exploration episode) that this never needs
	// to be a log/exp call.
	f := 1.0
	base := 0.95
	for age > 0 {
		if age&1 == 1 {
			f *= base
		}
		base *= base
		age >>= 1
	}
	return f
}
