package sat

import "sync/atomic"

// ema is an exponential moving average, adapted from the teacher's sat.EMA.
type ema struct {
	decay float64
	value float64
	init  bool
}

func newEMA(decay float64) ema {
	return ema{decay: decay}
}

func (e *ema) add(x float64) {
	if !e.init {
		e.init = true
		e.value = x
		return
	}
	e.value = e.decay*e.value + x*(1-e.decay)
}

func (e *ema) val() float64 { return e.value }

// lbdQueueLen is the fixed size of the bounded recent-LBD queue used by the
// VSIDS glucose-style restart test.
const lbdQueueLen = 50

// restartController implements both restart schedules (spec sec 4.8): a
// glucose-style "recent LBD average vs global LBD average" test while in
// VSIDS mode, and a Luby sequence while in LRB mode. It also owns the
// phase-1 / wall-clock mode-switch bookkeeping.
type restartController struct {
	rFirst int
	rInc   float64

	// VSIDS restart state. lbdQueue is a fixed-capacity ring buffer holding
	// the most recent lbdQueueLen LBD values.
	lbdQueue       *Queue[int]
	lbdQueueSum    int
	globalLBDSum   int64
	conflictsVSIDS int64

	// LRB restart state.
	lubyIndex          int64
	conflictsAtRestart int64
	nextLRBBound       int64

	phase1Done      bool
	phase1Conflicts int64 // fixed 10000

	// switchMode is set by the wall-clock mode-switch timer, which runs on
	// its own goroutine, and consumed at the next restart boundary while in
	// LRB mode; an atomic word per spec sec 5's signal-flag guidance.
	switchMode atomic.Bool
}

// resetVSIDSQueue clears the glucose-style recent/global LBD bookkeeping,
// used when switching back from LRB to VSIDS so stale LBD history from the
// LRB phase doesn't influence the next VSIDS restart decision.
func (r *restartController) resetVSIDSQueue() {
	r.lbdQueue.Clear()
	r.lbdQueueSum = 0
	r.globalLBDSum = 0
	r.conflictsVSIDS = 0
}

// armPhase1 marks the VSIDS->LRB switch and schedules the first LRB restart.
func (r *restartController) armPhase1() {
	r.phase1Done = true
	r.nextLRBBound = r.nextLRBRestartBound()
}

func newRestartController(rFirst int, rInc float64) *restartController {
	return &restartController{
		rFirst:          rFirst,
		rInc:            rInc,
		phase1Conflicts: 10000,
		lbdQueue:        NewQueue[int](lbdQueueLen),
	}
}

// pushLBD feeds one conflict's LBD into the VSIDS restart statistics.
func (r *restartController) pushLBD(lbd int) {
	r.globalLBDSum += int64(lbd)
	r.conflictsVSIDS++
	if r.lbdQueue.Size() == lbdQueueLen {
		r.lbdQueueSum -= r.lbdQueue.Pop()
	}
	r.lbdQueue.Push(lbd)
	r.lbdQueueSum += lbd
}

// shouldRestartVSIDS implements: queue full and avg(queue)*0.8 > global_lbd_sum/conflicts.
func (r *restartController) shouldRestartVSIDS() bool {
	if r.lbdQueue.Size() < lbdQueueLen {
		return false
	}
	if r.conflictsVSIDS == 0 {
		return false
	}
	avgRecent := float64(r.lbdQueueSum) / float64(lbdQueueLen)
	avgGlobal := float64(r.globalLBDSum) / float64(r.conflictsVSIDS)
	return avgRecent*0.8 > avgGlobal
}

// luby computes the Luby sequence value for restart index i using the given
// factor, following the standard recursive definition: 1,1,2,1,1,2,4,...
func luby(factor float64, i int64) float64 {
	// Find the finite subsequence length k such that i+1 == 2^k - 1.
	var size int64 = 1
	var seq int64 = 0
	for size < i+1 {
		seq++
		size = 2*size + 1
	}
	for size != i+1 {
		size = (size - 1) / 2
		seq--
		i %= size
	}
	result := 1.0
	for j := int64(0); j < seq; j++ {
		result *= factor
	}
	return result
}

// nextLRBRestartBound returns nof_conflicts for the current LRB restart index
// and advances the index.
func (r *restartController) nextLRBRestartBound() int64 {
	bound := int64(luby(r.rInc, r.lubyIndex)) * int64(r.rFirst)
	r.lubyIndex++
	return bound
}

// shouldRestartLRB reports whether conflicts since the last LRB restart
// reached the current Luby bound.
func (r *restartController) shouldRestartLRB(conflictsSinceRestart int64, bound int64) bool {
	return conflictsSinceRestart >= bound
}
