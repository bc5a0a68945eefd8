package sat

import "math"

// explorerState tracks the bookkeeping needed to decide when to trigger an
// exploration episode (spec sec 4.9) and whether one is currently running.
type explorerState struct {
	mW   int
	mS   int
	prTh float64

	decisionsWithConflicts    int64
	decisionsWithoutConflicts int64
	successiveWithoutConfs    int64
	cdPhaseCount              int64
	avgCDPhaseLen             ema

	exploring bool
}

func newExplorerState(mW, mS int, prTh float64) *explorerState {
	return &explorerState{mW: mW, mS: mS, prTh: prTh, avgCDPhaseLen: newEMA(0.95)}
}

// onDecision is called once per ordinary (non-exploration) branch decision.
func (e *explorerState) onDecision() {
	e.successiveWithoutConfs++
	e.decisionsWithoutConflicts++
}

// onConflict is called when a conflict ends the current CD-phase.
func (e *explorerState) onConflict() {
	if e.decisionsWithoutConflicts > 0 {
		e.decisionsWithoutConflicts--
	}
	e.decisionsWithConflicts++
	e.cdPhaseCount++
	e.avgCDPhaseLen.add(float64(e.successiveWithoutConfs))
	e.successiveWithoutConfs = 0
}

// toReachConflict is the running ratio of conflict-free decisions to
// conflict-ending decisions.
func (e *explorerState) toReachConflict() float64 {
	if e.decisionsWithConflicts == 0 {
		return 0
	}
	return float64(e.decisionsWithoutConflicts) / float64(e.decisionsWithConflicts)
}

func (e *explorerState) shouldTrigger(draw float64) bool {
	if e.cdPhaseCount == 0 || e.decisionsWithConflicts == 0 {
		return false
	}
	threshold := math.Ceil(e.toReachConflict())
	if float64(e.successiveWithoutConfs) < threshold {
		return false
	}
	return draw <= e.prTh/100
}

// explorationStep records one step of one walk in an exploration episode.
type explorationStep struct {
	v         int
	conflict  bool
	finalLBD  int
}

// runExploration performs one exploration episode: up to mW random walks of
// up to mS steps each, none of which bump any heuristic score directly or
// keep any learnt clause; at the end, per-variable scores accumulated from
// conflict-terminated walks are applied to the LRB heap.
func (s *Solver) runExploration() {
	es := s.explorer
	es.exploring = true
	defer func() { es.exploring = false }()

	s.stats.ExplorationRuns++

	dLevel := s.trail.decisionLevel()
	walkScore := map[int]float64{}
	varOcc := map[int]int{}
	lbdSum, lbdCount := 0, 0

	type walkRecord struct {
		steps      []explorationStep
		conflict   bool
		lastLBD    int
	}
	var walks []walkRecord

	for w := 0; w < es.mW; w++ {
		var rec walkRecord
		for step := 0; step < es.mS; step++ {
			v, ok := s.randomUnassignedVar()
			if !ok {
				break
			}
			pol := s.trail.polarity[v]
			lit := PositiveLiteral(v)
			if pol == False {
				lit = NegativeLiteral(v)
			}
			s.trail.newDecisionLevel()
			s.uncheckedEnqueue(lit, NoClauseRef)
			confl := s.propagate()

			st := explorationStep{v: v, conflict: confl != NoClauseRef}
			if confl != NoClauseRef {
				_, _, lbd := s.analyze(confl)
				st.finalLBD = lbd
				rec.steps = append(rec.steps, st)
				rec.conflict = true
				rec.lastLBD = lbd
				lbdSum += lbd
				lbdCount++
				break
			}
			rec.steps = append(rec.steps, st)
		}
		s.cancelUntil(dLevel)
		walks = append(walks, rec)
	}

	if lbdCount == 0 {
		return
	}
	avgLBD := float64(lbdSum) / float64(lbdCount)

	for _, rec := range walks {
		if !rec.conflict || float64(rec.lastLBD) > avgLBD {
			continue
		}
		n := len(rec.steps)
		for i, st := range rec.steps {
			weight := (1.0 / float64(rec.lastLBD)) * math.Pow(0.9, float64(n-i-1))
			walkScore[st.v] += weight
			varOcc[st.v]++
		}
	}

	s.updateHeapWithExpScore(walkScore, varOcc)
}

// updateHeapWithExpScore applies the per-episode scores to the active
// branching heap, per spec: bump by expScore[v]*(var_inc if VSIDS else
// activity[top]), sifting up on increase.
func (s *Solver) updateHeapWithExpScore(walkScore map[int]float64, varOcc map[int]int) {
	heap := s.activeHeap()
	prevTop, topScore, hasTop := heap.top()
	if !hasTop {
		topScore = 1
	}
	for v, total := range walkScore {
		expScore := total / float64(varOcc[v])
		var scale float64
		if s.mode == modeVSIDS {
			scale = s.varInc
		} else {
			scale = topScore
		}
		// heap.bump re-heapifies via yagh.Put, sifting the improved key
		// toward the root; no separate sift-up call is needed.
		heap.bump(v, expScore*scale)
	}
	if newTop, _, ok := heap.top(); ok && (!hasTop || newTop != prevTop) {
		s.stats.ExplorationTopReplaced++
	}
}

// randomUnassignedVar draws a uniformly random currently-unassigned,
// decision-eligible variable, for exploration walks and rnd-freq decisions.
// It scans the assignment vector rather than indexing the heap directly,
// since the heap does not expose positional access.
func (s *Solver) randomUnassignedVar() (int, bool) {
	n := s.trail.numVars()
	if n == 0 {
		return 0, false
	}
	candidates := s.tmpUnassigned[:0]
	for v := 0; v < n; v++ {
		if s.trail.varValue(v) == Unknown && s.trail.decisionEligible[v] {
			candidates = append(candidates, v)
		}
	}
	s.tmpUnassigned = candidates
	if len(candidates) == 0 {
		return 0, false
	}
	return candidates[s.rng.Intn(len(candidates))], true
}
