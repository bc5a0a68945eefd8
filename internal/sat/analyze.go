package sat

// computeLBD counts the number of distinct decision levels (excluding level
// 0) among lits, all of which must be assigned. s.seenLevel is indexed by
// decision level; NewSolver and AddVariable size it to numVars+1 slots, which
// covers every reachable decision level.
func (s *Solver) computeLBD(lits []Literal) int {
	s.seenLevel.Clear()
	n := 0
	for _, l := range lits {
		lvl := s.trail.levelOf(l.VarID())
		if lvl == 0 {
			continue
		}
		if !s.seenLevel.Contains(lvl) {
			s.seenLevel.Add(lvl)
			n++
		}
	}
	return n
}

// touchResolvent applies the per-resolvent bookkeeping of spec sec 4.4 step
// 2: learnt clauses on the resolution path have their LBD recomputed and, if
// it improved, are promoted and given a one-shot reduceDB reprieve; TIER2
// clauses have their touched counter refreshed; original clauses touched by
// the resolution path are marked used and queued in usedClauses for the next
// LCM pass.
func (s *Solver) touchResolvent(ref ClauseRef, c *Clause) {
	if s.explorer.exploring {
		return
	}
	if !c.learnt() {
		if !c.used() && c.simplified == 0 {
			s.usedClauses = append(s.usedClauses, ref)
			c.setUsed(true)
		}
		return
	}
	if c.tier == tierTier2 {
		c.touched = s.conflicts
	}
	lbd := s.computeLBD(c.literals)
	if lbd >= int(c.lbd) {
		return
	}
	c.lbd = uint32(lbd)
	if lbd <= s.coreLBDCut {
		c.tier = tierCore
	} else if lbd <= 6 && c.tier == tierLocal {
		c.tier = tierTier2
		c.touched = s.conflicts
	}
	if lbd <= 30 {
		c.setRemovable(false)
	}
}

// analyze performs first-UIP conflict analysis starting from the clause that
// caused the current conflict. It returns the learnt clause (literal 0 is
// the asserting literal), the backtrack level, and the clause's LBD. The
// solver's trail is not modified; the caller backjumps afterward.
func (s *Solver) analyze(confl ClauseRef) ([]Literal, int, int) {
	currentLevel := s.trail.decisionLevel()

	s.seenVar.Clear()
	s.analyzeToClear = s.analyzeToClear[:0]
	learnt := append(s.tmpLearnt[:0], Literal(0)) // placeholder for the UIP

	pathC := 0
	idx := len(s.trail.trail) - 1
	var p Literal = -1 // sentinel: no pivot selected yet (conflict clause itself)

	for {
		c := s.arena.get(confl)
		s.touchResolvent(confl, c)

		start := 0
		if p != -1 {
			start = 1 // skip the implied literal occupying position 0
		}
		for j := start; j < len(c.literals); j++ {
			q := c.literals[j]
			v := q.VarID()
			if s.seenVar.Contains(v) || s.trail.levelOf(v) == 0 {
				continue
			}
			s.seenVar.Add(v)
			s.analyzeToClear = append(s.analyzeToClear, v)
			if !s.explorer.exploring {
				if s.mode == modeVSIDS {
					s.vsids.bump(v, s.varInc)
				} else {
					s.lrbSt.participated[v]++
				}
			}
			if s.trail.levelOf(v) >= currentLevel {
				pathC++
			} else {
				learnt = append(learnt, q)
			}
		}

		for !s.seenVar.Contains(s.trail.trail[idx].VarID()) {
			idx--
		}
		p = s.trail.trail[idx]
		idx--
		confl = s.trail.reasonOf(p.VarID())
		pathC--
		if pathC == 0 {
			break
		}
	}
	learnt[0] = p.Opposite()

	if s.mode == modeLRB && !s.explorer.exploring {
		s.applyAlmostParticipated(learnt)
	}

	switch s.opts.MinimizationMode {
	case 1:
		learnt = s.minimizeBasic(learnt)
	case 2:
		learnt = s.minimizeDeep(learnt)
	}

	lbd := s.computeLBD(learnt)
	if lbd <= 6 && len(learnt) <= 30 {
		learnt = s.minimizeByBinaryResolution(learnt, lbd)
	}

	backtrackLevel := s.findAssertionLevel(learnt)
	s.tmpLearnt = learnt

	return learnt, backtrackLevel, s.computeLBD(learnt)
}

// applyAlmostParticipated credits LRB "near miss" contributions: for every
// literal retained in the learnt clause, any antecedent of its reason clause
// that was not itself touched by the main walk gets almost_participated
// bumped instead of participated.
func (s *Solver) applyAlmostParticipated(learnt []Literal) {
	for _, l := range learnt[1:] {
		ref := s.trail.reasonOf(l.VarID())
		if ref == NoClauseRef {
			continue
		}
		c := s.arena.get(ref)
		for _, r := range c.literals[1:] {
			v := r.VarID()
			if !s.seenVar.Contains(v) {
				s.lrbSt.almostParticipated[v]++
			}
		}
	}
}

// minimizeBasic drops a learnt literal whose reason's antecedents are all
// already seen (i.e. it adds no information beyond what's already implied by
// the rest of the learnt clause).
func (s *Solver) minimizeBasic(learnt []Literal) []Literal {
	out := learnt[:1]
	for _, l := range learnt[1:] {
		ref := s.trail.reasonOf(l.VarID())
		if ref == NoClauseRef {
			out = append(out, l)
			continue
		}
		c := s.arena.get(ref)
		redundant := true
		for _, r := range c.literals[1:] {
			if !s.seenVar.Contains(r.VarID()) {
				redundant = false
				break
			}
		}
		if redundant {
			s.seenVar.Remove(l.VarID())
		} else {
			out = append(out, l)
		}
	}
	return out
}

// minimizeDeep performs MiniSat-style recursive (here, iterative)
// minimization: a literal is redundant if every one of its reason's
// antecedents is either already seen or is itself transitively redundant,
// restricted by a fast abstract-level bitmask test before doing the
// expensive walk.
func (s *Solver) minimizeDeep(learnt []Literal) []Literal {
	var abstractLevels uint32
	for _, l := range learnt[1:] {
		abstractLevels |= s.abstractLevel(l.VarID())
	}

	out := learnt[:1]
	for _, l := range learnt[1:] {
		ref := s.trail.reasonOf(l.VarID())
		if ref == NoClauseRef || !s.litRedundant(l, abstractLevels) {
			out = append(out, l)
		}
	}
	return out
}

func (s *Solver) abstractLevel(v int) uint32 {
	return 1 << (uint(s.trail.levelOf(v)) & 31)
}

// litRedundant reports whether p's assignment is implied by the rest of the
// (tentative) learnt clause, i.e. whether every antecedent in its
// reason-clause closure is already marked seen or has level 0. It marks new
// variables seen as it explores them so later calls see a larger frontier,
// but rolls the marks back on failure.
func (s *Solver) litRedundant(p Literal, abstractLevels uint32) bool {
	top := len(s.analyzeToClear)
	s.analyzeStack = append(s.analyzeStack[:0], p)

	for len(s.analyzeStack) > 0 {
		lit := s.analyzeStack[len(s.analyzeStack)-1]
		s.analyzeStack = s.analyzeStack[:len(s.analyzeStack)-1]

		ref := s.trail.reasonOf(lit.VarID())
		if ref == NoClauseRef {
			s.rollbackSeen(top)
			return false
		}
		c := s.arena.get(ref)

		for _, q := range c.literals[1:] {
			v := q.VarID()
			if s.seenVar.Contains(v) || s.trail.levelOf(v) == 0 {
				continue
			}
			if s.trail.reasonOf(v) != NoClauseRef && s.abstractLevel(v)&abstractLevels != 0 {
				s.seenVar.Add(v)
				s.analyzeToClear = append(s.analyzeToClear, v)
				s.analyzeStack = append(s.analyzeStack, q)
			} else {
				s.rollbackSeen(top)
				return false
			}
		}
	}
	return true
}

func (s *Solver) rollbackSeen(top int) {
	for i := top; i < len(s.analyzeToClear); i++ {
		s.seenVar.Remove(s.analyzeToClear[i])
	}
	s.analyzeToClear = s.analyzeToClear[:top]
}

// minimizeByBinaryResolution drops further learnt literals that are
// redundant against a binary clause already present in the database: if
// (learnt[0] or b) is a known binary clause and b is assigned true and its
// variable is seen, not(b)'s occurrence in learnt is implied away.
func (s *Solver) minimizeByBinaryResolution(learnt []Literal, lbd int) []Literal {
	p := learnt[0].Opposite()
	dropped := false
	for _, w := range s.watch.watchesBin[p] {
		imp := w.blocker
		if s.seenVar.Contains(imp.VarID()) && s.trail.value(imp) == True {
			s.seenVar.Remove(imp.VarID())
			dropped = true
		}
	}
	if !dropped {
		return learnt
	}
	out := learnt[:1]
	for _, l := range learnt[1:] {
		if s.seenVar.Contains(l.VarID()) {
			out = append(out, l)
		}
	}
	return out
}

// findAssertionLevel picks the second watch for the freshly learnt clause:
// the literal with the highest decision level other than the UIP, and swaps
// it into position 1. The backtrack level is that literal's level, or 0 for
// a unit clause.
func (s *Solver) findAssertionLevel(learnt []Literal) int {
	if len(learnt) == 1 {
		return 0
	}
	maxI := 1
	maxLevel := s.trail.levelOf(learnt[1].VarID())
	for i := 2; i < len(learnt); i++ {
		lvl := s.trail.levelOf(learnt[i].VarID())
		if lvl > maxLevel {
			maxLevel = lvl
			maxI = i
		}
	}
	learnt[1], learnt[maxI] = learnt[maxI], learnt[1]
	return maxLevel
}
