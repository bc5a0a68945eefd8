package sat

// lcmSimplifiedThreshold bounds how many times a clause may be examined by
// LCM before it's skipped as converged (spec sec 4.6 "flagged simplified
// past threshold").
const lcmSimplifiedThreshold = 5

// runLCM performs one clause-vivification pass over CORE, TIER2 and the
// originals touched by conflict analysis since the last pass (spec sec 4.6).
// It must only be called at decision level 0. It returns false if
// vivification discovers the instance is unsatisfiable.
func (s *Solver) runLCM() bool {
	s.stats.LCMPasses++

	for _, ref := range s.learntsCore {
		if !s.vivifyClause(ref) {
			return false
		}
	}
	for _, ref := range s.learntsTier2 {
		if !s.vivifyClause(ref) {
			return false
		}
	}
	for _, ref := range s.usedClauses {
		if !s.vivifyClause(ref) {
			return false
		}
	}

	for _, ref := range s.usedClauses {
		c := s.arena.get(ref)
		if !c.deleted() {
			c.setUsed(false)
		}
	}
	s.usedClauses = s.usedClauses[:0]

	s.nextLCM = s.conflicts + s.lcmInterval
	s.lcmInterval += s.opts.LCMIncrement

	s.maybeGC()
	return true
}

// vivifyClause attempts to shorten one clause via tentative unit propagation
// under the negation of its literals, adopting any shorter body discovered
// along the way (spec sec 4.6). It returns false only when the shortened
// clause turns out to force the instance UNSAT.
func (s *Solver) vivifyClause(ref ClauseRef) bool {
	c := s.arena.get(ref)
	if c.deleted() || c.simplified >= lcmSimplifiedThreshold {
		return true
	}
	c.simplified++

	orig := c.literals
	cursor := len(s.trail.trail)

	out := make([]Literal, 0, len(orig))

	for _, l := range orig {
		switch s.trail.value(l) {
		case True:
			// l is already implied by the assumptions so far: everything
			// else in the clause is redundant under them.
			out = append(out, l)
			goto unwind
		case False:
			continue
		}

		out = append(out, l)
		s.trail.newDecisionLevel()
		s.simpleEnqueue(l.Opposite(), NoClauseRef)
		if confl := s.simplePropagate(); confl != NoClauseRef {
			out = s.simpleAnalyze(confl, out)
			goto unwind
		}
	}

unwind:
	// The LBD is read before unwinding, which resets the levels of the
	// tentatively assigned variables.
	lbd := s.computeLBD(out)
	s.simpleCancelUntil(cursor)

	if len(out) >= len(orig) {
		return true
	}

	switch len(out) {
	case 0:
		s.markUNSAT()
		return false
	case 1:
		s.detachClause(ref)
		s.arena.free(ref)
		s.proof.deleteClause(orig)
		s.uncheckedEnqueue(out[0], NoClauseRef)
		s.stats.LCMUnits++
		if s.propagate() != NoClauseRef {
			s.markUNSAT()
			return false
		}
		return true
	}

	s.detachClause(ref)
	c.literals = out
	c.prevPos = 2
	s.attachClause(ref)
	s.proof.deleteClause(orig)
	s.proof.addClause(out)
	s.stats.LCMShortened++

	if lbd < int(c.lbd) {
		c.lbd = uint32(lbd)
		if c.tier == tierTier2 && lbd <= s.coreLBDCut {
			c.tier = tierCore
		}
	}
	return true
}

// simplePropagate mirrors propagate but never touches heuristic bookkeeping:
// LCM's tentative assumptions must not bump activities or reward state.
func (s *Solver) simplePropagate() ClauseRef {
	for s.trail.qhead < len(s.trail.trail) {
		p := s.trail.trail[s.trail.qhead]
		s.trail.qhead++

		if confl := s.simplePropagateBinary(p); confl != NoClauseRef {
			s.drainQueue()
			return confl
		}
		if confl := s.simplePropagateLong(p); confl != NoClauseRef {
			s.drainQueue()
			return confl
		}
	}
	return NoClauseRef
}

func (s *Solver) simpleEnqueue(p Literal, reason ClauseRef) {
	s.trail.assigns[p] = True
	s.trail.assigns[p.Opposite()] = False
	v := p.VarID()
	s.trail.level[v] = s.trail.decisionLevel()
	s.trail.reason[v] = reason
	s.trail.trail = append(s.trail.trail, p)
}

func (s *Solver) simplePropagateBinary(p Literal) ClauseRef {
	ws := s.watch.watchesBin[p]
	for _, w := range ws {
		switch s.trail.value(w.blocker) {
		case False:
			return w.ref
		case Unknown:
			s.simpleEnqueue(w.blocker, w.ref)
		}
	}
	return NoClauseRef
}

func (s *Solver) simplePropagateLong(p Literal) ClauseRef {
	ws := s.watch.watches[p]
	keep := ws[:0]
	conflict := NoClauseRef

	for i := 0; i < len(ws); i++ {
		w := ws[i]
		if s.trail.value(w.blocker) == True {
			keep = append(keep, w)
			continue
		}
		c := s.arena.get(w.ref)
		lits := c.literals

		opp := p.Opposite()
		if lits[0] == opp {
			lits[0], lits[1] = lits[1], lits[0]
		}
		first := lits[0]
		if first != w.blocker && s.trail.value(first) == True {
			keep = append(keep, watcher{w.ref, first})
			continue
		}

		moved := false
		for idx := 2; idx < len(lits); idx++ {
			if s.trail.value(lits[idx]) != False {
				lits[1], lits[idx] = lits[idx], lits[1]
				c.prevPos = idx
				s.watch.attach(w.ref, lits[1], lits[0])
				moved = true
				break
			}
		}
		if moved {
			continue
		}

		keep = append(keep, w)
		if s.trail.value(first) == False {
			conflict = w.ref
			i++
			keep = append(keep, ws[i:]...)
			break
		}
		s.simpleEnqueue(first, w.ref)
	}

	s.watch.watches[p] = keep
	return conflict
}

// simpleAnalyze walks the trail back from a conflict discovered during
// vivification without bumping any heuristic state, producing the subset of
// `out`'s assumed literals that were actually necessary to reach it (spec
// sec 4.6 simpleAnalyze). The result replaces out as the tentative clause
// body; assumption literals appear falsified in the clauses walked, which is
// already their original clause polarity.
func (s *Solver) simpleAnalyze(confl ClauseRef, out []Literal) []Literal {
	s.seenVar.Clear()
	queue := []ClauseRef{confl}
	seenLits := map[Literal]bool{}

	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		c := s.arena.get(ref)
		for _, q := range c.literals {
			v := q.VarID()
			if s.seenVar.Contains(v) || s.trail.levelOf(v) == 0 {
				continue
			}
			s.seenVar.Add(v)
			if r := s.trail.reasonOf(v); r != NoClauseRef {
				queue = append(queue, r)
			} else {
				seenLits[q] = true
			}
		}
	}

	shortened := out[:0]
	for _, l := range out {
		if seenLits[l] {
			shortened = append(shortened, l)
		}
	}
	if len(shortened) == 0 {
		// Degenerate case: keep the assumption that directly produced the
		// conflict so the clause is never emptied outright.
		shortened = append(shortened, out[len(out)-1])
	}
	return shortened
}

// simpleCancelUntil unwinds tentative LCM assignments back to cursor without
// touching heap membership or LRB bookkeeping (spec sec 4.6: "unwind all
// tentative assignments back to the cursor").
func (s *Solver) simpleCancelUntil(cursor int) {
	for i := len(s.trail.trail) - 1; i >= cursor; i-- {
		p := s.trail.trail[i]
		v := p.VarID()
		s.trail.assigns[p] = Unknown
		s.trail.assigns[p.Opposite()] = Unknown
		s.trail.reason[v] = NoClauseRef
		s.trail.level[v] = -1
	}
	s.trail.trail = s.trail.trail[:cursor]
	for len(s.trail.trailLim) > 0 && s.trail.trailLim[len(s.trail.trailLim)-1] >= cursor {
		s.trail.trailLim = s.trail.trailLim[:len(s.trail.trailLim)-1]
	}
	s.trail.qhead = cursor
}
