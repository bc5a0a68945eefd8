package sat

// trail holds the assignment vector, decision-level boundaries, reasons and
// phase memory described by the spec's "Trail & Assignment" component. The
// heuristic-aware parts of enqueue/cancel (heap membership, LRB bookkeeping)
// live on Solver, which holds the trail in its trail field.
type trail struct {
	// assigns is indexed by Literal: assigns[l] is True iff l currently holds.
	assigns []LBool

	level  []int       // indexed by var
	reason []ClauseRef // indexed by var; NoClauseRef for decisions

	// polarity is the saved phase: the value to try first next time this
	// variable is picked as a decision.
	polarity []LBool

	// decisionEligible marks variables the branching heuristic may pick.
	// Always true in the core; present for the (currently unused) assumption
	// scaffolding mentioned in the non-goals.
	decisionEligible []bool

	trail    []Literal
	trailLim []int
	qhead    int
}

func newTrail() *trail {
	return &trail{}
}

func (t *trail) growVar() {
	t.assigns = append(t.assigns, Unknown, Unknown)
	t.level = append(t.level, -1)
	t.reason = append(t.reason, NoClauseRef)
	t.polarity = append(t.polarity, True) // default: try true first
	t.decisionEligible = append(t.decisionEligible, true)
}

func (t *trail) numVars() int { return len(t.level) }

func (t *trail) decisionLevel() int { return len(t.trailLim) }

func (t *trail) value(l Literal) LBool { return t.assigns[l] }

func (t *trail) varValue(v int) LBool { return t.assigns[PositiveLiteral(v)] }

func (t *trail) levelOf(v int) int { return t.level[v] }

func (t *trail) reasonOf(v int) ClauseRef { return t.reason[v] }

func (t *trail) newDecisionLevel() {
	t.trailLim = append(t.trailLim, len(t.trail))
}

// decisionLiteral returns the decision literal of decision level d (d >= 1).
func (t *trail) decisionLiteral(d int) Literal {
	return t.trail[t.trailLim[d-1]]
}
