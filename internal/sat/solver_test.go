package sat

import "testing"

// newVars registers n fresh variables and returns a helper to build literals
// by 1-based signed DIMACS integer, mirroring the parser's convention.
func newVars(s *Solver, n int) func(x int) Literal {
	for i := 0; i < n; i++ {
		s.AddVariable()
	}
	return func(x int) Literal {
		if x < 0 {
			return NegativeLiteral(-x - 1)
		}
		return PositiveLiteral(x - 1)
	}
}

func addClause(t *testing.T, s *Solver, lit func(int) Literal, xs ...int) {
	t.Helper()
	lits := make([]Literal, len(xs))
	for i, x := range xs {
		lits[i] = lit(x)
	}
	if err := s.AddClause(lits); err != nil {
		t.Fatalf("AddClause(%v): %v", xs, err)
	}
}

func clauseSatisfied(s *Solver, lit func(int) Literal, xs ...int) bool {
	for _, x := range xs {
		if s.VarValue(lit(x).VarID()) == Lift(x > 0) {
			return true
		}
	}
	return false
}

// TestUnsatXOR is scenario E1: clauses {(1,2),(-1,2),(1,-2),(-1,-2)} encode
// the XOR constraint in both directions simultaneously, which is
// unsatisfiable over 2 variables.
func TestUnsatXOR(t *testing.T) {
	s := NewDefaultSolver()
	lit := newVars(s, 2)
	addClause(t, s, lit, 1, 2)
	addClause(t, s, lit, -1, 2)
	addClause(t, s, lit, 1, -2)
	addClause(t, s, lit, -1, -2)

	if got := s.Solve(); got != False {
		t.Fatalf("Solve() = %v, want False (UNSAT)", got)
	}
	// UNSAT latches: further calls keep returning False without re-deriving.
	if got := s.Solve(); got != False {
		t.Fatalf("second Solve() = %v, want False (UNSAT latched)", got)
	}
}

// TestUnitPropagationUnsat is scenario E2: a chain of implications plus a
// blocking unit clause is refuted purely by unit propagation, with no
// decisions needed.
func TestUnitPropagationUnsat(t *testing.T) {
	s := NewDefaultSolver()
	lit := newVars(s, 3)
	addClause(t, s, lit, 1, 2, 3)
	addClause(t, s, lit, -1, 2)
	addClause(t, s, lit, -2, 3)
	addClause(t, s, lit, -3)

	if got := s.Solve(); got != False {
		t.Fatalf("Solve() = %v, want False (UNSAT)", got)
	}
	if s.Stats().Decisions != 0 {
		t.Errorf("Decisions = %d, want 0 (refuted by unit propagation alone)", s.Stats().Decisions)
	}
}

// TestSatSimple is scenario E3: a small satisfiable instance. Every reported
// model must satisfy every original clause.
func TestSatSimple(t *testing.T) {
	s := NewDefaultSolver()
	lit := newVars(s, 3)
	clauses := [][]int{
		{1, 2},
		{-1, 3},
		{-2, -3},
	}
	for _, c := range clauses {
		addClause(t, s, lit, c...)
	}

	if got := s.Solve(); got != True {
		t.Fatalf("Solve() = %v, want True (SAT)", got)
	}
	for _, c := range clauses {
		if !clauseSatisfied(s, lit, c...) {
			t.Errorf("clause %v not satisfied by reported model", c)
		}
	}
}

// TestIncrementalUnitsLatchUNSAT is scenario E4: unit clauses propagate
// variables to fixed values at level 0, and a later contradicting unit
// clause latches ok=false without ever needing a decision.
func TestIncrementalUnitsLatchUNSAT(t *testing.T) {
	s := NewDefaultSolver()
	lit := newVars(s, 3)

	addClause(t, s, lit, 1)
	addClause(t, s, lit, -1, 2)
	addClause(t, s, lit, -2, 3)

	for _, x := range []int{1, 2, 3} {
		if s.VarValue(lit(x).VarID()) != True {
			t.Errorf("var %d = %v, want True after unit propagation", x, s.VarValue(lit(x).VarID()))
		}
	}

	addClause(t, s, lit, -3)
	if got := s.Solve(); got != False {
		t.Fatalf("Solve() = %v, want False (UNSAT latched by contradicting unit)", got)
	}
}

// TestPigeonholeUnsat is scenario E5: the pigeonhole principle PHP(4,3) (four
// pigeons, three holes) is unsatisfiable, and the solver must learn at least
// one clause to prove it.
func TestPigeonholeUnsat(t *testing.T) {
	const pigeons, holes = 4, 3
	s := NewDefaultSolver()

	// var(p, h) for pigeon p in [0,pigeons), hole h in [0,holes).
	varOf := func(p, h int) int { return p*holes + h + 1 }
	lit := newVars(s, pigeons*holes)

	// Every pigeon sits in at least one hole.
	for p := 0; p < pigeons; p++ {
		xs := make([]int, holes)
		for h := 0; h < holes; h++ {
			xs[h] = varOf(p, h)
		}
		addClause(t, s, lit, xs...)
	}
	// No hole holds two distinct pigeons.
	for h := 0; h < holes; h++ {
		for p1 := 0; p1 < pigeons; p1++ {
			for p2 := p1 + 1; p2 < pigeons; p2++ {
				addClause(t, s, lit, -varOf(p1, h), -varOf(p2, h))
			}
		}
	}

	if got := s.Solve(); got != False {
		t.Fatalf("Solve() = %v, want False (UNSAT)", got)
	}
	if s.Stats().LearntsTotal == 0 {
		t.Errorf("LearntsTotal = 0, want > 0 (UNSAT must be derived via learning)")
	}
}

// TestAddClauseDropsTautologyAndDuplicates exercises the addClause_ contract
// of spec sec 6 directly: a tautological clause is silently dropped (it adds
// no constraint) and duplicate literals within a clause collapse to one.
func TestAddClauseDropsTautologyAndDuplicates(t *testing.T) {
	s := NewDefaultSolver()
	lit := newVars(s, 2)

	before := s.NumConstraints()
	addClause(t, s, lit, 1, -1, 2) // tautological: var 1 appears both ways
	if s.NumConstraints() != before {
		t.Errorf("tautological clause was recorded: NumConstraints = %d, want %d", s.NumConstraints(), before)
	}

	addClause(t, s, lit, 1, 1, 2) // duplicate literal, not tautological
	if s.NumConstraints() != before+1 {
		t.Errorf("NumConstraints = %d, want %d after one real clause", s.NumConstraints(), before+1)
	}
}

// TestModelEnumeration blocks each discovered model and resolves, verifying
// the two satisfying assignments of {(1,2),(-1,3),(-2,-3)} are both found and
// no spurious third model is reported.
func TestModelEnumeration(t *testing.T) {
	s := NewDefaultSolver()
	lit := newVars(s, 3)
	addClause(t, s, lit, 1, 2)
	addClause(t, s, lit, -1, 3)
	addClause(t, s, lit, -2, -3)

	seen := map[string]bool{}
	for s.Solve() == True {
		model := s.Models[len(s.Models)-1]
		key := ""
		for _, b := range model {
			if b {
				key += "1"
			} else {
				key += "0"
			}
		}
		if seen[key] {
			t.Fatalf("model %q reported twice", key)
		}
		seen[key] = true

		block := make([]Literal, len(model))
		for i, b := range model {
			if b {
				block[i] = NegativeLiteral(i)
			} else {
				block[i] = PositiveLiteral(i)
			}
		}
		if err := s.AddClause(block); err != nil {
			t.Fatalf("AddClause(blocking clause): %v", err)
		}
	}
	if len(seen) != 2 {
		t.Fatalf("found %d models, want 2", len(seen))
	}
}
