package sat

import (
	"fmt"
	"io"
	"math/rand"
	"sync/atomic"
	"time"
)

// branchMode selects which of the two branching heuristics is currently
// driving decisions. The solver keeps both heaps populated at all times (see
// cancelUntil); only the active one is consulted by pickBranchLit.
type branchMode uint8

const (
	modeVSIDS branchMode = iota
	modeLRB
)

// Options holds every configuration knob enumerated in the spec, with
// defaults mirroring the teacher's own DefaultOptions var.
type Options struct {
	// LRB/CHB reward blending (spec sec 4.7).
	StepSize    float64
	StepSizeDec float64
	MinStepSize float64

	// Activity decay (spec sec 4.5, 4.7).
	VarDecay float64
	ClaDecay float64

	// Random decision diversification, independent of the Explorer.
	RndFreq float64
	RndSeed int64

	MinimizationMode int // ccmin-mode: 0 none, 1 basic, 2 deep
	PhaseSaving      int // 0 never, 1 last-decision-only, 2 always

	RFirst int     // Luby restart base
	RInc   float64 // Luby restart factor

	GCFrac float64 // ClauseArena GC trigger threshold

	// Exploration (spec sec 4.9).
	MW   int     // max walks per episode
	MS   int     // max steps per walk
	PrTh float64 // trigger probability, percent

	CoreLBDCut int // promoted to 5 after 100000 conflicts if |CORE| < 100

	Tier2ReduceEvery int64
	LocalReduceEvery int64
	LCMBaseInterval  int64
	LCMIncrement     int64

	ModeSwitchTimeout time.Duration // wall-clock VSIDS<->LRB long-range switch

	MaxConflicts int64
	Timeout      time.Duration

	// ProofWriter, if non-nil, receives a DRAT proof trace (binary variant
	// selected by ProofBinary). Nil disables proof logging entirely.
	ProofWriter io.Writer
	ProofBinary bool

	// Progress, if non-nil, receives periodic human-readable search
	// statistics, generalizing the teacher's hardcoded fmt.Println reporting.
	Progress io.Writer
}

// DefaultOptions mirrors the teacher's DefaultOptions var, extended with the
// values enumerated in spec.md sec 6.
var DefaultOptions = Options{
	StepSize:    0.40,
	StepSizeDec: 1e-6,
	MinStepSize: 0.06,

	VarDecay: 0.80,
	ClaDecay: 0.999,

	RndFreq: 0.0,
	RndSeed: 91648253,

	MinimizationMode: 2,
	PhaseSaving:      2,

	RFirst: 100,
	RInc:   2.0,

	GCFrac: 0.20,

	MW:   5,
	MS:   5,
	PrTh: 2,

	CoreLBDCut: 3,

	Tier2ReduceEvery: 10000,
	LocalReduceEvery: 15000,
	LCMBaseInterval:  1000,
	LCMIncrement:     1000,

	ModeSwitchTimeout: 2500 * time.Second,

	MaxConflicts: -1,
	Timeout:      -1,
}

// Solver is the CDCL core: clause database, watch-based propagator, first-UIP
// conflict analyzer, tiered learnt-clause reducer, LCM vivifier, the dual
// VSIDS/LRB branching heuristic and its exploration engine, all driven by one
// outer search loop. It is not safe for concurrent use.
type Solver struct {
	opts Options

	arena *ClauseArena
	watch *watchLists
	trail *trail

	constraints  []ClauseRef
	learntsCore  []ClauseRef
	learntsTier2 []ClauseRef
	learntsLocal []ClauseRef

	// usedClauses collects original clauses touched by conflict analysis
	// since the last LCM pass (spec sec 4.4 step 2 / 4.6).
	usedClauses []ClauseRef

	vsids *orderHeap
	lrb   *orderHeap
	mode  branchMode

	varInc    float64
	clauseInc float64

	lrbSt    *lrbState
	restart  *restartController
	explorer *explorerState
	proof    *proofLog

	seenVar   *ResetSet
	seenLevel *ResetSet

	tmpLearnt      []Literal
	analyzeToClear []int
	analyzeStack   []Literal
	tmpUnassigned  []int

	conflicts int64

	coreLBDCut      int
	nextT2Reduce    int64
	nextLocalReduce int64
	nextLCM         int64
	lcmInterval     int64
	simpDBAssigns   int

	rng *rand.Rand

	asynchInterrupt atomic.Bool

	startTime time.Time
	unsat     bool

	stats Statistics

	// Search statistics surfaced directly, matching the teacher's exported
	// fields consumed by the CLI.
	TotalConflicts  int64
	TotalRestarts   int64
	TotalIterations int64

	// Models accumulates every satisfying assignment found by successive
	// Solve calls (the caller typically blocks a model by adding its
	// negation before calling Solve again, as in enumeration).
	Models [][]bool
}

// NewDefaultSolver returns a solver configured with DefaultOptions.
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions)
}

// NewSolver returns a solver configured with the given options.
func NewSolver(opts Options) *Solver {
	s := &Solver{
		opts: opts,

		arena: newClauseArena(),
		watch: newWatchLists(),
		trail: newTrail(),

		vsids: newOrderHeap(),
		lrb:   newOrderHeap(),
		mode:  modeVSIDS,

		varInc:    1,
		clauseInc: 1,

		lrbSt:    newLRBState(opts.StepSize, opts.StepSizeDec, opts.MinStepSize),
		restart:  newRestartController(opts.RFirst, opts.RInc),
		explorer: newExplorerState(opts.MW, opts.MS, opts.PrTh),
		proof:    newProofLog(opts.ProofWriter, opts.ProofBinary),

		seenVar:   &ResetSet{},
		seenLevel: &ResetSet{},

		coreLBDCut:      opts.CoreLBDCut,
		nextT2Reduce:    opts.Tier2ReduceEvery,
		nextLocalReduce: opts.LocalReduceEvery,
		nextLCM:         opts.LCMBaseInterval,
		lcmInterval:     opts.LCMBaseInterval,

		rng: rand.New(rand.NewSource(opts.RndSeed)),
	}
	// seenLevel is indexed by decision level, which can reach numVars (one
	// decision per variable, no propagation cascade) while seenVar is indexed
	// by variable id (0..numVars-1): reserve the extra slot up front so
	// AddVariable's lockstep Expand calls keep seenLevel one ahead of seenVar.
	s.seenLevel.Expand()
	return s
}

// Stats returns a snapshot of the counters maintained for external
// reporting. The core itself never reads them back.
func (s *Solver) Stats() Statistics { return s.stats }

func (s *Solver) NumVariables() int   { return s.trail.numVars() }
func (s *Solver) NumAssigns() int     { return len(s.trail.trail) }
func (s *Solver) NumConstraints() int { return len(s.constraints) }
func (s *Solver) NumLearnts() int {
	return len(s.learntsCore) + len(s.learntsTier2) + len(s.learntsLocal)
}

func (s *Solver) VarValue(v int) LBool    { return s.trail.varValue(v) }
func (s *Solver) LitValue(l Literal) LBool { return s.trail.value(l) }

// AddVariable registers a new variable and returns its id. Variables are
// created once at setup and never destroyed (spec sec 3 Lifecycles).
func (s *Solver) AddVariable() int {
	v := s.trail.numVars()
	s.trail.growVar()
	s.watch.grow()
	s.seenVar.Expand()
	s.seenLevel.Expand()
	s.lrbSt.growVar()
	s.vsids.addVar(0)
	s.lrb.addVar(0)
	return v
}

// AddClause implements the addClause_ contract of spec sec 6: it must be
// called at decision level 0, sorts and deduplicates literals, drops the
// clause if tautological or already satisfied, and latches UNSAT (rather
// than returning an error) if the clause set becomes unsatisfiable. The only
// error return is for the programmer-misuse case of calling above level 0.
func (s *Solver) AddClause(lits []Literal) error {
	if s.trail.decisionLevel() != 0 {
		return fmt.Errorf("sat: AddClause called at decision level %d, want 0", s.trail.decisionLevel())
	}
	if s.unsat {
		return nil
	}

	ls := append([]Literal(nil), lits...)
	sortLiterals(ls)

	out := ls[:0]
	for _, l := range ls {
		if len(out) > 0 {
			prev := out[len(out)-1]
			if l == prev {
				continue // duplicate literal
			}
			if l.VarID() == prev.VarID() {
				return nil // tautological clause (both polarities present)
			}
		}
		switch s.trail.value(l) {
		case True:
			return nil // already satisfied, drop the clause
		case False:
			continue // falsified literal, drop from the clause
		default:
			out = append(out, l)
		}
	}

	switch len(out) {
	case 0:
		s.markUNSAT()
	case 1:
		s.uncheckedEnqueue(out[0], NoClauseRef)
		if s.propagate() != NoClauseRef {
			s.markUNSAT()
		}
	default:
		c := newOriginalClause(out)
		ref := s.arena.alloc(c)
		s.attachClause(ref)
		s.constraints = append(s.constraints, ref)
	}
	return nil
}

func sortLiterals(ls []Literal) {
	// Literal encodes (var*2 + sign), so a plain numeric sort both orders by
	// variable and groups each variable's two polarities adjacently, which
	// is exactly what the dedup/tautology scan in AddClause needs.
	for i := 1; i < len(ls); i++ {
		for j := i; j > 0 && ls[j-1] > ls[j]; j-- {
			ls[j-1], ls[j] = ls[j], ls[j-1]
		}
	}
}

// uncheckedEnqueue assigns p true at the current decision level. The caller
// guarantees p is not already falsified (spec sec 4.3).
func (s *Solver) uncheckedEnqueue(p Literal, reason ClauseRef) {
	v := p.VarID()
	s.trail.assigns[p] = True
	s.trail.assigns[p.Opposite()] = False
	s.trail.level[v] = s.trail.decisionLevel()
	s.trail.reason[v] = reason
	s.trail.trail = append(s.trail.trail, p)

	if s.mode == modeLRB && !s.explorer.exploring {
		s.lrbSt.onAssign(v, s.conflicts)
		s.lrbSt.applyAntiExplorationDecay(v, s.conflicts, s.lrb)
	}
}

// cancelUntil pops trail entries above trail_lim[level] (spec sec 4.3).
func (s *Solver) cancelUntil(level int) {
	if s.trail.decisionLevel() <= level {
		return
	}
	lastLevelStart := s.trail.trailLim[s.trail.decisionLevel()-1]
	lim := s.trail.trailLim[level]

	for i := len(s.trail.trail) - 1; i >= lim; i-- {
		p := s.trail.trail[i]
		v := p.VarID()

		if s.mode == modeLRB {
			if s.explorer.exploring {
				s.lrbSt.markCanceledByExploration(v, s.conflicts)
			} else {
				s.lrbSt.onBacktrack(v, s.conflicts, s.lrb)
			}
		}

		s.trail.assigns[p] = Unknown
		s.trail.assigns[p.Opposite()] = Unknown
		s.trail.reason[v] = NoClauseRef
		s.trail.level[v] = -1

		s.savePhase(v, p, i >= lastLevelStart)

		// Reinsert into both heaps unconditionally: insert is a no-op if the
		// variable is already present (spec sec 4.3: "reinsert into both
		// heaps").
		s.vsids.insert(v)
		s.lrb.insert(v)
	}

	s.trail.trail = s.trail.trail[:lim]
	s.trail.trailLim = s.trail.trailLim[:level]
	if s.trail.qhead > lim {
		s.trail.qhead = lim
	}
}

func (s *Solver) savePhase(v int, p Literal, withinLastLevel bool) {
	switch s.opts.PhaseSaving {
	case 0:
		return
	case 1:
		if !withinLastLevel {
			return
		}
	}
	if p.IsPositive() {
		s.trail.polarity[v] = True
	} else {
		s.trail.polarity[v] = False
	}
}

func (s *Solver) activeHeap() *orderHeap {
	if s.mode == modeVSIDS {
		return s.vsids
	}
	return s.lrb
}

// pickBranchLit pops the active heap until a decision-eligible unassigned
// variable appears (spec sec 4.7), applying the anti-exploration decay to
// the heap top in LRB mode first. rnd-freq diversification reuses the same
// random-variable helper the Explorer uses, per design notes sec 9.
func (s *Solver) pickBranchLit() (Literal, bool) {
	if s.opts.RndFreq > 0 && s.rng.Float64() < s.opts.RndFreq {
		if v, ok := s.randomUnassignedVar(); ok {
			return litWithPolarity(v, s.trail.polarity[v]), true
		}
	}

	heap := s.activeHeap()
	if s.mode == modeLRB {
		if v, _, ok := heap.top(); ok {
			s.lrbSt.applyAntiExplorationDecay(v, s.conflicts, heap)
		}
	}

	v, ok := heap.popEligible(func(v int) bool {
		return s.trail.varValue(v) == Unknown && s.trail.decisionEligible[v]
	})
	if !ok {
		return 0, false
	}
	return litWithPolarity(v, s.trail.polarity[v]), true
}

func litWithPolarity(v int, pol LBool) Literal {
	if pol == False {
		return NegativeLiteral(v)
	}
	return PositiveLiteral(v)
}

func (s *Solver) attachClause(ref ClauseRef) {
	c := s.arena.get(ref)
	switch len(c.literals) {
	case 0, 1:
		return
	case 2:
		s.watch.attachBinary(ref, c.literals[0], c.literals[1])
	default:
		s.watch.attach(ref, c.literals[0], c.literals[1])
		s.watch.attach(ref, c.literals[1], c.literals[0])
	}
}

func (s *Solver) detachClause(ref ClauseRef) {
	c := s.arena.get(ref)
	switch len(c.literals) {
	case 0, 1:
		return
	case 2:
		s.watch.detachBinary(ref, c.literals[0], c.literals[1])
	default:
		s.watch.detach(ref, c.literals[0], c.literals[1])
	}
}

func (s *Solver) locked(ref ClauseRef) bool {
	c := s.arena.get(ref)
	if len(c.literals) == 0 {
		return false
	}
	l0 := c.literals[0]
	return s.trail.value(l0) == True && s.trail.reasonOf(l0.VarID()) == ref
}

func (s *Solver) bumpClauseActivity(c *Clause) {
	c.activity += s.clauseInc
	if c.activity > 1e20 {
		for _, ref := range s.learntsLocal {
			s.arena.get(ref).activity *= 1e-20
		}
		s.clauseInc *= 1e-20
	}
}

func (s *Solver) decayClauseActivity() {
	s.clauseInc *= 1.0 / s.opts.ClaDecay
}

func (s *Solver) decayVSIDS() {
	s.varInc *= 1.0 / s.opts.VarDecay
	if s.varInc > 1e100 {
		s.vsids.rescale(1e-100)
		s.varInc *= 1e-100
	}
}

// recordLearnt places a freshly analyzed learnt clause into its tier bucket
// (spec sec 4.5) and asserts its first literal. A unit learnt clause is
// asserted directly at level 0 without ever entering the clause database.
func (s *Solver) recordLearnt(lits []Literal, lbd int) {
	if len(lits) == 1 {
		s.uncheckedEnqueue(lits[0], NoClauseRef)
		s.proof.addClause(lits)
		return
	}

	if s.conflicts >= 100000 && s.coreLBDCut == s.opts.CoreLBDCut && len(s.learntsCore) < 100 {
		s.coreLBDCut = 5
	}

	c := newLearntClause(lits)
	c.lbd = uint32(lbd)

	var ref ClauseRef
	switch {
	case lbd <= s.coreLBDCut:
		c.tier = tierCore
		ref = s.arena.alloc(c)
		s.learntsCore = append(s.learntsCore, ref)
		s.stats.LearntsCore++
	case lbd <= 6:
		c.tier = tierTier2
		c.touched = s.conflicts
		ref = s.arena.alloc(c)
		s.learntsTier2 = append(s.learntsTier2, ref)
		s.stats.LearntsTier2++
	default:
		c.tier = tierLocal
		ref = s.arena.alloc(c)
		s.bumpClauseActivity(c)
		s.learntsLocal = append(s.learntsLocal, ref)
		s.stats.LearntsLocal++
	}
	s.stats.LearntsTotal++

	s.attachClause(ref)
	s.proof.addClause(lits)
	s.uncheckedEnqueue(lits[0], ref)
}

// reduceDBTier2 demotes TIER2 clauses that haven't been touched recently to
// LOCAL (spec sec 4.5). It also reconciles bucket membership for clauses
// touchResolvent/vivifyClause promoted to CORE in place (spec sec 4.4 step
// 2, sec 4.6): their tier field changes immediately on promotion, but
// moving them out of this bucket is deferred to the next sweep here, since
// conflict analysis runs far more often than reduction.
func (s *Solver) reduceDBTier2() {
	kept := s.learntsTier2[:0]
	for _, ref := range s.learntsTier2 {
		c := s.arena.get(ref)
		if c.deleted() {
			continue
		}
		if c.tier == tierCore {
			s.learntsCore = append(s.learntsCore, ref)
			continue
		}
		if c.touched+50000 < s.conflicts && !s.locked(ref) {
			c.tier = tierLocal
			c.activity = 0
			s.bumpClauseActivity(c)
			s.learntsLocal = append(s.learntsLocal, ref)
			continue
		}
		kept = append(kept, ref)
	}
	s.learntsTier2 = kept
	s.nextT2Reduce = s.conflicts + s.opts.Tier2ReduceEvery
}

// reduceDBLocal deletes the lower half (by activity) of LOCAL clauses, with
// a one-shot reprieve for clauses recently marked removable=false (spec sec
// 4.5). Like reduceDBTier2, it first reconciles clauses touchResolvent
// promoted to CORE or TIER2 in place out of this bucket before considering
// anything for deletion.
func (s *Solver) reduceDBLocal() {
	locals := s.learntsLocal[:0]
	for _, ref := range s.learntsLocal {
		c := s.arena.get(ref)
		if c.deleted() {
			continue
		}
		switch c.tier {
		case tierCore:
			s.learntsCore = append(s.learntsCore, ref)
		case tierTier2:
			s.learntsTier2 = append(s.learntsTier2, ref)
		default:
			locals = append(locals, ref)
		}
	}

	insertionSort(locals, func(i, j int) bool {
		return s.arena.get(locals[i]).activity < s.arena.get(locals[j]).activity
	})

	limit := len(locals) / 2
	kept := make([]ClauseRef, 0, len(locals))
	for i := 0; i < len(locals); i++ {
		ref := locals[i]
		c := s.arena.get(ref)
		if c.deleted() {
			continue
		}
		if i >= limit || s.locked(ref) {
			kept = append(kept, ref)
			continue
		}
		if !c.removable() {
			c.setRemovable(true)
			limit++
			kept = append(kept, ref)
			continue
		}
		s.detachClause(ref)
		s.arena.free(ref)
		s.stats.Deleted++
	}
	s.learntsLocal = kept
	s.nextLocalReduce = s.conflicts + s.opts.LocalReduceEvery
}

// insertionSort avoids importing sort.Slice's reflection-based overhead for
// the small LOCAL bucket resorted every reduction pass.
func insertionSort(refs []ClauseRef, less func(i, j int) bool) {
	for i := 1; i < len(refs); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			refs[j-1], refs[j] = refs[j], refs[j-1]
		}
	}
}

// maybeGC compacts the arena when the wasted fraction crosses gc-frac,
// fixing up every watch-list entry, reason pointer and bucket (spec sec
// 4.1).
func (s *Solver) maybeGC() {
	if s.arena.wastedFraction() <= s.opts.GCFrac {
		return
	}
	relocation := s.arena.gc()
	s.watch.relocate(relocation)

	for v := range s.trail.reason {
		if r := s.trail.reason[v]; r != NoClauseRef {
			s.trail.reason[v] = relocation[r]
		}
	}

	reloc := func(refs []ClauseRef) []ClauseRef {
		out := refs[:0]
		for _, r := range refs {
			if nr := relocation[r]; nr != NoClauseRef {
				out = append(out, nr)
			}
		}
		return out
	}
	s.constraints = reloc(s.constraints)
	s.learntsCore = reloc(s.learntsCore)
	s.learntsTier2 = reloc(s.learntsTier2)
	s.learntsLocal = reloc(s.learntsLocal)
	s.usedClauses = reloc(s.usedClauses)
}

// simplifyRoot removes clauses satisfied at level 0, run opportunistically
// whenever the solver is back at the root with new root-level assignments
// since the last pass (spec sec 4.8).
func (s *Solver) simplifyRoot() {
	if s.unsat || s.trail.decisionLevel() != 0 {
		return
	}
	if len(s.trail.trail) == s.simpDBAssigns {
		return
	}
	s.simpDBAssigns = len(s.trail.trail)

	simplifyBucket := func(refs []ClauseRef) []ClauseRef {
		kept := refs[:0]
		for _, ref := range refs {
			c := s.arena.get(ref)
			if c.deleted() {
				continue
			}
			satisfied := false
			for _, l := range c.literals {
				if s.trail.value(l) == True {
					satisfied = true
					break
				}
			}
			if satisfied {
				s.detachClause(ref)
				s.arena.free(ref)
				continue
			}
			kept = append(kept, ref)
		}
		return kept
	}

	s.constraints = simplifyBucket(s.constraints)
	s.learntsCore = simplifyBucket(s.learntsCore)
	s.learntsTier2 = simplifyBucket(s.learntsTier2)
	s.learntsLocal = simplifyBucket(s.learntsLocal)
}

func (s *Solver) switchToLRB() {
	s.mode = modeLRB
	s.restart.conflictsAtRestart = s.conflicts
	s.restart.armPhase1()
	s.stats.ModeSwitches++
}

func (s *Solver) switchToVSIDS() {
	s.mode = modeVSIDS
	s.restart.switchMode.Store(false)
	s.restart.resetVSIDSQueue()
	for i := range s.lrbSt.participated {
		s.lrbSt.participated[i] = 0
		s.lrbSt.almostParticipated[i] = 0
		s.lrbSt.pickedAtConflict[i] = 0
		s.lrbSt.canceledAtConflict[i] = 0
	}
	s.stats.ModeSwitches++
}

func (s *Solver) wantsRestart() bool {
	if s.mode == modeVSIDS {
		return s.restart.shouldRestartVSIDS()
	}
	since := s.conflicts - s.restart.conflictsAtRestart
	return s.restart.shouldRestartLRB(since, s.restart.nextLRBBound)
}

func (s *Solver) doRestart() {
	s.cancelUntil(0)
	s.stats.Restarts++
	s.TotalRestarts++
	if s.mode == modeLRB {
		s.restart.conflictsAtRestart = s.conflicts
		s.restart.nextLRBBound = s.restart.nextLRBRestartBound()
	}
}

func (s *Solver) armModeSwitchTimer() {
	if s.opts.ModeSwitchTimeout <= 0 {
		return
	}
	time.AfterFunc(s.opts.ModeSwitchTimeout, func() {
		s.restart.switchMode.Store(true)
	})
}

// Interrupt requests the solver stop and return Unknown. Safe to call from a
// signal-handler goroutine; it writes a single atomic flag that search checks
// at the top of every loop iteration, after which Solve backtracks to level 0
// before returning.
func (s *Solver) Interrupt() {
	s.asynchInterrupt.Store(true)
}

// markUNSAT latches the persistent ok=false flag (spec sec 7) and, the first
// time only, emits the empty clause that terminates a DRAT refutation (spec
// sec 6).
func (s *Solver) markUNSAT() {
	if s.unsat {
		return
	}
	s.unsat = true
	s.proof.empty()
}

func (s *Solver) shouldStop() bool {
	if s.unsat {
		return true
	}
	if s.asynchInterrupt.Load() {
		return true
	}
	if s.opts.MaxConflicts >= 0 && s.conflicts >= s.opts.MaxConflicts {
		return true
	}
	if s.opts.Timeout > 0 && time.Since(s.startTime) >= s.opts.Timeout {
		return true
	}
	return false
}

func (s *Solver) saveModel() {
	model := make([]bool, s.NumVariables())
	for v := range model {
		model[v] = s.trail.varValue(v) == True
	}
	s.Models = append(s.Models, model)
}

func (s *Solver) reportProgress() {
	if s.opts.Progress == nil {
		return
	}
	fmt.Fprintf(s.opts.Progress, "c %12.3fs %12d %12d %12d %12d\n",
		time.Since(s.startTime).Seconds(), s.TotalIterations, s.conflicts, s.TotalRestarts, s.NumLearnts())
}

// Solve runs the outer search loop (spec sec 5 "Order of operations within
// search()") to a fixpoint: SAT (a model is in Models), UNSAT (ok latches
// false), or Unknown (interrupt or resource limit).
func (s *Solver) Solve() LBool {
	if s.unsat {
		s.proof.flush()
		return False
	}
	s.startTime = time.Now()
	s.armModeSwitchTimer()

	for {
		status := s.search()
		if status != Unknown {
			s.proof.flush()
			return status
		}
		if s.shouldStop() {
			s.cancelUntil(0)
			s.proof.flush()
			return Unknown
		}
	}
}

// search runs from the current state until a conflict resolves the
// instance, a model is found, a restart boundary is reached, or a stop
// condition fires.
func (s *Solver) search() LBool {
	for {
		if s.shouldStop() {
			return Unknown
		}

		if s.TotalIterations%10000 == 0 {
			s.reportProgress()
		}
		s.TotalIterations++

		if s.trail.decisionLevel() == 0 && s.conflicts >= s.nextLCM {
			if ok := s.runLCM(); !ok {
				return False
			}
		}

		confl := s.propagate()
		if confl != NoClauseRef {
			s.conflicts++
			s.stats.Conflicts++
			s.TotalConflicts++
			if s.restart.phase1Done {
				s.explorer.onConflict()
			}

			if s.trail.decisionLevel() == 0 {
				s.markUNSAT()
				return False
			}

			learnt, btLevel, lbd := s.analyze(confl)
			s.restart.pushLBD(lbd)
			s.cancelUntil(btLevel)
			s.recordLearnt(learnt, lbd)

			if s.mode == modeVSIDS {
				s.decayVSIDS()
				if s.conflicts%5000 == 0 && s.opts.VarDecay < 0.95 {
					s.opts.VarDecay += 0.01
					if s.opts.VarDecay > 0.95 {
						s.opts.VarDecay = 0.95
					}
				}
			} else {
				s.lrbSt.onDecay()
			}
			s.decayClauseActivity()

			if !s.restart.phase1Done && s.conflicts >= s.restart.phase1Conflicts {
				s.switchToLRB()
			}
			continue
		}

		// No conflict: the trail is a fixpoint under the current
		// assignment.
		if s.trail.decisionLevel() == 0 {
			s.simplifyRoot()
			if s.mode == modeLRB && s.restart.switchMode.Load() {
				s.switchToVSIDS()
			}
		}

		if s.conflicts >= s.nextT2Reduce {
			s.reduceDBTier2()
		}
		if s.conflicts >= s.nextLocalReduce {
			s.reduceDBLocal()
			s.maybeGC()
		}

		if s.wantsRestart() {
			s.doRestart()
			return Unknown
		}

		if s.mode == modeLRB && s.restart.phase1Done {
			s.explorer.onDecision()
			if s.explorer.shouldTrigger(s.rng.Float64()) {
				s.runExploration()
			}
		}

		lit, ok := s.pickBranchLit()
		if !ok {
			s.saveModel()
			s.cancelUntil(0)
			return True
		}

		s.stats.Decisions++
		s.trail.newDecisionLevel()
		s.uncheckedEnqueue(lit, NoClauseRef)
	}
}
