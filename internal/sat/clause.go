package sat

import "strings"

// tier classifies a learnt clause into one of the three reduction buckets
// described by the reducer. Original (non-learnt) clauses carry tierNone.
type tier uint8

const (
	tierNone tier = iota
	tierCore
	tierTier2
	tierLocal
)

func (t tier) String() string {
	switch t {
	case tierCore:
		return "core"
	case tierTier2:
		return "tier2"
	case tierLocal:
		return "local"
	default:
		return "none"
	}
}

type status uint8

const (
	statusDeleted status = 0b0001
	statusLearnt  status = 0b0010
	statusUsed    status = 0b0100
	// removable is the inverse of the spec's one-shot reduceDB reprieve: a
	// clause with removable unset survives the next LOCAL reduction pass once,
	// then the bit is set back so it can be swept normally.
	statusRemovable status = 0b1000
)

// Clause is the arena-owned representation of a clause. It must never be
// copied once attached: ClauseRef is the only stable handle across a GC.
type Clause struct {
	literals []Literal

	tier       tier
	statusMask status

	lbd      uint32
	activity float64

	// touched is the conflict counter at which the clause was last involved
	// in a conflict (used for TIER2 -> LOCAL demotion).
	touched int64

	// simplified counts how many times LCM has shortened or examined this
	// clause, used to skip clauses that have already converged.
	simplified int

	// prevPos caches the search cursor used by propagate to resume scanning
	// from the previously found non-false literal instead of position 2.
	prevPos int
}

func newOriginalClause(lits []Literal) *Clause {
	c := &Clause{literals: make([]Literal, len(lits)), prevPos: 2}
	c.statusMask |= statusRemovable
	copy(c.literals, lits)
	return c
}

func newLearntClause(lits []Literal) *Clause {
	c := newOriginalClause(lits)
	c.statusMask |= statusLearnt
	return c
}

func (c *Clause) deleted() bool   { return c.statusMask&statusDeleted != 0 }
func (c *Clause) learnt() bool    { return c.statusMask&statusLearnt != 0 }
func (c *Clause) used() bool      { return c.statusMask&statusUsed != 0 }
func (c *Clause) removable() bool { return c.statusMask&statusRemovable != 0 }

func (c *Clause) setUsed(v bool) {
	if v {
		c.statusMask |= statusUsed
	} else {
		c.statusMask &^= statusUsed
	}
}

func (c *Clause) setRemovable(v bool) {
	if v {
		c.statusMask |= statusRemovable
	} else {
		c.statusMask &^= statusRemovable
	}
}

func (c *Clause) size() int { return len(c.literals) }

func (c *Clause) String() string {
	if len(c.literals) == 0 {
		return "Clause[]"
	}
	sb := strings.Builder{}
	sb.WriteString("Clause[")
	sb.WriteString(c.literals[0].String())
	for _, l := range c.literals[1:] {
		sb.WriteByte(' ')
		sb.WriteString(l.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
