// Package costeval implements the Cost Evaluator: the integer cost of
// placing a piece at a slot under the current partial assignment, memoized
// on (piece, slot) and invalidated on every assignment mutation.
package costeval

import (
	"github.com/orchestra-tools/rehearsal-scheduler/internal/config"
	"github.com/orchestra-tools/rehearsal-scheduler/internal/models"
)

const (
	hardAbsencePenalty  = 10000
	softAbsencePenalty  = 100
	bulkAbsenceUnitCost = 10000
	exclusivityPenalty  = 100000000
)

type cacheKey struct {
	piece string
	slot  string
}

// Evaluator computes cost(piece, slot) against a shared, mutable Assignment.
// Callers must call SetAssignment (or Invalidate, after mutating the
// Assignment in place) whenever the assignment changes; the cache is a flat
// map cleared wholesale rather than finely invalidated, per the design note
// that profiling alone should justify anything fancier.
type Evaluator struct {
	cfg     config.Config
	idx     models.DerivedIndexes
	avail   models.Availability
	special models.SpecialSlotSet

	assignment models.Assignment
	cache      map[cacheKey]int
}

// New builds an Evaluator bound to a configuration bundle, the derived
// indexes built at load time, and the availability table. The assignment is
// initially empty; call SetAssignment before evaluating.
func New(cfg config.Config, idx models.DerivedIndexes, avail models.Availability, special models.SpecialSlotSet) *Evaluator {
	return &Evaluator{
		cfg:        cfg,
		idx:        idx,
		avail:      avail,
		special:    special,
		assignment: models.Assignment{},
		cache:      make(map[cacheKey]int),
	}
}

// SetAssignment replaces the assignment the evaluator scores against and
// clears the cache.
func (e *Evaluator) SetAssignment(a models.Assignment) {
	e.assignment = a
	e.Invalidate()
}

// Invalidate clears the memoization cache. Call after mutating the
// assignment map the evaluator was given by reference.
func (e *Evaluator) Invalidate() {
	e.cache = make(map[cacheKey]int)
}

// Cost returns the non-negative integer cost of placing piece at slot under
// the evaluator's current assignment. Results are cached on (piece, slot)
// until the next Invalidate/SetAssignment call.
func (e *Evaluator) Cost(piece, slot string) int {
	key := cacheKey{piece: piece, slot: slot}
	if v, ok := e.cache[key]; ok {
		return v
	}
	v := e.compute(piece, slot)
	e.cache[key] = v
	return v
}

func (e *Evaluator) compute(piece, slot string) int {
	p, ok := e.idx.PieceByName[piece]
	if !ok {
		return 0
	}

	total := 0
	absents := 0

	isSpecial := e.special.Has(slot)

	// 1. Per-musician availability term.
	for _, m := range p.Required {
		switch e.avail.StatusFor(m, slot) {
		case models.StatusNo:
			if e.cfg.AbsenceMode == config.AbsenceModeStrict && !isSpecial {
				total += hardAbsencePenalty
			} else {
				total += softAbsencePenalty
				absents++
			}
		case models.StatusMaybe:
			total += e.cfg.MaybePenalty
		}
	}

	// 2. Bulk-absence term.
	if e.cfg.AbsenceMode == config.AbsenceModeFlexible || isSpecial {
		threshold := e.cfg.AbsenceThreshold
		if isSpecial {
			threshold = e.cfg.SpecialAbsenceThreshold
		}
		if absents > threshold {
			total += (absents - threshold) * bulkAbsenceUnitCost
		}
	}

	// 3. Slot-exclusivity term.
	for otherPiece, otherSlot := range e.assignment {
		if otherPiece == piece {
			continue
		}
		if otherSlot == slot {
			total += exclusivityPenalty
		}
	}

	// 4. Daily-load term.
	dayKey := dayKeyFor(e.idx, slot)
	for _, m := range p.Required {
		load := 0
		sameSlot := false
		for otherPiece, otherSlot := range e.assignment {
			if otherPiece == piece {
				continue
			}
			other, ok := e.idx.PieceByName[otherPiece]
			if !ok || !requires(other, m) {
				continue
			}
			if dayKeyFor(e.idx, otherSlot) == dayKey {
				load++
			}
			if otherSlot == slot {
				sameSlot = true
			}
		}
		if sameSlot {
			load++
		}
		if load >= e.cfg.MaxLoad {
			total += e.cfg.LoadPenalty * (load - e.cfg.MaxLoad + 1)
		}
	}

	// 5. Adjacency bonus, applied once at the end and floored at zero.
	bonus := 0
	for _, m := range p.Required {
		for _, neighbor := range neighbors(e.idx, slot) {
			for otherPiece, otherSlot := range e.assignment {
				if otherPiece == piece || otherSlot != neighbor {
					continue
				}
				other, ok := e.idx.PieceByName[otherPiece]
				if !ok {
					continue
				}
				if requires(other, m) {
					bonus += e.cfg.GroupBonus
				}
			}
		}
	}

	total -= bonus
	if total < 0 {
		total = 0
	}
	return total
}

func requires(p models.Piece, musician string) bool {
	for _, m := range p.Required {
		if m == musician {
			return true
		}
	}
	return false
}

// dayKeyFor returns the day code (LUN, MAR, ...) a slot falls on, pooling
// every week the schedule spans into the same bucket, matching the source's
// `creneau.split("_")[0]`.
func dayKeyFor(idx models.DerivedIndexes, slotID string) string {
	s, ok := idx.SlotByID[slotID]
	if !ok {
		return ""
	}
	return s.Day
}

// neighbors returns the weekday-local slot ids at positions slot's index ±1
// in its day code's chronologically ordered list (spanning every week the
// schedule covers), per the adjacency-bonus rule in spec §4.3.
func neighbors(idx models.DerivedIndexes, slotID string) []string {
	s, ok := idx.SlotByID[slotID]
	if !ok {
		return nil
	}
	ordered := idx.SlotsByDay[s.Day]
	pos := -1
	for i, id := range ordered {
		if id == slotID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil
	}
	var out []string
	if pos > 0 {
		out = append(out, ordered[pos-1])
	}
	if pos < len(ordered)-1 {
		out = append(out, ordered[pos+1])
	}
	return out
}

