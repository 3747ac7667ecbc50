// Package models holds the data types shared by the loader, cost evaluator,
// search engine, and result projector: musicians, pieces, slots,
// availability, and the assignment being searched over.
package models

import "sort"

// AvailabilityStatus is a musician's declared availability for one slot.
type AvailabilityStatus string

const (
	StatusYes   AvailabilityStatus = "yes"
	StatusNo    AvailabilityStatus = "no"
	StatusMaybe AvailabilityStatus = "maybe"
)

// ParticipationStatus is a musician's computed participation for one slot
// in the projected result (distinct vocabulary from AvailabilityStatus,
// matching the wire format documented for the output record).
type ParticipationStatus string

const (
	ParticipationRehearsing   ParticipationStatus = "repete"
	ParticipationAbsent       ParticipationStatus = "absent"
	ParticipationMaybeAbsent  ParticipationStatus = "maybe_absent"
	ParticipationNotRequired  ParticipationStatus = "no"
)

// RunStatus is the outcome of a solve attempt.
type RunStatus string

const (
	StatusOptimal     RunStatus = "OPTIMAL"
	StatusFeasible    RunStatus = "FEASIBLE"
	StatusInfeasible  RunStatus = "INFEASIBLE"
)

// Musician is a performer referenced by name in both input tables.
type Musician struct {
	Name string `json:"nom"`
}

// Piece is a rehearsable work requiring a set of musicians.
type Piece struct {
	Name      string   `json:"morceau"`
	Required  []string `json:"musiciens"`
}

// RequiredSet returns Required as a lookup set.
func (p Piece) RequiredSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Required))
	for _, m := range p.Required {
		set[m] = struct{}{}
	}
	return set
}

// Slot is a single rehearsal time window, identified by its canonical id.
// See internal/slotmodel for parsing, formatting, and ordering.
type Slot struct {
	ID          string
	Day         string // LUN, MAR, MER, JEU, VEN, SAM, DIM
	DayOfMonth  int
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
	Week        int // 1-based, assigned by the loader from the date span
}

// Availability is the full by-musician, by-slot availability table.
type Availability struct {
	Musicians []string
	Slots     []Slot
	// Table[musician][slotID] holds the declared status. A missing entry
	// defaults to StatusNo.
	Table map[string]map[string]AvailabilityStatus
}

// StatusFor returns the declared status for a musician/slot pair, defaulting
// to StatusNo when absent from the table.
func (a Availability) StatusFor(musician, slotID string) AvailabilityStatus {
	row, ok := a.Table[musician]
	if !ok {
		return StatusNo
	}
	status, ok := row[slotID]
	if !ok {
		return StatusNo
	}
	return status
}

// SpecialSlotSet is the set of slot ids subject to the special-slot bulk
// absence threshold instead of the ordinary one.
type SpecialSlotSet map[string]struct{}

func (s SpecialSlotSet) Has(slotID string) bool {
	_, ok := s[slotID]
	return ok
}

// Assignment is the mutable state the search engine operates on: a mapping
// from piece name to the slot id it currently occupies. A piece absent from
// the map is unassigned.
type Assignment map[string]string

// Clone returns an independent copy of the assignment.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Unassigned returns the names of pieces in `pieces` absent from the
// assignment, in the input's original order.
func (a Assignment) Unassigned(pieces []Piece) []string {
	var out []string
	for _, p := range pieces {
		if _, ok := a[p.Name]; !ok {
			out = append(out, p.Name)
		}
	}
	return out
}

// DerivedIndexes are precomputed lookups built once after loading, shared
// read-only by the cost evaluator and search engine for the lifetime of a
// run.
type DerivedIndexes struct {
	PieceByName map[string]Piece
	SlotByID    map[string]Slot
	// SlotsByDay groups slot ids by day code (LUN, MAR, ...) alone, pooling
	// every week the schedule spans into one chronologically sorted bucket
	// per weekday, so the adjacency bonus can find a slot's weekday-local
	// neighbors without a scan.
	SlotsByDay map[string][]string
}

// BuildDerivedIndexes constructs the lookups used throughout a run.
func BuildDerivedIndexes(pieces []Piece, slots []Slot) DerivedIndexes {
	idx := DerivedIndexes{
		PieceByName: make(map[string]Piece, len(pieces)),
		SlotByID:    make(map[string]Slot, len(slots)),
		SlotsByDay:  make(map[string][]string),
	}
	for _, p := range pieces {
		idx.PieceByName[p.Name] = p
	}
	for _, s := range slots {
		idx.SlotByID[s.ID] = s
	}
	byDay := make(map[string][]Slot)
	for _, s := range slots {
		byDay[s.Day] = append(byDay[s.Day], s)
	}
	for day, daySlots := range byDay {
		sort.Slice(daySlots, func(i, j int) bool {
			if daySlots[i].DayOfMonth != daySlots[j].DayOfMonth {
				return daySlots[i].DayOfMonth < daySlots[j].DayOfMonth
			}
			return daySlots[i].StartHour*60+daySlots[i].StartMinute <
				daySlots[j].StartHour*60+daySlots[j].StartMinute
		})
		ids := make([]string, len(daySlots))
		for i, s := range daySlots {
			ids[i] = s.ID
		}
		idx.SlotsByDay[day] = ids
	}
	return idx
}
