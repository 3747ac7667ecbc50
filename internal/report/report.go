// Package report implements the Result Projector: turning a frozen
// Assignment into the structured record described in spec §6 (planning
// list, per-week availability grid, per-week participation grid, counts).
package report

import (
	"sort"
	"strconv"
	"strings"

	"github.com/orchestra-tools/rehearsal-scheduler/internal/models"
	"github.com/orchestra-tools/rehearsal-scheduler/internal/slotmodel"
)

// PlanningEntry is one row of the planning list.
type PlanningEntry struct {
	Morceau      string `json:"Morceau"`
	Jour         string `json:"Jour"`
	Heures       string `json:"Heures"`
	Participants string `json:"Participants"`
}

// Result is the structured output record, mirroring spec §6's JSON shape.
type Result struct {
	Planning       []PlanningEntry                `json:"planning"`
	Disponibilites map[string][]map[string]string `json:"disponibilites"`
	Repartition    map[string][]map[string]string `json:"repartition"`
	Assigned       int                             `json:"assigned"`
	Total          int                             `json:"total"`
	NotAssigned    []string                        `json:"notassigned"`
	Status         models.RunStatus                `json:"status,omitempty"`
	Diagnostics    []string                        `json:"diagnostics,omitempty"`
	RunID          string                          `json:"run_id,omitempty"`

	// ForcedAbsentees maps each assigned piece to the musicians required by
	// it whose availability at the chosen slot is NO (spec §4.5's
	// forced-absentee set). Not part of the wire JSON shape; available to
	// Go callers only.
	ForcedAbsentees map[string][]string `json:"-"`
}

// Build projects the final assignment into the structured output record.
func Build(
	pieces []models.Piece,
	avail models.Availability,
	idx models.DerivedIndexes,
	assignment models.Assignment,
	status models.RunStatus,
	diagnostics []string,
) Result {
	slotOccupant := make(map[string]string, len(assignment))
	for piece, slot := range assignment {
		slotOccupant[slot] = piece
	}

	planning := make([]PlanningEntry, 0, len(pieces))
	forcedAbsentees := make(map[string][]string)
	assignedCount := 0
	var notAssigned []string
	for _, p := range pieces {
		entry := PlanningEntry{
			Morceau:      p.Name,
			Participants: strings.Join(p.Required, ", "),
		}
		if slotID, ok := assignment[p.Name]; ok {
			slot := idx.SlotByID[slotID]
			entry.Jour, entry.Heures = slotmodel.FormatDisplay(slot)
			assignedCount++

			var absentees []string
			for _, m := range p.Required {
				if avail.StatusFor(m, slotID) == models.StatusNo {
					absentees = append(absentees, m)
				}
			}
			if len(absentees) > 0 {
				forcedAbsentees[p.Name] = absentees
			}
		} else {
			entry.Jour = "Non assigné"
			entry.Heures = "—"
			notAssigned = append(notAssigned, p.Name)
		}
		planning = append(planning, entry)
	}

	byWeek := make(map[int][]models.Slot)
	for _, s := range avail.Slots {
		byWeek[s.Week] = append(byWeek[s.Week], s)
	}

	disponibilites := make(map[string][]map[string]string, len(byWeek))
	repartition := make(map[string][]map[string]string, len(byWeek))
	for week, slots := range byWeek {
		sort.Slice(slots, func(i, j int) bool { return slotmodel.LessDisplayOrder(slots[i], slots[j]) })

		key := "SEMAINE_" + strconv.Itoa(week)

		availRows := make([]map[string]string, 0, len(slots))
		partRows := make([]map[string]string, 0, len(slots))
		for _, s := range slots {
			day, hours := slotmodel.FormatDisplay(s)

			availRow := map[string]string{"Jour": day, "Heures": hours}
			for _, m := range avail.Musicians {
				availRow[m] = string(avail.StatusFor(m, s.ID))
			}
			availRows = append(availRows, availRow)

			partRow := map[string]string{"Jour": day, "Heures": hours, "Morceau": ""}
			occupant, hasOccupant := slotOccupant[s.ID]
			var required map[string]struct{}
			if hasOccupant {
				partRow["Morceau"] = occupant
				required = idx.PieceByName[occupant].RequiredSet()
			}
			for _, m := range avail.Musicians {
				if _, needed := required[m]; !needed {
					partRow[m] = string(models.ParticipationNotRequired)
					continue
				}
				switch avail.StatusFor(m, s.ID) {
				case models.StatusYes:
					partRow[m] = string(models.ParticipationRehearsing)
				case models.StatusNo:
					partRow[m] = string(models.ParticipationAbsent)
				case models.StatusMaybe:
					partRow[m] = string(models.ParticipationMaybeAbsent)
				}
			}
			partRows = append(partRows, partRow)
		}
		disponibilites[key] = availRows
		repartition[key] = partRows
	}

	return Result{
		Planning:       planning,
		Disponibilites: disponibilites,
		Repartition:    repartition,
		Assigned:       assignedCount,
		Total:          len(pieces),
		NotAssigned:    notAssigned,
		Status:         status,
		Diagnostics:    diagnostics,
		ForcedAbsentees: forcedAbsentees,
	}
}
