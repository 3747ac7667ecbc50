package search

import (
	"context"
	"testing"

	"github.com/orchestra-tools/rehearsal-scheduler/internal/config"
	"github.com/orchestra-tools/rehearsal-scheduler/internal/costeval"
	"github.com/orchestra-tools/rehearsal-scheduler/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slot(id, day string, dom, sh, sm, eh, em int) models.Slot {
	return models.Slot{ID: id, Day: day, DayOfMonth: dom, StartHour: sh, StartMinute: sm, EndHour: eh, EndMinute: em}
}

// Scenario 1 (spec §8): a piece with a musician unavailable at one of two
// candidate slots should land on the other, with status OPTIMAL.
func TestForcedUniqueSlotEndToEnd(t *testing.T) {
	s1 := slot("LUN_05_10:00-12:00", "LUN", 5, 10, 0, 12, 0)
	s2 := slot("MAR_06_10:00-12:00", "MAR", 6, 10, 0, 12, 0)
	p1 := models.Piece{Name: "P1", Required: []string{"A", "B"}}

	avail := models.Availability{
		Musicians: []string{"A", "B"},
		Slots:     []models.Slot{s1, s2},
		Table: map[string]map[string]models.AvailabilityStatus{
			"A": {s1.ID: models.StatusYes, s2.ID: models.StatusNo},
			"B": {s1.ID: models.StatusYes, s2.ID: models.StatusYes},
		},
	}
	pieces := []models.Piece{p1}
	idx := models.BuildDerivedIndexes(pieces, avail.Slots)

	cfg := config.Defaults()
	cfg.AbsenceMode = config.AbsenceModeStrict
	cfg.AbsenceThreshold = 0
	cfg.GenerationTimeLimitSeconds = 2
	cfg.MaxIterationsPerRestart = 100

	eval := costeval.New(cfg, idx, avail, models.SpecialSlotSet{})
	engine := New(cfg, pieces, idx, eval, 1, nil, nil)

	result := engine.Run(context.Background())

	require.Equal(t, models.StatusOptimal, result.Status)
	assert.Equal(t, s1.ID, result.Assignment["P1"])
}

// Scenario 2: slot exclusivity — two pieces sharing their only musician and
// a single slot can't both be assigned there.
func TestSlotExclusivityEndToEnd(t *testing.T) {
	s1 := slot("LUN_05_10:00-12:00", "LUN", 5, 10, 0, 12, 0)
	p1 := models.Piece{Name: "P1", Required: []string{"A"}}
	p2 := models.Piece{Name: "P2", Required: []string{"A"}}

	avail := models.Availability{
		Musicians: []string{"A"},
		Slots:     []models.Slot{s1},
		Table: map[string]map[string]models.AvailabilityStatus{
			"A": {s1.ID: models.StatusYes},
		},
	}
	pieces := []models.Piece{p1, p2}
	idx := models.BuildDerivedIndexes(pieces, avail.Slots)

	cfg := config.Defaults()
	cfg.GenerationTimeLimitSeconds = 2
	cfg.MaxIterationsPerRestart = 200

	eval := costeval.New(cfg, idx, avail, models.SpecialSlotSet{})
	engine := New(cfg, pieces, idx, eval, 7, nil, nil)

	result := engine.Run(context.Background())

	assignedCount := 0
	for _, p := range pieces {
		if _, ok := result.Assignment[p.Name]; ok {
			assignedCount++
		}
	}
	assert.Equal(t, 1, assignedCount, "exactly one of the two pieces should end up assigned")
}

func TestDeterminismUnderFixedSeed(t *testing.T) {
	s1 := slot("LUN_05_10:00-11:00", "LUN", 5, 10, 0, 11, 0)
	s2 := slot("LUN_05_11:00-12:00", "LUN", 5, 11, 0, 12, 0)
	s3 := slot("MAR_06_10:00-11:00", "MAR", 6, 10, 0, 11, 0)
	p1 := models.Piece{Name: "P1", Required: []string{"A"}}
	p2 := models.Piece{Name: "P2", Required: []string{"A", "B"}}
	p3 := models.Piece{Name: "P3", Required: []string{"B"}}

	avail := models.Availability{
		Musicians: []string{"A", "B"},
		Slots:     []models.Slot{s1, s2, s3},
		Table: map[string]map[string]models.AvailabilityStatus{
			"A": {s1.ID: models.StatusYes, s2.ID: models.StatusYes, s3.ID: models.StatusMaybe},
			"B": {s1.ID: models.StatusMaybe, s2.ID: models.StatusYes, s3.ID: models.StatusYes},
		},
	}
	pieces := []models.Piece{p1, p2, p3}
	idx := models.BuildDerivedIndexes(pieces, avail.Slots)
	cfg := config.Defaults()
	cfg.GenerationTimeLimitSeconds = 1
	cfg.MaxIterationsPerRestart = 50

	run := func() models.Assignment {
		eval := costeval.New(cfg, idx, avail, models.SpecialSlotSet{})
		engine := New(cfg, pieces, idx, eval, 42, nil, nil)
		return engine.Run(context.Background()).Assignment
	}

	a := run()
	b := run()
	assert.Equal(t, a, b, "identical inputs, configuration, and seed must produce identical assignments")
}
