package costeval

import (
	"testing"

	"github.com/orchestra-tools/rehearsal-scheduler/internal/config"
	"github.com/orchestra-tools/rehearsal-scheduler/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildIndexes(pieces []models.Piece, slots []models.Slot) models.DerivedIndexes {
	return models.BuildDerivedIndexes(pieces, slots)
}

func slot(id, day string, dom, sh, sm, eh, em int) models.Slot {
	return models.Slot{ID: id, Day: day, DayOfMonth: dom, StartHour: sh, StartMinute: sm, EndHour: eh, EndMinute: em}
}

// Scenario 1 (spec §8): forced unique slot — strict mode, a NO at a
// non-special slot should price far above the all-yes alternative.
func TestForcedUniqueSlot(t *testing.T) {
	p1 := models.Piece{Name: "P1", Required: []string{"A", "B"}}
	s1 := slot("LUN_05_10:00-12:00", "LUN", 5, 10, 0, 12, 0)
	s2 := slot("MAR_06_10:00-12:00", "MAR", 6, 10, 0, 12, 0)

	avail := models.Availability{
		Musicians: []string{"A", "B"},
		Slots:     []models.Slot{s1, s2},
		Table: map[string]map[string]models.AvailabilityStatus{
			"A": {s1.ID: models.StatusYes, s2.ID: models.StatusNo},
			"B": {s1.ID: models.StatusYes, s2.ID: models.StatusYes},
		},
	}
	idx := buildIndexes([]models.Piece{p1}, avail.Slots)

	cfg := config.Defaults()
	cfg.AbsenceMode = config.AbsenceModeStrict
	cfg.AbsenceThreshold = 0

	eval := New(cfg, idx, avail, models.SpecialSlotSet{})
	eval.SetAssignment(models.Assignment{})

	costS1 := eval.Cost("P1", s1.ID)
	costS2 := eval.Cost("P1", s2.ID)

	assert.Equal(t, 0, costS1)
	assert.GreaterOrEqual(t, costS2, 10000)
	assert.Less(t, costS1, costS2)
}

// Scenario 3: maybe discount vs flat NO.
func TestMaybeDiscountVsFlatNo(t *testing.T) {
	p1 := models.Piece{Name: "P1", Required: []string{"A"}}
	s1 := slot("LUN_05_10:00-12:00", "LUN", 5, 10, 0, 12, 0)
	s2 := slot("MAR_06_10:00-12:00", "MAR", 6, 10, 0, 12, 0)

	avail := models.Availability{
		Musicians: []string{"A"},
		Slots:     []models.Slot{s1, s2},
		Table: map[string]map[string]models.AvailabilityStatus{
			"A": {s1.ID: models.StatusMaybe, s2.ID: models.StatusNo},
		},
	}
	idx := buildIndexes([]models.Piece{p1}, avail.Slots)

	cfg := config.Defaults()
	cfg.AbsenceMode = config.AbsenceModeFlexible
	cfg.AbsenceThreshold = 0
	cfg.MaybePenalty = 10

	eval := New(cfg, idx, avail, models.SpecialSlotSet{})
	eval.SetAssignment(models.Assignment{})

	require.Equal(t, 10, eval.Cost("P1", s1.ID))
	// S2: the NO adds 100, and one absent over a threshold of 0 adds the
	// 10000 bulk-absence term.
	require.Equal(t, 10100, eval.Cost("P1", s2.ID))
}

// Scenario 4: load cap — a musician's third same-day piece should price
// above the loadPenalty-free first two.
func TestLoadCap(t *testing.T) {
	s := slot("LUN_05_10:00-12:00", "LUN", 5, 10, 0, 12, 0)
	p1 := models.Piece{Name: "P1", Required: []string{"A"}}
	p2 := models.Piece{Name: "P2", Required: []string{"A"}}
	p3 := models.Piece{Name: "P3", Required: []string{"A"}}

	avail := models.Availability{
		Musicians: []string{"A"},
		Slots:     []models.Slot{s},
		Table: map[string]map[string]models.AvailabilityStatus{
			"A": {s.ID: models.StatusYes},
		},
	}
	idx := buildIndexes([]models.Piece{p1, p2, p3}, avail.Slots)

	cfg := config.Defaults()
	cfg.MaxLoad = 2
	cfg.LoadPenalty = 50

	eval := New(cfg, idx, avail, models.SpecialSlotSet{})
	// P1 and P2 already assigned to s; evaluate placing P3 there too.
	eval.SetAssignment(models.Assignment{"P1": s.ID, "P2": s.ID})

	cost := eval.Cost("P3", s.ID)
	assert.Greater(t, cost, 0)
}

// Scenario 5: adjacency preference — placing a piece next to another piece
// sharing a musician should be cheaper than placing it further away.
func TestAdjacencyBonus(t *testing.T) {
	s1 := slot("LUN_05_10:00-11:00", "LUN", 5, 10, 0, 11, 0)
	s2 := slot("LUN_05_11:00-12:00", "LUN", 5, 11, 0, 12, 0)
	s3 := slot("LUN_05_14:00-15:00", "LUN", 5, 14, 0, 15, 0)

	p1 := models.Piece{Name: "P1", Required: []string{"A"}}
	p2 := models.Piece{Name: "P2", Required: []string{"A"}}

	avail := models.Availability{
		Musicians: []string{"A"},
		Slots:     []models.Slot{s1, s2, s3},
		Table: map[string]map[string]models.AvailabilityStatus{
			"A": {s1.ID: models.StatusYes, s2.ID: models.StatusYes, s3.ID: models.StatusYes},
		},
	}
	idx := buildIndexes([]models.Piece{p1, p2}, avail.Slots)

	cfg := config.Defaults()
	cfg.GroupBonus = 20
	// Force a same-day load penalty that applies identically regardless of
	// which slot P2 lands in, so the only thing that can still tell the two
	// candidate slots apart is the adjacency bonus itself (the raw cost
	// floors at zero, which would otherwise mask the bonus entirely).
	cfg.MaxLoad = 1
	cfg.LoadPenalty = 30

	eval := New(cfg, idx, avail, models.SpecialSlotSet{})
	eval.SetAssignment(models.Assignment{"P1": s1.ID})

	costAdjacent := eval.Cost("P2", s2.ID)
	costFar := eval.Cost("P2", s3.ID)
	assert.Less(t, costAdjacent, costFar)
}

// Scenario 6: special-slot tolerance — strict mode still relaxes at a
// flagged special slot when absences stay under its own threshold.
func TestSpecialSlotTolerance(t *testing.T) {
	s := slot("LUN_05_10:00-12:00", "LUN", 5, 10, 0, 12, 0)
	musicians := []string{"A", "B", "C", "D", "E", "F"}
	p1 := models.Piece{Name: "P1", Required: musicians}

	table := map[string]map[string]models.AvailabilityStatus{}
	for i, m := range musicians {
		status := models.StatusYes
		if i < 3 {
			status = models.StatusNo
		}
		table[m] = map[string]models.AvailabilityStatus{s.ID: status}
	}
	avail := models.Availability{Musicians: musicians, Slots: []models.Slot{s}, Table: table}
	idx := buildIndexes([]models.Piece{p1}, avail.Slots)

	cfg := config.Defaults()
	cfg.AbsenceMode = config.AbsenceModeStrict
	cfg.AbsenceThreshold = 0
	cfg.SpecialAbsenceThreshold = 5

	special := models.SpecialSlotSet{s.ID: struct{}{}}
	eval := New(cfg, idx, avail, special)
	eval.SetAssignment(models.Assignment{})

	cost := eval.Cost("P1", s.ID)
	assert.Less(t, cost, 10000, "special relaxation should avoid the hard-absence penalty")
}

func TestCacheSoundnessAfterMutation(t *testing.T) {
	s1 := slot("LUN_05_10:00-12:00", "LUN", 5, 10, 0, 12, 0)
	s2 := slot("MAR_06_10:00-12:00", "MAR", 6, 10, 0, 12, 0)
	p1 := models.Piece{Name: "P1", Required: []string{"A"}}
	p2 := models.Piece{Name: "P2", Required: []string{"A"}}

	avail := models.Availability{
		Musicians: []string{"A"},
		Slots:     []models.Slot{s1, s2},
		Table: map[string]map[string]models.AvailabilityStatus{
			"A": {s1.ID: models.StatusYes, s2.ID: models.StatusYes},
		},
	}
	idx := buildIndexes([]models.Piece{p1, p2}, avail.Slots)
	eval := New(config.Defaults(), idx, avail, models.SpecialSlotSet{})

	eval.SetAssignment(models.Assignment{})
	before := eval.Cost("P2", s1.ID)
	require.Equal(t, 0, before)

	eval.SetAssignment(models.Assignment{"P1": s1.ID})
	after := eval.Cost("P2", s1.ID)
	assert.GreaterOrEqual(t, after, 100000000, "placing P2 where P1 already sits must reflect the exclusivity penalty immediately")
}
