// Package search implements the Search Engine: greedy seeding, iterative
// min-conflicts repair, and a wall-clock-bounded restart loop that keeps the
// best assignment ever seen.
package search

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/orchestra-tools/rehearsal-scheduler/internal/config"
	"github.com/orchestra-tools/rehearsal-scheduler/internal/costeval"
	"github.com/orchestra-tools/rehearsal-scheduler/internal/models"
	"go.uber.org/zap"
)

const (
	// unassignedSearchCost is the placeholder cost for an unassigned piece
	// while the search is running: a greediness knob, deliberately distinct
	// from unassignedFinalCost (see spec design notes).
	unassignedSearchCost = 500
	// unassignedFinalCost is the weight given to an unassigned piece in the
	// final accounting used to pick the best-kept assignment.
	unassignedFinalCost = 1000
	// seedThreshold is the ceiling a seeding candidate's cost must fall
	// strictly under to be assigned during seeding.
	seedThreshold = 1000
	// maxRestarts caps the outer restart loop; in practice the wall-clock
	// deadline ends the search first.
	maxRestarts = 1_000_000
)

// Diagnostic is one non-fatal, structured progress record surfaced to the
// caller instead of only logged, per spec §7's optional diagnostics list.
type Diagnostic struct {
	Message string
}

// Engine runs one scheduling search to completion.
type Engine struct {
	cfg     config.Config
	pieces  []models.Piece
	idx     models.DerivedIndexes
	allSlot []string
	eval    *costeval.Evaluator

	rng     *rand.Rand
	logger  *zap.Logger
	metrics *Metrics
}

// New builds an Engine. seed drives the engine's injectable random source
// (the only source of non-determinism allowed: picking among the top-k
// conflicted pieces during repair).
func New(cfg config.Config, pieces []models.Piece, idx models.DerivedIndexes, eval *costeval.Evaluator, seed int64, logger *zap.Logger, metrics *Metrics) *Engine {
	allSlot := make([]string, 0, len(idx.SlotByID))
	for id := range idx.SlotByID {
		allSlot = append(allSlot, id)
	}
	sort.Strings(allSlot)

	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	return &Engine{
		cfg:     cfg,
		pieces:  pieces,
		idx:     idx,
		allSlot: allSlot,
		eval:    eval,
		rng:     rand.New(rand.NewSource(seed)),
		logger:  logger,
		metrics: metrics,
	}
}

// Result is what Run hands back: the best assignment found, its status, and
// a diagnostics trail.
type Result struct {
	Assignment  models.Assignment
	Status      models.RunStatus
	Diagnostics []Diagnostic
}

// Run executes the restart loop until a perfect solution is found, the
// iteration/restart bounds are exhausted, or ctx's deadline (mirrored also
// by the configured wall-clock budget) elapses. It always terminates.
func (e *Engine) Run(ctx context.Context) Result {
	start := time.Now()
	deadline := start.Add(time.Duration(e.cfg.GenerationTimeLimitSeconds) * time.Second)

	var diagnostics []Diagnostic
	best := models.Assignment{}
	bestCost := math.MaxInt
	everImproved := false
	status := models.StatusInfeasible

restartLoop:
	for restart := 0; restart < maxRestarts; restart++ {
		if pastDeadline(ctx, deadline) {
			diagnostics = append(diagnostics, Diagnostic{Message: "time limit reached before another restart"})
			break
		}
		e.metrics.Restarts.Inc()

		current := e.seed()
		e.eval.SetAssignment(current)
		conflicts := e.recomputeConflicts(current)

		perfect := false
		for iter := 0; iter < e.cfg.MaxIterationsPerRestart; iter++ {
			if pastDeadline(ctx, deadline) {
				break
			}
			e.metrics.Iterations.Inc()

			troubled := troubledPieces(e.pieces, conflicts)
			if len(troubled) == 0 {
				perfect = true
				diagnostics = append(diagnostics, Diagnostic{
					Message: "perfect solution found in restart " + strconv.Itoa(restart) + " after " + strconv.Itoa(iter) + " iterations",
				})
				break
			}

			e.repairStep(current, troubled)
			conflicts = e.recomputeConflicts(current)
		}

		cost := e.totalCost(current)
		if cost < bestCost {
			best = current.Clone()
			bestCost = cost
			everImproved = true
			e.metrics.BestCost.Set(float64(bestCost))
		}

		if perfect {
			status = models.StatusOptimal
			break restartLoop
		}
	}

	if status != models.StatusOptimal {
		if everImproved {
			status = models.StatusFeasible
		} else {
			status = models.StatusInfeasible
		}
	}

	e.metrics.SearchDuration.Observe(time.Since(start).Seconds())
	e.logger.Info("search finished",
		zap.String("status", string(status)),
		zap.Int("best_cost", bestCost),
		zap.Duration("elapsed", time.Since(start)),
	)

	return Result{Assignment: best, Status: status, Diagnostics: diagnostics}
}

// seed performs one greedy seeding pass: pieces ordered by descending
// required-musician count, each assigned its cheapest slot if that minimum
// falls under seedThreshold.
func (e *Engine) seed() models.Assignment {
	ordered := append([]models.Piece(nil), e.pieces...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Required) > len(ordered[j].Required)
	})

	assignment := models.Assignment{}
	e.eval.SetAssignment(assignment)

	for _, p := range ordered {
		bestSlot := ""
		bestCost := -1
		for _, slot := range e.allSlot {
			c := e.eval.Cost(p.Name, slot)
			if bestCost < 0 || c < bestCost {
				bestCost = c
				bestSlot = slot
			}
		}
		if bestSlot != "" && bestCost < seedThreshold {
			assignment[p.Name] = bestSlot
			e.eval.SetAssignment(assignment)
		}
	}
	return assignment
}

// recomputeConflicts computes each piece's current conflict value: the
// evaluator's cost at its assigned slot, or unassignedSearchCost if
// unassigned.
func (e *Engine) recomputeConflicts(assignment models.Assignment) map[string]int {
	e.eval.SetAssignment(assignment)
	conflicts := make(map[string]int, len(e.pieces))
	for _, p := range e.pieces {
		if slot, ok := assignment[p.Name]; ok {
			conflicts[p.Name] = e.eval.Cost(p.Name, slot)
		} else {
			conflicts[p.Name] = unassignedSearchCost
		}
	}
	return conflicts
}

// troubledPieces lists the pieces with positive conflict, sorted
// most-conflicted first. pieces fixes the iteration order (map iteration is
// randomized per run) so that ties break the same way under a fixed seed.
func troubledPieces(pieces []models.Piece, conflicts map[string]int) []string {
	var out []string
	for _, p := range pieces {
		if conflicts[p.Name] > 0 {
			out = append(out, p.Name)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return conflicts[out[i]] > conflicts[out[j]] })
	return out
}

// repairStep performs one min-conflicts repair iteration: picks one piece
// uniformly at random from the top-3 most conflicted, then commits its
// cheapest candidate slot (including "unassigned").
func (e *Engine) repairStep(assignment models.Assignment, troubled []string) {
	topN := 3
	if len(troubled) < topN {
		topN = len(troubled)
	}
	top := troubled[:topN]
	piece := top[e.rng.Intn(len(top))]

	originalSlot, hadSlot := assignment[piece]

	bestSlot := ""
	bestHasSlot := false
	bestCost := unassignedSearchCost

	for _, candidate := range e.allSlot {
		assignment[piece] = candidate
		e.eval.SetAssignment(assignment)
		c := e.eval.Cost(piece, candidate)
		if c < bestCost {
			bestCost = c
			bestSlot = candidate
			bestHasSlot = true
		}
	}

	// restore before committing the winner
	if hadSlot {
		assignment[piece] = originalSlot
	} else {
		delete(assignment, piece)
	}

	if bestHasSlot {
		if !hadSlot || originalSlot != bestSlot {
			assignment[piece] = bestSlot
		}
	} else {
		delete(assignment, piece)
	}
	e.eval.SetAssignment(assignment)
}

// totalCost computes the restart's final accounting cost: the sum of each
// assigned piece's evaluator cost, plus unassignedFinalCost per unassigned
// piece.
func (e *Engine) totalCost(assignment models.Assignment) int {
	e.eval.SetAssignment(assignment)
	total := 0
	for _, p := range e.pieces {
		if slot, ok := assignment[p.Name]; ok {
			total += e.eval.Cost(p.Name, slot)
		} else {
			total += unassignedFinalCost
		}
	}
	return total
}

func pastDeadline(ctx context.Context, deadline time.Time) bool {
	if ctx != nil {
		select {
		case <-ctx.Done():
			return true
		default:
		}
	}
	return time.Now().After(deadline)
}
