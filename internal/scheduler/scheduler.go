// Package scheduler orchestrates the five core components into one run:
// load, normalize, search, project. This is the library entry point a
// caller (the CLI, or any other out-of-scope collaborator) invokes with a
// parameter bundle and gets a structured result back from.
package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/orchestra-tools/rehearsal-scheduler/internal/config"
	"github.com/orchestra-tools/rehearsal-scheduler/internal/costeval"
	"github.com/orchestra-tools/rehearsal-scheduler/internal/loader"
	"github.com/orchestra-tools/rehearsal-scheduler/internal/models"
	"github.com/orchestra-tools/rehearsal-scheduler/internal/report"
	"github.com/orchestra-tools/rehearsal-scheduler/internal/search"
	"github.com/orchestra-tools/rehearsal-scheduler/internal/slotmodel"
	"go.uber.org/zap"
)

// RunInput bundles everything one scheduling run needs.
type RunInput struct {
	RepartitionPath  string
	AvailabilityPath string
	Config           config.Config
	Logger           *zap.Logger
	Metrics          *search.Metrics
}

// Run executes the full Loader -> Cost Evaluator -> Search Engine ->
// Result Projector pipeline and returns the structured result.
func Run(ctx context.Context, in RunInput) (*report.Result, error) {
	logger := in.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	pieces, err := loader.LoadRepartition(in.RepartitionPath)
	if err != nil {
		return nil, fmt.Errorf("loading repartition table: %w", err)
	}

	avail, err := loader.LoadAvailability(in.AvailabilityPath)
	if err != nil {
		return nil, fmt.Errorf("loading availability table: %w", err)
	}

	pieces, avail, idx := loader.Finalize(pieces, avail)

	var diagnostics []string
	special := models.SpecialSlotSet{}
	for _, raw := range in.Config.SpecialSlots {
		normalized, err := slotmodel.NormalizeSpecialSlotAlias(raw)
		if err != nil {
			logger.Warn("skipping unrecognized special slot alias", zap.String("raw", raw), zap.Error(err))
			diagnostics = append(diagnostics, fmt.Sprintf("special slot %q not recognized, skipped", raw))
			continue
		}
		special[normalized] = struct{}{}
	}

	eval := costeval.New(in.Config, idx, avail, special)
	engine := search.New(in.Config, pieces, idx, eval, in.Config.RandomSeed, logger, in.Metrics)

	result := engine.Run(ctx)
	for _, d := range result.Diagnostics {
		diagnostics = append(diagnostics, d.Message)
	}

	built := report.Build(pieces, avail, idx, result.Assignment, result.Status, diagnostics)
	built.RunID = runID
	return &built, nil
}
