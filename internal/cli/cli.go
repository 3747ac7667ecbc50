// Package cli wires the scheduler core into a cobra command tree, the
// out-of-scope upload endpoint's CLI-side stand-in.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/orchestra-tools/rehearsal-scheduler/internal/config"
	"github.com/orchestra-tools/rehearsal-scheduler/internal/scheduler"
	"github.com/orchestra-tools/rehearsal-scheduler/internal/search"
	"github.com/orchestra-tools/rehearsal-scheduler/internal/xlsxexport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type scheduleFlags struct {
	repartitionPath  string
	availabilityPath string
	configPath       string
	outPath          string
	xlsxPath         string

	maybePenalty            int
	maxLoad                 int
	loadPenalty             int
	groupBonus              int
	absenceMode             string
	absenceThreshold        int
	specialAbsenceThreshold int
	specialSlots            []string
	timeLimitSeconds        int
	seed                    int64
	dumpMetrics             bool
}

// NewRootCommand builds the scheduler CLI.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "scheduler",
		Short: "Assign rehearsal pieces to time slots under musician availability constraints",
	}
	root.AddCommand(newScheduleCommand())
	return root
}

func newScheduleCommand() *cobra.Command {
	flags := &scheduleFlags{}

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run one scheduling search and print the structured result",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.repartitionPath, "repartition", "", "path to the repartition workbook (required)")
	cmd.Flags().StringVar(&flags.availabilityPath, "availability", "", "path to the availability workbook (required)")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "path to a TOML configuration file (optional)")
	cmd.Flags().StringVar(&flags.outPath, "out", "", "path to write the JSON result (default: stdout)")
	cmd.Flags().StringVar(&flags.xlsxPath, "xlsx", "", "path to write an optional spreadsheet export")

	cmd.Flags().IntVar(&flags.maybePenalty, "maybe-penalty", -1, "override maybePenalty (-1: use config/default)")
	cmd.Flags().IntVar(&flags.maxLoad, "max-load", -1, "override maxLoad (-1: use config/default)")
	cmd.Flags().IntVar(&flags.loadPenalty, "load-penalty", -1, "override loadPenalty (-1: use config/default)")
	cmd.Flags().IntVar(&flags.groupBonus, "group-bonus", -1, "override groupBonus (-1: use config/default)")
	cmd.Flags().StringVar(&flags.absenceMode, "absence-mode", "", "override absenceMode: strict|flexible")
	cmd.Flags().IntVar(&flags.absenceThreshold, "absence-threshold", -1, "override absenceThreshold (-1: use config/default)")
	cmd.Flags().IntVar(&flags.specialAbsenceThreshold, "special-absence-threshold", -1, "override specialAbsenceThreshold (-1: use config/default)")
	cmd.Flags().StringSliceVar(&flags.specialSlots, "special-slot", nil, "a special slot id/alias (repeatable)")
	cmd.Flags().IntVar(&flags.timeLimitSeconds, "time-limit", -1, "override generationTimeLimit in seconds (-1: use config/default)")
	cmd.Flags().Int64Var(&flags.seed, "seed", -1, "override the random seed (-1: use config/default)")
	cmd.Flags().BoolVar(&flags.dumpMetrics, "dump-metrics", false, "print Prometheus text-format metrics to stderr after the run")

	cmd.MarkFlagRequired("repartition")
	cmd.MarkFlagRequired("availability")

	return cmd
}

func runSchedule(cmd *cobra.Command, flags *scheduleFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	applyOverrides(&cfg, flags)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync()

	registry := prometheus.NewRegistry()
	metrics := search.NewMetrics(registry)

	start := time.Now()
	result, err := scheduler.Run(context.Background(), scheduler.RunInput{
		RepartitionPath:  flags.repartitionPath,
		AvailabilityPath: flags.availabilityPath,
		Config:           cfg,
		Logger:           logger,
		Metrics:          metrics,
	})
	if err != nil {
		return fmt.Errorf("scheduling run failed: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "scheduled %d/%d pieces (%s) in %s\n",
		result.Assigned, result.Total, result.Status, humanize.RelTime(start, time.Now(), "", ""))

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	if flags.outPath == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	} else if err := os.WriteFile(flags.outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("writing result to %q: %w", flags.outPath, err)
	}

	if flags.xlsxPath != "" {
		if err := xlsxexport.Write(flags.xlsxPath, *result, cfg, flags.repartitionPath, flags.availabilityPath); err != nil {
			return fmt.Errorf("writing spreadsheet export: %w", err)
		}
	}

	if flags.dumpMetrics {
		dumpMetrics(cmd, registry)
	}
	return nil
}

func applyOverrides(cfg *config.Config, flags *scheduleFlags) {
	if flags.maybePenalty >= 0 {
		cfg.MaybePenalty = flags.maybePenalty
	}
	if flags.maxLoad >= 0 {
		cfg.MaxLoad = flags.maxLoad
	}
	if flags.loadPenalty >= 0 {
		cfg.LoadPenalty = flags.loadPenalty
	}
	if flags.groupBonus >= 0 {
		cfg.GroupBonus = flags.groupBonus
	}
	if flags.absenceMode != "" {
		cfg.AbsenceMode = config.AbsenceMode(strings.ToLower(flags.absenceMode))
	}
	if flags.absenceThreshold >= 0 {
		cfg.AbsenceThreshold = flags.absenceThreshold
	}
	if flags.specialAbsenceThreshold >= 0 {
		cfg.SpecialAbsenceThreshold = flags.specialAbsenceThreshold
	}
	if len(flags.specialSlots) > 0 {
		cfg.SpecialSlots = append(cfg.SpecialSlots, flags.specialSlots...)
	}
	if flags.timeLimitSeconds >= 0 {
		cfg.GenerationTimeLimitSeconds = flags.timeLimitSeconds
	}
	if flags.seed >= 0 {
		cfg.RandomSeed = flags.seed
	}
}

func dumpMetrics(cmd *cobra.Command, registry *prometheus.Registry) {
	families, err := registry.Gather()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "gathering metrics: %v\n", err)
		return
	}
	encoder := expfmt.NewEncoder(cmd.ErrOrStderr(), expfmt.FmtText)
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "encoding metric family: %v\n", err)
			return
		}
	}
}
