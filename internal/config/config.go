// Package config loads the scheduler's configuration bundle: the cost-model
// tunables from spec §4.3, plus run-level settings (time limit, seed,
// iteration bound). Input paths are not part of it. Precedence is flag > environment variable > TOML file > built-in
// default, the same ordering spirit as the env-first getEnv/getEnvInt
// helpers this package keeps.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/orchestra-tools/rehearsal-scheduler/internal/models"
)

// AbsenceMode selects whether a NO at a non-special slot is treated as
// effectively hard (strict) or merely counted toward the bulk-absence
// threshold (flexible).
type AbsenceMode string

const (
	AbsenceModeStrict   AbsenceMode = "strict"
	AbsenceModeFlexible AbsenceMode = "flexible"
)

// Config is the configuration bundle consumed once per run by the cost
// evaluator and search engine.
type Config struct {
	MaybePenalty            int         `toml:"maybe_penalty"`
	MaxLoad                 int         `toml:"max_load"`
	LoadPenalty             int         `toml:"load_penalty"`
	GroupBonus              int         `toml:"group_bonus"`
	AbsenceMode             AbsenceMode `toml:"absence_mode"`
	AbsenceThreshold        int         `toml:"absence_threshold"`
	SpecialSlots            []string    `toml:"special_slots"`
	SpecialAbsenceThreshold int         `toml:"special_absence_threshold"`

	GenerationTimeLimitSeconds int   `toml:"generation_time_limit_seconds"`
	RandomSeed                 int64 `toml:"random_seed"`
	MaxIterationsPerRestart    int   `toml:"max_iterations_per_restart"`
}

// Defaults returns the built-in configuration, matching the values the
// original local-search procedure shipped with.
func Defaults() Config {
	return Config{
		MaybePenalty:               10,
		MaxLoad:                    2,
		LoadPenalty:                50,
		GroupBonus:                 20,
		AbsenceMode:                AbsenceModeFlexible,
		AbsenceThreshold:           0,
		SpecialAbsenceThreshold:    5,
		GenerationTimeLimitSeconds: 30,
		RandomSeed:                 0,
		MaxIterationsPerRestart:    10000,
	}
}

// Load assembles the configuration bundle: defaults, overridden by a TOML
// file (if path is non-empty), overridden by environment variables. godotenv
// is consulted first so a .env file next to the invocation populates
// os.Getenv before the environment pass runs, mirroring the teacher's
// env-first Load().
func Load(tomlPath string) (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()

	if tomlPath != "" {
		if _, err := toml.DecodeFile(tomlPath, &cfg); err != nil {
			return Config{}, fmt.Errorf("loading config file %q: %w", tomlPath, err)
		}
	}

	cfg.MaybePenalty = getEnvInt("SCHEDULER_MAYBE_PENALTY", cfg.MaybePenalty)
	cfg.MaxLoad = getEnvInt("SCHEDULER_MAX_LOAD", cfg.MaxLoad)
	cfg.LoadPenalty = getEnvInt("SCHEDULER_LOAD_PENALTY", cfg.LoadPenalty)
	cfg.GroupBonus = getEnvInt("SCHEDULER_GROUP_BONUS", cfg.GroupBonus)
	cfg.AbsenceMode = AbsenceMode(getEnv("SCHEDULER_ABSENCE_MODE", string(cfg.AbsenceMode)))
	cfg.AbsenceThreshold = getEnvInt("SCHEDULER_ABSENCE_THRESHOLD", cfg.AbsenceThreshold)
	cfg.SpecialAbsenceThreshold = getEnvInt("SCHEDULER_SPECIAL_ABSENCE_THRESHOLD", cfg.SpecialAbsenceThreshold)
	cfg.GenerationTimeLimitSeconds = getEnvInt("SCHEDULER_TIME_LIMIT_SECONDS", cfg.GenerationTimeLimitSeconds)
	cfg.MaxIterationsPerRestart = getEnvInt("SCHEDULER_MAX_ITERATIONS", cfg.MaxIterationsPerRestart)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configuration values outside the domain spec §7 names as
// ConfigurationOutOfRange: negative penalties, maxLoad < 1, time limit <= 0.
func (c Config) Validate() error {
	if c.MaybePenalty < 0 {
		return fmt.Errorf("%w: maybePenalty must be >= 0, got %d", models.ErrConfigurationOutOfRange, c.MaybePenalty)
	}
	if c.MaxLoad < 1 {
		return fmt.Errorf("%w: maxLoad must be >= 1, got %d", models.ErrConfigurationOutOfRange, c.MaxLoad)
	}
	if c.LoadPenalty < 0 {
		return fmt.Errorf("%w: loadPenalty must be >= 0, got %d", models.ErrConfigurationOutOfRange, c.LoadPenalty)
	}
	if c.GroupBonus < 0 {
		return fmt.Errorf("%w: groupBonus must be >= 0, got %d", models.ErrConfigurationOutOfRange, c.GroupBonus)
	}
	if c.AbsenceMode != AbsenceModeStrict && c.AbsenceMode != AbsenceModeFlexible {
		return fmt.Errorf("%w: absenceMode must be strict or flexible, got %q", models.ErrConfigurationOutOfRange, c.AbsenceMode)
	}
	if c.AbsenceThreshold < 0 {
		return fmt.Errorf("%w: absenceThreshold must be >= 0, got %d", models.ErrConfigurationOutOfRange, c.AbsenceThreshold)
	}
	if c.SpecialAbsenceThreshold < 0 {
		return fmt.Errorf("%w: specialAbsenceThreshold must be >= 0, got %d", models.ErrConfigurationOutOfRange, c.SpecialAbsenceThreshold)
	}
	if c.GenerationTimeLimitSeconds <= 0 {
		return fmt.Errorf("%w: generationTimeLimit must be > 0, got %d", models.ErrConfigurationOutOfRange, c.GenerationTimeLimitSeconds)
	}
	if c.MaxIterationsPerRestart < 1 {
		return fmt.Errorf("%w: maxIterationsPerRestart must be >= 1, got %d", models.ErrConfigurationOutOfRange, c.MaxIterationsPerRestart)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
