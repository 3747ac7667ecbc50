package models

import "errors"

// ErrorKind classifies why a run failed to produce a usable result, mirroring
// the teacher's habit of returning sentinel errors that callers can match
// against with errors.Is, then wrapping them with fmt.Errorf("%w", ...) for
// context.
var (
	// ErrInputShape means a workbook could not be read as an input table:
	// it has no sheets, its table is empty, the repartition table lacks a
	// Titre column, or the availability table yields no musicians or slots.
	ErrInputShape = errors.New("input shape not recognized")

	// ErrMalformedCell means a cell value could not be parsed into the
	// type its column expects (a slot header, a status value, a name).
	ErrMalformedCell = errors.New("malformed cell")

	// ErrConfigurationOutOfRange means a supplied penalty, threshold, or
	// time limit falls outside its documented domain.
	ErrConfigurationOutOfRange = errors.New("configuration value out of range")

	// ErrNoSolution means the search engine could not produce even a
	// partial assignment (e.g. zero slots supplied).
	ErrNoSolution = errors.New("no solution produced")

	// ErrTimeout means the search deadline elapsed before any restart
	// completed its first seeding pass.
	ErrTimeout = errors.New("search deadline exceeded before first seed")
)
