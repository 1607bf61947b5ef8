package aoc

import "errors"

var (
	// ErrParse flags upstream data that does not fit the model. Records
	// are never silently dropped; callers decide whether to abort or
	// surface the failure.
	ErrParse = errors.New("malformed advent of code data")

	// ErrMissingStatistic reports that a statistic cannot be computed
	// yet because one of the parts has no completions. Callers usually
	// retry on a later snapshot.
	ErrMissingStatistic = errors.New("statistic not available yet")
)
