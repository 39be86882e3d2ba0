package supervisor

import "errors"

var (
	// ErrAlreadyPresent is returned by Table.Insert when id is already occupied.
	ErrAlreadyPresent = errors.New("supervisor: work unit id already present in process table")

	// ErrNotFound is returned when a lookup misses the process table during
	// terminate or kill.
	ErrNotFound = errors.New("supervisor: work unit not found")

	// ErrDrainModeObtained signals the slot populator's caller that drain
	// mode was observed and the loop should stop populating.
	ErrDrainModeObtained = errors.New("supervisor: drain mode obtained")
)
