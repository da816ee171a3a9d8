package controller

import "fmt"

// PersistError reports a failure to hand a captured image to the save
// sink. The capture succeeded but the cycle still fails.
type PersistError struct {
	Filename string
	Err      error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("saving %s: %v", e.Filename, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// StatsUpdateError reports a failure to persist the updated RunState.
// It is always absorbed: the cycle that produced it still counts as
// successful.
type StatsUpdateError struct {
	Err error
}

func (e *StatsUpdateError) Error() string {
	return fmt.Sprintf("updating run statistics: %v", e.Err)
}

func (e *StatsUpdateError) Unwrap() error { return e.Err }
