package planner

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no plan is stored for a date.
	ErrNotFound = errors.New("plan not found")
	// ErrPlanExists is returned by admin generation when a plan exists and force is off.
	ErrPlanExists = errors.New("plan already exists")
)

// ValidationError reports malformed caller input.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// GenerationError reports that the content generator produced nothing usable.
type GenerationError struct {
	Date string
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate plan for %s: %v", e.Date, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// StoreError wraps a failure of the plan store.
type StoreError struct {
	Op   string
	Date string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Date == "" {
		return fmt.Sprintf("plan store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("plan store %s %s: %v", e.Op, e.Date, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
