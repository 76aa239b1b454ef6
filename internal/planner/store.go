package planner

import (
	"context"
	"fmt"
)

// Store persists at most one plan per date.
type Store interface {
	// Get returns ErrNotFound when no plan exists for date.
	Get(ctx context.Context, date string) (*Plan, error)
	// Upsert atomically inserts or replaces the plan for plan.Date.
	Upsert(ctx context.Context, plan *Plan) error
	// Delete removes the plan for date and reports whether one existed.
	Delete(ctx context.Context, date string) (bool, error)
	// DeleteOlderThan removes plans dated strictly before date.
	DeleteOlderThan(ctx context.Context, date string) (int64, error)
	// List returns up to limit plans, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Plan, error)
	Close() error
}

// Mode tells the resolver whether plans generated on a miss can be kept.
type Mode int

const (
	// ModePersistent stores every plan produced for today.
	ModePersistent Mode = iota
	// ModeEphemeral reads the store but never writes resolved plans to it.
	ModeEphemeral
)

func (m Mode) String() string {
	switch m {
	case ModePersistent:
		return "persistent"
	case ModeEphemeral:
		return "ephemeral"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts "persistent" or "ephemeral" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "persistent":
		return ModePersistent, nil
	case "ephemeral":
		return ModeEphemeral, nil
	default:
		return 0, fmt.Errorf("unknown deployment mode %q", s)
	}
}
