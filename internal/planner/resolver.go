package planner

import (
	"context"
	"errors"
	"time"

	"wellness-planner/internal/logger"
	"wellness-planner/internal/shared"
)

// Source tells where a resolved plan came from.
type Source string

const (
	SourceStore     Source = "store"
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
)

// MetricsRecorder receives generation metadata.
type MetricsRecorder interface {
	RecordMeta(meta shared.AgentMeta) error
}

// Request asks for a plan. An empty Date means today.
type Request struct {
	Date         string
	ForceRefresh bool
}

// Resolution is a resolved plan with its provenance.
type Resolution struct {
	Plan      *Plan
	Source    Source
	Persisted bool
}

// Resolver decides per request whether to read, generate, persist or fall back.
type Resolver struct {
	store   Store
	gen     ContentGenerator
	mode    Mode
	log     *logger.Logger
	now     func() time.Time
	metrics MetricsRecorder
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithClock overrides the clock used to decide what "today" is.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) { r.now = now }
}

// WithMetrics records generation metadata through m.
func WithMetrics(m MetricsRecorder) ResolverOption {
	return func(r *Resolver) { r.metrics = m }
}

// NewResolver creates a Resolver with its dependencies fixed for its lifetime.
func NewResolver(store Store, gen ContentGenerator, mode Mode, log *logger.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store: store,
		gen:   gen,
		mode:  mode,
		log:   log.With("component", "Resolver"),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mode returns the deployment mode the resolver was built with.
func (r *Resolver) Mode() Mode { return r.mode }

// Today returns the current date in plan format.
func (r *Resolver) Today() string {
	return FormatDate(r.now())
}

// Resolve returns the plan for the request. Historical dates are read-only and
// yield ErrNotFound on a miss. Today's plan is always produced; generator
// failures are replaced by the fallback plan.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Resolution, error) {
	today := r.Today()

	if req.Date != "" && req.Date != today {
		if _, err := ParseDate(req.Date); err != nil {
			return nil, err
		}
		plan, ok := r.lookup(ctx, req.Date)
		if !ok {
			return nil, ErrNotFound
		}
		return &Resolution{Plan: plan, Source: SourceStore, Persisted: true}, nil
	}

	if !req.ForceRefresh {
		if plan, ok := r.lookup(ctx, today); ok {
			return &Resolution{Plan: plan, Source: SourceStore, Persisted: true}, nil
		}
	}

	plan, source := r.produce(ctx, today)
	res := &Resolution{Plan: plan, Source: source}

	if r.mode == ModePersistent {
		if err := r.store.Upsert(ctx, plan); err != nil {
			r.log.Error("Failed to persist plan", "date", today, "error", err)
		} else {
			res.Persisted = true
		}
	}
	return res, nil
}

// GenerateFor generates and stores the plan for date. Without force an
// existing plan is left alone and ErrPlanExists is returned.
func (r *Resolver) GenerateFor(ctx context.Context, date string, force bool) (*Plan, error) {
	if date == "" {
		return nil, &ValidationError{Field: "date", Msg: "date is required (YYYY-MM-DD format)"}
	}
	if _, err := ParseDate(date); err != nil {
		return nil, err
	}

	if !force {
		exists, err := r.Exists(ctx, date)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrPlanExists
		}
	}

	plan, _ := r.produce(ctx, date)
	if err := r.store.Upsert(ctx, plan); err != nil {
		return nil, &StoreError{Op: "upsert", Date: date, Err: err}
	}
	r.log.Info("Plan generated", "date", date, "force", force)
	return plan, nil
}

// Exists reports whether a plan is stored for date.
func (r *Resolver) Exists(ctx context.Context, date string) (bool, error) {
	if _, err := ParseDate(date); err != nil {
		return false, err
	}
	_, err := r.store.Get(ctx, date)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, &StoreError{Op: "get", Date: date, Err: err}
	}
}

// ClearToday removes today's stored plan so the next request regenerates it.
func (r *Resolver) ClearToday(ctx context.Context) (bool, error) {
	today := r.Today()
	deleted, err := r.store.Delete(ctx, today)
	if err != nil {
		return false, &StoreError{Op: "delete", Date: today, Err: err}
	}
	return deleted, nil
}

// Purge deletes plans older than retentionDays before today.
func (r *Resolver) Purge(ctx context.Context, retentionDays int) (int64, string, error) {
	cutoff := FormatDate(r.now().AddDate(0, 0, -retentionDays))
	n, err := r.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, cutoff, &StoreError{Op: "purge", Date: cutoff, Err: err}
	}
	if n > 0 {
		r.log.Info("Purged old plans", "cutoff", cutoff, "deleted", n)
	}
	return n, cutoff, nil
}

// Recent returns up to limit stored plans, newest first.
func (r *Resolver) Recent(ctx context.Context, limit int) ([]Plan, error) {
	plans, err := r.store.List(ctx, limit)
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	return plans, nil
}

// lookup treats read failures as a miss.
func (r *Resolver) lookup(ctx context.Context, date string) (*Plan, bool) {
	plan, err := r.store.Get(ctx, date)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.log.Warn("Plan store read failed, treating as missing", "date", date, "error", err)
		}
		return nil, false
	}
	return plan, true
}

// produce calls the generator once and never fails.
func (r *Resolver) produce(ctx context.Context, date string) (*Plan, Source) {
	plan, metas, err := r.gen.Generate(ctx, date)
	r.record(metas)
	if err != nil || plan == nil {
		r.log.Warn("Generation failed, using fallback plan", "date", date, "error", err)
		return FallbackPlan(date), SourceFallback
	}
	if err := plan.Validate(); err != nil {
		r.log.Warn("Generated plan is incomplete, using fallback plan", "date", date, "error", err)
		return FallbackPlan(date), SourceFallback
	}
	return plan, SourceGenerated
}

func (r *Resolver) record(metas []shared.AgentMeta) {
	if r.metrics == nil {
		return
	}
	for _, meta := range metas {
		if err := r.metrics.RecordMeta(meta); err != nil {
			r.log.Warn("Failed to record metrics", "agent", meta.AgentName, "error", err)
		}
	}
}
