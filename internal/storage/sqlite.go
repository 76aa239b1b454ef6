package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wellness-planner/internal/planner"
)

// SQLStore persists plans in the daily_plans table of a SQLite database.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates a new SQLStore over an already migrated database.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const upsertPlanSQL = `
INSERT INTO daily_plans (date, quote_text, quote_author, workout, meals, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(date) DO UPDATE SET
    quote_text   = excluded.quote_text,
    quote_author = excluded.quote_author,
    workout      = excluded.workout,
    meals        = excluded.meals,
    updated_at   = excluded.updated_at`

// Upsert inserts or replaces the plan for plan.Date in a single statement.
func (s *SQLStore) Upsert(ctx context.Context, plan *planner.Plan) error {
	workout, meals, err := encodeParts(plan)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, upsertPlanSQL,
		plan.Date, plan.Quote.Text, plan.Quote.Author, string(workout), string(meals), now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert plan: %w", err)
	}
	return nil
}

// Get retrieves the plan for date.
func (s *SQLStore) Get(ctx context.Context, date string) (*planner.Plan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT date, quote_text, quote_author, workout, meals FROM daily_plans WHERE date = ?`, date)
	plan, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, planner.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// Delete removes the plan for date.
func (s *SQLStore) Delete(ctx context.Context, date string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM daily_plans WHERE date = ?`, date)
	if err != nil {
		return false, fmt.Errorf("failed to delete plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteOlderThan removes plans dated before date.
func (s *SQLStore) DeleteOlderThan(ctx context.Context, date string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM daily_plans WHERE date < ?`, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old plans: %w", err)
	}
	return res.RowsAffected()
}

// List returns plans newest first.
func (s *SQLStore) List(ctx context.Context, limit int) ([]planner.Plan, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, quote_text, quote_author, workout, meals FROM daily_plans ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []planner.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

// Close is a no-op; the connection belongs to database.DB.
func (s *SQLStore) Close() error { return nil }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*planner.Plan, error) {
	var (
		plan          planner.Plan
		workout, meal string
	)
	if err := row.Scan(&plan.Date, &plan.Quote.Text, &plan.Quote.Author, &workout, &meal); err != nil {
		return nil, err
	}
	if err := decodeParts(&plan, []byte(workout), []byte(meal)); err != nil {
		return nil, err
	}
	return &plan, nil
}

func encodeParts(plan *planner.Plan) ([]byte, []byte, error) {
	if _, err := planner.ParseDate(plan.Date); err != nil {
		return nil, nil, err
	}
	workout, err := json.Marshal(plan.Workout)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal workout: %w", err)
	}
	meals, err := json.Marshal(plan.Meals)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal meals: %w", err)
	}
	return workout, meals, nil
}

func decodeParts(plan *planner.Plan, workout, meals []byte) error {
	if err := json.Unmarshal(workout, &plan.Workout); err != nil {
		return fmt.Errorf("failed to unmarshal workout for %s: %w", plan.Date, err)
	}
	if err := json.Unmarshal(meals, &plan.Meals); err != nil {
		return fmt.Errorf("failed to unmarshal meals for %s: %w", plan.Date, err)
	}
	return nil
}
