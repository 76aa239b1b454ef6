package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"wellness-planner/internal/planner"
)

const planFilePrefix = "plan_"

// FileStore keeps one JSON document per date under basePath.
type FileStore struct {
	basePath string
}

// NewFileStore creates a FileStore and ensures the base directory exists.
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &FileStore{basePath: basePath}, nil
}

func (s *FileStore) pathFor(date string) string {
	return filepath.Join(s.basePath, planFilePrefix+date+".json")
}

// Get loads the plan for date.
func (s *FileStore) Get(_ context.Context, date string) (*planner.Plan, error) {
	data, err := os.ReadFile(s.pathFor(date))
	if errors.Is(err, os.ErrNotExist) {
		return nil, planner.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var plan planner.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return &plan, nil
}

// Upsert writes the plan to a temp file and renames it over the previous version.
func (s *FileStore) Upsert(_ context.Context, plan *planner.Plan) error {
	if _, err := planner.ParseDate(plan.Date); err != nil {
		return err
	}
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	tmp, err := os.CreateTemp(s.basePath, ".plan-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write plan file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to chmod plan file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.pathFor(plan.Date)); err != nil {
		return fmt.Errorf("failed to replace plan file: %w", err)
	}
	return nil
}

// Delete removes the plan file for date.
func (s *FileStore) Delete(_ context.Context, date string) (bool, error) {
	err := os.Remove(s.pathFor(date))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to remove plan file: %w", err)
	}
	return true, nil
}

// DeleteOlderThan removes plan files dated before date.
func (s *FileStore) DeleteOlderThan(ctx context.Context, date string) (int64, error) {
	dates, err := s.dates()
	if err != nil {
		return 0, err
	}

	var deleted int64
	for _, d := range dates {
		if d >= date {
			continue
		}
		ok, err := s.Delete(ctx, d)
		if err != nil {
			return deleted, err
		}
		if ok {
			deleted++
		}
	}
	return deleted, nil
}

// List loads plans newest first.
func (s *FileStore) List(ctx context.Context, limit int) ([]planner.Plan, error) {
	dates, err := s.dates()
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if limit > 0 && len(dates) > limit {
		dates = dates[:limit]
	}

	plans := make([]planner.Plan, 0, len(dates))
	for _, d := range dates {
		p, err := s.Get(ctx, d)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, nil
}

func (s *FileStore) Close() error { return nil }

// dates returns the dates of all well-formed plan files.
func (s *FileStore) dates() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.basePath, planFilePrefix+"*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob plan files: %w", err)
	}

	dates := make([]string, 0, len(matches))
	for _, m := range matches {
		d := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), planFilePrefix), ".json")
		if _, err := planner.ParseDate(d); err == nil {
			dates = append(dates, d)
		}
	}
	return dates, nil
}
