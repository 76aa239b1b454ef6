package scheduler

import (
	"context"
	"testing"
	"time"

	"wellness-planner/internal/logger"
)

func noop(context.Context) error { return nil }

func TestNew(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		s, err := New("0 6 * * *", "UTC", 0, noop, logger.Nop())
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		s.Start()
		defer s.Stop(context.Background())

		next := s.Next()
		if next.IsZero() {
			t.Fatal("Expected a next run time")
		}
		if next.Hour() != 6 || next.Minute() != 0 {
			t.Errorf("Expected next run at 06:00, got %s", next.Format(time.RFC3339))
		}
	})

	t.Run("InvalidSchedule", func(t *testing.T) {
		if _, err := New("every morning", "UTC", 0, noop, logger.Nop()); err == nil {
			t.Error("Expected error for invalid schedule")
		}
	})

	t.Run("InvalidTimezone", func(t *testing.T) {
		if _, err := New("0 6 * * *", "Mars/Olympus", 0, noop, logger.Nop()); err == nil {
			t.Error("Expected error for invalid timezone")
		}
	})
}

func TestJobRuns(t *testing.T) {
	ran := make(chan struct{}, 1)
	s, err := New("@every 1s", "UTC", time.Second, func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}, logger.Nop())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	s.Start()
	defer s.Stop(context.Background())

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("Expected job to run within 3s")
	}
}
