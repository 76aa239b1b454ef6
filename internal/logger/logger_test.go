package logger

import "testing"

func TestSanitizeKVs(t *testing.T) {
	in := []interface{}{"date", "2025-01-15", "cron_secret", "hunter2", "Authorization", "Bearer x", "dangling"}
	out := sanitizeKVs(in)

	if len(out) != len(in) {
		t.Fatalf("Expected %d values, got %d", len(in), len(out))
	}
	if out[1] != "2025-01-15" {
		t.Errorf("Expected date to pass through, got %v", out[1])
	}
	if out[3] != "[REDACTED]" {
		t.Errorf("Expected cron_secret to be redacted, got %v", out[3])
	}
	if out[5] != "[REDACTED]" {
		t.Errorf("Expected Authorization to be redacted, got %v", out[5])
	}
	if out[6] != "dangling" {
		t.Errorf("Expected trailing key to be kept, got %v", out[6])
	}
}

func TestNop(t *testing.T) {
	log := Nop().With("component", "test")
	log.Info("no output", "key", "value")
	log.Sync()
}
