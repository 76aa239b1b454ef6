package delivery

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"wellness-planner/internal/logger"
	"wellness-planner/internal/mailer"
	"wellness-planner/internal/planner"
)

type stubResolver struct {
	plan      *planner.Plan
	err       error
	purgeDays int
}

func (s *stubResolver) Resolve(_ context.Context, req planner.Request) (*planner.Resolution, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &planner.Resolution{Plan: s.plan, Source: planner.SourceStore, Persisted: true}, nil
}

func (s *stubResolver) Purge(_ context.Context, days int) (int64, string, error) {
	s.purgeDays = days
	return 2, "2024-12-16", nil
}

type stubMailer struct {
	mu      sync.Mutex
	sent    []mailer.Message
	failFor map[string]bool
}

func (m *stubMailer) Send(_ context.Context, msg mailer.Message) (*mailer.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[msg.To[0].Email] {
		return nil, errors.New("mailbox unavailable")
	}
	m.sent = append(m.sent, msg)
	return &mailer.Result{StatusCode: 202}, nil
}

type stubNotifier struct {
	filename string
}

func (n *stubNotifier) SendPlan(_ context.Context, _ *planner.Plan, _ []byte, filename string) error {
	n.filename = filename
	return nil
}

func TestRun(t *testing.T) {
	resolver := &stubResolver{plan: planner.FallbackPlan("2025-01-15")}
	mail := &stubMailer{failFor: map[string]bool{"bounce@example.com": true}}
	notifier := &stubNotifier{}

	p := NewPipeline(resolver, mail, Config{
		Recipients:    []string{"a@example.com", "bounce@example.com", "c@example.com"},
		From:          mailer.Address{Email: "plans@example.com"},
		RetentionDays: 30,
		Concurrency:   2,
	}, logger.Nop(), WithNotifier(notifier))

	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.EmailsSent != 2 || report.EmailsFailed != 1 {
		t.Errorf("Expected 2 sent and 1 failed, got %d and %d", report.EmailsSent, report.EmailsFailed)
	}
	if len(report.Failures) != 1 || report.Failures[0].Recipient != "bounce@example.com" {
		t.Errorf("Unexpected failures %+v", report.Failures)
	}
	if report.PlanDate != "2025-01-15" || report.RunID == "" {
		t.Errorf("Unexpected report %+v", report)
	}
	if !report.TelegramSent || notifier.filename != "wellness-plan-2025-01-15.pdf" {
		t.Errorf("Expected telegram delivery of the PDF, got %q", notifier.filename)
	}
	if resolver.purgeDays != 30 || report.Purged != 2 {
		t.Errorf("Expected purge with 30 days, got %d (purged %d)", resolver.purgeDays, report.Purged)
	}

	for _, msg := range mail.sent {
		if len(msg.To) != 1 {
			t.Errorf("Expected one recipient per message, got %d", len(msg.To))
		}
		if !strings.HasPrefix(msg.Subject, "Your Daily Wellness Plan - ") {
			t.Errorf("Unexpected subject %q", msg.Subject)
		}
		if len(msg.Attachments) != 1 || msg.Attachments[0].Filename != "wellness-plan-2025-01-15.pdf" {
			t.Errorf("Unexpected attachments %+v", msg.Attachments)
		}
		if msg.Text == "" || msg.HTML == "" {
			t.Error("Expected both text and html bodies")
		}
	}
	if !strings.Contains(report.Summary(), "sent to 2 recipients (1 failed)") {
		t.Errorf("Unexpected summary %q", report.Summary())
	}
}

func TestRunFailures(t *testing.T) {
	t.Run("NoRecipients", func(t *testing.T) {
		p := NewPipeline(&stubResolver{plan: planner.FallbackPlan("2025-01-15")}, &stubMailer{}, Config{}, logger.Nop())
		if _, err := p.Run(context.Background()); err == nil {
			t.Error("Expected an error without recipients")
		}
	})

	t.Run("ResolveError", func(t *testing.T) {
		mail := &stubMailer{}
		p := NewPipeline(&stubResolver{err: errors.New("boom")}, mail, Config{Recipients: []string{"a@example.com"}}, logger.Nop())
		if _, err := p.Run(context.Background()); err == nil {
			t.Error("Expected resolve error to be returned")
		}
		if len(mail.sent) != 0 {
			t.Error("Expected no email to be sent")
		}
	})
}
