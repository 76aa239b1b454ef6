package delivery

import (
	"context"
	"fmt"
	"time"

	"wellness-planner/internal/logger"
	"wellness-planner/internal/mailer"
	"wellness-planner/internal/planner"
	"wellness-planner/internal/render"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PlanResolver is the part of planner.Resolver the pipeline needs.
type PlanResolver interface {
	Resolve(ctx context.Context, req planner.Request) (*planner.Resolution, error)
	Purge(ctx context.Context, retentionDays int) (int64, string, error)
}

// PlanNotifier is an optional extra channel for the rendered plan.
type PlanNotifier interface {
	SendPlan(ctx context.Context, plan *planner.Plan, pdf []byte, filename string) error
}

// Config holds delivery settings.
type Config struct {
	Recipients    []string
	From          mailer.Address
	RetentionDays int
	Concurrency   int
}

// RecipientFailure describes one email that was not accepted.
type RecipientFailure struct {
	Recipient string `json:"recipient"`
	Error     string `json:"error"`
}

// Report summarizes one run of the daily job.
type Report struct {
	RunID        string             `json:"runId"`
	PlanDate     string             `json:"planDate"`
	PlanSource   planner.Source     `json:"planSource"`
	EmailsSent   int                `json:"emailsSent"`
	EmailsFailed int                `json:"emailsFailed"`
	Failures     []RecipientFailure `json:"failures,omitempty"`
	TelegramSent bool               `json:"telegramSent"`
	Purged       int64              `json:"purged"`
	Duration     string             `json:"duration"`
}

// Pipeline resolves today's plan, renders it and fans it out to subscribers.
type Pipeline struct {
	resolver PlanResolver
	mail     mailer.Client
	notifier PlanNotifier
	cfg      Config
	log      *logger.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithNotifier also sends the plan through n.
func WithNotifier(n PlanNotifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

// NewPipeline creates a Pipeline.
func NewPipeline(resolver PlanResolver, mail mailer.Client, cfg Config, log *logger.Logger, opts ...Option) *Pipeline {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	p := &Pipeline{
		resolver: resolver,
		mail:     mail,
		cfg:      cfg,
		log:      log.With("component", "DeliveryPipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the daily job once. Per-recipient failures are counted, not
// returned; an error means nothing was sent.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: uuid.NewString()}
	log := p.log.With("run_id", report.RunID)

	if len(p.cfg.Recipients) == 0 {
		return nil, fmt.Errorf("no recipients configured")
	}

	// 1. Resolve today's plan
	res, err := p.resolver.Resolve(ctx, planner.Request{})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve today's plan: %w", err)
	}
	plan := res.Plan
	report.PlanDate = plan.Date
	report.PlanSource = res.Source

	// 2. Render attachments
	pdf, err := render.PDF(plan)
	if err != nil {
		return nil, err
	}
	html, err := render.EmailHTML(plan)
	if err != nil {
		return nil, err
	}
	text, err := render.PlainText(html)
	if err != nil {
		return nil, err
	}
	filename := render.PDFFilename(plan)

	// 3. Fan out, one message per recipient
	results := make([]error, len(p.cfg.Recipients))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for i, recipient := range p.cfg.Recipients {
		i, recipient := i, recipient
		g.Go(func() error {
			_, err := p.mail.Send(gctx, mailer.Message{
				From:        p.cfg.From,
				To:          []mailer.Address{{Email: recipient}},
				Subject:     render.EmailSubject(plan),
				Text:        text,
				HTML:        html,
				Categories:  []string{"daily-plan"},
				Attachments: []mailer.Attachment{{Filename: filename, MIMEType: "application/pdf", Content: pdf}},
			})
			results[i] = err
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range results {
		if err != nil {
			report.EmailsFailed++
			report.Failures = append(report.Failures, RecipientFailure{Recipient: p.cfg.Recipients[i], Error: err.Error()})
			log.Warn("Email delivery failed", "recipient", p.cfg.Recipients[i], "error", err)
			continue
		}
		report.EmailsSent++
	}

	// 4. Optional channels and housekeeping; failures only logged
	if p.notifier != nil {
		if err := p.notifier.SendPlan(ctx, plan, pdf, filename); err != nil {
			log.Warn("Telegram delivery failed", "error", err)
		} else {
			report.TelegramSent = true
		}
	}

	if p.cfg.RetentionDays > 0 {
		n, cutoff, err := p.resolver.Purge(ctx, p.cfg.RetentionDays)
		if err != nil {
			log.Warn("Failed to purge old plans", "cutoff", cutoff, "error", err)
		}
		report.Purged = n
	}

	report.Duration = time.Since(start).Round(time.Millisecond).String()
	log.Info("Daily job finished",
		"date", report.PlanDate,
		"source", report.PlanSource,
		"sent", report.EmailsSent,
		"failed", report.EmailsFailed,
		"purged", report.Purged,
	)
	return report, nil
}

// Summary is a one-line human description of the report.
func (r *Report) Summary() string {
	return fmt.Sprintf("Daily wellness plan for %s sent to %d recipients (%d failed)", r.PlanDate, r.EmailsSent, r.EmailsFailed)
}
