package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"wellness-planner/internal/access"
	"wellness-planner/internal/config"
	"wellness-planner/internal/database"
	"wellness-planner/internal/delivery"
	"wellness-planner/internal/llm"
	"wellness-planner/internal/logger"
	"wellness-planner/internal/mailer"
	"wellness-planner/internal/metrics"
	"wellness-planner/internal/planner"
	"wellness-planner/internal/server"
	"wellness-planner/internal/storage"
	"wellness-planner/internal/telegram"
)

// Sampling temperatures per agent.
const (
	quoteTemperature   = 0.8
	programTemperature = 0.7
)

// App holds the application's dependencies.
type App struct {
	Config   *config.Config
	Log      *logger.Logger
	Store    planner.Store
	Resolver *planner.Resolver
	Metrics  *metrics.Store
	Pipeline *delivery.Pipeline
	Notifier *telegram.Notifier
	Location *time.Location

	db      *database.DB
	closers []func() error
}

// New builds every component once from cfg. Optional integrations that are
// not configured are left nil.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (a *App, err error) {
	mode, err := planner.ParseMode(cfg.DeploymentMode)
	if err != nil {
		return nil, err
	}
	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	a = &App{Config: cfg, Log: log, Location: loc}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	// 1. Plan store
	if a.Store, err = a.openStore(ctx); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.Store.Close)

	// 2. Metrics, only where the local database survives
	if mode == planner.ModePersistent {
		db, err := a.sqlite()
		if err != nil {
			return nil, err
		}
		a.Metrics = metrics.NewStore(db.SQL)
	}

	// 3. Content generation
	quoteGen, programGen, err := a.textGenerators(ctx)
	if err != nil {
		return nil, err
	}
	gen := planner.NewGenerator(quoteGen, programGen, log)

	// "Today" is the calendar date in TIMEZONE, the same zone the scheduler fires in.
	opts := []planner.ResolverOption{
		planner.WithClock(func() time.Time { return time.Now().In(loc) }),
	}
	if a.Metrics != nil {
		opts = append(opts, planner.WithMetrics(a.Metrics))
	}
	a.Resolver = planner.NewResolver(a.Store, gen, mode, log, opts...)

	// 4. Delivery
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		n, err := telegram.NewNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, log)
		if err != nil {
			log.Warn("Telegram delivery disabled", "error", err)
		} else {
			a.Notifier = n
		}
	}

	if cfg.SendGridAPIKey != "" {
		mail, err := mailer.New(log, mailer.Config{
			APIKey:          cfg.SendGridAPIKey,
			BaseURL:         cfg.SendGridBaseURL,
			DefaultFrom:     cfg.EmailFrom,
			DefaultFromName: cfg.EmailFromName,
		})
		if err != nil {
			return nil, err
		}
		var popts []delivery.Option
		if a.Notifier != nil {
			popts = append(popts, delivery.WithNotifier(a.Notifier))
		}
		a.Pipeline = delivery.NewPipeline(a.Resolver, mail, delivery.Config{
			Recipients:    cfg.Recipients,
			From:          mailer.Address{Email: cfg.EmailFrom, Name: cfg.EmailFromName},
			RetentionDays: cfg.RetentionDays,
		}, log, popts...)
	}

	log.Info("Application initialized",
		"mode", mode.String(),
		"store", cfg.StoreBackend,
		"provider", cfg.LLMProvider,
		"generator_configured", cfg.GeneratorConfigured(),
		"email_configured", a.Pipeline != nil,
		"telegram_configured", a.Notifier != nil,
	)
	return a, nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", name, err)
	}
	return loc, nil
}

func (a *App) openStore(ctx context.Context) (planner.Store, error) {
	switch a.Config.StoreBackend {
	case config.BackendSQLite:
		db, err := a.sqlite()
		if err != nil {
			return nil, err
		}
		return storage.NewSQLStore(db.SQL), nil
	case config.BackendPostgres:
		return storage.OpenPostgres(a.Config.PostgresDSN)
	case config.BackendRedis:
		return storage.OpenRedis(ctx, storage.RedisConfig{
			Addr:     a.Config.RedisAddr,
			Password: a.Config.RedisPassword,
			DB:       a.Config.RedisDB,
		})
	default:
		return storage.NewFileStore(filepath.Join(a.Config.DataDir, "plans"))
	}
}

// sqlite opens the shared database on first use.
func (a *App) sqlite() (*database.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := database.NewDB(a.Config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.db = db
	a.closers = append(a.closers, db.Close)
	return db, nil
}

func (a *App) textGenerators(ctx context.Context) (llm.TextGenerator, llm.TextGenerator, error) {
	cfg := a.Config
	if err := cfg.RequireGenerator(); err != nil {
		a.Log.Warn("LLM provider not configured, plans will use fallback content", "provider", cfg.LLMProvider)
		off := unavailableGenerator{err: err}
		return off, off, nil
	}

	switch cfg.LLMProvider {
	case "groq":
		return llm.NewGroqClient(cfg, quoteTemperature), llm.NewGroqClient(cfg, programTemperature), nil
	case "openai":
		return llm.NewOpenAIClient(cfg, quoteTemperature), llm.NewOpenAIClient(cfg, programTemperature), nil
	default:
		quote, err := llm.NewGeminiClient(ctx, cfg, quoteTemperature)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, quote.Close)
		program, err := llm.NewGeminiClient(ctx, cfg, programTemperature)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, program.Close)
		return quote, program, nil
	}
}

// unavailableGenerator stands in for an unconfigured provider.
type unavailableGenerator struct {
	err error
}

func (g unavailableGenerator) GenerateContent(context.Context, string) (llm.ContentResponse, error) {
	return llm.ContentResponse{}, g.err
}

// Server builds the HTTP surface over the app's components.
func (a *App) Server() *server.Server {
	deps := server.Deps{
		Config:  a.Config,
		Plans:   a.Resolver,
		Premium: access.NewPremiumGate(a.Config.PremiumSigningSecret),
		Log:     a.Log,
		Job:     server.JobFunc(a.RunDailyJob),
	}
	if a.Metrics != nil {
		deps.Usage = a.Metrics
	}
	return server.New(deps)
}

// ErrDeliveryNotConfigured is returned when email settings are missing.
var ErrDeliveryNotConfigured = errors.New("delivery not configured")

// RunDailyJob runs the delivery pipeline and posts a report to Telegram when enabled.
func (a *App) RunDailyJob(ctx context.Context) (*delivery.Report, error) {
	if err := a.Config.Require(config.EnvSendGridAPIKey, config.EnvEmailFrom, config.EnvRecipients); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeliveryNotConfigured, err)
	}
	if a.Pipeline == nil {
		return nil, ErrDeliveryNotConfigured
	}
	report, err := a.Pipeline.Run(ctx)
	if err != nil {
		return nil, err
	}

	if a.Notifier != nil {
		var usage []metrics.DailyUsage
		if a.Metrics != nil {
			if usage, err = a.Metrics.GetDailyUsage(7); err != nil {
				a.Log.Warn("Failed to read usage metrics", "error", err)
			}
		}
		if err := a.Notifier.SendReport(ctx, report.Summary(), usage, metrics.Snapshot(a.Config.DataDir)); err != nil {
			a.Log.Warn("Failed to send Telegram report", "error", err)
		}
	}
	return report, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Log.Warn("Failed to close resource", "error", err)
		}
	}
	a.closers = nil
}
