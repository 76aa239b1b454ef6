package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Environment variable names that routes may require at request time.
const (
	EnvGeminiAPIKey   = "GEMINI_API_KEY"
	EnvGroqAPIKey     = "GROQ_API_KEY"
	EnvOpenAIAPIKey   = "OPENAI_API_KEY"
	EnvSendGridAPIKey = "SENDGRID_API_KEY"
	EnvEmailFrom      = "EMAIL_FROM"
	EnvRecipients     = "RECIPIENTS"
	EnvAdminSecret    = "ADMIN_SECRET"
	EnvCronSecret     = "CRON_SECRET"
)

// Deployment modes.
const (
	ModePersistent = "persistent"
	ModeEphemeral  = "ephemeral"
)

// Store backends.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds the configuration for the application.
type Config struct {
	LLMProvider  string
	LLMModel     string
	GeminiAPIKey string
	GroqAPIKey   string
	OpenAIAPIKey string

	SendGridAPIKey  string
	SendGridBaseURL string
	EmailFrom       string
	EmailFromName   string
	Recipients      []string

	AdminSecret          string
	CronSecret           string
	PremiumSigningSecret string

	DeploymentMode string
	StoreBackend   string
	DataDir        string
	DatabasePath   string
	PostgresDSN    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RetentionDays  int

	CronSchedule string
	Timezone     string

	// Telegram Config (optional delivery channel)
	TelegramBotToken string
	TelegramChatID   int64

	Port    string
	LogMode string
}

// NewFromEnv creates a new Config object from environment variables.
// Keys needed only by specific routes are not enforced here; see Require.
func NewFromEnv() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("LLM_PROVIDER", "gemini")
	v.SetDefault("SENDGRID_BASE_URL", "https://api.sendgrid.com")
	v.SetDefault("EMAIL_FROM_NAME", "Daily Wellness")
	v.SetDefault("STORE_BACKEND", BackendFile)
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("DATABASE_PATH", "data/wellness.db")
	v.SetDefault("RETENTION_DAYS", 30)
	v.SetDefault("CRON_SCHEDULE", "0 6 * * *")
	v.SetDefault("TIMEZONE", "Local")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_MODE", "development")

	provider := strings.ToLower(strings.TrimSpace(v.GetString("LLM_PROVIDER")))
	switch provider {
	case "gemini", "groq", "openai":
	default:
		return nil, fmt.Errorf("LLM_PROVIDER must be one of gemini, groq, openai (got %q)", provider)
	}

	backend := strings.ToLower(strings.TrimSpace(v.GetString("STORE_BACKEND")))
	switch backend {
	case BackendFile, BackendSQLite, BackendPostgres, BackendRedis:
	default:
		return nil, fmt.Errorf("STORE_BACKEND must be one of file, sqlite, postgres, redis (got %q)", backend)
	}

	postgresDSN := strings.TrimSpace(v.GetString("DATABASE_URL"))
	if postgresDSN == "" {
		postgresDSN = strings.TrimSpace(v.GetString("POSTGRES_URL"))
	}
	if backend == BackendPostgres && postgresDSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	redisAddr := strings.TrimSpace(v.GetString("REDIS_ADDR"))
	if backend == BackendRedis && redisAddr == "" {
		return nil, fmt.Errorf("REDIS_ADDR environment variable not set")
	}

	mode, err := resolveMode(v, backend)
	if err != nil {
		return nil, err
	}

	retention := v.GetInt("RETENTION_DAYS")
	if retention <= 0 {
		return nil, fmt.Errorf("RETENTION_DAYS must be a positive number of days")
	}

	var telegramChatID int64
	if raw := strings.TrimSpace(v.GetString("TELEGRAM_CHAT_ID")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID must be numeric (got %q)", raw)
		}
		telegramChatID = id
	}

	return &Config{
		LLMProvider:          provider,
		LLMModel:             strings.TrimSpace(v.GetString("LLM_MODEL")),
		GeminiAPIKey:         strings.TrimSpace(v.GetString(EnvGeminiAPIKey)),
		GroqAPIKey:           strings.TrimSpace(v.GetString(EnvGroqAPIKey)),
		OpenAIAPIKey:         strings.TrimSpace(v.GetString(EnvOpenAIAPIKey)),
		SendGridAPIKey:       strings.TrimSpace(v.GetString(EnvSendGridAPIKey)),
		SendGridBaseURL:      strings.TrimSpace(v.GetString("SENDGRID_BASE_URL")),
		EmailFrom:            strings.TrimSpace(v.GetString(EnvEmailFrom)),
		EmailFromName:        strings.TrimSpace(v.GetString("EMAIL_FROM_NAME")),
		Recipients:           splitList(v.GetString(EnvRecipients)),
		AdminSecret:          strings.TrimSpace(v.GetString(EnvAdminSecret)),
		CronSecret:           strings.TrimSpace(v.GetString(EnvCronSecret)),
		PremiumSigningSecret: strings.TrimSpace(v.GetString("PREMIUM_SIGNING_SECRET")),
		DeploymentMode:       mode,
		StoreBackend:         backend,
		DataDir:              v.GetString("DATA_DIR"),
		DatabasePath:         v.GetString("DATABASE_PATH"),
		PostgresDSN:          postgresDSN,
		RedisAddr:            redisAddr,
		RedisPassword:        v.GetString("REDIS_PASSWORD"),
		RedisDB:              v.GetInt("REDIS_DB"),
		RetentionDays:        retention,
		CronSchedule:         v.GetString("CRON_SCHEDULE"),
		Timezone:             v.GetString("TIMEZONE"),
		TelegramBotToken:     strings.TrimSpace(v.GetString("TELEGRAM_BOT_TOKEN")),
		TelegramChatID:       telegramChatID,
		Port:                 v.GetString("PORT"),
		LogMode:              v.GetString("LOG_MODE"),
	}, nil
}

// resolveMode honors an explicit DEPLOYMENT_MODE and otherwise detects a
// serverless host, where the local filesystem does not survive between requests.
func resolveMode(v *viper.Viper, backend string) (string, error) {
	explicit := strings.ToLower(strings.TrimSpace(v.GetString("DEPLOYMENT_MODE")))
	switch explicit {
	case ModePersistent, ModeEphemeral:
		return explicit, nil
	case "":
	default:
		return "", fmt.Errorf("DEPLOYMENT_MODE must be persistent or ephemeral (got %q)", explicit)
	}

	serverless := v.GetString("VERCEL") == "1" ||
		v.GetString("AWS_LAMBDA_FUNCTION_NAME") != "" ||
		v.GetString("K_SERVICE") != ""
	if serverless && backend == BackendFile {
		return ModeEphemeral, nil
	}
	return ModePersistent, nil
}

// Require returns an error naming the first listed key that is not configured.
func (c *Config) Require(names ...string) error {
	for _, name := range names {
		if c.lookup(name) == "" {
			return fmt.Errorf("%s environment variable not set", name)
		}
	}
	return nil
}

// RequireGenerator checks the API key of the configured LLM provider.
func (c *Config) RequireGenerator() error {
	return c.Require(c.GeneratorKeyName())
}

// GeneratorKeyName is the env var holding the key for the configured provider.
func (c *Config) GeneratorKeyName() string {
	switch c.LLMProvider {
	case "groq":
		return EnvGroqAPIKey
	case "openai":
		return EnvOpenAIAPIKey
	default:
		return EnvGeminiAPIKey
	}
}

// GeneratorConfigured reports whether the active provider has a key.
func (c *Config) GeneratorConfigured() bool {
	return c.RequireGenerator() == nil
}

func (c *Config) lookup(name string) string {
	switch name {
	case EnvGeminiAPIKey:
		return c.GeminiAPIKey
	case EnvGroqAPIKey:
		return c.GroqAPIKey
	case EnvOpenAIAPIKey:
		return c.OpenAIAPIKey
	case EnvSendGridAPIKey:
		return c.SendGridAPIKey
	case EnvEmailFrom:
		return c.EmailFrom
	case EnvRecipients:
		return strings.Join(c.Recipients, ",")
	case EnvAdminSecret:
		return c.AdminSecret
	case EnvCronSecret:
		return c.CronSecret
	default:
		return ""
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
