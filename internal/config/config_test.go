package config

import (
	"testing"
)

func TestNewFromEnv(t *testing.T) {
	// Helper function to set environment variables for a test
	setEnv := func(key, value string) {
		t.Helper()
		t.Setenv(key, value)
	}

	t.Run("Defaults", func(t *testing.T) {
		setEnv("DEPLOYMENT_MODE", "")
		setEnv("VERCEL", "")
		setEnv("STORE_BACKEND", "")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.StoreBackend != BackendFile {
			t.Errorf("Expected StoreBackend to be 'file', got '%s'", cfg.StoreBackend)
		}
		if cfg.DeploymentMode != ModePersistent {
			t.Errorf("Expected DeploymentMode to be 'persistent', got '%s'", cfg.DeploymentMode)
		}
		if cfg.RetentionDays != 30 {
			t.Errorf("Expected RetentionDays to be 30, got %d", cfg.RetentionDays)
		}
		if cfg.Port != "8080" {
			t.Errorf("Expected Port to be '8080', got '%s'", cfg.Port)
		}
	})

	t.Run("Success", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "gemini_key")
		setEnv("RECIPIENTS", "a@example.com, b@example.com,,")
		setEnv("CRON_SECRET", "cron")
		setEnv("TELEGRAM_CHAT_ID", "42")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.GeminiAPIKey != "gemini_key" {
			t.Errorf("Expected GeminiAPIKey to be 'gemini_key', got '%s'", cfg.GeminiAPIKey)
		}
		if len(cfg.Recipients) != 2 || cfg.Recipients[1] != "b@example.com" {
			t.Errorf("Expected 2 trimmed recipients, got %v", cfg.Recipients)
		}
		if cfg.TelegramChatID != 42 {
			t.Errorf("Expected TelegramChatID to be 42, got %d", cfg.TelegramChatID)
		}
		if !cfg.GeneratorConfigured() {
			t.Error("Expected generator to be configured")
		}
	})

	t.Run("ServerlessDetection", func(t *testing.T) {
		setEnv("DEPLOYMENT_MODE", "")
		setEnv("VERCEL", "1")
		setEnv("STORE_BACKEND", "file")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.DeploymentMode != ModeEphemeral {
			t.Errorf("Expected DeploymentMode to be 'ephemeral', got '%s'", cfg.DeploymentMode)
		}
	})

	t.Run("ServerlessWithRemoteStore", func(t *testing.T) {
		setEnv("DEPLOYMENT_MODE", "")
		setEnv("VERCEL", "1")
		setEnv("STORE_BACKEND", "redis")
		setEnv("REDIS_ADDR", "localhost:6379")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.DeploymentMode != ModePersistent {
			t.Errorf("Expected DeploymentMode to be 'persistent', got '%s'", cfg.DeploymentMode)
		}
	})

	t.Run("InvalidMode", func(t *testing.T) {
		setEnv("DEPLOYMENT_MODE", "sometimes")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for invalid DEPLOYMENT_MODE, got nil")
		}
	})

	t.Run("InvalidTelegramChatID", func(t *testing.T) {
		setEnv("DEPLOYMENT_MODE", "")
		setEnv("STORE_BACKEND", "file")
		for _, raw := range []string{"123abc", "12 34", "chat"} {
			setEnv("TELEGRAM_CHAT_ID", raw)
			if _, err := NewFromEnv(); err == nil {
				t.Errorf("Expected an error for TELEGRAM_CHAT_ID=%q, got nil", raw)
			}
		}

		setEnv("TELEGRAM_CHAT_ID", "-1001234567890")
		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error for a group chat id, got %v", err)
		}
		if cfg.TelegramChatID != -1001234567890 {
			t.Errorf("Expected TelegramChatID to be -1001234567890, got %d", cfg.TelegramChatID)
		}
	})

	t.Run("MissingDatabaseURL", func(t *testing.T) {
		setEnv("STORE_BACKEND", "postgres")
		setEnv("DATABASE_URL", "")
		setEnv("POSTGRES_URL", "")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing DATABASE_URL, got nil")
		}
		expectedError := "DATABASE_URL environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})
}

func TestRequire(t *testing.T) {
	cfg := &Config{CronSecret: "cron", LLMProvider: "groq"}

	if err := cfg.Require(EnvCronSecret); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	err := cfg.Require(EnvCronSecret, EnvSendGridAPIKey, EnvRecipients)
	if err == nil {
		t.Fatal("Expected an error for missing SENDGRID_API_KEY, got nil")
	}
	expectedError := "SENDGRID_API_KEY environment variable not set"
	if err.Error() != expectedError {
		t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
	}

	err = cfg.RequireGenerator()
	if err == nil || err.Error() != "GROQ_API_KEY environment variable not set" {
		t.Errorf("Expected missing GROQ_API_KEY error, got %v", err)
	}
}
