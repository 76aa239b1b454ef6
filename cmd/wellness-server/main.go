package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wellness-planner/internal/app"
	"wellness-planner/internal/config"
	"wellness-planner/internal/logger"
	"wellness-planner/internal/planner"
	"wellness-planner/internal/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	if cfg.LogMode == "production" || cfg.LogMode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// 2. Initialize Services
	application, err := app.New(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("Failed to initialize application", "error", err)
	}
	defer application.Close()

	// 3. Schedule the daily job where plans survive between runs
	var sched *scheduler.Scheduler
	if application.Resolver.Mode() == planner.ModePersistent {
		sched, err = scheduler.New(cfg.CronSchedule, cfg.Timezone, 10*time.Minute, func(ctx context.Context) error {
			_, err := application.RunDailyJob(ctx)
			if errors.Is(err, app.ErrDeliveryNotConfigured) {
				zl.Warn("Skipping daily job", "reason", err)
				return nil
			}
			return err
		}, zl)
		if err != nil {
			zl.Fatal("Failed to create scheduler", "error", err)
		}
		sched.Start()
	}

	// 4. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           application.Server().Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("Wellness server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("Server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if sched != nil {
		sched.Stop(ctxShutdown)
	}
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zl.Error("Server forced to shutdown", "error", err)
	}

	zl.Info("Server exiting")
}
