// cmd/followup-runner/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"invoice-recovery/internal/common/config"
	"invoice-recovery/internal/common/database"
	"invoice-recovery/internal/common/lock"
	"invoice-recovery/internal/common/logger"
	"invoice-recovery/internal/common/observability"
	"invoice-recovery/internal/followup"
	"invoice-recovery/internal/followup/notify"
	"invoice-recovery/internal/followup/store"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting follow-up runner...",
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("followup-runner")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch (optional; log indexing is best effort) ---
	var esClient *database.ElasticsearchClient
	if cfg.Database.Elasticsearch.GetURL() != "" {
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Warn("elasticsearch unavailable, log indexing disabled", zap.Error(err))
			esClient = nil
		} else if err := esClient.Ping(); err != nil {
			zapLog.Warn("elasticsearch ping failed, log indexing disabled", zap.Error(err))
			esClient = nil
		} else {
			zapLog.Info("Elasticsearch connected successfully")
		}
	}

	// --- Health/Metrics endpoint ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ok",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening", zap.String("addr", cfg.Processor.MetricsAddr))
		if err := http.ListenAndServe(cfg.Processor.MetricsAddr, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Single-flight run lock ---
	runLock := lock.New(redis, cfg.Processor.RunLockKey, time.Duration(cfg.Processor.RunLockTTL)*time.Second)
	acquired, err := runLock.Acquire(ctx)
	if err != nil {
		zapLog.Fatal("run lock acquisition failed", zap.Error(err))
	}
	if !acquired {
		zapLog.Info("another run holds the lock, exiting")
		return
	}
	defer runLock.Release(ctx)

	// --- Build store and channel adapters ---
	pgStore := store.NewPostgresStore(pg.DB, log)
	if esClient != nil {
		pgStore = pgStore.WithLogIndex(esClient.Client, cfg.Database.Elasticsearch.LogIndex)
	}

	adapters := notify.Registry(
		notify.NewEmailAdapter(cfg.Channels.Email, log),
		notify.NewSMSAdapter(cfg.Channels.SMS, log),
		notify.NewWhatsAppAdapter(cfg.Channels.WhatsApp, log),
	)

	processor := followup.NewProcessor(pgStore, adapters, log, config.GetDuration(cfg.Processor.SendTimeout))

	start := time.Now()
	result, err := processor.Process(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	obs.RecordRun(ctx, status)
	obs.RecordRunDuration(ctx, time.Since(start), status)

	if err != nil {
		zapLog.Error("processor run failed", zap.Error(err))
		os.Exit(1)
	}

	zapLog.Info("processor run completed",
		zap.Int("processed", result.Processed),
		zap.Int("sent", result.Sent),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", result.Errors),
	)
}
