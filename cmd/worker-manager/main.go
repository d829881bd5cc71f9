// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"rental-readiness-workers/internal/common/aws"
	"rental-readiness-workers/internal/common/camunda"
	"rental-readiness-workers/internal/common/config"
	"rental-readiness-workers/internal/common/database"
	"rental-readiness-workers/internal/common/genai"
	"rental-readiness-workers/internal/common/logger"
	"rental-readiness-workers/internal/common/observability"
	"rental-readiness-workers/internal/repository"

	// Assessment Workers (2)
	ca "rental-readiness-workers/internal/workers/assessment/claim-assessment"
	sa "rental-readiness-workers/internal/workers/assessment/submit-assessment"

	// Analysis Workers (2)
	ccs "rental-readiness-workers/internal/workers/analysis/calculate-category-scores"
	dra "rental-readiness-workers/internal/workers/analysis/detailed-readiness-analysis"

	// Action Plan Workers (5)
	bdc "rental-readiness-workers/internal/workers/action-plan/build-document-checklist"
	cat "rental-readiness-workers/internal/workers/action-plan/complete-action-task"
	da "rental-readiness-workers/internal/workers/action-plan/delete-artifact"
	gap "rental-readiness-workers/internal/workers/action-plan/generate-action-plan"
	ra "rental-readiness-workers/internal/workers/action-plan/record-artifact"

	// AI Assist Workers (2)
	ar "rental-readiness-workers/internal/workers/ai-assist/assistant-reply"
	gcl "rental-readiness-workers/internal/workers/ai-assist/generate-cover-letter"

	// Communication Workers (1)
	srs "rental-readiness-workers/internal/workers/communication/send-readiness-summary"
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
			delay *= 2
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

	zapLog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFromApp(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
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
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch (optional rent index) ---
	var es *elasticsearch.Client
	if cfg.Database.Elasticsearch.URL != "" {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Warn("elasticsearch unavailable, serving configured suburb medians", zap.Error(err))
		} else {
			es = esClient.Client
			zapLog.Info("Elasticsearch connected successfully")
		}
	}

	// --- Stores ---
	assessments := repository.NewAssessmentStore(pg.DB)
	artifacts := repository.NewArtifactStore(pg.DB)
	tasks := repository.NewTaskStore(pg.DB)
	profiles := repository.NewProfileStore(pg.DB, redis.Client, cfg.ActionPlan.CacheTTL(), log)
	rents := repository.NewRentLoader(es, redis.Client, cfg.Scoring, log)
	if table, err := rents.Load(ctx); err != nil {
		zapLog.Warn("rent index not loaded at startup", zap.Error(err))
	} else {
		zapLog.Info("rent table loaded", zap.Int("suburbs", table.Len()))
	}

	// --- External Service Clients ---
	generator := genai.NewClient(cfg.APIs.GenAI)

	summaryDeps := srs.ServiceDependencies{Logger: log}
	if cfg.Notifications.Email.Enabled {
		mailer, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region, cfg.Notifications.Email.FromEmail)
		if err != nil {
			zapLog.Fatal("ses client init failed", zap.Error(err))
		}
		summaryDeps.Mailer = mailer
	}
	if cfg.Notifications.SMS.Enabled {
		sms, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region, cfg.Notifications.SMS.SenderID)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		summaryDeps.SMS = sms
	}

	zapLog.Info("All external service clients initialized")

	// --- Register Workers ---
	workers := camunda.NewWorkers(zeebe.GetClient(), log)
	defer workers.Close()

	worker := func(taskType string) config.WorkerConfig {
		return config.GetWorkerConfig(cfg, taskType)
	}

	// --- 1. Assessment Workers (2) ---
	workers.Start(sa.TaskType, worker(sa.TaskType),
		sa.NewHandler(sa.LoadConfig(worker(sa.TaskType)), assessments, rents, log))
	workers.Start(ca.TaskType, worker(ca.TaskType),
		ca.NewHandler(ca.LoadConfig(worker(ca.TaskType)), assessments, log))

	// --- 2. Analysis Workers (2) ---
	workers.Start(ccs.TaskType, worker(ccs.TaskType),
		ccs.NewHandler(ccs.LoadConfig(worker(ccs.TaskType)), assessments, profiles, rents, log))
	workers.Start(dra.TaskType, worker(dra.TaskType),
		dra.NewHandler(dra.LoadConfig(worker(dra.TaskType), cfg.ActionPlan), assessments, profiles, tasks, rents, log))

	// --- 3. Action Plan Workers (5) ---
	workers.Start(gap.TaskType, worker(gap.TaskType),
		gap.NewHandler(gap.LoadConfig(worker(gap.TaskType), cfg.ActionPlan), assessments, artifacts, tasks, profiles, rents, log))
	workers.Start(cat.TaskType, worker(cat.TaskType),
		cat.NewHandler(cat.LoadConfig(worker(cat.TaskType), cfg.ActionPlan), assessments, tasks, profiles, log))
	workers.Start(ra.TaskType, worker(ra.TaskType),
		ra.NewHandler(ra.LoadConfig(worker(ra.TaskType), cfg.ActionPlan), assessments, artifacts, tasks, profiles, log))
	workers.Start(da.TaskType, worker(da.TaskType),
		da.NewHandler(da.LoadConfig(worker(da.TaskType)), artifacts, log))
	workers.Start(bdc.TaskType, worker(bdc.TaskType),
		bdc.NewHandler(bdc.LoadConfig(worker(bdc.TaskType)), assessments, artifacts, log))

	// --- 4. AI Assist Workers (2) ---
	workers.Start(ar.TaskType, worker(ar.TaskType),
		ar.NewHandler(ar.LoadConfig(worker(ar.TaskType)), assessments, tasks, profiles, generator, log))
	workers.Start(gcl.TaskType, worker(gcl.TaskType),
		gcl.NewHandler(gcl.LoadConfig(worker(gcl.TaskType)), profiles, generator, log))

	// --- 5. Communication Workers (1) ---
	summaryCfg := srs.LoadConfig(worker(srs.TaskType), cfg.ActionPlan, cfg.Notifications)
	workers.Start(srs.TaskType, worker(srs.TaskType),
		srs.NewHandler(summaryCfg, assessments, artifacts, tasks, profiles, rents,
			srs.NewService(summaryDeps, summaryCfg), log))

	running := workers.Running()
	zapLog.Info("Workers registered",
		zap.Int("running", len(running)),
		zap.Strings("taskTypes", running),
	)

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]interface{}{"status": "healthy"})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{
			"zeebe":    checkResult(zeebe.HealthCheck(checkCtx)),
			"postgres": checkResult(pg.Ping(checkCtx)),
			"redis":    checkResult(redis.Ping(checkCtx)),
		}
		status := http.StatusOK
		for _, result := range checks {
			if result != "ok" {
				status = http.StatusServiceUnavailable
			}
		}
		writeStatus(w, status, map[string]interface{}{
			"status":  http.StatusText(status),
			"checks":  checks,
			"workers": workers.Running(),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Health/Metrics server shutdown failed", zap.Error(err))
	}
	workers.Close()

	zapLog.Info("Worker manager stopped")
}

func checkResult(err error) string {
	if err != nil {
		return err.Error()
	}
	return "ok"
}

func writeStatus(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
