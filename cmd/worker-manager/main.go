// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	awsclient "booking-workers/internal/common/aws"
	"booking-workers/internal/common/camunda"
	"booking-workers/internal/common/config"
	"booking-workers/internal/common/database"
	"booking-workers/internal/common/logger"
	"booking-workers/internal/common/observability"
	"booking-workers/internal/common/salesapi"
	"booking-workers/internal/deal"
	"booking-workers/internal/inventory"
	"booking-workers/internal/quote"
	"booking-workers/internal/session"

	cp "booking-workers/internal/workers/booking/calculate-pricing"
	cks "booking-workers/internal/workers/booking/check-kyc-status"
	nc "booking-workers/internal/workers/booking/notify-confirmation"
	pl "booking-workers/internal/workers/booking/prefill-lead"
	rk "booking-workers/internal/workers/booking/request-kyc"
	sb "booking-workers/internal/workers/booking/submit-booking"
	vb "booking-workers/internal/workers/booking/validate-booking"
)

// registrar is what every booking handler exposes to the manager.
type registrar interface {
	Registration() camunda.Registration
}

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

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting booking worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(observability.Options{
		ServiceName: cfg.App.Name,
		Registerer:  prometheus.DefaultRegisterer,
		Logger:      log,
	})
	if err != nil {
		zapLog.Fatal("observability setup failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Zeebe ---
	zeebe, err := camunda.NewClient(ctx, camunda.ClientConfigFrom(cfg.Camunda))
	if err != nil {
		zapLog.Fatal("zeebe client failed", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL (optional inventory database) ---
	var pg *database.PostgresClient
	if cfg.Database.Postgres.Enabled() {
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
	} else {
		zapLog.Info("PostgreSQL not configured, plan templates come from the sales API")
	}

	// --- Redis ---
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

	// --- Domain services ---
	sales := salesapi.NewClient(cfg.SalesAPI.BaseURL, cfg.SalesAPI.APIToken, config.GetDuration(cfg.SalesAPI.Timeout))
	catalog := inventory.NewCatalog(sales, pg, log)
	costTemplates := inventory.NewCostTemplates(sales, redis, time.Duration(cfg.Pricing.CostTemplateCacheTTL)*time.Second, log)
	sessions := session.NewStore(redis, cfg.Session)
	quoter := quote.NewQuoter(catalog, quote.BoundsFrom(cfg.Pricing))

	var (
		mailer *awsclient.Mailer
		sms    *awsclient.SMSSender
	)
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		awsCfg, err := awsclient.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws config failed", zap.Error(err))
		}
		mailer = awsclient.NewMailer(awsclient.NewSESClient(awsCfg), cfg.Notifications.Email.FromEmail)
		sms = awsclient.NewSMSSender(awsclient.NewSNSClient(awsCfg), cfg.Notifications.SMS.SenderID)
	}

	// --- Handlers ---
	handlers := make([]registrar, 0, 7)
	must := func(h registrar, err error) {
		if err != nil {
			zapLog.Fatal("failed to create handler", zap.Error(err))
		}
		handlers = append(handlers, h)
	}

	must(pl.NewHandler(pl.HandlerOptions{
		AppConfig:     cfg,
		Leads:         sales,
		Units:         catalog,
		CostTemplates: costTemplates,
		Sessions:      sessions,
		Tracker:       deal.NewTracker(),
		Logger:        log,
	}))
	must(cp.NewHandler(cp.HandlerOptions{AppConfig: cfg, Quoter: quoter, Logger: log}))
	must(vb.NewHandler(vb.HandlerOptions{AppConfig: cfg, Quoter: quoter, Logger: log}))
	must(rk.NewHandler(rk.HandlerOptions{AppConfig: cfg, Quoter: quoter, KYC: sales, Logger: log}))
	must(cks.NewHandler(cks.HandlerOptions{AppConfig: cfg, KYC: sales, Logger: log}))
	must(sb.NewHandler(sb.HandlerOptions{AppConfig: cfg, Quoter: quoter, Backend: sales, Logger: log}))

	notifyOpts := nc.HandlerOptions{AppConfig: cfg, Logger: log}
	if mailer != nil {
		notifyOpts.Mailer = mailer
		notifyOpts.SMS = sms
	}
	must(nc.NewHandler(notifyOpts))

	workers := camunda.NewWorkers(zeebe.GetClient(), log)
	for _, h := range handlers {
		workers.Start(h.Registration())
	}
	zapLog.Info("Workers registered", zap.Strings("taskTypes", workers.TaskTypes()))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{"zeebe": "ok", "redis": "ok"}
		status := http.StatusOK
		if err := zeebe.HealthCheck(checkCtx); err != nil {
			checks["zeebe"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := redis.Ping(checkCtx); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if pg != nil {
			checks["postgres"] = "ok"
			if err := pg.Ping(checkCtx); err != nil {
				checks["postgres"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}
		label := "ready"
		if status != http.StatusOK {
			label = "not ready"
		}
		writeStatus(w, status, label, checks)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: cfg.App.HTTPAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", cfg.App.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	workers.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down observability", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, status string, checks map[string]string) {
	body := map[string]interface{}{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if checks != nil {
		body["checks"] = checks
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
