// cmd/router-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pv-query-router/internal/common/config"
	"pv-query-router/internal/common/database"
	"pv-query-router/internal/common/logger"
	"pv-query-router/internal/common/observability"
	"pv-query-router/internal/dbagent"
	"pv-query-router/internal/llm"
	"pv-query-router/internal/router"
	"pv-query-router/internal/session"
	businessknowledge "pv-query-router/internal/tools/business-knowledge"
	"pv-query-router/internal/tools/toolset"
	transport "pv-query-router/internal/transport/http"
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

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting router server...",
		zap.String("environment", cfg.App.Environment),
		zap.Bool("useMock", cfg.Tools.UseMock),
		zap.String("sessionBackend", cfg.Session.Backend),
	)

	var obs *observability.Observability
	if cfg.Metrics.Enabled {
		obs = observability.New(cfg.App.Name)
	} else {
		obs = observability.NewNoop()
	}
	defer obs.Shutdown()

	ctx := context.Background()
	var services []string

	// --- Redis (session backend) ---
	var redis *database.RedisClient
	if cfg.Session.Backend == config.SessionBackendRedis {
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 5, time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		services = append(services, "session:redis")
		zapLog.Info("Redis connected successfully")
	} else {
		services = append(services, "session:memory")
	}

	// --- Elasticsearch (knowledge corpus) ---
	var searcher businessknowledge.Searcher
	if cfg.Tools.Knowledge.Source == config.KnowledgeSourceES && !cfg.Tools.UseMock {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 5, time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		searcher = esClient
		services = append(services, "knowledge:elasticsearch")
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Tools, sessions and router ---
	registry, err := toolset.NewRegistry(cfg, searcher, obs, log)
	if err != nil {
		zapLog.Fatal("failed to build tools", zap.Error(err))
	}

	store, err := session.New(cfg.Session, redis)
	if err != nil {
		zapLog.Fatal("failed to create session store", zap.Error(err))
	}

	agent, err := router.NewFromConfig(cfg, registry, store, obs, log)
	if err != nil {
		zapLog.Fatal("failed to create router agent", zap.Error(err))
	}
	zapLog.Info("Router agent ready", zap.String("strategy", agent.Strategy()))

	// --- Database agent ---
	var dbAgent *dbagent.Handler
	if cfg.DBAgent.Enabled {
		dbAgent, err = newDBAgent(ctx, cfg, log, zapLog)
		if err != nil {
			zapLog.Fatal("failed to create database agent", zap.Error(err))
		}
	}

	// --- HTTP server ---
	e := transport.NewServer(cfg.Server, transport.Dependencies{
		Agent:    agent,
		DBAgent:  dbAgent,
		Version:  cfg.App.Version,
		Services: services,
	}, log)

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := e.Start(cfg.Server.Address); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Metrics Server ---
	if cfg.Metrics.Enabled && cfg.Metrics.Address != cfg.Server.Address {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			zapLog.Info("Metrics server listening", zap.String("address", cfg.Metrics.Address))
			if err := http.ListenAndServe(cfg.Metrics.Address, mux); err != nil {
				zapLog.Error("Metrics server failed", zap.Error(err))
			}
		}()
	}

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Router server stopped gracefully")
}

func newDBAgent(ctx context.Context, cfg *config.Config, log logger.Logger, zapLog *zap.Logger) (*dbagent.Handler, error) {
	var pg *database.PostgresClient
	err := retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 5, time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}
	zapLog.Info("PostgreSQL connected successfully")

	client, err := llm.NewClient(cfg.LLM, log)
	if err != nil {
		pg.Close()
		return nil, err
	}
	return dbagent.NewHandler(dbagent.LoadConfig(cfg.DBAgent), pg.GetDB(), client, log)
}
