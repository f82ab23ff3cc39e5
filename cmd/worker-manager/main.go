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

	"music-store-agent/internal/chinook"
	"music-store-agent/internal/common/camunda"
	"music-store-agent/internal/common/config"
	"music-store-agent/internal/common/database"
	"music-store-agent/internal/common/embedding"
	"music-store-agent/internal/common/logger"
	"music-store-agent/internal/common/observability"
	"music-store-agent/internal/common/validation"
	"music-store-agent/internal/concerts"
	"music-store-agent/internal/memory"
	"music-store-agent/internal/prompts"
	"music-store-agent/pkg/registry"
	"music-store-agent/seed"

	// Identity (1)
	rc "music-store-agent/internal/workers/identity/resolve-customer"

	// Catalog (4)
	cfs "music-store-agent/internal/workers/catalog/check-for-songs"
	gaa "music-store-agent/internal/workers/catalog/get-albums-by-artist"
	gsg "music-store-agent/internal/workers/catalog/get-songs-by-genre"
	gta "music-store-agent/internal/workers/catalog/get-tracks-by-artist"

	// Invoices (3)
	gei "music-store-agent/internal/workers/invoice/get-employee-by-invoice"
	gid "music-store-agent/internal/workers/invoice/get-invoices-by-date"
	giu "music-store-agent/internal/workers/invoice/get-invoices-by-unit-price"

	// Concerts (1)
	rcc "music-store-agent/internal/workers/concert/recommend-concerts"

	// Prompts & memory (3)
	gp "music-store-agent/internal/workers/prompt/get-prompt"
	lm "music-store-agent/internal/workers/memory/load-memory"
	sm "music-store-agent/internal/workers/memory/save-memory"
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

// connectWithRetry opens and pings a client with retryWithBackoff. The handle
// from a failed ping is closed before the next attempt.
func connectWithRetry[T interface{ Close() error }](open func() (T, error), ping func(T) error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) (T, error) {
	var client T
	err := retryWithBackoff(func() error {
		c, err := open()
		if err != nil {
			return err
		}
		if err := ping(c); err != nil {
			_ = c.Close()
			return err
		}
		client = c
		return nil
	}, maxRetries, initialDelay, log, operationName)
	return client, err
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	zeebe, err := camunda.NewClient(ctx, cfg.Camunda, camunda.DefaultRetryConfig, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Catalog database ---
	var sqlClient *database.SQLClient
	sqlClient, err = connectWithRetry(
		func() (*database.SQLClient, error) { return database.NewSQL(cfg.Database.SQL) },
		func(c *database.SQLClient) error { return c.Ping(ctx) },
		15, 2*time.Second, zapLog, "SQL connection")
	if err != nil {
		zapLog.Fatal("sql store failed after retries", zap.Error(err))
	}
	defer sqlClient.Close()

	seedCtx, cancelSeed := context.WithTimeout(ctx, config.GetDuration(cfg.Database.SQL.ScriptTimeout))
	err = sqlClient.Seed(seedCtx, cfg.Database.SQL)
	cancelSeed()
	if err != nil {
		zapLog.Fatal("failed to load catalog", zap.Error(err))
	}
	store := chinook.NewStore(sqlClient, obs)
	zapLog.Info("Catalog database ready", zap.String("driver", sqlClient.Driver))

	// --- Redis ---
	var rdb *database.RedisClient
	rdb, err = connectWithRetry(
		func() (*database.RedisClient, error) { return database.NewRedis(cfg.Database.Redis) },
		func(c *database.RedisClient) error { return c.Ping(ctx) },
		10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Elasticsearch (only with the elasticsearch search backend) ---
	var esClient *database.ElasticsearchClient
	if cfg.Search.Backend == config.SearchBackendElasticsearch {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		version, err := esClient.CheckVersion(ctx)
		if err != nil {
			zapLog.Fatal("unsupported elasticsearch cluster", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully", zap.String("version", version))
	}

	// --- Prompts ---
	defaults, err := prompts.ReadDefaults(cfg.Prompts.SeedPath, seed.Prompts)
	if err != nil {
		zapLog.Fatal("failed to read default prompts", zap.Error(err))
	}
	promptStore := prompts.NewStore(rdb.Client, log)
	if cfg.Prompts.ForceSeed {
		if _, err := promptStore.Seed(ctx, defaults, true); err != nil {
			zapLog.Fatal("failed to seed prompts", zap.Error(err))
		}
	}
	if err := promptStore.LoadAll(ctx, defaults); err != nil {
		zapLog.Fatal("failed to load prompts", zap.Error(err))
	}

	// --- Concert index ---
	embedder, err := embedding.NewOpenAIEmbedder(cfg.Embedding, obs)
	if err != nil {
		zapLog.Fatal("failed to create embedder", zap.Error(err))
	}

	index, err := concerts.NewIndex(cfg.Search, rdb.Client, esRaw(esClient))
	if err != nil {
		zapLog.Fatal("failed to create concert index", zap.Error(err))
	}

	dataset, err := concerts.ReadConcerts(cfg.Search.SeedPath, seed.Concerts)
	if err != nil {
		zapLog.Fatal("failed to read concerts", zap.Error(err))
	}
	loaded, err := concerts.NewSeeder(index, embedder, log).Seed(ctx, dataset, cfg.Search.ForceSeed)
	if err != nil {
		zapLog.Fatal("failed to seed concert index", zap.Error(err))
	}
	zapLog.Info("Concert index ready",
		zap.String("backend", cfg.Search.Backend),
		zap.String("index", index.Name()),
		zap.Int("loaded", loaded),
	)

	engine := concerts.NewEngine(index, embedder, obs, log)
	profiles := memory.NewStore(rdb.Client)

	// --- Tool input schemas ---
	tools, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("failed to load tool registry", zap.Error(err))
	}
	schemas, err := tools.Schemas()
	if err != nil {
		zapLog.Fatal("failed to compile tool schemas", zap.Error(err))
	}

	workerConfig := func(taskType string) (config.WorkerConfig, *validation.Schema) {
		return config.GetWorkerConfig(cfg, taskType), schemas[taskType]
	}

	handlers := map[string]camunda.JobHandler{
		rc.TaskType:  rc.NewHandler(rc.LoadConfig(workerConfig(rc.TaskType)), store, log),
		gaa.TaskType: gaa.NewHandler(gaa.LoadConfig(workerConfig(gaa.TaskType)), store, log),
		gta.TaskType: gta.NewHandler(gta.LoadConfig(workerConfig(gta.TaskType)), store, log),
		gsg.TaskType: gsg.NewHandler(gsg.LoadConfig(workerConfig(gsg.TaskType)), store, log),
		cfs.TaskType: cfs.NewHandler(cfs.LoadConfig(workerConfig(cfs.TaskType)), store, log),
		gid.TaskType: gid.NewHandler(gid.LoadConfig(workerConfig(gid.TaskType)), store, log),
		giu.TaskType: giu.NewHandler(giu.LoadConfig(workerConfig(giu.TaskType)), store, log),
		gei.TaskType: gei.NewHandler(gei.LoadConfig(workerConfig(gei.TaskType)), store, log),
		rcc.TaskType: rcc.NewHandler(rcc.LoadConfig(workerConfig(rcc.TaskType)), engine, log),
		gp.TaskType:  gp.NewHandler(gp.LoadConfig(workerConfig(gp.TaskType)), promptStore, log),
		lm.TaskType:  lm.NewHandler(lm.LoadConfig(workerConfig(lm.TaskType)), profiles, log),
		sm.TaskType:  sm.NewHandler(sm.LoadConfig(workerConfig(sm.TaskType)), profiles, log),
	}

	var workers []*camunda.Worker
	for _, taskType := range tools.Names() {
		handler, ok := handlers[taskType]
		if !ok {
			zapLog.Warn("tool has no handler", zap.String("taskType", taskType))
			continue
		}
		if !config.IsWorkerEnabled(cfg, taskType) {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			continue
		}
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), taskType, config.GetWorkerConfig(cfg, taskType), handler, log))
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	checks := map[string]func(context.Context) error{
		"zeebe": zeebe.HealthCheck,
		"sql":   store.Ping,
		"redis": rdb.Ping,
	}
	if esClient != nil {
		checks["elasticsearch"] = esClient.Ping
	}

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           newHealthMux(checks),
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
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	for _, w := range workers {
		w.Stop()
	}

	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func esRaw(c *database.ElasticsearchClient) *elasticsearch.Client {
	if c == nil {
		return nil
	}
	return c.Client
}

// newHealthMux serves liveness, readiness and Prometheus metrics. Readiness
// pings every dependency and reports 503 when any of them fails.
func newHealthMux(checks map[string]func(context.Context) error) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		deps := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				deps[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}

		state := "ready"
		if status != http.StatusOK {
			state = "not_ready"
		}
		writeJSON(w, status, map[string]interface{}{
			"status":       state,
			"dependencies": deps,
			"time":         time.Now().Format(time.RFC3339),
		})
	})

	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
