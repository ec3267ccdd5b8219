package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/bryanwahyu/interpretlab/internal/application/catalog"
	"github.com/bryanwahyu/interpretlab/internal/application/execution"
	"github.com/bryanwahyu/interpretlab/internal/application/ingest"
	"github.com/bryanwahyu/interpretlab/internal/application/render"
	"github.com/bryanwahyu/interpretlab/internal/config"
	"github.com/bryanwahyu/interpretlab/internal/domain/analyses"
	"github.com/bryanwahyu/interpretlab/internal/domain/artifacts"
	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/events"
	"github.com/bryanwahyu/interpretlab/internal/domain/lifecycle"
	"github.com/bryanwahyu/interpretlab/internal/infra/ai/openai"
	"github.com/bryanwahyu/interpretlab/internal/infra/db/memory"
	"github.com/bryanwahyu/interpretlab/internal/infra/db/mysql"
	"github.com/bryanwahyu/interpretlab/internal/infra/db/postgres"
	"github.com/bryanwahyu/interpretlab/internal/infra/db/sqlite"
	"github.com/bryanwahyu/interpretlab/internal/infra/db/sqlstore"
	"github.com/bryanwahyu/interpretlab/internal/infra/httpserver"
	"github.com/bryanwahyu/interpretlab/internal/infra/introspect"
	"github.com/bryanwahyu/interpretlab/internal/infra/logging"
	"github.com/bryanwahyu/interpretlab/internal/infra/messaging/kafka"
	"github.com/bryanwahyu/interpretlab/internal/infra/storage"
	"github.com/bryanwahyu/interpretlab/internal/middleware"
)

// backend is whichever entity store the config selects.
type backend struct {
	repos catalog.Repositories
	check middleware.HealthChecker
	close func() error
}

func main() {
	// path config.yaml, wajib ada kalau CONFIG_PATH di-set
	path, required := "config.yaml", false
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path, required = v, true
	}

	cfg, err := config.Load(path, required)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}

	os.Exit(finish(logger, run(cfg, logger)))
}

// finish logs the outcome and flushes the logger before the process exits.
func finish(logger *zap.Logger, err error) int {
	code := 0
	if err != nil {
		logger.Error("server stopped", zap.Error(err))
		code = 1
	}
	_ = logger.Sync()
	return code
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()
	clock := core.SystemClock{}

	store, err := openStore(ctx, cfg, clock)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer func() {
		if err := store.close(); err != nil {
			logger.Warn("store close failed", zap.Error(err))
		}
	}()

	arts, err := openArtifacts(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("artifacts: %w", err)
	}

	var publisher events.Publisher = events.Discard{}
	if len(cfg.Kafka.Brokers) > 0 {
		p, err := kafka.NewPublisher(kafka.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic}, logger)
		if err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
		publisher = p
	}
	defer publisher.Close()

	machines, err := lifecycle.ForMode(lifecycle.Mode(cfg.Lifecycle.Mode))
	if err != nil {
		return err
	}

	metrics := middleware.NewMetrics()
	cat := catalog.NewService(store.repos,
		catalog.WithMachines(machines),
		catalog.WithPublisher(publisher),
		catalog.WithRecorder(metrics),
		catalog.WithClock(clock),
		catalog.WithLogger(logger),
	)

	var engine analyses.Engine = execution.Unconfigured{}
	if cfg.OpenAI.APIKey != "" {
		engine = openai.NewEngine(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger)
	} else {
		logger.Warn("openai api key not set, analysis runs will fail")
	}
	runner := &execution.Service{Catalog: cat, Engine: engine, Log: logger}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	queue := execution.NewQueue(runner, cfg.Workers.Count, cfg.Workers.Queue, logger)
	queue.Start(workerCtx)

	proxies, err := middleware.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return err
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Capacity > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)
		defer limiter.Close()
	}

	handler := httpserver.NewRouter(httpserver.Deps{
		Catalog: cat,
		Ingest: &ingest.Service{
			Catalog:      cat,
			Artifacts:    arts,
			Introspector: introspect.Files{},
			Log:          logger,
		},
		Render:         &render.Service{Catalog: cat},
		Runner:         runner,
		Queue:          queue,
		Metrics:        metrics,
		RateLimiter:    limiter,
		Checks:         map[string]middleware.HealthChecker{"store": store.check},
		APIKeys:        cfg.Auth.APIKeys,
		CORSOrigins:    cfg.Server.CORSOrigins,
		TrustedProxies: proxies,
		Log:            logger,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("database", cfg.Database.Driver),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("lifecycle", cfg.Lifecycle.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case err := <-errCh:
		return err
	}
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
	// job yang sudah jalan dibiarkan selesai
	queue.Close()
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, clock core.Clock) (*backend, error) {
	switch cfg.Database.Driver {
	case "memory":
		s := memory.New(clock)
		return &backend{
			repos: catalog.Repositories{
				Models: s.Models(), Datasets: s.Datasets(), Analyses: s.Analyses(), Visualizations: s.Visualizations(),
			},
			check: s,
			close: func() error { return nil },
		}, nil
	case "sqlite", "mysql", "postgres":
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	var (
		open func(context.Context, string, core.Clock) (*sqlstore.Store, error)
		dsn  string
	)
	switch cfg.Database.Driver {
	case "sqlite":
		open, dsn = sqlite.Open, cfg.SQLitePath()
	case "mysql":
		open, dsn = mysql.Open, cfg.MySQLDSN()
	default:
		open, dsn = postgres.Open, cfg.PostgresDSN()
	}
	s, err := open(ctx, dsn, clock)
	if err != nil {
		return nil, err
	}
	return &backend{
		repos: catalog.Repositories{
			Models: s.Models(), Datasets: s.Datasets(), Analyses: s.Analyses(), Visualizations: s.Visualizations(),
		},
		check: s,
		close: s.Close,
	}, nil
}

func openArtifacts(ctx context.Context, cfg *config.Config, logger *zap.Logger) (artifacts.Store, error) {
	st := cfg.Storage
	switch st.Driver {
	case "fs":
		return storage.NewFS(st.Root, logger)
	case "minio":
		return storage.NewMinIO(ctx, storage.MinIOConfig{
			Endpoint:  st.Endpoint,
			Region:    st.Region,
			Bucket:    st.Bucket,
			AccessKey: st.AccessKey,
			SecretKey: st.SecretKey,
			UseSSL:    st.UseSSL,
		}, logger)
	case "s3":
		return storage.NewS3(ctx, storage.S3Config{
			Region:          st.Region,
			Bucket:          st.Bucket,
			Endpoint:        st.Endpoint,
			AccessKeyID:     st.AccessKey,
			SecretAccessKey: st.SecretKey,
			PathStyle:       st.PathStyle,
		}, logger)
	}
	return nil, fmt.Errorf("unknown storage driver %q", st.Driver)
}
