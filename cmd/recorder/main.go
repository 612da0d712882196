// recorder subscribes to the configured HyperScope channels and persists
// every frame to PostgreSQL.
// Usage: go run ./cmd/recorder --config configs/recorder.example.yaml
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/hyperscope-stream/internal/config"
	"github.com/rickgao/hyperscope-stream/internal/database"
	"github.com/rickgao/hyperscope-stream/internal/logging"
	"github.com/rickgao/hyperscope-stream/internal/recorder"
	"github.com/rickgao/hyperscope-stream/internal/stream"
	"github.com/rickgao/hyperscope-stream/internal/version"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "configs/recorder.example.yaml", "path to config file")
	envPath := flag.String("env", ".env", "optional dotenv file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if err := config.LoadDotEnv(*envPath); err != nil {
		slog.Error("failed to load env file", "error", err)
		os.Exit(1)
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err == nil {
		err = cfg.Recorder.Validate()
	}
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, closer := logging.New(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting recorder",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()

	if err != nil {
		logger.Error("recorder failed", "error", err)
		closer.Close()
		os.Exit(1)
	}
	logger.Info("recorder stopped")
	closer.Close()
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db := cfg.Recorder.Database
	logger.Info("connecting to database", "host", db.Host, "port", db.Port, "database", db.Name)

	pool, err := database.Connect(ctx, db)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := database.EnsureFramesTable(ctx, pool, cfg.Recorder.Table); err != nil {
		return err
	}
	logger.Info("database connected", "table", cfg.Recorder.Table)

	clientCfg, err := cfg.ClientConfig()
	if err != nil {
		return err
	}
	channels, err := cfg.Feeds.Channels()
	if err != nil {
		return err
	}

	rec := recorder.New(recorder.Config{
		BatchSize:     cfg.Recorder.BatchSize,
		FlushInterval: cfg.Recorder.FlushInterval,
		BufferSize:    cfg.Recorder.BufferSize,
	}, recorder.NewPGSink(pool, cfg.Recorder.Table), logger)
	if err := rec.Start(ctx); err != nil {
		return err
	}

	mux := stream.New(cfg.Stream.MuxConfig(), stream.NewDialer(clientCfg, logger), stream.WithLogger(logger))
	for _, ch := range channels {
		mux.Subscribe(ch, rec.Handler(ch))
	}
	logger.Info("recording", "endpoint", clientCfg.URL, "channels", channels)

	healthServer := &http.Server{
		Addr:              cfg.Recorder.HealthAddr,
		Handler:           healthHandler(pool, mux, rec),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting health server", "addr", healthServer.Addr)
		if err := healthServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Stop intake before the final flush.
		mux.Disconnect()
		healthServer.Shutdown(shutdownCtx)
		return rec.Stop(shutdownCtx)
	})

	return g.Wait()
}

type healthReport struct {
	Status     string         `json:"status"`
	Version    string         `json:"version"`
	Components map[string]any `json:"components"`
}

// healthHandler serves /health: unhealthy when the database is down,
// degraded while the stream is not open.
func healthHandler(pool *pgxpool.Pool, mux *stream.Mux, rec *recorder.Recorder) http.Handler {
	h := http.NewServeMux()

	h.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		report := healthReport{
			Status:     "healthy",
			Version:    version.Version,
			Components: make(map[string]any),
		}

		if err := pool.Ping(ctx); err != nil {
			report.Status = "unhealthy"
			report.Components["database"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			report.Components["database"] = "connected"
		}

		ss := mux.Stats()
		report.Components["stream"] = ss
		if ss.State != stream.StateConnected && report.Status == "healthy" {
			report.Status = "degraded"
		}
		report.Components["recorder"] = rec.Stats()

		w.Header().Set("Content-Type", "application/json")
		if report.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(report)
	})

	return h
}
