// Package main is the Causality engine binary: it wires SystemContext,
// the TEG executor, the cross-domain coordinator and the admin HTTP
// surface together and serves them until an interrupt signal arrives.
// Grounded on the teacher's cmd/gateway entry point: load config, build
// dependencies, start an http.Server in a goroutine, wait on SIGINT and
// SIGTERM, shut down with a bounded grace period.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/zap"

	"github.com/timewave-computer/causality/infrastructure/config"
	"github.com/timewave-computer/causality/infrastructure/tracing"
	"github.com/timewave-computer/causality/system/api"
	"github.com/timewave-computer/causality/system/coordinator"
	"github.com/timewave-computer/causality/system/executor"
	"github.com/timewave-computer/causality/system/registry"
	"github.com/timewave-computer/causality/system/zk"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	zapLog, err := newZapLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer zapLog.Sync()

	sys := registry.New(zapLog)
	registerDefaultHandlers(sys)

	exec := executor.NewExecutor(executorConfig(cfg), sys.Handlers, newZerologLogger(cfg.Logging.Level))

	if endpoint := os.Getenv("CAUSALITY_OTLP_ENDPOINT"); endpoint != "" {
		provider, shutdownTracing, err := tracing.NewOTLPTracerProvider(context.Background(), tracing.OTLPConfig{
			Endpoint:    endpoint,
			Insecure:    os.Getenv("CAUSALITY_OTLP_INSECURE") != "",
			ServiceName: "causality-engine",
		})
		if err != nil {
			zapLog.Warn("otlp tracer unavailable, continuing without spans", zap.Error(err))
		} else {
			exec.WithTracer(tracing.ConfigureGlobalTracer(provider, "executor"))
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdownTracing(shutdownCtx)
			}()
		}
	}

	backends := func(domain string) (zk.ZkBackend, bool) {
		b, err := sys.Backends.Required(domain)
		if err != nil {
			return nil, false
		}
		return b, true
	}
	buildWitness := func(domain string, instructions []coordinator.Instruction, global *zk.Witness) (*zk.Witness, error) {
		return global, nil
	}
	coord := coordinator.NewCoordinator(zapLog, sys.Circuits, backends, buildWitness)

	sweepEntry, err := sys.ScheduleMaintenance("@every 5m", func() {
		zapLog.Debug("maintenance sweep tick")
	})
	if err != nil {
		zapLog.Warn("failed to schedule maintenance sweep", zap.Error(err))
	} else {
		zapLog.Info("maintenance sweep scheduled", zap.Int("entry_id", int(sweepEntry)))
	}
	defer sys.StopMaintenance()

	srv := api.NewServer(api.DefaultConfig(), sys, exec, coord, zapLog)

	addr := os.Getenv("CAUSALITY_ADDR")
	if addr == "" {
		addr = ":8088"
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		zapLog.Info("engine listening", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Warn("shutdown error", zap.Error(err))
	}
}

// registerDefaultHandlers wires the effect tags this engine knows how to
// perform natively; domain-specific deployments register additional
// handlers on sys.Handlers before traffic arrives.
func registerDefaultHandlers(sys *registry.SystemContext) {
	sys.Handlers.Register("noop", executor.EffectHandlerFunc(func(tag string, args []byte) ([]byte, error) {
		return nil, nil
	}))
	sys.Handlers.Register("echo", executor.EffectHandlerFunc(func(tag string, args []byte) ([]byte, error) {
		return args, nil
	}))
}

func newZapLogger(level string) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		zapCfg.Level = lvl
	}
	return zapCfg.Build()
}

func newZerologLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

func executorConfig(cfg *config.Config) executor.Config {
	workers := cfg.TegExecutor.WorkerCount
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return executor.Config{
		Workers:          workers,
		NodeTimeout:      time.Duration(cfg.TegExecutor.NodeTimeoutMs) * time.Millisecond,
		GlobalTimeout:    time.Duration(cfg.TegExecutor.GlobalTimeoutMs) * time.Millisecond,
		AdaptiveSchedule: cfg.TegExecutor.AdaptiveScheduling,
	}
}
