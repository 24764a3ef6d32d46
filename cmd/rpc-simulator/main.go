package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	simulator "github.com/solbet/solbet-platform/internal/rpc-simulator"
	"github.com/solbet/solbet-platform/internal/shared/config"
	"github.com/solbet/solbet-platform/internal/shared/logger"
	"github.com/solbet/solbet-platform/internal/shared/metrics"
)

// Nó Solana falso para rodar o tx-confirmation-worker localmente
// (SOLANA_RPC_URL=http://localhost:8899).
func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	statuses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rpc_simulator_statuses_total",
		Help: "Status de assinatura devolvidos",
	}, []string{"status"})
	prometheus.MustRegister(statuses)

	sim := simulator.New(log, cfg.SimPendingPolls, cfg.SimFailPercent)
	sim.OnStatus = func(s string) { statuses.WithLabelValues(s).Inc() }

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           sim,
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		log.Info("rpc simulator listening",
			zap.String("addr", srv.Addr),
			zap.Int("pendingPolls", cfg.SimPendingPolls),
			zap.Int("failPercent", cfg.SimFailPercent),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("rpc server", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("rpc simulator stopped")
}
