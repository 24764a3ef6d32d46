package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/solbet/solbet-platform/internal/bet-service/repo"
	"github.com/solbet/solbet-platform/internal/bet-service/service"
	"github.com/solbet/solbet-platform/internal/shared/config"
	"github.com/solbet/solbet-platform/internal/shared/db"
	"github.com/solbet/solbet-platform/internal/shared/kafka"
	"github.com/solbet/solbet-platform/internal/shared/logger"
	"github.com/solbet/solbet-platform/internal/shared/metrics"
	"github.com/solbet/solbet-platform/internal/stats-worker/consumer"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// consumer group stats-worker
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicBetEvents, "stats-worker")
	defer reader.Close()

	store := repo.NewPostgres(pg)
	svc := service.New(log, store, service.Rules{})

	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "stats_worker_messages_consumed_total", Help: "mensagens consumidas"})
	recomputed := prometheus.NewCounter(prometheus.CounterOpts{Name: "stats_worker_recomputes_total", Help: "usuários recalculados"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "stats_worker_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, recomputed, errorsBy)

	proc := &consumer.Processor{
		Log:          log,
		Reader:       reader,
		Stats:        svc,
		OnConsumed:   func() { consumed.Inc() },
		OnRecomputed: func() { recomputed.Inc() },
		OnError:      func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, log, metrics.Check{Name: "postgres", Fn: store.Ping})

	// shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("stats-worker started", zap.String("topic", cfg.TopicBetEvents))
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("processor stopped with error", zap.Error(err))
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("stats-worker stopped")
}
