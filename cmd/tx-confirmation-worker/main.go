package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/solbet/solbet-platform/internal/bet-service/producer"
	"github.com/solbet/solbet-platform/internal/bet-service/repo"
	"github.com/solbet/solbet-platform/internal/bet-service/service"
	"github.com/solbet/solbet-platform/internal/shared/config"
	"github.com/solbet/solbet-platform/internal/shared/db"
	"github.com/solbet/solbet-platform/internal/shared/kafka"
	"github.com/solbet/solbet-platform/internal/shared/logger"
	"github.com/solbet/solbet-platform/internal/shared/metrics"
	"github.com/solbet/solbet-platform/internal/tx-confirmation/confirmer"
	"github.com/solbet/solbet-platform/internal/tx-confirmation/solana"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	// Postgres: atualização do status das transações
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Kafka consumer: bet_events com assinatura on-chain
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicBetEvents, "tx-confirmation")
	defer reader.Close()

	// Kafka producer da DLQ (opcional)
	var dlq confirmer.DeadLetter
	if cfg.TopicBetEventsDLQ != "" {
		w := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetEventsDLQ)
		defer w.Close()
		dlq = producer.NewKafkaPublisher(w)
	}

	store := repo.NewPostgres(pg)
	svc := service.New(log, store, service.Rules{}, service.WithMetrics(service.NewMetrics(prometheus.DefaultRegisterer)))

	results := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tx_confirmation_results_total", Help: "resultado das confirmações on-chain",
	}, []string{"result"})
	prometheus.MustRegister(results)

	c := &confirmer.Confirmer{
		Log:         log,
		RPC:         solana.NewClient(cfg.SolanaRPCURL),
		Tx:          svc,
		DLQ:         dlq,
		MaxAttempts: cfg.TxConfirmAttempts,
		Backoff:     cfg.TxConfirmBackoff,
		OnResult:    func(r string) { results.WithLabelValues(r).Inc() },
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, log, metrics.Check{Name: "postgres", Fn: store.Ping})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("tx-confirmation-worker started",
		zap.String("consume", cfg.TopicBetEvents),
		zap.String("dlq", cfg.TopicBetEventsDLQ),
		zap.String("rpc", cfg.SolanaRPCURL),
	)
	if err := c.Run(ctx, reader); err != nil && ctx.Err() == nil {
		log.Error("confirmer stopped with error", zap.Error(err))
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("tx-confirmation-worker stopped")
}
