package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	betcache "github.com/solbet/solbet-platform/internal/bet-service/cache"
	"github.com/solbet/solbet-platform/internal/bet-service/producer"
	"github.com/solbet/solbet-platform/internal/bet-service/pubsub"
	"github.com/solbet/solbet-platform/internal/bet-service/repo"
	"github.com/solbet/solbet-platform/internal/bet-service/service"
	"github.com/solbet/solbet-platform/internal/shared/cache"
	"github.com/solbet/solbet-platform/internal/shared/config"
	"github.com/solbet/solbet-platform/internal/shared/db"
	"github.com/solbet/solbet-platform/internal/shared/kafka"
	"github.com/solbet/solbet-platform/internal/shared/logger"
	"github.com/solbet/solbet-platform/internal/shared/metrics"
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

	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetEvents)
	defer writer.Close()

	store := repo.NewPostgres(pg)
	svc := service.New(log, store, service.Rules{},
		service.WithCache(betcache.NewBetCache(rdb, cfg.CacheTTL)),
		service.WithPublisher(producer.NewKafkaPublisher(writer)),
		service.WithBroadcaster(pubsub.NewRedisBroadcaster(rdb, cfg.RedisPoolChannel)),
		service.WithMetrics(service.NewMetrics(prometheus.DefaultRegisterer)),
	)

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bet_closer_runs_total", Help: "execuções por resultado"}, []string{"result"})
	closed := prometheus.NewCounter(prometheus.CounterOpts{Name: "bet_closer_bets_closed_total", Help: "apostas fechadas por expiração"})
	prometheus.MustRegister(runs, closed)

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, log,
		metrics.Check{Name: "postgres", Fn: store.Ping},
		metrics.Check{Name: "redis", Fn: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tick := func() {
		runCtx, done := context.WithTimeout(ctx, cfg.CloseInterval)
		defer done()
		ids, err := svc.CloseExpired(runCtx)
		if err != nil {
			log.Warn("close expired failed", zap.Error(err))
			runs.WithLabelValues("error").Inc()
			return
		}
		runs.WithLabelValues("ok").Inc()
		closed.Add(float64(len(ids)))
	}

	log.Info("bet-closer started", zap.Duration("interval", cfg.CloseInterval))
	ticker := time.NewTicker(cfg.CloseInterval)
	defer ticker.Stop()

	tick()
	for {
		select {
		case <-ctx.Done():
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			_ = metricsSrv.Shutdown(shutdownCtx)
			done()
			log.Info("bet-closer stopped")
			return
		case <-ticker.C:
			tick()
		}
	}
}
