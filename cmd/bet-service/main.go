package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/solbet/solbet-platform/internal/bet-service/auth"
	betcache "github.com/solbet/solbet-platform/internal/bet-service/cache"
	httpapi "github.com/solbet/solbet-platform/internal/bet-service/http"
	"github.com/solbet/solbet-platform/internal/bet-service/producer"
	"github.com/solbet/solbet-platform/internal/bet-service/pubsub"
	"github.com/solbet/solbet-platform/internal/bet-service/repo"
	"github.com/solbet/solbet-platform/internal/bet-service/service"
	"github.com/solbet/solbet-platform/internal/bet-service/ws"
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

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis: cache de leitura e pub/sub dos pools
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writer (topic bet_events)
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetEvents)
	defer writer.Close()

	// métricas
	cacheOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bet_service_cache_requests_total", Help: "leituras do cache por tipo e resultado",
	}, []string{"kind", "result"})
	prometheus.MustRegister(cacheOps)

	betCache := betcache.NewBetCache(rdb, cfg.CacheTTL)
	betCache.OnHit = func(kind string) { cacheOps.WithLabelValues(kind, "hit").Inc() }
	betCache.OnMiss = func(kind string) { cacheOps.WithLabelValues(kind, "miss").Inc() }

	store := repo.NewPostgres(pg)
	svc := service.New(log, store, service.Rules{
		DefaultMinBet:      cfg.DefaultMinBet,
		DefaultMaxBet:      cfg.DefaultMaxBet,
		DefaultBetDuration: cfg.DefaultBetDuration,
		ResolverWallets:    cfg.ResolverWallets,
	},
		service.WithCache(betCache),
		service.WithPublisher(producer.NewKafkaPublisher(writer)),
		service.WithBroadcaster(pubsub.NewRedisBroadcaster(rdb, cfg.RedisPoolChannel)),
		service.WithMetrics(service.NewMetrics(prometheus.DefaultRegisterer)),
	)

	// sessões: nonce no Redis, JWT assinado com JWT_SECRET
	tokens, err := auth.NewTokens(jwtSecret(cfg, log), cfg.JWTTTL)
	if err != nil {
		log.Fatal("auth init", zap.Error(err))
	}
	authn := auth.NewAuthenticator(log, auth.NewRedisNonces(rdb), tokens, svc, cfg.NonceTTL)
	authn.DevLogin = cfg.DevLogin && cfg.Env != "prod"

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// WebSocket: cada instância assina o canal de pools e repassa aos seus clientes
	hub := ws.NewHub(log, httpapi.AllowOrigin(cfg.CORSOrigins))
	ws.StartRedisSubscriber(ctx, rdb, cfg.RedisPoolChannel, hub, log)

	api := &httpapi.API{
		Svc:         svc,
		Auth:        authn,
		Log:         log,
		WS:          hub.HandleWS,
		Metrics:     httpapi.NewMetrics(prometheus.DefaultRegisterer),
		CORSOrigins: cfg.CORSOrigins,
	}
	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, log,
		metrics.Check{Name: "postgres", Fn: store.Ping},
		metrics.Check{Name: "redis", Fn: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	)

	go func() {
		log.Info("bet-service listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("api server", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("api shutdown", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("metrics shutdown", zap.Error(err))
	}
	log.Info("bet-service stopped")
}

// jwtSecret exige JWT_SECRET fora do ambiente local. Localmente gera um
// segredo aleatório: os tokens não sobrevivem a um restart.
func jwtSecret(cfg config.Config, log *zap.Logger) []byte {
	if cfg.JWTSecret != "" {
		return []byte(cfg.JWTSecret)
	}
	if cfg.Env != "local" {
		log.Fatal("JWT_SECRET is required", zap.String("env", cfg.Env))
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatal("generate jwt secret", zap.Error(err))
	}
	log.Warn("JWT_SECRET not set, using an ephemeral secret")
	return buf
}
