// Package service orquestra as regras de apostas: valida com o domínio,
// persiste numa transação e, depois do commit, invalida cache e publica eventos.
package service

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/solbet/solbet-platform/internal/bet-service/domain"
	"github.com/solbet/solbet-platform/internal/bet-service/repo"
	"github.com/solbet/solbet-platform/pkg/contracts/events"
)

// Store é o repositório com suporte a transação
type Store interface {
	repo.Queries
	InTx(ctx context.Context, fn func(q repo.Queries) error) error
}

type Publisher interface {
	Publish(ctx context.Context, e events.BetEvent) error
}

type Broadcaster interface {
	PublishPool(ctx context.Context, u events.PoolUpdate) error
}

// Cache é read-through com versão: o Get devolve a versão vigente e o Set
// grava sob ela, descartando o valor se houve Invalidate no meio.
type Cache interface {
	GetBet(ctx context.Context, id string) (*domain.Bet, int64, bool, error)
	SetBet(ctx context.Context, version int64, b *domain.Bet) error
	GetList(ctx context.Context, f repo.BetFilter) (*domain.BetPage, int64, bool, error)
	SetList(ctx context.Context, version int64, f repo.BetFilter, p *domain.BetPage) error
	Invalidate(ctx context.Context, betIDs ...string) error
}

// Rules são os parâmetros de negócio vindos da configuração
type Rules struct {
	DefaultMinBet      decimal.Decimal
	DefaultMaxBet      decimal.Decimal
	DefaultBetDuration time.Duration
	ResolverWallets    []string
}

// Metrics agrupa os contadores do serviço
type Metrics struct {
	Operations      *prometheus.CounterVec
	PublishFailures *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bet_service_operations_total", Help: "operações concluídas por tipo",
		}, []string{"op"}),
		PublishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bet_service_publish_failures_total", Help: "falhas ao publicar eventos pós-commit",
		}, []string{"sink"}),
	}
	reg.MustRegister(m.Operations, m.PublishFailures)
	return m
}

type Service struct {
	log     *zap.Logger
	store   Store
	cache   Cache
	pub     Publisher
	bcast   Broadcaster
	rules   Rules
	metrics *Metrics
	now     func() time.Time

	resolvers map[string]struct{}
}

type Option func(*Service)

// WithClock troca o relógio (testes)
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithCache(c Cache) Option { return func(s *Service) { s.cache = c } }

func WithPublisher(p Publisher) Option { return func(s *Service) { s.pub = p } }

func WithBroadcaster(b Broadcaster) Option { return func(s *Service) { s.bcast = b } }

func WithMetrics(m *Metrics) Option { return func(s *Service) { s.metrics = m } }

func New(log *zap.Logger, store Store, rules Rules, opts ...Option) *Service {
	s := &Service{
		log:       log,
		store:     store,
		rules:     rules,
		now:       func() time.Time { return time.Now().UTC() },
		resolvers: make(map[string]struct{}, len(rules.ResolverWallets)),
	}
	for _, w := range rules.ResolverWallets {
		s.resolvers[w] = struct{}{}
	}
	for _, o := range opts {
		o(s)
	}
	if len(s.resolvers) == 0 {
		log.Warn("no resolver wallets configured, creators will settle their own disputes")
	}
	return s
}

func (s *Service) isResolver(address string) bool {
	_, ok := s.resolvers[address]
	return ok
}

func (s *Service) count(op string) {
	if s.metrics != nil {
		s.metrics.Operations.WithLabelValues(op).Inc()
	}
}

func (s *Service) publishFailed(sink string) {
	if s.metrics != nil {
		s.metrics.PublishFailures.WithLabelValues(sink).Inc()
	}
}

// afterCommit propaga uma mudança já persistida: invalida o cache, publica o
// evento e, se houver bet, o novo estado do pool. Falhas só são logadas.
func (s *Service) afterCommit(ctx context.Context, ev events.BetEvent, bet *domain.Bet) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, ev.BetID); err != nil {
			s.log.Warn("cache invalidate failed", zap.String("betId", ev.BetID), zap.Error(err))
			s.publishFailed("cache")
		}
	}
	if s.pub != nil {
		if ev.Ts.IsZero() {
			ev.Ts = s.now()
		}
		if err := s.pub.Publish(ctx, ev); err != nil {
			s.log.Warn("bet event publish failed", zap.String("betId", ev.BetID), zap.String("type", string(ev.Type)), zap.Error(err))
			s.publishFailed("kafka")
		}
	}
	if s.bcast != nil && bet != nil {
		if err := s.bcast.PublishPool(ctx, PoolUpdateOf(bet, s.now())); err != nil {
			s.log.Warn("pool broadcast failed", zap.String("betId", bet.ID), zap.Error(err))
			s.publishFailed("redis")
		}
	}
}

// PoolUpdateOf monta a mensagem de pool enviada aos clientes WebSocket
func PoolUpdateOf(b *domain.Bet, at time.Time) events.PoolUpdate {
	odds := domain.ComputeOdds(b.YesPool, b.NoPool)
	u := events.PoolUpdate{
		BetID:            b.ID,
		Status:           string(b.Status),
		YesPool:          b.YesPool.String(),
		NoPool:           b.NoPool.String(),
		TotalPool:        odds.TotalPool.String(),
		YesPercentage:    odds.YesPercentage,
		NoPercentage:     odds.NoPercentage,
		ParticipantCount: b.ParticipantCount,
		UpdatedAt:        at,
	}
	if b.Outcome != nil {
		u.Outcome = string(*b.Outcome)
	}
	return u
}

// actor resolve a carteira que executa a ação; a carteira precisa existir
func (s *Service) actor(ctx context.Context, address string) (*domain.User, error) {
	if address == "" {
		return nil, domain.ErrMissingActor
	}
	return s.store.GetUserByAddress(ctx, address)
}
