package service

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/solbet/solbet-platform/internal/bet-service/domain"
)

const (
	creatorWallet  = "CreatorWa11et"
	bettorWallet   = "BettorWa11et"
	resolverWallet = "ResolverWa11et"
	strangerWallet = "StrangerWa11et"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

var (
	creator  = &domain.User{ID: "u-creator", WalletAddress: creatorWallet}
	bettor   = &domain.User{ID: "u-bettor", WalletAddress: bettorWallet}
	resolver = &domain.User{ID: "u-resolver", WalletAddress: resolverWallet}
	stranger = &domain.User{ID: "u-stranger", WalletAddress: strangerWallet}
)

type testMocks struct {
	Store *MockStore
	Pub   *MockPublisher
	Bcast *MockBroadcaster
	Cache *MockCache
}

func (m *testMocks) AssertAllExpectations(t *testing.T) {
	m.Store.AssertExpectations(t)
	m.Pub.AssertExpectations(t)
	m.Bcast.AssertExpectations(t)
	m.Cache.AssertExpectations(t)
}

// expectAfterCommit aceita qualquer propagação pós-commit
func (m *testMocks) expectAfterCommit() {
	m.Cache.On("Invalidate", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.Pub.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.Bcast.On("PublishPool", mock.Anything, mock.Anything).Return(nil).Maybe()
}

func newTestService(t *testing.T) (*Service, *testMocks) {
	t.Helper()
	return newTestServiceResolvers(t, resolverWallet)
}

// newTestServiceResolvers monta o serviço com as carteiras resolvedoras dadas
func newTestServiceResolvers(t *testing.T, resolvers ...string) (*Service, *testMocks) {
	t.Helper()
	m := &testMocks{
		Store: new(MockStore),
		Pub:   new(MockPublisher),
		Bcast: new(MockBroadcaster),
		Cache: new(MockCache),
	}
	svc := New(zap.NewNop(), m.Store, Rules{
		DefaultMinBet:      decimal.RequireFromString("0.1"),
		DefaultMaxBet:      decimal.NewFromInt(100),
		DefaultBetDuration: 7 * 24 * time.Hour,
		ResolverWallets:    resolvers,
	},
		WithClock(func() time.Time { return testNow }),
		WithCache(m.Cache),
		WithPublisher(m.Pub),
		WithBroadcaster(m.Bcast),
		WithMetrics(NewMetrics(prometheus.NewRegistry())),
	)
	return svc, m
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// BetBuilder monta apostas de teste de forma fluente
type BetBuilder struct{ bet domain.Bet }

func NewBet() *BetBuilder {
	return &BetBuilder{bet: domain.Bet{
		ID:             "bet-1",
		Title:          "Will SOL close above 200?",
		Description:    "Resolves on the daily close",
		Category:       domain.CategoryCrypto,
		Status:         domain.StatusActive,
		YesPool:        decimal.Zero,
		NoPool:         decimal.Zero,
		MinimumBet:     dec("0.1"),
		MaximumBet:     dec("100"),
		StartTime:      testNow.Add(-time.Hour),
		EndTime:        testNow.Add(24 * time.Hour),
		CreatorID:      creator.ID,
		CreatorAddress: creator.WalletAddress,
		Participants:   []domain.Participant{},
	}}
}

func (b *BetBuilder) WithStatus(s domain.BetStatus) *BetBuilder { b.bet.Status = s; return b }

func (b *BetBuilder) WithPools(yes, no string) *BetBuilder {
	b.bet.YesPool, b.bet.NoPool = dec(yes), dec(no)
	return b
}

func (b *BetBuilder) WithParticipants(n int) *BetBuilder { b.bet.ParticipantCount = n; return b }

func (b *BetBuilder) WithEndTime(t time.Time) *BetBuilder { b.bet.EndTime = t; return b }

func (b *BetBuilder) Resolved(o domain.Position) *BetBuilder {
	b.bet.Status = domain.StatusResolved
	b.bet.Outcome = &o
	return b
}

func (b *BetBuilder) Build() *domain.Bet {
	out := b.bet
	return &out
}
