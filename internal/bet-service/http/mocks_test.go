package httpapi

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/solbet/solbet-platform/internal/bet-service/chain"
	"github.com/solbet/solbet-platform/internal/bet-service/domain"
	"github.com/solbet/solbet-platform/internal/bet-service/repo"
	"github.com/solbet/solbet-platform/internal/bet-service/service"
)

type MockService struct{ mock.Mock }

func (m *MockService) CreateBet(ctx context.Context, in service.CreateBetInput) (*domain.Bet, error) {
	args := m.Called(ctx, in)
	b, _ := args.Get(0).(*domain.Bet)
	return b, args.Error(1)
}

func (m *MockService) ListBets(ctx context.Context, f repo.BetFilter) (*domain.BetPage, error) {
	args := m.Called(ctx, f)
	p, _ := args.Get(0).(*domain.BetPage)
	return p, args.Error(1)
}

func (m *MockService) GetBet(ctx context.Context, id string) (*domain.Bet, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*domain.Bet)
	return b, args.Error(1)
}

func (m *MockService) Quote(ctx context.Context, id, position string, amount decimal.Decimal) (domain.QuoteResult, error) {
	args := m.Called(ctx, id, position, amount)
	return args.Get(0).(domain.QuoteResult), args.Error(1)
}

func (m *MockService) PlaceBet(ctx context.Context, in service.PlaceBetInput) (*domain.Bet, error) {
	args := m.Called(ctx, in)
	b, _ := args.Get(0).(*domain.Bet)
	return b, args.Error(1)
}

func (m *MockService) Withdraw(ctx context.Context, in service.WithdrawInput) (*service.WithdrawResult, error) {
	args := m.Called(ctx, in)
	res, _ := args.Get(0).(*service.WithdrawResult)
	return res, args.Error(1)
}

func (m *MockService) ResolveBet(ctx context.Context, in service.ResolveInput) (*domain.Bet, error) {
	args := m.Called(ctx, in)
	b, _ := args.Get(0).(*domain.Bet)
	return b, args.Error(1)
}

func (m *MockService) CloseBet(ctx context.Context, in service.ActorInput) (*domain.Bet, error) {
	args := m.Called(ctx, in)
	b, _ := args.Get(0).(*domain.Bet)
	return b, args.Error(1)
}

func (m *MockService) CancelBet(ctx context.Context, in service.ActorInput) (*domain.Bet, error) {
	args := m.Called(ctx, in)
	b, _ := args.Get(0).(*domain.Bet)
	return b, args.Error(1)
}

func (m *MockService) DisputeBet(ctx context.Context, in service.ActorInput) (*domain.Bet, error) {
	args := m.Called(ctx, in)
	b, _ := args.Get(0).(*domain.Bet)
	return b, args.Error(1)
}

func (m *MockService) ConnectWallet(ctx context.Context, address string) (*domain.User, bool, error) {
	args := m.Called(ctx, address)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Bool(1), args.Error(2)
}

func (m *MockService) BetStats(ctx context.Context, address string) (domain.UserStats, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(domain.UserStats), args.Error(1)
}

func (m *MockService) PositionStats(ctx context.Context, address string) (domain.PositionBreakdown, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(domain.PositionBreakdown), args.Error(1)
}

func (m *MockService) Transactions(ctx context.Context, address string) ([]domain.Transaction, error) {
	args := m.Called(ctx, address)
	txs, _ := args.Get(0).([]domain.Transaction)
	return txs, args.Error(1)
}

func (m *MockService) Profile(ctx context.Context, address string) (*service.Profile, error) {
	args := m.Called(ctx, address)
	p, _ := args.Get(0).(*service.Profile)
	return p, args.Error(1)
}

func (m *MockService) Stats(ctx context.Context, address, timeFrame string) (domain.TimeFrameStats, error) {
	args := m.Called(ctx, address, timeFrame)
	return args.Get(0).(domain.TimeFrameStats), args.Error(1)
}

func (m *MockService) Activity(ctx context.Context, address string, limit int) ([]domain.ActivityItem, error) {
	args := m.Called(ctx, address, limit)
	items, _ := args.Get(0).([]domain.ActivityItem)
	return items, args.Error(1)
}

func (m *MockService) CommunityActivity(ctx context.Context) ([]domain.ActivityItem, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]domain.ActivityItem)
	return items, args.Error(1)
}

func (m *MockService) Leaderboard(ctx context.Context, period string) ([]domain.LeaderboardEntry, error) {
	args := m.Called(ctx, period)
	entries, _ := args.Get(0).([]domain.LeaderboardEntry)
	return entries, args.Error(1)
}

func (m *MockService) UserBets(ctx context.Context, address string) ([]domain.UserBet, error) {
	args := m.Called(ctx, address)
	bets, _ := args.Get(0).([]domain.UserBet)
	return bets, args.Error(1)
}

func (m *MockService) ChainAddresses(ctx context.Context, betID string) (chain.Addresses, error) {
	args := m.Called(ctx, betID)
	return args.Get(0).(chain.Addresses), args.Error(1)
}

// memNonces guarda os desafios em memória
type memNonces struct {
	mu sync.Mutex
	m  map[string]string
}

func (n *memNonces) Put(_ context.Context, wallet, nonce string, _ time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.m[wallet] = nonce
	return nil
}

func (n *memNonces) Take(_ context.Context, wallet string) (string, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	v, ok := n.m[wallet]
	delete(n.m, wallet)
	return v, ok, nil
}
