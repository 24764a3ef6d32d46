package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/solbet/solbet-platform/internal/bet-service/domain"
	"github.com/solbet/solbet-platform/internal/bet-service/repo"
	"github.com/solbet/solbet-platform/pkg/contracts/events"
)

// MockStore implementa Store; InTx executa fn sobre o próprio mock
type MockStore struct {
	mock.Mock
	txCalls int
}

func (m *MockStore) InTx(ctx context.Context, fn func(q repo.Queries) error) error {
	m.txCalls++
	return fn(m)
}

func (m *MockStore) GetUserByAddress(ctx context.Context, address string) (*domain.User, error) {
	args := m.Called(ctx, address)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockStore) GetOrCreateUser(ctx context.Context, address string) (*domain.User, bool, error) {
	args := m.Called(ctx, address)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Bool(1), args.Error(2)
}

func (m *MockStore) CreateBet(ctx context.Context, b *domain.Bet) error {
	args := m.Called(ctx, b)
	if args.Error(0) == nil {
		b.ID = "new-bet"
		b.Status = domain.StatusActive
	}
	return args.Error(0)
}

func (m *MockStore) GetBet(ctx context.Context, id string) (*domain.Bet, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*domain.Bet)
	return b, args.Error(1)
}

func (m *MockStore) LockBet(ctx context.Context, id string) (*domain.Bet, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*domain.Bet)
	return b, args.Error(1)
}

func (m *MockStore) ListBets(ctx context.Context, f repo.BetFilter) ([]domain.Bet, int, error) {
	args := m.Called(ctx, f)
	bets, _ := args.Get(0).([]domain.Bet)
	return bets, args.Int(1), args.Error(2)
}

func (m *MockStore) ListBetsCreatedBy(ctx context.Context, userID string, limit int) ([]domain.Bet, error) {
	args := m.Called(ctx, userID, limit)
	bets, _ := args.Get(0).([]domain.Bet)
	return bets, args.Error(1)
}

func (m *MockStore) CountBetsCreated(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) UpdateBetStatus(ctx context.Context, b *domain.Bet) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockStore) AddToPool(ctx context.Context, betID string, position domain.Position, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, betID, position, amount)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockStore) CloseExpired(ctx context.Context, now time.Time) ([]string, error) {
	args := m.Called(ctx, now)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *MockStore) SetChainAddresses(ctx context.Context, betID, betAddr, escrowAddr string) (string, string, error) {
	args := m.Called(ctx, betID, betAddr, escrowAddr)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockStore) InsertParticipant(ctx context.Context, p *domain.Participant) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil {
		p.ID = "part-" + p.UserID
	}
	return args.Error(0)
}

func (m *MockStore) GetParticipant(ctx context.Context, betID, userID string) (*domain.Participant, error) {
	args := m.Called(ctx, betID, userID)
	p, _ := args.Get(0).(*domain.Participant)
	return p, args.Error(1)
}

func (m *MockStore) ListParticipants(ctx context.Context, betID string) ([]domain.Participant, error) {
	args := m.Called(ctx, betID)
	parts, _ := args.Get(0).([]domain.Participant)
	return parts, args.Error(1)
}

func (m *MockStore) ListParticipantUserIDs(ctx context.Context, betID string) ([]string, error) {
	args := m.Called(ctx, betID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *MockStore) ListParticipations(ctx context.Context, userID string, since time.Time, limit int) ([]domain.Participation, error) {
	args := m.Called(ctx, userID, since, limit)
	parts, _ := args.Get(0).([]domain.Participation)
	return parts, args.Error(1)
}

func (m *MockStore) MarkClaimed(ctx context.Context, participantID string, onChainTxID *string) error {
	return m.Called(ctx, participantID, onChainTxID).Error(0)
}

func (m *MockStore) InsertTransaction(ctx context.Context, t *domain.Transaction) error {
	args := m.Called(ctx, t)
	if args.Error(0) == nil {
		t.ID = "tx-" + string(t.Type)
		if t.Status == "" {
			t.Status = domain.InitialStatus(t.TxHash)
		}
	}
	return args.Error(0)
}

func (m *MockStore) ListTransactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	txs, _ := args.Get(0).([]domain.Transaction)
	return txs, args.Error(1)
}

func (m *MockStore) UpdateTransactionStatus(ctx context.Context, id string, status domain.TransactionStatus) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) CommunityActivity(ctx context.Context, limit int) ([]domain.ActivityItem, error) {
	args := m.Called(ctx, limit)
	items, _ := args.Get(0).([]domain.ActivityItem)
	return items, args.Error(1)
}

func (m *MockStore) UpsertUserStats(ctx context.Context, userID string, st domain.UserStats) error {
	return m.Called(ctx, userID, st).Error(0)
}

func (m *MockStore) LeaderboardRows(ctx context.Context, since time.Time, limit int) ([]domain.LeaderboardRow, error) {
	args := m.Called(ctx, since, limit)
	rows, _ := args.Get(0).([]domain.LeaderboardRow)
	return rows, args.Error(1)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, e events.BetEvent) error {
	return m.Called(ctx, e).Error(0)
}

type MockBroadcaster struct{ mock.Mock }

func (m *MockBroadcaster) PublishPool(ctx context.Context, u events.PoolUpdate) error {
	return m.Called(ctx, u).Error(0)
}

type MockCache struct{ mock.Mock }

func (m *MockCache) GetBet(ctx context.Context, id string) (*domain.Bet, int64, bool, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*domain.Bet)
	return b, args.Get(1).(int64), args.Bool(2), args.Error(3)
}

func (m *MockCache) SetBet(ctx context.Context, version int64, b *domain.Bet) error {
	return m.Called(ctx, version, b).Error(0)
}

func (m *MockCache) GetList(ctx context.Context, f repo.BetFilter) (*domain.BetPage, int64, bool, error) {
	args := m.Called(ctx, f)
	p, _ := args.Get(0).(*domain.BetPage)
	return p, args.Get(1).(int64), args.Bool(2), args.Error(3)
}

func (m *MockCache) SetList(ctx context.Context, version int64, f repo.BetFilter, p *domain.BetPage) error {
	return m.Called(ctx, version, f, p).Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context, betIDs ...string) error {
	args := []any{ctx}
	for _, id := range betIDs {
		args = append(args, id)
	}
	return m.Called(args...).Error(0)
}
