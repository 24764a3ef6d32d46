package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/solbet/solbet-platform/internal/bet-service/domain"
)

const (
	transactionsLimit  = 50
	communityLimit     = 20
	defaultActivity    = 10
	maxActivity        = 100
	leaderboardFetchSz = 50
)

// ConnectWallet devolve o perfil da carteira, criando o usuário na primeira conexão
func (s *Service) ConnectWallet(ctx context.Context, address string) (*domain.User, bool, error) {
	if address == "" {
		return nil, false, domain.Validation("wallet address is required")
	}
	u, created, err := s.store.GetOrCreateUser(ctx, address)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.log.Info("user created", zap.String("wallet", address))
		s.count("connect")
	}
	return u, created, nil
}

// lookupUser devolve nil sem erro para carteira desconhecida
func (s *Service) lookupUser(ctx context.Context, address string) (*domain.User, error) {
	if address == "" {
		return nil, domain.Validation("wallet address is required")
	}
	u, err := s.store.GetUserByAddress(ctx, address)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil
	}
	return u, err
}

func (s *Service) computeStats(ctx context.Context, userID string) (domain.UserStats, error) {
	created, err := s.store.CountBetsCreated(ctx, userID)
	if err != nil {
		return domain.UserStats{}, err
	}
	parts, err := s.store.ListParticipations(ctx, userID, time.Time{}, 0)
	if err != nil {
		return domain.UserStats{}, err
	}
	return domain.ComputeUserStats(created, parts), nil
}

// BetStats calcula as estatísticas agregadas; carteira desconhecida devolve zeros
func (s *Service) BetStats(ctx context.Context, address string) (domain.UserStats, error) {
	u, err := s.lookupUser(ctx, address)
	if err != nil || u == nil {
		return domain.ComputeUserStats(0, nil), err
	}
	return s.computeStats(ctx, u.ID)
}

// PositionStats conta participações por lado
func (s *Service) PositionStats(ctx context.Context, address string) (domain.PositionBreakdown, error) {
	u, err := s.lookupUser(ctx, address)
	if err != nil || u == nil {
		return domain.PositionBreakdown{}, err
	}
	parts, err := s.store.ListParticipations(ctx, u.ID, time.Time{}, 0)
	if err != nil {
		return domain.PositionBreakdown{}, err
	}
	return domain.ComputePositionBreakdown(parts), nil
}

// Transactions devolve as últimas transações da carteira (vazio se desconhecida)
func (s *Service) Transactions(ctx context.Context, address string) ([]domain.Transaction, error) {
	u, err := s.lookupUser(ctx, address)
	if err != nil || u == nil {
		return []domain.Transaction{}, err
	}
	return s.store.ListTransactions(ctx, u.ID, transactionsLimit)
}

// UserBets lista as participações da carteira com resultado e retorno
// potencial; carteira desconhecida devolve lista vazia
func (s *Service) UserBets(ctx context.Context, address string) ([]domain.UserBet, error) {
	u, err := s.lookupUser(ctx, address)
	if err != nil || u == nil {
		return []domain.UserBet{}, err
	}
	parts, err := s.store.ListParticipations(ctx, u.ID, time.Time{}, 0)
	if err != nil {
		return nil, err
	}
	return domain.UserBets(parts), nil
}

type Profile struct {
	User  *domain.User
	Stats domain.UserStats
}

// Profile cria o usuário se preciso e devolve perfil com estatísticas
func (s *Service) Profile(ctx context.Context, address string) (*Profile, error) {
	u, _, err := s.ConnectWallet(ctx, address)
	if err != nil {
		return nil, err
	}
	if u.DisplayName == nil {
		name := "User_" + prefix(address, 6)
		u.DisplayName = &name
	}
	st, err := s.computeStats(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: u, Stats: st}, nil
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Stats resume as participações dentro da janela de tempo
func (s *Service) Stats(ctx context.Context, address, timeFrame string) (domain.TimeFrameStats, error) {
	tf, err := domain.ParseTimeFrame(timeFrame)
	if err != nil {
		return domain.TimeFrameStats{}, err
	}
	u, err := s.lookupUser(ctx, address)
	if err != nil || u == nil {
		return domain.EmptyTimeFrameStats(), err
	}
	parts, err := s.store.ListParticipations(ctx, u.ID, tf.Since(s.now()), 0)
	if err != nil {
		return domain.TimeFrameStats{}, err
	}
	return domain.ComputeTimeFrameStats(parts), nil
}

// Activity junta participações e apostas criadas num feed
func (s *Service) Activity(ctx context.Context, address string, limit int) ([]domain.ActivityItem, error) {
	if limit <= 0 {
		limit = defaultActivity
	}
	if limit > maxActivity {
		limit = maxActivity
	}
	u, err := s.lookupUser(ctx, address)
	if err != nil || u == nil {
		return []domain.ActivityItem{}, err
	}
	parts, err := s.store.ListParticipations(ctx, u.ID, time.Time{}, limit)
	if err != nil {
		return nil, err
	}
	created, err := s.store.ListBetsCreatedBy(ctx, u.ID, limit)
	if err != nil {
		return nil, err
	}
	return domain.BuildActivity(parts, created, limit), nil
}

func (s *Service) CommunityActivity(ctx context.Context) ([]domain.ActivityItem, error) {
	return s.store.CommunityActivity(ctx, communityLimit)
}

func (s *Service) Leaderboard(ctx context.Context, period string) ([]domain.LeaderboardEntry, error) {
	p, err := domain.ParseLeaderboardPeriod(period)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.LeaderboardRows(ctx, p.Since(s.now()), leaderboardFetchSz)
	if err != nil {
		return nil, err
	}
	return domain.RankLeaderboard(rows, p), nil
}

// RecomputeStats atualiza a visão materializada de um usuário
func (s *Service) RecomputeStats(ctx context.Context, userID string) error {
	st, err := s.computeStats(ctx, userID)
	if err != nil {
		return err
	}
	return s.store.UpsertUserStats(ctx, userID, st)
}

// ConfirmTransaction leva uma transação pendente a confirmed/failed
func (s *Service) ConfirmTransaction(ctx context.Context, id string, status domain.TransactionStatus) (bool, error) {
	ok, err := s.store.UpdateTransactionStatus(ctx, id, status)
	if err != nil {
		return false, err
	}
	if ok {
		s.count("tx_" + string(status))
	}
	return ok, nil
}
