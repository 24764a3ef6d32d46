package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/solbet/solbet-platform/internal/bet-service/domain"
)

func won(amount, yes, no string) domain.Participation {
	o := domain.PositionYes
	return domain.Participation{
		Participant: domain.Participant{Position: domain.PositionYes, Amount: dec(amount)},
		BetStatus:   domain.StatusResolved, Outcome: &o, YesPool: dec(yes), NoPool: dec(no),
	}
}

func open(amount string) domain.Participation {
	return domain.Participation{
		Participant: domain.Participant{Position: domain.PositionNo, Amount: dec(amount)},
		BetStatus:   domain.StatusActive,
	}
}

func TestService_ConnectWallet(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestService(t)
	m.Store.On("GetOrCreateUser", ctx, bettorWallet).Return(bettor, true, nil)

	u, created, err := svc.ConnectWallet(ctx, bettorWallet)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, bettor, u)

	_, _, err = svc.ConnectWallet(ctx, "")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestService_UnknownWalletReads(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestService(t)
	m.Store.On("GetUserByAddress", ctx, "ghost").Return(nil, domain.ErrUserNotFound)

	st, err := svc.BetStats(ctx, "ghost")
	require.NoError(t, err)
	assert.Zero(t, st.BetsJoined)
	assert.True(t, st.TotalWinnings.IsZero())

	txs, err := svc.Transactions(ctx, "ghost")
	require.NoError(t, err)
	assert.NotNil(t, txs)
	assert.Empty(t, txs)

	tf, err := svc.Stats(ctx, "ghost", "30d")
	require.NoError(t, err)
	assert.Empty(t, tf.BetHistory)
	assert.True(t, tf.Stats.Winnings.IsZero())

	items, err := svc.Activity(ctx, "ghost", 0)
	require.NoError(t, err)
	assert.Empty(t, items)

	pb, err := svc.PositionStats(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, domain.PositionBreakdown{}, pb)

	m.Store.AssertNotCalled(t, "ListParticipations", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_BetStats(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestService(t)
	m.Store.On("GetUserByAddress", ctx, bettorWallet).Return(bettor, nil)
	m.Store.On("CountBetsCreated", ctx, bettor.ID).Return(2, nil)
	m.Store.On("ListParticipations", ctx, bettor.ID, time.Time{}, 0).
		Return([]domain.Participation{won("10", "10", "10"), open("1"), open("1")}, nil)

	st, err := svc.BetStats(ctx, bettorWallet)
	require.NoError(t, err)
	assert.Equal(t, 2, st.BetsCreated)
	assert.Equal(t, 3, st.BetsJoined)
	assert.Equal(t, 33, st.WinRate)
	assert.True(t, st.TotalWinnings.Equal(dec("20")))
}

func TestService_Profile(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestService(t)
	fresh := &domain.User{ID: "u-new", WalletAddress: "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"}
	m.Store.On("GetOrCreateUser", ctx, fresh.WalletAddress).Return(fresh, true, nil)
	m.Store.On("CountBetsCreated", ctx, "u-new").Return(0, nil)
	m.Store.On("ListParticipations", ctx, "u-new", time.Time{}, 0).Return([]domain.Participation{}, nil)

	p, err := svc.Profile(ctx, fresh.WalletAddress)
	require.NoError(t, err)
	require.NotNil(t, p.User.DisplayName)
	assert.Equal(t, "User_9xQeWv", *p.User.DisplayName)
	assert.Zero(t, p.Stats.WinRate)
}

func TestService_Stats(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to seven days", func(t *testing.T) {
		svc, m := newTestService(t)
		m.Store.On("GetUserByAddress", ctx, bettorWallet).Return(bettor, nil)
		m.Store.On("ListParticipations", ctx, bettor.ID, testNow.AddDate(0, 0, -7), 0).
			Return([]domain.Participation{won("10", "10", "30")}, nil)

		st, err := svc.Stats(ctx, bettorWallet, "")
		require.NoError(t, err)
		assert.Equal(t, 1, st.Stats.BetsPlaced)
		require.Len(t, st.BetHistory, 1)
		assert.Equal(t, "WIN", st.BetHistory[0].Type)
	})

	t.Run("rejects unknown frame", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.Stats(ctx, bettorWallet, "2w")
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})
}

func TestService_Activity(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestService(t)
	m.Store.On("GetUserByAddress", ctx, bettorWallet).Return(bettor, nil)
	m.Store.On("ListParticipations", ctx, bettor.ID, time.Time{}, maxActivity).Return([]domain.Participation{open("1")}, nil)
	m.Store.On("ListBetsCreatedBy", ctx, bettor.ID, maxActivity).Return([]domain.Bet{*NewBet().Build()}, nil)

	items, err := svc.Activity(ctx, bettorWallet, 1000)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestService_Leaderboard(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestService(t)
	m.Store.On("LeaderboardRows", ctx, testNow.AddDate(0, 0, -30), 50).Return([]domain.LeaderboardRow{
		{Address: "a", PeriodWinnings: dec("1"), TotalWinnings: dec("50")},
		{Address: "b", PeriodWinnings: dec("5"), TotalWinnings: dec("6")},
	}, nil)

	entries, err := svc.Leaderboard(ctx, "monthly")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Address)
	assert.Equal(t, 1, entries[0].Rank)

	_, err = svc.Leaderboard(ctx, "daily")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestService_RecomputeStats(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestService(t)
	m.Store.On("CountBetsCreated", ctx, bettor.ID).Return(1, nil)
	m.Store.On("ListParticipations", ctx, bettor.ID, time.Time{}, 0).Return([]domain.Participation{won("10", "10", "0")}, nil)
	m.Store.On("UpsertUserStats", ctx, bettor.ID, mock.MatchedBy(func(st domain.UserStats) bool {
		return st.BetsCreated == 1 && st.BetsJoined == 1 && st.WinRate == 100 && st.TotalWinnings.Equal(dec("10"))
	})).Return(nil)

	require.NoError(t, svc.RecomputeStats(ctx, bettor.ID))
	m.Store.AssertExpectations(t)
}

func TestService_ConfirmTransaction(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestService(t)
	m.Store.On("UpdateTransactionStatus", ctx, "tx-1", domain.TxConfirmed).Return(true, nil).Once()
	m.Store.On("UpdateTransactionStatus", ctx, "tx-1", domain.TxFailed).Return(false, nil).Once()

	ok, err := svc.ConfirmTransaction(ctx, "tx-1", domain.TxConfirmed)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.ConfirmTransaction(ctx, "tx-1", domain.TxFailed)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_UserBets(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestService(t)
	m.Store.On("GetUserByAddress", ctx, "ghost").Return(nil, domain.ErrUserNotFound)
	m.Store.On("GetUserByAddress", ctx, bettorWallet).Return(bettor, nil)
	m.Store.On("ListParticipations", ctx, bettor.ID, time.Time{}, 0).
		Return([]domain.Participation{won("10", "40", "60"), open("2")}, nil)

	empty, err := svc.UserBets(ctx, "ghost")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	bets, err := svc.UserBets(ctx, bettorWallet)
	require.NoError(t, err)
	require.Len(t, bets, 2)
	assert.Equal(t, domain.OutcomeWin, bets[0].Outcome)
	assert.True(t, bets[0].PotentialReturn.Equal(dec("25")))
	assert.Equal(t, domain.OutcomePending, bets[1].Outcome)

	_, err = svc.UserBets(ctx, "")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}
