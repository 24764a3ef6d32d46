package service

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/solbet/solbet-platform/internal/bet-service/domain"
	"github.com/solbet/solbet-platform/internal/bet-service/repo"
	"github.com/solbet/solbet-platform/pkg/contracts/events"
)

func TestService_CreateBet(t *testing.T) {
	ctx := context.Background()

	t.Run("applies defaults", func(t *testing.T) {
		svc, m := newTestService(t)
		m.Store.On("GetUserByAddress", ctx, creatorWallet).Return(creator, nil)
		m.Store.On("CreateBet", ctx, mock.AnythingOfType("*domain.Bet")).Return(nil)
		m.Cache.On("Invalidate", mock.Anything, "new-bet").Return(nil)
		m.Pub.On("Publish", mock.Anything, mock.MatchedBy(func(e events.BetEvent) bool {
			return e.Type == events.BetCreated && e.BetID == "new-bet" && e.ActorID == creator.ID
		})).Return(nil)
		m.Bcast.On("PublishPool", mock.Anything, mock.Anything).Return(nil)

		bet, err := svc.CreateBet(ctx, CreateBetInput{
			Title: "Rain tomorrow?", Description: "Lisbon", Category: "Weather", Creator: creatorWallet,
		})
		require.NoError(t, err)
		assert.Equal(t, "new-bet", bet.ID)
		assert.Equal(t, domain.CategoryWeather, bet.Category)
		assert.True(t, bet.MinimumBet.Equal(dec("0.1")))
		assert.True(t, bet.MaximumBet.Equal(dec("100")))
		assert.Equal(t, testNow.Add(7*24*time.Hour), bet.EndTime)
		assert.Equal(t, creatorWallet, bet.CreatorAddress)
		assert.NotNil(t, bet.Participants)
		m.AssertAllExpectations(t)
	})

	t.Run("unknown creator is not found", func(t *testing.T) {
		svc, m := newTestService(t)
		m.Store.On("GetUserByAddress", ctx, "ghost").Return(nil, domain.ErrUserNotFound)

		_, err := svc.CreateBet(ctx, CreateBetInput{Title: "t", Description: "d", Category: "sports", Creator: "ghost"})
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
		m.Store.AssertNotCalled(t, "CreateBet", mock.Anything, mock.Anything)
	})

	past := testNow.Add(-time.Minute)
	lo, hi := dec("5"), dec("1")
	invalid := []struct {
		name string
		in   CreateBetInput
	}{
		{"missing title", CreateBetInput{Description: "d", Category: "sports", Creator: creatorWallet}},
		{"missing creator", CreateBetInput{Title: "t", Description: "d", Category: "sports"}},
		{"bad category", CreateBetInput{Title: "t", Description: "d", Category: "chess", Creator: creatorWallet}},
		{"end in the past", CreateBetInput{Title: "t", Description: "d", Category: "sports", Creator: creatorWallet, EndTime: &past}},
		{"max below min", CreateBetInput{Title: "t", Description: "d", Category: "sports", Creator: creatorWallet, MinimumBet: &lo, MaximumBet: &hi}},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			svc, m := newTestService(t)
			_, err := svc.CreateBet(ctx, tc.in)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
			m.Store.AssertNotCalled(t, "CreateBet", mock.Anything, mock.Anything)
		})
	}
}

func TestService_ListBets(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes filter and fills cache", func(t *testing.T) {
		svc, m := newTestService(t)
		want := repo.BetFilter{Category: "crypto", Status: "active", Page: 1, Limit: 100}
		m.Cache.On("GetList", ctx, want).Return(nil, int64(7), false, nil)
		m.Store.On("ListBets", ctx, want).Return([]domain.Bet{*NewBet().Build()}, 1, nil)
		m.Cache.On("SetList", ctx, int64(7), want, mock.AnythingOfType("*domain.BetPage")).Return(nil)

		page, err := svc.ListBets(ctx, repo.BetFilter{Category: "CRYPTO", Status: "Active", Page: 0, Limit: 500})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Total)
		assert.Equal(t, 1, page.TotalPages())
		m.AssertAllExpectations(t)
	})

	t.Run("serves from cache", func(t *testing.T) {
		svc, m := newTestService(t)
		f := repo.BetFilter{Page: 2, Limit: 10}
		m.Cache.On("GetList", ctx, f).Return(&domain.BetPage{Total: 12, Page: 2, Limit: 10}, int64(0), true, nil)

		page, err := svc.ListBets(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, 2, page.TotalPages())
		m.Store.AssertNotCalled(t, "ListBets", mock.Anything, mock.Anything)
	})

	t.Run("cache read failure skips the write", func(t *testing.T) {
		svc, m := newTestService(t)
		f := repo.BetFilter{Page: 1, Limit: 20}
		m.Cache.On("GetList", ctx, f).Return(nil, int64(0), false, errors.New("redis timeout"))
		m.Store.On("ListBets", ctx, f).Return([]domain.Bet{}, 0, nil)

		page, err := svc.ListBets(ctx, f)
		require.NoError(t, err)
		assert.Zero(t, page.Total)
		m.Cache.AssertNotCalled(t, "SetList", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.ListBets(ctx, repo.BetFilter{Status: "open"})
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})
}

func TestService_GetBet(t *testing.T) {
	ctx := context.Background()

	t.Run("cache miss reads store", func(t *testing.T) {
		svc, m := newTestService(t)
		bet := NewBet().Build()
		m.Cache.On("GetBet", ctx, "bet-1").Return(nil, int64(3), false, nil)
		m.Store.On("GetBet", ctx, "bet-1").Return(bet, nil)
		m.Cache.On("SetBet", ctx, int64(3), bet).Return(nil)

		got, err := svc.GetBet(ctx, "bet-1")
		require.NoError(t, err)
		assert.Equal(t, bet, got)
		m.AssertAllExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		svc, m := newTestService(t)
		m.Cache.On("GetBet", ctx, "nope").Return(nil, int64(0), false, nil)
		m.Store.On("GetBet", ctx, "nope").Return(nil, domain.ErrBetNotFound)

		_, err := svc.GetBet(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrBetNotFound)
	})
}

func TestService_Quote(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestService(t)
	m.Cache.On("GetBet", ctx, "bet-1").Return(NewBet().WithPools("30", "70").Build(), int64(0), true, nil)

	q, err := svc.Quote(ctx, "bet-1", "yes", dec("10"))
	require.NoError(t, err)
	assert.True(t, q.PotentialPayout.Equal(dec("27.5")))

	_, err = svc.Quote(ctx, "bet-1", "maybe", dec("10"))
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}
