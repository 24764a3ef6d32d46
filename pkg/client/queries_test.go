package client

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solbet/solbet-platform/pkg/contracts/api"
)

func newQueries(t *testing.T) (*fakeAPI, *Queries) {
	f, c := newFakeAPI(t)
	return f, NewQueries(c, NewQueryCache(time.Minute))
}

func amount(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}

func TestQueries_ReadsAreCached(t *testing.T) {
	f, q := newQueries(t)
	ctx := context.Background()

	for range 3 {
		_, err := q.Bet(ctx, "b1")
		require.NoError(t, err)
		_, err = q.Bets(ctx, BetQuery{Status: "active"})
		require.NoError(t, err)
		_, err = q.Transactions(ctx, "wallet1")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, f.count("bet:b1"))
	assert.Equal(t, 1, f.count("bets:active"))
	assert.Equal(t, 1, f.count("txs:wallet1"))

	// filtros diferentes são chaves diferentes
	_, err := q.Bets(ctx, BetQuery{Status: "closed"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.count("bets:closed"))
}

func TestQueries_ErrorsAreNotCached(t *testing.T) {
	f, q := newQueries(t)
	ctx := context.Background()

	for range 2 {
		_, err := q.Bet(ctx, "missing")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.Status)
	}
	assert.Equal(t, 2, f.count("bet:missing"))
}

func TestQueries_PlaceBetInvalidates(t *testing.T) {
	f, q := newQueries(t)
	ctx := context.Background()

	prime := func() {
		_, err := q.Bet(ctx, "b1")
		require.NoError(t, err)
		_, err = q.Bet(ctx, "b9")
		require.NoError(t, err)
		_, err = q.Bets(ctx, BetQuery{})
		require.NoError(t, err)
		_, err = q.BetStats(ctx, "wallet1")
		require.NoError(t, err)
		_, err = q.BetStats(ctx, "wallet2")
		require.NoError(t, err)
	}
	prime()

	_, err := q.PlaceBet(ctx, "b1", api.PlaceBetRequest{Position: "yes", Amount: amount(10), WalletAddress: "wallet1"})
	require.NoError(t, err)
	prime()

	assert.Equal(t, 2, f.count("bet:b1"))
	assert.Equal(t, 2, f.count("bets:"))
	assert.Equal(t, 2, f.count("stats:wallet1"))
	assert.Equal(t, 1, f.count("bet:b9"))
	assert.Equal(t, 1, f.count("stats:wallet2"))
}

func TestQueries_FailedMutationKeepsCache(t *testing.T) {
	f, q := newQueries(t)
	ctx := context.Background()
	f.failPlacements(http.StatusConflict)

	_, err := q.Bet(ctx, "b1")
	require.NoError(t, err)

	_, err = q.PlaceBet(ctx, "b1", api.PlaceBetRequest{Position: "yes", Amount: amount(10), WalletAddress: "wallet1"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "bet is no longer active", apiErr.Message)

	_, err = q.Bet(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, 1, f.count("bet:b1"))
}

func TestQueries_ResolveInvalidatesEveryUser(t *testing.T) {
	f, q := newQueries(t)
	ctx := context.Background()

	_, err := q.BetStats(ctx, "wallet1")
	require.NoError(t, err)
	_, err = q.Transactions(ctx, "wallet2")
	require.NoError(t, err)

	_, err = q.ResolveBet(ctx, "b1", api.ResolveBetRequest{WalletAddress: "creator", Outcome: "yes"})
	require.NoError(t, err)

	_, err = q.BetStats(ctx, "wallet1")
	require.NoError(t, err)
	_, err = q.Transactions(ctx, "wallet2")
	require.NoError(t, err)
	assert.Equal(t, 2, f.count("stats:wallet1"))
	assert.Equal(t, 2, f.count("txs:wallet2"))
}

func TestQueries_CreateBetInvalidatesLists(t *testing.T) {
	f, q := newQueries(t)
	ctx := context.Background()

	_, err := q.Bets(ctx, BetQuery{})
	require.NoError(t, err)

	created, err := q.CreateBet(ctx, api.CreateBetRequest{Title: "t", Description: "d", Category: "sports", Creator: "wallet1"})
	require.NoError(t, err)
	assert.Equal(t, "b2", created.ID)

	_, err = q.Bets(ctx, BetQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, f.count("bets:"))
}

func TestQueries_WatchBetRefetches(t *testing.T) {
	f, q := newQueries(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *api.Bet, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		q.WatchBet(ctx, "b1", 5*time.Millisecond, func(b *api.Bet, err error) {
			if err == nil {
				select {
				case got <- b:
				default:
				}
			}
		})
	}()

	for range 3 {
		select {
		case b := <-got:
			assert.Equal(t, "b1", b.ID)
		case <-time.After(2 * time.Second):
			t.Fatal("watch did not deliver")
		}
	}
	cancel()
	<-done
	assert.GreaterOrEqual(t, f.count("bet:b1"), 3)
}

func TestQueries_TransitionsInvalidate(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name       string
		run        func(q *Queries) (*api.Bet, error)
		usersAgain bool
	}{
		{"close", func(q *Queries) (*api.Bet, error) { return q.CloseBet(ctx, "b1") }, false},
		{"cancel", func(q *Queries) (*api.Bet, error) { return q.CancelBet(ctx, "b1") }, true},
		{"dispute", func(q *Queries) (*api.Bet, error) { return q.DisputeBet(ctx, "b1") }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, q := newQueries(t)
			prime := func() {
				_, err := q.Bet(ctx, "b1")
				require.NoError(t, err)
				_, err = q.Bet(ctx, "b9")
				require.NoError(t, err)
				_, err = q.Bets(ctx, BetQuery{})
				require.NoError(t, err)
				_, err = q.Quote(ctx, "b1", "yes", decimal.NewFromInt(10))
				require.NoError(t, err)
				_, err = q.UserBets(ctx, "wallet1")
				require.NoError(t, err)
			}
			prime()
			_, err := tc.run(q)
			require.NoError(t, err)
			prime()

			assert.Equal(t, 2, f.count("bet:b1"))
			assert.Equal(t, 2, f.count("bets:"))
			assert.Equal(t, 2, f.count("quote:b1:yes:10"))
			assert.Equal(t, 1, f.count("bet:b9"))
			users := 1
			if tc.usersAgain {
				users = 2
			}
			assert.Equal(t, users, f.count("userbets:wallet1"))
		})
	}
}

func TestQueries_ReadsOnChainAddressesOnce(t *testing.T) {
	f, q := newQueries(t)
	ctx := context.Background()

	for range 2 {
		addrs, err := q.ChainAddresses(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, "EscAcc", addrs.EscrowAccount)
	}
	assert.Equal(t, 1, f.count("address:b1"))
}

func TestQueries_MutationsUseSessionWallet(t *testing.T) {
	f, q := newQueries(t)
	ctx := context.Background()
	_, err := q.api.Login(ctx, "wallet1", "good")
	require.NoError(t, err)

	_, err = q.BetStats(ctx, "wallet1")
	require.NoError(t, err)

	// sem carteira no corpo, a sessão decide qual usuário invalidar
	_, err = q.PlaceBet(ctx, "b1", api.PlaceBetRequest{Position: "yes", Amount: amount(1)})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-wallet1", f.lastAuth())

	_, err = q.BetStats(ctx, "wallet1")
	require.NoError(t, err)
	assert.Equal(t, 2, f.count("stats:wallet1"))
}
