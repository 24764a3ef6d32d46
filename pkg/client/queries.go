package client

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/solbet/solbet-platform/pkg/contracts/api"
)

const (
	tagBets  = "bets"  // toda listagem
	tagUsers = "users" // todo agregado de usuário
)

func betTag(id string) string       { return "bet:" + id }
func userTag(address string) string { return "user:" + address }

// Queries faz as leituras com cache e as mutações que invalidam o cache
type Queries struct {
	api   *Client
	cache *QueryCache
}

func NewQueries(api *Client, cache *QueryCache) *Queries {
	return &Queries{api: api, cache: cache}
}

func betKey(id string) Key { return Key{Resource: "bet", ID: id} }

// actor é a carteira afetada por uma mutação: a do corpo ou a da sessão
func (q *Queries) actor(claimed string) string {
	if claimed != "" {
		return claimed
	}
	return q.api.Wallet()
}

func (q *Queries) Bet(ctx context.Context, id string) (*api.Bet, error) {
	return fetchAs(ctx, q.cache, betKey(id), []string{betTag(id)},
		func(ctx context.Context) (*api.Bet, error) { return q.api.GetBet(ctx, id) })
}

func (q *Queries) Bets(ctx context.Context, f BetQuery) (*api.BetList, error) {
	key := Key{Resource: "bets", Filters: f.values().Encode()}
	return fetchAs(ctx, q.cache, key, []string{tagBets},
		func(ctx context.Context) (*api.BetList, error) { return q.api.ListBets(ctx, f) })
}

// Quote depende dos pools, então cai junto com a aposta
func (q *Queries) Quote(ctx context.Context, betID, position string, amount decimal.Decimal) (*api.Quote, error) {
	key := Key{Resource: "quote", ID: betID, Filters: position + ":" + amount.String()}
	return fetchAs(ctx, q.cache, key, []string{betTag(betID)},
		func(ctx context.Context) (*api.Quote, error) { return q.api.Quote(ctx, betID, position, amount) })
}

func (q *Queries) ChainAddresses(ctx context.Context, betID string) (api.ChainAddresses, error) {
	key := Key{Resource: "solana-address", ID: betID}
	return fetchAs(ctx, q.cache, key, []string{betTag(betID)},
		func(ctx context.Context) (api.ChainAddresses, error) { return q.api.ChainAddresses(ctx, betID) })
}

func (q *Queries) BetStats(ctx context.Context, address string) (api.UserStats, error) {
	key := Key{Resource: "bet-stats", ID: address}
	return fetchAs(ctx, q.cache, key, []string{userTag(address), tagUsers},
		func(ctx context.Context) (api.UserStats, error) { return q.api.BetStats(ctx, address) })
}

func (q *Queries) Transactions(ctx context.Context, address string) ([]api.Transaction, error) {
	key := Key{Resource: "transactions", ID: address}
	return fetchAs(ctx, q.cache, key, []string{userTag(address), tagUsers},
		func(ctx context.Context) ([]api.Transaction, error) { return q.api.Transactions(ctx, address) })
}

func (q *Queries) UserBets(ctx context.Context, address string) ([]api.UserBet, error) {
	key := Key{Resource: "user-bets", ID: address}
	return fetchAs(ctx, q.cache, key, []string{userTag(address), tagUsers},
		func(ctx context.Context) ([]api.UserBet, error) { return q.api.UserBets(ctx, address) })
}

func (q *Queries) CreateBet(ctx context.Context, req api.CreateBetRequest) (*api.Bet, error) {
	bet, err := q.api.CreateBet(ctx, req)
	if err != nil {
		return nil, err
	}
	q.cache.Invalidate(tagBets, userTag(q.actor(req.Creator)))
	return bet, nil
}

func (q *Queries) PlaceBet(ctx context.Context, betID string, req api.PlaceBetRequest) (*api.Bet, error) {
	bet, err := q.api.PlaceBet(ctx, betID, req)
	if err != nil {
		return nil, err
	}
	q.cache.Invalidate(betTag(betID), tagBets, userTag(q.actor(req.WalletAddress)))
	return bet, nil
}

func (q *Queries) Withdraw(ctx context.Context, betID string, req api.WithdrawRequest) (*api.WithdrawResponse, error) {
	res, err := q.api.Withdraw(ctx, betID, req)
	if err != nil {
		return nil, err
	}
	q.cache.Invalidate(betTag(betID), tagBets, userTag(q.actor(req.WalletAddress)))
	return res, nil
}

// ResolveBet muda os agregados de todos os participantes, então invalida todos os usuários
func (q *Queries) ResolveBet(ctx context.Context, betID string, req api.ResolveBetRequest) (*api.Bet, error) {
	bet, err := q.api.ResolveBet(ctx, betID, req)
	if err != nil {
		return nil, err
	}
	q.cache.Invalidate(betTag(betID), tagBets, tagUsers)
	return bet, nil
}

func (q *Queries) CloseBet(ctx context.Context, betID string) (*api.Bet, error) {
	bet, err := q.api.CloseBet(ctx, betID)
	if err != nil {
		return nil, err
	}
	q.cache.Invalidate(betTag(betID), tagBets)
	return bet, nil
}

// CancelBet reembolsa os participantes, como ResolveBet
func (q *Queries) CancelBet(ctx context.Context, betID string) (*api.Bet, error) {
	bet, err := q.api.CancelBet(ctx, betID)
	if err != nil {
		return nil, err
	}
	q.cache.Invalidate(betTag(betID), tagBets, tagUsers)
	return bet, nil
}

func (q *Queries) DisputeBet(ctx context.Context, betID string) (*api.Bet, error) {
	bet, err := q.api.DisputeBet(ctx, betID)
	if err != nil {
		return nil, err
	}
	q.cache.Invalidate(betTag(betID), tagBets)
	return bet, nil
}

// WatchBet recarrega a aposta do servidor a cada intervalo até ctx terminar
func (q *Queries) WatchBet(ctx context.Context, id string, interval time.Duration, fn func(*api.Bet, error)) {
	Watch(ctx, interval, func(ctx context.Context) (*api.Bet, error) {
		q.cache.Forget(betKey(id))
		return q.Bet(ctx, id)
	}, fn)
}
