package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/solbet/solbet-platform/internal/bet-service/domain"
	"github.com/solbet/solbet-platform/internal/bet-service/repo"
)

const listVersionKey = "bets:list:version"

// BetCache guarda no Redis o detalhe de cada aposta e as páginas da listagem.
// Toda chave carrega uma versão: invalidar incrementa a versão e as chaves
// antigas expiram sozinhas pelo TTL. O leitor captura a versão antes de ir ao
// banco e grava sob ela, então um valor lido antes de um commit nunca aparece
// sob a versão posterior à invalidação.
type BetCache struct {
	R   *redis.Client
	TTL time.Duration

	OnHit  func(kind string)
	OnMiss func(kind string)
}

func NewBetCache(r *redis.Client, ttl time.Duration) *BetCache {
	return &BetCache{R: r, TTL: ttl}
}

func keyBetVersion(id string) string { return "bets:detail:version:" + id }

func keyBet(version int64, id string) string { return fmt.Sprintf("bets:detail:v%d:%s", version, id) }

func keyList(version int64, f repo.BetFilter) string {
	return fmt.Sprintf("bets:list:v%d:%s:%s:%d:%d", version, f.Category, f.Status, f.Page, f.Limit)
}

func (c *BetCache) hit(kind string) {
	if c.OnHit != nil {
		c.OnHit(kind)
	}
}

func (c *BetCache) miss(kind string) {
	if c.OnMiss != nil {
		c.OnMiss(kind)
	}
}

func (c *BetCache) version(ctx context.Context, key string) (int64, error) {
	v, err := c.R.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return v, errors.Wrapf(err, "cache version %s", key)
}

func (c *BetCache) get(ctx context.Context, kind, key string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.miss(kind)
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "cache get %s", key)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, errors.Wrapf(err, "cache decode %s", key)
	}
	c.hit(kind)
	return true, nil
}

func (c *BetCache) set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "cache encode")
	}
	return errors.Wrapf(c.R.Set(ctx, key, b, c.TTL).Err(), "cache set %s", key)
}

// GetBet devolve também a versão lida, que deve ser repassada a SetBet
func (c *BetCache) GetBet(ctx context.Context, id string) (*domain.Bet, int64, bool, error) {
	v, err := c.version(ctx, keyBetVersion(id))
	if err != nil {
		return nil, 0, false, err
	}
	var b domain.Bet
	ok, err := c.get(ctx, "bet", keyBet(v, id), &b)
	if !ok {
		return nil, v, false, err
	}
	return &b, v, true, nil
}

func (c *BetCache) SetBet(ctx context.Context, version int64, b *domain.Bet) error {
	return c.set(ctx, keyBet(version, b.ID), b)
}

func (c *BetCache) GetList(ctx context.Context, f repo.BetFilter) (*domain.BetPage, int64, bool, error) {
	v, err := c.version(ctx, listVersionKey)
	if err != nil {
		return nil, 0, false, err
	}
	var p domain.BetPage
	ok, err := c.get(ctx, "list", keyList(v, f), &p)
	if !ok {
		return nil, v, false, err
	}
	return &p, v, true, nil
}

func (c *BetCache) SetList(ctx context.Context, version int64, f repo.BetFilter, p *domain.BetPage) error {
	return c.set(ctx, keyList(version, f), p)
}

// Invalidate avança a versão do detalhe das apostas informadas e a das páginas
func (c *BetCache) Invalidate(ctx context.Context, betIDs ...string) error {
	_, err := c.R.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, id := range betIDs {
			p.Incr(ctx, keyBetVersion(id))
		}
		p.Incr(ctx, listVersionKey)
		return nil
	})
	return errors.Wrap(err, "cache invalidate")
}
