package auth

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// NonceStore guarda o desafio pendente de cada carteira. Take consome o nonce:
// cada desafio vale para um único login.
type NonceStore interface {
	Put(ctx context.Context, wallet, nonce string, ttl time.Duration) error
	Take(ctx context.Context, wallet string) (string, bool, error)
}

type RedisNonces struct {
	rdb *redis.Client
}

func NewRedisNonces(rdb *redis.Client) *RedisNonces {
	return &RedisNonces{rdb: rdb}
}

func nonceKey(wallet string) string { return "auth:nonce:" + wallet }

func (r *RedisNonces) Put(ctx context.Context, wallet, nonce string, ttl time.Duration) error {
	return errors.Wrap(r.rdb.Set(ctx, nonceKey(wallet), nonce, ttl).Err(), "store nonce")
}

func (r *RedisNonces) Take(ctx context.Context, wallet string) (string, bool, error) {
	nonce, err := r.rdb.GetDel(ctx, nonceKey(wallet)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "take nonce")
	}
	return nonce, true, nil
}
