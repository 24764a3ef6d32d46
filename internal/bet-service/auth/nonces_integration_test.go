//go:build integration

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestRedisNonces_TakeConsumes(t *testing.T) {
	rdb := setupRedis(t)
	n := NewRedisNonces(rdb)
	ctx := context.Background()

	_, ok, err := n.Take(ctx, "wallet-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, n.Put(ctx, "wallet-1", "abc", time.Minute))
	ttl, err := rdb.TTL(ctx, nonceKey("wallet-1")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	// um desafio novo substitui o anterior
	require.NoError(t, n.Put(ctx, "wallet-1", "def", time.Minute))
	nonce, ok, err := n.Take(ctx, "wallet-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "def", nonce)

	_, ok, err = n.Take(ctx, "wallet-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisNonces_Expire(t *testing.T) {
	n := NewRedisNonces(setupRedis(t))
	ctx := context.Background()

	require.NoError(t, n.Put(ctx, "wallet-1", "abc", 100*time.Millisecond))
	time.Sleep(300 * time.Millisecond)
	_, ok, err := n.Take(ctx, "wallet-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
