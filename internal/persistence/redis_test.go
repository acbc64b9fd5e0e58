package persistence

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront-api/internal/config"
)

func TestRedisPing(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	r := NewRedis(ctx, config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	defer r.Close()
	assert.NoError(t, r.Ping(ctx))

	mr.Close()
	assert.Error(t, r.Ping(ctx))
}

func TestNilHandles(t *testing.T) {
	var r *Redis
	assert.Error(t, r.Ping(context.Background()))

	pg := &Postgres{}
	assert.False(t, pg.Enabled())
	assert.Error(t, pg.Ping(context.Background()))
	assert.Nil(t, pg.PoolHandle())
}

func TestSplitAddrs(t *testing.T) {
	assert.Equal(t, []string{"a:6379", "b:6379"}, splitAddrs(" a:6379, ,b:6379 "))
	assert.Empty(t, splitAddrs(""))
}

func TestNotConfiguredSentinel(t *testing.T) {
	var r *Redis
	assert.ErrorIs(t, r.Ping(context.Background()), ErrNotConfigured)
	assert.ErrorIs(t, (&Postgres{}).Ping(context.Background()), ErrNotConfigured)
}

func TestNewPostgresWithoutDSN(t *testing.T) {
	pg, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	assert.NoError(t, err)
	assert.False(t, pg.Enabled())
}
