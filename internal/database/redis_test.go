package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seshat-edu/seshat-backend/internal/config"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{RedisURL: "redis://" + mr.Addr() + "/0"}

	rdb, err := NewRedisClient(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer rdb.Close()

	require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewRedisClientBadURL(t *testing.T) {
	cfg := &config.Config{RedisURL: "not a url"}
	_, err := NewRedisClient(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}
