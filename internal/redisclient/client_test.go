package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/config"
)

func TestNewClientDisabled(t *testing.T) {
	client, err := NewClient(context.Background(), config.RedisConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, client, "disabled Redis must yield a nil client")
}

func TestNewClientMissingHost(t *testing.T) {
	_, err := NewClient(context.Background(), config.RedisConfig{Enabled: true})
	assert.Error(t, err)
}

func TestNewClientConnects(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.RedisConfig{
		Enabled: true,
		Host:    mr.Host(),
		Port:    mr.Port(),
	}
	client, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, client)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Set(ctx, "lookup:K1JT", `{"name":"United States"}`, time.Minute).Err())

	val, err := client.Get(ctx, "lookup:K1JT").Result()
	require.NoError(t, err)
	assert.Equal(t, `{"name":"United States"}`, val)
}

func TestNewClientConnectFailure(t *testing.T) {
	cfg := config.RedisConfig{
		Enabled: true,
		Host:    "127.0.0.1",
		Port:    "1", // nothing listens here
	}
	_, err := NewClient(context.Background(), cfg)
	assert.Error(t, err)
}
