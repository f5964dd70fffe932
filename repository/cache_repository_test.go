package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", "0.25"))
	v, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "0.25", v)
}

func TestNewRedisCache_ParsesURL(t *testing.T) {
	rc, err := NewRedisCache("redis://localhost:6379/2", "pd:", time.Minute)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "localhost:6379", rc.client.Options().Addr)
	assert.Equal(t, 2, rc.client.Options().DB)

	_, err = NewRedisCache("redis://host:6379/not-a-db", "pd:", 0)
	assert.Error(t, err)
}

// Requires a reachable server, e.g. LOANADVISOR_TEST_REDIS=localhost:6379.
func TestRedisCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("LOANADVISOR_TEST_REDIS")
	if addr == "" {
		t.Skip("LOANADVISOR_TEST_REDIS not set")
	}
	ctx := context.Background()
	rc, err := NewRedisCache(addr, "loan-advisor-test:", time.Minute)
	require.NoError(t, err)
	defer rc.Close()
	require.NoError(t, rc.Ping(ctx))

	require.NoError(t, rc.Set(ctx, "k", "0.125"))
	v, ok := rc.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "0.125", v)

	_, ok = rc.Get(ctx, "absent")
	assert.False(t, ok)
}
