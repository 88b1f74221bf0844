package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("PUNCH_TEST_REDIS")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Skipping Redis integration test: redis not available")
	}

	c := NewRedis(client, "punch:test:"+uuid.NewString()+":")

	_, ok, err := c.Get(ctx, ReportKey(1, "daily", "2024-03"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, ReportKey(1, "daily", "2024-03"), []byte("a"), time.Minute))
	require.NoError(t, c.Set(ctx, ReportKey(1, "monthly", "2024"), []byte("b"), time.Minute))
	require.NoError(t, c.Set(ctx, ReportKey(2, "daily", "2024-03"), []byte("c"), time.Minute))

	v, ok, err := c.Get(ctx, ReportKey(1, "daily", "2024-03"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("a"), v)

	require.NoError(t, c.DeletePrefix(ctx, UserPrefix(1)))

	_, ok, _ = c.Get(ctx, ReportKey(1, "daily", "2024-03"))
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, ReportKey(1, "monthly", "2024"))
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, ReportKey(2, "daily", "2024-03"))
	assert.True(t, ok, "other users keep their entries")
}
