package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/domain"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupTestCache(t *testing.T) *AnalyticsCache {
	t.Helper()
	_ = godotenv.Load("../../../.env")

	host := getEnv("REDIS_HOST", "localhost")
	port := getEnv("REDIS_PORT", "6379")
	pass := getEnv("REDIS_PASSWORD", "secret_redis_pass_local")

	rdb, err := NewRedisClient(host, port, pass, 1)
	if err != nil {
		t.Skipf("Skipping Redis integration test: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })

	require.NoError(t, rdb.FlushDB(context.Background()).Err(), "Failed to flush test DB")

	return NewAnalyticsCache(rdb)
}

func TestAnalyticsCache_Integration(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()

	dashboard := &domain.Dashboard{
		StartDate: "2024-04-01",
		EndDate:   "2024-04-07",
		Timezone:  "UTC",
		Chart: []domain.ChartPoint{
			{Date: "2024-04-01", CompletionRate: 0.5},
		},
	}

	t.Run("Success: round trips a dashboard", func(t *testing.T) {
		key := "dashboard:user-1:2024-04-01:2024-04-07:UTC"

		require.NoError(t, c.Set(ctx, key, dashboard, time.Minute))

		got, err := c.Get(ctx, key)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, dashboard, got)
	})

	t.Run("Success: miss reads as nil, nil", func(t *testing.T) {
		got, err := c.Get(ctx, "dashboard:nobody:2024-04-01:2024-04-07:UTC")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Success: InvalidateUser only touches that user's keys", func(t *testing.T) {
		mine := "dashboard:user-1:2024-04-01:2024-04-07:UTC"
		theirs := "dashboard:user-2:2024-04-01:2024-04-07:UTC"

		require.NoError(t, c.Set(ctx, mine, dashboard, time.Minute))
		require.NoError(t, c.Set(ctx, theirs, dashboard, time.Minute))

		require.NoError(t, c.InvalidateUser(ctx, "user-1"))

		gone, err := c.Get(ctx, mine)
		require.NoError(t, err)
		assert.Nil(t, gone)

		kept, err := c.Get(ctx, theirs)
		require.NoError(t, err)
		assert.NotNil(t, kept)
	})

	t.Run("Edge Case: corrupted entry reads as a miss", func(t *testing.T) {
		key := "dashboard:user-3:2024-04-01:2024-04-07:UTC"
		require.NoError(t, c.client.Set(ctx, key, "{not json", time.Minute).Err())

		got, err := c.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
