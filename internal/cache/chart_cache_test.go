package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rpggio/gantry/internal/domain/activity"
)

// newTestCache connects to the Redis named by GANTRY_TEST_REDIS_ADDR and
// skips the test when it is unset.
func newTestCache(t *testing.T) *ChartCache {
	t.Helper()
	addr := os.Getenv("GANTRY_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("GANTRY_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := Connect(ctx, addr, "", 15)
	require.NoError(t, err)
	require.NoError(t, rdb.FlushDB(ctx).Err())
	t.Cleanup(func() {
		rdb.FlushDB(context.Background())
		rdb.Close()
	})
	return NewChartCache(rdb, time.Minute)
}

func TestEntryKey(t *testing.T) {
	require.Equal(t, "gantry:chart:0:team|u1", entryKey(0, "team|u1"))
	require.Equal(t, "gantry:chart:12:team|u1", entryKey(12, "team|u1"))
}

func TestConnectUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Connect(ctx, "127.0.0.1:1", "", 0)
	require.Error(t, err)
}

func TestChartCache_RoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	type chart struct {
		Name  string    `json:"name"`
		Loads []float64 `json:"loads"`
	}

	var got chart
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", chart{Name: "team", Loads: []float64{50, 85.7}}))

	ok, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "team", got.Name)
	require.Equal(t, []float64{50, 85.7}, got.Loads)
}

func TestChartCache_ListenerInvalidates(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", map[string]int{"v": 1}))
	c.Listener(nil)(ctx, activity.ActivityEntry{ActivityType: activity.TypeTaskUpdated})

	var got map[string]int
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.False(t, ok)
}
