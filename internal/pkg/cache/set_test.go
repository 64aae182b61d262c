package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exusiai.dev/booking-backend/internal/model"
)

func newTestSet(t *testing.T) (*Set[model.Snapshot], *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSet[model.Snapshot](client, "test:snapshot"), mr
}

func testSnapshot(artists int) *model.Snapshot {
	return model.Derive(model.NewRawCounts(
		model.CountResult{ID: model.QueryArtists, Value: artists},
		model.CountResult{ID: model.QueryProfiles, Value: artists + 10},
		model.CountResult{ID: model.QueryPendingRequests, Value: 2},
		model.CountResult{ID: model.QueryPendingVerifications, Err: context.DeadlineExceeded},
	), time.Date(2026, 10, 19, 9, 30, 0, 123456789, time.UTC))
}

func keepMinute(*model.Snapshot) time.Duration {
	return time.Minute
}

func TestSetRoundTrip(t *testing.T) {
	ctx := context.Background()
	set, mr := newTestSet(t)

	want := testSnapshot(120)
	require.NoError(t, set.Set(ctx, "k", want, time.Minute))
	assert.True(t, mr.Exists("test:snapshot:k"))
	assert.Equal(t, time.Minute, mr.TTL("test:snapshot:k"))

	var got model.Snapshot
	require.NoError(t, set.Get(ctx, "k", &got))
	assert.True(t, want.ComputedAt.Equal(got.ComputedAt), "expect %s, got %s", want.ComputedAt, got.ComputedAt)
	assert.Equal(t, want.ActiveArtists, got.ActiveArtists)
	assert.Equal(t, want.ActiveClients, got.ActiveClients)
	assert.Equal(t, want.PendingApprovals, got.PendingApprovals)
	assert.Equal(t, "query failed: pending_verifications", got.PendingApprovals.Reason)
	assert.Equal(t, want.Trends, got.Trends)

	require.NoError(t, set.Delete(ctx, "k"))
	assert.ErrorIs(t, set.Get(ctx, "k", &got), ErrNotFound)
}

func TestSetMutexGetSet(t *testing.T) {
	ctx := context.Background()

	t.Run("ComputesOnceThenServesFromRedis", func(t *testing.T) {
		set, _ := newTestSet(t)
		var calls atomic.Int32
		valueFunc := func() (*model.Snapshot, error) {
			calls.Add(1)
			return testSnapshot(5), nil
		}

		var first, second model.Snapshot
		computed, err := set.MutexGetSet(ctx, "k", &first, valueFunc, keepMinute)
		require.NoError(t, err)
		assert.True(t, computed)

		computed, err = set.MutexGetSet(ctx, "k", &second, valueFunc, keepMinute)
		require.NoError(t, err)
		assert.False(t, computed)

		assert.EqualValues(t, 1, calls.Load())
		assert.Equal(t, 5, second.ActiveArtists.Value)
	})

	t.Run("ConcurrentCallersShareOneComputation", func(t *testing.T) {
		set, _ := newTestSet(t)
		var calls atomic.Int32
		valueFunc := func() (*model.Snapshot, error) {
			calls.Add(1)
			time.Sleep(20 * time.Millisecond)
			return testSnapshot(9), nil
		}

		var wg sync.WaitGroup
		results := make([]model.Snapshot, 8)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := set.MutexGetSet(ctx, "k", &results[i], valueFunc, keepMinute)
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		assert.EqualValues(t, 1, calls.Load())
		for _, r := range results {
			assert.Equal(t, 9, r.ActiveArtists.Value)
		}
	})

	t.Run("NonPositiveTTLSkipsStore", func(t *testing.T) {
		set, mr := newTestSet(t)

		var dest model.Snapshot
		computed, err := set.MutexGetSet(ctx, "k", &dest, func() (*model.Snapshot, error) {
			return testSnapshot(3), nil
		}, func(*model.Snapshot) time.Duration { return 0 })
		require.NoError(t, err)

		assert.True(t, computed)
		assert.Equal(t, 3, dest.ActiveArtists.Value, "expect the value to be served anyway")
		assert.False(t, mr.Exists("test:snapshot:k"))
	})

	t.Run("RedisUnavailable", func(t *testing.T) {
		set, mr := newTestSet(t)
		mr.Close()

		var calls int
		var dest model.Snapshot
		_, err := set.MutexGetSet(ctx, "k", &dest, func() (*model.Snapshot, error) {
			calls++
			return testSnapshot(1), nil
		}, keepMinute)

		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.Zero(t, calls)
	})
}
