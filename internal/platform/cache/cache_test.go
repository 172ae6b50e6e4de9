package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, time.Minute)
}

func TestFetchJSONPopulatesAndServesFromCache(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	calls := 0
	loader := func(ctx context.Context) (interface{}, error) {
		calls++
		return map[string]int{"total": 42}, nil
	}

	var out map[string]int
	require.NoError(t, svc.FetchJSON(ctx, BucketOrders, []string{"status", "dispatched"}, &out, loader))
	assert.Equal(t, 42, out["total"])
	assert.Equal(t, 1, calls)

	out = nil
	require.NoError(t, svc.FetchJSON(ctx, BucketOrders, []string{"status", "dispatched"}, &out, loader))
	assert.Equal(t, 42, out["total"])
	assert.Equal(t, 1, calls, "second fetch must be served from cache")
}

func TestInvalidateBumpsVersionAndForcesReload(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	calls := 0
	loader := func(ctx context.Context) (interface{}, error) {
		calls++
		return calls, nil
	}

	var out int
	require.NoError(t, svc.FetchJSON(ctx, BucketOrders, nil, &out, loader))
	assert.Equal(t, 1, out)

	require.NoError(t, svc.Invalidate(ctx, BucketOrders))

	require.NoError(t, svc.FetchJSON(ctx, BucketOrders, nil, &out, loader))
	assert.Equal(t, 2, out, "invalidation must orphan the cached value")
}

func TestInvalidateForUsesDeclaredBuckets(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	svc.Declare("orders.reconcile", BucketOrders, BucketShortages, BucketDriverTransactions)

	before := map[string]int64{}
	for _, b := range []string{BucketOrders, BucketShortages, BucketDriverTransactions, BucketCustomers} {
		ver, err := svc.Version(ctx, b)
		require.NoError(t, err)
		before[b] = ver
	}

	require.NoError(t, svc.InvalidateFor(ctx, "orders.reconcile"))

	for _, b := range []string{BucketOrders, BucketShortages, BucketDriverTransactions} {
		ver, err := svc.Version(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, before[b]+1, ver, "bucket %s must be bumped", b)
	}
	ver, err := svc.Version(ctx, BucketCustomers)
	require.NoError(t, err)
	assert.Equal(t, before[BucketCustomers], ver, "undeclared bucket must be untouched")
}

func TestInvalidateForUnknownMutation(t *testing.T) {
	svc := newTestService(t)
	err := svc.InvalidateFor(context.Background(), "orders.vanish")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownMutation)
}

func TestFetchJSONRetriesLoaderOnce(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	calls := 0
	loader := func(ctx context.Context) (interface{}, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient")
		}
		return "ok", nil
	}

	var out string
	require.NoError(t, svc.FetchJSON(ctx, BucketReports, []string{"trip_profitability"}, &out, loader))
	assert.Equal(t, "ok", out)
	assert.Equal(t, 2, calls)
}

func TestFetchJSONSurfacesPersistentLoaderFailure(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	boom := errors.New("backend down")
	loader := func(ctx context.Context) (interface{}, error) { return nil, boom }

	var out string
	err := svc.FetchJSON(ctx, BucketReports, nil, &out, loader)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
