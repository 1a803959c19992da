//go:build integration

package registry_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"distress/internal/registry"
	"distress/pkg/testutil/containers"
)

type countingSearcher struct {
	calls   atomic.Int32
	results []registry.Candidate
}

func (s *countingSearcher) Search(context.Context, string, int) ([]registry.Candidate, error) {
	s.calls.Add(1)
	return s.results, nil
}

func TestCachedSearcher(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	t.Run("repeat queries hit the cache", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		live := &countingSearcher{results: []registry.Candidate{
			{CompanyNumber: "12345678", Title: "SMITH PROPERTIES LTD", Status: "liquidation"},
		}}
		cached := registry.NewCachedSearcher(rc.Client, live, time.Minute, nil)

		first, err := cached.Search(ctx, "Smith Properties Ltd", 5)
		require.NoError(t, err)
		second, err := cached.Search(ctx, "Smith Properties Ltd", 5)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, int32(1), live.calls.Load())
	})

	t.Run("key normalizes case and whitespace", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		live := &countingSearcher{}
		cached := registry.NewCachedSearcher(rc.Client, live, time.Minute, nil)

		_, err := cached.Search(ctx, "Smith Properties Ltd", 5)
		require.NoError(t, err)
		_, err = cached.Search(ctx, "  SMITH PROPERTIES LTD  ", 5)
		require.NoError(t, err)

		assert.Equal(t, int32(1), live.calls.Load())
	})

	t.Run("different limits cache separately", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		live := &countingSearcher{}
		cached := registry.NewCachedSearcher(rc.Client, live, time.Minute, nil)

		_, err := cached.Search(ctx, "Smith Properties Ltd", 5)
		require.NoError(t, err)
		_, err = cached.Search(ctx, "Smith Properties Ltd", 10)
		require.NoError(t, err)

		assert.Equal(t, int32(2), live.calls.Load())
	})

	t.Run("empty result sets are cached too", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		live := &countingSearcher{results: []registry.Candidate{}}
		cached := registry.NewCachedSearcher(rc.Client, live, time.Minute, nil)

		refs, err := cached.Search(ctx, "Nowhere Ltd", 5)
		require.NoError(t, err)
		assert.Empty(t, refs)

		_, err = cached.Search(ctx, "Nowhere Ltd", 5)
		require.NoError(t, err)
		assert.Equal(t, int32(1), live.calls.Load())
	})

	t.Run("nil client passes through", func(t *testing.T) {
		live := &countingSearcher{}
		passthrough := registry.NewCachedSearcher(nil, live, time.Minute, nil)
		assert.Equal(t, live, passthrough)
	})
}
