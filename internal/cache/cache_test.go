package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/shogun/internal/animation"
	"github.com/hpungsan/shogun/internal/db"
	"github.com/hpungsan/shogun/internal/metrics"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// stores runs fn against both backends on the same clock.
func stores(t *testing.T, fn func(t *testing.T, s Store, clock *fakeClock)) {
	t.Run("memory", func(t *testing.T) {
		clock := newFakeClock()
		fn(t, NewMemoryStore(clock.Now), clock)
	})
	t.Run("sqlite", func(t *testing.T) {
		database, err := db.Init(t.TempDir())
		require.NoError(t, err)
		t.Cleanup(func() { database.Close() })
		clock := newFakeClock()
		fn(t, NewSQLStore(database, clock.Now), clock)
	})
}

func TestStore_SetGetExpire(t *testing.T) {
	stores(t, func(t *testing.T, s Store, clock *fakeClock) {
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "k", ".a{}", time.Hour))

		css, ok, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, ".a{}", css)

		clock.Advance(59 * time.Minute)
		_, ok, _ = s.Get(ctx, "k")
		assert.True(t, ok)

		clock.Advance(time.Minute)
		_, ok, err = s.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok, "entry must expire at its TTL")
	})
}

func TestStore_DeleteAndClear(t *testing.T) {
	stores(t, func(t *testing.T, s Store, _ *fakeClock) {
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "a", "1", time.Hour))
		require.NoError(t, s.Set(ctx, "b", "2", time.Hour))

		require.NoError(t, s.Delete(ctx, "a"))
		_, ok, _ := s.Get(ctx, "a")
		assert.False(t, ok)
		_, ok, _ = s.Get(ctx, "b")
		assert.True(t, ok)

		require.NoError(t, s.Clear(ctx))
		_, ok, _ = s.Get(ctx, "b")
		assert.False(t, ok)
	})
}

func TestStore_StatsAndPurge(t *testing.T) {
	stores(t, func(t *testing.T, s Store, clock *fakeClock) {
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "short", "x", time.Minute))
		require.NoError(t, s.Set(ctx, "long", "abcd", time.Hour))
		clock.Advance(2 * time.Minute)

		st, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, Stats{Entries: 1, Expired: 1, Bytes: 4}, st)

		n, err := s.PurgeExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		st, _ = s.Stats(ctx)
		assert.Equal(t, 0, st.Expired)
	})
}

func TestSQLStore_SharesTableWithOtherTransients(t *testing.T) {
	ctx := context.Background()
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, db.SetTransient(ctx, database, db.Transient{Name: "unrelated", Value: "v", ExpiresAt: time.Now().Add(time.Hour).Unix()}))

	s := NewSQLStore(database, nil)
	require.NoError(t, s.Set(ctx, "k", "css", time.Hour))
	require.NoError(t, s.Clear(ctx))

	_, ok, err := db.GetTransient(ctx, database, "unrelated", time.Now().Unix())
	require.NoError(t, err)
	assert.True(t, ok, "Clear must only remove prefixed entries")
}

func TestKey(t *testing.T) {
	a := animation.Params{"speed": animation.IntValue(100), "cursor": animation.StringValue("|")}
	b := animation.Params{"cursor": animation.StringValue("|"), "speed": animation.IntValue(100)}

	assert.Equal(t, Key("typewriter", a), Key("typewriter", b))
	assert.Len(t, Key("typewriter", a), 16)
	assert.NotEqual(t, Key("typewriter", a), Key("neon", a))
}

// brokenStore fails reads, writes and clears; the rest goes to a working
// memory store.
type brokenStore struct{ *MemoryStore }

var errBroken = errors.New("disk on fire")

func (*brokenStore) Get(context.Context, string) (string, bool, error)      { return "", false, errBroken }
func (*brokenStore) Set(context.Context, string, string, time.Duration) error { return errBroken }
func (*brokenStore) Clear(context.Context) error                             { return errBroken }

func TestCache_BackendErrorsAreMisses(t *testing.T) {
	ctx := context.Background()
	m := metrics.New(prometheus.NewRegistry())
	c := New(&brokenStore{NewMemoryStore(nil)}, time.Hour, m, nil)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	css, cached, err := c.GetOrCompute(ctx, "k", func() (string, error) { return ".a{}", nil })
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, ".a{}", css)

	assert.Error(t, c.Clear(ctx, ""))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheErrors.WithLabelValues("get")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheErrors.WithLabelValues("set")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("miss")))

	// Calls that are not overridden reach the embedded store.
	st, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, st)
}

func TestCache_GetOrCompute(t *testing.T) {
	ctx := context.Background()
	m := metrics.New(prometheus.NewRegistry())
	c := New(NewMemoryStore(nil), 0, m, nil)
	assert.Equal(t, DefaultTTL, c.TTL())

	calls := 0
	compute := func() (string, error) {
		calls++
		return ".x{}", nil
	}

	css, cached, err := c.GetOrCompute(ctx, "k", compute)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, ".x{}", css)

	css, cached, err = c.GetOrCompute(ctx, "k", compute)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, ".x{}", css)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("hit")))

	_, _, err = c.GetOrCompute(ctx, "bad", func() (string, error) { return "", errBroken })
	assert.ErrorIs(t, err, errBroken)

	_, _, _ = c.GetOrCompute(ctx, "empty", func() (string, error) { return "", nil })
	_, ok := c.Get(ctx, "empty")
	assert.False(t, ok, "empty css is never cached")
}

func TestCache_GetOrComputeCoalesces(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore(nil), time.Hour, nil, nil)

	var calls atomic.Int32
	release := make(chan struct{})
	compute := func() (string, error) {
		calls.Add(1)
		<-release
		return ".x{}", nil
	}

	const n = 8
	var wg sync.WaitGroup
	results := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			css, _, err := c.GetOrCompute(ctx, "k", compute)
			assert.NoError(t, err)
			results[i] = css
		}(i)
	}

	// Give the goroutines time to pile up behind the first compute.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, css := range results {
		assert.Equal(t, ".x{}", css)
	}
}

func TestCache_ClearOne(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore(nil), time.Hour, nil, nil)
	c.Set(ctx, "a", "1")
	c.Set(ctx, "b", "2")

	require.NoError(t, c.Clear(ctx, "a"))
	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "b")
	assert.True(t, ok)

	require.NoError(t, c.Clear(ctx, ""))
	st, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Entries)
}
