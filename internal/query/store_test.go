package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedFetcher returns successive values; each call blocks until released
// when gate is non-nil.
type gatedFetcher struct {
	calls atomic.Int32
	gate  chan struct{}

	mu  sync.Mutex
	err error
}

func (f *gatedFetcher) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *gatedFetcher) fetch(ctx context.Context) ([]string, error) {
	n := f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return []string{string(rune('a' + n - 1))}, nil
}

func TestStore_SubscribeFetchesOnce(t *testing.T) {
	f := &gatedFetcher{}
	store := NewStore[[]string](context.Background(), DomainsKey, f.fetch)

	unsubscribe := store.Subscribe()
	defer unsubscribe()
	second := store.Subscribe()
	defer second()

	snap, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.HasData)
	assert.Equal(t, []string{"a"}, snap.Data)
	assert.EqualValues(t, 1, f.calls.Load())
}

func TestStore_ConcurrentLoadsShareFetch(t *testing.T) {
	f := &gatedFetcher{gate: make(chan struct{})}
	store := NewStore[[]string](context.Background(), DomainsKey, f.fetch)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := store.Load(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, []string{"a"}, snap.Data)
		}()
	}

	require.Eventually(t, func() bool { return store.Snapshot().Loading }, time.Second, 5*time.Millisecond)
	close(f.gate)
	wg.Wait()

	assert.EqualValues(t, 1, f.calls.Load())
}

func TestStore_InvalidateKeepsStaleDataVisible(t *testing.T) {
	f := &gatedFetcher{}
	store := NewStore[[]string](context.Background(), DomainsKey, f.fetch)

	_, err := store.Load(context.Background())
	require.NoError(t, err)

	f.gate = make(chan struct{})
	store.Invalidate()

	snap := store.Snapshot()
	assert.True(t, snap.Loading)
	assert.Equal(t, []string{"a"}, snap.Data)
	assert.EqualValues(t, 1, snap.Version)

	close(f.gate)
	require.Eventually(t, func() bool {
		s := store.Snapshot()
		return !s.Loading && len(s.Data) == 1 && s.Data[0] == "b"
	}, time.Second, 5*time.Millisecond)
}

func TestStore_InvalidateDoesNotJoinOlderFetch(t *testing.T) {
	f := &gatedFetcher{gate: make(chan struct{})}
	store := NewStore[[]string](context.Background(), DomainsKey, f.fetch)

	store.Refetch()
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	store.Invalidate()
	require.Eventually(t, func() bool { return f.calls.Load() == 2 }, time.Second, 5*time.Millisecond)

	close(f.gate)
	require.Eventually(t, func() bool { return !store.Snapshot().Loading }, time.Second, 5*time.Millisecond)
	assert.True(t, store.Snapshot().HasData)
}

func TestStore_FetchErrorAndRecovery(t *testing.T) {
	f := &gatedFetcher{}
	f.setErr(errors.New("upstream down"))
	store := NewStore[[]string](context.Background(), DomainsKey, f.fetch)

	snap, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.HasData)
	assert.EqualError(t, snap.Err, "upstream down")

	f.setErr(nil)
	store.Refetch()
	require.Eventually(t, func() bool {
		s := store.Snapshot()
		return s.HasData && s.Err == nil
	}, time.Second, 5*time.Millisecond)
}

func TestStore_LoadHonoursContext(t *testing.T) {
	f := &gatedFetcher{gate: make(chan struct{})}
	defer close(f.gate)
	store := NewStore[[]string](context.Background(), DomainsKey, f.fetch)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	snap, err := store.Load(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, snap.HasData)
	assert.True(t, snap.Loading)
}

func TestStore_InvalidateHooks(t *testing.T) {
	f := &gatedFetcher{}
	store := NewStore[[]string](context.Background(), DomainsKey, f.fetch)

	var hooked []string
	var mu sync.Mutex
	store.OnInvalidate(func(key string) {
		mu.Lock()
		hooked = append(hooked, key)
		mu.Unlock()
	})

	store.Invalidate()
	store.InvalidateRemote()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{DomainsKey}, hooked)
	assert.EqualValues(t, 2, store.Snapshot().Version)
}
