// Package query keeps the last fetched value for a key, refetches it on
// demand and shares in-flight fetches between callers.
package query

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/soheilgoodarzi/domain-manager-assessment/internal/metrics"
)

// DomainsKey is the only key the admin UI caches.
const DomainsKey = "domains"

type Fetcher[T any] func(ctx context.Context) (T, error)

// Snapshot is a consistent view of the store.
type Snapshot[T any] struct {
	Data      T
	HasData   bool
	Loading   bool
	Err       error
	Version   uint64
	UpdatedAt time.Time
}

// Store caches a single value. Mutations never patch it; callers invalidate
// and the store refetches in the background while the stale value stays
// visible.
type Store[T any] struct {
	key   string
	fetch Fetcher[T]
	ctx   context.Context
	group singleflight.Group

	mu          sync.Mutex
	data        T
	hasData     bool
	err         error
	inflight    int
	version     uint64
	updatedAt   time.Time
	subscribers int
	changed     chan struct{}
	hooks       []func(key string)
}

// NewStore creates a store whose background fetches run under ctx.
func NewStore[T any](ctx context.Context, key string, fetch Fetcher[T]) *Store[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Store[T]{
		key:     key,
		fetch:   fetch,
		ctx:     ctx,
		changed: make(chan struct{}),
	}
}

func (s *Store[T]) Key() string {
	return s.key
}

// Subscribe registers interest in the value. The first subscriber of an empty
// store starts a fetch.
func (s *Store[T]) Subscribe() (unsubscribe func()) {
	s.mu.Lock()
	s.subscribers++
	start := s.subscribers == 1 && !s.hasData && s.inflight == 0
	s.mu.Unlock()

	if start {
		s.refetch()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.subscribers--
			s.mu.Unlock()
		})
	}
}

func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Data:      s.data,
		HasData:   s.hasData,
		Loading:   s.inflight > 0,
		Err:       s.err,
		Version:   s.version,
		UpdatedAt: s.updatedAt,
	}
}

// Load returns at once when a value or an error is present. Otherwise it makes
// sure a fetch is running and waits for it or for ctx.
func (s *Store[T]) Load(ctx context.Context) (Snapshot[T], error) {
	for {
		s.mu.Lock()
		if s.hasData || s.err != nil {
			snap := s.snapshotLocked()
			s.mu.Unlock()
			return snap, nil
		}
		start := s.inflight == 0
		changed := s.changed
		s.mu.Unlock()

		if start {
			s.refetch()
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return s.Snapshot(), ctx.Err()
		}
	}
}

// Invalidate marks the value stale and refetches it in the background. Hooks
// registered with OnInvalidate are told about it.
func (s *Store[T]) Invalidate() {
	s.invalidate("local")

	s.mu.Lock()
	hooks := append([]func(string){}, s.hooks...)
	s.mu.Unlock()

	for _, hook := range hooks {
		hook(s.key)
	}
}

// InvalidateRemote applies an invalidation that originated elsewhere. Hooks
// are not called so it is never echoed back.
func (s *Store[T]) InvalidateRemote() {
	s.invalidate("remote")
}

func (s *Store[T]) invalidate(source string) {
	s.mu.Lock()
	s.version++
	version := s.version
	s.mu.Unlock()

	metrics.ObserveInvalidation(s.key, source)
	log.Debug("cache invalidated", "key", s.key, "version", version, "source", source)

	// A new fetch must not join one that started before the invalidation.
	s.group.Forget(s.key)
	s.refetch()
}

// OnInvalidate registers a hook called after every local invalidation.
func (s *Store[T]) OnInvalidate(hook func(key string)) {
	if hook == nil {
		return
	}
	s.mu.Lock()
	s.hooks = append(s.hooks, hook)
	s.mu.Unlock()
}

// Refetch fetches again without marking the value stale, e.g. after a failed
// load.
func (s *Store[T]) Refetch() {
	s.refetch()
}

// refetch starts a background fetch unless one is already shared under the
// key. The result is applied by the fetching call itself, so results land in
// the order they resolve.
func (s *Store[T]) refetch() {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()

	ch := s.group.DoChan(s.key, func() (any, error) {
		value, err := s.fetch(s.ctx)
		s.apply(value, err)
		return value, err
	})

	go func() {
		<-ch
		s.mu.Lock()
		s.inflight--
		close(s.changed)
		s.changed = make(chan struct{})
		s.mu.Unlock()
	}()
}

func (s *Store[T]) apply(value T, err error) {
	metrics.ObserveCacheFetch(s.key, err)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.err = err
		log.Warn("cache fetch failed", "key", s.key, "error", err)
		return
	}

	s.data = value
	s.hasData = true
	s.err = nil
	s.updatedAt = time.Now()
}
