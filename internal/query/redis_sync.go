package query

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

const (
	redisInvalidationChannel = "domainadmin:cache:invalidations"
	redisOpTimeout           = 5 * time.Second
)

// Invalidatable is a cache entry that can take part in cross-instance
// invalidation. *Store satisfies it.
type Invalidatable interface {
	Key() string
	InvalidateRemote()
	OnInvalidate(hook func(key string))
}

type invalidationMessage struct {
	Key    string `json:"key"`
	Origin string `json:"origin"`
}

// RedisSync publishes local invalidations on a redis channel and applies the
// ones published by other instances.
type RedisSync struct {
	client     *redis.Client
	instanceID string

	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
	targets map[string]Invalidatable
}

// EnableRedisSync wires the given entries to redis and starts the subscriber.
// Close (or cancelling ctx) stops it.
func EnableRedisSync(ctx context.Context, client *redis.Client, instanceID string, entries ...Invalidatable) *RedisSync {
	if ctx == nil {
		ctx = context.Background()
	}
	syncCtx, cancel := context.WithCancel(ctx)

	rs := &RedisSync{
		client:     client,
		instanceID: instanceID,
		ctx:        syncCtx,
		cancel:     cancel,
		targets:    make(map[string]Invalidatable, len(entries)),
	}

	for _, entry := range entries {
		rs.targets[entry.Key()] = entry
		entry.OnInvalidate(func(key string) {
			if err := rs.publish(key); err != nil {
				log.Error("Cache sync: failed to publish invalidation", "key", key, "error", err)
			}
		})
	}

	if client == nil {
		log.Warn("Cache sync disabled: redis client is nil")
		return rs
	}

	go rs.subscribe(syncCtx)
	return rs
}

func (rs *RedisSync) Close() {
	rs.cancel()
}

func (rs *RedisSync) publish(key string) error {
	if rs.client == nil {
		return nil
	}

	payload, err := json.Marshal(invalidationMessage{Key: key, Origin: rs.instanceID})
	if err != nil {
		return err
	}

	rs.mu.RLock()
	ctx := rs.ctx
	rs.mu.RUnlock()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	opCtx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	return rs.client.Publish(opCtx, redisInvalidationChannel, payload).Err()
}

func (rs *RedisSync) subscribe(ctx context.Context) {
	pubsub := rs.client.Subscribe(ctx, redisInvalidationChannel)
	defer pubsub.Close()

	retry := backoff.NewExponentialBackOff()
	retry.MaxElapsedTime = 0

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, redis.ErrClosed) || ctx.Err() != nil {
				return
			}
			wait := retry.NextBackOff()
			log.Error("Cache sync: subscription error", "error", err, "retry_in", wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return
			}
			continue
		}

		retry.Reset()
		rs.handleMessage(msg.Payload)
	}
}

// handleMessage applies one published invalidation. Messages from this
// instance and unknown keys are ignored.
func (rs *RedisSync) handleMessage(payload string) bool {
	var msg invalidationMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		log.Error("Cache sync: invalid payload", "error", err)
		return false
	}
	if msg.Origin == rs.instanceID {
		return false
	}

	rs.mu.RLock()
	target, ok := rs.targets[msg.Key]
	rs.mu.RUnlock()
	if !ok {
		return false
	}

	log.Debug("Cache sync: applying remote invalidation", "key", msg.Key, "origin", msg.Origin)
	target.InvalidateRemote()
	return true
}
