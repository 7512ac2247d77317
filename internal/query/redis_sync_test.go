package query

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEntry struct {
	key         string
	remoteCalls int
	hooks       []func(string)
}

func (f *fakeEntry) Key() string                 { return f.key }
func (f *fakeEntry) InvalidateRemote()           { f.remoteCalls++ }
func (f *fakeEntry) OnInvalidate(h func(string)) { f.hooks = append(f.hooks, h) }

func payload(t *testing.T, key, origin string) string {
	t.Helper()
	raw, err := json.Marshal(invalidationMessage{Key: key, Origin: origin})
	require.NoError(t, err)
	return string(raw)
}

func TestRedisSync_HandleMessage(t *testing.T) {
	entry := &fakeEntry{key: DomainsKey}
	rs := EnableRedisSync(context.Background(), nil, "instance-a", entry)
	defer rs.Close()

	require.Len(t, entry.hooks, 1)

	assert.False(t, rs.handleMessage(payload(t, DomainsKey, "instance-a")), "own messages must be ignored")
	assert.False(t, rs.handleMessage(payload(t, "other", "instance-b")), "unknown keys must be ignored")
	assert.False(t, rs.handleMessage("not json"))
	assert.Equal(t, 0, entry.remoteCalls)

	assert.True(t, rs.handleMessage(payload(t, DomainsKey, "instance-b")))
	assert.Equal(t, 1, entry.remoteCalls)
}

func TestRedisSync_PublishWithoutClientIsNoop(t *testing.T) {
	entry := &fakeEntry{key: DomainsKey}
	rs := EnableRedisSync(context.Background(), nil, "instance-a", entry)
	defer rs.Close()

	assert.NoError(t, rs.publish(DomainsKey))
}

func TestRedisSync_StoreHookRegistered(t *testing.T) {
	f := &gatedFetcher{}
	store := NewStore[[]string](context.Background(), DomainsKey, f.fetch)
	rs := EnableRedisSync(context.Background(), nil, "instance-a", store)
	defer rs.Close()

	store.Invalidate()
	assert.True(t, rs.handleMessage(payload(t, DomainsKey, "instance-b")))
	assert.EqualValues(t, 2, store.Snapshot().Version)
}
