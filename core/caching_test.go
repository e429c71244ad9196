package core_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeworks/forgestat/core"
	"github.com/forgeworks/forgestat/core/window"
	"github.com/forgeworks/forgestat/internal/contract"
	"github.com/forgeworks/forgestat/schema"
)

type memEntry struct {
	data    []byte
	version int
	ts      int64
}

// memStore is a minimal in-memory CacheStore for decorator tests.
type memStore struct {
	entries map[string]memEntry
	sets    int
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]memEntry)}
}

func (m *memStore) Get(key string) ([]byte, int, int64, error) {
	e, ok := m.entries[key]
	if !ok {
		return nil, 0, 0, errors.New("not found")
	}
	return e.data, e.version, e.ts, nil
}

func (m *memStore) Set(key string, value []byte, version int, timestamp int64) error {
	m.sets++
	m.entries[key] = memEntry{data: value, version: version, ts: timestamp}
	return nil
}

func (m *memStore) GetStatus() (schema.CacheStatus, error) {
	return schema.CacheStatus{Backend: "memory", Connected: true, TotalEntries: len(m.entries)}, nil
}

func (m *memStore) Close() error { return nil }

func countingSource(commits []schema.RawCommit) (*int, contract.CommitSource) {
	calls := new(int)
	return calls, contract.CommitSourceFunc(func(context.Context, schema.Repository, window.Window) ([]schema.RawCommit, error) {
		*calls++
		return commits, nil
	})
}

var cacheTestRepo = schema.Repository{Owner: "corp", Name: "api", CloneURL: "https://git.corp.example/corp/api.git"}

func TestCachedSourceRoundTrip(t *testing.T) {
	commits := []schema.RawCommit{
		{Login: "alice", Timestamp: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Additions: 1, Deletions: 2},
	}
	calls, inner := countingSource(commits)
	store := newMemStore()
	source := core.NewCachedSource(inner, store)
	win := window.Window{Since: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)}

	first, err := source.Fetch(context.Background(), cacheTestRepo, win)
	require.NoError(t, err)
	second, err := source.Fetch(context.Background(), cacheTestRepo, win)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, *calls, "second fetch should be served from cache")
	assert.Equal(t, 1, store.sets)
}

func TestCachedSourceWindowIsPartOfKey(t *testing.T) {
	calls, inner := countingSource([]schema.RawCommit{{Login: "alice", Timestamp: time.Now().UTC()}})
	source := core.NewCachedSource(inner, newMemStore())

	winA := window.Window{Since: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)}
	winB := window.Window{Since: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)}

	_, err := source.Fetch(context.Background(), cacheTestRepo, winA)
	require.NoError(t, err)
	_, err = source.Fetch(context.Background(), cacheTestRepo, winB)
	require.NoError(t, err)

	assert.Equal(t, 2, *calls, "a different window must bypass the cached entry")
}

func TestCachedSourceStaleEntryRefetches(t *testing.T) {
	commits := []schema.RawCommit{{Login: "alice", Timestamp: time.Now().UTC()}}
	calls, inner := countingSource(commits)
	store := newMemStore()
	source := core.NewCachedSource(inner, store)

	_, err := source.Fetch(context.Background(), cacheTestRepo, window.Window{})
	require.NoError(t, err)

	// Age the stored entry past the TTL.
	for key, e := range store.entries {
		e.ts = time.Now().Add(-8 * 24 * time.Hour).Unix()
		store.entries[key] = e
	}

	_, err = source.Fetch(context.Background(), cacheTestRepo, window.Window{})
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
}

func TestCachedSourceCorruptEntryRefetches(t *testing.T) {
	calls, inner := countingSource([]schema.RawCommit{{Login: "alice", Timestamp: time.Now().UTC()}})
	store := newMemStore()
	source := core.NewCachedSource(inner, store)

	_, err := source.Fetch(context.Background(), cacheTestRepo, window.Window{})
	require.NoError(t, err)
	require.Equal(t, 1, store.sets)

	for key, e := range store.entries {
		e.data = []byte("{not json")
		store.entries[key] = e
	}

	_, err = source.Fetch(context.Background(), cacheTestRepo, window.Window{})
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
}

type staticSource struct{ commits []schema.RawCommit }

func (s *staticSource) Fetch(context.Context, schema.Repository, window.Window) ([]schema.RawCommit, error) {
	return s.commits, nil
}

func TestNewCachedSourceNilStore(t *testing.T) {
	inner := &staticSource{}
	assert.Same(t, inner, core.NewCachedSource(inner, nil))
}

func TestCachedPayloadSurvivesMarshalling(t *testing.T) {
	// The cache persists the raw list verbatim; make sure a decoded list is
	// usable by the collector without loss.
	commits := []schema.RawCommit{
		{Login: "alice", Email: "alice@corp.example", Timestamp: time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC), Additions: 3, Deletions: 4, Total: 7},
	}
	data, err := json.Marshal(commits)
	require.NoError(t, err)
	var decoded []schema.RawCommit
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, commits, decoded)
}
