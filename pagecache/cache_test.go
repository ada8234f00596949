package pagecache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu       sync.Mutex
	data     map[string]int
	loads    atomic.Int32
	inflight atomic.Int32
	maxInFlight atomic.Int32
}

func (m *memStore) Load(_ context.Context, key string) (int, bool, error) {
	if n := m.inflight.Add(1); n > m.maxInFlight.Load() {
		m.maxInFlight.Store(n)
	}
	defer m.inflight.Add(-1)
	m.loads.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Persist(_ context.Context, key string, v int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string]int)
	}
	m.data[key] = v
	return nil
}

func TestViewLoadsMissOnce(t *testing.T) {
	store := &memStore{data: map[string]int{"a": 7}}
	c := New[string, int](store, store, 10)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := c.View(context.Background(), "a", func(v int, exists bool) error {
				require.True(t, exists)
				require.Equal(t, 7, v)
				return nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, store.loads.Load())
}

func TestUpdateThenFlushPersists(t *testing.T) {
	store := &memStore{}
	c := New[string, int](store, store, 10)

	err := c.Update(context.Background(), "k", func(v int, exists bool) (int, error) {
		require.False(t, exists)
		return v + 5, nil
	})
	require.NoError(t, err)

	store.mu.Lock()
	_, persisted := store.data["k"]
	store.mu.Unlock()
	require.False(t, persisted, "dirty entries must not be persisted before Flush")

	require.NoError(t, c.Flush(context.Background()))

	store.mu.Lock()
	require.Equal(t, 5, store.data["k"])
	store.mu.Unlock()
}

func TestEvictionSparesDirtyEntries(t *testing.T) {
	store := &memStore{data: map[string]int{"a": 1, "b": 2, "c": 3}}
	c := New[string, int](store, store, 1)

	require.NoError(t, c.Update(context.Background(), "a", func(v int, exists bool) (int, error) { return v, nil }))
	require.NoError(t, c.View(context.Background(), "b", func(v int, exists bool) error { return nil }))
	require.NoError(t, c.View(context.Background(), "c", func(v int, exists bool) error { return nil }))

	// "a" stays dirty-pinned through the eviction pressure from b/c.
	require.NoError(t, c.View(context.Background(), "a", func(v int, exists bool) error {
		require.Equal(t, 1, v)
		return nil
	}))
}

func TestUpdateOrCreateSkipsLoader(t *testing.T) {
	store := &memStore{}
	c := New[string, int](store, store, 10)

	require.NoError(t, c.UpdateOrCreate("new", func(v int, exists bool) (int, error) {
		require.False(t, exists)
		return 42, nil
	}))
	require.EqualValues(t, 0, store.loads.Load())

	require.NoError(t, c.View(context.Background(), "new", func(v int, exists bool) error {
		require.True(t, exists)
		require.Equal(t, 42, v)
		return nil
	}))
}
