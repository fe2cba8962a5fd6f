package identity

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"plexlink/internal/settings"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore rejects every operation.
type failingStore struct{}

func (failingStore) Get(string) (string, bool, error) { return "", false, errors.New("disk gone") }
func (failingStore) Set(string, string) error         { return errors.New("disk gone") }
func (failingStore) Delete(string) error              { return errors.New("disk gone") }

// countingStore counts reads on top of a memory store.
type countingStore struct {
	*settings.MemoryStore
	gets atomic.Int32
}

func (c *countingStore) Get(key string) (string, bool, error) {
	c.gets.Add(1)
	return c.MemoryStore.Get(key)
}

func TestGetOrCreate_Stable(t *testing.T) {
	store := settings.NewMemoryStore()
	p := NewProvider(store)

	first := p.GetOrCreate()
	require.NotEmpty(t, first)
	_, err := uuid.Parse(first)
	assert.NoError(t, err, "identity should be a UUID")

	assert.Equal(t, first, p.GetOrCreate())

	persisted, ok, err := store.Get(settings.KeyClientID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, first, persisted)
}

func TestGetOrCreate_SurvivesRestart(t *testing.T) {
	store := settings.NewMemoryStore()
	first := NewProvider(store).GetOrCreate()

	restarted := NewProvider(store)
	assert.Equal(t, first, restarted.GetOrCreate())
}

func TestGetOrCreate_UsesExistingValue(t *testing.T) {
	store := settings.NewMemoryStore()
	require.NoError(t, store.Set(settings.KeyClientID, "existing-id"))

	assert.Equal(t, "existing-id", NewProvider(store).GetOrCreate())
}

func TestGetOrCreate_StorageUnavailable(t *testing.T) {
	p := NewProvider(failingStore{})

	first := p.GetOrCreate()
	second := p.GetOrCreate()
	assert.NotEmpty(t, first)
	assert.NotEmpty(t, second)
	assert.NotEqual(t, first, second, "unpersisted identities are not cached")
}

func TestGetOrCreate_ConcurrentFirstUse(t *testing.T) {
	store := &countingStore{MemoryStore: settings.NewMemoryStore()}
	p := NewProvider(store)

	const callers = 16
	ids := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = p.GetOrCreate()
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.LessOrEqual(t, int(store.gets.Load()), callers)
}
