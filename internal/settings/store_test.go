package settings

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	store := NewFileStore(path)

	_, ok, err := store.Get(KeyServerURL)
	require.NoError(t, err)
	assert.False(t, ok, "missing file reads as empty")

	require.NoError(t, store.Set(KeyServerURL, "http://10.0.0.2:32400"))
	require.NoError(t, store.Set(KeyClientID, "abc"))

	v, ok, err := store.Get(KeyServerURL)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "http://10.0.0.2:32400", v)

	// A second store on the same path sees the persisted values.
	reopened := NewFileStore(path)
	v, ok, err = reopened.Get(KeyClientID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	require.NoError(t, reopened.Delete(KeyClientID))
	_, ok, err = store.Get(KeyClientID)
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err = store.Get(KeyServerURL)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "http://10.0.0.2:32400", v)
}

func TestFileStore_DeleteMissingKeyDoesNotCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	store := NewFileStore(path)

	require.NoError(t, store.Delete(KeyToken))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not enforced on windows")
	}
	path := filepath.Join(t.TempDir(), "settings.yaml")
	store := NewFileStore(path)
	require.NoError(t, store.Set(KeyToken, "secret"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("values: [broken"), 0600))
	store := NewFileStore(path)

	_, _, err := store.Get(KeyClientID)
	assert.Error(t, err)
	assert.Error(t, store.Set(KeyClientID, "x"))
}

func TestFileStore_ConcurrentWrites(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "settings.yaml"))

	keys := []string{KeyClientID, KeyServerURL, KeyToken}
	var wg sync.WaitGroup
	for _, k := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			assert.NoError(t, store.Set(key, key+"-value"))
		}(k)
	}
	wg.Wait()

	for _, k := range keys {
		v, ok, err := store.Get(k)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, k+"-value", v)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	_, ok, err := store.Get(KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(KeyToken, "t"))
	v, ok, err := store.Get(KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "t", v)

	require.NoError(t, store.Delete(KeyToken))
	require.NoError(t, store.Delete(KeyToken))
	_, ok, _ = store.Get(KeyToken)
	assert.False(t, ok)
}
