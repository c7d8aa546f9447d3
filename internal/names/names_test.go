package names

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingKV fails every call with err.
type failingKV struct{ err error }

func (f failingKV) Get(string) (string, bool, error) { return "", false, f.err }
func (f failingKV) Set(string, string) error         { return f.err }

func TestKey(t *testing.T) {
	assert.Equal(t, "bike_name_trainer_07", Key("trainer_07"))
}

func TestNamesUsesNamespacedKey(t *testing.T) {
	kv := NewMemoryKV()
	n := New(kv)

	require.NoError(t, n.Set("trainer_07", "Garage"))

	raw, ok, err := kv.Get("bike_name_trainer_07")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Garage", raw)

	name, ok, err := n.Get("trainer_07")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Garage", name)

	_, ok, err = n.Get("other")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNamesSetEmptyDevice(t *testing.T) {
	n := New(NewMemoryKV())
	assert.ErrorIs(t, n.Set("", "x"), ErrEmptyDevice)
}

func TestNamesWrapsStoreErrors(t *testing.T) {
	boom := errors.New("disk full")
	n := New(failingKV{err: boom})

	_, _, err := n.Get("a")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, n.Set("a", "b"), boom)
}

func TestMemoryKVZeroValue(t *testing.T) {
	var kv MemoryKV
	require.NoError(t, kv.Set("k", "v"))
	v, ok, err := kv.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestSQLiteKVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "names.db")
	kv, err := OpenSQLite(path)
	require.NoError(t, err)

	_, ok, err := kv.Get(Key("trainer_07"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(Key("trainer_07"), "First"))
	require.NoError(t, kv.Set(Key("trainer_07"), "Second"))

	v, ok, err := kv.Get(Key("trainer_07"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Second", v)
	require.NoError(t, kv.Close())

	// Reopen: names survive a restart.
	kv, err = OpenSQLite(path)
	require.NoError(t, err)
	defer kv.Close()
	v, ok, err = kv.Get(Key("trainer_07"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Second", v)
}

func TestSQLiteKVMemory(t *testing.T) {
	kv, err := OpenSQLite(MemoryPath)
	require.NoError(t, err)
	defer kv.Close()

	require.NoError(t, kv.Set("k", "v"))
	v, ok, err := kv.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}
