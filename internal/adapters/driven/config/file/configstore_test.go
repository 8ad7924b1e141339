package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...Option) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(filepath.Join(t.TempDir(), "config.toml"), opts...)
	require.NoError(t, err)
	return store
}

func envOf(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestNewConfigStore_DefaultPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	store, err := NewConfigStore("")
	if err != nil {
		t.Skipf("home config unreadable: %v", err)
	}

	assert.Equal(t, filepath.Join(home, ".golf-loader", "config.toml"), store.Path())
}

// TestNewConfigStore_LoadsNestedTables tests that TOML tables become dotted keys
func TestNewConfigStore_LoadsNestedTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[overpass]
url = "http://localhost:12345/api/interpreter"
rate_per_second = 2
timeout_seconds = 30

[store]
backend = "sqlite"

[sync]
concurrency = 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	store, err := NewConfigStore(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:12345/api/interpreter", store.GetString("overpass.url"))
	assert.InDelta(t, 2.0, store.GetFloat("overpass.rate_per_second"), 1e-9)
	assert.Equal(t, 30, store.GetInt("overpass.timeout_seconds"))
	assert.Equal(t, "sqlite", store.GetString("store.backend"))
	assert.Equal(t, 4, store.GetInt("sync.concurrency"))
	assert.Equal(t, []string{
		"overpass.rate_per_second",
		"overpass.timeout_seconds",
		"overpass.url",
		"store.backend",
		"sync.concurrency",
	}, store.Keys())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("s", "hello"))
	require.NoError(t, store.Set("i", 42))
	require.NoError(t, store.Set("f", 0.25))

	tests := []struct {
		key   string
		str   string
		num   int
		float float64
	}{
		{"s", "hello", 0, 0},
		{"i", "", 42, 42},
		{"f", "", 0, 0.25},
		{"missing", "", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.str, store.GetString(tt.key))
			assert.Equal(t, tt.num, store.GetInt(tt.key))
			assert.InDelta(t, tt.float, store.GetFloat(tt.key), 1e-9)
		})
	}
}

func TestConfigStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	store1, err := NewConfigStore(path)
	require.NoError(t, err)
	require.NoError(t, store1.Set("firestore.project", "golf-prod"))
	require.NoError(t, store1.Set("sync.concurrency", 8))
	require.NoError(t, store1.Set("overpass.rate_per_second", 1.5))

	store2, err := NewConfigStore(path)
	require.NoError(t, err)

	assert.Equal(t, "golf-prod", store2.GetString("firestore.project"))
	assert.Equal(t, 8, store2.GetInt("sync.concurrency"))
	assert.InDelta(t, 1.5, store2.GetFloat("overpass.rate_per_second"), 1e-9)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("test", "value"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_MissingAndEmptyFile(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.toml")
	require.NoError(t, os.WriteFile(empty, []byte{}, 0600))

	for _, path := range []string{filepath.Join(dir, "absent.toml"), empty} {
		store, err := NewConfigStore(path)
		require.NoError(t, err)

		val, ok := store.Get("any_key")
		assert.False(t, ok)
		assert.Nil(t, val)
		assert.Empty(t, store.Keys())
	}
}

// TestNewConfigStore_LoadCorruptedFile tests error handling when loading corrupted TOML
func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("this is not valid TOML {{{[["), 0600))

	store, err := NewConfigStore(path)

	assert.Error(t, err)
	assert.Nil(t, store)
}

// TestConfigStore_EnvOverridesFile tests that bound variables win over the file
func TestConfigStore_EnvOverridesFile(t *testing.T) {
	env := envOf(map[string]string{
		"OVERPASS_API_URL":     "http://mirror/api/interpreter",
		"GOOGLE_CLOUD_PROJECT": "",
		"GOLF_LOADER_STORE":    "memory",
	})
	store := newTestStore(t, WithEnv(env, DefaultEnvBindings()))
	require.NoError(t, store.Set("overpass.url", "http://file/api/interpreter"))
	require.NoError(t, store.Set("firestore.project", "from-file"))

	assert.Equal(t, "http://mirror/api/interpreter", store.GetString("overpass.url"))
	assert.Equal(t, "from-file", store.GetString("firestore.project"), "empty variables are ignored")
	assert.Equal(t, "memory", store.GetString("store.backend"))
	assert.Equal(t, []string{"firestore.project", "overpass.url", "store.backend"}, store.Keys())
}

func TestConfigStore_EnvNumbers(t *testing.T) {
	env := envOf(map[string]string{"LOADER_RATE": "0.75", "LOADER_CONCURRENCY": "3", "LOADER_BAD": "x"})
	store := newTestStore(t, WithEnv(env, map[string]string{
		"LOADER_RATE":        "overpass.rate_per_second",
		"LOADER_CONCURRENCY": "sync.concurrency",
		"LOADER_BAD":         "sync.bad",
	}))

	assert.InDelta(t, 0.75, store.GetFloat("overpass.rate_per_second"), 1e-9)
	assert.Equal(t, 3, store.GetInt("sync.concurrency"))
	assert.Equal(t, 0, store.GetInt("sync.bad"))
	assert.Zero(t, store.GetFloat("sync.bad"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newTestStore(t)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("key%d", i)
			_ = store.Set(key, i)
			_ = store.GetInt(key)
			_ = store.GetString(key)
			_ = store.Keys()
		}()
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 10)
}

func TestFindCredentials(t *testing.T) {
	withKey := t.TempDir()
	keyPath := filepath.Join(withKey, "credentials", "serviceAccountKey.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(keyPath), 0700))
	require.NoError(t, os.WriteFile(keyPath, []byte(`{}`), 0600))

	withDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(withDir, "credentials", "serviceAccountKey.json"), 0700))

	assert.Equal(t, keyPath, FindCredentials("", t.TempDir(), withKey))
	assert.Empty(t, FindCredentials(withDir), "directories are not keys")
	assert.Empty(t, FindCredentials())
}

func TestCredentialDirs(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	dirs := CredentialDirs()

	require.NotEmpty(t, dirs)
	assert.Equal(t, wd, dirs[len(dirs)-1])
}
