package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Path(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDirFromEnv(t *testing.T) {
	home := filepath.Join(t.TempDir(), "sb")
	t.Setenv(ConfigDirEnv, home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "config.toml"), store.Path())
}

func TestDefaultConfigDir_Home(t *testing.T) {
	t.Setenv(ConfigDirEnv, "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	dir, err := DefaultConfigDir()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".studybuddy"), dir)
}

func TestNewConfigStoreAt_CreatesParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "custom.toml")

	store, err := NewConfigStoreAt(path)
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "gemini"))
	require.NoError(t, store.Set("rag.chunk_size", 800))
	require.NoError(t, store.Set("server.debug", true))
	require.NoError(t, store.Set("server.cors_origins", []string{"http://a", "http://b"}))

	assert.Equal(t, "gemini", store.GetString("llm.provider"))
	assert.Equal(t, 800, store.GetInt("rag.chunk_size"))
	assert.True(t, store.GetBool("server.debug"))
	assert.Equal(t, []string{"http://a", "http://b"}, store.GetStringSlice("server.cors_origins"))

	// Wrong types fall back to zero values.
	assert.Equal(t, "", store.GetString("rag.chunk_size"))
	assert.Equal(t, 0, store.GetInt("llm.provider"))
	assert.False(t, store.GetBool("llm.provider"))
	assert.Nil(t, store.GetStringSlice("llm.provider"))
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	val, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_PersistsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("rag.chunk_size", 1200))
	require.NoError(t, store.Set("rag.top_k", 7))
	require.NoError(t, store.Set("embedding.provider", "openai"))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[rag]")
	assert.Contains(t, string(raw), "[embedding]")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 1200, reloaded.GetInt("rag.chunk_size"))
	assert.Equal(t, 7, reloaded.GetInt("rag.top_k"))
	assert.Equal(t, "openai", reloaded.GetString("embedding.provider"))
}

func TestConfigStore_ReadsHandWrittenTOML(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte(`
[llm]
provider = "anthropic"
requests_per_minute = 30

[index]
backend = "memory"
`)
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), content, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", store.GetString("llm.provider"))
	assert.Equal(t, 30, store.GetInt("llm.requests_per_minute"))
	assert.Equal(t, "memory", store.GetString("index.backend"))
	assert.Equal(t, []string{"index.backend", "llm.provider", "llm.requests_per_minute"}, store.Keys())
}

func TestConfigStore_Delete(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.api_key", "secret"))
	require.NoError(t, store.Delete("llm.api_key"))
	require.NoError(t, store.Delete("never.set"))

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	_, ok := reloaded.Get("llm.api_key")
	assert.False(t, ok)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_EmptyOrCommentOnlyFile(t *testing.T) {
	for _, content := range []string{"", "# nothing here\n\n"} {
		tmpDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

		store, err := NewConfigStore(tmpDir)
		require.NoError(t, err)
		assert.Empty(t, store.Keys())
	}
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not toml {{{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("rag.top_k", 5))

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("rag.top_k", 6))
}

func TestConfigStore_SetUnmarshallableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Set("channel", make(chan int)))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "rag.key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.Keys()
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 10)
}

func TestNestMap_LeafWinsOverTable(t *testing.T) {
	nested := nestMap(map[string]any{
		"a":   1,
		"a.b": 2,
		"c.d": 3,
	})

	assert.Equal(t, 1, nested["a"])
	assert.Equal(t, map[string]any{"d": 3}, nested["c"])
}
