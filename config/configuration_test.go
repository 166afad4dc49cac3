package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValueStore(t *testing.T) {
	store := NewValueStore()
	store.Store(map[string]any{"key": "value"})
	assert.Equal(t, "value", store.Load()["key"])

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Load()
		}()
	}
	wg.Wait()

	store.Store(nil)
	assert.NotNil(t, store.Load())
}

func TestPathCache(t *testing.T) {
	cache := &PathCache{}

	parts := cache.GetPathSegments("a:b.c")
	assert.Equal(t, []string{"a", "b", "c"}, parts)

	// 第二次命中缓存
	assert.Equal(t, parts, cache.GetPathSegments("a:b.c"))
}

func TestBuild_LayeredSources(t *testing.T) {
	yamlPath := writeFile(t, "app.yaml", "db:\n  host: yaml-host\n  port: 3306\nname: app\n")
	jsonPath := writeFile(t, "app.json", `{"db": {"port": 3309}, "debug": true}`)

	cfg, err := NewConfigurationBuilder().
		AddYamlFile(yamlPath).
		AddJsonFile(jsonPath).
		AddJsonFile(filepath.Join(t.TempDir(), "missing.json"), true).
		AddInMemory(map[string]any{"name": "override"}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "yaml-host", cfg.Get("db:host"))
	assert.Equal(t, "yaml-host", cfg.Get("db.host"))
	port, err := cfg.GetInt("db:port")
	require.NoError(t, err)
	assert.Equal(t, 3309, port)

	debug, err := cfg.GetBool("debug")
	require.NoError(t, err)
	assert.True(t, debug)

	assert.Equal(t, "override", cfg.Get("name"))
	assert.Equal(t, "fallback", cfg.GetWithDefault("nope", "fallback"))

	_, err = cfg.GetInt("nope")
	assert.Error(t, err)
}

func TestBuild_MissingRequiredFile(t *testing.T) {
	_, err := NewConfigurationBuilder().
		AddYamlFile(filepath.Join(t.TempDir(), "missing.yaml")).
		Build()
	assert.Error(t, err)
}

func TestInMemorySource_DoesNotAliasInput(t *testing.T) {
	input := map[string]any{"db": map[string]any{"host": "a"}}

	cfg, err := NewConfigurationBuilder().
		AddInMemory(input).
		AddInMemory(map[string]any{"db": map[string]any{"host": "b"}}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "b", cfg.Get("db:host"))
	assert.Equal(t, "a", input["db"].(map[string]any)["host"])

	all := cfg.GetAll()
	all["db"].(map[string]any)["host"] = "mutated"
	assert.Equal(t, "b", cfg.Get("db:host"))
}

func TestDotEnvSource(t *testing.T) {
	path := writeFile(t, ".env", "APP_DB_HOST=localhost\nAPP_DB_PORT=3309\nOTHER=x\n")

	cfg, err := NewConfigurationBuilder().
		Add(&DotEnvSource{Paths: []string{path}, Prefix: "APP_"}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Get("db:host"))
	v, ok := cfg.Lookup("db:port")
	require.True(t, ok)
	assert.Equal(t, 3309, v)
	_, ok = cfg.Lookup("other")
	assert.False(t, ok)
}

func TestDotEnvSource_Optional(t *testing.T) {
	missing := filepath.Join(t.TempDir(), ".env")

	_, err := NewConfigurationBuilder().AddDotEnvFile(missing, true).Build()
	assert.NoError(t, err)

	_, err = NewConfigurationBuilder().AddDotEnvFile(missing).Build()
	assert.Error(t, err)
}

func TestEnvironmentVariableSource(t *testing.T) {
	t.Setenv("AUTOWIRE_TEST_DB_HOST", "env-host")

	cfg, err := NewConfigurationBuilder().AddEnvironmentVariables("AUTOWIRE_TEST_").Build()
	require.NoError(t, err)

	assert.Equal(t, "env-host", cfg.Get("db:host"))
}

func TestGetSectionAndBind(t *testing.T) {
	cfg, err := NewConfigurationBuilder().AddInMemory(map[string]any{
		"logger": map[string]any{"level": "debug", "async": true},
	}).Build()
	require.NoError(t, err)

	section := cfg.GetSection("logger")
	assert.Equal(t, "debug", section.Get("level"))
	assert.Empty(t, cfg.GetSection("missing").GetAll())

	type loggerOptions struct {
		Level string `json:"level"`
		Async bool   `json:"async"`
	}
	opts, err := Load[loggerOptions](cfg, "logger")
	require.NoError(t, err)
	assert.Equal(t, loggerOptions{Level: "debug", Async: true}, opts)

	_, err = Load[loggerOptions](cfg, "missing")
	assert.Error(t, err)
}

func TestWalk(t *testing.T) {
	cfg, err := NewConfigurationBuilder().AddInMemory(map[string]any{
		"b":  2,
		"a":  map[string]any{"y": "2", "x": "1"},
		"db": map[string]any{"host": "localhost"},
	}).Build()
	require.NoError(t, err)

	var paths []string
	require.NoError(t, cfg.Walk(func(path string, value any) error {
		paths = append(paths, path)
		return nil
	}))
	assert.Equal(t, []string{"a:x", "a:y", "b", "db:host"}, paths)

	err = cfg.Walk(func(string, any) error { return assert.AnError })
	assert.ErrorIs(t, err, assert.AnError)
}

func TestDecodeEtcdPairs(t *testing.T) {
	got := decodeEtcdPairs(map[string]string{
		"/app/db/host":  "localhost",
		"/app/db/port":  "3309",
		"/app/features": `{"cache": true}`,
		"/app/tags":     "- a\n- b\n",
		"/app/":         "ignored",
	}, "/app")

	cfg := newConfiguration(got)
	assert.Equal(t, "localhost", cfg.Get("db:host"))
	port, err := cfg.GetInt("db:port")
	require.NoError(t, err)
	assert.Equal(t, 3309, port)
	enabled, err := cfg.GetBool("features:cache")
	require.NoError(t, err)
	assert.True(t, enabled)
	tags, ok := cfg.Lookup("tags")
	require.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, tags)
}

func BenchmarkConfigGet(b *testing.B) {
	config, _ := NewConfigurationBuilder().AddInMemory(map[string]any{
		"server": map[string]any{
			"host": "localhost",
			"port": 8080,
		},
	}).Build()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		config.Get("server:host")
	}
}
