package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NilData(t *testing.T) {
	cfg := New(nil)
	assert.False(t, cfg.Has("anything"))
	assert.Equal(t, "fallback", cfg.String("anything", "fallback"))
}

func TestString(t *testing.T) {
	cfg := New(map[string]any{
		"name":  "plant-1",
		"count": 3,
	})
	assert.Equal(t, "plant-1", cfg.String("name", "x"))
	assert.Equal(t, "x", cfg.String("missing", "x"))
	assert.Equal(t, "x", cfg.String("count", "x"), "wrong type falls back")
}

func TestBool(t *testing.T) {
	cfg := New(map[string]any{
		"enabled": true,
		"name":    "yes",
	})
	assert.True(t, cfg.Bool("enabled", false))
	assert.True(t, cfg.Bool("missing", true))
	assert.False(t, cfg.Bool("name", false), "strings are not coerced")
}

func TestInt(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
	}{
		{"int", 42, 42},
		{"int64", int64(42), 42},
		{"float whole", 42.0, 42},
		{"float fractional", 42.5, -1},
		{"string", "42", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New(map[string]any{"key": tt.value})
			assert.Equal(t, tt.want, cfg.Int("key", -1))
		})
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  time.Duration
	}{
		{"string", "1m30s", 90 * time.Second},
		{"bad string", "soon", time.Minute},
		{"int seconds", 5, 5 * time.Second},
		{"float seconds", 1.5, 1500 * time.Millisecond},
		{"duration", 2 * time.Second, 2 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New(map[string]any{"key": tt.value})
			assert.Equal(t, tt.want, cfg.Duration("key", time.Minute))
		})
	}
}

func TestFromYAML(t *testing.T) {
	cfg, err := FromYAML([]byte("queue_max_length: 100\nqueue_discard_oldest: false\n"))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Int("queue_max_length", 0))
	assert.False(t, cfg.Bool("queue_discard_oldest", true))

	_, err = FromYAML([]byte(":\n:bad"))
	assert.Error(t, err)
}

func TestFromJSON(t *testing.T) {
	cfg, err := FromJSON([]byte(`{"traversal_max_nodes": 4096}`))
	require.NoError(t, err)
	assert.Equal(t, 4096, cfg.Int("traversal_max_nodes", 0))

	_, err = FromJSON([]byte("{"))
	assert.Error(t, err)
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "server.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("queue_max_length: 8\n"), 0o644))
	cfg, err := FromFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Int("queue_max_length", 0))

	jsonPath := filepath.Join(dir, "server.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"queue_max_length": 9}`), 0o644))
	cfg, err = FromFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Int("queue_max_length", 0))

	_, err = FromFile(filepath.Join(dir, "server.toml"))
	assert.Error(t, err)

	_, err = FromFile(filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)
}
