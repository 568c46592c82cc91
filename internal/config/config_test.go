package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"logLevel": "debug",
		"selector": { "maxResults": 12, "orientationFilter": true },
		"catalog": { "type": "sqlite", "db": { "host": "10.0.0.1" } }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "horizon.cfg.json"), []byte(cfg), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, 12, viper.GetInt("selector.maxResults"))
	assert.Equal(t, true, viper.GetBool("selector.orientationFilter"))
	assert.Equal(t, "sqlite", viper.GetString("catalog.type"))
	assert.Equal(t, "10.0.0.1", viper.GetString("catalog.db.host"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "horizon.cfg.json"), []byte(`{}`), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./horizonlogs", viper.GetString("logsDir"))
	assert.Equal(t, 5, viper.GetInt("selector.maxResults"))
	assert.Equal(t, 100, viper.GetInt("selector.thumbnailSize"))
	assert.Equal(t, 0, viper.GetInt("selector.minSeparationPx"))
	assert.Equal(t, false, viper.GetBool("selector.orientationFilter"))
	assert.Equal(t, 45.0, viper.GetFloat64("selector.orientationToleranceDeg"))
	assert.Equal(t, 800, viper.GetInt("viewport.width"))
	assert.Equal(t, 600, viper.GetInt("viewport.height"))
	assert.Equal(t, 1.0, viper.GetFloat64("viewport.minZoom"))
	assert.Equal(t, 19.0, viper.GetFloat64("viewport.maxZoom"))
	assert.Equal(t, 50, viper.GetInt("viewport.debounceMs"))
	assert.Equal(t, "memory", viper.GetString("catalog.type"))
	assert.Equal(t, 500, viper.GetInt("catalog.queryTimeoutMs"))
	assert.Equal(t, "localhost", viper.GetString("catalog.db.host"))
	assert.Equal(t, "5432", viper.GetString("catalog.db.port"))
	assert.Equal(t, "horizon", viper.GetString("catalog.db.database"))
	assert.Equal(t, "log", viper.GetString("render.type"))
	assert.Equal(t, 256, viper.GetInt("render.thumbCacheSize"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, false, viper.GetBool("otel.enabled"))
	assert.Equal(t, true, viper.GetBool("otel.insecure"))
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "memory", viper.GetString("catalog.type"))
}

func TestLoad_MalformedFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "horizon.cfg.json"), []byte(`{not json`), 0644))

	err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestTypedGetters(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("k.s", "v")
	viper.Set("k.i", 7)
	viper.Set("k.f", 2.5)
	viper.Set("k.b", true)

	assert.Equal(t, "v", GetString("k.s"))
	assert.Equal(t, 7, GetInt("k.i"))
	assert.Equal(t, 2.5, GetFloat("k.f"))
	assert.Equal(t, true, GetBool("k.b"))
}
