package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEngine(t *testing.T) {
	cfg := DefaultEngine()
	assert.Equal(t, 2097152, cfg.PerfLimitSizeTotal)
	assert.Equal(t, 4096, cfg.MaxCacheSideLimit)
	assert.Equal(t, 256, cfg.MinCacheSideLimit)
	assert.Equal(t, 4, cfg.NumFractionDigits)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEngineFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte("max_cache_side_limit = 2048\ndevice_pixel_ratio = 2.0\n"), 0o644))
	t.Setenv("ENGINE_NUM_FRACTION_DIGITS", "2")

	cfg, err := LoadEngine(path)
	require.NoError(t, err)
	assert.Equal(t, 2048, cfg.MaxCacheSideLimit)
	assert.Equal(t, 256, cfg.MinCacheSideLimit, "omitted keys keep defaults")
	assert.Equal(t, 2, cfg.NumFractionDigits)
	assert.Equal(t, 2.0, cfg.RetinaScaling())
}

func TestDecodeEngineRejectsUnknownKeys(t *testing.T) {
	err := DecodeEngine([]byte("bogus = 1\n"), DefaultEngine())
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultEngine()
	cfg.MaxCacheSideLimit = 10
	assert.Error(t, cfg.Validate())
}
