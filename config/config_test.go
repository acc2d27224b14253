// ffclip/config/config_test.go
package config_test // Use an external test package

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ffclip/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("loads default values correctly", func(t *testing.T) {
		// Ensure no env vars are lingering from other tests
		t.Setenv("FFCLIP_PORT", "")
		t.Setenv("FFCLIP_MAX_CONCURRENCY", "")
		t.Setenv("FFCLIP_AUTH_ENABLE", "")
		t.Setenv("FFCLIP_SEGMENT_PAUSE", "")
		t.Setenv("FFCLIP_MAX_INPUT_SIZE", "")
		t.Setenv("FFCLIP_CORS_ORIGINS", "")

		cfg, err := config.Load("")
		assert.NoError(t, err)
		assert.NotNil(t, cfg)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, 3, cfg.MaxConcurrency)
		assert.Equal(t, false, cfg.AuthEnable)
		assert.Equal(t, "ffmpeg", cfg.FFBin)
		assert.Equal(t, "ffprobe", cfg.FFProbeBin)
		assert.Equal(t, time.Duration(0), cfg.FFTimeout)
		assert.Equal(t, 5*time.Second, cfg.AbortGrace)
		assert.Equal(t, 100*time.Millisecond, cfg.SegmentPause)
		assert.Equal(t, int64(10*1024*1024*1024), cfg.MaxInputSize)
		assert.Equal(t, int64(200*1024*1024), cfg.ThrottleFreeMem)
		assert.Empty(t, cfg.CORSOrigins)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("overrides defaults with environment variables", func(t *testing.T) {
		t.Setenv("FFCLIP_PORT", "9999")
		t.Setenv("FFCLIP_MAX_CONCURRENCY", "10")
		t.Setenv("FFCLIP_AUTH_ENABLE", "true")
		t.Setenv("FFCLIP_AUTH_KEY", "newsecret")
		t.Setenv("FFCLIP_MAX_INPUT_SIZE", "50MB")
		t.Setenv("FFCLIP_SEGMENT_PAUSE", "250ms")
		t.Setenv("FFCLIP_CORS_ORIGINS", "http://a.example,http://b.example")

		cfg, err := config.Load("")
		assert.NoError(t, err)
		assert.NotNil(t, cfg)

		assert.Equal(t, "9999", cfg.Port)
		assert.Equal(t, 10, cfg.MaxConcurrency)
		assert.Equal(t, true, cfg.AuthEnable)
		assert.Equal(t, "newsecret", cfg.AuthKey)
		assert.Equal(t, int64(50*1024*1024), cfg.MaxInputSize)
		assert.Equal(t, 250*time.Millisecond, cfg.SegmentPause)
		assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
	})

	t.Run("clamps concurrency to at least one", func(t *testing.T) {
		t.Setenv("FFCLIP_MAX_CONCURRENCY", "0")

		cfg, err := config.Load("")
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.MaxConcurrency)
	})

	t.Run("reads an explicit config file", func(t *testing.T) {
		t.Setenv("FFCLIP_MAX_CONCURRENCY", "")
		t.Setenv("FFCLIP_PORT", "")

		path := filepath.Join(t.TempDir(), "custom.yaml")
		content := "MAX_CONCURRENCY: 7\nCLEANUP_SCHEDULE: \"@every 1h\"\nABORT_GRACE: 2s\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.MaxConcurrency)
		assert.Equal(t, "@every 1h", cfg.CleanupSchedule)
		assert.Equal(t, 2*time.Second, cfg.AbortGrace)
		assert.Equal(t, "8080", cfg.Port)
	})
}
