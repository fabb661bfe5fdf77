package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	exp := Config{
		Viewport: ViewportConfig{Width: 1200, Height: 600},
		HTML:     HTMLConfig{Extensions: true},
		Images:   ImagesConfig{Load: true, Background: true},
		Log:      LogConfig{Level: "warn", MaxSizeMB: 10, MaxBackups: 3},
		Batch:    BatchConfig{Workers: 12, Timeout: 30 * time.Second},
	}
	if diff := cmp.Diff(exp, cfg); diff != "" {
		t.Fatalf("unexpected default config (-want +got):\n%s", diff)
	}
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cssbox.yaml")
	content := "viewport:\n  width: 800\nbatch:\n  timeout: 5s\nfonts:\n  fixed: true\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	t.Setenv("CSSBOX_VIEWPORT_HEIGHT", "300")

	cfg, err := Load(viper.New(), file)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Viewport.Width)
	assert.Equal(t, 300, cfg.Viewport.Height)
	assert.Equal(t, 5*time.Second, cfg.Batch.Timeout)
	assert.True(t, cfg.Fonts.Fixed)
	assert.True(t, cfg.HTML.Extensions)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Viewport.Width = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Batch.Workers = -1
	assert.Error(t, cfg.Validate())
}
