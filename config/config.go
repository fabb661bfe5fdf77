// Package config holds the settings of a rendering: viewport, HTML
// extensions, image loading, logging and batch parameters.
// Values are read with viper from a config file, environment
// variables (prefix CSSBOX_) and command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of the environment variables overriding settings.
const EnvPrefix = "CSSBOX"

type Config struct {
	Viewport ViewportConfig `mapstructure:"viewport"`
	HTML     HTMLConfig     `mapstructure:"html"`
	Images   ImagesConfig   `mapstructure:"images"`
	Fonts    FontsConfig    `mapstructure:"fonts"`
	Log      LogConfig      `mapstructure:"log"`
	Batch    BatchConfig    `mapstructure:"batch"`
}

type ViewportConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

type HTMLConfig struct {
	// Extensions enables the HTML specific behaviour: <img> as replaced
	// content and the body background propagated to the canvas.
	Extensions bool `mapstructure:"extensions"`
}

type ImagesConfig struct {
	Load       bool `mapstructure:"load"`       // content images
	Background bool `mapstructure:"background"` // background images
}

type FontsConfig struct {
	// Fixed selects fixed metrics fonts, used in tests.
	Fixed bool `mapstructure:"fixed"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type BatchConfig struct {
	Workers int           `mapstructure:"workers"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SetDefaults registers the default values on `v`.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("viewport.width", 1200)
	v.SetDefault("viewport.height", 600)

	v.SetDefault("html.extensions", true)

	v.SetDefault("images.load", true)
	v.SetDefault("images.background", true)

	v.SetDefault("fonts.fixed", false)

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)

	v.SetDefault("batch.workers", 12)
	v.SetDefault("batch.timeout", "30s")
}

// Default returns the configuration with only the defaults applied.
func Default() Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg) // defaults always decode
	return cfg
}

// Load reads the configuration into `v`: defaults, then the optional
// config file (`file`, or cssbox.yaml in the search paths), then the
// environment.
func Load(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/cssbox")
		v.SetConfigName("cssbox")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the ranges of the numeric settings.
func (c Config) Validate() error {
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("invalid viewport size %dx%d", c.Viewport.Width, c.Viewport.Height)
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid number of batch workers: %d", c.Batch.Workers)
	}
	if c.Batch.Timeout <= 0 {
		return fmt.Errorf("invalid batch timeout: %s", c.Batch.Timeout)
	}
	return nil
}
