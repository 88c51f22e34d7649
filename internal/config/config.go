package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Recording RecordingConfig `mapstructure:"recording"`
	Server    ServerConfig    `mapstructure:"server"`
	Playback  PlaybackConfig  `mapstructure:"playback"`
	Render    RenderConfig    `mapstructure:"render"`
	Output    OutputConfig    `mapstructure:"output"`
	Publish   PublishConfig   `mapstructure:"publish"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type RecordingConfig struct {
	Root      string `mapstructure:"root"`
	ByteOrder string `mapstructure:"byte_order"` // little or big
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type PlaybackConfig struct {
	Rate  float64 `mapstructure:"rate"` // frames per second
	Loop  bool    `mapstructure:"loop"`
	Start int     `mapstructure:"start"`
	End   int     `mapstructure:"end"` // -1 plays to the last frame
}

type RenderConfig struct {
	WidthPx   int  `mapstructure:"width_px"`
	HeightPx  int  `mapstructure:"height_px"`
	ClipDepth bool `mapstructure:"clip_depth"`
}

type OutputConfig struct {
	Dir       string `mapstructure:"dir"`
	RawLog    bool   `mapstructure:"raw_log"`
	RawLogDir string `mapstructure:"raw_log_dir"`
}

type PublishConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // json or text
	Output     string `mapstructure:"output"` // stdout, stderr, or file path
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// Load reads an optional yaml file, applies KINECT_* environment overrides
// and validates the result. An empty path uses defaults and environment only.
func Load(configPath string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("KINECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() AppConfig {
	v := viper.New()
	setDefaults(v)
	var cfg AppConfig
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("recording.root", "")
	v.SetDefault("recording.byte_order", "little")

	v.SetDefault("server.port", 8888)

	// The recorder saves 10 frames per second by default.
	v.SetDefault("playback.rate", 10.0)
	v.SetDefault("playback.loop", false)
	v.SetDefault("playback.start", 0)
	v.SetDefault("playback.end", -1)

	v.SetDefault("render.width_px", 1600)
	v.SetDefault("render.height_px", 1200)
	v.SetDefault("render.clip_depth", false)

	v.SetDefault("output.dir", "output")
	v.SetDefault("output.raw_log", false)
	v.SetDefault("output.raw_log_dir", "rawlog")

	v.SetDefault("publish.enabled", false)
	v.SetDefault("publish.endpoint", "tcp://*:31001")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age", 30)
}

func (c *AppConfig) Validate() error {
	var errs []error

	switch strings.ToLower(strings.TrimSpace(c.Recording.ByteOrder)) {
	case "", "little", "le", "little-endian", "big", "be", "big-endian":
	default:
		errs = append(errs, fmt.Errorf("recording.byte_order must be little (le) or big (be), got %q", c.Recording.ByteOrder))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Playback.Rate <= 0 {
		errs = append(errs, fmt.Errorf("playback.rate must be positive, got %v", c.Playback.Rate))
	}
	if c.Playback.Start < 0 {
		errs = append(errs, fmt.Errorf("playback.start must not be negative, got %d", c.Playback.Start))
	}
	if c.Playback.End >= 0 && c.Playback.End < c.Playback.Start {
		errs = append(errs, fmt.Errorf("playback.end %d is before playback.start %d", c.Playback.End, c.Playback.Start))
	}
	if c.Render.WidthPx <= 0 || c.Render.HeightPx <= 0 {
		errs = append(errs, fmt.Errorf("render size must be positive, got %dx%d", c.Render.WidthPx, c.Render.HeightPx))
	}
	if c.Publish.Enabled && c.Publish.Endpoint == "" {
		errs = append(errs, errors.New("publish.endpoint is required when publishing"))
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format))
	}
	if c.Logging.Output == "" {
		errs = append(errs, errors.New("logging.output is required"))
	}

	return errors.Join(errs...)
}
