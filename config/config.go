package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Script   ScriptConfig   `yaml:"script"`
	TTS      TTSConfig      `yaml:"tts"`
	Visuals  VisualsConfig  `yaml:"visuals"`
	Captions CaptionsConfig `yaml:"captions"`
	Video    VideoConfig    `yaml:"video"`
	Publish  PublishConfig  `yaml:"publish"`
	Limits   LimitsConfig   `yaml:"limits"`
	Paths    PathsConfig    `yaml:"paths"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type ScriptConfig struct {
	Model              string  `yaml:"model"`
	WordsPerMinute     float64 `yaml:"words_per_minute"`
	DurationTolerance  float64 `yaml:"duration_tolerance"`
	MaxSegmentSeconds  float64 `yaml:"max_segment_seconds"`
	MaxTokens          int     `yaml:"max_tokens"`
}

type TTSConfig struct {
	Model string `yaml:"model"`
	Voice string `yaml:"voice"`
}

type VisualsConfig struct {
	Model  string `yaml:"model"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Steps  int    `yaml:"steps"`
}

type CaptionsConfig struct {
	Granularity     string `yaml:"granularity"` // word | line
	MaxCharsPerLine int    `yaml:"max_chars_per_line"`
	Font            string `yaml:"font"`
	FontSize        int    `yaml:"font_size"`
	MarginBottom    int    `yaml:"margin_bottom"`
}

type VideoConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`
}

type PublishConfig struct {
	GatewayName string `yaml:"gateway_name"`
}

type LimitsConfig struct {
	MaxAttempts        int     `yaml:"max_attempts"`
	BackoffBaseSeconds float64 `yaml:"backoff_base_seconds"`
	SegmentConcurrency int     `yaml:"segment_concurrency"`
}

type PathsConfig struct {
	Work string `yaml:"work"`
}

// Load reads config.yaml, fills defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a config with every field at its default, for callers
// that run without a config file (tests, tooling).
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Script.Model == "" {
		c.Script.Model = "llama-3.1-405b"
	}
	if c.Script.WordsPerMinute == 0 {
		c.Script.WordsPerMinute = 130
	}
	if c.Script.DurationTolerance == 0 {
		c.Script.DurationTolerance = 0.15
	}
	if c.Script.MaxSegmentSeconds == 0 {
		c.Script.MaxSegmentSeconds = 20
	}
	if c.Script.MaxTokens == 0 {
		c.Script.MaxTokens = 500
	}
	if c.TTS.Model == "" {
		c.TTS.Model = "tts-kokoro"
	}
	if c.TTS.Voice == "" {
		c.TTS.Voice = "am_adam"
	}
	if c.Visuals.Model == "" {
		c.Visuals.Model = "fluently-xl"
	}
	if c.Visuals.Width == 0 {
		c.Visuals.Width = 512
	}
	if c.Visuals.Height == 0 {
		c.Visuals.Height = 512
	}
	if c.Visuals.Steps == 0 {
		c.Visuals.Steps = 20
	}
	if c.Captions.Granularity == "" {
		c.Captions.Granularity = "line"
	}
	if c.Captions.MaxCharsPerLine == 0 {
		c.Captions.MaxCharsPerLine = 42
	}
	if c.Captions.Font == "" {
		c.Captions.Font = "Arial"
	}
	if c.Captions.FontSize == 0 {
		c.Captions.FontSize = 24
	}
	if c.Captions.MarginBottom == 0 {
		c.Captions.MarginBottom = 60
	}
	if c.Video.Width == 0 {
		c.Video.Width = 1080
	}
	if c.Video.Height == 0 {
		c.Video.Height = 1920
	}
	if c.Video.FPS == 0 {
		c.Video.FPS = 24
	}
	if c.Publish.GatewayName == "" {
		c.Publish.GatewayName = "ipfs"
	}
	if c.Limits.MaxAttempts == 0 {
		c.Limits.MaxAttempts = 3
	}
	if c.Limits.BackoffBaseSeconds == 0 {
		c.Limits.BackoffBaseSeconds = 2
	}
	if c.Limits.SegmentConcurrency == 0 {
		c.Limits.SegmentConcurrency = 4
	}
	if c.Paths.Work == "" {
		c.Paths.Work = os.TempDir()
	}
}

func (c *Config) validate() error {
	if c.Captions.Granularity != "word" && c.Captions.Granularity != "line" {
		return fmt.Errorf("captions.granularity must be \"word\" or \"line\", got %q", c.Captions.Granularity)
	}
	if c.Script.DurationTolerance < 0 || c.Script.DurationTolerance >= 1 {
		return fmt.Errorf("script.duration_tolerance must be in [0, 1), got %v", c.Script.DurationTolerance)
	}
	if c.Limits.SegmentConcurrency < 1 {
		return fmt.Errorf("limits.segment_concurrency must be at least 1")
	}
	return nil
}
