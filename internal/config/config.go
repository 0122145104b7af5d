package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the full run configuration. Flag parsing fills it in the CLI;
// a YAML profile can override the defaults before flags are applied.
type Config struct {
	Prompt     string `yaml:"prompt"`
	BackendURL string `yaml:"backend_url"`
	OutputDir  string `yaml:"output_dir"`

	Caption  string `yaml:"caption"`
	QRLink   string `yaml:"qr_link"`
	Scenario string `yaml:"scenario"`

	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	FPS         int     `yaml:"fps"`
	MaxDuration float64 `yaml:"max_duration"` // Recording ceiling in seconds

	VideoEncoder string `yaml:"-"` // Probed at startup, never persisted
	Quality      int    `yaml:"quality"`

	ShowStats    bool   `yaml:"stats"`
	BuildVersion string `yaml:"-"`
}

// Default returns the baseline configuration: 1280x720 at 30 fps with the
// 60-second recording ceiling.
func Default() *Config {
	return &Config{
		BackendURL:  "http://localhost:8080",
		OutputDir:   "output",
		Caption:     "AI Generated Video",
		Width:       1280,
		Height:      720,
		FPS:         30,
		MaxDuration: 60,
	}
}

// LoadProfile overlays a YAML profile file onto the defaults.
func LoadProfile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Validate rejects geometry and timing values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid resolution %dx%d", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("invalid frame rate %d", c.FPS)
	}
	if c.MaxDuration <= 0 {
		return fmt.Errorf("invalid max duration %.2f", c.MaxDuration)
	}
	return nil
}
