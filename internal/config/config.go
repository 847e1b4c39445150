package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/menta2k/iso-analyzer/pkg/report"
	"github.com/menta2k/iso-analyzer/pkg/types"
	"github.com/menta2k/iso-analyzer/pkg/vision"
)

// Config holds the application configuration
type Config struct {
	Analyzer AnalyzerConfig `json:"analyzer"`
	Vision   VisionConfig   `json:"vision"`
	Output   OutputConfig   `json:"output"`
}

// AnalyzerConfig holds defaults for mode and opacity threshold
type AnalyzerConfig struct {
	DefaultMode    string `json:"default_mode"`
	AlphaThreshold int    `json:"alpha_threshold"`
}

// VisionConfig holds the contact-line detection tuning
type VisionConfig struct {
	SmoothWindow   int     `json:"smooth_window"`
	SearchFraction float64 `json:"search_fraction"`
	MinSearch      int     `json:"min_search"`
	MaxSearch      int     `json:"max_search"`
}

// OutputConfig holds configuration for result rendering
type OutputConfig struct {
	Format string `json:"format"`
	Indent string `json:"indent"`
}

// Default returns a configuration with default values
func Default() *Config {
	d := vision.DefaultDetectionConfig()
	return &Config{
		Analyzer: AnalyzerConfig{
			DefaultMode:    string(types.ModeAuto),
			AlphaThreshold: 0,
		},
		Vision: VisionConfig{
			SmoothWindow:   d.SmoothWindow,
			SearchFraction: d.SearchFraction,
			MinSearch:      d.MinSearch,
			MaxSearch:      d.MaxSearch,
		},
		Output: OutputConfig{
			Format: string(report.FormatText),
			Indent: "  ",
		},
	}
}

// LoadFromFile loads configuration from a JSON file.
// Fields missing from the file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := types.ParseMode(c.Analyzer.DefaultMode); err != nil {
		return fmt.Errorf("analyzer.default_mode: %w", err)
	}

	if err := c.DetectionConfig().Validate(); err != nil {
		return fmt.Errorf("vision.%w", err)
	}

	if _, err := report.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}

	return nil
}

// Mode returns the configured default mode
func (c *Config) Mode() types.Mode {
	m, err := types.ParseMode(c.Analyzer.DefaultMode)
	if err != nil {
		return types.ModeAuto
	}
	return m
}

// DetectionConfig converts the vision section for the contact detector
func (c *Config) DetectionConfig() vision.DetectionConfig {
	return vision.DetectionConfig{
		SmoothWindow:   c.Vision.SmoothWindow,
		SearchFraction: c.Vision.SearchFraction,
		MinSearch:      c.Vision.MinSearch,
		MaxSearch:      c.Vision.MaxSearch,
	}
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "iso-analyzer", "config.json")
}
