// Package config provides configuration loading and management for the
// hippocampal volume pipeline. It handles loading configuration from YAML
// files, provides default values, and applies environment overrides for the
// archive destination.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Archive destination parameters
	Archive struct {
		// Host is the archive (storescp) host to submit reports to
		Host string `yaml:"host"`

		// Port is the archive DICOM port
		Port int `yaml:"port"`

		// AETitle is the called application entity title
		AETitle string `yaml:"aeTitle"`

		// GraceSeconds is how long to wait after submission before the
		// source study directory is cleaned up. The wait is a fixed
		// budget, not an acknowledgment from the archive.
		GraceSeconds float64 `yaml:"graceSeconds"`
	} `yaml:"archive"`

	// Inference parameters
	Inference struct {
		// PatchSize is the in-plane patch grid the model operates on
		PatchSize int `yaml:"patchSize"`

		// AnteriorThreshold and PosteriorThreshold are the intensity
		// fractions used by the built-in threshold segmenter
		AnteriorThreshold  float64 `yaml:"anteriorThreshold"`
		PosteriorThreshold float64 `yaml:"posteriorThreshold"`
	} `yaml:"inference"`

	// Output parameters
	Output struct {
		// ReportPath is where the Secondary Capture report is written
		ReportPath string `yaml:"reportPath"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Fixed destination parameters of the clinical archive
	cfg.Archive.Host = "localhost"
	cfg.Archive.Port = 4242
	cfg.Archive.AETitle = "HIPPOAI"
	cfg.Archive.GraceSeconds = 2.0

	// Set default inference parameters
	cfg.Inference.PatchSize = 64
	cfg.Inference.AnteriorThreshold = 0.6
	cfg.Inference.PosteriorThreshold = 0.85

	// Set default output parameters
	cfg.Output.ReportPath = filepath.Join("out", "report.dcm")

	return cfg
}

// LoadConfig loads configuration from a YAML file and applies environment
// overrides. If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides lets the archive destination be changed per deployment
// without editing the config file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("HIPPO_ARCHIVE_HOST"); v != "" {
		c.Archive.Host = v
	}
	if v := os.Getenv("HIPPO_ARCHIVE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Archive.Port = port
		}
	}
	if v := os.Getenv("HIPPO_ARCHIVE_AETITLE"); v != "" {
		c.Archive.AETitle = v
	}
	if v := os.Getenv("HIPPO_REPORT_PATH"); v != "" {
		c.Output.ReportPath = v
	}
}
