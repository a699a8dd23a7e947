// Package config provides configuration loading and management for ellipsoids3d.
// It handles loading configuration from YAML or TOML files and provides default values.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"ellipsoids3d/internal/models"
	"ellipsoids3d/pkg/moments"
)

// Config represents the application configuration
type Config struct {
	// Processing parameters
	Processing struct {
		// NumWorkers is how many objects are fitted concurrently
		NumWorkers int `yaml:"numWorkers" toml:"numWorkers"`

		// ComputeFeret enables the Feret diameter, quadratic in surface voxels
		ComputeFeret bool `yaml:"computeFeret" toml:"computeFeret"`

		// DegenerateEpsilon is the eigenvalue below which an axis is degenerate
		DegenerateEpsilon float64 `yaml:"degenerateEpsilon" toml:"degenerateEpsilon"`
	} `yaml:"processing" toml:"processing"`

	// Calibration used when the input volume carries none
	Calibration struct {
		ResXY float64 `yaml:"resXY" toml:"resXY"`
		ResZ  float64 `yaml:"resZ" toml:"resZ"`
		Unit  string  `yaml:"unit" toml:"unit"`

		// Override forces this calibration even when the input has one
		Override bool `yaml:"override" toml:"override"`
	} `yaml:"calibration" toml:"calibration"`

	// Output parameters
	Output struct {
		// ResultsFile is the CSV file rows are appended to
		ResultsFile string `yaml:"resultsFile" toml:"resultsFile"`

		// RasterDir receives the ellipsoid, vector and contour slice stacks
		RasterDir string `yaml:"rasterDir" toml:"rasterDir"`

		// SaveRasters determines whether the output rasters are written
		SaveRasters bool `yaml:"saveRasters" toml:"saveRasters"`

		// Verbose controls the per-object log
		Verbose bool `yaml:"verbose" toml:"verbose"`
	} `yaml:"output" toml:"output"`

	// Logging parameters
	Logging struct {
		// File is a rotating log file; empty logs to stderr
		File string `yaml:"file" toml:"file"`

		// MaxSize is the size in megabytes before rotation
		MaxSize int `yaml:"maxSize" toml:"maxSize"`

		// MaxAge is the number of days rotated logs are kept
		MaxAge int `yaml:"maxAge" toml:"maxAge"`
	} `yaml:"logging" toml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.NumWorkers = runtime.NumCPU()
	cfg.Processing.ComputeFeret = false
	cfg.Processing.DegenerateEpsilon = moments.DefaultEpsilon

	def := models.DefaultCalibration()
	cfg.Calibration.ResXY = def.XY
	cfg.Calibration.ResZ = def.Z
	cfg.Calibration.Unit = def.Unit

	cfg.Output.ResultsFile = "results.csv"
	cfg.Output.RasterDir = "rasters"
	cfg.Output.SaveRasters = true
	cfg.Output.Verbose = true

	cfg.Logging.MaxSize = 100
	cfg.Logging.MaxAge = 28

	return cfg
}

// CalibrationValue returns the configured calibration
func (c *Config) CalibrationValue() models.Calibration {
	return models.Calibration{XY: c.Calibration.ResXY, Z: c.Calibration.ResZ, Unit: c.Calibration.Unit}
}

// Validate checks values that would make measurement meaningless
func (c *Config) Validate() error {
	if c.Calibration.ResXY <= 0 || c.Calibration.ResZ <= 0 {
		return fmt.Errorf("calibration must be positive, got resXY=%g resZ=%g", c.Calibration.ResXY, c.Calibration.ResZ)
	}
	if c.Processing.NumWorkers < 1 {
		return fmt.Errorf("numWorkers must be at least 1, got %d", c.Processing.NumWorkers)
	}
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// LoadConfig loads configuration from a YAML or TOML file, chosen by extension.
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if isTOML(configPath) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML or TOML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	var data []byte
	if isTOML(configPath) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
