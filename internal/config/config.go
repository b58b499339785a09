// Package config provides configuration management for the laureate analysis
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by LoadFromEnv.
const EnvPrefix = "LAUREATE_"

// Config represents the configuration of one analysis run
type Config struct {
	// Input Configuration
	DataPath  string `json:"data_path" yaml:"data_path"` // Record file; .parquet and .jsonl are read by extension
	Delimiter string `json:"delimiter" yaml:"delimiter"` // CSV field delimiter, a single character

	// Output Configuration
	OutputDir     string `json:"output_dir" yaml:"output_dir"`         // Directory receiving chart images
	WriteManifest bool   `json:"write_manifest" yaml:"write_manifest"` // Write chart projections to manifest.json
	SnapshotPath  string `json:"snapshot_path" yaml:"snapshot_path"`   // Optional snapshot of the derived table ("" = none)

	// Chart Configuration
	FigureWidth      float64 `json:"figure_width" yaml:"figure_width"`           // Figure width in inches
	FigureHeight     float64 `json:"figure_height" yaml:"figure_height"`         // Figure height in inches
	DPI              int     `json:"dpi" yaml:"dpi"`                             // Pixels per inch
	LowessFrac       float64 `json:"lowess_frac" yaml:"lowess_frac"`             // LOWESS span (0-1]
	LowessIterations int     `json:"lowess_iterations" yaml:"lowess_iterations"` // LOWESS robustifying iterations
	Workers          int     `json:"workers" yaml:"workers"`                     // Chart worker goroutines (1 = inline, 0 = NumCPU)

	// Report Configuration
	HeadRows     int `json:"head_rows" yaml:"head_rows"`         // Rows shown by the first table
	TopCountries int `json:"top_countries" yaml:"top_countries"` // Birth countries listed

	// Logging Configuration
	LogLevel string `json:"log_level" yaml:"log_level"` // debug, info, warn or error
}

// Default configuration values
const (
	DefaultDataPath         = "datasets/nobel.csv"
	DefaultOutputDir        = "figures"
	DefaultDelimiter        = ","
	DefaultFigureWidth      = 11.0
	DefaultFigureHeight     = 7.0
	DefaultDPI              = 100
	DefaultLowessFrac       = 2.0 / 3.0
	DefaultLowessIterations = 3
	DefaultWorkers          = 1
	DefaultHeadRows         = 6
	DefaultTopCountries     = 10
	DefaultLogLevel         = "info"
)

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		DataPath:  DefaultDataPath,
		Delimiter: DefaultDelimiter,

		OutputDir:     DefaultOutputDir,
		WriteManifest: true,

		FigureWidth:      DefaultFigureWidth,
		FigureHeight:     DefaultFigureHeight,
		DPI:              DefaultDPI,
		LowessFrac:       DefaultLowessFrac,
		LowessIterations: DefaultLowessIterations,
		Workers:          DefaultWorkers,

		HeadRows:     DefaultHeadRows,
		TopCountries: DefaultTopCountries,

		LogLevel: DefaultLogLevel,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.DataPath == "" {
		return fmt.Errorf("DataPath must not be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OutputDir must not be empty")
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return fmt.Errorf("Delimiter must be a single character, got %q", c.Delimiter)
	}
	if c.FigureWidth <= 0 || c.FigureHeight <= 0 {
		return fmt.Errorf("figure size must be positive, got %gx%g", c.FigureWidth, c.FigureHeight)
	}
	if c.DPI <= 0 {
		return fmt.Errorf("DPI must be positive, got %d", c.DPI)
	}
	if c.LowessFrac <= 0 || c.LowessFrac > 1 {
		return fmt.Errorf("LowessFrac must be in (0, 1], got %g", c.LowessFrac)
	}
	if c.LowessIterations < 0 {
		return fmt.Errorf("LowessIterations must be non-negative, got %d", c.LowessIterations)
	}
	if c.Workers < 0 {
		return fmt.Errorf("Workers must be non-negative, got %d", c.Workers)
	}
	if c.HeadRows < 0 {
		return fmt.Errorf("HeadRows must be non-negative, got %d", c.HeadRows)
	}
	if c.TopCountries < 0 {
		return fmt.Errorf("TopCountries must be non-negative, got %d", c.TopCountries)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LogLevel must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	return nil
}

// WithDefaults returns a new configuration with default values filled in for zero values
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	if c.DataPath == "" {
		c.DataPath = defaults.DataPath
	}
	if c.Delimiter == "" {
		c.Delimiter = defaults.Delimiter
	}
	if c.OutputDir == "" {
		c.OutputDir = defaults.OutputDir
	}
	if c.FigureWidth == 0 {
		c.FigureWidth = defaults.FigureWidth
	}
	if c.FigureHeight == 0 {
		c.FigureHeight = defaults.FigureHeight
	}
	if c.DPI == 0 {
		c.DPI = defaults.DPI
	}
	if c.LowessFrac == 0 {
		c.LowessFrac = defaults.LowessFrac
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}

	// Note: counts and booleans are not defaulted here; zero is a valid setting.
	// Loaders start from NewConfig so absent keys keep their defaults.

	return c
}

// Width returns the figure width in pixels.
func (c *Config) Width() int {
	return int(c.FigureWidth * float64(c.DPI))
}

// Height returns the figure height in pixels.
func (c *Config) Height() int {
	return int(c.FigureHeight * float64(c.DPI))
}

// DelimiterRune returns the CSV delimiter as a rune.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// LoadFromJSON loads configuration from JSON data
func LoadFromJSON(data []byte) (Config, error) {
	config := NewConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromFile loads configuration from a JSON or YAML file. Keys absent from the
// file keep their default values.
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	config := NewConfig()
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".json":
		err = json.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", filename, err)
	}

	return config.WithDefaults(), nil
}

// LoadFromEnv loads configuration from environment variables over the defaults
func LoadFromEnv() Config {
	return ApplyEnv(NewConfig())
}

// ApplyEnv overrides config with the LAUREATE_* environment variables that are set.
// Values that do not parse are ignored.
func ApplyEnv(config Config) Config {
	setString := func(key string, dst *string) {
		if val := os.Getenv(EnvPrefix + key); val != "" {
			*dst = val
		}
	}
	setInt := func(key string, dst *int) {
		if val := os.Getenv(EnvPrefix + key); val != "" {
			if parsed, err := strconv.Atoi(val); err == nil {
				*dst = parsed
			}
		}
	}
	setFloat := func(key string, dst *float64) {
		if val := os.Getenv(EnvPrefix + key); val != "" {
			if parsed, err := strconv.ParseFloat(val, 64); err == nil {
				*dst = parsed
			}
		}
	}

	setString("DATA_PATH", &config.DataPath)
	setString("DELIMITER", &config.Delimiter)
	setString("OUTPUT_DIR", &config.OutputDir)
	setString("SNAPSHOT_PATH", &config.SnapshotPath)
	setString("LOG_LEVEL", &config.LogLevel)

	setFloat("FIGURE_WIDTH", &config.FigureWidth)
	setFloat("FIGURE_HEIGHT", &config.FigureHeight)
	setFloat("LOWESS_FRAC", &config.LowessFrac)

	setInt("DPI", &config.DPI)
	setInt("LOWESS_ITERATIONS", &config.LowessIterations)
	setInt("WORKERS", &config.Workers)
	setInt("HEAD_ROWS", &config.HeadRows)
	setInt("TOP_COUNTRIES", &config.TopCountries)

	if val := os.Getenv(EnvPrefix + "WRITE_MANIFEST"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.WriteManifest = parsed
		}
	}

	return config
}
