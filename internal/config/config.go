package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/localrivet/configurator"

	"github.com/localrivet/rivet/internal/labels"
)

// Global configuration instance
var (
	// Global is the global configuration instance
	Global *Config
	// initOnce ensures initialization happens only once
	initOnce sync.Once
	// initErr is the error of the first InitGlobal call
	initErr error
)

// InitGlobal initializes the global configuration. Only the first call
// loads; later calls return the same configuration and error.
func InitGlobal(configPath string) (*Config, error) {
	initOnce.Do(func() {
		Global, initErr = LoadConfigWithPath(configPath)
	})
	return Global, initErr
}

// Config represents the rivet configuration
type Config struct {
	// Labels controls label vector generation.
	Labels struct {
		// Dimensionality is the size of every label vector.
		Dimensionality int `json:"dimensionality" env:"DIMENSIONALITY" validate:"min:1"`

		// K is the number of nonzero entries per label. Odd values are rounded up.
		K int `json:"k" env:"K" validate:"min:0"`
	} `json:"labels"`

	// Permutation selects the permutation pair used for positional encoding.
	Permutation struct {
		// Path is an optional YAML file holding the pair. When empty the pair
		// is generated from Seed.
		Path string `json:"path" env:"PERMUTATION_PATH"`

		// Seed drives permutation generation.
		Seed int64 `json:"seed" env:"PERMUTATION_SEED"`
	} `json:"permutation"`

	// Store contains storage-related configuration.
	Store struct {
		// Backend is the lexicon backend, "sqlite" or "badger".
		Backend string `json:"backend" env:"STORE_BACKEND" validate:"required"`

		// SQLitePath is the path to the SQLite database file.
		SQLitePath string `json:"sqlite_path" env:"SQLITE_PATH"`

		// BadgerDir is the Badger data directory. Empty means in-memory.
		BadgerDir string `json:"badger_dir" env:"BADGER_DIR"`
	} `json:"store"`

	// Logging contains logging-related configuration.
	Logging struct {
		// Level is the minimum log level to display ("debug", "info", "warn", "error").
		Level string `json:"level" env:"LOG_LEVEL" validate:"required"`

		// Format is the log format to use ("text", "json").
		Format string `json:"format" env:"LOG_FORMAT"`
	} `json:"logging"`

	// Internal state (not saved to config file)
	configPath     string       `json:"-"`
	mutex          sync.RWMutex `json:"-"`
	lastModifiedAt time.Time    `json:"-"`
}

// Default configuration values
const (
	DefaultConfigFilename  = ".rivetconfig"
	DefaultDimensionality  = labels.DefaultDimensionality
	DefaultK               = labels.DefaultK
	DefaultPermutationSeed = 0
	DefaultBackend         = "sqlite"
	DefaultSQLitePath      = ".rivet.db"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	config := &Config{}
	config.Labels.Dimensionality = DefaultDimensionality
	config.Labels.K = DefaultK
	config.Permutation.Seed = DefaultPermutationSeed
	config.Store.Backend = DefaultBackend
	config.Store.SQLitePath = DefaultSQLitePath
	config.Logging.Level = DefaultLogLevel
	config.Logging.Format = DefaultLogFormat
	return config
}

// Validate checks the cross-field constraints the struct tags cannot express.
func (c *Config) Validate() error {
	if c.Labels.Dimensionality <= 0 {
		return fmt.Errorf("labels.dimensionality must be positive, got %d", c.Labels.Dimensionality)
	}
	if c.Labels.K < 0 || c.Labels.K > c.Labels.Dimensionality {
		return fmt.Errorf("labels.k must be in [0, %d], got %d", c.Labels.Dimensionality, c.Labels.K)
	}
	switch c.Store.Backend {
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for the sqlite backend")
		}
	case "badger":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	return nil
}

// LoadConfigWithPath loads the configuration from a specific path
func LoadConfigWithPath(configPath string) (*Config, error) {
	// Configuration is loaded before the service logger exists
	stdLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := NewConfig()

	// Try to find config file if path is default
	if configPath == DefaultConfigFilename {
		foundPath, err := configurator.FindConfigFile(configPath)
		if err == nil {
			configPath = foundPath
			stdLogger.Debug("Found config file at " + foundPath)
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		stdLogger.Info("Config file not found, using default configuration", "path", configPath)
		cfg.configPath = configPath
		cfg.lastModifiedAt = time.Now()
		return cfg, cfg.Validate()
	}

	stdLogger.Info("Loading configuration", "path", configPath)

	config := configurator.New(stdLogger).
		WithProvider(configurator.NewDefaultProvider()).
		WithProvider(configurator.NewFileProvider(configPath)).
		WithProvider(configurator.NewEnvProvider("RIVET")).
		WithValidator(configurator.NewDefaultValidator())

	if err := config.Load(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.configPath = configPath
	cfg.lastModifiedAt = time.Now()

	return cfg, nil
}

// SaveToFile saves the configuration to the specified file
func (c *Config) SaveToFile(path string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := configurator.SaveToFile(c, path, configurator.FormatJSON); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	c.configPath = path
	c.lastModifiedAt = time.Now()

	return nil
}

// Save saves the configuration to the last used file path
func (c *Config) Save() error {
	if c.configPath == "" {
		c.configPath = DefaultConfigFilename
	}
	return c.SaveToFile(c.configPath)
}

// GetConfigPath returns the path of the currently loaded configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// LastModified returns when the configuration was last loaded or saved.
func (c *Config) LastModified() time.Time {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.lastModifiedAt
}
