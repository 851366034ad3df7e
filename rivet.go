// Package rivet wires random index vector labels, their persistent lexicon and
// the MCP tool server into a single service.
package rivet

import (
	"log/slog"

	"github.com/localrivet/rivet/internal/config"
	"github.com/localrivet/rivet/internal/errortypes"
	"github.com/localrivet/rivet/internal/labels"
	"github.com/localrivet/rivet/internal/lexicon"
	"github.com/localrivet/rivet/internal/permutation"
	"github.com/localrivet/rivet/internal/riv"
	"github.com/localrivet/rivet/internal/server"
	"github.com/localrivet/rivet/internal/telemetry"
)

// Config represents the configuration for the rivet service.
type Config = config.Config

// RIV is a sparse random index vector.
type RIV = riv.RIV

// Service represents the rivet service.
type Service struct {
	config     *Config
	store      lexicon.Store
	lexicon    *lexicon.Lexicon
	perm       permutation.Pair
	metrics    *telemetry.MetricsCollector
	toolServer server.VectorToolServer
	logger     *slog.Logger
}

// ServiceOptions defines the options for creating a new Service.
type ServiceOptions struct {
	Config     *Config      // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string       // Path to config file. Used if Config is nil. If both are empty, DefaultConfig() is used.
	Logger     *slog.Logger // External logger. If nil, slog.Default() is used.
}

// Components are the parts of the service built from a configuration.
type Components struct {
	Store   lexicon.Store
	Lexicon *lexicon.Lexicon
	Perm    permutation.Pair
	Metrics *telemetry.MetricsCollector
}

// NewService creates a new rivet Service with the given options.
func NewService(opts ServiceOptions) (*Service, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *Config
	var err error

	if opts.Config != nil {
		cfg = opts.Config
		logger.Info("Using provided Config object for service initialization")
	} else if opts.ConfigPath != "" {
		logger.Info("Loading configuration for service initialization", "path", opts.ConfigPath)
		cfg, err = config.LoadConfigWithPath(opts.ConfigPath)
		if err != nil {
			logger.Error("Failed to load configuration from path", "path", opts.ConfigPath, "error", err)
			return nil, errortypes.ConfigError(err, "Failed to load configuration from path: "+opts.ConfigPath)
		}
	} else {
		logger.Warn("No Config object or ConfigPath provided, using default configuration")
		cfg = DefaultConfig()
	}

	comps, err := CreateComponents(cfg, logger)
	if err != nil {
		return nil, err
	}

	toolServer := server.NewVectorToolServer(comps.Lexicon, comps.Perm, comps.Metrics, logger)
	if err := toolServer.Initialize(); err != nil {
		comps.Store.Close()
		logger.Error("Failed to initialize MCP vector tool server", "error", err)
		return nil, errortypes.ConfigError(err, "Failed to initialize MCP vector tool server")
	}

	logger.Info("rivet service successfully initialized",
		"dimensionality", cfg.Labels.Dimensionality, "k", cfg.Labels.K, "backend", cfg.Store.Backend)
	return &Service{
		config:     cfg,
		store:      comps.Store,
		lexicon:    comps.Lexicon,
		perm:       comps.Perm,
		metrics:    comps.Metrics,
		toolServer: toolServer,
		logger:     logger,
	}, nil
}

// DefaultConfig returns the default configuration for the rivet service.
func DefaultConfig() *Config {
	return config.NewConfig()
}

// CreateComponents opens the configured store and builds the lexicon and
// permutation pair without creating a tool server.
func CreateComponents(cfg *Config, logger *slog.Logger) (*Components, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := cfg.Validate(); err != nil {
		return nil, errortypes.ConfigError(err, "invalid configuration")
	}

	generator := labels.NewGenerator(cfg.Labels.Dimensionality, cfg.Labels.K)
	if err := generator.Initialize(); err != nil {
		return nil, errortypes.ConfigError(err, "Failed to initialize label generator")
	}

	perm, err := loadPermutation(cfg, logger)
	if err != nil {
		return nil, err
	}

	store, err := lexicon.NewStore(cfg.Store.Backend)
	if err != nil {
		return nil, errortypes.ConfigError(err, "Failed to create store")
	}
	path := cfg.Store.SQLitePath
	if cfg.Store.Backend == lexicon.BackendBadger {
		path = cfg.Store.BadgerDir
	}
	logger.Info("Initializing lexicon store", "backend", cfg.Store.Backend, "path", path)
	if err := store.Initialize(path); err != nil {
		logger.Error("Failed to initialize lexicon store", "path", path, "error", err)
		return nil, errortypes.DatabaseError(err, "Failed to initialize lexicon store").
			WithField("backend", cfg.Store.Backend)
	}

	metrics := telemetry.NewMetricsCollector()
	return &Components{
		Store:   store,
		Lexicon: lexicon.New(store, generator, metrics, logger),
		Perm:    perm,
		Metrics: metrics,
	}, nil
}

// loadPermutation reads the configured permutation file or generates the
// pair from the configured seed.
func loadPermutation(cfg *Config, logger *slog.Logger) (permutation.Pair, error) {
	if cfg.Permutation.Path == "" {
		logger.Debug("Generating permutation", "seed", cfg.Permutation.Seed)
		return permutation.Generate(cfg.Labels.Dimensionality, cfg.Permutation.Seed), nil
	}

	perm, err := permutation.Load(cfg.Permutation.Path)
	if err != nil {
		return permutation.Pair{}, errortypes.ConfigError(err, "Failed to load permutation").
			WithField("path", cfg.Permutation.Path)
	}
	if perm.Dims() != cfg.Labels.Dimensionality {
		return permutation.Pair{}, errortypes.ConfigError(riv.ErrSizeMismatch, "permutation does not match label dimensionality").
			WithField("path", cfg.Permutation.Path).
			WithField("permutation_dims", perm.Dims())
	}
	return perm, nil
}

// Start starts the rivet service. It blocks until the transport closes.
func (s *Service) Start() error {
	s.logger.Info("Starting rivet service")
	return s.toolServer.Start()
}

// Stop stops the rivet service.
func (s *Service) Stop() error {
	s.logger.Info("Stopping rivet service")
	if err := s.toolServer.Stop(); err != nil {
		s.logger.Error("Error stopping tool server", "error", err)
		return err
	}

	s.logger.Info("Closing store")
	if err := s.store.Close(); err != nil {
		s.logger.Error("Failed to close store", "error", err)
		return err
	}

	s.logger.Info("rivet service stopped")
	return nil
}

// Label returns the label vector of word, cached in the lexicon.
func (s *Service) Label(word string) (*RIV, error) {
	return s.lexicon.Label(word)
}

// Permute applies the service permutation to v.
func (s *Service) Permute(v *RIV, times int) (*RIV, error) {
	return v.Permute(s.perm, times)
}

// Lexicon returns the lexicon used by the service.
func (s *Service) Lexicon() *lexicon.Lexicon {
	return s.lexicon
}

// Metrics returns the service metrics collector.
func (s *Service) Metrics() *telemetry.MetricsCollector {
	return s.metrics
}
