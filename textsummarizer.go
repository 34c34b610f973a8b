// Package textsummarizer is an extractive summarization service. It ranks the
// sentences of a text with TextRank and returns the most central ones, and it
// can be embedded as a library or served over MCP stdio or a JSON HTTP API.
package textsummarizer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/localrivet/textsummarizer/internal/config"
	"github.com/localrivet/textsummarizer/internal/errortypes"
	"github.com/localrivet/textsummarizer/internal/generator"
	"github.com/localrivet/textsummarizer/internal/server"
	"github.com/localrivet/textsummarizer/internal/service"
	"github.com/localrivet/textsummarizer/internal/signlang"
	"github.com/localrivet/textsummarizer/internal/store"
	"github.com/localrivet/textsummarizer/internal/summarizer"
	"github.com/localrivet/textsummarizer/internal/telemetry"
)

// Config represents the configuration for the text summarizer service.
type Config = config.Config

// Request describes one summarization.
type Request = service.Request

// Response is the outcome of a summarization.
type Response = service.Response

// Transport names accepted by ServerOptions.Transport.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// documentExpansion bounds how far an upload may inflate when decompressed,
// as a multiple of the upload limit.
const documentExpansion = 10

// providerKeyEnv maps generator providers to the environment variable read
// when no API key is configured.
var providerKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// Server represents the text summarizer service.
type Server struct {
	config     *Config
	service    *service.Service
	toolServer server.ToolServer
	logger     *slog.Logger
}

// ServerOptions defines the options for creating a new Server.
type ServerOptions struct {
	Config     *Config      // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string       // Path to config file. Used if Config is nil. If both are empty, DefaultConfig() is used.
	Logger     *slog.Logger // External logger. If nil, slog.Default() is used.
	// Transport overrides Config.Server.Transport when set.
	Transport string
}

// NewServer creates a new Server with the given options.
// If opts.Config is provided, it will be used directly.
// Otherwise, if opts.ConfigPath is provided, configuration will be loaded from that path.
// If neither is provided, DefaultConfig() will be used.
func NewServer(opts ServerOptions) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *Config
	var err error

	if opts.Config != nil {
		cfg = opts.Config
		logger.Info("Using provided Config object for server initialization")
	} else if opts.ConfigPath != "" {
		logger.Info("Loading configuration for server initialization", "path", opts.ConfigPath)
		cfg, err = config.LoadConfigWithPath(opts.ConfigPath)
		if err != nil {
			logger.Error("Failed to load configuration from path", "path", opts.ConfigPath, "error", err)
			return nil, errortypes.ConfigError(err, "Failed to load configuration from path: "+opts.ConfigPath)
		}
	} else {
		logger.Warn("No Config object or ConfigPath provided, using default configuration for server initialization")
		cfg = DefaultConfig()
	}

	components, err := CreateComponents(cfg, logger)
	if err != nil {
		logger.Error("Failed to create components during server initialization", "error", err)
		return nil, err
	}
	svc, err := service.New(components)
	if err != nil {
		if components.Store != nil {
			components.Store.Close()
		}
		return nil, err
	}

	transport := opts.Transport
	if transport == "" {
		transport = cfg.Server.Transport
	}

	var toolServer server.ToolServer
	switch strings.ToLower(transport) {
	case TransportHTTP:
		logger.Info("Initializing HTTP API", "addr", cfg.Server.HTTPAddr)
		toolServer = server.NewHTTPServer(svc, cfg.Server.HTTPAddr, cfg.Server.MaxUploadBytes, logger)
	case TransportStdio, "":
		logger.Info("Initializing MCP tool server")
		toolServer = server.NewMCPToolServer(svc, logger)
	default:
		svc.Close()
		return nil, errortypes.ConfigError(errors.New("unknown transport"), "unsupported server transport").WithField("transport", transport)
	}

	if err := toolServer.Initialize(); err != nil {
		svc.Close()
		logger.Error("Failed to initialize tool server", "transport", transport, "error", err)
		return nil, errortypes.ConfigError(err, "Failed to initialize tool server")
	}

	logger.Info("Text summarizer server successfully initialized", "transport", transport)
	return &Server{
		config:     cfg,
		service:    svc,
		toolServer: toolServer,
		logger:     logger,
	}, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return config.NewConfig()
}

// Start serves requests until the transport ends or Stop is called.
func (s *Server) Start() error {
	s.logger.Info("Starting text summarizer service")
	return s.toolServer.Start()
}

// Stop stops the transport and closes the store.
func (s *Server) Stop() error {
	s.logger.Info("Stopping text summarizer service")
	if err := s.toolServer.Stop(); err != nil {
		s.logger.Error("Error stopping tool server", "error", err)
		return err
	}

	if err := s.service.Close(); err != nil {
		s.logger.Error("Failed to close store", "error", err)
		return err
	}

	s.logger.Info("Text summarizer service stopped")
	return nil
}

// Summarize returns the summary of text made of up to sentences sentences.
// Zero uses the configured default.
func (s *Server) Summarize(ctx context.Context, text string, sentences int) (string, error) {
	resp, err := s.service.Process(ctx, Request{Text: text, NumSentences: sentences})
	if err != nil {
		return "", err
	}
	return resp.Summary, nil
}

// Process runs a full request, including topic generation when Topic is set.
func (s *Server) Process(ctx context.Context, req Request) (*Response, error) {
	return s.service.Process(ctx, req)
}

// Service returns the underlying service for embedding in another server.
func (s *Server) Service() *service.Service {
	return s.service
}

// Config returns the configuration the server was built from.
func (s *Server) Config() *Config {
	return s.config
}

// CreateComponents creates and initializes the components of the service
// without creating a server, for callers that embed the summarizer directly.
func CreateComponents(cfg *Config, logger *slog.Logger) (service.Components, error) {
	if logger == nil {
		logger = slog.Default()
		logger.Debug("CreateComponents called with nil logger, defaulting to slog.Default()")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	metrics := telemetry.NewMetricsCollector()

	logger.Info("Initializing summarizer", "damping", cfg.Engine.Damping, "workers", cfg.Engine.Workers)
	sum := summarizer.NewTextRankSummarizer(&summarizer.Config{
		Damping:       cfg.Engine.Damping,
		Tolerance:     cfg.Engine.Tolerance,
		MaxIterations: cfg.Engine.MaxIterations,
		Workers:       cfg.Engine.Workers,
		PreserveOrder: cfg.Engine.PreserveOrder,
		StopwordsPath: cfg.Engine.StopwordsPath,
		CacheCapacity: cfg.Cache.Capacity,
		CacheTTL:      config.Duration(cfg.Cache.TTL, summarizer.DefaultCacheTTL),
	}, metrics, logger)
	if err := sum.Initialize(); err != nil {
		logger.Error("Failed to initialize summarizer", "error", err)
		return service.Components{}, err
	}

	gen, err := generator.New(generatorConfig(cfg), metrics, logger)
	if err != nil {
		logger.Error("Failed to initialize generator", "provider", cfg.Generator.Provider, "error", err)
		return service.Components{}, err
	}
	logger.Info("Generator initialized", "providers", gen.Providers())

	translator := signlang.New(cfg.SignLanguage.Endpoint, cfg.SignLanguage.ApiKey,
		config.Duration(cfg.SignLanguage.Timeout, signlang.DefaultTimeout))
	logger.Info("Sign language translator initialized", "translator", translator.Name())

	components := service.Components{
		Summarizer:       sum,
		Generator:        gen,
		Translator:       translator,
		Metrics:          metrics,
		Logger:           logger,
		DefaultSentences: cfg.Engine.DefaultSentences,
		MaxDocumentBytes: cfg.Server.MaxUploadBytes * documentExpansion,
	}

	if cfg.Store.Enabled {
		logger.Info("Initializing SQLite summary store", "path", cfg.Store.SQLitePath)
		vectorizer, err := sum.Vectorizer()
		if err != nil {
			return service.Components{}, err
		}
		st := store.NewSQLiteStore(vectorizer)
		if err := st.Initialize(cfg.Store.SQLitePath); err != nil {
			logger.Error("Failed to initialize SQLite summary store", "path", cfg.Store.SQLitePath, "error", err)
			return service.Components{}, errortypes.DatabaseError(err, "Failed to initialize SQLite summary store")
		}
		components.Store = st
	} else {
		logger.Info("Summary history disabled")
	}

	logger.Info("Components successfully initialized")
	return components, nil
}

// generatorConfig converts the generator section, reading API keys from the
// provider's conventional environment variable when none is configured.
func generatorConfig(cfg *Config) *generator.Config {
	g := cfg.Generator
	name := strings.ToLower(strings.TrimSpace(g.Provider))

	key := g.ApiKey
	if key == "" {
		key = os.Getenv(providerKeyEnv[name])
	}

	fallbackKeys := map[string]string{}
	for _, fb := range g.FallbackOrder {
		fb = strings.ToLower(strings.TrimSpace(fb))
		if env, ok := providerKeyEnv[fb]; ok {
			fallbackKeys[fb] = os.Getenv(env)
		}
	}

	return &generator.Config{
		ProviderName:  name,
		ModelID:       g.ModelID,
		APIKey:        key,
		BaseURL:       g.BaseURL,
		Timeout:       config.Duration(g.Timeout, generator.DefaultTimeout),
		MaxRetries:    g.MaxRetries,
		RetryDelay:    config.Duration(g.RetryDelay, generator.DefaultRetryDelay),
		FallbackOrder: g.FallbackOrder,
		FallbackKeys:  fallbackKeys,
	}
}
