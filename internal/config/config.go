package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/localrivet/configurator"
	"github.com/localrivet/textsummarizer/internal/errortypes"
)

// Global configuration instance
var (
	// Global is the global configuration instance
	Global *Config
	// initOnce ensures initialization happens only once
	initOnce sync.Once
)

// InitGlobal initializes the global configuration
func InitGlobal(configPath string) (*Config, error) {
	var err error
	initOnce.Do(func() {
		Global, err = LoadConfigWithPath(configPath)
	})
	return Global, err
}

// Config represents the text summarizer configuration
type Config struct {
	// Engine controls sentence ranking.
	Engine struct {
		Damping          float64 `json:"damping" env:"ENGINE_DAMPING"`
		Tolerance        float64 `json:"tolerance" env:"ENGINE_TOLERANCE"`
		MaxIterations    int     `json:"max_iterations" env:"ENGINE_MAX_ITERATIONS" validate:"min:1"`
		Workers          int     `json:"workers" env:"ENGINE_WORKERS"`
		DefaultSentences int     `json:"default_sentences" env:"ENGINE_DEFAULT_SENTENCES" validate:"min:1"`
		// PreserveOrder emits summaries in reading order instead of score order.
		PreserveOrder bool `json:"preserve_order" env:"ENGINE_PRESERVE_ORDER"`
		// StopwordsPath names an optional file of extra stopwords, one per line.
		StopwordsPath string `json:"stopwords_path" env:"ENGINE_STOPWORDS_PATH"`
	} `json:"engine"`

	// Store contains storage-related configuration.
	Store struct {
		// SQLitePath is the path to the SQLite database file.
		SQLitePath string `json:"sqlite_path" env:"SQLITE_PATH" validate:"required"`
		Enabled    bool   `json:"enabled" env:"STORE_ENABLED"`
	} `json:"store"`

	// Cache configures the summary cache.
	Cache struct {
		Capacity int    `json:"capacity" env:"CACHE_CAPACITY"`
		TTL      string `json:"ttl" env:"CACHE_TTL"`
	} `json:"cache"`

	// Generator configures topic-to-text generation.
	Generator struct {
		// Provider is one of "openai", "anthropic" or "none".
		Provider      string   `json:"provider" env:"GENERATOR_PROVIDER"`
		ModelID       string   `json:"model_id" env:"GENERATOR_MODEL_ID"`
		ApiKey        string   `json:"api_key" env:"GENERATOR_API_KEY"`
		BaseURL       string   `json:"base_url" env:"GENERATOR_BASE_URL"`
		Timeout       string   `json:"timeout" env:"GENERATOR_TIMEOUT"`
		MaxRetries    int      `json:"max_retries" env:"GENERATOR_MAX_RETRIES"`
		RetryDelay    string   `json:"retry_delay" env:"GENERATOR_RETRY_DELAY"`
		FallbackOrder []string `json:"fallback_order" env:"GENERATOR_FALLBACK_ORDER"`
	} `json:"generator"`

	// SignLanguage configures the sign language translator. An empty endpoint
	// selects the built-in placeholder translator.
	SignLanguage struct {
		Endpoint string `json:"endpoint" env:"SIGN_LANGUAGE_ENDPOINT"`
		ApiKey   string `json:"api_key" env:"SIGN_LANGUAGE_API_KEY"`
		Timeout  string `json:"timeout" env:"SIGN_LANGUAGE_TIMEOUT"`
	} `json:"sign_language"`

	// Server configures the outer surfaces.
	Server struct {
		// Transport is "stdio" for MCP or "http" for the REST API.
		Transport      string `json:"transport" env:"SERVER_TRANSPORT"`
		HTTPAddr       string `json:"http_addr" env:"SERVER_HTTP_ADDR"`
		MaxUploadBytes int64  `json:"max_upload_bytes" env:"SERVER_MAX_UPLOAD_BYTES"`
	} `json:"server"`

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
	DefaultConfigFilename   = ".textsummarizerconfig"
	DefaultEnvPrefix        = "TEXTSUMMARIZER"
	DefaultSQLitePath       = ".textsummarizer.db"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultSentences        = 3
	DefaultCacheCapacity    = 1000
	DefaultCacheTTL         = "24h"
	DefaultGeneratorModel   = "gpt-4o-mini"
	DefaultGeneratorTimeout = "30s"
	DefaultRetryDelay       = "1s"
	DefaultHTTPAddr         = ":8000"
	DefaultMaxUploadBytes   = 10 << 20
)

var (
	generatorProviders = []string{"openai", "anthropic", "none"}
	transports         = []string{"stdio", "http"}
)

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	config := &Config{}
	config.Engine.Damping = 0.85
	config.Engine.Tolerance = 1e-6
	config.Engine.MaxIterations = 100
	config.Engine.DefaultSentences = DefaultSentences
	config.Store.SQLitePath = DefaultSQLitePath
	config.Store.Enabled = true
	config.Cache.Capacity = DefaultCacheCapacity
	config.Cache.TTL = DefaultCacheTTL
	config.Generator.Provider = "openai"
	config.Generator.ModelID = DefaultGeneratorModel
	config.Generator.Timeout = DefaultGeneratorTimeout
	config.Generator.MaxRetries = 3
	config.Generator.RetryDelay = DefaultRetryDelay
	config.SignLanguage.Timeout = DefaultGeneratorTimeout
	config.Server.Transport = "stdio"
	config.Server.HTTPAddr = DefaultHTTPAddr
	config.Server.MaxUploadBytes = DefaultMaxUploadBytes
	config.Logging.Level = DefaultLogLevel
	config.Logging.Format = DefaultLogFormat
	return config
}

// LoadConfig loads the configuration from the default path
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath(DefaultConfigFilename)
}

// LoadConfigWithPath loads the configuration from a specific path. Values are
// layered: defaults, then the JSON file when it exists, then environment
// variables prefixed with TEXTSUMMARIZER_. A .env file in the working
// directory is loaded into the environment first.
func LoadConfigWithPath(configPath string) (*Config, error) {
	// Config loading runs before the process logger exists; stderr keeps stdout
	// free for the MCP stdio transport.
	stdLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if err := godotenv.Load(); err == nil {
		stdLogger.Debug("Loaded environment from .env")
	}

	cfg := NewConfig()

	// Try to find config file if path is default
	if configPath == "" || configPath == DefaultConfigFilename {
		configPath = DefaultConfigFilename
		if foundPath, err := configurator.FindConfigFile(configPath); err == nil {
			configPath = foundPath
			stdLogger.Debug("Found config file at " + foundPath)
		}
	}

	loader := configurator.New(stdLogger).
		WithProvider(configurator.NewDefaultProvider())

	if _, err := os.Stat(configPath); err == nil {
		stdLogger.Info("Loading configuration", "path", configPath)
		loader = loader.WithProvider(configurator.NewFileProvider(configPath))
	} else {
		stdLogger.Debug("Config file not found, using defaults and environment", "path", configPath)
	}

	loader = loader.
		WithProvider(configurator.NewEnvProvider(DefaultEnvPrefix)).
		WithValidator(configurator.NewDefaultValidator())

	if err := loader.Load(context.Background(), cfg); err != nil {
		return nil, errortypes.ConfigError(err, "failed to load configuration").WithField("path", configPath)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.configPath = configPath
	cfg.lastModifiedAt = time.Now()
	return cfg, nil
}

// Validate checks value ranges and enumerations that struct tags cannot express.
func (c *Config) Validate() error {
	var problems []string

	if c.Engine.Damping <= 0 || c.Engine.Damping >= 1 {
		problems = append(problems, fmt.Sprintf("engine.damping %v must be in (0, 1)", c.Engine.Damping))
	}
	if c.Engine.Tolerance <= 0 {
		problems = append(problems, "engine.tolerance must be positive")
	}
	if c.Engine.MaxIterations < 1 {
		problems = append(problems, "engine.max_iterations must be at least 1")
	}
	if c.Engine.Workers < 0 {
		problems = append(problems, "engine.workers must not be negative")
	}
	if c.Engine.DefaultSentences < 1 {
		problems = append(problems, "engine.default_sentences must be at least 1")
	}
	if c.Store.Enabled && c.Store.SQLitePath == "" {
		problems = append(problems, "store.sqlite_path is required when the store is enabled")
	}
	if c.Cache.Capacity < 0 {
		problems = append(problems, "cache.capacity must not be negative")
	}
	if !slices.Contains(generatorProviders, strings.ToLower(c.Generator.Provider)) {
		problems = append(problems, fmt.Sprintf("generator.provider %q must be one of %v", c.Generator.Provider, generatorProviders))
	}
	for _, name := range c.Generator.FallbackOrder {
		if !slices.Contains(generatorProviders[:2], strings.ToLower(name)) {
			problems = append(problems, fmt.Sprintf("generator.fallback_order entry %q is not a provider", name))
		}
	}
	if c.Generator.MaxRetries < 0 {
		problems = append(problems, "generator.max_retries must not be negative")
	}
	if !slices.Contains(transports, strings.ToLower(c.Server.Transport)) {
		problems = append(problems, fmt.Sprintf("server.transport %q must be one of %v", c.Server.Transport, transports))
	}
	if c.Server.MaxUploadBytes <= 0 {
		problems = append(problems, "server.max_upload_bytes must be positive")
	}
	for name, value := range map[string]string{
		"cache.ttl":             c.Cache.TTL,
		"generator.timeout":     c.Generator.Timeout,
		"generator.retry_delay": c.Generator.RetryDelay,
		"sign_language.timeout": c.SignLanguage.Timeout,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			problems = append(problems, fmt.Sprintf("%s %q is not a duration", name, value))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	slices.Sort(problems)
	return errortypes.ConfigError(fmt.Errorf("%s", strings.Join(problems, "; ")), "invalid configuration").
		WithField("problems", len(problems))
}

// Duration parses a duration setting, falling back to def when it is empty or malformed.
func Duration(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}

// SaveToFile saves the configuration to the specified file
func (c *Config) SaveToFile(path string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errortypes.ConfigError(err, "failed to create directory").WithField("path", dir)
	}

	if err := configurator.SaveToFile(c, path, configurator.FormatJSON); err != nil {
		return errortypes.ConfigError(err, "failed to save configuration").WithField("path", path)
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
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.configPath
}

// LastModified returns when the configuration was last loaded or saved.
func (c *Config) LastModified() time.Time {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.lastModifiedAt
}
