// Package config loads runtime configuration from the environment and an optional TOML file
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"legaleagle-backend/storage"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL    = "https://www.courtlistener.com"
	DefaultSearchPath = "/api/rest/v4/search/"
	DefaultSecretName = "CourtListenerAccessKey"
	DefaultAuthScheme = "Token"
	DefaultModel      = "gemini-2.0-flash-exp"

	DocumentSourcePage    = "page"
	DocumentSourceStorage = "storage"

	DefaultDocumentMaxSizeMB = 10

	SecretProviderEnv = "env"
	SecretProviderGCP = "gcp"
)

// CourtListenerConfig holds search service settings
type CourtListenerConfig struct {
	BaseURL    string
	SearchPath string
	Token      string // Overrides the secret lookup when set
	SecretName string
	AuthScheme string
}

// GeminiConfig holds generation service settings
type GeminiConfig struct {
	APIKey            string
	Model             string
	Temperature       float32
	TopP              float32
	MaxOutputTokens   int32
	SystemInstruction string // Empty means the built-in legal summary instruction
	MaxRetries        int    // 0 disables the retry decorator
	InitialBackoff    time.Duration
}

// Config holds all runtime configuration
type Config struct {
	Port              string
	LogLevel          string
	LogPretty         bool
	HTTPTimeout       time.Duration
	SecretProvider    string
	ProjectID         string
	DocumentSource    string
	DocumentMaxSizeMB int

	CourtListener CourtListenerConfig
	Gemini        GeminiConfig
	Storage       storage.StorageConfig
}

// fileConfig mirrors the overridable subset of Config in the TOML file
type fileConfig struct {
	CourtListener struct {
		BaseURL    *string `toml:"base_url"`
		SearchPath *string `toml:"search_path"`
		SecretName *string `toml:"secret_name"`
		AuthScheme *string `toml:"auth_scheme"`
	} `toml:"courtlistener"`
	Gemini struct {
		Model             *string  `toml:"model"`
		Temperature       *float64 `toml:"temperature"`
		TopP              *float64 `toml:"top_p"`
		MaxOutputTokens   *int64   `toml:"max_output_tokens"`
		SystemInstruction *string  `toml:"system_instruction"`
		MaxRetries        *int     `toml:"max_retries"`
	} `toml:"gemini"`
	DocumentSource    *string `toml:"document_source"`
	DocumentMaxSizeMB *int    `toml:"document_max_size_mb"`
}

// LoadDotEnv loads a .env file from the current directory, then the project root
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Warn().Msg("No .env file found, using environment variables")
		}
	}
}

// Load builds the configuration from environment variables and,
// when LEGALEAGLE_CONFIG names a file, applies its TOML overrides
func Load() (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	if path := os.Getenv("LEGALEAGLE_CONFIG"); path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromEnv reads the configuration from environment variables with defaults
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		SecretProvider: getEnv("SECRET_PROVIDER", SecretProviderEnv),
		ProjectID:      os.Getenv("GOOGLE_CLOUD_PROJECT"),
		DocumentSource: getEnv("DOCUMENT_SOURCE", DocumentSourcePage),
		CourtListener: CourtListenerConfig{
			BaseURL:    getEnv("COURTLISTENER_BASE_URL", DefaultBaseURL),
			SearchPath: getEnv("COURTLISTENER_SEARCH_PATH", DefaultSearchPath),
			Token:      os.Getenv("COURTLISTENER_TOKEN"),
			SecretName: getEnv("COURTLISTENER_SECRET_NAME", DefaultSecretName),
			AuthScheme: getEnv("COURTLISTENER_AUTH_SCHEME", DefaultAuthScheme),
		},
		Gemini: GeminiConfig{
			APIKey:          os.Getenv("GEMINI_API_KEY"),
			Model:           getEnv("GEMINI_MODEL", DefaultModel),
			Temperature:     1,
			TopP:            0.95,
			MaxOutputTokens: 8192,
			InitialBackoff:  time.Second,
		},
	}

	var err error
	if cfg.LogPretty, err = getEnvBool("LOG_PRETTY", false); err != nil {
		return nil, err
	}

	timeoutSeconds, err := getEnvInt("HTTP_TIMEOUT_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = time.Duration(timeoutSeconds) * time.Second

	if cfg.DocumentMaxSizeMB, err = getEnvInt("DOCUMENT_MAX_SIZE_MB", DefaultDocumentMaxSizeMB); err != nil {
		return nil, err
	}

	if cfg.Gemini.MaxRetries, err = getEnvInt("GEMINI_MAX_RETRIES", 0); err != nil {
		return nil, err
	}

	cfg.Storage = storage.StorageConfig{
		Type:         storage.StorageType(getEnv("STORAGE_TYPE", string(storage.StorageTypeLocal))),
		LocalPath:    getEnv("STORAGE_LOCAL_PATH", "./storage/files"),
		S3Bucket:     getEnv("AWS_S3_BUCKET", storage.DefaultS3Bucket),
		S3Region:     getEnv("AWS_REGION", storage.DefaultS3Region),
		AWSAccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	}

	return cfg, nil
}

// ApplyFile overrides settings with the values present in a TOML file
func (c *Config) ApplyFile(path string) error {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown keys in config file %s: %v", path, undecoded)
	}

	if v := fc.CourtListener.BaseURL; v != nil {
		c.CourtListener.BaseURL = *v
	}
	if v := fc.CourtListener.SearchPath; v != nil {
		c.CourtListener.SearchPath = *v
	}
	if v := fc.CourtListener.SecretName; v != nil {
		c.CourtListener.SecretName = *v
	}
	if v := fc.CourtListener.AuthScheme; v != nil {
		c.CourtListener.AuthScheme = *v
	}

	if v := fc.Gemini.Model; v != nil {
		c.Gemini.Model = *v
	}
	if v := fc.Gemini.Temperature; v != nil {
		c.Gemini.Temperature = float32(*v)
	}
	if v := fc.Gemini.TopP; v != nil {
		c.Gemini.TopP = float32(*v)
	}
	if v := fc.Gemini.MaxOutputTokens; v != nil {
		c.Gemini.MaxOutputTokens = int32(*v)
	}
	if v := fc.Gemini.SystemInstruction; v != nil {
		c.Gemini.SystemInstruction = *v
	}
	if v := fc.Gemini.MaxRetries; v != nil {
		c.Gemini.MaxRetries = *v
	}

	if v := fc.DocumentSource; v != nil {
		c.DocumentSource = *v
	}
	if v := fc.DocumentMaxSizeMB; v != nil {
		c.DocumentMaxSizeMB = *v
	}

	return nil
}

// Validate checks the configuration for unsupported values
func (c *Config) Validate() error {
	switch c.DocumentSource {
	case DocumentSourcePage, DocumentSourceStorage:
	default:
		return fmt.Errorf("unknown document source: %s", c.DocumentSource)
	}

	switch c.SecretProvider {
	case SecretProviderEnv, SecretProviderGCP:
	default:
		return fmt.Errorf("unknown secret provider: %s", c.SecretProvider)
	}

	if c.DocumentMaxSizeMB <= 0 {
		return fmt.Errorf("DOCUMENT_MAX_SIZE_MB must be positive, got %d", c.DocumentMaxSizeMB)
	}

	if c.CourtListener.BaseURL == "" {
		return fmt.Errorf("COURTLISTENER_BASE_URL must not be empty")
	}
	if c.Gemini.Model == "" {
		return fmt.Errorf("GEMINI_MODEL must not be empty")
	}
	if c.Gemini.MaxOutputTokens <= 0 {
		return fmt.Errorf("max_output_tokens must be positive, got %d", c.Gemini.MaxOutputTokens)
	}
	if c.Gemini.MaxRetries < 0 {
		return fmt.Errorf("GEMINI_MAX_RETRIES must not be negative, got %d", c.Gemini.MaxRetries)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
