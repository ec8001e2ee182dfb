package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server settings
	ServerPort   string        `json:"server_port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	Debug        bool          `json:"debug"`

	// Application paths
	LogDir string `json:"log_dir"`

	// CORS Configuration
	CORS CORSConfig `json:"cors"`

	// Rate Limiting
	RateLimit RateLimitConfig `json:"rate_limit"`

	// Database settings
	Database DatabaseConfig `json:"database"`

	// Processing pipeline settings
	Processing ProcessingConfig `json:"processing"`

	// Transcript fetcher settings
	Transcript TranscriptConfig `json:"transcript"`

	// Summarizer settings
	Summarizer SummarizerConfig `json:"summarizer"`

	// Transcript archive settings
	Archive ArchiveConfig `json:"archive"`

	// Application version
	Version string `json:"version"`

	// Request and shutdown timeouts
	RequestTimeout  time.Duration `json:"request_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path               string        `json:"path"`
	MaxConnections     int           `json:"max_connections"`
	MaxIdleConnections int           `json:"max_idle_connections"`
	ConnMaxLifetime    time.Duration `json:"conn_max_lifetime"`
}

type ProcessingConfig struct {
	Workers         int           `json:"workers"`
	QueueSize       int           `json:"queue_size"`
	ProcessTimeout  time.Duration `json:"process_timeout"`
	StaleTimeout    time.Duration `json:"stale_timeout"`
	JanitorInterval time.Duration `json:"janitor_interval"`
}

type TranscriptConfig struct {
	BaseURL       string        `json:"base_url"`
	APIKey        string        `json:"-"`
	Timeout       time.Duration `json:"timeout"`
	FallbackToAny bool          `json:"fallback_to_any"`
}

type SummarizerConfig struct {
	// Backend selects which client handles summary generation:
	// "mistral" (cloud API) or "ollama" (hosted model server).
	Backend            string        `json:"backend"`
	MistralBaseURL     string        `json:"mistral_base_url"`
	MistralAPIKey      string        `json:"-"`
	MistralModel       string        `json:"mistral_model"`
	OllamaURL          string        `json:"ollama_url"`
	OllamaModel        string        `json:"ollama_model"`
	Timeout            time.Duration `json:"timeout"`
	MaxInputChars      int           `json:"max_input_chars"`
	SummarizeOnProcess bool          `json:"summarize_on_process"`
}

type ArchiveConfig struct {
	Enabled   bool   `json:"enabled"`
	Endpoint  string `json:"endpoint"`
	Region    string `json:"region"`
	Bucket    string `json:"bucket"`
	AccessKey string `json:"-"`
	SecretKey string `json:"-"`
}

type CORSConfig struct {
	Enabled          bool     `json:"enabled"`
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	ExposedHeaders   []string `json:"exposed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `json:"enabled"`
	RequestsPerMinute int  `json:"requests_per_minute"`
	BurstSize         int  `json:"burst_size"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Server settings
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:  getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		Debug:        getEnvAsBool("DEBUG", false),

		// Application paths
		LogDir: getEnv("LOG_DIR", "/var/log/ytdigest"),

		// Application version
		Version: getEnv("VERSION", "1.0.0"),

		// Request and shutdown timeouts
		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 2*time.Minute),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		// CORS Configuration
		CORS: CORSConfig{
			Enabled:        getEnvAsBool("CORS_ENABLED", true),
			AllowedOrigins: getEnvAsStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsStringSlice(
				"CORS_ALLOWED_METHODS",
				[]string{"GET", "POST", "DELETE", "OPTIONS"},
			),
			AllowedHeaders:   getEnvAsStringSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type"}),
			ExposedHeaders:   getEnvAsStringSlice("CORS_EXPOSED_HEADERS", []string{}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getEnvAsInt("CORS_MAX_AGE", 86400),
		},

		// Rate Limiting
		RateLimit: RateLimitConfig{
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 60),
			BurstSize:         getEnvAsInt("RATE_LIMIT_BURST", 10),
		},

		// Database
		Database: DatabaseConfig{
			Path:               getEnv("DB_PATH", "/var/lib/ytdigest/data.db"),
			MaxConnections:     getEnvAsInt("DB_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},

		// Processing pipeline
		Processing: ProcessingConfig{
			Workers:         getEnvAsInt("PROCESS_WORKERS", 4),
			QueueSize:       getEnvAsInt("PROCESS_QUEUE_SIZE", 100),
			ProcessTimeout:  getEnvAsDuration("PROCESS_TIMEOUT", 10*time.Minute),
			StaleTimeout:    getEnvAsDuration("PROCESS_STALE_TIMEOUT", 30*time.Minute),
			JanitorInterval: getEnvAsDuration("PROCESS_JANITOR_INTERVAL", 5*time.Minute),
		},

		// Transcript fetcher
		Transcript: TranscriptConfig{
			BaseURL:       getEnv("TRANSCRIPT_API_URL", "https://transcript-api.internal/v1"),
			APIKey:        getEnv("TRANSCRIPT_API_KEY", ""),
			Timeout:       getEnvAsDuration("TRANSCRIPT_TIMEOUT", 30*time.Second),
			FallbackToAny: getEnvAsBool("TRANSCRIPT_FALLBACK_TO_ANY", true),
		},

		// Summarizer
		Summarizer: SummarizerConfig{
			Backend:            getEnv("SUMMARIZER_BACKEND", "ollama"),
			MistralBaseURL:     getEnv("MISTRAL_BASE_URL", "https://api.mistral.ai/v1"),
			MistralAPIKey:      getEnv("MISTRAL_API_KEY", ""),
			MistralModel:       getEnv("MISTRAL_MODEL", "mistral-small-latest"),
			OllamaURL:          getEnv("OLLAMA_URL", "http://localhost:11434"),
			OllamaModel:        getEnv("OLLAMA_MODEL", "mistral-small:22b"),
			Timeout:            getEnvAsDuration("SUMMARIZER_TIMEOUT", 2*time.Minute),
			MaxInputChars:      getEnvAsInt("SUMMARIZER_MAX_INPUT_CHARS", 25000),
			SummarizeOnProcess: getEnvAsBool("SUMMARIZE_ON_PROCESS", true),
		},

		// Transcript archive
		Archive: ArchiveConfig{
			Enabled:   getEnvAsBool("ARCHIVE_ENABLED", false),
			Endpoint:  getEnv("ARCHIVE_ENDPOINT", ""),
			Region:    getEnv("ARCHIVE_REGION", "us-east-1"),
			Bucket:    getEnv("ARCHIVE_BUCKET", ""),
			AccessKey: getEnv("ARCHIVE_ACCESS_KEY", ""),
			SecretKey: getEnv("ARCHIVE_SECRET_KEY", ""),
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validatePaths(c); err != nil {
		return err
	}
	if err := validateTimeouts(c); err != nil {
		return err
	}
	if err := validateServices(c); err != nil {
		return err
	}
	return nil
}

func validatePaths(c *Config) error {
	paths := []struct {
		path string
		name string
	}{
		{c.LogDir, "log directory"},
		{filepath.Dir(c.Database.Path), "database directory"},
	}

	for _, p := range paths {
		if err := os.MkdirAll(p.path, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", p.name, err)
		}
	}

	return nil
}

func validateTimeouts(c *Config) error {
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	if c.Processing.ProcessTimeout <= 0 {
		return fmt.Errorf("process timeout must be positive")
	}
	return nil
}

func validateServices(c *Config) error {
	if c.Processing.Workers <= 0 {
		return fmt.Errorf("worker count must be positive")
	}
	if c.Transcript.BaseURL == "" {
		return fmt.Errorf("transcript API URL is required")
	}
	switch c.Summarizer.Backend {
	case "mistral", "ollama":
	default:
		return fmt.Errorf("unsupported summarizer backend: %s", c.Summarizer.Backend)
	}
	if c.Archive.Enabled && (c.Archive.Endpoint == "" || c.Archive.Bucket == "") {
		return fmt.Errorf("archive endpoint and bucket are required when archive is enabled")
	}
	return nil
}

// Helper functions for reading environment variables
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		if value = strings.TrimSpace(value); value != "" {
			return strings.Split(value, ",")
		}
	}
	return defaultValue
}
