package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. WARDEN_SERVER_PORT.
const EnvPrefix = "WARDEN"

// Config holds the application's configuration values.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	GitHub    GitHubConfig    `mapstructure:"github"`
	AI        AIConfig        `mapstructure:"ai"`
	Review    ReviewConfig    `mapstructure:"review"`
	Publish   PublishConfig   `mapstructure:"publish"`
	Standards StandardsConfig `mapstructure:"standards"`
	Database  DatabaseConfig  `mapstructure:"database"`
}

type ServerConfig struct {
	Port       string `mapstructure:"port"`
	MaxWorkers int    `mapstructure:"max_workers"`
	QueueSize  int    `mapstructure:"queue_size"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type GitHubConfig struct {
	Token          string `mapstructure:"token"`
	AppID          int64  `mapstructure:"app_id"`
	WebhookSecret  string `mapstructure:"webhook_secret"`
	PrivateKeyPath string `mapstructure:"private_key_path"`
}

// AppEnabled reports whether GitHub App credentials are configured. Webhook
// reviews need them; URL-triggered reviews only need a token.
func (g GitHubConfig) AppEnabled() bool {
	return g.AppID != 0 && g.WebhookSecret != ""
}

type AIConfig struct {
	LLMProvider    string `mapstructure:"llm_provider"`
	GeneratorModel string `mapstructure:"generator_model"`
	OllamaHost     string `mapstructure:"ollama_host"`
	GeminiAPIKey   string `mapstructure:"gemini_api_key"`
	EmbedderModel  string `mapstructure:"embedder_model"`
}

type ReviewConfig struct {
	MaxFilesPerReview int `mapstructure:"max_files_per_review"`
	MaxFileSizeKB     int `mapstructure:"max_file_size_kb"`
}

type PublishConfig struct {
	MaxInlineComments int           `mapstructure:"max_inline_comments"`
	MaxLineDistance   int           `mapstructure:"max_line_distance"`
	FallbackFactor    int           `mapstructure:"fallback_factor"`
	OverflowInterval  time.Duration `mapstructure:"overflow_interval"`
}

type StandardsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	QdrantHost string `mapstructure:"qdrant_host"`
	Collection string `mapstructure:"collection"`
	TopK       int    `mapstructure:"top_k"`
	MaxChars   int    `mapstructure:"max_chars"`
}

type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN renders a lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password, d.Database, d.SSLMode)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.max_workers", 5)
	v.SetDefault("server.queue_size", 100)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")

	// Empty defaults register the keys so AutomaticEnv reaches them on Unmarshal.
	v.SetDefault("github.token", "")
	v.SetDefault("github.app_id", 0)
	v.SetDefault("github.webhook_secret", "")
	v.SetDefault("github.private_key_path", "keys/review-warden-app.private-key.pem")
	v.SetDefault("ai.gemini_api_key", "")
	v.SetDefault("database.password", "")

	v.SetDefault("ai.llm_provider", "ollama")
	v.SetDefault("ai.generator_model", "gemma3:latest")
	v.SetDefault("ai.ollama_host", "http://localhost:11434")
	v.SetDefault("ai.embedder_model", "nomic-embed-text")

	v.SetDefault("review.max_files_per_review", 50)
	v.SetDefault("review.max_file_size_kb", 500)

	v.SetDefault("publish.max_inline_comments", 50)
	v.SetDefault("publish.max_line_distance", 5)
	v.SetDefault("publish.fallback_factor", 2)
	v.SetDefault("publish.overflow_interval", time.Second)

	v.SetDefault("standards.enabled", false)
	v.SetDefault("standards.qdrant_host", "localhost:6334")
	v.SetDefault("standards.collection", "review-standards")
	v.SetDefault("standards.top_k", 5)
	v.SetDefault("standards.max_chars", 1200)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "warden")
	v.SetDefault("database.database", "review_warden")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 5*time.Minute)
}

// LoadConfig reads config.yaml (optional, from the working directory or the
// given path) and WARDEN_* environment overrides, then validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize replaces non-positive limits with their defaults so downstream
// components never see a zero cap.
func (c *Config) normalize() {
	if c.Server.MaxWorkers <= 0 {
		c.Server.MaxWorkers = 5
	}
	if c.Server.QueueSize <= 0 {
		c.Server.QueueSize = 100
	}
	if c.Review.MaxFilesPerReview <= 0 {
		c.Review.MaxFilesPerReview = 50
	}
	if c.Review.MaxFileSizeKB <= 0 {
		c.Review.MaxFileSizeKB = 500
	}
	if c.Publish.MaxInlineComments <= 0 {
		c.Publish.MaxInlineComments = 50
	}
	if c.Publish.MaxLineDistance <= 0 {
		c.Publish.MaxLineDistance = 5
	}
	if c.Publish.FallbackFactor <= 0 {
		c.Publish.FallbackFactor = 2
	}
	if c.Standards.TopK <= 0 {
		c.Standards.TopK = 5
	}
	if c.Standards.MaxChars <= 0 {
		c.Standards.MaxChars = 1200
	}
	if c.AI.LLMProvider == "gemini" && (c.AI.GeneratorModel == "" || c.AI.GeneratorModel == "gemma3:latest") {
		c.AI.GeneratorModel = "gemini-2.5-flash"
	}
}

// Validate checks the fields that have no usable default.
func (c *Config) Validate() error {
	switch c.AI.LLMProvider {
	case "ollama":
	case "gemini":
		if c.AI.GeminiAPIKey == "" {
			return fmt.Errorf("ai.gemini_api_key must be set when ai.llm_provider is gemini")
		}
	default:
		return fmt.Errorf("unsupported ai.llm_provider %q", c.AI.LLMProvider)
	}

	if (c.GitHub.AppID == 0) != (c.GitHub.WebhookSecret == "") {
		return fmt.Errorf("github.app_id and github.webhook_secret must be set together")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported logging.format %q", c.Logging.Format)
	}

	if c.Publish.OverflowInterval < 0 {
		return fmt.Errorf("publish.overflow_interval must not be negative")
	}

	if c.Database.Enabled && c.Database.Host == "" {
		return fmt.Errorf("database.host must be set when the database is enabled")
	}
	return nil
}
