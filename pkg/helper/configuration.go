package helper

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/yishak-cs/course-recommender/internal/database"
)

// Catalog source names
const (
	CatalogFixture = "fixture"
	CatalogGuide   = "guide"
	CatalogNeo4j   = "neo4j"
)

// Grade source names
const (
	GradesSynthetic = "synthetic"
	GradesMadGrades = "madgrades"
)

// Config holds all process level settings. It is read once at startup and
// treated as read-only afterwards.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Grades    GradesConfig    `mapstructure:"grades"`
	Matcher   MatcherConfig   `mapstructure:"matcher"`
	Neo4j     Neo4jConfig     `mapstructure:"neo4j"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	AllowOrigins []string      `mapstructure:"allow_origins"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// AnthropicConfig language model settings. An empty APIKey puts the
// service in degraded mode.
type AnthropicConfig struct {
	APIKey           string        `mapstructure:"api_key"`
	Model            string        `mapstructure:"model"`
	ParseMaxTokens   int64         `mapstructure:"parse_max_tokens"`
	ComposeMaxTokens int64         `mapstructure:"compose_max_tokens"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// CatalogConfig selects and tunes the catalog source
type CatalogConfig struct {
	Source      string        `mapstructure:"source"`
	BaseURL     string        `mapstructure:"base_url"`
	Subjects    []string      `mapstructure:"subjects"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

// GradesConfig selects and tunes the grade source
type GradesConfig struct {
	Source      string        `mapstructure:"source"`
	Seed        int64         `mapstructure:"seed"`
	BaseURL     string        `mapstructure:"base_url"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

// MatcherConfig ranking settings
type MatcherConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	Workers      int `mapstructure:"workers"`
}

// Neo4jConfig connection settings for the graph catalog
type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// LogConfig logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DriverConfig converts the Neo4j section into the driver configuration
func (c Neo4jConfig) DriverConfig() database.Config {
	return database.Config{
		URI:      c.URI,
		Username: c.Username,
		Password: c.Password,
		Database: c.Database,
	}
}

// AgentEnabled reports whether a model credential is configured
func (c *Config) AgentEnabled() bool {
	return strings.TrimSpace(c.Anthropic.APIKey) != ""
}

// LoadConfig loads configuration from .env, an optional config file and the
// environment. Priority: environment > config file > defaults.
func LoadConfig(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("COURSEMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// unprefixed names commonly set by deployments
	bindings := map[string]string{
		"anthropic.api_key": "ANTHROPIC_API_KEY",
		"anthropic.model":   "ANTHROPIC_MODEL",
		"server.port":       "APP_PORT",
		"neo4j.uri":         "NEO4J_URI",
		"neo4j.username":    "NEO4J_USERNAME",
		"neo4j.password":    "NEO4J_PASSWORD",
		"neo4j.database":    "NEO4J_DATABASE",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, "COURSEMATCH_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "90s")

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.parse_max_tokens", 1024)
	v.SetDefault("anthropic.compose_max_tokens", 2048)
	v.SetDefault("anthropic.timeout", "30s")

	v.SetDefault("catalog.source", CatalogFixture)
	v.SetDefault("catalog.base_url", "https://guide.wisc.edu/courses/")
	v.SetDefault("catalog.subjects", []string{"COMP SCI", "MATH", "ENGLISH", "HISTORY", "BIOLOGY"})
	v.SetDefault("catalog.http_timeout", "10s")

	v.SetDefault("grades.source", GradesSynthetic)
	v.SetDefault("grades.seed", 0)
	v.SetDefault("grades.base_url", "https://madgrades.com")
	v.SetDefault("grades.http_timeout", "10s")

	v.SetDefault("matcher.default_limit", 20)
	v.SetDefault("matcher.workers", 8)

	v.SetDefault("neo4j.uri", "")
	v.SetDefault("neo4j.username", "neo4j")
	v.SetDefault("neo4j.password", "")
	v.SetDefault("neo4j.database", "neo4j")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks settings that would make the process misbehave. A missing
// API key is not an error.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port must be between 1 and 65535")
	}
	switch c.Catalog.Source {
	case CatalogFixture, CatalogGuide:
	case CatalogNeo4j:
		if c.Neo4j.URI == "" {
			return fmt.Errorf("invalid config: neo4j.uri is required for catalog source %q", CatalogNeo4j)
		}
	default:
		return fmt.Errorf("invalid config: unknown catalog.source %q", c.Catalog.Source)
	}
	switch c.Grades.Source {
	case GradesSynthetic, GradesMadGrades:
	default:
		return fmt.Errorf("invalid config: unknown grades.source %q", c.Grades.Source)
	}
	if c.Matcher.DefaultLimit <= 0 {
		return fmt.Errorf("invalid config: matcher.default_limit must be positive")
	}
	if c.Matcher.Workers <= 0 {
		return fmt.Errorf("invalid config: matcher.workers must be positive")
	}
	return nil
}
