// Package config loads runtime configuration from a YAML file and
// LOANADVISOR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultConfigFile = "config.yaml"
	EnvPrefix         = "LOANADVISOR"
)

// Configuration holds all configuration for the advisor service.
type Configuration struct {
	Server    ServerConfig    `mapstructure:"server"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Model     ModelConfig     `mapstructure:"model"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Store     StoreConfig     `mapstructure:"store"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Recommend RecommendConfig `mapstructure:"recommend"`
}

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	// CORSOrigins lists allowed browser origins; empty disables CORS.
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

type RateLimitConfig struct {
	Capacity int           `mapstructure:"capacity"`
	Window   time.Duration `mapstructure:"window"`
}

// ModelConfig locates the model artifacts and the oracle endpoint.
type ModelConfig struct {
	MetadataPath  string        `mapstructure:"metadata_path"`
	PolicyPath    string        `mapstructure:"policy_path"`
	OracleURL     string        `mapstructure:"oracle_url"`
	OracleTimeout time.Duration `mapstructure:"oracle_timeout"`
}

type CacheConfig struct {
	Size      int           `mapstructure:"size"`
	RedisURL  string        `mapstructure:"redis_url"`
	TTL       time.Duration `mapstructure:"ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"` // memory, sqlite
	DSN    string `mapstructure:"dsn"`
}

type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // none, openai, anthropic, mock
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float64       `mapstructure:"temperature"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputFile string `mapstructure:"output_file"` // optional file output
}

type RecommendConfig struct {
	TopK int `mapstructure:"top_k"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("rate_limit.capacity", 5)
	v.SetDefault("rate_limit.window", time.Minute)
	v.SetDefault("model.metadata_path", "models/best_model_metadata.json")
	v.SetDefault("model.policy_path", "models/best_model_policy.json")
	v.SetDefault("model.oracle_url", "")
	v.SetDefault("model.oracle_timeout", 10*time.Second)
	v.SetDefault("cache.size", 4096)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", time.Duration(0))
	v.SetDefault("cache.key_prefix", "pd:")
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.dsn", "")
	v.SetDefault("llm.provider", "none")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_file", "")
	v.SetDefault("recommend.top_k", 3)
}

// LoadConfiguration reads the YAML file at configPath, if any, on top of the
// defaults and applies environment overrides such as LOANADVISOR_LLM_API_KEY.
// A missing file is not an error.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !isNotExist(err) {
				return nil, fmt.Errorf("error reading config file, %s", err)
			}
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// Validate checks values that have a closed set of options.
func (c *Configuration) Validate() error {
	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("invalid store driver: %s", c.Store.Driver)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache.size must not be negative")
	}
	if c.Recommend.TopK < 1 {
		return fmt.Errorf("recommend.top_k must be at least 1")
	}
	if c.RateLimit.Capacity < 1 {
		return fmt.Errorf("rate_limit.capacity must be at least 1")
	}
	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
