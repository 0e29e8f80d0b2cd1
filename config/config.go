// Package config loads the service configuration from an optional YAML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Log formats.
const (
	FormatJSON = "json" // zap
	FormatText = "text" // logrus
)

// Config is the complete service configuration. It is built once at startup
// and handed to constructors.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Redis     RedisConfig     `yaml:"redis"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Vault     VaultConfig     `yaml:"vault"`
	Providers ProvidersConfig `yaml:"providers"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// RedisConfig selects the shared cache backend. An empty URL means the
// in-process memory backend.
type RedisConfig struct {
	URL       string `yaml:"url"`
	KeyPrefix string `yaml:"key_prefix"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

type VaultConfig struct {
	Secret string `yaml:"secret"`
}

type ProvidersConfig struct {
	// Retries is how many times a transient upstream failure is retried.
	Retries  int            `yaml:"retries"`
	MyMemory MyMemoryConfig `yaml:"mymemory"`
	DeepL    DeepLConfig    `yaml:"deepl"`
	Helsinki HelsinkiConfig `yaml:"helsinki"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
}

type MyMemoryConfig struct {
	BaseURL           string `yaml:"base_url"`
	Email             string `yaml:"email"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

type DeepLConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type HelsinkiConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

type OpenAIConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8000",
			CORSOrigins: []string{"*"},
		},
		Database: DatabaseConfig{DSN: "transcache.db"},
		Auth:     AuthConfig{Issuer: "transcache"},
		Providers: ProvidersConfig{
			MyMemory: MyMemoryConfig{RequestsPerMinute: 60},
		},
		Log: LogConfig{Level: "info", Format: FormatJSON},
	}
}

// Load reads path (if non-empty) over the defaults, then applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	str("SERVER_ADDR", &c.Server.Addr)
	str("REDIS_URL", &c.Redis.URL)
	str("REDIS_KEY_PREFIX", &c.Redis.KeyPrefix)
	str("DATABASE_URL", &c.Database.DSN)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	str("JWT_ISSUER", &c.Auth.Issuer)
	str("ENCRYPTION_KEY", &c.Vault.Secret)
	str("MYMEMORY_URL", &c.Providers.MyMemory.BaseURL)
	str("MYMEMORY_EMAIL", &c.Providers.MyMemory.Email)
	str("DEEPL_URL", &c.Providers.DeepL.BaseURL)
	str("DEEPL_API_KEY", &c.Providers.DeepL.APIKey)
	str("HF_API_URL", &c.Providers.Helsinki.BaseURL)
	str("HF_TOKEN", &c.Providers.Helsinki.Token)
	str("OPENAI_BASE_URL", &c.Providers.OpenAI.BaseURL)
	str("OPENAI_API_KEY", &c.Providers.OpenAI.APIKey)
	str("OPENAI_MODEL", &c.Providers.OpenAI.Model)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	if v, ok := lookup("CORS_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.CORSOrigins = origins
	}

	for name, dst := range map[string]*int{
		"MYMEMORY_RPM":     &c.Providers.MyMemory.RequestsPerMinute,
		"PROVIDER_RETRIES": &c.Providers.Retries,
	} {
		if v, ok := lookup(name); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = n
		}
	}

	return nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case FormatJSON, FormatText:
	default:
		return fmt.Errorf("log.format must be %q or %q, got %q", FormatJSON, FormatText, c.Log.Format)
	}
	if c.Providers.MyMemory.RequestsPerMinute < 0 {
		return errors.New("providers.mymemory.requests_per_minute cannot be negative")
	}
	if c.Providers.Retries < 0 {
		return errors.New("providers.retries cannot be negative")
	}
	return nil
}

// ValidateServe additionally requires the secrets the HTTP server depends on.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}

	var missing []string
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "auth.jwt_secret (JWT_SECRET)")
	}
	if c.Vault.Secret == "" {
		missing = append(missing, "vault.secret (ENCRYPTION_KEY)")
	}
	if c.Database.DSN == "" {
		missing = append(missing, "database.dsn (DATABASE_URL)")
	}
	if c.Server.Addr == "" {
		missing = append(missing, "server.addr (SERVER_ADDR)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}
