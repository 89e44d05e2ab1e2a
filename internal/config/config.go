package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppEnv  string        `mapstructure:"app_env"`
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Admin   AdminConfig   `mapstructure:"admin"`
	Webhook WebhookConfig `mapstructure:"webhook"`
	Store   StoreConfig   `mapstructure:"store"`
	Sync    SyncConfig    `mapstructure:"sync"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// AdminConfig is the built-in administrator that can always log in, even
// with an empty roster.
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// WebhookConfig holds the default URLs; a per-entity override saved in the
// settings wins over these.
type WebhookConfig struct {
	TasksURL       string        `mapstructure:"tasks_url"`
	StaffURL       string        `mapstructure:"staff_url"`
	DepartmentsURL string        `mapstructure:"departments_url"`
	Timeout        time.Duration `mapstructure:"timeout"` // 0 = wait indefinitely
}

type StoreConfig struct {
	Backend     string `mapstructure:"backend"` // memory | redis | postgres
	RedisURL    string `mapstructure:"redis_url"`
	DatabaseURL string `mapstructure:"database_url"`
	Namespace   string `mapstructure:"namespace"`
}

type SyncConfig struct {
	MaxDepth      int    `mapstructure:"max_depth"`
	MaxNodes      int    `mapstructure:"max_nodes"`
	UnknownStatus string `mapstructure:"unknown_status"` // accept | reject
}

type NotifyConfig struct {
	ToastTTL time.Duration `mapstructure:"toast_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Load reads configuration. Precedence: environment (MATRIX_*) > file > defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("app_env", "development")
	v.SetDefault("server.port", 8001)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "24h")

	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "")

	v.SetDefault("webhook.tasks_url", "")
	v.SetDefault("webhook.staff_url", "")
	v.SetDefault("webhook.departments_url", "")
	v.SetDefault("webhook.timeout", "0s")

	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.redis_url", "redis://localhost:6379/0")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.namespace", "matrix")

	v.SetDefault("sync.max_depth", 32)
	v.SetDefault("sync.max_nodes", 100000)
	v.SetDefault("sync.unknown_status", "accept")

	v.SetDefault("notify.toast_ttl", "4s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("MATRIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("config: auth.jwt_secret must be at least 16 characters")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be between 1 and 65535")
	}
	switch c.Store.Backend {
	case "memory":
	case "redis":
		if c.Store.RedisURL == "" {
			return fmt.Errorf("config: store.redis_url is required for the redis backend")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("config: store.database_url is required for the postgres backend")
		}
	default:
		return fmt.Errorf("config: unknown store.backend %q", c.Store.Backend)
	}
	switch c.Sync.UnknownStatus {
	case "accept", "reject":
	default:
		return fmt.Errorf("config: sync.unknown_status must be accept or reject")
	}
	if c.Webhook.Timeout < 0 {
		return fmt.Errorf("config: webhook.timeout must not be negative")
	}
	return nil
}

// WebhookURL returns the configured default URL for an entity name.
func (c *Config) WebhookURL(entity string) string {
	switch entity {
	case "tasks":
		return c.Webhook.TasksURL
	case "staff":
		return c.Webhook.StaffURL
	case "departments":
		return c.Webhook.DepartmentsURL
	}
	return ""
}
