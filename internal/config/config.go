package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/viper"
)

// Config is loaded from sqlgen.config.yaml in the working directory (viper
// handles the lookup; see cmd.initConfig). Credentials never live in the
// file: PasswordEnv/URLEnv name environment variables instead.
type Config struct {
	Database Database `yaml:"database" mapstructure:"database"`
	Gen      Gen      `yaml:"gen" mapstructure:"gen"`
}

type Database struct {
	Provider    string `yaml:"provider" mapstructure:"provider"`
	Host        string `yaml:"host" mapstructure:"host"`
	Port        int    `yaml:"port" mapstructure:"port"`
	Name        string `yaml:"name" mapstructure:"name"`
	User        string `yaml:"user" mapstructure:"user"`
	PasswordEnv string `yaml:"password_env" mapstructure:"password_env"`
	// URLEnv, when the named variable is set, overrides the assembled DSN.
	URLEnv string `yaml:"url_env" mapstructure:"url_env"`
	// Path points at the database file for the sqlite provider.
	Path string `yaml:"path" mapstructure:"path"`
}

type Gen struct {
	Out     string `yaml:"out" mapstructure:"out"`
	Package string `yaml:"package" mapstructure:"package"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Database.Provider == "" {
		cfg.Database.Provider = "postgresql"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		switch cfg.Database.Provider {
		case "mysql":
			cfg.Database.Port = 3306
		default:
			cfg.Database.Port = 5432
		}
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.PasswordEnv == "" {
		cfg.Database.PasswordEnv = "SQLGEN_DB_PASSWORD"
	}
	if cfg.Database.URLEnv == "" {
		cfg.Database.URLEnv = "DATABASE_URL"
	}
	if cfg.Gen.Out == "" {
		cfg.Gen.Out = "models"
	}
	if cfg.Gen.Package == "" {
		cfg.Gen.Package = "models"
	}
}

func (c *Config) Validate() error {
	switch c.Database.Provider {
	case "postgresql", "postgres", "mysql", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("unsupported database provider: %s. Supported providers: [postgresql postgres mysql sqlite sqlite3]", c.Database.Provider)
	}
	if c.Database.Provider == "sqlite" || c.Database.Provider == "sqlite3" {
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite provider")
		}
		return nil
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name cannot be empty")
	}
	return nil
}

// DSN assembles the provider connection string. A DATABASE_URL-style
// environment override always wins.
func (c *Config) DSN() string {
	if dbURL := os.Getenv(c.Database.URLEnv); dbURL != "" {
		return dbURL
	}

	password := os.Getenv(c.Database.PasswordEnv)
	switch c.Database.Provider {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			c.Database.User, password, c.Database.Host, c.Database.Port, c.Database.Name)
	case "sqlite", "sqlite3":
		return "sqlite://" + c.Database.Path
	default:
		return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s",
			c.Database.User, url.QueryEscape(password), c.Database.Host, c.Database.Port, c.Database.Name)
	}
}
