package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Store       StoreConfig       `yaml:"store"`
	API         APIConfig         `yaml:"api"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Tailscale   TailscaleConfig   `yaml:"tailscale"`
	Auth        AuthConfig        `yaml:"auth"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StoreConfig locates the client-local state database that keeps the
// in-progress session alive across restarts.
type StoreConfig struct {
	Dir string `yaml:"dir"`
}

// APIConfig points at the remote LiftLog API: workout persistence, auth
// status, and exercise last-performance lookups.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// PersistenceConfig selects where finished workouts go: "api" posts them to
// the remote API, "postgres" writes them into a self-hosted database.
type PersistenceConfig struct {
	Mode     string         `yaml:"mode"`
	Database DatabaseConfig `yaml:"database"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// AuthConfig is the inbound API key for mutating routes. Empty disables the
// check (the daemon normally listens on loopback or a tailnet).
type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix LIFTLOG_ and underscore-separated
// paths:
//
//	LIFTLOG_SERVER_HOST, LIFTLOG_SERVER_PORT, LIFTLOG_STORE_DIR,
//	LIFTLOG_API_BASE_URL, LIFTLOG_API_TOKEN,
//	LIFTLOG_PERSISTENCE_MODE,
//	LIFTLOG_DB_HOST, LIFTLOG_DB_PORT, LIFTLOG_DB_NAME,
//	LIFTLOG_DB_USER, LIFTLOG_DB_PASSWORD, LIFTLOG_DB_SSLMODE,
//	LIFTLOG_AUTH_API_KEY
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIFTLOG_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LIFTLOG_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LIFTLOG_STORE_DIR"); v != "" {
		cfg.Store.Dir = v
	}
	if v := os.Getenv("LIFTLOG_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("LIFTLOG_API_TOKEN"); v != "" {
		cfg.API.Token = v
	}
	if v := os.Getenv("LIFTLOG_PERSISTENCE_MODE"); v != "" {
		cfg.Persistence.Mode = v
	}
	if v := os.Getenv("LIFTLOG_DB_HOST"); v != "" {
		cfg.Persistence.Database.Host = v
	}
	if v := os.Getenv("LIFTLOG_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Persistence.Database.Port = port
		}
	}
	if v := os.Getenv("LIFTLOG_DB_NAME"); v != "" {
		cfg.Persistence.Database.Name = v
	}
	if v := os.Getenv("LIFTLOG_DB_USER"); v != "" {
		cfg.Persistence.Database.User = v
	}
	if v := os.Getenv("LIFTLOG_DB_PASSWORD"); v != "" {
		cfg.Persistence.Database.Password = v
	}
	if v := os.Getenv("LIFTLOG_DB_SSLMODE"); v != "" {
		cfg.Persistence.Database.SSLMode = v
	}
	if v := os.Getenv("LIFTLOG_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Persistence.Mode == "" {
		cfg.Persistence.Mode = "api"
	}
	if cfg.Store.Dir == "" {
		cfg.Store.Dir = defaultStoreDir()
	}
}

func defaultStoreDir() string {
	if base, err := os.UserConfigDir(); err == nil {
		return base + "/liftlog"
	}
	return ".liftlog"
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	switch c.Persistence.Mode {
	case "api":
		if c.API.BaseURL == "" {
			return fmt.Errorf("api.base_url is required in api persistence mode")
		}
	case "postgres":
		if c.Persistence.Database.Host == "" {
			return fmt.Errorf("persistence.database.host is required in postgres mode")
		}
		if c.Persistence.Database.Port == 0 {
			return fmt.Errorf("persistence.database.port is required in postgres mode")
		}
		if c.Persistence.Database.Name == "" {
			return fmt.Errorf("persistence.database.name is required in postgres mode")
		}
		if c.Persistence.Database.User == "" {
			return fmt.Errorf("persistence.database.user is required in postgres mode")
		}
	default:
		return fmt.Errorf("persistence.mode must be api or postgres, got %q", c.Persistence.Mode)
	}
	return nil
}
