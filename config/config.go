/*
Package config loads application configuration.

PURPOSE:
  One YAML file plus environment overrides for secrets. The file carries
  the operational knobs (port, database path, CORS, SMTP); credentials
  and the JWT secret may also arrive via environment variables so the
  file can be committed without them.

ENVIRONMENT OVERRIDES:
  PAYROLL_ADMIN_EMAIL     admin login email
  PAYROLL_ADMIN_PASSWORD  admin login password (plaintext, hashed at startup)
  PAYROLL_JWT_SECRET      HS256 signing secret
*/
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"db"`
	Auth     AuthConfig     `yaml:"auth"`
	Mail     MailConfig     `yaml:"mail"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port         int      `yaml:"port"`
	AllowOrigins []string `yaml:"allow_origins"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	AdminEmail    string        `yaml:"admin_email"`
	AdminPassword string        `yaml:"admin_password"`
	JWTSecret     string        `yaml:"jwt_secret"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
}

type MailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Addr returns the SMTP host:port.
func (c MailConfig) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			AllowOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		},
		Database: DatabaseConfig{Path: "payroll.db"},
		Auth:     AuthConfig{TokenTTL: 24 * time.Hour},
		Mail:     MailConfig{Port: 587},
		Log:      LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads the YAML file at path (if non-empty), applies environment
// overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if v := os.Getenv("PAYROLL_ADMIN_EMAIL"); v != "" {
		cfg.Auth.AdminEmail = v
	}
	if v := os.Getenv("PAYROLL_ADMIN_PASSWORD"); v != "" {
		cfg.Auth.AdminPassword = v
	}
	if v := os.Getenv("PAYROLL_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}

	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Auth.AdminEmail == "" {
		return fmt.Errorf("auth.admin_email is required (or PAYROLL_ADMIN_EMAIL)")
	}
	if c.Auth.AdminPassword == "" {
		return fmt.Errorf("auth.admin_password is required (or PAYROLL_ADMIN_PASSWORD)")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required (or PAYROLL_JWT_SECRET)")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}
