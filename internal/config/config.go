package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	DatabasePath      string        `json:"database_path" yaml:"database_path"`
	APIPort           string        `json:"api_port" yaml:"api_port"`
	LogLevel          string        `json:"log_level" yaml:"log_level"`
	DataDir           string        `json:"data_dir" yaml:"data_dir"`
	JWTSecret         string        `json:"jwt_secret" yaml:"jwt_secret"`
	TokenExpiryRaw    string        `json:"token_expiry" yaml:"token_expiry"`       // e.g. "24h"
	RequestTimeoutRaw string        `json:"request_timeout" yaml:"request_timeout"` // e.g. "10s"
	CORSOrigins       string        `json:"cors_origins" yaml:"cors_origins"`       // comma separated, * allows all
	TokenExpiry       time.Duration `json:"-" yaml:"-"`
	RequestTimeout    time.Duration `json:"-" yaml:"-"`
}

// Default configuration values
const (
	DefaultDatabasePath   = "data/logstore.db"
	DefaultAPIPort        = "8080"
	DefaultLogLevel       = "INFO"
	DefaultDataDir        = "data"
	DefaultJWTSecret      = "logstore-default-secret-change-in-production"
	DefaultTokenExpiry    = 24 * time.Hour
	DefaultRequestTimeout = 10 * time.Second
	DefaultCORSOrigins    = "*"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "LOGSTORE_"

// Load loads configuration from environment variables and config file
// Priority: Environment variables > Config file > Default values
func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath:   DefaultDatabasePath,
		APIPort:        DefaultAPIPort,
		LogLevel:       DefaultLogLevel,
		DataDir:        DefaultDataDir,
		JWTSecret:      DefaultJWTSecret,
		TokenExpiry:    DefaultTokenExpiry,
		RequestTimeout: DefaultRequestTimeout,
		CORSOrigins:    DefaultCORSOrigins,
	}

	if err := cfg.loadFromFile(); err != nil {
		return nil, err
	}

	cfg.loadFromEnv()

	if err := cfg.parseDurations(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile loads configuration from the first config file found in the
// current directory or the data directory
func (c *Config) loadFromFile() error {
	names := []string{"config.json", "config.yaml", "config.yml"}
	dirs := []string{".", c.DataDir}
	if dir := os.Getenv(EnvPrefix + "DATA_DIR"); dir != "" {
		dirs = append(dirs, dir)
	}

	for _, dir := range dirs {
		for _, name := range names {
			path := filepath.Join(dir, name)
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			if err := c.decode(path, data); err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			return nil
		}
	}

	return nil
}

func (c *Config) decode(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, c)
	default:
		return json.Unmarshal(data, c)
	}
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if val := os.Getenv(EnvPrefix + "DATABASE_PATH"); val != "" {
		c.DatabasePath = val
	}
	if val := os.Getenv(EnvPrefix + "API_PORT"); val != "" {
		c.APIPort = val
	}
	if val := os.Getenv(EnvPrefix + "LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv(EnvPrefix + "DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := os.Getenv(EnvPrefix + "JWT_SECRET"); val != "" {
		c.JWTSecret = val
	}
	if val := os.Getenv(EnvPrefix + "TOKEN_EXPIRY"); val != "" {
		c.TokenExpiryRaw = val
	}
	if val := os.Getenv(EnvPrefix + "REQUEST_TIMEOUT"); val != "" {
		c.RequestTimeoutRaw = val
	}
	if val := os.Getenv(EnvPrefix + "CORS_ORIGINS"); val != "" {
		c.CORSOrigins = val
	}
}

func (c *Config) parseDurations() error {
	if c.TokenExpiryRaw != "" {
		d, err := time.ParseDuration(c.TokenExpiryRaw)
		if err != nil {
			return fmt.Errorf("invalid token_expiry %q: %w", c.TokenExpiryRaw, err)
		}
		c.TokenExpiry = d
	}
	if c.RequestTimeoutRaw != "" {
		d, err := time.ParseDuration(c.RequestTimeoutRaw)
		if err != nil {
			return fmt.Errorf("invalid request_timeout %q: %w", c.RequestTimeoutRaw, err)
		}
		c.RequestTimeout = d
	}
	return nil
}

// Validate checks that the configuration can be used to start the server
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("jwt_secret must not be empty")
	}
	if c.TokenExpiry <= 0 {
		return errors.New("token_expiry must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	if c.DatabasePath == "" {
		return errors.New("database_path must not be empty")
	}
	return nil
}

// AllowedOrigins splits CORSOrigins into a list
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// Save saves the current configuration to a file
func (c *Config) Save(path string) error {
	c.TokenExpiryRaw = c.TokenExpiry.String()
	c.RequestTimeoutRaw = c.RequestTimeout.String()

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
