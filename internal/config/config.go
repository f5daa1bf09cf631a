// Package config handles the XDG configuration directory, its files and
// KBOARD_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "kboard"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "KBOARD"

	// ConfigFile is the YAML settings filename.
	ConfigFile = "config.yaml"

	// EnvFile holds KBOARD_* assignments loaded below the real environment.
	EnvFile = ".env"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// DefaultTimeout bounds a single Board Store call.
	DefaultTimeout = 5 * time.Second

	// DefaultCacheTTL is how long a cached snapshot stays valid.
	DefaultCacheTTL = 30 * time.Second
)

// OAuth holds the OAuth2 client settings used by login and token refresh.
type OAuth struct {
	ClientID     string   `mapstructure:"client_id" json:"client_id"`
	ClientSecret string   `mapstructure:"client_secret" json:"client_secret"`
	AuthURL      string   `mapstructure:"auth_url" json:"auth_url"`
	TokenURL     string   `mapstructure:"token_url" json:"token_url"`
	Scopes       []string `mapstructure:"scopes" json:"scopes"`
}

// Configured reports whether enough is set to run an authorization flow.
func (o OAuth) Configured() bool {
	return o.ClientID != "" && o.AuthURL != "" && o.TokenURL != ""
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `mapstructure:"-"`

	// Debug enables debug logging.
	Debug bool `mapstructure:"-"`

	// Quiet suppresses informational output.
	Quiet bool `mapstructure:"-"`

	BaseURL  string        `mapstructure:"base_url"`
	Token    string        `mapstructure:"token"`
	Timeout  time.Duration `mapstructure:"timeout"`
	RedisURL string        `mapstructure:"redis_url"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	LogFile  string        `mapstructure:"log_file"`
	OAuth    OAuth         `mapstructure:"oauth"`
}

// keys lists every setting with its default. Viper only binds environment
// variables for keys it knows about.
var keys = map[string]any{
	"base_url":            "",
	"token":               "",
	"timeout":             DefaultTimeout,
	"redis_url":           "",
	"cache_ttl":           DefaultCacheTTL,
	"log_file":            "",
	"oauth.client_id":     "",
	"oauth.client_secret": "",
	"oauth.auth_url":      "",
	"oauth.token_url":     "",
	"oauth.scopes":        []string{},
}

// New creates a Config with defaults and the default or specified config
// directory. It reads no files; see Load.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:      dir,
		Timeout:  DefaultTimeout,
		CacheTTL: DefaultCacheTTL,
	}, nil
}

// Load builds a Config from, lowest precedence first: defaults, config.yaml,
// .env and the process environment.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	for key, def := range keys {
		v.SetDefault(key, def)
	}

	path := cfg.ConfigPath()
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvFile(v); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	return cfg, nil
}

// applyEnvFile layers .env values over the config file. Variables already
// set in the process environment win, and the process environment is not
// modified.
func (c *Config) applyEnvFile(v *viper.Viper) error {
	values, err := godotenv.Read(c.EnvPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", c.EnvPath(), err)
	}
	for key := range keys {
		name := EnvName(key)
		val, ok := values[name]
		if !ok {
			continue
		}
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if key == "oauth.scopes" {
			v.Set(key, strings.Fields(strings.ReplaceAll(val, ",", " ")))
			continue
		}
		v.Set(key, val)
	}
	return nil
}

// EnvName returns the environment variable overriding key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// EnvPath returns the path to the .env file.
func (c *Config) EnvPath() string {
	return filepath.Join(c.Dir, EnvFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
