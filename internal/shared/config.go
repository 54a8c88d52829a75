package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Spotify  SpotifyConfig  `toml:"spotify"`
	Server   ServerConfig   `toml:"server"`
	Auth     AuthConfig     `toml:"auth"`
	API      APIConfig      `toml:"api"`
	Export   ExportConfig   `toml:"export"`
	Database DatabaseConfig `toml:"database"`
}

// SpotifyConfig contains the Spotify application and endpoint settings.
type SpotifyConfig struct {
	ClientID string `toml:"client_id"`
	Scope    string `toml:"scope"`
	AuthURL  string `toml:"auth_url"`
	TokenURL string `toml:"token_url"`
	APIURL   string `toml:"api_url"`
}

// ServerConfig contains the callback listener settings.
//
// Host, port and path must match the redirect URI registered with the Spotify application.
type ServerConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	RedirectPath string `toml:"redirect_path"`
}

// AuthConfig contains authorization flow settings.
type AuthConfig struct {
	Timeout time.Duration `toml:"timeout"`
}

// APIConfig contains settings for the paginated API client.
type APIConfig struct {
	MaxTries   int           `toml:"max_tries"`
	RetryDelay time.Duration `toml:"retry_delay"`
	RateLimit  float64       `toml:"rate_limit"`
}

// ExportConfig contains defaults for the export command.
type ExportConfig struct {
	File    string `toml:"file"`
	Format  string `toml:"format"`
	Dump    string `toml:"dump"`
	Workers int    `toml:"workers"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// Addr returns the host:port the callback listener binds to.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// RedirectURI returns the redirect URI sent to the provider.
func (s ServerConfig) RedirectURI() string {
	path := s.RedirectPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("http://%s%s", s.Addr(), path)
}

// Validate reports configuration values the authorization flow cannot run without.
func (c *Config) Validate() error {
	if c.Spotify.ClientID == "" {
		return fmt.Errorf("%w: spotify.client_id must be set", ErrMissingCredentials)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.API.MaxTries < 0 {
		return fmt.Errorf("%w: api.max_tries must not be negative", ErrInvalidConfig)
	}
	if c.Export.Workers < 0 {
		return fmt.Errorf("%w: export.workers must not be negative", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys absent from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// LoadOrDefault loads the config at path, falling back to [DefaultConfig] only when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
