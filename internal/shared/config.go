package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values loaded from the config file.
const (
	EnvToken         = "SPOTDL_TOKEN"
	EnvToolPath      = "SPOTDL_PATH"
	EnvMusicDir      = "MUSIC_DIR"
	EnvPort          = "PORT"
	EnvRedisHost     = "REDIS_HOST"
	EnvRedisPort     = "REDIS_PORT"
	EnvRedisUser     = "REDIS_USERNAME"
	EnvRedisPassword = "REDIS_PASSWORD"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Auth       AuthConfig       `toml:"auth"`
	Downloader DownloaderConfig `toml:"downloader"`
	Session    SessionConfig    `toml:"session"`
	Database   DatabaseConfig   `toml:"database"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// AuthConfig holds the shared access secret and the cookie signing key.
//
// An empty SessionSecret makes the server generate a random key at startup,
// which invalidates every session on restart.
type AuthConfig struct {
	Token         string `toml:"token"`
	SessionSecret string `toml:"session_secret"`
}

// DownloaderConfig describes the external downloader and where it writes.
type DownloaderConfig struct {
	Path        string `toml:"path"`
	MusicDir    string `toml:"music_dir"`
	Format      string `toml:"format"`
	Bitrate     string `toml:"bitrate"`
	Lyrics      string `toml:"lyrics"`
	LineDelayMS int    `toml:"line_delay_ms"`
}

// SessionConfig selects the session backend. Redis is used when RedisHost is set.
type SessionConfig struct {
	MaxAge        int    `toml:"max_age"`
	RedisHost     string `toml:"redis_host"`
	RedisPort     string `toml:"redis_port"`
	RedisUsername string `toml:"redis_username"`
	RedisPassword string `toml:"redis_password"`
}

// DatabaseConfig contains database connection settings. An empty Path disables download history.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LineDelay returns the per-line relay throttle.
func (c DownloaderConfig) LineDelay() time.Duration {
	return time.Duration(c.LineDelayMS) * time.Millisecond
}

// SessionTTL returns how long an authenticated session stays valid.
func (c SessionConfig) SessionTTL() time.Duration {
	return time.Duration(c.MaxAge) * time.Second
}

// Addr returns the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ResolveConfig loads the config at path when it exists and falls back to defaults otherwise.
// The .env file (if any) and environment overrides are applied on top.
func ResolveConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		}
	}

	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	config.ApplyEnv()
	return config, nil
}

// LoadDotEnv loads variables from a dotenv file without overriding ones already set.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides config values with any non-empty environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvToken); v != "" {
		c.Auth.Token = v
	}
	if v := os.Getenv(EnvToolPath); v != "" {
		c.Downloader.Path = v
	}
	if v := os.Getenv(EnvMusicDir); v != "" {
		c.Downloader.MusicDir = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv(EnvRedisHost); v != "" {
		c.Session.RedisHost = v
	}
	if v := os.Getenv(EnvRedisPort); v != "" {
		c.Session.RedisPort = v
	}
	if v := os.Getenv(EnvRedisUser); v != "" {
		c.Session.RedisUsername = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		c.Session.RedisPassword = v
	}
}

// Validate reports settings the web front end cannot run without.
func (c *Config) Validate() error {
	if c.Auth.Token == "" {
		return fmt.Errorf("%w: access token is empty (set %s or auth.token)", ErrMissingCredentials, EnvToken)
	}
	if c.Downloader.Path == "" {
		return fmt.Errorf("%w: downloader path is empty (set %s or downloader.path)", ErrInvalidConfig, EnvToolPath)
	}
	if c.Downloader.MusicDir == "" {
		return fmt.Errorf("%w: downloader.music_dir is empty", ErrInvalidConfig)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: invalid server port %d", ErrInvalidConfig, c.Server.Port)
	}
	if c.Session.MaxAge <= 0 {
		return fmt.Errorf("%w: session.max_age must be positive", ErrInvalidConfig)
	}
	if c.Downloader.LineDelayMS < 0 {
		return fmt.Errorf("%w: downloader.line_delay_ms must not be negative", ErrInvalidConfig)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, ErrInvalidArgument)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
