package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Server.Port != 5000 {
			t.Errorf("expected server port 5000, got %d", config.Server.Port)
		}

		if config.Downloader.Path != "/usr/local/bin/spotdl" {
			t.Errorf("expected downloader path /usr/local/bin/spotdl, got %s", config.Downloader.Path)
		}

		if config.Downloader.MusicDir != "/music" {
			t.Errorf("expected music dir /music, got %s", config.Downloader.MusicDir)
		}

		if config.Downloader.Format != "flac" || config.Downloader.Bitrate != "320k" || config.Downloader.Lyrics != "genius" {
			t.Errorf("unexpected downloader defaults: %+v", config.Downloader)
		}

		if config.Downloader.LineDelay() != 10*time.Millisecond {
			t.Errorf("expected 10ms line delay, got %v", config.Downloader.LineDelay())
		}

		if config.Session.SessionTTL() != 24*time.Hour {
			t.Errorf("expected 24h session ttl, got %v", config.Session.SessionTTL())
		}

		if config.Auth.Token != "" {
			t.Errorf("expected empty default token, got %q", config.Auth.Token)
		}

		if config.Database.Path != "" {
			t.Errorf("expected history disabled by default, got %s", config.Database.Path)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Downloader.Path != DefaultConfig().Downloader.Path {
			t.Errorf("created config downloader path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[server]
host = "127.0.0.1"
port = 8080

[auth]
token = "s3cret"

[downloader]
path = "/opt/spotdl"
music_dir = "/srv/music"
line_delay_ms = 0
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Server.Addr() != "127.0.0.1:8080" {
			t.Errorf("expected addr 127.0.0.1:8080, got %s", config.Server.Addr())
		}

		if config.Auth.Token != "s3cret" {
			t.Errorf("expected token s3cret, got %s", config.Auth.Token)
		}

		if config.Downloader.MusicDir != "/srv/music" {
			t.Errorf("expected music dir /srv/music, got %s", config.Downloader.MusicDir)
		}

		if config.Downloader.LineDelay() != 0 {
			t.Errorf("expected line delay 0, got %v", config.Downloader.LineDelay())
		}

		if config.Downloader.Format != "flac" {
			t.Errorf("expected missing keys to keep defaults, got format %q", config.Downloader.Format)
		}
	})

	t.Run("LoadConfig with invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[server\nport = "), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv(EnvToken, "from-env")
		t.Setenv(EnvToolPath, "/env/spotdl")
		t.Setenv(EnvMusicDir, "/env/music")
		t.Setenv(EnvPort, "9090")
		t.Setenv(EnvRedisHost, "redis.local")

		config := DefaultConfig()
		config.ApplyEnv()

		if config.Auth.Token != "from-env" {
			t.Errorf("expected token from env, got %s", config.Auth.Token)
		}
		if config.Downloader.Path != "/env/spotdl" {
			t.Errorf("expected tool path from env, got %s", config.Downloader.Path)
		}
		if config.Downloader.MusicDir != "/env/music" {
			t.Errorf("expected music dir from env, got %s", config.Downloader.MusicDir)
		}
		if config.Server.Port != 9090 {
			t.Errorf("expected port 9090, got %d", config.Server.Port)
		}
		if config.Session.RedisHost != "redis.local" {
			t.Errorf("expected redis host from env, got %s", config.Session.RedisHost)
		}
	})

	t.Run("ApplyEnv ignores malformed port", func(t *testing.T) {
		t.Setenv(EnvPort, "not-a-port")

		config := DefaultConfig()
		config.ApplyEnv()

		if config.Server.Port != 5000 {
			t.Errorf("expected default port to survive, got %d", config.Server.Port)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name   string
			mutate func(*Config)
			want   error
		}{
			{name: "valid", mutate: func(c *Config) { c.Auth.Token = "x" }},
			{name: "missing token", mutate: func(c *Config) {}, want: ErrMissingCredentials},
			{name: "missing tool path", mutate: func(c *Config) { c.Auth.Token = "x"; c.Downloader.Path = "" }, want: ErrInvalidConfig},
			{name: "missing music dir", mutate: func(c *Config) { c.Auth.Token = "x"; c.Downloader.MusicDir = "" }, want: ErrInvalidConfig},
			{name: "bad port", mutate: func(c *Config) { c.Auth.Token = "x"; c.Server.Port = 70000 }, want: ErrInvalidConfig},
			{name: "zero session max age", mutate: func(c *Config) { c.Auth.Token = "x"; c.Session.MaxAge = 0 }, want: ErrInvalidConfig},
			{name: "negative session max age", mutate: func(c *Config) { c.Auth.Token = "x"; c.Session.MaxAge = -5 }, want: ErrInvalidConfig},
			{name: "negative delay", mutate: func(c *Config) { c.Auth.Token = "x"; c.Downloader.LineDelayMS = -1 }, want: ErrInvalidConfig},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)
				err := config.Validate()
				if tt.want == nil && err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if tt.want != nil && !errors.Is(err, tt.want) {
					t.Fatalf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})

	t.Run("ResolveConfig", func(t *testing.T) {
		t.Run("missing file falls back to defaults", func(t *testing.T) {
			t.Setenv(EnvToken, "tok")
			config, err := ResolveConfig(filepath.Join(t.TempDir(), "absent.toml"))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if config.Auth.Token != "tok" {
				t.Errorf("expected env token, got %q", config.Auth.Token)
			}
			if config.Server.Port != 5000 {
				t.Errorf("expected default port, got %d", config.Server.Port)
			}
		})

		t.Run("env overrides file", func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(configPath, []byte("[auth]\ntoken = \"file\"\n"), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			t.Setenv(EnvToken, "env")

			config, err := ResolveConfig(configPath)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if config.Auth.Token != "env" {
				t.Errorf("expected env to win, got %q", config.Auth.Token)
			}
		})
	})

	t.Run("LoadDotEnv", func(t *testing.T) {
		t.Run("missing file is ignored", func(t *testing.T) {
			if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
				t.Errorf("expected nil, got %v", err)
			}
		})

		t.Run("loads unset variables", func(t *testing.T) {
			envPath := filepath.Join(t.TempDir(), ".env")
			if err := os.WriteFile(envPath, []byte("SPOTWEB_TEST_DOTENV=loaded\n"), 0644); err != nil {
				t.Fatalf("failed to write .env: %v", err)
			}
			t.Cleanup(func() { os.Unsetenv("SPOTWEB_TEST_DOTENV") })

			if err := LoadDotEnv(envPath); err != nil {
				t.Fatalf("failed to load .env: %v", err)
			}
			if got := os.Getenv("SPOTWEB_TEST_DOTENV"); got != "loaded" {
				t.Errorf("expected loaded, got %q", got)
			}
		})
	})
}
