package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var serverEnvVars = []string{"API_PORT", "DB_PATH", "JWT_SECRET", "TOKEN_TTL", "LOG_LEVEL", "LOG_FORMAT"}

var clientEnvVars = []string{
	"DEVNOTES_API_URL", "DEVNOTES_SESSION_PATH", "DEVNOTES_HTTP_TIMEOUT",
	"DEVNOTES_LOG_FILE", "LOG_LEVEL", "LOG_FORMAT",
}

// isolate moves the test into an empty directory and clears keys so neither
// a developer .env nor the shell environment leaks in.
func isolate(t *testing.T, keys []string) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func(*testing.T)
		wantErr     bool
		checkConfig func(*Config) bool
	}{
		{
			name: "defaults",
			setupEnv: func(t *testing.T) {
				t.Setenv("JWT_SECRET", "s3cret")
			},
			checkConfig: func(cfg *Config) bool {
				return cfg.APIPort == "5001" &&
					cfg.DBPath == "./data/devnotes.db" &&
					cfg.JWTSecret == "s3cret" &&
					cfg.TokenTTL == 24*time.Hour &&
					cfg.LogLevel == slog.LevelInfo &&
					cfg.LogFormat == "text"
			},
		},
		{
			name:     "missing JWT_SECRET",
			setupEnv: func(t *testing.T) {},
			wantErr:  true,
		},
		{
			name: "custom values",
			setupEnv: func(t *testing.T) {
				t.Setenv("JWT_SECRET", "s3cret")
				t.Setenv("API_PORT", "8080")
				t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "custom", "db.db"))
				t.Setenv("TOKEN_TTL", "90m")
				t.Setenv("LOG_LEVEL", "debug")
				t.Setenv("LOG_FORMAT", "json")
			},
			checkConfig: func(cfg *Config) bool {
				return cfg.APIPort == "8080" &&
					filepath.Base(cfg.DBPath) == "db.db" &&
					cfg.TokenTTL == 90*time.Minute &&
					cfg.LogLevel == slog.LevelDebug &&
					cfg.LogFormat == "json"
			},
		},
		{
			name: "invalid TOKEN_TTL",
			setupEnv: func(t *testing.T) {
				t.Setenv("JWT_SECRET", "s3cret")
				t.Setenv("TOKEN_TTL", "one day")
			},
			wantErr: true,
		},
		{
			name: "negative TOKEN_TTL",
			setupEnv: func(t *testing.T) {
				t.Setenv("JWT_SECRET", "s3cret")
				t.Setenv("TOKEN_TTL", "-1h")
			},
			wantErr: true,
		},
		{
			name: "invalid LOG_LEVEL",
			setupEnv: func(t *testing.T) {
				t.Setenv("JWT_SECRET", "s3cret")
				t.Setenv("LOG_LEVEL", "loud")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t, serverEnvVars)
			tt.setupEnv(t)

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if tt.checkConfig != nil && !tt.checkConfig(cfg) {
				t.Errorf("Load() config validation failed: %+v", cfg)
			}
		})
	}
}

func TestLoad_CreatesDataDirectory(t *testing.T) {
	isolate(t, serverEnvVars)

	dbPath := filepath.Join(t.TempDir(), "test", "db.db")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_PATH", dbPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
		t.Errorf("Load() should create data directory: %v", err)
	}
	if cfg.DBPath != dbPath {
		t.Errorf("Load() DBPath = %v, want %v", cfg.DBPath, dbPath)
	}
}

func TestLoad_ReadsDotEnvFromParent(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".env"), []byte("JWT_SECRET=from-dotenv\nAPI_PORT=7000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, key := range serverEnvVars {
		t.Setenv(key, "")
		// godotenv does not override variables that exist, even when empty.
		_ = os.Unsetenv(key)
	}
	t.Setenv("DB_PATH", filepath.Join(root, "db.db"))
	t.Chdir(nested)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.JWTSecret != "from-dotenv" || cfg.APIPort != "7000" {
		t.Errorf("Load() = %+v, want values from .env", cfg)
	}
}

func TestLoadClient(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func(*testing.T)
		wantErr     bool
		checkConfig func(*testing.T, *ClientConfig)
	}{
		{
			name:     "defaults",
			setupEnv: func(t *testing.T) {},
			checkConfig: func(t *testing.T, cfg *ClientConfig) {
				if cfg.APIURL != "http://localhost:5001/api" {
					t.Errorf("APIURL = %q", cfg.APIURL)
				}
				if cfg.HTTPTimeout != 10*time.Second {
					t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
				}
				if !strings.HasSuffix(cfg.SessionPath, filepath.Join("devnotes", "session.yaml")) {
					t.Errorf("SessionPath = %q", cfg.SessionPath)
				}
				if cfg.LogFile != "" {
					t.Errorf("LogFile = %q, want empty", cfg.LogFile)
				}
			},
		},
		{
			name: "custom values",
			setupEnv: func(t *testing.T) {
				t.Setenv("DEVNOTES_API_URL", "https://notes.example.com/api/")
				t.Setenv("DEVNOTES_SESSION_PATH", "/tmp/s.yaml")
				t.Setenv("DEVNOTES_HTTP_TIMEOUT", "3s")
				t.Setenv("DEVNOTES_LOG_FILE", "/tmp/devnotes.log")
			},
			checkConfig: func(t *testing.T, cfg *ClientConfig) {
				if cfg.APIURL != "https://notes.example.com/api" {
					t.Errorf("APIURL = %q, want trailing slash trimmed", cfg.APIURL)
				}
				if cfg.SessionPath != "/tmp/s.yaml" || cfg.HTTPTimeout != 3*time.Second || cfg.LogFile != "/tmp/devnotes.log" {
					t.Errorf("LoadClient() = %+v", cfg)
				}
			},
		},
		{
			name: "invalid timeout",
			setupEnv: func(t *testing.T) {
				t.Setenv("DEVNOTES_HTTP_TIMEOUT", "soon")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t, clientEnvVars)
			tt.setupEnv(t)

			cfg, err := LoadClient()
			if tt.wantErr {
				if err == nil {
					t.Error("LoadClient() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadClient() unexpected error: %v", err)
			}
			tt.checkConfig(t, cfg)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn, "json")

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("NewLogger() logged below level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"key":"value"`) {
		t.Errorf("NewLogger() json output = %s", out)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue string
		want         string
	}{
		{name: "env var set", value: "set-value", defaultValue: "default", want: "set-value"},
		{name: "empty env var uses default", value: "", defaultValue: "default", want: "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_ENV_VAR", tt.value)
			got := getEnv("TEST_ENV_VAR", tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", "TEST_ENV_VAR", tt.defaultValue, got, tt.want)
			}
		})
	}
}
