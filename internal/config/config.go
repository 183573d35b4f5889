package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"hdhr-tui/internal/lineup"
)

// Environment variables that override the config file.
const (
	EnvConfig    = "HDHR_CONFIG"
	EnvLineupURL = "HDHR_LINEUP_URL"
	EnvPlayer    = "HDHR_PLAYER"
	EnvLogLevel  = "HDHR_LOG_LEVEL"
	EnvLogFile   = "HDHR_LOG_FILE"
)

const (
	appDir          = "hdhr-tui"
	defaultTheme    = "vintage"
	defaultLogLevel = "info"
)

// Config holds application configuration read from config.toml.
// An empty Player means the first installed default player is used.
type Config struct {
	LineupURL string `toml:"lineup_url"`
	Player    string `toml:"player"`
	Theme     string `toml:"theme"`
	LogLevel  string `toml:"log_level"`
	LogFile   string `toml:"log_file"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		LineupURL: lineup.DefaultURL,
		Theme:     defaultTheme,
		LogLevel:  defaultLogLevel,
		LogFile:   DefaultLogPath(),
	}
}

// DefaultPath returns ~/.config/hdhr-tui/config.toml (or the platform equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, "config.toml"), nil
}

// DefaultLogPath returns the log file location under the user cache dir, or
// "" when there is none.
func DefaultLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appDir, appDir+".log")
}

// ResolvePath expands path, falling back to DefaultPath when it is blank.
func ResolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultPath()
	}
	return expandPath(path)
}

// Load reads the config at path, falling back to defaults when the file is
// missing. Environment variables are applied on top of the file.
func Load(path string) (Config, error) {
	resolved, err := ResolvePath(path)
	if err != nil {
		return Config{}, fmt.Errorf("resolve config path: %w", err)
	}

	var raw Config
	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer func() { _ = file.Close() }()
		data, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	applyEnv(&raw)
	return normalize(raw)
}

func applyEnv(cfg *Config) {
	overrides := []struct {
		env   string
		field *string
	}{
		{EnvLineupURL, &cfg.LineupURL},
		{EnvPlayer, &cfg.Player},
		{EnvLogLevel, &cfg.LogLevel},
		{EnvLogFile, &cfg.LogFile},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.env)); v != "" {
			*o.field = v
		}
	}
}

func normalize(raw Config) (Config, error) {
	cfg := Default()

	if v := strings.TrimSpace(raw.LineupURL); v != "" {
		cfg.LineupURL = v
	}
	if err := lineup.ValidateURL(cfg.LineupURL); err != nil {
		return Config{}, fmt.Errorf("invalid lineup_url: %w", err)
	}

	if v := strings.TrimSpace(raw.Player); v != "" {
		if strings.HasPrefix(v, "~") {
			v = mustExpand(v)
		}
		cfg.Player = v
	}

	if v := strings.TrimSpace(raw.Theme); v != "" {
		cfg.Theme = v
	}

	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("invalid log_level: %w", err)
	}

	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}

	return cfg, nil
}

// SaveTheme persists the theme slug to the config file at path, preserving
// any other keys that may exist.
func SaveTheme(path, slug string) error {
	resolved, err := ResolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	raw := make(map[string]any)
	data, err := os.ReadFile(resolved)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read config: %w", err)
		}
	} else if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	raw["theme"] = slug

	out, err := toml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(resolved, out, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
