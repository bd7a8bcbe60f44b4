package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds termnote's runtime settings.
type Config struct {
	StatePath      string `split_words:"true"`
	LogPath        string `split_words:"true"`
	LogLevel       string `split_words:"true"`
	Shell          string
	WorkingDir     string `split_words:"true"`
	OutputBufferKB int    `split_words:"true"`
	Cols           int
	Rows           int
}

// EnvPrefix namespaces environment overrides, e.g. TERMNOTE_STATE_PATH.
const EnvPrefix = "termnote"

const (
	defaultConfigPath     = "~/.config/termnote/config.toml"
	defaultStatePath      = "~/.local/state/termnote/state.json"
	defaultLogPath        = "~/.local/state/termnote/termnote.log"
	defaultLogLevel       = "info"
	defaultOutputBufferKB = 256
	defaultCols           = 120
	defaultRows           = 32
)

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return defaultConfigPath
}

// Load reads the config file at path (or the default location), applies
// TERMNOTE_* environment overrides and fills defaults. A missing file is not
// an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg, err := readFile(resolved)
	if err != nil {
		return Config{}, err
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file or environment
// overrides exist.
func Default() Config {
	var cfg Config
	_ = cfg.normalize()
	return cfg
}

// OutputBufferBytes returns the terminal output ring size in bytes.
func (c Config) OutputBufferBytes() int {
	return c.OutputBufferKB * 1024
}

func readFile(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		StatePath      string `toml:"state_path"`
		LogPath        string `toml:"log_path"`
		LogLevel       string `toml:"log_level"`
		Shell          string `toml:"shell"`
		WorkingDir     string `toml:"working_dir"`
		OutputBufferKB int    `toml:"output_buffer_kb"`
		Cols           int    `toml:"cols"`
		Rows           int    `toml:"rows"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return Config(raw), nil
}

func (c *Config) normalize() error {
	var err error
	if c.StatePath, err = expandOr(c.StatePath, defaultStatePath); err != nil {
		return fmt.Errorf("state_path: %w", err)
	}
	if c.LogPath, err = expandOr(c.LogPath, defaultLogPath); err != nil {
		return fmt.Errorf("log_path: %w", err)
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	c.Shell = strings.TrimSpace(c.Shell)
	if dir := strings.TrimSpace(c.WorkingDir); dir != "" {
		if c.WorkingDir, err = expandPath(dir); err != nil {
			return fmt.Errorf("working_dir: %w", err)
		}
	}
	if c.OutputBufferKB <= 0 {
		c.OutputBufferKB = defaultOutputBufferKB
	}
	if c.Cols <= 0 {
		c.Cols = defaultCols
	}
	if c.Rows <= 0 {
		c.Rows = defaultRows
	}
	return nil
}

func expandOr(value, fallback string) (string, error) {
	if strings.TrimSpace(value) == "" {
		value = fallback
	}
	return expandPath(value)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
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
