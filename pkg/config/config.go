// Package config loads the project configuration from .gmodts/config.yaml.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/gmodts/pkg/util"
)

// ConfigFileName is the name of the configuration file.
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the configuration directory.
const ConfigDirName = ".gmodts"

// Config holds all gmodts configuration.
type Config struct {
	Wiki  WikiConfig  `yaml:"wiki"`
	Cache CacheConfig `yaml:"cache"`
	Paths PathsConfig `yaml:"paths"`
	Log   LogConfig   `yaml:"log"`
}

// WikiConfig configures page fetching.
type WikiConfig struct {
	BaseURL           string        `yaml:"base_url"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	Retries           int           `yaml:"retries"`
	Timeout           time.Duration `yaml:"timeout"`
	Concurrency       int           `yaml:"concurrency"`
}

// CacheConfig configures the on-disk page cache and the in-process memo.
type CacheConfig struct {
	Dir      string        `yaml:"dir"`
	TTL      time.Duration `yaml:"ttl"`
	MemoSize int           `yaml:"memo_size"`
}

// PathsConfig locates inputs and outputs. Relative paths are resolved
// against the project root, the directory holding .gmodts.
type PathsConfig struct {
	Mods      string `yaml:"mods"`
	Overrides string `yaml:"overrides"`
	Extras    string `yaml:"extras"`
	Output    string `yaml:"output"`
	Model     string `yaml:"model"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ErrConfigNotFound is returned when no config directory can be found.
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .gmodts/config.yaml, searching upward from
// workDir. Without a config directory the defaults are returned.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return Default(), nil
	}
	return LoadFromPath(filepath.Join(configDir, ConfigFileName))
}

// LoadFromPath reads config from a specific path, merges it over the
// defaults and validates the result. A missing file yields the defaults.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, Default())
	if err := Validate(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// FindConfigDir locates the .gmodts directory by walking up from startDir.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// ProjectRoot returns the directory holding .gmodts above workDir, or
// workDir itself when there is none.
func ProjectRoot(workDir string) string {
	if dir, err := FindConfigDir(workDir); err == nil {
		return filepath.Dir(dir)
	}
	if abs, err := filepath.Abs(workDir); err == nil {
		return abs
	}
	return workDir
}

// EnsureConfigDir creates the .gmodts directory if it doesn't exist.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)
	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return configDir, nil
}

// Validate checks that config values are usable.
func Validate(cfg *Config) error {
	u, err := url.Parse(cfg.Wiki.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: wiki.base_url must be an absolute URL, got %q",
			ErrInvalidConfig, cfg.Wiki.BaseURL)
	}
	if cfg.Wiki.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: wiki.requests_per_second must be non-negative, got %f",
			ErrInvalidConfig, cfg.Wiki.RequestsPerSecond)
	}
	if cfg.Wiki.Burst < 0 {
		return fmt.Errorf("%w: wiki.burst must be non-negative, got %d",
			ErrInvalidConfig, cfg.Wiki.Burst)
	}
	if cfg.Wiki.Retries < 0 {
		return fmt.Errorf("%w: wiki.retries must be non-negative, got %d",
			ErrInvalidConfig, cfg.Wiki.Retries)
	}
	if cfg.Wiki.Timeout <= 0 {
		return fmt.Errorf("%w: wiki.timeout must be positive, got %s",
			ErrInvalidConfig, cfg.Wiki.Timeout)
	}
	if cfg.Wiki.Concurrency < 0 {
		return fmt.Errorf("%w: wiki.concurrency must be non-negative, got %d",
			ErrInvalidConfig, cfg.Wiki.Concurrency)
	}

	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("%w: cache.ttl must be non-negative, got %s",
			ErrInvalidConfig, cfg.Cache.TTL)
	}
	if cfg.Cache.MemoSize <= 0 {
		return fmt.Errorf("%w: cache.memo_size must be positive, got %d",
			ErrInvalidConfig, cfg.Cache.MemoSize)
	}

	if cfg.Paths.Output == "" {
		return fmt.Errorf("%w: paths.output is required", ErrInvalidConfig)
	}

	if !util.ValidLogLevel(cfg.Log.Level) {
		return fmt.Errorf("%w: log.level must be one of debug, info, warn, error, got %q",
			ErrInvalidConfig, cfg.Log.Level)
	}
	if !util.ValidLogFormat(cfg.Log.Format) {
		return fmt.Errorf("%w: log.format must be text or json, got %q",
			ErrInvalidConfig, cfg.Log.Format)
	}
	return nil
}

// SaveDefault writes the default configuration to .gmodts/config.yaml in
// workDir. An existing file is never overwritten.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# gmodts configuration\n# Relative paths are resolved against the directory holding .gmodts.\n\n"
	if err := os.WriteFile(configPath, append([]byte(header), data...), 0o644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return configPath, nil
}

// Resolve returns p made absolute against root. Empty paths stay empty.
func Resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
