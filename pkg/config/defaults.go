package config

import (
	"time"

	"github.com/gnana997/gmodts/pkg/wiki"
)

// Default returns configuration with the built-in defaults. Missing fields
// of a loaded file take these values.
func Default() *Config {
	return &Config{
		Wiki: WikiConfig{
			BaseURL:           wiki.DefaultBaseURL,
			RequestsPerSecond: 8,
			Burst:             4,
			Retries:           3,
			Timeout:           30 * time.Second,
		},
		Cache: CacheConfig{
			Dir:      ".gmodts/cache",
			TTL:      24 * time.Hour,
			MemoSize: 4096,
		},
		Paths: PathsConfig{
			Overrides: "overrides",
			Extras:    "extras",
			Output:    "output/gmod.d.ts",
			Model:     ".gmodts/model.json",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Merge merges loaded config with defaults. Non-zero values from loaded
// take precedence. Returns a new Config.
func Merge(loaded, defaults *Config) *Config {
	return &Config{
		Wiki:  mergeWikiConfig(loaded.Wiki, defaults.Wiki),
		Cache: mergeCacheConfig(loaded.Cache, defaults.Cache),
		Paths: mergePathsConfig(loaded.Paths, defaults.Paths),
		Log:   mergeLogConfig(loaded.Log, defaults.Log),
	}
}

func mergeWikiConfig(loaded, defaults WikiConfig) WikiConfig {
	return WikiConfig{
		BaseURL:           or(loaded.BaseURL, defaults.BaseURL),
		RequestsPerSecond: or(loaded.RequestsPerSecond, defaults.RequestsPerSecond),
		Burst:             or(loaded.Burst, defaults.Burst),
		Retries:           or(loaded.Retries, defaults.Retries),
		Timeout:           or(loaded.Timeout, defaults.Timeout),
		Concurrency:       or(loaded.Concurrency, defaults.Concurrency),
	}
}

func mergeCacheConfig(loaded, defaults CacheConfig) CacheConfig {
	return CacheConfig{
		Dir:      or(loaded.Dir, defaults.Dir),
		TTL:      or(loaded.TTL, defaults.TTL),
		MemoSize: or(loaded.MemoSize, defaults.MemoSize),
	}
}

func mergePathsConfig(loaded, defaults PathsConfig) PathsConfig {
	return PathsConfig{
		Mods:      or(loaded.Mods, defaults.Mods),
		Overrides: or(loaded.Overrides, defaults.Overrides),
		Extras:    or(loaded.Extras, defaults.Extras),
		Output:    or(loaded.Output, defaults.Output),
		Model:     or(loaded.Model, defaults.Model),
	}
}

func mergeLogConfig(loaded, defaults LogConfig) LogConfig {
	return LogConfig{
		Level:  or(loaded.Level, defaults.Level),
		Format: or(loaded.Format, defaults.Format),
	}
}

// or returns v unless it is the zero value.
func or[T comparable](v, fallback T) T {
	var zero T
	if v == zero {
		return fallback
	}
	return v
}
