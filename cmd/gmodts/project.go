package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gnana997/gmodts/pkg/config"
	"github.com/gnana997/gmodts/pkg/mods"
	"github.com/gnana997/gmodts/pkg/overrides"
	"github.com/gnana997/gmodts/pkg/parser/queries"
	"github.com/gnana997/gmodts/pkg/util"
	"github.com/gnana997/gmodts/pkg/wiki"
)

// project is the resolved configuration of one invocation.
type project struct {
	root   string
	cfg    *config.Config
	logger *slog.Logger
}

// loadProject reads the config (--config, or .gmodts above the working
// directory), applies the log flags and installs the process logger.
func loadProject() (*project, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	var cfg *config.Config
	root := config.ProjectRoot(wd)
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
		root = rootForConfigFile(configPath)
	} else {
		cfg, err = config.Load(wd)
	}
	if err != nil {
		return nil, err
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	logger := util.NewLogger(util.LoggerConfig{
		Level:  util.LogLevel(cfg.Log.Level),
		Format: util.LogFormat(cfg.Log.Format),
		Output: os.Stderr,
	})
	util.SetDefault(logger)

	return &project{root: root, cfg: cfg, logger: logger}, nil
}

// rootForConfigFile returns the project root for an explicit config file:
// the parent of its .gmodts directory, else the file's own directory.
func rootForConfigFile(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Dir(path)
	}
	dir := filepath.Dir(abs)
	if filepath.Base(dir) == config.ConfigDirName {
		return filepath.Dir(dir)
	}
	return dir
}

// path resolves a configured path against the project root.
func (p *project) path(rel string) string {
	return config.Resolve(p.root, rel)
}

// Replaceable for testing.
var sourceFunc = openWikiSource

// openWikiSource builds the page source chain: an in-process memo over the
// on-disk cache over the HTTP client. Offline runs have no client and fail
// on any page missing from the cache. The returned func closes the cache.
func openWikiSource(p *project, offline bool) (wiki.Source, func() error, error) {
	cache, err := wiki.OpenDiskCache(p.path(p.cfg.Cache.Dir))
	if err != nil {
		return nil, nil, err
	}

	var upstream wiki.Source
	if !offline {
		client, err := wiki.NewClient(wiki.ClientConfig{
			BaseURL:           p.cfg.Wiki.BaseURL,
			Timeout:           p.cfg.Wiki.Timeout,
			RequestsPerSecond: p.cfg.Wiki.RequestsPerSecond,
			Burst:             p.cfg.Wiki.Burst,
			Retries:           p.cfg.Wiki.Retries,
			Logger:            p.logger,
		})
		if err != nil {
			cache.Close()
			return nil, nil, err
		}
		upstream = client
	}

	cached := wiki.NewCachedSource(upstream, cache, wiki.CachedSourceOptions{
		TTL:     p.cfg.Cache.TTL,
		Offline: offline,
		Logger:  p.logger,
	})
	memo, err := wiki.NewMemoSource(cached, p.cfg.Cache.MemoSize, p.logger)
	if err != nil {
		cache.Close()
		return nil, nil, err
	}
	return memo, cache.Close, nil
}

// loadMods returns the built-in rules followed by the project's mods file.
func (p *project) loadMods() (*mods.DB, error) {
	db, err := mods.Defaults()
	if err != nil {
		return nil, fmt.Errorf("load built-in mods: %w", err)
	}
	if p.cfg.Paths.Mods == "" {
		return db, nil
	}
	user, err := mods.Load(p.path(p.cfg.Paths.Mods))
	if err != nil {
		return nil, err
	}
	p.logger.Debug("loaded mods", "file", p.cfg.Paths.Mods, "rules", user.Len())
	return mods.Merge(db, user), nil
}

// openOverrides creates the override store. qm is shared with the output
// syntax check.
func (p *project) openOverrides(qm *queries.QueryManager) *overrides.DirStore {
	return overrides.NewDirStore(overrides.Config{
		OverridesDir: p.path(p.cfg.Paths.Overrides),
		ExtrasDir:    p.path(p.cfg.Paths.Extras),
		Queries:      qm,
		Logger:       p.logger,
	})
}
