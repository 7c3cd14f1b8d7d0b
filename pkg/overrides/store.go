// Package overrides finds hand-maintained declaration snippets on disk.
//
// Overrides replace the signature of one generated member:
//
//	<overrides>/<folder>/<Container>/<Member>.d.ts
//	<overrides>/<folder>/<Member>.d.ts            (globals)
//
// Extras add members to a container; every file under the container's
// directory is split into members:
//
//	<extras>/<kind>/<Container>/*.d.ts
//
// Path matching is case-insensitive.
package overrides

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/gmodts/pkg/parser"
	"github.com/gnana997/gmodts/pkg/parser/queries"
	"github.com/gnana997/gmodts/pkg/printer"
	"github.com/gnana997/gmodts/pkg/util"
)

// Pattern selects snippet files in both directories.
const Pattern = "**/*.d.ts"

var whitespaceRe = regexp.MustCompile(`\s+`)

// folderFallbacks lists the override folders searched per kind, in order.
var folderFallbacks = map[printer.Kind][]string{
	printer.KindGlobal:    {"global", "namespace"},
	printer.KindInterface: {"interface", "namespace"},
	printer.KindNamespace: {"namespace"},
}

// Config configures a DirStore.
type Config struct {
	// OverridesDir and ExtrasDir may be empty or missing; lookups then
	// find nothing.
	OverridesDir string
	ExtrasDir    string

	// Cache serves file contents. Nil creates a private cache.
	Cache util.FileCache

	// Queries splits extras files into members. Nil creates a private
	// parser and query manager, released by Close.
	Queries *queries.QueryManager

	Logger *slog.Logger
}

// DirStore implements printer.OverrideSource over two directory trees.
//
// The directory index is built on first lookup and rebuilt after
// Invalidate or Reset. Safe for concurrent use.
type DirStore struct {
	overridesDir string
	extrasDir    string

	cache   util.FileCache
	queries *queries.QueryManager
	logger  *slog.Logger

	// owned resources released by Close
	ownCache   bool
	ownParser  *parser.ParserManager
	ownQueries bool

	mu sync.RWMutex
	// overrideIndex maps a lower-cased slash path relative to
	// overridesDir to the file path on disk.
	overrideIndex map[string]string
	// extrasIndex maps lower-cased "kind/container" to its files, sorted.
	extrasIndex map[string][]string
	indexed     bool
}

var _ printer.OverrideSource = (*DirStore)(nil)

// NewDirStore creates a DirStore.
func NewDirStore(cfg Config) *DirStore {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &DirStore{
		overridesDir: cfg.OverridesDir,
		extrasDir:    cfg.ExtrasDir,
		cache:        cfg.Cache,
		queries:      cfg.Queries,
		logger:       logger,
	}
	if s.cache == nil {
		s.cache = util.NewFileCache(&util.FileCacheConfig{MaxFiles: util.DefaultFileCacheConfig().MaxFiles, Logger: logger})
		s.ownCache = true
	}
	if s.queries == nil {
		s.ownParser = parser.NewParserManager(logger)
		s.queries = queries.NewQueryManager(s.ownParser, logger)
		s.ownQueries = true
	}
	return s
}

// Roots returns the configured directories that exist.
func (s *DirStore) Roots() []string {
	var roots []string
	for _, dir := range []string{s.overridesDir, s.extrasDir} {
		if dir == "" {
			continue
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			roots = append(roots, dir)
		}
	}
	return roots
}

// Override returns the replacement signature for one member, prefixed with
// a comment naming its source. Empty files are ignored.
func (s *DirStore) Override(kind printer.Kind, container, member string) (string, bool, error) {
	c := normalize(container)
	m := normalize(member)
	if m == "" || (kind != printer.KindGlobal && c == "") {
		return "", false, nil
	}

	if err := s.ensureIndex(); err != nil {
		return "", false, err
	}

	for _, folder := range folderFallbacks[kind] {
		rel := path.Join(folder, c, m+".d.ts")
		label := path.Join(folder, c, m)

		s.mu.RLock()
		file, ok := s.overrideIndex[strings.ToLower(rel)]
		s.mu.RUnlock()
		if !ok {
			continue
		}

		text, err := s.cache.ReadString(file)
		if err != nil {
			return "", false, fmt.Errorf("read override %s: %w", rel, err)
		}
		text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
		if text == "" {
			continue
		}

		s.logger.Debug("found override", "kind", kind, "path", rel)
		return "/* Manual override from: " + label + " */\n" + text, true, nil
	}
	return "", false, nil
}

// Extras returns the members declared in the container's extras files, in
// file then source order. A member name declared twice keeps its first
// declaration.
func (s *DirStore) Extras(kind printer.Kind, container string) ([]printer.Extra, error) {
	c := normalize(container)
	if c == "" {
		return nil, nil
	}
	if err := s.ensureIndex(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	files := s.extrasIndex[strings.ToLower(string(kind)+"/"+c)]
	s.mu.RUnlock()

	var (
		out  []printer.Extra
		seen = make(map[string]string)
	)
	for _, file := range files {
		text, err := s.cache.ReadString(file)
		if err != nil {
			return nil, fmt.Errorf("read extras %s: %w", file, err)
		}
		text = strings.ReplaceAll(text, "\r\n", "\n")
		if strings.TrimSpace(text) == "" {
			continue
		}

		var members []queries.Member
		if kind == printer.KindInterface {
			members, err = s.queries.InterfaceMembers(text)
		} else {
			members, err = s.queries.NamespaceMembers(text)
		}
		if err != nil {
			s.logger.Warn("extras file does not parse", "file", file, "error", err)
			return nil, fmt.Errorf("parse extras %s: %w", file, err)
		}

		for _, m := range members {
			if prev, dup := seen[m.Name]; dup {
				s.logger.Warn("duplicate extras member", "member", m.Name, "file", file, "first", prev)
				continue
			}
			seen[m.Name] = file
			out = append(out, printer.Extra{Name: m.Name, Text: m.Text})
		}
	}
	return out, nil
}

// Invalidate drops one changed file from the cache and marks the index
// stale so added or removed files are picked up.
func (s *DirStore) Invalidate(file string) {
	s.cache.Invalidate(file)
	s.mu.Lock()
	s.indexed = false
	s.mu.Unlock()
}

// Reset drops all cached content and the index.
func (s *DirStore) Reset() {
	s.cache.Reset()
	s.mu.Lock()
	s.indexed = false
	s.overrideIndex = nil
	s.extrasIndex = nil
	s.mu.Unlock()
}

// Close releases the resources the store created itself.
func (s *DirStore) Close() error {
	var errs []error
	if s.ownQueries {
		errs = append(errs, s.queries.Close())
	}
	if s.ownParser != nil {
		errs = append(errs, s.ownParser.Close())
	}
	if s.ownCache {
		errs = append(errs, s.cache.Close())
	}
	return errors.Join(errs...)
}

func (s *DirStore) ensureIndex() error {
	s.mu.RLock()
	ok := s.indexed
	s.mu.RUnlock()
	if ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexed {
		return nil
	}

	overrideFiles, err := glob(s.overridesDir)
	if err != nil {
		return fmt.Errorf("index overrides: %w", err)
	}
	extrasFiles, err := glob(s.extrasDir)
	if err != nil {
		return fmt.Errorf("index extras: %w", err)
	}

	s.overrideIndex = make(map[string]string, len(overrideFiles))
	for _, rel := range overrideFiles {
		key := strings.ToLower(rel)
		if prev, dup := s.overrideIndex[key]; dup {
			s.logger.Warn("override paths differ only in case", "kept", prev, "ignored", rel)
			continue
		}
		s.overrideIndex[key] = filepath.Join(s.overridesDir, filepath.FromSlash(rel))
	}

	s.extrasIndex = make(map[string][]string)
	for _, rel := range extrasFiles {
		parts := strings.Split(rel, "/")
		if len(parts) < 3 {
			s.logger.Debug("ignoring extras file outside a container directory", "path", rel)
			continue
		}
		key := strings.ToLower(parts[0] + "/" + parts[1])
		s.extrasIndex[key] = append(s.extrasIndex[key], filepath.Join(s.extrasDir, filepath.FromSlash(rel)))
	}
	for _, files := range s.extrasIndex {
		sort.Strings(files)
	}

	s.indexed = true
	s.logger.Debug("indexed snippet directories",
		"overrides", len(s.overrideIndex),
		"extras_containers", len(s.extrasIndex))
	return nil
}

// glob lists snippet files under dir as sorted slash paths. A missing
// directory has no files.
func glob(dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), Pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// normalize strips all whitespace from a container or member name.
func normalize(s string) string {
	return whitespaceRe.ReplaceAllString(s, "")
}
