package wiki

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS pages (
	path       TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	markup     TEXT NOT NULL,
	address    TEXT NOT NULL,
	fetched_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
	category   TEXT PRIMARY KEY,
	paths      TEXT NOT NULL,
	fetched_at INTEGER NOT NULL
);
`

// ErrOffline is returned by an offline CachedSource for anything that is
// not already cached.
var ErrOffline = errors.New("not cached and offline mode is enabled")

// DiskCache persists fetched pages and category listings in SQLite so
// repeated runs do not hit the wiki again.
type DiskCache struct {
	db     *sql.DB
	dbPath string
}

// OpenDiskCache opens or creates <dir>/pages.db.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	dbPath := filepath.Join(dir, "pages.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open page cache: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &DiskCache{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (c *DiskCache) Path() string {
	return c.dbPath
}

func (c *DiskCache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Page returns the cached page if it is younger than maxAge (0 = any age).
func (c *DiskCache) Page(ctx context.Context, path string, maxAge time.Duration, now time.Time) (Page, bool, error) {
	var (
		p         Page
		fetchedAt int64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT title, markup, address, fetched_at FROM pages WHERE path = ?`, path,
	).Scan(&p.Title, &p.Markup, &p.Address, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Page{}, false, nil
	}
	if err != nil {
		return Page{}, false, fmt.Errorf("read cached page %s: %w", path, err)
	}
	if expired(fetchedAt, maxAge, now) {
		return Page{}, false, nil
	}
	return p, true, nil
}

// PutPage upserts one page.
func (c *DiskCache) PutPage(ctx context.Context, path string, p Page, now time.Time) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO pages (path, title, markup, address, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
		  title = excluded.title,
		  markup = excluded.markup,
		  address = excluded.address,
		  fetched_at = excluded.fetched_at
	`, path, p.Title, p.Markup, p.Address, now.Unix())
	if err != nil {
		return fmt.Errorf("cache page %s: %w", path, err)
	}
	return nil
}

// Category returns a cached category listing if it is younger than maxAge.
func (c *DiskCache) Category(ctx context.Context, category string, maxAge time.Duration, now time.Time) ([]string, bool, error) {
	var (
		raw       string
		fetchedAt int64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT paths, fetched_at FROM categories WHERE category = ?`, category,
	).Scan(&raw, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cached category %s: %w", category, err)
	}
	if expired(fetchedAt, maxAge, now) {
		return nil, false, nil
	}

	var paths []string
	if err := json.Unmarshal([]byte(raw), &paths); err != nil {
		return nil, false, fmt.Errorf("decode cached category %s: %w", category, err)
	}
	return paths, true, nil
}

// PutCategory upserts one category listing.
func (c *DiskCache) PutCategory(ctx context.Context, category string, paths []string, now time.Time) error {
	raw, err := json.Marshal(paths)
	if err != nil {
		return fmt.Errorf("encode category %s: %w", category, err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO categories (category, paths, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(category) DO UPDATE SET
		  paths = excluded.paths,
		  fetched_at = excluded.fetched_at
	`, category, string(raw), now.Unix())
	if err != nil {
		return fmt.Errorf("cache category %s: %w", category, err)
	}
	return nil
}

// Clear removes all cached data.
func (c *DiskCache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM pages; DELETE FROM categories;"); err != nil {
		return fmt.Errorf("clear page cache: %w", err)
	}
	return nil
}

// CacheStats summarizes the cache contents.
type CacheStats struct {
	Pages      int64
	Categories int64
}

func (c *DiskCache) Stats(ctx context.Context) (CacheStats, error) {
	var s CacheStats
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pages").Scan(&s.Pages); err != nil {
		return s, fmt.Errorf("count pages: %w", err)
	}
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&s.Categories); err != nil {
		return s, fmt.Errorf("count categories: %w", err)
	}
	return s, nil
}

func expired(fetchedAt int64, maxAge time.Duration, now time.Time) bool {
	if maxAge <= 0 {
		return false
	}
	return now.Sub(time.Unix(fetchedAt, 0)) > maxAge
}

// CachedSource reads through a DiskCache before asking upstream.
type CachedSource struct {
	upstream Source
	cache    *DiskCache
	ttl      time.Duration
	offline  bool
	logger   *slog.Logger

	now func() time.Time
}

// CachedSourceOptions configures a CachedSource.
type CachedSourceOptions struct {
	// TTL is the maximum age of a cached entry. 0 keeps entries forever.
	TTL time.Duration

	// Offline serves only from the cache; upstream may be nil.
	Offline bool

	Logger *slog.Logger
}

func NewCachedSource(upstream Source, cache *DiskCache, opts CachedSourceOptions) *CachedSource {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSource{
		upstream: upstream,
		cache:    cache,
		ttl:      opts.TTL,
		offline:  opts.Offline,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *CachedSource) GetPage(ctx context.Context, path string) (Page, error) {
	now := s.now()
	p, ok, err := s.cache.Page(ctx, path, s.ttl, now)
	if err != nil {
		return Page{}, err
	}
	if ok {
		return p, nil
	}
	if s.offline || s.upstream == nil {
		return Page{}, fmt.Errorf("page %s: %w", path, ErrOffline)
	}

	p, err = s.upstream.GetPage(ctx, path)
	if err != nil {
		return Page{}, err
	}
	if err := s.cache.PutPage(ctx, path, p, now); err != nil {
		s.logger.Warn("failed to cache page", "path", path, "error", err)
	}
	return p, nil
}

func (s *CachedSource) GetPagesInCategory(ctx context.Context, category string) ([]string, error) {
	now := s.now()
	paths, ok, err := s.cache.Category(ctx, category, s.ttl, now)
	if err != nil {
		return nil, err
	}
	if ok {
		return paths, nil
	}
	if s.offline || s.upstream == nil {
		return nil, fmt.Errorf("category %s: %w", category, ErrOffline)
	}

	paths, err = s.upstream.GetPagesInCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	if err := s.cache.PutCategory(ctx, category, paths, now); err != nil {
		s.logger.Warn("failed to cache category", "category", category, "error", err)
	}
	return paths, nil
}
