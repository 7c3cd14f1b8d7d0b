package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/edsrzf/mmap-go"
)

// FileCache provides memory-mapped read access to the hand-maintained
// declaration snippets (override and extras files).
//
// The generator reads the same snippet many times in one run (one lookup per
// generated member, with folder fallbacks), so files are mapped once and
// served from the mapping until invalidated. Watch mode calls Invalidate when
// a snippet changes on disk.
//
// Thread-safety: all methods are safe for concurrent use.
type FileCache interface {
	// Get returns the mapped file, loading it on first access.
	Get(path string) (*MappedFile, error)

	// ReadString returns the whole file content as a string.
	ReadString(path string) (string, error)

	// Invalidate unmaps a single file so the next Get re-reads it.
	Invalidate(path string)

	// Reset unmaps every cached file.
	Reset()

	// Size returns the number of cached files.
	Size() int

	// Stats returns cache metrics.
	Stats() FileCacheStats

	// Close unmaps all files and releases resources.
	Close() error
}

// FileCacheConfig configures FileCache behaviour.
type FileCacheConfig struct {
	// MaxFiles is the maximum number of files to keep mapped.
	//
	// 0 = unlimited. When the limit is reached Get returns an error.
	MaxFiles int

	// Logger for warnings. If nil, uses slog.Default().
	Logger *slog.Logger
}

// DefaultFileCacheConfig returns defaults sized for an override tree of a few
// thousand snippets.
func DefaultFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{
		MaxFiles: 8192,
	}
}

// MappedFile represents a memory-mapped file.
type MappedFile struct {
	// Path is the path the file was loaded from.
	Path string

	// Data is the mapped region. Nil for empty files.
	Data mmap.MMap

	// File is kept open until the mapping is released.
	// Nil for fallback entries (when mmap fails).
	File *os.File

	// Size is the file size in bytes.
	Size int64

	// MappedAt is when this file was mapped.
	MappedAt time.Time
}

// FileCacheStats tracks cache performance metrics.
type FileCacheStats struct {
	FilesLoaded   int64
	FilesCached   int
	CacheHits     int64
	CacheMisses   int64
	MmapFailures  int64
	Invalidations int64
}

// NewFileCache creates a new FileCache. A nil config uses the defaults.
func NewFileCache(config *FileCacheConfig) FileCache {
	if config == nil {
		config = DefaultFileCacheConfig()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &fileCacheImpl{
		config: config,
		logger: logger,
		cache:  make(map[string]*MappedFile),
	}
}

type fileCacheImpl struct {
	config *FileCacheConfig
	logger *slog.Logger

	cache map[string]*MappedFile
	mu    sync.RWMutex

	stats   FileCacheStats
	statsMu sync.Mutex
}

func (fc *fileCacheImpl) Get(path string) (*MappedFile, error) {
	fc.mu.RLock()
	if mf, ok := fc.cache[path]; ok {
		fc.mu.RUnlock()
		fc.record(func(s *FileCacheStats) { s.CacheHits++ })
		return mf, nil
	}
	fc.mu.RUnlock()

	fc.mu.Lock()
	defer fc.mu.Unlock()

	// Another goroutine may have loaded it while we waited for the lock.
	if mf, ok := fc.cache[path]; ok {
		fc.record(func(s *FileCacheStats) { s.CacheHits++ })
		return mf, nil
	}

	fc.record(func(s *FileCacheStats) { s.CacheMisses++ })

	if fc.config.MaxFiles > 0 && len(fc.cache) >= fc.config.MaxFiles {
		return nil, fmt.Errorf("file cache limit reached: %d files (limit: %d)", len(fc.cache), fc.config.MaxFiles)
	}

	mf, err := fc.load(path)
	if err != nil {
		return nil, err
	}

	fc.cache[path] = mf
	fc.record(func(s *FileCacheStats) { s.FilesLoaded++ })

	return mf, nil
}

// load opens and maps a file, falling back to os.ReadFile if mmap fails.
// Must be called while holding mu.Lock.
func (fc *fileCacheImpl) load(path string) (*MappedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}

	// Zero bytes cannot be mapped.
	if stat.Size() == 0 {
		return &MappedFile{Path: path, File: file, MappedAt: time.Now()}, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		fc.logger.Warn("mmap failed, using fallback", "file", path, "error", err)
		fc.record(func(s *FileCacheStats) { s.MmapFailures++ })

		raw, readErr := os.ReadFile(path)
		file.Close()
		if readErr != nil {
			return nil, fmt.Errorf("read %q after mmap failure (%v): %w", path, err, readErr)
		}
		return &MappedFile{
			Path:     path,
			Data:     mmap.MMap(raw),
			Size:     int64(len(raw)),
			MappedAt: time.Now(),
		}, nil
	}

	return &MappedFile{
		Path:     path,
		Data:     data,
		File:     file,
		Size:     stat.Size(),
		MappedAt: time.Now(),
	}, nil
}

func (fc *fileCacheImpl) ReadString(path string) (string, error) {
	mf, err := fc.Get(path)
	if err != nil {
		return "", err
	}
	if len(mf.Data) == 0 {
		return "", nil
	}
	return string(mf.Data), nil
}

func (fc *fileCacheImpl) Invalidate(path string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	mf, ok := fc.cache[path]
	if !ok {
		return
	}
	delete(fc.cache, path)
	if err := release(mf); err != nil {
		fc.logger.Warn("failed to release file", "path", path, "error", err)
	}
	fc.record(func(s *FileCacheStats) { s.Invalidations++ })
}

func (fc *fileCacheImpl) Reset() {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	for path, mf := range fc.cache {
		if err := release(mf); err != nil {
			fc.logger.Warn("failed to release file", "path", path, "error", err)
		}
	}
	fc.cache = make(map[string]*MappedFile)
}

func (fc *fileCacheImpl) Size() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return len(fc.cache)
}

func (fc *fileCacheImpl) Stats() FileCacheStats {
	fc.mu.RLock()
	cached := len(fc.cache)
	fc.mu.RUnlock()

	fc.statsMu.Lock()
	defer fc.statsMu.Unlock()

	stats := fc.stats
	stats.FilesCached = cached
	return stats
}

func (fc *fileCacheImpl) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var errs []error
	for path, mf := range fc.cache {
		if err := release(mf); err != nil {
			errs = append(errs, fmt.Errorf("%q: %w", path, err))
		}
	}
	fc.cache = make(map[string]*MappedFile)

	fc.logger.Debug("file cache closed",
		"files_loaded", fc.stats.FilesLoaded,
		"cache_hits", fc.stats.CacheHits,
		"cache_misses", fc.stats.CacheMisses)

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}
	return nil
}

// release unmaps and closes one entry. Fallback entries own no descriptor.
func release(mf *MappedFile) error {
	if mf.File == nil {
		return nil
	}
	if mf.Data != nil {
		if err := mf.Data.Unmap(); err != nil {
			mf.File.Close()
			return fmt.Errorf("unmap: %w", err)
		}
	}
	return mf.File.Close()
}

func (fc *fileCacheImpl) record(update func(*FileCacheStats)) {
	fc.statsMu.Lock()
	update(&fc.stats)
	fc.statsMu.Unlock()
}
