// Package parser wraps tree-sitter's TypeScript grammar for reading
// hand-maintained declaration snippets and checking generated output.
package parser

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// IsDeclarationFile reports whether path names a TypeScript source or
// declaration file.
func IsDeclarationFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return true
	}
	return false
}

// ParserManager hands out pooled TypeScript parsers.
//
// The pool is created lazily on first use and must be released via Close.
// Callers own returned trees and must Close them.
//
// Example:
//
//	manager := NewParserManager(logger)
//	defer manager.Close()
//
//	tree, err := manager.Parse([]byte("declare function print(...args: any[]): void;"))
//	if err != nil {
//	    return err
//	}
//	defer tree.Close()
type ParserManager struct {
	pool  *parserPool
	mutex sync.RWMutex

	logger *slog.Logger

	stats struct {
		parsesCalled int
	}
}

// NewParserManager creates a new ParserManager.
func NewParserManager(logger *slog.Logger) *ParserManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParserManager{logger: logger}
}

// Parse parses TypeScript source. Trees with syntax errors are still
// returned; use CheckSyntax to list them.
//
// Safe for concurrent use.
func (pm *ParserManager) Parse(source []byte) (*ts.Tree, error) {
	pm.mutex.Lock()
	pm.stats.parsesCalled++
	pm.mutex.Unlock()

	pool, err := pm.getOrCreatePool()
	if err != nil {
		return nil, err
	}

	p, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire parser: %w", err)
	}
	tree := p.Parse(source, nil)
	pool.release(p)

	if tree == nil {
		return nil, fmt.Errorf("parser.Parse returned nil tree")
	}

	if tree.RootNode().HasError() {
		pm.logger.Debug("parse tree contains errors", "bytes", len(source))
	}
	return tree, nil
}

// ParseFile parses source read from path, rejecting non-TypeScript files.
func (pm *ParserManager) ParseFile(source []byte, path string) (*ts.Tree, error) {
	if !IsDeclarationFile(path) {
		return nil, fmt.Errorf("unsupported file extension: %s", path)
	}
	return pm.Parse(source)
}

// Close releases the parser pool. The manager cannot be used afterwards.
func (pm *ParserManager) Close() error {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	created := 0
	if pm.pool != nil {
		created = pm.pool.getCreatedCount()
		pm.pool.close()
		pm.pool = nil
	}

	pm.logger.Debug("closing ParserManager",
		"parsers_created", created,
		"parses_called", pm.stats.parsesCalled)
	return nil
}

// getOrCreatePool returns the parser pool, creating it on first use.
func (pm *ParserManager) getOrCreatePool() (*parserPool, error) {
	pm.mutex.RLock()
	pool := pm.pool
	pm.mutex.RUnlock()
	if pool != nil {
		return pool, nil
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	if pm.pool != nil {
		return pm.pool, nil
	}

	size := getDefaultPoolSize()
	pm.pool = newParserPool(pm.LanguagePointer(), size, pm.logger)
	pm.logger.Debug("created parser pool", "maxSize", size)
	return pm.pool, nil
}

// LanguagePointer returns the TypeScript grammar, used by QueryManager to
// compile queries.
func (pm *ParserManager) LanguagePointer() unsafe.Pointer {
	return ts_typescript.LanguageTypescript()
}

// GetStats returns parser usage statistics.
func (pm *ParserManager) GetStats() ParserStats {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	created := 0
	if pm.pool != nil {
		created = pm.pool.getCreatedCount()
	}
	return ParserStats{
		ParsersCreated: created,
		ParsesCalled:   pm.stats.parsesCalled,
	}
}

// ParserStats contains parser usage statistics.
type ParserStats struct {
	ParsersCreated int
	ParsesCalled   int
}
