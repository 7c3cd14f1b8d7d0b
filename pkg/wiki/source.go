package wiki

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Source fetches wiki pages.
//
// Paths look like "/gmod/Entity:SetPos". GetPage fails if the path does not
// exist; GetPagesInCategory returns paths in no meaningful order.
type Source interface {
	GetPage(ctx context.Context, path string) (Page, error)
	GetPagesInCategory(ctx context.Context, category string) ([]string, error)
}

// ErrNotFound is matched by a StatusError carrying 404.
var ErrNotFound = errors.New("page not found")

// StatusError is returned for non-2xx wiki responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("wiki request %s: status %d", e.URL, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// MemoSource memoizes another Source in memory so each path is fetched at
// most once per process, and collapses concurrent requests for the same
// path into one upstream call.
type MemoSource struct {
	upstream   Source
	pages      *lru.Cache[string, Page]
	categories *lru.Cache[string, []string]
	group      singleflight.Group
	logger     *slog.Logger
}

// NewMemoSource wraps upstream with an LRU of the given size.
func NewMemoSource(upstream Source, size int, logger *slog.Logger) (*MemoSource, error) {
	if size <= 0 {
		size = 8192
	}
	if logger == nil {
		logger = slog.Default()
	}

	pages, err := lru.New[string, Page](size)
	if err != nil {
		return nil, fmt.Errorf("page memo: %w", err)
	}
	categories, err := lru.New[string, []string](64)
	if err != nil {
		return nil, fmt.Errorf("category memo: %w", err)
	}

	return &MemoSource{
		upstream:   upstream,
		pages:      pages,
		categories: categories,
		logger:     logger,
	}, nil
}

func (m *MemoSource) GetPage(ctx context.Context, path string) (Page, error) {
	if p, ok := m.pages.Get(path); ok {
		return p, nil
	}

	v, err, shared := m.group.Do("page:"+path, func() (any, error) {
		p, err := m.upstream.GetPage(ctx, path)
		if err != nil {
			return Page{}, err
		}
		m.pages.Add(path, p)
		return p, nil
	})
	if err != nil {
		return Page{}, err
	}
	if shared {
		m.logger.Debug("shared page fetch", "path", path)
	}
	return v.(Page), nil
}

func (m *MemoSource) GetPagesInCategory(ctx context.Context, category string) ([]string, error) {
	if paths, ok := m.categories.Get(category); ok {
		return append([]string(nil), paths...), nil
	}

	v, err, _ := m.group.Do("category:"+category, func() (any, error) {
		paths, err := m.upstream.GetPagesInCategory(ctx, category)
		if err != nil {
			return nil, err
		}
		m.categories.Add(category, paths)
		return paths, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), v.([]string)...), nil
}

// Forget drops every memoized entry.
func (m *MemoSource) Forget() {
	m.pages.Purge()
	m.categories.Purge()
}
