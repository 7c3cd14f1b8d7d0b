package wiki

import (
	"context"
	"fmt"
	"sync"
)

// StaticSource serves a fixed set of pages from memory. It backs fixtures
// and dry runs.
type StaticSource struct {
	mu         sync.RWMutex
	pages      map[string]Page
	categories map[string][]string
}

func NewStaticSource() *StaticSource {
	return &StaticSource{
		pages:      make(map[string]Page),
		categories: make(map[string][]string),
	}
}

// AddPage registers a page under path and lists it in the given categories.
func (s *StaticSource) AddPage(path string, p Page, categories ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pages[path] = p
	for _, c := range categories {
		s.categories[c] = append(s.categories[c], path)
	}
}

func (s *StaticSource) GetPage(_ context.Context, path string) (Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pages[path]
	if !ok {
		return Page{}, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return p, nil
}

func (s *StaticSource) GetPagesInCategory(_ context.Context, category string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.categories[category]...), nil
}
