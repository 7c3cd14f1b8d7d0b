package generator

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/iter"
	"golang.org/x/sync/errgroup"

	"github.com/gnana997/gmodts/pkg/extractor"
	"github.com/gnana997/gmodts/pkg/wiki"
)

// category lists the page paths of one category.
func (g *Generator) category(ctx context.Context, name string) ([]string, error) {
	paths, err := g.source.GetPagesInCategory(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("list category %s: %w", name, err)
	}
	return paths, nil
}

// fetch retrieves pages concurrently. Results keep the order of paths and
// the first error cancels the remaining fetches.
func (g *Generator) fetch(ctx context.Context, paths []string) ([]wiki.Page, error) {
	pages := make([]wiki.Page, len(paths))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)
	for i, p := range paths {
		eg.Go(func() error {
			page, err := g.source.GetPage(ctx, p)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", p, err)
			}
			if page.Address == "" {
				page.Address = p
			}
			pages[i] = page
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

// fetchCategory lists and fetches a whole category.
func (g *Generator) fetchCategory(ctx context.Context, name string) ([]wiki.Page, error) {
	paths, err := g.category(ctx, name)
	if err != nil {
		return nil, err
	}
	pages, err := g.fetch(ctx, dedupe(paths))
	if err != nil {
		return nil, err
	}
	g.logger.Info("fetched category", "category", name, "pages", len(pages))
	return pages, nil
}

// parse parses pages in parallel, keeping their order. The first markup
// error is returned.
func (g *Generator) parse(pages []wiki.Page) ([]*extractor.Document, error) {
	mapper := iter.Mapper[wiki.Page, *extractor.Document]{MaxGoroutines: g.concurrency}
	docs, err := mapper.MapErr(pages, func(p *wiki.Page) (*extractor.Document, error) {
		doc, err := extractor.Parse(*p)
		if err != nil {
			return nil, err
		}
		g.logger.Debug("parsed page", "address", p.Address, "shape", doc.Shape)
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}
