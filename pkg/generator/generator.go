// Package generator drives a full run: it fetches the wiki categories,
// extracts and transforms every page, merges classes and renders the
// declaration file.
package generator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gnana997/gmodts/pkg/catalog"
	"github.com/gnana997/gmodts/pkg/extractor"
	"github.com/gnana997/gmodts/pkg/merge"
	"github.com/gnana997/gmodts/pkg/mods"
	"github.com/gnana997/gmodts/pkg/printer"
	"github.com/gnana997/gmodts/pkg/transform"
	"github.com/gnana997/gmodts/pkg/util"
	"github.com/gnana997/gmodts/pkg/wiki"
)

// DefaultCatalogName names the generated model.
const DefaultCatalogName = "gmod"

// Options configures a Generator.
type Options struct {
	Source wiki.Source

	// Mods is the modification database. Nil applies no rules.
	Mods mods.Lookup

	// Overrides supplies manual signatures and extras. Nil renders
	// without them.
	Overrides printer.OverrideSource

	// Concurrency bounds page fetches and parsing. Zero picks a default
	// from the CPU count.
	Concurrency int

	// HookIndexPaths defaults to DefaultHookIndexPaths.
	HookIndexPaths []string

	// GameEventPage defaults to DefaultGameEventPage.
	GameEventPage string

	// CatalogName, Version and SourceLabel are recorded in the model.
	CatalogName string
	Version     string
	SourceLabel string

	Logger *slog.Logger
}

// Generator runs the pipeline. It holds no per-run state and may be reused.
type Generator struct {
	source      wiki.Source
	transformer *transform.Transformer
	printer     *printer.Printer
	concurrency int

	hookIndexPaths []string
	gameEventPage  string

	catalogName string
	version     string
	sourceLabel string

	logger *slog.Logger
}

// Result is the outcome of one run.
type Result struct {
	Catalog *catalog.Catalog

	// Output is the finalized declaration text.
	Output string
}

// New creates a Generator.
func New(opts Options) (*Generator, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("generator: source is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	lookup := opts.Mods
	if lookup == nil {
		lookup = mods.Empty()
	}

	g := &Generator{
		source:         opts.Source,
		transformer:    transform.New(lookup, logger),
		printer:        printer.New(opts.Overrides, logger),
		concurrency:    util.GetOptimalPoolSizeWithOverride(opts.Concurrency),
		hookIndexPaths: opts.HookIndexPaths,
		gameEventPage:  opts.GameEventPage,
		catalogName:    opts.CatalogName,
		version:        opts.Version,
		sourceLabel:    opts.SourceLabel,
		logger:         logger,
	}
	if g.hookIndexPaths == nil {
		g.hookIndexPaths = DefaultHookIndexPaths
	}
	if g.gameEventPage == "" {
		g.gameEventPage = DefaultGameEventPage
	}
	if g.catalogName == "" {
		g.catalogName = DefaultCatalogName
	}
	return g, nil
}

// Generate builds the model and renders it.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	cat, err := g.Build(ctx)
	if err != nil {
		return nil, err
	}
	out, err := g.Render(cat)
	if err != nil {
		return nil, err
	}
	return &Result{Catalog: cat, Output: out}, nil
}

// Build fetches and transforms every category into the declaration model.
// Any fetch or markup error aborts the run.
func (g *Generator) Build(ctx context.Context) (*catalog.Catalog, error) {
	cat := &catalog.Catalog{
		Name:    g.catalogName,
		Version: g.version,
		Source:  g.sourceLabel,
	}

	globals, err := g.globals(ctx)
	if err != nil {
		return nil, fmt.Errorf("globals: %w", err)
	}
	cat.Globals = globals

	enums, err := g.enums(ctx)
	if err != nil {
		return nil, fmt.Errorf("enums: %w", err)
	}
	cat.Enums = enums

	structs, err := g.structs(ctx)
	if err != nil {
		return nil, fmt.Errorf("structs: %w", err)
	}

	classes, err := g.classes(ctx)
	if err != nil {
		return nil, fmt.Errorf("classes: %w", err)
	}

	merged := merge.Classes(classes, structs)
	cat.Classes = merged.Classes
	cat.Structs = merged.Structs
	cat.HookEnum = merge.HookEnum(merged.Classes)

	libraries, err := g.libraries(ctx)
	if err != nil {
		return nil, fmt.Errorf("libraries: %w", err)
	}
	cat.Libraries = libraries

	events, err := g.gameEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("game events: %w", err)
	}
	cat.GameEvents = events

	g.logger.Info("built model",
		"classes", len(cat.Classes),
		"structs", len(cat.Structs),
		"libraries", len(cat.Libraries),
		"enums", len(cat.Enums),
		"globals", len(cat.Globals))
	return cat, nil
}

func (g *Generator) globals(ctx context.Context) ([]catalog.Function, error) {
	docs, err := g.fetchDocs(ctx, CategoryGlobal)
	if err != nil {
		return nil, err
	}

	var out []catalog.Function
	for _, doc := range docs {
		m := doc.Function()
		if m.Function == nil {
			g.logger.Debug("skipping non-function global", "address", doc.Page.Address)
			continue
		}
		out = append(out, g.transformer.Function(*m.Function))
	}
	return out, nil
}

func (g *Generator) enums(ctx context.Context) ([]catalog.Enum, error) {
	docs, err := g.fetchDocs(ctx, CategoryEnum)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Enum, len(docs))
	for i, doc := range docs {
		out[i] = g.transformer.Enum(doc.Enum())
	}
	return out, nil
}

func (g *Generator) structs(ctx context.Context) ([]catalog.Collection, error) {
	docs, err := g.fetchDocs(ctx, CategoryStruct)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Collection, len(docs))
	for i, doc := range docs {
		out[i] = g.transformer.Struct(doc.Struct())
	}
	return out, nil
}

// classes collects class, panel and hook containers and attaches their
// member pages by raw parent name.
func (g *Generator) classes(ctx context.Context) ([]catalog.Collection, error) {
	classFuncPaths, err := g.category(ctx, CategoryClassFunc)
	if err != nil {
		return nil, err
	}
	panelFuncPaths, err := g.category(ctx, CategoryPanelFunc)
	if err != nil {
		return nil, err
	}
	panelPaths, err := g.category(ctx, CategoryPanel)
	if err != nil {
		return nil, err
	}
	classPaths, err := g.category(ctx, CategoryClass)
	if err != nil {
		return nil, err
	}
	hookPaths, err := g.category(ctx, CategoryHook)
	if err != nil {
		return nil, err
	}

	funcPaths := dedupe(classFuncPaths, panelFuncPaths, filter(hookPaths, isHookMemberPath))
	containerPaths := dedupe(panelPaths, classPaths)

	funcDocs, err := g.fetchAndParse(ctx, funcPaths)
	if err != nil {
		return nil, err
	}
	containerDocs, err := g.fetchAndParse(ctx, containerPaths)
	if err != nil {
		return nil, err
	}
	hookIndexDocs, err := g.fetchAndParse(ctx, g.hookIndexPaths)
	if err != nil {
		return nil, err
	}
	g.logger.Info("fetched class pages",
		"members", len(funcDocs),
		"containers", len(containerDocs),
		"hook_indexes", len(hookIndexDocs))

	var (
		containers []*extractor.Document
		members    []memberOf
		seen       = make(map[string]bool)
	)
	addContainer := func(d *extractor.Document) {
		if seen[d.Page.Address] {
			return
		}
		seen[d.Page.Address] = true
		containers = append(containers, d)
	}

	for _, d := range containerDocs {
		addContainer(d)
	}
	for _, d := range funcDocs {
		if isMemberTitle(d.Page.Title) {
			m := d.Function()
			members = append(members, memberOf{parent: m.Parent(), member: m})
			continue
		}
		addContainer(d)
	}
	for _, d := range hookIndexDocs {
		addContainer(d)
	}

	out := make([]catalog.Collection, 0, len(containers))
	for _, d := range containers {
		col := d.Class()
		out = append(out, g.transformer.Collection(col, membersFor(members, col.Name)))
	}
	return out, nil
}

func (g *Generator) libraries(ctx context.Context) ([]catalog.Collection, error) {
	docs, err := g.fetchDocs(ctx, CategoryLibraryFunc)
	if err != nil {
		return nil, err
	}

	var (
		libs    []*extractor.Document
		members []memberOf
	)
	for _, d := range docs {
		if isLibraryMemberTitle(d.Page.Title) {
			m := d.Function()
			members = append(members, memberOf{parent: m.Parent(), member: m})
			continue
		}
		libs = append(libs, d)
	}

	out := make([]catalog.Collection, 0, len(libs))
	for _, d := range libs {
		lib := d.Library()
		out = append(out, g.transformer.Collection(lib, membersFor(members, lib.Name)))
	}
	return out, nil
}

func (g *Generator) gameEvents(ctx context.Context) (*catalog.TypeMap, error) {
	overview, err := g.fetchAndParse(ctx, []string{g.gameEventPage})
	if err != nil {
		return nil, err
	}

	paths, err := g.category(ctx, CategoryGameEvent)
	if err != nil {
		return nil, err
	}
	docs, err := g.fetchAndParse(ctx, dedupe(filter(paths, isGameEventPath)))
	if err != nil {
		return nil, err
	}
	g.logger.Info("fetched category", "category", CategoryGameEvent, "pages", len(docs))

	events := make([]wiki.GameEvent, len(docs))
	for i, d := range docs {
		events[i] = d.GameEvent()
	}
	return g.transformer.GameEvents(events, overview[0].Description()), nil
}

// fetchDocs fetches and parses a whole category.
func (g *Generator) fetchDocs(ctx context.Context, category string) ([]*extractor.Document, error) {
	pages, err := g.fetchCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	return g.parse(pages)
}

func (g *Generator) fetchAndParse(ctx context.Context, paths []string) ([]*extractor.Document, error) {
	pages, err := g.fetch(ctx, paths)
	if err != nil {
		return nil, err
	}
	return g.parse(pages)
}

type memberOf struct {
	parent string
	member wiki.Member
}

func membersFor(all []memberOf, parent string) []wiki.Member {
	var out []wiki.Member
	for _, m := range all {
		if m.parent == parent {
			out = append(out, m.member)
		}
	}
	return out
}
