package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gnana997/gmodts/pkg/generator"
	"github.com/gnana997/gmodts/pkg/overrides"
	"github.com/gnana997/gmodts/pkg/parser"
	"github.com/gnana997/gmodts/pkg/parser/queries"
	"github.com/gnana997/gmodts/pkg/wiki"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Fetch the wiki and write the declaration file",
	Long: `Fetch every documented page, build the declaration model and write it.

Pages are read through the on-disk cache (.gmodts/cache by default), so
repeated runs only hit the wiki for entries older than cache.ttl. The output
file is left untouched when its content did not change. The JSON model used
by 'serve' and 'inspect' is written next to it.

Examples:
  gmodts generate
  gmodts generate --check             # Fail on TypeScript syntax errors
  gmodts generate --offline           # Use cached pages only
  gmodts generate -o types/gmod.d.ts  # Override paths.output`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

var (
	generateCheck   bool
	generateOffline bool
	generateOutput  string
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().BoolVar(&generateCheck, "check", false, "Parse the output and fail on syntax errors before writing")
	generateCmd.Flags().BoolVar(&generateOffline, "offline", false, "Serve pages from the cache only")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output file (overrides paths.output)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	if generateOutput != "" {
		abs, err := filepath.Abs(generateOutput)
		if err != nil {
			return fmt.Errorf("resolve output path: %w", err)
		}
		p.cfg.Paths.Output = abs
	}

	pl, err := newPipeline(p, generateOffline)
	if err != nil {
		return err
	}
	defer pl.Close()

	report, err := pl.run(cmd.Context(), generateCheck)
	if err != nil {
		return err
	}
	report.print(cmd.OutOrStdout())
	return nil
}

// pipeline holds what survives between runs: the page source with its
// memo, the parser and the override store.
type pipeline struct {
	project   *project
	source    wiki.Source
	closeSrc  func() error
	parser    *parser.ParserManager
	queries   *queries.QueryManager
	overrides *overrides.DirStore
}

func newPipeline(p *project, offline bool) (*pipeline, error) {
	src, closeSrc, err := sourceFunc(p, offline)
	if err != nil {
		return nil, fmt.Errorf("open wiki source: %w", err)
	}

	pm := parser.NewParserManager(p.logger)
	qm := queries.NewQueryManager(pm, p.logger)
	return &pipeline{
		project:   p,
		source:    src,
		closeSrc:  closeSrc,
		parser:    pm,
		queries:   qm,
		overrides: p.openOverrides(qm),
	}, nil
}

// Close releases the store, the parser and the page cache.
func (pl *pipeline) Close() error {
	var errs []error
	errs = append(errs, pl.overrides.Close())
	errs = append(errs, pl.queries.Close())
	errs = append(errs, pl.parser.Close())
	if pl.closeSrc != nil {
		errs = append(errs, pl.closeSrc())
	}
	return errors.Join(errs...)
}

// runReport summarizes one run.
type runReport struct {
	output  string
	model   string
	written bool

	classes, structs, libraries, enums, globals, hooks, events int
}

func (r *runReport) print(w io.Writer) {
	state := "unchanged"
	if r.written {
		state = "written"
	}
	fmt.Fprintf(w, "%s (%s)\n", r.output, state)
	fmt.Fprintf(w, "  classes %d, structs %d, libraries %d, enums %d, globals %d, hooks %d, game events %d\n",
		r.classes, r.structs, r.libraries, r.enums, r.globals, r.hooks, r.events)
	if r.model != "" {
		fmt.Fprintf(w, "  model %s\n", r.model)
	}
}

// run generates once. Mods are reloaded on every run so edits to the mods
// file take effect in watch mode.
func (pl *pipeline) run(ctx context.Context, check bool) (*runReport, error) {
	p := pl.project
	db, err := p.loadMods()
	if err != nil {
		return nil, err
	}

	gen, err := generator.New(generator.Options{
		Source:      pl.source,
		Mods:        db,
		Overrides:   pl.overrides,
		Concurrency: p.cfg.Wiki.Concurrency,
		Version:     version,
		SourceLabel: p.cfg.Wiki.BaseURL,
		Logger:      p.logger,
	})
	if err != nil {
		return nil, err
	}

	res, err := gen.Generate(ctx)
	if err != nil {
		return nil, err
	}

	if check {
		syntaxErrs, err := generator.Check(pl.queries, res.Output)
		if err != nil {
			return nil, fmt.Errorf("check output: %w", err)
		}
		for _, se := range syntaxErrs {
			p.logger.Warn("syntax error in generated output", "at", se.String())
		}
		if len(syntaxErrs) > 0 {
			return nil, fmt.Errorf("generated output has %d syntax error(s)", len(syntaxErrs))
		}
	}

	out := p.path(p.cfg.Paths.Output)
	written, err := generator.WriteIfChanged(out, res.Output)
	if err != nil {
		return nil, err
	}

	report := &runReport{
		output:    out,
		written:   written,
		classes:   len(res.Catalog.Classes),
		structs:   len(res.Catalog.Structs),
		libraries: len(res.Catalog.Libraries),
		enums:     len(res.Catalog.Enums),
		globals:   len(res.Catalog.Globals),
	}
	if res.Catalog.HookEnum != nil {
		report.hooks = len(res.Catalog.HookEnum.Fields)
	}
	if res.Catalog.GameEvents != nil {
		report.events = len(res.Catalog.GameEvents.Entries)
	}

	if p.cfg.Paths.Model != "" {
		report.model = p.path(p.cfg.Paths.Model)
		if err := res.Catalog.SaveToFile(report.model); err != nil {
			return nil, err
		}
	}

	p.logger.Info("generation finished", "output", out, "written", written)
	return report, nil
}
