package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gnana997/gmodts/pkg/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate when overrides, extras or mods change",
	Long: `Generate once, then watch the overrides and extras directories and the
mods file, regenerating after each burst of changes.

Wiki pages are fetched on the first run and kept in memory, so later runs
only re-read local files. Stop with Ctrl-C.

Examples:
  gmodts watch
  gmodts watch --offline --debounce 1s`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	watchOffline  bool
	watchCheck    bool
	watchDebounce time.Duration
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchOffline, "offline", false, "Serve pages from the cache only")
	watchCmd.Flags().BoolVar(&watchCheck, "check", false, "Parse the output and skip writing on syntax errors")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before regenerating")
}

func runWatch(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	pl, err := newPipeline(p, watchOffline)
	if err != nil {
		return err
	}
	defer pl.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	report, err := pl.run(ctx, watchCheck)
	if err != nil {
		return err
	}
	report.print(out)

	regenerate := func(ctx context.Context, changed []string) error {
		p.logger.Info("regenerating", "changed", len(changed))
		report, err := pl.run(ctx, watchCheck)
		if err != nil {
			return err
		}
		report.print(out)
		return nil
	}

	w, err := watch.New(pl.overrides, regenerate, watch.Options{Debounce: watchDebounce}, p.logger)
	if err != nil {
		return err
	}

	paths := []string{p.path(p.cfg.Paths.Overrides), p.path(p.cfg.Paths.Extras)}
	if p.cfg.Paths.Mods != "" {
		paths = append(paths, p.path(p.cfg.Paths.Mods))
	}
	if err := w.Start(ctx, paths...); err != nil {
		return err
	}
	fmt.Fprintln(out, "watching for changes, press Ctrl-C to stop")

	<-ctx.Done()
	return w.Stop()
}
