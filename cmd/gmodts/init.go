package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gnana997/gmodts/pkg/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .gmodts/config.yaml",
	Long: `Create .gmodts/config.yaml with the default settings in the current
directory, plus empty overrides and extras directories.

An existing config file is never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	return initProject(cmd.OutOrStdout(), wd)
}

func initProject(w io.Writer, dir string) error {
	path, err := config.SaveDefault(dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote %s\n", path)

	defaults := config.Default()
	for _, sub := range []string{
		filepath.Join(defaults.Paths.Overrides, "global"),
		filepath.Join(defaults.Paths.Overrides, "interface"),
		filepath.Join(defaults.Paths.Overrides, "namespace"),
		filepath.Join(defaults.Paths.Extras, "interface"),
		filepath.Join(defaults.Paths.Extras, "namespace"),
	} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", sub, err)
		}
	}
	fmt.Fprintf(w, "created %s/ and %s/\n", defaults.Paths.Overrides, defaults.Paths.Extras)
	return nil
}
