// Command gmodts generates TypeScript declarations for the Garry's Mod Lua
// API from the official wiki.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

// Global flags
var (
	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "gmodts",
	Short: "Generate TypeScript declarations for the Garry's Mod Lua API",
	Long: `gmodts fetches the Garry's Mod wiki, converts every documented class,
library, hook, enum, struct and game event into a TypeScriptToLua-compatible
declaration file, and can serve the resulting model to AI agents over MCP.

Examples:
  gmodts init                  # Write .gmodts/config.yaml
  gmodts generate              # Fetch the wiki and write the declarations
  gmodts generate --offline    # Regenerate from the page cache only
  gmodts watch                 # Regenerate when overrides or extras change
  gmodts inspect Entity        # Show one collection
  gmodts serve                 # Serve the model over MCP stdio`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: .gmodts/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text|json)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "gmodts %s\n", version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
