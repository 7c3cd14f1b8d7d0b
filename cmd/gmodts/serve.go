package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnana997/gmodts/pkg/catalog"
	"github.com/gnana997/gmodts/pkg/mcp"
	"github.com/gnana997/gmodts/pkg/mcplog"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generated model over MCP stdio",
	Long: `Start an MCP (Model Context Protocol) server on stdin/stdout that answers
lookups against the model written by 'generate'.

Available Tools:
  list_collections  List classes, structs and libraries
  get_collection    One collection with its rendered declaration
  search_members    Find functions and fields by name
  get_enum          One enum, including the GMHook enum
  list_hooks        Every gamemode hook name
  get_game_event    One game event payload
  get_global        One global function

Examples:
  gmodts serve
  gmodts serve --model path/to/model.json --call-log .gmodts/calls.jsonl`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveModel   string
	serveCallLog string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveModel, "model", "", "Model file (overrides paths.model)")
	serveCmd.Flags().StringVar(&serveCallLog, "call-log", "", "Append one JSON line per tool call to this file")
}

func runServe(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	qs, err := loadModel(p, serveModel)
	if err != nil {
		return err
	}

	callLog, err := mcplog.NewLogger(serveCallLog)
	if err != nil {
		return err
	}
	if callLog != nil {
		defer callLog.Close()
	}

	return mcp.NewServer(qs, callLog, p.logger).ServeStdio()
}

// loadModel opens the model at override, or at paths.model.
func loadModel(p *project, override string) (*catalog.QueryService, error) {
	path := override
	if path == "" {
		path = p.path(p.cfg.Paths.Model)
	}
	if path == "" {
		return nil, fmt.Errorf("no model path: set paths.model or pass --model")
	}
	qs, err := catalog.LoadAndQuery(path)
	if err != nil {
		return nil, fmt.Errorf("%w (run 'gmodts generate' first)", err)
	}
	return qs, nil
}
