// Package mcp serves the generated declaration model over the Model Context
// Protocol so editors and agents can look up classes, hooks and enums.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/gmodts/pkg/catalog"
	"github.com/gnana997/gmodts/pkg/mcplog"
	"github.com/gnana997/gmodts/pkg/printer"
)

const serverVersion = "0.1.0-dev"

// Server exposes read-only lookup tools over a loaded model.
type Server struct {
	mcpServer *server.MCPServer
	query     *catalog.QueryService
	printer   *printer.Printer
	logger    *mcplog.Logger // nil disables the tool-call log
	slog      *slog.Logger
}

// NewServer creates a Server backed by qs. callLog may be nil.
func NewServer(qs *catalog.QueryService, callLog *mcplog.Logger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		query:   qs,
		printer: printer.New(nil, logger),
		logger:  callLog,
		slog:    logger,
	}

	s.mcpServer = server.NewMCPServer(
		"gmodts",
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: listCollectionsTool(), Handler: s.instrument(s.handleListCollections)},
		server.ServerTool{Tool: getCollectionTool(), Handler: s.instrument(s.handleGetCollection)},
		server.ServerTool{Tool: searchMembersTool(), Handler: s.instrument(s.handleSearchMembers)},
		server.ServerTool{Tool: getEnumTool(), Handler: s.instrument(s.handleGetEnum)},
		server.ServerTool{Tool: listHooksTool(), Handler: s.instrument(s.handleListHooks)},
		server.ServerTool{Tool: getGameEventTool(), Handler: s.instrument(s.handleGetGameEvent)},
		server.ServerTool{Tool: getGlobalTool(), Handler: s.instrument(s.handleGetGlobal)},
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.slog.Info("serving model over stdio",
		"model", s.query.Catalog.Name,
		"version", s.query.Catalog.Version)
	return server.ServeStdio(s.mcpServer)
}
