package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/gmodts/pkg/mcplog"
)

// loggingMiddleware records every tool call as one JSONL entry. Only
// installed when the server has a call log.
func (s *Server) loggingMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := mcplog.Now()
			result, err := next(ctx, req)

			entry := mcplog.NewEntry(req.Params.Name, req.GetArguments(), start, result, err)
			entry.Model = s.query.Catalog.Name + "@" + s.query.Catalog.Version
			if werr := s.logger.Write(entry); werr != nil {
				s.slog.Debug("tool call log write failed", "error", werr)
			}
			return result, err
		}
	}
}

// instrument wraps h with the logging middleware when a call log is set.
func (s *Server) instrument(h server.ToolHandlerFunc) server.ToolHandlerFunc {
	if s.logger == nil {
		return h
	}
	return s.loggingMiddleware()(h)
}
