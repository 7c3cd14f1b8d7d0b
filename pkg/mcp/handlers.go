package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/gmodts/pkg/catalog"
)

type collectionDetails struct {
	Kind        string              `json:"kind"`
	Collection  *catalog.Collection `json:"collection"`
	Declaration string              `json:"declaration"`
}

type enumDetails struct {
	*catalog.Enum
	Declaration string `json:"declaration"`
}

type globalDetails struct {
	*catalog.Function
	Signature string `json:"signature"`
}

func (s *Server) handleListCollections(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	kind, _ := args["kind"].(string)
	keyword, _ := args["keyword"].(string)

	return jsonResult(s.query.ListCollections(kind, keyword))
}

func (s *Server) handleGetCollection(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, ok := req.GetArguments()["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	col, kind, found := s.query.GetCollection(name)
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("collection %q not found", name)), nil
	}

	decl, err := s.printer.Collection(*col)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(collectionDetails{Kind: kind, Collection: col, Declaration: decl})
}

func (s *Server) handleSearchMembers(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}
	limit := defaultSearchLimit
	if l, ok := args["limit"].(float64); ok && l > 0 {
		limit = int(l)
	}

	results := s.query.SearchMembers(query, limit)
	if results == nil {
		results = []catalog.MemberSearchResult{}
	}
	return jsonResult(results)
}

func (s *Server) handleGetEnum(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, ok := req.GetArguments()["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	e, found := s.query.GetEnum(name)
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("enum %q not found", name)), nil
	}
	return jsonResult(enumDetails{Enum: e, Declaration: s.printer.Enum(*e)})
}

func (s *Server) handleListHooks(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hooks := s.query.ListHooks()
	if hooks == nil {
		hooks = []string{}
	}
	return jsonResult(hooks)
}

func (s *Server) handleGetGameEvent(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, ok := req.GetArguments()["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	e, found := s.query.GetGameEvent(name)
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("game event %q not found", name)), nil
	}
	return jsonResult(e)
}

func (s *Server) handleGetGlobal(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, ok := req.GetArguments()["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	fn, found := s.query.GetGlobal(name)
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("global %q not found", name)), nil
	}
	return jsonResult(globalDetails{Function: fn, Signature: catalog.Signature(*fn)})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
