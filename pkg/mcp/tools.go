package mcp

import "github.com/mark3labs/mcp-go/mcp"

const defaultSearchLimit = 50

func listCollectionsTool() mcp.Tool {
	return mcp.NewTool("list_collections",
		mcp.WithDescription("List generated classes, structs and libraries with member counts."),
		mcp.WithString("kind",
			mcp.Description("Filter by kind: class, struct or library"),
			mcp.Enum("class", "struct", "library"),
		),
		mcp.WithString("keyword",
			mcp.Description("Case-insensitive match against names and doc comments"),
		),
	)
}

func getCollectionTool() mcp.Tool {
	return mcp.NewTool("get_collection",
		mcp.WithDescription("Get one collection with its fields, functions and rendered declaration."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Collection identifier, e.g. Entity, Panel or math"),
		),
	)
}

func searchMembersTool() mcp.Tool {
	return mcp.NewTool("search_members",
		mcp.WithDescription("Search member functions, fields and globals by name."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Substring of the member name"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results (default: 50)"),
		),
	)
}

func getEnumTool() mcp.Tool {
	return mcp.NewTool("get_enum",
		mcp.WithDescription("Get an enum and its members, including the GMHook enum."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Enum identifier, e.g. TEXT_ALIGN"),
		),
	)
}

func listHooksTool() mcp.Tool {
	return mcp.NewTool("list_hooks",
		mcp.WithDescription("List every gamemode hook name."),
	)
}

func getGameEventTool() mcp.Tool {
	return mcp.NewTool("get_game_event",
		mcp.WithDescription("Get the payload fields of one game event."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Event name, e.g. player_spawn"),
		),
	)
}

func getGlobalTool() mcp.Tool {
	return mcp.NewTool("get_global",
		mcp.WithDescription("Get a global function and its signature."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Function name, e.g. print"),
		),
	)
}
