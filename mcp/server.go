// Package mcp exposes the mountain knowledge and Mori himself as Model
// Context Protocol tools, so other assistants can consult them over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"mori/config"
	"mori/knowledge"
	appmodel "mori/model"
)

const (
	ServerName    = "mori-knowledge"
	ServerVersion = "1.0.0"
)

// Tool names.
const (
	ToolTopics = "mountain_topics"
	ToolLookup = "mountain_lookup"
	ToolSearch = "mountain_search"
	ToolAsk    = "ask_mori"
)

// NewServer builds the MCP server. The ask_mori tool is only registered
// when bot is non-nil.
func NewServer(bot *appmodel.Chatbot) *server.MCPServer {
	s := server.NewMCPServer(ServerName, ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.AddTool(mcptypes.NewTool(ToolTopics,
		mcptypes.WithDescription("List the mountaineering knowledge categories and their entries"),
	), handleTopics)

	s.AddTool(mcptypes.NewTool(ToolLookup,
		mcptypes.WithDescription("Describe a knowledge category, or one entry inside it"),
		mcptypes.WithString("topic",
			mcptypes.Required(),
			mcptypes.Description("Category name, e.g. famous_peaks"),
		),
		mcptypes.WithString("entry",
			mcptypes.Description("Optional entry within the category, e.g. k2"),
		),
	), handleLookup)

	s.AddTool(mcptypes.NewTool(ToolSearch,
		mcptypes.WithDescription("Find knowledge entries mentioned in free text (at most three)"),
		mcptypes.WithString("query",
			mcptypes.Required(),
			mcptypes.Description("Free text such as a climber's question"),
		),
	), handleSearch)

	if bot != nil {
		s.AddTool(mcptypes.NewTool(ToolAsk,
			mcptypes.WithDescription("Ask Mori Buntarou, a stoic climber, a single question"),
			mcptypes.WithString("message",
				mcptypes.Required(),
				mcptypes.Description("What to say to Mori"),
			),
			mcptypes.WithString("model",
				mcptypes.Description("Model to answer with; defaults to the configured default"),
				mcptypes.Enum(bot.Models()...),
			),
		), askHandler(bot))
	}

	return s
}

// ServeStdio runs the server on stdin/stdout until the client disconnects.
func ServeStdio(bot *appmodel.Chatbot) error {
	if config.DebugLog != nil {
		config.DebugLog.Printf("[MCP] serving %s over stdio", ServerName)
	}
	return server.ServeStdio(NewServer(bot))
}

func handleTopics(ctx context.Context, req mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
	var b strings.Builder
	for _, category := range knowledge.All() {
		names := make([]string, len(category.Children))
		for i, c := range category.Children {
			names[i] = c.Name
		}
		fmt.Fprintf(&b, "%s: %s\n", category.Name, strings.Join(names, ", "))
	}
	return mcptypes.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func handleLookup(ctx context.Context, req mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
	topic, err := req.RequireString("topic")
	if err != nil {
		return mcptypes.NewToolResultError(err.Error()), nil
	}
	entry := req.GetString("entry", "")

	path := []string{topic}
	if strings.TrimSpace(entry) != "" {
		path = append(path, entry)
	}

	node, ok := knowledge.LookupPath(path...)
	if !ok {
		text := knowledge.Unknown
		if hints := knowledge.Suggest(strings.Join(path, "/"), 3); len(hints) > 0 {
			text += "\nDid you mean: " + strings.Join(hints, ", ")
		}
		return mcptypes.NewToolResultText(text), nil
	}
	return mcptypes.NewToolResultText(node.Render()), nil
}

func handleSearch(ctx context.Context, req mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcptypes.NewToolResultError(err.Error()), nil
	}

	found := knowledge.Search(query)
	if found == "" {
		return mcptypes.NewToolResultText("No matching topics."), nil
	}
	return mcptypes.NewToolResultText(found), nil
}

// askHandler answers one stateless turn: every call gets a fresh conversation.
func askHandler(bot *appmodel.Chatbot) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
		message, err := req.RequireString("message")
		if err != nil {
			return mcptypes.NewToolResultError(err.Error()), nil
		}
		modelName := req.GetString("model", bot.DefaultModel())

		reply, err := bot.Reply(ctx, "mcp", appmodel.NewConversation(), message, modelName)
		switch {
		case errors.Is(err, appmodel.ErrEmptyMessage):
			return mcptypes.NewToolResultError("message is empty"), nil
		case errors.Is(err, appmodel.ErrUnknownModel):
			return mcptypes.NewToolResultError(fmt.Sprintf("unknown model %q; choose one of %s",
				modelName, strings.Join(bot.Models(), ", "))), nil
		case err != nil:
			return nil, err
		}
		return mcptypes.NewToolResultText(reply), nil
	}
}
