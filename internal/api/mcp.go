package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/antoinelucasfra/curator/internal/catalog"
	"github.com/antoinelucasfra/curator/internal/inbox"
)

// InboxWriter is the capability the add_resource tool needs. New links go to
// the inbox, not straight into the catalog, so they flow through the normal
// sync with dedup and description resolution.
type InboxWriter interface {
	Add(ctx context.Context, line string) error
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	CatalogPath string
	Inbox       InboxWriter
}

// NewMCPServer creates an MCP server with the curator tools and resources
// registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"curator",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("curator — curated link catalog: search resources, queue new links for ingestion."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("search_resources",
			mcp.WithDescription("Search the link catalog by free text, type, or language."),
			mcp.WithString("query", mcp.Description("Free-text search over title, description, link, and category")),
			mcp.WithString("type", mcp.Description("Filter by resource type (e.g. Blog, Book, Package)")),
			mcp.WithString("language", mcp.Description("Filter by language tag (e.g. R, Python)")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 10)")),
		),
		mcpSearchResources(deps),
	)

	s.AddTool(
		mcp.NewTool("add_resource",
			mcp.WithDescription("Queue a new link for ingestion into the catalog. The link is validated and deduplicated on the next sync."),
			mcp.WithString("url", mcp.Description("Resource URL"), mcp.Required()),
			mcp.WithString("title", mcp.Description("Resource title"), mcp.Required()),
			mcp.WithString("type", mcp.Description("Resource type, one of the catalog's closed set"), mcp.Required()),
			mcp.WithString("language", mcp.Description("Language tags, semicolon-delimited"), mcp.Required()),
			mcp.WithString("category", mcp.Description("Category tags, semicolon-delimited"), mcp.Required()),
		),
		mcpAddResource(deps),
	)

	s.AddTool(
		mcp.NewTool("list_types",
			mcp.WithDescription("List the valid resource type labels."),
		),
		mcpListTypes(),
	)

	s.AddResource(
		mcp.NewResource(
			"catalog://resources",
			"Catalog Resources",
			mcp.WithResourceDescription("All catalog records as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceCatalog(deps),
	)

	return s
}

func mcpSearchResources(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		records, err := catalog.ParseFile(deps.CatalogPath)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to read catalog: %v", err)), nil
		}

		query := strings.ToLower(req.GetString("query", ""))
		typeFilter := req.GetString("type", "")
		langFilter := strings.ToLower(req.GetString("language", ""))
		limit := req.GetInt("limit", 10)
		if limit <= 0 {
			limit = 10
		}
		if limit > 100 {
			limit = 100
		}

		var results []Resource
		for _, rec := range records {
			if typeFilter != "" && rec.Type != typeFilter {
				continue
			}
			if langFilter != "" && !strings.Contains(strings.ToLower(rec.Language), langFilter) {
				continue
			}
			if query != "" && !matchesSearch(rec, query) {
				continue
			}
			results = append(results, Resource{
				Title:       rec.Title,
				Type:        rec.Type,
				Link:        rec.Link,
				Language:    rec.Language,
				Category:    rec.Category,
				Description: rec.Description,
			})
			if len(results) >= limit {
				break
			}
		}

		if len(results) == 0 {
			return mcpText("[]"), nil
		}
		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpAddResource(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := req.RequireString("url")
		if err != nil {
			return mcpError("url is required"), nil
		}
		title, err := req.RequireString("title")
		if err != nil {
			return mcpError("title is required"), nil
		}
		rtype, err := req.RequireString("type")
		if err != nil {
			return mcpError("type is required"), nil
		}
		language, err := req.RequireString("language")
		if err != nil {
			return mcpError("language is required"), nil
		}
		category, err := req.RequireString("category")
		if err != nil {
			return mcpError("category is required"), nil
		}

		line := strings.Join([]string{url, title, rtype, language, category}, " - ")

		// Validate up front so a bad tool call fails loudly instead of
		// sitting in the inbox as a permanently kept line.
		if _, err := inbox.ParseLine(line); err != nil {
			return mcpError(fmt.Sprintf("invalid resource: %v", err)), nil
		}

		if err := deps.Inbox.Add(ctx, line); err != nil {
			return mcpError(fmt.Sprintf("failed to queue resource: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Queued %s for the next sync", url)), nil
	}
}

func mcpListTypes() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		b, err := json.Marshal(catalog.TypeNames())
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal types: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceCatalog(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		records, err := catalog.ParseFile(deps.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}

		resources := make([]Resource, len(records))
		for i, rec := range records {
			resources[i] = Resource{
				Title:       rec.Title,
				Type:        rec.Type,
				Link:        rec.Link,
				Language:    rec.Language,
				Category:    rec.Category,
				Description: rec.Description,
			}
		}

		b, err := json.Marshal(resources)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal resources: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
