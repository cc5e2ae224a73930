package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rmax-ai/collabgraph/pkg/client"
	"github.com/rmax-ai/collabgraph/pkg/filter"
)

const promptName = "collabgraph-guide"

// Server adapts the collabgraph HTTP API to the Model Context Protocol.
type Server struct {
	mcpServer *server.MCPServer
	apiClient *client.Client
}

// NewServer creates a new MCP server instance.
func NewServer(apiURL string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"collabgraph",
			"1.0.0",
		),
		apiClient: client.NewClient(apiURL),
	}
	s.registerResources()
	s.registerTools()
	s.registerPrompts()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// --- Resources ---

func (s *Server) registerResources() {
	// collabgraph://filters
	s.mcpServer.AddResource(mcp.NewResource(
		"collabgraph://filters",
		"Collaboration Filters",
		mcp.WithResourceDescription("Filter kinds and named presets accepted by expand_collaborations"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadFilters)
}

// --- Tools ---

func (s *Server) registerTools() {
	// expand_collaborations
	s.mcpServer.AddTool(mcp.NewTool(
		"expand_collaborations",
		mcp.WithDescription("Build the collaboration network around a seed artist. Returns nodes per level and weighted edges."),
		mcp.WithString("seed", mcp.Required(), mcp.Description("The seed artist name (e.g., 'Kendrick Lamar')")),
		mcp.WithNumber("depth", mcp.Description("Number of collaboration levels (server default when omitted)")),
		mcp.WithNumber("breadth", mcp.Description("Coauthors kept per artist (server default when omitted)")),
		mcp.WithString("genre", mcp.Description("Keep only coauthors tagged with this genre (e.g., 'rap')")),
		mcp.WithString("country", mcp.Description("Keep only coauthors from this origin country")),
		mcp.WithString("started_after", mcp.Description("Keep only coauthors whose career began after this year")),
		mcp.WithString("ended", mcp.Description("'true' or 'false': keep only coauthors whose career ended or not")),
		mcp.WithString("preset", mcp.Description("Named filter preset")),
	), s.handleExpand)

	// artist_info
	s.mcpServer.AddTool(mcp.NewTool(
		"artist_info",
		mcp.WithDescription("Look up an artist's origin, life span and tags."),
		mcp.WithString("name", mcp.Required(), mcp.Description("The artist name")),
	), s.handleArtistInfo)

	// top_coauthors
	s.mcpServer.AddTool(mcp.NewTool(
		"top_coauthors",
		mcp.WithDescription("List an artist's most frequent coauthors with song counts."),
		mcp.WithString("artist", mcp.Required(), mcp.Description("The artist name")),
		mcp.WithNumber("n", mcp.Description("How many coauthors to return (default 5)")),
	), s.handleTopCoauthors)
}

// --- Prompts ---

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.NewPrompt(
		promptName,
		mcp.WithPromptDescription("Explains collaboration graphs, levels and filters"),
	), s.handleGetPrompt)
}

// --- Handlers ---

func (s *Server) handleReadFilters(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	filters, err := s.apiClient.Filters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch filters: %w", err)
	}

	data, err := json.MarshalIndent(filters, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal filters: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// optionalInt returns nil when the argument is absent, so the API default applies.
func optionalInt(request mcp.CallToolRequest, key string) *int {
	if _, ok := request.GetArguments()[key]; !ok {
		return nil
	}
	return client.Int(mcp.ParseInt(request, key, 0))
}

func (s *Server) handleExpand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := client.ExpandRequest{
		Seed:     mcp.ParseString(request, "seed", ""),
		MaxDepth: optionalInt(request, "depth"),
		Breadth:  optionalInt(request, "breadth"),
		Preset:   mcp.ParseString(request, "preset", ""),
		Filters:  make(map[string]string),
	}
	for _, d := range filter.Descriptors() {
		if v := mcp.ParseString(request, string(d.Kind), ""); v != "" {
			req.Filters[string(d.Kind)] = v
		}
	}

	res, err := s.apiClient.Expand(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}
	return mcp.NewToolResultText(summarize(res)), nil
}

func (s *Server) handleArtistInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := s.apiClient.Artist(ctx, mcp.ParseString(request, "name", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}
	if info.IsUnknown() {
		return mcp.NewToolResultText("Artist not found."), nil
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal artist: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleTopCoauthors(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := mcp.ParseString(request, "artist", "")
	ranks, err := s.apiClient.Coauthors(ctx, name, mcp.ParseInt(request, "n", 5))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}
	if len(ranks) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No coauthors found for %s.", name)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Top %d coauthors of %s:\n", len(ranks), name)
	for i, r := range ranks {
		fmt.Fprintf(&b, "%d. %s (%d songs)\n", i+1, r.Name, r.Count)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// summarize renders an expansion as plain text: nodes grouped by level, then
// edges with their labels.
func summarize(res *client.GraphResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Collaboration network of %s (depth %d, breadth %d, filters %s)\n",
		res.Seed, res.MaxDepth, res.Breadth, res.Filters)
	if res.Graph == nil {
		return b.String()
	}
	fmt.Fprintf(&b, "%d artists, %d collaborations\n", res.Graph.NodeCount(), res.Graph.EdgeCount())
	for level, ids := range res.Graph.Levels() {
		fmt.Fprintf(&b, "\nLevel %d: %s\n", level, strings.Join(ids, ", "))
	}
	if res.Graph.EdgeCount() > 0 {
		b.WriteString("\nCollaborations:\n")
		for _, e := range res.Graph.Edges() {
			fmt.Fprintf(&b, "- %s <-> %s (%s)\n", e.From, e.To, e.Label)
		}
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintf(&b, "\nSkipped %d candidates.\n", len(res.Skipped))
	}
	return b.String()
}

func (s *Server) handleGetPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	if name != promptName {
		return nil, fmt.Errorf("prompt not found: %s", name)
	}

	promptText := `You are exploring music collaboration networks with collabgraph.

Concepts:
- Seed: The artist the network starts from (level 0).
- Coauthor: An artist credited on the same song as another artist.
- Level: Distance from the seed in collaboration hops. Artists at the last level are not expanded.
- Breadth: How many of each artist's most frequent coauthors are followed.
- Filters: genre, country, started_after (year) and ended (true/false). A coauthor that fails any active filter is left out together with its edge.

Use 'artist_info' to check an artist exists, 'top_coauthors' for direct collaborators,
and 'expand_collaborations' for the multi-level network. Keep depth small (1-3); every
level multiplies the number of catalog lookups.
`

	return mcp.NewGetPromptResult(
		promptName,
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(promptText)),
		},
	), nil
}
