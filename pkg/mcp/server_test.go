package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

const graphBody = `{
	"seed": "a", "max_depth": 1, "breadth": 5, "filters": "country=France",
	"seed_info": {"artist_id": "mb-a", "artist_name": "A"},
	"graph": {
		"nodes": [
			{"id": "a", "label": "a", "level": 0, "color": "#b30000", "size": 10},
			{"id": "b", "label": "b", "level": 1, "color": "#0A369D", "size": 10}
		],
		"edges": [{"from": "a", "to": "b", "weight": 2, "label": "2 co."}]
	},
	"skipped": [{"name": "C", "level": 1, "reason": "filtered"}]
}`

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	apiHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/graph":
			if r.URL.Query().Get("country") != "France" {
				t.Errorf("expected country filter, got %q", r.URL.RawQuery)
			}
			w.Write([]byte(graphBody))
		case "/v1/artists":
			w.Write([]byte(`{"artist_id": "mb-a", "artist_name": "A", "origin_country": "France", "life_span": {}, "tags": []}`))
		case "/v1/coauthors":
			w.Write([]byte(`{"artist": "A", "coauthors": [{"name": "B", "id": "sp-b", "count": 2}]}`))
		case "/v1/filters":
			w.Write([]byte(`{"filters": [{"kind": "genre", "title": "Genre", "placeholder": "eg. rap"}]}`))
		default:
			http.NotFound(w, r)
		}
	})
	ts := httptest.NewServer(apiHandler)
	t.Cleanup(ts.Close)
	return ts
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("Expected content in result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected TextContent, got %T", result.Content[0])
	}
	return text.Text
}

func TestMCPServer_Expand(t *testing.T) {
	s := NewServer(newAPI(t).URL)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name: "expand_collaborations",
			Arguments: map[string]interface{}{
				"seed":    "A",
				"depth":   1,
				"country": "France",
			},
		},
	}

	result, err := s.handleExpand(context.Background(), req)
	if err != nil {
		t.Fatalf("handleExpand failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("Expected success, got error: %s", resultText(t, result))
	}

	text := resultText(t, result)
	for _, want := range []string{"Level 0: a", "Level 1: b", "a <-> b (2 co.)", "Skipped 1 candidates."} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}

func TestMCPServer_ExpandOptionalNumbers(t *testing.T) {
	var queries []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(graphBody))
	}))
	defer ts.Close()
	s := NewServer(ts.URL)

	for _, args := range []map[string]interface{}{
		{"seed": "A", "depth": 1, "breadth": 0},
		{"seed": "A"},
	} {
		req := mcp.CallToolRequest{Params: mcp.CallToolParams{Name: "expand_collaborations", Arguments: args}}
		result, err := s.handleExpand(context.Background(), req)
		if err != nil {
			t.Fatalf("handleExpand failed: %v", err)
		}
		if result.IsError {
			t.Fatalf("Expected success, got error: %s", resultText(t, result))
		}
	}

	if len(queries) != 2 {
		t.Fatalf("expected 2 API calls, got %d", len(queries))
	}
	if queries[0] != "breadth=0&depth=1&seed=A" {
		t.Errorf("explicit zero breadth should be sent, got %q", queries[0])
	}
	if queries[1] != "seed=A" {
		t.Errorf("absent numbers should use the API defaults, got %q", queries[1])
	}
}

func TestMCPServer_ExpandMissingSeed(t *testing.T) {
	s := NewServer(newAPI(t).URL)

	req := mcp.CallToolRequest{Params: mcp.CallToolParams{Name: "expand_collaborations"}}
	result, err := s.handleExpand(context.Background(), req)
	if err != nil {
		t.Fatalf("handleExpand failed: %v", err)
	}
	if !result.IsError {
		t.Error("Expected tool error for missing seed")
	}
}

func TestMCPServer_ArtistAndCoauthors(t *testing.T) {
	s := NewServer(newAPI(t).URL)
	ctx := context.Background()

	result, err := s.handleArtistInfo(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: "artist_info", Arguments: map[string]interface{}{"name": "A"}},
	})
	if err != nil {
		t.Fatalf("handleArtistInfo failed: %v", err)
	}
	if !strings.Contains(resultText(t, result), `"origin_country": "France"`) {
		t.Errorf("unexpected artist text: %s", resultText(t, result))
	}

	result, err = s.handleTopCoauthors(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: "top_coauthors", Arguments: map[string]interface{}{"artist": "A", "n": 3}},
	})
	if err != nil {
		t.Fatalf("handleTopCoauthors failed: %v", err)
	}
	if !strings.Contains(resultText(t, result), "1. B (2 songs)") {
		t.Errorf("unexpected coauthors text: %s", resultText(t, result))
	}
}

func TestMCPServer_ReadFilters(t *testing.T) {
	s := NewServer(newAPI(t).URL)

	req := mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{
			URI: "collabgraph://filters",
		},
	}

	result, err := s.handleReadFilters(context.Background(), req)
	if err != nil {
		t.Fatalf("handleReadFilters failed: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("Expected 1 resource content, got %d", len(result))
	}

	content, ok := result[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("Expected TextResourceContents")
	}
	if content.MIMEType != "application/json" {
		t.Errorf("Expected application/json, got %s", content.MIMEType)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(content.Text), &decoded); err != nil {
		t.Errorf("Failed to parse result JSON: %v", err)
	}
}

func TestMCPServer_Prompt(t *testing.T) {
	s := NewServer("")

	req := mcp.GetPromptRequest{}
	req.Params.Name = promptName
	result, err := s.handleGetPrompt(context.Background(), req)
	if err != nil {
		t.Fatalf("handleGetPrompt failed: %v", err)
	}
	if len(result.Messages) != 1 {
		t.Errorf("Expected 1 prompt message, got %d", len(result.Messages))
	}

	req.Params.Name = "other"
	if _, err := s.handleGetPrompt(context.Background(), req); err == nil {
		t.Error("Expected error for unknown prompt")
	}
}
