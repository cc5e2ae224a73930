package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rmax-ai/collabgraph/pkg/artist"
	"github.com/rmax-ai/collabgraph/pkg/graph"
)

func sampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	g.AddNode(graph.Node{ID: "a", Label: "A", Level: 0, Color: "#b30000", Size: 10, Tooltip: "a\nOrigin: N/A"})
	g.AddNode(graph.Node{ID: "b", Label: "B </script>", Level: 1, Color: "#0A369D", Size: 15})
	if err := g.SetEdge(graph.Edge{From: "a", To: "b", Weight: 3, Label: "3 co."}); err != nil {
		t.Fatalf("SetEdge failed: %v", err)
	}
	return g
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := HTML(&buf, sampleGraph(t), Page{Title: "Kendrick", Filters: "country=france"}); err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"<title>Kendrick</title>", "vis-network", "country=france", "2 artists, 1 collaborations", `"3 co."`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in page", want)
		}
	}
	if strings.Contains(out, "B </script>") {
		t.Error("labels must be escaped inside the script block")
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleGraph(t)); err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	var snap graph.Snapshot
	if err := json.Unmarshal(buf.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(snap.Nodes) != 2 || snap.Nodes[0].ID != "a" || len(snap.Edges) != 1 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestCSV(t *testing.T) {
	g := sampleGraph(t)

	var edges bytes.Buffer
	if err := EdgesCSV(&edges, g); err != nil {
		t.Fatalf("EdgesCSV failed: %v", err)
	}
	rows, err := csv.NewReader(&edges).ReadAll()
	if err != nil {
		t.Fatalf("parse edges: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "a" || rows[1][2] != "3" || rows[1][3] != "3 co." {
		t.Errorf("unexpected edge rows %v", rows)
	}

	var nodes bytes.Buffer
	if err := NodesCSV(&nodes, g); err != nil {
		t.Fatalf("NodesCSV failed: %v", err)
	}
	rows, err = csv.NewReader(&nodes).ReadAll()
	if err != nil {
		t.Fatalf("parse nodes: %v", err)
	}
	if len(rows) != 3 || rows[2][2] != "1" || rows[2][4] != "15" {
		t.Errorf("unexpected node rows %v", rows)
	}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	if err := Text(&buf, sampleGraph(t)); err != nil {
		t.Fatalf("Text failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Level 0 (1)") || !strings.Contains(out, "Level 1 (1)") || !strings.Contains(out, "a -- b  3 co.") {
		t.Errorf("unexpected text output:\n%s", out)
	}
}

func TestSongTable(t *testing.T) {
	songs := []artist.Song{
		{Title: "Solo"},
		{Title: "Duet (Remix)", Coauthors: []artist.Coauthor{{Name: "SZA"}, {Name: "Drake"}}},
		{Title: "Feat", Coauthors: []artist.Coauthor{{Name: "SZA"}}},
	}
	var buf bytes.Buffer
	if err := SongTable(&buf, songs, 2); err != nil {
		t.Fatalf("SongTable failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", lines)
	}
	if !strings.HasPrefix(lines[0], "- Duet ") || !strings.HasSuffix(lines[0], "|| SZA | Drake") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if strings.Contains(lines[0], "Remix") {
		t.Error("title should be cut before the parenthesis")
	}
}

func TestFormats(t *testing.T) {
	cases := map[string]Format{"out.json": FormatJSON, "out.CSV": FormatCSV, "out.txt": FormatText, "out.html": FormatHTML, "out": FormatHTML}
	for path, want := range cases {
		if got := FormatForPath(path); got != want {
			t.Errorf("FormatForPath(%q) = %s, want %s", path, got, want)
		}
	}
	if f, err := ParseFormat(""); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(\"\") = %s, %v", f, err)
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("expected error for unknown format")
	}
}
