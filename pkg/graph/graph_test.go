package graph

import (
	"encoding/json"
	"testing"
)

func TestColorForLevel(t *testing.T) {
	if got := ColorForLevel(nil, 0); got != "#b30000" {
		t.Errorf("Expected seed colour, got %s", got)
	}
	if got := ColorForLevel(DefaultPalette, len(DefaultPalette)+1); got != DefaultPalette[1] {
		t.Errorf("Expected palette to wrap, got %s", got)
	}
	if got := ColorForLevel([]string{"a", "b"}, 3); got != "b" {
		t.Errorf("Expected custom palette wrap, got %s", got)
	}
}

func TestGraph_AddNode(t *testing.T) {
	g := New()
	if !g.AddNode(Node{ID: "a", Level: 0, Color: "red"}) {
		t.Fatal("Expected first insert to succeed")
	}
	if g.AddNode(Node{ID: "a", Level: 3, Color: "blue"}) {
		t.Error("Expected duplicate insert to be rejected")
	}
	n, _ := g.Node("a")
	if n.Level != 0 || n.Color != "red" {
		t.Errorf("Existing node was modified: %+v", n)
	}
}

func TestGraph_SetEdge(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "a"})
	g.AddNode(Node{ID: "b"})
	g.AddNode(Node{ID: "c"})

	if err := g.SetEdge(Edge{From: "a", To: "b", Weight: 3, Label: "3 co."}); err != nil {
		t.Fatalf("SetEdge failed: %v", err)
	}
	if err := g.SetEdge(Edge{From: "a", To: "c", Weight: 1, Label: "1 co."}); err != nil {
		t.Fatalf("SetEdge failed: %v", err)
	}
	// Reverse direction overwrites, it does not accumulate.
	if err := g.SetEdge(Edge{From: "b", To: "a", Weight: 2, Label: "2 co."}); err != nil {
		t.Fatalf("SetEdge failed: %v", err)
	}

	if g.EdgeCount() != 2 {
		t.Fatalf("Expected 2 edges, got %d", g.EdgeCount())
	}
	e, ok := g.Edge("a", "b")
	if !ok || e.Weight != 2 || e.Label != "2 co." {
		t.Errorf("Expected last write to win, got %+v", e)
	}
	if first := g.Edges()[0]; first.From != "a" || first.To != "b" {
		t.Errorf("Expected overwritten edge to keep its position, got %+v", first)
	}

	if err := g.SetEdge(Edge{From: "a", To: "a"}); err == nil {
		t.Error("Expected self-loop to be rejected")
	}
	if err := g.SetEdge(Edge{From: "a", To: "z"}); err == nil {
		t.Error("Expected edge to missing node to be rejected")
	}
}

func TestGraph_Levels(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "seed", Level: 0})
	g.AddNode(Node{ID: "x", Level: 1})
	g.AddNode(Node{ID: "y", Level: 2})
	g.AddNode(Node{ID: "z", Level: 1})

	levels := g.Levels()
	if len(levels) != 3 {
		t.Fatalf("Expected 3 levels, got %d", len(levels))
	}
	if len(levels[1]) != 2 || levels[1][0] != "x" || levels[1][1] != "z" {
		t.Errorf("Unexpected level 1: %v", levels[1])
	}
}

func TestGraph_JSONRoundTrip(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "a", Label: "a", Color: "#b30000", Tooltip: "a\nOrigin: N/A"})
	g.AddNode(Node{ID: "b", Level: 1, Size: 15})
	g.SetEdge(Edge{From: "a", To: "b", Weight: 3, Label: "3 co."})

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Graph
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.NodeCount() != 2 || decoded.EdgeCount() != 1 {
		t.Fatalf("Decoded graph mismatch: %d nodes, %d edges", decoded.NodeCount(), decoded.EdgeCount())
	}

	bad := `{"nodes":[{"id":"a"}],"edges":[{"from":"a","to":"ghost"}]}`
	if err := json.Unmarshal([]byte(bad), &decoded); err == nil {
		t.Error("Expected dangling edge to fail decoding")
	}
}

func TestGraph_Clone(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "a"})
	g.AddNode(Node{ID: "b"})
	g.SetEdge(Edge{From: "a", To: "b", Weight: 1})

	c := g.Clone()
	c.SetEdge(Edge{From: "a", To: "b", Weight: 9})
	if e, _ := g.Edge("a", "b"); e.Weight != 1 {
		t.Errorf("Clone shares edge storage with original")
	}
}
