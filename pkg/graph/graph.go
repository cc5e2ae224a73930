package graph

import (
	"encoding/json"
	"fmt"
)

// Graph is an undirected collaboration graph. Nodes and edges keep insertion
// order so that identical runs serialise identically.
type Graph struct {
	nodes     map[string]*Node
	nodeOrder []string
	edges     map[string]*Edge
	edgeOrder []string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		edges: make(map[string]*Edge),
	}
}

// AddNode inserts n. It returns false and leaves the graph untouched if a node
// with the same ID exists.
func (g *Graph) AddNode(n Node) bool {
	if _, exists := g.nodes[n.ID]; exists {
		return false
	}
	node := n
	g.nodes[n.ID] = &node
	g.nodeOrder = append(g.nodeOrder, n.ID)
	return true
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// HasNode reports whether id is in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// SetEdge adds the edge or overwrites the weight and label of an existing
// edge between the same unordered pair. Both endpoints must already exist and
// must differ.
func (g *Graph) SetEdge(e Edge) error {
	if e.From == e.To {
		return fmt.Errorf("self-loop on %s", e.From)
	}
	if !g.HasNode(e.From) || !g.HasNode(e.To) {
		return fmt.Errorf("edge %s-%s references a missing node", e.From, e.To)
	}

	key := e.Key()
	if existing, ok := g.edges[key]; ok {
		existing.Weight = e.Weight
		existing.Label = e.Label
		return nil
	}
	edge := e
	g.edges[key] = &edge
	g.edgeOrder = append(g.edgeOrder, key)
	return nil
}

// Edge returns the edge between a and b in either direction.
func (g *Graph) Edge(a, b string) (Edge, bool) {
	e, ok := g.edges[PairKey(a, b)]
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// Nodes returns a copy of the nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, *g.nodes[id])
	}
	return out
}

// Edges returns a copy of the edges in first-insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edgeOrder))
	for _, k := range g.edgeOrder {
		out = append(out, *g.edges[k])
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodeOrder) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edgeOrder) }

// Levels groups node IDs by level, in insertion order within a level.
func (g *Graph) Levels() [][]string {
	var levels [][]string
	for _, id := range g.nodeOrder {
		lvl := g.nodes[id].Level
		for len(levels) <= lvl {
			levels = append(levels, nil)
		}
		levels[lvl] = append(levels[lvl], id)
	}
	return levels
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	c := New()
	for _, n := range g.Nodes() {
		c.AddNode(n)
	}
	for _, e := range g.Edges() {
		c.edges[e.Key()] = &e
		c.edgeOrder = append(c.edgeOrder, e.Key())
	}
	return c
}

// Snapshot is the serialised form of a graph.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Snapshot returns the ordered serialisable view of the graph.
func (g *Graph) Snapshot() Snapshot {
	return Snapshot{Nodes: g.Nodes(), Edges: g.Edges()}
}

// FromSnapshot rebuilds a graph, validating endpoints.
func FromSnapshot(s Snapshot) (*Graph, error) {
	g := New()
	for _, n := range s.Nodes {
		if !g.AddNode(n) {
			return nil, fmt.Errorf("duplicate node %s", n.ID)
		}
	}
	for _, e := range s.Edges {
		if err := g.SetEdge(e); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// MarshalJSON encodes the graph as its snapshot.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Snapshot())
}

// UnmarshalJSON decodes a snapshot into g.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := FromSnapshot(s)
	if err != nil {
		return err
	}
	*g = *decoded
	return nil
}
