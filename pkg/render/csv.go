package render

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rmax-ai/collabgraph/pkg/graph"
)

// EdgesCSV writes one row per edge: source, target, weight, label.
func EdgesCSV(w io.Writer, g *graph.Graph) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"source", "target", "weight", "label"}); err != nil {
		return err
	}
	for _, e := range g.Edges() {
		if err := writer.Write([]string{e.From, e.To, strconv.Itoa(e.Weight), e.Label}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// NodesCSV writes one row per node: id, label, level, color, size.
func NodesCSV(w io.Writer, g *graph.Graph) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "label", "level", "color", "size"}); err != nil {
		return err
	}
	for _, n := range g.Nodes() {
		row := []string{n.ID, n.Label, strconv.Itoa(n.Level), n.Color, strconv.Itoa(n.Size)}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
