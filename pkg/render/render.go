// Package render turns collaboration graphs and song lists into HTML, JSON,
// CSV and plain-text output.
package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/rmax-ai/collabgraph/pkg/artist"
	"github.com/rmax-ai/collabgraph/pkg/coauthor"
	"github.com/rmax-ai/collabgraph/pkg/graph"
	"github.com/rmax-ai/collabgraph/web"
)

// Format is an output format.
type Format string

const (
	FormatHTML Format = "html"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatText Format = "text"
)

// ParseFormat validates a format name. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatJSON, nil
	case FormatHTML, FormatJSON, FormatCSV, FormatText:
		return f, nil
	}
	return "", errors.Newf("unknown output format %q", s)
}

// FormatForPath picks the format from a file extension; unknown extensions
// fall back to HTML.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".csv":
		return FormatCSV
	case ".txt":
		return FormatText
	}
	return FormatHTML
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatText:
		return "text/plain; charset=utf-8"
	}
	return "application/json"
}

// Page describes the HTML page around a graph.
type Page struct {
	Title   string
	Height  string
	Filters string
}

var (
	pageOnce sync.Once
	pageTmpl *template.Template
	pageErr  error
)

func graphTemplate() (*template.Template, error) {
	pageOnce.Do(func() {
		fsys, err := web.Templates()
		if err != nil {
			pageErr = errors.Wrap(err, "open templates")
			return
		}
		pageTmpl, pageErr = template.ParseFS(fsys, "graph.html.tmpl")
	})
	return pageTmpl, pageErr
}

// HTML writes a standalone vis-network page for g. Layout happens in the
// browser.
func HTML(w io.Writer, g *graph.Graph, page Page) error {
	tmpl, err := graphTemplate()
	if err != nil {
		return err
	}
	if page.Title == "" {
		page.Title = "Artist Collaboration Network"
	}
	if page.Height == "" {
		page.Height = "900px"
	}
	data := struct {
		Page
		Nodes     []graph.Node
		Edges     []graph.Edge
		NodeCount int
		EdgeCount int
	}{
		Page:      page,
		Nodes:     g.Nodes(),
		Edges:     g.Edges(),
		NodeCount: g.NodeCount(),
		EdgeCount: g.EdgeCount(),
	}
	return errors.Wrap(tmpl.Execute(w, data), "render graph page")
}

// JSON writes g with nodes and edges in insertion order.
func JSON(w io.Writer, g *graph.Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(g.Snapshot())
}

// Text writes one block per level listing its artists, followed by the
// edges.
func Text(w io.Writer, g *graph.Graph) error {
	tw := &textWriter{w: w}
	for level, ids := range g.Levels() {
		tw.printf("Level %d (%d)\n", level, len(ids))
		for _, id := range ids {
			n, _ := g.Node(id)
			tw.printf("  %-30s size=%-3d %s\n", n.Label, n.Size, n.Color)
		}
	}
	if g.EdgeCount() > 0 {
		tw.printf("Collaborations (%d)\n", g.EdgeCount())
		for _, e := range g.Edges() {
			tw.printf("  %s -- %s  %s\n", e.From, e.To, e.Label)
		}
	}
	return tw.err
}

// Write renders g in format f.
func Write(w io.Writer, g *graph.Graph, f Format, page Page) error {
	switch f {
	case FormatHTML:
		return HTML(w, g, page)
	case FormatCSV:
		return EdgesCSV(w, g)
	case FormatText:
		return Text(w, g)
	}
	return JSON(w, g)
}

// SongTable lists the n songs with the most coauthors. Titles are cut before
// any parenthesised suffix and padded to a fixed column.
func SongTable(w io.Writer, songs []artist.Song, n int) error {
	tw := &textWriter{w: w}
	for _, s := range coauthor.TopSongs(songs, n) {
		title := strings.TrimSpace(strings.SplitN(s.Title, "(", 2)[0])
		names := make([]string, 0, len(s.Coauthors))
		for _, c := range s.Coauthors {
			names = append(names, c.Name)
		}
		tw.printf("- %-25s || %s\n", title, strings.Join(names, " | "))
	}
	return tw.err
}

type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) printf(format string, args ...interface{}) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}
