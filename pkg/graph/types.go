package graph

// DefaultPalette colours nodes by BFS level, seed first.
var DefaultPalette = []string{
	"#b30000",
	"#0A369D",
	"#4472CA",
	"#92B4F4",
	"#B1C9EE",
	"#C0D4EB",
	"#CFDEE7",
}

// ColorForLevel picks the palette entry for level, wrapping when the level
// exceeds the palette length.
func ColorForLevel(palette []string, level int) string {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	if level < 0 {
		level = 0
	}
	return palette[level%len(palette)]
}

// Node is an artist in the collaboration graph, keyed by lower-cased name.
type Node struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Level   int    `json:"level"`
	Color   string `json:"color"`
	Size    int    `json:"size"`
	Tooltip string `json:"title"`
}

// Edge is an undirected collaboration between two artists.
type Edge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Weight int    `json:"weight"`
	Label  string `json:"label"`
}

// Key returns the unordered pair key of the edge.
func (e Edge) Key() string {
	return PairKey(e.From, e.To)
}

// PairKey normalises an unordered pair of node IDs.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}
