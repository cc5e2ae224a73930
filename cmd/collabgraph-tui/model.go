package main

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rmax-ai/collabgraph/pkg/client"
	"github.com/rmax-ai/collabgraph/pkg/filter"
)

// Config
const (
	viewportHeight = 20
	requestTimeout = 5 * time.Minute
)

// Styles
var (
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	labelStyle  = lipgloss.NewStyle().Width(16).Bold(true)
	focusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			Width(100)

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Width(100)

	levelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	edgeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
)

// field is one labelled input of the form.
type field struct {
	label string
	key   string
	input textinput.Model
}

const (
	keySeed    = "seed"
	keyDepth   = "depth"
	keyBreadth = "breadth"
)

type expandMsg struct {
	result *client.GraphResult
	err    error
}

type savedMsg struct {
	path string
	err  error
}

// graphAPI is the part of the SDK client the explorer uses.
type graphAPI interface {
	Expand(ctx context.Context, req client.ExpandRequest) (*client.GraphResult, error)
	Render(ctx context.Context, req client.ExpandRequest, format string) ([]byte, error)
}

type model struct {
	api      graphAPI
	fields   []field
	focus    int
	spinner  spinner.Model
	viewport viewport.Model

	loading bool
	request client.ExpandRequest
	result  *client.GraphResult
	status  string
	err     error
}

func newField(label, key, placeholder string) field {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 64
	ti.Width = 40
	return field{label: label, key: key, input: ti}
}

func initialModel(api graphAPI) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	vp := viewport.New(100, viewportHeight)
	vp.Style = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		PaddingRight(2)

	fields := []field{
		newField("Seed artist", keySeed, "eg. Kendrick Lamar"),
		newField("Levels", keyDepth, "eg. 2"),
		newField("Per level", keyBreadth, "eg. 5"),
	}
	for _, d := range filter.Descriptors() {
		placeholder := d.Placeholder
		if len(d.Options) > 0 {
			placeholder = strings.Join(d.Options, "/")
		}
		fields = append(fields, newField(d.Title, string(d.Kind), placeholder))
	}
	fields[0].input.Focus()

	return model{
		api:      api,
		fields:   fields,
		spinner:  s,
		viewport: vp,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case expandMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.result = msg.result
			m.status = ""
			m.viewport.SetContent(graphContent(msg.result))
			m.viewport.GotoTop()
		}

	case savedMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.status = fmt.Sprintf("Wrote %s", msg.path)
		}

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = viewportHeight
	}

	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.loading {
		return m, nil
	}

	// Result view
	if m.result != nil {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "esc":
			m.result = nil
			m.status = ""
			m.err = nil
			return m, m.fields[m.focus].input.Focus()
		case "w":
			return m, saveHTML(m.api, m.request)
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	// Form view
	switch msg.String() {
	case "tab", "down":
		return m, m.setFocus((m.focus + 1) % len(m.fields))
	case "shift+tab", "up":
		return m, m.setFocus((m.focus - 1 + len(m.fields)) % len(m.fields))
	case "esc":
		return m, tea.Quit
	case "enter":
		req, err := m.buildRequest()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.loading = true
		m.request = req
		return m, tea.Batch(m.spinner.Tick, expand(m.api, req))
	}

	var cmd tea.Cmd
	m.fields[m.focus].input, cmd = m.fields[m.focus].input.Update(msg)
	return m, cmd
}

func (m *model) setFocus(i int) tea.Cmd {
	m.fields[m.focus].input.Blur()
	m.focus = i
	return m.fields[m.focus].input.Focus()
}

// buildRequest reads the form. Empty numeric fields use the server defaults.
func (m model) buildRequest() (client.ExpandRequest, error) {
	req := client.ExpandRequest{Filters: make(map[string]string)}
	for _, f := range m.fields {
		v := strings.TrimSpace(f.input.Value())
		switch f.key {
		case keySeed:
			req.Seed = v
		case keyDepth, keyBreadth:
			if v == "" {
				continue
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return req, fmt.Errorf("%s must be a non-negative number", strings.ToLower(f.label))
			}
			if f.key == keyDepth {
				req.MaxDepth = client.Int(n)
			} else {
				req.Breadth = client.Int(n)
			}
		default:
			if v != "" {
				req.Filters[f.key] = v
			}
		}
	}
	if req.Seed == "" {
		return req, fmt.Errorf("enter a seed artist")
	}
	return req, nil
}

func (m model) View() string {
	if m.loading {
		return fmt.Sprintf("\n %s Expanding the network of %s...\n", m.spinner.View(), m.request.Seed)
	}

	var footer string
	switch {
	case m.err != nil:
		footer = errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	case m.status != "":
		footer = okStyle.Render(m.status)
	}

	if m.result != nil {
		header := headerStyle.Render(fmt.Sprintf("%s collaboration network • %d artists • %d collaborations",
			m.result.SeedInfo.Name, m.result.Graph.NodeCount(), m.result.Graph.EdgeCount()))
		help := subtleStyle.Render("w write HTML • esc new search • ↑/↓ scroll • q quit")
		return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), footer, help)
	}

	var form strings.Builder
	for i, f := range m.fields {
		label := labelStyle.Render(f.label)
		if i == m.focus {
			label = focusStyle.Render(labelStyle.Render(f.label))
		}
		form.WriteString(label + f.input.View() + "\n")
	}
	pane := paneStyle.Render(form.String())
	help := subtleStyle.Render("tab next field • enter expand • esc quit")
	return lipgloss.JoinVertical(lipgloss.Left, headerStyle.Render("Artist Collaboration Explorer"), pane, footer, help)
}

// graphContent lists the artists of every level followed by the edges.
func graphContent(res *client.GraphResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Filters: %s\n\n", res.Filters)
	if res.Graph == nil {
		return sb.String()
	}
	for level, ids := range res.Graph.Levels() {
		sb.WriteString(levelStyle.Render(fmt.Sprintf("Level %d", level)) + "\n")
		for _, id := range ids {
			n, _ := res.Graph.Node(id)
			sb.WriteString(fmt.Sprintf("  • %s %s\n", n.Label, subtleStyle.Render(fmt.Sprintf("(size %d)", n.Size))))
		}
	}
	if res.Graph.EdgeCount() > 0 {
		sb.WriteString("\n" + levelStyle.Render("Collaborations") + "\n")
		for _, e := range res.Graph.Edges() {
			sb.WriteString(fmt.Sprintf("  %s ↔ %s %s\n", e.From, e.To, edgeStyle.Render(e.Label)))
		}
	}
	if len(res.Skipped) > 0 {
		sb.WriteString("\n" + subtleStyle.Render(fmt.Sprintf("%d candidates skipped", len(res.Skipped))) + "\n")
	}
	return sb.String()
}

// Commands

func expand(api graphAPI, req client.ExpandRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := api.Expand(ctx, req)
		return expandMsg{result: res, err: err}
	}
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// htmlPath names the output file after the seed.
func htmlPath(seed string) string {
	name := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(seed), "_"), "_")
	if name == "" {
		name = "graph"
	}
	return name + ".html"
}

func saveHTML(api graphAPI, req client.ExpandRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		page, err := api.Render(ctx, req, "html")
		if err != nil {
			return savedMsg{err: err}
		}
		path := htmlPath(req.Seed)
		if err := os.WriteFile(path, page, 0o644); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{path: path}
	}
}
