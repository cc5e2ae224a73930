package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rmax-ai/collabgraph/pkg/client"
)

func main() {
	endpoint := flag.String("api", envOrDefault("COLLABGRAPH_API", client.DefaultEndpoint), "collabgraph server URL")
	flag.Parse()

	p := tea.NewProgram(initialModel(client.NewClient(*endpoint)), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
