package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*
var content embed.FS

// Templates returns the embedded page templates as an fs.FS
func Templates() (fs.FS, error) {
	return fs.Sub(content, "templates")
}
