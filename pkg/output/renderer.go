package output

import (
	"fmt"
	"io"

	"github.com/sdejongh/sidediff/pkg/models"
)

// Renderer defines the interface for presenting a comparison result
// Implementations include HTML, JSON and plain text renderers
type Renderer interface {
	// Render writes the result to w
	Render(w io.Writer, result *models.Result) error

	// Extension returns the file extension used when writing to disk
	Extension() string

	// Name returns the renderer name
	Name() string
}

// NewRenderer returns the renderer registered under format
func NewRenderer(format string) (Renderer, error) {
	switch format {
	case "html", "":
		return NewHTMLRenderer(false), nil
	case "page":
		return NewHTMLRenderer(true), nil
	case "json":
		return NewJSONRenderer(), nil
	case "text", "human":
		return NewTextRenderer(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (use: html, page, json, text)", format)
	}
}
