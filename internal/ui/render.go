package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/medicarehq/pharmacy-web/pkg/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer renders the embedded page templates. html/template escapes
// every interpolated value, so user-supplied strings are inert markup by
// construction.
type Renderer struct {
	templates *template.Template
	logger    *logging.Logger
}

// NewRenderer parses the embedded templates.
func NewRenderer(logger *logging.Logger) (*Renderer, error) {
	if logger == nil {
		logger = logging.Default()
	}
	t, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("ui: parse templates: %w", err)
	}
	return &Renderer{templates: t, logger: logger}, nil
}

// Render writes one named template.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	if err := r.templates.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("ui: render %s: %w", name, err)
	}
	return nil
}

// HTML renders a template into an HTTP response. The template executes
// into a buffer first so a mid-render failure never emits a torn page.
func (r *Renderer) HTML(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		r.logger.Error("template render failed", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
