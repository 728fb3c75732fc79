package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	PageLogin = "login.html"
	PageIndex = "index.html"
)

var pages = []string{PageLogin, PageIndex}

// TemplateManager renders the embedded pages, each parsed on a clone of the shared layout.
type TemplateManager struct {
	templates map[string]*template.Template
}

// NewTemplateManager parses the layout and every page.
func NewTemplateManager() (*TemplateManager, error) {
	base, err := template.ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	tm := &TemplateManager{templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone layout for %s: %w", page, err)
		}
		if _, err := t.ParseFS(templateFS, "templates/"+page); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", page, err)
		}
		tm.templates[page] = t
	}
	return tm, nil
}

// Render executes the named page with data and writes it with the given status.
//
// Output is buffered so a template error never leaves a half-written page.
func (tm *TemplateManager) Render(w http.ResponseWriter, status int, name string, data any) error {
	t, ok := tm.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
