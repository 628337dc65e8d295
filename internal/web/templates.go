package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/erazemk/najdeno/internal/items"
	"github.com/erazemk/najdeno/internal/upload"
	webembed "github.com/erazemk/najdeno/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
	log       logrus.FieldLogger
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"megabytes": func(n int64) string {
			if n%(1<<20) == 0 {
				return fmt.Sprintf("%d MB", n>>20)
			}
			return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
		},
	}
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates(logger logrus.FieldLogger) (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	pages := []string{
		"items.html",
		"form.html",
	}

	ts := &Templates{templates: make(map[string]*template.Template), log: logger}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		ts.log.WithError(err).WithField("template", name).Error("failed to render template")
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title string
	// Active marks the current navigation entry.
	Active string
	// RequireImage marks the photo input as mandatory.
	RequireImage bool
	// MaxUploadBytes is 0 when the upload sink imposes no limit.
	MaxUploadBytes int64
	// Accept lists the image MIME types the upload sink takes.
	Accept string
}

// Server holds all dependencies for page handlers.
type Server struct {
	Templates *Templates
	Items     *items.Repository
	Uploads   upload.Sink
}
