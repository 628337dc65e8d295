package web

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/erazemk/najdeno/internal/items"
	"github.com/erazemk/najdeno/internal/upload"
	webembed "github.com/erazemk/najdeno/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(repo *items.Repository, sink upload.Sink, logger logrus.FieldLogger) (http.Handler, error) {
	templates, err := LoadTemplates(logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		Templates: templates,
		Items:     repo,
		Uploads:   sink,
	}

	mux := http.NewServeMux()

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	mux.HandleFunc("GET /{$}", s.ItemsPage)
	mux.HandleFunc("GET /report", s.ReportPage)

	return mux, nil
}
