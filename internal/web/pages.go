package web

import (
	"net/http"
	"strings"
)

func (s *Server) pageData(title, active string) PageData {
	limits := s.Uploads.Limits()
	return PageData{
		Title:          title,
		Active:         active,
		RequireImage:   s.Items.RequireImage(),
		MaxUploadBytes: limits.MaxBytes,
		Accept:         strings.Join(limits.Allowed, ","),
	}
}

// ItemsPage handles GET /. Items are loaded by the browser from /api/items.
func (s *Server) ItemsPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "items.html", s.pageData("Lost & Found", "items"))
}

// ReportPage handles GET /report.
func (s *Server) ReportPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "form.html", s.pageData("Report an item", "report"))
}
