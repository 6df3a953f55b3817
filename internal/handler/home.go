// Package handler contains the HTTP handlers of the journal.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the incoming request (path params, query, JSON or form body)
//  2. Call one service method
//  3. Write the response with writeJSON / writeError
//
// Handlers hold no business rules. Anything a CLI command would also need
// lives in the service package.
package handler

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/sakif/vininote/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// HomeHandler renders the home page.
//
// Templates are parsed once at startup: base.html defines the page and
// home.html fills its "content" block.
type HomeHandler struct {
	base
	templates *template.Template
	tastings  *service.TastingService
}

// NewHomeHandler parses the embedded templates.
func NewHomeHandler(tastings *service.TastingService, logger *slog.Logger) (*HomeHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/base.html", "templates/home.html")
	if err != nil {
		return nil, err
	}
	return &HomeHandler{base: base{logger: logger}, templates: tmpl, tastings: tastings}, nil
}

// HandleHome serves the home page.
//
// HTTP: GET /
func (h *HomeHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title":   "VinoNote",
		"Summary": h.tastings.Summary(r.Context()),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
