package handler

import (
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/vininote/internal/model"
	"github.com/sakif/vininote/internal/service"
)

// TastingHandler serves the library: list, detail, quick note, replace
// and delete.
type TastingHandler struct {
	base
	tastings *service.TastingService
}

// NewTastingHandler creates a TastingHandler.
func NewTastingHandler(tastings *service.TastingService, logger *slog.Logger) *TastingHandler {
	return &TastingHandler{base: base{logger: logger}, tastings: tastings}
}

// HandleHome returns the home summary.
//
// HTTP: GET /api/home
func (h *TastingHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tastings.Summary(r.Context()))
}

// HandleList returns the library, filtered by ?q=.
//
// HTTP: GET /api/tastings?q=
func (h *TastingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tastings.List(r.Context(), r.URL.Query().Get("q")))
}

// TastingDetail is a tasting with its display title.
type TastingDetail struct {
	model.Tasting
	Title string `json:"title"`
}

// HandleGet returns one tasting.
//
// HTTP: GET /api/tastings/{id}
func (h *TastingHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	t, err := h.tastings.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TastingDetail{Tasting: t, Title: t.Title()})
}

// quickNoteRequest is the home page form. The year rule lives in the
// service; the tag here only bounds the input.
type quickNoteRequest struct {
	Name string `json:"name" validate:"max=200"`
	Year string `json:"year" validate:"max=16"`
}

// HandleQuick saves a quick note.
//
// HTTP: POST /api/tastings/quick
// REQUEST BODY: {"name": "Château Musar", "year": "2017"}
//
// The home page form posts the same fields form-encoded; that variant
// redirects back home instead of returning JSON.
func (h *TastingHandler) HandleQuick(w http.ResponseWriter, r *http.Request) {
	form := isForm(r)

	var req quickNoteRequest
	if form {
		req = quickNoteRequest{Name: r.PostFormValue("name"), Year: r.PostFormValue("year")}
	} else if !h.decode(w, r, &req) {
		return
	}

	t, err := h.tastings.QuickNote(r.Context(), req.Name, req.Year)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if form {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func isForm(r *http.Request) bool {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return ct == "application/x-www-form-urlencoded"
}

// HandleReplace overwrites a tasting. The id comes from the path and the
// creation time from the stored record; both are ignored in the body.
//
// HTTP: PUT /api/tastings/{id}
func (h *TastingHandler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	var t model.Tasting
	if !h.decode(w, r, &t) {
		return
	}
	t.ID = chi.URLParam(r, "id")

	cur, err := h.tastings.GetByID(r.Context(), t.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	t.CreatedAt = cur.CreatedAt

	if err := h.tastings.Replace(r.Context(), t); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleDelete removes a tasting.
//
// HTTP: DELETE /api/tastings/{id}
func (h *TastingHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.tastings.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleClear empties the library.
//
// HTTP: DELETE /api/tastings
func (h *TastingHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.tastings.Clear(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
