package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/vininote/internal/service"
)

// FavoriteHandler serves the favorites page and the star button.
type FavoriteHandler struct {
	base
	favorites *service.FavoriteService
}

// NewFavoriteHandler creates a FavoriteHandler.
func NewFavoriteHandler(favorites *service.FavoriteService, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{base: base{logger: logger}, favorites: favorites}
}

// FavoriteState is the body of both write endpoints' responses.
type FavoriteState struct {
	ID       string `json:"id"`
	Favorite bool   `json:"favorite"`
}

// HandleList returns the favorite tastings, filtered by ?q=.
//
// HTTP: GET /api/favorites?q=
func (h *FavoriteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.favorites.ListTastings(r.Context(), r.URL.Query().Get("q")))
}

type setFavoriteRequest struct {
	Favorite *bool `json:"favorite" validate:"required"`
}

// HandleSet forces the favorite mark.
//
// HTTP: PUT /api/favorites/{id}
// REQUEST BODY: {"favorite": true}
func (h *FavoriteHandler) HandleSet(w http.ResponseWriter, r *http.Request) {
	var req setFavoriteRequest
	if !h.decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.favorites.Set(r.Context(), id, *req.Favorite); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FavoriteState{ID: id, Favorite: *req.Favorite})
}

// HandleToggle flips the favorite mark.
//
// HTTP: POST /api/favorites/{id}/toggle
func (h *FavoriteHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	on, err := h.favorites.Toggle(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FavoriteState{ID: id, Favorite: on})
}
