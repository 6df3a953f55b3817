package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/vininote/internal/preview"
)

// PreviewHandler serves uploaded photos from the in-memory cache.
type PreviewHandler struct {
	base
	cache *preview.Cache
}

// NewPreviewHandler creates a PreviewHandler.
func NewPreviewHandler(cache *preview.Cache, logger *slog.Logger) *PreviewHandler {
	return &PreviewHandler{base: base{logger: logger}, cache: cache}
}

// HandleGet writes one preview image. Previews do not survive a restart,
// so a 404 here is normal for older tastings.
//
// HTTP: GET /previews/{id}
func (h *PreviewHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	img, ok := h.cache.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := w.Write(img.Data); err != nil {
		h.logger.Debug("preview write failed", slog.String("error", err.Error()))
	}
}
