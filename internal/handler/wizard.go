package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/vininote/internal/apperror"
	"github.com/sakif/vininote/internal/service"
	"github.com/sakif/vininote/internal/wizard"
)

// WizardHandler serves the five-step tasting form.
type WizardHandler struct {
	base
	wizards   *service.WizardService
	maxUpload int64
}

// NewWizardHandler creates a WizardHandler. maxUpload bounds photo uploads.
func NewWizardHandler(wizards *service.WizardService, maxUpload int64, logger *slog.Logger) *WizardHandler {
	return &WizardHandler{base: base{logger: logger}, wizards: wizards, maxUpload: maxUpload}
}

// HandleNew opens an empty draft.
//
// HTTP: POST /api/wizard
func (h *WizardHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, h.wizards.New(r.Context()))
}

// HandleEdit opens a draft on an existing tasting. A missing tasting is a
// 404, on which the view goes back to the library.
//
// HTTP: POST /api/wizard/edit/{tastingID}
func (h *WizardHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	v, err := h.wizards.Edit(r.Context(), chi.URLParam(r, "tastingID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// HandleGet returns a draft.
//
// HTTP: GET /api/wizard/{wid}
func (h *WizardHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.wizards.Get(r.Context(), chi.URLParam(r, "wid")))
}

// HandlePatch applies field edits.
//
// HTTP: PATCH /api/wizard/{wid}
// REQUEST BODY: any subset of wizard.Patch, e.g. {"name": "Morgon", "addGrapes": ["Gamay"]}
func (h *WizardHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	var p wizard.Patch
	if !h.decode(w, r, &p) {
		return
	}
	if p.Color != nil && !p.Color.Valid() {
		h.writeError(w, r, apperror.ValidationFailed("color", "color must be one of: rouge blanc rose"))
		return
	}
	h.respond(w, r)(h.wizards.Update(r.Context(), chi.URLParam(r, "wid"), p))
}

// HandleNext moves forward one step.
//
// HTTP: POST /api/wizard/{wid}/next
func (h *WizardHandler) HandleNext(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.wizards.Next(r.Context(), chi.URLParam(r, "wid")))
}

// HandleBack moves back one step.
//
// HTTP: POST /api/wizard/{wid}/back
func (h *WizardHandler) HandleBack(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.wizards.Back(r.Context(), chi.URLParam(r, "wid")))
}

// HandleJump jumps to a step tab.
//
// HTTP: POST /api/wizard/{wid}/jump/{step}
func (h *WizardHandler) HandleJump(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil {
		h.writeError(w, r, apperror.ValidationFailed("step", "step must be a number"))
		return
	}
	h.respond(w, r)(h.wizards.JumpTo(r.Context(), chi.URLParam(r, "wid"), n))
}

// HandleKey applies a keyboard shortcut.
//
// HTTP: POST /api/wizard/{wid}/key
// REQUEST BODY: {"key": "Enter", "ctrl": true, "meta": false, "inTextarea": false}
func (h *WizardHandler) HandleKey(w http.ResponseWriter, r *http.Request) {
	var ev wizard.KeyEvent
	if !h.decode(w, r, &ev) {
		return
	}
	res, err := h.wizards.Key(r.Context(), chi.URLParam(r, "wid"), ev)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandlePhoto uploads the wine photo.
//
// HTTP: POST /api/wizard/{wid}/photo (multipart field "photo")
func (h *WizardHandler) HandlePhoto(w http.ResponseWriter, r *http.Request) {
	contentType, data, err := readPhoto(w, r, h.maxUpload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r)(h.wizards.AttachPhoto(r.Context(), chi.URLParam(r, "wid"), contentType, data))
}

// HandleFinish saves the draft and returns the saved tasting.
//
// HTTP: POST /api/wizard/{wid}/finish
func (h *WizardHandler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	t, err := h.wizards.Finish(r.Context(), chi.URLParam(r, "wid"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleDiscard closes a draft without saving.
//
// HTTP: DELETE /api/wizard/{wid}
func (h *WizardHandler) HandleDiscard(w http.ResponseWriter, r *http.Request) {
	if err := h.wizards.Discard(r.Context(), chi.URLParam(r, "wid")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GrapeSuggestions is the grape autocomplete result.
type GrapeSuggestions struct {
	Suggestions []string `json:"suggestions"`
	CanAddQuery bool     `json:"canAddQuery"`
}

// HandleGrapeSuggestions completes a grape name. Grapes already on the
// form are passed as repeated ?selected= and left out.
//
// HTTP: GET /api/wizard/suggestions/grapes?q=&selected=
func (h *WizardHandler) HandleGrapeSuggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	selected := r.URL.Query()["selected"]

	writeJSON(w, http.StatusOK, GrapeSuggestions{
		Suggestions: wizard.SuggestGrapes(q, selected),
		CanAddQuery: wizard.CanAddCustomGrape(q, selected),
	})
}

func (h *WizardHandler) respond(w http.ResponseWriter, r *http.Request) func(service.DraftView, error) {
	return func(v service.DraftView, err error) {
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// HandleAromaSuggestions returns the aroma chips.
//
// HTTP: GET /api/wizard/suggestions/aromas
func (h *WizardHandler) HandleAromaSuggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, wizard.AromaSuggestions())
}
