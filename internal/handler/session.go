package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/vininote/internal/apperror"
	"github.com/sakif/vininote/internal/auth"
	"github.com/sakif/vininote/internal/model"
	"github.com/sakif/vininote/internal/service"
)

// SessionHandler serves login, logout and the profile page.
//
// SESSION COOKIE:
// Login creates the profile and sets an HttpOnly cookie naming it. The
// profile write endpoints sit behind auth.Sessions.RequireSession, and the
// service checks the cookie's persona against the stored profile.
type SessionHandler struct {
	base
	profiles  *service.ProfileService
	sessions  *auth.Sessions
	photos    service.PhotoStore
	maxUpload int64
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(
	profiles *service.ProfileService,
	sessions *auth.Sessions,
	photos service.PhotoStore,
	maxUpload int64,
	logger *slog.Logger,
) *SessionHandler {
	return &SessionHandler{
		base:      base{logger: logger},
		profiles:  profiles,
		sessions:  sessions,
		photos:    photos,
		maxUpload: maxUpload,
	}
}

type loginRequest struct {
	Email string `json:"email" validate:"required,max=254"`
	Name  string `json:"name" validate:"max=100"`
}

// HandleLogin creates the profile and the session cookie.
//
// HTTP: POST /api/session/login
// REQUEST BODY: {"email": "marie@example.com", "name": "Marie"}
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, err := h.profiles.Login(r.Context(), req.Email, req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.sessions.Issue(w, p.ID); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleLogout removes the profile and expires the cookie.
//
// HTTP: POST /api/session/logout
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.Logout(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetProfile returns the profile, 404 when nobody is logged in.
//
// HTTP: GET /api/profile
func (h *SessionHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type updateProfileRequest struct {
	Name     string  `json:"name" validate:"max=100"`
	Bio      string  `json:"bio" validate:"max=2000"`
	PhotoURL *string `json:"photoUrl"`
}

// HandleUpdateProfile saves the profile page.
//
// HTTP: PUT /api/profile (session required)
// REQUEST BODY: {"name": "", "bio": "…", "photoUrl": null}
func (h *SessionHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, err := h.profiles.Update(r.Context(), personaID(r), service.ProfileUpdate{
		Name:     req.Name,
		Bio:      req.Bio,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleProfilePhoto uploads a new profile photo.
//
// HTTP: POST /api/profile/photo (session required, multipart field "photo")
func (h *SessionHandler) HandleProfilePhoto(w http.ResponseWriter, r *http.Request) {
	cur, err := h.profiles.Get(r.Context())
	if err != nil {
		h.writeError(w, r, apperror.LoggedOut())
		return
	}

	contentType, data, err := readPhoto(w, r, h.maxUpload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	url := h.photos.Put(contentType, data)
	p, err := h.profiles.Update(r.Context(), personaID(r), service.ProfileUpdate{
		Name:     cur.Name,
		Bio:      deref(cur.Bio),
		PhotoURL: model.StringPtr(url),
	})
	if err != nil {
		h.photos.Revoke(url)
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func personaID(r *http.Request) string {
	id, _ := auth.PersonaIDFromContext(r.Context())
	return id
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
