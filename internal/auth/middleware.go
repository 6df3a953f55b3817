package auth

import (
	"context"
	"net/http"
	"time"
)

// DefaultCookieName is used when the config leaves the cookie name empty.
const DefaultCookieName = "vininote_session"

type contextKey string

const personaIDKey contextKey = "personaID"

// Sessions couples the token service with the cookie settings so handlers
// and middleware agree on one cookie.
type Sessions struct {
	tokens *TokenService
	name   string
	secure bool
}

// NewSessions creates the cookie helper. An empty name falls back to
// DefaultCookieName.
func NewSessions(tokens *TokenService, cookieName string, secure bool) *Sessions {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Sessions{tokens: tokens, name: cookieName, secure: secure}
}

// CookieName is the name of the session cookie.
func (s *Sessions) CookieName() string { return s.name }

// Issue signs a token for personaID and sets it as an HttpOnly cookie.
func (s *Sessions) Issue(w http.ResponseWriter, personaID string) error {
	token, err := s.tokens.Generate(personaID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.tokens.TTL() / time.Second),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// PersonaID validates the request's session cookie.
func (s *Sessions) PersonaID(r *http.Request) (string, error) {
	cookie, err := r.Cookie(s.name)
	if err != nil {
		return "", err
	}
	return s.tokens.Validate(cookie.Value)
}

// RequireSession rejects requests without a valid session cookie with 401
// and stores the persona id in the context of the others.
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func (s *Sessions) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.PersonaID(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized","message":"log in first"}`))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPersonaID(r.Context(), id)))
	})
}

// WithPersonaID returns a copy of ctx carrying id.
func WithPersonaID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, personaIDKey, id)
}

// PersonaIDFromContext returns the id RequireSession stored, if any.
func PersonaIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(personaIDKey).(string)
	return id, ok && id != ""
}
