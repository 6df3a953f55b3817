package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/sakif/vininote/internal/apperror"
	"github.com/sakif/vininote/internal/model"
	"github.com/sakif/vininote/internal/repository"
)

const (
	// MaxDerivedNameLength caps a display name taken from an email address.
	MaxDerivedNameLength = 24
	// FallbackName is used when neither a name nor an email local part exists.
	FallbackName = "Utilisateur"
)

// Revoker releases an uploaded photo preview. *preview.Cache satisfies it.
type Revoker interface {
	Revoke(url string) bool
}

// ProfileService manages the single persona of the journal.
//
// LOGIN WITHOUT PASSWORDS:
// Login just creates a profile with a fresh id. The HTTP layer then issues
// a session cookie for that id, and profile edits require the cookie to
// name the current profile.
type ProfileService struct {
	profile  repository.ProfileRepository
	previews Revoker
	logger   *slog.Logger
	newID    func() string
}

// NewProfileService creates a ProfileService. previews may be nil.
func NewProfileService(profile repository.ProfileRepository, previews Revoker, logger *slog.Logger) *ProfileService {
	return &ProfileService{profile: profile, previews: previews, logger: logger, newID: uuid.NewString}
}

// Login replaces any profile with a new one for email.
//
// The display name is the trimmed name, else the email's local part cut
// to MaxDerivedNameLength characters, else FallbackName.
func (s *ProfileService) Login(ctx context.Context, email, name string) (model.UserProfile, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.UserProfile{}, apperror.ValidationFailed("email", "email is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return model.UserProfile{}, apperror.ValidationFailed("email", "invalid email format")
	}

	p := model.UserProfile{
		ID:    s.newID(),
		Name:  DisplayName(email, name),
		Email: model.StringPtr(email),
		Bio:   model.StringPtr(""),
	}

	old, hadOld := s.profile.Get(ctx)
	if err := s.profile.Set(ctx, p); err != nil {
		return model.UserProfile{}, fmt.Errorf("saving profile: %w", err)
	}
	if hadOld {
		s.revoke(old.PhotoURL)
	}

	s.logger.Info("logged in", slog.String("id", p.ID), slog.String("name", p.Name))
	return p, nil
}

// DisplayName derives the name used at login.
func DisplayName(email, name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	if r := []rune(local); len(r) > MaxDerivedNameLength {
		local = string(r[:MaxDerivedNameLength])
	}
	if local != "" {
		return local
	}
	return FallbackName
}

// Get returns the current profile or apperror.ErrNotFound.
func (s *ProfileService) Get(ctx context.Context) (model.UserProfile, error) {
	p, ok := s.profile.Get(ctx)
	if !ok {
		return model.UserProfile{}, apperror.NotFound("profile", "")
	}
	return p, nil
}

// ProfileUpdate is an edit of the profile page. PhotoURL replaces the
// photo as given: nil removes it.
type ProfileUpdate struct {
	Name     string
	Bio      string
	PhotoURL *string
}

// Update edits the profile of personaID.
//
// A blank name keeps the current one; the bio is trimmed and may be
// emptied. Without a profile the result is ErrUnauthorized, and a
// personaID naming another profile is ErrForbidden.
func (s *ProfileService) Update(ctx context.Context, personaID string, u ProfileUpdate) (model.UserProfile, error) {
	var previous *string
	updated, err := s.profile.Update(ctx, func(p model.UserProfile) (model.UserProfile, error) {
		if p.ID == "" {
			return p, apperror.LoggedOut()
		}
		if personaID != p.ID {
			return p, apperror.StalePersona()
		}
		previous = p.PhotoURL
		if name := strings.TrimSpace(u.Name); name != "" {
			p.Name = name
		}
		p.Bio = model.StringPtr(strings.TrimSpace(u.Bio))
		p.PhotoURL = u.PhotoURL
		return p, nil
	})
	if _, ok := apperror.As(err); ok {
		return model.UserProfile{}, err
	}
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("updating profile: %w", err)
	}

	if previous != nil && (updated.PhotoURL == nil || *updated.PhotoURL != *previous) {
		s.revoke(previous)
	}

	s.logger.Info("profile updated", slog.String("id", updated.ID))
	return updated, nil
}

// Logout removes the profile. Logging out twice is not an error.
func (s *ProfileService) Logout(ctx context.Context) error {
	old, had := s.profile.Get(ctx)
	if err := s.profile.Clear(ctx); err != nil {
		return fmt.Errorf("clearing profile: %w", err)
	}
	if had {
		s.revoke(old.PhotoURL)
		s.logger.Info("logged out", slog.String("id", old.ID))
	}
	return nil
}

func (s *ProfileService) revoke(url *string) {
	if s.previews == nil || url == nil {
		return
	}
	s.previews.Revoke(*url)
}
