package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sakif/vininote/internal/apperror"
	"github.com/sakif/vininote/internal/model"
	"github.com/sakif/vininote/internal/wizard"
)

// PhotoStore keeps uploaded photos and hands back their preview URL.
// *preview.Cache satisfies it.
type PhotoStore interface {
	Put(contentType string, data []byte) string
	Revoker
}

// TastingWriter is the part of TastingService the wizard saves through.
type TastingWriter interface {
	GetByID(ctx context.Context, id string) (model.Tasting, error)
	Save(ctx context.Context, t model.Tasting) error
	Replace(ctx context.Context, t model.Tasting) error
}

// draft is one open wizard. originalPhoto is the photo of the tasting
// being edited; the draft never revokes it unless Finish replaced it.
type draft struct {
	ctrl          *wizard.Controller
	originalPhoto *string
}

// ownsPhoto reports whether url was uploaded through this draft.
func (d *draft) ownsPhoto(url *string) bool {
	if url == nil {
		return false
	}
	return d.originalPhoto == nil || *d.originalPhoto != *url
}

// WizardService keeps open wizard drafts server-side and saves them.
type WizardService struct {
	tastings TastingWriter
	photos   PhotoStore
	drafts   *registry[draft]
	logger   *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewWizardService creates a WizardService.
func NewWizardService(tastings TastingWriter, photos PhotoStore, logger *slog.Logger) *WizardService {
	s := &WizardService{
		tastings: tastings,
		photos:   photos,
		logger:   logger,
		now:      time.Now,
		newID:    NewTastingID,
	}
	s.drafts = newRegistry[draft]("wizard draft", DefaultRegistryLimit, s.release)
	return s
}

// StepView is one tab of the step bar.
type StepView struct {
	N         int    `json:"n"`
	Label     string `json:"label"`
	Current   bool   `json:"current"`
	Reachable bool   `json:"reachable"`
}

// DraftView is the state of a draft as the view renders it.
type DraftView struct {
	ID        string                   `json:"id"`
	Step      int                      `json:"step"`
	Title     string                   `json:"title"`
	Progress  int                      `json:"progress"`
	Editing   bool                     `json:"editing"`
	TastingID string                   `json:"tastingId,omitempty"`
	GateOpen  bool                     `json:"gateOpen"`
	Steps     []StepView               `json:"steps"`
	Fields    wizard.Fields            `json:"fields"`
	Hints     map[wizard.Slider]string `json:"hints"`
}

func draftView(id string, d *draft) DraftView {
	c := d.ctrl
	v := DraftView{
		ID:       id,
		Step:     c.Step(),
		Title:    wizard.StepTitle(c.Step()),
		Progress: c.Progress(),
		GateOpen: c.GateOpen(),
		Steps:    make([]StepView, 0, wizard.TotalSteps),
		Fields:   c.Fields(),
		Hints:    c.Hints(),
	}
	v.TastingID, v.Editing = c.Editing()
	for n := 1; n <= wizard.TotalSteps; n++ {
		v.Steps = append(v.Steps, StepView{
			N:         n,
			Label:     wizard.StepLabel(n),
			Current:   n == c.Step(),
			Reachable: c.CanJumpTo(n),
		})
	}
	return v
}

// New opens an empty draft on step 1.
func (s *WizardService) New(_ context.Context) DraftView {
	d := &draft{ctrl: wizard.New()}
	id := s.drafts.add(d)
	return draftView(id, d)
}

// Edit opens a draft prefilled from an existing tasting, on step 1.
func (s *WizardService) Edit(ctx context.Context, tastingID string) (DraftView, error) {
	t, err := s.tastings.GetByID(ctx, tastingID)
	if err != nil {
		return DraftView{}, err
	}
	d := &draft{ctrl: wizard.LoadTasting(t), originalPhoto: t.Wine.PhotoURL}
	id := s.drafts.add(d)
	return draftView(id, d), nil
}

// Get returns the current state of a draft.
func (s *WizardService) Get(_ context.Context, id string) (DraftView, error) {
	return s.apply(id, func(*draft) error { return nil })
}

// Update applies a field patch. Scores are clamped, never rejected.
func (s *WizardService) Update(_ context.Context, id string, p wizard.Patch) (DraftView, error) {
	return s.apply(id, func(d *draft) error {
		if cleared := d.ctrl.Apply(p); d.ownsPhoto(cleared) {
			s.photos.Revoke(*cleared)
		}
		return nil
	})
}

// Next moves forward one step if the gate is open.
func (s *WizardService) Next(_ context.Context, id string) (DraftView, error) {
	return s.apply(id, func(d *draft) error { return wizardError(d.ctrl.Next()) })
}

// Back moves back one step; it always succeeds.
func (s *WizardService) Back(_ context.Context, id string) (DraftView, error) {
	return s.apply(id, func(d *draft) error {
		d.ctrl.Back()
		return nil
	})
}

// JumpTo moves straight to step n.
func (s *WizardService) JumpTo(_ context.Context, id string, n int) (DraftView, error) {
	return s.apply(id, func(d *draft) error { return wizardError(d.ctrl.JumpTo(n)) })
}

// KeyResult is the outcome of a key press. Tasting is set when the key
// finished the wizard, and Draft otherwise.
type KeyResult struct {
	Action  wizard.Action  `json:"action"`
	Draft   *DraftView     `json:"draft,omitempty"`
	Tasting *model.Tasting `json:"tasting,omitempty"`
}

// Key applies a keyboard shortcut.
func (s *WizardService) Key(ctx context.Context, id string, ev wizard.KeyEvent) (KeyResult, error) {
	var action wizard.Action
	v, err := s.apply(id, func(d *draft) error {
		a, err := d.ctrl.HandleKey(ev)
		action = a
		return wizardError(err)
	})
	if err != nil {
		return KeyResult{Action: action}, err
	}

	if action == wizard.ActionFinish {
		t, err := s.Finish(ctx, id)
		if err != nil {
			return KeyResult{Action: action}, err
		}
		return KeyResult{Action: action, Tasting: &t}, nil
	}
	return KeyResult{Action: action, Draft: &v}, nil
}

// AttachPhoto stores an uploaded photo and sets it on the draft, releasing
// the photo it replaces.
func (s *WizardService) AttachPhoto(_ context.Context, id, contentType string, data []byte) (DraftView, error) {
	return s.apply(id, func(d *draft) error {
		url := s.photos.Put(contentType, data)
		if prev := d.ctrl.SetPhotoURL(&url); d.ownsPhoto(prev) {
			s.photos.Revoke(*prev)
		}
		return nil
	})
}

// Finish saves the draft (insert for a new tasting, replace when editing)
// and closes it. It is only allowed on the last step with the gate open.
func (s *WizardService) Finish(ctx context.Context, id string) (model.Tasting, error) {
	var t model.Tasting
	var replacedPhoto *string

	err := s.drafts.with(id, func(d *draft) error {
		c := d.ctrl
		if c.Step() != wizard.TotalSteps {
			return apperror.ValidationFailed("step", "finish is only available on the last step")
		}
		if !c.GateOpen() {
			return wizardError(wizard.ErrGate)
		}

		t = c.Finish(s.now(), s.newID())
		if _, editing := c.Editing(); editing {
			if err := s.tastings.Replace(ctx, t); err != nil {
				return err
			}
			if d.originalPhoto != nil && (t.Wine.PhotoURL == nil || *t.Wine.PhotoURL != *d.originalPhoto) {
				replacedPhoto = d.originalPhoto
			}
			return nil
		}
		return s.tastings.Save(ctx, t)
	})
	if err != nil {
		return model.Tasting{}, err
	}

	// The saved tasting now references the draft's photo, so it stays.
	s.drafts.remove(id)
	if replacedPhoto != nil {
		s.photos.Revoke(*replacedPhoto)
	}

	s.logger.Info("wizard finished", slog.String("draft", id), slog.String("tasting", t.ID))
	return t, nil
}

// Discard closes a draft without saving and releases its uploaded photo.
func (s *WizardService) Discard(_ context.Context, id string) error {
	d, ok := s.drafts.remove(id)
	if !ok {
		return apperror.NotFound("wizard draft", id)
	}
	s.release(d)
	return nil
}

func (s *WizardService) release(d *draft) {
	if url := d.ctrl.Fields().PhotoURL; d.ownsPhoto(url) {
		s.photos.Revoke(*url)
	}
}

func (s *WizardService) apply(id string, fn func(*draft) error) (DraftView, error) {
	var v DraftView
	err := s.drafts.with(id, func(d *draft) error {
		if err := fn(d); err != nil {
			return err
		}
		v = draftView(id, d)
		return nil
	})
	return v, err
}

func wizardError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, wizard.ErrGate):
		return apperror.ValidationFailed("step", wizard.ErrGate.Error())
	case errors.Is(err, wizard.ErrStepOutOfRange):
		return apperror.ValidationFailed("step", "step out of range")
	}
	return err
}
