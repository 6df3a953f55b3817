// Package wizard drives the five-step tasting entry form.
//
// STEPS:
//
//	1 Vin        year, name, colour, photo
//	2 Origine    region, appellation, grapes
//	3 Structure  acidity, body, tannins, sweetness, alcohol heat
//	4 Arômes     aroma tags
//	5 Conclusion stars, comment
//
// THE GATE:
// There is exactly one validation rule: year, name and colour must all be
// filled in. It is checked on every forward move and on every tab jump past
// step 1, whatever step the form is on. Later steps have no gate of their
// own. Back is always allowed and stops at step 1.
//
// The controller holds plain field state and knows nothing about storage:
// Finish assembles a model.Tasting and the caller decides whether to insert
// or replace it.
package wizard

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/sakif/vininote/internal/model"
)

// TotalSteps is the number of wizard steps.
const TotalSteps = 5

// Default slider and star value for a new form.
const DefaultScore = 3

var (
	// ErrGate is returned when moving forward without year, name and colour.
	ErrGate = errors.New("add at least vintage, name and color")
	// ErrStepOutOfRange is returned by JumpTo for n outside 1..TotalSteps.
	ErrStepOutOfRange = errors.New("step out of range")
)

var stepTitles = [TotalSteps + 1]string{"", "Le vin", "Origine", "Structure", "Arômes", "Conclusion"}
var stepLabels = [TotalSteps + 1]string{"", "Vin", "Origine", "Structure", "Arômes", "Conclusion"}

// StepTitle is the heading of step n, "" when out of range.
func StepTitle(n int) string {
	if n < 1 || n > TotalSteps {
		return ""
	}
	return stepTitles[n]
}

// StepLabel is the short tab label of step n.
func StepLabel(n int) string {
	if n < 1 || n > TotalSteps {
		return ""
	}
	return stepLabels[n]
}

// Slider names one of the 1..5 structure scores.
type Slider string

const (
	Acidity     Slider = "acidity"
	Body        Slider = "body"
	Tannins     Slider = "tannins"
	Sweetness   Slider = "sweetness"
	AlcoholHeat Slider = "alcoholHeat"
)

// Sliders lists every slider in form order.
var Sliders = []Slider{Acidity, Body, Tannins, Sweetness, AlcoholHeat}

// Fields is the raw form state. Slices are never nil.
type Fields struct {
	Year        string          `json:"year"`
	Name        string          `json:"name"`
	Color       model.WineColor `json:"color"`
	PhotoURL    *string         `json:"photoUrl"`
	Region      string          `json:"region"`
	Appellation string          `json:"appellation"`
	Grapes      []string        `json:"grapes"`

	Acidity     int `json:"acidity"`
	Body        int `json:"body"`
	Tannins     int `json:"tannins"`
	Sweetness   int `json:"sweetness"`
	AlcoholHeat int `json:"alcoholHeat"`

	Aromas []string `json:"aromas"`

	Stars   int    `json:"stars"`
	Comment string `json:"comment"`
}

func defaultFields() Fields {
	return Fields{
		Grapes:      []string{},
		Acidity:     DefaultScore,
		Body:        DefaultScore,
		Tannins:     DefaultScore,
		Sweetness:   DefaultScore,
		AlcoholHeat: DefaultScore,
		Aromas:      []string{},
		Stars:       DefaultScore,
	}
}

func (f Fields) clone() Fields {
	f.Grapes = slices.Clone(f.Grapes)
	f.Aromas = slices.Clone(f.Aromas)
	if f.PhotoURL != nil {
		f.PhotoURL = model.StringPtr(*f.PhotoURL)
	}
	return f
}

// Controller is one open wizard. It is not safe for concurrent use.
type Controller struct {
	step     int
	fields   Fields
	original *model.Tasting
}

// New opens an empty form on step 1.
func New() *Controller {
	return &Controller{step: 1, fields: defaultFields()}
}

// LoadTasting opens t for editing on step 1. Stored values are taken as
// they are; a null tannins score shows as the default.
func LoadTasting(t model.Tasting) *Controller {
	f := Fields{
		Year:        t.Wine.Year,
		Name:        t.Wine.Name,
		Color:       t.Wine.Color,
		Region:      t.Wine.Region,
		Appellation: t.Wine.Appellation,
		Grapes:      orEmpty(t.Wine.Grapes),
		Acidity:     t.Structure.Acidity,
		Body:        t.Structure.Body,
		Tannins:     DefaultScore,
		Sweetness:   t.Structure.Sweetness,
		AlcoholHeat: t.Structure.AlcoholHeat,
		Aromas:      orEmpty(t.Aromas),
		Stars:       t.Conclusion.Stars,
	}
	if t.Wine.PhotoURL != nil {
		f.PhotoURL = model.StringPtr(*t.Wine.PhotoURL)
	}
	if t.Structure.Tannins != nil {
		f.Tannins = *t.Structure.Tannins
	}
	if t.Conclusion.Comment != nil {
		f.Comment = *t.Conclusion.Comment
	}

	orig := t
	return &Controller{step: 1, fields: f.clone(), original: &orig}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

// Step is the current step, 1..TotalSteps.
func (c *Controller) Step() int { return c.step }

// Fields returns a copy of the form state.
func (c *Controller) Fields() Fields { return c.fields.clone() }

// Editing reports whether the form edits an existing tasting, and which.
func (c *Controller) Editing() (string, bool) {
	if c.original == nil {
		return "", false
	}
	return c.original.ID, true
}

// Progress is the step as a rounded percentage of TotalSteps.
func (c *Controller) Progress() int {
	return (c.step*100 + TotalSteps/2) / TotalSteps
}

// GateOpen reports whether year, name and colour are all filled in.
func (c *Controller) GateOpen() bool {
	return c.fields.Year != "" && c.fields.Name != "" && c.fields.Color != model.ColorNone
}

// Next moves one step forward, capped at TotalSteps.
func (c *Controller) Next() error {
	if !c.GateOpen() {
		return ErrGate
	}
	c.step = min(TotalSteps, c.step+1)
	return nil
}

// Back moves one step back, floored at 1.
func (c *Controller) Back() {
	c.step = max(1, c.step-1)
}

// CanJumpTo reports whether a tab jump to n is allowed.
func (c *Controller) CanJumpTo(n int) bool {
	if n < 1 || n > TotalSteps {
		return false
	}
	return n == 1 || c.GateOpen()
}

// JumpTo moves straight to step n.
func (c *Controller) JumpTo(n int) error {
	if n < 1 || n > TotalSteps {
		return ErrStepOutOfRange
	}
	if !c.CanJumpTo(n) {
		return ErrGate
	}
	c.step = n
	return nil
}

func (c *Controller) SetYear(v string)           { c.fields.Year = v }
func (c *Controller) SetName(v string)           { c.fields.Name = v }
func (c *Controller) SetColor(v model.WineColor) { c.fields.Color = v }
func (c *Controller) SetRegion(v string)         { c.fields.Region = v }
func (c *Controller) SetAppellation(v string)    { c.fields.Appellation = v }
func (c *Controller) SetComment(v string)        { c.fields.Comment = v }

// SetPhotoURL replaces the photo and returns the previous URL so the caller
// can release it. nil clears the photo.
func (c *Controller) SetPhotoURL(url *string) (previous *string) {
	previous = c.fields.PhotoURL
	c.fields.PhotoURL = url
	return previous
}

// ClampScore limits v to [lo, hi].
func ClampScore(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

// SetSlider sets one structure score, clamped to 1..5. Unknown sliders are
// ignored and reported as false.
func (c *Controller) SetSlider(s Slider, v int) bool {
	v = ClampScore(v, 1, 5)
	switch s {
	case Acidity:
		c.fields.Acidity = v
	case Body:
		c.fields.Body = v
	case Tannins:
		c.fields.Tannins = v
	case Sweetness:
		c.fields.Sweetness = v
	case AlcoholHeat:
		c.fields.AlcoholHeat = v
	default:
		return false
	}
	return true
}

// SetStars sets the rating, clamped to 0..5.
func (c *Controller) SetStars(v int) {
	c.fields.Stars = ClampScore(v, 0, 5)
}

// AddGrape appends a trimmed grape name unless it is blank or already there.
func (c *Controller) AddGrape(raw string) bool {
	return addTag(&c.fields.Grapes, raw)
}

// RemoveGrape removes g (exact match).
func (c *Controller) RemoveGrape(g string) {
	c.fields.Grapes = slices.DeleteFunc(c.fields.Grapes, func(x string) bool { return x == g })
}

// AddAroma appends a trimmed aroma unless it is blank or already there.
func (c *Controller) AddAroma(raw string) bool {
	return addTag(&c.fields.Aromas, raw)
}

// RemoveAroma removes a (exact match).
func (c *Controller) RemoveAroma(a string) {
	c.fields.Aromas = slices.DeleteFunc(c.fields.Aromas, func(x string) bool { return x == a })
}

// ToggleAroma is what clicking a suggestion chip does.
func (c *Controller) ToggleAroma(a string) {
	if slices.Contains(c.fields.Aromas, a) {
		c.RemoveAroma(a)
		return
	}
	c.AddAroma(a)
}

func addTag(tags *[]string, raw string) bool {
	v := strings.TrimSpace(raw)
	if v == "" || slices.Contains(*tags, v) {
		return false
	}
	*tags = append(*tags, v)
	return true
}

// Finish assembles the record. In edit mode the original id and createdAt
// are kept and now/newID are ignored.
func (c *Controller) Finish(now time.Time, newID string) model.Tasting {
	f := c.fields.clone()

	t := model.Tasting{
		ID:        newID,
		CreatedAt: model.FormatCreatedAt(now),
		Wine: model.Wine{
			Year:        f.Year,
			Name:        f.Name,
			Color:       f.Color,
			PhotoURL:    f.PhotoURL,
			Region:      f.Region,
			Appellation: f.Appellation,
			Grapes:      f.Grapes,
		},
		Structure: model.Structure{
			Acidity:     f.Acidity,
			Body:        f.Body,
			Sweetness:   f.Sweetness,
			AlcoholHeat: f.AlcoholHeat,
		},
		Aromas:     f.Aromas,
		Conclusion: model.Conclusion{Stars: f.Stars},
	}
	if f.Color == model.ColorRed {
		t.Structure.Tannins = model.IntPtr(f.Tannins)
	}
	if comment := strings.TrimSpace(f.Comment); comment != "" {
		t.Conclusion.Comment = model.StringPtr(comment)
	}

	if c.original != nil {
		t.ID = c.original.ID
		t.CreatedAt = c.original.CreatedAt
	}
	return t
}
