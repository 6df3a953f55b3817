package wizard

import "github.com/sakif/vininote/internal/model"

// Patch is a batch of field edits, applied in declaration order. Nil
// pointers leave the field alone. Scores are clamped, never rejected.
type Patch struct {
	Year        *string          `json:"year,omitempty"`
	Name        *string          `json:"name,omitempty"`
	Color       *model.WineColor `json:"color,omitempty"`
	Region      *string          `json:"region,omitempty"`
	Appellation *string          `json:"appellation,omitempty"`

	AddGrapes    []string `json:"addGrapes,omitempty"`
	RemoveGrapes []string `json:"removeGrapes,omitempty"`

	Acidity     *int `json:"acidity,omitempty"`
	Body        *int `json:"body,omitempty"`
	Tannins     *int `json:"tannins,omitempty"`
	Sweetness   *int `json:"sweetness,omitempty"`
	AlcoholHeat *int `json:"alcoholHeat,omitempty"`

	AddAromas    []string `json:"addAromas,omitempty"`
	RemoveAromas []string `json:"removeAromas,omitempty"`
	ToggleAromas []string `json:"toggleAromas,omitempty"`

	Stars   *int    `json:"stars,omitempty"`
	Comment *string `json:"comment,omitempty"`

	// ClearPhoto drops the photo; setting one goes through the upload.
	ClearPhoto bool `json:"clearPhoto,omitempty"`
}

// Apply applies p. It returns the photo URL that was cleared, if any.
func (c *Controller) Apply(p Patch) (clearedPhoto *string) {
	if p.Year != nil {
		c.SetYear(*p.Year)
	}
	if p.Name != nil {
		c.SetName(*p.Name)
	}
	if p.Color != nil {
		c.SetColor(*p.Color)
	}
	if p.Region != nil {
		c.SetRegion(*p.Region)
	}
	if p.Appellation != nil {
		c.SetAppellation(*p.Appellation)
	}
	for _, g := range p.AddGrapes {
		c.AddGrape(g)
	}
	for _, g := range p.RemoveGrapes {
		c.RemoveGrape(g)
	}

	sliders := []struct {
		s Slider
		v *int
	}{
		{Acidity, p.Acidity},
		{Body, p.Body},
		{Tannins, p.Tannins},
		{Sweetness, p.Sweetness},
		{AlcoholHeat, p.AlcoholHeat},
	}
	for _, sl := range sliders {
		if sl.v != nil {
			c.SetSlider(sl.s, *sl.v)
		}
	}

	for _, a := range p.AddAromas {
		c.AddAroma(a)
	}
	for _, a := range p.RemoveAromas {
		c.RemoveAroma(a)
	}
	for _, a := range p.ToggleAromas {
		c.ToggleAroma(a)
	}

	if p.Stars != nil {
		c.SetStars(*p.Stars)
	}
	if p.Comment != nil {
		c.SetComment(*p.Comment)
	}
	if p.ClearPhoto {
		return c.SetPhotoURL(nil)
	}
	return nil
}
