// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data. The JSON tags below are the
// storage format as well as the API format, so renaming one is a breaking
// change for every journal already on disk.
package model

import "time"

// WineColor is the colour of a wine as picked in the first wizard step.
// The empty string means "not chosen yet".
type WineColor string

const (
	ColorRed   WineColor = "rouge"
	ColorWhite WineColor = "blanc"
	ColorRose  WineColor = "rose"
	ColorNone  WineColor = ""
)

// Valid reports whether c is one of the known colours (including ColorNone).
func (c WineColor) Valid() bool {
	switch c {
	case ColorRed, ColorWhite, ColorRose, ColorNone:
		return true
	}
	return false
}

// Tasting is one tasting note, the only domain entity of the journal.
//
// ID and CreatedAt are set once when the note is created and never change.
// Every other field is replaced wholesale on edit: there is no partial update.
//
// CreatedAt is kept as the ISO-8601 string it was written with so a journal
// written by another client round-trips byte for byte.
type Tasting struct {
	ID         string     `json:"id"`
	CreatedAt  string     `json:"createdAt"`
	Wine       Wine       `json:"wine"`
	Structure  Structure  `json:"structure"`
	Aromas     []string   `json:"aromas"`
	Conclusion Conclusion `json:"conclusion"`
}

// RecordID lets Tasting live in a store.Collection.
func (t Tasting) RecordID() string { return t.ID }

// Wine identifies the bottle: steps 1 and 2 of the wizard.
type Wine struct {
	Year        string    `json:"year"`
	Name        string    `json:"name"`
	Color       WineColor `json:"color"`
	PhotoURL    *string   `json:"photoUrl"` // preview URL only, see preview package
	Region      string    `json:"region"`
	Appellation string    `json:"appellation"`
	Grapes      []string  `json:"grapes"`
}

// Structure holds the five sensory scores. Values are expected in [1,5] but
// nothing below the wizard enforces that; the store passes them through as-is.
//
// Tannins is nil for anything that is not a red wine.
type Structure struct {
	Acidity     int  `json:"acidity"`
	Body        int  `json:"body"`
	Tannins     *int `json:"tannins"`
	Sweetness   int  `json:"sweetness"`
	AlcoholHeat int  `json:"alcoholHeat"`
}

// Conclusion is the final rating. Comment is nil when the taster left it blank.
type Conclusion struct {
	Stars   int     `json:"stars"`
	Comment *string `json:"comment"`
}

// IntPtr and StringPtr are small helpers for the nullable fields above.
func IntPtr(v int) *int { return &v }

// StringPtr returns a pointer to v.
func StringPtr(v string) *string { return &v }

// CreatedAtLayout is the ISO-8601 form written for new tastings: UTC with
// millisecond precision and a literal Z.
const CreatedAtLayout = "2006-01-02T15:04:05.000Z"

// FormatCreatedAt renders t in CreatedAtLayout.
func FormatCreatedAt(t time.Time) string {
	return t.UTC().Format(CreatedAtLayout)
}

// Title is the display title: "Name (Year)", with "Vin" for a nameless
// wine and no parentheses without a year.
func (t Tasting) Title() string {
	name := t.Wine.Name
	if name == "" {
		name = "Vin"
	}
	if t.Wine.Year == "" {
		return name
	}
	return name + " (" + t.Wine.Year + ")"
}
