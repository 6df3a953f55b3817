package wizard

import (
	"slices"
	"strings"
)

// MaxGrapeSuggestions caps the grape autocomplete list.
const MaxGrapeSuggestions = 8

var grapeSuggestions = []string{
	"Chardonnay",
	"Sauvignon Blanc",
	"Pinot Noir",
	"Syrah",
	"Merlot",
	"Cabernet Sauvignon",
	"Cabernet Franc",
	"Grenache",
	"Cinsault",
	"Mourvèdre",
	"Riesling",
	"Chenin",
	"Gewurztraminer",
	"Viognier",
	"Sémillon",
	"Malbec",
	"Gamay",
	"Pinot Gris",
	"Muscat",
	"Petit Verdot",
	"Carignan",
	"Tempranillo",
	"Sangiovese",
	"Nebbiolo",
}

var aromaSuggestions = []string{
	"Agrumes",
	"Pomme/Poire",
	"Fruits rouges",
	"Fruits noirs",
	"Fruits exotiques",
	"Fleurs",
	"Végétal",
	"Épices",
	"Vanille/Boisé",
	"Toasté",
	"Minéral",
	"Beurré/Noisette",
}

// GrapeSuggestions returns the full grape list.
func GrapeSuggestions() []string { return slices.Clone(grapeSuggestions) }

// AromaSuggestions returns the aroma chips.
func AromaSuggestions() []string { return slices.Clone(aromaSuggestions) }

// SuggestGrapes filters the grape list by a case-insensitive substring of
// query, drops grapes already selected (exact match) and keeps at most
// MaxGrapeSuggestions. A blank query matches everything.
func SuggestGrapes(query string, selected []string) []string {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]string, 0, MaxGrapeSuggestions)
	for _, g := range grapeSuggestions {
		if q != "" && !strings.Contains(strings.ToLower(g), q) {
			continue
		}
		if slices.Contains(selected, g) {
			continue
		}
		out = append(out, g)
		if len(out) == MaxGrapeSuggestions {
			break
		}
	}
	return out
}

// CanAddCustomGrape reports whether query should be offered as a new grape:
// it is not blank, not a known suggestion and not already selected, all
// compared case-insensitively.
func CanAddCustomGrape(query string, selected []string) bool {
	q := strings.TrimSpace(query)
	if q == "" {
		return false
	}
	same := func(g string) bool { return strings.EqualFold(g, q) }
	return !slices.ContainsFunc(grapeSuggestions, same) && !slices.ContainsFunc(selected, same)
}

// SuggestGrapes filters against this form's selected grapes.
func (c *Controller) SuggestGrapes(query string) []string {
	return SuggestGrapes(query, c.fields.Grapes)
}

// CanAddCustomGrape checks query against this form's selected grapes.
func (c *Controller) CanAddCustomGrape(query string) bool {
	return CanAddCustomGrape(query, c.fields.Grapes)
}
