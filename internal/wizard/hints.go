package wizard

var sliderHints = map[Slider][5]string{
	Acidity: {
		"👉 Très faible : plutôt mou/peu salivant.",
		"👉 Faible : rondeur + légère fraîcheur.",
		"👉 Moyenne : équilibre frais.",
		"👉 Élevée : vif, salivant.",
		"👉 Très élevée : très tendu, nerveux.",
	},
	Body: {
		"👉 Très léger : fluide, peu de matière.",
		"👉 Léger : fin, facile.",
		"👉 Moyen : présence équilibrée.",
		"👉 Riche : ample, plus de volume.",
		"👉 Très riche : dense, opulent.",
	},
	Tannins: {
		"👉 Très faibles : presque aucun assèchement.",
		"👉 Faibles : tanins souples.",
		"👉 Moyens : structure présente.",
		"👉 Élevés : bouche plus asséchante.",
		"👉 Très élevés : très astringent, puissant.",
	},
	Sweetness: {
		"👉 Très sec.",
		"👉 Sec.",
		"👉 Équilibré / légèrement doux.",
		"👉 Doux.",
		"👉 Très doux / liquoreux.",
	},
	AlcoholHeat: {
		"👉 Pas de chaleur alcoolique.",
		"👉 Faible sensation.",
		"👉 Moyenne : perceptible.",
		"👉 Élevée : ça chauffe.",
		"👉 Très élevée : très chaleureux.",
	},
}

// Hint describes a slider value in words. Anything outside 1..4 gets the
// top description, as the form does.
func Hint(s Slider, v int) string {
	h, ok := sliderHints[s]
	if !ok {
		return ""
	}
	if v >= 1 && v <= 4 {
		return h[v-1]
	}
	return h[4]
}

// Hints returns the hint of every slider for the current values.
func (c *Controller) Hints() map[Slider]string {
	f := c.fields
	return map[Slider]string{
		Acidity:     Hint(Acidity, f.Acidity),
		Body:        Hint(Body, f.Body),
		Tannins:     Hint(Tannins, f.Tannins),
		Sweetness:   Hint(Sweetness, f.Sweetness),
		AlcoholHeat: Hint(AlcoholHeat, f.AlcoholHeat),
	}
}
