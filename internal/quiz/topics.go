package quiz

// Shared rules of the basics quizzes.
const (
	DefaultPassScore    = 4
	DefaultXPPerCorrect = 10
)

// Topics returns the built-in quiz topics in hub order. The slice is
// fresh on every call.
func Topics() []Topic {
	return []Topic{grapeTopic, regionTopic, vintageTopic}
}

// Lookup finds a built-in topic by slug.
func Lookup(slug string) (Topic, bool) {
	for _, t := range Topics() {
		if t.Slug == slug {
			return t, true
		}
	}
	return Topic{}, false
}

var grapeTopic = Topic{
	Slug:         "grape",
	Title:        "Cépage",
	Subtitle:     "Comprendre ce que c’est, ce que ça dit (et ce que ça ne dit pas).",
	StorageKey:   "learn:basics:grape:quiz",
	PassScore:    DefaultPassScore,
	XPPerCorrect: DefaultXPPerCorrect,
	Questions: []Question{
		{
			ID:     "grape-1",
			Prompt: "Un cépage, c’est…",
			Answers: []Answer{
				{Label: "Une variété de raisin (ex : Syrah, Chardonnay)", Correct: true, Why: "Oui. Cépage = variété de raisin (la “matière première” du vin)."},
				{Label: "Une région viticole (ex : Bordeaux)", Why: "Non. Ça, c’est une région viticole (un lieu)."},
				{Label: "Une appellation (ex : Chablis)", Why: "Non. Ça, c’est une appellation (une zone + règles)."},
			},
		},
		{
			ID:     "grape-2",
			Prompt: "Vrai ou faux : si je connais le cépage, je connais forcément le goût du vin.",
			Answers: []Answer{
				{Label: "Vrai", Why: "Faux : climat, sol, maturité et vinification changent énormément le résultat."},
				{Label: "Faux", Correct: true, Why: "Exact : le cépage donne des indices, pas une certitude."},
			},
		},
		{
			ID:     "grape-3",
			Prompt: "Parmi ces éléments, lequel peut le plus changer le style d’un même cépage ?",
			Answers: []Answer{
				{Label: "Le climat et le lieu", Correct: true, Why: "Oui : climat frais vs chaud → acidité, maturité, arômes, alcool… tout change."},
				{Label: "Le nom du domaine uniquement", Why: "Le producteur compte, mais le lieu/climat et le style de vinif sont majeurs."},
				{Label: "La couleur de l’étiquette", Why: "Non : c’est du marketing, pas une info fiable sur le style."},
			},
		},
		{
			ID:     "grape-4",
			Prompt: "Lequel de ces cépages est souvent associé à des tanins plus présents ?",
			Answers: []Answer{
				{Label: "Syrah", Correct: true, Why: "Souvent : structure + tanins présents (selon style)."},
				{Label: "Sauvignon Blanc", Why: "Blanc : pas de tanins marqués comme un rouge."},
				{Label: "Chardonnay", Why: "Blanc : pas de tanins marqués (ou très faibles)."},
			},
		},
		{
			ID:     "grape-5",
			Prompt: "Pourquoi un Chardonnay peut être très différent d’une bouteille à l’autre ?",
			Answers: []Answer{
				{Label: "Parce que l’élevage (ex : bois) et la vinification influencent beaucoup", Correct: true, Why: "Exact : bois, élevage, fermentation, maturité… peuvent transformer le vin."},
				{Label: "Parce que Chardonnay veut dire “vin sucré”", Why: "Non : un cépage n’indique pas le sucre."},
				{Label: "Parce que tous les Chardonnay viennent de la même région", Why: "Au contraire : il est planté dans plein de régions."},
			},
		},
	},
}

var regionTopic = Topic{
	Slug:         "region",
	Title:        "Région vs Appellation",
	Subtitle:     "Large vs précis : comment lire l’origine sans se perdre.",
	StorageKey:   "learn:basics:region:quiz",
	PassScore:    DefaultPassScore,
	XPPerCorrect: DefaultXPPerCorrect,
	Questions: []Question{
		{
			ID:     "region-1",
			Prompt: "Une région viticole, c’est…",
			Answers: []Answer{
				{Label: "Une zone large (ex : Bordeaux, Bourgogne)", Correct: true, Why: "Oui : la région donne un cadre géographique et des styles fréquents."},
				{Label: "Une règle officielle obligatoire", Why: "Non : ça correspond plutôt à l’idée d’appellation/cahier des charges."},
				{Label: "Le nom du producteur", Why: "Non : ça, c’est le domaine/le producteur."},
			},
		},
		{
			ID:     "region-2",
			Prompt: "Une appellation, c’est…",
			Answers: []Answer{
				{Label: "Une zone plus précise + des règles (cépages, rendements, etc.)", Correct: true, Why: "Exact : appellation = aire délimitée + cahier des charges."},
				{Label: "Toujours un seul cépage", Why: "Non : certaines autorisent plusieurs cépages (assemblages)."},
				{Label: "La couleur du vin (rouge/blanc/rosé)", Why: "Non : la couleur n’est pas la définition d’une appellation."},
			},
		},
		{
			ID:     "region-3",
			Prompt: "Laquelle des infos est en général la plus “cadrante” sur le style ?",
			Answers: []Answer{
				{Label: "L’appellation", Correct: true, Why: "Souvent : règles + zone précise → style plus identifiable."},
				{Label: "La région uniquement", Why: "La région est utile, mais souvent trop large pour être très précise."},
				{Label: "Le code-barres", Why: "Ça ne donne aucune info sur le style."},
			},
		},
		{
			ID:     "region-4",
			Prompt: "Vrai ou faux : “Bordeaux” (tout seul) est une appellation unique.",
			Answers: []Answer{
				{Label: "Vrai", Why: "Faux : Bordeaux est une région et contient de nombreuses appellations."},
				{Label: "Faux", Correct: true, Why: "Exact : il y a plein d’appellations à l’intérieur."},
			},
		},
		{
			ID:     "region-5",
			Prompt: "Même appellation… deux vins peuvent être très différents surtout à cause de…",
			Answers: []Answer{
				{Label: "Le producteur et la vinification", Correct: true, Why: "Oui : style, élevage, maturité… le producteur fait souvent la différence."},
				{Label: "La forme de la bouteille uniquement", Why: "Non : ce n’est pas un facteur fiable."},
				{Label: "Le prix de l’étiquette", Why: "Le prix ne garantit pas un style précis."},
			},
		},
	},
}

var vintageTopic = Topic{
	Slug:         "vintage",
	Title:        "Millésime",
	Subtitle:     "Pourquoi une année change (parfois) tout.",
	StorageKey:   "learn:basics:vintage:quiz",
	PassScore:    DefaultPassScore,
	XPPerCorrect: DefaultXPPerCorrect,
	Questions: []Question{
		{
			ID:     "vintage-1",
			Prompt: "Le millésime correspond généralement à…",
			Answers: []Answer{
				{Label: "L’année de récolte des raisins", Correct: true, Why: "Oui : c’est l’année de vendange."},
				{Label: "L’année de mise en bouteille", Why: "Non : ça peut être plus tard."},
				{Label: "L’année où le vin est bu", Why: "Non : ça dépend de toi 😄"},
			},
		},
		{
			ID:     "vintage-2",
			Prompt: "Une année chaude tend à produire des vins…",
			Answers: []Answer{
				{Label: "Plus mûrs et souvent plus riches", Correct: true, Why: "Oui : maturité ↑, parfois alcool ↑."},
				{Label: "Toujours plus acides", Why: "Souvent l’inverse : acidité perçue ↓."},
				{Label: "Sans aucun impact", Why: "Si, mais variable selon régions/producteurs."},
			},
		},
		{
			ID:     "vintage-3",
			Prompt: "Vrai ou faux : un “bon millésime” garantit un grand vin.",
			Answers: []Answer{
				{Label: "Vrai", Why: "Faux : le producteur/terroir/vinification comptent énormément."},
				{Label: "Faux", Correct: true, Why: "Exact : millésime ≠ réussite automatique."},
			},
		},
		{
			ID:     "vintage-4",
			Prompt: "Quand le millésime est souvent le plus “visible” ?",
			Answers: []Answer{
				{Label: "Dans des régions à climat variable et des vins de garde", Correct: true, Why: "Oui : variations plus marquées."},
				{Label: "Uniquement sur les vins blancs", Why: "Non : ça dépend surtout du climat/style."},
				{Label: "Jamais", Why: "Si, parfois très clairement."},
			},
		},
		{
			ID:     "vintage-5",
			Prompt: "Lequel peut compenser une année compliquée ?",
			Answers: []Answer{
				{Label: "Un bon producteur (tri, choix de vinification…)", Correct: true, Why: "Oui : décisions + savoir-faire."},
				{Label: "La couleur de l’étiquette", Why: "Non 😅"},
				{Label: "Le bouchon uniquement", Why: "Non : pas le facteur principal."},
			},
		},
	},
}
