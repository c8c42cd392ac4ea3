package fallback

import "strings"

type optionTemplate struct {
	Label string
	Value string
}

type questionTemplate struct {
	Text           string
	Dimension      string
	InfoGainReason string
	Options        []optionTemplate
}

type tradeoffTemplate struct {
	Dimension string
	Why       string
}

type counterfactualTemplate struct {
	Toggle string
	Change string
}

// locale is one language's complete template set. Every synthesized string in
// a response comes from a single locale.
type locale struct {
	Questions       []questionTemplate
	Tradeoffs       []tradeoffTemplate
	Counterfactuals []counterfactualTemplate
	KeyReasons      []string
	Actions         []string
}

// DefaultLanguage is used for empty or unrecognized language tags
const DefaultLanguage = "en"

var locales = map[string]*locale{
	"en": {
		Questions: []questionTemplate{
			{
				Text:           "Where will you use it most?",
				Dimension:      "context",
				InfoGainReason: "Usage context shifts which option fits best.",
				Options: []optionTemplate{
					{Label: "Small or quiet spaces", Value: "small"},
					{Label: "Shared family space", Value: "shared"},
					{Label: "Mixed locations", Value: "mixed"},
					{Label: "On the go", Value: "mobile"},
				},
			},
			{
				Text:           "What matters most for you?",
				Dimension:      "priority",
				InfoGainReason: "Top priorities re-rank the shortlist quickly.",
				Options: []optionTemplate{
					{Label: "Reliability over time", Value: "reliability"},
					{Label: "Best overall performance", Value: "performance"},
					{Label: "Lowest total cost", Value: "cost"},
					{Label: "Ease of use", Value: "ease"},
				},
			},
			{
				Text:           "How sensitive are you to size or footprint?",
				Dimension:      "size",
				InfoGainReason: "Space constraints can eliminate candidates fast.",
				Options: []optionTemplate{
					{Label: "Needs to be compact", Value: "compact"},
					{Label: "Moderate size is fine", Value: "medium"},
					{Label: "Size is not a concern", Value: "large"},
				},
			},
		},
		Tradeoffs: []tradeoffTemplate{
			{Dimension: "simplicity", Why: "Straightforward default choice."},
			{Dimension: "value", Why: "Balances cost with capability."},
			{Dimension: "upgrade headroom", Why: "Leaves room for future needs."},
		},
		Counterfactuals: []counterfactualTemplate{
			{Toggle: "If budget tightens", Change: "The value pick becomes more attractive."},
			{Toggle: "If performance is critical", Change: "The most capable option rises to the top."},
		},
		KeyReasons: []string{
			"Using a fallback path while AI is unavailable.",
			"We will still narrow choices based on your answers.",
		},
		Actions: []string{
			"Shortlist the top two and compare hands-on if possible.",
			"Check warranty length and service coverage in your area.",
			"Look for bundles or seasonal pricing changes.",
		},
	},
	"es": {
		Questions: []questionTemplate{
			{
				Text:           "¿Dónde lo usarás más?",
				Dimension:      "context",
				InfoGainReason: "El contexto de uso cambia qué opción encaja mejor.",
				Options: []optionTemplate{
					{Label: "Espacios pequeños o silenciosos", Value: "small"},
					{Label: "Espacio familiar compartido", Value: "shared"},
					{Label: "Lugares variados", Value: "mixed"},
					{Label: "En movimiento", Value: "mobile"},
				},
			},
			{
				Text:           "¿Qué es lo más importante para ti?",
				Dimension:      "priority",
				InfoGainReason: "Las prioridades reordenan la lista rápidamente.",
				Options: []optionTemplate{
					{Label: "Fiabilidad a largo plazo", Value: "reliability"},
					{Label: "Mejor rendimiento general", Value: "performance"},
					{Label: "Menor costo total", Value: "cost"},
					{Label: "Facilidad de uso", Value: "ease"},
				},
			},
			{
				Text:           "¿Qué tan sensible eres al tamaño?",
				Dimension:      "size",
				InfoGainReason: "Las restricciones de espacio eliminan candidatos rápido.",
				Options: []optionTemplate{
					{Label: "Debe ser compacto", Value: "compact"},
					{Label: "Tamaño moderado está bien", Value: "medium"},
					{Label: "El tamaño no importa", Value: "large"},
				},
			},
		},
		Tradeoffs: []tradeoffTemplate{
			{Dimension: "simplicidad", Why: "Opción predeterminada y directa."},
			{Dimension: "valor", Why: "Equilibra costo y capacidad."},
			{Dimension: "margen de mejora", Why: "Deja espacio para necesidades futuras."},
		},
		Counterfactuals: []counterfactualTemplate{
			{Toggle: "Si el presupuesto se ajusta", Change: "La opción de mejor valor gana atractivo."},
			{Toggle: "Si el rendimiento es crítico", Change: "La opción más capaz sube al primer lugar."},
		},
		KeyReasons: []string{
			"Usando una ruta alternativa mientras la IA no está disponible.",
			"Aun así reduciremos opciones según tus respuestas.",
		},
		Actions: []string{
			"Preselecciona los dos primeros y compáralos en persona si puedes.",
			"Revisa la garantía y la cobertura de servicio en tu zona.",
			"Busca paquetes o cambios de precio de temporada.",
		},
	},
}

// localeFor resolves a language tag to a template set. Region subtags are
// ignored ("es-MX" selects "es"); unrecognized tags select the default.
func localeFor(tag string) *locale {
	key := strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(key, "-_"); i > 0 {
		key = key[:i]
	}
	if loc, ok := locales[key]; ok {
		return loc
	}
	return locales[DefaultLanguage]
}
