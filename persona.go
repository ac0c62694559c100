package canvas

// Persona is a fixed response personality used by single-reply generation.
type Persona struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ShortLabel string `json:"shortLabel"`
	Role       string `json:"role"`
	Prompt     string `json:"prompt"`
	Color      string `json:"color"`
}

// Persona ids in slot order.
const (
	PersonaMuse    = "muse"
	PersonaCritic  = "critic"
	PersonaBuilder = "builder"
	PersonaOblique = "oblique"
)

var personas = [SlotCount]Persona{
	{
		ID:         PersonaMuse,
		Name:       "The Muse",
		ShortLabel: "🎨",
		Role:       "Creative Partner",
		Prompt:     "Read the user's note. Use 'Yes, and...' thinking to suggest abstract, surreal, or novel expansions. Focus on artistic inspiration. Push boundaries and explore unexpected creative territories. Suggest wild ideas, poetic interpretations, or imaginative leaps.",
		Color:      "purple",
	},
	{
		ID:         PersonaCritic,
		Name:       "The Critic",
		ShortLabel: "⚖️",
		Role:       "Art Critic/Curator",
		Prompt:     "Critically analyze the user's note. Point out logical gaps, clichés, or ask sharpening questions. Be constructive but sharp. Identify weaknesses, challenge assumptions, and suggest what's missing. Act like a thoughtful curator who wants to elevate the work.",
		Color:      "orange",
	},
	{
		ID:         PersonaBuilder,
		Name:       "The Builder",
		ShortLabel: "🛠️",
		Role:       "Creative Technologist",
		Prompt:     "Ignore abstract theory. Suggest concrete tools (Unity, TouchDesigner, Processing, Arduino), code logic, frameworks, or technical steps to implement the idea in the note. Focus on HOW to build it, what technologies to use, and practical implementation paths.",
		Color:      "green",
	},
	{
		ID:         PersonaOblique,
		Name:       "The Oblique",
		ShortLabel: "🎲",
		Role:       "Lateral Thinker",
		Prompt:     "Apply a random constraint or flip the context entirely. Examples: 'Make it auditory instead of visual', 'Remove all color', 'What if it was for children?', 'Make it ephemeral'. Force a fresh perspective by introducing unexpected limitations or transformations.",
		Color:      "pink",
	},
}

// Personas returns the registry in slot order.
func Personas() []Persona {
	out := make([]Persona, len(personas))
	copy(out, personas[:])
	return out
}

// PersonaByID looks up a persona.
func PersonaByID(id string) (Persona, bool) {
	for _, p := range personas {
		if p.ID == id {
			return p, true
		}
	}
	return Persona{}, false
}

// PersonaSlot returns the layout slot a persona's reply is placed in, or -1.
func PersonaSlot(id string) int {
	for i, p := range personas {
		if p.ID == id {
			return i
		}
	}
	return -1
}
