package anthropic

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/meikuraledutech/canvas"
)

// isKorean reports whether text contains any Hangul.
func isKorean(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}

func languageInstruction(prompt string) string {
	if isKorean(prompt) {
		return "Please respond entirely in Korean."
	}
	return "Please respond entirely in English."
}

func expandSystemPrompt(prompt string) string {
	return `# Role
You are an expert brainstorming facilitator and Creative Thought Partner.

# Objective
Do NOT just answer the user's input. Instead, analyze the core concept and suggest 4 distinct angles, variations, or follow-up questions to help expand the user's thinking.

# Response Guidelines
- Keep each concept concise to fit within a sticky note (approx. 25-40 words per concept)
- Use bullet points for readability within content
- Avoid long introductions; jump straight into the ideas
- Focus on branching out and exploring unexpected connections

# Language
` + languageInstruction(prompt) + `

# Categories
Generate exactly 4 related concepts:
1. Scenario: A practical real-world application, use case, or "what if" situation
2. Tech: A relevant technology, tool, methodology, or technical approach
3. Visual: A visual metaphor, imagery, design concept, or creative representation
4. Counter: A contrasting perspective, potential challenge, devil's advocate view, or alternative angle

# Output Format
Respond ONLY with a valid JSON object in this exact format:
{
  "concepts": [
    { "type": "scenario", "title": "Short Title (3-5 words)", "content": "• Key point 1\n• Key point 2" },
    { "type": "tech", "title": "Short Title (3-5 words)", "content": "• Key point 1\n• Key point 2" },
    { "type": "visual", "title": "Short Title (3-5 words)", "content": "• Key point 1\n• Key point 2" },
    { "type": "counter", "title": "Short Title (3-5 words)", "content": "• Key point 1\n• Key point 2" }
  ]
}`
}

func expandUserMessage(prompt string) string {
	return "Analyze this idea and branch it into 4 creative directions:\n\n\"" + prompt + "\""
}

func personaSystemPrompt(p canvas.Persona, prompt string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Role\nYou are %s - %s.\n\n", p.Name, p.Role)
	fmt.Fprintf(&b, "# Your Persona\n%s\n\n", p.Prompt)
	b.WriteString(`# Response Guidelines
- Keep your response concise to fit within a sticky note (approx. 50-80 words)
- Use bullet points for readability
- Avoid long introductions; jump straight into your insight
- Stay true to your persona's perspective
- Be specific and actionable

`)
	fmt.Fprintf(&b, "# Language\n%s\n\n", languageInstruction(prompt))
	b.WriteString(`# Output Format
Respond ONLY with a valid JSON object in this exact format:
{
  "title": "Short evocative title (3-6 words)",
  "content": "• Key insight 1\n• Key insight 2\n• Key insight 3"
}`)
	return b.String()
}

func personaUserMessage(p canvas.Persona, prompt string) string {
	return fmt.Sprintf("As %s, respond to this idea:\n\n\"%s\"", p.Name, prompt)
}
