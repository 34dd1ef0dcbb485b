package ai

import (
	"fmt"
	"strings"
)

const systemRoleSection = `You are a helpful cooking assistant.
You MUST reply with ONE VALID JSON object only.`

const systemRulesSection = `Rules:
- Never output text before or after the JSON.
- Never wrap JSON with ` + "```json" + ` or any markdown.
- Never use comments like // or /* */ inside JSON.
- Allowed units: grams, kg, ml, l, pieces.
- Use ONLY ingredients from the provided inventory.`

const systemSchemaSection = `- Schema example:
{
  "recipes": [
    {
      "title": "string",
      "ingredients": [ {"name": "string", "quantity": 100, "unit": "grams"} ],
      "instructions": ["step 1", "step 2"]
    }
  ]
}`

const fixerSystemPrompt = `You are a JSON fixer. You always output VALID JSON only.`

// Sampling temperatures. Repair runs fully deterministic.
const (
	TemperatureDefault  = 0.4
	TemperatureCreative = 0.7
	TemperatureRepair   = 0.0
)

// creativeTriggers are message substrings that bump the sampling temperature.
var creativeTriggers = []string{"surprise", "different"}

// UserPromptParams carries the per-attempt context rendered into the user block.
type UserPromptParams struct {
	Message         string
	PreviousTitle   string // empty when this is not a continuation
	Inventory       string // comma-joined human-readable list
	Preferences     string
	Spices          string
	RestrictionNote string
	RatingSummary   string
	Count           int
}

// BuildSystemPrompt returns the attempt-invariant output contract.
func BuildSystemPrompt() string {
	var sb strings.Builder
	sb.WriteString(systemRoleSection)
	sb.WriteString("\n")
	sb.WriteString(systemRulesSection)
	sb.WriteString("\n")
	sb.WriteString(systemSchemaSection)
	sb.WriteString("\n")
	return sb.String()
}

// BuildUserPrompt assembles the per-attempt user block. A non-empty
// PreviousTitle switches to the continuation framing.
func BuildUserPrompt(p UserPromptParams) string {
	var sb strings.Builder

	if p.PreviousTitle != "" {
		fmt.Fprintf(&sb, "User previously received this recipe: %s.\n", p.PreviousTitle)
		fmt.Fprintf(&sb, "User now says: %s\n", p.Message)
	} else {
		fmt.Fprintf(&sb, "User message: %s\n", p.Message)
	}

	fmt.Fprintf(&sb, "Available ingredients: %s\n", p.Inventory)
	fmt.Fprintf(&sb, "User preferences: %s.\n", p.Preferences)
	fmt.Fprintf(&sb, "Available spices: %s\n", p.Spices)
	sb.WriteString(p.RestrictionNote)
	sb.WriteString("\n")
	sb.WriteString(p.RatingSummary)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Please return up to %d recipes in the JSON schema described.", p.Count)

	return sb.String()
}

// BuildFixerSystemPrompt returns the system block for the JSON repair call.
func BuildFixerSystemPrompt() string {
	return fixerSystemPrompt
}

// BuildFixerUserPrompt embeds the failed raw response verbatim and asks for
// corrected JSON only.
func BuildFixerUserPrompt(rawText string) string {
	var sb strings.Builder
	sb.WriteString("Your previous response was not valid JSON.\n")
	sb.WriteString("Here is the content:\n")
	sb.WriteString("----------------\n")
	sb.WriteString(rawText)
	sb.WriteString("\n----------------\n\n")
	sb.WriteString("Now respond with ONLY valid JSON. No explanations, no comments, no markdown.")
	return sb.String()
}

// Temperature picks the sampling temperature from the user message. This is
// the only place creativity is tuned.
func Temperature(message string) float64 {
	lower := strings.ToLower(message)
	for _, trigger := range creativeTriggers {
		if strings.Contains(lower, trigger) {
			return TemperatureCreative
		}
	}
	return TemperatureDefault
}

// Restriction notes per diet tag. Vegan and vegetarian are mutually
// exclusive in the output: vegan wins when both are present.
const (
	noteVegan      = "IMPORTANT: 100 % plant-based - no meat, fish, dairy or eggs. Use tofu/legumes instead."
	noteVegetarian = "IMPORTANT: No meat or fish. Use plant-based substitutes."
	noteGlutenFree = "IMPORTANT: Must be 100 % gluten-free - no wheat, barley, rye or derivatives."
	noteKosher     = "IMPORTANT: Keep recipe kosher - no pork/shellfish; do not mix meat with dairy."
	noteHalal      = "IMPORTANT: Keep recipe halal - no pork or alcohol."
	noteKeto       = "IMPORTANT: Keep net carbs very low (< 20 g per serving); moderate protein, high fat."
	notePaleo      = "IMPORTANT: Paleo - no grains, legumes or processed sugar; focus on meat, fish, vegetables, fruit, nuts."
)

// BuildRestrictionNote concatenates the fixed-text notes for the given diet
// tags in a fixed order. Tags are matched case-insensitively with hyphens
// folded to spaces, so "gluten-free" and "gluten free" are equivalent.
func BuildRestrictionNote(dietary []string) string {
	tags := make(map[string]bool, len(dietary))
	for _, d := range dietary {
		tags[NormalizeDietTag(d)] = true
	}

	var notes []string
	if tags["vegan"] {
		notes = append(notes, noteVegan)
	} else if tags["vegetarian"] {
		notes = append(notes, noteVegetarian)
	}
	if tags["gluten free"] {
		notes = append(notes, noteGlutenFree)
	}
	if tags["kosher"] {
		notes = append(notes, noteKosher)
	}
	if tags["halal"] {
		notes = append(notes, noteHalal)
	}
	if tags["keto"] {
		notes = append(notes, noteKeto)
	}
	if tags["paleo"] {
		notes = append(notes, notePaleo)
	}

	return strings.Join(notes, " ")
}

// NormalizeDietTag lowercases a diet tag and folds hyphens to spaces.
func NormalizeDietTag(tag string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(tag)), "-", " ")
}
