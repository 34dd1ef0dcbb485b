// Package units canonicalizes the quantity units on generated recipes.
// Models spell units every way imaginable ("g", "gr", "Grams"); downstream
// consumers want one spelling per unit.
package units

import (
	"strings"

	"github.com/pantrychef/sous/internal/services/suggest"
)

// unitAliases maps lowercased unit spellings to their canonical form.
var unitAliases = map[string]string{
	"g":           "grams",
	"gr":          "grams",
	"gram":        "grams",
	"grams":       "grams",
	"kg":          "kg",
	"kilogram":    "kg",
	"kilograms":   "kg",
	"ml":          "ml",
	"milliliter":  "ml",
	"milliliters": "ml",
	"millilitre":  "ml",
	"millilitres": "ml",
	"l":           "l",
	"liter":       "l",
	"liters":      "l",
	"litre":       "l",
	"litres":      "l",
	"pc":          "pieces",
	"pcs":         "pieces",
	"piece":       "pieces",
	"pieces":      "pieces",
	"unit":        "pieces",
	"units":       "pieces",
	"tsp":         "tsp",
	"teaspoon":    "tsp",
	"teaspoons":   "tsp",
	"tbsp":        "tbsp",
	"tablespoon":  "tbsp",
	"tablespoons": "tbsp",
	"cup":         "cups",
	"cups":        "cups",
}

// Normalizer rewrites ingredient units in place. It never changes the
// number of recipes, their titles or their instructions.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// NormalizeUnits canonicalizes every ingredient unit. Unknown units are
// left exactly as the model wrote them.
func (n *Normalizer) NormalizeUnits(recipes []suggest.Recipe, _ string) []suggest.Recipe {
	for i := range recipes {
		for j := range recipes[i].Ingredients {
			recipes[i].Ingredients[j].Unit = canonicalUnit(recipes[i].Ingredients[j].Unit)
		}
	}
	return recipes
}

func canonicalUnit(unit string) string {
	trimmed := strings.TrimSpace(unit)
	if trimmed == "" {
		return unit
	}
	if canonical, ok := unitAliases[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}
