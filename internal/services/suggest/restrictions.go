package suggest

import (
	"github.com/pantrychef/sous/internal/services/ai"
)

// restrictedIngredients maps a normalized diet tag to the ingredient names
// that must never reach the prompt. Only these three tags carry a hard
// filter; kosher, halal, keto and paleo are prompt notes only.
var restrictedIngredients = map[string]map[string]struct{}{
	"vegetarian": setOf(
		"beef", "pork", "chicken", "turkey", "fish", "shrimp", "lamb", "bacon",
	),
	"vegan": setOf(
		"beef", "pork", "chicken", "turkey", "fish", "shrimp", "lamb",
		"milk", "cheese", "butter", "yogurt", "cream", "egg", "honey",
	),
	"gluten free": setOf(
		"wheat", "barley", "rye", "bread", "pasta", "flour",
		"spaghetti", "noodles", "bulgur", "couscous", "semolina",
	),
}

func setOf(names ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// bannedNames unions the restricted sets for every given diet tag. Unknown
// tags contribute nothing.
func bannedNames(dietary []string) map[string]struct{} {
	banned := make(map[string]struct{})
	for _, tag := range dietary {
		for name := range restrictedIngredients[ai.NormalizeDietTag(tag)] {
			banned[name] = struct{}{}
		}
	}
	return banned
}

// FilterInventory removes items whose lowercased name is banned by any of
// the dietary tags, preserving the original order.
func FilterInventory(inventory []InventoryItem, dietary []string) []InventoryItem {
	banned := bannedNames(dietary)
	if len(banned) == 0 {
		return inventory
	}

	safe := make([]InventoryItem, 0, len(inventory))
	for _, item := range inventory {
		if _, ok := banned[item.key()]; ok {
			continue
		}
		safe = append(safe, item)
	}
	return safe
}
