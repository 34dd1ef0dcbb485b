package suggest

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Title falls back through the aliases models actually use.
var titleKeys = []string{"title", "name", "recipe_name"}

// NormalizeRecipes reconciles the parsed response object into canonical
// recipes. Models return a zoo of shapes - a "recipe" key holding one
// object, a bare recipe at the top level, map-form ingredients, string
// instructions - and all of them are coerced here so nothing downstream
// ever sees a variant form. Recipes with no usable ingredients are kept;
// emptiness is judged on the whole result by the caller.
func NormalizeRecipes(parsed map[string]any) []Recipe {
	list := recipeList(parsed)

	recipes := make([]Recipe, 0, len(list))
	for _, entry := range list {
		raw, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		recipes = append(recipes, normalizeRecipe(raw))
	}
	return recipes
}

// recipeList applies shape disambiguation: a single "recipe" object gets
// wrapped, and an object without a usable "recipes" list is treated as one
// recipe itself.
func recipeList(parsed map[string]any) []any {
	if single, ok := parsed["recipe"].(map[string]any); ok {
		return []any{single}
	}
	if list, ok := parsed["recipes"].([]any); ok {
		return list
	}
	return []any{parsed}
}

func normalizeRecipe(raw map[string]any) Recipe {
	r := Recipe{
		Title:        resolveTitle(raw),
		Ingredients:  normalizeIngredients(raw["ingredients"]),
		Instructions: resolveInstructions(raw),
	}

	for k, v := range raw {
		switch k {
		case "title", "name", "recipe_name", "ingredients", "instructions", "steps":
		default:
			if r.Extra == nil {
				r.Extra = make(map[string]any)
			}
			r.Extra[k] = v
		}
	}
	return r
}

func resolveTitle(raw map[string]any) string {
	for _, key := range titleKeys {
		if title, ok := raw[key].(string); ok && title != "" {
			return title
		}
	}
	return "Untitled recipe"
}

// resolveInstructions coerces whatever the model put under "instructions"
// (or "steps") into a non-empty list of strings.
func resolveInstructions(raw map[string]any) []string {
	value, ok := raw["instructions"]
	if !ok || value == nil {
		value = raw["steps"]
	}

	switch v := value.(type) {
	case nil:
		return []string{}
	case string:
		return []string{v}
	case []any:
		steps := make([]string, len(v))
		for i, step := range v {
			steps[i] = stringify(step)
		}
		return steps
	default:
		return []string{stringify(v)}
	}
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// normalizeIngredients handles the list-or-map union. Lists pass through
// (unit normalization is a downstream concern); a name -> quantity map is
// converted entry by entry; anything else yields an empty list.
func normalizeIngredients(value any) []Ingredient {
	switch v := value.(type) {
	case []any:
		entries := make([]Ingredient, 0, len(v))
		for _, item := range v {
			if entry, ok := ingredientFromListItem(item); ok {
				entries = append(entries, entry)
			}
		}
		return entries
	case map[string]any:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)

		entries := make([]Ingredient, 0, len(v))
		for _, name := range names {
			entries = append(entries, ingredientFromMapping(name, v[name]))
		}
		return entries
	default:
		return []Ingredient{}
	}
}

func ingredientFromListItem(item any) (Ingredient, bool) {
	switch v := item.(type) {
	case string:
		return Ingredient{Name: v}, v != ""
	case map[string]any:
		entry := Ingredient{Quantity: v["quantity"]}
		entry.Name, _ = v["name"].(string)
		entry.Unit, _ = v["unit"].(string)
		return entry, entry.Name != ""
	default:
		return Ingredient{}, false
	}
}

// ingredientFromMapping converts one {"flour": "200 grams"} style entry.
// Numbers pass through; strings split into quantity/unit when the first
// token is numeric, otherwise the whole string is kept as the quantity for
// downstream handling ("to taste" and friends).
func ingredientFromMapping(name string, qty any) Ingredient {
	entry := Ingredient{Name: name}

	switch v := qty.(type) {
	case float64:
		entry.Quantity = v
	case string:
		parts := strings.Fields(v)
		if len(parts) >= 2 {
			if n, err := strconv.ParseFloat(parts[0], 64); err == nil {
				entry.Quantity = n
				entry.Unit = parts[1]
				return entry
			}
		}
		entry.Quantity = v
	default:
		entry.Quantity = v
	}
	return entry
}
