package suggest

import (
	"encoding/json"
	"fmt"
	"strings"
)

// InventoryItem accepts either a bare ingredient name or a structured
// {name, quantity, unit} object in request payloads. Identity is the
// lowercased name.
type InventoryItem struct {
	Name     string `json:"name"`
	Quantity any    `json:"quantity,omitempty"`
	Unit     string `json:"unit,omitempty"`
}

// UnmarshalJSON handles the string-or-object union.
func (i *InventoryItem) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*i = InventoryItem{Name: name}
		return nil
	}

	type plain InventoryItem
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("inventory item must be a string or an object: %w", err)
	}
	*i = InventoryItem(p)
	return nil
}

// MarshalJSON keeps plain-name items as bare strings on the wire.
func (i InventoryItem) MarshalJSON() ([]byte, error) {
	if i.Quantity == nil && i.Unit == "" {
		return json.Marshal(i.Name)
	}
	type plain InventoryItem
	return json.Marshal(plain(i))
}

// key returns the lowercased identity used for banned-set lookups.
func (i InventoryItem) key() string {
	return strings.ToLower(i.Name)
}

// String renders the item for the prompt, "quantity unit name" when both
// quantity and unit are present, otherwise just the name.
func (i InventoryItem) String() string {
	if i.Quantity != nil && i.Unit != "" {
		return strings.TrimSpace(fmt.Sprintf("%v %s %s", i.Quantity, i.Unit, i.Name))
	}
	return i.Name
}

// Preferences holds the caller's dietary tags and allergies.
type Preferences struct {
	Dietary   []string `json:"dietary"`
	Allergies []string `json:"allergies"`
}

// Ingredient is the canonical ingredient entry. Quantity is a number or a
// string, exactly as the model (or the map-form conversion) produced it.
type Ingredient struct {
	Name     string `json:"name"`
	Quantity any    `json:"quantity,omitempty"`
	Unit     string `json:"unit,omitempty"`
}

// UnmarshalJSON accepts either a bare string (name only) or an object.
func (e *Ingredient) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*e = Ingredient{Name: name}
		return nil
	}

	type plain Ingredient
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Ingredient(p)
	return nil
}

// Recipe is the canonical recipe shape. Extra keeps any non-canonical
// fields the model emitted (difficulty, servings, ...) so they survive the
// round trip; canonical fields win on key collision.
type Recipe struct {
	Title        string
	Ingredients  []Ingredient
	Instructions []string
	Extra        map[string]any
}

// MarshalJSON merges extras with the canonical fields taking precedence.
func (r Recipe) MarshalJSON() ([]byte, error) {
	merged := make(map[string]any, len(r.Extra)+3)
	for k, v := range r.Extra {
		merged[k] = v
	}
	merged["title"] = r.Title
	merged["ingredients"] = r.Ingredients
	merged["instructions"] = r.Instructions
	return json.Marshal(merged)
}

// UnmarshalJSON splits canonical fields from passthrough extras.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := Recipe{}
	for k, v := range raw {
		switch k {
		case "title":
			if err := json.Unmarshal(v, &out.Title); err != nil {
				return err
			}
		case "ingredients":
			if err := json.Unmarshal(v, &out.Ingredients); err != nil {
				return err
			}
		case "instructions":
			if err := json.Unmarshal(v, &out.Instructions); err != nil {
				return err
			}
		default:
			var val any
			if err := json.Unmarshal(v, &val); err != nil {
				return err
			}
			if out.Extra == nil {
				out.Extra = make(map[string]any)
			}
			out.Extra[k] = val
		}
	}

	*r = out
	return nil
}

// Request is one generation invocation.
type Request struct {
	UserID         string          `json:"user_id"`
	Message        string          `json:"message"`
	Inventory      []InventoryItem `json:"inventory"`
	Preferences    Preferences     `json:"preferences"`
	PreviousRecipe *Recipe         `json:"previous_recipe,omitempty"`
	Count          int             `json:"count,omitempty"`
}

// Result is the only thing callers ever see: recipes on success, a
// human-readable error string and an empty list on exhaustion. The entry
// point never returns a Go error for pipeline failures.
type Result struct {
	UserID  string   `json:"user_id,omitempty"`
	Recipes []Recipe `json:"recipes"`
	Error   string   `json:"error,omitempty"`
}
