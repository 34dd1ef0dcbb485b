// Package validation checks inbound suggestion requests before any work is
// queued or any model call is spent.
package validation

import (
	"strings"

	"github.com/pantrychef/sous/internal/errors"
	"github.com/pantrychef/sous/internal/services/suggest"
)

const (
	// MaxMessageLength bounds the free-text message so prompt size stays
	// predictable.
	MaxMessageLength = 2000

	// MaxInventoryItems bounds the inventory list.
	MaxInventoryItems = 200

	// MinRecipeCount and MaxRecipeCount are the accepted range for the
	// requested number of recipes. Out-of-range counts are clamped, not
	// rejected.
	MinRecipeCount = 1
	MaxRecipeCount = 6
)

// ValidateSuggestionRequest checks the request and normalizes the count in
// place. It returns an AppError suitable for direct HTTP rendering.
func ValidateSuggestionRequest(req *suggest.Request) *errors.AppError {
	if req.UserID == "" {
		return errors.NewValidationError(
			"user_id is required",
			"MISSING_USER_ID",
			"Authenticate and retry the request.",
		)
	}

	if len(req.Inventory) == 0 {
		return errors.NewValidationError(
			"inventory must not be empty",
			"EMPTY_INVENTORY",
			"Add at least one ingredient to the inventory.",
		)
	}
	if len(req.Inventory) > MaxInventoryItems {
		return errors.NewValidationError(
			"inventory has too many items",
			"INVENTORY_TOO_LARGE",
			"Send at most 200 inventory items.",
		)
	}

	for _, item := range req.Inventory {
		if strings.TrimSpace(item.Name) == "" {
			return errors.NewValidationError(
				"inventory items must have a name",
				"INVALID_INVENTORY_ITEM",
				"Remove unnamed items from the inventory.",
			)
		}
	}

	if len(req.Message) > MaxMessageLength {
		return errors.NewValidationError(
			"message is too long",
			"MESSAGE_TOO_LONG",
			"Shorten the message to 2000 characters or fewer.",
		)
	}

	req.Count = ClampCount(req.Count)

	return nil
}

// ClampCount forces the requested recipe count into the accepted range.
// Zero means "use the default" and passes through untouched.
func ClampCount(count int) int {
	if count == 0 {
		return 0
	}
	if count < MinRecipeCount {
		return MinRecipeCount
	}
	if count > MaxRecipeCount {
		return MaxRecipeCount
	}
	return count
}
