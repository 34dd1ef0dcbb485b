package validation

import (
	"strings"
	"testing"

	"github.com/pantrychef/sous/internal/services/suggest"
)

func validRequest() suggest.Request {
	return suggest.Request{
		UserID:    "user-1",
		Message:   "dinner please",
		Inventory: []suggest.InventoryItem{{Name: "rice"}},
	}
}

func TestValidateSuggestionRequest(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*suggest.Request)
		wantCode string
	}{
		{
			name:   "valid request",
			mutate: func(r *suggest.Request) {},
		},
		{
			name:     "missing user id",
			mutate:   func(r *suggest.Request) { r.UserID = "" },
			wantCode: "MISSING_USER_ID",
		},
		{
			name:     "empty inventory",
			mutate:   func(r *suggest.Request) { r.Inventory = nil },
			wantCode: "EMPTY_INVENTORY",
		},
		{
			name: "unnamed inventory item",
			mutate: func(r *suggest.Request) {
				r.Inventory = append(r.Inventory, suggest.InventoryItem{Name: "  "})
			},
			wantCode: "INVALID_INVENTORY_ITEM",
		},
		{
			name: "oversized inventory",
			mutate: func(r *suggest.Request) {
				items := make([]suggest.InventoryItem, MaxInventoryItems+1)
				for i := range items {
					items[i] = suggest.InventoryItem{Name: "x"}
				}
				r.Inventory = items
			},
			wantCode: "INVENTORY_TOO_LARGE",
		},
		{
			name:     "message too long",
			mutate:   func(r *suggest.Request) { r.Message = strings.Repeat("a", MaxMessageLength+1) },
			wantCode: "MESSAGE_TOO_LONG",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := ValidateSuggestionRequest(&req)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if err.ErrorCode != tt.wantCode {
				t.Errorf("code = %s, want %s", err.ErrorCode, tt.wantCode)
			}
		})
	}
}

func TestValidateSuggestionRequestClampsCount(t *testing.T) {
	req := validRequest()
	req.Count = 99
	if err := ValidateSuggestionRequest(&req); err != nil {
		t.Fatal(err)
	}
	if req.Count != MaxRecipeCount {
		t.Errorf("count = %d, want %d", req.Count, MaxRecipeCount)
	}
}

func TestClampCount(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 0},
		{-3, 1},
		{1, 1},
		{4, 4},
		{6, 6},
		{7, 6},
	}
	for _, tt := range tests {
		if got := ClampCount(tt.in); got != tt.want {
			t.Errorf("ClampCount(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
