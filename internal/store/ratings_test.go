package store

import (
	"testing"
)

func TestFormatRatingSummary(t *testing.T) {
	tests := []struct {
		name    string
		ratings []RecipeRating
		want    string
	}{
		{
			name: "liked and disliked",
			ratings: []RecipeRating{
				{Title: "Fried Rice", Rating: 5},
				{Title: "Mushroom Soup", Rating: 1},
				{Title: "Tacos", Rating: 4},
			},
			want: "The user liked: Fried Rice, Tacos. The user disliked: Mushroom Soup.",
		},
		{
			name: "only liked",
			ratings: []RecipeRating{
				{Title: "Pasta", Rating: 5},
			},
			want: "The user liked: Pasta.",
		},
		{
			name: "middling ratings are skipped",
			ratings: []RecipeRating{
				{Title: "Stew", Rating: 3},
			},
			want: "",
		},
		{
			name:    "empty history",
			ratings: nil,
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRatingSummary(tt.ratings); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
