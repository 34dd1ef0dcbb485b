package store

import (
	"context"
	"fmt"
	"strings"
)

// RecipeRating is one rated past suggestion.
type RecipeRating struct {
	Title  string
	Rating int
}

const ratingSummaryLimit = 10

// RecentRatings returns the user's most recent recipe ratings.
func (s *Store) RecentRatings(ctx context.Context, userID string, limit int) ([]RecipeRating, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT recipe_title, rating
		FROM recipe_ratings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []RecipeRating
	for rows.Next() {
		var r RecipeRating
		if err := rows.Scan(&r.Title, &r.Rating); err != nil {
			return nil, err
		}
		ratings = append(ratings, r)
	}
	return ratings, rows.Err()
}

// SummarizeForPrompt renders the user's recent ratings into a prompt
// fragment. An empty history yields an empty string so the prompt builder
// can drop the section.
func (s *Store) SummarizeForPrompt(ctx context.Context, userID string) (string, error) {
	ratings, err := s.RecentRatings(ctx, userID, ratingSummaryLimit)
	if err != nil {
		return "", err
	}
	return FormatRatingSummary(ratings), nil
}

// FormatRatingSummary groups ratings into liked (4+) and disliked (2-) for
// the prompt. Middling ratings carry no signal and are skipped.
func FormatRatingSummary(ratings []RecipeRating) string {
	var liked, disliked []string
	for _, r := range ratings {
		switch {
		case r.Rating >= 4:
			liked = append(liked, r.Title)
		case r.Rating <= 2:
			disliked = append(disliked, r.Title)
		}
	}

	var parts []string
	if len(liked) > 0 {
		parts = append(parts, fmt.Sprintf("The user liked: %s.", strings.Join(liked, ", ")))
	}
	if len(disliked) > 0 {
		parts = append(parts, fmt.Sprintf("The user disliked: %s.", strings.Join(disliked, ", ")))
	}
	return strings.Join(parts, " ")
}
