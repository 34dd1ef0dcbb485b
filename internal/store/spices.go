package store

import (
	"context"
)

// SpicesForUser returns the names of the user's stocked spices, sorted for
// stable prompt text.
func (s *Store) SpicesForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name FROM user_spices WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spices []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		spices = append(spices, name)
	}
	return spices, rows.Err()
}
