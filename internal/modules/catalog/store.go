// README: Trip catalog store backed by PostgreSQL; runs on the pool or inside a transaction.
package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"travelbook/internal/infra"
	"travelbook/internal/types"
)

var ErrNotFound = errors.New("trip not found")

type Store struct {
	db infra.DBTX
}

func NewStore(db infra.DBTX) *Store {
	return &Store{db: db}
}

// Candidates returns trips whose category contains style (case-insensitive) and whose
// region equals region exactly. No ordering is guaranteed.
// style is not escaped: % and _ in it act as LIKE wildcards, as the trip search always has.
func (s *Store) Candidates(ctx context.Context, style, region string) ([]Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, category, region, description, image_url
		FROM trips
		WHERE category ILIKE '%' || $1 || '%'
		  AND region = $2`,
		style, region,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []Trip
	for rows.Next() {
		var t Trip
		if err := rows.Scan(&t.ID, &t.Name, &t.Category, &t.Region, &t.Description, &t.ImageURL); err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Trip, error) {
	var t Trip
	err := s.db.QueryRow(ctx, `
		SELECT id, name, category, region, description, image_url
		FROM trips
		WHERE id = $1`, int64(id),
	).Scan(&t.ID, &t.Name, &t.Category, &t.Region, &t.Description, &t.ImageURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
