// README: Tier catalog store backed by PostgreSQL.
package pricing

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Tiers(ctx context.Context, c Catalog) ([]Tier, error) {
	rows, err := s.db.Query(ctx, `
		SELECT tier_id, name, rate_per_km
		FROM ride_tiers
		WHERE catalog = $1
		ORDER BY position`, string(c),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []Tier
	for rows.Next() {
		var t Tier
		if err := rows.Scan(&t.ID, &t.Name, &t.RatePerKm); err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}
