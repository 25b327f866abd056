package sqlstore

import (
	"context"
	"fmt"

	"github.com/mymichiganlake/lakes-server/internal/domain"
	"github.com/mymichiganlake/lakes-server/internal/id"
	"github.com/mymichiganlake/lakes-server/internal/store"
)

// InsertInterests inserts each name that does not exist yet and returns how
// many rows were added. Names must already be normalised by the caller.
func (s *Store) InsertInterests(ctx context.Context, names []string) (int, error) {
	inserted := 0
	for _, name := range names {
		n, err := s.insertInterest(ctx, name)
		if err != nil {
			return inserted, err
		}
		inserted += n
	}
	return inserted, nil
}

func (s *Store) insertInterest(ctx context.Context, name string) (int, error) {
	res, err := s.exec(ctx, `
		INSERT INTO interests (id, name) VALUES (?, ?)
		ON CONFLICT (name) DO NOTHING`,
		id.New(),
		name,
	)
	if err != nil {
		return 0, fmt.Errorf("insert interest %q: %w", name, translateError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// ListInterests returns all interests ordered by name.
func (s *Store) ListInterests(ctx context.Context) ([]*domain.Interest, error) {
	rows, err := s.query(ctx, `SELECT id, name FROM interests ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	interests := []*domain.Interest{}
	for rows.Next() {
		var i domain.Interest
		if err := rows.Scan(&i.ID, &i.Name); err != nil {
			return nil, err
		}
		interests = append(interests, &i)
	}
	return interests, rows.Err()
}

// SetProfileInterests replaces the profile's interests with names, creating
// interests that do not exist yet.
func (s *Store) SetProfileInterests(ctx context.Context, profileID string, names []string) error {
	return s.WithTx(ctx, func(tx store.Store) error {
		txs := tx.(*Store)

		if _, err := txs.exec(ctx, `DELETE FROM profile_interest WHERE profile_id = ?`, profileID); err != nil {
			return fmt.Errorf("delete profile interests: %w", err)
		}

		for _, name := range names {
			if _, err := txs.insertInterest(ctx, name); err != nil {
				return err
			}

			var interestID string
			if err := txs.queryRow(ctx, `SELECT id FROM interests WHERE name = ?`, name).Scan(&interestID); err != nil {
				return fmt.Errorf("lookup interest %q: %w", name, translateError(err))
			}

			_, err := txs.exec(ctx, `
				INSERT INTO profile_interest (profile_id, interest_id) VALUES (?, ?)
				ON CONFLICT (profile_id, interest_id) DO NOTHING`,
				profileID,
				interestID,
			)
			if err != nil {
				return fmt.Errorf("link interest %q: %w", name, translateError(err))
			}
		}
		return nil
	})
}

// ListProfileInterests returns the interest names attached to a profile.
func (s *Store) ListProfileInterests(ctx context.Context, profileID string) ([]string, error) {
	rows, err := s.query(ctx, `
		SELECT i.name
		FROM interests i
		JOIN profile_interest pi ON pi.interest_id = i.id
		WHERE pi.profile_id = ?
		ORDER BY i.name ASC`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
