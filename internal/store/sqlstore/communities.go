package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mymichiganlake/lakes-server/internal/domain"
	"github.com/mymichiganlake/lakes-server/internal/id"
	"github.com/mymichiganlake/lakes-server/internal/store"
)

const communityColumns = `id, name, description, lake_name, created_at`

func scanCommunity(sc scanner) (*domain.Community, error) {
	var (
		c         domain.Community
		createdAt string
	)
	if err := sc.Scan(&c.ID, &c.Name, &c.Description, &c.LakeName, &createdAt); err != nil {
		return nil, err
	}

	var err error
	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse community created_at: %w", err)
	}
	return &c, nil
}

// CreateCommunity inserts a new community.
// Returns store.ErrAlreadyExists on a duplicate name.
func (s *Store) CreateCommunity(ctx context.Context, c *domain.Community) error {
	_, err := s.exec(ctx, `
		INSERT INTO communities (`+communityColumns+`)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID,
		c.Name,
		c.Description,
		c.LakeName,
		formatTime(c.CreatedAt),
	)
	return translateError(err)
}

// GetCommunity retrieves a community by id.
func (s *Store) GetCommunity(ctx context.Context, communityID string) (*domain.Community, error) {
	row := s.queryRow(ctx, `SELECT `+communityColumns+` FROM communities WHERE id = ?`, communityID)
	c, err := scanCommunity(row)
	if err != nil {
		return nil, translateError(err)
	}
	return c, nil
}

// GetCommunityByName retrieves a community by its exact name.
func (s *Store) GetCommunityByName(ctx context.Context, name string) (*domain.Community, error) {
	row := s.queryRow(ctx, `SELECT `+communityColumns+` FROM communities WHERE name = ?`, name)
	c, err := scanCommunity(row)
	if err != nil {
		return nil, translateError(err)
	}
	return c, nil
}

// FindOrCreateCommunity returns the community with the given name, creating
// it when absent. Safe under concurrent callers and inside transactions.
func (s *Store) FindOrCreateCommunity(ctx context.Context, name string) (*domain.Community, error) {
	_, err := s.exec(ctx, `
		INSERT INTO communities (id, name, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (name) DO NOTHING`,
		id.New(),
		name,
		formatTime(time.Now()),
	)
	if err != nil {
		return nil, translateError(err)
	}
	return s.GetCommunityByName(ctx, name)
}

// ListCommunities returns communities ordered by name. A non-empty names
// slice restricts the result to those names.
func (s *Store) ListCommunities(ctx context.Context, names []string) ([]*domain.Community, error) {
	query := `SELECT ` + communityColumns + ` FROM communities`
	args := make([]any, 0, len(names))
	if len(names) > 0 {
		query += ` WHERE name IN (` + placeholders(len(names)) + `)`
		for _, n := range names {
			args = append(args, n)
		}
	}
	query += ` ORDER BY name ASC`

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	communities := []*domain.Community{}
	for rows.Next() {
		c, err := scanCommunity(rows)
		if err != nil {
			return nil, err
		}
		communities = append(communities, c)
	}
	return communities, rows.Err()
}

// SetProfileCommunity replaces the profile's memberships with a single one.
func (s *Store) SetProfileCommunity(ctx context.Context, profileID, communityID, role string) error {
	return s.WithTx(ctx, func(tx store.Store) error {
		txs := tx.(*Store)
		if _, err := txs.exec(ctx, `DELETE FROM profile_community WHERE profile_id = ?`, profileID); err != nil {
			return fmt.Errorf("delete memberships: %w", err)
		}
		if role == "" {
			role = domain.RoleMember
		}
		_, err := txs.exec(ctx, `
			INSERT INTO profile_community (profile_id, community_id, role, joined_at)
			VALUES (?, ?, ?, ?)`,
			profileID,
			communityID,
			role,
			formatTime(time.Now()),
		)
		return translateError(err)
	})
}

// GetProfileCommunity returns the community the profile joined first.
// Returns store.ErrNotFound when the profile has no membership.
func (s *Store) GetProfileCommunity(ctx context.Context, profileID string) (*domain.Community, error) {
	row := s.queryRow(ctx, `
		SELECT c.id, c.name, c.description, c.lake_name, c.created_at
		FROM communities c
		JOIN profile_community pc ON pc.community_id = c.id
		WHERE pc.profile_id = ?
		ORDER BY pc.joined_at ASC
		LIMIT 1`, profileID)
	c, err := scanCommunity(row)
	if err != nil {
		return nil, translateError(err)
	}
	return c, nil
}

// requireAffected turns a zero-row write into store.ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
