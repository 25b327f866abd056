package sqlstore

import (
	"context"
	"fmt"

	"github.com/mymichiganlake/lakes-server/internal/domain"
)

const itemSelect = `
	SELECT i.id, i.owner_id, i.name, i.price, i.description, i.category, i.image,
	       i.image_blurhash, i.created_at, COALESCE(pr.username, '')
	FROM items i
	LEFT JOIN profiles pr ON pr.id = i.owner_id`

func scanItem(sc scanner) (*domain.Item, error) {
	var (
		it        domain.Item
		category  string
		createdAt string
	)

	err := sc.Scan(
		&it.ID,
		&it.OwnerID,
		&it.Name,
		&it.Price,
		&it.Description,
		&category,
		&it.Image,
		&it.ImageBlurHash,
		&createdAt,
		&it.OwnerUsername,
	)
	if err != nil {
		return nil, err
	}

	it.Category, _ = domain.ParseItemCategory(category)
	it.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse item created_at: %w", err)
	}
	return &it, nil
}

// CreateItem inserts a new marketplace item.
func (s *Store) CreateItem(ctx context.Context, it *domain.Item) error {
	_, err := s.exec(ctx, `
		INSERT INTO items (id, owner_id, name, price, description, category, image, image_blurhash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID,
		it.OwnerID,
		it.Name,
		it.Price,
		it.Description,
		string(it.Category),
		it.Image,
		it.ImageBlurHash,
		formatTime(it.CreatedAt),
	)
	return translateError(err)
}

// GetItem retrieves an item by id.
func (s *Store) GetItem(ctx context.Context, itemID string) (*domain.Item, error) {
	row := s.queryRow(ctx, itemSelect+` WHERE i.id = ?`, itemID)
	it, err := scanItem(row)
	if err != nil {
		return nil, translateError(err)
	}
	return it, nil
}

// ListItems returns items newest first.
func (s *Store) ListItems(ctx context.Context, limit int) ([]*domain.Item, error) {
	query := itemSelect + ` ORDER BY i.created_at DESC, i.id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*domain.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// DeleteItem removes an item. Returns store.ErrNotFound if it does not exist.
func (s *Store) DeleteItem(ctx context.Context, itemID string) error {
	res, err := s.exec(ctx, `DELETE FROM items WHERE id = ?`, itemID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
