package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mymichiganlake/lakes-server/internal/domain"
)

// postSelect joins the author so listings carry a username.
// Must match the scan order in scanPost.
const postSelect = `
	SELECT p.id, p.title, p.content, p.post_type, p.created_at, p.author_id, p.community_id,
	       COALESCE(pr.username, '')
	FROM posts p
	LEFT JOIN profiles pr ON pr.id = p.author_id`

func scanPost(sc scanner) (*domain.Post, error) {
	var (
		p           domain.Post
		postType    string
		createdAt   string
		communityID sql.NullString
	)

	err := sc.Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&postType,
		&createdAt,
		&p.AuthorID,
		&communityID,
		&p.AuthorUsername,
	)
	if err != nil {
		return nil, err
	}

	p.Type, _ = domain.ParsePostType(postType)
	p.CommunityID = stringPtr(communityID)
	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse post created_at: %w", err)
	}
	return &p, nil
}

// CreatePost inserts a new post.
// Returns store.ErrInvalidReference when the author or community does not exist.
func (s *Store) CreatePost(ctx context.Context, p *domain.Post) error {
	_, err := s.exec(ctx, `
		INSERT INTO posts (id, title, content, post_type, created_at, author_id, community_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.Title,
		p.Content,
		string(p.Type),
		formatTime(p.CreatedAt),
		p.AuthorID,
		nullString(p.CommunityID),
	)
	return translateError(err)
}

// GetPost retrieves a post by id.
func (s *Store) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	row := s.queryRow(ctx, postSelect+` WHERE p.id = ?`, postID)
	p, err := scanPost(row)
	if err != nil {
		return nil, translateError(err)
	}
	return p, nil
}

// ListPosts returns posts newest first, optionally restricted to one community.
func (s *Store) ListPosts(ctx context.Context, filter domain.PostFilter) ([]*domain.Post, error) {
	query := postSelect
	var args []any
	if filter.CommunityID != "" {
		query += ` WHERE p.community_id = ?`
		args = append(args, filter.CommunityID)
	}
	query += ` ORDER BY p.created_at DESC, p.id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// DeletePost removes a post. Returns store.ErrNotFound if it does not exist.
func (s *Store) DeletePost(ctx context.Context, postID string) error {
	res, err := s.exec(ctx, `DELETE FROM posts WHERE id = ?`, postID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
