package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mymichiganlake/lakes-server/internal/domain"
)

// profileColumns is the ordered list of columns selected in profile queries.
// Must match the scan order in scanProfile.
const profileColumns = `id, username, email, bio, address, profile_image_url, created_at`

func scanProfile(sc scanner) (*domain.Profile, error) {
	var (
		p         domain.Profile
		createdAt string
	)

	err := sc.Scan(
		&p.ID,
		&p.Username,
		&p.Email,
		&p.Bio,
		&p.Address,
		&p.ProfileImageURL,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse profile created_at: %w", err)
	}
	return &p, nil
}

// CreateProfile inserts a new profile.
// Returns store.ErrAlreadyExists when the id, username or email is taken.
func (s *Store) CreateProfile(ctx context.Context, p *domain.Profile) error {
	_, err := s.exec(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.Username,
		domain.NormalizeEmail(p.Email),
		p.Bio,
		p.Address,
		p.ProfileImageURL,
		formatTime(p.CreatedAt),
	)
	return translateError(err)
}

// GetProfile retrieves a profile by id.
func (s *Store) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	return s.getProfileWhere(ctx, "id = ?", id)
}

// GetProfileByEmail retrieves a profile by email, ignoring case.
func (s *Store) GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return s.getProfileWhere(ctx, "email = ?", domain.NormalizeEmail(email))
}

// GetProfileByUsername retrieves a profile by its exact username.
func (s *Store) GetProfileByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	return s.getProfileWhere(ctx, "username = ?", username)
}

func (s *Store) getProfileWhere(ctx context.Context, where string, arg any) (*domain.Profile, error) {
	row := s.queryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE `+where, arg)
	p, err := scanProfile(row)
	if err != nil {
		return nil, translateError(err)
	}
	return p, nil
}

// ProfileIDExists reports whether a profile with the given id exists.
func (s *Store) ProfileIDExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM profiles WHERE id = ?`, id)
}

// UsernameExists reports whether the username is taken.
func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM profiles WHERE username = ?`, username)
}

// EmailExists reports whether the email is registered, ignoring case.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM profiles WHERE email = ?`, domain.NormalizeEmail(email))
}

func (s *Store) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := s.queryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateProfile writes the mutable profile columns.
// Returns store.ErrNotFound if the profile does not exist and
// store.ErrAlreadyExists if the new username is taken.
func (s *Store) UpdateProfile(ctx context.Context, p *domain.Profile) error {
	res, err := s.exec(ctx, `
		UPDATE profiles
		SET username = ?, bio = ?, address = ?, profile_image_url = ?
		WHERE id = ?`,
		p.Username,
		p.Bio,
		p.Address,
		p.ProfileImageURL,
		p.ID,
	)
	if err != nil {
		return translateError(err)
	}
	return requireAffected(res)
}
