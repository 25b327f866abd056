// Package service contains the business logic behind the HTTP API.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mymichiganlake/lakes-server/internal/auth"
	"github.com/mymichiganlake/lakes-server/internal/domain"
	domainerrors "github.com/mymichiganlake/lakes-server/internal/errors"
	"github.com/mymichiganlake/lakes-server/internal/id"
	"github.com/mymichiganlake/lakes-server/internal/store"
	"github.com/mymichiganlake/lakes-server/internal/validation"
)

const (
	// maxUsernameAttempts bounds suffix regeneration when provisioning races.
	maxUsernameAttempts = 5
	usernameSuffixLen   = 6
	fallbackUsername    = "user"
)

// ProfileView is a profile together with its first community and interests.
type ProfileView struct {
	Profile   *domain.Profile
	Community *domain.Community
	Interests []string
}

// UpdateProfileRequest lists the profile fields a client may change.
// Nil fields are left untouched; a non-nil empty Interests clears them.
type UpdateProfileRequest struct {
	Username        *string  `json:"username,omitempty" validate:"omitempty,min=3,max=40"`
	Bio             *string  `json:"bio,omitempty" validate:"omitempty,max=2000"`
	Address         *string  `json:"address,omitempty" validate:"omitempty,max=500"`
	ProfileImageURL *string  `json:"profile_image_url,omitempty" validate:"omitempty,max=2048"`
	Community       *string  `json:"community,omitempty" validate:"omitempty,max=120"`
	CommunityID     *string  `json:"community_id,omitempty" validate:"omitempty,uuid"`
	Interests       []string `json:"interests,omitempty" validate:"omitempty,max=50,dive,max=60"`
}

// ProfileService resolves and manages local profiles.
type ProfileService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(store store.Store, validator *validation.Validator, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// Resolve returns the profile for verified claims, provisioning one on the
// first request from a new email. The unique email constraint decides races:
// a losing insert re-reads the winner's row.
func (s *ProfileService) Resolve(ctx context.Context, claims auth.Claims) (*domain.Profile, error) {
	email := claims.Email()
	if email == "" {
		return nil, domainerrors.Validation("No email in token")
	}

	p, err := s.store.GetProfileByEmail(ctx, email)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	profileID, err := s.provisionID(ctx, claims.Subject())
	if err != nil {
		return nil, err
	}

	base := usernameBase(email)
	username := base
	taken, err := s.store.UsernameExists(ctx, base)
	if err != nil {
		return nil, err
	}
	if taken {
		if username, err = suffixed(base); err != nil {
			return nil, err
		}
	}

	for range maxUsernameAttempts {
		p := &domain.Profile{
			ID:        profileID,
			Username:  username,
			Email:     email,
			CreatedAt: time.Now().UTC(),
		}

		err := s.store.CreateProfile(ctx, p)
		if err == nil {
			s.logger.Info("Provisioned profile", "profile_id", p.ID, "username", p.Username)
			return p, nil
		}
		if !errors.Is(err, store.ErrAlreadyExists) {
			return nil, err
		}

		// Someone else may have provisioned this email concurrently.
		existing, err := s.store.GetProfileByEmail(ctx, email)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}

		// Otherwise the username or id collided.
		if profileID, err = s.provisionID(ctx, profileID); err != nil {
			return nil, err
		}
		if username, err = suffixed(base); err != nil {
			return nil, err
		}
	}

	return nil, domainerrors.Conflict("could not allocate a unique username")
}

// provisionID prefers the token subject and falls back to a fresh id when
// the subject is empty or already used by another profile.
func (s *ProfileService) provisionID(ctx context.Context, subject string) (string, error) {
	if subject == "" {
		return id.New(), nil
	}
	used, err := s.store.ProfileIDExists(ctx, subject)
	if err != nil {
		return "", err
	}
	if used {
		return id.New(), nil
	}
	return subject, nil
}

func usernameBase(email string) string {
	base := strings.TrimSpace(domain.EmailLocalPart(email))
	if base == "" {
		return fallbackUsername
	}
	return base
}

func suffixed(base string) (string, error) {
	suffix, err := id.Suffix(usernameSuffixLen)
	if err != nil {
		return "", err
	}
	return base + "_" + suffix, nil
}

// View loads the profile's community and interests.
func (s *ProfileService) View(ctx context.Context, p *domain.Profile) (*ProfileView, error) {
	view := &ProfileView{Profile: p, Interests: []string{}}

	c, err := s.store.GetProfileCommunity(ctx, p.ID)
	switch {
	case err == nil:
		view.Community = c
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	interests, err := s.store.ListProfileInterests(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	view.Interests = interests

	return view, nil
}

// Update applies the allow-listed fields in one transaction.
func (s *ProfileService) Update(ctx context.Context, profileID string, req UpdateProfileRequest) (*ProfileView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var updated *domain.Profile
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		p, err := tx.GetProfile(ctx, profileID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domainerrors.NotFound("Profile not found")
			}
			return err
		}

		fields := domain.ProfileUpdate{
			Username:        trimmed(req.Username),
			Bio:             req.Bio,
			Address:         req.Address,
			ProfileImageURL: req.ProfileImageURL,
		}
		if fields.Username != nil && *fields.Username == "" {
			return domainerrors.ValidationWithDetails("validation failed", map[string]string{"username": "is required"})
		}
		if !fields.IsEmpty() {
			fields.Apply(p)
			if err := tx.UpdateProfile(ctx, p); err != nil {
				if errors.Is(err, store.ErrAlreadyExists) {
					return domainerrors.Conflict("Username already taken")
				}
				return err
			}
		}

		if err := setCommunity(ctx, tx, p.ID, req.CommunityID, req.Community); err != nil {
			return err
		}

		if req.Interests != nil {
			if err := tx.SetProfileInterests(ctx, p.ID, NormalizeInterestNames(req.Interests)); err != nil {
				return err
			}
		}

		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Profile updated", "profile_id", profileID)
	return s.View(ctx, updated)
}

// EmailTaken reports whether an email is registered locally.
func (s *ProfileService) EmailTaken(ctx context.Context, email string) (bool, error) {
	if err := s.validator.Email(email); err != nil {
		return false, err
	}
	return s.store.EmailExists(ctx, email)
}

// setCommunity makes the profile a member of the community named by id or,
// when no id is given, by name (created on demand). Both empty is a no-op.
func setCommunity(ctx context.Context, tx store.Store, profileID string, communityID, name *string) error {
	var target *domain.Community

	switch {
	case communityID != nil && *communityID != "":
		c, err := tx.GetCommunity(ctx, *communityID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domainerrors.NotFound("Community not found")
			}
			return err
		}
		target = c
	case name != nil && strings.TrimSpace(*name) != "":
		c, err := tx.FindOrCreateCommunity(ctx, strings.TrimSpace(*name))
		if err != nil {
			return err
		}
		target = c
	default:
		return nil
	}

	return tx.SetProfileCommunity(ctx, profileID, target.ID, domain.RoleMember)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
