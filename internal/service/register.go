package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mymichiganlake/lakes-server/internal/domain"
	domainerrors "github.com/mymichiganlake/lakes-server/internal/errors"
	"github.com/mymichiganlake/lakes-server/internal/identity"
	"github.com/mymichiganlake/lakes-server/internal/store"
	"github.com/mymichiganlake/lakes-server/internal/validation"
)

// IdentityAdmin creates and removes accounts at the identity provider.
type IdentityAdmin interface {
	CreateUser(ctx context.Context, p identity.CreateUserParams) (*identity.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Email           string              `json:"email" validate:"required,email,max=254"`
	Password        string              `json:"password" validate:"required,min=8,max=72"`
	Username        string              `json:"username" validate:"required,min=3,max=40"`
	Bio             string              `json:"bio,omitempty" validate:"max=2000"`
	Address         string              `json:"address,omitempty" validate:"max=500"`
	ProfileImageURL string              `json:"profile_image_url,omitempty" validate:"max=2048"`
	Community       string              `json:"community,omitempty" validate:"max=120"`
	CommunityID     string              `json:"community_id,omitempty" validate:"omitempty,uuid"`
	Interests       []string            `json:"interests,omitempty" validate:"max=50,dive,max=60"`
	Items           []CreateItemRequest `json:"items,omitempty" validate:"max=20,dive"`
}

// RegistrationService signs up new users.
type RegistrationService struct {
	store     store.Store
	identity  IdentityAdmin
	profiles  *ProfileService
	items     *ItemService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewRegistrationService creates a new registration service.
func NewRegistrationService(
	store store.Store,
	identity IdentityAdmin,
	profiles *ProfileService,
	items *ItemService,
	validator *validation.Validator,
	logger *slog.Logger,
) *RegistrationService {
	return &RegistrationService{
		store:     store,
		identity:  identity,
		profiles:  profiles,
		items:     items,
		validator: validator,
		logger:    logger,
	}
}

// Register creates the identity account, then writes the profile, its
// community, interests and initial items in one transaction. If the local
// writes fail the identity account is deleted again.
func (s *RegistrationService) Register(ctx context.Context, req RegisterRequest) (*ProfileView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	email := domain.NormalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)

	// 1. Reject known conflicts before touching the identity provider
	if taken, err := s.store.EmailExists(ctx, email); err != nil {
		return nil, err
	} else if taken {
		return nil, domainerrors.Conflict("Email already registered")
	}
	if taken, err := s.store.UsernameExists(ctx, username); err != nil {
		return nil, err
	} else if taken {
		return nil, domainerrors.Conflict("Username already taken")
	}

	// 2. Decode and store item images so bad uploads fail early
	items := make([]*domain.Item, 0, len(req.Items))
	discard := func() {
		for _, it := range items {
			s.items.discardImage(ctx, it)
		}
	}
	for _, itemReq := range req.Items {
		it, err := s.items.prepare(ctx, "", itemReq)
		if err != nil {
			discard()
			return nil, err
		}
		items = append(items, it)
	}

	// 3. Create the identity account
	user, err := s.identity.CreateUser(ctx, identity.CreateUserParams{
		Email:    email,
		Password: req.Password,
		Username: username,
	})
	if err != nil {
		discard()
		return nil, err
	}

	// 4. Local writes
	profile := &domain.Profile{
		ID:              user.ID,
		Username:        username,
		Email:           email,
		Bio:             req.Bio,
		Address:         req.Address,
		ProfileImageURL: req.ProfileImageURL,
		CreatedAt:       time.Now().UTC(),
	}

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.CreateProfile(ctx, profile); err != nil {
			return err
		}

		if err := setCommunity(ctx, tx, profile.ID, &req.CommunityID, &req.Community); err != nil {
			return err
		}

		if len(req.Interests) > 0 {
			if err := tx.SetProfileInterests(ctx, profile.ID, NormalizeInterestNames(req.Interests)); err != nil {
				return err
			}
		}

		for _, it := range items {
			it.OwnerID = profile.ID
			if err := tx.CreateItem(ctx, it); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		discard()
		s.rollbackIdentity(ctx, user.ID)
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("Email or username already registered").WithCause(err)
		}
		return nil, err
	}

	s.logger.Info("User registered",
		"profile_id", profile.ID,
		"username", profile.Username,
		"items", len(items),
	)

	return s.profiles.View(ctx, profile)
}

func (s *RegistrationService) rollbackIdentity(ctx context.Context, userID string) {
	// The request may already be canceled; the cleanup still has to run.
	if err := s.identity.DeleteUser(context.WithoutCancel(ctx), userID); err != nil {
		s.logger.Error("failed to remove identity account after registration failure",
			"user_id", userID,
			"error", err,
		)
	}
}
