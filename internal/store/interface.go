// Package store defines the persistence interface for the MyMichiganLake server.
package store

import (
	"context"

	"github.com/mymichiganlake/lakes-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// WithTx runs fn against a store bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	// Profiles
	CreateProfile(ctx context.Context, p *domain.Profile) error
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (*domain.Profile, error)
	ProfileIDExists(ctx context.Context, id string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, p *domain.Profile) error

	// Communities
	CreateCommunity(ctx context.Context, c *domain.Community) error
	GetCommunity(ctx context.Context, id string) (*domain.Community, error)
	GetCommunityByName(ctx context.Context, name string) (*domain.Community, error)
	FindOrCreateCommunity(ctx context.Context, name string) (*domain.Community, error)
	ListCommunities(ctx context.Context, names []string) ([]*domain.Community, error)
	SetProfileCommunity(ctx context.Context, profileID, communityID, role string) error
	GetProfileCommunity(ctx context.Context, profileID string) (*domain.Community, error)

	// Interests
	InsertInterests(ctx context.Context, names []string) (int, error)
	ListInterests(ctx context.Context) ([]*domain.Interest, error)
	SetProfileInterests(ctx context.Context, profileID string, names []string) error
	ListProfileInterests(ctx context.Context, profileID string) ([]string, error)

	// Posts
	CreatePost(ctx context.Context, p *domain.Post) error
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	ListPosts(ctx context.Context, filter domain.PostFilter) ([]*domain.Post, error)
	DeletePost(ctx context.Context, id string) error

	// Items
	CreateItem(ctx context.Context, item *domain.Item) error
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	ListItems(ctx context.Context, limit int) ([]*domain.Item, error)
	DeleteItem(ctx context.Context, id string) error
}
