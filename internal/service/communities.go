package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mymichiganlake/lakes-server/internal/domain"
	"github.com/mymichiganlake/lakes-server/internal/store"
)

// CommunityService exposes lake communities.
type CommunityService struct {
	store  store.Store
	logger *slog.Logger
}

// NewCommunityService creates a new community service.
func NewCommunityService(store store.Store, logger *slog.Logger) *CommunityService {
	return &CommunityService{
		store:  store,
		logger: logger,
	}
}

// List returns communities ordered by name, optionally restricted to the
// given names. Blank names are ignored.
func (s *CommunityService) List(ctx context.Context, names []string) ([]*domain.Community, error) {
	filter := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			filter = append(filter, n)
		}
	}
	return s.store.ListCommunities(ctx, filter)
}
