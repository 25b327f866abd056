package service

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mymichiganlake/lakes-server/internal/domain"
	domainerrors "github.com/mymichiganlake/lakes-server/internal/errors"
	"github.com/mymichiganlake/lakes-server/internal/store"
)

// InterestService manages the shared interest vocabulary.
type InterestService struct {
	store  store.Store
	logger *slog.Logger
}

// NewInterestService creates a new interest service.
func NewInterestService(store store.Store, logger *slog.Logger) *InterestService {
	return &InterestService{
		store:  store,
		logger: logger,
	}
}

// NormalizeInterestNames title-cases names, collapses inner whitespace and
// drops blanks and duplicates while keeping first-seen order.
func NormalizeInterestNames(names []string) []string {
	// A Caser carries state, so each call gets its own.
	caser := cases.Title(language.English)

	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, raw := range names {
		name := strings.Join(strings.Fields(raw), " ")
		if name == "" {
			continue
		}
		name = caser.String(name)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Populate inserts any names not already known. It returns how many were new
// along with the normalized names.
func (s *InterestService) Populate(ctx context.Context, names []string) (int, []string, error) {
	normalized := NormalizeInterestNames(names)
	if len(normalized) == 0 {
		return 0, nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"names": "must contain at least 1 entries",
		})
	}

	inserted, err := s.store.InsertInterests(ctx, normalized)
	if err != nil {
		return 0, nil, err
	}

	s.logger.Info("Populated interests", "requested", len(normalized), "inserted", inserted)
	return inserted, normalized, nil
}

// List returns every interest ordered by name.
func (s *InterestService) List(ctx context.Context) ([]*domain.Interest, error) {
	return s.store.ListInterests(ctx)
}
