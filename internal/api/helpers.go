package api

import (
	"context"
	"strings"

	"github.com/mymichiganlake/lakes-server/internal/auth"
	"github.com/mymichiganlake/lakes-server/internal/domain"
	domainerrors "github.com/mymichiganlake/lakes-server/internal/errors"
)

// authenticateRequest verifies the bearer token in an Authorization header.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (auth.Claims, error) {
	if authHeader == "" {
		return nil, domainerrors.Unauthorized("Missing authorization header").WithCause(auth.ErrMissingToken)
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, domainerrors.Unauthorized("Invalid authorization header format")
	}

	claims, err := s.services.Verifier.Verify(ctx, strings.TrimSpace(token))
	if err != nil {
		if auth.IsAuthError(err) {
			s.logger.Debug("Token rejected", "error", err)
		}
		return nil, err
	}
	return claims, nil
}

// requireProfile authenticates the request and resolves the caller's profile,
// provisioning it on first use.
func (s *Server) requireProfile(ctx context.Context, authHeader string) (*domain.Profile, error) {
	claims, err := s.authenticateRequest(ctx, authHeader)
	if err != nil {
		return nil, err
	}
	return s.services.Profile.Resolve(ctx, claims)
}

// unknownUsername stands in for authors and owners whose profile is gone.
const unknownUsername = "unknown"

func usernameOrUnknown(username string) string {
	if username == "" {
		return unknownUsername
	}
	return username
}
