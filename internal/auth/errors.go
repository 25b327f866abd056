package auth

import (
	"errors"
	"fmt"

	domainerrors "github.com/mymichiganlake/lakes-server/internal/errors"
)

// Causes attached to the UNAUTHORIZED errors returned by Verify.
// Match them with errors.Is.
var (
	ErrMissingToken   = errors.New("missing bearer token")
	ErrNoMatchingKey  = errors.New("no matching key")
	ErrMissingSubject = errors.New("missing subject")
	ErrInvalidToken   = errors.New("invalid token")
)

func unauthorized(cause error) error {
	return domainerrors.Unauthorized(cause.Error()).WithCause(cause)
}

// invalidToken keeps the parse failure in the message for diagnostics.
func invalidToken(reason error) error {
	return domainerrors.Unauthorized(fmt.Sprintf("invalid token: %v", reason)).
		WithCause(fmt.Errorf("%w: %w", ErrInvalidToken, reason))
}
