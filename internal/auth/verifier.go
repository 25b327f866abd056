// Package auth verifies identity provider access tokens against the
// provider's published signing keys.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// KeySource supplies signing keys to the verifier.
type KeySource interface {
	Get(ctx context.Context) (*KeySet, error)
	Refresh(ctx context.Context) (*KeySet, error)
}

// VerifierOptions configures token validation.
type VerifierOptions struct {
	// Algorithms lists the accepted asymmetric signing algorithms.
	Algorithms []string
	// Audience and Issuer are only checked when non-empty.
	Audience string
	Issuer   string
	Leeway   time.Duration
}

// Verifier validates bearer tokens.
type Verifier struct {
	keys   KeySource
	parser *jwt.Parser
	logger *slog.Logger
}

// NewVerifier creates a verifier that resolves keys through keys.
func NewVerifier(keys KeySource, opts VerifierOptions, logger *slog.Logger) *Verifier {
	algs := opts.Algorithms
	if len(algs) == 0 {
		algs = []string{jwt.SigningMethodRS256.Alg(), jwt.SigningMethodES256.Alg()}
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods(algs),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(opts.Leeway),
	}
	if opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(opts.Audience))
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}

	return &Verifier{
		keys:   keys,
		parser: jwt.NewParser(parserOpts...),
		logger: logger,
	}
}

// Verify checks the token's signature and standard claims and returns its
// claims. Authentication failures are UNAUTHORIZED errors; a key set that
// cannot be fetched surfaces as UPSTREAM_UNAVAILABLE.
func (v *Verifier) Verify(ctx context.Context, raw string) (Claims, error) {
	if raw == "" {
		return nil, unauthorized(ErrMissingToken)
	}

	unverified, _, err := v.parser.ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, invalidToken(err)
	}
	kid, _ := unverified.Header["kid"].(string)

	key, err := v.lookupKey(ctx, kid)
	if err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{}
	if _, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return key, nil
	}); err != nil {
		return nil, invalidToken(err)
	}

	if sub, _ := claims.GetSubject(); sub == "" {
		return nil, unauthorized(ErrMissingSubject)
	}

	return Claims(claims), nil
}

// lookupKey finds kid in the cached set, forcing one refresh on a miss so a
// rotated key is picked up without a restart.
func (v *Verifier) lookupKey(ctx context.Context, kid string) (any, error) {
	ks, err := v.keys.Get(ctx)
	if err != nil {
		return nil, err
	}
	if key, ok := ks.Key(kid); ok {
		return key, nil
	}

	v.logger.Debug("Unknown key id, refreshing key set", "kid", kid)

	ks, err = v.keys.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	if key, ok := ks.Key(kid); ok {
		return key, nil
	}
	return nil, unauthorized(ErrNoMatchingKey)
}

// IsAuthError reports whether err is one of the verifier's authentication
// failures as opposed to an infrastructure error.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrNoMatchingKey) ||
		errors.Is(err, ErrMissingSubject) ||
		errors.Is(err, ErrInvalidToken)
}
