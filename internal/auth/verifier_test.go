package auth

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/mymichiganlake/lakes-server/internal/errors"
)

func newTestVerifier(t *testing.T, srv *jwksServer, opts VerifierOptions) *Verifier {
	t.Helper()
	kc := newTestKeyCache(t, srv, time.Hour, 0)
	return NewVerifier(kc, opts, testLogger())
}

func TestVerify_ValidToken(t *testing.T) {
	for _, key := range []signingKey{newRSAKey(t, "rsa-1"), newECKey(t, "ec-1")} {
		t.Run(key.alg, func(t *testing.T) {
			srv := newJWKSServer(t, key)
			v := newTestVerifier(t, srv, VerifierOptions{})

			claims, err := v.Verify(context.Background(), key.sign(t, validClaims("user-123")))
			require.NoError(t, err)
			assert.Equal(t, "user-123", claims.Subject())
			assert.Equal(t, "sailor@example.com", claims.Email())
			assert.Equal(t, "anon-key", srv.apiKey.Load())
		})
	}
}

func TestVerify_UnknownKeyID(t *testing.T) {
	known := newRSAKey(t, "known")
	stranger := newRSAKey(t, "stranger")
	srv := newJWKSServer(t, known)
	v := newTestVerifier(t, srv, VerifierOptions{})

	_, err := v.Verify(context.Background(), stranger.sign(t, validClaims("user-123")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoMatchingKey)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	assert.Equal(t, "no matching key", err.(*domainerrors.Error).Message)

	// One lazy fill plus one forced refresh.
	assert.Equal(t, int32(2), srv.fetches.Load())
}

func TestVerify_KeyRotation(t *testing.T) {
	oldKey := newRSAKey(t, "2024")
	newKey := newRSAKey(t, "2025")
	srv := newJWKSServer(t, oldKey)
	v := newTestVerifier(t, srv, VerifierOptions{})
	ctx := context.Background()

	_, err := v.Verify(ctx, oldKey.sign(t, validClaims("user-1")))
	require.NoError(t, err)

	srv.addKey(newKey)

	claims, err := v.Verify(ctx, newKey.sign(t, validClaims("user-2")))
	require.NoError(t, err)
	assert.Equal(t, "user-2", claims.Subject())
}

func TestVerify_ConcurrentKeyRotation(t *testing.T) {
	oldKey := newRSAKey(t, "2024")
	newKey := newRSAKey(t, "2025")
	srv := newJWKSServer(t, oldKey)
	kc := newTestKeyCache(t, srv, time.Hour, 30*time.Second)
	v := NewVerifier(kc, VerifierOptions{}, testLogger())
	ctx := context.Background()

	_, err := v.Verify(ctx, oldKey.sign(t, validClaims("user-1")))
	require.NoError(t, err)

	srv.addKey(newKey)
	srv.delay.Store(int64(200 * time.Millisecond))

	const callers = 8
	token := newKey.sign(t, validClaims("user-2"))
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for range callers {
		wg.Go(func() {
			_, err := v.Verify(ctx, token)
			errs <- err
		})
		time.Sleep(10 * time.Millisecond)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(2), srv.fetches.Load(), "callers should share one forced refresh")
}

func TestVerify_MissingSubject(t *testing.T) {
	key := newRSAKey(t, "k")
	srv := newJWKSServer(t, key)
	v := newTestVerifier(t, srv, VerifierOptions{})

	claims := validClaims("")
	delete(claims, "sub")

	_, err := v.Verify(context.Background(), key.sign(t, claims))
	assert.ErrorIs(t, err, ErrMissingSubject)
}

func TestVerify_InvalidTokens(t *testing.T) {
	key := newRSAKey(t, "k")
	srv := newJWKSServer(t, key)

	expired := validClaims("user-1")
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	noExp := validClaims("user-1")
	delete(noExp, "exp")

	hmac := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims("user-1"))
	hmac.Header["kid"] = "k"
	hmacToken, err := hmac.SignedString([]byte("shared-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		opts  VerifierOptions
	}{
		{"garbage", "not.a.jwt", VerifierOptions{}},
		{"expired", key.sign(t, expired), VerifierOptions{}},
		{"missing exp", key.sign(t, noExp), VerifierOptions{}},
		{"symmetric algorithm", hmacToken, VerifierOptions{}},
		{"wrong audience", key.sign(t, validClaims("user-1")), VerifierOptions{Audience: "other"}},
		{"wrong issuer", key.sign(t, validClaims("user-1")), VerifierOptions{Issuer: "https://evil.example"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestVerifier(t, srv, tt.opts)
			_, err := v.Verify(context.Background(), tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Contains(t, err.(*domainerrors.Error).Message, "invalid token: ")
			assert.True(t, IsAuthError(err))
		})
	}
}

func TestVerify_AudienceAndIssuerAccepted(t *testing.T) {
	key := newRSAKey(t, "k")
	srv := newJWKSServer(t, key)
	v := newTestVerifier(t, srv, VerifierOptions{
		Audience: "authenticated",
		Issuer:   "https://project.supabase.co/auth/v1",
	})

	_, err := v.Verify(context.Background(), key.sign(t, validClaims("user-1")))
	assert.NoError(t, err)
}

func TestVerify_EmptyToken(t *testing.T) {
	srv := newJWKSServer(t)
	v := newTestVerifier(t, srv, VerifierOptions{})

	_, err := v.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingToken)
	assert.Equal(t, int32(0), srv.fetches.Load())
}

func TestVerify_KeyEndpointDown(t *testing.T) {
	key := newRSAKey(t, "k")
	srv := newJWKSServer(t, key)
	srv.setStatus(http.StatusBadGateway)
	v := newTestVerifier(t, srv, VerifierOptions{})

	_, err := v.Verify(context.Background(), key.sign(t, validClaims("user-1")))
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUpstreamUnavailable)
	assert.False(t, IsAuthError(err))
}

func TestClaims_Email(t *testing.T) {
	tests := []struct {
		name   string
		claims Claims
		want   string
	}{
		{"top level", Claims{"email": "A@B.com"}, "a@b.com"},
		{"user metadata", Claims{"user_metadata": map[string]any{"email": "Meta@B.com"}}, "meta@b.com"},
		{"blank top level falls back", Claims{"email": " ", "user_metadata": map[string]any{"email": "m@b.com"}}, "m@b.com"},
		{"none", Claims{"sub": "x"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.claims.Email())
		})
	}
}
