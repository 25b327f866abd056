package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mymichiganlake/lakes-server/internal/id"
)

func TestProtected_ReturnsClaims(t *testing.T) {
	ts := setupTestServer(t)
	sub := id.New()

	resp := ts.api.Get("/protected", ts.bearer(t, sub, "sailor@example.com"))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	body := decode[ProtectedResponse](t, resp)
	assert.Equal(t, sub, body.User["sub"])
	assert.Equal(t, "sailor@example.com", body.User["email"])
}

func TestProtected_Unauthorized(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name       string
		args       []any
		wantDetail string
	}{
		{
			name:       "missing header",
			wantDetail: "Missing authorization header",
		},
		{
			name:       "wrong scheme",
			args:       []any{"Authorization: Basic abc"},
			wantDetail: "Invalid authorization header format",
		},
		{
			name:       "garbage token",
			args:       []any{"Authorization: Bearer not.a.jwt"},
			wantDetail: "invalid token:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get("/protected", tt.args...)
			body := requireError(t, resp, http.StatusUnauthorized, "UNAUTHORIZED")
			assert.True(t, strings.HasPrefix(body.Detail, tt.wantDetail), "detail: %s", body.Detail)
		})
	}
}

func TestProtected_ForeignSignature(t *testing.T) {
	ts := setupTestServer(t)

	// Same key id, different key pair.
	other := setupTestServer(t)
	token := other.token(t, id.New(), "a@example.com")

	resp := ts.api.Get("/protected", "Authorization: Bearer "+token)
	body := requireError(t, resp, http.StatusUnauthorized, "UNAUTHORIZED")
	assert.True(t, strings.HasPrefix(body.Detail, "invalid token:"), "detail: %s", body.Detail)
}

func TestProtected_KeyEndpointDown(t *testing.T) {
	ts := setupTestServer(t)
	ts.jwksDown.Store(true)

	resp := ts.api.Get("/protected", ts.bearer(t, id.New(), "a@example.com"))
	requireError(t, resp, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE")
}
