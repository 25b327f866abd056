package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mymichiganlake/lakes-server/internal/id"
)

func TestGetMyProfile_Provisions(t *testing.T) {
	ts := setupTestServer(t)
	sub := id.New()
	auth := ts.bearer(t, sub, "Skipper@Example.com")

	resp := ts.api.Get("/profile/me", auth)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	profile := decode[ProfileResponse](t, resp)
	assert.Equal(t, sub, profile.ID)
	assert.Equal(t, "skipper", profile.Username)
	assert.Equal(t, "skipper@example.com", profile.Email)
	assert.Nil(t, profile.Community)
	assert.Empty(t, profile.Interests)

	again := decode[ProfileResponse](t, ts.api.Get("/profile/me", auth))
	assert.Equal(t, profile.ID, again.ID)
}

func TestGetMyProfile_NoEmail(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/profile/me", ts.bearer(t, id.New(), ""))
	body := requireError(t, resp, http.StatusBadRequest, "VALIDATION")
	assert.Equal(t, "No email in token", body.Detail)
}

func TestUpdateMyProfile(t *testing.T) {
	ts := setupTestServer(t)
	auth := ts.bearer(t, id.New(), "skipper@example.com")

	resp := ts.api.Patch("/profile/me", auth, map[string]any{
		"bio":       "Pontoon captain",
		"community": "Torch Lake",
		"interests": []string{"fishing", "sunsets"},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	profile := decode[ProfileResponse](t, resp)
	assert.Equal(t, "Pontoon captain", profile.Bio)
	require.NotNil(t, profile.Community)
	assert.Equal(t, "Torch Lake", *profile.Community)
	require.NotNil(t, profile.CommunityID)
	assert.Equal(t, []string{"Fishing", "Sunsets"}, profile.Interests)

	// The community now shows up in the public listing.
	communities := decode[[]CommunityResponse](t, ts.api.Get("/communities"))
	require.Len(t, communities, 1)
	assert.Equal(t, *profile.CommunityID, communities[0].ID)
}

func TestUpdateMyProfile_RejectsUnknownFields(t *testing.T) {
	ts := setupTestServer(t)
	auth := ts.bearer(t, id.New(), "skipper@example.com")

	resp := ts.api.Patch("/profile/me", auth, map[string]any{
		"bio":   "changed",
		"email": "hijack@example.com",
	})
	requireError(t, resp, http.StatusBadRequest, "VALIDATION")

	profile := decode[ProfileResponse](t, ts.api.Get("/profile/me", auth))
	assert.Equal(t, "skipper@example.com", profile.Email)
	assert.Empty(t, profile.Bio)
}

func TestUpdateMyProfile_UsernameTaken(t *testing.T) {
	ts := setupTestServer(t)

	require.Equal(t, http.StatusOK, ts.api.Get("/profile/me", ts.bearer(t, id.New(), "first@example.com")).Code)

	resp := ts.api.Patch("/profile/me", ts.bearer(t, id.New(), "second@example.com"), map[string]any{
		"username": "first",
	})
	body := requireError(t, resp, http.StatusConflict, "CONFLICT")
	assert.Equal(t, "Username already taken", body.Detail)
}

func TestCheckEmail(t *testing.T) {
	ts := setupTestServer(t)
	require.Equal(t, http.StatusOK, ts.api.Get("/profile/me", ts.bearer(t, id.New(), "taken@example.com")).Code)

	resp := ts.api.Get("/check-email?email=TAKEN@example.com")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, decode[CheckEmailResponse](t, resp).Taken)

	resp = ts.api.Get("/check-email?email=free@example.com")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.False(t, decode[CheckEmailResponse](t, resp).Taken)

	resp = ts.api.Get("/check-email?email=nope")
	requireError(t, resp, http.StatusBadRequest, "VALIDATION")
}
