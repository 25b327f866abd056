package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopulateInterests_Idempotent(t *testing.T) {
	ts := setupTestServer(t)
	body := map[string]any{"names": []string{"fishing", "WAKEBOARDING", "Fishing"}}

	resp := ts.api.Post("/interests/populate", body)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	first := decode[PopulateInterestsResponse](t, resp)
	assert.Equal(t, 2, first.Inserted)
	assert.Equal(t, []string{"Fishing", "Wakeboarding"}, first.Interests)

	resp = ts.api.Post("/interests/populate", body)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 0, decode[PopulateInterestsResponse](t, resp).Inserted)

	all := decode[[]InterestResponse](t, ts.api.Get("/interests"))
	require.Len(t, all, 2)
	assert.Equal(t, "Fishing", all[0].Name)
	assert.Equal(t, "Wakeboarding", all[1].Name)
}

func TestPopulateInterests_Empty(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/interests/populate", map[string]any{"names": []string{}})
	requireError(t, resp, http.StatusBadRequest, "VALIDATION")

	resp = ts.api.Post("/interests/populate", map[string]any{"names": []string{"  "}})
	requireError(t, resp, http.StatusBadRequest, "VALIDATION")
}

func TestListCommunities_Filter(t *testing.T) {
	ts := setupTestServer(t)
	ctx := t.Context()

	for _, name := range []string{"Torch Lake", "Higgins Lake", "Houghton Lake"} {
		_, err := ts.store.FindOrCreateCommunity(ctx, name)
		require.NoError(t, err)
	}

	all := decode[[]CommunityResponse](t, ts.api.Get("/communities"))
	require.Len(t, all, 3)
	assert.Equal(t, "Higgins Lake", all[0].Name)

	some := decode[[]CommunityResponse](t, ts.api.Get("/communities?names=Torch%20Lake,Houghton%20Lake"))
	require.Len(t, some, 2)
	assert.Equal(t, "Houghton Lake", some[0].Name)
	assert.Equal(t, "Torch Lake", some[1].Name)
}
