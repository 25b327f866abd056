package places

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/mymichiganlake/lakes-server/internal/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(Config{
		APIKey:       "maps-key",
		BaseURL:      server.URL,
		RadiusMeters: 25000,
		Timeout:      time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(client.Close)
	return client
}

func TestClient_Autocomplete(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/place/autocomplete/json", r.URL.Path)
		assert.Equal(t, "torch", r.URL.Query().Get("input"))
		assert.Equal(t, "maps-key", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"predictions":[{"description":"Torch Lake, MI"}],"status":"OK"}`))
	})

	resp, err := client.Autocomplete(context.Background(), "torch")
	require.NoError(t, err)
	assert.Equal(t, "OK", resp["status"])
	assert.Len(t, resp["predictions"], 1)
}

func TestClient_PlaceDetails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/place/details/json", r.URL.Path)
		assert.Equal(t, "abc123", r.URL.Query().Get("place_id"))
		_, _ = w.Write([]byte(`{"result":{"name":"Higgins Lake"},"status":"OK"}`))
	})

	resp, err := client.PlaceDetails(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Higgins Lake"}, resp["result"])
}

func TestClient_NearbyLakesTruncates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/maps/api/place/nearbysearch/json", r.URL.Path)
		assert.Equal(t, "44.9,-85.3", q.Get("location"))
		assert.Equal(t, "25000", q.Get("radius"))
		assert.Equal(t, "lake", q.Get("keyword"))

		results := make([]string, 8)
		for i := range results {
			results[i] = fmt.Sprintf(`{"name":"Lake %d"}`, i)
		}
		fmt.Fprintf(w, `{"results":[%s],"status":"OK"}`, strings.Join(results, ","))
	})

	resp, err := client.NearbyLakes(context.Background(), 44.9, -85.3)
	require.NoError(t, err)

	results, ok := resp["results"].([]any)
	require.True(t, ok)
	assert.Len(t, results, NearbyLakesLimit)
	assert.Equal(t, "Lake 0", results[0].(map[string]any)["name"])
}

func TestClient_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) }},
		{"not json", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("<html>")) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.Autocomplete(context.Background(), "x")
			assert.ErrorIs(t, err, domainerrors.ErrUpstreamUnavailable)
		})
	}
}

func TestClient_CanceledWhileWaiting(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("request should not reach the provider")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Autocomplete(ctx, "torch")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_NotConfigured(t *testing.T) {
	client := New(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer client.Close()

	_, err := client.Autocomplete(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
