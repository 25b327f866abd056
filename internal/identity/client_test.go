package identity

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
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

	return New(Config{
		BaseURL:        server.URL,
		ServiceRoleKey: "service-key",
		Timeout:        time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_CreateUser(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/admin/users", r.URL.Path)
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"5f0c1f1e-4a57-4d8a-9d8a-2d8b6f1c9e11","email":"a@example.com"}`))
	})

	u, err := client.CreateUser(context.Background(), CreateUserParams{
		Email:    "a@example.com",
		Password: "password123",
		Username: "sailor1",
	})
	require.NoError(t, err)
	assert.Equal(t, "5f0c1f1e-4a57-4d8a-9d8a-2d8b6f1c9e11", u.ID)

	assert.Equal(t, "a@example.com", got["email"])
	assert.Equal(t, true, got["email_confirm"])
	assert.Equal(t, map[string]any{"username": "sailor1"}, got["user_metadata"])
}

func TestClient_CreateUserErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode domainerrors.Code
	}{
		{"email exists code", http.StatusUnprocessableEntity, `{"code":422,"error_code":"email_exists","msg":"A user with this email address has already been registered"}`, domainerrors.CodeConflict},
		{"legacy already registered", http.StatusBadRequest, `{"message":"User already registered"}`, domainerrors.CodeConflict},
		{"weak password", http.StatusUnprocessableEntity, `{"error_code":"weak_password","msg":"Password should be at least 6 characters."}`, domainerrors.CodeValidation},
		{"bad key", http.StatusUnauthorized, `{"message":"Invalid API key"}`, domainerrors.CodeUpstreamUnavailable},
		{"server error", http.StatusInternalServerError, ``, domainerrors.CodeUpstreamUnavailable},
		{"missing id", http.StatusOK, `{"email":"a@example.com"}`, domainerrors.CodeUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.CreateUser(context.Background(), CreateUserParams{Email: "a@example.com", Password: "x"})
			var derr *domainerrors.Error
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, tt.wantCode, derr.Code)
		})
	}
}

func TestClient_CreateUserConflictWrapsSentinel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error_code":"email_exists"}`))
	})

	_, err := client.CreateUser(context.Background(), CreateUserParams{Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := New(Config{BaseURL: server.URL, ServiceRoleKey: "k", Timeout: 50 * time.Millisecond},
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := client.CreateUser(context.Background(), CreateUserParams{Email: "a@example.com"})
	assert.ErrorIs(t, err, domainerrors.ErrUpstreamUnavailable)
}

func TestClient_NotConfigured(t *testing.T) {
	client := New(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second},
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := client.CreateUser(context.Background(), CreateUserParams{Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, err, domainerrors.ErrUpstreamUnavailable)
}

func TestClient_DeleteUser(t *testing.T) {
	var path, method string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path, method = r.URL.Path, r.Method
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.DeleteUser(context.Background(), "user-1"))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/auth/v1/admin/users/user-1", path)
}
