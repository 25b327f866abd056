package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-jose/go-jose/v4"

	domainerrors "github.com/mymichiganlake/lakes-server/internal/errors"
)

// maxJWKSBytes bounds the key set document read from the provider.
const maxJWKSBytes = 1 << 20

// KeySet is an immutable snapshot of the provider's public signing keys,
// indexed by key id.
type KeySet struct {
	keys      map[string]any
	FetchedAt time.Time
}

// NewKeySet builds a KeySet from a parsed JWKS document. Private, symmetric
// and encryption-only keys are skipped.
func NewKeySet(jwks jose.JSONWebKeySet, fetchedAt time.Time) *KeySet {
	ks := &KeySet{keys: make(map[string]any, len(jwks.Keys)), FetchedAt: fetchedAt}
	for _, k := range jwks.Keys {
		if !k.Valid() || !k.IsPublic() || k.KeyID == "" {
			continue
		}
		if k.Use != "" && k.Use != "sig" {
			continue
		}
		ks.keys[k.KeyID] = k.Key
	}
	return ks
}

// Key returns the public key for kid.
func (ks *KeySet) Key(kid string) (any, bool) {
	if ks == nil {
		return nil, false
	}
	k, ok := ks.keys[kid]
	return k, ok
}

// Len returns the number of usable keys.
func (ks *KeySet) Len() int {
	if ks == nil {
		return 0
	}
	return len(ks.keys)
}

// Fetcher retrieves the current key set from the identity provider.
type Fetcher interface {
	Fetch(ctx context.Context) (*KeySet, error)
}

// HTTPFetcher downloads a JWKS document over HTTP.
type HTTPFetcher struct {
	url        string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// NewHTTPFetcher creates a fetcher for url. apiKey is sent as the apikey
// header when non-empty, as Supabase gateways expect.
func NewHTTPFetcher(url, apiKey string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		url:        url,
		apiKey:     apiKey,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads and parses the key set. Network failures, timeouts and
// non-2xx answers are reported as UPSTREAM_UNAVAILABLE.
func (f *HTTPFetcher) Fetch(ctx context.Context) (*KeySet, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create jwks request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if f.apiKey != "" {
		req.Header.Set("apikey", f.apiKey)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, domainerrors.UpstreamUnavailable("identity provider", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domainerrors.UpstreamUnavailable("identity provider",
			fmt.Errorf("jwks endpoint returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJWKSBytes))
	if err != nil {
		return nil, domainerrors.UpstreamUnavailable("identity provider", err)
	}

	var jwks jose.JSONWebKeySet
	if err := json.Unmarshal(body, &jwks); err != nil {
		return nil, domainerrors.UpstreamUnavailable("identity provider",
			fmt.Errorf("decode jwks: %w", err))
	}

	return NewKeySet(jwks, time.Now()), nil
}
