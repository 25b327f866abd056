package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/mymichiganlake/lakes-server/internal/errors"
)

// blockingFetcher counts calls and holds every fetch until released.
type blockingFetcher struct {
	calls   atomic.Int32
	release chan struct{}
	set     *KeySet
}

func (f *blockingFetcher) Fetch(ctx context.Context) (*KeySet, error) {
	f.calls.Add(1)
	select {
	case <-f.release:
		return f.set, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestKeyCache_ConcurrentMissesFetchOnce(t *testing.T) {
	f := &blockingFetcher{release: make(chan struct{}), set: NewKeySet(jose.JSONWebKeySet{}, time.Now())}
	kc, err := NewKeyCache(f, time.Hour, time.Second, testLogger())
	require.NoError(t, err)
	defer kc.Close()

	const callers = 20
	var wg sync.WaitGroup
	results := make(chan *KeySet, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ks, err := kc.Get(context.Background())
			if err == nil {
				results <- ks
			}
		}()
	}

	time.Sleep(100 * time.Millisecond)
	close(f.release)
	wg.Wait()
	close(results)

	assert.Equal(t, int32(1), f.calls.Load())
	count := 0
	for ks := range results {
		assert.Same(t, f.set, ks)
		count++
	}
	assert.Equal(t, callers, count)
}

func TestKeyCache_CallerCancellation(t *testing.T) {
	f := &blockingFetcher{release: make(chan struct{}), set: NewKeySet(jose.JSONWebKeySet{}, time.Now())}
	kc, err := NewKeyCache(f, time.Hour, time.Second, testLogger())
	require.NoError(t, err)
	defer kc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = kc.Get(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	close(f.release)
}

func TestKeyCache_ExpiresAfterTTL(t *testing.T) {
	key := newRSAKey(t, "k")
	srv := newJWKSServer(t, key)
	kc := newTestKeyCache(t, srv, 50*time.Millisecond, time.Hour)
	ctx := context.Background()

	ks, err := kc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ks.Len())

	_, err = kc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), srv.fetches.Load(), "second read should hit the cache")

	time.Sleep(150 * time.Millisecond)

	_, err = kc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), srv.fetches.Load(), "expired entry should be refetched")
}

func TestKeyCache_RefreshIsRateLimited(t *testing.T) {
	key := newRSAKey(t, "k")
	srv := newJWKSServer(t, key)
	kc := newTestKeyCache(t, srv, time.Hour, time.Hour)
	ctx := context.Background()

	_, err := kc.Get(ctx)
	require.NoError(t, err)

	_, err = kc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), srv.fetches.Load(), "first refresh goes through")

	_, err = kc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), srv.fetches.Load(), "second refresh within the interval is suppressed")

	// Move the clock past the interval.
	kc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = kc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(3), srv.fetches.Load())
}

func TestKeyCache_Status(t *testing.T) {
	key := newRSAKey(t, "k")
	srv := newJWKSServer(t, key)
	kc := newTestKeyCache(t, srv, time.Hour, time.Hour)

	assert.False(t, kc.Status().Cached)

	_, err := kc.Get(context.Background())
	require.NoError(t, err)

	status := kc.Status()
	assert.True(t, status.Cached)
	assert.Equal(t, 1, status.Keys)
	assert.False(t, status.FetchedAt.IsZero())
}

func TestKeyCache_FetchFailureIsNotCached(t *testing.T) {
	key := newRSAKey(t, "k")
	srv := newJWKSServer(t, key)
	srv.setStatus(500)
	kc := newTestKeyCache(t, srv, time.Hour, time.Hour)
	ctx := context.Background()

	_, err := kc.Get(ctx)
	assert.ErrorIs(t, err, domainerrors.ErrUpstreamUnavailable)

	srv.setStatus(200)
	ks, err := kc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ks.Len())
}

func TestNewKeySet_SkipsUnusableKeys(t *testing.T) {
	sig := newRSAKey(t, "sig")
	enc := newRSAKey(t, "enc")
	private := newECKey(t, "private")

	jwks := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{
		sig.jwk(),
		{Key: enc.public, KeyID: "enc", Algorithm: "RSA-OAEP", Use: "enc"},
		{Key: private.signer, KeyID: "private", Algorithm: "ES256", Use: "sig"},
		{Key: sig.public, Algorithm: "RS256", Use: "sig"},
	}}

	ks := NewKeySet(jwks, time.Now())
	assert.Equal(t, 1, ks.Len())
	_, ok := ks.Key("sig")
	assert.True(t, ok)
}
