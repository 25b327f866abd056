package providers

import (
	"github.com/samber/do/v2"

	"github.com/mymichiganlake/lakes-server/internal/auth"
	"github.com/mymichiganlake/lakes-server/internal/config"
	"github.com/mymichiganlake/lakes-server/internal/identity"
	"github.com/mymichiganlake/lakes-server/internal/logger"
)

// KeyCacheHandle wraps the JWKS cache with Shutdownable.
type KeyCacheHandle struct {
	*auth.KeyCache
}

// Shutdown implements do.Shutdownable.
func (h *KeyCacheHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideKeyCache provides the identity provider's signing key cache.
// The first fetch happens lazily, so startup does not depend on the provider.
func ProvideKeyCache(i do.Injector) (*KeyCacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	fetcher := auth.NewHTTPFetcher(cfg.Identity.JWKSURL, cfg.Identity.AnonKey, cfg.Upstream.Timeout)
	cache, err := auth.NewKeyCache(fetcher, cfg.Identity.KeyCacheTTL, cfg.Identity.MinRefreshInterval, log.WithField("component", "jwks").Logger)
	if err != nil {
		return nil, err
	}

	log.Info("JWKS cache configured", "url", cfg.Identity.JWKSURL, "ttl", cfg.Identity.KeyCacheTTL)

	return &KeyCacheHandle{KeyCache: cache}, nil
}

// ProvideVerifier provides the bearer token verifier.
func ProvideVerifier(i do.Injector) (*auth.Verifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	keys := do.MustInvoke[*KeyCacheHandle](i)

	if cfg.Identity.Audience == "" {
		log.Warn("JWT_AUDIENCE is not set, token audience will not be checked")
	}

	return auth.NewVerifier(keys.KeyCache, auth.VerifierOptions{
		Algorithms: cfg.Identity.Algorithms,
		Audience:   cfg.Identity.Audience,
		Issuer:     cfg.Identity.Issuer,
	}, log.Logger), nil
}

// ProvideIdentityClient provides the identity provider admin client.
func ProvideIdentityClient(i do.Injector) (*identity.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Identity.ServiceRoleKey == "" {
		log.Warn("SUPABASE_SERVICE_ROLE_KEY is not set, registration is disabled")
	}

	return identity.New(identity.Config{
		BaseURL:        cfg.Identity.BaseURL,
		ServiceRoleKey: cfg.Identity.ServiceRoleKey,
		Timeout:        cfg.Upstream.Timeout,
	}, log.WithField("component", "identity").Logger), nil
}
