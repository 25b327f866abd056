// Package di provides dependency injection configuration for the MyMichiganLake server.
package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/mymichiganlake/lakes-server/internal/auth"
	"github.com/mymichiganlake/lakes-server/internal/config"
	"github.com/mymichiganlake/lakes-server/internal/di/providers"
	"github.com/mymichiganlake/lakes-server/internal/identity"
	"github.com/mymichiganlake/lakes-server/internal/logger"
	"github.com/mymichiganlake/lakes-server/internal/media/images"
	"github.com/mymichiganlake/lakes-server/internal/service"
	"github.com/mymichiganlake/lakes-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Identity provider
	do.Provide(injector, providers.ProvideKeyCache)
	do.Provide(injector, providers.ProvideVerifier)
	do.Provide(injector, providers.ProvideIdentityClient)

	// Upstreams and storage
	do.Provide(injector, providers.ProvidePlacesClient)
	do.Provide(injector, providers.ProvideImageStorage)
	do.Provide(injector, providers.ProvideImageProcessor)

	// Business services
	do.Provide(injector, providers.ProvideProfileService)
	do.Provide(injector, providers.ProvideCommunityService)
	do.Provide(injector, providers.ProvideInterestService)
	do.Provide(injector, providers.ProvidePostService)
	do.Provide(injector, providers.ProvideItemService)
	do.Provide(injector, providers.ProvideRegistrationService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services eagerly so configuration and database
// problems surface before the server starts accepting requests.
func Bootstrap(injector *do.RootScope) error {
	steps := []struct {
		name   string
		invoke func() error
	}{
		{"config", invoke[*config.Config](injector)},
		{"logger", invoke[*logger.Logger](injector)},
		{"validator", invoke[*validation.Validator](injector)},
		{"store", invoke[*providers.StoreHandle](injector)},
		{"key cache", invoke[*providers.KeyCacheHandle](injector)},
		{"verifier", invoke[*auth.Verifier](injector)},
		{"identity client", invoke[*identity.Client](injector)},
		{"places client", invoke[*providers.PlacesHandle](injector)},
		{"image storage", invoke[images.Storage](injector)},
		{"image processor", invoke[*images.Processor](injector)},
		{"profile service", invoke[*service.ProfileService](injector)},
		{"community service", invoke[*service.CommunityService](injector)},
		{"interest service", invoke[*service.InterestService](injector)},
		{"post service", invoke[*service.PostService](injector)},
		{"item service", invoke[*service.ItemService](injector)},
		{"registration service", invoke[*service.RegistrationService](injector)},
		{"http server", invoke[*providers.HTTPServerHandle](injector)},
	}

	for _, step := range steps {
		if err := step.invoke(); err != nil {
			return fmt.Errorf("init %s: %w", step.name, err)
		}
	}

	return nil
}

func invoke[T any](injector do.Injector) func() error {
	return func() error {
		_, err := do.Invoke[T](injector)
		return err
	}
}
