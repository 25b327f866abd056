package providers

import (
	"github.com/samber/do/v2"

	"github.com/mymichiganlake/lakes-server/internal/identity"
	"github.com/mymichiganlake/lakes-server/internal/logger"
	"github.com/mymichiganlake/lakes-server/internal/media/images"
	"github.com/mymichiganlake/lakes-server/internal/service"
	"github.com/mymichiganlake/lakes-server/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideProfileService provides the profile service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProfileService(storeHandle.Store, validator, log.Logger), nil
}

// ProvideCommunityService provides the community service.
func ProvideCommunityService(i do.Injector) (*service.CommunityService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCommunityService(storeHandle.Store, log.Logger), nil
}

// ProvideInterestService provides the interest catalogue service.
func ProvideInterestService(i do.Injector) (*service.InterestService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewInterestService(storeHandle.Store, log.Logger), nil
}

// ProvidePostService provides the community post service.
func ProvidePostService(i do.Injector) (*service.PostService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPostService(storeHandle.Store, validator, log.Logger), nil
}

// ProvideItemService provides the marketplace item service.
func ProvideItemService(i do.Injector) (*service.ItemService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	processor := do.MustInvoke[*images.Processor](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewItemService(storeHandle.Store, processor, validator, log.Logger), nil
}

// ProvideRegistrationService provides the sign-up service.
func ProvideRegistrationService(i do.Injector) (*service.RegistrationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	identityClient := do.MustInvoke[*identity.Client](i)
	profiles := do.MustInvoke[*service.ProfileService](i)
	items := do.MustInvoke[*service.ItemService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRegistrationService(storeHandle.Store, identityClient, profiles, items, validator, log.Logger), nil
}
