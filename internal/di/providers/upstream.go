package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/mymichiganlake/lakes-server/internal/config"
	"github.com/mymichiganlake/lakes-server/internal/logger"
	"github.com/mymichiganlake/lakes-server/internal/media/images"
	"github.com/mymichiganlake/lakes-server/internal/places"
)

// PlacesHandle wraps the Places client with Shutdownable.
type PlacesHandle struct {
	*places.Client
}

// Shutdown implements do.Shutdownable.
func (h *PlacesHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvidePlacesClient provides the rate-limited Google Places client.
func ProvidePlacesClient(i do.Injector) (*PlacesHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Maps.APIKey == "" {
		log.Warn("GOOGLE_MAPS_API_KEY is not set, map endpoints will report the provider as unavailable")
	}

	return &PlacesHandle{Client: places.New(places.Config{
		APIKey:       cfg.Maps.APIKey,
		BaseURL:      cfg.Maps.BaseURL,
		RadiusMeters: cfg.Maps.RadiusMeters,
		Timeout:      cfg.Upstream.Timeout,
	}, log.WithField("component", "places").Logger)}, nil
}

// ProvideImageStorage selects the item image backend.
func ProvideImageStorage(i do.Injector) (images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Images.Storage != config.ImageStorageS3 {
		log.Info("Item images stored inline")
		return images.InlineStorage{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Upstream.Timeout)
	defer cancel()

	storage, err := images.NewS3Storage(ctx, images.S3Config{
		Bucket:     cfg.Images.S3Bucket,
		Region:     cfg.Images.S3Region,
		Endpoint:   cfg.Images.S3Endpoint,
		KeyID:      cfg.Images.S3KeyID,
		Secret:     cfg.Images.S3Secret,
		PresignTTL: cfg.Images.PresignTTL,
		Timeout:    cfg.Upstream.Timeout,
	})
	if err != nil {
		return nil, err
	}

	log.Info("Item images stored in S3", "bucket", cfg.Images.S3Bucket, "endpoint", cfg.Images.S3Endpoint)

	return storage, nil
}

// ProvideImageProcessor provides the item image processor.
func ProvideImageProcessor(i do.Injector) (*images.Processor, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storage := do.MustInvoke[images.Storage](i)

	return images.NewProcessor(storage, cfg.Images.MaxBytes, log.Logger), nil
}
