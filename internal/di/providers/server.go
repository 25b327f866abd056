package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/mymichiganlake/lakes-server/internal/api"
	"github.com/mymichiganlake/lakes-server/internal/auth"
	"github.com/mymichiganlake/lakes-server/internal/config"
	"github.com/mymichiganlake/lakes-server/internal/logger"
	"github.com/mymichiganlake/lakes-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	keys := do.MustInvoke[*KeyCacheHandle](i)
	placesHandle := do.MustInvoke[*PlacesHandle](i)

	services := &api.Services{
		Verifier:     do.MustInvoke[*auth.Verifier](i),
		Keys:         keys.KeyCache,
		Profile:      do.MustInvoke[*service.ProfileService](i),
		Registration: do.MustInvoke[*service.RegistrationService](i),
		Community:    do.MustInvoke[*service.CommunityService](i),
		Interest:     do.MustInvoke[*service.InterestService](i),
		Post:         do.MustInvoke[*service.PostService](i),
		Item:         do.MustInvoke[*service.ItemService](i),
		Places:       placesHandle.Client,
	}

	handler := api.NewServer(cfg, storeHandle.Store, services, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server error")
		}
	}()

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
