package api

import (
	"github.com/mymichiganlake/lakes-server/internal/auth"
	"github.com/mymichiganlake/lakes-server/internal/places"
	"github.com/mymichiganlake/lakes-server/internal/service"
)

// Services groups the business logic used by the API server.
type Services struct {
	Verifier     *auth.Verifier
	Keys         *auth.KeyCache // Reported by readiness checks
	Profile      *service.ProfileService
	Registration *service.RegistrationService
	Community    *service.CommunityService
	Interest     *service.InterestService
	Post         *service.PostService
	Item         *service.ItemService
	Places       *places.Client
}
