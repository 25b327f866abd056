package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mymichiganlake/lakes-server/internal/service"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getMyProfile",
		Method:      http.MethodGet,
		Path:        "/profile/me",
		Summary:     "Get my profile",
		Description: "Returns the caller's profile, creating it on first use",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetMyProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateMyProfile",
		Method:      http.MethodPatch,
		Path:        "/profile/me",
		Summary:     "Update my profile",
		Description: "Updates allow-listed profile fields. Unknown fields are rejected.",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateMyProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "checkEmail",
		Method:      http.MethodGet,
		Path:        "/check-email",
		Summary:     "Check email",
		Description: "Reports whether an email address is already registered",
		Tags:        []string{"Profile"},
	}, s.handleCheckEmail)
}

// === DTOs ===

// ProfileResponse contains profile data in API responses.
type ProfileResponse struct {
	ID              string    `json:"id" doc:"Profile ID (identity provider subject)"`
	Username        string    `json:"username" doc:"Unique username"`
	Email           string    `json:"email" doc:"Lower-cased email"`
	Bio             string    `json:"bio" doc:"Free-form bio"`
	Address         string    `json:"address" doc:"Street address"`
	ProfileImageURL string    `json:"profile_image_url" doc:"Avatar URL"`
	CreatedAt       time.Time `json:"created_at" doc:"Creation time"`
	Community       *string   `json:"community" doc:"Name of the first joined community"`
	CommunityID     *string   `json:"community_id" doc:"ID of the first joined community"`
	Interests       []string  `json:"interests" doc:"Interest names"`
}

// ProfileOutput wraps the profile response for Huma.
type ProfileOutput struct {
	Body ProfileResponse
}

// UpdateProfileRequest is the request body for updating a profile.
type UpdateProfileRequest struct {
	Username        *string  `json:"username,omitempty" minLength:"3" maxLength:"40" doc:"New username"`
	Bio             *string  `json:"bio,omitempty" maxLength:"2000" doc:"Bio"`
	Address         *string  `json:"address,omitempty" maxLength:"500" doc:"Street address"`
	ProfileImageURL *string  `json:"profile_image_url,omitempty" maxLength:"2048" doc:"Avatar URL"`
	Community       *string  `json:"community,omitempty" maxLength:"120" doc:"Community name, created if unknown"`
	CommunityID     *string  `json:"community_id,omitempty" format:"uuid" doc:"Existing community ID, takes precedence over community"`
	Interests       []string `json:"interests,omitempty" maxItems:"50" doc:"Replaces the interest list; an empty list clears it"`
}

// UpdateProfileInput wraps the update profile request for Huma.
type UpdateProfileInput struct {
	Authorization string `header:"Authorization"`
	Body          UpdateProfileRequest
}

// CheckEmailInput contains parameters for checking an email.
type CheckEmailInput struct {
	Email string `query:"email" required:"true" doc:"Email address to check"`
}

// CheckEmailResponse reports whether an email is taken.
type CheckEmailResponse struct {
	Taken bool `json:"taken" doc:"True when a profile uses this email"`
}

// CheckEmailOutput wraps the check email response for Huma.
type CheckEmailOutput struct {
	Body CheckEmailResponse
}

// === Handlers ===

func (s *Server) handleGetMyProfile(ctx context.Context, input *AuthorizationInput) (*ProfileOutput, error) {
	profile, err := s.requireProfile(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Profile.View(ctx, profile)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: toProfileResponse(view)}, nil
}

func (s *Server) handleUpdateMyProfile(ctx context.Context, input *UpdateProfileInput) (*ProfileOutput, error) {
	profile, err := s.requireProfile(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Profile.Update(ctx, profile.ID, service.UpdateProfileRequest{
		Username:        input.Body.Username,
		Bio:             input.Body.Bio,
		Address:         input.Body.Address,
		ProfileImageURL: input.Body.ProfileImageURL,
		Community:       input.Body.Community,
		CommunityID:     input.Body.CommunityID,
		Interests:       input.Body.Interests,
	})
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: toProfileResponse(view)}, nil
}

func (s *Server) handleCheckEmail(ctx context.Context, input *CheckEmailInput) (*CheckEmailOutput, error) {
	taken, err := s.services.Profile.EmailTaken(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	return &CheckEmailOutput{Body: CheckEmailResponse{Taken: taken}}, nil
}

func toProfileResponse(view *service.ProfileView) ProfileResponse {
	p := view.Profile
	resp := ProfileResponse{
		ID:              p.ID,
		Username:        p.Username,
		Email:           p.Email,
		Bio:             p.Bio,
		Address:         p.Address,
		ProfileImageURL: p.ProfileImageURL,
		CreatedAt:       p.CreatedAt,
		Interests:       view.Interests,
	}
	if resp.Interests == nil {
		resp.Interests = []string{}
	}
	if view.Community != nil {
		resp.Community = &view.Community.Name
		resp.CommunityID = &view.Community.ID
	}
	return resp
}
