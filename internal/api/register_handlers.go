package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mymichiganlake/lakes-server/internal/service"
)

func (s *Server) registerRegisterRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/register",
		Summary:       "Register",
		Description:   "Creates an identity account and the matching profile, community membership, interests and initial items",
		Tags:          []string{"Profile"},
		DefaultStatus: http.StatusCreated,
		MaxBodyBytes:  MaxRegisterBodyBytes,
	}, s.handleRegister)
}

// RegisterRequest is the request body for signing up.
type RegisterRequest struct {
	Email           string              `json:"email" format:"email" maxLength:"254" doc:"Account email"`
	Password        string              `json:"password" minLength:"8" maxLength:"72" doc:"Account password"`
	Username        string              `json:"username" minLength:"3" maxLength:"40" doc:"Unique username"`
	Bio             string              `json:"bio,omitempty" maxLength:"2000" doc:"Bio"`
	Address         string              `json:"address,omitempty" maxLength:"500" doc:"Street address"`
	ProfileImageURL string              `json:"profile_image_url,omitempty" maxLength:"2048" doc:"Avatar URL"`
	Community       string              `json:"community,omitempty" maxLength:"120" doc:"Community name, created if unknown"`
	CommunityID     string              `json:"community_id,omitempty" doc:"Existing community ID"`
	Interests       []string            `json:"interests,omitempty" maxItems:"50" doc:"Interest names"`
	Items           []CreateItemRequest `json:"items,omitempty" maxItems:"20" doc:"Initial marketplace listings"`
}

// RegisterInput wraps the register request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*ProfileOutput, error) {
	items := make([]service.CreateItemRequest, len(input.Body.Items))
	for i, it := range input.Body.Items {
		items[i] = it.toService()
	}

	view, err := s.services.Registration.Register(ctx, service.RegisterRequest{
		Email:           input.Body.Email,
		Password:        input.Body.Password,
		Username:        input.Body.Username,
		Bio:             input.Body.Bio,
		Address:         input.Body.Address,
		ProfileImageURL: input.Body.ProfileImageURL,
		Community:       input.Body.Community,
		CommunityID:     input.Body.CommunityID,
		Interests:       input.Body.Interests,
		Items:           items,
	})
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: toProfileResponse(view)}, nil
}
