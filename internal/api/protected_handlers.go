package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerProtectedRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "protected",
		Method:      http.MethodGet,
		Path:        "/protected",
		Summary:     "Echo verified claims",
		Description: "Returns the verified token claims of the caller",
		Tags:        []string{"Auth"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleProtected)
}

// AuthorizationInput carries the bearer token header.
type AuthorizationInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token issued by the identity provider"`
}

// ProtectedResponse echoes the caller's claims.
type ProtectedResponse struct {
	User map[string]any `json:"user" doc:"Verified token claims"`
}

// ProtectedOutput wraps the protected response for Huma.
type ProtectedOutput struct {
	Body ProtectedResponse
}

func (s *Server) handleProtected(ctx context.Context, input *AuthorizationInput) (*ProtectedOutput, error) {
	claims, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}
	return &ProtectedOutput{Body: ProtectedResponse{User: claims}}, nil
}
