package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerCommunityRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCommunities",
		Method:      http.MethodGet,
		Path:        "/communities",
		Summary:     "List communities",
		Description: "Returns lake communities ordered by name, optionally filtered by name",
		Tags:        []string{"Communities"},
	}, s.handleListCommunities)
}

// ListCommunitiesInput contains parameters for listing communities.
type ListCommunitiesInput struct {
	Names string `query:"names" doc:"Comma separated community names"`
}

// CommunityResponse contains community data in API responses.
type CommunityResponse struct {
	ID          string    `json:"id" doc:"Community ID"`
	Name        string    `json:"name" doc:"Unique name"`
	Description string    `json:"description" doc:"Description"`
	LakeName    string    `json:"lake_name" doc:"Associated lake"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
}

// ListCommunitiesOutput wraps the community list for Huma.
type ListCommunitiesOutput struct {
	Body []CommunityResponse
}

func (s *Server) handleListCommunities(ctx context.Context, input *ListCommunitiesInput) (*ListCommunitiesOutput, error) {
	var names []string
	if input.Names != "" {
		names = strings.Split(input.Names, ",")
	}

	communities, err := s.services.Community.List(ctx, names)
	if err != nil {
		return nil, err
	}

	resp := make([]CommunityResponse, len(communities))
	for i, c := range communities {
		resp[i] = CommunityResponse{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			LakeName:    c.LakeName,
			CreatedAt:   c.CreatedAt,
		}
	}
	return &ListCommunitiesOutput{Body: resp}, nil
}
