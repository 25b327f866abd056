package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerInterestRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listInterests",
		Method:      http.MethodGet,
		Path:        "/interests",
		Summary:     "List interests",
		Description: "Returns every interest ordered by name",
		Tags:        []string{"Interests"},
	}, s.handleListInterests)

	huma.Register(s.api, huma.Operation{
		OperationID: "populateInterests",
		Method:      http.MethodPost,
		Path:        "/interests/populate",
		Summary:     "Populate interests",
		Description: "Inserts title-cased interest names, skipping ones that already exist",
		Tags:        []string{"Interests"},
	}, s.handlePopulateInterests)
}

// InterestResponse contains interest data in API responses.
type InterestResponse struct {
	ID   string `json:"id" doc:"Interest ID"`
	Name string `json:"name" doc:"Title-cased name"`
}

// ListInterestsOutput wraps the interest list for Huma.
type ListInterestsOutput struct {
	Body []InterestResponse
}

// PopulateInterestsRequest is the request body for populating interests.
type PopulateInterestsRequest struct {
	Names []string `json:"names" minItems:"1" maxItems:"500" doc:"Interest names"`
}

// PopulateInterestsInput wraps the populate request for Huma.
type PopulateInterestsInput struct {
	Body PopulateInterestsRequest
}

// PopulateInterestsResponse reports the populate outcome.
type PopulateInterestsResponse struct {
	Inserted  int      `json:"inserted" doc:"Number of names that were new"`
	Interests []string `json:"interests" doc:"Normalized names from the request"`
}

// PopulateInterestsOutput wraps the populate response for Huma.
type PopulateInterestsOutput struct {
	Body PopulateInterestsResponse
}

func (s *Server) handleListInterests(ctx context.Context, _ *struct{}) (*ListInterestsOutput, error) {
	interests, err := s.services.Interest.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]InterestResponse, len(interests))
	for i, in := range interests {
		resp[i] = InterestResponse{ID: in.ID, Name: in.Name}
	}
	return &ListInterestsOutput{Body: resp}, nil
}

func (s *Server) handlePopulateInterests(ctx context.Context, input *PopulateInterestsInput) (*PopulateInterestsOutput, error) {
	inserted, names, err := s.services.Interest.Populate(ctx, input.Body.Names)
	if err != nil {
		return nil, err
	}
	return &PopulateInterestsOutput{
		Body: PopulateInterestsResponse{Inserted: inserted, Interests: names},
	}, nil
}
