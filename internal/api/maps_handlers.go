package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerMapsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "mapsAutocomplete",
		Method:      http.MethodGet,
		Path:        "/maps/autocomplete",
		Summary:     "Place autocomplete",
		Description: "Proxies Google Places autocomplete",
		Tags:        []string{"Maps"},
	}, s.handleAutocomplete)

	huma.Register(s.api, huma.Operation{
		OperationID: "mapsPlaceDetails",
		Method:      http.MethodGet,
		Path:        "/maps/place-details",
		Summary:     "Place details",
		Description: "Proxies Google Places details",
		Tags:        []string{"Maps"},
	}, s.handlePlaceDetails)

	huma.Register(s.api, huma.Operation{
		OperationID: "mapsNearbyLakes",
		Method:      http.MethodGet,
		Path:        "/maps/nearby-lakes",
		Summary:     "Nearby lakes",
		Description: "Searches for lakes near a point; results are truncated to five",
		Tags:        []string{"Maps"},
	}, s.handleNearbyLakes)
}

// AutocompleteInput contains parameters for autocomplete.
type AutocompleteInput struct {
	Input string `query:"input" required:"true" minLength:"1" doc:"Partial address or place name"`
}

// PlaceDetailsInput contains parameters for place details.
type PlaceDetailsInput struct {
	PlaceID string `query:"place_id" required:"true" minLength:"1" doc:"Google place ID"`
}

// NearbyLakesInput contains parameters for the nearby lake search.
type NearbyLakesInput struct {
	Lat float64 `query:"lat" required:"true" minimum:"-90" maximum:"90" doc:"Latitude"`
	Lng float64 `query:"lng" required:"true" minimum:"-180" maximum:"180" doc:"Longitude"`
}

// MapsOutput passes the provider's JSON through unchanged.
type MapsOutput struct {
	Body map[string]any
}

func (s *Server) handleAutocomplete(ctx context.Context, input *AutocompleteInput) (*MapsOutput, error) {
	body, err := s.services.Places.Autocomplete(ctx, input.Input)
	if err != nil {
		return nil, err
	}
	return &MapsOutput{Body: body}, nil
}

func (s *Server) handlePlaceDetails(ctx context.Context, input *PlaceDetailsInput) (*MapsOutput, error) {
	body, err := s.services.Places.PlaceDetails(ctx, input.PlaceID)
	if err != nil {
		return nil, err
	}
	return &MapsOutput{Body: body}, nil
}

func (s *Server) handleNearbyLakes(ctx context.Context, input *NearbyLakesInput) (*MapsOutput, error) {
	body, err := s.services.Places.NearbyLakes(ctx, input.Lat, input.Lng)
	if err != nil {
		return nil, err
	}
	return &MapsOutput{Body: body}, nil
}
