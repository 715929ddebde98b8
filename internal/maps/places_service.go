package maps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"guava/internal/types"
)

// Suggestion represents a simplified autocomplete prediction.
type Suggestion struct {
	PlaceID       string `json:"placeId"`
	Description   string `json:"description"`
	MainText      string `json:"mainText"`
	SecondaryText string `json:"secondaryText"`
}

// PlacesService handles interactions with Google Places API.
type PlacesService struct {
	client  *maps.Client
	country string
}

// NewPlacesService creates a new PlacesService with the given API Key.
// country restricts predictions (ISO 3166-1 alpha-2); empty means worldwide.
func NewPlacesService(apiKey, country string, opts ...maps.ClientOption) (*PlacesService, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client, country: strings.ToLower(country)}, nil
}

// Autocomplete returns place predictions for a partially typed query.
func (s *PlacesService) Autocomplete(ctx context.Context, query string) ([]Suggestion, error) {
	r := &maps.PlaceAutocompleteRequest{Input: query}
	if s.country != "" {
		r.Components = map[maps.Component][]string{maps.ComponentCountry: {s.country}}
	}

	resp, err := s.client.PlaceAutocomplete(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	results := make([]Suggestion, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		results = append(results, Suggestion{
			PlaceID:       p.PlaceID,
			Description:   p.Description,
			MainText:      p.StructuredFormatting.MainText,
			SecondaryText: p.StructuredFormatting.SecondaryText,
		})
	}
	return results, nil
}

// Resolve looks up the coordinates of a selected prediction.
func (s *PlacesService) Resolve(ctx context.Context, placeID string) (types.Point, error) {
	resp, err := s.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID: placeID,
		Fields:  []maps.PlaceDetailsFieldMask{maps.PlaceDetailsFieldMaskGeometry},
	})
	if err != nil {
		return types.Point{}, fmt.Errorf("place details error: %w", err)
	}
	loc := resp.Geometry.Location
	return types.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}
