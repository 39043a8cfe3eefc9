package maps

import (
	"context"
	"errors"
	"strings"

	"googlemaps.github.io/maps"
)

// Prediction is a simplified autocomplete suggestion.
type Prediction struct {
	PlaceID     string `json:"place_id"`
	Description string `json:"description"`
}

// PlacesService handles interactions with the Google Places Autocomplete API.
type PlacesService struct {
	client *maps.Client
	region string
}

func NewPlacesService(client *maps.Client, region string) *PlacesService {
	if region == "" {
		region = DefaultRegion
	}
	return &PlacesService{client: client, region: region}
}

// Autocomplete returns predictions for input restricted to the service's
// country. Blank input returns nothing without calling the API, and a
// ZERO_RESULTS answer is an empty list rather than an error.
func (s *PlacesService) Autocomplete(ctx context.Context, input string) ([]Prediction, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	resp, err := s.client.PlaceAutocomplete(ctx, &maps.PlaceAutocompleteRequest{
		Input: input,
		Components: map[maps.Component][]string{
			maps.ComponentCountry: {s.region},
		},
	})
	if err != nil {
		err = classify(err)
		if errors.Is(err, ErrNoResults) {
			return nil, nil
		}
		return nil, err
	}

	predictions := make([]Prediction, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		predictions = append(predictions, Prediction{
			PlaceID:     p.PlaceID,
			Description: p.Description,
		})
	}
	return predictions, nil
}
