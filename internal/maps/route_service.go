package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"

	"googlemaps.github.io/maps"

	"guava/internal/types"
)

var (
	// ErrNoRoute means the provider answered but had no usable route (non-OK status or no legs).
	ErrNoRoute = errors.New("no route found")
	// ErrTransport means the provider could not be reached or did not answer in time.
	ErrTransport = errors.New("directions provider unavailable")
)

// Leg is the first leg of the first route between two points.
type Leg struct {
	DistanceMeters  int
	DurationSeconds int
}

// RouteService handles interactions with the Google Directions API.
type RouteService struct {
	client *maps.Client
	region string
}

// NewRouteService creates a new RouteService with the given API Key.
// Extra options (base URL, HTTP client) are passed through to the maps client.
func NewRouteService(apiKey, region string, opts ...maps.ClientOption) (*RouteService, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client, region: region}, nil
}

// Route returns the driving distance and duration from origin to destination.
// Errors wrap ErrNoRoute or ErrTransport so callers can tell them apart.
func (s *RouteService) Route(ctx context.Context, origin, destination types.Point) (Leg, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin.String(),
		Destination: destination.String(),
		Mode:        maps.TravelModeDriving,
		Region:      s.region,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return Leg{}, classify(err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return Leg{}, ErrNoRoute
	}

	leg := routes[0].Legs[0]
	return Leg{
		DistanceMeters:  leg.Distance.Meters,
		DurationSeconds: int(leg.Duration.Seconds()),
	}, nil
}

// classify maps a maps-client error onto the route-unavailable / transport split.
// The client reports non-OK statuses as plain errors. Anything network-shaped is transport,
// and so is a body that is not the provider's JSON (a proxy's 5xx page, a truncated read).
func classify(err error) error {
	var urlErr *url.Error
	var netErr net.Error
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled),
		errors.As(err, &urlErr), errors.As(err, &netErr),
		errors.As(err, &syntaxErr), errors.As(err, &typeErr),
		errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: %v", ErrTransport, err)
	default:
		return fmt.Errorf("%w: %v", ErrNoRoute, err)
	}
}
