package routing

import (
	"context"
	"fmt"

	"github.com/Domenick1991/carpool/internal/domain"
	"googlemaps.github.io/maps"
)

type directionsAPI interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// GoogleRouter resolves routes with the Google Maps Directions API.
type GoogleRouter struct {
	client directionsAPI
}

func NewGoogleRouter(apiKey string) (*GoogleRouter, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleRouter{client: client}, nil
}

func (g *GoogleRouter) Route(ctx context.Context, from, to domain.Point) (*domain.Route, error) {
	req := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%.6f,%.6f", from.Lat, from.Lng),
		Destination: fmt.Sprintf("%.6f,%.6f", to.Lat, to.Lng),
		Mode:        maps.TravelModeDriving,
	}
	routes, _, err := g.client.Directions(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, ErrNoRoute
	}

	path, err := routes[0].OverviewPolyline.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode overview polyline: %w", err)
	}
	if len(path) == 0 {
		return nil, ErrNoRoute
	}

	route := &domain.Route{Points: make([]domain.Point, len(path))}
	for i, ll := range path {
		route.Points[i] = domain.Point{Lat: ll.Lat, Lng: ll.Lng}
	}
	for _, leg := range routes[0].Legs {
		route.DistanceMeters += float64(leg.Distance.Meters)
		route.DurationSeconds += leg.Duration.Seconds()
	}
	return route, nil
}

var _ Router = (*GoogleRouter)(nil)
