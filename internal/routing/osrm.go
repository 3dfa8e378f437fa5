package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/carpool/internal/domain"
)

// OSRMClient performs route lookups against an OSRM HTTP server.
type OSRMClient struct {
	Endpoint string
	Client   *http.Client
}

func NewOSRMClient(endpoint string, timeout time.Duration) *OSRMClient {
	return &OSRMClient{
		Endpoint: strings.TrimRight(endpoint, "/"),
		Client:   &http.Client{Timeout: timeout},
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// Route asks OSRM for the full geometry as GeoJSON ([lon, lat] pairs).
func (o *OSRMClient) Route(ctx context.Context, from, to domain.Point) (*domain.Route, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%.6f,%.6f;%.6f,%.6f?overview=full&geometries=geojson",
		o.Endpoint, from.Lng, from.Lat, to.Lng, to.Lat)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("osrm request: %w", err)
	}
	defer resp.Body.Close()

	var out osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("osrm decode (status %d): %w", resp.StatusCode, err)
	}
	if out.Code == "NoRoute" || (out.Code == "Ok" && len(out.Routes) == 0) {
		return nil, ErrNoRoute
	}
	if out.Code != "Ok" {
		return nil, fmt.Errorf("osrm: %s", out.Code)
	}

	r := out.Routes[0]
	points := make([]domain.Point, 0, len(r.Geometry.Coordinates))
	for _, c := range r.Geometry.Coordinates {
		if len(c) < 2 {
			continue
		}
		points = append(points, domain.Point{Lat: c[1], Lng: c[0]})
	}
	if len(points) == 0 {
		return nil, ErrNoRoute
	}
	return &domain.Route{Points: points, DistanceMeters: r.Distance, DurationSeconds: r.Duration}, nil
}

var _ Router = (*OSRMClient)(nil)
