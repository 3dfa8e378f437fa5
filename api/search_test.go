package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/service/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSearchHandler_search(t *testing.T) {
	mockService := &MockSearchUseCase{}
	handler := NewSearchHandler(mockService)

	departure := time.Date(2026, 11, 2, 8, 0, 0, 0, time.UTC)
	body := map[string]any{
		"origin":         map[string]float64{"lat": 40.7128, "lng": -74.0060},
		"destination":    map[string]float64{"lat": 40.7357, "lng": -74.1724},
		"departure_time": departure.Format(time.RFC3339),
		"seats":          2,
		"trunk_space":    true,
	}
	c, w := newTestContext("POST", "/api/v1/rides/search?debug=true", body, "rider-1")

	result := &search.Result{
		Candidates: []search.Candidate{{Ride: domain.Ride{ID: "ride-1"}, Score: 0.82, Similarity: 0.9, TimeDeltaHours: 0.5}},
		RouteInfo:  search.RouteInfo{DistanceKm: 18.2, DurationMinutes: 26},
	}
	mockService.On("Search", c.Request.Context(), mock.MatchedBy(func(r search.Request) bool {
		return r.Seats == 2 && r.TrunkSpace && !r.PetFriendly && r.Debug && r.DepartureTime.Equal(departure)
	})).Return(result, nil)

	handler.search(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Candidates []struct {
			Ride  domain.Ride `json:"ride"`
			Score float64     `json:"score"`
		} `json:"candidates"`
		RouteInfo struct {
			DistanceKm      float64 `json:"distance_km"`
			DurationMinutes float64 `json:"duration_minutes"`
		} `json:"route_info"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Candidates, 1)
	assert.Equal(t, 18.2, response.RouteInfo.DistanceKm)
	mockService.AssertExpectations(t)
}

func TestSearchHandler_search_routeUnavailable(t *testing.T) {
	mockService := &MockSearchUseCase{}
	handler := NewSearchHandler(mockService)
	c, w := newTestContext("POST", "/api/v1/rides/search", map[string]any{"seats": 1}, "rider-1")
	mockService.On("Search", c.Request.Context(), mock.Anything).Return(nil, domain.ErrRouteUnavailable)

	handler.search(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "route_unavailable", decodeError(t, w).Kind)
}

func TestSearchHandler_search_badJSON(t *testing.T) {
	handler := NewSearchHandler(&MockSearchUseCase{})
	c, w := newTestContext("POST", "/api/v1/rides/search", "not an object", "rider-1")

	handler.search(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
