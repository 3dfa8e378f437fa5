package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/service/rides"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRideHandler_publish(t *testing.T) {
	mockService := &MockRideUseCase{}
	handler := NewRideHandler(mockService)

	departure := time.Date(2026, 11, 2, 7, 30, 0, 0, time.UTC)
	body := map[string]any{
		"origin":         map[string]float64{"lat": 40.7128, "lng": -74.0060},
		"destination":    map[string]float64{"lat": 40.7357, "lng": -74.1724},
		"departure_time": departure.Format(time.RFC3339),
		"total_seats":    3,
		"origin_label":   "Manhattan",
		"amenities":      map[string]bool{"pet_friendly": true},
	}
	c, w := newTestContext("POST", "/api/v1/rides", body, "driver-1")

	mockService.On("Publish", c.Request.Context(), "driver-1", mock.MatchedBy(func(in rides.PublishInput) bool {
		return in.TotalSeats == 3 && in.DepartureTime.Equal(departure) && in.OriginLabel == "Manhattan" && in.Amenities.PetFriendly
	})).Return(&domain.Ride{ID: "ride-1", DriverID: "driver-1", TotalSeats: 3, AvailableSeats: 3, Status: domain.RideStatusScheduled}, nil)

	handler.publish(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response domain.Ride
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ride-1", response.ID)
	assert.Equal(t, 3, response.AvailableSeats)
	mockService.AssertExpectations(t)
}

func TestRideHandler_publish_routeUnavailable(t *testing.T) {
	mockService := &MockRideUseCase{}
	handler := NewRideHandler(mockService)
	c, w := newTestContext("POST", "/api/v1/rides", map[string]any{"total_seats": 2}, "driver-1")
	mockService.On("Publish", c.Request.Context(), "driver-1", mock.Anything).Return(nil, domain.ErrRouteUnavailable)

	handler.publish(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "route_unavailable", decodeError(t, w).Kind)
}

func TestRideHandler_update(t *testing.T) {
	mockService := &MockRideUseCase{}
	handler := NewRideHandler(mockService)
	c, w := newTestContext("PATCH", "/api/v1/rides/ride-1", map[string]any{"note": "quiet ride", "available_seats": 10}, "driver-1")
	c.Params = gin.Params{{Key: "id", Value: "ride-1"}}

	mockService.On("UpdateDetails", c.Request.Context(), "ride-1", "driver-1", mock.MatchedBy(func(p rides.DetailsPatch) bool {
		return p.Note != nil && *p.Note == "quiet ride" && p.PetFriendly == nil
	})).Return(&domain.Ride{ID: "ride-1", AvailableSeats: 2}, nil)

	handler.update(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestRideHandler_get_notFound(t *testing.T) {
	mockService := &MockRideUseCase{}
	handler := NewRideHandler(mockService)
	c, w := newTestContext("GET", "/api/v1/rides/missing", nil, "rider-1")
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	mockService.On("Get", c.Request.Context(), "missing").Return(nil, domain.ErrRideNotFound)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ride not found", decodeError(t, w).Message)
}

func TestRideHandler_delete_liveRequests(t *testing.T) {
	mockService := &MockRideUseCase{}
	handler := NewRideHandler(mockService)
	c, w := newTestContext("DELETE", "/api/v1/rides/ride-1", nil, "driver-1")
	c.Params = gin.Params{{Key: "id", Value: "ride-1"}}
	mockService.On("Delete", c.Request.Context(), "ride-1", "driver-1").
		Return(domain.NewError(domain.KindInvalidTransition, "ride still has pending or accepted requests", nil))

	handler.delete(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}
