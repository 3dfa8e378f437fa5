package domain

import "time"

type RideStatus string

const (
	RideStatusScheduled RideStatus = "scheduled"
	RideStatusActive    RideStatus = "active"
	RideStatusCompleted RideStatus = "completed"
	RideStatusCanceled  RideStatus = "canceled"
)

// Bookable reports whether riders may still request seats on a ride in this status.
func (s RideStatus) Bookable() bool {
	return s == RideStatusScheduled || s == RideStatusActive
}

func (s RideStatus) Valid() bool {
	switch s {
	case RideStatusScheduled, RideStatusActive, RideStatusCompleted, RideStatusCanceled:
		return true
	}
	return false
}

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

type Amenities struct {
	PetFriendly      bool `json:"pet_friendly"`
	TrunkSpace       bool `json:"trunk_space"`
	AirConditioning  bool `json:"air_conditioning"`
	WheelchairAccess bool `json:"wheelchair_access"`
}

// RideDetails holds the fields a driver may edit after publication.
// Seat counts, status and the corridor are deliberately absent.
type RideDetails struct {
	OriginLabel      string `json:"origin_label"`
	DestinationLabel string `json:"destination_label"`
	Note             string `json:"note"`
	PriceCents       int64  `json:"price_cents"`
	Amenities        `json:"amenities"`
}

type Ride struct {
	ID              string     `json:"id"`
	DriverID        string     `json:"driver_id"`
	CarID           string     `json:"car_id,omitempty"`
	Origin          Point      `json:"origin"`
	Destination     Point      `json:"destination"`
	DepartureTime   time.Time  `json:"departure_time"`
	TotalSeats      int        `json:"total_seats"`
	AvailableSeats  int        `json:"available_seats"`
	Status          RideStatus `json:"status"`
	Corridor        []string   `json:"corridor,omitempty"`
	DistanceKm      float64    `json:"distance_km"`
	DurationMinutes float64    `json:"duration_minutes"`
	RideDetails
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SeatFraction is the share of seats still free, 0 for a ride without seats.
func (r Ride) SeatFraction() float64 {
	if r.TotalSeats <= 0 {
		return 0
	}
	return float64(r.AvailableSeats) / float64(r.TotalSeats)
}

// Route is what the routing provider returns for a pair of coordinates.
type Route struct {
	Points          []Point `json:"points"`
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
}

func (r Route) DistanceKm() float64 { return r.DistanceMeters / 1000 }

func (r Route) DurationMinutes() float64 { return r.DurationSeconds / 60 }
