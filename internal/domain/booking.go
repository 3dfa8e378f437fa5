package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "pending"
	BookingStatusAccepted BookingStatus = "accepted"
	BookingStatusRejected BookingStatus = "rejected"
	BookingStatusCanceled BookingStatus = "canceled"
)

// AllowedTransitions is the booking request lifecycle. Statuses without an
// entry are terminal.
var AllowedTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:  {BookingStatusAccepted, BookingStatusRejected, BookingStatusCanceled},
	BookingStatusAccepted: {BookingStatusCanceled},
}

func CanTransition(from, to BookingStatus) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return s == BookingStatusRejected || s == BookingStatusCanceled
}

// TerminalStatuses lists the statuses a request may be deleted in.
func TerminalStatuses() []BookingStatus {
	return []BookingStatus{BookingStatusRejected, BookingStatusCanceled}
}

type BookingRequest struct {
	ID             string        `json:"id"`
	RideID         string        `json:"ride_id"`
	RiderID        string        `json:"rider_id"`
	DriverID       string        `json:"driver_id"`
	SeatsRequested int           `json:"seats_requested"`
	Notes          string        `json:"notes,omitempty"`
	Status         BookingStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Party reports whether userID is the rider or the driver of the request.
func (b BookingRequest) Party(userID string) bool {
	return userID != "" && (userID == b.RiderID || userID == b.DriverID)
}
