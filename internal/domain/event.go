package domain

import "time"

type EventKind string

const (
	EventRideRequested EventKind = "ride_requested"
	EventRideUpdated   EventKind = "ride_updated"
)

type UpdateType string

const (
	UpdateAccept UpdateType = "accept"
	UpdateReject UpdateType = "reject"
	UpdateCancel UpdateType = "cancel"
)

// RideEvent is emitted once per booking transition.
type RideEvent struct {
	Kind       EventKind  `json:"kind"`
	Type       UpdateType `json:"type,omitempty"`
	RideID     string     `json:"ride_id"`
	RequestID  string     `json:"request_id"`
	RiderID    string     `json:"rider_id"`
	DriverID   string     `json:"driver_id"`
	ActorID    string     `json:"actor_id"`
	Seats      int        `json:"seats"`
	OccurredAt time.Time  `json:"occurred_at"`
}

func NewRideEvent(kind EventKind, typ UpdateType, req *BookingRequest, actorID string) RideEvent {
	return RideEvent{
		Kind:       kind,
		Type:       typ,
		RideID:     req.RideID,
		RequestID:  req.ID,
		RiderID:    req.RiderID,
		DriverID:   req.DriverID,
		ActorID:    actorID,
		Seats:      req.SeatsRequested,
		OccurredAt: time.Now().UTC(),
	}
}

// Recipient is the party that did not cause the event. A new request goes to
// the driver; updates go to the rider unless the rider acted.
func (e RideEvent) Recipient() string {
	if e.Kind == EventRideRequested {
		return e.DriverID
	}
	if e.ActorID != "" && e.ActorID == e.RiderID {
		return e.DriverID
	}
	return e.RiderID
}
