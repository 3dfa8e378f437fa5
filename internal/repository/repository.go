package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool the repositories use.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RideFilter narrows a candidate search. Amenity flags only constrain the
// result when true.
type RideFilter struct {
	DepartureFrom    time.Time
	DepartureTo      time.Time
	Statuses         []domain.RideStatus
	MinSeats         int
	PetFriendly      bool
	TrunkSpace       bool
	WheelchairAccess bool
}

func (f RideFilter) Matches(r domain.Ride) bool {
	if r.DepartureTime.Before(f.DepartureFrom) || r.DepartureTime.After(f.DepartureTo) {
		return false
	}
	if r.AvailableSeats < f.MinSeats {
		return false
	}
	if f.PetFriendly && !r.PetFriendly {
		return false
	}
	if f.TrunkSpace && !r.TrunkSpace {
		return false
	}
	if f.WheelchairAccess && !r.WheelchairAccess {
		return false
	}
	for _, s := range f.Statuses {
		if s == r.Status {
			return true
		}
	}
	return false
}

type RideRepository interface {
	Create(ctx context.Context, ride *domain.Ride) error
	GetByID(ctx context.Context, id string) (*domain.Ride, error)
	ListByDriver(ctx context.Context, driverID string) ([]domain.Ride, error)
	Search(ctx context.Context, filter RideFilter) ([]domain.Ride, error)
	UpdateDetails(ctx context.Context, id string, details domain.RideDetails) (*domain.Ride, error)
	// DeleteIdle removes the ride in one step, only if driverID owns it and
	// none of its requests is pending or accepted. A missing ride is
	// ErrRideNotFound; a refused delete returns false.
	DeleteIdle(ctx context.Context, id, driverID string) (bool, error)
	// ReserveSeats decrements available seats only if enough remain and
	// returns the new count.
	ReserveSeats(ctx context.Context, id string, seats int) (int, error)
	// ReleaseSeats increments available seats, never past total seats.
	ReleaseSeats(ctx context.Context, id string, seats int) (int, error)
}

type BookingRepository interface {
	Create(ctx context.Context, b *domain.BookingRequest) error
	GetByID(ctx context.Context, id string) (*domain.BookingRequest, error)
	ListByRide(ctx context.Context, rideID string) ([]domain.BookingRequest, error)
	ListByDriver(ctx context.Context, driverID string) ([]domain.BookingRequest, error)
	ListByRider(ctx context.Context, riderID string) ([]domain.BookingRequest, error)
	// UpdateStatus moves the request to `to` only if it is still in `from`.
	UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) (bool, error)
	// Delete removes the request only if its status is one of statuses.
	Delete(ctx context.Context, id string, statuses []domain.BookingStatus) (bool, error)
	CountLive(ctx context.Context, rideID string) (int, error)
}

type CarRepository interface {
	Create(ctx context.Context, car *domain.Car) error
	GetByID(ctx context.Context, id string) (*domain.Car, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Car, error)
	// Update writes model and plate only if ownerID still owns the car.
	Update(ctx context.Context, car *domain.Car) error
	// Delete removes the car only if ownerID owns it; false otherwise.
	Delete(ctx context.Context, id, ownerID string) (bool, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// translate maps driver errors onto the domain taxonomy. Connection-level
// failures become storage_unavailable so callers can retry them.
func translate(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if transientCode(pgErr.Code) {
			return domain.StorageUnavailable(err)
		}
		return fmt.Errorf("postgres: %w", err)
	}
	return domain.StorageUnavailable(err)
}

func foreignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func uniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func transientCode(code string) bool {
	switch code {
	case "40001", "40P01", "53300", "57P01", "57P02", "57P03":
		return true
	}
	return strings.HasPrefix(code, "08")
}

func statusStrings[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}
