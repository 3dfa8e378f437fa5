package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/jackc/pgx/v5"
)

const rideColumns = `id, driver_id, COALESCE(car_id, ''), origin_lat, origin_lng, origin_label, destination_lat, destination_lng, destination_label,
	departure_time, total_seats, available_seats, status, corridor, distance_km, duration_minutes, note, price_cents,
	pet_friendly, trunk_space, air_conditioning, wheelchair_access, created_at, updated_at`

type PGRideRepository struct {
	db Querier
}

func NewRideRepository(db Querier) RideRepository {
	return &PGRideRepository{db: db}
}

func scanRide(row pgx.Row) (*domain.Ride, error) {
	var r domain.Ride
	var status string
	err := row.Scan(&r.ID, &r.DriverID, &r.CarID, &r.Origin.Lat, &r.Origin.Lng, &r.OriginLabel, &r.Destination.Lat, &r.Destination.Lng, &r.DestinationLabel,
		&r.DepartureTime, &r.TotalSeats, &r.AvailableSeats, &status, &r.Corridor, &r.DistanceKm, &r.DurationMinutes, &r.Note, &r.PriceCents,
		&r.PetFriendly, &r.TrunkSpace, &r.AirConditioning, &r.WheelchairAccess, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.Status = domain.RideStatus(status)
	return &r, nil
}

func collectRides(rows pgx.Rows) ([]domain.Ride, error) {
	defer rows.Close()
	rides := make([]domain.Ride, 0)
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, translate(err, domain.ErrRideNotFound)
		}
		rides = append(rides, *r)
	}
	return rides, translate(rows.Err(), domain.ErrRideNotFound)
}

func (r *PGRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	err := r.db.QueryRow(ctx, `INSERT INTO rides (id, driver_id, origin_lat, origin_lng, origin_label, destination_lat, destination_lng, destination_label,
		departure_time, total_seats, available_seats, status, corridor, distance_km, duration_minutes, note, price_cents,
		pet_friendly, trunk_space, air_conditioning, wheelchair_access, car_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, NULLIF($22, ''))
		RETURNING created_at, updated_at`,
		ride.ID, ride.DriverID, ride.Origin.Lat, ride.Origin.Lng, ride.OriginLabel, ride.Destination.Lat, ride.Destination.Lng, ride.DestinationLabel,
		ride.DepartureTime, ride.TotalSeats, ride.AvailableSeats, string(ride.Status), ride.Corridor, ride.DistanceKm, ride.DurationMinutes, ride.Note, ride.PriceCents,
		ride.PetFriendly, ride.TrunkSpace, ride.AirConditioning, ride.WheelchairAccess, ride.CarID,
	).Scan(&ride.CreatedAt, &ride.UpdatedAt)
	return translate(err, domain.ErrRideNotFound)
}

func (r *PGRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	ride, err := scanRide(r.db.QueryRow(ctx, `SELECT `+rideColumns+` FROM rides WHERE id=$1`, id))
	if err != nil {
		return nil, translate(err, domain.ErrRideNotFound)
	}
	return ride, nil
}

func (r *PGRideRepository) ListByDriver(ctx context.Context, driverID string) ([]domain.Ride, error) {
	rows, err := r.db.Query(ctx, `SELECT `+rideColumns+` FROM rides WHERE driver_id=$1 ORDER BY departure_time`, driverID)
	if err != nil {
		return nil, translate(err, domain.ErrRideNotFound)
	}
	return collectRides(rows)
}

func (r *PGRideRepository) Search(ctx context.Context, f RideFilter) ([]domain.Ride, error) {
	rows, err := r.db.Query(ctx, `SELECT `+rideColumns+` FROM rides
		WHERE departure_time BETWEEN $1 AND $2
		  AND status = ANY($3)
		  AND available_seats >= $4
		  AND (NOT $5 OR pet_friendly)
		  AND (NOT $6 OR trunk_space)
		  AND (NOT $7 OR wheelchair_access)
		ORDER BY departure_time`,
		f.DepartureFrom, f.DepartureTo, statusStrings(f.Statuses), f.MinSeats, f.PetFriendly, f.TrunkSpace, f.WheelchairAccess)
	if err != nil {
		return nil, translate(err, domain.ErrRideNotFound)
	}
	return collectRides(rows)
}

func (r *PGRideRepository) UpdateDetails(ctx context.Context, id string, d domain.RideDetails) (*domain.Ride, error) {
	ride, err := scanRide(r.db.QueryRow(ctx, `UPDATE rides
		SET origin_label=$2, destination_label=$3, note=$4, price_cents=$5,
		    pet_friendly=$6, trunk_space=$7, air_conditioning=$8, wheelchair_access=$9, updated_at=now()
		WHERE id=$1
		RETURNING `+rideColumns,
		id, d.OriginLabel, d.DestinationLabel, d.Note, d.PriceCents,
		d.PetFriendly, d.TrunkSpace, d.AirConditioning, d.WheelchairAccess))
	if err != nil {
		return nil, translate(err, domain.ErrRideNotFound)
	}
	return ride, nil
}

func (r *PGRideRepository) DeleteIdle(ctx context.Context, id, driverID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM rides
		WHERE id=$1 AND driver_id=$2
		  AND NOT EXISTS (SELECT 1 FROM booking_requests WHERE ride_id=$1 AND status IN ('pending', 'accepted'))`,
		id, driverID)
	if err != nil {
		return false, translate(err, domain.ErrRideNotFound)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rides WHERE id=$1)`, id).Scan(&exists); err != nil {
		return false, translate(err, domain.ErrRideNotFound)
	}
	if !exists {
		return false, domain.ErrRideNotFound
	}
	return false, nil
}

func (r *PGRideRepository) ReserveSeats(ctx context.Context, id string, seats int) (int, error) {
	var left int
	err := r.db.QueryRow(ctx, `UPDATE rides SET available_seats = available_seats - $2, updated_at = now()
		WHERE id=$1 AND available_seats >= $2
		RETURNING available_seats`, id, seats).Scan(&left)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, r.missOrShort(ctx, id)
	}
	if err != nil {
		return 0, translate(err, domain.ErrRideNotFound)
	}
	return left, nil
}

func (r *PGRideRepository) ReleaseSeats(ctx context.Context, id string, seats int) (int, error) {
	var left int
	err := r.db.QueryRow(ctx, `UPDATE rides SET available_seats = LEAST(total_seats, available_seats + $2), updated_at = now()
		WHERE id=$1
		RETURNING available_seats`, id, seats).Scan(&left)
	if err != nil {
		return 0, translate(err, domain.ErrRideNotFound)
	}
	return left, nil
}

// missOrShort tells a missing ride apart from one without enough seats after
// a conditional update matched no row.
func (r *PGRideRepository) missOrShort(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rides WHERE id=$1)`, id).Scan(&exists); err != nil {
		return translate(err, domain.ErrRideNotFound)
	}
	if !exists {
		return domain.ErrRideNotFound
	}
	return domain.ErrInsufficientSeats
}

var _ RideRepository = (*PGRideRepository)(nil)
