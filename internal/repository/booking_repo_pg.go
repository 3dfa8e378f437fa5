package repository

import (
	"context"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/jackc/pgx/v5"
)

const bookingColumns = `id, ride_id, rider_id, driver_id, seats_requested, notes, status, created_at, updated_at`

type PGBookingRepository struct {
	db Querier
}

func NewBookingRepository(db Querier) BookingRepository {
	return &PGBookingRepository{db: db}
}

func scanBooking(row pgx.Row) (*domain.BookingRequest, error) {
	var b domain.BookingRequest
	var status string
	if err := row.Scan(&b.ID, &b.RideID, &b.RiderID, &b.DriverID, &b.SeatsRequested, &b.Notes, &status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatus(status)
	return &b, nil
}

func (r *PGBookingRepository) list(ctx context.Context, where string, arg any) ([]domain.BookingRequest, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM booking_requests WHERE `+where+` ORDER BY created_at DESC`, arg)
	if err != nil {
		return nil, translate(err, domain.ErrBookingNotFound)
	}
	defer rows.Close()

	out := make([]domain.BookingRequest, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, translate(err, domain.ErrBookingNotFound)
		}
		out = append(out, *b)
	}
	return out, translate(rows.Err(), domain.ErrBookingNotFound)
}

func (r *PGBookingRepository) Create(ctx context.Context, b *domain.BookingRequest) error {
	err := r.db.QueryRow(ctx, `INSERT INTO booking_requests (id, ride_id, rider_id, driver_id, seats_requested, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		b.ID, b.RideID, b.RiderID, b.DriverID, b.SeatsRequested, b.Notes, string(b.Status)).
		Scan(&b.CreatedAt, &b.UpdatedAt)
	if foreignKeyViolation(err) {
		return domain.ErrRideNotFound
	}
	return translate(err, domain.ErrRideNotFound)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.BookingRequest, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM booking_requests WHERE id=$1`, id))
	if err != nil {
		return nil, translate(err, domain.ErrBookingNotFound)
	}
	return b, nil
}

func (r *PGBookingRepository) ListByRide(ctx context.Context, rideID string) ([]domain.BookingRequest, error) {
	return r.list(ctx, "ride_id=$1", rideID)
}

func (r *PGBookingRepository) ListByDriver(ctx context.Context, driverID string) ([]domain.BookingRequest, error) {
	return r.list(ctx, "driver_id=$1", driverID)
}

func (r *PGBookingRepository) ListByRider(ctx context.Context, riderID string) ([]domain.BookingRequest, error) {
	return r.list(ctx, "rider_id=$1", riderID)
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE booking_requests SET status=$3, updated_at=now() WHERE id=$1 AND status=$2`,
		id, string(from), string(to))
	if err != nil {
		return false, translate(err, domain.ErrBookingNotFound)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PGBookingRepository) Delete(ctx context.Context, id string, statuses []domain.BookingStatus) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM booking_requests WHERE id=$1 AND status = ANY($2)`, id, statusStrings(statuses))
	if err != nil {
		return false, translate(err, domain.ErrBookingNotFound)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PGBookingRepository) CountLive(ctx context.Context, rideID string) (int, error) {
	var n int
	live := []string{string(domain.BookingStatusPending), string(domain.BookingStatusAccepted)}
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM booking_requests WHERE ride_id=$1 AND status = ANY($2)`, rideID, live).Scan(&n)
	return n, translate(err, domain.ErrRideNotFound)
}

var _ BookingRepository = (*PGBookingRepository)(nil)
