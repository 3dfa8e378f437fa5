package repository

import (
	"context"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/jackc/pgx/v5"
)

var errDuplicatePlate = domain.NewError(domain.KindConflict, "a car with this license number is already registered", nil)

const carColumns = `id, owner_id, car_model, license_number, created_at, updated_at`

type PGCarRepository struct {
	db Querier
}

func NewCarRepository(db Querier) CarRepository {
	return &PGCarRepository{db: db}
}

func scanCar(row pgx.Row) (*domain.Car, error) {
	var c domain.Car
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Model, &c.LicenseNumber, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PGCarRepository) Create(ctx context.Context, car *domain.Car) error {
	err := r.db.QueryRow(ctx, `INSERT INTO cars (id, owner_id, car_model, license_number)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		car.ID, car.OwnerID, car.Model, car.LicenseNumber).Scan(&car.CreatedAt, &car.UpdatedAt)
	if uniqueViolation(err) {
		return errDuplicatePlate
	}
	return translate(err, domain.ErrCarNotFound)
}

func (r *PGCarRepository) GetByID(ctx context.Context, id string) (*domain.Car, error) {
	c, err := scanCar(r.db.QueryRow(ctx, `SELECT `+carColumns+` FROM cars WHERE id=$1`, id))
	if err != nil {
		return nil, translate(err, domain.ErrCarNotFound)
	}
	return c, nil
}

func (r *PGCarRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Car, error) {
	rows, err := r.db.Query(ctx, `SELECT `+carColumns+` FROM cars WHERE owner_id=$1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, translate(err, domain.ErrCarNotFound)
	}
	defer rows.Close()

	out := make([]domain.Car, 0)
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, translate(err, domain.ErrCarNotFound)
		}
		out = append(out, *c)
	}
	return out, translate(rows.Err(), domain.ErrCarNotFound)
}

func (r *PGCarRepository) Update(ctx context.Context, car *domain.Car) error {
	err := r.db.QueryRow(ctx, `UPDATE cars SET car_model=$3, license_number=$4, updated_at=now()
		WHERE id=$1 AND owner_id=$2
		RETURNING created_at, updated_at`,
		car.ID, car.OwnerID, car.Model, car.LicenseNumber).Scan(&car.CreatedAt, &car.UpdatedAt)
	if uniqueViolation(err) {
		return errDuplicatePlate
	}
	return translate(err, domain.ErrCarNotFound)
}

func (r *PGCarRepository) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM cars WHERE id=$1 AND owner_id=$2`, id, ownerID)
	if err != nil {
		return false, translate(err, domain.ErrCarNotFound)
	}
	return tag.RowsAffected() == 1, nil
}

var _ CarRepository = (*PGCarRepository)(nil)
