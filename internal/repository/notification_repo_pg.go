package repository

import (
	"context"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/jackc/pgx/v5"
)

const notificationColumns = `id, user_id, ride_id, request_id, type, message, status, created_at`

type PGNotificationRepository struct {
	db Querier
}

func NewNotificationRepository(db Querier) NotificationRepository {
	return &PGNotificationRepository{db: db}
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	var status string
	if err := row.Scan(&n.ID, &n.UserID, &n.RideID, &n.RequestID, &n.Type, &n.Message, &status, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Status = domain.NotificationStatus(status)
	return &n, nil
}

func (r *PGNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	err := r.db.QueryRow(ctx, `INSERT INTO notifications (id, user_id, ride_id, request_id, type, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		n.ID, n.UserID, n.RideID, n.RequestID, n.Type, n.Message, string(n.Status)).Scan(&n.CreatedAt)
	return translate(err, domain.ErrNotificationNotFound)
}

func (r *PGNotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	n, err := scanNotification(r.db.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id=$1`, id))
	if err != nil {
		return nil, translate(err, domain.ErrNotificationNotFound)
	}
	return n, nil
}

func (r *PGNotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	rows, err := r.db.Query(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, translate(err, domain.ErrNotificationNotFound)
	}
	defer rows.Close()

	out := make([]domain.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, translate(err, domain.ErrNotificationNotFound)
		}
		out = append(out, *n)
	}
	return out, translate(rows.Err(), domain.ErrNotificationNotFound)
}

func (r *PGNotificationRepository) MarkRead(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET status=$2 WHERE id=$1`, id, string(domain.NotificationRead))
	if err != nil {
		return translate(err, domain.ErrNotificationNotFound)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

var _ NotificationRepository = (*PGNotificationRepository)(nil)
