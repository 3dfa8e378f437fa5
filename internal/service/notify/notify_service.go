package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/logging"
	"github.com/Domenick1991/carpool/internal/metrics"
	"github.com/Domenick1991/carpool/internal/repository"
	"github.com/Domenick1991/carpool/internal/retry"
	"github.com/google/uuid"
)

type NotificationUseCase interface {
	Handle(ctx context.Context, event domain.RideEvent) error
	ListForUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
}

// Deliverer pushes a stored notification to its recipient.
type Deliverer interface {
	Deliver(ctx context.Context, n domain.Notification) error
}

const (
	ChannelRealtime = "realtime"
	ChannelDeferred = "deferred"
)

// Fallback tries the real-time channel first and hands the notification to
// the deferred one when that fails, typically because the recipient has no
// open session.
type Fallback struct {
	Realtime Deliverer
	Deferred Deliverer
}

func (f Fallback) Deliver(ctx context.Context, n domain.Notification) error {
	var err error
	if f.Realtime != nil {
		if err = f.Realtime.Deliver(ctx, n); err == nil {
			metrics.NotificationsDelivered.WithLabelValues(ChannelRealtime).Inc()
			return nil
		}
	}
	if f.Deferred == nil {
		return err
	}
	if err := f.Deferred.Deliver(ctx, n); err != nil {
		return err
	}
	metrics.NotificationsDelivered.WithLabelValues(ChannelDeferred).Inc()
	return nil
}

type NotificationService struct {
	store     repository.NotificationRepository
	deliverer Deliverer
	policy    retry.Policy
	logger    *slog.Logger
}

type NotificationServiceOption func(*NotificationService)

// WithRetryPolicy sets how often a storage outage is retried before an event
// is given back to the caller.
func WithRetryPolicy(p retry.Policy) NotificationServiceOption {
	return func(s *NotificationService) {
		s.policy = p
	}
}

func NewNotificationService(store repository.NotificationRepository, deliverer Deliverer, logger *slog.Logger, opts ...NotificationServiceOption) *NotificationService {
	s := &NotificationService{
		store:     store,
		deliverer: deliverer,
		policy:    retry.DefaultPolicy(),
		logger:    logging.OrDefault(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish lets the service stand in for the event bus when both run in one process.
func (s *NotificationService) Publish(ctx context.Context, event domain.RideEvent) error {
	return s.Handle(ctx, event)
}

// Handle stores one unread notification for the event's recipient and
// delivers it. A failed delivery is logged; the notification stays stored.
func (s *NotificationService) Handle(ctx context.Context, event domain.RideEvent) error {
	recipient := event.Recipient()
	if recipient == "" {
		s.logger.Warn("ride event without recipient", "kind", event.Kind, "request_id", event.RequestID)
		return nil
	}

	n := &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    recipient,
		RideID:    event.RideID,
		RequestID: event.RequestID,
		Type:      notificationType(event),
		Message:   message(event),
		Status:    domain.NotificationUnread,
	}
	err := retry.Do(ctx, s.policy, domain.IsStorageUnavailable, func(ctx context.Context) error {
		return s.store.Create(ctx, n)
	})
	if err != nil {
		s.logger.Error("failed to store notification",
			"user_id", n.UserID, "request_id", n.RequestID, "error", err)
		return err
	}

	if s.deliverer != nil {
		if err := s.deliverer.Deliver(ctx, *n); err != nil {
			s.logger.Warn("failed to deliver notification",
				"notification_id", n.ID, "user_id", n.UserID, "error", err)
		}
	}
	return nil
}

func (s *NotificationService) ListForUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	return s.store.ListByUser(ctx, userID, limit)
}

func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.store.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, domain.Forbidden("notification belongs to another user")
	}
	if n.Status == domain.NotificationRead {
		return n, nil
	}
	if err := s.store.MarkRead(ctx, notificationID); err != nil {
		return nil, err
	}
	n.Status = domain.NotificationRead
	return n, nil
}

func notificationType(e domain.RideEvent) string {
	if e.Kind == domain.EventRideRequested {
		return string(domain.EventRideRequested)
	}
	return string(e.Type)
}

func message(e domain.RideEvent) string {
	switch {
	case e.Kind == domain.EventRideRequested:
		return fmt.Sprintf("You have a new ride request from %s for %d seat(s)", e.RiderID, e.Seats)
	case e.Type == domain.UpdateAccept:
		return fmt.Sprintf("Your request for %d seat(s) was accepted", e.Seats)
	case e.Type == domain.UpdateReject:
		return "Your ride request was declined"
	case e.Type == domain.UpdateCancel && e.ActorID == e.RiderID:
		return fmt.Sprintf("%s canceled their request for %d seat(s)", e.RiderID, e.Seats)
	case e.Type == domain.UpdateCancel:
		return "Your ride request was canceled by the driver"
	default:
		return fmt.Sprintf("You have a new ride update from %s", e.ActorID)
	}
}

var _ NotificationUseCase = (*NotificationService)(nil)
