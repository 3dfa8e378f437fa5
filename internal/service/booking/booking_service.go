package booking

import (
	"context"
	"log/slog"
	"time"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/logging"
	"github.com/Domenick1991/carpool/internal/metrics"
	"github.com/Domenick1991/carpool/internal/repository"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	Create(ctx context.Context, input CreateInput) (*domain.BookingRequest, error)
	Accept(ctx context.Context, requestID, actingUserID string) (*domain.BookingRequest, error)
	Reject(ctx context.Context, requestID, actingUserID string) (*domain.BookingRequest, error)
	Cancel(ctx context.Context, requestID, actingUserID string) (*domain.BookingRequest, error)
	Delete(ctx context.Context, requestID, actingUserID string) error
	Get(ctx context.Context, requestID, actingUserID string) (*domain.BookingRequest, error)
	ListByRide(ctx context.Context, rideID, actingUserID string) ([]domain.BookingRequest, error)
	ListByDriver(ctx context.Context, driverID string) ([]domain.BookingRequest, error)
	ListByRider(ctx context.Context, riderID string) ([]domain.BookingRequest, error)
}

type Ledger interface {
	Reserve(ctx context.Context, rideID string, seats int) (int, error)
	Release(ctx context.Context, rideID string, seats int) (int, error)
}

type RideReader interface {
	GetByID(ctx context.Context, id string) (*domain.Ride, error)
}

// EventPublisher hands ride events to the notification side, either a Kafka
// topic or the in-process dispatcher.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.RideEvent) error
}

type BookingService struct {
	bookings repository.BookingRepository
	rides    RideReader
	ledger   Ledger
	events   EventPublisher
	logger   *slog.Logger
	now      func() time.Time
}

type CreateInput struct {
	RideID  string `json:"ride_id"`
	RiderID string `json:"rider_id"`
	Seats   int    `json:"seats"`
	Notes   string `json:"notes"`
}

type BookingServiceOption func(*BookingService)

func WithEventPublisher(p EventPublisher) BookingServiceOption {
	return func(s *BookingService) {
		s.events = p
	}
}

func WithLogger(logger *slog.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.logger = logger
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	rides RideReader,
	ledger Ledger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings: bookings,
		rides:    rides,
		ledger:   ledger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	service.logger = logging.OrDefault(service.logger)
	return service
}

// cancelMaxRetries bounds how often Cancel re-reads a request that moved
// under it.
const cancelMaxRetries = 3

func (s *BookingService) Create(ctx context.Context, input CreateInput) (*domain.BookingRequest, error) {
	if input.RiderID == "" {
		return nil, domain.Validation("rider is required")
	}
	if input.RideID == "" {
		return nil, domain.Validation("ride_id is required")
	}
	if input.Seats <= 0 {
		return nil, domain.Validation("seats must be positive")
	}

	ride, err := s.rides.GetByID(ctx, input.RideID)
	if err != nil {
		return nil, err
	}
	if !ride.Status.Bookable() {
		return nil, domain.Validation("ride is %s and not open for booking", ride.Status)
	}
	if input.Seats > ride.TotalSeats {
		return nil, domain.Validation("ride has %d seats in total, %d requested", ride.TotalSeats, input.Seats)
	}
	if input.RiderID == ride.DriverID {
		return nil, domain.Validation("drivers cannot book their own ride")
	}

	req := &domain.BookingRequest{
		ID:             uuid.NewString(),
		RideID:         ride.ID,
		RiderID:        input.RiderID,
		DriverID:       ride.DriverID,
		SeatsRequested: input.Seats,
		Notes:          input.Notes,
		Status:         domain.BookingStatusPending,
	}
	if err := s.bookings.Create(ctx, req); err != nil {
		s.observe("create", err)
		return nil, err
	}
	s.observe("create", nil)
	s.emit(ctx, domain.EventRideRequested, "", req, input.RiderID)
	return req, nil
}

func (s *BookingService) Accept(ctx context.Context, requestID, actingUserID string) (*domain.BookingRequest, error) {
	req, err := s.accept(ctx, requestID, actingUserID)
	s.observe("accept", err)
	return req, err
}

func (s *BookingService) accept(ctx context.Context, requestID, actingUserID string) (*domain.BookingRequest, error) {
	req, err := s.bookings.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if actingUserID != req.DriverID {
		return nil, domain.Forbidden("only the driver can accept a request")
	}
	if req.Status == domain.BookingStatusAccepted {
		return req, nil
	}
	if !domain.CanTransition(req.Status, domain.BookingStatusAccepted) {
		return nil, domain.InvalidTransition(req.Status, domain.BookingStatusAccepted)
	}

	if _, err := s.ledger.Reserve(ctx, req.RideID, req.SeatsRequested); err != nil {
		if domain.IsInsufficientSeats(err) {
			// A replay of this same accept may be the one holding the seats.
			if current, gerr := s.bookings.GetByID(ctx, requestID); gerr == nil && current.Status == domain.BookingStatusAccepted {
				return current, nil
			}
		}
		return nil, err
	}

	ok, err := s.bookings.UpdateStatus(ctx, requestID, domain.BookingStatusPending, domain.BookingStatusAccepted)
	if err != nil {
		// The write may have landed before the error; only an accepted
		// request keeps the seats.
		current, gerr := s.bookings.GetByID(ctx, requestID)
		if gerr != nil {
			// Outcome unknown: keep the reservation rather than risk
			// releasing seats an accepted request holds.
			s.logger.Error("accept outcome unknown, seats kept reserved",
				"request_id", requestID, "ride_id", req.RideID, "seats", req.SeatsRequested,
				"error", err, "read_error", gerr)
			if domain.IsStorageUnavailable(err) {
				return nil, err
			}
			return nil, domain.StorageUnavailable(err)
		}
		if current.Status == domain.BookingStatusAccepted {
			s.emit(ctx, domain.EventRideUpdated, domain.UpdateAccept, current, actingUserID)
			return current, nil
		}
		s.releaseReserved(ctx, req)
		return nil, err
	}
	if !ok {
		s.releaseReserved(ctx, req)
		current, gerr := s.bookings.GetByID(ctx, requestID)
		if gerr != nil {
			return nil, gerr
		}
		if current.Status == domain.BookingStatusAccepted {
			return current, nil
		}
		return nil, domain.InvalidTransition(current.Status, domain.BookingStatusAccepted)
	}

	req.Status = domain.BookingStatusAccepted
	req.UpdatedAt = s.now().UTC()
	s.emit(ctx, domain.EventRideUpdated, domain.UpdateAccept, req, actingUserID)
	return req, nil
}

func (s *BookingService) Reject(ctx context.Context, requestID, actingUserID string) (*domain.BookingRequest, error) {
	req, err := s.reject(ctx, requestID, actingUserID)
	s.observe("reject", err)
	return req, err
}

func (s *BookingService) reject(ctx context.Context, requestID, actingUserID string) (*domain.BookingRequest, error) {
	req, err := s.bookings.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if actingUserID != req.DriverID {
		return nil, domain.Forbidden("only the driver can reject a request")
	}
	if req.Status == domain.BookingStatusRejected {
		return req, nil
	}
	if !domain.CanTransition(req.Status, domain.BookingStatusRejected) {
		return nil, domain.InvalidTransition(req.Status, domain.BookingStatusRejected)
	}

	ok, err := s.bookings.UpdateStatus(ctx, requestID, domain.BookingStatusPending, domain.BookingStatusRejected)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.bookings.GetByID(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if current.Status == domain.BookingStatusRejected {
			return current, nil
		}
		return nil, domain.InvalidTransition(current.Status, domain.BookingStatusRejected)
	}

	req.Status = domain.BookingStatusRejected
	req.UpdatedAt = s.now().UTC()
	s.emit(ctx, domain.EventRideUpdated, domain.UpdateReject, req, actingUserID)
	return req, nil
}

func (s *BookingService) Cancel(ctx context.Context, requestID, actingUserID string) (*domain.BookingRequest, error) {
	req, err := s.cancel(ctx, requestID, actingUserID)
	s.observe("cancel", err)
	return req, err
}

func (s *BookingService) cancel(ctx context.Context, requestID, actingUserID string) (*domain.BookingRequest, error) {
	req, err := s.bookings.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.Party(actingUserID) {
		return nil, domain.Forbidden("only the rider or the driver can cancel a request")
	}

	for attempt := 0; attempt < cancelMaxRetries; attempt++ {
		if req.Status == domain.BookingStatusCanceled {
			return req, nil
		}
		if !domain.CanTransition(req.Status, domain.BookingStatusCanceled) {
			return nil, domain.InvalidTransition(req.Status, domain.BookingStatusCanceled)
		}

		from := req.Status
		ok, err := s.bookings.UpdateStatus(ctx, requestID, from, domain.BookingStatusCanceled)
		if err != nil {
			return nil, err
		}
		if !ok {
			if req, err = s.bookings.GetByID(ctx, requestID); err != nil {
				return nil, err
			}
			continue
		}

		// Only the caller that won the status change releases, so a
		// replayed cancel cannot return the seats twice.
		if from == domain.BookingStatusAccepted {
			if err := s.releaseAccepted(ctx, req); err != nil {
				return nil, err
			}
		}
		req.Status = domain.BookingStatusCanceled
		req.UpdatedAt = s.now().UTC()
		s.emit(ctx, domain.EventRideUpdated, domain.UpdateCancel, req, actingUserID)
		return req, nil
	}
	return nil, domain.NewError(domain.KindConflict, "request changed concurrently, retry the cancel", nil)
}

func (s *BookingService) Delete(ctx context.Context, requestID, actingUserID string) error {
	req, err := s.bookings.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if !req.Party(actingUserID) {
		return domain.Forbidden("only the rider or the driver can delete a request")
	}
	if !req.Status.Terminal() {
		return domain.NewError(domain.KindInvalidTransition, "only rejected or canceled requests can be deleted", nil)
	}
	ok, err := s.bookings.Delete(ctx, requestID, domain.TerminalStatuses())
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrBookingNotFound
	}
	s.logger.Info("booking request deleted", "request_id", requestID, "actor_id", actingUserID)
	return nil
}

func (s *BookingService) Get(ctx context.Context, requestID, actingUserID string) (*domain.BookingRequest, error) {
	req, err := s.bookings.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.Party(actingUserID) {
		return nil, domain.ErrForbidden
	}
	return req, nil
}

func (s *BookingService) ListByRide(ctx context.Context, rideID, actingUserID string) ([]domain.BookingRequest, error) {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID != actingUserID {
		return nil, domain.Forbidden("only the driver can list requests for a ride")
	}
	return s.bookings.ListByRide(ctx, rideID)
}

func (s *BookingService) ListByDriver(ctx context.Context, driverID string) ([]domain.BookingRequest, error) {
	return s.bookings.ListByDriver(ctx, driverID)
}

func (s *BookingService) ListByRider(ctx context.Context, riderID string) ([]domain.BookingRequest, error) {
	return s.bookings.ListByRider(ctx, riderID)
}

// releaseReserved undoes a reservation whose status change did not happen.
func (s *BookingService) releaseReserved(ctx context.Context, req *domain.BookingRequest) {
	if _, err := s.ledger.Release(context.WithoutCancel(ctx), req.RideID, req.SeatsRequested); err != nil {
		s.logger.Error("failed to release seats after lost accept",
			"request_id", req.ID, "ride_id", req.RideID, "seats", req.SeatsRequested, "error", err)
	}
}

// releaseAccepted returns the seats of a request just moved from accepted to
// canceled. If the ledger stays unavailable the request goes back to
// accepted so its status still matches the seats it holds.
func (s *BookingService) releaseAccepted(ctx context.Context, req *domain.BookingRequest) error {
	ctx = context.WithoutCancel(ctx)
	_, err := s.ledger.Release(ctx, req.RideID, req.SeatsRequested)
	if err == nil {
		return nil
	}
	if _, rerr := s.bookings.UpdateStatus(ctx, req.ID, domain.BookingStatusCanceled, domain.BookingStatusAccepted); rerr != nil {
		s.logger.Error("failed to restore accepted status after release failure",
			"request_id", req.ID, "ride_id", req.RideID, "error", rerr)
	}
	return err
}

func (s *BookingService) emit(ctx context.Context, kind domain.EventKind, typ domain.UpdateType, req *domain.BookingRequest, actorID string) {
	if s.events == nil {
		return
	}
	event := domain.NewRideEvent(kind, typ, req, actorID)
	err := s.events.Publish(context.WithoutCancel(ctx), event)
	metrics.EventsPublished.WithLabelValues(string(kind), metrics.Outcome(err)).Inc()
	if err != nil {
		s.logger.Warn("failed to publish ride event",
			"kind", kind, "type", typ, "request_id", req.ID, "ride_id", req.RideID, "error", err)
	}
}

func (s *BookingService) observe(transition string, err error) {
	result := "ok"
	if err != nil {
		result = string(domain.KindOf(err))
	}
	metrics.BookingTransitions.WithLabelValues(transition, result).Inc()
}

var _ BookingUseCase = (*BookingService)(nil)
