package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/logging"
	"github.com/Domenick1991/carpool/internal/metrics"
	"github.com/Domenick1991/carpool/internal/retry"
	"github.com/cenkalti/backoff/v4"
)

// SeatStore is the conditional-update primitive the ledger relies on.
type SeatStore interface {
	ReserveSeats(ctx context.Context, rideID string, seats int) (int, error)
	ReleaseSeats(ctx context.Context, rideID string, seats int) (int, error)
}

// SeatLedger is the only writer of a ride's available seats.
type SeatLedger struct {
	store  SeatStore
	policy retry.Policy
	logger *slog.Logger
}

type Option func(*SeatLedger)

func WithRetryPolicy(p retry.Policy) Option {
	return func(l *SeatLedger) { l.policy = p }
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *SeatLedger) { l.logger = logger }
}

func New(store SeatStore, opts ...Option) *SeatLedger {
	l := &SeatLedger{store: store, policy: retry.DefaultPolicy()}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logging.OrDefault(l.logger)
	return l
}

// Reserve takes seats from the ride in one conditional step and returns the
// seats left. ErrInsufficientSeats leaves the ride untouched.
func (l *SeatLedger) Reserve(ctx context.Context, rideID string, seats int) (int, error) {
	if seats <= 0 {
		return 0, domain.Validation("seats must be positive, got %d", seats)
	}
	left, err := l.do(ctx, "reserve", rideID, seats, l.store.ReserveSeats)
	switch {
	case err == nil:
		metrics.SeatOperations.WithLabelValues("reserve", "ok").Inc()
	case domain.IsInsufficientSeats(err):
		metrics.SeatOperations.WithLabelValues("reserve", "insufficient").Inc()
	default:
		metrics.SeatOperations.WithLabelValues("reserve", "error").Inc()
	}
	return left, err
}

// Release returns seats to the ride, capped at its total.
func (l *SeatLedger) Release(ctx context.Context, rideID string, seats int) (int, error) {
	if seats <= 0 {
		return 0, domain.Validation("seats must be positive, got %d", seats)
	}
	left, err := l.do(ctx, "release", rideID, seats, l.store.ReleaseSeats)
	metrics.SeatOperations.WithLabelValues("release", metrics.Outcome(err)).Inc()
	return left, err
}

func (l *SeatLedger) do(ctx context.Context, op, rideID string, seats int, fn func(context.Context, string, int) (int, error)) (int, error) {
	attempt := 1
	left, err := backoff.RetryNotifyWithData(func() (int, error) {
		left, err := fn(ctx, rideID, seats)
		if err != nil && !domain.IsStorageUnavailable(err) {
			return 0, backoff.Permanent(err)
		}
		return left, err
	}, l.policy.BackOff(ctx), func(err error, next time.Duration) {
		l.logger.Warn("seat ledger storage error",
			"op", op, "ride_id", rideID, "attempt", attempt, "retry_in", next, "error", err)
		attempt++
	})
	if err != nil {
		return 0, err
	}
	l.logger.Debug("seat ledger updated", "op", op, "ride_id", rideID, "seats", seats, "available", left)
	return left, nil
}
