package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/repository"
	"github.com/Domenick1991/carpool/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSeatStore struct {
	mock.Mock
}

func (m *MockSeatStore) ReserveSeats(ctx context.Context, rideID string, seats int) (int, error) {
	args := m.Called(ctx, rideID, seats)
	return args.Int(0), args.Error(1)
}

func (m *MockSeatStore) ReleaseSeats(ctx context.Context, rideID string, seats int) (int, error) {
	args := m.Called(ctx, rideID, seats)
	return args.Int(0), args.Error(1)
}

var fastRetry = WithRetryPolicy(retry.Policy{Attempts: 3, BaseDelay: time.Millisecond})

func newRide(t *testing.T, total, available int) *repository.MemoryRideRepository {
	t.Helper()
	repo := repository.NewMemoryRideRepository()
	require.NoError(t, repo.Create(context.Background(), &domain.Ride{
		ID: "r1", DriverID: "d1", TotalSeats: total, AvailableSeats: available, Status: domain.RideStatusScheduled,
	}))
	return repo
}

func available(t *testing.T, repo *repository.MemoryRideRepository) int {
	t.Helper()
	r, err := repo.GetByID(context.Background(), "r1")
	require.NoError(t, err)
	return r.AvailableSeats
}

func TestReserveRelease_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newRide(t, 4, 3)
	l := New(repo)

	left, err := l.Reserve(ctx, "r1", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, left)

	left, err = l.Release(ctx, "r1", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, left)
}

func TestReserve_InsufficientLeavesSeats(t *testing.T) {
	repo := newRide(t, 4, 1)
	_, err := New(repo).Reserve(context.Background(), "r1", 2)
	assert.ErrorIs(t, err, domain.ErrInsufficientSeats)
	assert.Equal(t, 1, available(t, repo))
}

func TestRelease_CappedAtTotal(t *testing.T) {
	repo := newRide(t, 4, 3)
	left, err := New(repo).Release(context.Background(), "r1", 2)
	require.NoError(t, err)
	assert.Equal(t, 4, left)
}

func TestReserve_RejectsNonPositiveSeats(t *testing.T) {
	store := &MockSeatStore{}
	l := New(store)

	_, err := l.Reserve(context.Background(), "r1", 0)
	assert.True(t, domain.IsValidation(err))
	_, err = l.Release(context.Background(), "r1", -1)
	assert.True(t, domain.IsValidation(err))
	store.AssertNotCalled(t, "ReserveSeats", mock.Anything, mock.Anything, mock.Anything)
}

func TestReserve_RetriesStorageUnavailable(t *testing.T) {
	ctx := context.Background()
	store := &MockSeatStore{}
	outage := domain.StorageUnavailable(errors.New("connection reset"))

	store.On("ReserveSeats", ctx, "r1", 2).Return(0, outage).Twice()
	store.On("ReserveSeats", ctx, "r1", 2).Return(1, nil).Once()

	left, err := New(store, fastRetry).Reserve(ctx, "r1", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, left)
	store.AssertExpectations(t)
}

func TestReserve_DoesNotRetryInsufficientSeats(t *testing.T) {
	ctx := context.Background()
	store := &MockSeatStore{}
	store.On("ReserveSeats", ctx, "r1", 2).Return(0, domain.ErrInsufficientSeats).Once()

	_, err := New(store, fastRetry).Reserve(ctx, "r1", 2)
	assert.ErrorIs(t, err, domain.ErrInsufficientSeats)
	store.AssertNumberOfCalls(t, "ReserveSeats", 1)
}

func TestRelease_SurfacesPersistentOutage(t *testing.T) {
	ctx := context.Background()
	store := &MockSeatStore{}
	store.On("ReleaseSeats", ctx, "r1", 1).Return(0, domain.StorageUnavailable(errors.New("down")))

	_, err := New(store, fastRetry).Release(ctx, "r1", 1)
	assert.True(t, domain.IsStorageUnavailable(err))
	store.AssertNumberOfCalls(t, "ReleaseSeats", 3)
}

func TestInvariant_ConcurrentReserveAndRelease(t *testing.T) {
	ctx := context.Background()
	repo := newRide(t, 4, 4)
	l := New(repo)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			if i%2 == 0 {
				_, _ = l.Reserve(ctx, "r1", 1+i%3)
			} else {
				_, _ = l.Release(ctx, "r1", 1+i%3)
			}
			r, err := repo.GetByID(ctx, "r1")
			if assert.NoError(t, err) {
				assert.GreaterOrEqual(t, r.AvailableSeats, 0)
				assert.LessOrEqual(t, r.AvailableSeats, 4)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	seats := available(t, repo)
	assert.GreaterOrEqual(t, seats, 0)
	assert.LessOrEqual(t, seats, 4)
}
