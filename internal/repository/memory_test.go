package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRide(t *testing.T, repo *MemoryRideRepository, id string, total, available int) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &domain.Ride{
		ID:             id,
		DriverID:       "driver-1",
		DepartureTime:  time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		TotalSeats:     total,
		AvailableSeats: available,
		Status:         domain.RideStatusScheduled,
		Corridor:       []string{"9q8yyk"},
	}))
}

func TestMemoryRide_ReserveRelease(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRideRepository()
	seedRide(t, repo, "r1", 4, 3)

	left, err := repo.ReserveSeats(ctx, "r1", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, left)

	_, err = repo.ReserveSeats(ctx, "r1", 2)
	assert.ErrorIs(t, err, domain.ErrInsufficientSeats)

	left, err = repo.ReleaseSeats(ctx, "r1", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, left)

	// capped at total seats
	left, err = repo.ReleaseSeats(ctx, "r1", 5)
	require.NoError(t, err)
	assert.Equal(t, 4, left)

	_, err = repo.ReserveSeats(ctx, "missing", 1)
	assert.ErrorIs(t, err, domain.ErrRideNotFound)
}

func TestMemoryRide_ConcurrentReserveNeverOverdraws(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRideRepository()
	seedRide(t, repo, "r1", 10, 10)

	var wg sync.WaitGroup
	start := make(chan struct{})
	results := make(chan error, 25)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := repo.ReserveSeats(ctx, "r1", 1)
			results <- err
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientSeats)
	}
	assert.Equal(t, 10, ok)

	ride, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 0, ride.AvailableSeats)
}

func TestMemoryRide_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRideRepository()
	seedRide(t, repo, "r1", 4, 4)

	ride, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	ride.AvailableSeats = 0
	ride.Corridor[0] = "mutated"

	again, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 4, again.AvailableSeats)
	assert.Equal(t, "9q8yyk", again.Corridor[0])
}

func TestMemoryRide_UpdateDetailsLeavesSeats(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRideRepository()
	seedRide(t, repo, "r1", 4, 2)

	updated, err := repo.UpdateDetails(ctx, "r1", domain.RideDetails{Note: "no smoking", Amenities: domain.Amenities{PetFriendly: true}})
	require.NoError(t, err)
	assert.Equal(t, "no smoking", updated.Note)
	assert.True(t, updated.PetFriendly)
	assert.Equal(t, 2, updated.AvailableSeats)
	assert.Equal(t, 4, updated.TotalSeats)
}

func TestRideFilter_Matches(t *testing.T) {
	dep := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	ride := domain.Ride{
		DepartureTime:  dep,
		AvailableSeats: 2,
		Status:         domain.RideStatusActive,
		RideDetails:    domain.RideDetails{Amenities: domain.Amenities{TrunkSpace: true}},
	}
	base := RideFilter{
		DepartureFrom: dep.Add(-2 * time.Hour),
		DepartureTo:   dep.Add(2 * time.Hour),
		Statuses:      []domain.RideStatus{domain.RideStatusScheduled, domain.RideStatusActive},
		MinSeats:      2,
	}
	assert.True(t, base.Matches(ride))

	f := base
	f.TrunkSpace = true
	assert.True(t, f.Matches(ride))

	f = base
	f.PetFriendly = true
	assert.False(t, f.Matches(ride))

	f = base
	f.WheelchairAccess = true
	assert.False(t, f.Matches(ride))

	f = base
	f.MinSeats = 3
	assert.False(t, f.Matches(ride))

	f = base
	f.DepartureTo = dep.Add(-time.Minute)
	assert.False(t, f.Matches(ride))

	closed := ride
	closed.Status = domain.RideStatusCompleted
	assert.False(t, base.Matches(closed))
}

func TestMemoryBooking_ConditionalStatusAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository()
	require.NoError(t, repo.Create(ctx, &domain.BookingRequest{ID: "b1", RideID: "r1", RiderID: "u1", DriverID: "d1", SeatsRequested: 1, Status: domain.BookingStatusPending}))

	n, err := repo.CountLive(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ok, err := repo.Delete(ctx, "b1", domain.TerminalStatuses())
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.UpdateStatus(ctx, "b1", domain.BookingStatusAccepted, domain.BookingStatusCanceled)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.UpdateStatus(ctx, "b1", domain.BookingStatusPending, domain.BookingStatusRejected)
	require.NoError(t, err)
	assert.True(t, ok)

	n, err = repo.CountLive(ctx, "r1")
	require.NoError(t, err)
	assert.Zero(t, n)

	ok, err = repo.Delete(ctx, "b1", domain.TerminalStatuses())
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.GetByID(ctx, "b1")
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestMemoryBooking_Lists(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository()
	require.NoError(t, repo.Create(ctx, &domain.BookingRequest{ID: "b1", RideID: "r1", RiderID: "u1", DriverID: "d1"}))
	require.NoError(t, repo.Create(ctx, &domain.BookingRequest{ID: "b2", RideID: "r2", RiderID: "u1", DriverID: "d2"}))

	byRide, _ := repo.ListByRide(ctx, "r2")
	assert.Len(t, byRide, 1)
	byDriver, _ := repo.ListByDriver(ctx, "d1")
	assert.Len(t, byDriver, 1)
	byRider, _ := repo.ListByRider(ctx, "u1")
	assert.Len(t, byRider, 2)
}

func TestMemoryNotification(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryNotificationRepository()
	for _, id := range []string{"n1", "n2", "n3"} {
		require.NoError(t, repo.Create(ctx, &domain.Notification{ID: id, UserID: "u1", Status: domain.NotificationUnread}))
	}
	require.NoError(t, repo.Create(ctx, &domain.Notification{ID: "n4", UserID: "u2", Status: domain.NotificationUnread}))

	list, err := repo.ListByUser(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, repo.MarkRead(ctx, "n1"))
	n, err := repo.GetByID(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationRead, n.Status)

	assert.ErrorIs(t, repo.MarkRead(ctx, "missing"), domain.ErrNotificationNotFound)
}

func TestMemoryRide_DeleteIdle(t *testing.T) {
	ctx := context.Background()
	rides := NewMemoryRideRepository()
	bookings := NewMemoryBookingRepository()
	LinkMemoryRepositories(rides, bookings)
	seedRide(t, rides, "r1", 4, 4)
	require.NoError(t, bookings.Create(ctx, &domain.BookingRequest{ID: "b1", RideID: "r1", RiderID: "u1", DriverID: "driver-1", SeatsRequested: 2, Status: domain.BookingStatusAccepted}))
	require.NoError(t, bookings.Create(ctx, &domain.BookingRequest{ID: "b2", RideID: "r1", RiderID: "u2", DriverID: "driver-1", SeatsRequested: 1, Status: domain.BookingStatusRejected}))

	ok, err := rides.DeleteIdle(ctx, "r1", "someone-else")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = rides.DeleteIdle(ctx, "r1", "driver-1")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = rides.GetByID(ctx, "r1")
	require.NoError(t, err)

	moved, err := bookings.UpdateStatus(ctx, "b1", domain.BookingStatusAccepted, domain.BookingStatusCanceled)
	require.NoError(t, err)
	require.True(t, moved)

	ok, err = rides.DeleteIdle(ctx, "r1", "driver-1")
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = bookings.GetByID(ctx, "b2")
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)

	_, err = rides.DeleteIdle(ctx, "r1", "driver-1")
	assert.ErrorIs(t, err, domain.ErrRideNotFound)

	err = bookings.Create(ctx, &domain.BookingRequest{ID: "b3", RideID: "r1", RiderID: "u3", DriverID: "driver-1", SeatsRequested: 1, Status: domain.BookingStatusPending})
	assert.ErrorIs(t, err, domain.ErrRideNotFound)
}

func TestMemoryRide_DeleteIdleRacesCreate(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		rides := NewMemoryRideRepository()
		bookings := NewMemoryBookingRepository()
		LinkMemoryRepositories(rides, bookings)
		seedRide(t, rides, "r1", 4, 4)

		var wg sync.WaitGroup
		start := make(chan struct{})
		var deleted bool
		var createErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			deleted, _ = rides.DeleteIdle(ctx, "r1", "driver-1")
		}()
		go func() {
			defer wg.Done()
			<-start
			createErr = bookings.Create(ctx, &domain.BookingRequest{ID: "b1", RideID: "r1", RiderID: "u1", DriverID: "driver-1", SeatsRequested: 1, Status: domain.BookingStatusPending})
		}()
		close(start)
		wg.Wait()

		// Either the ride went first and the request was refused, or the
		// request landed and the ride stayed.
		if deleted {
			assert.ErrorIs(t, createErr, domain.ErrRideNotFound)
		} else {
			require.NoError(t, createErr)
			_, err := rides.GetByID(ctx, "r1")
			require.NoError(t, err)
		}
	}
}

func TestMemoryCar(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCarRepository()
	car := &domain.Car{ID: "c1", OwnerID: "u1", Model: "Clio", LicenseNumber: "AB-123"}
	require.NoError(t, repo.Create(ctx, car))
	require.NoError(t, repo.Create(ctx, &domain.Car{ID: "c2", OwnerID: "u2", Model: "Golf", LicenseNumber: "AB-123"}))

	err := repo.Create(ctx, &domain.Car{ID: "c3", OwnerID: "u1", Model: "Polo", LicenseNumber: "AB-123"})
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	list, err := repo.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	err = repo.Update(ctx, &domain.Car{ID: "c1", OwnerID: "u2", Model: "Stolen", LicenseNumber: "X"})
	assert.ErrorIs(t, err, domain.ErrCarNotFound)

	ok, err := repo.Delete(ctx, "c1", "u2")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repo.Delete(ctx, "c1", "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = repo.GetByID(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrCarNotFound)
}
