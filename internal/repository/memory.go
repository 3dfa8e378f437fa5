package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/carpool/internal/domain"
)

// The memory repositories keep the same single-step conditional semantics
// as the Postgres ones; every check-and-write happens under one lock.

type MemoryRideRepository struct {
	mu       sync.Mutex
	rides    map[string]domain.Ride
	bookings *MemoryBookingRepository
	now      func() time.Time
}

func NewMemoryRideRepository() *MemoryRideRepository {
	return &MemoryRideRepository{rides: make(map[string]domain.Ride), now: time.Now}
}

// LinkMemoryRepositories lets ride deletion see live requests and request
// creation see deleted rides. Both paths lock rides first, then bookings.
func LinkMemoryRepositories(rides *MemoryRideRepository, bookings *MemoryBookingRepository) {
	rides.bookings = bookings
	bookings.rides = rides
}

func cloneRide(r domain.Ride) domain.Ride {
	r.Corridor = slices.Clone(r.Corridor)
	return r
}

func (m *MemoryRideRepository) Create(_ context.Context, ride *domain.Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	ride.CreatedAt, ride.UpdatedAt = now, now
	m.rides[ride.ID] = cloneRide(*ride)
	return nil
}

func (m *MemoryRideRepository) GetByID(_ context.Context, id string) (*domain.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, domain.ErrRideNotFound
	}
	out := cloneRide(r)
	return &out, nil
}

func (m *MemoryRideRepository) collect(keep func(domain.Ride) bool) []domain.Ride {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Ride, 0)
	for _, r := range m.rides {
		if keep(r) {
			out = append(out, cloneRide(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DepartureTime.Before(out[j].DepartureTime) })
	return out
}

func (m *MemoryRideRepository) ListByDriver(_ context.Context, driverID string) ([]domain.Ride, error) {
	return m.collect(func(r domain.Ride) bool { return r.DriverID == driverID }), nil
}

func (m *MemoryRideRepository) Search(_ context.Context, f RideFilter) ([]domain.Ride, error) {
	return m.collect(f.Matches), nil
}

func (m *MemoryRideRepository) UpdateDetails(_ context.Context, id string, d domain.RideDetails) (*domain.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, domain.ErrRideNotFound
	}
	r.RideDetails = d
	r.UpdatedAt = m.now().UTC()
	m.rides[id] = r
	out := cloneRide(r)
	return &out, nil
}

func (m *MemoryRideRepository) DeleteIdle(_ context.Context, id, driverID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return false, domain.ErrRideNotFound
	}
	if r.DriverID != driverID {
		return false, nil
	}
	if m.bookings != nil {
		m.bookings.mu.Lock()
		defer m.bookings.mu.Unlock()
		if m.bookings.countLiveLocked(id) > 0 {
			return false, nil
		}
		for bid, b := range m.bookings.bookings {
			if b.RideID == id {
				delete(m.bookings.bookings, bid)
			}
		}
	}
	delete(m.rides, id)
	return true, nil
}

func (m *MemoryRideRepository) ReserveSeats(_ context.Context, id string, seats int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return 0, domain.ErrRideNotFound
	}
	if r.AvailableSeats < seats {
		return 0, domain.ErrInsufficientSeats
	}
	r.AvailableSeats -= seats
	r.UpdatedAt = m.now().UTC()
	m.rides[id] = r
	return r.AvailableSeats, nil
}

func (m *MemoryRideRepository) ReleaseSeats(_ context.Context, id string, seats int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return 0, domain.ErrRideNotFound
	}
	r.AvailableSeats = min(r.TotalSeats, r.AvailableSeats+seats)
	r.UpdatedAt = m.now().UTC()
	m.rides[id] = r
	return r.AvailableSeats, nil
}

type MemoryBookingRepository struct {
	mu       sync.Mutex
	bookings map[string]domain.BookingRequest
	rides    *MemoryRideRepository
	now      func() time.Time
}

func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{bookings: make(map[string]domain.BookingRequest), now: time.Now}
}

func (m *MemoryBookingRepository) Create(_ context.Context, b *domain.BookingRequest) error {
	if m.rides != nil {
		m.rides.mu.Lock()
		defer m.rides.mu.Unlock()
		if _, ok := m.rides.rides[b.RideID]; !ok {
			return domain.ErrRideNotFound
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	m.bookings[b.ID] = *b
	return nil
}

func (m *MemoryBookingRepository) GetByID(_ context.Context, id string) (*domain.BookingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return &b, nil
}

func (m *MemoryBookingRepository) collect(keep func(domain.BookingRequest) bool) []domain.BookingRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.BookingRequest, 0)
	for _, b := range m.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MemoryBookingRepository) ListByRide(_ context.Context, rideID string) ([]domain.BookingRequest, error) {
	return m.collect(func(b domain.BookingRequest) bool { return b.RideID == rideID }), nil
}

func (m *MemoryBookingRepository) ListByDriver(_ context.Context, driverID string) ([]domain.BookingRequest, error) {
	return m.collect(func(b domain.BookingRequest) bool { return b.DriverID == driverID }), nil
}

func (m *MemoryBookingRepository) ListByRider(_ context.Context, riderID string) ([]domain.BookingRequest, error) {
	return m.collect(func(b domain.BookingRequest) bool { return b.RiderID == riderID }), nil
}

func (m *MemoryBookingRepository) UpdateStatus(_ context.Context, id string, from, to domain.BookingStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	b.UpdatedAt = m.now().UTC()
	m.bookings[id] = b
	return true, nil
}

func (m *MemoryBookingRepository) Delete(_ context.Context, id string, statuses []domain.BookingStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || !slices.Contains(statuses, b.Status) {
		return false, nil
	}
	delete(m.bookings, id)
	return true, nil
}

func (m *MemoryBookingRepository) CountLive(_ context.Context, rideID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countLiveLocked(rideID), nil
}

func (m *MemoryBookingRepository) countLiveLocked(rideID string) int {
	n := 0
	for _, b := range m.bookings {
		if b.RideID == rideID && !b.Status.Terminal() {
			n++
		}
	}
	return n
}

type MemoryNotificationRepository struct {
	mu    sync.Mutex
	items map[string]domain.Notification
	now   func() time.Time
}

func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{items: make(map[string]domain.Notification), now: time.Now}
}

func (m *MemoryNotificationRepository) Create(_ context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.CreatedAt = m.now().UTC()
	m.items[n.ID] = *n
	return nil
}

func (m *MemoryNotificationRepository) GetByID(_ context.Context, id string) (*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotificationNotFound
	}
	return &n, nil
}

func (m *MemoryNotificationRepository) ListByUser(_ context.Context, userID string, limit int) ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Notification, 0)
	for _, n := range m.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryNotificationRepository) MarkRead(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.items[id]
	if !ok {
		return domain.ErrNotificationNotFound
	}
	n.Status = domain.NotificationRead
	m.items[id] = n
	return nil
}

type MemoryCarRepository struct {
	mu   sync.Mutex
	cars map[string]domain.Car
	now  func() time.Time
}

func NewMemoryCarRepository() *MemoryCarRepository {
	return &MemoryCarRepository{cars: make(map[string]domain.Car), now: time.Now}
}

// plateTaken reports whether owner already has another car with this plate.
func (m *MemoryCarRepository) plateTaken(car *domain.Car) bool {
	for _, c := range m.cars {
		if c.ID != car.ID && c.OwnerID == car.OwnerID && c.LicenseNumber == car.LicenseNumber {
			return true
		}
	}
	return false
}

func (m *MemoryCarRepository) Create(_ context.Context, car *domain.Car) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.plateTaken(car) {
		return errDuplicatePlate
	}
	now := m.now().UTC()
	car.CreatedAt, car.UpdatedAt = now, now
	m.cars[car.ID] = *car
	return nil
}

func (m *MemoryCarRepository) GetByID(_ context.Context, id string) (*domain.Car, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cars[id]
	if !ok {
		return nil, domain.ErrCarNotFound
	}
	return &c, nil
}

func (m *MemoryCarRepository) ListByOwner(_ context.Context, ownerID string) ([]domain.Car, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Car, 0)
	for _, c := range m.cars {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryCarRepository) Update(_ context.Context, car *domain.Car) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cars[car.ID]
	if !ok || c.OwnerID != car.OwnerID {
		return domain.ErrCarNotFound
	}
	if m.plateTaken(car) {
		return errDuplicatePlate
	}
	c.Model, c.LicenseNumber = car.Model, car.LicenseNumber
	c.UpdatedAt = m.now().UTC()
	m.cars[car.ID] = c
	*car = c
	return nil
}

func (m *MemoryCarRepository) Delete(_ context.Context, id, ownerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cars[id]
	if !ok || c.OwnerID != ownerID {
		return false, nil
	}
	delete(m.cars, id)
	return true, nil
}

var (
	_ RideRepository         = (*MemoryRideRepository)(nil)
	_ BookingRepository      = (*MemoryBookingRepository)(nil)
	_ NotificationRepository = (*MemoryNotificationRepository)(nil)
	_ CarRepository          = (*MemoryCarRepository)(nil)
)
