package api

import (
	"context"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/service/booking"
	"github.com/Domenick1991/carpool/internal/service/cars"
	"github.com/Domenick1991/carpool/internal/service/rides"
	"github.com/Domenick1991/carpool/internal/service/search"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) request(args mock.Arguments) (*domain.BookingRequest, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingRequest), args.Error(1)
}

func (m *MockBookingUseCase) Create(ctx context.Context, input booking.CreateInput) (*domain.BookingRequest, error) {
	return m.request(m.Called(ctx, input))
}

func (m *MockBookingUseCase) Accept(ctx context.Context, requestID, actingUserID string) (*domain.BookingRequest, error) {
	return m.request(m.Called(ctx, requestID, actingUserID))
}

func (m *MockBookingUseCase) Reject(ctx context.Context, requestID, actingUserID string) (*domain.BookingRequest, error) {
	return m.request(m.Called(ctx, requestID, actingUserID))
}

func (m *MockBookingUseCase) Cancel(ctx context.Context, requestID, actingUserID string) (*domain.BookingRequest, error) {
	return m.request(m.Called(ctx, requestID, actingUserID))
}

func (m *MockBookingUseCase) Delete(ctx context.Context, requestID, actingUserID string) error {
	return m.Called(ctx, requestID, actingUserID).Error(0)
}

func (m *MockBookingUseCase) Get(ctx context.Context, requestID, actingUserID string) (*domain.BookingRequest, error) {
	return m.request(m.Called(ctx, requestID, actingUserID))
}

func (m *MockBookingUseCase) ListByRide(ctx context.Context, rideID, actingUserID string) ([]domain.BookingRequest, error) {
	args := m.Called(ctx, rideID, actingUserID)
	return args.Get(0).([]domain.BookingRequest), args.Error(1)
}

func (m *MockBookingUseCase) ListByDriver(ctx context.Context, driverID string) ([]domain.BookingRequest, error) {
	args := m.Called(ctx, driverID)
	return args.Get(0).([]domain.BookingRequest), args.Error(1)
}

func (m *MockBookingUseCase) ListByRider(ctx context.Context, riderID string) ([]domain.BookingRequest, error) {
	args := m.Called(ctx, riderID)
	return args.Get(0).([]domain.BookingRequest), args.Error(1)
}

type MockRideUseCase struct {
	mock.Mock
}

func (m *MockRideUseCase) ride(args mock.Arguments) (*domain.Ride, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ride), args.Error(1)
}

func (m *MockRideUseCase) Publish(ctx context.Context, driverID string, input rides.PublishInput) (*domain.Ride, error) {
	return m.ride(m.Called(ctx, driverID, input))
}

func (m *MockRideUseCase) Get(ctx context.Context, rideID string) (*domain.Ride, error) {
	return m.ride(m.Called(ctx, rideID))
}

func (m *MockRideUseCase) ListByDriver(ctx context.Context, driverID string) ([]domain.Ride, error) {
	args := m.Called(ctx, driverID)
	return args.Get(0).([]domain.Ride), args.Error(1)
}

func (m *MockRideUseCase) UpdateDetails(ctx context.Context, rideID, actingUserID string, patch rides.DetailsPatch) (*domain.Ride, error) {
	return m.ride(m.Called(ctx, rideID, actingUserID, patch))
}

func (m *MockRideUseCase) Delete(ctx context.Context, rideID, actingUserID string) error {
	return m.Called(ctx, rideID, actingUserID).Error(0)
}

type MockSearchUseCase struct {
	mock.Mock
}

func (m *MockSearchUseCase) Search(ctx context.Context, req search.Request) (*search.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*search.Result), args.Error(1)
}

type MockNotificationUseCase struct {
	mock.Mock
}

func (m *MockNotificationUseCase) Handle(ctx context.Context, event domain.RideEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockNotificationUseCase) ListForUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *MockNotificationUseCase) MarkRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	args := m.Called(ctx, notificationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

type MockCarUseCase struct {
	mock.Mock
}

func (m *MockCarUseCase) car(args mock.Arguments) (*domain.Car, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}

func (m *MockCarUseCase) Register(ctx context.Context, ownerID string, input cars.CarInput) (*domain.Car, error) {
	return m.car(m.Called(ctx, ownerID, input))
}

func (m *MockCarUseCase) Get(ctx context.Context, carID string) (*domain.Car, error) {
	return m.car(m.Called(ctx, carID))
}

func (m *MockCarUseCase) ListByOwner(ctx context.Context, ownerID string) ([]domain.Car, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]domain.Car), args.Error(1)
}

func (m *MockCarUseCase) Update(ctx context.Context, carID, actingUserID string, patch cars.CarPatch) (*domain.Car, error) {
	return m.car(m.Called(ctx, carID, actingUserID, patch))
}

func (m *MockCarUseCase) Delete(ctx context.Context, carID, actingUserID string) error {
	return m.Called(ctx, carID, actingUserID).Error(0)
}
