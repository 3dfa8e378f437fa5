package rides

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Domenick1991/carpool/internal/corridor"
	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/logging"
	"github.com/Domenick1991/carpool/internal/repository"
	"github.com/Domenick1991/carpool/internal/routing"
	"github.com/google/uuid"
)

type RideUseCase interface {
	Publish(ctx context.Context, driverID string, input PublishInput) (*domain.Ride, error)
	Get(ctx context.Context, rideID string) (*domain.Ride, error)
	ListByDriver(ctx context.Context, driverID string) ([]domain.Ride, error)
	UpdateDetails(ctx context.Context, rideID, actingUserID string, patch DetailsPatch) (*domain.Ride, error)
	Delete(ctx context.Context, rideID, actingUserID string) error
}

// CarLookup resolves the car a driver names when publishing a ride.
type CarLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Car, error)
}

type RideService struct {
	repo     repository.RideRepository
	router   routing.Router
	cars     CarLookup
	corridor *corridor.Builder
	logger   *slog.Logger
	now      func() time.Time
}

type PublishInput struct {
	Origin        domain.Point `json:"origin"`
	Destination   domain.Point `json:"destination"`
	DepartureTime time.Time    `json:"departure_time"`
	TotalSeats    int          `json:"total_seats"`
	CarID         string       `json:"car_id"`
	domain.RideDetails
}

// DetailsPatch lists every field a driver may change after publishing.
// Nil fields are left as they are.
type DetailsPatch struct {
	OriginLabel      *string `json:"origin_label"`
	DestinationLabel *string `json:"destination_label"`
	Note             *string `json:"note"`
	PriceCents       *int64  `json:"price_cents"`
	PetFriendly      *bool   `json:"pet_friendly"`
	TrunkSpace       *bool   `json:"trunk_space"`
	AirConditioning  *bool   `json:"air_conditioning"`
	WheelchairAccess *bool   `json:"wheelchair_access"`
}

func (p DetailsPatch) apply(d domain.RideDetails) domain.RideDetails {
	setString(&d.OriginLabel, p.OriginLabel)
	setString(&d.DestinationLabel, p.DestinationLabel)
	setString(&d.Note, p.Note)
	if p.PriceCents != nil {
		d.PriceCents = *p.PriceCents
	}
	setBool(&d.Amenities.PetFriendly, p.PetFriendly)
	setBool(&d.Amenities.TrunkSpace, p.TrunkSpace)
	setBool(&d.Amenities.AirConditioning, p.AirConditioning)
	setBool(&d.Amenities.WheelchairAccess, p.WheelchairAccess)
	return d
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

type RideServiceOption func(*RideService)

func WithCorridorBuilder(b *corridor.Builder) RideServiceOption {
	return func(s *RideService) {
		s.corridor = b
	}
}

// WithCars lets rides reference a registered car. Without it a car_id is refused.
func WithCars(cars CarLookup) RideServiceOption {
	return func(s *RideService) {
		s.cars = cars
	}
}

func WithLogger(logger *slog.Logger) RideServiceOption {
	return func(s *RideService) {
		s.logger = logger
	}
}

func NewRideService(repo repository.RideRepository, router routing.Router, opts ...RideServiceOption) *RideService {
	service := &RideService{
		repo:     repo,
		router:   router,
		corridor: corridor.NewBuilder(corridor.DefaultPrecision),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	service.logger = logging.OrDefault(service.logger)
	return service
}

func (s *RideService) Publish(ctx context.Context, driverID string, input PublishInput) (*domain.Ride, error) {
	if driverID == "" {
		return nil, domain.Validation("driver is required")
	}
	if !input.Origin.Valid() || !input.Destination.Valid() {
		return nil, domain.Validation("origin and destination must be valid coordinates")
	}
	if input.TotalSeats < 1 {
		return nil, domain.Validation("total_seats must be at least 1")
	}
	if input.DepartureTime.IsZero() {
		return nil, domain.Validation("departure_time is required")
	}
	if input.DepartureTime.Before(s.now()) {
		return nil, domain.Validation("departure_time must be in the future")
	}
	if input.PriceCents < 0 {
		return nil, domain.Validation("price_cents must not be negative")
	}

	if err := s.checkCar(ctx, driverID, input.CarID); err != nil {
		return nil, err
	}

	route, err := routing.Resolve(ctx, s.router, input.Origin, input.Destination)
	if err != nil {
		return nil, err
	}

	details := input.RideDetails
	details.OriginLabel = strings.TrimSpace(details.OriginLabel)
	details.DestinationLabel = strings.TrimSpace(details.DestinationLabel)
	ride := &domain.Ride{
		ID:              uuid.NewString(),
		DriverID:        driverID,
		CarID:           input.CarID,
		Origin:          input.Origin,
		Destination:     input.Destination,
		DepartureTime:   input.DepartureTime.UTC(),
		TotalSeats:      input.TotalSeats,
		AvailableSeats:  input.TotalSeats,
		Status:          domain.RideStatusScheduled,
		Corridor:        s.corridor.FromRoute(route),
		DistanceKm:      route.DistanceKm(),
		DurationMinutes: route.DurationMinutes(),
		RideDetails:     details,
	}
	if err := s.repo.Create(ctx, ride); err != nil {
		return nil, err
	}
	s.logger.Info("ride published",
		"ride_id", ride.ID, "driver_id", driverID, "seats", ride.TotalSeats,
		"distance_km", ride.DistanceKm, "corridor_cells", len(ride.Corridor))
	return ride, nil
}

func (s *RideService) checkCar(ctx context.Context, driverID, carID string) error {
	if carID == "" {
		return nil
	}
	if s.cars == nil {
		return domain.Validation("car_id is not accepted by this service")
	}
	car, err := s.cars.GetByID(ctx, carID)
	if domain.IsNotFound(err) {
		return domain.Validation("car %s is not registered", carID)
	}
	if err != nil {
		return err
	}
	if car.OwnerID != driverID {
		return domain.Validation("car %s does not belong to the driver", carID)
	}
	return nil
}

func (s *RideService) Get(ctx context.Context, rideID string) (*domain.Ride, error) {
	return s.repo.GetByID(ctx, rideID)
}

func (s *RideService) ListByDriver(ctx context.Context, driverID string) ([]domain.Ride, error) {
	return s.repo.ListByDriver(ctx, driverID)
}

func (s *RideService) UpdateDetails(ctx context.Context, rideID, actingUserID string, patch DetailsPatch) (*domain.Ride, error) {
	ride, err := s.repo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID != actingUserID {
		return nil, domain.Forbidden("only the driver can edit a ride")
	}
	if patch.PriceCents != nil && *patch.PriceCents < 0 {
		return nil, domain.Validation("price_cents must not be negative")
	}
	return s.repo.UpdateDetails(ctx, rideID, patch.apply(ride.RideDetails))
}

func (s *RideService) Delete(ctx context.Context, rideID, actingUserID string) error {
	ride, err := s.repo.GetByID(ctx, rideID)
	if err != nil {
		return err
	}
	if ride.DriverID != actingUserID {
		return domain.Forbidden("only the driver can delete a ride")
	}
	deleted, err := s.repo.DeleteIdle(ctx, rideID, actingUserID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.NewError(domain.KindInvalidTransition, "ride still has pending or accepted requests", nil)
	}
	s.logger.Info("ride deleted", "ride_id", rideID, "driver_id", actingUserID)
	return nil
}

var _ RideUseCase = (*RideService)(nil)
