package cars

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/logging"
	"github.com/Domenick1991/carpool/internal/repository"
	"github.com/google/uuid"
)

type CarUseCase interface {
	Register(ctx context.Context, ownerID string, input CarInput) (*domain.Car, error)
	Get(ctx context.Context, carID string) (*domain.Car, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Car, error)
	Update(ctx context.Context, carID, actingUserID string, patch CarPatch) (*domain.Car, error)
	Delete(ctx context.Context, carID, actingUserID string) error
}

type CarInput struct {
	Model         string `json:"car_model"`
	LicenseNumber string `json:"license_number"`
}

// CarPatch changes only the fields that are set.
type CarPatch struct {
	Model         *string `json:"car_model"`
	LicenseNumber *string `json:"license_number"`
}

type CarService struct {
	repo   repository.CarRepository
	logger *slog.Logger
}

func NewCarService(repo repository.CarRepository, logger *slog.Logger) *CarService {
	return &CarService{repo: repo, logger: logging.OrDefault(logger)}
}

func (s *CarService) Register(ctx context.Context, ownerID string, input CarInput) (*domain.Car, error) {
	if ownerID == "" {
		return nil, domain.Validation("owner is required")
	}
	car := &domain.Car{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Model:         strings.TrimSpace(input.Model),
		LicenseNumber: domain.NormalizeLicense(input.LicenseNumber),
	}
	if err := validate(car); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, car); err != nil {
		return nil, err
	}
	s.logger.Info("car registered", "car_id", car.ID, "owner_id", ownerID)
	return car, nil
}

func (s *CarService) Get(ctx context.Context, carID string) (*domain.Car, error) {
	return s.repo.GetByID(ctx, carID)
}

func (s *CarService) ListByOwner(ctx context.Context, ownerID string) ([]domain.Car, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *CarService) Update(ctx context.Context, carID, actingUserID string, patch CarPatch) (*domain.Car, error) {
	car, err := s.owned(ctx, carID, actingUserID)
	if err != nil {
		return nil, err
	}
	if patch.Model != nil {
		car.Model = strings.TrimSpace(*patch.Model)
	}
	if patch.LicenseNumber != nil {
		car.LicenseNumber = domain.NormalizeLicense(*patch.LicenseNumber)
	}
	if err := validate(car); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, car); err != nil {
		return nil, err
	}
	return car, nil
}

func (s *CarService) Delete(ctx context.Context, carID, actingUserID string) error {
	if _, err := s.owned(ctx, carID, actingUserID); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, carID, actingUserID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrCarNotFound
	}
	s.logger.Info("car deleted", "car_id", carID, "owner_id", actingUserID)
	return nil
}

func (s *CarService) owned(ctx context.Context, carID, actingUserID string) (*domain.Car, error) {
	car, err := s.repo.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if car.OwnerID != actingUserID {
		return nil, domain.Forbidden("only the owner can change a car")
	}
	return car, nil
}

func validate(car *domain.Car) error {
	if car.Model == "" || car.LicenseNumber == "" {
		return domain.Validation("car_model and license_number are required")
	}
	return nil
}

var _ CarUseCase = (*CarService)(nil)
