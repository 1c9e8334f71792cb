package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/trimly-app/TRM-BookingService/internal/domain"
	configRepo "github.com/trimly-app/TRM-BookingService/internal/infra/storage/config"
	catalogClient "github.com/trimly-app/TRM-BookingService/internal/integrations/catalogservice"
	"github.com/trimly-app/TRM-BookingService/internal/service/config/models"
)

// Service сервис для работы с конфигурацией слотов салона
type Service struct {
	configRepo    ConfigRepository
	catalogClient CatalogServiceClient
	cache         AvailabilityInvalidator
	logger        Logger
}

// NewService создает новый экземпляр сервиса конфигурации.
// cache может быть nil.
func NewService(
	configRepository ConfigRepository,
	catalog CatalogServiceClient,
	cache AvailabilityInvalidator,
	logger Logger,
) *Service {
	return &Service{
		configRepo:    configRepository,
		catalogClient: catalog,
		cache:         cache,
		logger:        logger,
	}
}

// Get получает конфигурацию слотов салона
// Публичный метод - доступен всем. Салон без сохранённой конфигурации
// получает дефолтные значения.
func (s *Service) Get(ctx context.Context, salonID int64) (*models.ConfigResponse, error) {
	s.logger.Info("Get: fetching config for salon=%d", salonID)

	if _, err := s.catalogClient.GetSalon(ctx, salonID); err != nil {
		if errors.Is(err, catalogClient.ErrSalonNotFound) {
			s.logger.Warn("Get: salon id=%d not found", salonID)
			return nil, ErrSalonNotFound
		}
		s.logger.Error("Get: failed to get salon id=%d: %v", salonID, err)
		return nil, fmt.Errorf("%w: Get - failed to get salon: %v", ErrInternal, err)
	}

	cfg, err := s.configRepo.GetBySalonID(ctx, salonID)
	if err != nil {
		if errors.Is(err, configRepo.ErrConfigNotFound) {
			s.logger.Info("Get: no config stored for salon=%d, using defaults", salonID)
			return models.FromDomainConfig(domain.DefaultSalonSlotsConfig(salonID)), nil
		}
		s.logger.Error("Get: repository error for salon=%d: %v", salonID, err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainConfig(cfg), nil
}

// Update обновляет конфигурацию слотов салона
// Доступно только владельцам салона. Непереданные поля сохраняют текущие
// значения (или дефолтные, если конфигурация ещё не создавалась).
func (s *Service) Update(ctx context.Context, req *models.UpdateConfigRequest) (*models.ConfigResponse, error) {
	s.logger.Info("Update: updating config for salon=%d by user=%d", req.SalonID, req.UserID)

	salon, err := s.catalogClient.GetSalon(ctx, req.SalonID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrSalonNotFound) {
			s.logger.Warn("Update: salon id=%d not found", req.SalonID)
			return nil, ErrSalonNotFound
		}
		s.logger.Error("Update: failed to get salon id=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: Update - failed to get salon: %v", ErrInternal, err)
	}

	if !salon.HasOwner(req.UserID) {
		s.logger.Warn("Update: user=%d is not an owner of salon=%d", req.UserID, req.SalonID)
		return nil, ErrAccessDenied
	}

	cfg, err := s.configRepo.GetBySalonID(ctx, req.SalonID)
	if err != nil && !errors.Is(err, configRepo.ErrConfigNotFound) {
		s.logger.Error("Update: repository error for salon=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}
	if cfg == nil {
		cfg = domain.DefaultSalonSlotsConfig(req.SalonID)
	}

	req.ApplyTo(cfg)

	if err := s.validateConfig(cfg); err != nil {
		s.logger.Warn("Update: validation failed for salon=%d: %v", req.SalonID, err)
		return nil, err
	}

	updated, err := s.configRepo.Upsert(ctx, cfg)
	if err != nil {
		s.logger.Error("Update: repository error for salon=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: successfully updated config for salon=%d", req.SalonID)

	// Конфигурация влияет на сетку слотов всех мастеров салона
	s.invalidateSalonCache(ctx, salon.StaffIDs)

	return models.FromDomainConfig(updated), nil
}

// validateConfig проверяет границы значений конфигурации
func (s *Service) validateConfig(cfg *domain.SalonSlotsConfig) error {
	if cfg.SlotGranularityMinutes < domain.MinSlotGranularityMinutes ||
		cfg.SlotGranularityMinutes > domain.MaxSlotGranularityMinutes {
		return fmt.Errorf("%w: slotGranularityMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinSlotGranularityMinutes, domain.MaxSlotGranularityMinutes)
	}

	if cfg.MinBookingNoticeMinutes < domain.MinBookingNoticeMinutes ||
		cfg.MinBookingNoticeMinutes > domain.MaxBookingNoticeMinutes {
		return fmt.Errorf("%w: minBookingNoticeMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinBookingNoticeMinutes, domain.MaxBookingNoticeMinutes)
	}

	if cfg.AdvanceBookingDays < domain.MinAdvanceBookingDays ||
		cfg.AdvanceBookingDays > domain.MaxAdvanceBookingDays {
		return fmt.Errorf("%w: advanceBookingDays must be between %d and %d",
			ErrInvalidInput, domain.MinAdvanceBookingDays, domain.MaxAdvanceBookingDays)
	}

	if cfg.DepositPercent < domain.MinDepositPercent ||
		cfg.DepositPercent > domain.MaxDepositPercent {
		return fmt.Errorf("%w: depositPercent must be between %d and %d",
			ErrInvalidInput, domain.MinDepositPercent, domain.MaxDepositPercent)
	}

	return nil
}

func (s *Service) invalidateSalonCache(ctx context.Context, staffIDs []int64) {
	if s.cache == nil {
		return
	}
	for _, staffID := range staffIDs {
		if err := s.cache.InvalidateStaff(ctx, staffID); err != nil {
			s.logger.Warn("invalidateSalonCache: failed for staff=%d: %v", staffID, err)
		}
	}
}
