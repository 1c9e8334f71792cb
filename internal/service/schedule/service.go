package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trimly-app/TRM-BookingService/internal/domain"
	configRepo "github.com/trimly-app/TRM-BookingService/internal/infra/storage/config"
	scheduleRepo "github.com/trimly-app/TRM-BookingService/internal/infra/storage/schedule"
	catalogClient "github.com/trimly-app/TRM-BookingService/internal/integrations/catalogservice"
	"github.com/trimly-app/TRM-BookingService/internal/service/schedule/models"
	"github.com/trimly-app/TRM-BookingService/pkg/types"
)

// Service сервис для работы с расписаниями мастеров и ручными блокировками слотов
type Service struct {
	scheduleRepo  ScheduleRepository
	blockedRepo   BlockedSlotRepository
	configRepo    ConfigRepository
	catalogClient CatalogServiceClient
	txManager     TransactionManager
	cache         AvailabilityInvalidator
	logger        Logger
}

// NewService создает новый экземпляр сервиса расписаний.
// cache может быть nil.
func NewService(
	scheduleRepository ScheduleRepository,
	blockedRepository BlockedSlotRepository,
	configRepository ConfigRepository,
	catalog CatalogServiceClient,
	txManager TransactionManager,
	cache AvailabilityInvalidator,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo:  scheduleRepository,
		blockedRepo:   blockedRepository,
		configRepo:    configRepository,
		catalogClient: catalog,
		txManager:     txManager,
		cache:         cache,
		logger:        logger,
	}
}

// Get получает расписание мастера
// Публичный метод - расписание видят все клиенты
func (s *Service) Get(ctx context.Context, staffID int64) (*models.ScheduleResponse, error) {
	s.logger.Info("Get: fetching schedule for staff=%d", staffID)

	schedule, err := s.scheduleRepo.GetByStaffID(ctx, staffID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			s.logger.Warn("Get: schedule not found for staff=%d", staffID)
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("Get: repository error for staff=%d: %v", staffID, err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSchedule(schedule), nil
}

// Update устанавливает расписание мастера целиком (все семь дней).
// Доступно самому мастеру и владельцам салона.
// Семь строк недели пишутся в одной транзакции: частично обновлённой
// недели после сбоя не остаётся.
// После обновления сбрасывается кеш доступности мастера: старые слоты
// могли исчезнуть, новые - появиться.
func (s *Service) Update(ctx context.Context, req *models.UpdateScheduleRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("Update: updating schedule for staff=%d in salon=%d by user=%d",
		req.StaffID, req.SalonID, req.UserID)

	if err := s.authorizeStaffChange(ctx, "Update", req.SalonID, req.StaffID, req.UserID); err != nil {
		return nil, err
	}

	schedule, err := req.ToDomainSchedule()
	if err != nil {
		s.logger.Warn("Update: invalid schedule for staff=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := schedule.Validate(); err != nil {
		s.logger.Warn("Update: schedule validation failed for staff=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		return s.scheduleRepo.Upsert(txCtx, schedule)
	})
	if err != nil {
		s.logger.Error("Update: repository error for staff=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: successfully updated schedule for staff=%d", req.StaffID)

	if s.cache != nil {
		if err := s.cache.InvalidateStaff(ctx, req.StaffID); err != nil {
			s.logger.Warn("Update: cache invalidation failed for staff=%d: %v", req.StaffID, err)
		}
	}

	return models.FromDomainSchedule(schedule), nil
}

// BlockSlots блокирует слоты мастера на дату поверх недельного расписания.
// Ширина блокируемого интервала равна шагу сетки салона. Повторная
// блокировка того же времени не ошибка. Возвращает все блокировки на дату.
func (s *Service) BlockSlots(ctx context.Context, req *models.BlockSlotsRequest) (*models.BlockedSlotsResponse, error) {
	s.logger.Info("BlockSlots: staff=%d, salon=%d, date=%s, slots=%d by user=%d",
		req.StaffID, req.SalonID, req.Date.Format(domain.DateFormat), len(req.Slots), req.UserID)

	if err := s.validateBlockRequest(req); err != nil {
		return nil, err
	}

	if err := s.authorizeStaffChange(ctx, "BlockSlots", req.SalonID, req.StaffID, req.UserID); err != nil {
		return nil, err
	}

	granularity, err := s.slotGranularity(ctx, req.SalonID)
	if err != nil {
		return nil, err
	}

	starts, err := parseSlotStarts(req.Slots)
	if err != nil {
		s.logger.Warn("BlockSlots: invalid slot time for staff=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	blocked := make([]*domain.BlockedSlot, 0, len(starts))
	for _, start := range starts {
		end, err := start.AddMinutes(granularity)
		if err != nil {
			s.logger.Warn("BlockSlots: slot %s does not fit into the day for staff=%d", start, req.StaffID)
			return nil, fmt.Errorf("%w: slot %s does not fit into the day", ErrInvalidInput, start)
		}
		blocked = append(blocked, &domain.BlockedSlot{
			StaffID:   req.StaffID,
			SalonID:   req.SalonID,
			BlockDate: req.Date,
			StartTime: start,
			EndTime:   end,
		})
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		return s.blockedRepo.Block(txCtx, blocked)
	})
	if err != nil {
		s.logger.Error("BlockSlots: repository error for staff=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: BlockSlots - repository error: %v", ErrInternal, err)
	}

	s.invalidateStaffDate(ctx, req.StaffID, req.Date)

	return s.blockedSlotsResponse(ctx, req.StaffID, req.Date)
}

// UnblockSlots снимает блокировки мастера на дату по временам начала.
// Времена без блокировки молча пропускаются. Возвращает оставшиеся блокировки.
func (s *Service) UnblockSlots(ctx context.Context, req *models.BlockSlotsRequest) (*models.BlockedSlotsResponse, error) {
	s.logger.Info("UnblockSlots: staff=%d, salon=%d, date=%s, slots=%d by user=%d",
		req.StaffID, req.SalonID, req.Date.Format(domain.DateFormat), len(req.Slots), req.UserID)

	if err := s.validateBlockRequest(req); err != nil {
		return nil, err
	}

	if err := s.authorizeStaffChange(ctx, "UnblockSlots", req.SalonID, req.StaffID, req.UserID); err != nil {
		return nil, err
	}

	starts, err := parseSlotStarts(req.Slots)
	if err != nil {
		s.logger.Warn("UnblockSlots: invalid slot time for staff=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.blockedRepo.Unblock(ctx, req.StaffID, req.Date, starts); err != nil {
		s.logger.Error("UnblockSlots: repository error for staff=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: UnblockSlots - repository error: %v", ErrInternal, err)
	}

	s.invalidateStaffDate(ctx, req.StaffID, req.Date)

	return s.blockedSlotsResponse(ctx, req.StaffID, req.Date)
}

// authorizeStaffChange проверяет, что мастер работает в салоне и что
// запрос исходит от самого мастера или владельца салона
func (s *Service) authorizeStaffChange(ctx context.Context, op string, salonID, staffID, userID int64) error {
	salon, err := s.catalogClient.GetSalon(ctx, salonID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrSalonNotFound) {
			s.logger.Warn("%s: salon id=%d not found", op, salonID)
			return ErrSalonNotFound
		}
		s.logger.Error("%s: failed to get salon id=%d: %v", op, salonID, err)
		return fmt.Errorf("%w: %s - failed to get salon: %v", ErrInternal, op, err)
	}

	if !salon.HasStaff(staffID) {
		s.logger.Warn("%s: staff id=%d not found in salon id=%d", op, staffID, salonID)
		return ErrStaffNotInSalon
	}

	if userID != staffID && !salon.HasOwner(userID) {
		s.logger.Warn("%s: access denied for user=%d to staff=%d", op, userID, staffID)
		return ErrAccessDenied
	}

	return nil
}

func (s *Service) validateBlockRequest(req *models.BlockSlotsRequest) error {
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if len(req.Slots) == 0 {
		return fmt.Errorf("%w: slots are required", ErrInvalidInput)
	}
	return nil
}

func (s *Service) slotGranularity(ctx context.Context, salonID int64) (int, error) {
	cfg, err := s.configRepo.GetBySalonID(ctx, salonID)
	if err != nil && !errors.Is(err, configRepo.ErrConfigNotFound) {
		s.logger.Error("BlockSlots: failed to get config for salon=%d: %v", salonID, err)
		return 0, fmt.Errorf("%w: failed to get config: %v", ErrInternal, err)
	}
	if cfg == nil {
		cfg = domain.DefaultSalonSlotsConfig(salonID)
	}
	return cfg.SlotGranularityMinutes, nil
}

func (s *Service) invalidateStaffDate(ctx context.Context, staffID int64, date time.Time) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateStaffDate(ctx, staffID, date.Format(domain.DateFormat)); err != nil {
		s.logger.Warn("cache invalidation failed for staff=%d: %v", staffID, err)
	}
}

func (s *Service) blockedSlotsResponse(ctx context.Context, staffID int64, date time.Time) (*models.BlockedSlotsResponse, error) {
	blocked, err := s.blockedRepo.GetByStaffAndDate(ctx, staffID, date)
	if err != nil {
		s.logger.Error("failed to list blocked slots for staff=%d: %v", staffID, err)
		return nil, fmt.Errorf("%w: failed to list blocked slots: %v", ErrInternal, err)
	}
	return models.FromDomainBlockedSlots(staffID, date.Format(domain.DateFormat), blocked), nil
}

func parseSlotStarts(slots []string) ([]types.TimeString, error) {
	starts := make([]types.TimeString, 0, len(slots))
	seen := make(map[types.TimeString]bool, len(slots))
	for _, raw := range slots {
		start, err := types.NewTimeStringFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid slot time %q", raw)
		}
		if seen[start] {
			continue
		}
		seen[start] = true
		starts = append(starts, start)
	}
	return starts, nil
}
