package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trimly-app/TRM-BookingService/internal/domain"
	"github.com/trimly-app/TRM-BookingService/internal/infra/cache"
	scheduleRepo "github.com/trimly-app/TRM-BookingService/internal/infra/storage/schedule"
	configRepo "github.com/trimly-app/TRM-BookingService/internal/infra/storage/config"
	catalogClient "github.com/trimly-app/TRM-BookingService/internal/integrations/catalogservice"
)

// UseCase use case расчёта доступных слотов для бронирования.
// Чистое чтение: не мутирует состояние и безопасен при конкурентных вызовах.
type UseCase struct {
	bookingRepo   BookingRepository
	scheduleRepo  ScheduleRepository
	blockedRepo   BlockedSlotRepository
	configRepo    ConfigRepository
	catalogClient CatalogServiceClient
	cache         AvailabilityCache
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case.
// cache может быть nil - тогда каждый запрос считается заново.
func NewUseCase(
	bookingRepo BookingRepository,
	scheduleRepo ScheduleRepository,
	blockedRepo BlockedSlotRepository,
	configRepo ConfigRepository,
	catalogClient CatalogServiceClient,
	availabilityCache AvailabilityCache,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		scheduleRepo:  scheduleRepo,
		blockedRepo:   blockedRepo,
		configRepo:    configRepo,
		catalogClient: catalogClient,
		cache:         availabilityCache,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: salon=%d, staff=%d, service=%d, date=%s",
		req.SalonID, req.StaffID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем салон: он определяет часовой пояс всех вычислений
	salon, err := uc.catalogClient.GetSalon(ctx, req.SalonID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrSalonNotFound) {
			uc.logger.Warn("GetAvailableSlots: salon id=%d not found", req.SalonID)
			return nil, ErrSalonNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get salon id=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: failed to get salon: %v", ErrInternal, err)
	}

	if !salon.HasStaff(req.StaffID) {
		uc.logger.Warn("GetAvailableSlots: staff id=%d not found in salon id=%d", req.StaffID, req.SalonID)
		return nil, ErrStaffNotInSalon
	}

	// 3. Получаем услугу: из неё берётся длительность слота
	service, err := uc.getActiveService(ctx, req)
	if err != nil {
		return nil, err
	}

	// 4. Приводим дату и текущее время к часовому поясу салона.
	// Никогда не полагаемся на локаль сервера: иначе одинаковые запросы
	// давали бы разные слоты на разных машинах.
	loc, err := time.LoadLocation(salon.Timezone)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: invalid timezone %q for salon id=%d: %v", salon.Timezone, req.SalonID, err)
		return nil, fmt.Errorf("%w: invalid salon timezone: %v", ErrInternal, err)
	}

	date := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, loc)
	now := uc.timeProvider.Now().In(loc)

	// 5. Конфигурация слотов салона (дефолты, если не настроена)
	cfg, err := uc.getConfig(ctx, req.SalonID)
	if err != nil {
		return nil, err
	}

	// 6. Валидация даты с учетом конфигурации
	if err := validateDate(date, now, cfg.AdvanceBookingDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	// 7. Проверяем кеш
	dateKey := date.Format(domain.DateFormat)
	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, req.StaffID, req.ServiceID, dateKey)
		if err != nil {
			// Кеш не должен ломать расчёт - продолжаем без него
			uc.logger.Warn("GetAvailableSlots: cache get failed: %v", err)
		} else if cached != nil {
			uc.logger.Info("GetAvailableSlots: cache hit for staff=%d, service=%d, date=%s",
				req.StaffID, req.ServiceID, dateKey)
			return uc.response(req, date, cached.Slots, cached.Reason), nil
		}
	}

	// 8. Получаем расписание мастера
	schedule, err := uc.scheduleRepo.GetByStaffID(ctx, req.StaffID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			uc.logger.Warn("GetAvailableSlots: schedule not found for staff id=%d", req.StaffID)
			return nil, ErrScheduleNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get schedule for staff id=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}

	// 9. Рабочее окно на запрошенный день недели
	window := schedule.Day(date.Weekday())
	if !window.Available {
		uc.logger.Info("GetAvailableSlots: staff id=%d is not working on %s", req.StaffID, dateKey)
		return uc.cacheAndRespond(ctx, req, date, []domain.AvailableSlot{}, domain.ReasonDayClosed), nil
	}

	// 10. Генерируем кандидатов и фильтруем прошедшее время
	candidates, err := buildCandidateSlots(window, service.DurationMinutes, cfg.SlotGranularityMinutes)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to build candidate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to build candidate slots: %v", ErrInternal, err)
	}
	hadCandidates := len(candidates) > 0

	candidates = filterPastSlots(candidates, date, now, cfg.MinBookingNoticeMinutes)

	// 11. Убираем кандидатов, пересекающихся с ручными блокировками мастера
	blocked, err := uc.blockedRepo.GetByStaffAndDate(ctx, req.StaffID, date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get blocked slots: %v", err)
		return nil, fmt.Errorf("%w: failed to get blocked slots: %v", ErrInternal, err)
	}

	candidates = filterBlockedSlots(candidates, service.DurationMinutes, blocked)

	// 12. Убираем кандидатов, пересекающихся с существующими бронированиями
	bookings, err := uc.bookingRepo.GetByStaffAndDate(ctx, req.StaffID, date, true)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	free := filterConflictingSlots(candidates, service.DurationMinutes, bookings)

	slots := make([]domain.AvailableSlot, len(free))
	for i, start := range free {
		slots[i] = domain.AvailableSlot{
			StartTime:       start,
			DurationMinutes: service.DurationMinutes,
		}
	}

	reason := domain.ReasonNone
	if len(slots) == 0 && hadCandidates {
		reason = domain.ReasonFullyBooked
	}

	uc.logger.Info("GetAvailableSlots: %d slots available for staff=%d, service=%d, date=%s",
		len(slots), req.StaffID, req.ServiceID, dateKey)

	return uc.cacheAndRespond(ctx, req, date, slots, reason), nil
}

func (uc *UseCase) getActiveService(ctx context.Context, req *Request) (*catalogClient.Service, error) {
	service, err := uc.catalogClient.GetService(ctx, req.SalonID, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	if !service.Active {
		uc.logger.Warn("GetAvailableSlots: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceInactive
	}

	if !service.OfferedByStaff(req.StaffID) {
		uc.logger.Warn("GetAvailableSlots: service id=%d not offered by staff id=%d", req.ServiceID, req.StaffID)
		return nil, ErrServiceNotOfferedByStaff
	}

	return service, nil
}

func (uc *UseCase) getConfig(ctx context.Context, salonID int64) (*domain.SalonSlotsConfig, error) {
	cfg, err := uc.configRepo.GetBySalonID(ctx, salonID)
	if err != nil && !errors.Is(err, configRepo.ErrConfigNotFound) {
		uc.logger.Error("GetAvailableSlots: failed to get config: %v", err)
		return nil, fmt.Errorf("%w: failed to get config: %v", ErrInternal, err)
	}

	if cfg == nil {
		cfg = domain.DefaultSalonSlotsConfig(salonID)
		uc.logger.Info("GetAvailableSlots: using default config for salon=%d", salonID)
	}

	return cfg, nil
}

// cacheAndRespond пишет рассчитанный ответ в кеш. Запись может обогнать
// параллельную инвалидацию и оставить устаревший список до истечения TTL;
// создание бронирования перепроверяет слот в транзакции, поэтому такой
// список не приводит к двойному бронированию.
func (uc *UseCase) cacheAndRespond(ctx context.Context, req *Request, date time.Time, slots []domain.AvailableSlot, reason domain.AvailabilityReason) *Response {
	if uc.cache != nil {
		err := uc.cache.Set(ctx, req.StaffID, req.ServiceID, date.Format(domain.DateFormat), &cache.CachedAvailability{
			Slots:  slots,
			Reason: reason,
		})
		if err != nil {
			uc.logger.Warn("GetAvailableSlots: cache set failed: %v", err)
		}
	}
	return uc.response(req, date, slots, reason)
}

func (uc *UseCase) response(req *Request, date time.Time, slots []domain.AvailableSlot, reason domain.AvailabilityReason) *Response {
	return &Response{
		Date:      date,
		SalonID:   req.SalonID,
		StaffID:   req.StaffID,
		ServiceID: req.ServiceID,
		Slots:     slots,
		Reason:    reason,
	}
}
