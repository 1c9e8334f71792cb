package create_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trimly-app/TRM-BookingService/internal/domain"
	bookingRepo "github.com/trimly-app/TRM-BookingService/internal/infra/storage/booking"
	configRepo "github.com/trimly-app/TRM-BookingService/internal/infra/storage/config"
	scheduleRepo "github.com/trimly-app/TRM-BookingService/internal/infra/storage/schedule"
	catalogClient "github.com/trimly-app/TRM-BookingService/internal/integrations/catalogservice"
	paymentClient "github.com/trimly-app/TRM-BookingService/internal/integrations/paymentservice"
	"github.com/trimly-app/TRM-BookingService/pkg/types"
)

const paymentCurrency = "RUB"

// UseCase use case создания бронирования с защитой от двойного бронирования.
// Проверка доступности слота и вставка выполняются в одной serializable
// транзакции с блокировкой строк мастера на дату: из двух одновременных
// бронирований одного слота успешным будет ровно одно.
type UseCase struct {
	bookingRepo   BookingRepository
	scheduleRepo  ScheduleRepository
	blockedRepo   BlockedSlotRepository
	configRepo    ConfigRepository
	catalogClient CatalogServiceClient
	paymentClient PaymentServiceClient
	txManager     TransactionManager
	cache         AvailabilityInvalidator
	events        EventPublisher
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case.
// cache и events могут быть nil - бронирование работает и без них.
func NewUseCase(
	bookingRepository BookingRepository,
	scheduleRepository ScheduleRepository,
	blockedRepository BlockedSlotRepository,
	configRepository ConfigRepository,
	catalog CatalogServiceClient,
	payment PaymentServiceClient,
	txManager TransactionManager,
	availabilityCache AvailabilityInvalidator,
	events EventPublisher,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepository,
		scheduleRepo:  scheduleRepository,
		blockedRepo:   blockedRepository,
		configRepo:    configRepository,
		catalogClient: catalog,
		paymentClient: payment,
		txManager:     txManager,
		cache:         availabilityCache,
		events:        events,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: client=%d, salon=%d, staff=%d, service=%d, date=%s, start=%s",
		req.ClientID, req.SalonID, req.StaffID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Идемпотентность: если такой запрос уже обработан, возвращаем
	// существующее бронирование вместо создания дубликата
	if req.IdempotencyKey != nil {
		existing, err := uc.bookingRepo.GetByIdempotencyKey(ctx, *req.IdempotencyKey)
		if err != nil && !errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Error("CreateBooking: idempotency lookup failed: %v", err)
			return nil, fmt.Errorf("%w: idempotency lookup failed: %v", ErrInternal, err)
		}
		if existing != nil {
			uc.logger.Info("CreateBooking: idempotency key %q already processed, booking id=%d",
				*req.IdempotencyKey, existing.ID)
			return &Response{Booking: existing, AlreadyExists: true}, nil
		}
	}

	// 3. Салон и услуга из каталога
	salon, err := uc.catalogClient.GetSalon(ctx, req.SalonID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrSalonNotFound) {
			return nil, ErrSalonNotFound
		}
		uc.logger.Error("CreateBooking: failed to get salon id=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: failed to get salon: %v", ErrInternal, err)
	}

	if !salon.HasStaff(req.StaffID) {
		uc.logger.Warn("CreateBooking: staff id=%d not found in salon id=%d", req.StaffID, req.SalonID)
		return nil, ErrStaffNotInSalon
	}

	service, err := uc.getActiveService(ctx, req)
	if err != nil {
		return nil, err
	}

	// 4. Дата и текущее время в часовом поясе салона
	loc, err := time.LoadLocation(salon.Timezone)
	if err != nil {
		uc.logger.Error("CreateBooking: invalid timezone %q for salon id=%d: %v", salon.Timezone, req.SalonID, err)
		return nil, fmt.Errorf("%w: invalid salon timezone: %v", ErrInternal, err)
	}

	date := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, loc)
	now := uc.timeProvider.Now().In(loc)

	// 5. Конфигурация слотов салона (дефолты, если не настроена)
	cfg, err := uc.getConfig(ctx, req.SalonID)
	if err != nil {
		return nil, err
	}

	if err := validateDate(date, now, cfg.AdvanceBookingDays); err != nil {
		uc.logger.Warn("CreateBooking: date validation failed: %v", err)
		return nil, err
	}

	// 6. Слот должен начинаться не раньше now + min_booking_notice
	if err := uc.checkNotice(req, date, now, cfg.MinBookingNoticeMinutes); err != nil {
		return nil, err
	}

	// 7. Суммы по выбранному способу оплаты
	booking, err := uc.buildBooking(req, service, date, cfg.DepositPercent)
	if err != nil {
		return nil, err
	}

	// 8. Авторизация списания до транзакции: отказ платёжного сервиса не
	// должен оставлять за собой заблокированные строки в БД
	if req.PaymentOption != domain.PaymentOptionCash {
		if err := uc.authorizePayment(ctx, req, booking.DepositPaid); err != nil {
			return nil, err
		}
	}

	// 9. Проверка слота и вставка - одна атомарная единица.
	// GetByStaffAndDate внутри транзакции блокирует строки мастера на дату
	// (SELECT ... FOR UPDATE), поэтому параллельное бронирование того же
	// слота дождётся коммита и увидит конфликт.
	var created *domain.Booking
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := uc.checkSlot(txCtx, req, service.DurationMinutes, cfg.SlotGranularityMinutes, date); err != nil {
			return err
		}

		var createErr error
		created, createErr = uc.bookingRepo.Create(txCtx, booking)
		return createErr
	})
	if err != nil {
		return uc.handleCreateError(ctx, req, err)
	}

	uc.logger.Info("CreateBooking: booking id=%d number=%s created for staff=%d at %s %s",
		created.ID, created.Number, req.StaffID, date.Format(domain.DateFormat), req.StartTime)

	// 10. Сброс кеша доступности и событие - вне транзакции, ошибки не фатальны
	uc.invalidateCache(ctx, req.StaffID, date)
	if uc.events != nil {
		uc.events.BookingCreated(ctx, created)
	}

	return &Response{Booking: created}, nil
}

func (uc *UseCase) getActiveService(ctx context.Context, req *Request) (*catalogClient.Service, error) {
	service, err := uc.catalogClient.GetService(ctx, req.SalonID, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	if !service.Active {
		return nil, ErrServiceInactive
	}

	if !service.OfferedByStaff(req.StaffID) {
		return nil, ErrServiceNotOfferedByStaff
	}

	return service, nil
}

func (uc *UseCase) getConfig(ctx context.Context, salonID int64) (*domain.SalonSlotsConfig, error) {
	cfg, err := uc.configRepo.GetBySalonID(ctx, salonID)
	if err != nil && !errors.Is(err, configRepo.ErrConfigNotFound) {
		uc.logger.Error("CreateBooking: failed to get config: %v", err)
		return nil, fmt.Errorf("%w: failed to get config: %v", ErrInternal, err)
	}

	if cfg == nil {
		cfg = domain.DefaultSalonSlotsConfig(salonID)
	}

	return cfg, nil
}

func (uc *UseCase) checkNotice(req *Request, date, now time.Time, minNoticeMinutes int) error {
	y1, m1, d1 := date.Date()
	y2, m2, d2 := now.Date()
	if y1 != y2 || m1 != m2 || d1 != d2 {
		return nil
	}

	minAllowed, err := types.NewTimeString(now).AddMinutes(minNoticeMinutes)
	if err != nil {
		// now + notice уходит за полночь - сегодня бронировать уже поздно
		return ErrTooLateToBook
	}

	if req.StartTime.IsBefore(minAllowed) {
		uc.logger.Warn("CreateBooking: slot %s is before minimal allowed time %s", req.StartTime, minAllowed)
		return ErrTooLateToBook
	}

	return nil
}

// buildBooking собирает доменную модель бронирования до входа в транзакцию.
// Суммы считаются из цены услуги и выбранного способа оплаты:
// full - оплачено целиком, deposit - предоплата deposit_percent от цены,
// cash - оплата на месте, онлайн ничего не списывается.
func (uc *UseCase) buildBooking(req *Request, service *catalogClient.Service, date time.Time, depositPercent int) (*domain.Booking, error) {
	endTime, err := req.StartTime.AddMinutes(service.DurationMinutes)
	if err != nil {
		return nil, fmt.Errorf("%w: service does not fit into the day", ErrInvalidTimeSlot)
	}

	booking := &domain.Booking{
		Number:          generateBookingNumber(),
		ClientID:        req.ClientID,
		SalonID:         req.SalonID,
		StaffID:         req.StaffID,
		ServiceID:       req.ServiceID,
		BookingDate:     date,
		StartTime:       req.StartTime,
		EndTime:         endTime,
		DurationMinutes: service.DurationMinutes,
		Status:          domain.StatusPending,
		ServiceName:     service.Title,
		ServicePrice:    service.Price,
		AmountTotal:     service.Price,
		IdempotencyKey:  req.IdempotencyKey,
		Notes:           req.Notes,
	}

	switch req.PaymentOption {
	case domain.PaymentOptionFull:
		booking.DepositPaid = service.Price
		booking.BalanceRemaining = 0
		booking.PaymentStatus = domain.PaymentStatusPaid
		booking.PaymentMethod = domain.PaymentMethodOnline
	case domain.PaymentOptionDeposit:
		booking.DepositPaid = service.Price * float64(depositPercent) / 100
		booking.BalanceRemaining = service.Price - booking.DepositPaid
		booking.PaymentStatus = domain.PaymentStatusPartial
		booking.PaymentMethod = domain.PaymentMethodOnline
	case domain.PaymentOptionCash:
		booking.DepositPaid = 0
		booking.BalanceRemaining = service.Price
		booking.PaymentStatus = domain.PaymentStatusNone
		booking.PaymentMethod = domain.PaymentMethodCash
	}

	return booking, nil
}

func (uc *UseCase) authorizePayment(ctx context.Context, req *Request, amount float64) error {
	_, err := uc.paymentClient.Authorize(ctx, &paymentClient.AuthorizeRequest{
		ClientID: req.ClientID,
		SalonID:  req.SalonID,
		Amount:   amount,
		Currency: paymentCurrency,
	})
	if err != nil {
		if errors.Is(err, paymentClient.ErrChargeDeclined) {
			uc.logger.Warn("CreateBooking: payment declined for client=%d, amount=%.2f", req.ClientID, amount)
			return ErrPaymentDeclined
		}
		uc.logger.Error("CreateBooking: payment authorization failed: %v", err)
		return fmt.Errorf("%w: payment authorization failed: %v", ErrInternal, err)
	}
	return nil
}

// checkSlot проверяет слот внутри транзакции: рабочее окно, выравнивание по
// сетке, пересечения с существующими бронированиями
func (uc *UseCase) checkSlot(ctx context.Context, req *Request, durationMinutes, granularityMinutes int, date time.Time) error {
	schedule, err := uc.scheduleRepo.GetByStaffID(ctx, req.StaffID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			return ErrScheduleNotFound
		}
		uc.logger.Error("CreateBooking: failed to get schedule for staff id=%d: %v", req.StaffID, err)
		return fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}

	window := schedule.Day(date.Weekday())
	if !window.Available {
		return ErrStaleSchedule
	}

	endTime, err := req.StartTime.AddMinutes(durationMinutes)
	if err != nil {
		return fmt.Errorf("%w: service does not fit into the day", ErrInvalidTimeSlot)
	}

	if req.StartTime.IsBefore(window.Start) || endTime.IsAfter(window.End) {
		uc.logger.Warn("CreateBooking: slot %s-%s is outside working window %s-%s",
			req.StartTime, endTime, window.Start, window.End)
		return ErrStaleSchedule
	}

	startMinutes, err := req.StartTime.Minutes()
	if err != nil {
		return fmt.Errorf("%w: invalid start time", ErrInvalidInput)
	}
	windowStartMinutes, err := window.Start.Minutes()
	if err != nil {
		return fmt.Errorf("%w: invalid schedule window", ErrInternal)
	}
	if (startMinutes-windowStartMinutes)%granularityMinutes != 0 {
		return ErrInvalidTimeSlot
	}

	// Ручные блокировки мастера закрывают слот так же, как занятые бронирования
	blocked, err := uc.blockedRepo.GetByStaffAndDate(ctx, req.StaffID, date)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get blocked slots: %v", err)
		return fmt.Errorf("%w: failed to get blocked slots: %v", ErrInternal, err)
	}
	for _, b := range blocked {
		if b.Overlaps(req.StartTime, endTime) {
			uc.logger.Warn("CreateBooking: slot %s-%s overlaps blocked interval %s-%s",
				req.StartTime, endTime, b.StartTime, b.EndTime)
			return ErrSlotUnavailable
		}
	}

	// Внутри транзакции этот запрос добавляет FOR UPDATE и блокирует
	// бронирования мастера на дату до конца транзакции
	bookings, err := uc.bookingRepo.GetByStaffAndDate(ctx, req.StaffID, date, true)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get bookings: %v", err)
		return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	for _, existing := range bookings {
		if existing.Overlaps(req.StartTime, endTime) {
			uc.logger.Warn("CreateBooking: slot %s-%s conflicts with booking id=%d (%s-%s)",
				req.StartTime, endTime, existing.ID, existing.StartTime, existing.EndTime)
			return ErrSlotUnavailable
		}
	}

	return nil
}

// handleCreateError обрабатывает ошибку транзакции создания. Вставка с
// дублирующимся ключом идемпотентности означает, что параллельный запрос с
// тем же ключом успел раньше - возвращаем его результат.
func (uc *UseCase) handleCreateError(ctx context.Context, req *Request, err error) (*Response, error) {
	if errors.Is(err, bookingRepo.ErrDuplicateIdempotencyKey) && req.IdempotencyKey != nil {
		existing, lookupErr := uc.bookingRepo.GetByIdempotencyKey(ctx, *req.IdempotencyKey)
		if lookupErr == nil {
			uc.logger.Info("CreateBooking: concurrent request with idempotency key %q won, booking id=%d",
				*req.IdempotencyKey, existing.ID)
			return &Response{Booking: existing, AlreadyExists: true}, nil
		}
		uc.logger.Error("CreateBooking: duplicate idempotency key but lookup failed: %v", lookupErr)
		return nil, fmt.Errorf("%w: idempotency lookup failed: %v", ErrInternal, lookupErr)
	}

	return nil, err
}

func (uc *UseCase) invalidateCache(ctx context.Context, staffID int64, date time.Time) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.InvalidateStaffDate(ctx, staffID, date.Format(domain.DateFormat)); err != nil {
		uc.logger.Warn("CreateBooking: cache invalidation failed: %v", err)
	}
}

// generateBookingNumber генерирует публичный номер бронирования вида BK-7F3A2C91
func generateBookingNumber() string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return "BK-" + fragment
}
