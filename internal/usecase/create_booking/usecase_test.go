package create_booking

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trimly-app/TRM-BookingService/internal/domain"
	bookingRepo "github.com/trimly-app/TRM-BookingService/internal/infra/storage/booking"
	catalogClient "github.com/trimly-app/TRM-BookingService/internal/integrations/catalogservice"
	paymentClient "github.com/trimly-app/TRM-BookingService/internal/integrations/paymentservice"
	"github.com/trimly-app/TRM-BookingService/pkg/types"
)

// Фейки зависимостей

// fakeBookingRepo хранит бронирования в памяти. Потокобезопасен: через него
// вместе с serialTxManager проверяется защита от двойного бронирования.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings []*domain.Booking
	nextID   int64
}

func (f *fakeBookingRepo) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if booking.IdempotencyKey != nil {
		for _, b := range f.bookings {
			if b.IdempotencyKey != nil && *b.IdempotencyKey == *booking.IdempotencyKey {
				return nil, bookingRepo.ErrDuplicateIdempotencyKey
			}
		}
	}

	f.nextID++
	stored := *booking
	stored.ID = f.nextID
	stored.CreatedAt = time.Now()
	f.bookings = append(f.bookings, &stored)
	return &stored, nil
}

func (f *fakeBookingRepo) GetByStaffAndDate(_ context.Context, staffID int64, date time.Time, occupyingOnly bool) ([]*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*domain.Booking
	for _, b := range f.bookings {
		if b.StaffID != staffID || !b.BookingDate.Equal(date) {
			continue
		}
		if occupyingOnly && !b.OccupiesSlot() {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

func (f *fakeBookingRepo) GetByIdempotencyKey(_ context.Context, key string) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, b := range f.bookings {
		if b.IdempotencyKey != nil && *b.IdempotencyKey == key {
			return b, nil
		}
	}
	return nil, bookingRepo.ErrBookingNotFound
}

type fakeBlockedRepo struct {
	blocked []*domain.BlockedSlot
	err     error
}

func (f *fakeBlockedRepo) GetByStaffAndDate(_ context.Context, _ int64, _ time.Time) ([]*domain.BlockedSlot, error) {
	return f.blocked, f.err
}

type fakeScheduleRepo struct {
	schedule *domain.StaffSchedule
	err      error
}

func (f *fakeScheduleRepo) GetByStaffID(_ context.Context, _ int64) (*domain.StaffSchedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.schedule, nil
}

type fakeConfigRepo struct {
	cfg *domain.SalonSlotsConfig
}

func (f *fakeConfigRepo) GetBySalonID(_ context.Context, _ int64) (*domain.SalonSlotsConfig, error) {
	return f.cfg, nil
}

type fakeCatalog struct {
	salon   *catalogClient.Salon
	service *catalogClient.Service
}

func (f *fakeCatalog) GetSalon(_ context.Context, _ int64) (*catalogClient.Salon, error) {
	if f.salon == nil {
		return nil, catalogClient.ErrSalonNotFound
	}
	return f.salon, nil
}

func (f *fakeCatalog) GetService(_ context.Context, _, _ int64) (*catalogClient.Service, error) {
	if f.service == nil {
		return nil, catalogClient.ErrServiceNotFound
	}
	return f.service, nil
}

type fakePayment struct {
	mu       sync.Mutex
	declined bool
	calls    int
	amounts  []float64
}

func (f *fakePayment) Authorize(_ context.Context, req *paymentClient.AuthorizeRequest) (*paymentClient.Authorization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.amounts = append(f.amounts, req.Amount)
	if f.declined {
		return nil, paymentClient.ErrChargeDeclined
	}
	return &paymentClient.Authorization{TransactionID: "tx-test"}, nil
}

// serialTxManager выполняет транзакции по одной, как это делает serializable
// изоляция для конфликтующих транзакций
type serialTxManager struct {
	mu sync.Mutex
}

func (m *serialTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type fakeInvalidator struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeInvalidator) InvalidateStaffDate(_ context.Context, _ int64, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, date)
	return nil
}

type fakeEvents struct {
	mu      sync.Mutex
	created []*domain.Booking
}

func (f *fakeEvents) BookingCreated(_ context.Context, booking *domain.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, booking)
}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Типовой набор зависимостей: салон в UTC, услуга 60 минут за 2000,
// мастер работает каждый день 09:00-18:00

func fullWeekSchedule(start, end string) *domain.StaffSchedule {
	schedule := &domain.StaffSchedule{StaffID: 2, SalonID: 1}
	for i := range schedule.Days {
		schedule.Days[i] = domain.DayWindow{
			Start:     types.TimeString(start),
			End:       types.TimeString(end),
			Available: true,
		}
	}
	return schedule
}

type fixture struct {
	bookingRepo  *fakeBookingRepo
	scheduleRepo *fakeScheduleRepo
	blockedRepo  *fakeBlockedRepo
	configRepo   *fakeConfigRepo
	catalog      *fakeCatalog
	payment      *fakePayment
	invalidator  *fakeInvalidator
	events       *fakeEvents
	uc           *UseCase
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		bookingRepo:  &fakeBookingRepo{},
		scheduleRepo: &fakeScheduleRepo{schedule: fullWeekSchedule("09:00", "18:00")},
		blockedRepo:  &fakeBlockedRepo{},
		configRepo:   &fakeConfigRepo{cfg: domain.DefaultSalonSlotsConfig(1)},
		catalog: &fakeCatalog{
			salon: &catalogClient.Salon{
				ID:       1,
				Timezone: "UTC",
				StaffIDs: []int64{2},
				OwnerIDs: []int64{100},
			},
			service: &catalogClient.Service{
				ID:              3,
				SalonID:         1,
				Title:           "Стрижка",
				DurationMinutes: 60,
				Price:           2000,
				Active:          true,
				StaffIDs:        []int64{2},
			},
		},
		payment:     &fakePayment{},
		invalidator: &fakeInvalidator{},
		events:      &fakeEvents{},
	}

	f.uc = NewUseCase(
		f.bookingRepo, f.scheduleRepo, f.blockedRepo, f.configRepo,
		f.catalog, f.payment,
		&serialTxManager{}, f.invalidator, f.events,
		nopLogger{},
	)
	f.uc.timeProvider = fixedTime{now: now}
	return f
}

func validRequest() *Request {
	return &Request{
		ClientID:      7,
		SalonID:       1,
		StaffID:       2,
		ServiceID:     3,
		Date:          time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
		StartTime:     "10:00",
		PaymentOption: domain.PaymentOptionDeposit,
	}
}

func TestExecute_CreatesBooking(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, resp.Booking)
	assert.False(t, resp.AlreadyExists)

	b := resp.Booking
	assert.True(t, strings.HasPrefix(b.Number, "BK-"))
	assert.Len(t, b.Number, 11)
	assert.Equal(t, domain.StatusPending, b.Status)
	assert.Equal(t, types.TimeString("10:00"), b.StartTime)
	assert.Equal(t, types.TimeString("11:00"), b.EndTime)
	assert.Equal(t, 60, b.DurationMinutes)
	assert.Equal(t, "Стрижка", b.ServiceName)

	// Предоплата 50% от 2000
	assert.Equal(t, 2000.0, b.AmountTotal)
	assert.Equal(t, 1000.0, b.DepositPaid)
	assert.Equal(t, 1000.0, b.BalanceRemaining)
	assert.Equal(t, domain.PaymentStatusPartial, b.PaymentStatus)
	assert.Equal(t, domain.PaymentMethodOnline, b.PaymentMethod)

	assert.Equal(t, 1, f.payment.calls)
	assert.Equal(t, []float64{1000}, f.payment.amounts)
	assert.Equal(t, []string{"2026-03-16"}, f.invalidator.calls)
	require.Len(t, f.events.created, 1)
	assert.Equal(t, b.ID, f.events.created[0].ID)
}

func TestExecute_FullPayment(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	req := validRequest()
	req.PaymentOption = domain.PaymentOptionFull

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 2000.0, resp.Booking.DepositPaid)
	assert.Equal(t, 0.0, resp.Booking.BalanceRemaining)
	assert.Equal(t, domain.PaymentStatusPaid, resp.Booking.PaymentStatus)
	assert.Equal(t, []float64{2000}, f.payment.amounts)
}

func TestExecute_CashSkipsPayment(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	req := validRequest()
	req.PaymentOption = domain.PaymentOptionCash

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 0.0, resp.Booking.DepositPaid)
	assert.Equal(t, 2000.0, resp.Booking.BalanceRemaining)
	assert.Equal(t, domain.PaymentStatusNone, resp.Booking.PaymentStatus)
	assert.Equal(t, domain.PaymentMethodCash, resp.Booking.PaymentMethod)
	assert.Equal(t, 0, f.payment.calls)
}

func TestExecute_PaymentDeclined(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	f.payment.declined = true

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrPaymentDeclined)

	// Отклонённый платёж не оставляет бронирования
	assert.Empty(t, f.bookingRepo.bookings)
	assert.Empty(t, f.invalidator.calls)
}

func TestExecute_SlotTaken(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	_, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	// Второй клиент на тот же слот
	req := validRequest()
	req.ClientID = 8
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	require.Len(t, f.bookingRepo.bookings, 1)
}

func TestExecute_OverlappingSlotTaken(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	_, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	// 10:30-11:30 пересекается с 10:00-11:00
	req := validRequest()
	req.ClientID = 8
	req.StartTime = "10:30"
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestExecute_AdjacentSlotAllowed(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	_, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	// 11:00-12:00 граничит с 10:00-11:00 и не конфликтует
	req := validRequest()
	req.ClientID = 8
	req.StartTime = "11:00"
	_, err = f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, f.bookingRepo.bookings, 2)
}

func TestExecute_BlockedSlotRejected(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	// Блокировка 10:30-11:00 пересекается с услугой 10:00-11:00
	f.blockedRepo.blocked = []*domain.BlockedSlot{
		{StaffID: 2, StartTime: "10:30", EndTime: "11:00"},
	}

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	require.Empty(t, f.bookingRepo.bookings)
	assert.Empty(t, f.invalidator.calls)
}

func TestExecute_SlotAdjacentToBlockAllowed(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	// Блокировка 11:00-11:30 граничит с услугой 10:00-11:00 и не мешает
	f.blockedRepo.blocked = []*domain.BlockedSlot{
		{StaffID: 2, StartTime: "11:00", EndTime: "11:30"},
	}

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, resp.Booking)
	require.Len(t, f.bookingRepo.bookings, 1)
}

func TestExecute_ConcurrentSameSlot(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	const attempts = 8
	errs := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(clientID int64) {
			defer wg.Done()
			req := validRequest()
			req.ClientID = clientID
			_, err := f.uc.Execute(context.Background(), req)
			errs <- err
		}(int64(i + 1))
	}
	wg.Wait()
	close(errs)

	var succeeded, conflicted int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		default:
			assert.ErrorIs(t, err, ErrSlotUnavailable)
			conflicted++
		}
	}

	// Из конкурирующих запросов на один слот успешен ровно один
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicted)
	require.Len(t, f.bookingRepo.bookings, 1)
}

func TestExecute_IdempotencyReturnsExisting(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	key := "req-abc-123"

	req := validRequest()
	req.IdempotencyKey = &key
	first, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.AlreadyExists)

	retry := validRequest()
	retry.IdempotencyKey = &key
	second, err := f.uc.Execute(context.Background(), retry)
	require.NoError(t, err)

	assert.True(t, second.AlreadyExists)
	assert.Equal(t, first.Booking.ID, second.Booking.ID)
	require.Len(t, f.bookingRepo.bookings, 1)
	// Повторная авторизация платежа не выполняется
	assert.Equal(t, 1, f.payment.calls)
}

func TestExecute_DayClosed(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	f.scheduleRepo.schedule.Days[time.Monday] = domain.DayWindow{Available: false}

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrStaleSchedule)
}

func TestExecute_OutsideWorkingWindow(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	// 17:30 + 60 минут выходит за конец окна 18:00
	req := validRequest()
	req.StartTime = "17:30"
	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrStaleSchedule)
}

func TestExecute_MisalignedStart(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	// Окно начинается в 09:00, сетка 30 минут: 10:15 не на сетке
	req := validRequest()
	req.StartTime = "10:15"
	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)
}

func TestExecute_TooLateToBook(t *testing.T) {
	// Запрос на сегодня: now 10:30, уведомление 60 минут, слот 11:00 слишком рано
	f := newFixture(time.Date(2026, 3, 16, 10, 30, 0, 0, time.UTC))
	f.configRepo.cfg.MinBookingNoticeMinutes = 60

	req := validRequest()
	req.StartTime = "11:00"
	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrTooLateToBook)

	// А 12:00 уже можно
	req = validRequest()
	req.StartTime = "12:00"
	_, err = f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
}

func TestExecute_PastDate(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC))

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExecute_DateTooFarInFuture(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	f.configRepo.cfg.AdvanceBookingDays = 3

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrDateTooFarInFuture)
}

func TestExecute_SalonNotFound(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	f.catalog.salon = nil

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSalonNotFound)
}

func TestExecute_ServiceDoesNotFitIntoDay(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	f.scheduleRepo.schedule = fullWeekSchedule("09:00", "23:59")

	req := validRequest()
	req.StartTime = "23:30"
	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)
}

func TestValidateRequest(t *testing.T) {
	longNotes := strings.Repeat("ы", domain.MaxNotesLength+1)

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"zero client", func(r *Request) { r.ClientID = 0 }},
		{"negative salon", func(r *Request) { r.SalonID = -1 }},
		{"zero staff", func(r *Request) { r.StaffID = 0 }},
		{"zero service", func(r *Request) { r.ServiceID = 0 }},
		{"zero date", func(r *Request) { r.Date = time.Time{} }},
		{"bad start time", func(r *Request) { r.StartTime = "25:00" }},
		{"bad payment option", func(r *Request) { r.PaymentOption = "crypto" }},
		{"notes too long", func(r *Request) { r.Notes = &longNotes }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			err := validateRequest(req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
