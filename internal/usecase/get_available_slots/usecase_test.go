package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trimly-app/TRM-BookingService/internal/domain"
	"github.com/trimly-app/TRM-BookingService/internal/infra/cache"
	scheduleRepo "github.com/trimly-app/TRM-BookingService/internal/infra/storage/schedule"
	catalogClient "github.com/trimly-app/TRM-BookingService/internal/integrations/catalogservice"
	"github.com/trimly-app/TRM-BookingService/pkg/types"
)

// Фейки зависимостей

type fakeBookingRepo struct {
	bookings []*domain.Booking
	err      error
}

func (f *fakeBookingRepo) GetByStaffAndDate(_ context.Context, _ int64, _ time.Time, _ bool) ([]*domain.Booking, error) {
	return f.bookings, f.err
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
	err error
}

func (f *fakeConfigRepo) GetBySalonID(_ context.Context, _ int64) (*domain.SalonSlotsConfig, error) {
	if f.err != nil {
		return nil, f.err
	}
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

type fakeCache struct {
	stored map[string]*cache.CachedAvailability
	gets   int
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{stored: make(map[string]*cache.CachedAvailability)}
}

func (f *fakeCache) Get(_ context.Context, _, _ int64, date string) (*cache.CachedAvailability, error) {
	f.gets++
	return f.stored[date], nil
}

func (f *fakeCache) Set(_ context.Context, _, _ int64, date string, value *cache.CachedAvailability) error {
	f.sets++
	f.stored[date] = value
	return nil
}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Типовой набор зависимостей: салон в UTC, услуга 60 минут,
// мастер работает каждый день 08:00-18:00

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
	cache        *fakeCache
	uc           *UseCase
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		bookingRepo:  &fakeBookingRepo{},
		scheduleRepo: &fakeScheduleRepo{schedule: fullWeekSchedule("08:00", "18:00")},
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
		cache: newFakeCache(),
	}

	f.uc = NewUseCase(f.bookingRepo, f.scheduleRepo, f.blockedRepo, f.configRepo, f.catalog, f.cache, nopLogger{})
	f.uc.timeProvider = fixedTime{now: now}
	return f
}

func validRequest() *Request {
	return &Request{
		SalonID:   1,
		StaffID:   2,
		ServiceID: 3,
		Date:      time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), // понедельник
	}
}

func TestExecute_FullDayGrid(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	// 08:00 .. 17:00 с шагом 30 минут
	require.Len(t, resp.Slots, 19)
	assert.Equal(t, "08:00", resp.Slots[0].StartTime.String())
	assert.Equal(t, "17:00", resp.Slots[18].StartTime.String())
	assert.Equal(t, domain.ReasonNone, resp.Reason)

	for _, slot := range resp.Slots {
		assert.Equal(t, 60, slot.DurationMinutes)
	}
}

func TestExecute_ExistingBookingRemovesOverlaps(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	f.bookingRepo.bookings = []*domain.Booking{
		{StartTime: "09:00", EndTime: "10:00", Status: domain.StatusConfirmed},
	}

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	// Бронирование 09:00-10:00 убирает старты 08:30, 09:00 и 09:30
	got := make(map[string]bool)
	for _, slot := range resp.Slots {
		got[slot.StartTime.String()] = true
	}
	assert.True(t, got["08:00"])
	assert.False(t, got["08:30"])
	assert.False(t, got["09:00"])
	assert.False(t, got["09:30"])
	assert.True(t, got["10:00"])
	require.Len(t, resp.Slots, 16)
}

func TestExecute_BlockedSlotRemovesOverlaps(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	// Блокировка 10:00-10:30 убирает старты 09:30 и 10:00 (услуга 60 минут)
	f.blockedRepo.blocked = []*domain.BlockedSlot{
		{StaffID: 2, StartTime: "10:00", EndTime: "10:30"},
	}

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	got := make(map[string]bool)
	for _, slot := range resp.Slots {
		got[slot.StartTime.String()] = true
	}
	assert.True(t, got["09:00"])
	assert.False(t, got["09:30"])
	assert.False(t, got["10:00"])
	assert.True(t, got["10:30"])
	assert.Len(t, resp.Slots, 17)
}

func TestExecute_BlockedWholeDayFullyBooked(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	f.scheduleRepo.schedule = fullWeekSchedule("09:00", "11:00")
	f.blockedRepo.blocked = []*domain.BlockedSlot{
		{StaffID: 2, StartTime: "09:00", EndTime: "11:00"},
	}

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Empty(t, resp.Slots)
	assert.Equal(t, domain.ReasonFullyBooked, resp.Reason)
}

func TestExecute_DayClosed(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	f.scheduleRepo.schedule.Days[time.Monday] = domain.DayWindow{Available: false}

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Empty(t, resp.Slots)
	assert.Equal(t, domain.ReasonDayClosed, resp.Reason)
}

func TestExecute_FullyBooked(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	// Одно бронирование перекрывает всё короткое окно
	f.scheduleRepo.schedule = fullWeekSchedule("09:00", "11:00")
	f.bookingRepo.bookings = []*domain.Booking{
		{StartTime: "09:00", EndTime: "11:00", Status: domain.StatusConfirmed},
	}

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Empty(t, resp.Slots)
	assert.Equal(t, domain.ReasonFullyBooked, resp.Reason)
}

func TestExecute_ScheduleNotFound(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	f.scheduleRepo.err = scheduleRepo.ErrScheduleNotFound

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}

func TestExecute_SalonNotFound(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	f.catalog.salon = nil

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSalonNotFound)
}

func TestExecute_StaffNotInSalon(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	f.catalog.salon.StaffIDs = []int64{99}

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrStaffNotInSalon)
}

func TestExecute_ServiceInactive(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	f.catalog.service.Active = false

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrServiceInactive)
}

func TestExecute_ServiceNotOfferedByStaff(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	f.catalog.service.StaffIDs = []int64{99}

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrServiceNotOfferedByStaff)
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

func TestExecute_TodayFiltersPastStarts(t *testing.T) {
	// Сегодня 16 марта, 13:15: старты до 13:15 включительно недоступны
	f := newFixture(time.Date(2026, 3, 16, 13, 15, 0, 0, time.UTC))

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	require.NotEmpty(t, resp.Slots)
	assert.Equal(t, "13:30", resp.Slots[0].StartTime.String())
}

func TestExecute_Deterministic(t *testing.T) {
	// Два одинаковых запроса с одинаковым состоянием дают одинаковый результат
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	first, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	second, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, first.Slots, second.Slots)
}

func TestExecute_CacheHitSkipsComputation(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	first, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.sets)

	second, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, first.Slots, second.Slots)
	// Второй запрос обслужен из кеша, повторного Set не было
	assert.Equal(t, 1, f.cache.sets)
	assert.Equal(t, 2, f.cache.gets)
}

func TestExecute_DefaultConfigWhenMissing(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	f.configRepo.cfg = nil

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	require.Len(t, resp.Slots, 19)
}
