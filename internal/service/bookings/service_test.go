package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trimly-app/TRM-BookingService/internal/domain"
	bookingRepo "github.com/trimly-app/TRM-BookingService/internal/infra/storage/booking"
	catalogClient "github.com/trimly-app/TRM-BookingService/internal/integrations/catalogservice"
	"github.com/trimly-app/TRM-BookingService/internal/service/bookings/models"
)

// Фейки зависимостей

type fakeBookingRepo struct {
	byID map[int64]*domain.Booking

	cancelledID     int64
	cancelReason    string
	updatedID       int64
	updatedStatus   domain.BookingStatus
	clientBookings  []*domain.Booking
	lastStatusQuery *domain.BookingStatus
	lastFilter      domain.SalonBookingsFilter
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if b, ok := f.byID[id]; ok {
		return b, nil
	}
	return nil, bookingRepo.ErrBookingNotFound
}

func (f *fakeBookingRepo) GetByClientID(_ context.Context, _ int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	f.lastStatusQuery = status
	return f.clientBookings, nil
}

func (f *fakeBookingRepo) GetBySalonWithFilter(_ context.Context, filter domain.SalonBookingsFilter) ([]*domain.Booking, error) {
	f.lastFilter = filter
	return f.clientBookings, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, id int64, status domain.BookingStatus) error {
	if _, ok := f.byID[id]; !ok {
		return bookingRepo.ErrBookingNotFound
	}
	f.updatedID = id
	f.updatedStatus = status
	return nil
}

func (f *fakeBookingRepo) Cancel(_ context.Context, id int64, reason string) error {
	if _, ok := f.byID[id]; !ok {
		return bookingRepo.ErrBookingNotFound
	}
	f.cancelledID = id
	f.cancelReason = reason
	return nil
}

type fakeCatalog struct {
	salon *catalogClient.Salon
}

func (f *fakeCatalog) GetSalon(_ context.Context, _ int64) (*catalogClient.Salon, error) {
	if f.salon == nil {
		return nil, catalogClient.ErrSalonNotFound
	}
	return f.salon, nil
}

type fakeInvalidator struct {
	calls []string
}

func (f *fakeInvalidator) InvalidateStaffDate(_ context.Context, _ int64, date string) error {
	f.calls = append(f.calls, date)
	return nil
}

type fakeEvents struct {
	cancelled     []*domain.Booking
	statusChanged []*domain.Booking
}

func (f *fakeEvents) BookingCancelled(_ context.Context, booking *domain.Booking) {
	f.cancelled = append(f.cancelled, booking)
}

func (f *fakeEvents) BookingStatusChanged(_ context.Context, booking *domain.Booking) {
	f.statusChanged = append(f.statusChanged, booking)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

const (
	clientID = int64(7)
	ownerID  = int64(100)
	otherID  = int64(55)
)

func pendingBooking() *domain.Booking {
	return &domain.Booking{
		ID:          42,
		Number:      "BK-7F3A2C91",
		ClientID:    clientID,
		SalonID:     1,
		StaffID:     2,
		ServiceID:   3,
		BookingDate: time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
		StartTime:   "10:00",
		EndTime:     "11:00",
		Status:      domain.StatusPending,
	}
}

type fixture struct {
	repo        *fakeBookingRepo
	catalog     *fakeCatalog
	invalidator *fakeInvalidator
	events      *fakeEvents
	svc         *Service
}

func newFixture(booking *domain.Booking) *fixture {
	f := &fixture{
		repo:        &fakeBookingRepo{byID: map[int64]*domain.Booking{}},
		catalog:     &fakeCatalog{salon: &catalogClient.Salon{ID: 1, OwnerIDs: []int64{ownerID}, StaffIDs: []int64{2}}},
		invalidator: &fakeInvalidator{},
		events:      &fakeEvents{},
	}
	if booking != nil {
		f.repo.byID[booking.ID] = booking
	}
	f.svc = NewService(f.repo, f.catalog, f.invalidator, f.events, nopLogger{})
	return f
}

func TestGetByID_OwnBooking(t *testing.T) {
	f := newFixture(pendingBooking())

	resp, err := f.svc.GetByID(context.Background(), 42, clientID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, "BK-7F3A2C91", resp.Number)
	assert.Equal(t, "pending", resp.Status)
}

func TestGetByID_SalonOwner(t *testing.T) {
	f := newFixture(pendingBooking())

	_, err := f.svc.GetByID(context.Background(), 42, ownerID)
	require.NoError(t, err)
}

func TestGetByID_ForeignUser(t *testing.T) {
	f := newFixture(pendingBooking())

	_, err := f.svc.GetByID(context.Background(), 42, otherID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetByID_NotFound(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.GetByID(context.Background(), 42, clientID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetClientBookings_StatusFilter(t *testing.T) {
	f := newFixture(nil)
	f.repo.clientBookings = []*domain.Booking{pendingBooking()}

	status := "pending"
	resp, err := f.svc.GetClientBookings(context.Background(), &models.GetClientBookingsRequest{
		ClientID: clientID,
		Status:   &status,
	})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	require.NotNil(t, f.repo.lastStatusQuery)
	assert.Equal(t, domain.StatusPending, *f.repo.lastStatusQuery)
}

func TestGetClientBookings_InvalidStatus(t *testing.T) {
	f := newFixture(nil)

	status := "teleported"
	_, err := f.svc.GetClientBookings(context.Background(), &models.GetClientBookingsRequest{
		ClientID: clientID,
		Status:   &status,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetSalonBookings_OwnerOnly(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.GetSalonBookings(context.Background(), &models.GetSalonBookingsRequest{
		UserID:  otherID,
		SalonID: 1,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err := f.svc.GetSalonBookings(context.Background(), &models.GetSalonBookingsRequest{
		UserID:  ownerID,
		SalonID: 1,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Bookings)
	assert.Equal(t, int64(1), f.repo.lastFilter.SalonID)
}

func TestCancel_ByClient(t *testing.T) {
	f := newFixture(pendingBooking())

	err := f.svc.Cancel(context.Background(), 42, &models.CancelBookingRequest{
		UserID:             clientID,
		CancellationReason: "передумал",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), f.repo.cancelledID)
	assert.Equal(t, "передумал", f.repo.cancelReason)

	// Отмена освобождает слот: кеш сброшен, событие опубликовано
	assert.Equal(t, []string{"2026-03-16"}, f.invalidator.calls)
	require.Len(t, f.events.cancelled, 1)
	assert.Equal(t, domain.StatusCancelled, f.events.cancelled[0].Status)
}

func TestCancel_ByOwner(t *testing.T) {
	f := newFixture(pendingBooking())

	err := f.svc.Cancel(context.Background(), 42, &models.CancelBookingRequest{UserID: ownerID})
	require.NoError(t, err)
	assert.Equal(t, int64(42), f.repo.cancelledID)
}

func TestCancel_ForeignUser(t *testing.T) {
	f := newFixture(pendingBooking())

	err := f.svc.Cancel(context.Background(), 42, &models.CancelBookingRequest{UserID: otherID})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Zero(t, f.repo.cancelledID)
}

func TestCancel_CompletedBooking(t *testing.T) {
	booking := pendingBooking()
	booking.Status = domain.StatusCompleted
	f := newFixture(booking)

	err := f.svc.Cancel(context.Background(), 42, &models.CancelBookingRequest{UserID: clientID})
	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestUpdateStatus_PendingToConfirmed(t *testing.T) {
	f := newFixture(pendingBooking())

	err := f.svc.UpdateStatus(context.Background(), 42, &models.UpdateStatusRequest{
		UserID: ownerID,
		Status: "confirmed",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusConfirmed, f.repo.updatedStatus)
	// Подтверждение не освобождает слот - кеш не трогаем
	assert.Empty(t, f.invalidator.calls)
	require.Len(t, f.events.statusChanged, 1)
	assert.Equal(t, domain.StatusConfirmed, f.events.statusChanged[0].Status)
}

func TestUpdateStatus_CancelReleasesSlot(t *testing.T) {
	f := newFixture(pendingBooking())

	err := f.svc.UpdateStatus(context.Background(), 42, &models.UpdateStatusRequest{
		UserID: ownerID,
		Status: "cancelled",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"2026-03-16"}, f.invalidator.calls)
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	f := newFixture(pendingBooking())

	// pending -> completed минует подтверждение
	err := f.svc.UpdateStatus(context.Background(), 42, &models.UpdateStatusRequest{
		UserID: ownerID,
		Status: "completed",
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Zero(t, f.repo.updatedID)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	f := newFixture(pendingBooking())

	err := f.svc.UpdateStatus(context.Background(), 42, &models.UpdateStatusRequest{
		UserID: ownerID,
		Status: "paused",
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateStatus_NotOwner(t *testing.T) {
	f := newFixture(pendingBooking())

	err := f.svc.UpdateStatus(context.Background(), 42, &models.UpdateStatusRequest{
		UserID: clientID,
		Status: "confirmed",
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}
