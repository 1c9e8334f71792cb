package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trimly-app/TRM-BookingService/internal/domain"
	catalogClient "github.com/trimly-app/TRM-BookingService/internal/integrations/catalogservice"
	"github.com/trimly-app/TRM-BookingService/internal/service/schedule/models"
	"github.com/trimly-app/TRM-BookingService/pkg/types"
)

// Фейки зависимостей

type txMarkerKey struct{}

// fakeTxManager помечает контекст, чтобы репозитории могли проверить,
// что запись выполнялась внутри Do
type fakeTxManager struct {
	calls int
	err   error
}

func (m *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	return fn(context.WithValue(ctx, txMarkerKey{}, true))
}

func inFakeTx(ctx context.Context) bool {
	v, _ := ctx.Value(txMarkerKey{}).(bool)
	return v
}

type fakeScheduleRepo struct {
	schedule     *domain.StaffSchedule
	upserted     *domain.StaffSchedule
	upsertErr    error
	upsertedInTx bool
}

func (f *fakeScheduleRepo) GetByStaffID(_ context.Context, _ int64) (*domain.StaffSchedule, error) {
	return f.schedule, nil
}

func (f *fakeScheduleRepo) Upsert(ctx context.Context, schedule *domain.StaffSchedule) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = schedule
	f.upsertedInTx = inFakeTx(ctx)
	return nil
}

type fakeBlockedRepo struct {
	blocked     []*domain.BlockedSlot
	blockedInTx bool
	unblocked   []types.TimeString
}

func (f *fakeBlockedRepo) GetByStaffAndDate(_ context.Context, staffID int64, _ time.Time) ([]*domain.BlockedSlot, error) {
	result := make([]*domain.BlockedSlot, 0, len(f.blocked))
	for _, b := range f.blocked {
		if b.StaffID == staffID {
			result = append(result, b)
		}
	}
	return result, nil
}

func (f *fakeBlockedRepo) Block(ctx context.Context, slots []*domain.BlockedSlot) error {
	f.blockedInTx = inFakeTx(ctx)
	for _, slot := range slots {
		exists := false
		for _, b := range f.blocked {
			if b.StaffID == slot.StaffID && b.StartTime == slot.StartTime {
				exists = true
				break
			}
		}
		if !exists {
			f.blocked = append(f.blocked, slot)
		}
	}
	return nil
}

func (f *fakeBlockedRepo) Unblock(_ context.Context, staffID int64, _ time.Time, starts []types.TimeString) error {
	f.unblocked = starts
	kept := f.blocked[:0]
	for _, b := range f.blocked {
		remove := false
		if b.StaffID == staffID {
			for _, start := range starts {
				if b.StartTime == start {
					remove = true
					break
				}
			}
		}
		if !remove {
			kept = append(kept, b)
		}
	}
	f.blocked = kept
	return nil
}

type fakeConfigRepo struct {
	cfg *domain.SalonSlotsConfig
}

func (f *fakeConfigRepo) GetBySalonID(_ context.Context, _ int64) (*domain.SalonSlotsConfig, error) {
	return f.cfg, nil
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
	staffCalls     []int64
	staffDateCalls []string
}

func (f *fakeInvalidator) InvalidateStaff(_ context.Context, staffID int64) error {
	f.staffCalls = append(f.staffCalls, staffID)
	return nil
}

func (f *fakeInvalidator) InvalidateStaffDate(_ context.Context, _ int64, date string) error {
	f.staffDateCalls = append(f.staffDateCalls, date)
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

const (
	staffID = int64(2)
	ownerID = int64(100)
	otherID = int64(55)
)

type fixture struct {
	scheduleRepo *fakeScheduleRepo
	blockedRepo  *fakeBlockedRepo
	configRepo   *fakeConfigRepo
	catalog      *fakeCatalog
	txManager    *fakeTxManager
	invalidator  *fakeInvalidator
	svc          *Service
}

func newFixture() *fixture {
	f := &fixture{
		scheduleRepo: &fakeScheduleRepo{},
		blockedRepo:  &fakeBlockedRepo{},
		configRepo:   &fakeConfigRepo{cfg: domain.DefaultSalonSlotsConfig(1)},
		catalog: &fakeCatalog{
			salon: &catalogClient.Salon{
				ID:       1,
				Timezone: "UTC",
				StaffIDs: []int64{staffID},
				OwnerIDs: []int64{ownerID},
			},
		},
		txManager:   &fakeTxManager{},
		invalidator: &fakeInvalidator{},
	}
	f.svc = NewService(
		f.scheduleRepo, f.blockedRepo, f.configRepo,
		f.catalog, f.txManager, f.invalidator,
		nopLogger{},
	)
	return f
}

func updateRequest(userID int64) *models.UpdateScheduleRequest {
	return &models.UpdateScheduleRequest{
		UserID:  userID,
		SalonID: 1,
		StaffID: staffID,
		Days: map[string]models.DayWindowRequest{
			"monday": {Start: "09:00", End: "18:00", Available: true},
		},
	}
}

func blockRequest(userID int64, slots ...string) *models.BlockSlotsRequest {
	return &models.BlockSlotsRequest{
		UserID:  userID,
		SalonID: 1,
		StaffID: staffID,
		Date:    time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
		Slots:   slots,
	}
}

// Update

func TestUpdate_RunsUpsertInTransaction(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.Update(context.Background(), updateRequest(staffID))
	require.NoError(t, err)
	require.NotNil(t, resp)

	// Семь строк недели пишутся одной атомарной единицей
	assert.Equal(t, 1, f.txManager.calls)
	require.NotNil(t, f.scheduleRepo.upserted)
	assert.True(t, f.scheduleRepo.upsertedInTx)
	assert.Equal(t, []int64{staffID}, f.invalidator.staffCalls)
}

func TestUpdate_UpsertFailureLeavesNoPartialWrite(t *testing.T) {
	f := newFixture()
	f.scheduleRepo.upsertErr = errors.New("connection reset")

	_, err := f.svc.Update(context.Background(), updateRequest(staffID))
	assert.ErrorIs(t, err, ErrInternal)

	assert.Nil(t, f.scheduleRepo.upserted)
	assert.Empty(t, f.invalidator.staffCalls)
}

func TestUpdate_AccessDeniedForStranger(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Update(context.Background(), updateRequest(otherID))
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Equal(t, 0, f.txManager.calls)
}

// BlockSlots / UnblockSlots

func TestBlockSlots_ByStaff(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.BlockSlots(context.Background(), blockRequest(staffID, "10:00", "10:30"))
	require.NoError(t, err)

	// Ширина блокировки равна шагу сетки (30 минут по умолчанию)
	require.Len(t, resp.Slots, 2)
	assert.Equal(t, "10:00", resp.Slots[0].Start)
	assert.Equal(t, "10:30", resp.Slots[0].End)
	assert.Equal(t, "10:30", resp.Slots[1].Start)
	assert.Equal(t, "11:00", resp.Slots[1].End)

	assert.True(t, f.blockedRepo.blockedInTx)
	assert.Equal(t, []string{"2026-03-16"}, f.invalidator.staffDateCalls)
}

func TestBlockSlots_ByOwner(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.BlockSlots(context.Background(), blockRequest(ownerID, "12:00"))
	require.NoError(t, err)
	require.Len(t, resp.Slots, 1)
}

func TestBlockSlots_RepeatedBlockIsIdempotent(t *testing.T) {
	f := newFixture()

	_, err := f.svc.BlockSlots(context.Background(), blockRequest(staffID, "10:00"))
	require.NoError(t, err)

	resp, err := f.svc.BlockSlots(context.Background(), blockRequest(staffID, "10:00"))
	require.NoError(t, err)
	require.Len(t, resp.Slots, 1)
}

func TestBlockSlots_AccessDeniedForStranger(t *testing.T) {
	f := newFixture()

	_, err := f.svc.BlockSlots(context.Background(), blockRequest(otherID, "10:00"))
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Empty(t, f.blockedRepo.blocked)
}

func TestBlockSlots_InvalidTime(t *testing.T) {
	f := newFixture()

	_, err := f.svc.BlockSlots(context.Background(), blockRequest(staffID, "25:00"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBlockSlots_EmptySlots(t *testing.T) {
	f := newFixture()

	_, err := f.svc.BlockSlots(context.Background(), blockRequest(staffID))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBlockSlots_SlotCrossingMidnight(t *testing.T) {
	f := newFixture()

	// 23:45 + 30 минут уходит за полночь
	_, err := f.svc.BlockSlots(context.Background(), blockRequest(staffID, "23:45"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUnblockSlots_RemovesBlock(t *testing.T) {
	f := newFixture()

	_, err := f.svc.BlockSlots(context.Background(), blockRequest(staffID, "10:00", "11:00"))
	require.NoError(t, err)
	f.invalidator.staffDateCalls = nil

	resp, err := f.svc.UnblockSlots(context.Background(), blockRequest(staffID, "10:00"))
	require.NoError(t, err)

	require.Len(t, resp.Slots, 1)
	assert.Equal(t, "11:00", resp.Slots[0].Start)
	assert.Equal(t, []types.TimeString{"10:00"}, f.blockedRepo.unblocked)
	assert.Equal(t, []string{"2026-03-16"}, f.invalidator.staffDateCalls)
}

func TestUnblockSlots_UnknownTimeIsNoop(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.UnblockSlots(context.Background(), blockRequest(staffID, "09:00"))
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestUnblockSlots_SalonNotFound(t *testing.T) {
	f := newFixture()
	f.catalog.salon = nil

	_, err := f.svc.UnblockSlots(context.Background(), blockRequest(staffID, "10:00"))
	assert.ErrorIs(t, err, ErrSalonNotFound)
}
