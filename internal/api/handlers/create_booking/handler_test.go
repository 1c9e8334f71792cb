package create_booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trimly-app/TRM-BookingService/internal/api/middleware"
	"github.com/trimly-app/TRM-BookingService/internal/domain"
	createBooking "github.com/trimly-app/TRM-BookingService/internal/usecase/create_booking"
)

type fakeUseCase struct {
	resp    *createBooking.Response
	err     error
	lastReq *createBooking.Request
}

func (f *fakeUseCase) Execute(_ context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func sampleBooking() *domain.Booking {
	return &domain.Booking{
		ID:               42,
		Number:           "BK-7F3A2C91",
		ClientID:         7,
		SalonID:          1,
		StaffID:          2,
		ServiceID:        3,
		BookingDate:      time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
		StartTime:        "10:00",
		EndTime:          "11:00",
		DurationMinutes:  60,
		Status:           domain.StatusPending,
		ServiceName:      "Стрижка",
		ServicePrice:     2000,
		AmountTotal:      2000,
		DepositPaid:      1000,
		BalanceRemaining: 1000,
		PaymentStatus:    domain.PaymentStatusPartial,
		PaymentMethod:    domain.PaymentMethodOnline,
	}
}

const validBody = `{"salonId":1,"staffId":2,"serviceId":3,"bookingDate":"2026-03-16","startTime":"10:00","paymentOption":"deposit"}`

func doRequest(t *testing.T, uc *fakeUseCase, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	handler := middleware.Auth(http.HandlerFunc(NewHandler(uc, nopLogger{}).Handle))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set("X-User-ID", "7")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandle_Created(t *testing.T) {
	uc := &fakeUseCase{resp: &createBooking.Response{Booking: sampleBooking()}}

	rec := doRequest(t, uc, validBody, nil)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, "BK-7F3A2C91", resp.Number)
	assert.Equal(t, "2026-03-16", resp.BookingDate)
	assert.Equal(t, "10:00", resp.StartTime)
	assert.Equal(t, "11:00", resp.EndTime)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, 1000.0, resp.DepositPaid)

	// ClientID взят из заголовка аутентификации
	require.NotNil(t, uc.lastReq)
	assert.Equal(t, int64(7), uc.lastReq.ClientID)
	assert.Equal(t, domain.PaymentOptionDeposit, uc.lastReq.PaymentOption)
	assert.Nil(t, uc.lastReq.IdempotencyKey)
}

func TestHandle_IdempotentReplayReturns200(t *testing.T) {
	uc := &fakeUseCase{resp: &createBooking.Response{Booking: sampleBooking(), AlreadyExists: true}}

	rec := doRequest(t, uc, validBody, map[string]string{"Idempotency-Key": "req-abc-123"})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, uc.lastReq.IdempotencyKey)
	assert.Equal(t, "req-abc-123", *uc.lastReq.IdempotencyKey)
}

func TestHandle_DefaultPaymentOption(t *testing.T) {
	uc := &fakeUseCase{resp: &createBooking.Response{Booking: sampleBooking()}}

	body := `{"salonId":1,"staffId":2,"serviceId":3,"bookingDate":"2026-03-16","startTime":"10:00"}`
	rec := doRequest(t, uc, body, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, domain.PaymentOptionDeposit, uc.lastReq.PaymentOption)
}

func TestHandle_MissingAuthHeader(t *testing.T) {
	uc := &fakeUseCase{}
	handler := middleware.Auth(http.HandlerFunc(NewHandler(uc, nopLogger{}).Handle))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(validBody))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, uc.lastReq)
}

func TestHandle_MalformedBody(t *testing.T) {
	uc := &fakeUseCase{}

	rec := doRequest(t, uc, `{"salonId":`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, uc.lastReq)
}

func TestHandle_BadDateFormat(t *testing.T) {
	uc := &fakeUseCase{}

	body := `{"salonId":1,"staffId":2,"serviceId":3,"bookingDate":"16.03.2026","startTime":"10:00"}`
	rec := doRequest(t, uc, body, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, uc.lastReq)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"slot unavailable", createBooking.ErrSlotUnavailable, http.StatusConflict},
		{"too late to book", createBooking.ErrTooLateToBook, http.StatusConflict},
		{"payment declined", createBooking.ErrPaymentDeclined, http.StatusPaymentRequired},
		{"salon not found", createBooking.ErrSalonNotFound, http.StatusNotFound},
		{"staff not in salon", createBooking.ErrStaffNotInSalon, http.StatusNotFound},
		{"service not found", createBooking.ErrServiceNotFound, http.StatusNotFound},
		{"schedule not found", createBooking.ErrScheduleNotFound, http.StatusNotFound},
		{"service inactive", createBooking.ErrServiceInactive, http.StatusBadRequest},
		{"stale schedule", createBooking.ErrStaleSchedule, http.StatusBadRequest},
		{"invalid time slot", createBooking.ErrInvalidTimeSlot, http.StatusBadRequest},
		{"invalid date", createBooking.ErrInvalidDate, http.StatusBadRequest},
		{"date too far", createBooking.ErrDateTooFarInFuture, http.StatusBadRequest},
		{"internal", createBooking.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeUseCase{err: tt.err}
			rec := doRequest(t, uc, validBody, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
