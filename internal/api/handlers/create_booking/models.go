package create_booking

import (
	"time"

	"github.com/trimly-app/TRM-BookingService/internal/domain"
	createBooking "github.com/trimly-app/TRM-BookingService/internal/usecase/create_booking"
	"github.com/trimly-app/TRM-BookingService/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	SalonID       int64   `json:"salonId"`
	StaffID       int64   `json:"staffId"`
	ServiceID     int64   `json:"serviceId"`
	BookingDate   string  `json:"bookingDate"`             // "2026-03-15"
	StartTime     string  `json:"startTime"`               // "10:00"
	PaymentOption string  `json:"paymentOption,omitempty"` // full / deposit / cash
	Notes         *string `json:"notes,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID               int64   `json:"id"`
	Number           string  `json:"number"`
	ClientID         int64   `json:"clientId"`
	SalonID          int64   `json:"salonId"`
	StaffID          int64   `json:"staffId"`
	ServiceID        int64   `json:"serviceId"`
	BookingDate      string  `json:"bookingDate"`
	StartTime        string  `json:"startTime"`
	EndTime          string  `json:"endTime"`
	DurationMinutes  int     `json:"durationMinutes"`
	Status           string  `json:"status"`
	ServiceName      string  `json:"serviceName"`
	ServicePrice     float64 `json:"servicePrice"`
	AmountTotal      float64 `json:"amountTotal"`
	DepositPaid      float64 `json:"depositPaid"`
	BalanceRemaining float64 `json:"balanceRemaining"`
	PaymentStatus    string  `json:"paymentStatus"`
	PaymentMethod    string  `json:"paymentMethod"`
	Notes            *string `json:"notes,omitempty"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// ClientID берётся из контекста аутентификации, ключ идемпотентности -
// из заголовка Idempotency-Key.
func (r *CreateBookingRequest) ToUseCaseRequest(clientID int64, idempotencyKey *string) (*createBooking.Request, error) {
	bookingDate, err := time.Parse(domain.DateFormat, r.BookingDate)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	// Предоплата - способ по умолчанию
	paymentOption := domain.PaymentOption(r.PaymentOption)
	if r.PaymentOption == "" {
		paymentOption = domain.PaymentOptionDeposit
	}

	return &createBooking.Request{
		ClientID:       clientID,
		SalonID:        r.SalonID,
		StaffID:        r.StaffID,
		ServiceID:      r.ServiceID,
		Date:           bookingDate,
		StartTime:      startTime,
		PaymentOption:  paymentOption,
		Notes:          r.Notes,
		IdempotencyKey: idempotencyKey,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	b := resp.Booking
	return &BookingResponse{
		ID:               b.ID,
		Number:           b.Number,
		ClientID:         b.ClientID,
		SalonID:          b.SalonID,
		StaffID:          b.StaffID,
		ServiceID:        b.ServiceID,
		BookingDate:      b.BookingDate.Format(domain.DateFormat),
		StartTime:        b.StartTime.String(),
		EndTime:          b.EndTime.String(),
		DurationMinutes:  b.DurationMinutes,
		Status:           string(b.Status),
		ServiceName:      b.ServiceName,
		ServicePrice:     b.ServicePrice,
		AmountTotal:      b.AmountTotal,
		DepositPaid:      b.DepositPaid,
		BalanceRemaining: b.BalanceRemaining,
		PaymentStatus:    string(b.PaymentStatus),
		PaymentMethod:    string(b.PaymentMethod),
		Notes:            b.Notes,
		CreatedAt:        b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        b.UpdatedAt.Format(time.RFC3339),
	}
}
