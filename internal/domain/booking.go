package domain

import (
	"time"

	"github.com/trimly-app/TRM-BookingService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// PaymentOption способ оплаты, выбранный клиентом при бронировании
type PaymentOption string

const (
	PaymentOptionFull    PaymentOption = "full"
	PaymentOptionDeposit PaymentOption = "deposit"
	PaymentOptionCash    PaymentOption = "cash"
)

// PaymentStatus состояние оплаты бронирования
type PaymentStatus string

const (
	PaymentStatusNone    PaymentStatus = "none"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// PaymentMethod канал, через который проходит оплата
type PaymentMethod string

const (
	PaymentMethodOnline PaymentMethod = "online"
	PaymentMethodCash   PaymentMethod = "cash"
)

// Booking represents a reserved time interval for a staff member.
// StartTime/EndTime are denormalized at creation from the service duration,
// so overlap checks never re-read the service catalog.
type Booking struct {
	ID        int64
	Number    string // Публичный номер бронирования (BK-XXXXXXXX)
	ClientID  int64
	SalonID   int64
	StaffID   int64
	ServiceID int64

	BookingDate     time.Time
	StartTime       types.TimeString
	EndTime         types.TimeString
	DurationMinutes int
	Status          BookingStatus

	// Denormalized data for history
	ServiceName  string
	ServicePrice float64

	AmountTotal      float64
	DepositPaid      float64
	BalanceRemaining float64
	PaymentStatus    PaymentStatus
	PaymentMethod    PaymentMethod

	IdempotencyKey *string
	Notes          *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OccupiesSlot returns true if the booking still consumes its time interval.
// Cancelled bookings release the interval back to availability.
func (b *Booking) OccupiesSlot() bool {
	return b.Status != StatusCancelled
}

// CanBeCancelled returns true if the booking can still be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanTransitionTo validates an owner/staff driven status transition
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	switch b.Status {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}

// Overlaps reports whether the booking interval intersects [start, end).
// Intervals are half-open: bookings that merely touch do not overlap.
func (b *Booking) Overlaps(start, end types.TimeString) bool {
	return b.StartTime.IsBefore(end) && b.EndTime.IsAfter(start)
}

// SalonBookingsFilter фильтр для получения бронирований салона
type SalonBookingsFilter struct {
	SalonID         int64          // Обязательный параметр
	StaffID         *int64         // Фильтр по мастеру (опционально)
	StartDate       *time.Time     // Начало периода (опционально)
	EndDate         *time.Time     // Конец периода (опционально)
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли отмененные бронирования
}
