package domain

import "errors"

// Default configuration values
const (
	DefaultSlotGranularityMinutes  = 30
	DefaultMinBookingNoticeMinutes = 0
	DefaultAdvanceBookingDays      = 0 // 0 = unlimited
	DefaultDepositPercent          = 50
)

// Business validation constants
const (
	MinServiceDurationMinutes   = 15
	MaxServiceDurationMinutes   = 480 // 8 hours
	MinSlotGranularityMinutes   = 5
	MaxSlotGranularityMinutes   = 240
	MinAdvanceBookingDays       = 0
	MaxAdvanceBookingDays       = 365 // 1 year
	MinBookingNoticeMinutes     = 0
	MaxBookingNoticeMinutes     = 10080 // 1 week
	MinDepositPercent           = 1
	MaxDepositPercent           = 100
	MaxNotesLength              = 300
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ErrInvalidDayWindow возвращается, когда окно расписания некорректно (start >= end)
var ErrInvalidDayWindow = errors.New("domain: day window start must be before end")

// OccupyingStatuses статусы бронирований, занимающих свой интервал.
// Используется при подсчёте доступных слотов и проверке конфликтов.
var OccupyingStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
}

// InactiveStatuses статусы, освобождающие интервал
var InactiveStatuses = []BookingStatus{
	StatusCancelled,
}
