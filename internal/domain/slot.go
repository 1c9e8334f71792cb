package domain

import "github.com/trimly-app/TRM-BookingService/pkg/types"

// AvailableSlot is a candidate bookable interval. It exists only in
// availability responses and is never persisted.
type AvailableSlot struct {
	StartTime       types.TimeString
	DurationMinutes int
}

// End returns the slot end time, or an error when the slot would cross midnight
func (s AvailableSlot) End() (types.TimeString, error) {
	return s.StartTime.AddMinutes(s.DurationMinutes)
}

// AvailabilityReason explains an empty slot list to the caller
type AvailabilityReason string

const (
	ReasonNone        AvailabilityReason = ""
	ReasonDayClosed   AvailabilityReason = "day_closed"
	ReasonFullyBooked AvailabilityReason = "fully_booked"
)
