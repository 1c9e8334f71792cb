package domain

import (
	"time"

	"github.com/trimly-app/TRM-BookingService/pkg/types"
)

// DayWindow is the working window of a staff member on one weekday.
// Start/End are ignored when Available is false.
type DayWindow struct {
	Start     types.TimeString
	End       types.TimeString
	Available bool
}

// Validate проверяет корректность окна: при Available интервал должен быть непустым
func (w DayWindow) Validate() error {
	if !w.Available {
		return nil
	}
	if err := w.Start.Validate(); err != nil {
		return err
	}
	if err := w.End.Validate(); err != nil {
		return err
	}
	if !w.Start.IsBefore(w.End) {
		return ErrInvalidDayWindow
	}
	return nil
}

// StaffSchedule is the per-weekday working-hours configuration of a staff
// member. Days is indexed by time.Weekday (Sunday = 0).
type StaffSchedule struct {
	StaffID int64
	SalonID int64
	Days    [7]DayWindow

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Day returns the working window for the given weekday
func (s *StaffSchedule) Day(weekday time.Weekday) DayWindow {
	return s.Days[int(weekday)]
}

// Validate проверяет все окна расписания
func (s *StaffSchedule) Validate() error {
	for _, w := range s.Days {
		if err := w.Validate(); err != nil {
			return err
		}
	}
	return nil
}
