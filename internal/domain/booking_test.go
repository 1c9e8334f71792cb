package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trimly-app/TRM-BookingService/pkg/types"
)

func TestBooking_Overlaps(t *testing.T) {
	booking := &Booking{StartTime: "10:00", EndTime: "11:00"}

	tests := []struct {
		name  string
		start string
		end   string
		want  bool
	}{
		{name: "identical interval", start: "10:00", end: "11:00", want: true},
		{name: "starts inside", start: "10:30", end: "11:30", want: true},
		{name: "ends inside", start: "09:30", end: "10:30", want: true},
		{name: "contains booking", start: "09:00", end: "12:00", want: true},
		{name: "inside booking", start: "10:15", end: "10:45", want: true},
		{name: "touches start", start: "09:00", end: "10:00", want: false},
		{name: "touches end", start: "11:00", end: "12:00", want: false},
		{name: "fully before", start: "08:00", end: "09:00", want: false},
		{name: "fully after", start: "12:00", end: "13:00", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := booking.Overlaps(types.TimeString(tt.start), types.TimeString(tt.end))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBooking_OccupiesSlot(t *testing.T) {
	assert.True(t, (&Booking{Status: StatusPending}).OccupiesSlot())
	assert.True(t, (&Booking{Status: StatusConfirmed}).OccupiesSlot())
	assert.True(t, (&Booking{Status: StatusCompleted}).OccupiesSlot())
	assert.False(t, (&Booking{Status: StatusCancelled}).OccupiesSlot())
}

func TestBooking_CanBeCancelled(t *testing.T) {
	assert.True(t, (&Booking{Status: StatusPending}).CanBeCancelled())
	assert.True(t, (&Booking{Status: StatusConfirmed}).CanBeCancelled())
	assert.False(t, (&Booking{Status: StatusCompleted}).CanBeCancelled())
	assert.False(t, (&Booking{Status: StatusCancelled}).CanBeCancelled())
}

func TestBooking_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from BookingStatus
		to   BookingStatus
		want bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}

	for _, tt := range tests {
		b := &Booking{Status: tt.from}
		assert.Equal(t, tt.want, b.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestDayWindow_Validate(t *testing.T) {
	assert.NoError(t, DayWindow{Start: "09:00", End: "18:00", Available: true}.Validate())

	// Выходной день не требует валидного окна
	assert.NoError(t, DayWindow{Available: false}.Validate())

	assert.ErrorIs(t,
		DayWindow{Start: "18:00", End: "09:00", Available: true}.Validate(),
		ErrInvalidDayWindow)
	assert.ErrorIs(t,
		DayWindow{Start: "09:00", End: "09:00", Available: true}.Validate(),
		ErrInvalidDayWindow)
}
