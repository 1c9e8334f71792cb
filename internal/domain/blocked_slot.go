package domain

import (
	"time"

	"github.com/trimly-app/TRM-BookingService/pkg/types"
)

// BlockedSlot is a manually blocked interval of a staff member on a specific
// date. Blocked intervals sit on top of the weekly schedule: the calculator
// never offers them and the conflict guard rejects bookings touching them.
type BlockedSlot struct {
	ID        int64
	StaffID   int64
	SalonID   int64
	BlockDate time.Time
	StartTime types.TimeString
	EndTime   types.TimeString
	CreatedAt time.Time
}

// Overlaps проверяет пересечение с полуинтервалом [start, end).
// Граничащие интервалы не пересекаются.
func (b *BlockedSlot) Overlaps(start, end types.TimeString) bool {
	return b.StartTime.IsBefore(end) && b.EndTime.IsAfter(start)
}
