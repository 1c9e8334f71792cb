package get_available_slots

import (
	"time"

	"github.com/trimly-app/TRM-BookingService/internal/domain"
	"github.com/trimly-app/TRM-BookingService/pkg/types"
)

// buildCandidateSlots генерирует кандидатов на бронирование в рабочем окне дня.
// Старты идут с фиксированным шагом granularity от начала окна; кандидат
// попадает в список, только если услуга целиком помещается до конца окна
// (слот, начинающийся в end - duration, допустим).
func buildCandidateSlots(window domain.DayWindow, durationMinutes, granularityMinutes int) ([]types.TimeString, error) {
	candidates := make([]types.TimeString, 0)

	current := window.Start
	for current.IsBefore(window.End) {
		slotEnd, err := current.AddMinutes(durationMinutes)
		if err != nil {
			// Услуга не помещается до полуночи - дальше слотов не будет
			break
		}
		if slotEnd.IsAfter(window.End) {
			break
		}

		candidates = append(candidates, current)

		next, err := current.AddMinutes(granularityMinutes)
		if err != nil {
			break
		}
		current = next
	}

	return candidates, nil
}

// filterPastSlots убирает слоты, начинающиеся раньше, чем now + minNotice.
// Применяется только если запрошенная дата - сегодня (в часовом поясе салона).
func filterPastSlots(candidates []types.TimeString, date, now time.Time, minNoticeMinutes int) []types.TimeString {
	if !isSameDay(date, now) {
		return candidates
	}

	minAllowed, err := types.NewTimeString(now).AddMinutes(minNoticeMinutes)
	if err != nil {
		// now + notice уходит за полночь - сегодня бронировать уже нечего
		return []types.TimeString{}
	}

	filtered := make([]types.TimeString, 0, len(candidates))
	for _, slot := range candidates {
		if !slot.IsBefore(minAllowed) {
			filtered = append(filtered, slot)
		}
	}
	return filtered
}

// filterConflictingSlots убирает кандидатов, пересекающихся с существующими
// бронированиями. Пересечение полуинтервалов [start, end) проверяется
// строгими неравенствами: граничащие интервалы не конфликтуют.
func filterConflictingSlots(candidates []types.TimeString, durationMinutes int, bookings []*domain.Booking) []types.TimeString {
	free := make([]types.TimeString, 0, len(candidates))

	for _, slot := range candidates {
		slotEnd, err := slot.AddMinutes(durationMinutes)
		if err != nil {
			continue
		}

		conflict := false
		for _, booking := range bookings {
			if !booking.OccupiesSlot() {
				continue
			}
			if booking.Overlaps(slot, slotEnd) {
				conflict = true
				break
			}
		}

		if !conflict {
			free = append(free, slot)
		}
	}

	return free
}

// filterBlockedSlots убирает кандидатов, пересекающихся с ручными
// блокировками мастера. Семантика пересечения та же, что у бронирований.
func filterBlockedSlots(candidates []types.TimeString, durationMinutes int, blocked []*domain.BlockedSlot) []types.TimeString {
	if len(blocked) == 0 {
		return candidates
	}

	free := make([]types.TimeString, 0, len(candidates))
	for _, slot := range candidates {
		slotEnd, err := slot.AddMinutes(durationMinutes)
		if err != nil {
			continue
		}

		conflict := false
		for _, b := range blocked {
			if b.Overlaps(slot, slotEnd) {
				conflict = true
				break
			}
		}

		if !conflict {
			free = append(free, slot)
		}
	}

	return free
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func isDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
