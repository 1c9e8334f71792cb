package models

import (
	"errors"
	"time"

	"github.com/trimly-app/TRM-BookingService/internal/domain"
	"github.com/trimly-app/TRM-BookingService/pkg/types"
)

var (
	// ErrInvalidWeekday возвращается при неизвестном дне недели
	ErrInvalidWeekday = errors.New("invalid weekday")

	// ErrInvalidTimeFormat возвращается при некорректном формате времени
	ErrInvalidTimeFormat = errors.New("invalid time format, expected HH:MM")
)

// weekdayNames порядок дней в API ответах (понедельник первый)
var weekdayNames = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// weekdayIndex соответствие имени дня индексу time.Weekday (Sunday = 0)
var weekdayIndex = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Request модели

// DayWindowRequest рабочее окно одного дня недели
type DayWindowRequest struct {
	Start     string `json:"start,omitempty"` // "09:00", пусто для выходного
	End       string `json:"end,omitempty"`   // "18:00", пусто для выходного
	Available bool   `json:"available"`
}

// UpdateScheduleRequest запрос на обновление расписания мастера
type UpdateScheduleRequest struct {
	UserID  int64                       `json:"userId"`
	SalonID int64                       `json:"salonId"`
	StaffID int64                       `json:"staffId"`
	Days    map[string]DayWindowRequest `json:"days"` // ключ - имя дня недели
}

// ToDomainSchedule конвертирует request в domain модель.
// Дни, не указанные в запросе, считаются выходными.
func (r *UpdateScheduleRequest) ToDomainSchedule() (*domain.StaffSchedule, error) {
	schedule := &domain.StaffSchedule{
		StaffID: r.StaffID,
		SalonID: r.SalonID,
	}

	for name, day := range r.Days {
		idx, ok := weekdayIndex[name]
		if !ok {
			return nil, ErrInvalidWeekday
		}

		window := domain.DayWindow{Available: day.Available}
		if day.Available {
			start, err := types.NewTimeStringFromString(day.Start)
			if err != nil {
				return nil, ErrInvalidTimeFormat
			}
			end, err := types.NewTimeStringFromString(day.End)
			if err != nil {
				return nil, ErrInvalidTimeFormat
			}
			window.Start = start
			window.End = end
		}

		schedule.Days[int(idx)] = window
	}

	return schedule, nil
}

// BlockSlotsRequest запрос на блокировку или разблокировку слотов мастера.
// Slots - времена начала "HH:MM"; ширина слота берётся из конфигурации салона.
type BlockSlotsRequest struct {
	UserID  int64     `json:"userId"`
	SalonID int64     `json:"salonId"`
	StaffID int64     `json:"staffId"`
	Date    time.Time `json:"date"`
	Slots   []string  `json:"slots"`
}

// Response модели

// DayWindowResponse рабочее окно одного дня недели
type DayWindowResponse struct {
	Weekday   string `json:"weekday"`
	Start     string `json:"start,omitempty"`
	End       string `json:"end,omitempty"`
	Available bool   `json:"available"`
}

// ScheduleResponse ответ с расписанием мастера
type ScheduleResponse struct {
	StaffID int64               `json:"staffId"`
	SalonID int64               `json:"salonId"`
	Days    []DayWindowResponse `json:"days"`
}

// FromDomainSchedule конвертирует domain модель в DTO.
// Дни идут с понедельника по воскресенье.
func FromDomainSchedule(s *domain.StaffSchedule) *ScheduleResponse {
	if s == nil {
		return nil
	}

	resp := &ScheduleResponse{
		StaffID: s.StaffID,
		SalonID: s.SalonID,
		Days:    make([]DayWindowResponse, 0, len(weekdayNames)),
	}

	for _, name := range weekdayNames {
		window := s.Day(weekdayIndex[name])
		day := DayWindowResponse{
			Weekday:   name,
			Available: window.Available,
		}
		if window.Available {
			day.Start = window.Start.String()
			day.End = window.End.String()
		}
		resp.Days = append(resp.Days, day)
	}

	return resp
}

// BlockedSlotResponse один заблокированный интервал
type BlockedSlotResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// BlockedSlotsResponse список блокировок мастера на дату
type BlockedSlotsResponse struct {
	StaffID int64                 `json:"staffId"`
	Date    string                `json:"date"`
	Slots   []BlockedSlotResponse `json:"slots"`
}

// FromDomainBlockedSlots конвертирует блокировки в DTO
func FromDomainBlockedSlots(staffID int64, date string, blocked []*domain.BlockedSlot) *BlockedSlotsResponse {
	resp := &BlockedSlotsResponse{
		StaffID: staffID,
		Date:    date,
		Slots:   make([]BlockedSlotResponse, 0, len(blocked)),
	}
	for _, slot := range blocked {
		resp.Slots = append(resp.Slots, BlockedSlotResponse{
			Start: slot.StartTime.String(),
			End:   slot.EndTime.String(),
		})
	}
	return resp
}
