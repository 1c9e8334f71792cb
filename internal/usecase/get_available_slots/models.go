package get_available_slots

import (
	"time"

	"github.com/trimly-app/TRM-BookingService/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	SalonID   int64     // ID салона
	StaffID   int64     // ID мастера
	ServiceID int64     // ID услуги (определяет длительность слота)
	Date      time.Time // Дата для получения слотов (без времени)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date      time.Time                 // Дата, на которую запрашивались слоты
	SalonID   int64                     // ID салона
	StaffID   int64                     // ID мастера
	ServiceID int64                     // ID услуги
	Slots     []domain.AvailableSlot    // Список доступных слотов в хронологическом порядке
	Reason    domain.AvailabilityReason // Причина пустого списка (day_closed / fully_booked)
}
