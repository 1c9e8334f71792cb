package create_booking

import (
	"time"

	"github.com/trimly-app/TRM-BookingService/internal/domain"
	"github.com/trimly-app/TRM-BookingService/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	ClientID  int64 // ID клиента (из заголовка авторизации)
	SalonID   int64 // ID салона
	StaffID   int64 // ID мастера
	ServiceID int64 // ID услуги

	Date      time.Time        // Дата бронирования (без времени)
	StartTime types.TimeString // Время начала

	PaymentOption domain.PaymentOption // full / deposit / cash (по умолчанию deposit)
	Notes         *string              // Комментарий клиента (до 300 символов)

	IdempotencyKey *string // Ключ идемпотентности из заголовка Idempotency-Key
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking *domain.Booking
	// AlreadyExists true, если запрос с этим ключом идемпотентности уже был
	// обработан и возвращено ранее созданное бронирование
	AlreadyExists bool
}
