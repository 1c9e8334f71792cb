package create_booking

import (
	"context"
	"time"

	"github.com/trimly-app/TRM-BookingService/internal/domain"
	"github.com/trimly-app/TRM-BookingService/internal/integrations/catalogservice"
	"github.com/trimly-app/TRM-BookingService/internal/integrations/paymentservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// Create создает бронирование. Внутри транзакции использует её executor.
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)

	// GetByStaffAndDate получает бронирования мастера на дату.
	// Внутри транзакции строки блокируются через SELECT ... FOR UPDATE -
	// на этом держится защита от двойного бронирования.
	GetByStaffAndDate(ctx context.Context, staffID int64, date time.Time, occupyingOnly bool) ([]*domain.Booking, error)

	// GetByIdempotencyKey возвращает бронирование по ключу идемпотентности
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Booking, error)
}

// ScheduleRepository интерфейс репозитория расписаний мастеров
type ScheduleRepository interface {
	GetByStaffID(ctx context.Context, staffID int64) (*domain.StaffSchedule, error)
}

// BlockedSlotRepository интерфейс репозитория ручных блокировок слотов
type BlockedSlotRepository interface {
	GetByStaffAndDate(ctx context.Context, staffID int64, date time.Time) ([]*domain.BlockedSlot, error)
}

// ConfigRepository интерфейс репозитория конфигурации слотов
type ConfigRepository interface {
	GetBySalonID(ctx context.Context, salonID int64) (*domain.SalonSlotsConfig, error)
}

// CatalogServiceClient интерфейс клиента каталога (салоны и услуги)
type CatalogServiceClient interface {
	GetSalon(ctx context.Context, salonID int64) (*catalogservice.Salon, error)
	GetService(ctx context.Context, salonID, serviceID int64) (*catalogservice.Service, error)
}

// PaymentServiceClient интерфейс клиента платёжного сервиса
type PaymentServiceClient interface {
	Authorize(ctx context.Context, req *paymentservice.AuthorizeRequest) (*paymentservice.Authorization, error)
}

// TransactionManager интерфейс для управления транзакциями.
// Проверка слота и вставка выполняются в одной serializable транзакции.
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// AvailabilityInvalidator сбрасывает кешированные ответы расчёта доступности
type AvailabilityInvalidator interface {
	InvalidateStaffDate(ctx context.Context, staffID int64, date string) error
}

// EventPublisher публикует доменные события бронирований
type EventPublisher interface {
	BookingCreated(ctx context.Context, booking *domain.Booking)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
