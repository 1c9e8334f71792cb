package get_available_slots

import (
	"context"
	"time"

	"github.com/trimly-app/TRM-BookingService/internal/domain"
	"github.com/trimly-app/TRM-BookingService/internal/infra/cache"
	"github.com/trimly-app/TRM-BookingService/internal/integrations/catalogservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// GetByStaffAndDate получает бронирования мастера на дату
	GetByStaffAndDate(ctx context.Context, staffID int64, date time.Time, occupyingOnly bool) ([]*domain.Booking, error)
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

// AvailabilityCache интерфейс кеша ответов расчёта доступности
type AvailabilityCache interface {
	Get(ctx context.Context, staffID, serviceID int64, date string) (*cache.CachedAvailability, error)
	Set(ctx context.Context, staffID, serviceID int64, date string, value *cache.CachedAvailability) error
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
