package schedule

import (
	"context"
	"time"

	"github.com/trimly-app/TRM-BookingService/internal/domain"
	"github.com/trimly-app/TRM-BookingService/internal/integrations/catalogservice"
	"github.com/trimly-app/TRM-BookingService/pkg/types"
)

// ScheduleRepository интерфейс репозитория расписаний мастеров
type ScheduleRepository interface {
	GetByStaffID(ctx context.Context, staffID int64) (*domain.StaffSchedule, error)
	Upsert(ctx context.Context, schedule *domain.StaffSchedule) error
}

// BlockedSlotRepository интерфейс репозитория ручных блокировок слотов
type BlockedSlotRepository interface {
	GetByStaffAndDate(ctx context.Context, staffID int64, date time.Time) ([]*domain.BlockedSlot, error)
	Block(ctx context.Context, slots []*domain.BlockedSlot) error
	Unblock(ctx context.Context, staffID int64, date time.Time, starts []types.TimeString) error
}

// ConfigRepository интерфейс репозитория конфигурации слотов.
// Из конфигурации берётся ширина блокируемого слота.
type ConfigRepository interface {
	GetBySalonID(ctx context.Context, salonID int64) (*domain.SalonSlotsConfig, error)
}

// CatalogServiceClient интерфейс клиента каталога
type CatalogServiceClient interface {
	GetSalon(ctx context.Context, salonID int64) (*catalogservice.Salon, error)
}

// TransactionManager выполняет многострочные записи атомарно
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// AvailabilityInvalidator сбрасывает кешированные ответы расчёта доступности
type AvailabilityInvalidator interface {
	InvalidateStaff(ctx context.Context, staffID int64) error
	InvalidateStaffDate(ctx context.Context, staffID int64, date string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
