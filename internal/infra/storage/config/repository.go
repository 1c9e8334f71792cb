package config

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/trimly-app/TRM-BookingService/internal/domain"
	"github.com/trimly-app/TRM-BookingService/pkg/dbmetrics"
	"github.com/trimly-app/TRM-BookingService/pkg/psqlbuilder"
)

// DBExecutor интерфейс для работы с БД (совместим с *sql.DB и *dbmetrics.DB)
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий конфигурации слотов салона
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория конфигурации
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetBySalonID получает конфигурацию слотов салона.
// Возвращает ErrConfigNotFound, если салон не настраивал слоты -
// вызывающая сторона подставляет дефолтные значения.
func (r *Repository) GetBySalonID(ctx context.Context, salonID int64) (*domain.SalonSlotsConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"salon_id",
		"slot_granularity_minutes",
		"min_booking_notice_minutes",
		"advance_booking_days",
		"deposit_percent",
		"created_at",
		"updated_at",
	).
		From("salon_slots_config").
		Where(squirrel.Eq{"salon_id": salonID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetBySalonID - build select query: %v", ErrBuildQuery, err)
	}

	var cfg domain.SalonSlotsConfig
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&cfg.ID,
		&cfg.SalonID,
		&cfg.SlotGranularityMinutes,
		&cfg.MinBookingNoticeMinutes,
		&cfg.AdvanceBookingDays,
		&cfg.DepositPercent,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySalonID - scan config: %v", ErrScanRow, err)
	}

	cfg.CreatedAt = createdAt.Time
	cfg.UpdatedAt = updatedAt.Time

	return &cfg, nil
}

// Upsert сохраняет конфигурацию слотов салона (одна строка на салон)
func (r *Repository) Upsert(ctx context.Context, cfg *domain.SalonSlotsConfig) (*domain.SalonSlotsConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("salon_slots_config").
		Columns(
			"salon_id",
			"slot_granularity_minutes",
			"min_booking_notice_minutes",
			"advance_booking_days",
			"deposit_percent",
		).
		Values(
			cfg.SalonID,
			cfg.SlotGranularityMinutes,
			cfg.MinBookingNoticeMinutes,
			cfg.AdvanceBookingDays,
			cfg.DepositPercent,
		).
		Suffix(`ON CONFLICT (salon_id) DO UPDATE SET
			slot_granularity_minutes = EXCLUDED.slot_granularity_minutes,
			min_booking_notice_minutes = EXCLUDED.min_booking_notice_minutes,
			advance_booking_days = EXCLUDED.advance_booking_days,
			deposit_percent = EXCLUDED.deposit_percent,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&cfg.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	cfg.CreatedAt = createdAt.Time
	cfg.UpdatedAt = updatedAt.Time

	return cfg, nil
}
