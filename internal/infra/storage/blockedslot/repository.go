package blockedslot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/trimly-app/TRM-BookingService/internal/domain"
	"github.com/trimly-app/TRM-BookingService/pkg/dbmetrics"
	"github.com/trimly-app/TRM-BookingService/pkg/psqlbuilder"
	"github.com/trimly-app/TRM-BookingService/pkg/types"
)

// DBExecutor интерфейс для работы с БД (совместим с *sql.DB и *dbmetrics.DB)
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий ручных блокировок слотов.
// Блокировка хранится построчно: одна строка на (мастер, дата, время начала).
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория блокировок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByStaffAndDate получает блокировки мастера на конкретную дату.
// Пустой список - валидный результат: у мастера нет заблокированных слотов.
func (r *Repository) GetByStaffAndDate(ctx context.Context, staffID int64, date time.Time) ([]*domain.BlockedSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"staff_id",
		"salon_id",
		"block_date",
		"start_time",
		"end_time",
		"created_at",
	).
		From("staff_blocked_slots").
		Where(squirrel.Eq{"staff_id": staffID}).
		Where(squirrel.Eq{"block_date": date}).
		OrderBy("start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByStaffAndDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByStaffAndDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	blocked := make([]*domain.BlockedSlot, 0)
	for rows.Next() {
		var (
			slot      domain.BlockedSlot
			createdAt sql.NullTime
		)
		err := rows.Scan(
			&slot.ID,
			&slot.StaffID,
			&slot.SalonID,
			&slot.BlockDate,
			&slot.StartTime,
			&slot.EndTime,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetByStaffAndDate - scan row: %v", ErrScanRow, err)
		}
		slot.CreatedAt = createdAt.Time
		blocked = append(blocked, &slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByStaffAndDate - rows error: %v", ErrScanRow, err)
	}

	return blocked, nil
}

// Block сохраняет блокировки. Повторная блокировка того же времени
// поглощается через ON CONFLICT DO NOTHING - вызов идемпотентен.
func (r *Repository) Block(ctx context.Context, slots []*domain.BlockedSlot) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	for _, slot := range slots {
		query, args, err := psqlbuilder.Insert("staff_blocked_slots").
			Columns(
				"staff_id",
				"salon_id",
				"block_date",
				"start_time",
				"end_time",
			).
			Values(
				slot.StaffID,
				slot.SalonID,
				slot.BlockDate,
				slot.StartTime,
				slot.EndTime,
			).
			Suffix("ON CONFLICT (staff_id, block_date, start_time) DO NOTHING").
			ToSql()

		if err != nil {
			return fmt.Errorf("%w: Block - build insert query: %v", ErrBuildQuery, err)
		}

		if _, err := executor.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: Block - execute insert for %s: %v", ErrExecQuery, slot.StartTime, err)
		}
	}

	return nil
}

// Unblock удаляет блокировки мастера на дату по временам начала.
// Отсутствующие времена молча пропускаются.
func (r *Repository) Unblock(ctx context.Context, staffID int64, date time.Time, starts []types.TimeString) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("staff_blocked_slots").
		Where(squirrel.Eq{"staff_id": staffID}).
		Where(squirrel.Eq{"block_date": date}).
		Where(squirrel.Eq{"start_time": starts}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Unblock - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Unblock - execute delete: %v", ErrExecQuery, err)
	}

	return nil
}
