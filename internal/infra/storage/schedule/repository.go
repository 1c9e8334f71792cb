package schedule

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

// Repository репозиторий расписаний мастеров.
// Расписание хранится построчно: одна строка на день недели (0=воскресенье).
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByStaffID получает расписание мастера на всю неделю.
// Возвращает ErrScheduleNotFound, если нет ни одной строки -
// это "расписание не настроено", а не "выходной".
func (r *Repository) GetByStaffID(ctx context.Context, staffID int64) (*domain.StaffSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"staff_id",
		"salon_id",
		"weekday",
		"start_time",
		"end_time",
		"is_available",
		"created_at",
		"updated_at",
	).
		From("staff_schedules").
		Where(squirrel.Eq{"staff_id": staffID}).
		OrderBy("weekday ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByStaffID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByStaffID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var schedule domain.StaffSchedule
	found := false

	for rows.Next() {
		var (
			weekday              int
			window               domain.DayWindow
			startTime, endTime   sql.NullString
			createdAt, updatedAt sql.NullTime
		)

		err := rows.Scan(
			&schedule.StaffID,
			&schedule.SalonID,
			&weekday,
			&startTime,
			&endTime,
			&window.Available,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetByStaffID - scan row: %v", ErrScanRow, err)
		}

		if weekday < 0 || weekday > 6 {
			return nil, fmt.Errorf("%w: GetByStaffID - weekday %d out of range", ErrScanRow, weekday)
		}

		if startTime.Valid {
			if err := window.Start.Scan(startTime.String); err != nil {
				return nil, fmt.Errorf("%w: GetByStaffID - parse start_time: %v", ErrScanRow, err)
			}
		}
		if endTime.Valid {
			if err := window.End.Scan(endTime.String); err != nil {
				return nil, fmt.Errorf("%w: GetByStaffID - parse end_time: %v", ErrScanRow, err)
			}
		}

		schedule.Days[weekday] = window
		if createdAt.Time.After(schedule.CreatedAt) {
			schedule.CreatedAt = createdAt.Time
		}
		if updatedAt.Time.After(schedule.UpdatedAt) {
			schedule.UpdatedAt = updatedAt.Time
		}
		found = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByStaffID - rows error: %v", ErrScanRow, err)
	}

	if !found {
		return nil, ErrScheduleNotFound
	}

	return &schedule, nil
}

// Upsert сохраняет расписание мастера на всю неделю.
// Строки вставляются с ON CONFLICT по (staff_id, weekday), поэтому вызов
// идемпотентен и может выполняться внутри транзакции.
func (r *Repository) Upsert(ctx context.Context, schedule *domain.StaffSchedule) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	for weekday, window := range schedule.Days {
		var start, end interface{}
		if window.Available {
			start = window.Start
			end = window.End
		}

		query, args, err := psqlbuilder.Insert("staff_schedules").
			Columns(
				"staff_id",
				"salon_id",
				"weekday",
				"start_time",
				"end_time",
				"is_available",
			).
			Values(
				schedule.StaffID,
				schedule.SalonID,
				weekday,
				start,
				end,
				window.Available,
			).
			Suffix(`ON CONFLICT (staff_id, weekday) DO UPDATE SET
				salon_id = EXCLUDED.salon_id,
				start_time = EXCLUDED.start_time,
				end_time = EXCLUDED.end_time,
				is_available = EXCLUDED.is_available,
				updated_at = NOW()`).
			ToSql()

		if err != nil {
			return fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
		}

		if _, err := executor.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: Upsert - execute insert for weekday %d: %v", ErrExecQuery, weekday, err)
		}
	}

	return nil
}
