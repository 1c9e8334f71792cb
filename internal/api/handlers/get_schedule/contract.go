package get_schedule

import (
	"context"

	"github.com/trimly-app/TRM-BookingService/internal/service/schedule/models"
)

type ScheduleService interface {
	Get(ctx context.Context, staffID int64) (*models.ScheduleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
