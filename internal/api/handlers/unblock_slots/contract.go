package unblock_slots

import (
	"context"

	"github.com/trimly-app/TRM-BookingService/internal/service/schedule/models"
)

type ScheduleService interface {
	UnblockSlots(ctx context.Context, req *models.BlockSlotsRequest) (*models.BlockedSlotsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
