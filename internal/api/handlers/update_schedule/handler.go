package update_schedule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/trimly-app/TRM-BookingService/internal/api/handlers"
	"github.com/trimly-app/TRM-BookingService/internal/api/middleware"
	scheduleService "github.com/trimly-app/TRM-BookingService/internal/service/schedule"
	"github.com/trimly-app/TRM-BookingService/internal/service/schedule/models"
)

const (
	msgInvalidStaffID     = "некорректный ID мастера"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidSchedule    = "некорректное расписание"
	msgUnauthorized       = "требуется аутентификация"
	msgSalonNotFound      = "салон не найден"
	msgStaffNotInSalon    = "мастер не работает в этом салоне"
	msgForbidden          = "доступ запрещен"
)

// UpdateScheduleRequest HTTP request model
type UpdateScheduleRequest struct {
	SalonID int64                              `json:"salonId"`
	Days    map[string]models.DayWindowRequest `json:"days"`
}

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/staff/{staffId}/schedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	vars := mux.Vars(r)
	staffID, err := strconv.ParseInt(vars["staffId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /staff/{id}/schedule - Invalid staff ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStaffID)
		return
	}

	var req UpdateScheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /staff/{id}/schedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Update(r.Context(), &models.UpdateScheduleRequest{
		UserID:  userID,
		SalonID: req.SalonID,
		StaffID: staffID,
		Days:    req.Days,
	})
	if err != nil {
		switch {
		case errors.Is(err, scheduleService.ErrSalonNotFound):
			h.logger.Warn("PUT /staff/{id}/schedule - Salon not found: salon_id=%d", req.SalonID)
			handlers.RespondNotFound(w, msgSalonNotFound)

		case errors.Is(err, scheduleService.ErrStaffNotInSalon):
			h.logger.Warn("PUT /staff/{id}/schedule - Staff not in salon: salon_id=%d, staff_id=%d",
				req.SalonID, staffID)
			handlers.RespondNotFound(w, msgStaffNotInSalon)

		case errors.Is(err, scheduleService.ErrAccessDenied):
			h.logger.Warn("PUT /staff/{id}/schedule - Access denied: staff_id=%d, user_id=%d", staffID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, scheduleService.ErrInvalidInput):
			h.logger.Warn("PUT /staff/{id}/schedule - Invalid schedule: staff_id=%d, error=%v", staffID, err)
			handlers.RespondBadRequest(w, msgInvalidSchedule)

		default:
			h.logger.Error("PUT /staff/{id}/schedule - Failed to update schedule: staff_id=%d, error=%v",
				staffID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /staff/{id}/schedule - Schedule updated: staff_id=%d, user_id=%d", staffID, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
