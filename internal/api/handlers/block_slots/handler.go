package block_slots

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/trimly-app/TRM-BookingService/internal/api/handlers"
	"github.com/trimly-app/TRM-BookingService/internal/api/middleware"
	"github.com/trimly-app/TRM-BookingService/internal/domain"
	scheduleService "github.com/trimly-app/TRM-BookingService/internal/service/schedule"
	"github.com/trimly-app/TRM-BookingService/internal/service/schedule/models"
)

const (
	msgInvalidStaffID     = "некорректный ID мастера"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректная дата, ожидается YYYY-MM-DD"
	msgInvalidSlots       = "некорректный список слотов"
	msgUnauthorized       = "требуется аутентификация"
	msgSalonNotFound      = "салон не найден"
	msgStaffNotInSalon    = "мастер не работает в этом салоне"
	msgForbidden          = "доступ запрещен"
)

// BlockSlotsRequest HTTP request model
type BlockSlotsRequest struct {
	SalonID int64    `json:"salonId"`
	Date    string   `json:"date"`  // YYYY-MM-DD
	Slots   []string `json:"slots"` // времена начала "HH:MM"
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

// Handle POST /api/v1/staff/{staffId}/schedule/block
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	vars := mux.Vars(r)
	staffID, err := strconv.ParseInt(vars["staffId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /staff/{id}/schedule/block - Invalid staff ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStaffID)
		return
	}

	var req BlockSlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /staff/{id}/schedule/block - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	date, err := time.Parse(domain.DateFormat, req.Date)
	if err != nil {
		h.logger.Warn("POST /staff/{id}/schedule/block - Invalid date %q: %v", req.Date, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.BlockSlots(r.Context(), &models.BlockSlotsRequest{
		UserID:  userID,
		SalonID: req.SalonID,
		StaffID: staffID,
		Date:    date,
		Slots:   req.Slots,
	})
	if err != nil {
		switch {
		case errors.Is(err, scheduleService.ErrSalonNotFound):
			h.logger.Warn("POST /staff/{id}/schedule/block - Salon not found: salon_id=%d", req.SalonID)
			handlers.RespondNotFound(w, msgSalonNotFound)

		case errors.Is(err, scheduleService.ErrStaffNotInSalon):
			h.logger.Warn("POST /staff/{id}/schedule/block - Staff not in salon: salon_id=%d, staff_id=%d",
				req.SalonID, staffID)
			handlers.RespondNotFound(w, msgStaffNotInSalon)

		case errors.Is(err, scheduleService.ErrAccessDenied):
			h.logger.Warn("POST /staff/{id}/schedule/block - Access denied: staff_id=%d, user_id=%d", staffID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, scheduleService.ErrInvalidInput):
			h.logger.Warn("POST /staff/{id}/schedule/block - Invalid slots: staff_id=%d, error=%v", staffID, err)
			handlers.RespondBadRequest(w, msgInvalidSlots)

		default:
			h.logger.Error("POST /staff/{id}/schedule/block - Failed to block slots: staff_id=%d, error=%v",
				staffID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /staff/{id}/schedule/block - Slots blocked: staff_id=%d, date=%s, user_id=%d",
		staffID, req.Date, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
