package create_booking

import (
	"errors"
	"net/http"

	"github.com/trimly-app/TRM-BookingService/internal/api/handlers"
	"github.com/trimly-app/TRM-BookingService/internal/api/middleware"
	createBooking "github.com/trimly-app/TRM-BookingService/internal/usecase/create_booking"
)

const idempotencyKeyHeader = "Idempotency-Key"

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateOrTime  = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgUnauthorized       = "требуется аутентификация"
	msgSlotUnavailable    = "выбранный временной слот уже занят"
	msgSalonNotFound      = "салон не найден"
	msgStaffNotInSalon    = "мастер не работает в этом салоне"
	msgServiceNotFound    = "услуга не найдена"
	msgServiceInactive    = "услуга недоступна"
	msgServiceNotByStaff  = "мастер не оказывает эту услугу"
	msgScheduleNotFound   = "расписание мастера не настроено"
	msgStaleSchedule      = "слот не попадает в актуальное расписание мастера"
	msgInvalidBookingDate = "некорректная дата бронирования"
	msgDateTooFar         = "дата бронирования слишком далеко в будущем"
	msgInvalidTimeSlot    = "некорректный временной слот"
	msgTooLateToBook      = "слишком поздно для бронирования этого слота"
	msgPaymentDeclined    = "платёж отклонён"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	clientID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	var idempotencyKey *string
	if key := r.Header.Get(idempotencyKeyHeader); key != "" {
		idempotencyKey = &key
	}

	useCaseReq, err := req.ToUseCaseRequest(clientID, idempotencyKey)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotUnavailable):
			h.logger.Warn("POST /bookings - Slot unavailable: client_id=%d, staff_id=%d, start=%s",
				clientID, req.StaffID, req.StartTime)
			handlers.RespondError(w, http.StatusConflict, msgSlotUnavailable)

		case errors.Is(err, createBooking.ErrTooLateToBook):
			h.logger.Warn("POST /bookings - Too late to book: client_id=%d, staff_id=%d", clientID, req.StaffID)
			handlers.RespondError(w, http.StatusConflict, msgTooLateToBook)

		case errors.Is(err, createBooking.ErrSalonNotFound):
			handlers.RespondNotFound(w, msgSalonNotFound)

		case errors.Is(err, createBooking.ErrStaffNotInSalon):
			handlers.RespondNotFound(w, msgStaffNotInSalon)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrServiceInactive):
			handlers.RespondBadRequest(w, msgServiceInactive)

		case errors.Is(err, createBooking.ErrServiceNotOfferedByStaff):
			handlers.RespondBadRequest(w, msgServiceNotByStaff)

		case errors.Is(err, createBooking.ErrScheduleNotFound):
			handlers.RespondNotFound(w, msgScheduleNotFound)

		case errors.Is(err, createBooking.ErrStaleSchedule):
			h.logger.Warn("POST /bookings - Stale schedule: client_id=%d, staff_id=%d, start=%s",
				clientID, req.StaffID, req.StartTime)
			handlers.RespondBadRequest(w, msgStaleSchedule)

		case errors.Is(err, createBooking.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgInvalidBookingDate)

		case errors.Is(err, createBooking.ErrDateTooFarInFuture):
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, createBooking.ErrInvalidTimeSlot):
			handlers.RespondBadRequest(w, msgInvalidTimeSlot)

		case errors.Is(err, createBooking.ErrPaymentDeclined):
			h.logger.Warn("POST /bookings - Payment declined: client_id=%d", clientID)
			handlers.RespondError(w, http.StatusPaymentRequired, msgPaymentDeclined)

		case errors.Is(err, createBooking.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: client_id=%d, salon_id=%d, error=%v",
				clientID, req.SalonID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	// Повторный запрос с тем же ключом идемпотентности возвращает 200, а не 201
	status := http.StatusCreated
	if result.AlreadyExists {
		status = http.StatusOK
	}

	h.logger.Info("POST /bookings - Booking created: booking_id=%d, number=%s, client_id=%d",
		result.Booking.ID, result.Booking.Number, clientID)
	handlers.RespondJSON(w, status, response)
}
