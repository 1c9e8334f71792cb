package get_available_slots

import "errors"

var (
	// ErrSalonNotFound возвращается, когда салон не найден
	ErrSalonNotFound = errors.New("get_available_slots: salon not found")

	// ErrStaffNotInSalon возвращается, когда мастер не работает в салоне
	ErrStaffNotInSalon = errors.New("get_available_slots: staff does not belong to salon")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("get_available_slots: service not found")

	// ErrServiceInactive возвращается, когда услуга отключена
	ErrServiceInactive = errors.New("get_available_slots: service is inactive")

	// ErrServiceNotOfferedByStaff возвращается, когда мастер не оказывает услугу
	ErrServiceNotOfferedByStaff = errors.New("get_available_slots: service is not offered by this staff member")

	// ErrScheduleNotFound возвращается, когда у мастера нет настроенного расписания.
	// Отличается от "выходного дня": выходной - это пустой список слотов, а не ошибка.
	ErrScheduleNotFound = errors.New("get_available_slots: staff schedule not found")

	// ErrInvalidDate возвращается для даты в прошлом
	ErrInvalidDate = errors.New("get_available_slots: invalid date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advance_booking_days
	ErrDateTooFarInFuture = errors.New("get_available_slots: date is too far in the future")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
