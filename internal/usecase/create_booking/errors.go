package create_booking

import "errors"

var (
	// ErrSalonNotFound возвращается, когда салон не найден
	ErrSalonNotFound = errors.New("create_booking: salon not found")

	// ErrStaffNotInSalon возвращается, когда мастер не работает в салоне
	ErrStaffNotInSalon = errors.New("create_booking: staff does not belong to salon")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrServiceInactive возвращается, когда услуга отключена
	ErrServiceInactive = errors.New("create_booking: service is inactive")

	// ErrServiceNotOfferedByStaff возвращается, когда мастер не оказывает услугу
	ErrServiceNotOfferedByStaff = errors.New("create_booking: service is not offered by this staff member")

	// ErrScheduleNotFound возвращается, когда у мастера нет настроенного расписания
	ErrScheduleNotFound = errors.New("create_booking: staff schedule not found")

	// ErrStaleSchedule возвращается, когда запрошенный интервал не попадает в
	// актуальное рабочее окно мастера. Обычно означает, что клиент выбирал слот
	// по устаревшему расписанию.
	ErrStaleSchedule = errors.New("create_booking: requested slot is outside the staff working hours")

	// ErrSlotUnavailable возвращается, когда интервал пересекается с существующим
	// бронированием. Именно эту ошибку получает проигравший при гонке двух
	// одновременных бронирований одного слота.
	ErrSlotUnavailable = errors.New("create_booking: slot is already taken")

	// ErrInvalidTimeSlot возвращается, когда время начала не выровнено по сетке слотов
	ErrInvalidTimeSlot = errors.New("create_booking: start time is not aligned to the slot grid")

	// ErrTooLateToBook возвращается, когда слот начинается раньше, чем now + min_booking_notice
	ErrTooLateToBook = errors.New("create_booking: too late to book this slot")

	// ErrInvalidDate возвращается для даты в прошлом
	ErrInvalidDate = errors.New("create_booking: invalid date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advance_booking_days
	ErrDateTooFarInFuture = errors.New("create_booking: date is too far in the future")

	// ErrPaymentDeclined возвращается, когда платёжный сервис отклонил списание
	ErrPaymentDeclined = errors.New("create_booking: payment was declined")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
