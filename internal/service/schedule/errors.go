package schedule

import "errors"

var (
	// ErrScheduleNotFound возвращается, когда расписание не настроено
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrSalonNotFound возвращается, когда салон не найден
	ErrSalonNotFound = errors.New("salon not found")

	// ErrStaffNotInSalon возвращается, когда мастер не работает в салоне
	ErrStaffNotInSalon = errors.New("staff does not belong to salon")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
