package paymentservice

import "errors"

var (
	// ErrChargeDeclined возвращается, когда платёжный сервис отклонил списание
	ErrChargeDeclined = errors.New("paymentservice client: charge declined")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("paymentservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("paymentservice client: invalid response")
)
