package crmservice

import "errors"

var (
	// ErrInvalidLead возвращается, когда CRM отклонила данные лида
	ErrInvalidLead = errors.New("crmservice client: lead rejected")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("crmservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("crmservice client: invalid response")

	// ErrServiceDegraded возвращается при применении graceful degradation.
	// Бронирование сохраняется без привязки к лиду.
	ErrServiceDegraded = errors.New("crmservice unavailable: graceful degradation applied")
)
