package slots

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("slots.service: slot not found")

	// ErrSlotBooked возвращается при попытке изменить или удалить забронированный слот
	ErrSlotBooked = errors.New("slots.service: slot is booked")

	// ErrSlotOverlap возвращается, когда слот пересекается с существующим
	ErrSlotOverlap = errors.New("slots.service: slot overlaps an existing slot")

	// ErrInvalidDuration возвращается при недопустимой длительности слота
	ErrInvalidDuration = errors.New("slots.service: invalid slot duration")

	// ErrSlotInPast возвращается при создании или переносе слота в прошлое
	ErrSlotInPast = errors.New("slots.service: slot starts in the past")

	// ErrTooManySlots возвращается, когда пакетное создание превышает лимит
	ErrTooManySlots = errors.New("slots.service: too many slots requested")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("slots.service: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("slots.service: internal error")
)
