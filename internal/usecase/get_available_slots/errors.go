package get_available_slots

import "errors"

var (
	// ErrInvalidDuration возвращается при некорректной запрошенной длительности
	ErrInvalidDuration = errors.New("get_available_slots: invalid requested duration")

	// ErrInvalidWindow возвращается при некорректном окне поиска
	ErrInvalidWindow = errors.New("get_available_slots: invalid time window")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
