package schedule_follow_up

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("schedule_follow_up: invalid input data")

	// ErrInvalidDuration возвращается при недопустимой длительности повторной встречи
	ErrInvalidDuration = errors.New("schedule_follow_up: invalid duration")

	// ErrBookingNotFound возвращается, когда исходное бронирование не найдено
	ErrBookingNotFound = errors.New("schedule_follow_up: booking not found")

	// ErrSlotInPast возвращается, когда встреча назначается на прошедшее время
	ErrSlotInPast = errors.New("schedule_follow_up: follow-up starts in the past")

	// ErrSlotOverlap возвращается, когда новый слот пересекается с существующим
	ErrSlotOverlap = errors.New("schedule_follow_up: slot overlaps an existing slot")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("schedule_follow_up: internal error")
)
