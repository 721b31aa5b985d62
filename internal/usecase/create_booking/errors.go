package create_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInvalidDuration возвращается при некорректной запрошенной длительности
	ErrInvalidDuration = errors.New("create_booking: invalid requested duration")

	// ErrSlotNotFound возвращается, когда стартовый слот не найден
	ErrSlotNotFound = errors.New("create_booking: slot not found")

	// ErrSlotNotAvailable возвращается, когда стартовый слот занят или заблокирован
	ErrSlotNotAvailable = errors.New("create_booking: slot is not available")

	// ErrTooLateToBook возвращается, когда до начала слота меньше минимального запаса
	ErrTooLateToBook = errors.New("create_booking: too late to book this slot")

	// ErrDateTooFarInFuture возвращается, когда слот за пределами горизонта бронирования
	ErrDateTooFarInFuture = errors.New("create_booking: slot is too far in the future")

	// ErrDurationNotSatisfiable возвращается, когда от слота нельзя собрать непрерывную цепочку нужной длительности
	ErrDurationNotSatisfiable = errors.New("create_booking: requested duration cannot be satisfied from this slot")

	// ErrStaleSnapshot возвращается, когда слоты изменились с момента выдачи списка клиенту
	ErrStaleSnapshot = errors.New("create_booking: availability changed, refresh slots")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
