package slot

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("slot.repository: slot not found")

	// ErrSlotBooked возвращается при попытке изменить или удалить забронированный слот
	ErrSlotBooked = errors.New("slot.repository: slot is booked")

	// ErrSlotConflict возвращается, когда хотя бы один слот из набора уже занят или заблокирован.
	// Ни один слот при этом не резервируется.
	ErrSlotConflict = errors.New("slot.repository: slots already taken")

	// ErrReleaseMismatch возвращается, когда не все слоты принадлежат освобождаемому бронированию
	ErrReleaseMismatch = errors.New("slot.repository: slots do not belong to booking")

	// ErrEmptySlotSet возвращается при резервировании пустого набора слотов
	ErrEmptySlotSet = errors.New("slot.repository: empty slot set")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("slot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("slot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("slot.repository: failed to scan row")
)
