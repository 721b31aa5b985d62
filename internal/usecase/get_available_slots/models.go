package get_available_slots

import (
	"time"

	"github.com/google/uuid"
)

// Policy политика публичного бронирования
type Policy struct {
	HorizonDays            int // на сколько дней вперед показываются слоты
	MinNoticeMinutes       int // минимальный запас до начала встречи
	DefaultDurationMinutes int
	MaxDurationMinutes     int
}

// Request модель запроса на получение доступных стартов
type Request struct {
	DurationMinutes *int       // Запрошенная длительность встречи (по умолчанию из политики)
	From            *time.Time // Начало окна (опционально)
	To              *time.Time // Конец окна (опционально, исключительно)
}

// Response модель ответа со списком стартов, вмещающих запрошенную длительность
type Response struct {
	RequestedDurationMinutes int
	From                     time.Time
	To                       time.Time
	Slots                    []AvailableSlot
	NoSlotFitsDuration       bool // ни один старт не вмещает длительность, это не ошибка
}

// AvailableSlot старт встречи и покрываемый им непрерывный отрезок слотов
type AvailableSlot struct {
	SlotID          uuid.UUID   // первичный слот
	StartAt         time.Time   // начало встречи
	EndAt           time.Time   // конец последнего покрытого слота
	DurationMinutes int         // длительность первичного слота
	CoveredSlotIDs  []uuid.UUID // первичный слот первым
}
