package domain

// AllowedSlotDurations длительности слотов, которые оператор может создавать
var AllowedSlotDurations = []int{15, 30, 45, 60}

// AllowedFollowUpDurations длительности повторной встречи
var AllowedFollowUpDurations = []int{30, 45, 60, 90}

// Booking defaults and limits
const (
	DefaultRequestedDurationMinutes = 30
	MaxRequestedDurationMinutes     = 480 // 8 hours
	MaxBulkSlots                    = 2000
	MaxRepeatWeeks                  = 12
)

// Business validation constants
const (
	MaxInstituteNameLength      = 200
	MaxContactNameLength        = 200
	MaxEmailLength              = 254
	MaxPhoneLength              = 32
	MaxMessageLength            = 2000
	MaxLocationLength           = 500
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// AllStatuses список всех статусов бронирования
var AllStatuses = []BookingStatus{
	StatusConfirmed,
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}

// IsAllowedSlotDuration проверяет, что длительность слота разрешена
func IsAllowedSlotDuration(minutes int) bool {
	for _, d := range AllowedSlotDurations {
		if d == minutes {
			return true
		}
	}
	return false
}

// IsAllowedFollowUpDuration проверяет длительность повторной встречи
func IsAllowedFollowUpDuration(minutes int) bool {
	for _, d := range AllowedFollowUpDurations {
		if d == minutes {
			return true
		}
	}
	return false
}
