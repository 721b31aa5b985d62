package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the status of a demo booking
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCompleted BookingStatus = "COMPLETED"
	StatusCancelled BookingStatus = "CANCELLED"
	StatusNoShow    BookingStatus = "NO_SHOW"
)

// MeetingType is the way the demo is held
type MeetingType string

const (
	MeetingOnline   MeetingType = "ONLINE"
	MeetingPhysical MeetingType = "PHYSICAL"
)

// IsValid reports whether the meeting type is known
func (t MeetingType) IsValid() bool {
	return t == MeetingOnline || t == MeetingPhysical
}

// Booking represents a demo reservation covering one or more contiguous slots
type Booking struct {
	ID uuid.UUID

	InstituteName string
	ContactName   string
	ContactEmail  string
	ContactPhone  *string
	Message       *string

	MeetingType MeetingType
	Location    *string // required iff PHYSICAL
	City        *string
	MeetingURL  *string // generated for ONLINE

	RequestedDurationMinutes int
	PrimarySlotID            uuid.UUID
	CoveredSlotIDs           []uuid.UUID // PrimarySlotID first, ascending start time
	StartAt                  time.Time   // start of the primary slot

	Status             BookingStatus
	LeadID             *string // CRM lead, nil if the CRM was unreachable
	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still holds its slots
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusConfirmed
}

// CanTransitionTo returns true if an operator may move the booking to the given status.
// Cancellation is not a plain status change, it goes through slot release.
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	switch b.Status {
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusNoShow
	case StatusCompleted, StatusNoShow:
		return next == StatusConfirmed || next == StatusCompleted || next == StatusNoShow
	default:
		return false
	}
}

// BookingsFilter фильтр для выборки бронирований
type BookingsFilter struct {
	Status           *BookingStatus // Фильтр по статусу (опционально)
	From             *time.Time     // Начало периода по времени встречи (опционально)
	To               *time.Time     // Конец периода по времени встречи (опционально)
	IncludeCancelled bool           // Включать ли отмененные бронирования
}

// ParseBookingStatus конвертирует строку в BookingStatus с валидацией
func ParseBookingStatus(s string) (BookingStatus, bool) {
	status := BookingStatus(s)
	for _, valid := range AllStatuses {
		if status == valid {
			return status, true
		}
	}
	return "", false
}
