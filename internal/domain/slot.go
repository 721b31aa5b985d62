package domain

import (
	"time"

	"github.com/google/uuid"
)

// SlotState represents the derived lifecycle state of an availability slot
type SlotState string

const (
	SlotStateAvailable SlotState = "available"
	SlotStateBooked    SlotState = "booked"
	SlotStateBlocked   SlotState = "blocked"
)

// Slot is a fixed-duration availability tile created by an operator
type Slot struct {
	ID              uuid.UUID
	StartAt         time.Time
	DurationMinutes int
	IsAvailable     bool       // operator-controlled, independent of bookings
	BookingID       *uuid.UUID // at most one active booking per slot
	Version         int
	CreatedBy       *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EndAt returns the moment the slot ends
func (s *Slot) EndAt() time.Time {
	return s.StartAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// IsBooked returns true if the slot holds a booking
func (s *Slot) IsBooked() bool {
	return s.BookingID != nil
}

// IsBookable returns true if the slot is available and holds no booking
func (s *Slot) IsBookable() bool {
	return s.IsAvailable && !s.IsBooked()
}

// IsBlocked returns true if the operator disabled the slot
func (s *Slot) IsBlocked() bool {
	return !s.IsAvailable
}

// State returns the slot state; blocked takes precedence over booked
func (s *Slot) State() SlotState {
	switch {
	case s.IsBlocked():
		return SlotStateBlocked
	case s.IsBooked():
		return SlotStateBooked
	default:
		return SlotStateAvailable
	}
}

// Overlaps returns true if the slot intersects [start, end).
// Slots that only touch at a boundary do not overlap.
func (s *Slot) Overlaps(start, end time.Time) bool {
	return s.StartAt.Before(end) && s.EndAt().After(start)
}

// SlotsFilter фильтр для выборки слотов
type SlotsFilter struct {
	From         *time.Time // Начало окна (включительно, по start_at)
	To           *time.Time // Конец окна (исключительно, по start_at)
	OnlyBookable bool       // Только доступные и свободные слоты
}
