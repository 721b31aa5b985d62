package models

import (
	"time"

	"github.com/m04kA/SMC-DemoBookingService/internal/domain"
)

// Request модели

// CreateSlotRequest запрос на создание одного слота
type CreateSlotRequest struct {
	OperatorID      int64
	StartAt         time.Time
	DurationMinutes int
	IsAvailable     *bool // по умолчанию true
}

// BulkCreateRequest запрос на пакетное создание слотов.
// Даты и время задаются в часовом поясе сервиса.
type BulkCreateRequest struct {
	OperatorID      int64
	DateStart       string // "2025-10-15"
	DateEnd         string // включительно
	TimeStart       string // "09:00"
	TimeEnd         string // "12:00", последний слот заканчивается не позже
	DurationMinutes int
	RepeatWeeks     int // дополнительные недели повтора
}

// UpdateSlotRequest запрос на изменение слота (все поля опциональны)
type UpdateSlotRequest struct {
	OperatorID      int64
	StartAt         *time.Time
	DurationMinutes *int
	IsAvailable     *bool
}

// ListSlotsRequest запрос календаря оператора
type ListSlotsRequest struct {
	From *time.Time
	To   *time.Time
}

// Response модели

// BookingSummary краткие данные бронирования, занимающего слот
type BookingSummary struct {
	ID            string    `json:"id"`
	InstituteName string    `json:"instituteName"`
	ContactName   string    `json:"contactName"`
	MeetingType   string    `json:"meetingType"`
	Status        string    `json:"status"`
	StartAt       time.Time `json:"startAt"`
}

// SlotResponse ответ с данными слота
type SlotResponse struct {
	ID              string          `json:"id"`
	StartAt         time.Time       `json:"startAt"`
	EndAt           time.Time       `json:"endAt"`
	DurationMinutes int             `json:"durationMinutes"`
	IsAvailable     bool            `json:"isAvailable"`
	State           string          `json:"state"`
	BookingID       *string         `json:"bookingId,omitempty"`
	Booking         *BookingSummary `json:"booking,omitempty"`
	Version         int             `json:"version"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// SlotStats сводка календаря
type SlotStats struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Booked    int `json:"booked"`
	Blocked   int `json:"blocked"`
	Upcoming  int `json:"upcoming"` // забронированные слоты в будущем
}

// SlotListResponse календарь оператора
type SlotListResponse struct {
	Slots []SlotResponse `json:"slots"`
	Stats SlotStats      `json:"stats"`
}

// BulkCreateResponse результат пакетного создания
type BulkCreateResponse struct {
	Slots        []SlotResponse `json:"slots"`
	CreatedCount int            `json:"createdCount"`
	SkippedCount int            `json:"skippedCount"` // пересечения и слоты в прошлом
}

// Методы конвертации

// FromDomainSlot конвертирует domain модель в DTO
func FromDomainSlot(s *domain.Slot, booking *domain.Booking) SlotResponse {
	resp := SlotResponse{
		ID:              s.ID.String(),
		StartAt:         s.StartAt,
		EndAt:           s.EndAt(),
		DurationMinutes: s.DurationMinutes,
		IsAvailable:     s.IsAvailable,
		State:           string(s.State()),
		Version:         s.Version,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}

	if s.BookingID != nil {
		id := s.BookingID.String()
		resp.BookingID = &id
	}

	if booking != nil {
		resp.Booking = &BookingSummary{
			ID:            booking.ID.String(),
			InstituteName: booking.InstituteName,
			ContactName:   booking.ContactName,
			MeetingType:   string(booking.MeetingType),
			Status:        string(booking.Status),
			StartAt:       booking.StartAt,
		}
	}

	return resp
}

// FromDomainSlots конвертирует слоты без данных бронирований
func FromDomainSlots(slots []*domain.Slot) []SlotResponse {
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, FromDomainSlot(s, nil))
	}
	return out
}
