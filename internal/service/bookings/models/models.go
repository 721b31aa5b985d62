package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-DemoBookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// ListBookingsRequest запрос на получение списка бронирований
type ListBookingsRequest struct {
	From             *time.Time // Начало периода по времени встречи (опционально)
	To               *time.Time // Конец периода (опционально, исключительно)
	Status           *string    // Фильтр по статусу (опционально)
	IncludeCancelled bool       // Включить отменённые бронирования
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListBookingsRequest) ToDomainFilter() (domain.BookingsFilter, error) {
	filter := domain.BookingsFilter{
		From:             r.From,
		To:               r.To,
		IncludeCancelled: r.IncludeCancelled,
	}

	if r.Status != nil {
		status, ok := domain.ParseBookingStatus(*r.Status)
		if !ok {
			return filter, ErrInvalidStatus
		}
		filter.Status = &status
	}

	return filter, nil
}

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	OperatorID         int64
	CancellationReason *string
}

// UpdateStatusRequest запрос на обновление статуса бронирования
type UpdateStatusRequest struct {
	OperatorID         int64
	Status             string
	CancellationReason *string // используется только для CANCELLED
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID            string  `json:"id"`
	InstituteName string  `json:"instituteName"`
	ContactName   string  `json:"contactName"`
	ContactEmail  string  `json:"contactEmail"`
	ContactPhone  *string `json:"contactPhone,omitempty"`
	Message       *string `json:"message,omitempty"`

	MeetingType string  `json:"meetingType"`
	Location    *string `json:"location,omitempty"`
	City        *string `json:"city,omitempty"`
	MeetingURL  *string `json:"meetingUrl,omitempty"`

	RequestedDurationMinutes int       `json:"requestedDurationMinutes"`
	PrimarySlotID            string    `json:"primarySlotId"`
	CoveredSlotIDs           []string  `json:"coveredSlotIds"`
	StartAt                  time.Time `json:"startAt"`
	EndAt                    time.Time `json:"endAt"`

	Status             string  `json:"status"`
	LeadID             *string `json:"leadId,omitempty"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingStats сводка по выборке
type BookingStats struct {
	Total     int `json:"total"`
	Confirmed int `json:"confirmed"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	NoShow    int `json:"noShow"`
	Upcoming  int `json:"upcoming"` // активные с началом в будущем
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Stats    BookingStats      `json:"stats"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	covered := make([]string, len(b.CoveredSlotIDs))
	for i, id := range b.CoveredSlotIDs {
		covered[i] = id.String()
	}

	resp := &BookingResponse{
		ID:                       b.ID.String(),
		InstituteName:            b.InstituteName,
		ContactName:              b.ContactName,
		ContactEmail:             b.ContactEmail,
		ContactPhone:             b.ContactPhone,
		Message:                  b.Message,
		MeetingType:              string(b.MeetingType),
		Location:                 b.Location,
		City:                     b.City,
		MeetingURL:               b.MeetingURL,
		RequestedDurationMinutes: b.RequestedDurationMinutes,
		PrimarySlotID:            b.PrimarySlotID.String(),
		CoveredSlotIDs:           covered,
		StartAt:                  b.StartAt,
		EndAt:                    b.StartAt.Add(time.Duration(b.RequestedDurationMinutes) * time.Minute),
		Status:                   string(b.Status),
		LeadID:                   b.LeadID,
		CancellationReason:       b.CancellationReason,
		CreatedAt:                b.CreatedAt,
		UpdatedAt:                b.UpdatedAt,
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO и считает сводку
func FromDomainBookingList(bookings []*domain.Booking, now time.Time) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, *FromDomainBooking(b))

		resp.Stats.Total++
		switch b.Status {
		case domain.StatusConfirmed:
			resp.Stats.Confirmed++
		case domain.StatusCompleted:
			resp.Stats.Completed++
		case domain.StatusCancelled:
			resp.Stats.Cancelled++
		case domain.StatusNoShow:
			resp.Stats.NoShow++
		}
		if b.IsActive() && b.StartAt.After(now) {
			resp.Stats.Upcoming++
		}
	}

	return resp
}
