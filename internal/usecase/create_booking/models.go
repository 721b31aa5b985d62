package create_booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DemoBookingService/internal/domain"
)

// Policy политика публичного бронирования
type Policy struct {
	HorizonDays            int
	MinNoticeMinutes       int
	DefaultDurationMinutes int
	MaxDurationMinutes     int
	Meeting                domain.MeetingRooms
}

// Request модель запроса на создание бронирования
type Request struct {
	SlotID          uuid.UUID   // Стартовый слот
	DurationMinutes *int        // Запрошенная длительность (по умолчанию из политики)
	CoveredSlotIDs  []uuid.UUID // Цепочка из списка доступных стартов (опционально)

	InstituteName string
	ContactName   string
	ContactEmail  string
	ContactPhone  *string
	Message       *string

	MeetingType string  // ONLINE или PHYSICAL
	Location    *string // Обязателен для PHYSICAL
	City        *string
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID            uuid.UUID
	InstituteName string
	ContactName   string
	ContactEmail  string
	ContactPhone  *string
	Message       *string

	MeetingType string
	MeetingURL  *string
	Location    *string
	City        *string

	RequestedDurationMinutes int
	PrimarySlotID            uuid.UUID
	CoveredSlotIDs           []uuid.UUID
	StartAt                  time.Time
	EndAt                    time.Time

	Status string
	LeadID *string // nil, если CRM недоступна

	CreatedAt time.Time
}

func toResponse(b *domain.Booking) *Response {
	return &Response{
		ID:                       b.ID,
		InstituteName:            b.InstituteName,
		ContactName:              b.ContactName,
		ContactEmail:             b.ContactEmail,
		ContactPhone:             b.ContactPhone,
		Message:                  b.Message,
		MeetingType:              string(b.MeetingType),
		MeetingURL:               b.MeetingURL,
		Location:                 b.Location,
		City:                     b.City,
		RequestedDurationMinutes: b.RequestedDurationMinutes,
		PrimarySlotID:            b.PrimarySlotID,
		CoveredSlotIDs:           b.CoveredSlotIDs,
		StartAt:                  b.StartAt,
		EndAt:                    b.StartAt.Add(time.Duration(b.RequestedDurationMinutes) * time.Minute),
		Status:                   string(b.Status),
		LeadID:                   b.LeadID,
		CreatedAt:                b.CreatedAt,
	}
}
