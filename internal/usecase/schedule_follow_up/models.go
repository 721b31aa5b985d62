package schedule_follow_up

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DemoBookingService/internal/domain"
)

// Request модель запроса на повторную встречу
type Request struct {
	OperatorID      int64
	BookingID       uuid.UUID // исходное бронирование
	Date            string    // YYYY-MM-DD в часовом поясе сервиса
	Time            string    // HH:MM
	DurationMinutes int
	Notes           *string
}

// Response модель ответа с созданной встречей
type Response struct {
	BookingID       uuid.UUID
	FollowUpOf      uuid.UUID
	SlotID          uuid.UUID
	StartAt         time.Time
	EndAt           time.Time
	DurationMinutes int

	InstituteName string
	ContactName   string
	ContactEmail  string
	MeetingURL    *string
	Notes         *string
	LeadID        *string
	Status        string

	CreatedAt time.Time
}

func toResponse(b *domain.Booking, followUpOf uuid.UUID) *Response {
	return &Response{
		BookingID:       b.ID,
		FollowUpOf:      followUpOf,
		SlotID:          b.PrimarySlotID,
		StartAt:         b.StartAt,
		EndAt:           b.StartAt.Add(time.Duration(b.RequestedDurationMinutes) * time.Minute),
		DurationMinutes: b.RequestedDurationMinutes,
		InstituteName:   b.InstituteName,
		ContactName:     b.ContactName,
		ContactEmail:    b.ContactEmail,
		MeetingURL:      b.MeetingURL,
		Notes:           b.Message,
		LeadID:          b.LeadID,
		Status:          string(b.Status),
		CreatedAt:       b.CreatedAt,
	}
}
