package schedule_follow_up

import (
	"time"

	"github.com/google/uuid"

	scheduleFollowUp "github.com/m04kA/SMC-DemoBookingService/internal/usecase/schedule_follow_up"
)

// FollowUpRequest HTTP request model
type FollowUpRequest struct {
	Date            string  `json:"date"` // "2026-11-05"
	Time            string  `json:"time"` // "14:00"
	DurationMinutes int     `json:"durationMinutes"`
	Notes           *string `json:"notes,omitempty"`
}

// FollowUpResponse HTTP response model
type FollowUpResponse struct {
	BookingID       string  `json:"bookingId"`
	FollowUpOf      string  `json:"followUpOf"`
	SlotID          string  `json:"slotId"`
	StartAt         string  `json:"startAt"`
	EndAt           string  `json:"endAt"`
	DurationMinutes int     `json:"durationMinutes"`
	InstituteName   string  `json:"instituteName"`
	ContactName     string  `json:"contactName"`
	ContactEmail    string  `json:"contactEmail"`
	MeetingURL      *string `json:"meetingUrl,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	LeadID          *string `json:"leadId,omitempty"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *FollowUpRequest) ToUseCaseRequest(bookingID uuid.UUID, operatorID int64) *scheduleFollowUp.Request {
	return &scheduleFollowUp.Request{
		OperatorID:      operatorID,
		BookingID:       bookingID,
		Date:            r.Date,
		Time:            r.Time,
		DurationMinutes: r.DurationMinutes,
		Notes:           r.Notes,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *scheduleFollowUp.Response) *FollowUpResponse {
	return &FollowUpResponse{
		BookingID:       resp.BookingID.String(),
		FollowUpOf:      resp.FollowUpOf.String(),
		SlotID:          resp.SlotID.String(),
		StartAt:         resp.StartAt.Format(time.RFC3339),
		EndAt:           resp.EndAt.Format(time.RFC3339),
		DurationMinutes: resp.DurationMinutes,
		InstituteName:   resp.InstituteName,
		ContactName:     resp.ContactName,
		ContactEmail:    resp.ContactEmail,
		MeetingURL:      resp.MeetingURL,
		Notes:           resp.Notes,
		LeadID:          resp.LeadID,
		Status:          resp.Status,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
	}
}
