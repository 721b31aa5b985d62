package create_booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	createBooking "github.com/m04kA/SMC-DemoBookingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	SlotID          string   `json:"slotId"`
	DurationMinutes *int     `json:"durationMinutes,omitempty"`
	CoveredSlotIDs  []string `json:"coveredSlotIds,omitempty"` // из ответа /demo-slots/available

	InstituteName string  `json:"instituteName"`
	ContactName   string  `json:"contactName"`
	ContactEmail  string  `json:"contactEmail"`
	ContactPhone  *string `json:"contactPhone,omitempty"`
	Message       *string `json:"message,omitempty"`

	MeetingType string  `json:"meetingType"`
	Location    *string `json:"location,omitempty"`
	City        *string `json:"city,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID            string  `json:"id"`
	InstituteName string  `json:"instituteName"`
	ContactName   string  `json:"contactName"`
	ContactEmail  string  `json:"contactEmail"`
	ContactPhone  *string `json:"contactPhone,omitempty"`
	Message       *string `json:"message,omitempty"`

	MeetingType string  `json:"meetingType"`
	MeetingURL  *string `json:"meetingUrl,omitempty"`
	Location    *string `json:"location,omitempty"`
	City        *string `json:"city,omitempty"`

	RequestedDurationMinutes int      `json:"requestedDurationMinutes"`
	PrimarySlotID            string   `json:"primarySlotId"`
	CoveredSlotIDs           []string `json:"coveredSlotIds"`
	StartAt                  string   `json:"startAt"`
	EndAt                    string   `json:"endAt"`

	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest() (*createBooking.Request, error) {
	slotID, err := uuid.Parse(r.SlotID)
	if err != nil {
		return nil, fmt.Errorf("invalid slotId %q: %w", r.SlotID, err)
	}

	var covered []uuid.UUID
	for _, raw := range r.CoveredSlotIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid coveredSlotIds entry %q: %w", raw, err)
		}
		covered = append(covered, id)
	}

	return &createBooking.Request{
		SlotID:          slotID,
		DurationMinutes: r.DurationMinutes,
		CoveredSlotIDs:  covered,
		InstituteName:   r.InstituteName,
		ContactName:     r.ContactName,
		ContactEmail:    r.ContactEmail,
		ContactPhone:    r.ContactPhone,
		Message:         r.Message,
		MeetingType:     r.MeetingType,
		Location:        r.Location,
		City:            r.City,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response.
// LeadID наружу не отдается.
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	covered := make([]string, len(resp.CoveredSlotIDs))
	for i, id := range resp.CoveredSlotIDs {
		covered[i] = id.String()
	}

	return &BookingResponse{
		ID:                       resp.ID.String(),
		InstituteName:            resp.InstituteName,
		ContactName:              resp.ContactName,
		ContactEmail:             resp.ContactEmail,
		ContactPhone:             resp.ContactPhone,
		Message:                  resp.Message,
		MeetingType:              resp.MeetingType,
		MeetingURL:               resp.MeetingURL,
		Location:                 resp.Location,
		City:                     resp.City,
		RequestedDurationMinutes: resp.RequestedDurationMinutes,
		PrimarySlotID:            resp.PrimarySlotID.String(),
		CoveredSlotIDs:           covered,
		StartAt:                  resp.StartAt.Format(time.RFC3339),
		EndAt:                    resp.EndAt.Format(time.RFC3339),
		Status:                   resp.Status,
		CreatedAt:                resp.CreatedAt.Format(time.RFC3339),
	}
}
