package create_slot

import (
	"time"

	"github.com/m04kA/SMC-DemoBookingService/internal/service/slots/models"
)

// CreateSlotRequest HTTP request model
type CreateSlotRequest struct {
	StartAt         time.Time `json:"startAt"` // RFC3339
	DurationMinutes int       `json:"durationMinutes"`
	IsAvailable     *bool     `json:"isAvailable,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CreateSlotRequest) ToServiceRequest(operatorID int64) *models.CreateSlotRequest {
	return &models.CreateSlotRequest{
		OperatorID:      operatorID,
		StartAt:         r.StartAt,
		DurationMinutes: r.DurationMinutes,
		IsAvailable:     r.IsAvailable,
	}
}
