package update_slot

import (
	"time"

	"github.com/m04kA/SMC-DemoBookingService/internal/service/slots/models"
)

// UpdateSlotRequest HTTP request model, все поля опциональны
type UpdateSlotRequest struct {
	StartAt         *time.Time `json:"startAt,omitempty"`
	DurationMinutes *int       `json:"durationMinutes,omitempty"`
	IsAvailable     *bool      `json:"isAvailable,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *UpdateSlotRequest) ToServiceRequest(operatorID int64) *models.UpdateSlotRequest {
	return &models.UpdateSlotRequest{
		OperatorID:      operatorID,
		StartAt:         r.StartAt,
		DurationMinutes: r.DurationMinutes,
		IsAvailable:     r.IsAvailable,
	}
}
