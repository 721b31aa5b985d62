package update_booking_status

import (
	"strings"

	"github.com/m04kA/SMC-DemoBookingService/internal/service/bookings/models"
)

// UpdateStatusRequest HTTP request model
type UpdateStatusRequest struct {
	Status             string  `json:"status"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *UpdateStatusRequest) ToServiceRequest(operatorID int64) *models.UpdateStatusRequest {
	return &models.UpdateStatusRequest{
		OperatorID:         operatorID,
		Status:             strings.ToUpper(strings.TrimSpace(r.Status)),
		CancellationReason: r.CancellationReason,
	}
}
