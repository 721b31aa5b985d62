package cancel_booking

import (
	"github.com/m04kA/SMC-DemoBookingService/internal/service/bookings/models"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CancelBookingRequest) ToServiceRequest(operatorID int64) *models.CancelBookingRequest {
	return &models.CancelBookingRequest{
		OperatorID:         operatorID,
		CancellationReason: r.CancellationReason,
	}
}
