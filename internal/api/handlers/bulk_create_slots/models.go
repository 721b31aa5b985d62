package bulk_create_slots

import (
	"github.com/m04kA/SMC-DemoBookingService/internal/service/slots/models"
)

// BulkCreateRequest HTTP request model
type BulkCreateRequest struct {
	DateStart       string `json:"dateStart"` // "2026-11-02"
	DateEnd         string `json:"dateEnd"`   // включительно
	TimeStart       string `json:"timeStart"` // "09:00"
	TimeEnd         string `json:"timeEnd"`   // "12:00"
	DurationMinutes int    `json:"durationMinutes"`
	RepeatWeeks     int    `json:"repeatWeeks,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *BulkCreateRequest) ToServiceRequest(operatorID int64) *models.BulkCreateRequest {
	return &models.BulkCreateRequest{
		OperatorID:      operatorID,
		DateStart:       r.DateStart,
		DateEnd:         r.DateEnd,
		TimeStart:       r.TimeStart,
		TimeEnd:         r.TimeEnd,
		DurationMinutes: r.DurationMinutes,
		RepeatWeeks:     r.RepeatWeeks,
	}
}
