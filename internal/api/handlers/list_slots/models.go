package list_slots

import (
	"github.com/m04kA/SMC-DemoBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-DemoBookingService/internal/service/slots/models"
)

// ToServiceRequest формирует запрос календаря из query параметров
func ToServiceRequest(fromStr, toStr string) (*models.ListSlotsRequest, error) {
	from, err := handlers.ParseTime(fromStr)
	if err != nil {
		return nil, err
	}
	to, err := handlers.ParseTime(toStr)
	if err != nil {
		return nil, err
	}
	return &models.ListSlotsRequest{From: from, To: to}, nil
}
