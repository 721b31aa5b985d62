package list_bookings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-DemoBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-DemoBookingService/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
func ToServiceRequest(statusStr, fromStr, toStr, includeCancelledStr string) (*models.ListBookingsRequest, error) {
	req := &models.ListBookingsRequest{
		IncludeCancelled: false, // По умолчанию только активные
	}

	if statusStr != "" {
		status := strings.ToUpper(statusStr)
		req.Status = &status
	}

	from, err := handlers.ParseTime(fromStr)
	if err != nil {
		return nil, err
	}
	to, err := handlers.ParseTime(toStr)
	if err != nil {
		return nil, err
	}
	req.From, req.To = from, to

	if includeCancelledStr != "" {
		includeCancelled, err := strconv.ParseBool(includeCancelledStr)
		if err != nil {
			return nil, fmt.Errorf("invalid includeCancelled value: %w", err)
		}
		req.IncludeCancelled = includeCancelled
	}

	return req, nil
}
