package bulk_create_slots

import (
	"context"

	"github.com/m04kA/SMC-DemoBookingService/internal/service/slots/models"
)

type SlotService interface {
	CreateBulk(ctx context.Context, req *models.BulkCreateRequest) (*models.BulkCreateResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
