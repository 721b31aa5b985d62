package get_available_slots

import (
	"context"

	getAvailableSlots "github.com/m04kA/SMC-DemoBookingService/internal/usecase/get_available_slots"
)

// AvailabilityFinder ищет старты, вмещающие запрошенную длительность
type AvailabilityFinder interface {
	Execute(ctx context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
