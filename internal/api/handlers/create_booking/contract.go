package create_booking

import (
	"context"

	createBooking "github.com/m04kA/SMC-DemoBookingService/internal/usecase/create_booking"
)

// DemoBookingCreator бронирует цепочку слотов для публичной формы
type DemoBookingCreator interface {
	Execute(ctx context.Context, req *createBooking.Request) (*createBooking.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
