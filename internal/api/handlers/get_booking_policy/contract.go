package get_booking_policy

import (
	getAvailableSlots "github.com/m04kA/SMC-DemoBookingService/internal/usecase/get_available_slots"
)

type PolicyProvider interface {
	Policy() getAvailableSlots.Policy
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
