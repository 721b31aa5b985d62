package schedule_follow_up

import (
	"context"

	scheduleFollowUp "github.com/m04kA/SMC-DemoBookingService/internal/usecase/schedule_follow_up"
)

type ScheduleFollowUpUseCase interface {
	Execute(ctx context.Context, req *scheduleFollowUp.Request) (*scheduleFollowUp.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
