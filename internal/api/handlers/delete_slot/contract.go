package delete_slot

import (
	"context"

	"github.com/google/uuid"
)

type SlotService interface {
	Delete(ctx context.Context, id uuid.UUID, operatorID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
