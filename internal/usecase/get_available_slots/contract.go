package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-DemoBookingService/internal/domain"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	List(ctx context.Context, filter domain.SlotsFilter) ([]*domain.Slot, error)
}

// SnapshotCache кэш снимка свободных слотов.
// Set получает поколение, которое вернул промахнувшийся Get.
type SnapshotCache interface {
	Get(ctx context.Context, from, to time.Time) ([]*domain.Slot, int64, bool, error)
	Set(ctx context.Context, gen int64, from, to time.Time, slots []*domain.Slot) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
