package create_booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DemoBookingService/internal/domain"
	"github.com/m04kA/SMC-DemoBookingService/internal/integrations/crmservice"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error)
	ListForUpdate(ctx context.Context, from, to time.Time) ([]*domain.Slot, error)
	Reserve(ctx context.Context, bookingID uuid.UUID, slotIDs []uuid.UUID) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	SetLead(ctx context.Context, id uuid.UUID, leadID string) error
}

// CRMClient интерфейс клиента CRM
type CRMClient interface {
	UpsertLeadWithGracefulDegradation(ctx context.Context, lead crmservice.LeadRequest) (*crmservice.Lead, error)
}

// SnapshotCache кэш снимка свободных слотов
type SnapshotCache interface {
	Invalidate(ctx context.Context) error
}

// Metrics счетчики бронирований
type Metrics interface {
	IncBookingCreated(meetingType string, coveredSlots int)
	IncBookingConflict(reason string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
