package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DemoBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-DemoBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-DemoBookingService/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями (операторская часть)
type Service struct {
	bookingRepo  BookingRepository
	slotRepo     SlotRepository
	cache        SnapshotCache
	metrics      Metrics
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	cache SnapshotCache,
	metrics Metrics,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		slotRepo:     slotRepo,
		cache:        cache,
		metrics:      metrics,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%s", id)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%s not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBooking(booking), nil
}

// List получает бронирования с фильтрацией и сводкой
func (s *Service) List(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("ListBookings: from=%v, to=%v, status=%v, includeCancelled=%t",
		req.From, req.To, req.Status, req.IncludeCancelled)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("ListBookings: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		s.logger.Warn("ListBookings: empty period %s - %s", filter.From, filter.To)
		return nil, fmt.Errorf("%w: from must be before to", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ListBookings: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListBookings: fetched %d bookings", len(bookings))
	return models.FromDomainBookingList(bookings, s.timeProvider.Now()), nil
}

// UpdateStatus меняет статус бронирования оператором.
// CANCELLED обрабатывается через Cancel, чтобы освободить слоты.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req *models.UpdateStatusRequest) (*models.BookingResponse, error) {
	s.logger.Info("UpdateStatus: booking id=%s to status=%s by operator=%d", id, req.Status, req.OperatorID)

	status, ok := domain.ParseBookingStatus(req.Status)
	if !ok {
		s.logger.Warn("UpdateStatus: invalid status=%s", req.Status)
		return nil, ErrInvalidStatus
	}

	if status == domain.StatusCancelled {
		return s.Cancel(ctx, id, &models.CancelBookingRequest{
			OperatorID:         req.OperatorID,
			CancellationReason: req.CancellationReason,
		})
	}

	var result *domain.Booking
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := s.loadBooking(txCtx, "UpdateStatus", id)
		if err != nil {
			return err
		}

		if !booking.CanTransitionTo(status) {
			s.logger.Warn("UpdateStatus: transition %s -> %s not allowed for booking id=%s", booking.Status, status, id)
			return ErrInvalidTransition
		}

		if err := s.bookingRepo.UpdateStatus(txCtx, id, status); err != nil {
			s.logger.Error("UpdateStatus: failed to update booking id=%s: %v", id, err)
			return fmt.Errorf("%w: UpdateStatus - repository error: %w", ErrInternal, err)
		}

		booking.Status = status
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("UpdateStatus: booking id=%s is now %s", id, status)
	return models.FromDomainBooking(result), nil
}

// Cancel отменяет бронирование и освобождает все его слоты в одной транзакции.
// Либо освобождаются все слоты, либо бронирование остается подтвержденным.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%s by operator=%d", id, req.OperatorID)

	if req.CancellationReason != nil && len([]rune(*req.CancellationReason)) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: cancellation reason too long", ErrInvalidInput)
	}

	var result *domain.Booking
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := s.loadBooking(txCtx, "Cancel", id)
		if err != nil {
			return err
		}

		if !booking.CanBeCancelled() {
			s.logger.Warn("Cancel: booking id=%s cannot be cancelled, status=%s", id, booking.Status)
			return ErrCannotCancel
		}

		if err := s.bookingRepo.Cancel(txCtx, id, req.CancellationReason); err != nil {
			s.logger.Error("Cancel: failed to cancel booking id=%s: %v", id, err)
			return fmt.Errorf("%w: Cancel - repository error: %w", ErrInternal, err)
		}

		if err := s.slotRepo.Release(txCtx, id, booking.CoveredSlotIDs); err != nil {
			s.logger.Error("Cancel: failed to release %d slots of booking id=%s: %v", len(booking.CoveredSlotIDs), id, err)
			return fmt.Errorf("%w: Cancel - release slots: %w", ErrInternal, err)
		}

		now := s.timeProvider.Now()
		booking.Status = domain.StatusCancelled
		booking.CancellationReason = req.CancellationReason
		booking.CancelledAt = &now
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Cancel: failed to invalidate slots cache: %v", err)
	}
	s.metrics.IncBookingCancelled()

	s.logger.Info("Cancel: booking id=%s cancelled, released %d slots", id, len(result.CoveredSlotIDs))
	return models.FromDomainBooking(result), nil
}

func (s *Service) loadBooking(ctx context.Context, op string, id uuid.UUID) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%s not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
	return booking, nil
}
