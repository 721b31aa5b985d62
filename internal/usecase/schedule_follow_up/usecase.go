package schedule_follow_up

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DemoBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-DemoBookingService/internal/infra/storage/booking"
)

const modeFollowUp = "follow_up"

// UseCase use case для назначения повторной встречи по существующему бронированию.
// Слот создается сразу занятым, поэтому снимок свободных слотов не меняется.
type UseCase struct {
	bookingRepo  BookingRepository
	slotRepo     SlotRepository
	metrics      Metrics
	txManager    TransactionManager
	location     *time.Location
	meeting      domain.MeetingRooms
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	metrics Metrics,
	txManager TransactionManager,
	location *time.Location,
	meeting domain.MeetingRooms,
	logger Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		slotRepo:     slotRepo,
		metrics:      metrics,
		txManager:    txManager,
		location:     location,
		meeting:      meeting,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute создает слот и бронирует его для того же контакта в одной транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ScheduleFollowUp: operator=%d, booking=%s, date=%s, time=%s, duration=%d",
		req.OperatorID, req.BookingID, req.Date, req.Time, req.DurationMinutes)

	// 1. Валидация входных данных
	start, err := parseStart(req, uc.location, uc.timeProvider.Now())
	if err != nil {
		uc.logger.Warn("ScheduleFollowUp: validation failed: %v", err)
		return nil, err
	}
	end := start.Add(time.Duration(req.DurationMinutes) * time.Minute)

	var result *domain.Booking

	// 2. Слот и бронирование создаются атомарно
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Исходное бронирование
		original, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("ScheduleFollowUp: booking id=%s not found", req.BookingID)
				return ErrBookingNotFound
			}
			uc.logger.Error("ScheduleFollowUp: failed to get booking id=%s: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to get booking: %w", ErrInternal, err)
		}

		// 2.2. Новый слот не должен пересекаться с существующими
		overlap, err := uc.slotRepo.HasOverlap(txCtx, start, end, nil)
		if err != nil {
			uc.logger.Error("ScheduleFollowUp: overlap check failed: %v", err)
			return fmt.Errorf("%w: overlap check: %w", ErrInternal, err)
		}
		if overlap {
			uc.logger.Warn("ScheduleFollowUp: %s..%s overlaps an existing slot",
				start.Format(time.RFC3339), end.Format(time.RFC3339))
			return ErrSlotOverlap
		}

		// 2.3. Создаем слот
		slot, err := uc.slotRepo.Create(txCtx, &domain.Slot{
			StartAt:         start,
			DurationMinutes: req.DurationMinutes,
			IsAvailable:     true,
			CreatedBy:       operatorRef(req.OperatorID),
		})
		if err != nil {
			uc.logger.Error("ScheduleFollowUp: failed to create slot: %v", err)
			return fmt.Errorf("%w: failed to create slot: %w", ErrInternal, err)
		}

		// 2.4. Бронирование для того же контакта, всегда онлайн
		booking := &domain.Booking{
			ID:                       uuid.New(),
			InstituteName:            original.InstituteName,
			ContactName:              original.ContactName,
			ContactEmail:             original.ContactEmail,
			ContactPhone:             original.ContactPhone,
			Message:                  req.Notes,
			MeetingType:              domain.MeetingOnline,
			City:                     original.City,
			RequestedDurationMinutes: req.DurationMinutes,
			PrimarySlotID:            slot.ID,
			CoveredSlotIDs:           []uuid.UUID{slot.ID},
			StartAt:                  slot.StartAt,
			Status:                   domain.StatusConfirmed,
			LeadID:                   original.LeadID,
		}
		link := uc.meeting.LinkFor(booking.ID)
		booking.MeetingURL = &link

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("ScheduleFollowUp: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		// 2.5. Занимаем слот
		if err := uc.slotRepo.Reserve(txCtx, created.ID, created.CoveredSlotIDs); err != nil {
			uc.logger.Error("ScheduleFollowUp: failed to reserve slot id=%s: %v", slot.ID, err)
			return fmt.Errorf("%w: failed to reserve slot: %w", ErrInternal, err)
		}

		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.AddSlotsCreated(modeFollowUp, 1)
	uc.metrics.IncBookingCreated(string(result.MeetingType), 1)

	uc.logger.Info("ScheduleFollowUp: booking id=%s scheduled as follow-up of id=%s", result.ID, req.BookingID)
	return toResponse(result, req.BookingID), nil
}

func operatorRef(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}
