package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DemoBookingService/internal/domain"
	slotRepo "github.com/m04kA/SMC-DemoBookingService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-DemoBookingService/internal/integrations/crmservice"
	"github.com/m04kA/SMC-DemoBookingService/internal/slotallocator"
)

// Причины конфликтов для метрик
const (
	conflictSlotNotAvailable = "slot_not_available"
	conflictNotSatisfiable   = "duration_not_satisfiable"
	conflictStaleSnapshot    = "stale_snapshot"
)

// UseCase use case для создания бронирования демонстрации
type UseCase struct {
	slotRepo     SlotRepository
	bookingRepo  BookingRepository
	crmClient    CRMClient
	cache        SnapshotCache
	metrics      Metrics
	txManager    TransactionManager
	policy       Policy
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case.
// crmClient может быть nil, если интеграция с CRM выключена.
func NewUseCase(
	slotRepo SlotRepository,
	bookingRepo BookingRepository,
	crmClient CRMClient,
	cache SnapshotCache,
	metrics Metrics,
	txManager TransactionManager,
	policy Policy,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:     slotRepo,
		bookingRepo:  bookingRepo,
		crmClient:    crmClient,
		cache:        cache,
		metrics:      metrics,
		txManager:    txManager,
		policy:       policy,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования.
// Цепочка слотов пересчитывается на заблокированном снимке внутри сериализуемой транзакции,
// резервирование всех слотов атомарно: либо заняты все, либо ни один.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	duration, err := resolveDuration(req, uc.policy)
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("CreateBooking: slot=%s, duration=%d, meetingType=%s, institute=%q",
		req.SlotID, duration, req.MeetingType, req.InstituteName)

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	var result *domain.Booking

	// 3. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Блокируем стартовый слот: GetByID с txCtx берет FOR UPDATE до конца транзакции
		start, err := uc.slotRepo.GetByID(txCtx, req.SlotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				uc.logger.Warn("CreateBooking: slot id=%s not found", req.SlotID)
				return ErrSlotNotFound
			}
			uc.logger.Error("CreateBooking: failed to get slot id=%s: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to get slot: %w", ErrInternal, err)
		}

		if !start.IsBookable() {
			uc.logger.Warn("CreateBooking: slot id=%s is %s", start.ID, start.State())
			return ErrSlotNotAvailable
		}

		// 3.2. Проверяем запас и горизонт
		if err := validateSlotTiming(start, now, uc.policy); err != nil {
			uc.logger.Warn("CreateBooking: slot timing check failed: %v", err)
			return err
		}

		// 3.3. Блокируем окно встречи и пересчитываем цепочку
		windowEnd := start.StartAt.Add(time.Duration(duration) * time.Minute)
		locked, err := uc.slotRepo.ListForUpdate(txCtx, start.StartAt, windowEnd)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to lock slots: %v", err)
			return fmt.Errorf("%w: failed to lock slots: %w", ErrInternal, err)
		}

		covered, err := slotallocator.ResolveCoveredSlots(*start, duration, values(locked))
		if err != nil {
			uc.logger.Warn("CreateBooking: slot id=%s cannot hold %d minutes: %v", start.ID, duration, err)
			return fmt.Errorf("%w: %v", ErrDurationNotSatisfiable, err)
		}

		// 3.4. Цепочка клиента должна совпадать со свежей
		if len(req.CoveredSlotIDs) > 0 && !sameSlotSet(req.CoveredSlotIDs, covered) {
			uc.logger.Warn("CreateBooking: client chain %v differs from resolved %v", req.CoveredSlotIDs, covered)
			return ErrStaleSnapshot
		}

		// Резервируем только минимальную непрерывную цепочку
		if err := slotallocator.VerifyChain(covered, duration, values(locked)); err != nil {
			uc.logger.Error("CreateBooking: resolved chain failed verification: %v", err)
			return fmt.Errorf("%w: resolved chain failed verification: %w", ErrInternal, err)
		}

		// 3.5. Создаем бронирование
		booking := &domain.Booking{
			ID:                       uuid.New(),
			InstituteName:            req.InstituteName,
			ContactName:              req.ContactName,
			ContactEmail:             req.ContactEmail,
			ContactPhone:             req.ContactPhone,
			Message:                  req.Message,
			MeetingType:              domain.MeetingType(req.MeetingType),
			Location:                 req.Location,
			City:                     req.City,
			RequestedDurationMinutes: duration,
			PrimarySlotID:            start.ID,
			CoveredSlotIDs:           covered,
			StartAt:                  start.StartAt,
			Status:                   domain.StatusConfirmed,
		}
		if booking.MeetingType == domain.MeetingOnline {
			link := uc.policy.Meeting.LinkFor(booking.ID)
			booking.MeetingURL = &link
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		// 3.6. Резервируем все слоты цепочки
		if err := uc.slotRepo.Reserve(txCtx, created.ID, covered); err != nil {
			if errors.Is(err, slotRepo.ErrSlotConflict) {
				uc.logger.Warn("CreateBooking: reserve conflict for booking id=%s: %v", created.ID, err)
				return ErrStaleSnapshot
			}
			uc.logger.Error("CreateBooking: failed to reserve slots: %v", err)
			return fmt.Errorf("%w: failed to reserve slots: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		uc.recordConflict(err)
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%s covering %d slots",
		result.ID, len(result.CoveredSlotIDs))

	// 4. Снимок свободных слотов устарел
	if err := uc.cache.Invalidate(ctx); err != nil {
		uc.logger.Warn("CreateBooking: failed to invalidate slots cache: %v", err)
	}
	uc.metrics.IncBookingCreated(string(result.MeetingType), len(result.CoveredSlotIDs))

	// 5. Привязываем лид в CRM, бронирование уже зафиксировано
	uc.linkLead(ctx, result)

	return toResponse(result), nil
}

func (uc *UseCase) recordConflict(err error) {
	switch {
	case errors.Is(err, ErrSlotNotAvailable):
		uc.metrics.IncBookingConflict(conflictSlotNotAvailable)
	case errors.Is(err, ErrDurationNotSatisfiable):
		uc.metrics.IncBookingConflict(conflictNotSatisfiable)
	case errors.Is(err, ErrStaleSnapshot):
		uc.metrics.IncBookingConflict(conflictStaleSnapshot)
	}
}

func (uc *UseCase) linkLead(ctx context.Context, booking *domain.Booking) {
	if uc.crmClient == nil {
		return
	}

	lead, err := uc.crmClient.UpsertLeadWithGracefulDegradation(ctx, crmservice.LeadRequest{
		InstituteName: booking.InstituteName,
		ContactName:   booking.ContactName,
		Email:         booking.ContactEmail,
		Phone:         booking.ContactPhone,
		City:          booking.City,
		Source:        crmservice.LeadSource,
		BookingID:     booking.ID.String(),
		DemoAt:        booking.StartAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		uc.logger.Warn("CreateBooking: lead not linked for booking id=%s: %v", booking.ID, err)
		return
	}

	if err := uc.bookingRepo.SetLead(ctx, booking.ID, lead.ID); err != nil {
		uc.logger.Error("CreateBooking: failed to store lead id=%s for booking id=%s: %v", lead.ID, booking.ID, err)
		return
	}
	booking.LeadID = &lead.ID
}

func values(slots []*domain.Slot) []domain.Slot {
	out := make([]domain.Slot, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}
