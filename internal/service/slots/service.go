package slots

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DemoBookingService/internal/domain"
	slotRepo "github.com/m04kA/SMC-DemoBookingService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-DemoBookingService/internal/service/slots/models"
)

const (
	modeSingle = "single"
	modeBulk   = "bulk"
)

// Service сервис управления слотами доступности (операторская часть)
type Service struct {
	slotRepo     SlotRepository
	bookingRepo  BookingRepository
	cache        SnapshotCache
	metrics      Metrics
	txManager    TransactionManager
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

// NewService создает новый экземпляр сервиса слотов.
// location используется для разбора дат и времени пакетного создания.
func NewService(
	slotRepo SlotRepository,
	bookingRepo BookingRepository,
	cache SnapshotCache,
	metrics Metrics,
	txManager TransactionManager,
	location *time.Location,
	logger Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		slotRepo:     slotRepo,
		bookingRepo:  bookingRepo,
		cache:        cache,
		metrics:      metrics,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		location:     location,
		logger:       logger,
	}
}

// Create создает один слот
func (s *Service) Create(ctx context.Context, req *models.CreateSlotRequest) (*models.SlotResponse, error) {
	s.logger.Info("CreateSlot: operator=%d, start=%s, duration=%d", req.OperatorID, req.StartAt.Format(time.RFC3339), req.DurationMinutes)

	if err := s.validateSchedule(req.StartAt, req.DurationMinutes); err != nil {
		s.logger.Warn("CreateSlot: validation failed: %v", err)
		return nil, err
	}

	slot := &domain.Slot{
		StartAt:         req.StartAt.UTC(),
		DurationMinutes: req.DurationMinutes,
		IsAvailable:     req.IsAvailable == nil || *req.IsAvailable,
		CreatedBy:       operatorRef(req.OperatorID),
	}

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		overlap, err := s.slotRepo.HasOverlap(txCtx, slot.StartAt, slot.EndAt(), nil)
		if err != nil {
			s.logger.Error("CreateSlot: overlap check failed: %v", err)
			return fmt.Errorf("%w: Create - overlap check: %w", ErrInternal, err)
		}
		if overlap {
			s.logger.Warn("CreateSlot: slot at %s overlaps an existing slot", slot.StartAt.Format(time.RFC3339))
			return ErrSlotOverlap
		}

		if _, err := s.slotRepo.Create(txCtx, slot); err != nil {
			s.logger.Error("CreateSlot: repository error: %v", err)
			return fmt.Errorf("%w: Create - repository error: %w", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, "CreateSlot")
	s.metrics.AddSlotsCreated(modeSingle, 1)

	s.logger.Info("CreateSlot: created slot id=%s", slot.ID)
	resp := models.FromDomainSlot(slot, nil)
	return &resp, nil
}

// CreateBulk создает слоты на каждый день диапазона с шагом duration,
// повторяя сетку RepeatWeeks дополнительных недель.
// Пересекающиеся и прошедшие слоты пропускаются, остальные создаются в одной транзакции.
func (s *Service) CreateBulk(ctx context.Context, req *models.BulkCreateRequest) (*models.BulkCreateResponse, error) {
	s.logger.Info("CreateSlotsBulk: operator=%d, dates=%s..%s, times=%s..%s, duration=%d, repeatWeeks=%d",
		req.OperatorID, req.DateStart, req.DateEnd, req.TimeStart, req.TimeEnd, req.DurationMinutes, req.RepeatWeeks)

	candidates, err := s.expandBulk(req)
	if err != nil {
		s.logger.Warn("CreateSlotsBulk: validation failed: %v", err)
		return nil, err
	}

	now := s.timeProvider.Now()
	skipped := 0
	future := candidates[:0]
	for _, c := range candidates {
		if !c.StartAt.After(now) {
			skipped++
			continue
		}
		future = append(future, c)
	}

	var created []*domain.Slot
	if len(future) > 0 {
		err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
			from := future[0].StartAt.Add(-time.Duration(maxAllowedDuration()) * time.Minute)
			to := future[len(future)-1].EndAt()
			existing, err := s.slotRepo.List(txCtx, domain.SlotsFilter{From: &from, To: &to})
			if err != nil {
				s.logger.Error("CreateSlotsBulk: failed to load existing slots: %v", err)
				return fmt.Errorf("%w: CreateBulk - load existing: %w", ErrInternal, err)
			}

			accepted := make([]*domain.Slot, 0, len(future))
			for _, c := range future {
				if overlapsAny(c, existing) || overlapsAny(c, accepted) {
					skipped++
					continue
				}
				accepted = append(accepted, c)
			}

			if len(accepted) == 0 {
				created = accepted
				return nil
			}

			created, err = s.slotRepo.CreateBatch(txCtx, accepted)
			if err != nil {
				s.logger.Error("CreateSlotsBulk: repository error: %v", err)
				return fmt.Errorf("%w: CreateBulk - repository error: %w", ErrInternal, err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if len(created) > 0 {
		s.afterMutation(ctx, "CreateSlotsBulk")
		s.metrics.AddSlotsCreated(modeBulk, len(created))
	}

	s.logger.Info("CreateSlotsBulk: created=%d, skipped=%d", len(created), skipped)
	return &models.BulkCreateResponse{
		Slots:        models.FromDomainSlots(created),
		CreatedCount: len(created),
		SkippedCount: skipped,
	}, nil
}

// Update меняет время, длительность или доступность слота.
// Забронированный слот менять нельзя: сначала нужно отменить бронирование.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *models.UpdateSlotRequest) (*models.SlotResponse, error) {
	s.logger.Info("UpdateSlot: slot id=%s by operator=%d", id, req.OperatorID)

	if req.StartAt == nil && req.DurationMinutes == nil && req.IsAvailable == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	var result *domain.Slot
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		slot, err := s.loadSlot(txCtx, "UpdateSlot", id)
		if err != nil {
			return err
		}
		if slot.IsBooked() {
			s.logger.Warn("UpdateSlot: slot id=%s is booked by %s", id, slot.BookingID)
			return ErrSlotBooked
		}

		rescheduled := false
		if req.StartAt != nil && !req.StartAt.Equal(slot.StartAt) {
			slot.StartAt = req.StartAt.UTC()
			rescheduled = true
		}
		if req.DurationMinutes != nil && *req.DurationMinutes != slot.DurationMinutes {
			slot.DurationMinutes = *req.DurationMinutes
			rescheduled = true
		}
		if req.IsAvailable != nil {
			slot.IsAvailable = *req.IsAvailable
		}

		if rescheduled {
			if err := s.validateSchedule(slot.StartAt, slot.DurationMinutes); err != nil {
				s.logger.Warn("UpdateSlot: validation failed for slot id=%s: %v", id, err)
				return err
			}
			overlap, err := s.slotRepo.HasOverlap(txCtx, slot.StartAt, slot.EndAt(), &slot.ID)
			if err != nil {
				return fmt.Errorf("%w: Update - overlap check: %w", ErrInternal, err)
			}
			if overlap {
				s.logger.Warn("UpdateSlot: slot id=%s would overlap an existing slot", id)
				return ErrSlotOverlap
			}
		}

		result, err = s.slotRepo.Update(txCtx, slot)
		if err != nil {
			return s.mapRepoError("UpdateSlot", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, "UpdateSlot")

	s.logger.Info("UpdateSlot: slot id=%s is now %s", id, result.State())
	resp := models.FromDomainSlot(result, nil)
	return &resp, nil
}

// Delete удаляет свободный или заблокированный слот
func (s *Service) Delete(ctx context.Context, id uuid.UUID, operatorID int64) error {
	s.logger.Info("DeleteSlot: slot id=%s by operator=%d", id, operatorID)

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		slot, err := s.loadSlot(txCtx, "DeleteSlot", id)
		if err != nil {
			return err
		}
		if slot.IsBooked() {
			s.logger.Warn("DeleteSlot: slot id=%s is booked", id)
			return ErrSlotBooked
		}

		if err := s.slotRepo.Delete(txCtx, id); err != nil {
			return s.mapRepoError("DeleteSlot", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.afterMutation(ctx, "DeleteSlot")
	s.logger.Info("DeleteSlot: slot id=%s deleted", id)
	return nil
}

// List возвращает календарь оператора: все слоты окна с данными бронирований и сводкой
func (s *Service) List(ctx context.Context, req *models.ListSlotsRequest) (*models.SlotListResponse, error) {
	s.logger.Info("ListSlots: from=%v, to=%v", req.From, req.To)

	if req.From != nil && req.To != nil && !req.From.Before(*req.To) {
		return nil, fmt.Errorf("%w: from must be before to", ErrInvalidInput)
	}

	slots, err := s.slotRepo.List(ctx, domain.SlotsFilter{From: req.From, To: req.To})
	if err != nil {
		s.logger.Error("ListSlots: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	bookings, err := s.bookingsFor(ctx, slots)
	if err != nil {
		s.logger.Error("ListSlots: failed to load bookings: %v", err)
		return nil, fmt.Errorf("%w: List - bookings: %v", ErrInternal, err)
	}

	now := s.timeProvider.Now()
	resp := &models.SlotListResponse{Slots: make([]models.SlotResponse, 0, len(slots))}
	for _, slot := range slots {
		var booking *domain.Booking
		if slot.BookingID != nil {
			booking = bookings[*slot.BookingID]
		}
		resp.Slots = append(resp.Slots, models.FromDomainSlot(slot, booking))

		resp.Stats.Total++
		switch slot.State() {
		case domain.SlotStateAvailable:
			resp.Stats.Available++
		case domain.SlotStateBooked:
			resp.Stats.Booked++
		case domain.SlotStateBlocked:
			resp.Stats.Blocked++
		}
		if slot.IsBooked() && slot.StartAt.After(now) {
			resp.Stats.Upcoming++
		}
	}

	s.logger.Info("ListSlots: fetched %d slots", len(slots))
	return resp, nil
}

// bookingsFor загружает активные бронирования, занимающие слоты выборки
func (s *Service) bookingsFor(ctx context.Context, slots []*domain.Slot) (map[uuid.UUID]*domain.Booking, error) {
	result := make(map[uuid.UUID]*domain.Booking)

	var first, last *domain.Slot
	for _, slot := range slots {
		if !slot.IsBooked() {
			continue
		}
		if first == nil || slot.StartAt.Before(first.StartAt) {
			first = slot
		}
		if last == nil || slot.StartAt.After(last.StartAt) {
			last = slot
		}
	}
	if first == nil {
		return result, nil
	}

	// Бронирование начинается не раньше, чем за максимальную длительность до своего слота
	from := first.StartAt.Add(-time.Duration(domain.MaxRequestedDurationMinutes) * time.Minute)
	to := last.StartAt.Add(time.Minute)
	bookings, err := s.bookingRepo.List(ctx, domain.BookingsFilter{From: &from, To: &to})
	if err != nil {
		return nil, err
	}

	for _, b := range bookings {
		result[b.ID] = b
	}
	return result, nil
}

func (s *Service) loadSlot(ctx context.Context, op string, id uuid.UUID) (*domain.Slot, error) {
	slot, err := s.slotRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			s.logger.Warn("%s: slot id=%s not found", op, id)
			return nil, ErrSlotNotFound
		}
		s.logger.Error("%s: repository error for slot id=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
	return slot, nil
}

func (s *Service) mapRepoError(op string, id uuid.UUID, err error) error {
	switch {
	case errors.Is(err, slotRepo.ErrSlotNotFound):
		return ErrSlotNotFound
	case errors.Is(err, slotRepo.ErrSlotBooked):
		s.logger.Warn("%s: slot id=%s was booked concurrently", op, id)
		return ErrSlotBooked
	default:
		s.logger.Error("%s: repository error for slot id=%s: %v", op, id, err)
		return fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
}

func (s *Service) afterMutation(ctx context.Context, op string) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("%s: failed to invalidate slots cache: %v", op, err)
	}
}

func (s *Service) validateSchedule(start time.Time, duration int) error {
	if !domain.IsAllowedSlotDuration(duration) {
		return fmt.Errorf("%w: %d minutes", ErrInvalidDuration, duration)
	}
	if start.IsZero() {
		return fmt.Errorf("%w: start is required", ErrInvalidInput)
	}
	if !start.After(s.timeProvider.Now()) {
		return ErrSlotInPast
	}
	return nil
}

// expandBulk разворачивает запрос в отсортированный список кандидатов
func (s *Service) expandBulk(req *models.BulkCreateRequest) ([]*domain.Slot, error) {
	if !domain.IsAllowedSlotDuration(req.DurationMinutes) {
		return nil, fmt.Errorf("%w: %d minutes", ErrInvalidDuration, req.DurationMinutes)
	}
	if req.RepeatWeeks < 0 || req.RepeatWeeks > domain.MaxRepeatWeeks {
		return nil, fmt.Errorf("%w: repeatWeeks must be between 0 and %d", ErrInvalidInput, domain.MaxRepeatWeeks)
	}

	dateStart, err := time.ParseInLocation(domain.DateFormat, req.DateStart, s.location)
	if err != nil {
		return nil, fmt.Errorf("%w: dateStart: %v", ErrInvalidInput, err)
	}
	dateEnd, err := time.ParseInLocation(domain.DateFormat, req.DateEnd, s.location)
	if err != nil {
		return nil, fmt.Errorf("%w: dateEnd: %v", ErrInvalidInput, err)
	}
	if dateEnd.Before(dateStart) {
		return nil, fmt.Errorf("%w: dateEnd is before dateStart", ErrInvalidInput)
	}

	timeStart, err := time.Parse(domain.TimeFormat, req.TimeStart)
	if err != nil {
		return nil, fmt.Errorf("%w: timeStart: %v", ErrInvalidInput, err)
	}
	timeEnd, err := time.Parse(domain.TimeFormat, req.TimeEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: timeEnd: %v", ErrInvalidInput, err)
	}
	if !timeEnd.After(timeStart) {
		return nil, fmt.Errorf("%w: timeEnd must be after timeStart", ErrInvalidInput)
	}

	step := time.Duration(req.DurationMinutes) * time.Minute
	perDay := int(timeEnd.Sub(timeStart) / step)
	if perDay == 0 {
		return nil, fmt.Errorf("%w: time range shorter than duration", ErrInvalidInput)
	}

	days := int(dateEnd.Sub(dateStart).Hours()/24+0.5) + 1
	if days*perDay*(req.RepeatWeeks+1) > domain.MaxBulkSlots {
		return nil, fmt.Errorf("%w: %d slots, max %d", ErrTooManySlots, days*perDay*(req.RepeatWeeks+1), domain.MaxBulkSlots)
	}

	operator := operatorRef(req.OperatorID)
	candidates := make([]*domain.Slot, 0, days*perDay*(req.RepeatWeeks+1))
	for week := 0; week <= req.RepeatWeeks; week++ {
		for day := dateStart; !day.After(dateEnd); day = day.AddDate(0, 0, 1) {
			date := day.AddDate(0, 0, 7*week)
			for i := 0; i < perDay; i++ {
				start := time.Date(date.Year(), date.Month(), date.Day(),
					timeStart.Hour(), timeStart.Minute(), 0, 0, s.location).Add(time.Duration(i) * step)
				candidates = append(candidates, &domain.Slot{
					StartAt:         start.UTC(),
					DurationMinutes: req.DurationMinutes,
					IsAvailable:     true,
					CreatedBy:       operator,
				})
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].StartAt.Before(candidates[j].StartAt)
	})

	return candidates, nil
}

func overlapsAny(candidate *domain.Slot, slots []*domain.Slot) bool {
	for _, s := range slots {
		if s.Overlaps(candidate.StartAt, candidate.EndAt()) {
			return true
		}
	}
	return false
}

func maxAllowedDuration() int {
	longest := 0
	for _, d := range domain.AllowedSlotDurations {
		if d > longest {
			longest = d
		}
	}
	return longest
}

func operatorRef(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
