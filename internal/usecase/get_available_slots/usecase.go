package get_available_slots

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-DemoBookingService/internal/domain"
	"github.com/m04kA/SMC-DemoBookingService/internal/slotallocator"
)

// UseCase use case для получения стартов, вмещающих запрошенную длительность
type UseCase struct {
	slotRepo     SlotRepository
	cache        SnapshotCache
	policy       Policy
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	cache SnapshotCache,
	policy Policy,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:     slotRepo,
		cache:        cache,
		policy:       policy,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case получения доступных стартов.
// Пустой результат не является ошибкой: он помечается NoSlotFitsDuration.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	duration, err := resolveDuration(req, uc.policy)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()
	from, to, err := resolveWindow(req, uc.policy, now)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("GetAvailableSlots: duration=%d, window=%s..%s",
		duration, from.Format(time.RFC3339), to.Format(time.RFC3339))

	resp := &Response{
		RequestedDurationMinutes: duration,
		From:                     from,
		To:                       to,
		Slots:                    []AvailableSlot{},
	}

	if !from.Before(to) {
		resp.NoSlotFitsDuration = true
		return resp, nil
	}

	// 2. Снимок свободных слотов (кэш или БД)
	snapshot, err := uc.loadSnapshot(ctx, now)
	if err != nil {
		return nil, err
	}

	// 3. Старты, от которых собирается непрерывная цепочка
	for _, alloc := range slotallocator.PlanAll(duration, snapshot) {
		start := alloc.Start.StartAt
		if start.Before(from) || !start.Before(to) {
			continue
		}
		resp.Slots = append(resp.Slots, AvailableSlot{
			SlotID:          alloc.Start.ID,
			StartAt:         start,
			EndAt:           alloc.EndAt,
			DurationMinutes: alloc.Start.DurationMinutes,
			CoveredSlotIDs:  alloc.SlotIDs(),
		})
	}

	resp.NoSlotFitsDuration = len(resp.Slots) == 0

	uc.logger.Info("GetAvailableSlots: %d feasible starts out of %d free slots for duration=%d",
		len(resp.Slots), len(snapshot), duration)
	return resp, nil
}

func (uc *UseCase) loadSnapshot(ctx context.Context, now time.Time) ([]domain.Slot, error) {
	from, to := snapshotRange(now, uc.policy)

	cached, gen, ok, cacheErr := uc.cache.Get(ctx, from, to)
	if cacheErr != nil {
		uc.logger.Warn("GetAvailableSlots: cache unavailable, reading from database: %v", cacheErr)
	}
	if ok {
		return values(cached), nil
	}

	slots, err := uc.slotRepo.List(ctx, domain.SlotsFilter{From: &from, To: &to, OnlyBookable: true})
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list slots: %v", err)
		return nil, fmt.Errorf("%w: failed to list slots: %v", ErrInternal, err)
	}

	// Поколение неизвестно, если Get упал: такой снимок не кэшируем
	if cacheErr == nil {
		if err := uc.cache.Set(ctx, gen, from, to, slots); err != nil {
			uc.logger.Warn("GetAvailableSlots: failed to cache snapshot: %v", err)
		}
	}

	return values(slots), nil
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

// Policy возвращает действующую политику публичного бронирования
func (uc *UseCase) Policy() Policy {
	return uc.policy
}
