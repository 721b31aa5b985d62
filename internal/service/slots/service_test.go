package slots

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DemoBookingService/internal/domain"
	slotRepo "github.com/m04kA/SMC-DemoBookingService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-DemoBookingService/internal/service/slots/models"
	"github.com/m04kA/SMC-DemoBookingService/pkg/logger"
	"github.com/m04kA/SMC-DemoBookingService/pkg/ptr"
)

var now = time.Date(2026, 11, 2, 8, 0, 0, 0, time.UTC) // понедельник

type fixedTime struct{}

func (fixedTime) Now() time.Time { return now }

type fakeTx struct{}

func (fakeTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeSlots хранит слоты в памяти и повторяет семантику условных UPDATE/DELETE репозитория
type fakeSlots struct {
	items   map[uuid.UUID]*domain.Slot
	batches int
}

func newFakeSlots(slots ...*domain.Slot) *fakeSlots {
	f := &fakeSlots{items: map[uuid.UUID]*domain.Slot{}}
	for _, s := range slots {
		f.items[s.ID] = s
	}
	return f
}

func (f *fakeSlots) Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	out, err := f.CreateBatch(ctx, []*domain.Slot{slot})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (f *fakeSlots) CreateBatch(_ context.Context, slots []*domain.Slot) ([]*domain.Slot, error) {
	f.batches++
	for _, s := range slots {
		s.ID = uuid.New()
		s.Version = 1
		f.items[s.ID] = s
	}
	return slots, nil
}

func (f *fakeSlots) GetByID(_ context.Context, id uuid.UUID) (*domain.Slot, error) {
	s, ok := f.items[id]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSlots) List(_ context.Context, filter domain.SlotsFilter) ([]*domain.Slot, error) {
	out := make([]*domain.Slot, 0)
	for _, s := range f.items {
		if filter.From != nil && s.StartAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !s.StartAt.Before(*filter.To) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSlots) Update(_ context.Context, slot *domain.Slot) (*domain.Slot, error) {
	if f.items[slot.ID].IsBooked() {
		return nil, slotRepo.ErrSlotBooked
	}
	slot.Version++
	cp := *slot
	f.items[slot.ID] = &cp
	return slot, nil
}

func (f *fakeSlots) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.items, id)
	return nil
}

func (f *fakeSlots) HasOverlap(_ context.Context, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	for _, s := range f.items {
		if excludeID != nil && s.ID == *excludeID {
			continue
		}
		if s.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

type fakeBookings struct{ items []*domain.Booking }

func (f *fakeBookings) List(context.Context, domain.BookingsFilter) ([]*domain.Booking, error) {
	return f.items, nil
}

type fakeCache struct{ invalidated int }

func (f *fakeCache) Invalidate(context.Context) error {
	f.invalidated++
	return nil
}

type fakeMetrics struct{ created map[string]int }

func (f *fakeMetrics) AddSlotsCreated(mode string, count int) { f.created[mode] += count }

type fixture struct {
	svc      *Service
	slots    *fakeSlots
	bookings *fakeBookings
	cache    *fakeCache
	metrics  *fakeMetrics
}

func newFixture(t *testing.T, slots ...*domain.Slot) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	f := &fixture{
		slots:    newFakeSlots(slots...),
		bookings: &fakeBookings{},
		cache:    &fakeCache{},
		metrics:  &fakeMetrics{created: map[string]int{}},
	}
	f.svc = NewService(f.slots, f.bookings, f.cache, f.metrics, fakeTx{}, loc, logger.NewNop())
	f.svc.timeProvider = fixedTime{}
	return f
}

func slotAt(start time.Time, duration int) *domain.Slot {
	return &domain.Slot{ID: uuid.New(), StartAt: start, DurationMinutes: duration, IsAvailable: true, Version: 1}
}

func TestCreateSlot(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Create(context.Background(), &models.CreateSlotRequest{
		OperatorID:      7,
		StartAt:         now.Add(24 * time.Hour),
		DurationMinutes: 30,
	})
	require.NoError(t, err)

	assert.Equal(t, "available", resp.State)
	assert.Equal(t, now.Add(24*time.Hour+30*time.Minute), resp.EndAt)
	assert.Equal(t, 1, f.cache.invalidated)
	assert.Equal(t, 1, f.metrics.created[modeSingle])
}

func TestCreateSlotValidation(t *testing.T) {
	existing := slotAt(now.Add(24*time.Hour), 60)
	f := newFixture(t, existing)

	tests := []struct {
		name    string
		req     *models.CreateSlotRequest
		wantErr error
	}{
		{"duration not allowed", &models.CreateSlotRequest{StartAt: now.Add(48 * time.Hour), DurationMinutes: 20}, ErrInvalidDuration},
		{"in the past", &models.CreateSlotRequest{StartAt: now.Add(-time.Hour), DurationMinutes: 30}, ErrSlotInPast},
		{"overlap", &models.CreateSlotRequest{StartAt: now.Add(24*time.Hour + 30*time.Minute), DurationMinutes: 30}, ErrSlotOverlap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// касание границы не является пересечением
	_, err := f.svc.Create(context.Background(), &models.CreateSlotRequest{StartAt: now.Add(25 * time.Hour), DurationMinutes: 30})
	assert.NoError(t, err)
}

func TestCreateBulkGrid(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.CreateBulk(context.Background(), &models.BulkCreateRequest{
		DateStart:       "2026-11-03",
		DateEnd:         "2026-11-04",
		TimeStart:       "09:00",
		TimeEnd:         "10:00",
		DurationMinutes: 15,
		RepeatWeeks:     1,
	})
	require.NoError(t, err)

	// 2 дня * 4 слота * 2 недели
	assert.Equal(t, 16, resp.CreatedCount)
	assert.Equal(t, 0, resp.SkippedCount)
	assert.Equal(t, 1, f.slots.batches)
	assert.Equal(t, 16, f.metrics.created[modeBulk])

	// 09:00 по Парижу в ноябре это 08:00 UTC
	assert.Equal(t, time.Date(2026, 11, 3, 8, 0, 0, 0, time.UTC), resp.Slots[0].StartAt)
	assert.Equal(t, time.Date(2026, 11, 11, 8, 45, 0, 0, time.UTC), resp.Slots[15].StartAt)
}

func TestCreateBulkSkipsOverlapsAndPast(t *testing.T) {
	existing := slotAt(time.Date(2026, 11, 3, 8, 15, 0, 0, time.UTC), 30) // 09:15-09:45 Paris
	f := newFixture(t, existing)

	resp, err := f.svc.CreateBulk(context.Background(), &models.BulkCreateRequest{
		DateStart:       "2026-11-02", // 09:00 Paris уже прошло (now = 09:00 Paris)
		DateEnd:         "2026-11-03",
		TimeStart:       "09:00",
		TimeEnd:         "10:00",
		DurationMinutes: 30,
	})
	require.NoError(t, err)

	// 02.11: 09:00 в прошлом, 09:30 в будущем; 03.11: оба пересекаются с 09:15-09:45
	assert.Equal(t, 1, resp.CreatedCount)
	assert.Equal(t, 3, resp.SkippedCount)
}

func TestCreateBulkDeduplicatesRepeatedWeeks(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.CreateBulk(context.Background(), &models.BulkCreateRequest{
		DateStart:       "2026-11-03",
		DateEnd:         "2026-11-16",
		TimeStart:       "10:00",
		TimeEnd:         "11:00",
		DurationMinutes: 60,
		RepeatWeeks:     1,
	})
	require.NoError(t, err)

	// вторая неделя диапазона совпадает с повтором первой
	assert.Equal(t, 21, resp.CreatedCount)
	assert.Equal(t, 7, resp.SkippedCount)
}

func TestCreateBulkValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		req     models.BulkCreateRequest
		wantErr error
	}{
		{"bad duration", models.BulkCreateRequest{DateStart: "2026-11-03", DateEnd: "2026-11-03", TimeStart: "09:00", TimeEnd: "10:00", DurationMinutes: 25}, ErrInvalidDuration},
		{"bad date", models.BulkCreateRequest{DateStart: "03/11/2026", DateEnd: "2026-11-03", TimeStart: "09:00", TimeEnd: "10:00", DurationMinutes: 30}, ErrInvalidInput},
		{"reversed dates", models.BulkCreateRequest{DateStart: "2026-11-05", DateEnd: "2026-11-03", TimeStart: "09:00", TimeEnd: "10:00", DurationMinutes: 30}, ErrInvalidInput},
		{"reversed times", models.BulkCreateRequest{DateStart: "2026-11-03", DateEnd: "2026-11-03", TimeStart: "10:00", TimeEnd: "09:00", DurationMinutes: 30}, ErrInvalidInput},
		{"range shorter than duration", models.BulkCreateRequest{DateStart: "2026-11-03", DateEnd: "2026-11-03", TimeStart: "09:00", TimeEnd: "09:30", DurationMinutes: 45}, ErrInvalidInput},
		{"too many weeks", models.BulkCreateRequest{DateStart: "2026-11-03", DateEnd: "2026-11-03", TimeStart: "09:00", TimeEnd: "10:00", DurationMinutes: 30, RepeatWeeks: 13}, ErrInvalidInput},
		{"too many slots", models.BulkCreateRequest{DateStart: "2026-11-03", DateEnd: "2027-03-03", TimeStart: "00:00", TimeEnd: "23:45", DurationMinutes: 15}, ErrTooManySlots},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateBulk(context.Background(), &tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdateSlotBlockAndUnblock(t *testing.T) {
	s := slotAt(now.Add(24*time.Hour), 30)
	f := newFixture(t, s)

	resp, err := f.svc.Update(context.Background(), s.ID, &models.UpdateSlotRequest{IsAvailable: ptr.Ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, "blocked", resp.State)

	resp, err = f.svc.Update(context.Background(), s.ID, &models.UpdateSlotRequest{IsAvailable: ptr.Ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, "available", resp.State)
	assert.Equal(t, 2, f.cache.invalidated)
}

func TestUpdateBookedSlotRejected(t *testing.T) {
	s := slotAt(now.Add(24*time.Hour), 30)
	s.BookingID = ptr.Ptr(uuid.New())
	f := newFixture(t, s)

	_, err := f.svc.Update(context.Background(), s.ID, &models.UpdateSlotRequest{IsAvailable: ptr.Ptr(false)})
	assert.ErrorIs(t, err, ErrSlotBooked)

	assert.ErrorIs(t, f.svc.Delete(context.Background(), s.ID, 1), ErrSlotBooked)
	assert.Equal(t, 0, f.cache.invalidated)
}

func TestUpdateReschedule(t *testing.T) {
	a := slotAt(now.Add(24*time.Hour), 30)
	b := slotAt(now.Add(24*time.Hour+30*time.Minute), 30)
	f := newFixture(t, a, b)

	// сдвиг на соседний слот
	_, err := f.svc.Update(context.Background(), a.ID, &models.UpdateSlotRequest{StartAt: ptr.Ptr(b.StartAt)})
	assert.ErrorIs(t, err, ErrSlotOverlap)

	// удлинение самого себя не считается пересечением
	_, err = f.svc.Update(context.Background(), a.ID, &models.UpdateSlotRequest{DurationMinutes: ptr.Ptr(15)})
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), a.ID, &models.UpdateSlotRequest{StartAt: ptr.Ptr(now.Add(-time.Hour))})
	assert.ErrorIs(t, err, ErrSlotInPast)

	_, err = f.svc.Update(context.Background(), a.ID, &models.UpdateSlotRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Update(context.Background(), uuid.New(), &models.UpdateSlotRequest{IsAvailable: ptr.Ptr(true)})
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestDeleteSlot(t *testing.T) {
	s := slotAt(now.Add(24*time.Hour), 30)
	f := newFixture(t, s)

	require.NoError(t, f.svc.Delete(context.Background(), s.ID, 1))
	assert.Empty(t, f.slots.items)
	assert.ErrorIs(t, f.svc.Delete(context.Background(), s.ID, 1), ErrSlotNotFound)
}

func TestListCalendarStats(t *testing.T) {
	bookingID := uuid.New()
	free := slotAt(now.Add(24*time.Hour), 30)
	booked := slotAt(now.Add(25*time.Hour), 30)
	booked.BookingID = &bookingID
	pastBooked := slotAt(now.Add(-25*time.Hour), 30)
	pastBooked.BookingID = ptr.Ptr(uuid.New())
	blocked := slotAt(now.Add(26*time.Hour), 30)
	blocked.IsAvailable = false

	f := newFixture(t, free, booked, pastBooked, blocked)
	f.bookings.items = []*domain.Booking{{ID: bookingID, InstituteName: "Institut", Status: domain.StatusConfirmed}}

	resp, err := f.svc.List(context.Background(), &models.ListSlotsRequest{})
	require.NoError(t, err)

	assert.Equal(t, models.SlotStats{Total: 4, Available: 1, Booked: 2, Blocked: 1, Upcoming: 1}, resp.Stats)

	var withBooking int
	for _, s := range resp.Slots {
		if s.Booking != nil {
			withBooking++
			assert.Equal(t, "Institut", s.Booking.InstituteName)
		}
	}
	assert.Equal(t, 1, withBooking)
}
