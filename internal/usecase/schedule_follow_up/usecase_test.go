package schedule_follow_up

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DemoBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-DemoBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-DemoBookingService/pkg/logger"
	"github.com/m04kA/SMC-DemoBookingService/pkg/ptr"
)

var now = time.Date(2026, 11, 2, 8, 0, 0, 0, time.UTC)

type fixedTime struct{}

func (fixedTime) Now() time.Time { return now }

type fakeTx struct{}

func (fakeTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeBookings struct {
	items   map[uuid.UUID]*domain.Booking
	created []*domain.Booking
	getErr  error
}

func (f *fakeBookings) GetByID(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	b, ok := f.items[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	cp := *b
	cp.CreatedAt = now
	f.created = append(f.created, &cp)
	return &cp, nil
}

type fakeSlots struct {
	items    []*domain.Slot
	reserved map[uuid.UUID]uuid.UUID
}

func (f *fakeSlots) Create(_ context.Context, s *domain.Slot) (*domain.Slot, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	f.items = append(f.items, s)
	return s, nil
}

func (f *fakeSlots) HasOverlap(_ context.Context, start, end time.Time, _ *uuid.UUID) (bool, error) {
	for _, s := range f.items {
		if s.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSlots) Reserve(_ context.Context, bookingID uuid.UUID, slotIDs []uuid.UUID) error {
	for _, id := range slotIDs {
		f.reserved[id] = bookingID
	}
	return nil
}

type fakeMetrics struct {
	slots    map[string]int
	bookings map[string]int
}

func (f *fakeMetrics) AddSlotsCreated(mode string, count int) { f.slots[mode] += count }

func (f *fakeMetrics) IncBookingCreated(meetingType string, _ int) { f.bookings[meetingType]++ }

type env struct {
	uc       *UseCase
	bookings *fakeBookings
	slots    *fakeSlots
	metrics  *fakeMetrics
	original *domain.Booking
}

func newEnv(t *testing.T) *env {
	t.Helper()

	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	original := &domain.Booking{
		ID:            uuid.New(),
		InstituteName: "Collège Jean Moulin",
		ContactName:   "Luc Bernard",
		ContactEmail:  "luc.bernard@example.fr",
		ContactPhone:  ptr.Ptr("+33 6 12 34 56 78"),
		MeetingType:   domain.MeetingPhysical,
		Location:      ptr.Ptr("3 place Bellecour"),
		City:          ptr.Ptr("Lyon"),
		Status:        domain.StatusCompleted,
		LeadID:        ptr.Ptr("lead-7"),
	}

	e := &env{
		bookings: &fakeBookings{items: map[uuid.UUID]*domain.Booking{original.ID: original}},
		slots:    &fakeSlots{reserved: map[uuid.UUID]uuid.UUID{}},
		metrics:  &fakeMetrics{slots: map[string]int{}, bookings: map[string]int{}},
		original: original,
	}
	e.uc = NewUseCase(e.bookings, e.slots, e.metrics, fakeTx{}, paris,
		domain.MeetingRooms{BaseURL: "https://meet.jit.si", RoomPrefix: "demo"}, logger.NewNop())
	e.uc.timeProvider = fixedTime{}
	return e
}

func (e *env) request() *Request {
	return &Request{
		OperatorID:      9,
		BookingID:       e.original.ID,
		Date:            "2026-11-05",
		Time:            "14:00",
		DurationMinutes: 90,
		Notes:           ptr.Ptr("  Présentation des tarifs  "),
	}
}

func TestScheduleFollowUp(t *testing.T) {
	e := newEnv(t)

	resp, err := e.uc.Execute(context.Background(), e.request())
	require.NoError(t, err)

	// 14:00 по Парижу в ноябре это 13:00 UTC
	wantStart := time.Date(2026, 11, 5, 13, 0, 0, 0, time.UTC)
	assert.Equal(t, wantStart, resp.StartAt)
	assert.Equal(t, wantStart.Add(90*time.Minute), resp.EndAt)
	assert.Equal(t, e.original.ID, resp.FollowUpOf)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	require.NotNil(t, resp.Notes)
	assert.Equal(t, "Présentation des tarifs", *resp.Notes)
	require.NotNil(t, resp.MeetingURL)
	assert.Contains(t, *resp.MeetingURL, "https://meet.jit.si/demo-")
	require.NotNil(t, resp.LeadID)
	assert.Equal(t, "lead-7", *resp.LeadID)

	require.Len(t, e.slots.items, 1)
	slot := e.slots.items[0]
	assert.Equal(t, resp.SlotID, slot.ID)
	assert.Equal(t, 90, slot.DurationMinutes)
	require.NotNil(t, slot.CreatedBy)
	assert.Equal(t, int64(9), *slot.CreatedBy)
	assert.Equal(t, resp.BookingID, e.slots.reserved[slot.ID])

	require.Len(t, e.bookings.created, 1)
	b := e.bookings.created[0]
	assert.Equal(t, domain.MeetingOnline, b.MeetingType)
	assert.Nil(t, b.Location)
	assert.Equal(t, e.original.ContactEmail, b.ContactEmail)
	assert.Equal(t, e.original.InstituteName, b.InstituteName)
	assert.Equal(t, []uuid.UUID{slot.ID}, b.CoveredSlotIDs)

	assert.Equal(t, 1, e.metrics.slots[modeFollowUp])
	assert.Equal(t, 1, e.metrics.bookings["ONLINE"])
}

func TestScheduleFollowUpValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
		want   error
	}{
		{"missing booking", func(r *Request) { r.BookingID = uuid.Nil }, ErrInvalidInput},
		{"bad date", func(r *Request) { r.Date = "05/11/2026" }, ErrInvalidInput},
		{"bad time", func(r *Request) { r.Time = "2pm" }, ErrInvalidInput},
		{"unsupported duration", func(r *Request) { r.DurationMinutes = 20 }, ErrInvalidDuration},
		{"in the past", func(r *Request) { r.Date = "2026-11-01" }, ErrSlotInPast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			req := e.request()
			tt.mutate(req)

			_, err := e.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, e.slots.items)
		})
	}
}

func TestScheduleFollowUpBlankNotes(t *testing.T) {
	e := newEnv(t)
	req := e.request()
	req.Notes = ptr.Ptr("   ")

	resp, err := e.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, resp.Notes)
}

func TestScheduleFollowUpBookingNotFound(t *testing.T) {
	e := newEnv(t)
	req := e.request()
	req.BookingID = uuid.New()

	_, err := e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.Empty(t, e.slots.items)
}

func TestScheduleFollowUpRepositoryFailure(t *testing.T) {
	e := newEnv(t)
	e.bookings.getErr = errors.New("connection reset")

	_, err := e.uc.Execute(context.Background(), e.request())
	assert.ErrorIs(t, err, ErrInternal)
}

func TestScheduleFollowUpOverlap(t *testing.T) {
	e := newEnv(t)
	// существующий слот 13:30-14:00 UTC попадает внутрь 13:00-14:30
	e.slots.items = append(e.slots.items, &domain.Slot{
		ID:              uuid.New(),
		StartAt:         time.Date(2026, 11, 5, 13, 30, 0, 0, time.UTC),
		DurationMinutes: 30,
		IsAvailable:     true,
	})

	_, err := e.uc.Execute(context.Background(), e.request())
	assert.ErrorIs(t, err, ErrSlotOverlap)
	assert.Len(t, e.slots.items, 1)
	assert.Empty(t, e.bookings.created)
	assert.Zero(t, e.metrics.slots[modeFollowUp])
}
