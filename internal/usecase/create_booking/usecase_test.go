package create_booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DemoBookingService/internal/domain"
	slotRepo "github.com/m04kA/SMC-DemoBookingService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-DemoBookingService/internal/integrations/crmservice"
	"github.com/m04kA/SMC-DemoBookingService/pkg/logger"
	"github.com/m04kA/SMC-DemoBookingService/pkg/ptr"
)

var now = time.Date(2026, 11, 2, 8, 0, 0, 0, time.UTC)

type fixedTime struct{}

func (fixedTime) Now() time.Time { return now }

// fakeTx сериализует транзакции, как это делает уровень SERIALIZABLE для пересекающихся строк
type fakeTx struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return fn(ctx)
}

type fakeSlots struct {
	mu            sync.Mutex
	items         map[uuid.UUID]*domain.Slot
	reserved      []uuid.UUID
	lockedFrom    time.Time
	lockedTo      time.Time
	beforeReserve func()
}

func newFakeSlots(slots ...*domain.Slot) *fakeSlots {
	f := &fakeSlots{items: map[uuid.UUID]*domain.Slot{}}
	for _, s := range slots {
		f.items[s.ID] = s
	}
	return f
}

func (f *fakeSlots) GetByID(_ context.Context, id uuid.UUID) (*domain.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.items[id]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSlots) ListForUpdate(_ context.Context, from, to time.Time) ([]*domain.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lockedFrom, f.lockedTo = from, to
	out := make([]*domain.Slot, 0)
	for _, s := range f.items {
		if !s.StartAt.Before(from) && s.StartAt.Before(to) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (f *fakeSlots) Reserve(_ context.Context, bookingID uuid.UUID, slotIDs []uuid.UUID) error {
	if f.beforeReserve != nil {
		f.beforeReserve()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range slotIDs {
		s, ok := f.items[id]
		if !ok || !s.IsBookable() {
			return fmt.Errorf("%w: Reserve - slot %s", slotRepo.ErrSlotConflict, id)
		}
	}
	for _, id := range slotIDs {
		f.items[id].BookingID = ptr.Ptr(bookingID)
	}
	f.reserved = slotIDs
	return nil
}

type fakeBookings struct {
	mu      sync.Mutex
	created []*domain.Booking
	leads   map[uuid.UUID]string
}

func (f *fakeBookings) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	cp.CreatedAt = now
	cp.UpdatedAt = now
	f.created = append(f.created, &cp)
	return &cp, nil
}

func (f *fakeBookings) SetLead(_ context.Context, id uuid.UUID, leadID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leads[id] = leadID
	return nil
}

type fakeCRM struct {
	lead     *crmservice.Lead
	err      error
	requests []crmservice.LeadRequest
}

func (f *fakeCRM) UpsertLeadWithGracefulDegradation(_ context.Context, lead crmservice.LeadRequest) (*crmservice.Lead, error) {
	f.requests = append(f.requests, lead)
	if f.err != nil {
		return nil, f.err
	}
	return f.lead, nil
}

type fakeCache struct{ invalidations int }

func (f *fakeCache) Invalidate(context.Context) error {
	f.invalidations++
	return nil
}

type fakeMetrics struct {
	mu        sync.Mutex
	created   map[string]int
	conflicts map[string]int
}

func (f *fakeMetrics) IncBookingCreated(meetingType string, _ int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created[meetingType]++
}

func (f *fakeMetrics) IncBookingConflict(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conflicts[reason]++
}

var policy = Policy{
	HorizonDays:            30,
	MinNoticeMinutes:       60,
	DefaultDurationMinutes: 30,
	MaxDurationMinutes:     480,
	Meeting:                domain.MeetingRooms{BaseURL: "https://meet.jit.si", RoomPrefix: "demo"},
}

type env struct {
	uc       *UseCase
	slots    *fakeSlots
	bookings *fakeBookings
	crm      *fakeCRM
	cache    *fakeCache
	metrics  *fakeMetrics
}

func newEnv(slots ...*domain.Slot) *env {
	e := &env{
		slots:    newFakeSlots(slots...),
		bookings: &fakeBookings{leads: map[uuid.UUID]string{}},
		crm:      &fakeCRM{lead: &crmservice.Lead{ID: "lead-42", Status: "new"}},
		cache:    &fakeCache{},
		metrics:  &fakeMetrics{created: map[string]int{}, conflicts: map[string]int{}},
	}
	e.uc = NewUseCase(e.slots, e.bookings, e.crm, e.cache, e.metrics, &fakeTx{}, policy, logger.NewNop())
	e.uc.timeProvider = fixedTime{}
	return e
}

func tile(hour, minute, duration int) *domain.Slot {
	return &domain.Slot{
		ID:              uuid.New(),
		StartAt:         time.Date(2026, 11, 3, hour, minute, 0, 0, time.UTC),
		DurationMinutes: duration,
		IsAvailable:     true,
	}
}

func onlineRequest(slotID uuid.UUID, duration int) *Request {
	return &Request{
		SlotID:          slotID,
		DurationMinutes: ptr.Ptr(duration),
		InstituteName:   "Lycée Victor Hugo",
		ContactName:     "Camille Martin",
		ContactEmail:    "camille.martin@example.fr",
		MeetingType:     "online",
		City:            ptr.Ptr("Lyon"),
	}
}

func TestCreateBookingCoversContiguousChain(t *testing.T) {
	s1, s2, s3, s4 := tile(14, 0, 15), tile(14, 15, 15), tile(14, 30, 15), tile(14, 45, 15)
	e := newEnv(s1, s2, s3, s4)

	resp, err := e.uc.Execute(context.Background(), onlineRequest(s1.ID, 45))
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{s1.ID, s2.ID, s3.ID}, resp.CoveredSlotIDs)
	assert.Equal(t, []uuid.UUID{s1.ID, s2.ID, s3.ID}, e.slots.reserved)
	assert.Equal(t, s1.ID, resp.PrimarySlotID)
	assert.Equal(t, s1.StartAt, resp.StartAt)
	assert.Equal(t, s4.StartAt, resp.EndAt)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, "ONLINE", resp.MeetingType)
	require.NotNil(t, resp.MeetingURL)
	assert.Contains(t, *resp.MeetingURL, "https://meet.jit.si/demo-")

	// окно блокировки совпадает с интервалом встречи
	assert.Equal(t, s1.StartAt, e.slots.lockedFrom)
	assert.Equal(t, s1.StartAt.Add(45*time.Minute), e.slots.lockedTo)

	// s4 остается свободным
	assert.Nil(t, e.slots.items[s4.ID].BookingID)
	assert.Equal(t, resp.ID, *e.slots.items[s3.ID].BookingID)

	assert.Equal(t, 1, e.cache.invalidations)
	assert.Equal(t, 1, e.metrics.created["ONLINE"])

	require.Len(t, e.crm.requests, 1)
	assert.Equal(t, crmservice.LeadSource, e.crm.requests[0].Source)
	assert.Equal(t, resp.ID.String(), e.crm.requests[0].BookingID)
	require.NotNil(t, resp.LeadID)
	assert.Equal(t, "lead-42", *resp.LeadID)
	assert.Equal(t, "lead-42", e.bookings.leads[resp.ID])
}

func TestCreateBookingDefaultDuration(t *testing.T) {
	s := tile(9, 0, 30)
	e := newEnv(s)

	req := onlineRequest(s.ID, 0)
	req.DurationMinutes = nil

	resp, err := e.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 30, resp.RequestedDurationMinutes)
	assert.Equal(t, []uuid.UUID{s.ID}, resp.CoveredSlotIDs)
}

func TestCreateBookingPhysicalMeeting(t *testing.T) {
	s := tile(9, 0, 60)
	e := newEnv(s)

	req := onlineRequest(s.ID, 60)
	req.MeetingType = "PHYSICAL"
	req.Location = ptr.Ptr("  12 rue de la République  ")

	resp, err := e.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, resp.MeetingURL)
	require.NotNil(t, resp.Location)
	assert.Equal(t, "12 rue de la République", *resp.Location)
	assert.Equal(t, 1, e.metrics.created["PHYSICAL"])
}

func TestCreateBookingValidation(t *testing.T) {
	s := tile(9, 0, 30)

	tests := []struct {
		name   string
		mutate func(r *Request)
		want   error
	}{
		{"missing slot", func(r *Request) { r.SlotID = uuid.Nil }, ErrInvalidInput},
		{"missing institute", func(r *Request) { r.InstituteName = "   " }, ErrInvalidInput},
		{"missing contact name", func(r *Request) { r.ContactName = "" }, ErrInvalidInput},
		{"missing email", func(r *Request) { r.ContactEmail = "" }, ErrInvalidInput},
		{"bad email", func(r *Request) { r.ContactEmail = "camille@" }, ErrInvalidInput},
		{"email with display name", func(r *Request) { r.ContactEmail = "Camille <c@example.fr>" }, ErrInvalidInput},
		{"email without domain dot", func(r *Request) { r.ContactEmail = "camille@localhost" }, ErrInvalidInput},
		{"unknown meeting type", func(r *Request) { r.MeetingType = "PHONE" }, ErrInvalidInput},
		{"physical without location", func(r *Request) { r.MeetingType = "PHYSICAL"; r.Location = ptr.Ptr(" ") }, ErrInvalidInput},
		{"message too long", func(r *Request) { r.Message = ptr.Ptr(string(make([]rune, domain.MaxMessageLength+1))) }, ErrInvalidInput},
		{"zero duration", func(r *Request) { r.DurationMinutes = ptr.Ptr(0) }, ErrInvalidDuration},
		{"duration above max", func(r *Request) { r.DurationMinutes = ptr.Ptr(481) }, ErrInvalidDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(s)
			req := onlineRequest(s.ID, 30)
			tt.mutate(req)

			_, err := e.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, e.bookings.created)
		})
	}
}

func TestCreateBookingOnlineDropsLocation(t *testing.T) {
	s := tile(9, 0, 30)
	e := newEnv(s)

	req := onlineRequest(s.ID, 30)
	req.Location = ptr.Ptr("somewhere")

	resp, err := e.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, resp.Location)
}

func TestCreateBookingSlotErrors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		e := newEnv()
		_, err := e.uc.Execute(context.Background(), onlineRequest(uuid.New(), 30))
		assert.ErrorIs(t, err, ErrSlotNotFound)
	})

	t.Run("booked", func(t *testing.T) {
		s := tile(9, 0, 30)
		s.BookingID = ptr.Ptr(uuid.New())
		e := newEnv(s)

		_, err := e.uc.Execute(context.Background(), onlineRequest(s.ID, 30))
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
		assert.Equal(t, 1, e.metrics.conflicts[conflictSlotNotAvailable])
	})

	t.Run("blocked", func(t *testing.T) {
		s := tile(9, 0, 30)
		s.IsAvailable = false
		e := newEnv(s)

		_, err := e.uc.Execute(context.Background(), onlineRequest(s.ID, 30))
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
	})

	t.Run("within min notice", func(t *testing.T) {
		s := &domain.Slot{ID: uuid.New(), StartAt: now.Add(30 * time.Minute), DurationMinutes: 30, IsAvailable: true}
		e := newEnv(s)

		_, err := e.uc.Execute(context.Background(), onlineRequest(s.ID, 30))
		assert.ErrorIs(t, err, ErrTooLateToBook)
	})

	t.Run("in the past", func(t *testing.T) {
		s := &domain.Slot{ID: uuid.New(), StartAt: now.Add(-time.Hour), DurationMinutes: 30, IsAvailable: true}
		e := newEnv(s)

		_, err := e.uc.Execute(context.Background(), onlineRequest(s.ID, 30))
		assert.ErrorIs(t, err, ErrTooLateToBook)
	})

	t.Run("beyond horizon", func(t *testing.T) {
		s := &domain.Slot{ID: uuid.New(), StartAt: now.AddDate(0, 0, 31), DurationMinutes: 30, IsAvailable: true}
		e := newEnv(s)

		_, err := e.uc.Execute(context.Background(), onlineRequest(s.ID, 30))
		assert.ErrorIs(t, err, ErrDateTooFarInFuture)
	})
}

func TestCreateBookingDurationNotSatisfiable(t *testing.T) {
	// разрыв 15 минут между слотами
	a, b := tile(10, 0, 30), tile(10, 45, 30)
	e := newEnv(a, b)

	_, err := e.uc.Execute(context.Background(), onlineRequest(a.ID, 60))
	assert.ErrorIs(t, err, ErrDurationNotSatisfiable)
	assert.Empty(t, e.bookings.created)
	assert.Nil(t, e.slots.items[a.ID].BookingID)
	assert.Equal(t, 1, e.metrics.conflicts[conflictNotSatisfiable])
	assert.Equal(t, 0, e.cache.invalidations)
}

func TestCreateBookingBookedNeighbourBreaksChain(t *testing.T) {
	a, b := tile(10, 0, 30), tile(10, 30, 30)
	b.BookingID = ptr.Ptr(uuid.New())
	e := newEnv(a, b)

	_, err := e.uc.Execute(context.Background(), onlineRequest(a.ID, 60))
	assert.ErrorIs(t, err, ErrDurationNotSatisfiable)
}

func TestCreateBookingStaleClientChain(t *testing.T) {
	a, b, c := tile(10, 0, 30), tile(10, 30, 30), tile(11, 0, 30)

	t.Run("differs", func(t *testing.T) {
		e := newEnv(a, b, c)
		req := onlineRequest(a.ID, 60)
		req.CoveredSlotIDs = []uuid.UUID{a.ID, c.ID}

		_, err := e.uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrStaleSnapshot)
		assert.Equal(t, 1, e.metrics.conflicts[conflictStaleSnapshot])
		assert.Empty(t, e.bookings.created)
	})

	t.Run("same set in another order", func(t *testing.T) {
		e := newEnv(a, b, c)
		req := onlineRequest(a.ID, 60)
		req.CoveredSlotIDs = []uuid.UUID{b.ID, a.ID}

		resp, err := e.uc.Execute(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{a.ID, b.ID}, resp.CoveredSlotIDs)
	})
}

func TestCreateBookingReserveConflictIsStaleSnapshot(t *testing.T) {
	a, b := tile(10, 0, 30), tile(10, 30, 30)
	e := newEnv(a, b)

	// другой клиент успел занять b между чтением и резервированием
	e.slots.beforeReserve = func() {
		e.slots.mu.Lock()
		e.slots.items[b.ID].BookingID = ptr.Ptr(uuid.New())
		e.slots.mu.Unlock()
	}

	_, err := e.uc.Execute(context.Background(), onlineRequest(a.ID, 60))
	assert.ErrorIs(t, err, ErrStaleSnapshot)
	assert.Nil(t, e.slots.items[a.ID].BookingID)
	assert.Equal(t, 1, e.metrics.conflicts[conflictStaleSnapshot])
}

func TestCreateBookingSurvivesCRMOutage(t *testing.T) {
	s := tile(9, 0, 30)
	e := newEnv(s)
	e.crm.err = fmt.Errorf("%w: timeout", crmservice.ErrServiceDegraded)

	resp, err := e.uc.Execute(context.Background(), onlineRequest(s.ID, 30))
	require.NoError(t, err)
	assert.Nil(t, resp.LeadID)
	assert.Empty(t, e.bookings.leads)
}

func TestCreateBookingWithoutCRM(t *testing.T) {
	s := tile(9, 0, 30)
	e := newEnv(s)
	e.uc.crmClient = nil

	resp, err := e.uc.Execute(context.Background(), onlineRequest(s.ID, 30))
	require.NoError(t, err)
	assert.Nil(t, resp.LeadID)
}

func TestSequentialBookingsNeverShareSlots(t *testing.T) {
	z, a, b := tile(9, 30, 30), tile(10, 0, 30), tile(10, 30, 30)
	e := newEnv(z, a, b)

	_, err := e.uc.Execute(context.Background(), onlineRequest(a.ID, 60))
	require.NoError(t, err)

	_, err = e.uc.Execute(context.Background(), onlineRequest(b.ID, 30))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)

	_, err = e.uc.Execute(context.Background(), onlineRequest(z.ID, 60))
	assert.ErrorIs(t, err, ErrDurationNotSatisfiable)

	_, err = e.uc.Execute(context.Background(), onlineRequest(z.ID, 30))
	assert.NoError(t, err)
}

func TestConcurrentBookingsOfSameChain(t *testing.T) {
	a, b, c := tile(10, 0, 30), tile(10, 30, 30), tile(11, 0, 30)
	e := newEnv(a, b, c)

	const clients = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)

	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := a.ID
			if i%2 == 1 {
				start = b.ID
			}
			_, err := e.uc.Execute(context.Background(), onlineRequest(start, 60))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrSlotNotAvailable), errors.Is(err, ErrDurationNotSatisfiable):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	// [a,b] и [b,c] пересекаются по b: выигрывает ровно одна цепочка
	assert.Equal(t, 1, successes)
	assert.Equal(t, clients-1, conflicts)

	owners := map[uuid.UUID]int{}
	for _, s := range e.slots.items {
		if s.BookingID != nil {
			owners[*s.BookingID]++
		}
	}
	require.Len(t, owners, 1)
	for _, n := range owners {
		assert.Equal(t, 2, n)
	}
}
