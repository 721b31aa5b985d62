package booking

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DemoBookingService/internal/domain"
	"github.com/m04kA/SMC-DemoBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-DemoBookingService/pkg/ptr"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(dbmetrics.Wrap(db, nil)), mock
}

func TestCreateStoresCoveredSlotsAsArray(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Date(2026, 11, 1, 10, 0, 0, 0, time.UTC)
	a, b := uuid.New(), uuid.New()

	b0 := &domain.Booking{
		InstituteName:            "Institut Lumière",
		ContactName:              "Camille Martin",
		ContactEmail:             "camille@example.com",
		MeetingType:              domain.MeetingOnline,
		MeetingURL:               ptr.Ptr("https://meet.jit.si/demo-x"),
		RequestedDurationMinutes: 60,
		PrimarySlotID:            a,
		CoveredSlotIDs:           []uuid.UUID{a, b},
		StartAt:                  now.Add(24 * time.Hour),
		Status:                   domain.StatusConfirmed,
	}

	mock.ExpectQuery(`INSERT INTO demo_bookings .* RETURNING created_at, updated_at`).
		WithArgs(
			sqlmock.AnyArg(), "Institut Lumière", "Camille Martin", "camille@example.com",
			nil, nil, "ONLINE", nil, nil, "https://meet.jit.si/demo-x",
			60, sqlmock.AnyArg(), "{\"" + a.String() + "\",\"" + b.String() + "\"}",
			b0.StartAt, "CONFIRMED", nil,
		).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	created, err := repo.Create(context.Background(), b0)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, now, created.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDParsesCoveredSlots(t *testing.T) {
	repo, mock := newRepo(t)
	id, a, b := uuid.New(), uuid.New(), uuid.New()
	start := time.Date(2026, 11, 3, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(bookingColumns).AddRow(
		id.String(), "Institut", "Camille", "c@example.com", nil, "Bonjour",
		"PHYSICAL", "12 rue de la Paix", "Paris", nil,
		45, a.String(), "{"+a.String()+","+b.String()+"}",
		start, "CONFIRMED", nil, nil, nil, start, start,
	)
	mock.ExpectQuery(`SELECT .* FROM demo_bookings WHERE id = \$1`).
		WithArgs(id.String()).
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, got.CoveredSlotIDs)
	assert.Equal(t, domain.MeetingPhysical, got.MeetingType)
	assert.Equal(t, "Paris", ptr.Value(got.City))
	assert.Nil(t, got.ContactPhone)
	assert.Equal(t, "Bonjour", ptr.Value(got.Message))
	assert.True(t, got.CanBeCancelled())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`SELECT .* FROM demo_bookings`).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestListExcludesCancelledByDefault(t *testing.T) {
	repo, mock := newRepo(t)
	from := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM demo_bookings WHERE start_at >= \$1 AND status <> \$2 ORDER BY start_at ASC, created_at ASC`).
		WithArgs(from, "CANCELLED").
		WillReturnRows(sqlmock.NewRows(bookingColumns))

	list, err := repo.List(context.Background(), domain.BookingsFilter{From: &from})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByStatus(t *testing.T) {
	repo, mock := newRepo(t)
	status := domain.StatusNoShow

	mock.ExpectQuery(`SELECT .* FROM demo_bookings WHERE status = \$1 ORDER BY`).
		WithArgs("NO_SHOW").
		WillReturnRows(sqlmock.NewRows(bookingColumns))

	_, err := repo.List(context.Background(), domain.BookingsFilter{Status: &status})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel(t *testing.T) {
	repo, mock := newRepo(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE demo_bookings SET status = \$1, cancellation_reason = \$2, cancelled_at = NOW\(\), updated_at = NOW\(\) WHERE id = \$3`).
		WithArgs("CANCELLED", "Empêchement", id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Cancel(context.Background(), id, ptr.Ptr("Empêchement")))

	mock.ExpectExec(`UPDATE demo_bookings SET status`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Cancel(context.Background(), id, nil), ErrBookingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusAndLead(t *testing.T) {
	repo, mock := newRepo(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE demo_bookings SET status = \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs("COMPLETED", id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE demo_bookings SET lead_id = \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs("lead-42", id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), id, domain.StatusCompleted))
	require.NoError(t, repo.SetLead(context.Background(), id, "lead-42"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
