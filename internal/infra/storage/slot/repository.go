package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-DemoBookingService/internal/domain"
	"github.com/m04kA/SMC-DemoBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-DemoBookingService/pkg/psqlbuilder"
)

const tableName = "demo_slots"

var slotColumns = []string{
	"id",
	"start_at",
	"duration_minutes",
	"is_available",
	"booking_id",
	"version",
	"created_by",
	"created_at",
	"updated_at",
}

// Repository репозиторий слотов доступности (Slot Store)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает один слот
func (r *Repository) Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	created, err := r.CreateBatch(ctx, []*domain.Slot{slot})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

// CreateBatch создает несколько слотов одним INSERT.
// Проверка пересечений остается на сервисном слое.
func (r *Repository) CreateBatch(ctx context.Context, slots []*domain.Slot) ([]*domain.Slot, error) {
	if len(slots) == 0 {
		return []*domain.Slot{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Insert(tableName).
		Columns("id", "start_at", "duration_minutes", "is_available", "created_by")

	for _, s := range slots {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		builder = builder.Values(s.ID, s.StartAt.UTC(), s.DurationMinutes, s.IsAvailable, s.CreatedBy)
	}

	query, args, err := builder.Suffix("RETURNING id, version, created_at, updated_at").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateBatch - build insert query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateBatch - execute insert: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*domain.Slot, len(slots))
	for _, s := range slots {
		byID[s.ID] = s
	}

	for rows.Next() {
		var id uuid.UUID
		var version int
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&id, &version, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: CreateBatch - scan returning: %v", ErrScanRow, err)
		}
		if s, ok := byID[id]; ok {
			s.Version = version
			s.CreatedAt = createdAt.Time
			s.UpdatedAt = updatedAt.Time
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: CreateBatch - rows error: %w", ErrScanRow, err)
	}

	return slots, nil
}

// GetByID получает слот по ID.
//
// Если в ctx есть активная транзакция (dbmetrics.WithTx), строка выбирается
// с FOR UPDATE и остается заблокированной до commit/rollback этой транзакции.
// Вне транзакции это обычное чтение без блокировки: вызывающий не держит слот
// и должен перепроверить его состояние под блокировкой перед изменением.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(slotColumns...).
		From(tableName).
		Where(squirrel.Eq{"id": id.String()})

	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan slot: %w", ErrScanRow, err)
	}

	return slot, nil
}

// List возвращает слоты, отсортированные по времени начала
func (r *Repository) List(ctx context.Context, filter domain.SlotsFilter) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(slotColumns...).
		From(tableName).
		OrderBy("start_at ASC", "id ASC")

	if filter.From != nil {
		builder = builder.Where(squirrel.GtOrEq{"start_at": filter.From.UTC()})
	}
	if filter.To != nil {
		builder = builder.Where(squirrel.Lt{"start_at": filter.To.UTC()})
	}
	if filter.OnlyBookable {
		builder = builder.Where(squirrel.Eq{"is_available": true, "booking_id": nil})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	return r.query(ctx, executor, "List", query, args)
}

// ListForUpdate блокирует и возвращает все слоты (в любом состоянии) с началом в [from, to).
// Должен вызываться внутри транзакции.
func (r *Repository) ListForUpdate(ctx context.Context, from, to time.Time) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From(tableName).
		Where(squirrel.GtOrEq{"start_at": from.UTC()}).
		Where(squirrel.Lt{"start_at": to.UTC()}).
		OrderBy("start_at ASC", "id ASC").
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListForUpdate - build select query: %v", ErrBuildQuery, err)
	}

	return r.query(ctx, executor, "ListForUpdate", query, args)
}

// Update меняет время, длительность и доступность свободного слота
func (r *Repository) Update(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("start_at", slot.StartAt.UTC()).
		Set("duration_minutes", slot.DurationMinutes).
		Set("is_available", slot.IsAvailable).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": slot.ID.String(), "booking_id": nil}).
		Suffix("RETURNING version, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&slot.Version, &slot.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.classifyMiss(ctx, executor, "Update", slot.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	return slot, nil
}

// Delete удаляет свободный слот
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableName).
		Where(squirrel.Eq{"id": id.String(), "booking_id": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return r.classifyMiss(ctx, executor, "Delete", id)
	}

	return nil
}

// Reserve атомарно привязывает все слоты к бронированию (compare-and-swap).
// Обновляются только свободные и доступные слоты; если затронуто меньше строк,
// чем передано ID, возвращается ErrSlotConflict и вызывающая транзакция должна откатиться.
func (r *Repository) Reserve(ctx context.Context, bookingID uuid.UUID, slotIDs []uuid.UUID) error {
	if len(slotIDs) == 0 {
		return ErrEmptySlotSet
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("booking_id", bookingID.String()).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": uuidStrings(slotIDs), "booking_id": nil, "is_available": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Reserve - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Reserve - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Reserve - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected != int64(len(unique(slotIDs))) {
		return fmt.Errorf("%w: Reserve - reserved %d of %d", ErrSlotConflict, rowsAffected, len(slotIDs))
	}

	return nil
}

// Release освобождает слоты бронирования. Флаг is_available не трогается:
// слот, заблокированный оператором во время брони, после отмены останется заблокированным.
func (r *Repository) Release(ctx context.Context, bookingID uuid.UUID, slotIDs []uuid.UUID) error {
	if len(slotIDs) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("booking_id", nil).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": uuidStrings(slotIDs), "booking_id": bookingID.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Release - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Release - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Release - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected != int64(len(unique(slotIDs))) {
		return fmt.Errorf("%w: Release - released %d of %d", ErrReleaseMismatch, rowsAffected, len(slotIDs))
	}

	return nil
}

// HasOverlap проверяет, пересекается ли интервал [start, end) с существующими слотами.
// Слоты, касающиеся границы, не считаются пересекающимися.
func (r *Repository) HasOverlap(ctx context.Context, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select("1").
		From(tableName).
		Where(squirrel.Lt{"start_at": end.UTC()}).
		Where(squirrel.Expr("start_at + duration_minutes * INTERVAL '1 minute' > ?", start.UTC())).
		Limit(1).
		Prefix("SELECT EXISTS (").
		Suffix(")")

	if excludeID != nil {
		builder = builder.Where(squirrel.NotEq{"id": excludeID.String()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: HasOverlap - build select query: %v", ErrBuildQuery, err)
	}

	var exists bool
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: HasOverlap - scan: %w", ErrScanRow, err)
	}

	return exists, nil
}

// classifyMiss различает отсутствующий и забронированный слот после условного UPDATE/DELETE
func (r *Repository) classifyMiss(ctx context.Context, executor DBExecutor, op string, id uuid.UUID) error {
	query, args, err := psqlbuilder.Select("booking_id").
		From(tableName).
		Where(squirrel.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build lookup query: %v", ErrBuildQuery, op, err)
	}

	var bookingID uuid.NullUUID
	err = executor.QueryRowContext(ctx, query, args...).Scan(&bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSlotNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %s - lookup slot: %w", ErrScanRow, op, err)
	}

	return ErrSlotBooked
}

func (r *Repository) query(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) ([]*domain.Slot, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	slots := make([]*domain.Slot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %w", ErrScanRow, op, err)
	}

	return slots, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlot(row rowScanner) (*domain.Slot, error) {
	var slot domain.Slot
	var bookingID uuid.NullUUID
	var createdBy sql.NullInt64
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&slot.ID,
		&slot.StartAt,
		&slot.DurationMinutes,
		&slot.IsAvailable,
		&bookingID,
		&slot.Version,
		&createdBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if bookingID.Valid {
		id := bookingID.UUID
		slot.BookingID = &id
	}
	if createdBy.Valid {
		v := createdBy.Int64
		slot.CreatedBy = &v
	}
	slot.StartAt = slot.StartAt.UTC()
	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time

	return &slot, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func unique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
