package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cimillas/ultimate-stay/internal/domain"
)

type ReservationRepository struct {
	db
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{db{pool: pool}}
}

const reservationColumns = `id, reference, unit_id, property_id, check_in, check_out, quantity, guests, status,
total_price, currency, COALESCE(idempotency_key, ''), cancellation_reason, created_at, updated_at, cancelled_at`

var capacityHoldingStatuses = func() []string {
	out := make([]string, 0, len(domain.CapacityHoldingStatuses))
	for _, s := range domain.CapacityHoldingStatuses {
		out = append(out, string(s))
	}
	return out
}()

func (r *ReservationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// GetUnitForUpdate row-locks the unit until the surrounding tx ends.
func (r *ReservationRepository) GetUnitForUpdate(ctx context.Context, unitID string) (domain.InventoryUnit, error) {
	return getUnit(ctx, r.db, unitID, true)
}

func (r *ReservationRepository) ListOverlapping(ctx context.Context, unitID string, rng domain.DateRange) ([]domain.Reservation, error) {
	const query = `
SELECT ` + reservationColumns + `
FROM reservations
WHERE unit_id = $1
  AND check_in < $3
  AND check_out > $2
  AND status = ANY($4::text[])
ORDER BY check_in ASC, id ASC`

	rows, err := r.query(ctx, query, unitID, rng.CheckIn.Time(), rng.CheckOut.Time(), capacityHoldingStatuses)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrUnknownUnit
		}
		return nil, wrap("list overlapping reservations", err)
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, wrap("scan reservation", err)
		}
		out = append(out, res)
	}
	if rows.Err() != nil {
		return nil, wrap("iterate reservations", rows.Err())
	}
	return out, nil
}

func (r *ReservationRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Reservation, error) {
	if key == "" {
		return nil, nil
	}
	res, err := scanReservation(r.queryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE idempotency_key = $1`, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("find reservation by idempotency key", err)
	}
	return &res, nil
}

// CreateReservation inserts res. A taken idempotency key yields ErrIdempotencyConflict without aborting
// the surrounding tx, so the caller can still read the stored row.
func (r *ReservationRepository) CreateReservation(ctx context.Context, res domain.Reservation) error {
	const stmt = `
INSERT INTO reservations (id, reference, unit_id, property_id, check_in, check_out, quantity, guests, status,
	total_price, currency, idempotency_key, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (idempotency_key) WHERE idempotency_key IS NOT NULL DO NOTHING`

	var key any
	if res.IdempotencyKey != "" {
		key = res.IdempotencyKey
	}
	tag, err := r.exec(ctx, stmt,
		res.ID,
		res.Reference,
		res.UnitID,
		res.PropertyID,
		res.Range.CheckIn.Time(),
		res.Range.CheckOut.Time(),
		res.Quantity,
		res.Guests,
		string(res.Status),
		res.TotalPrice,
		res.Currency,
		key,
		res.CreatedAt,
		res.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrUnknownUnit
		}
		if isUniqueViolation(err) {
			return domain.ErrIdempotencyConflict
		}
		return wrap("create reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrIdempotencyConflict
	}
	return nil
}

func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (domain.Reservation, error) {
	return r.getReservation(ctx, id, false)
}

// GetReservationForUpdate row-locks the reservation so concurrent transitions serialize.
func (r *ReservationRepository) GetReservationForUpdate(ctx context.Context, id string) (domain.Reservation, error) {
	return r.getReservation(ctx, id, true)
}

func (r *ReservationRepository) getReservation(ctx context.Context, id string, forUpdate bool) (domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	res, err := scanReservation(r.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) || errors.Is(err, pgx.ErrNoRows) {
			return domain.Reservation{}, domain.ErrReservationNotFound
		}
		return domain.Reservation{}, wrap("get reservation", err)
	}
	return res, nil
}

func (r *ReservationRepository) UpdateReservationStatus(ctx context.Context, id string, change domain.StatusChange) error {
	const stmt = `
UPDATE reservations
SET status = $2, updated_at = $3, cancelled_at = $4, cancellation_reason = $5
WHERE id = $1
RETURNING property_id`

	var (
		cancelledAt *time.Time
		reason      string
	)
	if change.Status == domain.ReservationStatusCancelled {
		at := change.At
		cancelledAt = &at
		reason = change.Reason
	}

	var propertyID string
	err := r.queryRow(ctx, stmt, id, string(change.Status), change.At, cancelledAt, reason).Scan(&propertyID)
	if err != nil {
		if isInvalidUUID(err) || errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrReservationNotFound
		}
		return wrap("update reservation status", err)
	}

	if change.Status == domain.ReservationStatusCompleted {
		if _, err := r.exec(ctx, `UPDATE properties SET popularity = popularity + 1 WHERE id = $1`, propertyID); err != nil {
			return wrap("bump property popularity", err)
		}
	}
	return nil
}

func scanReservation(row pgx.Row) (domain.Reservation, error) {
	var (
		res               domain.Reservation
		checkIn, checkOut time.Time
		status            string
	)
	err := row.Scan(
		&res.ID,
		&res.Reference,
		&res.UnitID,
		&res.PropertyID,
		&checkIn,
		&checkOut,
		&res.Quantity,
		&res.Guests,
		&status,
		&res.TotalPrice,
		&res.Currency,
		&res.IdempotencyKey,
		&res.CancellationReason,
		&res.CreatedAt,
		&res.UpdatedAt,
		&res.CancelledAt,
	)
	if err != nil {
		return domain.Reservation{}, err
	}
	res.Range = domain.DateRange{CheckIn: domain.DateOf(checkIn), CheckOut: domain.DateOf(checkOut)}
	res.Status = domain.ReservationStatus(status)
	return res, nil
}
