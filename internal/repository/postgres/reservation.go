package postgres

import (
	"context"
	"time"

	"voltride-backend/internal/domain"
	"voltride-backend/internal/repository"
)

type reservationRepository struct {
	db dbtx
}

func NewReservationRepository(db dbtx) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

const reservationColumns = `id, reference, customer_ref, agency_id, start_at, end_at,
	total_price_cents, deposit_cents, paid_amount_cents, status,
	cancellation_reason, cancelled_at, created_on, updated_on`

func (r *reservationRepository) Create(ctx context.Context, rv *domain.Reservation) error {
	now := time.Now()
	query := `INSERT INTO reservations (reference, customer_ref, agency_id, start_at, end_at,
	            total_price_cents, deposit_cents, paid_amount_cents, status, cancellation_reason, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		rv.Reference, rv.CustomerRef, rv.AgencyID, rv.Start, rv.End,
		rv.TotalPriceCents, rv.DepositCents, rv.PaidAmountCents, rv.Status, rv.CancellationReason, now, now,
	).Scan(&rv.ID)
	if err != nil {
		return err
	}
	rv.CreatedOn = now
	rv.UpdatedOn = now

	for _, unitID := range rv.UnitIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO reservation_units (reservation_id, unit_id) VALUES ($1, $2)`,
			rv.ID, unitID); err != nil {
			return err
		}
	}
	for i := range rv.Items {
		rv.Items[i].ReservationID = rv.ID
		if err := r.AddLineItem(ctx, &rv.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *reservationRepository) AddLineItem(ctx context.Context, item *domain.LineItem) error {
	query := `INSERT INTO line_items (reservation_id, kind, vehicle_type_id, add_on_id, description, quantity, unit_price_cents, total_cents)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		item.ReservationID, item.Kind, item.VehicleTypeID, item.AddOnID,
		item.Description, item.Quantity, item.UnitPriceCents, item.TotalCents,
	).Scan(&item.ID)
}

func (r *reservationRepository) ReplaceLineItems(ctx context.Context, reservationID int32, items []domain.LineItem) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM line_items WHERE reservation_id = $1`, reservationID); err != nil {
		return err
	}
	for i := range items {
		items[i].ReservationID = reservationID
		if err := r.AddLineItem(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *reservationRepository) GetByRef(ctx context.Context, ref string) (*domain.Reservation, error) {
	rv := &domain.Reservation{}
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE reference = $1`
	err := r.db.QueryRowContext(ctx, query, ref).Scan(
		&rv.ID, &rv.Reference, &rv.CustomerRef, &rv.AgencyID, &rv.Start, &rv.End,
		&rv.TotalPriceCents, &rv.DepositCents, &rv.PaidAmountCents, &rv.Status,
		&rv.CancellationReason, &rv.CancelledAt, &rv.CreatedOn, &rv.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	if err := r.loadUnits(ctx, rv); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

func (r *reservationRepository) Update(ctx context.Context, rv *domain.Reservation) error {
	query := `UPDATE reservations SET start_at = $1, end_at = $2, total_price_cents = $3,
	            paid_amount_cents = $4, status = $5, cancellation_reason = $6, cancelled_at = $7, updated_on = $8
	          WHERE id = $9`
	_, err := r.db.ExecContext(ctx, query,
		rv.Start, rv.End, rv.TotalPriceCents, rv.PaidAmountCents, rv.Status,
		rv.CancellationReason, rv.CancelledAt, time.Now(), rv.ID,
	)
	if err != nil {
		return err
	}
	// Unit assignment can change on a move; rewrite the join rows.
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reservation_units WHERE reservation_id = $1`, rv.ID); err != nil {
		return err
	}
	for _, unitID := range rv.UnitIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO reservation_units (reservation_id, unit_id) VALUES ($1, $2)`,
			rv.ID, unitID); err != nil {
			return err
		}
	}
	return nil
}

func (r *reservationRepository) ListActiveByUnit(ctx context.Context, unitID int32) ([]domain.Reservation, error) {
	query := `SELECT r.id, r.reference, r.customer_ref, r.agency_id, r.start_at, r.end_at,
	            r.total_price_cents, r.deposit_cents, r.paid_amount_cents, r.status,
	            r.cancellation_reason, r.cancelled_at, r.created_on, r.updated_on
	          FROM reservations r
	          JOIN reservation_units ru ON ru.reservation_id = r.id
	          WHERE ru.unit_id = $1 AND r.status IN ('CONFIRMED', 'CHECKED_IN')
	          ORDER BY r.start_at`
	return r.queryReservations(ctx, query, unitID)
}

func (r *reservationRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
	          WHERE status = 'CHECKED_IN' AND end_at < $1 ORDER BY end_at`
	return r.queryReservations(ctx, query, asOf)
}

func (r *reservationRepository) queryReservations(ctx context.Context, query string, args ...interface{}) ([]domain.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		var rv domain.Reservation
		if err := rows.Scan(
			&rv.ID, &rv.Reference, &rv.CustomerRef, &rv.AgencyID, &rv.Start, &rv.End,
			&rv.TotalPriceCents, &rv.DepositCents, &rv.PaidAmountCents, &rv.Status,
			&rv.CancellationReason, &rv.CancelledAt, &rv.CreatedOn, &rv.UpdatedOn,
		); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *reservationRepository) loadUnits(ctx context.Context, rv *domain.Reservation) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT unit_id FROM reservation_units WHERE reservation_id = $1 ORDER BY unit_id`, rv.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return err
		}
		rv.UnitIDs = append(rv.UnitIDs, id)
	}
	return rows.Err()
}

func (r *reservationRepository) loadItems(ctx context.Context, rv *domain.Reservation) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, reservation_id, kind, vehicle_type_id, add_on_id, description, quantity, unit_price_cents, total_cents
		 FROM line_items WHERE reservation_id = $1 ORDER BY id`, rv.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.LineItem
		if err := rows.Scan(&it.ID, &it.ReservationID, &it.Kind, &it.VehicleTypeID, &it.AddOnID,
			&it.Description, &it.Quantity, &it.UnitPriceCents, &it.TotalCents); err != nil {
			return err
		}
		rv.Items = append(rv.Items, it)
	}
	return rows.Err()
}
