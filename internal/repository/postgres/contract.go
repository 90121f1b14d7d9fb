package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"voltride-backend/internal/domain"
	"voltride-backend/internal/repository"
)

type contractRepository struct {
	db dbtx
}

func NewContractRepository(db dbtx) repository.ContractRepository {
	return &contractRepository{db: db}
}

const contractColumns = `id, number, reservation_id, unit_id, status,
	start_odometer_km, end_odometer_km, start_fuel, end_fuel,
	deposit_cents, deposit_status, deposit_method,
	total_deductions_cents, refunded_cents, additional_charge_cents,
	created_on, completed_on`

func (r *contractRepository) Create(ctx context.Context, c *domain.Contract) error {
	now := time.Now()
	query := `INSERT INTO contracts (number, reservation_id, unit_id, status,
	            start_odometer_km, start_fuel, deposit_cents, deposit_status, deposit_method, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		c.Number, c.ReservationID, c.UnitID, c.Status,
		c.StartOdometerKm, c.StartFuel, c.DepositCents, c.DepositStatus, c.DepositMethod, now,
	).Scan(&c.ID)
	if err != nil {
		return err
	}
	c.CreatedOn = now
	return nil
}

func (r *contractRepository) GetByNumber(ctx context.Context, number string) (*domain.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE number = $1`
	c, err := r.scanOne(r.db.QueryRowContext(ctx, query, number))
	if err != nil {
		return nil, err
	}
	if err := r.loadDeductions(ctx, c); err != nil {
		return nil, err
	}
	if err := r.loadExtensions(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetOpenByUnit finds the ACTIVE contract holding a unit, if any. Used by
// check-out and by the integrity sweep.
func (r *contractRepository) GetOpenByUnit(ctx context.Context, unitID int32) (*domain.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE unit_id = $1 AND status = 'ACTIVE'`
	c, err := r.scanOne(r.db.QueryRowContext(ctx, query, unitID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *contractRepository) ListByReservation(ctx context.Context, reservationID int32) ([]domain.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE reservation_id = $1 ORDER BY id`
	out, err := r.queryContracts(ctx, query, reservationID)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadDeductions(ctx, &out[i]); err != nil {
			return nil, err
		}
		if err := r.loadExtensions(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *contractRepository) ListActive(ctx context.Context) ([]domain.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE status = 'ACTIVE' ORDER BY id`
	return r.queryContracts(ctx, query)
}

func (r *contractRepository) Update(ctx context.Context, c *domain.Contract) error {
	query := `UPDATE contracts SET status = $1, end_odometer_km = $2, end_fuel = $3,
	            deposit_status = $4, total_deductions_cents = $5, refunded_cents = $6,
	            additional_charge_cents = $7, completed_on = $8
	          WHERE id = $9`
	_, err := r.db.ExecContext(ctx, query,
		c.Status, c.EndOdometerKm, c.EndFuel,
		c.DepositStatus, c.TotalDeductionsCents, c.RefundedCents,
		c.AdditionalChargeCents, c.CompletedOn, c.ID,
	)
	return err
}

func (r *contractRepository) AddDeduction(ctx context.Context, d *domain.Deduction) error {
	query := `INSERT INTO deductions (contract_id, category, reason, quantity, unit_price_cents, total_cents)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		d.ContractID, d.Category, d.Reason, d.Quantity, d.UnitPriceCents, d.TotalCents,
	).Scan(&d.ID)
}

func (r *contractRepository) AddExtension(ctx context.Context, e *domain.ContractExtension) error {
	now := time.Now()
	query := `INSERT INTO contract_extensions (contract_id, original_end, new_end, extra_cents, created_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		e.ContractID, e.OriginalEnd, e.NewEnd, e.ExtraCents, now,
	).Scan(&e.ID)
	if err != nil {
		return err
	}
	e.CreatedOn = now
	return nil
}

func (r *contractRepository) scanOne(row *sql.Row) (*domain.Contract, error) {
	c := &domain.Contract{}
	err := row.Scan(
		&c.ID, &c.Number, &c.ReservationID, &c.UnitID, &c.Status,
		&c.StartOdometerKm, &c.EndOdometerKm, &c.StartFuel, &c.EndFuel,
		&c.DepositCents, &c.DepositStatus, &c.DepositMethod,
		&c.TotalDeductionsCents, &c.RefundedCents, &c.AdditionalChargeCents,
		&c.CreatedOn, &c.CompletedOn,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *contractRepository) queryContracts(ctx context.Context, query string, args ...interface{}) ([]domain.Contract, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Contract
	for rows.Next() {
		var c domain.Contract
		if err := rows.Scan(
			&c.ID, &c.Number, &c.ReservationID, &c.UnitID, &c.Status,
			&c.StartOdometerKm, &c.EndOdometerKm, &c.StartFuel, &c.EndFuel,
			&c.DepositCents, &c.DepositStatus, &c.DepositMethod,
			&c.TotalDeductionsCents, &c.RefundedCents, &c.AdditionalChargeCents,
			&c.CreatedOn, &c.CompletedOn,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *contractRepository) loadDeductions(ctx context.Context, c *domain.Contract) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, contract_id, category, reason, quantity, unit_price_cents, total_cents
		 FROM deductions WHERE contract_id = $1 ORDER BY id`, c.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var d domain.Deduction
		if err := rows.Scan(&d.ID, &d.ContractID, &d.Category, &d.Reason, &d.Quantity, &d.UnitPriceCents, &d.TotalCents); err != nil {
			return err
		}
		c.Deductions = append(c.Deductions, d)
	}
	return rows.Err()
}

func (r *contractRepository) loadExtensions(ctx context.Context, c *domain.Contract) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, contract_id, original_end, new_end, extra_cents, created_on
		 FROM contract_extensions WHERE contract_id = $1 ORDER BY id`, c.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var e domain.ContractExtension
		if err := rows.Scan(&e.ID, &e.ContractID, &e.OriginalEnd, &e.NewEnd, &e.ExtraCents, &e.CreatedOn); err != nil {
			return err
		}
		c.Extensions = append(c.Extensions, e)
	}
	return rows.Err()
}
