package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"voltride-backend/internal/domain"
	"voltride-backend/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestFleetRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("GetUnit", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewFleetRepository(db)

		rows := sqlmock.NewRows([]string{"id", "unit_number", "license_plate", "vehicle_type_id", "agency_id", "status", "odometer_km", "fuel_level"}).
			AddRow(7, "BK-007", "", 1, 1, "AVAILABLE", 500, "FULL")
		mock.ExpectQuery(`SELECT .+ FROM fleet_units WHERE id = \$1`).WithArgs(int32(7)).WillReturnRows(rows)

		u, err := repo.GetUnit(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "BK-007", u.UnitNumber)
		assert.Equal(t, domain.UnitStatusAvailable, u.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SetUnitStatus", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewFleetRepository(db)

		mock.ExpectExec(`UPDATE fleet_units SET status = \$1, odometer_km = \$2, fuel_level = \$3 WHERE id = \$4`).
			WithArgs(domain.UnitStatusRented, int32(1000), domain.FuelFull, int32(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SetUnitStatus(ctx, 7, domain.UnitStatusRented, 1000, domain.FuelFull)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListUnitsByStatus", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewFleetRepository(db)

		rows := sqlmock.NewRows([]string{"id", "unit_number", "license_plate", "vehicle_type_id", "agency_id", "status", "odometer_km", "fuel_level"}).
			AddRow(7, "BK-007", "", 1, 1, "RENTED", 1000, "FULL").
			AddRow(8, "BK-008", "", 1, 1, "RENTED", 1200, "HALF")
		mock.ExpectQuery(`SELECT .+ FROM fleet_units WHERE status = \$1 ORDER BY id`).
			WithArgs(domain.UnitStatusRented).WillReturnRows(rows)

		units, err := repo.ListUnitsByStatus(ctx, domain.UnitStatusRented)
		require.NoError(t, err)
		require.Len(t, units, 2)
		assert.Equal(t, int32(8), units[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCatalogRepository_GetVehicleType(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCatalogRepository(db)

	cols := []string{"id", "sku", "name", "brand", "agency_id", "deposit_cents", "plated_unit",
		"km_included_per_day", "extra_km_cents",
		"fuel_charge_quarter_cents", "fuel_charge_half_cents",
		"fuel_charge_three_quarter_cents", "fuel_charge_empty_cents",
		"day1_cents", "day2_cents", "day3_cents", "day4_cents", "day5_cents",
		"day6_cents", "day7_cents", "day8_cents", "day9_cents", "day10_cents",
		"day11_cents", "day12_cents", "day13_cents", "day14_cents",
		"overflow_daily_cents",
		"extra_hour1_cents", "extra_hour2_cents", "extra_hour3_cents", "extra_hour4_cents"}
	rows := sqlmock.NewRows(cols).AddRow(
		1, "CITY-28", "City E-Bike 28\"", "VOLTRIDE", 1, 10000, false,
		100, 15,
		500, 1000, 1500, 2000,
		1200, 2200, 3000, 3800, 4500, 5200, 5800, 6400, 7000, 7600, 8100, 8600, 9100, 9500,
		1000,
		300, 300, 400, 400)
	mock.ExpectQuery(`SELECT .+ FROM vehicle_types WHERE id = \$1`).WithArgs(int32(1)).WillReturnRows(rows)

	vt, err := repo.GetVehicleType(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "CITY-28", vt.SKU)
	assert.Equal(t, int64(3000), vt.Rates.DayCents[2])
	assert.Equal(t, int64(1000), vt.Rates.OverflowDailyCents)
	assert.Equal(t, int64(1000), vt.FuelSurchargeCents(domain.FuelHalf))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 3)

	t.Run("Create", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewReservationRepository(db)

		mock.ExpectQuery(`INSERT INTO reservations .+ RETURNING id`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
		mock.ExpectExec(`INSERT INTO reservation_units`).
			WithArgs(int32(42), int32(7)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO line_items .+ RETURNING id`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		typeID := int32(1)
		r := &domain.Reservation{
			Reference:   "RES-TEST01",
			CustomerRef: "anna@example.com",
			AgencyID:    1,
			UnitIDs:     []int32{7},
			Start:       start,
			End:         end,
			Status:      domain.ReservationStatusDraft,
			Items: []domain.LineItem{{
				Kind: domain.LineItemVehicle, VehicleTypeID: &typeID,
				Description: "City E-Bike 28\"", Quantity: 1, UnitPriceCents: 3000, TotalCents: 3000,
			}},
		}
		require.NoError(t, repo.Create(ctx, r))
		assert.Equal(t, int32(42), r.ID)
		assert.Equal(t, int32(42), r.Items[0].ReservationID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetByRefNotFound", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewReservationRepository(db)

		mock.ExpectQuery(`SELECT .+ FROM reservations WHERE reference = \$1`).
			WithArgs("RES-MISSING").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByRef(ctx, "RES-MISSING")
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListActiveByUnit", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewReservationRepository(db)

		rows := sqlmock.NewRows([]string{"id", "reference", "customer_ref", "agency_id", "start_at", "end_at",
			"total_price_cents", "deposit_cents", "paid_amount_cents", "status",
			"cancellation_reason", "cancelled_at", "created_on", "updated_on"}).
			AddRow(42, "RES-TEST01", "anna@example.com", 1, start, end, 3000, 10000, 0, "CONFIRMED", "", nil, start, start)
		mock.ExpectQuery(`SELECT .+ FROM reservations r\s+JOIN reservation_units ru`).
			WithArgs(int32(7)).WillReturnRows(rows)

		out, err := repo.ListActiveByUnit(ctx, 7)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "RES-TEST01", out[0].Reference)
		assert.Equal(t, domain.ReservationStatusConfirmed, out[0].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestContractRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewContractRepository(db)

		mock.ExpectQuery(`INSERT INTO contracts .+ RETURNING id`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

		c := &domain.Contract{
			Number:          "CTR-TEST01",
			ReservationID:   42,
			UnitID:          7,
			Status:          domain.ContractStatusActive,
			StartOdometerKm: 1000,
			StartFuel:       domain.FuelFull,
			DepositCents:    10000,
			DepositStatus:   domain.DepositStatusCaptured,
			DepositMethod:   domain.DepositMethodCard,
		}
		require.NoError(t, repo.Create(ctx, c))
		assert.Equal(t, int32(5), c.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetOpenByUnitNone", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewContractRepository(db)

		mock.ExpectQuery(`SELECT .+ FROM contracts WHERE unit_id = \$1 AND status = 'ACTIVE'`).
			WithArgs(int32(7)).WillReturnError(sql.ErrNoRows)

		c, err := repo.GetOpenByUnit(ctx, 7)
		require.NoError(t, err)
		assert.Nil(t, c)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AddDeduction", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewContractRepository(db)

		mock.ExpectQuery(`INSERT INTO deductions .+ RETURNING id`).
			WithArgs(int32(5), domain.DeductionEquipment, "missing lock", int32(1), int64(1500), int64(1500)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

		d := &domain.Deduction{
			ContractID: 5, Category: domain.DeductionEquipment,
			Reason: "missing lock", Quantity: 1, UnitPriceCents: 1500, TotalCents: 1500,
		}
		require.NoError(t, repo.AddDeduction(ctx, d))
		assert.Equal(t, int32(9), d.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStoreTransact(t *testing.T) {
	ctx := context.Background()

	t.Run("CommitsOnSuccess", func(t *testing.T) {
		db, mock := newMock(t)
		store := NewStore(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE fleet_units`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := store.Transact(ctx, func(st repository.Store) error {
			return st.Fleet().SetUnitStatus(ctx, 7, domain.UnitStatusRented, 1000, domain.FuelFull)
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollsBackOnError", func(t *testing.T) {
		db, mock := newMock(t)
		store := NewStore(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE fleet_units`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectRollback()

		wantErr := fmt.Errorf("contract write failed")
		err := store.Transact(ctx, func(st repository.Store) error {
			if err := st.Fleet().SetUnitStatus(ctx, 7, domain.UnitStatusRented, 1000, domain.FuelFull); err != nil {
				return err
			}
			return wantErr
		})
		assert.ErrorIs(t, err, wantErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollsBackOnStatementError", func(t *testing.T) {
		db, mock := newMock(t)
		store := NewStore(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE fleet_units`).WillReturnError(fmt.Errorf("connection reset"))
		mock.ExpectRollback()

		err := store.Transact(ctx, func(st repository.Store) error {
			return st.Fleet().SetUnitStatus(ctx, 7, domain.UnitStatusRented, 1000, domain.FuelFull)
		})
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
