package postgres

import (
	"context"

	"voltride-backend/internal/domain"
	"voltride-backend/internal/repository"
)

type fleetRepository struct {
	db dbtx
}

func NewFleetRepository(db dbtx) repository.FleetRepository {
	return &fleetRepository{db: db}
}

const fleetUnitColumns = `id, unit_number, license_plate, vehicle_type_id, agency_id, status, odometer_km, fuel_level`

func (r *fleetRepository) GetUnit(ctx context.Context, id int32) (*domain.FleetUnit, error) {
	u := &domain.FleetUnit{}
	query := `SELECT ` + fleetUnitColumns + ` FROM fleet_units WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.UnitNumber, &u.LicensePlate, &u.VehicleTypeID, &u.AgencyID, &u.Status, &u.OdometerKm, &u.FuelLevel,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *fleetRepository) SetUnitStatus(ctx context.Context, id int32, status domain.UnitStatus, odometerKm int32, fuel domain.FuelLevel) error {
	query := `UPDATE fleet_units SET status = $1, odometer_km = $2, fuel_level = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, status, odometerKm, fuel, id)
	return err
}

func (r *fleetRepository) ListUnitsByStatus(ctx context.Context, status domain.UnitStatus) ([]domain.FleetUnit, error) {
	query := `SELECT ` + fleetUnitColumns + ` FROM fleet_units WHERE status = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []domain.FleetUnit
	for rows.Next() {
		var u domain.FleetUnit
		if err := rows.Scan(&u.ID, &u.UnitNumber, &u.LicensePlate, &u.VehicleTypeID, &u.AgencyID, &u.Status, &u.OdometerKm, &u.FuelLevel); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}
