package postgres

import (
	"context"

	"voltride-backend/internal/domain"
	"voltride-backend/internal/repository"
)

type catalogRepository struct {
	db dbtx
}

func NewCatalogRepository(db dbtx) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetAgency(ctx context.Context, id int32) (*domain.Agency, error) {
	a := &domain.Agency{}
	query := `SELECT id, code, name, city, brand FROM agencies WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Code, &a.Name, &a.City, &a.Brand)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *catalogRepository) GetVehicleType(ctx context.Context, id int32) (*domain.VehicleType, error) {
	vt := &domain.VehicleType{}
	query := `SELECT id, sku, name, brand, agency_id, deposit_cents, plated_unit,
	                 km_included_per_day, extra_km_cents,
	                 fuel_charge_quarter_cents, fuel_charge_half_cents,
	                 fuel_charge_three_quarter_cents, fuel_charge_empty_cents,
	                 day1_cents, day2_cents, day3_cents, day4_cents, day5_cents,
	                 day6_cents, day7_cents, day8_cents, day9_cents, day10_cents,
	                 day11_cents, day12_cents, day13_cents, day14_cents,
	                 overflow_daily_cents,
	                 extra_hour1_cents, extra_hour2_cents, extra_hour3_cents, extra_hour4_cents
	          FROM vehicle_types WHERE id = $1`
	rt := &vt.Rates
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&vt.ID, &vt.SKU, &vt.Name, &vt.Brand, &vt.AgencyID, &vt.DepositCents, &vt.PlatedUnit,
		&vt.KmIncludedPerDay, &vt.ExtraKmCents,
		&vt.FuelChargeQuarterCents, &vt.FuelChargeHalfCents,
		&vt.FuelChargeThreeQuarterCents, &vt.FuelChargeEmptyCents,
		&rt.DayCents[0], &rt.DayCents[1], &rt.DayCents[2], &rt.DayCents[3], &rt.DayCents[4],
		&rt.DayCents[5], &rt.DayCents[6], &rt.DayCents[7], &rt.DayCents[8], &rt.DayCents[9],
		&rt.DayCents[10], &rt.DayCents[11], &rt.DayCents[12], &rt.DayCents[13],
		&rt.OverflowDailyCents,
		&rt.ExtraHourCents[0], &rt.ExtraHourCents[1], &rt.ExtraHourCents[2], &rt.ExtraHourCents[3],
	)
	if err != nil {
		return nil, err
	}
	return vt, nil
}

func (r *catalogRepository) GetAddOn(ctx context.Context, id int32) (*domain.AddOn, error) {
	ao := &domain.AddOn{}
	query := `SELECT id, code, name, max_quantity, included_by_default,
	                 day1_cents, day2_cents, day3_cents, day4_cents, day5_cents,
	                 day6_cents, day7_cents, day8_cents, day9_cents, day10_cents,
	                 day11_cents, day12_cents, day13_cents, day14_cents
	          FROM add_ons WHERE id = $1`
	rt := &ao.Rates
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ao.ID, &ao.Code, &ao.Name, &ao.MaxQuantity, &ao.IncludedByDefault,
		&rt.DayCents[0], &rt.DayCents[1], &rt.DayCents[2], &rt.DayCents[3], &rt.DayCents[4],
		&rt.DayCents[5], &rt.DayCents[6], &rt.DayCents[7], &rt.DayCents[8], &rt.DayCents[9],
		&rt.DayCents[10], &rt.DayCents[11], &rt.DayCents[12], &rt.DayCents[13],
	)
	if err != nil {
		return nil, err
	}
	return ao, nil
}
