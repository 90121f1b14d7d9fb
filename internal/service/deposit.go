package service

import (
	"fmt"

	"voltride-backend/internal/domain"
)

// fuelRank orders fuel levels from empty to full so a shortfall can be
// detected by comparison.
func fuelRank(level domain.FuelLevel) int {
	switch level {
	case domain.FuelEmpty:
		return 0
	case domain.FuelQuarter:
		return 1
	case domain.FuelHalf:
		return 2
	case domain.FuelThreeQuarter:
		return 3
	case domain.FuelFull:
		return 4
	}
	return -1
}

func validateDeduction(d DeductionInput) error {
	if d.Quantity <= 0 {
		return &domain.ValidationError{Field: "deduction.quantity", Reason: "must be positive"}
	}
	if d.UnitPriceCents < 0 {
		return &domain.ValidationError{Field: "deduction.unit_price_cents", Reason: "must not be negative"}
	}
	if d.Reason == "" {
		return &domain.ValidationError{Field: "deduction.reason", Reason: "is required"}
	}
	return nil
}

// reconcileDeductions builds the full deduction list for one returned unit:
// the operator-entered charges plus the derived fuel shortfall and excess
// mileage charges. Derived charges come from the vehicle type's tables so
// two operators returning the same unit get the same numbers.
func reconcileDeductions(c *domain.Contract, vt *domain.VehicleType, days int32, cond UnitCondition, manual []DeductionInput) ([]domain.Deduction, error) {
	if cond.OdometerKm < c.StartOdometerKm {
		return nil, &domain.ValidationError{Field: "odometer_km", Reason: "cannot be below the handover reading"}
	}
	if fuelRank(cond.Fuel) < 0 {
		return nil, &domain.ValidationError{Field: "fuel", Reason: fmt.Sprintf("unknown fuel level %q", cond.Fuel)}
	}

	var out []domain.Deduction
	for _, m := range manual {
		out = append(out, domain.Deduction{
			Category:       m.Category,
			Reason:         m.Reason,
			Quantity:       m.Quantity,
			UnitPriceCents: m.UnitPriceCents,
			TotalCents:     int64(m.Quantity) * m.UnitPriceCents,
		})
	}

	if fuelRank(cond.Fuel) < fuelRank(c.StartFuel) {
		if cents := vt.FuelSurchargeCents(cond.Fuel); cents > 0 {
			out = append(out, domain.Deduction{
				Category:       domain.DeductionFuelShortfall,
				Reason:         fmt.Sprintf("returned at %s, handed over at %s", cond.Fuel, c.StartFuel),
				Quantity:       1,
				UnitPriceCents: cents,
				TotalCents:     cents,
			})
		}
	}

	if vt.KmIncludedPerDay > 0 && vt.ExtraKmCents > 0 {
		driven := cond.OdometerKm - c.StartOdometerKm
		included := days * vt.KmIncludedPerDay
		if excess := driven - included; excess > 0 {
			out = append(out, domain.Deduction{
				Category:       domain.DeductionExcessMileage,
				Reason:         fmt.Sprintf("%d km over the %d km allowance", excess, included),
				Quantity:       excess,
				UnitPriceCents: vt.ExtraKmCents,
				TotalCents:     int64(excess) * vt.ExtraKmCents,
			})
		}
	}
	return out, nil
}
