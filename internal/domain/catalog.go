package domain

type Brand string

const (
	BrandVoltride  Brand = "VOLTRIDE"
	BrandMotorRent Brand = "MOTOR-RENT"
)

type Agency struct {
	ID    int32  `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	City  string `json:"city"`
	Brand Brand  `json:"brand"`
}

// RateTable holds the negotiated package price for each whole-day rental
// length from 1 to 14. Tiers are package prices, not multiples of a daily
// rate: day 3 need not equal 3x day 1. Beyond day 14 the overflow daily rate
// applies. Extra-hour supplements cover spans that run 1 to 4 hours past a
// whole number of days.
type RateTable struct {
	DayCents           [14]int64 `json:"day_cents"`
	OverflowDailyCents int64     `json:"overflow_daily_cents"`
	ExtraHourCents     [4]int64  `json:"extra_hour_cents"`
}

// VehicleType is a rentable model ("City E-Bike 28\"", "Scooter 125cc").
// FleetUnits are the physical instances of a VehicleType.
type VehicleType struct {
	ID               int32     `json:"id"`
	SKU              string    `json:"sku"`
	Name             string    `json:"name"`
	Brand            Brand     `json:"brand"`
	AgencyID         int32     `json:"agency_id"`
	DepositCents     int64     `json:"deposit_cents"`
	PlatedUnit       bool      `json:"plated_unit"` // road-legal, max one per reservation
	KmIncludedPerDay int32     `json:"km_included_per_day"`
	ExtraKmCents     int64     `json:"extra_km_cents"`
	Rates            RateTable `json:"rates"`

	// Fixed surcharge per missing fuel/charge level at return.
	FuelChargeQuarterCents      int64 `json:"fuel_charge_quarter_cents"`
	FuelChargeHalfCents         int64 `json:"fuel_charge_half_cents"`
	FuelChargeThreeQuarterCents int64 `json:"fuel_charge_three_quarter_cents"`
	FuelChargeEmptyCents        int64 `json:"fuel_charge_empty_cents"`
}

// FuelSurchargeCents returns the fixed shortfall fee for the fuel/charge
// level observed at return. FULL (or an unknown level) costs nothing.
func (v *VehicleType) FuelSurchargeCents(level FuelLevel) int64 {
	switch level {
	case FuelThreeQuarter:
		return v.FuelChargeQuarterCents
	case FuelHalf:
		return v.FuelChargeHalfCents
	case FuelQuarter:
		return v.FuelChargeThreeQuarterCents
	case FuelEmpty:
		return v.FuelChargeEmptyCents
	default:
		return 0
	}
}

// AddOn is a bookable accessory (helmet, child seat, lock) priced from its
// own rate table over the same day count as the vehicle rental.
type AddOn struct {
	ID                int32     `json:"id"`
	Code              string    `json:"code"`
	Name              string    `json:"name"`
	MaxQuantity       int32     `json:"max_quantity"`
	IncludedByDefault bool      `json:"included_by_default"`
	Rates             RateTable `json:"rates"`
}
