package domain

type UnitStatus string

const (
	UnitStatusAvailable    UnitStatus = "AVAILABLE"
	UnitStatusReserved     UnitStatus = "RESERVED"
	UnitStatusRented       UnitStatus = "RENTED"
	UnitStatusMaintenance  UnitStatus = "MAINTENANCE"
	UnitStatusOutOfService UnitStatus = "OUT_OF_SERVICE"
)

type FuelLevel string

const (
	FuelFull         FuelLevel = "FULL"
	FuelThreeQuarter FuelLevel = "THREE_QUARTER"
	FuelHalf         FuelLevel = "HALF"
	FuelQuarter      FuelLevel = "QUARTER"
	FuelEmpty        FuelLevel = "EMPTY"
)

// FleetUnit is one physical, individually tracked vehicle at one agency.
// Status is engine-maintained: only the reservation lifecycle writes it,
// everything else reads. Conflict detection never relies on it; the
// availability index over reservation rows is the source of truth.
type FleetUnit struct {
	ID            int32      `json:"id"`
	UnitNumber    string     `json:"unit_number"`
	LicensePlate  string     `json:"license_plate,omitempty"`
	VehicleTypeID int32      `json:"vehicle_type_id"`
	AgencyID      int32      `json:"agency_id"`
	Status        UnitStatus `json:"status"`
	OdometerKm    int32      `json:"odometer_km"`
	FuelLevel     FuelLevel  `json:"fuel_level"`
}
