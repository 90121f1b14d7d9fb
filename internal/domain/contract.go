package domain

import "time"

type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "ACTIVE"
	ContractStatusCompleted ContractStatus = "COMPLETED"
)

type DepositStatus string

const (
	DepositStatusPending  DepositStatus = "PENDING"
	DepositStatusCaptured DepositStatus = "CAPTURED"
	DepositStatusReleased DepositStatus = "RELEASED"
)

type DepositMethod string

const (
	DepositMethodCard DepositMethod = "CARD"
	DepositMethodCash DepositMethod = "CASH"
)

type DeductionCategory string

const (
	DeductionEquipment     DeductionCategory = "EQUIPMENT"
	DeductionSparePart     DeductionCategory = "SPARE_PART"
	DeductionFuelShortfall DeductionCategory = "FUEL_SHORTFALL"
	DeductionExcessMileage DeductionCategory = "EXCESS_MILEAGE"
)

// Deduction is an itemized charge against the deposit, created only during
// check-out and append-only afterwards.
type Deduction struct {
	ID             int32             `json:"id"`
	ContractID     int32             `json:"contract_id"`
	Category       DeductionCategory `json:"category"`
	Reason         string            `json:"reason"`
	Quantity       int32             `json:"quantity"`
	UnitPriceCents int64             `json:"unit_price_cents"`
	TotalCents     int64             `json:"total_cents"`
}

// ContractExtension records a mid-rental end-date extension and the extra
// amount it was priced at.
type ContractExtension struct {
	ID          int32     `json:"id"`
	ContractID  int32     `json:"contract_id"`
	OriginalEnd time.Time `json:"original_end"`
	NewEnd      time.Time `json:"new_end"`
	ExtraCents  int64     `json:"extra_cents"`
	CreatedOn   time.Time `json:"created_on"`
}

// Contract binds a reservation to one specific fleet unit at handover,
// with the odometer/fuel baseline captured at pickup. It stays ACTIVE until
// check-out closes it; there is no timeout path.
type Contract struct {
	ID            int32          `json:"id"`
	Number        string         `json:"number"`
	ReservationID int32          `json:"reservation_id"`
	UnitID        int32          `json:"unit_id"`
	Status        ContractStatus `json:"status"`

	StartOdometerKm int32      `json:"start_odometer_km"`
	EndOdometerKm   *int32     `json:"end_odometer_km,omitempty"`
	StartFuel       FuelLevel  `json:"start_fuel"`
	EndFuel         *FuelLevel `json:"end_fuel,omitempty"`

	DepositCents  int64         `json:"deposit_cents"`
	DepositStatus DepositStatus `json:"deposit_status"`
	DepositMethod DepositMethod `json:"deposit_method"`

	TotalDeductionsCents  int64 `json:"total_deductions_cents"`
	RefundedCents         int64 `json:"refunded_cents"`
	AdditionalChargeCents int64 `json:"additional_charge_cents"`

	Deductions []Deduction         `json:"deductions,omitempty"`
	Extensions []ContractExtension `json:"extensions,omitempty"`

	CreatedOn   time.Time  `json:"created_on"`
	CompletedOn *time.Time `json:"completed_on,omitempty"`
}
