package service

import (
	"context"
	"time"

	"voltride-backend/internal/domain"
)

// CreateReservationRequest books specific fleet units plus add-ons over a
// window. The caller (operator UI, widget backend) has already picked the
// physical units.
type CreateReservationRequest struct {
	CustomerRef string
	AgencyID    int32
	UnitIDs     []int32
	AddOns      map[int32]int32 // add-on id -> quantity
	Start       time.Time
	End         time.Time
}

// MoveRequest relocates a reservation to other units and/or another
// interval (planning-board drag and drop).
type MoveRequest struct {
	UnitIDs []int32
	Start   time.Time
	End     time.Time
}

// UnitCondition reports the observed state of one unit at handover or
// return.
type UnitCondition struct {
	UnitID     int32
	OdometerKm int32
	Fuel       domain.FuelLevel
}

type CheckInRequest struct {
	Units           []UnitCondition
	DepositMethod   domain.DepositMethod
	DepositCaptured bool
}

// DeductionInput is an operator-entered charge at check-out: damaged
// equipment or a missing spare part. Fuel and mileage deductions are derived
// by the engine, not entered.
type DeductionInput struct {
	UnitID         int32
	Category       domain.DeductionCategory
	Reason         string
	Quantity       int32
	UnitPriceCents int64
}

type CheckOutRequest struct {
	Units      []UnitCondition
	Deductions []DeductionInput
}

// CheckOutResult is the deposit reconciliation outcome across the
// reservation's contracts.
type CheckOutResult struct {
	Reservation           *domain.Reservation
	Contracts             []domain.Contract
	TotalDeductionsCents  int64
	RefundableCents       int64
	AdditionalChargeCents int64
}

type ReservationService interface {
	CreateDraft(ctx context.Context, req CreateReservationRequest) (*domain.Reservation, error)
	Confirm(ctx context.Context, ref string) (*domain.Reservation, error)
	Cancel(ctx context.Context, ref, reason string) (*domain.Reservation, error)
	Move(ctx context.Context, ref string, req MoveRequest) (*domain.Reservation, error)
	CheckIn(ctx context.Context, ref string, req CheckInRequest) (*domain.Reservation, error)
	CheckOut(ctx context.Context, ref string, req CheckOutRequest) (*CheckOutResult, error)
	Extend(ctx context.Context, ref string, newEnd time.Time) (*domain.Reservation, error)
	RecordPayment(ctx context.Context, ref string, amountCents int64) (*domain.Reservation, error)
	Get(ctx context.Context, ref string) (*domain.Reservation, error)
}

// SnapshotService assembles the read-only views handed to document
// generation and the customer portal.
type SnapshotService interface {
	Snapshot(ctx context.Context, ref string) (*domain.ReservationSnapshot, error)
}

// Notifier receives lifecycle events as plain data. Implementations live at
// the edge (email, push); the engine only publishes.
type Notifier interface {
	Publish(ctx context.Context, ev domain.LifecycleEvent) error
}
