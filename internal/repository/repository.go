package repository

import (
	"context"
	"time"

	"voltride-backend/internal/domain"
)

// CatalogRepository reads the records owned by fleet/agency management:
// vehicle types with their rate tables, add-ons, agencies. The engine never
// writes them.
type CatalogRepository interface {
	GetAgency(ctx context.Context, id int32) (*domain.Agency, error)
	GetVehicleType(ctx context.Context, id int32) (*domain.VehicleType, error)
	GetAddOn(ctx context.Context, id int32) (*domain.AddOn, error)
}

// FleetRepository tracks physical units. SetUnitStatus is called only by the
// reservation lifecycle; every other component reads.
type FleetRepository interface {
	GetUnit(ctx context.Context, id int32) (*domain.FleetUnit, error)
	SetUnitStatus(ctx context.Context, id int32, status domain.UnitStatus, odometerKm int32, fuel domain.FuelLevel) error
	ListUnitsByStatus(ctx context.Context, status domain.UnitStatus) ([]domain.FleetUnit, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	GetByRef(ctx context.Context, ref string) (*domain.Reservation, error)
	Update(ctx context.Context, r *domain.Reservation) error
	AddLineItem(ctx context.Context, item *domain.LineItem) error
	// ReplaceLineItems rewrites a reservation's items after a repricing
	// pass. Only legal while the reservation is in DRAFT.
	ReplaceLineItems(ctx context.Context, reservationID int32, items []domain.LineItem) error
	// ListActiveByUnit returns the CONFIRMED and CHECKED_IN reservations
	// holding the unit; it feeds the availability index.
	ListActiveByUnit(ctx context.Context, unitID int32) ([]domain.Reservation, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Reservation, error)
}

type ContractRepository interface {
	Create(ctx context.Context, c *domain.Contract) error
	GetByNumber(ctx context.Context, number string) (*domain.Contract, error)
	GetOpenByUnit(ctx context.Context, unitID int32) (*domain.Contract, error)
	ListByReservation(ctx context.Context, reservationID int32) ([]domain.Contract, error)
	ListActive(ctx context.Context) ([]domain.Contract, error)
	Update(ctx context.Context, c *domain.Contract) error
	AddDeduction(ctx context.Context, d *domain.Deduction) error
	AddExtension(ctx context.Context, e *domain.ContractExtension) error
}

// Store bundles the repositories and provides the transaction boundary the
// atomic lifecycle transitions require: inside Transact, either every write
// commits or none does.
type Store interface {
	Catalog() CatalogRepository
	Fleet() FleetRepository
	Reservations() ReservationRepository
	Contracts() ContractRepository
	Transact(ctx context.Context, fn func(Store) error) error
}
