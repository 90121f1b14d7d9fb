package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"voltride-backend/internal/domain"
	"voltride-backend/internal/repository"
)

// fakeStore is an in-memory repository.Store. Transact snapshots the state
// and restores it when the callback fails, mirroring a rollback.
type fakeStore struct {
	mu sync.Mutex

	agencies     map[int32]domain.Agency
	vehicleTypes map[int32]domain.VehicleType
	addOns       map[int32]domain.AddOn
	units        map[int32]domain.FleetUnit

	reservations map[string]domain.Reservation
	contracts    map[int32]domain.Contract

	nextReservationID int32
	nextContractID    int32
	nextItemID        int32

	// Error injection, keyed by operation name.
	failOn map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		agencies:     make(map[int32]domain.Agency),
		vehicleTypes: make(map[int32]domain.VehicleType),
		addOns:       make(map[int32]domain.AddOn),
		units:        make(map[int32]domain.FleetUnit),
		reservations: make(map[string]domain.Reservation),
		contracts:    make(map[int32]domain.Contract),
		failOn:       make(map[string]error),
	}
}

func (f *fakeStore) snapshot() *fakeStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := newFakeStore()
	for k, v := range f.units {
		s.units[k] = v
	}
	for k, v := range f.reservations {
		v.UnitIDs = append([]int32(nil), v.UnitIDs...)
		v.Items = append([]domain.LineItem(nil), v.Items...)
		s.reservations[k] = v
	}
	for k, v := range f.contracts {
		v.Deductions = append([]domain.Deduction(nil), v.Deductions...)
		v.Extensions = append([]domain.ContractExtension(nil), v.Extensions...)
		s.contracts[k] = v
	}
	s.nextReservationID = f.nextReservationID
	s.nextContractID = f.nextContractID
	s.nextItemID = f.nextItemID
	return s
}

func (f *fakeStore) restore(s *fakeStore) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.units = s.units
	f.reservations = s.reservations
	f.contracts = s.contracts
	f.nextReservationID = s.nextReservationID
	f.nextContractID = s.nextContractID
	f.nextItemID = s.nextItemID
}

func (f *fakeStore) fail(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failOn[op]
}

func (f *fakeStore) Catalog() repository.CatalogRepository          { return (*fakeCatalog)(f) }
func (f *fakeStore) Fleet() repository.FleetRepository              { return (*fakeFleet)(f) }
func (f *fakeStore) Reservations() repository.ReservationRepository { return (*fakeReservations)(f) }
func (f *fakeStore) Contracts() repository.ContractRepository       { return (*fakeContracts)(f) }

func (f *fakeStore) Transact(_ context.Context, fn func(repository.Store) error) error {
	snap := f.snapshot()
	if err := fn(f); err != nil {
		f.restore(snap)
		return err
	}
	return nil
}

type fakeCatalog fakeStore

func (f *fakeCatalog) GetAgency(_ context.Context, id int32) (*domain.Agency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.agencies[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &a, nil
}

func (f *fakeCatalog) GetVehicleType(_ context.Context, id int32) (*domain.VehicleType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vt, ok := f.vehicleTypes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &vt, nil
}

func (f *fakeCatalog) GetAddOn(_ context.Context, id int32) (*domain.AddOn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ao, ok := f.addOns[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &ao, nil
}

type fakeFleet fakeStore

func (f *fakeFleet) GetUnit(_ context.Context, id int32) (*domain.FleetUnit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.units[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (f *fakeFleet) SetUnitStatus(_ context.Context, id int32, status domain.UnitStatus, odometerKm int32, fuel domain.FuelLevel) error {
	if err := (*fakeStore)(f).fail("SetUnitStatus"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.units[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.Status = status
	u.OdometerKm = odometerKm
	u.FuelLevel = fuel
	f.units[id] = u
	return nil
}

func (f *fakeFleet) ListUnitsByStatus(_ context.Context, status domain.UnitStatus) ([]domain.FleetUnit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.FleetUnit
	for _, u := range f.units {
		if u.Status == status {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeReservations fakeStore

func (f *fakeReservations) Create(_ context.Context, r *domain.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextReservationID++
	r.ID = f.nextReservationID
	r.CreatedOn = time.Now()
	r.UpdatedOn = r.CreatedOn
	for i := range r.Items {
		f.nextItemID++
		r.Items[i].ID = f.nextItemID
		r.Items[i].ReservationID = r.ID
	}
	f.reservations[r.Reference] = *r
	return nil
}

func (f *fakeReservations) GetByRef(_ context.Context, ref string) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[ref]
	if !ok {
		return nil, sql.ErrNoRows
	}
	r.UnitIDs = append([]int32(nil), r.UnitIDs...)
	r.Items = append([]domain.LineItem(nil), r.Items...)
	return &r, nil
}

func (f *fakeReservations) Update(_ context.Context, r *domain.Reservation) error {
	if err := (*fakeStore)(f).fail("UpdateReservation"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reservations[r.Reference]; !ok {
		return sql.ErrNoRows
	}
	r.UpdatedOn = time.Now()
	f.reservations[r.Reference] = *r
	return nil
}

func (f *fakeReservations) AddLineItem(_ context.Context, item *domain.LineItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextItemID++
	item.ID = f.nextItemID
	for ref, r := range f.reservations {
		if r.ID == item.ReservationID {
			r.Items = append(r.Items, *item)
			f.reservations[ref] = r
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeReservations) ReplaceLineItems(_ context.Context, reservationID int32, items []domain.LineItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ref, r := range f.reservations {
		if r.ID == reservationID {
			r.Items = nil
			for i := range items {
				f.nextItemID++
				items[i].ID = f.nextItemID
				items[i].ReservationID = reservationID
				r.Items = append(r.Items, items[i])
			}
			f.reservations[ref] = r
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeReservations) ListActiveByUnit(_ context.Context, unitID int32) ([]domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Reservation
	for _, r := range f.reservations {
		if !r.ConstrainsAvailability() {
			continue
		}
		for _, id := range r.UnitIDs {
			if id == unitID {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeReservations) ListOverdue(_ context.Context, asOf time.Time) ([]domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Reservation
	for _, r := range f.reservations {
		if r.Status == domain.ReservationStatusCheckedIn && r.End.Before(asOf) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeContracts fakeStore

func (f *fakeContracts) Create(_ context.Context, c *domain.Contract) error {
	if err := (*fakeStore)(f).fail("CreateContract"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextContractID++
	c.ID = f.nextContractID
	c.CreatedOn = time.Now()
	f.contracts[c.ID] = *c
	return nil
}

func (f *fakeContracts) GetByNumber(_ context.Context, number string) (*domain.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.contracts {
		if c.Number == number {
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeContracts) GetOpenByUnit(_ context.Context, unitID int32) (*domain.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.contracts {
		if c.UnitID == unitID && c.Status == domain.ContractStatusActive {
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeContracts) ListByReservation(_ context.Context, reservationID int32) ([]domain.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Contract
	for _, c := range f.contracts {
		if c.ReservationID == reservationID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContracts) ListActive(_ context.Context) ([]domain.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Contract
	for _, c := range f.contracts {
		if c.Status == domain.ContractStatusActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContracts) Update(_ context.Context, c *domain.Contract) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.contracts[c.ID]; !ok {
		return sql.ErrNoRows
	}
	f.contracts[c.ID] = *c
	return nil
}

func (f *fakeContracts) AddDeduction(_ context.Context, d *domain.Deduction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contracts[d.ContractID]
	if !ok {
		return sql.ErrNoRows
	}
	d.ID = int32(len(c.Deductions) + 1)
	c.Deductions = append(c.Deductions, *d)
	f.contracts[d.ContractID] = c
	return nil
}

func (f *fakeContracts) AddExtension(_ context.Context, e *domain.ContractExtension) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contracts[e.ContractID]
	if !ok {
		return sql.ErrNoRows
	}
	e.ID = int32(len(c.Extensions) + 1)
	e.CreatedOn = time.Now()
	c.Extensions = append(c.Extensions, *e)
	f.contracts[e.ContractID] = c
	return nil
}

// recordingNotifier captures published lifecycle events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.LifecycleEvent
}

func (n *recordingNotifier) Publish(_ context.Context, ev domain.LifecycleEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}

func (n *recordingNotifier) kinds() []domain.EventKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.EventKind, 0, len(n.events))
	for _, ev := range n.events {
		out = append(out, ev.Kind)
	}
	return out
}
