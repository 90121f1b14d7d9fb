package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"voltride-backend/internal/availability"
	"voltride-backend/internal/domain"
	"voltride-backend/internal/logger"
	"voltride-backend/internal/pricing"
	"voltride-backend/internal/repository"

	"github.com/google/uuid"
)

type reservationService struct {
	store    repository.Store
	index    *availability.Index
	notifier Notifier
}

func NewReservationService(store repository.Store, index *availability.Index, notifier Notifier) ReservationService {
	return &reservationService{
		store:    store,
		index:    index,
		notifier: notifier,
	}
}

func newReference() string {
	return "RES-" + strings.ToUpper(uuid.NewString()[:8])
}

func newContractNumber() string {
	return "CTR-" + strings.ToUpper(uuid.NewString()[:8])
}

func (s *reservationService) CreateDraft(ctx context.Context, req CreateReservationRequest) (*domain.Reservation, error) {
	if req.CustomerRef == "" {
		return nil, &domain.ValidationError{Field: "customer_ref", Reason: "is required"}
	}
	if err := validateUnitIDs(req.UnitIDs); err != nil {
		return nil, err
	}

	quoteReq, deposit, err := s.buildQuoteRequest(ctx, req.AgencyID, req.UnitIDs, req.AddOns, req.Start, req.End)
	if err != nil {
		return nil, err
	}
	quote, err := pricing.ComputeQuote(*quoteReq)
	if err != nil {
		return nil, err
	}

	r := &domain.Reservation{
		Reference:       newReference(),
		CustomerRef:     req.CustomerRef,
		AgencyID:        req.AgencyID,
		UnitIDs:         req.UnitIDs,
		Start:           req.Start,
		End:             req.End,
		Items:           quote.Items,
		TotalPriceCents: quote.TotalCents,
		DepositCents:    deposit,
		Status:          domain.ReservationStatusDraft,
	}
	if err := s.store.Reservations().Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	logger.Info("reservation drafted", "reference", r.Reference, "units", r.UnitIDs, "total_cents", r.TotalPriceCents)
	return r, nil
}

// buildQuoteRequest resolves units to their vehicle types, groups them into
// selections, resolves add-ons and sums the deposit. Units must all belong
// to the requested agency.
func (s *reservationService) buildQuoteRequest(ctx context.Context, agencyID int32, unitIDs []int32, addOns map[int32]int32, start, end time.Time) (*pricing.QuoteRequest, int64, error) {
	catalog := s.store.Catalog()
	fleet := s.store.Fleet()

	typeCounts := make(map[int32]int32)
	types := make(map[int32]*domain.VehicleType)
	var deposit int64

	for _, unitID := range unitIDs {
		unit, err := fleet.GetUnit(ctx, unitID)
		if err != nil {
			return nil, 0, fmt.Errorf("load fleet unit %d: %w", unitID, err)
		}
		if unit.AgencyID != agencyID {
			return nil, 0, &domain.ValidationError{Field: "unit_ids", Reason: fmt.Sprintf("unit %s belongs to another agency", unit.UnitNumber)}
		}
		vt, ok := types[unit.VehicleTypeID]
		if !ok {
			vt, err = catalog.GetVehicleType(ctx, unit.VehicleTypeID)
			if err != nil {
				return nil, 0, fmt.Errorf("load vehicle type %d: %w", unit.VehicleTypeID, err)
			}
			types[vt.ID] = vt
		}
		typeCounts[vt.ID]++
		deposit += vt.DepositCents
	}

	quoteReq := &pricing.QuoteRequest{Start: start, End: end}
	for typeID, count := range typeCounts {
		quoteReq.Units = append(quoteReq.Units, pricing.UnitSelection{VehicleType: types[typeID], Quantity: count})
	}
	for addOnID, qty := range addOns {
		ao, err := catalog.GetAddOn(ctx, addOnID)
		if err != nil {
			return nil, 0, fmt.Errorf("load add-on %d: %w", addOnID, err)
		}
		quoteReq.AddOns = append(quoteReq.AddOns, pricing.AddOnSelection{AddOn: ao, Quantity: qty})
	}
	return quoteReq, deposit, nil
}

func (s *reservationService) Confirm(ctx context.Context, ref string) (*domain.Reservation, error) {
	r, err := s.store.Reservations().GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if r.Status != domain.ReservationStatusDraft {
		return nil, &domain.InvalidTransitionError{From: r.Status, To: domain.ReservationStatusConfirmed}
	}

	err = s.index.Reserve(ctx, r.UnitIDs, r.Start, r.End, r.Reference, func(ctx context.Context) error {
		r.Status = domain.ReservationStatusConfirmed
		return s.store.Reservations().Update(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.LifecycleEvent{
		Kind:           domain.EventReservationConfirmed,
		ReservationRef: r.Reference,
		CustomerRef:    r.CustomerRef,
		AgencyID:       r.AgencyID,
		UnitIDs:        r.UnitIDs,
		AmountCents:    r.TotalPriceCents,
		OccurredAt:     time.Now(),
	})
	return r, nil
}

func (s *reservationService) Cancel(ctx context.Context, ref, reason string) (*domain.Reservation, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, &domain.ValidationError{Field: "reason", Reason: "a cancellation reason is required"}
	}
	r, err := s.store.Reservations().GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if r.Status != domain.ReservationStatusDraft && r.Status != domain.ReservationStatusConfirmed {
		// A handed-over vehicle cannot be uncancelled; it can only come back.
		return nil, &domain.InvalidTransitionError{From: r.Status, To: domain.ReservationStatusCancelled}
	}

	now := time.Now()
	r.Status = domain.ReservationStatusCancelled
	r.CancellationReason = reason
	r.CancelledAt = &now
	if err := s.store.Reservations().Update(ctx, r); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.LifecycleEvent{
		Kind:           domain.EventReservationCancelled,
		ReservationRef: r.Reference,
		CustomerRef:    r.CustomerRef,
		AgencyID:       r.AgencyID,
		UnitIDs:        r.UnitIDs,
		Detail:         reason,
		OccurredAt:     now,
	})
	return r, nil
}

// Move relocates a reservation to new units and/or a new interval, checking
// availability with the reservation itself excluded. The whole move commits
// or nothing changes. If the billable span of a CONFIRMED reservation
// changes, the items are repriced and the reservation drops back to DRAFT
// for explicit re-confirmation; its hold on the units lapses with it.
func (s *reservationService) Move(ctx context.Context, ref string, req MoveRequest) (*domain.Reservation, error) {
	r, err := s.store.Reservations().GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if r.Status != domain.ReservationStatusDraft && r.Status != domain.ReservationStatusConfirmed {
		return nil, &domain.InvalidTransitionError{From: r.Status, To: r.Status}
	}
	if err := validateUnitIDs(req.UnitIDs); err != nil {
		return nil, err
	}

	oldSpan, err := pricing.ComputeSpan(r.Start, r.End)
	if err != nil {
		return nil, err
	}
	newSpan, err := pricing.ComputeSpan(req.Start, req.End)
	if err != nil {
		return nil, err
	}
	spanChanged := oldSpan != newSpan

	err = s.index.Reserve(ctx, req.UnitIDs, req.Start, req.End, r.Reference, func(ctx context.Context) error {
		return s.store.Transact(ctx, func(st repository.Store) error {
			r.UnitIDs = req.UnitIDs
			r.Start = req.Start
			r.End = req.End

			if spanChanged {
				addOns := make(map[int32]int32)
				for _, it := range r.Items {
					if it.Kind == domain.LineItemAddOn && it.AddOnID != nil {
						addOns[*it.AddOnID] = it.Quantity
					}
				}
				quoteReq, deposit, err := s.buildQuoteRequest(ctx, r.AgencyID, req.UnitIDs, addOns, req.Start, req.End)
				if err != nil {
					return err
				}
				quote, err := pricing.ComputeQuote(*quoteReq)
				if err != nil {
					return err
				}
				r.Items = quote.Items
				r.TotalPriceCents = quote.TotalCents
				r.DepositCents = deposit
				r.Status = domain.ReservationStatusDraft
				if err := st.Reservations().ReplaceLineItems(ctx, r.ID, r.Items); err != nil {
					return err
				}
			}
			return st.Reservations().Update(ctx, r)
		})
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *reservationService) CheckIn(ctx context.Context, ref string, req CheckInRequest) (*domain.Reservation, error) {
	r, err := s.store.Reservations().GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if r.Status != domain.ReservationStatusConfirmed {
		return nil, &domain.InvalidTransitionError{From: r.Status, To: domain.ReservationStatusCheckedIn}
	}
	conditions, err := matchConditions(r.UnitIDs, req.Units)
	if err != nil {
		return nil, err
	}

	depositStatus := domain.DepositStatusPending
	if req.DepositCaptured {
		depositStatus = domain.DepositStatusCaptured
	}
	method := req.DepositMethod
	if method == "" {
		method = domain.DepositMethodCard
	}

	// One transaction for all of it: contracts created, units flipped to
	// RENTED, reservation advanced. A RENTED unit with no contract (or the
	// reverse) must be impossible.
	err = s.store.Transact(ctx, func(st repository.Store) error {
		for _, cond := range conditions {
			unit, err := st.Fleet().GetUnit(ctx, cond.UnitID)
			if err != nil {
				return err
			}
			switch unit.Status {
			case domain.UnitStatusMaintenance, domain.UnitStatusOutOfService:
				return &domain.ValidationError{Field: "unit", Reason: fmt.Sprintf("unit %s is %s", unit.UnitNumber, unit.Status)}
			case domain.UnitStatusRented:
				return &domain.ValidationError{Field: "unit", Reason: fmt.Sprintf("unit %s is already handed over", unit.UnitNumber)}
			}
			vt, err := st.Catalog().GetVehicleType(ctx, unit.VehicleTypeID)
			if err != nil {
				return err
			}
			contract := &domain.Contract{
				Number:          newContractNumber(),
				ReservationID:   r.ID,
				UnitID:          cond.UnitID,
				Status:          domain.ContractStatusActive,
				StartOdometerKm: cond.OdometerKm,
				StartFuel:       cond.Fuel,
				DepositCents:    vt.DepositCents,
				DepositStatus:   depositStatus,
				DepositMethod:   method,
			}
			if err := st.Contracts().Create(ctx, contract); err != nil {
				return err
			}
			if err := st.Fleet().SetUnitStatus(ctx, cond.UnitID, domain.UnitStatusRented, cond.OdometerKm, cond.Fuel); err != nil {
				return err
			}
		}
		r.Status = domain.ReservationStatusCheckedIn
		return st.Reservations().Update(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.LifecycleEvent{
		Kind:           domain.EventReservationCheckedIn,
		ReservationRef: r.Reference,
		CustomerRef:    r.CustomerRef,
		AgencyID:       r.AgencyID,
		UnitIDs:        r.UnitIDs,
		AmountCents:    r.DepositCents,
		OccurredAt:     time.Now(),
	})
	return r, nil
}

func (s *reservationService) CheckOut(ctx context.Context, ref string, req CheckOutRequest) (*CheckOutResult, error) {
	r, err := s.store.Reservations().GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if r.Status == domain.ReservationStatusCompleted {
		return nil, &domain.ImmutabilityError{Entity: "reservation", Ref: r.Reference}
	}
	if r.Status != domain.ReservationStatusCheckedIn {
		return nil, &domain.InvalidTransitionError{From: r.Status, To: domain.ReservationStatusCompleted}
	}
	conditions, err := matchConditions(r.UnitIDs, req.Units)
	if err != nil {
		return nil, err
	}
	span, err := pricing.ComputeSpan(r.Start, r.End)
	if err != nil {
		return nil, err
	}

	manualByUnit := make(map[int32][]DeductionInput)
	for _, d := range req.Deductions {
		if d.Category != domain.DeductionEquipment && d.Category != domain.DeductionSparePart {
			return nil, &domain.ValidationError{Field: "deduction", Reason: "only equipment and spare part deductions are entered manually"}
		}
		if err := validateDeduction(d); err != nil {
			return nil, err
		}
		manualByUnit[d.UnitID] = append(manualByUnit[d.UnitID], d)
	}

	result := &CheckOutResult{Reservation: r}
	now := time.Now()

	err = s.store.Transact(ctx, func(st repository.Store) error {
		result.Contracts = result.Contracts[:0]
		result.TotalDeductionsCents = 0
		result.RefundableCents = 0
		result.AdditionalChargeCents = 0

		for _, cond := range conditions {
			contract, err := st.Contracts().GetOpenByUnit(ctx, cond.UnitID)
			if err != nil {
				return err
			}
			if contract == nil || contract.ReservationID != r.ID {
				return &domain.ValidationError{Field: "unit", Reason: fmt.Sprintf("unit %d has no open contract under this reservation", cond.UnitID)}
			}
			unit, err := st.Fleet().GetUnit(ctx, cond.UnitID)
			if err != nil {
				return err
			}
			vt, err := st.Catalog().GetVehicleType(ctx, unit.VehicleTypeID)
			if err != nil {
				return err
			}

			deductions, err := reconcileDeductions(contract, vt, span.Days, cond, manualByUnit[cond.UnitID])
			if err != nil {
				return err
			}
			var total int64
			for i := range deductions {
				deductions[i].ContractID = contract.ID
				if err := st.Contracts().AddDeduction(ctx, &deductions[i]); err != nil {
					return err
				}
				total += deductions[i].TotalCents
			}

			refundable := contract.DepositCents - total
			if refundable < 0 {
				refundable = 0
			}
			additional := total - contract.DepositCents
			if additional < 0 {
				additional = 0
			}

			endOdo := cond.OdometerKm
			endFuel := cond.Fuel
			contract.Status = domain.ContractStatusCompleted
			contract.EndOdometerKm = &endOdo
			contract.EndFuel = &endFuel
			contract.DepositStatus = domain.DepositStatusReleased
			contract.TotalDeductionsCents = total
			contract.RefundedCents = refundable
			contract.AdditionalChargeCents = additional
			contract.CompletedOn = &now
			contract.Deductions = deductions
			if err := st.Contracts().Update(ctx, contract); err != nil {
				return err
			}
			if err := st.Fleet().SetUnitStatus(ctx, cond.UnitID, domain.UnitStatusAvailable, cond.OdometerKm, cond.Fuel); err != nil {
				return err
			}

			result.Contracts = append(result.Contracts, *contract)
			result.TotalDeductionsCents += total
			result.RefundableCents += refundable
			result.AdditionalChargeCents += additional
		}

		r.Status = domain.ReservationStatusCompleted
		return st.Reservations().Update(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.LifecycleEvent{
		Kind:           domain.EventReservationCompleted,
		ReservationRef: r.Reference,
		CustomerRef:    r.CustomerRef,
		AgencyID:       r.AgencyID,
		UnitIDs:        r.UnitIDs,
		AmountCents:    result.RefundableCents,
		OccurredAt:     now,
	})
	return result, nil
}

func (s *reservationService) Extend(ctx context.Context, ref string, newEnd time.Time) (*domain.Reservation, error) {
	r, err := s.store.Reservations().GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if r.Status != domain.ReservationStatusCheckedIn {
		return nil, &domain.InvalidTransitionError{From: r.Status, To: r.Status}
	}

	extraByUnit := make(map[int32]int64, len(r.UnitIDs))
	var extraTotal int64
	for _, unitID := range r.UnitIDs {
		unit, err := s.store.Fleet().GetUnit(ctx, unitID)
		if err != nil {
			return nil, err
		}
		vt, err := s.store.Catalog().GetVehicleType(ctx, unit.VehicleTypeID)
		if err != nil {
			return nil, err
		}
		extra, err := pricing.ExtensionCents(&vt.Rates, r.End, newEnd)
		if err != nil {
			return nil, err
		}
		extraByUnit[unitID] = extra
		extraTotal += extra
	}

	oldEnd := r.End
	err = s.index.Reserve(ctx, r.UnitIDs, r.Start, newEnd, r.Reference, func(ctx context.Context) error {
		return s.store.Transact(ctx, func(st repository.Store) error {
			contracts, err := st.Contracts().ListByReservation(ctx, r.ID)
			if err != nil {
				return err
			}
			for i := range contracts {
				ext := &domain.ContractExtension{
					ContractID:  contracts[i].ID,
					OriginalEnd: oldEnd,
					NewEnd:      newEnd,
					ExtraCents:  extraByUnit[contracts[i].UnitID],
				}
				if err := st.Contracts().AddExtension(ctx, ext); err != nil {
					return err
				}
			}
			item := &domain.LineItem{
				ReservationID:  r.ID,
				Kind:           domain.LineItemExtension,
				Description:    fmt.Sprintf("Extension until %s", newEnd.Format("2006-01-02 15:04")),
				Quantity:       1,
				UnitPriceCents: extraTotal,
				TotalCents:     extraTotal,
			}
			if err := st.Reservations().AddLineItem(ctx, item); err != nil {
				return err
			}
			r.Items = append(r.Items, *item)
			r.End = newEnd
			r.TotalPriceCents += extraTotal
			return st.Reservations().Update(ctx, r)
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.LifecycleEvent{
		Kind:           domain.EventReservationExtended,
		ReservationRef: r.Reference,
		CustomerRef:    r.CustomerRef,
		AgencyID:       r.AgencyID,
		UnitIDs:        r.UnitIDs,
		AmountCents:    extraTotal,
		Detail:         fmt.Sprintf("end moved from %s to %s", oldEnd.Format(time.RFC3339), newEnd.Format(time.RFC3339)),
		OccurredAt:     time.Now(),
	})
	return r, nil
}

// RecordPayment books a captured amount reported by the payment layer. The
// engine never initiates or validates the capture.
func (s *reservationService) RecordPayment(ctx context.Context, ref string, amountCents int64) (*domain.Reservation, error) {
	if amountCents <= 0 {
		return nil, &domain.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	r, err := s.store.Reservations().GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if r.Status == domain.ReservationStatusCancelled {
		return nil, &domain.InvalidTransitionError{From: r.Status, To: r.Status}
	}
	r.PaidAmountCents += amountCents
	if err := s.store.Reservations().Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *reservationService) Get(ctx context.Context, ref string) (*domain.Reservation, error) {
	return s.store.Reservations().GetByRef(ctx, ref)
}

func (s *reservationService) publish(ctx context.Context, ev domain.LifecycleEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, ev); err != nil {
		logger.Warn("lifecycle event dispatch failed", "kind", ev.Kind, "reference", ev.ReservationRef, "error", err)
	}
}

// validateUnitIDs rejects empty selections and duplicate unit IDs. A unit
// can be booked once per reservation; duplicates would also double its
// deposit and its line items.
func validateUnitIDs(unitIDs []int32) error {
	if len(unitIDs) == 0 {
		return &domain.ValidationError{Field: "unit_ids", Reason: "at least one fleet unit is required"}
	}
	seen := make(map[int32]bool, len(unitIDs))
	for _, id := range unitIDs {
		if seen[id] {
			return &domain.ValidationError{Field: "unit_ids", Reason: fmt.Sprintf("unit %d listed more than once", id)}
		}
		seen[id] = true
	}
	return nil
}

// matchConditions checks that the reported unit conditions cover exactly the
// reservation's units, and returns them in reservation order.
func matchConditions(unitIDs []int32, conditions []UnitCondition) ([]UnitCondition, error) {
	byUnit := make(map[int32]UnitCondition, len(conditions))
	for _, c := range conditions {
		byUnit[c.UnitID] = c
	}
	if len(byUnit) != len(unitIDs) {
		return nil, &domain.ValidationError{Field: "units", Reason: "condition must be reported once per reserved unit"}
	}
	out := make([]UnitCondition, 0, len(unitIDs))
	for _, id := range unitIDs {
		c, ok := byUnit[id]
		if !ok {
			return nil, &domain.ValidationError{Field: "units", Reason: fmt.Sprintf("missing condition for unit %d", id)}
		}
		out = append(out, c)
	}
	return out, nil
}
