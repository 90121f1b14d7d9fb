package jobs

import (
	"context"

	"voltride-backend/internal/domain"
	"voltride-backend/internal/logger"
)

// SweepFleetIntegrity cross-checks unit statuses against open contracts.
// A RENTED unit without an ACTIVE contract, or an ACTIVE contract on a unit
// that is not RENTED, means a transition was applied outside the engine.
// The sweep reports; it never repairs.
func (jr *JobRunner) SweepFleetIntegrity() {
	jr.runWithRecovery("SweepFleetIntegrity", func() {
		ctx := context.Background()

		rented, err := jr.store.Fleet().ListUnitsByStatus(ctx, domain.UnitStatusRented)
		if err != nil {
			logger.Error("Failed to list rented units", "error", err)
			return
		}
		rentedByID := make(map[int32]bool, len(rented))
		for _, u := range rented {
			rentedByID[u.ID] = true
			contract, err := jr.store.Contracts().GetOpenByUnit(ctx, u.ID)
			if err != nil {
				logger.Error("Failed to load open contract", "unit_id", u.ID, "error", err)
				continue
			}
			if contract == nil {
				logger.Warn("Integrity violation: rented unit has no open contract",
					"unit_id", u.ID, "unit_number", u.UnitNumber)
			}
		}

		active, err := jr.store.Contracts().ListActive(ctx)
		if err != nil {
			logger.Error("Failed to list active contracts", "error", err)
			return
		}
		violations := 0
		for _, c := range active {
			if !rentedByID[c.UnitID] {
				violations++
				logger.Warn("Integrity violation: open contract on a unit that is not rented",
					"contract", c.Number, "unit_id", c.UnitID)
			}
		}

		logger.Info("Fleet integrity sweep done",
			"rented_units", len(rented), "active_contracts", len(active), "orphaned_contracts", violations)
	})
}

// FlagOverdueReservations reports checked-in reservations whose end has
// passed without a return. Overdue is a reporting state, not a status: the
// reservation stays CHECKED_IN until the vehicles actually come back.
func (jr *JobRunner) FlagOverdueReservations() {
	jr.runWithRecovery("FlagOverdueReservations", func() {
		ctx := context.Background()

		overdue, err := jr.store.Reservations().ListOverdue(ctx, jr.now())
		if err != nil {
			logger.Error("Failed to list overdue reservations", "error", err)
			return
		}

		for _, r := range overdue {
			logger.Warn("Reservation overdue",
				"reference", r.Reference,
				"customer", r.CustomerRef,
				"end_at", r.End,
				"units", r.UnitIDs)
		}
		logger.Info("Flagged overdue reservations", "count", len(overdue))
	})
}
