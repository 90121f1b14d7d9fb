package service

import (
	"context"
	"errors"

	"voltride-backend/internal/domain"
	"voltride-backend/internal/logger"
)

// LogNotifier records lifecycle events in the application log. Always wired
// so every transition leaves a trace even with mail turned off.
type LogNotifier struct{}

func (LogNotifier) Publish(_ context.Context, ev domain.LifecycleEvent) error {
	logger.Info("lifecycle event",
		"kind", ev.Kind,
		"reference", ev.ReservationRef,
		"customer", ev.CustomerRef,
		"agency_id", ev.AgencyID,
		"units", ev.UnitIDs,
		"amount_cents", ev.AmountCents,
		"detail", ev.Detail,
	)
	return nil
}

// MultiNotifier fans one event out to several sinks. Every sink gets the
// event even when an earlier one fails.
type MultiNotifier []Notifier

func (m MultiNotifier) Publish(ctx context.Context, ev domain.LifecycleEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
