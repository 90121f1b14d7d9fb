package domain

import "time"

type EventKind string

const (
	EventReservationConfirmed EventKind = "reservation.confirmed"
	EventReservationCheckedIn EventKind = "reservation.checked_in"
	EventReservationCompleted EventKind = "reservation.completed"
	EventReservationCancelled EventKind = "reservation.cancelled"
	EventReservationExtended  EventKind = "reservation.extended"
)

// LifecycleEvent is the plain-data record of a reservation transition,
// handed to the notification layer. The engine never sends anything itself.
type LifecycleEvent struct {
	Kind           EventKind `json:"kind"`
	ReservationRef string    `json:"reservation_ref"`
	CustomerRef    string    `json:"customer_ref"`
	AgencyID       int32     `json:"agency_id"`
	UnitIDs        []int32   `json:"unit_ids,omitempty"`
	AmountCents    int64     `json:"amount_cents,omitempty"`
	Detail         string    `json:"detail,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// ReservationSnapshot is the read-only view exposed to document generation
// and the customer portal. It is assembled from committed rows and carries
// no behavior.
type ReservationSnapshot struct {
	Reservation Reservation `json:"reservation"`
	Contracts   []Contract  `json:"contracts,omitempty"`
}
