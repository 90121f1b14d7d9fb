package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusDraft     ReservationStatus = "DRAFT"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusCheckedIn ReservationStatus = "CHECKED_IN"
	ReservationStatusCompleted ReservationStatus = "COMPLETED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
)

type LineItemKind string

const (
	LineItemVehicle   LineItemKind = "VEHICLE"
	LineItemAddOn     LineItemKind = "ADD_ON"
	LineItemExtension LineItemKind = "EXTENSION"
)

// LineItem is one priced component of a reservation. Items are written once
// by the pricing engine and are immutable after the reservation confirms;
// the only sanctioned later addition is an EXTENSION item.
type LineItem struct {
	ID             int32        `json:"id"`
	ReservationID  int32        `json:"reservation_id"`
	Kind           LineItemKind `json:"kind"`
	VehicleTypeID  *int32       `json:"vehicle_type_id,omitempty"`
	AddOnID        *int32       `json:"add_on_id,omitempty"`
	Description    string       `json:"description"`
	Quantity       int32        `json:"quantity"`
	UnitPriceCents int64        `json:"unit_price_cents"`
	TotalCents     int64        `json:"total_cents"`
}

// Reservation is a booked [Start, End) interval for one or more fleet units.
// Invariant: for any fleet unit, reservations in {CONFIRMED, CHECKED_IN}
// have pairwise-disjoint intervals.
type Reservation struct {
	ID                 int32             `json:"id"`
	Reference          string            `json:"reference"`
	CustomerRef        string            `json:"customer_ref"`
	AgencyID           int32             `json:"agency_id"`
	UnitIDs            []int32           `json:"unit_ids"`
	Start              time.Time         `json:"start"`
	End                time.Time         `json:"end"`
	Items              []LineItem        `json:"items"`
	TotalPriceCents    int64             `json:"total_price_cents"`
	DepositCents       int64             `json:"deposit_cents"`
	PaidAmountCents    int64             `json:"paid_amount_cents"`
	Status             ReservationStatus `json:"status"`
	CancellationReason string            `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time        `json:"cancelled_at,omitempty"`
	CreatedOn          time.Time         `json:"created_on"`
	UpdatedOn          time.Time         `json:"updated_on"`
}

// ConstrainsAvailability reports whether this reservation's interval blocks
// other bookings of its units. Only CONFIRMED and CHECKED_IN do; DRAFT,
// COMPLETED and CANCELLED never constrain.
func (r *Reservation) ConstrainsAvailability() bool {
	return r.Status == ReservationStatusConfirmed || r.Status == ReservationStatusCheckedIn
}
