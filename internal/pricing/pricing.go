package pricing

import (
	"fmt"
	"time"

	"voltride-backend/internal/domain"
)

// UnitSelection asks for a number of units of one vehicle type.
type UnitSelection struct {
	VehicleType *domain.VehicleType
	Quantity    int32
}

// AddOnSelection asks for a number of one add-on.
type AddOnSelection struct {
	AddOn    *domain.AddOn
	Quantity int32
}

// QuoteRequest is the full input of a pricing pass. The engine reads no
// clock of its own; start and end are all it knows about time.
type QuoteRequest struct {
	Units  []UnitSelection
	AddOns []AddOnSelection
	Start  time.Time
	End    time.Time
}

// Quote is a priced line-item breakdown. Days and ExtraHours describe the
// billed span; the same day count feeds every line item.
type Quote struct {
	Days       int32
	ExtraHours int32
	Items      []domain.LineItem
	TotalCents int64
}

// Span is the billable shape of a booking window: whole days plus at most
// four supplemental hours. Exactly one of extra-hour or extra-day applies to
// a leftover, never both.
type Span struct {
	Days       int32
	ExtraHours int32
}

// ComputeSpan derives the billable span from the booking window. The day
// count comes from calendar dates only, minimum 1. Leftover clock time of
// 1-4 hours becomes extra hours; more than 4 hours rounds up to one more
// full day.
func ComputeSpan(start, end time.Time) (Span, error) {
	if !end.After(start) {
		return Span{}, &domain.ValidationError{Field: "end", Reason: "must be after start"}
	}

	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	startDay := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	endDay := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	days := int32(endDay.Sub(startDay).Hours() / 24)

	if days == 0 {
		// Same calendar day: bills as one day regardless of hours.
		return Span{Days: 1}, nil
	}

	leftoverMin := clockMinutes(end) - clockMinutes(start)
	if leftoverMin <= 0 {
		return Span{Days: days}, nil
	}
	hours := int32((leftoverMin + 59) / 60)
	if hours > 4 {
		return Span{Days: days + 1}, nil
	}
	return Span{Days: days, ExtraHours: hours}, nil
}

func clockMinutes(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// VehicleDayCents prices a whole-day span against a vehicle rate table:
// the tier price verbatim through day 14, then the overflow daily rate for
// each day beyond.
func VehicleDayCents(rt *domain.RateTable, days int32) int64 {
	if days <= 14 {
		return rt.DayCents[days-1]
	}
	return rt.DayCents[13] + int64(days-14)*rt.OverflowDailyCents
}

// AddOnDayCents prices a whole-day span against an add-on rate table.
// Add-ons have no negotiated overflow rate; beyond day 14 each extra day
// costs the day-14 package spread over 14 days, rounded to the cent.
func AddOnDayCents(rt *domain.RateTable, days int32) int64 {
	if days <= 14 {
		return rt.DayCents[days-1]
	}
	return rt.DayCents[13] + int64(days-14)*roundDiv(rt.DayCents[13], 14)
}

// ExtraHourCents sums the supplements for 1 to 4 leftover hours.
func ExtraHourCents(rt *domain.RateTable, hours int32) int64 {
	var total int64
	for h := int32(0); h < hours && h < 4; h++ {
		total += rt.ExtraHourCents[h]
	}
	return total
}

// AverageDailyCents is the per-day rate used for mid-rental extensions:
// the week package spread over 7 days when priced, otherwise day 1.
func AverageDailyCents(rt *domain.RateTable) int64 {
	if rt.DayCents[6] > 0 {
		return roundDiv(rt.DayCents[6], 7)
	}
	return rt.DayCents[0]
}

// roundDiv divides cents rounding half away from zero.
func roundDiv(a, b int64) int64 {
	return (a + b/2) / b
}

// ComputeQuote prices a booking. It is a pure function of its input: two
// calls with identical requests and unchanged rate tables return identical
// output.
func ComputeQuote(req QuoteRequest) (*Quote, error) {
	span, err := ComputeSpan(req.Start, req.End)
	if err != nil {
		return nil, err
	}
	if len(req.Units) == 0 {
		return nil, &domain.ValidationError{Field: "units", Reason: "at least one vehicle is required"}
	}

	q := &Quote{Days: span.Days, ExtraHours: span.ExtraHours}

	for _, sel := range req.Units {
		if sel.Quantity <= 0 {
			return nil, &domain.ValidationError{Field: "quantity", Reason: "must be positive"}
		}
		vt := sel.VehicleType
		if vt.PlatedUnit && sel.Quantity > 1 {
			return nil, &domain.ValidationError{Field: "quantity", Reason: fmt.Sprintf("%s is plated, one per reservation", vt.SKU)}
		}
		unitPrice := VehicleDayCents(&vt.Rates, span.Days) + ExtraHourCents(&vt.Rates, span.ExtraHours)
		typeID := vt.ID
		item := domain.LineItem{
			Kind:           domain.LineItemVehicle,
			VehicleTypeID:  &typeID,
			Description:    vt.Name,
			Quantity:       sel.Quantity,
			UnitPriceCents: unitPrice,
			TotalCents:     unitPrice * int64(sel.Quantity),
		}
		q.Items = append(q.Items, item)
		q.TotalCents += item.TotalCents
	}

	for _, sel := range req.AddOns {
		if sel.Quantity <= 0 {
			return nil, &domain.ValidationError{Field: "quantity", Reason: "must be positive"}
		}
		ao := sel.AddOn
		if ao.MaxQuantity > 0 && sel.Quantity > ao.MaxQuantity {
			return nil, &domain.ValidationError{Field: "quantity", Reason: fmt.Sprintf("%s allows at most %d", ao.Code, ao.MaxQuantity)}
		}
		var unitPrice int64
		if !ao.IncludedByDefault {
			// Add-ons bill over the vehicle's day count, never re-derived.
			unitPrice = AddOnDayCents(&ao.Rates, span.Days)
		}
		addOnID := ao.ID
		item := domain.LineItem{
			Kind:           domain.LineItemAddOn,
			AddOnID:        &addOnID,
			Description:    ao.Name,
			Quantity:       sel.Quantity,
			UnitPriceCents: unitPrice,
			TotalCents:     unitPrice * int64(sel.Quantity),
		}
		q.Items = append(q.Items, item)
		q.TotalCents += item.TotalCents
	}

	return q, nil
}

// ExtensionCents prices extending a running rental to a later end. Whole
// extra days bill at the average daily rate; a leftover of up to 4 hours
// adds the extra-hour supplement, beyond that it rounds up to one more day.
func ExtensionCents(rt *domain.RateTable, oldEnd, newEnd time.Time) (int64, error) {
	if !newEnd.After(oldEnd) {
		return 0, &domain.ValidationError{Field: "new_end", Reason: "must be after the current end"}
	}
	diff := newEnd.Sub(oldEnd)
	fullDays := int32(diff / (24 * time.Hour))
	leftover := diff % (24 * time.Hour)
	leftoverHours := int32((leftover + time.Hour - 1) / time.Hour)

	var total int64
	if leftoverHours > 4 {
		fullDays++
		leftoverHours = 0
	}
	total = int64(fullDays) * AverageDailyCents(rt)
	if leftoverHours > 0 {
		total += ExtraHourCents(rt, leftoverHours)
	}
	return total, nil
}
