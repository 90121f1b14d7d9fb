package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"voltride-backend/internal/domain"
	"voltride-backend/internal/pricing"
	"voltride-backend/internal/service"
)

type quoteRequest struct {
	Units []struct {
		VehicleTypeID int32 `json:"vehicle_type_id"`
		Quantity      int32 `json:"quantity"`
	} `json:"units"`
	AddOns []struct {
		AddOnID  int32 `json:"add_on_id"`
		Quantity int32 `json:"quantity"`
	} `json:"add_ons"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// handleQuote prices a prospective booking without persisting anything. The
// booking widget calls this on every basket change.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	pr := pricing.QuoteRequest{Start: req.Start, End: req.End}
	for _, u := range req.Units {
		vt, err := s.catalog.GetVehicleType(r.Context(), u.VehicleTypeID)
		if err != nil {
			writeError(w, err)
			return
		}
		pr.Units = append(pr.Units, pricing.UnitSelection{VehicleType: vt, Quantity: u.Quantity})
	}
	for _, a := range req.AddOns {
		ao, err := s.catalog.GetAddOn(r.Context(), a.AddOnID)
		if err != nil {
			writeError(w, err)
			return
		}
		pr.AddOns = append(pr.AddOns, pricing.AddOnSelection{AddOn: ao, Quantity: a.Quantity})
	}

	quote, err := pricing.ComputeQuote(pr)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

type createReservationRequest struct {
	CustomerRef string          `json:"customer_ref"`
	AgencyID    int32           `json:"agency_id"`
	UnitIDs     []int32         `json:"unit_ids"`
	AddOns      map[int32]int32 `json:"add_ons"`
	Start       time.Time       `json:"start"`
	End         time.Time       `json:"end"`
}

func (s *Server) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	reservation, err := s.reservations.CreateDraft(r.Context(), service.CreateReservationRequest{
		CustomerRef: req.CustomerRef,
		AgencyID:    req.AgencyID,
		UnitIDs:     req.UnitIDs,
		AddOns:      req.AddOns,
		Start:       req.Start,
		End:         req.End,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reservation)
}

func (s *Server) handleGetReservation(w http.ResponseWriter, r *http.Request) {
	reservation, err := s.reservations.Get(r.Context(), mux.Vars(r)["ref"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	reservation, err := s.reservations.Confirm(r.Context(), mux.Vars(r)["ref"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	reservation, err := s.reservations.Cancel(r.Context(), mux.Vars(r)["ref"], req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UnitIDs []int32   `json:"unit_ids"`
		Start   time.Time `json:"start"`
		End     time.Time `json:"end"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	reservation, err := s.reservations.Move(r.Context(), mux.Vars(r)["ref"], service.MoveRequest{
		UnitIDs: req.UnitIDs,
		Start:   req.Start,
		End:     req.End,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

type unitConditionPayload struct {
	UnitID     int32            `json:"unit_id"`
	OdometerKm int32            `json:"odometer_km"`
	Fuel       domain.FuelLevel `json:"fuel"`
}

func conditionsFromPayload(in []unitConditionPayload) []service.UnitCondition {
	out := make([]service.UnitCondition, 0, len(in))
	for _, u := range in {
		out = append(out, service.UnitCondition{UnitID: u.UnitID, OdometerKm: u.OdometerKm, Fuel: u.Fuel})
	}
	return out
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Units           []unitConditionPayload `json:"units"`
		DepositMethod   domain.DepositMethod   `json:"deposit_method"`
		DepositCaptured bool                   `json:"deposit_captured"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	reservation, err := s.reservations.CheckIn(r.Context(), mux.Vars(r)["ref"], service.CheckInRequest{
		Units:           conditionsFromPayload(req.Units),
		DepositMethod:   req.DepositMethod,
		DepositCaptured: req.DepositCaptured,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (s *Server) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Units      []unitConditionPayload `json:"units"`
		Deductions []struct {
			UnitID         int32                    `json:"unit_id"`
			Category       domain.DeductionCategory `json:"category"`
			Reason         string                   `json:"reason"`
			Quantity       int32                    `json:"quantity"`
			UnitPriceCents int64                    `json:"unit_price_cents"`
		} `json:"deductions"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	out := service.CheckOutRequest{Units: conditionsFromPayload(req.Units)}
	for _, d := range req.Deductions {
		out.Deductions = append(out.Deductions, service.DeductionInput{
			UnitID:         d.UnitID,
			Category:       d.Category,
			Reason:         d.Reason,
			Quantity:       d.Quantity,
			UnitPriceCents: d.UnitPriceCents,
		})
	}
	result, err := s.reservations.CheckOut(r.Context(), mux.Vars(r)["ref"], out)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExtend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewEnd time.Time `json:"new_end"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	reservation, err := s.reservations.Extend(r.Context(), mux.Vars(r)["ref"], req.NewEnd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AmountCents int64 `json:"amount_cents"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	reservation, err := s.reservations.RecordPayment(r.Context(), mux.Vars(r)["ref"], req.AmountCents)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

// handlePortalLink mints a reservation-scoped token for the customer
// portal. Only reachable through the operator surface.
func (s *Server) handlePortalLink(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["ref"]
	if _, err := s.reservations.Get(r.Context(), ref); err != nil {
		writeError(w, err)
		return
	}
	token, err := s.tokens.GeneratePortalToken(ref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handlePortalSnapshot(w http.ResponseWriter, r *http.Request) {
	claims, err := s.tokens.ValidateToken(r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, err)
		return
	}
	snapshot, err := s.snapshots.Snapshot(r.Context(), claims.ReservationRef)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}
