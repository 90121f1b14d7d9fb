package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"voltride-backend/internal/logger"
	"voltride-backend/internal/repository"
	"voltride-backend/internal/security"
	"voltride-backend/internal/service"
)

// Server exposes the reservation engine over HTTP for the operator UI, the
// booking widget backend and the customer portal.
type Server struct {
	reservations service.ReservationService
	snapshots    service.SnapshotService
	catalog      repository.CatalogRepository
	tokens       security.TokenManager
	router       *mux.Router
}

func NewServer(reservations service.ReservationService, snapshots service.SnapshotService, catalog repository.CatalogRepository, tokens security.TokenManager) *Server {
	s := &Server{
		reservations: reservations,
		snapshots:    snapshots,
		catalog:      catalog,
		tokens:       tokens,
		router:       mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(requestLogging)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/quotes", s.handleQuote).Methods(http.MethodPost)
	api.HandleFunc("/reservations", s.handleCreateReservation).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{ref}", s.handleGetReservation).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{ref}/confirm", s.handleConfirm).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{ref}/cancel", s.handleCancel).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{ref}/move", s.handleMove).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{ref}/check-in", s.handleCheckIn).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{ref}/check-out", s.handleCheckOut).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{ref}/extend", s.handleExtend).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{ref}/payments", s.handleRecordPayment).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{ref}/portal-link", s.handlePortalLink).Methods(http.MethodPost)

	// The portal route authenticates with the reservation-scoped token
	// instead of an operator session.
	api.HandleFunc("/portal/reservation", s.handlePortalSnapshot).Methods(http.MethodGet)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
