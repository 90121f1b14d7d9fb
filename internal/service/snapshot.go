package service

import (
	"context"

	"voltride-backend/internal/domain"
	"voltride-backend/internal/repository"
)

type snapshotService struct {
	store repository.Store
}

func NewSnapshotService(store repository.Store) SnapshotService {
	return &snapshotService{store: store}
}

func (s *snapshotService) Snapshot(ctx context.Context, ref string) (*domain.ReservationSnapshot, error) {
	r, err := s.store.Reservations().GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	contracts, err := s.store.Contracts().ListByReservation(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	return &domain.ReservationSnapshot{Reservation: *r, Contracts: contracts}, nil
}
