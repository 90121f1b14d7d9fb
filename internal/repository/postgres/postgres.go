package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"voltride-backend/internal/repository"

	_ "github.com/lib/pq"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx, so the same repository code
// runs inside and outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Store struct {
	db           *sql.DB
	catalog      repository.CatalogRepository
	fleet        repository.FleetRepository
	reservations repository.ReservationRepository
	contracts    repository.ContractRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:           db,
		catalog:      NewCatalogRepository(db),
		fleet:        NewFleetRepository(db),
		reservations: NewReservationRepository(db),
		contracts:    NewContractRepository(db),
	}
}

func (s *Store) Catalog() repository.CatalogRepository          { return s.catalog }
func (s *Store) Fleet() repository.FleetRepository              { return s.fleet }
func (s *Store) Reservations() repository.ReservationRepository { return s.reservations }
func (s *Store) Contracts() repository.ContractRepository       { return s.contracts }

// Transact runs fn against transaction-scoped repositories. A non-nil error
// from fn rolls everything back; this is what makes check-in and check-out
// all-or-nothing.
func (s *Store) Transact(ctx context.Context, fn func(repository.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txStore := &Store{
		db:           s.db,
		catalog:      NewCatalogRepository(tx),
		fleet:        NewFleetRepository(tx),
		reservations: NewReservationRepository(tx),
		contracts:    NewContractRepository(tx),
	}

	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %v: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
