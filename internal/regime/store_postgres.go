package regime

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"custodia/pkg/domain"
	"custodia/pkg/platform/sentinel"
	txcontext "custodia/pkg/platform/tx"

	"github.com/google/uuid"
)

// PostgresStore persists regimes in the compliance_regimes table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Save(ctx context.Context, r *Regime) error {
	query := `
		INSERT INTO compliance_regimes (person_id, periodicity_days, initial_check_in, next_due_date, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (person_id) DO UPDATE SET
			periodicity_days = EXCLUDED.periodicity_days,
			next_due_date    = EXCLUDED.next_due_date,
			updated_at       = now()
	`
	var nextDue any
	if r.NextDueDate != nil {
		nextDue = *r.NextDueDate
	}
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(r.PersonID),
		r.PeriodicityDays,
		r.InitialCheckIn,
		nextDue,
	)
	if err != nil {
		return fmt.Errorf("save regime: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, personID domain.PersonID) (*Regime, error) {
	query := `
		SELECT periodicity_days, initial_check_in, next_due_date, updated_at
		FROM compliance_regimes
		WHERE person_id = $1
	`
	var (
		r       Regime
		nextDue sql.NullTime
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(personID)).Scan(
		&r.PeriodicityDays,
		&r.InitialCheckIn,
		&nextDue,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get regime: %w", err)
	}
	r.PersonID = personID
	r.InitialCheckIn = domain.DateOf(r.InitialCheckIn)
	if nextDue.Valid {
		next := domain.DateOf(nextDue.Time)
		r.NextDueDate = &next
	}
	return &r, nil
}
