package person

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"custodia/pkg/domain"
	"custodia/pkg/platform/sentinel"
	txcontext "custodia/pkg/platform/tx"
)

// PostgresStore persists persons in the monitored_persons table.
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

func (s *PostgresStore) Create(ctx context.Context, p *MonitoredPerson) error {
	query := `
		INSERT INTO monitored_persons (
			id, full_name, tax_id, national_id, jurisdiction,
			contact_email, contact_phone, status, active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(p.ID),
		p.FullName,
		nullableString(string(p.TaxID)),
		nullableString(string(p.NationalID)),
		p.Jurisdiction,
		p.ContactEmail,
		p.ContactPhone,
		string(p.Status),
		p.Active,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert person: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.PersonID) (*MonitoredPerson, error) {
	query := `
		SELECT full_name, tax_id, national_id, jurisdiction,
			   contact_email, contact_phone, status, active, created_at
		FROM monitored_persons
		WHERE id = $1
	`
	var (
		p      MonitoredPerson
		taxID  sql.NullString
		natID  sql.NullString
		status string
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(id)).Scan(
		&p.FullName,
		&taxID,
		&natID,
		&p.Jurisdiction,
		&p.ContactEmail,
		&p.ContactPhone,
		&status,
		&p.Active,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get person: %w", err)
	}
	p.ID = id
	p.TaxID = domain.TaxID(taxID.String)
	p.NationalID = domain.NationalID(natID.String)
	p.Status = domain.ComplianceStatus(status)
	return &p, nil
}

func (s *PostgresStore) SetStatus(ctx context.Context, id domain.PersonID, status domain.ComplianceStatus) error {
	result, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE monitored_persons SET status = $2 WHERE id = $1`,
		uuid.UUID(id), string(status),
	)
	if err != nil {
		return fmt.Errorf("set person status: %w", err)
	}
	return requireRow(result)
}

func (s *PostgresStore) Deactivate(ctx context.Context, id domain.PersonID) error {
	result, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE monitored_persons SET active = FALSE WHERE id = $1`,
		uuid.UUID(id),
	)
	if err != nil {
		return fmt.Errorf("deactivate person: %w", err)
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
