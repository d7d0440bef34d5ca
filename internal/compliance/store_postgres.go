package compliance

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"custodia/pkg/domain"
)

// PostgresStore lists candidates straight from the joined tables.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ListOverdueCompliant(ctx context.Context, today time.Time) ([]Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, r.next_due_date
		FROM monitored_persons p
		JOIN compliance_regimes r ON r.person_id = p.id
		WHERE p.active
		  AND p.status = $1
		  AND r.next_due_date IS NOT NULL
		  AND r.next_due_date < $2
		ORDER BY r.next_due_date
	`, string(domain.StatusCompliant), domain.DateOf(today))
	if err != nil {
		return nil, fmt.Errorf("list overdue persons: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var id uuid.UUID
		var next time.Time
		if err := rows.Scan(&id, &next); err != nil {
			return nil, fmt.Errorf("scan overdue person: %w", err)
		}
		out = append(out, Candidate{PersonID: domain.PersonID(id), NextDueDate: next.UTC()})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate overdue persons: %w", err)
	}
	return out, nil
}
