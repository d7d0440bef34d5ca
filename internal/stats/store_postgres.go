package stats

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"custodia/pkg/domain"
)

// PostgresStore answers the aggregate queries with SQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CountsForPeriod(ctx context.Context, from, to time.Time, jurisdiction string) (*PeriodCounts, error) {
	counts := &PeriodCounts{ByKind: make(map[domain.AttendanceKind]int)}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = $1),
		       COUNT(*) FILTER (WHERE status = $2)
		FROM monitored_persons
		WHERE active
		  AND ($3 = '' OR jurisdiction = $3)
	`, string(domain.StatusCompliant), string(domain.StatusDelinquent), jurisdiction).
		Scan(&counts.ActivePersons, &counts.Compliant, &counts.Delinquent)
	if err != nil {
		return nil, fmt.Errorf("count persons by status: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.kind, COUNT(*)
		FROM attendance_events e
		JOIN monitored_persons p ON p.id = e.person_id
		WHERE p.active
		  AND ($3 = '' OR p.jurisdiction = $3)
		  AND NOT e.administrative
		  AND e.event_date BETWEEN $1 AND $2
		GROUP BY e.kind
	`, domain.DateOf(from), domain.DateOf(to), jurisdiction)
	if err != nil {
		return nil, fmt.Errorf("count events by kind: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan event count: %w", err)
		}
		counts.ByKind[domain.AttendanceKind(kind)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event counts: %w", err)
	}
	return counts, nil
}

func (s *PostgresStore) DueWithin(ctx context.Context, from, to time.Time) ([]DueEntry, error) {
	return s.listDue(ctx, `
		SELECT p.id, p.full_name, p.status, r.next_due_date
		FROM monitored_persons p
		JOIN compliance_regimes r ON r.person_id = p.id
		WHERE p.active
		  AND r.next_due_date BETWEEN $1 AND $2
		ORDER BY r.next_due_date, p.full_name
	`, domain.DateOf(from), domain.DateOf(to))
}

func (s *PostgresStore) OverdueAsOf(ctx context.Context, today time.Time) ([]DueEntry, error) {
	return s.listDue(ctx, `
		SELECT p.id, p.full_name, p.status, r.next_due_date
		FROM monitored_persons p
		JOIN compliance_regimes r ON r.person_id = p.id
		WHERE p.active
		  AND r.next_due_date < $1
		ORDER BY r.next_due_date, p.full_name
	`, domain.DateOf(today))
}

func (s *PostgresStore) listDue(ctx context.Context, query string, args ...any) ([]DueEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list due persons: %w", err)
	}
	defer rows.Close()

	entries := []DueEntry{}
	for rows.Next() {
		var id uuid.UUID
		var entry DueEntry
		var status string
		if err := rows.Scan(&id, &entry.FullName, &status, &entry.NextDueDate); err != nil {
			return nil, fmt.Errorf("scan due person: %w", err)
		}
		entry.PersonID = domain.PersonID(id)
		entry.Status = domain.ComplianceStatus(status)
		entry.NextDueDate = entry.NextDueDate.UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due persons: %w", err)
	}
	return entries, nil
}
