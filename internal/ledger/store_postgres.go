package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"custodia/pkg/domain"
	"custodia/pkg/platform/sentinel"
	txcontext "custodia/pkg/platform/tx"
)

// PostgresStore persists the ledger in the attendance_events table. The
// partial unique index on (person_id, event_date) is the serialization point
// for concurrent recorders: the insert itself performs the atomic
// check-then-insert, and a losing insert surfaces as sentinel.ErrConflict.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Exists(ctx context.Context, personID domain.PersonID, date time.Time) (bool, error) {
	var exists bool
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM attendance_events
			WHERE person_id = $1 AND event_date = $2 AND NOT administrative
		)
	`, uuid.UUID(personID), domain.DateOf(date)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check event exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Append(ctx context.Context, event *Event) error {
	query := `
		INSERT INTO attendance_events (
			id, person_id, event_date, event_time, kind, recorded_by, notes,
			platform, duration_mins, meeting_link, reason, attached_docs,
			administrative
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(event.ID),
		uuid.UUID(event.PersonID),
		domain.DateOf(event.EventDate),
		event.EventTime,
		string(event.Kind),
		event.RecordedBy,
		event.Notes,
		event.Platform,
		event.DurationMinutes,
		event.MeetingLink,
		event.Reason,
		pq.Array(event.AttachedDocs),
		event.Administrative,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert attendance event: %w", err)
	}
	return nil
}

func (s *PostgresStore) History(ctx context.Context, personID domain.PersonID, page Page) ([]Event, error) {
	page = page.Normalize()
	order := "DESC"
	if page.SortDir == SortAsc {
		order = "ASC"
	}
	query := fmt.Sprintf(`
		SELECT id, event_date, event_time, kind, recorded_by, notes,
			   platform, duration_mins, meeting_link, reason, attached_docs,
			   administrative, created_at
		FROM attendance_events
		WHERE person_id = $1
		ORDER BY event_date %s, event_time %s
		LIMIT $2 OFFSET $3
	`, order, order)

	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(personID), page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		event, err := scanEvent(rows, personID)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return events, nil
}

func (s *PostgresStore) MostRecent(ctx context.Context, personID domain.PersonID) (*Event, error) {
	return s.pick(ctx, personID, "DESC")
}

func (s *PostgresStore) Earliest(ctx context.Context, personID domain.PersonID) (*Event, error) {
	return s.pick(ctx, personID, "ASC")
}

func (s *PostgresStore) pick(ctx context.Context, personID domain.PersonID, order string) (*Event, error) {
	query := fmt.Sprintf(`
		SELECT id, event_date, event_time, kind, recorded_by, notes,
			   platform, duration_mins, meeting_link, reason, attached_docs,
			   administrative, created_at
		FROM attendance_events
		WHERE person_id = $1
		ORDER BY event_date %s, event_time %s
		LIMIT 1
	`, order, order)

	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(personID))
	if err != nil {
		return nil, fmt.Errorf("query event: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query event: %w", err)
		}
		return nil, sentinel.ErrNotFound
	}
	event, err := scanEvent(rows, personID)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func scanEvent(rows *sql.Rows, personID domain.PersonID) (Event, error) {
	var (
		event Event
		id    uuid.UUID
		kind  string
		docs  pq.StringArray
	)
	err := rows.Scan(
		&id,
		&event.EventDate,
		&event.EventTime,
		&kind,
		&event.RecordedBy,
		&event.Notes,
		&event.Platform,
		&event.DurationMinutes,
		&event.MeetingLink,
		&event.Reason,
		&docs,
		&event.Administrative,
		&event.CreatedAt,
	)
	if err != nil {
		return Event{}, fmt.Errorf("scan attendance event: %w", err)
	}
	event.ID = domain.EventID(id)
	event.PersonID = personID
	event.EventDate = domain.DateOf(event.EventDate)
	event.Kind = domain.AttendanceKind(kind)
	event.AttachedDocs = []string(docs)
	return event, nil
}
