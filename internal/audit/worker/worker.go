// Package worker drains the audit outbox to Kafka.
//
// The recorder writes outbox rows inside its unit of work; this worker polls
// for unpublished rows, produces them, and marks them published. Rows are
// claimed with FOR UPDATE SKIP LOCKED so multiple service instances can run
// the worker concurrently without double-publishing under normal operation
// (a crash between produce and mark re-publishes, so consumers deduplicate
// on the payload ID).
package worker

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

const batchSize = 100

// Worker polls the outbox table and publishes pending entries.
type Worker struct {
	db       *sql.DB
	client   *kgo.Client
	topic    string
	interval time.Duration
	logger   *slog.Logger
}

func New(db *sql.DB, client *kgo.Client, topic string, interval time.Duration, logger *slog.Logger) *Worker {
	return &Worker{
		db:       db,
		client:   client,
		topic:    topic,
		interval: interval,
		logger:   logger,
	}
}

// Run polls until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drainOnce(ctx); err != nil {
				w.logger.ErrorContext(ctx, "outbox drain failed", "error", err)
			}
		}
	}
}

type outboxRow struct {
	id      string
	key     string
	payload []byte
}

func (w *Worker) drainOnce(ctx context.Context) error {
	for {
		published, err := w.drainBatch(ctx)
		if err != nil {
			return err
		}
		if published < batchSize {
			return nil
		}
	}
}

func (w *Worker) drainBatch(ctx context.Context) (int, error) {
	dbTx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin outbox tx: %w", err)
	}
	defer func() {
		_ = dbTx.Rollback()
	}()

	rows, err := dbTx.QueryContext(ctx, `
		SELECT id, aggregate_id, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, batchSize)
	if err != nil {
		return 0, fmt.Errorf("query outbox: %w", err)
	}

	var batch []outboxRow
	for rows.Next() {
		var row outboxRow
		if err := rows.Scan(&row.id, &row.key, &row.payload); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan outbox row: %w", err)
		}
		batch = append(batch, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate outbox rows: %w", err)
	}
	if len(batch) == 0 {
		return 0, nil
	}

	records := make([]*kgo.Record, 0, len(batch))
	ids := make([]string, 0, len(batch))
	for _, row := range batch {
		records = append(records, &kgo.Record{
			Topic: w.topic,
			// Keyed by person so a consumer sees one person's trail in order.
			Key:   []byte(row.key),
			Value: row.payload,
		})
		ids = append(ids, row.id)
	}

	if err := w.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return 0, fmt.Errorf("produce audit events: %w", err)
	}

	for _, id := range ids {
		if _, err := dbTx.ExecContext(ctx,
			`UPDATE outbox SET published_at = now() WHERE id = $1`, id); err != nil {
			return 0, fmt.Errorf("mark outbox entry published: %w", err)
		}
	}
	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit outbox tx: %w", err)
	}

	w.logger.DebugContext(ctx, "audit outbox drained", "published", len(batch))
	return len(batch), nil
}
