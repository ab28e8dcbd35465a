package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter manages the global monotonic sequence number assigned to
// every appended event. Scans page by sequence, so an event is never seen
// twice and never skipped by a reader that started before it was written.
//
// Uses raw SQL because the increment must be atomic at the database level.
// The mutex serializes within the process; the RETURNING clause makes the
// increment atomic across processes.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// eventRepo implements EventRepo on SQLite.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) Append(ctx context.Context, data EventData) (int64, error) {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().Insert(eventsTable).
		Columns("sequence", "student_id", "source", "data", "recorded_at").
		Values(seqNum, data.StudentID, data.Source, data.Data, time.Now().UTC()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("save event: %w", err)
	}
	return seqNum, nil
}

func (r *eventRepo) Scan(ctx context.Context, opts ScanOpts) (EventPage, error) {
	limit := opts.limit()
	sel := builder().
		Select("id", "sequence", "student_id", "source", "data", "recorded_at").
		From(entsql.Table(eventsTable)).
		OrderBy("sequence").
		Limit(limit)
	if opts.Cursor != "" {
		after, err := strconv.ParseInt(opts.Cursor, 10, 64)
		if err != nil {
			return EventPage{}, fmt.Errorf("invalid event cursor %q: %w", opts.Cursor, err)
		}
		sel = sel.Where(entsql.GT("sequence", after))
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return EventPage{}, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var page EventPage
	for rows.Next() {
		var e EventRecord
		if err := rows.Scan(&e.ID, &e.Sequence, &e.StudentID, &e.Source, &e.Data, &e.RecordedAt); err != nil {
			return EventPage{}, fmt.Errorf("scan event: %w", err)
		}
		page.Items = append(page.Items, e)
	}
	if err := rows.Err(); err != nil {
		return EventPage{}, fmt.Errorf("iterate events: %w", err)
	}

	if len(page.Items) == limit {
		page.Next = strconv.FormatInt(page.Items[len(page.Items)-1].Sequence, 10)
	}
	return page, nil
}
