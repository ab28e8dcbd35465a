package store

import (
	"context"
	"time"
)

// DefaultPageSize bounds a single Scan call when ScanOpts.Limit is unset.
const DefaultPageSize = 500

// ScanOpts configures a bounded, cursor-paginated read.
type ScanOpts struct {
	Limit  int    // max results (0 = DefaultPageSize)
	Cursor string // opaque cursor from the previous page ("" = start)
}

func (o ScanOpts) limit() int {
	if o.Limit <= 0 {
		return DefaultPageSize
	}
	return o.Limit
}

// Property is a named blob owned by one student. The progress tracker keeps
// its key/value map in one of these.
type Property struct {
	StudentID string
	Name      string
	Value     string
	UpdatedOn time.Time
}

// PropertyPage is one page of a property scan. Next is "" on the last page.
type PropertyPage struct {
	Items []Property
	Next  string
}

// PropertyRepo stores per-student named blobs.
type PropertyRepo interface {
	// Get returns the property, or nil if it does not exist.
	Get(ctx context.Context, studentID, name string) (*Property, error)

	// Create stores an empty property and returns it.
	Create(ctx context.Context, studentID, name string) (*Property, error)

	// Put writes the property, replacing any previous value.
	Put(ctx context.Context, p *Property) error

	// Scan pages through all properties with the given name, ordered by student.
	Scan(ctx context.Context, name string, opts ScanOpts) (PropertyPage, error)
}

// Student is an enrolled (or formerly enrolled) learner.
type Student struct {
	ID        string
	Name      string
	Email     string
	Enrolled  bool
	Scores    map[string]float64
	CreatedAt time.Time
}

// StudentPage is one page of a student scan.
type StudentPage struct {
	Items []Student
	Next  string
}

// StudentRepo manages student rows.
type StudentRepo interface {
	// Put inserts or replaces a student.
	Put(ctx context.Context, s *Student) error

	// Get returns the student, or nil if it does not exist.
	Get(ctx context.Context, id string) (*Student, error)

	// SetScore records an assessment score for the student.
	SetScore(ctx context.Context, id, assessmentID string, score float64) error

	// Scan pages through all students ordered by id.
	Scan(ctx context.Context, opts ScanOpts) (StudentPage, error)
}

// EventData captures a single learner interaction event, such as a
// submitted answer. Data is the raw JSON payload sent by the client.
type EventData struct {
	StudentID string
	Source    string
	Data      string
}

// EventRecord is a stored event.
type EventRecord struct {
	ID         int64
	Sequence   int64
	StudentID  string
	Source     string
	Data       string
	RecordedAt time.Time
}

// EventPage is one page of an event scan.
type EventPage struct {
	Items []EventRecord
	Next  string
}

// EventRepo provides append and scan access to learner events.
type EventRepo interface {
	// Append records an event with the next global sequence number.
	Append(ctx context.Context, data EventData) (int64, error)

	// Scan pages through events in sequence order.
	Scan(ctx context.Context, opts ScanOpts) (EventPage, error)
}
