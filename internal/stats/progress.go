// Package stats computes course-wide analytics from stored progress
// records, student rows and answer events.
package stats

import (
	"fmt"
	"strings"

	"github.com/abhisek/progresstrack/internal/logging"
	"github.com/abhisek/progresstrack/internal/progress"
	"github.com/abhisek/progresstrack/internal/store"
)

// EntityTally counts students by state for one hierarchical key.
type EntityTally struct {
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

type bucket int

const (
	bucketNone bucket = iota
	bucketInProgress
	bucketCompleted
)

// classify maps one record entry to the tally it contributes to.
// Composites count by state; leaves count as completed once attempted.
func classify(key string, value int) (bucket, error) {
	entity := progress.EntityTypeOf(key)
	if entity == progress.EntityUnknown {
		return bucketNone, fmt.Errorf("unrecognized key %q", key)
	}
	if !entity.IsComposite() {
		if value != 0 {
			return bucketCompleted, nil
		}
		return bucketNone, nil
	}
	switch progress.State(value) {
	case progress.StateInProgress:
		return bucketInProgress, nil
	case progress.StateCompleted:
		return bucketCompleted, nil
	}
	return bucketNone, nil
}

// ProgressAggregator tallies progress records across students.
type ProgressAggregator struct {
	Tallies map[string]*EntityTally
	// Students counts the records that could be read.
	Students int

	log *logging.Logger
}

func NewProgressAggregator(log *logging.Logger) *ProgressAggregator {
	if log == nil {
		log = logging.Nop()
	}
	return &ProgressAggregator{
		Tallies: make(map[string]*EntityTally),
		log:     log.With("aggregator", "progress"),
	}
}

// Visit folds one stored progress property into the tallies. Empty values
// are skipped. A record is accepted or rejected as a whole, using the same
// parser the tracker applies to incoming records.
func (a *ProgressAggregator) Visit(p store.Property) {
	if strings.TrimSpace(p.Value) == "" {
		return
	}
	rec, err := progress.ParseRecord(p.Value)
	if err != nil {
		a.log.Warn("skipping malformed progress record", "student", p.StudentID, "error", err)
		return
	}
	a.Students++
	for _, key := range rec.Keys() {
		value, _ := rec.Get(key)
		b, err := classify(key, value)
		if err != nil {
			a.log.Warn("skipping progress entry", "student", p.StudentID, "error", err)
			continue
		}
		tally, ok := a.Tallies[key]
		if !ok {
			tally = &EntityTally{}
			a.Tallies[key] = tally
		}
		switch b {
		case bucketInProgress:
			tally.InProgress++
		case bucketCompleted:
			tally.Completed++
		}
	}
}
