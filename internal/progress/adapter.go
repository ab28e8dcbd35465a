package progress

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/progresstrack/internal/logging"
	"github.com/abhisek/progresstrack/internal/store"
)

// PropertyName is the student property holding the progress record.
const PropertyName = "linear-course-completion"

// Adapter loads and saves progress records as student properties.
type Adapter struct {
	repo store.PropertyRepo
	log  *logging.Logger
}

// NewAdapter creates an adapter over repo.
func NewAdapter(repo store.PropertyRepo, log *logging.Logger) *Adapter {
	if log == nil {
		log = logging.Nop()
	}
	return &Adapter{repo: repo, log: log.With("component", "progress-adapter")}
}

// Load returns the student's record, or an empty one if none is stored. It
// never creates the property. A corrupt blob also yields an empty record,
// which the next Save overwrites.
func (a *Adapter) Load(ctx context.Context, studentID string) (*Record, error) {
	p, err := a.repo.Get(ctx, studentID, PropertyName)
	if err != nil {
		return nil, fmt.Errorf("load progress for %s: %w", studentID, err)
	}
	if p == nil || strings.TrimSpace(p.Value) == "" {
		return NewRecord(), nil
	}

	rec, err := ParseRecord(p.Value)
	if err != nil {
		a.log.Warn("discarding malformed progress record", "student", studentID, "error", err)
		rec = NewRecord()
	}
	rec.UpdatedOn = p.UpdatedOn
	return rec, nil
}

// Save writes the record, creating the property on first use.
func (a *Adapter) Save(ctx context.Context, studentID string, rec *Record) error {
	blob, err := rec.Encode()
	if err != nil {
		return err
	}

	p, err := a.repo.Get(ctx, studentID, PropertyName)
	if err != nil {
		return fmt.Errorf("save progress for %s: %w", studentID, err)
	}
	if p == nil {
		p, err = a.repo.Create(ctx, studentID, PropertyName)
		if err != nil {
			return fmt.Errorf("save progress for %s: %w", studentID, err)
		}
	}

	p.Value = blob
	if !rec.UpdatedOn.IsZero() {
		p.UpdatedOn = rec.UpdatedOn
	}
	if err := a.repo.Put(ctx, p); err != nil {
		return fmt.Errorf("save progress for %s: %w", studentID, err)
	}
	return nil
}
