package progress

import (
	"context"

	"github.com/abhisek/progresstrack/internal/logging"
)

// Service runs tracker events against stored records: load, apply, save.
// Records are only written when an event is applied.
type Service struct {
	tracker *Tracker
	adapter *Adapter
	log     *logging.Logger
}

// NewService creates a service.
func NewService(tracker *Tracker, adapter *Adapter, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{tracker: tracker, adapter: adapter, log: log.With("component", "progress")}
}

// Tracker returns the underlying tracker.
func (s *Service) Tracker() *Tracker {
	return s.tracker
}

func (s *Service) run(ctx context.Context, student Student, event string, fn func(*Record) (bool, error)) (bool, error) {
	if student.Transient {
		return false, nil
	}
	rec, err := s.adapter.Load(ctx, student.ID)
	if err != nil {
		return false, err
	}
	applied, err := fn(rec)
	if err != nil || !applied {
		return false, err
	}
	if err := s.adapter.Save(ctx, student.ID, rec); err != nil {
		return false, err
	}
	s.log.Debug("event recorded", "student", student.ID, "event", event)
	return true, nil
}

func (s *Service) RecordBlockCompleted(ctx context.Context, student Student, unitID, lessonID string, blockID int) (bool, error) {
	return s.run(ctx, student, "block", func(rec *Record) (bool, error) {
		return s.tracker.RecordBlockCompleted(student, rec, unitID, lessonID, blockID)
	})
}

func (s *Service) RecordComponentCompleted(ctx context.Context, student Student, unitID, lessonID, componentID string) (bool, error) {
	return s.run(ctx, student, "component", func(rec *Record) (bool, error) {
		return s.tracker.RecordComponentCompleted(student, rec, unitID, lessonID, componentID)
	})
}

func (s *Service) RecordAssessmentCompleted(ctx context.Context, student Student, assessmentID string) (bool, error) {
	return s.run(ctx, student, "assessment", func(rec *Record) (bool, error) {
		return s.tracker.RecordAssessmentCompleted(student, rec, assessmentID)
	})
}

func (s *Service) RecordActivityCompleted(ctx context.Context, student Student, unitID, lessonID string) (bool, error) {
	return s.run(ctx, student, "activity", func(rec *Record) (bool, error) {
		return s.tracker.RecordActivityCompleted(student, rec, unitID, lessonID)
	})
}

func (s *Service) RecordHTMLCompleted(ctx context.Context, student Student, unitID, lessonID string) (bool, error) {
	return s.run(ctx, student, "html", func(rec *Record) (bool, error) {
		return s.tracker.RecordHTMLCompleted(student, rec, unitID, lessonID)
	})
}

func (s *Service) RecordActivityAccessed(ctx context.Context, student Student, unitID, lessonID string) (bool, error) {
	return s.run(ctx, student, "activity-accessed", func(rec *Record) (bool, error) {
		return s.tracker.RecordActivityAccessed(student, rec, unitID, lessonID)
	})
}

func (s *Service) RecordHTMLAccessed(ctx context.Context, student Student, unitID, lessonID string) (bool, error) {
	return s.run(ctx, student, "html-accessed", func(rec *Record) (bool, error) {
		return s.tracker.RecordHTMLAccessed(student, rec, unitID, lessonID)
	})
}

// Record loads the student's record. Transient students get an empty one.
func (s *Service) Record(ctx context.Context, student Student) (*Record, error) {
	if student.Transient {
		return NewRecord(), nil
	}
	return s.adapter.Load(ctx, student.ID)
}

// UnitProgress returns unit and assessment states for the student.
func (s *Service) UnitProgress(ctx context.Context, student Student) (map[string]State, error) {
	rec, err := s.Record(ctx, student)
	if err != nil {
		return nil, err
	}
	return s.tracker.UnitProgress(student, rec), nil
}

// LessonProgress returns lesson states within a unit for the student.
func (s *Service) LessonProgress(ctx context.Context, student Student, unitID string) (map[string]LessonState, error) {
	rec, err := s.Record(ctx, student)
	if err != nil {
		return nil, err
	}
	return s.tracker.LessonProgress(student, rec, unitID), nil
}

// ComponentProgress returns the state of one lesson page component.
func (s *Service) ComponentProgress(ctx context.Context, student Student, unitID, lessonID, componentID string) (State, error) {
	rec, err := s.Record(ctx, student)
	if err != nil {
		return StateNotStarted, err
	}
	return s.tracker.ComponentProgress(student, rec, unitID, lessonID, componentID), nil
}
