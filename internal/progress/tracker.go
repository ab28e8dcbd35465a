package progress

import (
	"fmt"
	"slices"
	"time"

	"github.com/abhisek/progresstrack/internal/logging"
)

// Structure answers the questions about course layout that the tracker
// needs. *course.Course implements it.
type Structure interface {
	IsValidUnitLesson(unitID, lessonID string) bool
	IsValidAssessment(assessmentID string) bool
	UnitIDs() []string
	AssessmentIDs() []string
	LessonIDs(unitID string) []string
	HasActivity(unitID, lessonID string) (has, found bool)
	ValidBlockIDs(unitID, lessonID string) ([]int, error)
	ValidComponentIDs(unitID, lessonID string) ([]string, error)
}

// Tracker records completion events into a student's Record and cascades
// derived state up the course hierarchy. It only mutates the in-memory
// record; persisting it is the caller's job (see Service).
type Tracker struct {
	course Structure
	log    *logging.Logger
	now    func() time.Time
}

// NewTracker creates a tracker over the given course structure.
func NewTracker(course Structure, log *logging.Logger) *Tracker {
	if log == nil {
		log = logging.Nop()
	}
	return &Tracker{
		course: course,
		log:    log.With("component", "tracker"),
		now:    time.Now,
	}
}

// scope is everything the cascade for one event needs from the course,
// fetched before the record is touched.
type scope struct {
	unitID   string
	lessonID string

	lessonIDs   []string
	lessonFound bool
	hasActivity bool

	blockIDs     []int
	componentIDs []string
}

func (t *Tracker) lessonScope(unitID, lessonID string) *scope {
	has, found := t.course.HasActivity(unitID, lessonID)
	return &scope{
		unitID:      unitID,
		lessonID:    lessonID,
		lessonIDs:   t.course.LessonIDs(unitID),
		lessonFound: found,
		hasActivity: has,
	}
}

func (t *Tracker) ignore(student Student, reason string, kv ...any) (bool, error) {
	t.log.Debug("event ignored", append([]any{"student", student.ID, "reason", reason}, kv...)...)
	return false, nil
}

func (t *Tracker) commit(rec *Record, entity EntityType, key string, sc *scope) {
	t.apply(rec, entity, key, sc, true)
	rec.UpdatedOn = t.now()
}

// RecordBlockCompleted counts an attempt at an interactive activity block.
func (t *Tracker) RecordBlockCompleted(student Student, rec *Record, unitID, lessonID string, blockID int) (bool, error) {
	if student.Transient {
		return false, nil
	}
	if !t.course.IsValidUnitLesson(unitID, lessonID) {
		return t.ignore(student, "unknown lesson", "unit", unitID, "lesson", lessonID)
	}
	blockIDs, err := t.course.ValidBlockIDs(unitID, lessonID)
	if err != nil {
		return false, fmt.Errorf("valid blocks for %s.%s: %w", unitID, lessonID, err)
	}
	if !slices.Contains(blockIDs, blockID) {
		return t.ignore(student, "unknown block", "unit", unitID, "lesson", lessonID, "block", blockID)
	}

	sc := t.lessonScope(unitID, lessonID)
	sc.blockIDs = blockIDs
	t.commit(rec, EntityBlock, BlockKey(unitID, lessonID, blockID), sc)
	return true, nil
}

// RecordComponentCompleted counts an attempt at a trackable lesson page
// component.
func (t *Tracker) RecordComponentCompleted(student Student, rec *Record, unitID, lessonID, componentID string) (bool, error) {
	if student.Transient {
		return false, nil
	}
	if !t.course.IsValidUnitLesson(unitID, lessonID) {
		return t.ignore(student, "unknown lesson", "unit", unitID, "lesson", lessonID)
	}
	componentIDs, err := t.course.ValidComponentIDs(unitID, lessonID)
	if err != nil {
		return false, fmt.Errorf("valid components for %s.%s: %w", unitID, lessonID, err)
	}
	if !slices.Contains(componentIDs, componentID) {
		return t.ignore(student, "unknown component", "unit", unitID, "lesson", lessonID, "component", componentID)
	}

	sc := t.lessonScope(unitID, lessonID)
	sc.componentIDs = componentIDs
	t.commit(rec, EntityComponent, ComponentKey(unitID, lessonID, componentID), sc)
	return true, nil
}

// RecordAssessmentCompleted counts a submission of an assessment.
func (t *Tracker) RecordAssessmentCompleted(student Student, rec *Record, assessmentID string) (bool, error) {
	if student.Transient {
		return false, nil
	}
	if !t.course.IsValidAssessment(assessmentID) {
		return t.ignore(student, "unknown assessment", "assessment", assessmentID)
	}
	t.commit(rec, EntityAssessment, AssessmentKey(assessmentID), &scope{})
	return true, nil
}

// RecordActivityCompleted marks a lesson's activity completed outright.
func (t *Tracker) RecordActivityCompleted(student Student, rec *Record, unitID, lessonID string) (bool, error) {
	if student.Transient {
		return false, nil
	}
	if !t.course.IsValidUnitLesson(unitID, lessonID) {
		return t.ignore(student, "unknown lesson", "unit", unitID, "lesson", lessonID)
	}
	t.commit(rec, EntityActivity, ActivityKey(unitID, lessonID), t.lessonScope(unitID, lessonID))
	return true, nil
}

// RecordHTMLCompleted marks a lesson page completed outright.
func (t *Tracker) RecordHTMLCompleted(student Student, rec *Record, unitID, lessonID string) (bool, error) {
	if student.Transient {
		return false, nil
	}
	if !t.course.IsValidUnitLesson(unitID, lessonID) {
		return t.ignore(student, "unknown lesson", "unit", unitID, "lesson", lessonID)
	}
	t.commit(rec, EntityHTML, HTMLKey(unitID, lessonID), t.lessonScope(unitID, lessonID))
	return true, nil
}

// RecordActivityAccessed handles a visit to a lesson's activity. An activity
// with no interactive blocks has nothing else to complete, so visiting it
// completes it. Otherwise the visit is not recorded.
func (t *Tracker) RecordActivityAccessed(student Student, rec *Record, unitID, lessonID string) (bool, error) {
	if student.Transient {
		return false, nil
	}
	has, found := t.course.HasActivity(unitID, lessonID)
	if !found || !has {
		return t.ignore(student, "no activity", "unit", unitID, "lesson", lessonID)
	}
	blockIDs, err := t.course.ValidBlockIDs(unitID, lessonID)
	if err != nil {
		return false, fmt.Errorf("valid blocks for %s.%s: %w", unitID, lessonID, err)
	}
	if len(blockIDs) > 0 {
		return false, nil
	}
	return t.RecordActivityCompleted(student, rec, unitID, lessonID)
}

// RecordHTMLAccessed handles a visit to a lesson page. A page with no
// trackable components is completed by the visit.
func (t *Tracker) RecordHTMLAccessed(student Student, rec *Record, unitID, lessonID string) (bool, error) {
	if student.Transient {
		return false, nil
	}
	if !t.course.IsValidUnitLesson(unitID, lessonID) {
		return t.ignore(student, "unknown lesson", "unit", unitID, "lesson", lessonID)
	}
	componentIDs, err := t.course.ValidComponentIDs(unitID, lessonID)
	if err != nil {
		return false, fmt.Errorf("valid components for %s.%s: %w", unitID, lessonID, err)
	}
	if len(componentIDs) > 0 {
		return false, nil
	}
	return t.RecordHTMLCompleted(student, rec, unitID, lessonID)
}
