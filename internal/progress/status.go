package progress

// Status returns the raw value stored under key; absent keys read as 0.
func Status(rec *Record, key string) (int, bool) {
	return rec.Get(key)
}

func UnitStatus(rec *Record, unitID string) State {
	return State(rec.value(UnitKey(unitID)))
}

func LessonStatus(rec *Record, unitID, lessonID string) State {
	return State(rec.value(LessonKey(unitID, lessonID)))
}

func ActivityStatus(rec *Record, unitID, lessonID string) State {
	return State(rec.value(ActivityKey(unitID, lessonID)))
}

func HTMLStatus(rec *Record, unitID, lessonID string) State {
	return State(rec.value(HTMLKey(unitID, lessonID)))
}

// BlockStatus returns the attempt count of a block.
func BlockStatus(rec *Record, unitID, lessonID string, blockID int) int {
	return rec.value(BlockKey(unitID, lessonID, blockID))
}

// AssessmentStatus returns the submission count of an assessment.
func AssessmentStatus(rec *Record, assessmentID string) int {
	return rec.value(AssessmentKey(assessmentID))
}

func IsBlockCompleted(rec *Record, unitID, lessonID string, blockID int) bool {
	return BlockStatus(rec, unitID, lessonID, blockID) > 0
}

func IsComponentCompleted(rec *Record, unitID, lessonID, componentID string) bool {
	return rec.value(ComponentKey(unitID, lessonID, componentID)) > 0
}

func IsAssessmentCompleted(rec *Record, assessmentID string) bool {
	return AssessmentStatus(rec, assessmentID) > 0
}

// LessonState is the state of the two halves of a lesson.
type LessonState struct {
	HTML     State `json:"html"`
	Activity State `json:"activity"`
}

// UnitProgress returns the state of every unit and assessment in the course.
// Assessments have no in-progress state: they are completed once submitted.
func (t *Tracker) UnitProgress(student Student, rec *Record) map[string]State {
	result := make(map[string]State)
	if student.Transient {
		return result
	}
	for _, unitID := range t.course.UnitIDs() {
		result[unitID] = UnitStatus(rec, unitID)
	}
	for _, assessmentID := range t.course.AssessmentIDs() {
		if IsAssessmentCompleted(rec, assessmentID) {
			result[assessmentID] = StateCompleted
		} else {
			result[assessmentID] = StateNotStarted
		}
	}
	return result
}

// LessonProgress returns the page and activity state of each lesson in a unit.
func (t *Tracker) LessonProgress(student Student, rec *Record, unitID string) map[string]LessonState {
	result := make(map[string]LessonState)
	if student.Transient {
		return result
	}
	for _, lessonID := range t.course.LessonIDs(unitID) {
		result[lessonID] = LessonState{
			HTML:     HTMLStatus(rec, unitID, lessonID),
			Activity: ActivityStatus(rec, unitID, lessonID),
		}
	}
	return result
}

// ComponentProgress reports whether a component has been completed.
func (t *Tracker) ComponentProgress(student Student, rec *Record, unitID, lessonID, componentID string) State {
	if student.Transient || !IsComponentCompleted(rec, unitID, lessonID, componentID) {
		return StateNotStarted
	}
	return StateCompleted
}
