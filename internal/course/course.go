// Package course loads a course definition from YAML and answers the
// structural questions progress tracking and analytics need: which units,
// lessons, activity blocks, components and assessments exist.
package course

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// UnitType distinguishes the kinds of top-level course entries.
type UnitType string

const (
	UnitTypeUnit       UnitType = "unit"
	UnitTypeAssessment UnitType = "assessment"
	UnitTypeLink       UnitType = "link"
)

// Component tag names whose completion is tracked.
const (
	ComponentQuestion      = "question"
	ComponentQuestionGroup = "question-group"
)

// IsTrackable reports whether components with this tag name count toward
// lesson page completion.
func IsTrackable(name string) bool {
	return name == ComponentQuestion || name == ComponentQuestionGroup
}

// Course is a parsed course definition.
type Course struct {
	Title          string          `yaml:"title"`
	Units          []Unit          `yaml:"units"`
	Questions      []Question      `yaml:"questions"`
	QuestionGroups []QuestionGroup `yaml:"question_groups"`

	fsys fs.FS
	dir  string

	byUnit    map[string]*Unit
	questions map[string]*Question
	groups    map[string]*QuestionGroup

	mu         sync.Mutex
	activities map[string]*Activity
}

// Unit is a top-level course entry. Only units of type "unit" have lessons;
// only assessments have components.
type Unit struct {
	ID          string      `yaml:"id"`
	Type        UnitType    `yaml:"type"`
	Title       string      `yaml:"title"`
	Lessons     []Lesson    `yaml:"lessons,omitempty"`
	Components  []Component `yaml:"components,omitempty"`
	HumanGraded bool        `yaml:"human_graded,omitempty"`

	// Index is the 1-based position among units of the same type.
	Index int `yaml:"-"`
}

// Lesson is a page inside a unit, optionally paired with an activity.
type Lesson struct {
	ID          string      `yaml:"id"`
	Title       string      `yaml:"title"`
	HasActivity bool        `yaml:"activity,omitempty"`
	Components  []Component `yaml:"components,omitempty"`

	// Index is the 1-based position within the unit.
	Index int `yaml:"-"`
}

// Component is an embedded element of a lesson page or assessment.
type Component struct {
	Name       string `yaml:"name"`
	InstanceID string `yaml:"instance_id"`
	Question   string `yaml:"question,omitempty"`
	Group      string `yaml:"group,omitempty"`
}

// QuestionType enumerates catalog question kinds.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionShortAnswer    QuestionType = "short_answer"
)

// Question is a catalog entry referenced by question components.
type Question struct {
	ID          string       `yaml:"id"`
	Type        QuestionType `yaml:"type"`
	Description string       `yaml:"description"`
	Choices     []string     `yaml:"choices,omitempty"`
}

// QuestionGroup is an ordered set of catalog questions.
type QuestionGroup struct {
	ID          string   `yaml:"id"`
	Description string   `yaml:"description"`
	Questions   []string `yaml:"questions"`
}

// Load reads and validates the course definition at name within fsys.
// Activity and assessment files are resolved relative to its directory.
func Load(fsys fs.FS, name string) (*Course, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read course: %w", err)
	}
	return Parse(fsys, path.Dir(name), data)
}

// LoadFile loads a course definition from the local filesystem.
func LoadFile(p string) (*Course, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, fmt.Errorf("resolve course path: %w", err)
	}
	return Load(os.DirFS(filepath.Dir(abs)), filepath.Base(abs))
}

// Parse decodes and validates a course definition. dir locates activity and
// assessment files within fsys.
func Parse(fsys fs.FS, dir string, data []byte) (*Course, error) {
	var c Course
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse course: %w", err)
	}
	c.fsys = fsys
	c.dir = dir
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.index()
	return &c, nil
}

func (c *Course) index() {
	c.byUnit = make(map[string]*Unit, len(c.Units))
	c.questions = make(map[string]*Question, len(c.Questions))
	c.groups = make(map[string]*QuestionGroup, len(c.QuestionGroups))
	c.activities = make(map[string]*Activity)

	counts := make(map[UnitType]int)
	for i := range c.Units {
		u := &c.Units[i]
		counts[u.Type]++
		u.Index = counts[u.Type]
		for j := range u.Lessons {
			u.Lessons[j].Index = j + 1
		}
		c.byUnit[u.ID] = u
	}
	for i := range c.Questions {
		c.questions[c.Questions[i].ID] = &c.Questions[i]
	}
	for i := range c.QuestionGroups {
		c.groups[c.QuestionGroups[i].ID] = &c.QuestionGroups[i]
	}
}

// FindUnit returns the unit (of any type) with the given id.
func (c *Course) FindUnit(unitID string) (*Unit, bool) {
	u, ok := c.byUnit[unitID]
	return u, ok
}

// FindLesson returns the lesson within the given unit.
func (c *Course) FindLesson(unitID, lessonID string) (*Lesson, bool) {
	u, ok := c.byUnit[unitID]
	if !ok {
		return nil, false
	}
	for i := range u.Lessons {
		if u.Lessons[i].ID == lessonID {
			return &u.Lessons[i], true
		}
	}
	return nil, false
}

// Lessons returns the lessons of a unit in course order.
func (c *Course) Lessons(unitID string) []Lesson {
	u, ok := c.byUnit[unitID]
	if !ok {
		return nil
	}
	return u.Lessons
}

// LessonIDs returns the lesson ids of a unit in course order.
func (c *Course) LessonIDs(unitID string) []string {
	lessons := c.Lessons(unitID)
	ids := make([]string, len(lessons))
	for i, l := range lessons {
		ids[i] = l.ID
	}
	return ids
}

// UnitsOfType returns all units of type t in course order.
func (c *Course) UnitsOfType(t UnitType) []Unit {
	var out []Unit
	for _, u := range c.Units {
		if u.Type == t {
			out = append(out, u)
		}
	}
	return out
}

// Assessments returns all assessments in course order.
func (c *Course) Assessments() []Unit {
	return c.UnitsOfType(UnitTypeAssessment)
}

// UnitIDs returns the ids of units of type "unit".
func (c *Course) UnitIDs() []string {
	return unitIDs(c.UnitsOfType(UnitTypeUnit))
}

// AssessmentIDs returns the ids of all assessments.
func (c *Course) AssessmentIDs() []string {
	return unitIDs(c.Assessments())
}

func unitIDs(units []Unit) []string {
	ids := make([]string, len(units))
	for i, u := range units {
		ids[i] = u.ID
	}
	return ids
}

// IsValidUnitLesson reports whether lessonID names a lesson of unit unitID.
func (c *Course) IsValidUnitLesson(unitID, lessonID string) bool {
	_, ok := c.FindLesson(unitID, lessonID)
	return ok
}

// IsValidAssessment reports whether id names an assessment.
func (c *Course) IsValidAssessment(id string) bool {
	u, ok := c.byUnit[id]
	return ok && u.Type == UnitTypeAssessment
}

// HasActivity reports whether the lesson has an activity, and whether the
// lesson exists at all.
func (c *Course) HasActivity(unitID, lessonID string) (has, found bool) {
	l, ok := c.FindLesson(unitID, lessonID)
	if !ok {
		return false, false
	}
	return l.HasActivity, true
}

// ValidComponentIDs returns the instance ids of trackable components on the
// lesson page. Components without an instance id are not trackable.
func (c *Course) ValidComponentIDs(unitID, lessonID string) ([]string, error) {
	l, ok := c.FindLesson(unitID, lessonID)
	if !ok {
		return nil, nil
	}
	var ids []string
	for _, cpt := range l.Components {
		if IsTrackable(cpt.Name) && cpt.InstanceID != "" {
			ids = append(ids, cpt.InstanceID)
		}
	}
	return ids, nil
}

// Question returns a catalog question.
func (c *Course) Question(id string) (*Question, bool) {
	q, ok := c.questions[id]
	return q, ok
}

// QuestionGroup returns a catalog question group.
func (c *Course) QuestionGroup(id string) (*QuestionGroup, bool) {
	g, ok := c.groups[id]
	return g, ok
}

// DefaultLessonID returns the lesson a unit opens on when none is named.
func (c *Course) DefaultLessonID(unitID string) (string, bool) {
	lessons := c.Lessons(unitID)
	if len(lessons) == 0 {
		return "", false
	}
	return lessons[0].ID, true
}
