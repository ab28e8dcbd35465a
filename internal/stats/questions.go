package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/abhisek/progresstrack/internal/course"
	"github.com/abhisek/progresstrack/internal/logging"
	"github.com/abhisek/progresstrack/internal/store"
)

// Event sources carrying multiple-choice answers.
const (
	SourceAttemptActivity   = "attempt-activity"
	SourceTagAssessment     = "tag-assessment"
	SourceAttemptLesson     = "attempt-lesson"
	SourceSubmitAssessment  = "submit-assessment"
	SourceAttemptAssessment = "attempt-assessment"
)

const (
	typeMcQuestion     = "McQuestion"
	typeQuestionGroup  = "QuestionGroup"
	typeActivityChoice = "activity-choice"
	typeActivityGroup  = "activity-group"
	assessmentPrefix   = "assessment-"
)

// QuestionStat accumulates answers to one multiple-choice question.
type QuestionStat struct {
	AnswerCounts []int   `json:"answer_counts"`
	Label        string  `json:"label"`
	Location     string  `json:"location"`
	Score        float64 `json:"score"`
	NumAttempts  int     `json:"num_attempts"`
}

// QuestionAggregator folds answer events into per-question statistics.
// Lesson and activity questions and assessment questions are kept apart.
type QuestionAggregator struct {
	Questions   map[string]*QuestionStat
	Assessments map[string]*QuestionStat

	course *course.Course
	log    *logging.Logger
}

// NewQuestionAggregator indexes every multiple-choice question in the
// course. Content that cannot be read is logged and left out.
func NewQuestionAggregator(c *course.Course, log *logging.Logger) *QuestionAggregator {
	if log == nil {
		log = logging.Nop()
	}
	a := &QuestionAggregator{
		Questions:   make(map[string]*QuestionStat),
		Assessments: make(map[string]*QuestionStat),
		course:      c,
		log:         log.With("aggregator", "questions"),
	}
	a.indexLessons()
	a.indexAssessments()
	return a
}

func newStat(label, location string, numChoices int) *QuestionStat {
	return &QuestionStat{
		AnswerCounts: make([]int, numChoices),
		Label:        label,
		Location:     location,
	}
}

func lessonLink(unitID, lessonID string) string {
	return fmt.Sprintf("unit?unit=%s&lesson=%s", unitID, lessonID)
}

func activityLink(unitID, lessonID string) string {
	return fmt.Sprintf("activity?unit=%s&lesson=%s", unitID, lessonID)
}

func assessmentLink(assessmentID string) string {
	return "assessment?name=" + assessmentID
}

func (a *QuestionAggregator) indexLessons() {
	for _, u := range a.course.UnitsOfType(course.UnitTypeUnit) {
		for _, l := range u.Lessons {
			if l.HasActivity {
				a.indexActivity(u, l)
			}
			prefix := fmt.Sprintf("u.%s.l.%s", u.ID, l.ID)
			where := fmt.Sprintf("Unit %d Lesson %d", u.Index, l.Index)
			link := lessonLink(u.ID, l.ID)
			for _, cpt := range l.Components {
				a.indexComponent(a.Questions, cpt, prefix, where+",", link)
			}
		}
	}
}

func (a *QuestionAggregator) indexActivity(u course.Unit, l course.Lesson) {
	activity, err := a.course.Activity(u.ID, l.ID)
	if err != nil {
		a.log.Warn("skipping activity questions", "unit", u.ID, "lesson", l.ID, "error", err)
		return
	}
	link := activityLink(u.ID, l.ID)
	for item, b := range activity.InteractiveBlocks() {
		id := fmt.Sprintf("u.%s.l.%s.b.%d", u.ID, l.ID, b.Index)
		where := fmt.Sprintf("Unit %d Lesson %d Activity, Item %d", u.Index, l.Index, item+1)
		switch b.QuestionType {
		case course.BlockMultipleChoice:
			a.Questions[id] = newStat(where, link, b.NumChoices)
		case course.BlockMultipleChoiceGroup:
			for part, n := range b.GroupChoices {
				a.Questions[fmt.Sprintf("%s.i.%d", id, part)] = newStat(
					fmt.Sprintf("%s Part %d", where, part+1), link, n)
			}
		}
	}
}

// indexComponent adds entries for a question or question group component.
// where is the label prefix, ending in a separator.
func (a *QuestionAggregator) indexComponent(into map[string]*QuestionStat, cpt course.Component, prefix, where, link string) {
	id := fmt.Sprintf("%s.c.%s", prefix, cpt.InstanceID)
	switch cpt.Name {
	case course.ComponentQuestion:
		q, ok := a.course.Question(cpt.Question)
		if !ok || q.Type != course.QuestionMultipleChoice {
			return
		}
		into[id] = newStat(fmt.Sprintf("%s Question %s", where, q.Description), link, len(q.Choices))

	case course.ComponentQuestionGroup:
		g, ok := a.course.QuestionGroup(cpt.Group)
		if !ok {
			return
		}
		for i, qid := range g.Questions {
			q, ok := a.course.Question(qid)
			if !ok || q.Type != course.QuestionMultipleChoice {
				continue
			}
			into[fmt.Sprintf("%s.i.%d", id, i)] = newStat(
				fmt.Sprintf("%s Question Group %s Question %s", where, g.Description, q.Description),
				link, len(q.Choices))
		}
	}
}

func (a *QuestionAggregator) indexAssessments() {
	for _, as := range a.course.Assessments() {
		if as.HumanGraded {
			continue
		}
		prefix := "s." + as.ID
		link := assessmentLink(as.ID)
		for _, cpt := range as.Components {
			a.indexComponent(a.Assessments, cpt, prefix, as.Title+",", link)
		}

		content, err := a.course.AssessmentContent(as.ID)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				a.log.Warn("skipping assessment content", "assessment", as.ID, "error", err)
			}
			continue
		}
		for i, q := range content.Questions {
			if !q.HasChoices {
				continue
			}
			a.Assessments[fmt.Sprintf("%s.i.%d", prefix, i)] = newStat(
				fmt.Sprintf("%s, Question %d", as.Title, i+1), link, q.NumChoices)
		}
	}
}

// answerSummary is one question's answer extracted from an event. Score and
// Answers are raw decoded JSON, checked when applied.
type answerSummary struct {
	ID      string
	Score   any
	Answers any
}

// Visit folds one event into the statistics. Events from other sources are
// ignored; events that cannot be summarized are logged and skipped.
func (a *QuestionAggregator) Visit(ev store.EventRecord) {
	if ev.Source == "" {
		return
	}
	var data map[string]any
	dec := json.NewDecoder(strings.NewReader(ev.Data))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return
	}

	summaries, err := a.summarize(ev.Source, data)
	if err != nil {
		a.log.Warn("failed to process question event", "source", ev.Source, "sequence", ev.Sequence, "error", err)
		return
	}

	target := a.Questions
	if ev.Source == SourceSubmitAssessment || ev.Source == SourceAttemptAssessment {
		target = a.Assessments
	}
	for _, s := range summaries {
		apply(s, target)
	}
}

func (a *QuestionAggregator) summarize(source string, data map[string]any) ([]answerSummary, error) {
	switch source {
	case SourceAttemptActivity:
		return a.fromAttemptActivity(data)
	case SourceTagAssessment:
		return a.fromTagAssessment(data)
	case SourceAttemptLesson:
		return a.fromAttemptLesson(data)
	case SourceSubmitAssessment, SourceAttemptAssessment:
		return a.fromAssessment(data)
	}
	return nil, nil
}

// apply adds a summary to its question. Summaries with a non-numeric score,
// non-integer answers, unknown ids or out-of-range choices are dropped.
func apply(s answerSummary, into map[string]*QuestionStat) {
	score, ok := asNumber(s.Score)
	if !ok {
		return
	}
	list, ok := s.Answers.([]any)
	if !ok || len(list) == 0 {
		return
	}
	answers := make([]int, len(list))
	for i, v := range list {
		n, ok := asInt(v)
		if !ok {
			return
		}
		answers[i] = n
	}
	stat, ok := into[s.ID]
	if !ok {
		return
	}
	for _, n := range answers {
		if n < 0 || n >= len(stat.AnswerCounts) {
			return
		}
	}

	stat.Score += score
	stat.NumAttempts++
	for _, n := range answers {
		stat.AnswerCounts[n]++
	}
}

// unitLesson resolves the unit and lesson an event happened on from its
// page URL. A URL naming only the unit refers to its first lesson.
func (a *QuestionAggregator) unitLesson(data map[string]any) (string, string, bool, error) {
	loc, err := getString(data, "location")
	if err != nil {
		return "", "", false, err
	}
	u, err := url.Parse(loc)
	if err != nil {
		return "", "", false, fmt.Errorf("location: %w", err)
	}
	q := u.Query()
	unitID := q.Get("unit")
	if !q.Has("unit") {
		return "", "", false, nil
	}
	if q.Has("lesson") {
		return unitID, q.Get("lesson"), true, nil
	}
	lessonID, ok := a.course.DefaultLessonID(unitID)
	return unitID, lessonID, ok, nil
}

func (a *QuestionAggregator) fromAttemptActivity(data map[string]any) ([]answerSummary, error) {
	unitID, lessonID, ok, err := a.unitLesson(data)
	if err != nil || !ok {
		return nil, err
	}
	typ, err := getString(data, "type")
	if err != nil {
		return nil, err
	}
	index, err := getID(data, "index")
	if err != nil {
		return nil, err
	}
	blockID := fmt.Sprintf("u.%s.l.%s.b.%s", unitID, lessonID, index)

	switch typ {
	case typeActivityChoice:
		value, err := get(data, "value")
		if err != nil || value == nil {
			return nil, err
		}
		return []answerSummary{{
			ID:      blockID,
			Score:   correctScore(data["correct"]),
			Answers: []any{value},
		}}, nil

	case typeActivityGroup:
		values, err := getList(data, "values")
		if err != nil {
			return nil, err
		}
		var out []answerSummary
		for _, raw := range values {
			answer, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("values: entry is %T, want object", raw)
			}
			value, err := get(answer, "value")
			if err != nil {
				return nil, err
			}
			if !truthy(value) {
				continue
			}
			part, err := getID(answer, "index")
			if err != nil {
				return nil, err
			}
			out = append(out, answerSummary{
				ID:      fmt.Sprintf("%s.i.%s", blockID, part),
				Score:   correctScore(answer["correct"]),
				Answers: value,
			})
		}
		return out, nil
	}
	return nil, nil
}

func (a *QuestionAggregator) fromTagAssessment(data map[string]any) ([]answerSummary, error) {
	unitID, lessonID, ok, err := a.unitLesson(data)
	if err != nil || !ok {
		return nil, err
	}
	typ, err := getString(data, "type")
	if err != nil {
		return nil, err
	}
	instance, err := getID(data, "instanceid")
	if err != nil {
		return nil, err
	}
	id := fmt.Sprintf("u.%s.l.%s.c.%s", unitID, lessonID, instance)

	switch typ {
	case typeQuestionGroup:
		types, err := getList(data, "containedTypes")
		if err != nil {
			return nil, err
		}
		scores, err := getList(data, "individualScores")
		if err != nil {
			return nil, err
		}
		answers, err := getList(data, "answer")
		if err != nil {
			return nil, err
		}
		var out []answerSummary
		for i, t := range types {
			if t != typeMcQuestion {
				continue
			}
			if i >= len(answers) || i >= len(scores) {
				return nil, fmt.Errorf("question group: missing answer %d", i)
			}
			if !truthy(answers[i]) {
				continue
			}
			out = append(out, answerSummary{
				ID:      fmt.Sprintf("%s.i.%d", id, i),
				Score:   scores[i],
				Answers: answers[i],
			})
		}
		return out, nil

	case typeMcQuestion:
		answer, err := get(data, "answer")
		if err != nil || !truthy(answer) {
			return nil, err
		}
		score, err := get(data, "score")
		if err != nil {
			return nil, err
		}
		return []answerSummary{{ID: id, Score: score, Answers: answer}}, nil
	}
	return nil, nil
}

func (a *QuestionAggregator) fromAttemptLesson(data map[string]any) ([]answerSummary, error) {
	unitID, lessonID, ok, err := a.unitLesson(data)
	if err != nil || !ok {
		return nil, err
	}
	return summarizeContained(data, fmt.Sprintf("u.%s.l.%s", unitID, lessonID))
}

func (a *QuestionAggregator) fromAssessment(data map[string]any) ([]answerSummary, error) {
	typ, err := getString(data, "type")
	if err != nil {
		return nil, err
	}
	assessmentID, ok := strings.CutPrefix(typ, assessmentPrefix)
	if !ok {
		return nil, nil
	}
	prefix := "s." + assessmentID

	switch values := data["values"].(type) {
	case []any:
		// Old-style assessments submit one entry per question.
		var out []answerSummary
		for i, raw := range values {
			entry, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("values: entry is %T, want object", raw)
			}
			if entry["type"] != "choices" {
				continue
			}
			value, err := get(entry, "value")
			if err != nil {
				return nil, err
			}
			if value == nil {
				continue
			}
			out = append(out, answerSummary{
				ID:      fmt.Sprintf("%s.i.%d", prefix, i),
				Score:   correctScore(entry["correct"]),
				Answers: []any{value},
			})
		}
		return out, nil

	case map[string]any:
		return summarizeContained(values, prefix)
	}
	return nil, nil
}

// summarizeContained handles the payload shape shared by lesson attempts
// and component-based assessments: per-instance containedTypes,
// individualScores and answers, where a list marks a question group.
func summarizeContained(data map[string]any, prefix string) ([]answerSummary, error) {
	types, err := getMap(data, "containedTypes")
	if err != nil {
		return nil, err
	}
	scores, err := getMap(data, "individualScores")
	if err != nil {
		return nil, err
	}
	answers, err := getMap(data, "answers")
	if err != nil {
		return nil, err
	}

	var out []answerSummary
	for instance, typeInfo := range types {
		switch t := typeInfo.(type) {
		case []any:
			groupScores, err := getList(scores, instance)
			if err != nil {
				return nil, err
			}
			groupAnswers, err := getList(answers, instance)
			if err != nil {
				return nil, err
			}
			for i, member := range t {
				if member != typeMcQuestion {
					continue
				}
				if i >= len(groupAnswers) || i >= len(groupScores) {
					return nil, fmt.Errorf("%s: missing answer %d", instance, i)
				}
				if !truthy(groupAnswers[i]) {
					continue
				}
				out = append(out, answerSummary{
					ID:      fmt.Sprintf("%s.c.%s.i.%d", prefix, instance, i),
					Score:   groupScores[i],
					Answers: groupAnswers[i],
				})
			}
		case string:
			if t != typeMcQuestion {
				continue
			}
			answer, err := get(answers, instance)
			if err != nil {
				return nil, err
			}
			if !truthy(answer) {
				continue
			}
			score, err := get(scores, instance)
			if err != nil {
				return nil, err
			}
			out = append(out, answerSummary{
				ID:      fmt.Sprintf("%s.c.%s", prefix, instance),
				Score:   score,
				Answers: answer,
			})
		}
	}
	return out, nil
}
