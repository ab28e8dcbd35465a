package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/progresstrack/internal/course/coursetest"
	"github.com/abhisek/progresstrack/internal/logging"
	"github.com/abhisek/progresstrack/internal/store"
)

func newQuestionAggregator(t *testing.T) *QuestionAggregator {
	t.Helper()
	return NewQuestionAggregator(coursetest.New(t), logging.Nop())
}

func TestQuestionIndex(t *testing.T) {
	agg := newQuestionAggregator(t)

	wantQuestions := map[string]QuestionStat{
		"u.1.l.1.b.1": {
			AnswerCounts: []int{0, 0, 0},
			Label:        "Unit 1 Lesson 1 Activity, Item 1",
			Location:     "activity?unit=1&lesson=1",
		},
		"u.1.l.1.b.3.i.0": {
			AnswerCounts: []int{0, 0},
			Label:        "Unit 1 Lesson 1 Activity, Item 2 Part 1",
			Location:     "activity?unit=1&lesson=1",
		},
		"u.1.l.1.b.3.i.1": {
			AnswerCounts: []int{0, 0, 0},
			Label:        "Unit 1 Lesson 1 Activity, Item 2 Part 2",
			Location:     "activity?unit=1&lesson=1",
		},
		"u.1.l.1.c.q1": {
			AnswerCounts: []int{0, 0, 0},
			Label:        "Unit 1 Lesson 1, Question Capital of France",
			Location:     "unit?unit=1&lesson=1",
		},
		"u.1.l.2.c.g1.i.1": {
			AnswerCounts: []int{0, 0},
			Label:        "Unit 1 Lesson 2, Question Group Mixed bag Question Is the Nile long",
			Location:     "unit?unit=1&lesson=2",
		},
	}
	require.Len(t, agg.Questions, len(wantQuestions))
	for id, want := range wantQuestions {
		require.Contains(t, agg.Questions, id)
		assert.Equal(t, want, *agg.Questions[id], id)
	}

	wantAssessments := map[string]QuestionStat{
		"s.Pre.c.aq1": {
			AnswerCounts: []int{0, 0, 0},
			Label:        "Pre-course check, Question Capital of France",
			Location:     "assessment?name=Pre",
		},
		"s.Pre.c.ag1.i.1": {
			AnswerCounts: []int{0, 0},
			Label:        "Pre-course check, Question Group Mixed bag Question Is the Nile long",
			Location:     "assessment?name=Pre",
		},
		"s.Fin.i.0": {
			AnswerCounts: []int{0, 0, 0, 0},
			Label:        "Final exam, Question 1",
			Location:     "assessment?name=Fin",
		},
	}
	require.Len(t, agg.Assessments, len(wantAssessments))
	for id, want := range wantAssessments {
		require.Contains(t, agg.Assessments, id)
		assert.Equal(t, want, *agg.Assessments[id], id)
	}
}

func TestQuestionIndexSkipsUnreadableActivity(t *testing.T) {
	fsys := coursetest.FS()
	delete(fsys, "course/activity-1.1.yaml")
	agg := NewQuestionAggregator(coursetest.Load(t, fsys), logging.Nop())

	assert.NotContains(t, agg.Questions, "u.1.l.1.b.1")
	assert.Contains(t, agg.Questions, "u.1.l.1.c.q1")
}

func event(source, data string) store.EventRecord {
	return store.EventRecord{Source: source, Data: data}
}

func TestQuestionAggregatorEvents(t *testing.T) {
	agg := newQuestionAggregator(t)

	events := []store.EventRecord{
		event(SourceAttemptActivity, `{"location":"http://x/activity?unit=1&lesson=1","type":"activity-choice","index":1,"value":2,"correct":false}`),
		event(SourceAttemptActivity, `{"location":"http://x/activity?unit=1&lesson=1","type":"activity-choice","index":1,"value":0,"correct":true}`),
		event(SourceAttemptActivity, `{"location":"http://x/activity?unit=1","type":"activity-group","index":3,"values":[{"index":0,"value":[1],"correct":true},{"index":1,"value":[],"correct":false}]}`),
		event(SourceTagAssessment, `{"location":"http://x/unit?unit=1&lesson=1","type":"McQuestion","instanceid":"q1","answer":[0],"score":1}`),
		event(SourceTagAssessment, `{"location":"http://x/unit?unit=1&lesson=2","type":"QuestionGroup","instanceid":"g1","containedTypes":["SaQuestion","McQuestion"],"individualScores":[0,0.5],"answer":["nile",[1]]}`),
		event(SourceAttemptLesson, `{"location":"http://x/unit?unit=1&lesson=1","containedTypes":{"q1":"McQuestion"},"individualScores":{"q1":0},"answers":{"q1":[2]}}`),
		event(SourceSubmitAssessment, `{"type":"assessment-Fin","values":[{"type":"choices","value":3,"correct":true},{"type":"string","value":"x","correct":false}]}`),
		event(SourceAttemptAssessment, `{"type":"assessment-Pre","values":{"containedTypes":{"aq1":"McQuestion","ag1":["SaQuestion","McQuestion"]},"individualScores":{"aq1":1,"ag1":[0,1]},"answers":{"aq1":[0],"ag1":["a",[0]]}}}`),
	}
	for _, ev := range events {
		agg.Visit(ev)
	}

	b1 := agg.Questions["u.1.l.1.b.1"]
	assert.Equal(t, []int{1, 0, 1}, b1.AnswerCounts)
	assert.Equal(t, 2, b1.NumAttempts)
	assert.Equal(t, 1.0, b1.Score)

	// The unit URL without a lesson resolves to the first lesson.
	part := agg.Questions["u.1.l.1.b.3.i.0"]
	assert.Equal(t, []int{0, 1}, part.AnswerCounts)
	assert.Equal(t, 1, part.NumAttempts)
	assert.Zero(t, agg.Questions["u.1.l.1.b.3.i.1"].NumAttempts)

	q1 := agg.Questions["u.1.l.1.c.q1"]
	assert.Equal(t, []int{1, 0, 1}, q1.AnswerCounts)
	assert.Equal(t, 2, q1.NumAttempts)
	assert.Equal(t, 1.0, q1.Score)

	g1 := agg.Questions["u.1.l.2.c.g1.i.1"]
	assert.Equal(t, []int{0, 1}, g1.AnswerCounts)
	assert.Equal(t, 0.5, g1.Score)

	fin := agg.Assessments["s.Fin.i.0"]
	assert.Equal(t, []int{0, 0, 0, 1}, fin.AnswerCounts)
	assert.Equal(t, 1.0, fin.Score)

	assert.Equal(t, []int{1, 0, 0}, agg.Assessments["s.Pre.c.aq1"].AnswerCounts)
	assert.Equal(t, []int{1, 0}, agg.Assessments["s.Pre.c.ag1.i.1"].AnswerCounts)
	assert.Equal(t, 1.0, agg.Assessments["s.Pre.c.ag1.i.1"].Score)
}

func TestQuestionAggregatorRejectsBadSummaries(t *testing.T) {
	tests := []struct {
		name   string
		source string
		data   string
	}{
		{"not json", SourceTagAssessment, `{`},
		{"unknown source", "enter-page", `{"location":"unit?unit=1&lesson=1"}`},
		{"no unit in location", SourceTagAssessment, `{"location":"http://x/course","type":"McQuestion","instanceid":"q1","answer":[0],"score":1}`},
		{"unknown instance", SourceTagAssessment, `{"location":"unit?unit=1&lesson=1","type":"McQuestion","instanceid":"zz","answer":[0],"score":1}`},
		{"choice out of range", SourceTagAssessment, `{"location":"unit?unit=1&lesson=1","type":"McQuestion","instanceid":"q1","answer":[3],"score":1}`},
		{"negative choice", SourceTagAssessment, `{"location":"unit?unit=1&lesson=1","type":"McQuestion","instanceid":"q1","answer":[-1],"score":1}`},
		{"non-numeric score", SourceTagAssessment, `{"location":"unit?unit=1&lesson=1","type":"McQuestion","instanceid":"q1","answer":[0],"score":"full"}`},
		{"answer not a list", SourceTagAssessment, `{"location":"unit?unit=1&lesson=1","type":"McQuestion","instanceid":"q1","answer":0,"score":1}`},
		{"fractional answer", SourceTagAssessment, `{"location":"unit?unit=1&lesson=1","type":"McQuestion","instanceid":"q1","answer":[0.5],"score":1}`},
		{"missing field", SourceTagAssessment, `{"location":"unit?unit=1&lesson=1","type":"McQuestion","answer":[0],"score":1}`},
		{"short group answers", SourceTagAssessment, `{"location":"unit?unit=1&lesson=2","type":"QuestionGroup","instanceid":"g1","containedTypes":["SaQuestion","McQuestion"],"individualScores":[0],"answer":["x"]}`},
		{"not an assessment", SourceSubmitAssessment, `{"type":"survey-1","values":[]}`},
		{"null choice", SourceSubmitAssessment, `{"type":"assessment-Fin","values":[{"type":"choices","value":null,"correct":true}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := newQuestionAggregator(t)
			agg.Visit(event(tt.source, tt.data))
			for id, q := range agg.Questions {
				assert.Zero(t, q.NumAttempts, id)
			}
			for id, q := range agg.Assessments {
				assert.Zero(t, q.NumAttempts, id)
			}
		})
	}
}
