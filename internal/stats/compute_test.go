package stats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/progresstrack/internal/course/coursetest"
	"github.com/abhisek/progresstrack/internal/logging"
	"github.com/abhisek/progresstrack/internal/progress"
	"github.com/abhisek/progresstrack/internal/store"
)

func newTestSources(t *testing.T) Sources {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return Sources{
		Properties: st.PropertyRepo(),
		Students:   st.StudentRepo(),
		Events:     st.EventRepo(),
	}
}

func TestCompute(t *testing.T) {
	ctx := context.Background()
	src := newTestSources(t)
	c := coursetest.New(t)

	tr := progress.NewTracker(c, logging.Nop())
	svc := progress.NewService(tr, progress.NewAdapter(src.Properties, logging.Nop()), logging.Nop())

	// Enough students to span several pages.
	ids := []string{"s1", "s2", "s3", "s4", "s5"}
	for i, id := range ids {
		student := progress.Student{ID: id}
		_, err := svc.RecordBlockCompleted(ctx, student, "1", "1", 1)
		require.NoError(t, err)
		if i%2 == 0 {
			_, err = svc.RecordAssessmentCompleted(ctx, student, "Pre")
			require.NoError(t, err)
		}
		require.NoError(t, src.Students.Put(ctx, &store.Student{ID: id, Enrolled: i != 4}))
	}
	require.NoError(t, src.Students.SetScore(ctx, "s1", "Pre", 50))
	require.NoError(t, src.Students.SetScore(ctx, "s3", "Pre", 70))

	for range 3 {
		_, err := src.Events.Append(ctx, store.EventData{
			StudentID: "s1",
			Source:    SourceTagAssessment,
			Data:      `{"location":"unit?unit=1&lesson=1","type":"McQuestion","instanceid":"q1","answer":[1],"score":0}`,
		})
		require.NoError(t, err)
	}

	report, err := Compute(ctx, src, c, Options{PageSize: 2}, logging.Nop())
	require.NoError(t, err)

	tallies := report.Progress.Tallies
	assert.Equal(t, EntityTally{InProgress: 5}, *tallies["u.1"])
	assert.Equal(t, EntityTally{Completed: 5}, *tallies["u.1.l.1.a.0.b.1"])
	assert.Equal(t, EntityTally{Completed: 3}, *tallies["s.Pre"])
	assert.Equal(t, "Geography 101", report.Progress.Structure.Label)
	assert.Equal(t, 5, report.Progress.Students)
	assert.Equal(t, EntityTally{}, report.Progress.Tally("u.2"))

	q1 := report.Questions.Questions["u.1.l.1.c.q1"]
	assert.Equal(t, []int{0, 3, 0}, q1.AnswerCounts)
	assert.Equal(t, 3, q1.NumAttempts)

	assert.Equal(t, Enrollment{Enrolled: 4, Unenrolled: 1}, report.Students.Enrollment)
	assert.Equal(t, ScoreSummary{Count: 2, Sum: 120, Average: 60, Median: 70}, report.Students.Scores["Pre"])
}

func TestComputeCancelled(t *testing.T) {
	src := newTestSources(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Compute(ctx, src, coursetest.New(t), Options{}, logging.Nop())
	assert.ErrorIs(t, err, context.Canceled)
}
