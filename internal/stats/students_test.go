package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/progresstrack/internal/store"
)

func TestStudentAggregator(t *testing.T) {
	agg := NewStudentAggregator()
	agg.Visit(store.Student{ID: "a", Enrolled: true, Scores: map[string]float64{"Pre": 40, "Fin": 90}})
	agg.Visit(store.Student{ID: "b", Enrolled: true, Scores: map[string]float64{"Pre": 80}})
	agg.Visit(store.Student{ID: "c", Enrolled: false, Scores: map[string]float64{"Pre": 60, "Fin": 70}})
	agg.Visit(store.Student{ID: "d", Enrolled: false})

	assert.Equal(t, Enrollment{Enrolled: 2, Unenrolled: 2}, agg.Enrollment)
	assert.Equal(t, []string{"Fin", "Pre"}, agg.AssessmentIDs())

	scores := agg.Scores()
	assert.Equal(t, ScoreSummary{Count: 3, Sum: 180, Average: 60, Median: 60}, scores["Pre"])
	// Even counts take the upper middle value.
	assert.Equal(t, ScoreSummary{Count: 2, Sum: 160, Average: 80, Median: 90}, scores["Fin"])
}

func TestStudentAggregatorEmpty(t *testing.T) {
	agg := NewStudentAggregator()
	assert.Empty(t, agg.Scores())
	assert.Empty(t, agg.AssessmentIDs())
}
