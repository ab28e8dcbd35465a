package stats

import (
	"maps"
	"slices"
	"sort"

	"github.com/abhisek/progresstrack/internal/store"
)

// Enrollment counts students by enrollment status.
type Enrollment struct {
	Enrolled   int `json:"enrolled"`
	Unenrolled int `json:"unenrolled"`
}

// ScoreSummary describes the scores recorded for one assessment.
type ScoreSummary struct {
	Count   int     `json:"count"`
	Sum     float64 `json:"sum"`
	Average float64 `json:"average"`
	Median  float64 `json:"median"`
}

// StudentAggregator counts enrollments and summarizes assessment scores.
type StudentAggregator struct {
	Enrollment Enrollment
	scores     map[string][]float64
}

func NewStudentAggregator() *StudentAggregator {
	return &StudentAggregator{scores: make(map[string][]float64)}
}

// Visit folds one student row into the totals.
func (a *StudentAggregator) Visit(s store.Student) {
	if s.Enrolled {
		a.Enrollment.Enrolled++
	} else {
		a.Enrollment.Unenrolled++
	}
	for id, score := range s.Scores {
		a.scores[id] = append(a.scores[id], score)
	}
}

// AssessmentIDs returns the assessments with at least one score, sorted.
func (a *StudentAggregator) AssessmentIDs() []string {
	return slices.Sorted(maps.Keys(a.scores))
}

// Scores summarizes every assessment seen so far. The median of an even
// number of scores is the upper of the two middle values.
func (a *StudentAggregator) Scores() map[string]ScoreSummary {
	out := make(map[string]ScoreSummary, len(a.scores))
	for id, values := range a.scores {
		sorted := slices.Clone(values)
		sort.Float64s(sorted)
		var sum float64
		for _, v := range sorted {
			sum += v
		}
		out[id] = ScoreSummary{
			Count:   len(sorted),
			Sum:     sum,
			Average: sum / float64(len(sorted)),
			Median:  sorted[len(sorted)/2],
		}
	}
	return out
}
