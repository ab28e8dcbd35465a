package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/progresstrack/internal/logging"
	"github.com/abhisek/progresstrack/internal/store"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		key     string
		value   int
		want    bucket
		wantErr bool
	}{
		{"u.1", 0, bucketNone, false},
		{"u.1", 1, bucketInProgress, false},
		{"u.1", 2, bucketCompleted, false},
		{"u.1.l.1.a.0", 1, bucketInProgress, false},
		{"u.1.l.1.h.0", 2, bucketCompleted, false},
		{"u.1.l.1.a.0.b.3", 0, bucketNone, false},
		{"u.1.l.1.a.0.b.3", 1, bucketCompleted, false},
		{"u.1.l.1.a.0.b.3", 7, bucketCompleted, false},
		{"u.1.l.1.h.0.c.q1", 1, bucketCompleted, false},
		{"s.Pre", 3, bucketCompleted, false},
		{"bogus", 1, bucketNone, true},
		{"x.1", 1, bucketNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := classify(tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProgressAggregatorTallies(t *testing.T) {
	agg := NewProgressAggregator(logging.Nop())

	agg.Visit(store.Property{StudentID: "a", Value: `{"u.1":1,"u.1.l.1":2,"u.1.l.1.a.0.b.1":2,"s.Pre":1}`})
	agg.Visit(store.Property{StudentID: "b", Value: `{"u.1":2,"u.1.l.1":2,"u.1.l.1.a.0.b.1":0}`})
	agg.Visit(store.Property{StudentID: "c", Value: ""})

	assert.Equal(t, EntityTally{InProgress: 1, Completed: 1}, *agg.Tallies["u.1"])
	assert.Equal(t, EntityTally{Completed: 2}, *agg.Tallies["u.1.l.1"])
	assert.Equal(t, EntityTally{Completed: 1}, *agg.Tallies["u.1.l.1.a.0.b.1"])
	assert.Equal(t, EntityTally{Completed: 1}, *agg.Tallies["s.Pre"])
	assert.Len(t, agg.Tallies, 4)
	assert.Equal(t, 2, agg.Students)
}

func TestProgressAggregatorSkipsBadInput(t *testing.T) {
	agg := NewProgressAggregator(logging.Nop())

	agg.Visit(store.Property{StudentID: "a", Value: `not json`})
	agg.Visit(store.Property{StudentID: "b", Value: `[1,2]`})
	assert.Empty(t, agg.Tallies)

	// One bad entry rejects the whole record, as the tracker does.
	agg.Visit(store.Property{StudentID: "c", Value: `{"weird":1,"u.2":2}`})
	agg.Visit(store.Property{StudentID: "d", Value: `{"u.1":1.5,"u.2":2}`})
	assert.Empty(t, agg.Tallies)
	assert.Equal(t, 0, agg.Students)
}

func TestProgressAggregatorAcceptsIntegralFloats(t *testing.T) {
	agg := NewProgressAggregator(logging.Nop())

	agg.Visit(store.Property{StudentID: "a", Value: `{"u.1":2.0,"s.A":1e3,"u.2":1}`})
	require.Len(t, agg.Tallies, 3)
	assert.Equal(t, EntityTally{Completed: 1}, *agg.Tallies["u.1"])
	assert.Equal(t, EntityTally{Completed: 1}, *agg.Tallies["s.A"])
	assert.Equal(t, EntityTally{InProgress: 1}, *agg.Tallies["u.2"])
	assert.Equal(t, 1, agg.Students)
}
