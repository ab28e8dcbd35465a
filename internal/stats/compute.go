package stats

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/progresstrack/internal/course"
	"github.com/abhisek/progresstrack/internal/logging"
	"github.com/abhisek/progresstrack/internal/progress"
	"github.com/abhisek/progresstrack/internal/store"
)

// Sources are the repositories an analytics run reads from.
type Sources struct {
	Properties store.PropertyRepo
	Students   store.StudentRepo
	Events     store.EventRepo
}

// Options tune an analytics run.
type Options struct {
	// PageSize bounds each scan (0 = store.DefaultPageSize).
	PageSize int
}

// ProgressReport is the output of ComputeProgress.
type ProgressReport struct {
	Structure *Node                   `json:"structure"`
	Tallies   map[string]*EntityTally `json:"tallies"`
	Students  int                     `json:"students"`
}

// Tally returns the tally for key, zero when no student reached it.
func (r *ProgressReport) Tally(key string) EntityTally {
	if t, ok := r.Tallies[key]; ok {
		return *t
	}
	return EntityTally{}
}

// QuestionReport is the output of ComputeQuestions.
type QuestionReport struct {
	Questions   map[string]*QuestionStat `json:"questions"`
	Assessments map[string]*QuestionStat `json:"assessments"`
}

// StudentReport is the output of ComputeStudents.
type StudentReport struct {
	Enrollment Enrollment              `json:"enrollment"`
	Scores     map[string]ScoreSummary `json:"scores"`
}

// Report bundles all analytics.
type Report struct {
	Progress  *ProgressReport `json:"progress"`
	Questions *QuestionReport `json:"questions"`
	Students  *StudentReport  `json:"students"`
}

// ComputeProgress tallies every stored progress record.
func ComputeProgress(ctx context.Context, props store.PropertyRepo, c *course.Course, opts Options, log *logging.Logger) (*ProgressReport, error) {
	structure, err := BuildStructure(c)
	if err != nil {
		return nil, fmt.Errorf("build course structure: %w", err)
	}
	agg := NewProgressAggregator(log)
	err = scanPages(ctx, opts, func(so store.ScanOpts) ([]store.Property, string, error) {
		page, err := props.Scan(ctx, progress.PropertyName, so)
		return page.Items, page.Next, err
	}, agg.Visit)
	if err != nil {
		return nil, fmt.Errorf("scan progress: %w", err)
	}
	return &ProgressReport{Structure: structure, Tallies: agg.Tallies, Students: agg.Students}, nil
}

// ComputeQuestions folds every stored event into multiple-choice answer
// statistics.
func ComputeQuestions(ctx context.Context, events store.EventRepo, c *course.Course, opts Options, log *logging.Logger) (*QuestionReport, error) {
	agg := NewQuestionAggregator(c, log)
	err := scanPages(ctx, opts, func(so store.ScanOpts) ([]store.EventRecord, string, error) {
		page, err := events.Scan(ctx, so)
		return page.Items, page.Next, err
	}, agg.Visit)
	if err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	return &QuestionReport{Questions: agg.Questions, Assessments: agg.Assessments}, nil
}

// ComputeStudents counts enrollments and summarizes assessment scores.
func ComputeStudents(ctx context.Context, students store.StudentRepo, opts Options) (*StudentReport, error) {
	agg := NewStudentAggregator()
	err := scanPages(ctx, opts, func(so store.ScanOpts) ([]store.Student, string, error) {
		page, err := students.Scan(ctx, so)
		return page.Items, page.Next, err
	}, agg.Visit)
	if err != nil {
		return nil, fmt.Errorf("scan students: %w", err)
	}
	return &StudentReport{Enrollment: agg.Enrollment, Scores: agg.Scores()}, nil
}

// Compute runs all aggregations concurrently. The first failure cancels the
// others.
func Compute(ctx context.Context, src Sources, c *course.Course, opts Options, log *logging.Logger) (*Report, error) {
	var r Report
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		r.Progress, err = ComputeProgress(gctx, src.Properties, c, opts, log)
		return err
	})
	g.Go(func() error {
		var err error
		r.Questions, err = ComputeQuestions(gctx, src.Events, c, opts, log)
		return err
	})
	g.Go(func() error {
		var err error
		r.Students, err = ComputeStudents(gctx, src.Students, opts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &r, nil
}

// scanPages walks a cursor-paginated scan to the end, handing each item to
// visit.
func scanPages[T any](ctx context.Context, opts Options, next func(store.ScanOpts) ([]T, string, error), visit func(T)) error {
	so := store.ScanOpts{Limit: opts.PageSize}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		items, cursor, err := next(so)
		if err != nil {
			return err
		}
		for _, it := range items {
			visit(it)
		}
		if cursor == "" {
			return nil
		}
		so.Cursor = cursor
	}
}
