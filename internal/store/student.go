package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// ErrStudentNotFound is returned when a score is recorded for an unknown student.
var ErrStudentNotFound = errors.New("student not found")

// studentRepo implements StudentRepo on SQLite.
type studentRepo struct {
	db *sql.DB
}

var studentColumns = []string{"id", "name", "email", "enrolled", "scores", "created_at"}

func (r *studentRepo) Put(ctx context.Context, s *Student) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	scores, err := encodeScores(s.Scores)
	if err != nil {
		return err
	}
	query, args := builder().Insert(studentsTable).
		Columns(studentColumns...).
		Values(s.ID, s.Name, s.Email, s.Enrolled, scores, s.CreatedAt).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("put student %s: %w", s.ID, err)
	}
	return nil
}

func (r *studentRepo) Get(ctx context.Context, id string) (*Student, error) {
	query, args := builder().
		Select(studentColumns...).
		From(entsql.Table(studentsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	s, err := scanStudent(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query student %s: %w", id, err)
	}
	return s, nil
}

func (r *studentRepo) SetScore(ctx context.Context, id, assessmentID string, score float64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	query, args := builder().
		Select("scores").
		From(entsql.Table(studentsTable)).
		Where(entsql.EQ("id", id)).
		Query()
	var raw string
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrStudentNotFound, id)
		}
		return fmt.Errorf("query scores %s: %w", id, err)
	}

	scores, err := decodeScores(raw)
	if err != nil {
		return err
	}
	scores[assessmentID] = score
	encoded, err := encodeScores(scores)
	if err != nil {
		return err
	}

	query, args = builder().Update(studentsTable).
		Set("scores", encoded).
		Where(entsql.EQ("id", id)).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update scores %s: %w", id, err)
	}
	return tx.Commit()
}

func (r *studentRepo) Scan(ctx context.Context, opts ScanOpts) (StudentPage, error) {
	limit := opts.limit()
	sel := builder().
		Select(studentColumns...).
		From(entsql.Table(studentsTable)).
		OrderBy("id").
		Limit(limit)
	if opts.Cursor != "" {
		sel = sel.Where(entsql.GT("id", opts.Cursor))
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return StudentPage{}, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var page StudentPage
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return StudentPage{}, fmt.Errorf("scan student: %w", err)
		}
		page.Items = append(page.Items, *s)
	}
	if err := rows.Err(); err != nil {
		return StudentPage{}, fmt.Errorf("iterate students: %w", err)
	}

	if len(page.Items) == limit {
		page.Next = page.Items[len(page.Items)-1].ID
	}
	return page, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (*Student, error) {
	var (
		s   Student
		raw string
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Enrolled, &raw, &s.CreatedAt); err != nil {
		return nil, err
	}
	scores, err := decodeScores(raw)
	if err != nil {
		return nil, err
	}
	s.Scores = scores
	return &s, nil
}

func encodeScores(scores map[string]float64) (string, error) {
	if scores == nil {
		return "{}", nil
	}
	b, err := json.Marshal(scores)
	if err != nil {
		return "", fmt.Errorf("marshal scores: %w", err)
	}
	return string(b), nil
}

func decodeScores(raw string) (map[string]float64, error) {
	scores := make(map[string]float64)
	if raw == "" {
		return scores, nil
	}
	if err := json.Unmarshal([]byte(raw), &scores); err != nil {
		return nil, fmt.Errorf("unmarshal scores: %w", err)
	}
	return scores, nil
}
