package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// propertyRepo implements PropertyRepo on SQLite.
type propertyRepo struct {
	db *sql.DB
}

func (r *propertyRepo) Get(ctx context.Context, studentID, name string) (*Property, error) {
	query, args := builder().
		Select("student_id", "name", "value", "updated_on").
		From(entsql.Table(propertiesTable)).
		Where(entsql.And(
			entsql.EQ("student_id", studentID),
			entsql.EQ("name", name),
		)).
		Limit(1).
		Query()

	var p Property
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&p.StudentID, &p.Name, &p.Value, &p.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query property %s/%s: %w", studentID, name, err)
	}
	return &p, nil
}

func (r *propertyRepo) Create(ctx context.Context, studentID, name string) (*Property, error) {
	p := &Property{StudentID: studentID, Name: name, UpdatedOn: time.Now().UTC()}
	query, args := builder().Insert(propertiesTable).
		Columns("student_id", "name", "value", "updated_on").
		Values(p.StudentID, p.Name, p.Value, p.UpdatedOn).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("create property %s/%s: %w", studentID, name, err)
	}
	return p, nil
}

func (r *propertyRepo) Put(ctx context.Context, p *Property) error {
	if p.UpdatedOn.IsZero() {
		p.UpdatedOn = time.Now().UTC()
	}
	query, args := builder().Insert(propertiesTable).
		Columns("student_id", "name", "value", "updated_on").
		Values(p.StudentID, p.Name, p.Value, p.UpdatedOn).
		OnConflict(
			entsql.ConflictColumns("student_id", "name"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("put property %s/%s: %w", p.StudentID, p.Name, err)
	}
	return nil
}

func (r *propertyRepo) Scan(ctx context.Context, name string, opts ScanOpts) (PropertyPage, error) {
	limit := opts.limit()
	preds := []*entsql.Predicate{entsql.EQ("name", name)}
	if opts.Cursor != "" {
		preds = append(preds, entsql.GT("student_id", opts.Cursor))
	}
	query, args := builder().
		Select("student_id", "name", "value", "updated_on").
		From(entsql.Table(propertiesTable)).
		Where(entsql.And(preds...)).
		OrderBy("student_id").
		Limit(limit).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return PropertyPage{}, fmt.Errorf("query properties: %w", err)
	}
	defer rows.Close()

	var page PropertyPage
	for rows.Next() {
		var p Property
		if err := rows.Scan(&p.StudentID, &p.Name, &p.Value, &p.UpdatedOn); err != nil {
			return PropertyPage{}, fmt.Errorf("scan property: %w", err)
		}
		page.Items = append(page.Items, p)
	}
	if err := rows.Err(); err != nil {
		return PropertyPage{}, fmt.Errorf("iterate properties: %w", err)
	}

	if len(page.Items) == limit {
		page.Next = page.Items[len(page.Items)-1].StudentID
	}
	return page, nil
}
