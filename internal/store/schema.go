package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	studentsTable   = "students"
	propertiesTable = "student_properties"
	eventsTable     = "events"
)

var (
	// StudentsColumns holds the columns for the "students" table.
	StudentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "name", Type: field.TypeString, Default: ""},
		{Name: "email", Type: field.TypeString, Default: ""},
		{Name: "enrolled", Type: field.TypeBool, Default: true},
		{Name: "scores", Type: field.TypeString, Size: 2147483647, Default: "{}"},
		{Name: "created_at", Type: field.TypeTime},
	}
	// StudentsTable holds the schema information for the "students" table.
	StudentsTable = &schema.Table{
		Name:       studentsTable,
		Columns:    StudentsColumns,
		PrimaryKey: []*schema.Column{StudentsColumns[0]},
	}

	// StudentPropertiesColumns holds the columns for the "student_properties" table.
	StudentPropertiesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "student_id", Type: field.TypeString},
		{Name: "name", Type: field.TypeString},
		{Name: "value", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "updated_on", Type: field.TypeTime},
	}
	// StudentPropertiesTable holds the schema information for the "student_properties" table.
	StudentPropertiesTable = &schema.Table{
		Name:       propertiesTable,
		Columns:    StudentPropertiesColumns,
		PrimaryKey: []*schema.Column{StudentPropertiesColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "studentproperty_student_id_name",
				Unique:  true,
				Columns: []*schema.Column{StudentPropertiesColumns[1], StudentPropertiesColumns[2]},
			},
			{
				Name:    "studentproperty_name",
				Unique:  false,
				Columns: []*schema.Column{StudentPropertiesColumns[2]},
			},
		},
	}

	// EventsColumns holds the columns for the "events" table.
	EventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "student_id", Type: field.TypeString},
		{Name: "source", Type: field.TypeString},
		{Name: "data", Type: field.TypeString, Size: 2147483647},
		{Name: "recorded_at", Type: field.TypeTime},
	}
	// EventsTable holds the schema information for the "events" table.
	EventsTable = &schema.Table{
		Name:       eventsTable,
		Columns:    EventsColumns,
		PrimaryKey: []*schema.Column{EventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "event_source",
				Unique:  false,
				Columns: []*schema.Column{EventsColumns[3]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		StudentsTable,
		StudentPropertiesTable,
		EventsTable,
	}
)

// migrate creates or updates all tables using ent's migration engine.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
