package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names shared by the repositories.
const (
	progressTable = "progress"
	attemptTable  = "attempt_events"
)

var (
	// ProgressColumns holds the columns for the "progress" table.
	ProgressColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "learner_id", Type: field.TypeString, Size: 128},
		{Name: "item_id", Type: field.TypeString, Size: 128},
		{Name: "ease_factor", Type: field.TypeFloat64},
		{Name: "repetition", Type: field.TypeInt},
		{Name: "interval_days", Type: field.TypeInt},
		{Name: "next_review_at", Type: field.TypeInt64},
		{Name: "next_review_at_ns", Type: field.TypeInt64},
		{Name: "last_reviewed_at", Type: field.TypeInt64},
		{Name: "last_reviewed_at_ns", Type: field.TypeInt64},
		{Name: "correct_count", Type: field.TypeInt, Default: 0},
		{Name: "incorrect_count", Type: field.TypeInt, Default: 0},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "created_at_ns", Type: field.TypeInt64},
		{Name: "updated_at", Type: field.TypeInt64},
		{Name: "updated_at_ns", Type: field.TypeInt64},
	}
	// ProgressTable holds the schema information for the "progress" table.
	ProgressTable = &schema.Table{
		Name:       progressTable,
		Columns:    ProgressColumns,
		PrimaryKey: []*schema.Column{ProgressColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "progress_learner_id_item_id",
				Unique:  true,
				Columns: []*schema.Column{ProgressColumns[1], ProgressColumns[2]},
			},
			{
				Name:    "progress_learner_id_next_review_at",
				Unique:  false,
				Columns: []*schema.Column{ProgressColumns[1], ProgressColumns[6], ProgressColumns[7]},
			},
		},
	}
	// AttemptEventsColumns holds the columns for the "attempt_events" table.
	AttemptEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeInt64},
		{Name: "timestamp_ns", Type: field.TypeInt64},
		{Name: "learner_id", Type: field.TypeString, Size: 128},
		{Name: "item_id", Type: field.TypeString, Size: 128},
		{Name: "correct", Type: field.TypeBool},
		{Name: "response_ms", Type: field.TypeInt64, Nullable: true},
		{Name: "ease_before", Type: field.TypeFloat64},
		{Name: "repetition_before", Type: field.TypeInt},
		{Name: "interval_before", Type: field.TypeInt},
		{Name: "ease_after", Type: field.TypeFloat64},
		{Name: "repetition_after", Type: field.TypeInt},
		{Name: "interval_after", Type: field.TypeInt},
		{Name: "next_review_at", Type: field.TypeInt64},
		{Name: "next_review_at_ns", Type: field.TypeInt64},
	}
	// AttemptEventsTable holds the schema information for the "attempt_events" table.
	AttemptEventsTable = &schema.Table{
		Name:       attemptTable,
		Columns:    AttemptEventsColumns,
		PrimaryKey: []*schema.Column{AttemptEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "attemptevent_learner_id_item_id",
				Unique:  false,
				Columns: []*schema.Column{AttemptEventsColumns[4], AttemptEventsColumns[5]},
			},
			{
				Name:    "attemptevent_timestamp",
				Unique:  false,
				Columns: []*schema.Column{AttemptEventsColumns[2], AttemptEventsColumns[3]},
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		ProgressTable,
		AttemptEventsTable,
	}
)

// migrate creates or upgrades the managed tables. Columns and indexes are
// only ever added.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
