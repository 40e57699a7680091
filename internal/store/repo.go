package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// ProgressRecord is the persisted mastery state for one learner on one item,
// plus the answer counters kept alongside it.
type ProgressRecord struct {
	LearnerID      string
	ItemID         string
	EaseFactor     float64
	Repetition     int
	IntervalDays   int
	NextReviewAt   time.Time
	LastReviewedAt time.Time
	CorrectCount   int
	IncorrectCount int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AttemptEventData captures a single recorded attempt and the state change
// it caused.
type AttemptEventData struct {
	LearnerID        string
	ItemID           string
	Correct          bool
	ResponseTime     *time.Duration
	AnsweredAt       time.Time
	EaseBefore       float64
	RepetitionBefore int
	IntervalBefore   int
	EaseAfter        float64
	RepetitionAfter  int
	IntervalAfter    int
	NextReviewAt     time.Time
}

// AttemptEventRecord is a persisted attempt event.
type AttemptEventRecord struct {
	ID       string
	Sequence int64
	AttemptEventData
}

// ProgressSummary aggregates a learner's progress records.
type ProgressSummary struct {
	ItemsStudied   int
	Due            int
	TotalCorrect   int
	TotalIncorrect int
}

// UpdateFunc receives the current record for a key (nil if none exists) and
// returns the replacement record and, optionally, the attempt event to
// append in the same transaction.
type UpdateFunc func(current *ProgressRecord) (*ProgressRecord, *AttemptEventData, error)

// ProgressRepo manages per-learner, per-item progress records.
type ProgressRepo interface {
	// Get returns the record for the key, or ErrNotFound.
	Get(ctx context.Context, learnerID, itemID string) (*ProgressRecord, error)

	// Update performs an atomic read-modify-write of one record. Concurrent
	// updates to the same key are serialized.
	Update(ctx context.Context, learnerID, itemID string, fn UpdateFunc) (*ProgressRecord, error)

	// Due returns records with next review at or before now, earliest first.
	Due(ctx context.Context, learnerID string, now time.Time, limit int) ([]*ProgressRecord, error)

	// Summary aggregates all records for the learner.
	Summary(ctx context.Context, learnerID string, now time.Time) (*ProgressSummary, error)

	// Delete removes the record for the key, or returns ErrNotFound.
	Delete(ctx context.Context, learnerID, itemID string) error
}

// EventRepo provides read access to the attempt log.
type EventRepo interface {
	// QueryAttempts returns attempt events for the key, newest first.
	QueryAttempts(ctx context.Context, learnerID, itemID string, opts QueryOpts) ([]AttemptEventRecord, error)
}
