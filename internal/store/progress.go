package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var progressColumns = []string{
	"learner_id", "item_id", "ease_factor", "repetition", "interval_days",
	"next_review_at", "next_review_at_ns", "last_reviewed_at", "last_reviewed_at_ns",
	"correct_count", "incorrect_count",
	"created_at", "created_at_ns", "updated_at", "updated_at_ns",
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// progressRepo implements ProgressRepo on SQLite.
type progressRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func keyPredicate(learnerID, itemID string) *entsql.Predicate {
	return entsql.And(
		entsql.EQ("learner_id", learnerID),
		entsql.EQ("item_id", itemID),
	)
}

func (r *progressRepo) Get(ctx context.Context, learnerID, itemID string) (*ProgressRecord, error) {
	rec, err := getProgress(ctx, r.db, learnerID, itemID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (r *progressRepo) Update(ctx context.Context, learnerID, itemID string, fn UpdateFunc) (*ProgressRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	current, err := getProgress(ctx, tx, learnerID, itemID)
	if err != nil {
		return nil, err
	}

	next, event, err := fn(current)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, errors.New("store: update func returned nil record")
	}
	next.LearnerID = learnerID
	next.ItemID = itemID

	if current == nil {
		err = insertProgress(ctx, tx, next)
	} else {
		next.CreatedAt = current.CreatedAt
		err = updateProgress(ctx, tx, next)
	}
	if err != nil {
		return nil, err
	}

	if event != nil {
		if err := r.appendAttempt(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return next, nil
}

func (r *progressRepo) appendAttempt(ctx context.Context, tx *sql.Tx, data *AttemptEventData) error {
	seqNum, err := r.seq.Next(ctx, tx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	var responseMs any
	if data.ResponseTime != nil {
		responseMs = data.ResponseTime.Milliseconds()
	}
	answeredSec, answeredNs := unixParts(data.AnsweredAt)
	nextSec, nextNs := unixParts(data.NextReviewAt)

	query, args := builder().Insert(attemptTable).
		Columns(
			attemptColumns...,
		).
		Values(
			uuid.New().String(), seqNum, answeredSec, answeredNs, data.LearnerID, data.ItemID, data.Correct, responseMs,
			data.EaseBefore, data.RepetitionBefore, data.IntervalBefore,
			data.EaseAfter, data.RepetitionAfter, data.IntervalAfter, nextSec, nextNs,
		).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save attempt event: %w", err)
	}
	return nil
}

func (r *progressRepo) Due(ctx context.Context, learnerID string, now time.Time, limit int) ([]*ProgressRecord, error) {
	b := builder()
	selector := b.Select(progressColumns...).
		From(b.Table(progressTable)).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			atOrBefore("next_review_at", now),
		)).
		OrderBy("next_review_at", "next_review_at_ns", "item_id")
	if limit > 0 {
		selector = selector.Limit(limit)
	}
	query, args := selector.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query due progress: %w", err)
	}
	defer rows.Close()

	var records []*ProgressRecord
	for rows.Next() {
		rec, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due progress: %w", err)
	}
	return records, nil
}

func (r *progressRepo) Summary(ctx context.Context, learnerID string, now time.Time) (*ProgressSummary, error) {
	b := builder()
	query, args := b.Select(
		entsql.Count("*"),
		"COALESCE(SUM(correct_count), 0)",
		"COALESCE(SUM(incorrect_count), 0)",
	).
		From(b.Table(progressTable)).
		Where(entsql.EQ("learner_id", learnerID)).
		Query()

	var sum ProgressSummary
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&sum.ItemsStudied, &sum.TotalCorrect, &sum.TotalIncorrect)
	if err != nil {
		return nil, fmt.Errorf("query progress totals: %w", err)
	}

	b = builder()
	query, args = b.Select(entsql.Count("*")).
		From(b.Table(progressTable)).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			atOrBefore("next_review_at", now),
		)).
		Query()
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&sum.Due); err != nil {
		return nil, fmt.Errorf("query due count: %w", err)
	}
	return &sum, nil
}

func (r *progressRepo) Delete(ctx context.Context, learnerID, itemID string) error {
	query, args := builder().Delete(progressTable).
		Where(keyPredicate(learnerID, itemID)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// getProgress returns nil, nil when no record exists.
func getProgress(ctx context.Context, q queryer, learnerID, itemID string) (*ProgressRecord, error) {
	b := builder()
	query, args := b.Select(progressColumns...).
		From(b.Table(progressTable)).
		Where(keyPredicate(learnerID, itemID)).
		Query()

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query progress: %w", err)
		}
		return nil, nil
	}
	return scanProgress(rows)
}

func insertProgress(ctx context.Context, q queryer, rec *ProgressRecord) error {
	nextSec, nextNs := unixParts(rec.NextReviewAt)
	lastSec, lastNs := unixParts(rec.LastReviewedAt)
	createdSec, createdNs := unixParts(rec.CreatedAt)
	updatedSec, updatedNs := unixParts(rec.UpdatedAt)

	query, args := builder().Insert(progressTable).
		Columns(progressColumns...).
		Values(
			rec.LearnerID, rec.ItemID, rec.EaseFactor, rec.Repetition, rec.IntervalDays,
			nextSec, nextNs, lastSec, lastNs,
			rec.CorrectCount, rec.IncorrectCount,
			createdSec, createdNs, updatedSec, updatedNs,
		).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert progress: %w", err)
	}
	return nil
}

func updateProgress(ctx context.Context, q queryer, rec *ProgressRecord) error {
	nextSec, nextNs := unixParts(rec.NextReviewAt)
	lastSec, lastNs := unixParts(rec.LastReviewedAt)
	updatedSec, updatedNs := unixParts(rec.UpdatedAt)

	query, args := builder().Update(progressTable).
		Set("ease_factor", rec.EaseFactor).
		Set("repetition", rec.Repetition).
		Set("interval_days", rec.IntervalDays).
		Set("next_review_at", nextSec).
		Set("next_review_at_ns", nextNs).
		Set("last_reviewed_at", lastSec).
		Set("last_reviewed_at_ns", lastNs).
		Set("correct_count", rec.CorrectCount).
		Set("incorrect_count", rec.IncorrectCount).
		Set("updated_at", updatedSec).
		Set("updated_at_ns", updatedNs).
		Where(keyPredicate(rec.LearnerID, rec.ItemID)).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

func scanProgress(rows *sql.Rows) (*ProgressRecord, error) {
	var rec ProgressRecord
	var nextSec, nextNs, lastSec, lastNs, createdSec, createdNs, updSec, updNs int64
	err := rows.Scan(
		&rec.LearnerID, &rec.ItemID, &rec.EaseFactor, &rec.Repetition, &rec.IntervalDays,
		&nextSec, &nextNs, &lastSec, &lastNs,
		&rec.CorrectCount, &rec.IncorrectCount,
		&createdSec, &createdNs, &updSec, &updNs,
	)
	if err != nil {
		return nil, fmt.Errorf("scan progress: %w", err)
	}

	rec.NextReviewAt = fromUnix(nextSec, nextNs)
	rec.LastReviewedAt = fromUnix(lastSec, lastNs)
	rec.CreatedAt = fromUnix(createdSec, createdNs)
	rec.UpdatedAt = fromUnix(updSec, updNs)
	return &rec, nil
}
