package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var attemptColumns = []string{
	"id", "sequence", "timestamp", "timestamp_ns", "learner_id", "item_id", "correct", "response_ms",
	"ease_before", "repetition_before", "interval_before",
	"ease_after", "repetition_after", "interval_after", "next_review_at", "next_review_at_ns",
}

// eventRepo implements EventRepo on SQLite.
type eventRepo struct {
	db *sql.DB
}

func (r *eventRepo) QueryAttempts(ctx context.Context, learnerID, itemID string, opts QueryOpts) ([]AttemptEventRecord, error) {
	preds := []*entsql.Predicate{keyPredicate(learnerID, itemID)}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, atOrAfter("timestamp", opts.From))
	}
	if !opts.To.IsZero() {
		preds = append(preds, atOrBefore("timestamp", opts.To))
	}

	b := builder()
	selector := b.Select(attemptColumns...).
		From(b.Table(attemptTable)).
		Where(entsql.And(preds...)).
		OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		selector = selector.Limit(opts.Limit)
	}
	query, args := selector.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempt events: %w", err)
	}
	defer rows.Close()

	var records []AttemptEventRecord
	for rows.Next() {
		rec, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempt events: %w", err)
	}
	return records, nil
}

func scanAttempt(rows *sql.Rows) (AttemptEventRecord, error) {
	var (
		rec                     AttemptEventRecord
		answeredSec, answeredNs int64
		nextSec, nextNs         int64
		responseMs              sql.NullInt64
	)
	err := rows.Scan(
		&rec.ID, &rec.Sequence, &answeredSec, &answeredNs, &rec.LearnerID, &rec.ItemID, &rec.Correct, &responseMs,
		&rec.EaseBefore, &rec.RepetitionBefore, &rec.IntervalBefore,
		&rec.EaseAfter, &rec.RepetitionAfter, &rec.IntervalAfter, &nextSec, &nextNs,
	)
	if err != nil {
		return rec, fmt.Errorf("scan attempt event: %w", err)
	}

	rec.AnsweredAt = fromUnix(answeredSec, answeredNs)
	rec.NextReviewAt = fromUnix(nextSec, nextNs)
	if responseMs.Valid {
		d := time.Duration(responseMs.Int64) * time.Millisecond
		rec.ResponseTime = &d
	}
	return rec, nil
}
