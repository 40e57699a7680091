package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/abhisek/knowing/internal/spacedrep"
	"github.com/abhisek/knowing/internal/store"
)

// Service records attempts and answers progress queries for learners.
type Service struct {
	progress store.ProgressRepo
	events   store.EventRepo
	clock    spacedrep.Clock
	logger   *slog.Logger
}

// NewService creates a Service. A nil clock uses the wall clock; a nil
// logger discards output.
func NewService(progress store.ProgressRepo, events store.EventRepo, clock spacedrep.Clock, logger *slog.Logger) *Service {
	if clock == nil {
		clock = spacedrep.SystemClock{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		progress: progress,
		events:   events,
		clock:    clock,
		logger:   logger,
	}
}

// RecordAttempt applies an attempt to the learner's progress on the item and
// persists the new state. The read, scheduling step and write happen in one
// store transaction, so concurrent attempts on the same item never lose an
// update.
func (s *Service) RecordAttempt(ctx context.Context, a Attempt) (*Result, error) {
	if err := validateAttempt(&a); err != nil {
		return nil, err
	}

	now := a.AnsweredAt
	if now.IsZero() {
		now = s.clock.Now()
	}

	res := &Result{LearnerID: a.LearnerID, ItemID: a.ItemID}
	_, err := s.progress.Update(ctx, a.LearnerID, a.ItemID, func(cur *store.ProgressRecord) (*store.ProgressRecord, *store.AttemptEventData, error) {
		next := &store.ProgressRecord{CreatedAt: now}
		if cur == nil {
			res.FirstAttempt = true
			res.Before = spacedrep.NewMasteryState(now)
		} else {
			res.Before = stateFromRecord(cur)
			next.CorrectCount = cur.CorrectCount
			next.IncorrectCount = cur.IncorrectCount
		}

		res.After = spacedrep.Next(res.Before, a.Correct, now)

		if a.Correct {
			next.CorrectCount++
		} else {
			next.IncorrectCount++
		}
		next.EaseFactor = res.After.EaseFactor
		next.Repetition = res.After.Repetition
		next.IntervalDays = res.After.IntervalDays
		next.NextReviewAt = res.After.NextReviewAt
		next.LastReviewedAt = now
		next.UpdatedAt = now
		res.CorrectCount = next.CorrectCount
		res.IncorrectCount = next.IncorrectCount

		event := &store.AttemptEventData{
			LearnerID:        a.LearnerID,
			ItemID:           a.ItemID,
			Correct:          a.Correct,
			ResponseTime:     a.ResponseTime,
			AnsweredAt:       now,
			EaseBefore:       res.Before.EaseFactor,
			RepetitionBefore: res.Before.Repetition,
			IntervalBefore:   res.Before.IntervalDays,
			EaseAfter:        res.After.EaseFactor,
			RepetitionAfter:  res.After.Repetition,
			IntervalAfter:    res.After.IntervalDays,
			NextReviewAt:     res.After.NextReviewAt,
		}
		return next, event, nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "record attempt failed",
			"learner", a.LearnerID, "item", a.ItemID, "err", err)
		return nil, fmt.Errorf("record attempt: %w", err)
	}

	s.logger.DebugContext(ctx, "attempt recorded",
		"learner", a.LearnerID,
		"item", a.ItemID,
		"correct", a.Correct,
		"repetition", res.After.Repetition,
		"interval_days", res.After.IntervalDays,
		"ease_factor", res.After.EaseFactor,
		"next_review_at", res.After.NextReviewAt,
	)
	return res, nil
}

// State returns the learner's progress on an item. When no record exists the
// default state as of now is returned with Exists set to false.
func (s *Service) State(ctx context.Context, learnerID, itemID string) (*ItemState, error) {
	rec, err := s.progress.Get(ctx, learnerID, itemID)
	if errors.Is(err, store.ErrNotFound) {
		return &ItemState{
			ItemID: itemID,
			State:  spacedrep.NewMasteryState(s.clock.Now()),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return itemStateFromRecord(rec), nil
}

// Due returns the learner's items whose review time has arrived, earliest
// first. A limit of 0 returns all of them.
func (s *Service) Due(ctx context.Context, learnerID string, limit int) ([]*ItemState, error) {
	recs, err := s.progress.Due(ctx, learnerID, s.clock.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("list due items: %w", err)
	}
	items := make([]*ItemState, len(recs))
	for i, rec := range recs {
		items[i] = itemStateFromRecord(rec)
	}
	return items, nil
}

// Summary returns aggregate progress for the learner.
func (s *Service) Summary(ctx context.Context, learnerID string) (*Summary, error) {
	ps, err := s.progress.Summary(ctx, learnerID, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("progress summary: %w", err)
	}
	sum := &Summary{
		ItemsStudied:   ps.ItemsStudied,
		Due:            ps.Due,
		TotalCorrect:   ps.TotalCorrect,
		TotalIncorrect: ps.TotalIncorrect,
		TotalAnswered:  ps.TotalCorrect + ps.TotalIncorrect,
	}
	if sum.TotalAnswered > 0 {
		pct := float64(sum.TotalCorrect) / float64(sum.TotalAnswered) * 100
		sum.Accuracy = math.Round(pct*10) / 10
	}
	return sum, nil
}

// History returns the most recent attempts on an item, newest first.
func (s *Service) History(ctx context.Context, learnerID, itemID string, limit int) ([]store.AttemptEventRecord, error) {
	events, err := s.events.QueryAttempts(ctx, learnerID, itemID, store.QueryOpts{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("attempt history: %w", err)
	}
	return events, nil
}

// Reset deletes the learner's progress on an item. The next attempt starts
// from the default state. The attempt log is kept.
func (s *Service) Reset(ctx context.Context, learnerID, itemID string) error {
	if err := s.progress.Delete(ctx, learnerID, itemID); err != nil {
		return fmt.Errorf("reset %s: %w", itemID, err)
	}
	s.logger.InfoContext(ctx, "progress reset", "learner", learnerID, "item", itemID)
	return nil
}

func validateAttempt(a *Attempt) error {
	a.LearnerID = strings.TrimSpace(a.LearnerID)
	a.ItemID = strings.TrimSpace(a.ItemID)
	if err := validateID("learner id", a.LearnerID); err != nil {
		return err
	}
	if err := validateID("item id", a.ItemID); err != nil {
		return err
	}
	if a.ResponseTime != nil && *a.ResponseTime < 0 {
		return fmt.Errorf("%w: negative response time %v", ErrInvalidAttempt, *a.ResponseTime)
	}
	return nil
}

func validateID(name, id string) error {
	if id == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidAttempt, name)
	}
	if utf8.RuneCountInString(id) > MaxIDLength {
		return fmt.Errorf("%w: %s longer than %d characters", ErrInvalidAttempt, name, MaxIDLength)
	}
	return nil
}

// stateFromRecord clamps stored fields the same way Next does, so a
// corrupted row displays as the state its next attempt will start from.
func stateFromRecord(rec *store.ProgressRecord) spacedrep.MasteryState {
	return spacedrep.Normalize(spacedrep.MasteryState{
		EaseFactor:   rec.EaseFactor,
		Repetition:   rec.Repetition,
		IntervalDays: rec.IntervalDays,
		NextReviewAt: rec.NextReviewAt,
	})
}

func itemStateFromRecord(rec *store.ProgressRecord) *ItemState {
	return &ItemState{
		ItemID:         rec.ItemID,
		State:          stateFromRecord(rec),
		Exists:         true,
		CorrectCount:   rec.CorrectCount,
		IncorrectCount: rec.IncorrectCount,
		LastReviewedAt: rec.LastReviewedAt,
	}
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}
