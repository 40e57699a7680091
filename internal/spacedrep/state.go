package spacedrep

import (
	"math"
	"time"
)

// MasteryState holds the scheduling parameters for one learner on one item.
type MasteryState struct {
	EaseFactor   float64   `json:"ease_factor"`
	Repetition   int       `json:"repetition"`
	IntervalDays int       `json:"interval_days"`
	NextReviewAt time.Time `json:"next_review_at"`
}

// NewMasteryState returns the state used when a learner has never attempted
// an item.
func NewMasteryState(now time.Time) MasteryState {
	return MasteryState{
		EaseFactor:   DefaultEaseFactor,
		Repetition:   0,
		IntervalDays: MinIntervalDays,
		NextReviewAt: ReviewDate(now, MinIntervalDays),
	}
}

// ReviewDate returns the time intervalDays calendar days after from.
// Calendar-day addition keeps the wall-clock time stable across DST changes.
func ReviewDate(from time.Time, intervalDays int) time.Time {
	return from.AddDate(0, 0, intervalDays)
}

// IsDue reports whether an item scheduled for nextReviewAt is due at now.
func IsDue(nextReviewAt, now time.Time) bool {
	return !now.Before(nextReviewAt)
}

// IsDue returns true if the item is due for review (at or past the review date).
func (s MasteryState) IsDue(now time.Time) bool {
	return IsDue(s.NextReviewAt, now)
}

// OverdueDays returns how many days past due the review is. Returns 0 if not yet due.
func OverdueDays(nextReviewAt, now time.Time) float64 {
	if now.Before(nextReviewAt) {
		return 0
	}
	return now.Sub(nextReviewAt).Hours() / 24.0
}

// DaysUntilReview returns the number of days until the next review.
// Returns 0 if already due.
func (s MasteryState) DaysUntilReview(now time.Time) int {
	if s.IsDue(now) {
		return 0
	}
	return int(math.Ceil(s.NextReviewAt.Sub(now).Hours() / 24.0))
}

// ReviewStatus describes an item's review status for display.
type ReviewStatus string

const (
	ReviewLearning  ReviewStatus = "learning"
	ReviewScheduled ReviewStatus = "review"
	ReviewDue       ReviewStatus = "due"
	ReviewOverdue   ReviewStatus = "overdue"
)

// Status returns the review status for UI display. An item is overdue once
// it has gone unreviewed for a whole interval past its review date.
func (s MasteryState) Status(now time.Time) ReviewStatus {
	if s.IsDue(now) {
		if OverdueDays(s.NextReviewAt, now) >= float64(max(s.IntervalDays, MinIntervalDays)) {
			return ReviewOverdue
		}
		return ReviewDue
	}
	if s.Repetition < 2 {
		return ReviewLearning
	}
	return ReviewScheduled
}
