package review

import (
	"time"

	"github.com/abhisek/knowing/internal/spacedrep"
)

// MaxIDLength bounds learner and item identifiers.
const MaxIDLength = 128

// Attempt is one answer given by a learner to an item.
type Attempt struct {
	LearnerID string
	ItemID    string
	Correct   bool

	// ResponseTime is stored with the attempt but does not affect scheduling.
	ResponseTime *time.Duration

	// AnsweredAt overrides the service clock when set. Used when replaying
	// an attempt log.
	AnsweredAt time.Time
}

// Result describes the state change caused by an attempt.
type Result struct {
	LearnerID      string
	ItemID         string
	Before         spacedrep.MasteryState
	After          spacedrep.MasteryState
	FirstAttempt   bool
	CorrectCount   int
	IncorrectCount int
}

// ItemState is the stored progress for one item, or the default state when
// the learner has never attempted it.
type ItemState struct {
	ItemID         string
	State          spacedrep.MasteryState
	Exists         bool
	CorrectCount   int
	IncorrectCount int
	LastReviewedAt time.Time
}

// Summary aggregates a learner's progress.
type Summary struct {
	ItemsStudied   int
	Due            int
	TotalCorrect   int
	TotalIncorrect int
	TotalAnswered  int

	// Accuracy is the percentage of correct answers, rounded to one decimal.
	Accuracy float64
}
