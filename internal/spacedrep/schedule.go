package spacedrep

// Ease factor bounds and steps. Ease is tracked in hundredths so that
// repeated +0.1/-0.2 updates stay exact.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 2.5

	easeScale        = 100
	maxEaseHundredth = 250
	minEaseHundredth = 130
	easeRewardStep   = 10 // +0.1 on a correct answer
	easePenaltyStep  = 20 // -0.2 on an incorrect answer
)

// Fixed intervals for the first two consecutive correct answers. From the
// third repetition on the interval grows by the ease factor.
const (
	FirstIntervalDays  = 1
	SecondIntervalDays = 6

	// MinIntervalDays is the floor for every interval, and the interval
	// assigned after a lapse.
	MinIntervalDays = 1

	// MaxIntervalDays caps interval growth at 100 years. Long streaks
	// saturate here instead of overflowing the multiplication or pushing
	// ReviewDate past year 9999.
	MaxIntervalDays = 36500
)
