package spacedrep

import (
	"math"
	"time"
)

// Next returns the state that follows current after one attempt answered at
// now. It never fails: out-of-range fields in current are clamped before the
// policy is applied, so a corrupted record heals on its next attempt.
//
// A correct answer extends the streak. The first two repetitions get fixed
// 1 and 6 day intervals, later ones multiply the previous interval by the
// previous ease factor. An incorrect answer resets the streak and interval.
func Next(current MasteryState, correct bool, now time.Time) MasteryState {
	ease := easeHundredths(current.EaseFactor)
	rep := max(current.Repetition, 0)
	interval := clampInterval(current.IntervalDays)

	if correct {
		rep++
		switch rep {
		case 1:
			interval = FirstIntervalDays
		case 2:
			interval = SecondIntervalDays
		default:
			interval = scaleInterval(interval, ease)
		}
		ease = min(maxEaseHundredth, ease+easeRewardStep)
	} else {
		rep = 0
		interval = MinIntervalDays
		ease = max(minEaseHundredth, ease-easePenaltyStep)
	}

	return MasteryState{
		EaseFactor:   float64(ease) / easeScale,
		Repetition:   rep,
		IntervalDays: interval,
		NextReviewAt: ReviewDate(now, interval),
	}
}

// Normalize clamps every field of s into the ranges Next works with,
// without applying an attempt. NextReviewAt is left untouched.
func Normalize(s MasteryState) MasteryState {
	return MasteryState{
		EaseFactor:   float64(easeHundredths(s.EaseFactor)) / easeScale,
		Repetition:   max(s.Repetition, 0),
		IntervalDays: clampInterval(s.IntervalDays),
		NextReviewAt: s.NextReviewAt,
	}
}

// easeHundredths converts an ease factor to clamped hundredths.
// NaN is treated as the default.
func easeHundredths(ease float64) int {
	if math.IsNaN(ease) {
		ease = DefaultEaseFactor
	}
	ease = min(max(ease, MinEaseFactor), MaxEaseFactor)
	return int(math.Round(ease * easeScale))
}

// scaleInterval returns round(interval × ease) with ease in hundredths,
// rounding halves up, capped at MaxIntervalDays. Integer math keeps x.5
// products exact. interval is at most MaxIntervalDays, so the product fits.
func scaleInterval(interval, ease int) int {
	scaled := (interval*ease + easeScale/2) / easeScale
	return clampInterval(scaled)
}

func clampInterval(days int) int {
	return min(max(days, MinIntervalDays), MaxIntervalDays)
}
