package review

import "errors"

// ErrInvalidAttempt is returned when an attempt fails validation.
// Use errors.Is to check.
var ErrInvalidAttempt = errors.New("review: invalid attempt")
