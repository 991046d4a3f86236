package trends

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidRequest is the parent of every request validation error.
	ErrInvalidRequest = errors.New("invalid trends request")
	// ErrUnsupportedRange is returned for a rangeDays outside SupportedRanges.
	ErrUnsupportedRange = fmt.Errorf("%w: unsupported rangeDays", ErrInvalidRequest)
	// ErrNegativeTarget is returned for a negative target cost per job.
	ErrNegativeTarget = fmt.Errorf("%w: targetLabourCostPerJob must not be negative", ErrInvalidRequest)
	// ErrInvalidTarget is returned for a target that is not a finite number.
	ErrInvalidTarget = fmt.Errorf("%w: targetLabourCostPerJob must be a finite number", ErrInvalidRequest)
)

// SupportedRanges lists the accepted lookback lengths in days.
var SupportedRanges = []int{30, 90, 180, 365}

// DefaultRangeDays is used when a request omits rangeDays.
const DefaultRangeDays = 90

// Request is a validated-at-the-boundary trends query.
type Request struct {
	RangeDays int
	Target    *float64
}

// Validate rejects unsupported ranges and negative or non-finite targets.
func (r Request) Validate() error {
	if !IsSupportedRange(r.RangeDays) {
		return fmt.Errorf("%w: %d (allowed: %v)", ErrUnsupportedRange, r.RangeDays, SupportedRanges)
	}
	if r.Target != nil {
		if math.IsNaN(*r.Target) || math.IsInf(*r.Target, 0) {
			return ErrInvalidTarget
		}
		if *r.Target < 0 {
			return ErrNegativeTarget
		}
	}
	return nil
}

// IsSupportedRange reports whether days is one of SupportedRanges.
func IsSupportedRange(days int) bool {
	for _, r := range SupportedRanges {
		if r == days {
			return true
		}
	}
	return false
}
