package srs

import (
	"errors"
	"fmt"

	"github.com/phrazzld/mnemo-api/internal/domain"
)

// ErrInvalidParams is returned when scheduler parameters cannot produce a valid schedule.
var ErrInvalidParams = errors.New("invalid srs params")

// Params defines the tunable constants of the scheduling algorithm.
type Params struct {
	// InitialEase is the ease factor assumed for an association that was never reviewed.
	InitialEase float64
	// MinEase is the floor applied after every ease update.
	MinEase float64

	// PassingQuality is the lowest quality that counts as a successful recall.
	PassingQuality domain.Quality

	// FirstInterval and SecondInterval are the fixed intervals, in days, after
	// the first and second consecutive successful reviews.
	FirstInterval  int
	SecondInterval int
	// LapseInterval is the interval, in days, after a failed review.
	LapseInterval int
	// MaxInterval caps every computed interval, in days. It may not exceed
	// domain.MaxIntervalDays.
	MaxInterval int

	// DayMillis is the length of one interval day in milliseconds.
	DayMillis int64
}

// DefaultParams returns the standard SM-2 constants.
func DefaultParams() Params {
	return Params{
		InitialEase:    2.5,
		MinEase:        domain.MinEase,
		PassingQuality: domain.PassingQuality,
		FirstInterval:  1,
		SecondInterval: 6,
		LapseInterval:  1,
		MaxInterval:    domain.MaxIntervalDays,
		DayMillis:      domain.MillisPerDay,
	}
}

// Validate checks that p can only produce states accepted by domain.MemoryState.Validate.
func (p Params) Validate() error {
	if p.MinEase < domain.MinEase {
		return fmt.Errorf("%w: min ease %.2f is below %.2f", ErrInvalidParams, p.MinEase, domain.MinEase)
	}
	if p.InitialEase < p.MinEase {
		return fmt.Errorf("%w: initial ease %.2f is below min ease %.2f", ErrInvalidParams, p.InitialEase, p.MinEase)
	}
	if p.PassingQuality.Validate() != nil {
		return fmt.Errorf("%w: passing quality %d is outside 0-5", ErrInvalidParams, p.PassingQuality)
	}
	if p.FirstInterval < 1 || p.SecondInterval < 1 || p.LapseInterval < 1 {
		return fmt.Errorf("%w: intervals must be at least one day", ErrInvalidParams)
	}
	if p.MaxInterval > domain.MaxIntervalDays {
		return fmt.Errorf("%w: max interval %d exceeds %d days", ErrInvalidParams, p.MaxInterval, domain.MaxIntervalDays)
	}
	if p.MaxInterval < max(p.FirstInterval, p.SecondInterval, p.LapseInterval) {
		return fmt.Errorf("%w: max interval %d is below a fixed interval", ErrInvalidParams, p.MaxInterval)
	}
	if p.DayMillis != domain.MillisPerDay {
		return fmt.Errorf("%w: day length must be %d ms", ErrInvalidParams, domain.MillisPerDay)
	}
	return nil
}
