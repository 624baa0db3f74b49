package srs

import (
	"math"

	"github.com/phrazzld/mnemo-api/internal/domain"
)

// Next computes the memory state that results from reviewing an association
// with the given quality at nowMs, using the default parameters.
//
// previous may be nil for an association that was never reviewed. Next is
// total: it assumes quality is within [0,5] and previous, when present, is well
// formed. Callers that accept untrusted input go through Service.Review instead.
func Next(previous *domain.MemoryState, quality domain.Quality, nowMs int64) domain.MemoryState {
	return next(previous, quality, nowMs, DefaultParams())
}

func next(previous *domain.MemoryState, quality domain.Quality, nowMs int64, p Params) domain.MemoryState {
	n, ef, interval := 0, p.InitialEase, 0
	if previous != nil {
		n, ef, interval = previous.Repetitions, previous.Ease, previous.IntervalDays
	}

	if quality >= p.PassingQuality {
		switch n {
		case 0:
			interval = p.FirstInterval
		case 1:
			interval = p.SecondInterval
		default:
			interval = scaleInterval(interval, ef, p.MaxInterval)
		}
		n++
	} else {
		n = 0
		interval = p.LapseInterval
	}

	ef = nextEase(ef, quality, p.MinEase)

	return domain.MemoryState{
		Repetitions:    n,
		Ease:           ef,
		IntervalDays:   interval,
		LastReviewedAt: nowMs,
		NextDueAt:      nowMs + int64(interval)*p.DayMillis,
	}
}

// nextEase applies the SM-2 ease adjustment. Quality 5 adds 0.1, quality 4
// leaves ease unchanged, and lower ratings subtract progressively more.
// The result never drops below minEase; there is no upper bound.
func nextEase(ef float64, quality domain.Quality, minEase float64) float64 {
	d := float64(domain.MaxQuality - quality)
	ef += 0.1 - d*(0.08+d*0.02)
	if ef < minEase {
		ef = minEase
	}
	return ef
}

// scaleInterval multiplies the previous interval by the ease factor and rounds
// to the nearest day, ties to even. 5 days at ease 2.5 becomes 12, not 13.
// The result stays within [1, maxInterval]; the cap is applied to the float
// product so the conversion to int never sees an out-of-range value.
func scaleInterval(interval int, ef float64, maxInterval int) int {
	scaled := math.RoundToEven(float64(interval) * ef)
	switch {
	case scaled >= float64(maxInterval):
		return maxInterval
	case scaled < 1:
		return 1
	}
	return int(scaled)
}
