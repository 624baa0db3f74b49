package domain

import (
	"math"
	"strconv"
)

// MillisPerDay is the length of one scheduling day in epoch milliseconds.
const MillisPerDay int64 = 86_400_000

// MinEase is the lowest ease factor a memory state may hold.
const MinEase = 1.3

// MaxIntervalDays caps the review interval at roughly one hundred years.
// Keeping it bounded keeps NextDueAt representable in epoch milliseconds.
const MaxIntervalDays = 36_500

// MaxReviewedAt is the latest review timestamp for which a maximal interval
// still fits in an int64 due date.
const MaxReviewedAt = math.MaxInt64 - MaxIntervalDays*MillisPerDay

// Quality is a learner's 0-5 self-rating of how well an association was recalled.
// Ratings of 3 and above count as a successful recall.
type Quality int

// Quality bounds.
const (
	MinQuality     Quality = 0
	MaxQuality     Quality = 5
	PassingQuality Quality = 3
)

// Validate returns a *ValidationError when q is outside [0,5].
func (q Quality) Validate() error {
	if q < MinQuality || q > MaxQuality {
		return NewValidationError("quality", "must be between 0 and 5, got "+strconv.Itoa(int(q)))
	}
	return nil
}

// Passing reports whether q counts as a successful recall.
func (q Quality) Passing() bool {
	return q >= PassingQuality
}

// MemoryState is the spaced repetition record of a single association.
// A nil *MemoryState means the association has never been reviewed.
type MemoryState struct {
	Repetitions    int     `json:"repetitions"`    // consecutive successful reviews
	Ease           float64 `json:"ease"`           // interval growth multiplier, never below MinEase
	IntervalDays   int     `json:"intervalDays"`   // days until the next review
	LastReviewedAt int64   `json:"lastReviewedAt"` // epoch ms
	NextDueAt      int64   `json:"nextDueAt"`      // epoch ms
}

// Validate checks that a stored state is well formed before it is fed back into
// the scheduler. Malformed history is rejected rather than repaired.
func (m *MemoryState) Validate() error {
	if m.Repetitions < 0 {
		return NewValidationError("memory.repetitions", "must not be negative")
	}

	if math.IsNaN(m.Ease) || math.IsInf(m.Ease, 0) || m.Ease < MinEase {
		return NewValidationError("memory.ease", "must be a finite number of at least 1.3")
	}

	if m.IntervalDays < 1 || m.IntervalDays > MaxIntervalDays {
		return NewValidationError("memory.intervalDays", "must be between 1 and "+strconv.Itoa(MaxIntervalDays))
	}

	if m.LastReviewedAt < 0 || m.LastReviewedAt > MaxReviewedAt {
		return NewValidationError("memory.lastReviewedAt", "must be a representable epoch millisecond timestamp")
	}

	if m.NextDueAt != m.LastReviewedAt+int64(m.IntervalDays)*MillisPerDay {
		return NewValidationError("memory.nextDueAt", "must equal lastReviewedAt plus intervalDays")
	}

	return nil
}

// IsDue reports whether the association should be presented again at nowMs.
// A nil state has never been reviewed and is always due.
func (m *MemoryState) IsDue(nowMs int64) bool {
	if m == nil {
		return true
	}
	return nowMs >= m.NextDueAt
}

// Clone returns a copy of m, or nil when m is nil.
func (m *MemoryState) Clone() *MemoryState {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}
