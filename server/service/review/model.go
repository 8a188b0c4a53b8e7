// Package review maintains per-concept spaced-repetition state using an
// SM-2 style algorithm: each rating updates an ease factor and a review
// interval, and the concept resurfaces once the interval elapses.
package review

import (
	"github.com/pkg/errors"
)

// Rating is the student's self-assessment of a recall.
type Rating string

const (
	RatingForgot Rating = "FORGOT"
	RatingHard   Rating = "HARD"
	RatingGood   Rating = "GOOD"
	RatingEasy   Rating = "EASY"
)

// Quality maps a rating onto the SM-2 quality scale.
func (r Rating) Quality() (int, error) {
	switch r {
	case RatingForgot:
		return 0, nil
	case RatingHard:
		return 3, nil
	case RatingGood:
		return 4, nil
	case RatingEasy:
		return 5, nil
	}
	return 0, errors.Errorf("unknown rating: %s", r)
}

// DefaultEaseFactor is the initial ease factor for new concepts.
const DefaultEaseFactor = 2.5

// MinEaseFactor is the floor that keeps intervals from collapsing.
const MinEaseFactor = 1.3

// masteredIntervalDays is the interval beyond which a concept counts as
// mastered in the summary.
const masteredIntervalDays = 30

// Summary describes the state of the review queue.
type Summary struct {
	TotalConcepts    int `json:"totalConcepts"`
	DueNow           int `json:"dueNow"`
	ReviewedToday    int `json:"reviewedToday"`
	NewConcepts      int `json:"newConcepts"`
	MasteredConcepts int `json:"masteredConcepts"`
	TotalReviews     int `json:"totalReviews"`
	StreakDays       int `json:"streakDays"`
}
