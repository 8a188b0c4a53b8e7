// Package recommend ranks "what should the student do next" actions across
// subjects with a configurable multi-factor score.
package recommend

import (
	"github.com/pkg/errors"
)

// Config holds every tunable of the engine. It is passed by value at
// construction time and never mutated afterwards.
type Config struct {
	// Factor weights, nominally summing to 1.0.
	UrgencyWeight   float64
	RelevanceWeight float64
	ImpactWeight    float64
	RecencyWeight   float64

	// WeakSuccessRate marks a subject's average success rate as weak,
	// CriticalSuccessRate as critical.
	WeakSuccessRate     float64
	CriticalSuccessRate float64

	// MinSampleSize is the number of answered questions required before
	// stats-based recommendations are trusted.
	MinSampleSize int

	// NearCompleteThreshold is the unit completion fraction at which
	// finishing the unit is suggested.
	NearCompleteThreshold float64

	// MinStreakDays is the streak length worth protecting.
	MinStreakDays int

	MaxPerSubject int
	MaxTotal      int
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		UrgencyWeight:   0.35,
		RelevanceWeight: 0.25,
		ImpactWeight:    0.25,
		RecencyWeight:   0.15,

		WeakSuccessRate:     0.6,
		CriticalSuccessRate: 0.4,

		MinSampleSize: 5,

		NearCompleteThreshold: 0.8,

		MinStreakDays: 3,

		MaxPerSubject: 2,
		MaxTotal:      5,
	}
}

// Validate rejects configurations the scorer cannot work with.
func (c Config) Validate() error {
	if c.UrgencyWeight < 0 || c.RelevanceWeight < 0 || c.ImpactWeight < 0 || c.RecencyWeight < 0 {
		return errors.New("factor weights must be non-negative")
	}
	if c.UrgencyWeight+c.RelevanceWeight+c.ImpactWeight+c.RecencyWeight == 0 {
		return errors.New("at least one factor weight must be positive")
	}
	if c.CriticalSuccessRate > c.WeakSuccessRate {
		return errors.New("critical success rate must not exceed weak success rate")
	}
	if c.NearCompleteThreshold <= 0 || c.NearCompleteThreshold > 1 {
		return errors.New("near-complete threshold must be in (0, 1]")
	}
	if c.MaxPerSubject <= 0 || c.MaxTotal <= 0 {
		return errors.New("recommendation caps must be positive")
	}
	return nil
}
