package review

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/pathlight/pathlight/store"
)

// Store is the storage port the scheduler needs.
type Store interface {
	GetReviewRecord(ctx context.Context, find *store.FindReviewRecord) (*store.ReviewRecord, error)
	UpsertReviewRecord(ctx context.Context, upsert *store.ReviewRecord) (*store.ReviewRecord, error)
	ListReviewRecords(ctx context.Context, find *store.FindReviewRecord) ([]*store.ReviewRecord, error)
}

// Service schedules concept reviews.
type Service struct {
	store Store
	now   func() time.Time

	// locks serialize record-review per concept; the driver upsert alone
	// cannot protect the read-compute-write cycle.
	locks [64]sync.Mutex
}

// NewService creates a new review scheduler.
func NewService(s Store) *Service {
	return &Service{store: s, now: time.Now}
}

// NewServiceWithClock creates a scheduler with an injected clock for tests.
func NewServiceWithClock(s Store, now func() time.Time) *Service {
	return &Service{store: s, now: now}
}

// RecordReview applies one rating to a concept's spaced-repetition state,
// creating the record on first rating.
func (s *Service) RecordReview(ctx context.Context, conceptID int32, rating Rating) (*store.ReviewRecord, error) {
	quality, err := rating.Quality()
	if err != nil {
		return nil, err
	}

	mu := &s.locks[uint32(conceptID)%uint32(len(s.locks))]
	mu.Lock()
	defer mu.Unlock()

	record, err := s.store.GetReviewRecord(ctx, &store.FindReviewRecord{ConceptID: &conceptID})
	if err != nil {
		return nil, errors.Wrap(err, "get review record")
	}

	ease := DefaultEaseFactor
	interval := 0
	if record != nil {
		ease = record.EaseFactor
		interval = record.IntervalDays
	}
	newEase, newInterval := nextState(ease, interval, quality)

	now := s.now()
	nowTs := now.Unix()
	nextTs := now.AddDate(0, 0, newInterval).Unix()
	correct := 0
	if quality >= 3 {
		correct = 1
	}

	upsert := &store.ReviewRecord{
		ConceptID:      conceptID,
		LastReviewedTs: &nowTs,
		NextReviewTs:   nextTs,
		IntervalDays:   newInterval,
		EaseFactor:     newEase,
	}
	if record == nil {
		upsert.FirstSeenTs = nowTs
		upsert.ReviewCount = 1
		upsert.CorrectCount = correct
	} else {
		upsert.FirstSeenTs = record.FirstSeenTs
		upsert.ReviewCount = record.ReviewCount + 1
		upsert.CorrectCount = record.CorrectCount + correct
	}

	updated, err := s.store.UpsertReviewRecord(ctx, upsert)
	if err != nil {
		return nil, errors.Wrap(err, "upsert review record")
	}
	return updated, nil
}

// GetDue returns records due at the given time, soonest first. Pure read.
func (s *Service) GetDue(ctx context.Context, now time.Time, limit int) ([]*store.ReviewRecord, error) {
	nowTs := now.Unix()
	find := &store.FindReviewRecord{DueBeforeTs: &nowTs}
	if limit > 0 {
		find.Limit = &limit
	}
	return s.store.ListReviewRecords(ctx, find)
}

// Summary reports the state of the review queue at the given time.
func (s *Service) Summary(ctx context.Context, now time.Time) (*Summary, error) {
	records, err := s.store.ListReviewRecords(ctx, &store.FindReviewRecord{})
	if err != nil {
		return nil, errors.Wrap(err, "list review records")
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	summary := &Summary{TotalConcepts: len(records)}
	reviewDates := make(map[string]bool)

	for _, record := range records {
		if record.NextReviewTs <= now.Unix() {
			summary.DueNow++
		}
		if record.ReviewCount <= 1 {
			summary.NewConcepts++
		}
		if record.IntervalDays > masteredIntervalDays {
			summary.MasteredConcepts++
		}
		summary.TotalReviews += record.ReviewCount
		if record.LastReviewedTs != nil {
			reviewed := time.Unix(*record.LastReviewedTs, 0).In(now.Location())
			if !reviewed.Before(today) {
				summary.ReviewedToday++
			}
			reviewDates[reviewed.Format("2006-01-02")] = true
		}
	}

	summary.StreakDays = calculateStreak(reviewDates, today)
	return summary, nil
}

// nextState computes the SM-2 transition for one quality rating.
func nextState(ease float64, interval, quality int) (float64, int) {
	q := float64(quality)
	newEase := ease + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if newEase < MinEaseFactor {
		newEase = MinEaseFactor
	}

	var newInterval int
	switch {
	case quality < 3:
		newInterval = 1
	case interval == 0:
		newInterval = 1
	case interval == 1:
		newInterval = 6
	default:
		newInterval = int(math.Floor(float64(interval) * newEase))
	}
	return newEase, newInterval
}

// calculateStreak counts consecutive review days ending today or yesterday.
func calculateStreak(reviewDates map[string]bool, today time.Time) int {
	streak := 0
	checkDate := today

	// Allow starting from today or yesterday
	if !reviewDates[checkDate.Format("2006-01-02")] {
		checkDate = checkDate.AddDate(0, 0, -1)
		if !reviewDates[checkDate.Format("2006-01-02")] {
			return 0
		}
	}

	for reviewDates[checkDate.Format("2006-01-02")] {
		streak++
		checkDate = checkDate.AddDate(0, 0, -1)
	}
	return streak
}
