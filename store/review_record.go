package store

import (
	"context"
	"time"
)

// ReviewRecord is the spaced-repetition state for one concept.
type ReviewRecord struct {
	ID             int32
	ConceptID      int32
	FirstSeenTs    int64
	LastReviewedTs *int64
	NextReviewTs   int64
	ReviewCount    int
	CorrectCount   int
	// IntervalDays is the current review interval; never below 1 once reviewed.
	IntervalDays int
	// EaseFactor is the SM-2 ease multiplier; floor 1.3.
	EaseFactor float64
}

// FindReviewRecord is the find condition for review records.
type FindReviewRecord struct {
	ConceptID  *int32
	ConceptIDs []int32

	// DueBeforeTs filters to records with next_review_ts <= the given time.
	DueBeforeTs *int64

	Limit *int
}

// DeleteReviewRecord is the delete request for a review record.
type DeleteReviewRecord struct {
	ConceptID int32
}

// UpsertReviewRecord creates or replaces the record for its concept.
func (s *Store) UpsertReviewRecord(ctx context.Context, upsert *ReviewRecord) (*ReviewRecord, error) {
	return s.driver.UpsertReviewRecord(ctx, upsert)
}

// ListReviewRecords lists review records, ordered by next_review_ts ascending.
func (s *Store) ListReviewRecords(ctx context.Context, find *FindReviewRecord) ([]*ReviewRecord, error) {
	return s.driver.ListReviewRecords(ctx, find)
}

// GetReviewRecord gets the record for a concept. Returns nil when absent.
func (s *Store) GetReviewRecord(ctx context.Context, find *FindReviewRecord) (*ReviewRecord, error) {
	list, err := s.driver.ListReviewRecords(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// DeleteReviewRecord deletes the record for a concept.
func (s *Store) DeleteReviewRecord(ctx context.Context, delete *DeleteReviewRecord) error {
	return s.driver.DeleteReviewRecord(ctx, delete)
}

// NextReview parses the next review time.
func (r *ReviewRecord) NextReview() time.Time {
	return time.Unix(r.NextReviewTs, 0)
}

// IsDueAt reports whether the record is due at the given time.
func (r *ReviewRecord) IsDueAt(t time.Time) bool {
	return r.NextReviewTs <= t.Unix()
}
