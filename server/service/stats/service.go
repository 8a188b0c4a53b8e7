// Package stats maintains rolling per-question performance statistics and
// feed-exposure counters. The arithmetic lives in the storage layer as single
// upsert statements, so concurrent responses to the same question never lose
// an update; this service owns the clock and the query policies.
package stats

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/pathlight/pathlight/store"
)

// Store is the storage port the aggregator needs.
type Store interface {
	RecordQuestionResponse(ctx context.Context, record *store.RecordQuestionResponse) (*store.QuestionStat, error)
	RecordQuestionFeedShow(ctx context.Context, record *store.RecordQuestionFeedShow) (*store.QuestionStat, error)
	ListQuestionStats(ctx context.Context, find *store.FindQuestionStat) ([]*store.QuestionStat, error)
}

// Service aggregates question statistics.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a new stats aggregator.
func NewService(s Store) *Service {
	return &Service{store: s, now: time.Now}
}

// NewServiceWithClock creates an aggregator with an injected clock for tests.
func NewServiceWithClock(s Store, now func() time.Time) *Service {
	return &Service{store: s, now: now}
}

// RecordResponse folds one answer into a question's rolling statistics.
func (s *Service) RecordResponse(ctx context.Context, questionID int32, correct bool, timeSeconds float64) (*store.QuestionStat, error) {
	stat, err := s.store.RecordQuestionResponse(ctx, &store.RecordQuestionResponse{
		QuestionID:  questionID,
		Correct:     correct,
		TimeSeconds: timeSeconds,
		NowTs:       s.now().Unix(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "record question response")
	}
	return stat, nil
}

// RecordFeedShow marks a question as shown in the feed.
func (s *Service) RecordFeedShow(ctx context.Context, questionID int32) (*store.QuestionStat, error) {
	stat, err := s.store.RecordQuestionFeedShow(ctx, &store.RecordQuestionFeedShow{
		QuestionID: questionID,
		NowTs:      s.now().Unix(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "record feed show")
	}
	return stat, nil
}

// GetStats returns the stats for the given questions. Questions with no stat
// record yet are simply absent from the result.
func (s *Service) GetStats(ctx context.Context, questionIDs []int32) ([]*store.QuestionStat, error) {
	if len(questionIDs) == 0 {
		return []*store.QuestionStat{}, nil
	}
	return s.store.ListQuestionStats(ctx, &store.FindQuestionStat{QuestionIDs: questionIDs})
}

// GetNotRecentlyShown returns stats for questions whose last feed exposure is
// strictly before threshold, least-shown first. Never-shown questions qualify.
func (s *Service) GetNotRecentlyShown(ctx context.Context, threshold time.Time, limit int) ([]*store.QuestionStat, error) {
	thresholdTs := threshold.Unix()
	find := &store.FindQuestionStat{
		NotShownSinceTs: &thresholdTs,
		OrderBy:         store.QuestionStatOrderFeedShowCountAsc,
	}
	if limit > 0 {
		find.Limit = &limit
	}
	return s.store.ListQuestionStats(ctx, find)
}

// GetHardest returns stats ordered by ascending success rate. Callers apply
// their own minimum-sample-size filter; one wrong answer does not make a
// question hard.
func (s *Service) GetHardest(ctx context.Context, limit int) ([]*store.QuestionStat, error) {
	find := &store.FindQuestionStat{OrderBy: store.QuestionStatOrderSuccessRateAsc}
	if limit > 0 {
		find.Limit = &limit
	}
	return s.store.ListQuestionStats(ctx, find)
}

// GetEasiest returns stats ordered by descending success rate.
func (s *Service) GetEasiest(ctx context.Context, limit int) ([]*store.QuestionStat, error) {
	find := &store.FindQuestionStat{OrderBy: store.QuestionStatOrderSuccessRateDesc}
	if limit > 0 {
		find.Limit = &limit
	}
	return s.store.ListQuestionStats(ctx, find)
}
