package store

import (
	"context"
)

// QuestionStat is the rolling performance record for one question.
type QuestionStat struct {
	ID             int32
	QuestionID     int32
	TimesAsked     int
	TimesCorrect   int
	AvgTimeSeconds float64
	// SuccessRate is times_correct/times_asked, 0 when never asked.
	SuccessRate       float64
	LastShownInFeedTs *int64
	FeedShowCount     int
	LastAskedTs       *int64
}

// RecordQuestionResponse is the atomic response mutation for a question stat.
type RecordQuestionResponse struct {
	QuestionID  int32
	Correct     bool
	TimeSeconds float64
	NowTs       int64
}

// RecordQuestionFeedShow is the atomic feed-exposure mutation.
type RecordQuestionFeedShow struct {
	QuestionID int32
	NowTs      int64
}

// QuestionStatOrder selects the ordering of a stat listing.
type QuestionStatOrder int

const (
	// QuestionStatOrderNone keeps storage order.
	QuestionStatOrderNone QuestionStatOrder = iota
	// QuestionStatOrderFeedShowCountAsc lists least-shown questions first.
	QuestionStatOrderFeedShowCountAsc
	// QuestionStatOrderSuccessRateAsc lists hardest questions first.
	QuestionStatOrderSuccessRateAsc
	// QuestionStatOrderSuccessRateDesc lists easiest questions first.
	QuestionStatOrderSuccessRateDesc
)

// FindQuestionStat is the find condition for question stats.
type FindQuestionStat struct {
	QuestionID  *int32
	QuestionIDs []int32

	// NotShownSinceTs keeps stats whose last_shown_in_feed_ts is null or
	// strictly before the given time.
	NotShownSinceTs *int64

	MinTimesAsked *int

	OrderBy QuestionStatOrder
	Limit   *int
}

// DeleteQuestionStat is the delete request for a question stat.
type DeleteQuestionStat struct {
	QuestionID int32
}

func (s *Store) RecordQuestionResponse(ctx context.Context, record *RecordQuestionResponse) (*QuestionStat, error) {
	return s.driver.RecordQuestionResponse(ctx, record)
}

func (s *Store) RecordQuestionFeedShow(ctx context.Context, record *RecordQuestionFeedShow) (*QuestionStat, error) {
	return s.driver.RecordQuestionFeedShow(ctx, record)
}

func (s *Store) ListQuestionStats(ctx context.Context, find *FindQuestionStat) ([]*QuestionStat, error) {
	return s.driver.ListQuestionStats(ctx, find)
}

// GetQuestionStat gets the stat for a question. Returns nil when absent.
func (s *Store) GetQuestionStat(ctx context.Context, find *FindQuestionStat) (*QuestionStat, error) {
	list, err := s.driver.ListQuestionStats(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) DeleteQuestionStat(ctx context.Context, delete *DeleteQuestionStat) error {
	return s.driver.DeleteQuestionStat(ctx, delete)
}
