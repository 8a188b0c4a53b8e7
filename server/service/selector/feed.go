package selector

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/pathlight/pathlight/store"
)

// GetQuestionsForFeed returns up to limit feed-eligible questions for the
// given concepts, excluding any shown within the exclusion window, in random
// order. Pass excludeShownWithinHours <= 0 for the default 24h window.
func (s *Service) GetQuestionsForFeed(ctx context.Context, subjectID int32, conceptIDs []int32, limit int, excludeShownWithinHours int) ([]*store.Question, error) {
	if excludeShownWithinHours <= 0 {
		excludeShownWithinHours = DefaultFeedExclusionHours
	}
	threshold := s.now().Add(-time.Duration(excludeShownWithinHours) * time.Hour)

	feedEligible := true
	candidates, err := s.store.ListQuestions(ctx, &store.FindQuestion{
		SubjectID:    &subjectID,
		ConceptIDs:   conceptIDs,
		FeedEligible: &feedEligible,
	})
	if err != nil {
		return nil, errors.Wrap(err, "list feed candidates")
	}
	if len(candidates) == 0 {
		return []*store.Question{}, nil
	}

	questionIDs := make([]int32, 0, len(candidates))
	for _, question := range candidates {
		questionIDs = append(questionIDs, question.ID)
	}
	statList, err := s.stats.GetStats(ctx, questionIDs)
	if err != nil {
		return nil, errors.Wrap(err, "get feed candidate stats")
	}
	// Questions with no stat row have never been shown and stay eligible.
	recentlyShown := make(map[int32]bool)
	for _, stat := range statList {
		if stat.LastShownInFeedTs != nil && *stat.LastShownInFeedTs >= threshold.Unix() {
			recentlyShown[stat.QuestionID] = true
		}
	}

	eligible := make([]*store.Question, 0, len(candidates))
	for _, question := range candidates {
		if !recentlyShown[question.ID] {
			eligible = append(eligible, question)
		}
	}

	s.shuffle(eligible)
	if limit > 0 && len(eligible) > limit {
		eligible = eligible[:limit]
	}
	return eligible, nil
}

// MarkShownInFeed records a feed exposure for each question in a served
// batch.
func (s *Service) MarkShownInFeed(ctx context.Context, questions []*store.Question) error {
	for _, question := range questions {
		if _, err := s.stats.RecordFeedShow(ctx, question.ID); err != nil {
			return errors.Wrapf(err, "record feed show for question %d", question.ID)
		}
	}
	return nil
}
