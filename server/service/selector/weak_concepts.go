package selector

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/pathlight/pathlight/store"
)

// GetWeakConcepts returns up to ten concept ids whose questions the student
// keeps missing: among the hardest questions on record, those asked at least
// minAttempts times with a success rate at or below maxSuccessRate vote for
// each concept they are tagged with. Concepts are ranked by vote count, ties
// broken by first appearance in the hardest-first scan. Too little data
// yields an empty list, never an error.
func (s *Service) GetWeakConcepts(ctx context.Context, subjectID int32, minAttempts int, maxSuccessRate float64) ([]int32, error) {
	hardest, err := s.stats.GetHardest(ctx, weakScanLimit)
	if err != nil {
		return nil, errors.Wrap(err, "get hardest questions")
	}

	filtered := make([]*store.QuestionStat, 0, len(hardest))
	questionIDs := make([]int32, 0, len(hardest))
	for _, stat := range hardest {
		if stat.TimesAsked < minAttempts || stat.SuccessRate > maxSuccessRate {
			continue
		}
		filtered = append(filtered, stat)
		questionIDs = append(questionIDs, stat.QuestionID)
	}
	if len(filtered) == 0 {
		return []int32{}, nil
	}

	questions, err := s.store.ListQuestions(ctx, &store.FindQuestion{
		IDs:       questionIDs,
		SubjectID: &subjectID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "list questions for weak concepts")
	}
	questionByID := make(map[int32]*store.Question, len(questions))
	for _, question := range questions {
		questionByID[question.ID] = question
	}

	votes := make(map[int32]int)
	order := []int32{}
	for _, stat := range filtered {
		question, ok := questionByID[stat.QuestionID]
		if !ok {
			// Question belongs to another subject or was removed.
			continue
		}
		for _, conceptID := range question.ConceptIDs {
			if votes[conceptID] == 0 {
				order = append(order, conceptID)
			}
			votes[conceptID]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return votes[order[i]] > votes[order[j]]
	})
	if len(order) > weakConceptLimit {
		order = order[:weakConceptLimit]
	}
	return order, nil
}
