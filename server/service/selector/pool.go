package selector

import (
	"context"
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/pathlight/pathlight/store"
)

// QuestionFilter narrows a candidate pool by presentation type and
// difficulty range. Nil fields mean no constraint.
type QuestionFilter struct {
	Type          *store.QuestionType
	DifficultyMin *int
	DifficultyMax *int
}

func (f *QuestionFilter) match(question *store.Question) bool {
	if f == nil {
		return true
	}
	if f.Type != nil && question.Type != *f.Type {
		return false
	}
	if f.DifficultyMin != nil && question.Difficulty < *f.DifficultyMin {
		return false
	}
	if f.DifficultyMax != nil && question.Difficulty > *f.DifficultyMax {
		return false
	}
	return true
}

func applyFilter(candidates []*store.Question, filter *QuestionFilter) []*store.Question {
	if filter == nil {
		return candidates
	}
	filtered := make([]*store.Question, 0, len(candidates))
	for _, question := range candidates {
		if filter.match(question) {
			filtered = append(filtered, question)
		}
	}
	return filtered
}

// GetQuestionsByProgress pulls questions from the units the student has
// finished or is currently working through, then balances them by difficulty.
// An empty eligible-unit set yields an empty result, not an error.
func (s *Service) GetQuestionsByProgress(ctx context.Context, subjectID int32, limit int, filter *QuestionFilter) ([]*store.Question, error) {
	candidates, err := s.progressPool(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	candidates = applyFilter(candidates, filter)
	return s.applyDifficultyDistribution(candidates, limit), nil
}

// progressPool returns all questions in the union of completed units and
// units with an accessed-but-unfinished lesson.
func (s *Service) progressPool(ctx context.Context, subjectID int32) ([]*store.Question, error) {
	lessons, err := s.store.ListLessons(ctx, &store.FindLesson{SubjectID: &subjectID})
	if err != nil {
		return nil, errors.Wrap(err, "list lessons")
	}
	progress, err := s.store.ListLessonProgress(ctx, &store.FindLessonProgress{SubjectID: &subjectID})
	if err != nil {
		return nil, errors.Wrap(err, "list lesson progress")
	}
	progressByLesson := make(map[int32]*store.LessonProgress, len(progress))
	for _, row := range progress {
		progressByLesson[row.LessonID] = row
	}

	lessonsByUnit := make(map[int32][]*store.Lesson)
	for _, lesson := range lessons {
		lessonsByUnit[lesson.UnitID] = append(lessonsByUnit[lesson.UnitID], lesson)
	}

	eligible := []int32{}
	for unitID, unitLessons := range lessonsByUnit {
		completed := true
		current := false
		for _, lesson := range unitLessons {
			row := progressByLesson[lesson.ID]
			if row == nil || !row.Completed {
				completed = false
			}
			if row != nil && !row.Completed {
				current = true
			}
		}
		if completed || current {
			eligible = append(eligible, unitID)
		}
	}
	if len(eligible) == 0 {
		return nil, nil
	}
	sort.Slice(eligible, func(i, j int) bool { return eligible[i] < eligible[j] })

	questions, err := s.store.ListQuestions(ctx, &store.FindQuestion{
		SubjectID: &subjectID,
		UnitIDs:   eligible,
	})
	if err != nil {
		return nil, errors.Wrap(err, "list questions by units")
	}
	return questions, nil
}

// applyDifficultyDistribution narrows candidates to limit with a 30% easy /
// 20% hard / rest medium mix. When the pool already fits, it is returned
// whole in randomized order. Shortfalls in any bucket are filled from the
// not-yet-picked remainder, so the result only comes up short when the pool
// itself does.
func (s *Service) applyDifficultyDistribution(candidates []*store.Question, limit int) []*store.Question {
	if limit <= 0 || len(candidates) <= limit {
		out := append([]*store.Question{}, candidates...)
		s.shuffle(out)
		return out
	}

	var easy, medium, hard []*store.Question
	for _, question := range candidates {
		switch {
		case question.Difficulty <= 2:
			easy = append(easy, question)
		case question.Difficulty == 3:
			medium = append(medium, question)
		default:
			hard = append(hard, question)
		}
	}
	s.shuffle(easy)
	s.shuffle(medium)
	s.shuffle(hard)

	easyTake := min(int(math.Round(float64(limit)*0.3)), len(easy))
	hardTake := min(int(math.Round(float64(limit)*0.2)), len(hard))
	mediumTake := min(limit-easyTake-hardTake, len(medium))

	selected := make([]*store.Question, 0, limit)
	picked := make(map[int32]bool, limit)
	take := func(bucket []*store.Question, n int) {
		for _, question := range bucket[:n] {
			selected = append(selected, question)
			picked[question.ID] = true
		}
	}
	take(easy, easyTake)
	take(hard, hardTake)
	take(medium, mediumTake)

	if len(selected) < limit {
		for _, question := range candidates {
			if picked[question.ID] {
				continue
			}
			selected = append(selected, question)
			picked[question.ID] = true
			if len(selected) == limit {
				break
			}
		}
	}

	s.shuffle(selected)
	return selected
}
