package selector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pathlight/pathlight/store"
)

func question(id int32, subjectID int32, unitID int32, difficulty int, conceptIDs ...int32) *store.Question {
	return &store.Question{
		ID:           id,
		SubjectID:    subjectID,
		UnitID:       unitID,
		Type:         store.QuestionMultipleChoice,
		Difficulty:   difficulty,
		FeedEligible: true,
		ConceptIDs:   conceptIDs,
	}
}

func TestApplyDifficultyDistributionSmallPoolIsPermutation(t *testing.T) {
	s := newTestService(newFakeStore(), time.Now())

	candidates := []*store.Question{
		question(1, 1, 1, 1),
		question(2, 1, 1, 3),
		question(3, 1, 1, 5),
	}
	out := s.applyDifficultyDistribution(candidates, 10)
	require.Len(t, out, 3)

	ids := []int32{}
	for _, q := range out {
		ids = append(ids, q.ID)
	}
	require.ElementsMatch(t, []int32{1, 2, 3}, ids)
}

func TestApplyDifficultyDistributionMix(t *testing.T) {
	s := newTestService(newFakeStore(), time.Now())

	candidates := []*store.Question{}
	var id int32
	for i := 0; i < 10; i++ {
		id++
		candidates = append(candidates, question(id, 1, 1, 1))
	}
	for i := 0; i < 10; i++ {
		id++
		candidates = append(candidates, question(id, 1, 1, 3))
	}
	for i := 0; i < 10; i++ {
		id++
		candidates = append(candidates, question(id, 1, 1, 5))
	}

	out := s.applyDifficultyDistribution(candidates, 10)
	require.Len(t, out, 10)

	counts := map[string]int{}
	seen := map[int32]bool{}
	for _, q := range out {
		require.False(t, seen[q.ID], "duplicate question %d", q.ID)
		seen[q.ID] = true
		switch {
		case q.Difficulty <= 2:
			counts["easy"]++
		case q.Difficulty == 3:
			counts["medium"]++
		default:
			counts["hard"]++
		}
	}
	require.Equal(t, 3, counts["easy"])
	require.Equal(t, 2, counts["hard"])
	require.Equal(t, 5, counts["medium"])
}

func TestApplyDifficultyDistributionFillsFromLeftovers(t *testing.T) {
	s := newTestService(newFakeStore(), time.Now())

	// No medium questions at all: the medium share must be filled from the
	// remaining easy/hard pool without duplicates.
	candidates := []*store.Question{}
	var id int32
	for i := 0; i < 10; i++ {
		id++
		candidates = append(candidates, question(id, 1, 1, 1))
	}
	for i := 0; i < 10; i++ {
		id++
		candidates = append(candidates, question(id, 1, 1, 5))
	}

	out := s.applyDifficultyDistribution(candidates, 10)
	require.Len(t, out, 10)
	seen := map[int32]bool{}
	for _, q := range out {
		require.False(t, seen[q.ID])
		seen[q.ID] = true
	}
}

func TestApplyDifficultyDistributionZeroCandidates(t *testing.T) {
	s := newTestService(newFakeStore(), time.Now())
	require.Empty(t, s.applyDifficultyDistribution(nil, 10))
}

func TestGetQuestionsByProgressUnitEligibility(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// Unit 1: all lessons completed. Unit 2: one lesson in progress.
	// Unit 3: untouched.
	f.lessons = []*store.Lesson{
		{ID: 1, UnitID: 1, SubjectID: 1},
		{ID: 2, UnitID: 1, SubjectID: 1},
		{ID: 3, UnitID: 2, SubjectID: 1},
		{ID: 4, UnitID: 3, SubjectID: 1},
	}
	f.progress = []*store.LessonProgress{
		{ID: 1, LessonID: 1, UnitID: 1, SubjectID: 1, Completed: true, LastAccessedTs: now.Unix()},
		{ID: 2, LessonID: 2, UnitID: 1, SubjectID: 1, Completed: true, LastAccessedTs: now.Unix()},
		{ID: 3, LessonID: 3, UnitID: 2, SubjectID: 1, Completed: false, LastAccessedTs: now.Unix()},
	}
	f.questions = []*store.Question{
		question(1, 1, 1, 3),
		question(2, 1, 2, 3),
		question(3, 1, 3, 3),
	}

	s := newTestService(f, now)
	out, err := s.GetQuestionsByProgress(ctx, 1, 10, nil)
	require.NoError(t, err)

	ids := []int32{}
	for _, q := range out {
		ids = append(ids, q.ID)
	}
	require.ElementsMatch(t, []int32{1, 2}, ids)
}

func TestGetQuestionsByProgressNoEligibleUnits(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	f.lessons = []*store.Lesson{{ID: 1, UnitID: 1, SubjectID: 1}}
	f.questions = []*store.Question{question(1, 1, 1, 3)}

	s := newTestService(f, time.Now())
	out, err := s.GetQuestionsByProgress(ctx, 1, 10, nil)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestGetQuestionsByProgressAppliesFilter(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f.lessons = []*store.Lesson{{ID: 1, UnitID: 1, SubjectID: 1}}
	f.progress = []*store.LessonProgress{
		{ID: 1, LessonID: 1, UnitID: 1, SubjectID: 1, Completed: false, LastAccessedTs: now.Unix()},
	}
	flashcard := question(1, 1, 1, 3)
	flashcard.Type = store.QuestionFlashcard
	f.questions = []*store.Question{flashcard, question(2, 1, 1, 3)}

	s := newTestService(f, now)
	questionType := store.QuestionFlashcard
	out, err := s.GetQuestionsByProgress(ctx, 1, 10, &QuestionFilter{Type: &questionType})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, int32(1), out[0].ID)
}
