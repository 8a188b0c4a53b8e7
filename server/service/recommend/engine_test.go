package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pathlight/pathlight/server/service/selector"
	"github.com/pathlight/pathlight/server/service/stats"
	"github.com/pathlight/pathlight/store"
	storetest "github.com/pathlight/pathlight/store/test"
)

func newEngine(t *testing.T, ts *store.Store) *Service {
	t.Helper()
	statsService := stats.NewService(ts)
	selectorService := selector.NewService(ts, statsService)
	engine, err := NewService(ts, statsService, selectorService, DefaultConfig())
	require.NoError(t, err)
	return engine
}

func TestNewServiceRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTotal = 0
	_, err := NewService(nil, nil, nil, cfg)
	require.Error(t, err)
}

func TestGetTopRecommendationsEndToEnd(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)
	now := time.Now()

	// Subject A: in progress, with a weak concept.
	bioID := storetest.SeedSubject(ctx, t, ts, "Biology")
	bioUnit := storetest.SeedUnit(ctx, t, ts, bioID, "Cells", 1)
	bioLesson1 := storetest.SeedLesson(ctx, t, ts, bioUnit, bioID, "Cell Structure", 1)
	bioLesson2 := storetest.SeedLesson(ctx, t, ts, bioUnit, bioID, "Organelles", 2)
	storetest.SeedLessonProgress(ctx, t, ts, bioLesson1, bioUnit, bioID, true, now.Add(-48*time.Hour).Unix())
	storetest.SeedLessonProgress(ctx, t, ts, bioLesson2, bioUnit, bioID, false, now.Add(-time.Hour).Unix())

	mitosis := storetest.SeedConcept(ctx, t, ts, bioID, "Mitosis")
	hardQuestion := storetest.SeedQuestion(ctx, t, ts, &store.Question{
		SubjectID: bioID, UnitID: bioUnit, Type: store.QuestionMultipleChoice,
		Difficulty: 3, FeedEligible: true, Prompt: "Which phase?",
		ConceptIDs: []int32{mitosis},
	})
	for i := 0; i < 6; i++ {
		_, err := ts.RecordQuestionResponse(ctx, &store.RecordQuestionResponse{
			QuestionID: hardQuestion, Correct: i == 0, TimeSeconds: 10, NowTs: now.Unix(),
		})
		require.NoError(t, err)
	}

	// Subject B: untouched, gets the start-new-unit fallback.
	chemID := storetest.SeedSubject(ctx, t, ts, "Chemistry")
	chemUnit := storetest.SeedUnit(ctx, t, ts, chemID, "Atoms", 1)
	storetest.SeedLesson(ctx, t, ts, chemUnit, chemID, "Atomic Structure", 1)

	engine := newEngine(t, ts)
	recommendations, err := engine.GetTopRecommendations(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, recommendations)
	require.LessOrEqual(t, len(recommendations), engine.config.MaxTotal)

	perSubject := map[int32]int{}
	types := map[Type]bool{}
	for i, rec := range recommendations {
		perSubject[rec.Subject.ID]++
		types[rec.Recommendation.Type] = true
		require.NotEmpty(t, rec.Reason)
		if i > 0 {
			require.GreaterOrEqual(t, recommendations[i-1].Score, rec.Score)
		}
	}
	for subjectID, count := range perSubject {
		require.LessOrEqual(t, count, engine.config.MaxPerSubject, "subject %d", subjectID)
	}
	require.True(t, types[TypeContinueLesson] || types[TypeReviewWeakConcept])
	require.True(t, types[TypeStartNewUnit])
}

func TestGetTopRecommendationsHonorsLimit(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)
	now := time.Now()

	for _, name := range []string{"Biology", "Chemistry", "Physics"} {
		subjectID := storetest.SeedSubject(ctx, t, ts, name)
		unitID := storetest.SeedUnit(ctx, t, ts, subjectID, "Unit 1", 1)
		lessonID := storetest.SeedLesson(ctx, t, ts, unitID, subjectID, "Lesson 1", 1)
		storetest.SeedLessonProgress(ctx, t, ts, lessonID, unitID, subjectID, false, now.Add(-time.Hour).Unix())
	}

	engine := newEngine(t, ts)
	recommendations, err := engine.GetTopRecommendations(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recommendations, 2)
}

func TestBuildContext(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)
	now := time.Now()

	subjectID := storetest.SeedSubject(ctx, t, ts, "Biology")
	unitID := storetest.SeedUnit(ctx, t, ts, subjectID, "Cells", 1)
	lesson1 := storetest.SeedLesson(ctx, t, ts, unitID, subjectID, "Cell Structure", 1)
	lesson2 := storetest.SeedLesson(ctx, t, ts, unitID, subjectID, "Organelles", 2)
	lastAccessed := now.Add(-time.Hour).Unix()
	storetest.SeedLessonProgress(ctx, t, ts, lesson1, unitID, subjectID, true, now.Add(-24*time.Hour).Unix())
	storetest.SeedLessonProgress(ctx, t, ts, lesson2, unitID, subjectID, false, lastAccessed)

	questionID := storetest.SeedQuestion(ctx, t, ts, &store.Question{
		SubjectID: subjectID, UnitID: unitID, Type: store.QuestionMultipleChoice,
		Difficulty: 3, FeedEligible: true, Prompt: "Which organelle?",
	})
	_, err := ts.RecordQuestionResponse(ctx, &store.RecordQuestionResponse{
		QuestionID: questionID, Correct: true, TimeSeconds: 8, NowTs: now.Unix(),
	})
	require.NoError(t, err)

	engine := newEngine(t, ts)
	subject, err := ts.GetSubject(ctx, &store.FindSubject{ID: &subjectID})
	require.NoError(t, err)

	sc, err := engine.BuildContext(ctx, subject)
	require.NoError(t, err)
	require.Equal(t, 2, sc.TotalLessons)
	require.Equal(t, 1, sc.LessonsCompleted)
	require.InDelta(t, 0.5, sc.PercentComplete, 1e-9)
	require.Equal(t, 1, sc.TotalQuestionsAsked)
	require.NotNil(t, sc.AverageSuccessRate)
	require.InDelta(t, 1.0, *sc.AverageSuccessRate, 1e-9)
	require.NotNil(t, sc.ContinueTarget)
	require.Equal(t, lesson2, sc.ContinueTarget.Lesson.ID)
	require.NotNil(t, sc.LastStudiedTs)
	require.Equal(t, lastAccessed, *sc.LastStudiedTs)
	require.Len(t, sc.Units, 1)
	require.InDelta(t, 0.5, sc.Units[0].PercentComplete, 1e-9)
}
