package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pathlight/pathlight/store"
)

func TestListContent(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	subjectID := SeedSubject(ctx, t, ts, "Biology")
	unit1 := SeedUnit(ctx, t, ts, subjectID, "Cells", 1)
	unit2 := SeedUnit(ctx, t, ts, subjectID, "Genetics", 2)
	lesson1 := SeedLesson(ctx, t, ts, unit1, subjectID, "Cell Structure", 1)
	SeedLesson(ctx, t, ts, unit2, subjectID, "Mendel", 1)

	subject, err := ts.GetSubject(ctx, &store.FindSubject{ID: &subjectID})
	require.NoError(t, err)
	require.NotNil(t, subject)
	require.Equal(t, "Biology", subject.Name)

	subjects, err := ts.ListSubjects(ctx, &store.FindSubject{})
	require.NoError(t, err)
	require.Len(t, subjects, 1)

	units, err := ts.ListUnits(ctx, &store.FindUnit{SubjectID: &subjectID})
	require.NoError(t, err)
	require.Len(t, units, 2)
	require.Equal(t, "Cells", units[0].Name)

	lessons, err := ts.ListLessons(ctx, &store.FindLesson{UnitID: &unit1})
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	require.Equal(t, lesson1, lessons[0].ID)
}

func TestListQuestionsFilters(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	subjectID := SeedSubject(ctx, t, ts, "Biology")
	unit1 := SeedUnit(ctx, t, ts, subjectID, "Cells", 1)
	unit2 := SeedUnit(ctx, t, ts, subjectID, "Genetics", 2)
	mitosis := SeedConcept(ctx, t, ts, subjectID, "Mitosis")
	alleles := SeedConcept(ctx, t, ts, subjectID, "Alleles")

	q1 := SeedQuestion(ctx, t, ts, &store.Question{
		SubjectID: subjectID, UnitID: unit1, Type: store.QuestionMultipleChoice,
		Difficulty: 2, FeedEligible: true, Prompt: "What phase follows prophase?",
		ConceptIDs: []int32{mitosis},
	})
	q2 := SeedQuestion(ctx, t, ts, &store.Question{
		SubjectID: subjectID, UnitID: unit2, Type: store.QuestionTrueFalse,
		Difficulty: 4, FeedEligible: false, Prompt: "Dominant alleles are always common.",
		ConceptIDs: []int32{alleles},
	})
	q3 := SeedQuestion(ctx, t, ts, &store.Question{
		SubjectID: subjectID, UnitID: unit2, Type: store.QuestionMultipleChoice,
		Difficulty: 3, FeedEligible: true, Prompt: "Which cross yields 3:1?",
		ConceptIDs: []int32{alleles, mitosis},
	})

	all, err := ts.ListQuestions(ctx, &store.FindQuestion{SubjectID: &subjectID})
	require.NoError(t, err)
	require.Len(t, all, 3)

	// Concept links come back attached.
	byID := map[int32]*store.Question{}
	for _, question := range all {
		byID[question.ID] = question
	}
	require.ElementsMatch(t, []int32{mitosis}, byID[q1].ConceptIDs)
	require.ElementsMatch(t, []int32{alleles, mitosis}, byID[q3].ConceptIDs)

	byUnit, err := ts.ListQuestions(ctx, &store.FindQuestion{UnitIDs: []int32{unit2}})
	require.NoError(t, err)
	require.Len(t, byUnit, 2)

	byConcept, err := ts.ListQuestions(ctx, &store.FindQuestion{ConceptIDs: []int32{mitosis}})
	require.NoError(t, err)
	ids := []int32{}
	for _, question := range byConcept {
		ids = append(ids, question.ID)
	}
	require.ElementsMatch(t, []int32{q1, q3}, ids)

	questionType := store.QuestionTrueFalse
	byType, err := ts.ListQuestions(ctx, &store.FindQuestion{Type: &questionType})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	require.Equal(t, q2, byType[0].ID)

	difficultyMin, difficultyMax := 3, 5
	byDifficulty, err := ts.ListQuestions(ctx, &store.FindQuestion{
		DifficultyMin: &difficultyMin,
		DifficultyMax: &difficultyMax,
	})
	require.NoError(t, err)
	require.Len(t, byDifficulty, 2)

	feedEligible := true
	eligible, err := ts.ListQuestions(ctx, &store.FindQuestion{FeedEligible: &feedEligible})
	require.NoError(t, err)
	require.Len(t, eligible, 2)

	question, err := ts.GetQuestion(ctx, q1)
	require.NoError(t, err)
	require.NotNil(t, question)
	require.Equal(t, "What phase follows prophase?", question.Prompt)
}

func TestListLessonProgress(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Unix()

	subjectID := SeedSubject(ctx, t, ts, "Biology")
	unitID := SeedUnit(ctx, t, ts, subjectID, "Cells", 1)
	lesson1 := SeedLesson(ctx, t, ts, unitID, subjectID, "Cell Structure", 1)
	lesson2 := SeedLesson(ctx, t, ts, unitID, subjectID, "Organelles", 2)

	SeedLessonProgress(ctx, t, ts, lesson1, unitID, subjectID, true, now-3600)
	SeedLessonProgress(ctx, t, ts, lesson2, unitID, subjectID, false, now)

	list, err := ts.ListLessonProgress(ctx, &store.FindLessonProgress{SubjectID: &subjectID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Most recently accessed first.
	require.Equal(t, lesson2, list[0].LessonID)

	completed := true
	done, err := ts.ListLessonProgress(ctx, &store.FindLessonProgress{
		SubjectID: &subjectID,
		Completed: &completed,
	})
	require.NoError(t, err)
	require.Len(t, done, 1)
	require.Equal(t, lesson1, done[0].LessonID)
	require.True(t, done[0].Completed)
}
