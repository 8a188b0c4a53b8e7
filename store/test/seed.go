package test

import (
	"context"
	"testing"

	"github.com/pathlight/pathlight/internal/util"
	"github.com/pathlight/pathlight/store"
)

// The engine never writes content rows, so tests seed them with plain SQL.

// SeedSubject inserts a subject and returns its id.
func SeedSubject(ctx context.Context, t *testing.T, ts *store.Store, name string) int32 {
	t.Helper()
	var id int32
	if err := ts.GetDriver().GetDB().QueryRowContext(ctx,
		"INSERT INTO subject (uid, name) VALUES (?, ?) RETURNING id",
		util.GenShortUUID(), name,
	).Scan(&id); err != nil {
		t.Fatalf("failed to seed subject: %v", err)
	}
	return id
}

// SeedUnit inserts a unit and returns its id.
func SeedUnit(ctx context.Context, t *testing.T, ts *store.Store, subjectID int32, name string, position int) int32 {
	t.Helper()
	var id int32
	if err := ts.GetDriver().GetDB().QueryRowContext(ctx,
		"INSERT INTO unit (subject_id, name, position) VALUES (?, ?, ?) RETURNING id",
		subjectID, name, position,
	).Scan(&id); err != nil {
		t.Fatalf("failed to seed unit: %v", err)
	}
	return id
}

// SeedLesson inserts a lesson and returns its id.
func SeedLesson(ctx context.Context, t *testing.T, ts *store.Store, unitID, subjectID int32, title string, position int) int32 {
	t.Helper()
	var id int32
	if err := ts.GetDriver().GetDB().QueryRowContext(ctx,
		"INSERT INTO lesson (unit_id, subject_id, title, position) VALUES (?, ?, ?, ?) RETURNING id",
		unitID, subjectID, title, position,
	).Scan(&id); err != nil {
		t.Fatalf("failed to seed lesson: %v", err)
	}
	return id
}

// SeedConcept inserts a concept and returns its id.
func SeedConcept(ctx context.Context, t *testing.T, ts *store.Store, subjectID int32, name string) int32 {
	t.Helper()
	var id int32
	if err := ts.GetDriver().GetDB().QueryRowContext(ctx,
		"INSERT INTO concept (subject_id, name) VALUES (?, ?) RETURNING id",
		subjectID, name,
	).Scan(&id); err != nil {
		t.Fatalf("failed to seed concept: %v", err)
	}
	return id
}

// SeedQuestion inserts a question with its concept links and returns its id.
func SeedQuestion(ctx context.Context, t *testing.T, ts *store.Store, question *store.Question) int32 {
	t.Helper()
	db := ts.GetDriver().GetDB()
	var id int32
	if err := db.QueryRowContext(ctx,
		`INSERT INTO question (subject_id, unit_id, lesson_id, type, difficulty, feed_eligible, prompt)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		question.SubjectID, question.UnitID, question.LessonID,
		question.Type, question.Difficulty, question.FeedEligible, question.Prompt,
	).Scan(&id); err != nil {
		t.Fatalf("failed to seed question: %v", err)
	}
	for _, conceptID := range question.ConceptIDs {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO question_concept (question_id, concept_id) VALUES (?, ?)",
			id, conceptID,
		); err != nil {
			t.Fatalf("failed to seed question concept: %v", err)
		}
	}
	question.ID = id
	return id
}

// SeedLessonProgress inserts a progress row.
func SeedLessonProgress(ctx context.Context, t *testing.T, ts *store.Store, lessonID, unitID, subjectID int32, completed bool, lastAccessedTs int64) {
	t.Helper()
	if _, err := ts.GetDriver().GetDB().ExecContext(ctx,
		`INSERT INTO lesson_progress (lesson_id, unit_id, subject_id, completed, last_accessed_ts)
		VALUES (?, ?, ?, ?, ?)`,
		lessonID, unitID, subjectID, completed, lastAccessedTs,
	); err != nil {
		t.Fatalf("failed to seed lesson progress: %v", err)
	}
}
