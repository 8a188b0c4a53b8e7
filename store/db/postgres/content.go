package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pathlight/pathlight/store"
)

func (d *DB) ListSubjects(ctx context.Context, find *store.FindSubject) ([]*store.Subject, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *v)
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, uid, name FROM subject
		WHERE `+strings.Join(where, " AND ")+` ORDER BY id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query subjects: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Subject, 0)
	for rows.Next() {
		var subject store.Subject
		if err := rows.Scan(&subject.ID, &subject.UID, &subject.Name); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		list = append(list, &subject)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subjects: %w", err)
	}
	return list, nil
}

func (d *DB) ListUnits(ctx context.Context, find *store.FindUnit) ([]*store.Unit, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.SubjectID; v != nil {
		where, args = append(where, "subject_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, subject_id, name, position FROM unit
		WHERE `+strings.Join(where, " AND ")+` ORDER BY position ASC, id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Unit, 0)
	for rows.Next() {
		var unit store.Unit
		if err := rows.Scan(&unit.ID, &unit.SubjectID, &unit.Name, &unit.Position); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		list = append(list, &unit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate units: %w", err)
	}
	return list, nil
}

func (d *DB) ListLessons(ctx context.Context, find *store.FindLesson) ([]*store.Lesson, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UnitID; v != nil {
		where, args = append(where, "unit_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.SubjectID; v != nil {
		where, args = append(where, "subject_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, unit_id, subject_id, title, position FROM lesson
		WHERE `+strings.Join(where, " AND ")+` ORDER BY position ASC, id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Lesson, 0)
	for rows.Next() {
		var lesson store.Lesson
		if err := rows.Scan(&lesson.ID, &lesson.UnitID, &lesson.SubjectID, &lesson.Title, &lesson.Position); err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		list = append(list, &lesson)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lessons: %w", err)
	}
	return list, nil
}

func (d *DB) ListConcepts(ctx context.Context, find *store.FindConcept) ([]*store.Concept, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.IDs; len(v) > 0 {
		holders := []string{}
		for _, id := range v {
			holders = append(holders, placeholder(len(args)+1))
			args = append(args, id)
		}
		where = append(where, "id IN ("+strings.Join(holders, ", ")+")")
	}
	if v := find.SubjectID; v != nil {
		where, args = append(where, "subject_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, subject_id, name FROM concept
		WHERE `+strings.Join(where, " AND ")+` ORDER BY id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query concepts: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Concept, 0)
	for rows.Next() {
		var concept store.Concept
		if err := rows.Scan(&concept.ID, &concept.SubjectID, &concept.Name); err != nil {
			return nil, fmt.Errorf("failed to scan concept: %w", err)
		}
		list = append(list, &concept)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate concepts: %w", err)
	}
	return list, nil
}

func (d *DB) ListQuestions(ctx context.Context, find *store.FindQuestion) ([]*store.Question, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.IDs; len(v) > 0 {
		holders := []string{}
		for _, id := range v {
			holders = append(holders, placeholder(len(args)+1))
			args = append(args, id)
		}
		where = append(where, "question.id IN ("+strings.Join(holders, ", ")+")")
	}
	if v := find.SubjectID; v != nil {
		where, args = append(where, "question.subject_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UnitIDs; len(v) > 0 {
		holders := []string{}
		for _, id := range v {
			holders = append(holders, placeholder(len(args)+1))
			args = append(args, id)
		}
		where = append(where, "question.unit_id IN ("+strings.Join(holders, ", ")+")")
	}
	if v := find.ConceptIDs; len(v) > 0 {
		holders := []string{}
		for _, id := range v {
			holders = append(holders, placeholder(len(args)+1))
			args = append(args, id)
		}
		where = append(where, `EXISTS (
			SELECT 1 FROM question_concept
			WHERE question_concept.question_id = question.id
			AND question_concept.concept_id IN (`+strings.Join(holders, ", ")+`))`)
	}
	if v := find.Type; v != nil {
		where, args = append(where, "question.type = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.DifficultyMin; v != nil {
		where, args = append(where, "question.difficulty >= "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.DifficultyMax; v != nil {
		where, args = append(where, "question.difficulty <= "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.FeedEligible; v != nil {
		where, args = append(where, "question.feed_eligible = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, subject_id, unit_id, lesson_id, type, difficulty, feed_eligible, prompt
		FROM question
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id ASC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Question, 0)
	for rows.Next() {
		var question store.Question
		var lessonID sql.NullInt64
		if err := rows.Scan(
			&question.ID,
			&question.SubjectID,
			&question.UnitID,
			&lessonID,
			&question.Type,
			&question.Difficulty,
			&question.FeedEligible,
			&question.Prompt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		if lessonID.Valid {
			id := int32(lessonID.Int64)
			question.LessonID = &id
		}
		list = append(list, &question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate questions: %w", err)
	}

	if err := d.attachConceptIDs(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// attachConceptIDs loads the concept tags for a question batch in one query.
func (d *DB) attachConceptIDs(ctx context.Context, questions []*store.Question) error {
	if len(questions) == 0 {
		return nil
	}
	byID := make(map[int32]*store.Question, len(questions))
	holders, args := []string{}, []any{}
	for _, question := range questions {
		byID[question.ID] = question
		holders = append(holders, placeholder(len(args)+1))
		args = append(args, question.ID)
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT question_id, concept_id FROM question_concept
		WHERE question_id IN (`+strings.Join(holders, ", ")+`) ORDER BY concept_id ASC`, args...)
	if err != nil {
		return fmt.Errorf("failed to query question concepts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var questionID, conceptID int32
		if err := rows.Scan(&questionID, &conceptID); err != nil {
			return fmt.Errorf("failed to scan question concept: %w", err)
		}
		if question, ok := byID[questionID]; ok {
			question.ConceptIDs = append(question.ConceptIDs, conceptID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate question concepts: %w", err)
	}
	return nil
}

func (d *DB) ListLessonProgress(ctx context.Context, find *store.FindLessonProgress) ([]*store.LessonProgress, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.LessonID; v != nil {
		where, args = append(where, "lesson_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UnitID; v != nil {
		where, args = append(where, "unit_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.SubjectID; v != nil {
		where, args = append(where, "subject_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Completed; v != nil {
		where, args = append(where, "completed = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.AccessedAfterTs; v != nil {
		where, args = append(where, "last_accessed_ts >= "+placeholder(len(args)+1)), append(args, *v)
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, lesson_id, unit_id, subject_id, completed, last_accessed_ts
		FROM lesson_progress
		WHERE `+strings.Join(where, " AND ")+` ORDER BY last_accessed_ts DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lesson progress: %w", err)
	}
	defer rows.Close()

	list := make([]*store.LessonProgress, 0)
	for rows.Next() {
		var progress store.LessonProgress
		if err := rows.Scan(
			&progress.ID,
			&progress.LessonID,
			&progress.UnitID,
			&progress.SubjectID,
			&progress.Completed,
			&progress.LastAccessedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan lesson progress: %w", err)
		}
		list = append(list, &progress)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lesson progress: %w", err)
	}
	return list, nil
}
