package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pathlight/pathlight/store"
)

func (d *DB) CreatePracticeSession(ctx context.Context, create *store.PracticeSession, questions []*store.PracticeQuestion) (*store.PracticeSession, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt := `
		INSERT INTO practice_session (
			uid, subject_id, generation_type, question_count, current_index,
			correct_count, answered_count, status, score, filters,
			started_ts, completed_ts
		)
		VALUES (` + placeholders(12) + `)
		RETURNING id`
	if err := tx.QueryRowContext(ctx, stmt,
		create.UID,
		create.SubjectID,
		create.GenerationType,
		create.QuestionCount,
		create.CurrentIndex,
		create.CorrectCount,
		create.AnsweredCount,
		create.Status,
		create.Score,
		create.Filters,
		create.StartedTs,
		create.CompletedTs,
	).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create practice session: %w", err)
	}

	for _, question := range questions {
		question.SessionID = create.ID
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO practice_question (session_id, question_id, position)
			VALUES (`+placeholders(3)+`)
			RETURNING id`,
			question.SessionID, question.QuestionID, question.Position,
		).Scan(&question.ID); err != nil {
			return nil, fmt.Errorf("failed to create practice question slot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit practice session: %w", err)
	}
	return create, nil
}

func (d *DB) ListPracticeSessions(ctx context.Context, find *store.FindPracticeSession) ([]*store.PracticeSession, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.SubjectID; v != nil {
		where, args = append(where, "subject_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "status = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.StartedAfterTs; v != nil {
		where, args = append(where, "started_ts >= "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, uid, subject_id, generation_type, question_count, current_index,
			correct_count, answered_count, status, score, filters,
			started_ts, completed_ts
		FROM practice_session
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY started_ts DESC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query practice sessions: %w", err)
	}
	defer rows.Close()

	list := make([]*store.PracticeSession, 0)
	for rows.Next() {
		var session store.PracticeSession
		var score sql.NullFloat64
		var filters sql.NullString
		var completedTs sql.NullInt64
		if err := rows.Scan(
			&session.ID,
			&session.UID,
			&session.SubjectID,
			&session.GenerationType,
			&session.QuestionCount,
			&session.CurrentIndex,
			&session.CorrectCount,
			&session.AnsweredCount,
			&session.Status,
			&score,
			&filters,
			&session.StartedTs,
			&completedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan practice session: %w", err)
		}
		if score.Valid {
			session.Score = &score.Float64
		}
		if filters.Valid {
			session.Filters = &filters.String
		}
		if completedTs.Valid {
			session.CompletedTs = &completedTs.Int64
		}
		list = append(list, &session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate practice sessions: %w", err)
	}
	return list, nil
}

func (d *DB) UpdatePracticeSession(ctx context.Context, update *store.UpdatePracticeSession) error {
	set, args := []string{}, []any{}

	if v := update.CurrentIndex; v != nil {
		set, args = append(set, "current_index = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.CorrectCount; v != nil {
		set, args = append(set, "correct_count = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.AnsweredCount; v != nil {
		set, args = append(set, "answered_count = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Status; v != nil {
		set, args = append(set, "status = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Score; v != nil {
		set, args = append(set, "score = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.CompletedTs; v != nil {
		set, args = append(set, "completed_ts = "+placeholder(len(args)+1)), append(args, *v)
	}

	if len(set) == 0 {
		return nil
	}
	args = append(args, update.ID)

	stmt := `UPDATE practice_session SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to update practice session: %w", err)
	}
	return nil
}

func (d *DB) ListPracticeQuestions(ctx context.Context, find *store.FindPracticeQuestion) ([]*store.PracticeQuestion, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.SessionID; v != nil {
		where, args = append(where, "session_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.QuestionID; v != nil {
		where, args = append(where, "question_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, session_id, question_id, position, answered, correct, skipped, answer_index, answered_ts
		FROM practice_question
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY position ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query practice questions: %w", err)
	}
	defer rows.Close()

	list := make([]*store.PracticeQuestion, 0)
	for rows.Next() {
		var question store.PracticeQuestion
		var answerIndex, answeredTs sql.NullInt64
		if err := rows.Scan(
			&question.ID,
			&question.SessionID,
			&question.QuestionID,
			&question.Position,
			&question.Answered,
			&question.Correct,
			&question.Skipped,
			&answerIndex,
			&answeredTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan practice question: %w", err)
		}
		if answerIndex.Valid {
			index := int(answerIndex.Int64)
			question.AnswerIndex = &index
		}
		if answeredTs.Valid {
			question.AnsweredTs = &answeredTs.Int64
		}
		list = append(list, &question)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate practice questions: %w", err)
	}
	return list, nil
}

func (d *DB) UpdatePracticeQuestion(ctx context.Context, update *store.UpdatePracticeQuestion) error {
	set, args := []string{}, []any{}

	if v := update.Answered; v != nil {
		set, args = append(set, "answered = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Correct; v != nil {
		set, args = append(set, "correct = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Skipped; v != nil {
		set, args = append(set, "skipped = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.AnswerIndex; v != nil {
		set, args = append(set, "answer_index = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.AnsweredTs; v != nil {
		set, args = append(set, "answered_ts = "+placeholder(len(args)+1)), append(args, *v)
	}

	if len(set) == 0 {
		return nil
	}
	args = append(args, update.ID)

	stmt := `UPDATE practice_question SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to update practice question: %w", err)
	}
	return nil
}
