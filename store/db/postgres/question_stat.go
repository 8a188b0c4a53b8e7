package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pathlight/pathlight/store"
)

func (d *DB) RecordQuestionResponse(ctx context.Context, record *store.RecordQuestionResponse) (*store.QuestionStat, error) {
	correct := 0
	if record.Correct {
		correct = 1
	}
	// The rolling average and success rate are recomputed inside the UPSERT so
	// the whole read-modify-write is one atomic statement.
	stmt := `
		INSERT INTO question_stat (
			question_id, times_asked, times_correct, avg_time_seconds,
			success_rate, last_asked_ts
		)
		VALUES ($1, 1, $2, $3, $4, $5)
		ON CONFLICT (question_id) DO UPDATE SET
			avg_time_seconds = (question_stat.avg_time_seconds * question_stat.times_asked + EXCLUDED.avg_time_seconds) / (question_stat.times_asked + 1),
			times_asked = question_stat.times_asked + 1,
			times_correct = question_stat.times_correct + EXCLUDED.times_correct,
			success_rate = (question_stat.times_correct + EXCLUDED.times_correct)::DOUBLE PRECISION / (question_stat.times_asked + 1),
			last_asked_ts = EXCLUDED.last_asked_ts`
	if _, err := d.db.ExecContext(ctx, stmt,
		record.QuestionID, correct, record.TimeSeconds, float64(correct), record.NowTs,
	); err != nil {
		return nil, fmt.Errorf("failed to record question response: %w", err)
	}
	return d.getQuestionStat(ctx, record.QuestionID)
}

func (d *DB) RecordQuestionFeedShow(ctx context.Context, record *store.RecordQuestionFeedShow) (*store.QuestionStat, error) {
	stmt := `
		INSERT INTO question_stat (question_id, feed_show_count, last_shown_in_feed_ts)
		VALUES ($1, 1, $2)
		ON CONFLICT (question_id) DO UPDATE SET
			feed_show_count = question_stat.feed_show_count + 1,
			last_shown_in_feed_ts = EXCLUDED.last_shown_in_feed_ts`
	if _, err := d.db.ExecContext(ctx, stmt, record.QuestionID, record.NowTs); err != nil {
		return nil, fmt.Errorf("failed to record feed show: %w", err)
	}
	return d.getQuestionStat(ctx, record.QuestionID)
}

func (d *DB) getQuestionStat(ctx context.Context, questionID int32) (*store.QuestionStat, error) {
	list, err := d.ListQuestionStats(ctx, &store.FindQuestionStat{QuestionID: &questionID})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("question stat not found after upsert: %d", questionID)
	}
	return list[0], nil
}

func (d *DB) ListQuestionStats(ctx context.Context, find *store.FindQuestionStat) ([]*store.QuestionStat, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.QuestionID; v != nil {
		where, args = append(where, "question_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.QuestionIDs; len(v) > 0 {
		holders := []string{}
		for _, id := range v {
			holders = append(holders, placeholder(len(args)+1))
			args = append(args, id)
		}
		where = append(where, "question_id IN ("+strings.Join(holders, ", ")+")")
	}
	if v := find.NotShownSinceTs; v != nil {
		// Strictly before the threshold; never-shown questions qualify too.
		where, args = append(where, "(last_shown_in_feed_ts IS NULL OR last_shown_in_feed_ts < "+placeholder(len(args)+1)+")"), append(args, *v)
	}
	if v := find.MinTimesAsked; v != nil {
		where, args = append(where, "times_asked >= "+placeholder(len(args)+1)), append(args, *v)
	}

	orderBy := ""
	switch find.OrderBy {
	case store.QuestionStatOrderFeedShowCountAsc:
		orderBy = " ORDER BY feed_show_count ASC"
	case store.QuestionStatOrderSuccessRateAsc:
		orderBy = " ORDER BY success_rate ASC"
	case store.QuestionStatOrderSuccessRateDesc:
		orderBy = " ORDER BY success_rate DESC"
	}

	query := `
		SELECT
			id, question_id, times_asked, times_correct, avg_time_seconds,
			success_rate, last_shown_in_feed_ts, feed_show_count, last_asked_ts
		FROM question_stat
		WHERE ` + strings.Join(where, " AND ") + orderBy
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query question stats: %w", err)
	}
	defer rows.Close()

	list := make([]*store.QuestionStat, 0)
	for rows.Next() {
		var stat store.QuestionStat
		var lastShownTs, lastAskedTs sql.NullInt64
		if err := rows.Scan(
			&stat.ID,
			&stat.QuestionID,
			&stat.TimesAsked,
			&stat.TimesCorrect,
			&stat.AvgTimeSeconds,
			&stat.SuccessRate,
			&lastShownTs,
			&stat.FeedShowCount,
			&lastAskedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan question stat: %w", err)
		}
		if lastShownTs.Valid {
			stat.LastShownInFeedTs = &lastShownTs.Int64
		}
		if lastAskedTs.Valid {
			stat.LastAskedTs = &lastAskedTs.Int64
		}
		list = append(list, &stat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate question stats: %w", err)
	}
	return list, nil
}

func (d *DB) DeleteQuestionStat(ctx context.Context, delete *store.DeleteQuestionStat) error {
	stmt := `DELETE FROM question_stat WHERE question_id = ` + placeholder(1)
	if _, err := d.db.ExecContext(ctx, stmt, delete.QuestionID); err != nil {
		return fmt.Errorf("failed to delete question stat: %w", err)
	}
	return nil
}
