package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pathlight/pathlight/store"
)

func (d *DB) UpsertReviewRecord(ctx context.Context, upsert *store.ReviewRecord) (*store.ReviewRecord, error) {
	stmt := `
		INSERT INTO review_record (
			concept_id, first_seen_ts, last_reviewed_ts, next_review_ts,
			review_count, correct_count, interval_days, ease_factor
		)
		VALUES (` + placeholders(8) + `)
		ON CONFLICT (concept_id) DO UPDATE SET
			last_reviewed_ts = EXCLUDED.last_reviewed_ts,
			next_review_ts = EXCLUDED.next_review_ts,
			review_count = EXCLUDED.review_count,
			correct_count = EXCLUDED.correct_count,
			interval_days = EXCLUDED.interval_days,
			ease_factor = EXCLUDED.ease_factor
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt,
		upsert.ConceptID,
		upsert.FirstSeenTs,
		upsert.LastReviewedTs,
		upsert.NextReviewTs,
		upsert.ReviewCount,
		upsert.CorrectCount,
		upsert.IntervalDays,
		upsert.EaseFactor,
	).Scan(&upsert.ID); err != nil {
		return nil, fmt.Errorf("failed to upsert review record: %w", err)
	}
	return upsert, nil
}

func (d *DB) ListReviewRecords(ctx context.Context, find *store.FindReviewRecord) ([]*store.ReviewRecord, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ConceptID; v != nil {
		where, args = append(where, "concept_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.ConceptIDs; len(v) > 0 {
		holders := []string{}
		for _, id := range v {
			holders = append(holders, placeholder(len(args)+1))
			args = append(args, id)
		}
		where = append(where, "concept_id IN ("+strings.Join(holders, ", ")+")")
	}
	if v := find.DueBeforeTs; v != nil {
		where, args = append(where, "next_review_ts <= "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, concept_id, first_seen_ts, last_reviewed_ts, next_review_ts,
			review_count, correct_count, interval_days, ease_factor
		FROM review_record
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY next_review_ts ASC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query review records: %w", err)
	}
	defer rows.Close()

	list := make([]*store.ReviewRecord, 0)
	for rows.Next() {
		var record store.ReviewRecord
		var lastReviewedTs sql.NullInt64
		if err := rows.Scan(
			&record.ID,
			&record.ConceptID,
			&record.FirstSeenTs,
			&lastReviewedTs,
			&record.NextReviewTs,
			&record.ReviewCount,
			&record.CorrectCount,
			&record.IntervalDays,
			&record.EaseFactor,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review record: %w", err)
		}
		if lastReviewedTs.Valid {
			record.LastReviewedTs = &lastReviewedTs.Int64
		}
		list = append(list, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate review records: %w", err)
	}
	return list, nil
}

func (d *DB) DeleteReviewRecord(ctx context.Context, delete *store.DeleteReviewRecord) error {
	stmt := `DELETE FROM review_record WHERE concept_id = ` + placeholder(1)
	if _, err := d.db.ExecContext(ctx, stmt, delete.ConceptID); err != nil {
		return fmt.Errorf("failed to delete review record: %w", err)
	}
	return nil
}
