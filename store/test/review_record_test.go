package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pathlight/pathlight/store"
)

func TestUpsertReviewRecord(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Unix()

	created, err := ts.UpsertReviewRecord(ctx, &store.ReviewRecord{
		ConceptID:    1,
		FirstSeenTs:  now,
		NextReviewTs: now + 86400,
		ReviewCount:  1,
		CorrectCount: 1,
		IntervalDays: 1,
		EaseFactor:   2.5,
	})
	require.NoError(t, err)
	require.Greater(t, created.ID, int32(0))

	// Same concept again: the row is replaced, not duplicated.
	reviewed := now + 1000
	updated, err := ts.UpsertReviewRecord(ctx, &store.ReviewRecord{
		ConceptID:      1,
		FirstSeenTs:    now,
		LastReviewedTs: &reviewed,
		NextReviewTs:   now + 6*86400,
		ReviewCount:    2,
		CorrectCount:   2,
		IntervalDays:   6,
		EaseFactor:     2.6,
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)

	conceptID := int32(1)
	record, err := ts.GetReviewRecord(ctx, &store.FindReviewRecord{ConceptID: &conceptID})
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, 2, record.ReviewCount)
	require.Equal(t, 6, record.IntervalDays)
	require.InDelta(t, 2.6, record.EaseFactor, 1e-9)
	require.Equal(t, reviewed, *record.LastReviewedTs)
	require.Equal(t, now, record.FirstSeenTs)
}

func TestGetReviewRecordMissing(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	conceptID := int32(42)
	record, err := ts.GetReviewRecord(ctx, &store.FindReviewRecord{ConceptID: &conceptID})
	require.NoError(t, err)
	require.Nil(t, record)
}

func TestListReviewRecordsDueOrdering(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Unix()

	seed := func(conceptID int32, nextReviewTs int64) {
		_, err := ts.UpsertReviewRecord(ctx, &store.ReviewRecord{
			ConceptID:    conceptID,
			FirstSeenTs:  now - 86400,
			NextReviewTs: nextReviewTs,
			ReviewCount:  1,
			IntervalDays: 1,
			EaseFactor:   2.5,
		})
		require.NoError(t, err)
	}
	seed(1, now+3600)   // not due
	seed(2, now-7200)   // due, oldest
	seed(3, now)        // due exactly now
	seed(4, now-3600)   // due

	due, err := ts.ListReviewRecords(ctx, &store.FindReviewRecord{DueBeforeTs: &now})
	require.NoError(t, err)
	require.Len(t, due, 3)
	require.Equal(t, int32(2), due[0].ConceptID)
	require.Equal(t, int32(4), due[1].ConceptID)
	require.Equal(t, int32(3), due[2].ConceptID)

	limit := 1
	due, err = ts.ListReviewRecords(ctx, &store.FindReviewRecord{DueBeforeTs: &now, Limit: &limit})
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, int32(2), due[0].ConceptID)
}

func TestDeleteReviewRecord(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	now := time.Now().Unix()

	_, err := ts.UpsertReviewRecord(ctx, &store.ReviewRecord{
		ConceptID:    9,
		FirstSeenTs:  now,
		NextReviewTs: now,
		ReviewCount:  1,
		IntervalDays: 1,
		EaseFactor:   2.5,
	})
	require.NoError(t, err)

	require.NoError(t, ts.DeleteReviewRecord(ctx, &store.DeleteReviewRecord{ConceptID: 9}))
	conceptID := int32(9)
	record, err := ts.GetReviewRecord(ctx, &store.FindReviewRecord{ConceptID: &conceptID})
	require.NoError(t, err)
	require.Nil(t, record)
}
