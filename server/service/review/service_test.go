package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pathlight/pathlight/store"
)

type fakeStore struct {
	records map[int32]*store.ReviewRecord
	nextID  int32
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[int32]*store.ReviewRecord{}}
}

func (f *fakeStore) GetReviewRecord(_ context.Context, find *store.FindReviewRecord) (*store.ReviewRecord, error) {
	if find.ConceptID == nil {
		return nil, nil
	}
	record, ok := f.records[*find.ConceptID]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (f *fakeStore) UpsertReviewRecord(_ context.Context, upsert *store.ReviewRecord) (*store.ReviewRecord, error) {
	if existing, ok := f.records[upsert.ConceptID]; ok {
		upsert.ID = existing.ID
	} else {
		f.nextID++
		upsert.ID = f.nextID
	}
	copied := *upsert
	f.records[upsert.ConceptID] = &copied
	return upsert, nil
}

func (f *fakeStore) ListReviewRecords(_ context.Context, find *store.FindReviewRecord) ([]*store.ReviewRecord, error) {
	list := []*store.ReviewRecord{}
	for _, record := range f.records {
		if find.DueBeforeTs != nil && record.NextReviewTs > *find.DueBeforeTs {
			continue
		}
		copied := *record
		list = append(list, &copied)
	}
	if find.Limit != nil && len(list) > *find.Limit {
		list = list[:*find.Limit]
	}
	return list, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRecordReviewFirstRating(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewServiceWithClock(newFakeStore(), fixedClock(now))

	record, err := s.RecordReview(ctx, 1, RatingGood)
	require.NoError(t, err)
	require.Equal(t, 1, record.IntervalDays)
	require.Equal(t, 1, record.ReviewCount)
	require.Equal(t, 1, record.CorrectCount)
	require.Equal(t, now.AddDate(0, 0, 1).Unix(), record.NextReviewTs)
	require.InDelta(t, 2.5, record.EaseFactor, 1e-9)
}

func TestRecordReviewSecondReviewYieldsSixDays(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, rating := range []Rating{RatingHard, RatingGood, RatingEasy} {
		fs := newFakeStore()
		svc := NewServiceWithClock(fs, fixedClock(now))
		_, err := svc.RecordReview(ctx, 7, RatingGood)
		require.NoError(t, err)
		record, err := svc.RecordReview(ctx, 7, rating)
		require.NoError(t, err)
		require.Equal(t, 6, record.IntervalDays, "rating %s", rating)
	}
}

func TestRecordReviewForgotResetsInterval(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	fs := newFakeStore()
	s := NewServiceWithClock(fs, fixedClock(now))

	for i := 0; i < 4; i++ {
		_, err := s.RecordReview(ctx, 3, RatingEasy)
		require.NoError(t, err)
	}
	require.Greater(t, fs.records[3].IntervalDays, 6)

	record, err := s.RecordReview(ctx, 3, RatingForgot)
	require.NoError(t, err)
	require.Equal(t, 1, record.IntervalDays)
	require.Equal(t, now.AddDate(0, 0, 1).Unix(), record.NextReviewTs)
}

func TestRecordReviewEaseNeverBelowFloor(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	fs := newFakeStore()
	s := NewServiceWithClock(fs, fixedClock(now))

	for i := 0; i < 20; i++ {
		record, err := s.RecordReview(ctx, 5, RatingForgot)
		require.NoError(t, err)
		require.GreaterOrEqual(t, record.EaseFactor, MinEaseFactor)
	}
	require.InDelta(t, MinEaseFactor, fs.records[5].EaseFactor, 1e-9)
}

func TestRecordReviewEaseAdjustments(t *testing.T) {
	// From the 2.5 default: EASY +0.10, GOOD 0, HARD -0.14.
	cases := []struct {
		rating Rating
		want   float64
	}{
		{RatingEasy, 2.6},
		{RatingGood, 2.5},
		{RatingHard, 2.36},
	}
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, tc := range cases {
		s := NewServiceWithClock(newFakeStore(), fixedClock(now))
		record, err := s.RecordReview(ctx, 1, tc.rating)
		require.NoError(t, err)
		require.InDelta(t, tc.want, record.EaseFactor, 1e-9, "rating %s", tc.rating)
	}
}

func TestRecordReviewIntervalGrowth(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	fs := newFakeStore()
	s := NewServiceWithClock(fs, fixedClock(now))

	// 1 -> 6 -> floor(6 * ease) with GOOD ratings keeping ease at 2.5.
	_, err := s.RecordReview(ctx, 9, RatingGood)
	require.NoError(t, err)
	_, err = s.RecordReview(ctx, 9, RatingGood)
	require.NoError(t, err)
	record, err := s.RecordReview(ctx, 9, RatingGood)
	require.NoError(t, err)
	require.Equal(t, 15, record.IntervalDays)
}

func TestRecordReviewUnknownRating(t *testing.T) {
	s := NewServiceWithClock(newFakeStore(), fixedClock(time.Now()))
	_, err := s.RecordReview(context.Background(), 1, Rating("MEH"))
	require.Error(t, err)
}

func TestGetDue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	fs := newFakeStore()
	s := NewServiceWithClock(fs, fixedClock(now))

	_, err := s.RecordReview(ctx, 1, RatingGood)
	require.NoError(t, err)
	_, err = s.RecordReview(ctx, 2, RatingGood)
	require.NoError(t, err)

	due, err := s.GetDue(ctx, now, 0)
	require.NoError(t, err)
	require.Empty(t, due)

	due, err = s.GetDue(ctx, now.AddDate(0, 0, 2), 0)
	require.NoError(t, err)
	require.Len(t, due, 2)
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	fs := newFakeStore()

	yesterday := now.AddDate(0, 0, -1).Unix()
	twoDaysAgo := now.AddDate(0, 0, -2).Unix()
	fs.records[1] = &store.ReviewRecord{
		ID: 1, ConceptID: 1, FirstSeenTs: twoDaysAgo, LastReviewedTs: &yesterday,
		NextReviewTs: now.Unix() - 60, ReviewCount: 2, CorrectCount: 2,
		IntervalDays: 6, EaseFactor: 2.5,
	}
	nowTs := now.Unix()
	fs.records[2] = &store.ReviewRecord{
		ID: 2, ConceptID: 2, FirstSeenTs: twoDaysAgo, LastReviewedTs: &twoDaysAgo,
		NextReviewTs: now.AddDate(0, 0, 40).Unix(), ReviewCount: 5, CorrectCount: 5,
		IntervalDays: 42, EaseFactor: 2.7,
	}
	fs.records[3] = &store.ReviewRecord{
		ID: 3, ConceptID: 3, FirstSeenTs: nowTs, LastReviewedTs: &nowTs,
		NextReviewTs: now.AddDate(0, 0, 1).Unix(), ReviewCount: 1, CorrectCount: 1,
		IntervalDays: 1, EaseFactor: 2.5,
	}

	s := NewServiceWithClock(fs, fixedClock(now))
	summary, err := s.Summary(ctx, now)
	require.NoError(t, err)
	require.Equal(t, 3, summary.TotalConcepts)
	require.Equal(t, 1, summary.DueNow)
	require.Equal(t, 1, summary.ReviewedToday)
	require.Equal(t, 1, summary.NewConcepts)
	require.Equal(t, 1, summary.MasteredConcepts)
	require.Equal(t, 8, summary.TotalReviews)
}

func TestCalculateStreak(t *testing.T) {
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	day := func(offset int) string {
		return today.AddDate(0, 0, offset).Format("2006-01-02")
	}

	require.Equal(t, 0, calculateStreak(map[string]bool{}, today))
	require.Equal(t, 1, calculateStreak(map[string]bool{day(0): true}, today))
	// Streak survives a not-yet-reviewed today.
	require.Equal(t, 3, calculateStreak(map[string]bool{
		day(-1): true, day(-2): true, day(-3): true,
	}, today))
	// Gap two days ago breaks the streak.
	require.Equal(t, 2, calculateStreak(map[string]bool{
		day(0): true, day(-1): true, day(-3): true,
	}, today))
}
