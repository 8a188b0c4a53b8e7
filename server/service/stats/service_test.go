package stats

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pathlight/pathlight/store"
)

type fakeStore struct {
	stats  map[int32]*store.QuestionStat
	nextID int32
}

func newFakeStore() *fakeStore {
	return &fakeStore{stats: map[int32]*store.QuestionStat{}}
}

func (f *fakeStore) get(questionID int32) *store.QuestionStat {
	stat, ok := f.stats[questionID]
	if !ok {
		f.nextID++
		stat = &store.QuestionStat{ID: f.nextID, QuestionID: questionID}
		f.stats[questionID] = stat
	}
	return stat
}

func (f *fakeStore) RecordQuestionResponse(_ context.Context, record *store.RecordQuestionResponse) (*store.QuestionStat, error) {
	stat := f.get(record.QuestionID)
	n := stat.TimesAsked
	stat.AvgTimeSeconds = (stat.AvgTimeSeconds*float64(n) + record.TimeSeconds) / float64(n+1)
	stat.TimesAsked = n + 1
	if record.Correct {
		stat.TimesCorrect++
	}
	stat.SuccessRate = float64(stat.TimesCorrect) / float64(stat.TimesAsked)
	ts := record.NowTs
	stat.LastAskedTs = &ts
	copied := *stat
	return &copied, nil
}

func (f *fakeStore) RecordQuestionFeedShow(_ context.Context, record *store.RecordQuestionFeedShow) (*store.QuestionStat, error) {
	stat := f.get(record.QuestionID)
	stat.FeedShowCount++
	ts := record.NowTs
	stat.LastShownInFeedTs = &ts
	copied := *stat
	return &copied, nil
}

func (f *fakeStore) ListQuestionStats(_ context.Context, find *store.FindQuestionStat) ([]*store.QuestionStat, error) {
	list := []*store.QuestionStat{}
	for _, stat := range f.stats {
		if find.QuestionIDs != nil {
			found := false
			for _, id := range find.QuestionIDs {
				if id == stat.QuestionID {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		if find.NotShownSinceTs != nil {
			if stat.LastShownInFeedTs != nil && *stat.LastShownInFeedTs >= *find.NotShownSinceTs {
				continue
			}
		}
		if find.MinTimesAsked != nil && stat.TimesAsked < *find.MinTimesAsked {
			continue
		}
		copied := *stat
		list = append(list, &copied)
	}
	switch find.OrderBy {
	case store.QuestionStatOrderFeedShowCountAsc:
		sort.Slice(list, func(i, j int) bool { return list[i].FeedShowCount < list[j].FeedShowCount })
	case store.QuestionStatOrderSuccessRateAsc:
		sort.Slice(list, func(i, j int) bool { return list[i].SuccessRate < list[j].SuccessRate })
	case store.QuestionStatOrderSuccessRateDesc:
		sort.Slice(list, func(i, j int) bool { return list[i].SuccessRate > list[j].SuccessRate })
	}
	if find.Limit != nil && len(list) > *find.Limit {
		list = list[:*find.Limit]
	}
	return list, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRecordResponseRollingAverage(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewServiceWithClock(newFakeStore(), fixedClock(now))

	stat, err := s.RecordResponse(ctx, 1, true, 10)
	require.NoError(t, err)
	require.Equal(t, 1, stat.TimesAsked)
	require.InDelta(t, 10.0, stat.AvgTimeSeconds, 1e-9)
	require.InDelta(t, 1.0, stat.SuccessRate, 1e-9)

	stat, err = s.RecordResponse(ctx, 1, false, 20)
	require.NoError(t, err)
	require.Equal(t, 2, stat.TimesAsked)
	require.Equal(t, 1, stat.TimesCorrect)
	require.InDelta(t, 15.0, stat.AvgTimeSeconds, 1e-9)
	require.InDelta(t, 0.5, stat.SuccessRate, 1e-9)
	require.Equal(t, now.Unix(), *stat.LastAskedTs)
}

func TestRecordFeedShow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewServiceWithClock(newFakeStore(), fixedClock(now))

	stat, err := s.RecordFeedShow(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, 1, stat.FeedShowCount)
	require.Equal(t, now.Unix(), *stat.LastShownInFeedTs)

	stat, err = s.RecordFeedShow(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, 2, stat.FeedShowCount)
}

func TestGetNotRecentlyShownBoundary(t *testing.T) {
	ctx := context.Background()
	threshold := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	fs := newFakeStore()
	s := NewServiceWithClock(fs, fixedClock(threshold))

	// Shown strictly before the threshold: eligible.
	before := NewServiceWithClock(fs, fixedClock(threshold.Add(-time.Second)))
	_, err := before.RecordFeedShow(ctx, 1)
	require.NoError(t, err)
	// Shown exactly at the threshold: not eligible.
	_, err = s.RecordFeedShow(ctx, 2)
	require.NoError(t, err)
	// Never shown, but has a response record: eligible.
	_, err = s.RecordResponse(ctx, 3, true, 5)
	require.NoError(t, err)

	list, err := s.GetNotRecentlyShown(ctx, threshold, 0)
	require.NoError(t, err)
	ids := []int32{}
	for _, stat := range list {
		ids = append(ids, stat.QuestionID)
	}
	require.ElementsMatch(t, []int32{1, 3}, ids)
}

func TestGetNotRecentlyShownOrdersLeastShownFirst(t *testing.T) {
	ctx := context.Background()
	shownAt := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	fs := newFakeStore()
	s := NewServiceWithClock(fs, fixedClock(shownAt))

	for i := 0; i < 3; i++ {
		_, err := s.RecordFeedShow(ctx, 1)
		require.NoError(t, err)
	}
	_, err := s.RecordFeedShow(ctx, 2)
	require.NoError(t, err)

	list, err := s.GetNotRecentlyShown(ctx, shownAt.AddDate(0, 0, 1), 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, int32(2), list[0].QuestionID)
	require.Equal(t, int32(1), list[1].QuestionID)
}

func TestGetHardestAndEasiest(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewServiceWithClock(newFakeStore(), fixedClock(now))

	// q1: 0%, q2: 100%, q3: 50%.
	_, err := s.RecordResponse(ctx, 1, false, 5)
	require.NoError(t, err)
	_, err = s.RecordResponse(ctx, 2, true, 5)
	require.NoError(t, err)
	_, err = s.RecordResponse(ctx, 3, true, 5)
	require.NoError(t, err)
	_, err = s.RecordResponse(ctx, 3, false, 5)
	require.NoError(t, err)

	hardest, err := s.GetHardest(ctx, 2)
	require.NoError(t, err)
	require.Len(t, hardest, 2)
	require.Equal(t, int32(1), hardest[0].QuestionID)
	require.Equal(t, int32(3), hardest[1].QuestionID)

	easiest, err := s.GetEasiest(ctx, 1)
	require.NoError(t, err)
	require.Len(t, easiest, 1)
	require.Equal(t, int32(2), easiest[0].QuestionID)
}

func TestGetStatsEmptyInput(t *testing.T) {
	s := NewService(newFakeStore())
	list, err := s.GetStats(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, list)
}
