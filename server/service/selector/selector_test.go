package selector

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/pathlight/pathlight/server/service/stats"
	"github.com/pathlight/pathlight/store"
)

// fakeStore implements both the selector and stats storage ports from plain
// in-memory slices.
type fakeStore struct {
	questions []*store.Question
	lessons   []*store.Lesson
	progress  []*store.LessonProgress

	stats map[int32]*store.QuestionStat

	sessions   []*store.PracticeSession
	slots      []*store.PracticeQuestion
	nextID     int32
	nextSlotID int32
	nextStatID int32
}

func newFakeStore() *fakeStore {
	return &fakeStore{stats: map[int32]*store.QuestionStat{}}
}

func (f *fakeStore) ListQuestions(_ context.Context, find *store.FindQuestion) ([]*store.Question, error) {
	list := []*store.Question{}
	for _, question := range f.questions {
		if len(find.IDs) > 0 && !containsID(find.IDs, question.ID) {
			continue
		}
		if find.SubjectID != nil && question.SubjectID != *find.SubjectID {
			continue
		}
		if len(find.UnitIDs) > 0 && !containsID(find.UnitIDs, question.UnitID) {
			continue
		}
		if len(find.ConceptIDs) > 0 && !intersects(find.ConceptIDs, question.ConceptIDs) {
			continue
		}
		if find.Type != nil && question.Type != *find.Type {
			continue
		}
		if find.DifficultyMin != nil && question.Difficulty < *find.DifficultyMin {
			continue
		}
		if find.DifficultyMax != nil && question.Difficulty > *find.DifficultyMax {
			continue
		}
		if find.FeedEligible != nil && question.FeedEligible != *find.FeedEligible {
			continue
		}
		list = append(list, question)
	}
	if find.Limit != nil && len(list) > *find.Limit {
		list = list[:*find.Limit]
	}
	return list, nil
}

func (f *fakeStore) ListLessons(_ context.Context, find *store.FindLesson) ([]*store.Lesson, error) {
	list := []*store.Lesson{}
	for _, lesson := range f.lessons {
		if find.SubjectID != nil && lesson.SubjectID != *find.SubjectID {
			continue
		}
		if find.UnitID != nil && lesson.UnitID != *find.UnitID {
			continue
		}
		list = append(list, lesson)
	}
	return list, nil
}

func (f *fakeStore) ListLessonProgress(_ context.Context, find *store.FindLessonProgress) ([]*store.LessonProgress, error) {
	list := []*store.LessonProgress{}
	for _, row := range f.progress {
		if find.SubjectID != nil && row.SubjectID != *find.SubjectID {
			continue
		}
		if find.Completed != nil && row.Completed != *find.Completed {
			continue
		}
		if find.AccessedAfterTs != nil && row.LastAccessedTs <= *find.AccessedAfterTs {
			continue
		}
		list = append(list, row)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].LastAccessedTs > list[j].LastAccessedTs })
	return list, nil
}

func (f *fakeStore) RecordQuestionResponse(_ context.Context, record *store.RecordQuestionResponse) (*store.QuestionStat, error) {
	stat := f.getStat(record.QuestionID)
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
	stat := f.getStat(record.QuestionID)
	stat.FeedShowCount++
	ts := record.NowTs
	stat.LastShownInFeedTs = &ts
	copied := *stat
	return &copied, nil
}

func (f *fakeStore) getStat(questionID int32) *store.QuestionStat {
	stat, ok := f.stats[questionID]
	if !ok {
		f.nextStatID++
		stat = &store.QuestionStat{ID: f.nextStatID, QuestionID: questionID}
		f.stats[questionID] = stat
	}
	return stat
}

func (f *fakeStore) ListQuestionStats(_ context.Context, find *store.FindQuestionStat) ([]*store.QuestionStat, error) {
	list := []*store.QuestionStat{}
	for _, stat := range f.stats {
		if find.QuestionID != nil && stat.QuestionID != *find.QuestionID {
			continue
		}
		if len(find.QuestionIDs) > 0 && !containsID(find.QuestionIDs, stat.QuestionID) {
			continue
		}
		if find.NotShownSinceTs != nil &&
			stat.LastShownInFeedTs != nil && *stat.LastShownInFeedTs >= *find.NotShownSinceTs {
			continue
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
		sort.SliceStable(list, func(i, j int) bool { return list[i].SuccessRate < list[j].SuccessRate })
	case store.QuestionStatOrderSuccessRateDesc:
		sort.SliceStable(list, func(i, j int) bool { return list[i].SuccessRate > list[j].SuccessRate })
	}
	if find.Limit != nil && len(list) > *find.Limit {
		list = list[:*find.Limit]
	}
	return list, nil
}

func (f *fakeStore) CreatePracticeSession(_ context.Context, create *store.PracticeSession, questions []*store.PracticeQuestion) (*store.PracticeSession, error) {
	f.nextID++
	create.ID = f.nextID
	copied := *create
	f.sessions = append(f.sessions, &copied)
	for _, slot := range questions {
		f.nextSlotID++
		slot.ID = f.nextSlotID
		slot.SessionID = create.ID
		slotCopy := *slot
		f.slots = append(f.slots, &slotCopy)
	}
	return create, nil
}

func (f *fakeStore) GetPracticeSession(_ context.Context, find *store.FindPracticeSession) (*store.PracticeSession, error) {
	for _, session := range f.sessions {
		if find.ID != nil && session.ID != *find.ID {
			continue
		}
		if find.UID != nil && session.UID != *find.UID {
			continue
		}
		copied := *session
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStore) UpdatePracticeSession(_ context.Context, update *store.UpdatePracticeSession) error {
	for _, session := range f.sessions {
		if session.ID != update.ID {
			continue
		}
		if update.CurrentIndex != nil {
			session.CurrentIndex = *update.CurrentIndex
		}
		if update.CorrectCount != nil {
			session.CorrectCount = *update.CorrectCount
		}
		if update.AnsweredCount != nil {
			session.AnsweredCount = *update.AnsweredCount
		}
		if update.Status != nil {
			session.Status = *update.Status
		}
		if update.Score != nil {
			session.Score = update.Score
		}
		if update.CompletedTs != nil {
			session.CompletedTs = update.CompletedTs
		}
	}
	return nil
}

func (f *fakeStore) ListPracticeQuestions(_ context.Context, find *store.FindPracticeQuestion) ([]*store.PracticeQuestion, error) {
	list := []*store.PracticeQuestion{}
	for _, slot := range f.slots {
		if find.SessionID != nil && slot.SessionID != *find.SessionID {
			continue
		}
		if find.QuestionID != nil && slot.QuestionID != *find.QuestionID {
			continue
		}
		copied := *slot
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Position < list[j].Position })
	return list, nil
}

func (f *fakeStore) UpdatePracticeQuestion(_ context.Context, update *store.UpdatePracticeQuestion) error {
	for _, slot := range f.slots {
		if slot.ID != update.ID {
			continue
		}
		if update.Answered != nil {
			slot.Answered = *update.Answered
		}
		if update.Correct != nil {
			slot.Correct = *update.Correct
		}
		if update.Skipped != nil {
			slot.Skipped = *update.Skipped
		}
		if update.AnswerIndex != nil {
			slot.AnswerIndex = update.AnswerIndex
		}
		if update.AnsweredTs != nil {
			slot.AnsweredTs = update.AnsweredTs
		}
	}
	return nil
}

func containsID(ids []int32, id int32) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func intersects(a, b []int32) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// newTestService wires a selector over the fake with a seeded random source
// and a fixed clock.
func newTestService(f *fakeStore, now time.Time) *Service {
	clock := func() time.Time { return now }
	return &Service{
		store: f,
		stats: stats.NewServiceWithClock(f, clock),
		now:   clock,
		rng:   rand.New(rand.NewSource(1)),
	}
}
