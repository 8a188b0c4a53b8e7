package recommend

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/pathlight/pathlight/server/service/selector"
	"github.com/pathlight/pathlight/store"
)

// BuildContext assembles the per-subject snapshot the generators score
// against. All reads are independent; results need not be mutually
// consistent with concurrent writes.
func (s *Service) BuildContext(ctx context.Context, subject *store.Subject) (*SubjectContext, error) {
	subjectID := subject.ID
	sc := &SubjectContext{Subject: subject}

	lessons, err := s.store.ListLessons(ctx, &store.FindLesson{SubjectID: &subjectID})
	if err != nil {
		return nil, errors.Wrap(err, "list lessons")
	}
	progress, err := s.store.ListLessonProgress(ctx, &store.FindLessonProgress{SubjectID: &subjectID})
	if err != nil {
		return nil, errors.Wrap(err, "list lesson progress")
	}
	progressByLesson := make(map[int32]*store.LessonProgress, len(progress))
	for _, row := range progress {
		progressByLesson[row.LessonID] = row
	}

	sc.TotalLessons = len(lessons)
	for _, lesson := range lessons {
		if row := progressByLesson[lesson.ID]; row != nil && row.Completed {
			sc.LessonsCompleted++
		}
	}
	if sc.TotalLessons > 0 {
		sc.PercentComplete = float64(sc.LessonsCompleted) / float64(sc.TotalLessons)
	}

	units, err := s.store.ListUnits(ctx, &store.FindUnit{SubjectID: &subjectID})
	if err != nil {
		return nil, errors.Wrap(err, "list units")
	}
	sc.Units = buildUnitProgress(units, lessons, progressByLesson)
	sc.ContinueTarget = findContinueTarget(lessons, progress)

	for _, row := range progress {
		if sc.LastStudiedTs == nil || row.LastAccessedTs > *sc.LastStudiedTs {
			ts := row.LastAccessedTs
			sc.LastStudiedTs = &ts
		}
	}

	if err := s.attachQuestionStats(ctx, subjectID, sc); err != nil {
		return nil, err
	}
	weak, err := s.selector.GetWeakConcepts(ctx, subjectID,
		selector.DefaultWeakMinAttempts, selector.DefaultWeakMaxSuccessRate)
	if err != nil {
		return nil, errors.Wrap(err, "get weak concepts")
	}
	sc.WeakConceptCount = len(weak)

	if err := s.attachSessionHistory(ctx, subjectID, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func buildUnitProgress(units []*store.Unit, lessons []*store.Lesson, progressByLesson map[int32]*store.LessonProgress) []*UnitProgress {
	byUnit := make(map[int32]*UnitProgress, len(units))
	out := make([]*UnitProgress, 0, len(units))
	for _, unit := range units {
		up := &UnitProgress{Unit: unit}
		byUnit[unit.ID] = up
		out = append(out, up)
	}
	for _, lesson := range lessons {
		up := byUnit[lesson.UnitID]
		if up == nil {
			continue
		}
		up.TotalLessons++
		if row := progressByLesson[lesson.ID]; row != nil && row.Completed {
			up.LessonsCompleted++
		}
	}
	for _, up := range out {
		if up.TotalLessons > 0 {
			up.PercentComplete = float64(up.LessonsCompleted) / float64(up.TotalLessons)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Unit.Position < out[j].Unit.Position
	})
	return out
}

// findContinueTarget returns the most recently accessed incomplete lesson.
func findContinueTarget(lessons []*store.Lesson, progress []*store.LessonProgress) *LessonTarget {
	lessonByID := make(map[int32]*store.Lesson, len(lessons))
	for _, lesson := range lessons {
		lessonByID[lesson.ID] = lesson
	}
	var target *LessonTarget
	for _, row := range progress {
		if row.Completed {
			continue
		}
		lesson := lessonByID[row.LessonID]
		if lesson == nil {
			continue
		}
		if target == nil || row.LastAccessedTs > target.LastAccessedTs {
			target = &LessonTarget{Lesson: lesson, LastAccessedTs: row.LastAccessedTs}
		}
	}
	return target
}

func (s *Service) attachQuestionStats(ctx context.Context, subjectID int32, sc *SubjectContext) error {
	questions, err := s.store.ListQuestions(ctx, &store.FindQuestion{SubjectID: &subjectID})
	if err != nil {
		return errors.Wrap(err, "list subject questions")
	}
	if len(questions) == 0 {
		return nil
	}
	questionIDs := make([]int32, 0, len(questions))
	for _, question := range questions {
		questionIDs = append(questionIDs, question.ID)
	}
	statList, err := s.stats.GetStats(ctx, questionIDs)
	if err != nil {
		return errors.Wrap(err, "get subject question stats")
	}

	totalAsked, totalCorrect := 0, 0
	for _, stat := range statList {
		totalAsked += stat.TimesAsked
		totalCorrect += stat.TimesCorrect
	}
	sc.TotalQuestionsAsked = totalAsked
	if totalAsked > 0 {
		rate := float64(totalCorrect) / float64(totalAsked)
		sc.AverageSuccessRate = &rate
	}
	return nil
}

func (s *Service) attachSessionHistory(ctx context.Context, subjectID int32, sc *SubjectContext) error {
	sessions, err := s.store.ListPracticeSessions(ctx, &store.FindPracticeSession{SubjectID: &subjectID})
	if err != nil {
		return errors.Wrap(err, "list practice sessions")
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	scoreSum, scoreCount := 0.0, 0
	studyDates := make(map[string]bool, len(sessions))
	for _, session := range sessions {
		started := time.Unix(session.StartedTs, 0).In(now.Location())
		if !started.Before(today) {
			sc.StudySessionsToday++
		}
		studyDates[started.Format("2006-01-02")] = true
		if session.Status == store.SessionCompleted && session.Score != nil {
			scoreSum += *session.Score
			scoreCount++
		}
	}
	if scoreCount > 0 {
		avg := scoreSum / float64(scoreCount)
		sc.AverageSessionScore = &avg
	}
	sc.StudyStreakDays = streakDays(studyDates, today)
	return nil
}

// streakDays counts consecutive study days ending today or yesterday.
func streakDays(studyDates map[string]bool, today time.Time) int {
	streak := 0
	checkDate := today
	if !studyDates[checkDate.Format("2006-01-02")] {
		checkDate = checkDate.AddDate(0, 0, -1)
		if !studyDates[checkDate.Format("2006-01-02")] {
			return 0
		}
	}
	for studyDates[checkDate.Format("2006-01-02")] {
		streak++
		checkDate = checkDate.AddDate(0, 0, -1)
	}
	return streak
}
