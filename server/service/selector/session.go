package selector

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/pathlight/pathlight/internal/util"
	"github.com/pathlight/pathlight/store"
)

// CreateSessionRequest describes one practice-session generation request.
type CreateSessionRequest struct {
	SubjectID      int32
	GenerationType store.GenerationType
	// QuestionCount is the requested session size; 0 means the default.
	QuestionCount int

	// Strategy-specific filters.
	UnitID     *int32
	ConceptIDs []int32
	Filter     *QuestionFilter
}

// CreatePracticeSession assembles a question set with the requested strategy,
// balances it by difficulty, and persists the session with its ordered
// slots. A strategy that finds no candidates still creates a session, with
// zero questions; callers fall back to another strategy.
func (s *Service) CreatePracticeSession(ctx context.Context, request *CreateSessionRequest) (*store.PracticeSession, []*store.PracticeQuestion, error) {
	limit := request.QuestionCount
	if limit <= 0 {
		limit = defaultSessionQuestionCount
	}

	candidates, err := s.gatherCandidates(ctx, request)
	if err != nil {
		return nil, nil, err
	}
	// Strategies encode what they can in the query; the rest of the filter
	// is applied here.
	candidates = applyFilter(candidates, request.Filter)
	selected := s.applyDifficultyDistribution(candidates, limit)

	filters, err := encodeFilters(request)
	if err != nil {
		return nil, nil, err
	}
	create := &store.PracticeSession{
		UID:            util.GenUUID(),
		SubjectID:      request.SubjectID,
		GenerationType: request.GenerationType,
		QuestionCount:  len(selected),
		Status:         store.SessionActive,
		Filters:        filters,
		StartedTs:      s.now().Unix(),
	}
	slots := make([]*store.PracticeQuestion, 0, len(selected))
	for i, question := range selected {
		slots = append(slots, &store.PracticeQuestion{
			QuestionID: question.ID,
			Position:   i,
		})
	}

	session, err := s.store.CreatePracticeSession(ctx, create, slots)
	if err != nil {
		return nil, nil, errors.Wrap(err, "create practice session")
	}
	persisted, err := s.store.ListPracticeQuestions(ctx, &store.FindPracticeQuestion{SessionID: &session.ID})
	if err != nil {
		return nil, nil, errors.Wrap(err, "list created session slots")
	}
	return session, persisted, nil
}

func (s *Service) gatherCandidates(ctx context.Context, request *CreateSessionRequest) ([]*store.Question, error) {
	subjectID := request.SubjectID
	switch request.GenerationType {
	case store.GenerationByUnit:
		if request.UnitID == nil {
			return nil, nil
		}
		return s.store.ListQuestions(ctx, &store.FindQuestion{
			SubjectID: &subjectID,
			UnitIDs:   []int32{*request.UnitID},
		})
	case store.GenerationByConcept:
		if len(request.ConceptIDs) == 0 {
			return nil, nil
		}
		return s.store.ListQuestions(ctx, &store.FindQuestion{
			SubjectID:  &subjectID,
			ConceptIDs: request.ConceptIDs,
		})
	case store.GenerationByProgress:
		return s.progressPool(ctx, subjectID)
	case store.GenerationWeakAreas:
		weak, err := s.GetWeakConcepts(ctx, subjectID, DefaultWeakMinAttempts, DefaultWeakMaxSuccessRate)
		if err != nil {
			return nil, err
		}
		if len(weak) == 0 {
			return nil, nil
		}
		return s.store.ListQuestions(ctx, &store.FindQuestion{
			SubjectID:  &subjectID,
			ConceptIDs: weak,
		})
	case store.GenerationQuickReview:
		return s.store.ListQuestions(ctx, &store.FindQuestion{SubjectID: &subjectID})
	case store.GenerationByType:
		if request.Filter == nil || request.Filter.Type == nil {
			return nil, nil
		}
		return s.store.ListQuestions(ctx, &store.FindQuestion{
			SubjectID: &subjectID,
			Type:      request.Filter.Type,
		})
	}
	return nil, errors.Errorf("unknown generation type: %s", request.GenerationType)
}

func encodeFilters(request *CreateSessionRequest) (*string, error) {
	snapshot := map[string]any{}
	if request.UnitID != nil {
		snapshot["unitId"] = *request.UnitID
	}
	if len(request.ConceptIDs) > 0 {
		snapshot["conceptIds"] = request.ConceptIDs
	}
	if f := request.Filter; f != nil {
		if f.Type != nil {
			snapshot["type"] = *f.Type
		}
		if f.DifficultyMin != nil {
			snapshot["difficultyMin"] = *f.DifficultyMin
		}
		if f.DifficultyMax != nil {
			snapshot["difficultyMax"] = *f.DifficultyMax
		}
	}
	if len(snapshot) == 0 {
		return nil, nil
	}
	buf, err := json.Marshal(snapshot)
	if err != nil {
		return nil, errors.Wrap(err, "encode session filters")
	}
	encoded := string(buf)
	return &encoded, nil
}

// RecordAnswer marks one slot answered and rolls the result into the session
// counters. Answering an already-answered or skipped slot is a no-op.
func (s *Service) RecordAnswer(ctx context.Context, sessionID int32, questionID int32, answerIndex *int, correct bool) (*store.PracticeSession, error) {
	mu := &s.sessionLocks[uint32(sessionID)%uint32(len(s.sessionLocks))]
	mu.Lock()
	defer mu.Unlock()

	session, slot, err := s.getOpenSessionSlot(ctx, sessionID, questionID)
	if err != nil {
		return nil, err
	}
	if slot.Answered || slot.Skipped {
		return session, nil
	}

	answered := true
	answeredTs := s.now().Unix()
	if err := s.store.UpdatePracticeQuestion(ctx, &store.UpdatePracticeQuestion{
		ID:          slot.ID,
		Answered:    &answered,
		Correct:     &correct,
		AnswerIndex: answerIndex,
		AnsweredTs:  &answeredTs,
	}); err != nil {
		return nil, errors.Wrap(err, "update session slot")
	}

	answeredCount := session.AnsweredCount + 1
	correctCount := session.CorrectCount
	if correct {
		correctCount++
	}
	if err := s.store.UpdatePracticeSession(ctx, &store.UpdatePracticeSession{
		ID:            session.ID,
		AnsweredCount: &answeredCount,
		CorrectCount:  &correctCount,
	}); err != nil {
		return nil, errors.Wrap(err, "update session counters")
	}
	session.AnsweredCount = answeredCount
	session.CorrectCount = correctCount
	return session, nil
}

// SkipQuestion marks one slot skipped. Skips never count as answered; the
// completion score divides by the planned question count, so a skipped slot
// depresses the score the same as a wrong answer.
func (s *Service) SkipQuestion(ctx context.Context, sessionID int32, questionID int32) (*store.PracticeSession, error) {
	mu := &s.sessionLocks[uint32(sessionID)%uint32(len(s.sessionLocks))]
	mu.Lock()
	defer mu.Unlock()

	session, slot, err := s.getOpenSessionSlot(ctx, sessionID, questionID)
	if err != nil {
		return nil, err
	}
	if slot.Answered || slot.Skipped {
		return session, nil
	}

	skipped := true
	answeredTs := s.now().Unix()
	if err := s.store.UpdatePracticeQuestion(ctx, &store.UpdatePracticeQuestion{
		ID:         slot.ID,
		Skipped:    &skipped,
		AnsweredTs: &answeredTs,
	}); err != nil {
		return nil, errors.Wrap(err, "update session slot")
	}
	return session, nil
}

// AdvanceIndex moves the session cursor forward. Completed sessions are left
// untouched.
func (s *Service) AdvanceIndex(ctx context.Context, sessionID int32) (*store.PracticeSession, error) {
	mu := &s.sessionLocks[uint32(sessionID)%uint32(len(s.sessionLocks))]
	mu.Lock()
	defer mu.Unlock()

	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == store.SessionCompleted || session.Status == store.SessionAbandoned {
		return session, nil
	}

	next := session.CurrentIndex + 1
	if next > session.QuestionCount {
		next = session.QuestionCount
	}
	if err := s.store.UpdatePracticeSession(ctx, &store.UpdatePracticeSession{
		ID:           session.ID,
		CurrentIndex: &next,
	}); err != nil {
		return nil, errors.Wrap(err, "advance session index")
	}
	session.CurrentIndex = next
	return session, nil
}

// CompleteSession finalizes a session and computes its score as
// correctCount over the planned question count. Already-completed sessions
// are returned as-is.
func (s *Service) CompleteSession(ctx context.Context, sessionID int32) (*store.PracticeSession, error) {
	return s.finishSession(ctx, sessionID, store.SessionCompleted)
}

// AbandonSession closes a session without finishing it. The score is still
// recorded against the planned question count.
func (s *Service) AbandonSession(ctx context.Context, sessionID int32) (*store.PracticeSession, error) {
	return s.finishSession(ctx, sessionID, store.SessionAbandoned)
}

func (s *Service) finishSession(ctx context.Context, sessionID int32, status store.SessionStatus) (*store.PracticeSession, error) {
	mu := &s.sessionLocks[uint32(sessionID)%uint32(len(s.sessionLocks))]
	mu.Lock()
	defer mu.Unlock()

	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == store.SessionCompleted || session.Status == store.SessionAbandoned {
		return session, nil
	}

	score := 0.0
	if session.QuestionCount > 0 {
		score = float64(session.CorrectCount) / float64(session.QuestionCount) * 100
	}
	completedTs := s.now().Unix()
	if err := s.store.UpdatePracticeSession(ctx, &store.UpdatePracticeSession{
		ID:          session.ID,
		Status:      &status,
		Score:       &score,
		CompletedTs: &completedTs,
	}); err != nil {
		return nil, errors.Wrap(err, "finish session")
	}
	session.Status = status
	session.Score = &score
	session.CompletedTs = &completedTs
	return session, nil
}

func (s *Service) getSession(ctx context.Context, sessionID int32) (*store.PracticeSession, error) {
	session, err := s.store.GetPracticeSession(ctx, &store.FindPracticeSession{ID: &sessionID})
	if err != nil {
		return nil, errors.Wrap(err, "get practice session")
	}
	if session == nil {
		return nil, errors.Errorf("practice session not found: %d", sessionID)
	}
	return session, nil
}

func (s *Service) getOpenSessionSlot(ctx context.Context, sessionID int32, questionID int32) (*store.PracticeSession, *store.PracticeQuestion, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.Status == store.SessionCompleted || session.Status == store.SessionAbandoned {
		return nil, nil, errors.Errorf("practice session %d is already %s", sessionID, session.Status)
	}

	slots, err := s.store.ListPracticeQuestions(ctx, &store.FindPracticeQuestion{SessionID: &sessionID})
	if err != nil {
		return nil, nil, errors.Wrap(err, "list session slots")
	}
	for _, slot := range slots {
		if slot.QuestionID == questionID {
			return session, slot, nil
		}
	}
	return nil, nil, errors.Errorf("question %d is not part of session %d", questionID, sessionID)
}
