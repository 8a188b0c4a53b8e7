package store

import (
	"context"
)

// SessionStatus is the lifecycle state of a practice session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "ACTIVE"
	SessionPaused    SessionStatus = "PAUSED"
	SessionCompleted SessionStatus = "COMPLETED"
	SessionAbandoned SessionStatus = "ABANDONED"
)

// GenerationType selects the strategy used to assemble a session's questions.
type GenerationType string

const (
	GenerationByUnit      GenerationType = "BY_UNIT"
	GenerationByConcept   GenerationType = "BY_CONCEPT"
	GenerationByProgress  GenerationType = "BY_PROGRESS"
	GenerationWeakAreas   GenerationType = "WEAK_AREAS"
	GenerationQuickReview GenerationType = "QUICK_REVIEW"
	GenerationByType      GenerationType = "BY_TYPE"
)

// PracticeSession is the object representing one bounded practice run.
type PracticeSession struct {
	ID             int32
	UID            string
	SubjectID      int32
	GenerationType GenerationType
	// QuestionCount is the planned number of questions; the completion score
	// divides by this, not by the answered count.
	QuestionCount int
	CurrentIndex  int
	CorrectCount  int
	AnsweredCount int
	Status        SessionStatus
	Score         *float64
	// Filters is a JSON snapshot of the generation filters.
	Filters     *string
	StartedTs   int64
	CompletedTs *int64
}

// PracticeQuestion is one ordered slot inside a session.
type PracticeQuestion struct {
	ID         int32
	SessionID  int32
	QuestionID int32
	Position   int
	Answered   bool
	Correct    bool
	Skipped    bool
	// AnswerIndex is the option the student picked, if any.
	AnswerIndex *int
	AnsweredTs  *int64
}

// FindPracticeSession is the find condition for sessions.
type FindPracticeSession struct {
	ID        *int32
	UID       *string
	SubjectID *int32
	Status    *SessionStatus

	StartedAfterTs *int64

	Limit *int
}

// UpdatePracticeSession is the update request for a session.
type UpdatePracticeSession struct {
	ID            int32
	CurrentIndex  *int
	CorrectCount  *int
	AnsweredCount *int
	Status        *SessionStatus
	Score         *float64
	CompletedTs   *int64
}

// FindPracticeQuestion is the find condition for session slots.
type FindPracticeQuestion struct {
	ID         *int32
	SessionID  *int32
	QuestionID *int32
}

// UpdatePracticeQuestion is the update request for one slot.
type UpdatePracticeQuestion struct {
	ID          int32
	Answered    *bool
	Correct     *bool
	Skipped     *bool
	AnswerIndex *int
	AnsweredTs  *int64
}

// CreatePracticeSession creates a session together with its ordered slots.
func (s *Store) CreatePracticeSession(ctx context.Context, create *PracticeSession, questions []*PracticeQuestion) (*PracticeSession, error) {
	return s.driver.CreatePracticeSession(ctx, create, questions)
}

// ListPracticeSessions lists sessions, newest first.
func (s *Store) ListPracticeSessions(ctx context.Context, find *FindPracticeSession) ([]*PracticeSession, error) {
	return s.driver.ListPracticeSessions(ctx, find)
}

// GetPracticeSession gets a session. Returns nil when absent.
func (s *Store) GetPracticeSession(ctx context.Context, find *FindPracticeSession) (*PracticeSession, error) {
	list, err := s.driver.ListPracticeSessions(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdatePracticeSession updates a session.
func (s *Store) UpdatePracticeSession(ctx context.Context, update *UpdatePracticeSession) error {
	return s.driver.UpdatePracticeSession(ctx, update)
}

// ListPracticeQuestions lists a session's slots ordered by position.
func (s *Store) ListPracticeQuestions(ctx context.Context, find *FindPracticeQuestion) ([]*PracticeQuestion, error) {
	return s.driver.ListPracticeQuestions(ctx, find)
}

// UpdatePracticeQuestion updates one slot.
func (s *Store) UpdatePracticeQuestion(ctx context.Context, update *UpdatePracticeQuestion) error {
	return s.driver.UpdatePracticeQuestion(ctx, update)
}
