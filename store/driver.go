package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// ReviewRecord model related methods.
	UpsertReviewRecord(ctx context.Context, upsert *ReviewRecord) (*ReviewRecord, error)
	ListReviewRecords(ctx context.Context, find *FindReviewRecord) ([]*ReviewRecord, error)
	DeleteReviewRecord(ctx context.Context, delete *DeleteReviewRecord) error

	// QuestionStat model related methods.
	// Response and feed-show mutations are single-statement upserts so two
	// concurrent writers on the same question cannot lose an update.
	RecordQuestionResponse(ctx context.Context, record *RecordQuestionResponse) (*QuestionStat, error)
	RecordQuestionFeedShow(ctx context.Context, record *RecordQuestionFeedShow) (*QuestionStat, error)
	ListQuestionStats(ctx context.Context, find *FindQuestionStat) ([]*QuestionStat, error)
	DeleteQuestionStat(ctx context.Context, delete *DeleteQuestionStat) error

	// PracticeSession model related methods. Creation inserts the session and
	// its ordered question slots in one transaction.
	CreatePracticeSession(ctx context.Context, create *PracticeSession, questions []*PracticeQuestion) (*PracticeSession, error)
	ListPracticeSessions(ctx context.Context, find *FindPracticeSession) ([]*PracticeSession, error)
	UpdatePracticeSession(ctx context.Context, update *UpdatePracticeSession) error
	ListPracticeQuestions(ctx context.Context, find *FindPracticeQuestion) ([]*PracticeQuestion, error)
	UpdatePracticeQuestion(ctx context.Context, update *UpdatePracticeQuestion) error

	// Content read models (authored elsewhere; the engine only reads them).
	ListSubjects(ctx context.Context, find *FindSubject) ([]*Subject, error)
	ListUnits(ctx context.Context, find *FindUnit) ([]*Unit, error)
	ListLessons(ctx context.Context, find *FindLesson) ([]*Lesson, error)
	ListConcepts(ctx context.Context, find *FindConcept) ([]*Concept, error)
	ListQuestions(ctx context.Context, find *FindQuestion) ([]*Question, error)

	// LessonProgress read model related methods.
	ListLessonProgress(ctx context.Context, find *FindLessonProgress) ([]*LessonProgress, error)
}
