package store

import (
	"context"
	"fmt"
)

// The content read models below belong to the authoring/import side of the
// platform. The engine never writes them; it only needs by-id, by-subject,
// by-unit and by-concept lookups.

// Subject is a top-level area of study.
type Subject struct {
	ID   int32
	UID  string
	Name string
}

// Unit is an ordered chapter inside a subject.
type Unit struct {
	ID        int32
	SubjectID int32
	Name      string
	Position  int
}

// Lesson is an ordered piece of content inside a unit.
type Lesson struct {
	ID        int32
	UnitID    int32
	SubjectID int32
	Title     string
	Position  int
}

// Concept is a named idea questions can be tagged with.
type Concept struct {
	ID        int32
	SubjectID int32
	Name      string
}

// QuestionType classifies how a question is presented.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTrueFalse      QuestionType = "TRUE_FALSE"
	QuestionFillBlank      QuestionType = "FILL_BLANK"
	QuestionFlashcard      QuestionType = "FLASHCARD"
)

// Question is the read model for a quiz question.
type Question struct {
	ID        int32
	SubjectID int32
	UnitID    int32
	LessonID  *int32
	Type      QuestionType
	// Difficulty is 1 (easiest) to 5 (hardest).
	Difficulty   int
	FeedEligible bool
	Prompt       string
	ConceptIDs   []int32
}

// FindSubject is the find condition for subjects.
type FindSubject struct {
	ID  *int32
	UID *string
}

// FindUnit is the find condition for units.
type FindUnit struct {
	ID        *int32
	SubjectID *int32
}

// FindLesson is the find condition for lessons.
type FindLesson struct {
	ID        *int32
	UnitID    *int32
	SubjectID *int32
}

// FindConcept is the find condition for concepts.
type FindConcept struct {
	IDs       []int32
	SubjectID *int32
}

// FindQuestion is the find condition for questions.
type FindQuestion struct {
	IDs           []int32
	SubjectID     *int32
	UnitIDs       []int32
	ConceptIDs    []int32
	Type          *QuestionType
	DifficultyMin *int
	DifficultyMax *int
	FeedEligible  *bool
	Limit         *int
}

// ListSubjects lists subjects. The full list is cached since subjects change
// rarely and every recommendation request walks them.
func (s *Store) ListSubjects(ctx context.Context, find *FindSubject) ([]*Subject, error) {
	if find.ID == nil && find.UID == nil {
		if v, ok := s.subjectCache.Get("subjects"); ok {
			return v.([]*Subject), nil
		}
		list, err := s.driver.ListSubjects(ctx, find)
		if err != nil {
			return nil, err
		}
		s.subjectCache.Set("subjects", list)
		return list, nil
	}
	return s.driver.ListSubjects(ctx, find)
}

// GetSubject gets a subject. Returns nil when absent.
func (s *Store) GetSubject(ctx context.Context, find *FindSubject) (*Subject, error) {
	list, err := s.driver.ListSubjects(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) ListUnits(ctx context.Context, find *FindUnit) ([]*Unit, error) {
	return s.driver.ListUnits(ctx, find)
}

func (s *Store) ListLessons(ctx context.Context, find *FindLesson) ([]*Lesson, error) {
	return s.driver.ListLessons(ctx, find)
}

func (s *Store) ListConcepts(ctx context.Context, find *FindConcept) ([]*Concept, error) {
	return s.driver.ListConcepts(ctx, find)
}

func (s *Store) ListQuestions(ctx context.Context, find *FindQuestion) ([]*Question, error) {
	return s.driver.ListQuestions(ctx, find)
}

// GetQuestion gets a question by id, through the question cache.
func (s *Store) GetQuestion(ctx context.Context, id int32) (*Question, error) {
	key := fmt.Sprintf("question:%d", id)
	if v, ok := s.questionCache.Get(key); ok {
		return v.(*Question), nil
	}
	list, err := s.driver.ListQuestions(ctx, &FindQuestion{IDs: []int32{id}})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	s.questionCache.Set(key, list[0])
	return list[0], nil
}
