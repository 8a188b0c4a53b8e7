package store

import (
	"context"
)

// LessonProgress records a student's relationship to one lesson: whether it
// is completed and when it was last opened. Written by the navigation layer,
// read here for pool eligibility and recommendation context.
type LessonProgress struct {
	ID             int32
	LessonID       int32
	UnitID         int32
	SubjectID      int32
	Completed      bool
	LastAccessedTs int64
}

// FindLessonProgress is the find condition for lesson progress rows.
type FindLessonProgress struct {
	LessonID  *int32
	UnitID    *int32
	SubjectID *int32
	Completed *bool

	AccessedAfterTs *int64
}

// ListLessonProgress lists progress rows, most recently accessed first.
func (s *Store) ListLessonProgress(ctx context.Context, find *FindLessonProgress) ([]*LessonProgress, error) {
	return s.driver.ListLessonProgress(ctx, find)
}
