package grade

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classtrack/core"
)

// Grade is a student's score on an assignment. A nil Score means ungraded.
type Grade struct {
	ID            int       `json:"id"`
	StudentID     int       `json:"studentId"`
	AssignmentID  int       `json:"assignmentId"`
	Score         *float64  `json:"score"`
	SubmittedDate time.Time `json:"submittedDate"` // UTC
	Comments      string    `json:"comments"`
}

func (g Grade) IsGraded() bool { return g.Score != nil }

// NewGrade records a score; an existing grade for the same (student, assignment) pair gets replaced.
type NewGrade struct {
	StudentID    int      `json:"studentId" validate:"required,gt=0"`
	AssignmentID int      `json:"assignmentId" validate:"required,gt=0"`
	Score        *float64 `json:"score"`
	Comments     string   `json:"comments"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.Comments = core.CleanString(ng.Comments)
	return validate.Struct(ng)
}

// UpdateGrade replaces the score (nil clears it) and the comments of a Grade.
type UpdateGrade struct {
	Score    *float64 `json:"score"`
	Comments string   `json:"comments"`
}

func (ug *UpdateGrade) Validate(validate *validator.Validate) error {
	ug.Comments = core.CleanString(ug.Comments)
	return validate.Struct(ug)
}

type QueryFilter struct {
	StudentID    int   `query:"student_id"`
	AssignmentID int   `query:"assignment_id"`
	Graded       *bool `query:"graded"`
}

func (qf *QueryFilter) Match(g Grade) bool {
	if qf == nil {
		return true
	}
	if qf.StudentID != 0 && g.StudentID != qf.StudentID {
		return false
	}
	if qf.AssignmentID != 0 && g.AssignmentID != qf.AssignmentID {
		return false
	}
	if qf.Graded != nil && g.IsGraded() != *qf.Graded {
		return false
	}
	return true
}
