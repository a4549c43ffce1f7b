package assignment

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classtrack/core"
)

// DefaultWeight applies when an assignment is created without a weight.
const DefaultWeight = 1.0

type Assignment struct {
	ID       int       `json:"id"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Points   float64   `json:"points"`
	Weight   float64   `json:"weight"`
	DueDate  core.Date `json:"dueDate"`
}

// Percent normalizes score against the assignment's points. ok is false when points is not positive.
func (a Assignment) Percent(score float64) (pct float64, ok bool) {
	if a.Points <= 0 {
		return 0, false
	}
	return score / a.Points * 100, true
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	Title    string    `json:"title" validate:"required,notblank"`
	Category string    `json:"category"`
	Points   float64   `json:"points" validate:"required,gt=0"`
	Weight   *float64  `json:"weight" validate:"omitempty,gte=0"`
	DueDate  core.Date `json:"dueDate"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Category = core.CleanString(na.Category)
	if na.Weight == nil {
		w := DefaultWeight
		na.Weight = &w
	}
	return validate.Struct(na)
}

// UpdateAssignment defines what information may be provided to modify an existing Assignment.
// Blank (or nil) fields keep their current value.
type UpdateAssignment struct {
	Title    string    `json:"title"`
	Category *string   `json:"category"`
	Points   *float64  `json:"points" validate:"omitempty,gt=0"`
	Weight   *float64  `json:"weight" validate:"omitempty,gte=0"`
	DueDate  core.Date `json:"dueDate"`
}

func (ua *UpdateAssignment) Validate(validate *validator.Validate) error {
	ua.Title = core.CleanString(ua.Title)
	if ua.Category != nil {
		c := core.CleanString(*ua.Category)
		ua.Category = &c
	}
	return validate.Struct(ua)
}

func (ua UpdateAssignment) apply(a Assignment) Assignment {
	if ua.Title != "" {
		a.Title = ua.Title
	}
	if ua.Category != nil {
		a.Category = *ua.Category
	}
	if ua.Points != nil {
		a.Points = *ua.Points
	}
	if ua.Weight != nil {
		a.Weight = *ua.Weight
	}
	if !ua.DueDate.IsZero() {
		a.DueDate = ua.DueDate
	}
	return a
}

type QueryFilter struct {
	Search   string `query:"search"`
	Category string `query:"category"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Category = core.CleanString(qf.Category)
}
