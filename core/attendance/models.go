package attendance

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classtrack/core"
)

// Statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusExcused = "excused"
)

var Statuses = []string{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

var (
	statusTag  = "attendancestatus"
	statusText = "must be one of: " + strings.Join(Statuses, ", ")
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, core.OneOfValidation(Statuses...))
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

// Record is a student's attendance status on a calendar day.
type Record struct {
	ID        int       `json:"id"`
	StudentID int       `json:"studentId"`
	Date      core.Date `json:"date"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes"`
}

func (r Record) IsPresent() bool { return r.Status == StatusPresent }

// NewRecord marks a student's status for a day (today when Date is omitted).
type NewRecord struct {
	StudentID int       `json:"studentId" validate:"required,gt=0"`
	Date      core.Date `json:"date"`
	Status    string    `json:"status" validate:"required,attendancestatus"`
	Notes     string    `json:"notes"`
}

func (nr *NewRecord) Validate(validate *validator.Validate) error {
	nr.Status = core.CleanString(nr.Status, true /* lower */)
	nr.Notes = core.CleanString(nr.Notes)
	if nr.Date.IsZero() {
		nr.Date = core.Today()
	}
	return validate.Struct(nr)
}

// UpdateRecord defines what may change on an existing Record. Blank fields keep their current value.
type UpdateRecord struct {
	Status string  `json:"status" validate:"omitempty,attendancestatus"`
	Notes  *string `json:"notes"`
}

func (ur *UpdateRecord) Validate(validate *validator.Validate) error {
	ur.Status = core.CleanString(ur.Status, true /* lower */)
	if ur.Notes != nil {
		n := core.CleanString(*ur.Notes)
		ur.Notes = &n
	}
	return validate.Struct(ur)
}

type QueryFilter struct {
	StudentID int       `query:"student_id"`
	Date      core.Date `query:"date"`
	From      core.Date `query:"from"`
	To        core.Date `query:"to"`
	Status    string    `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

// Match reports whether r satisfies every set field of the filter. From and To are inclusive.
func (qf *QueryFilter) Match(r Record) bool {
	if qf == nil {
		return true
	}
	if qf.StudentID != 0 && r.StudentID != qf.StudentID {
		return false
	}
	if !qf.Date.IsZero() && !r.Date.Equal(qf.Date) {
		return false
	}
	if !qf.From.IsZero() && r.Date.Before(qf.From.Time) {
		return false
	}
	if !qf.To.IsZero() && r.Date.After(qf.To.Time) {
		return false
	}
	if qf.Status != "" && r.Status != qf.Status {
		return false
	}
	return true
}
