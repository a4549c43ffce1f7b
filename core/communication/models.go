package communication

import (
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classtrack/core"
)

// Types
const (
	TypePhone   = "phone"
	TypeEmail   = "email"
	TypeMeeting = "meeting"
	TypeMessage = "message"
)

var Types = []string{TypePhone, TypeEmail, TypeMeeting, TypeMessage}

var (
	typeTag  = "commtype"
	typeText = "must be one of: " + strings.Join(Types, ", ")
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(typeTag, core.OneOfValidation(Types...))
	core.RegisterCustomTranslation(validate, translator, typeTag, typeText)
}

// Communication is an entry of the parent contact log of a student.
type Communication struct {
	ID        int       `json:"id"`
	StudentID int       `json:"studentId"`
	Type      string    `json:"type"`
	Subject   string    `json:"subject"`
	Notes     string    `json:"notes"`
	Date      time.Time `json:"date"` // UTC
}

type NewCommunication struct {
	Type    string    `json:"type" validate:"omitempty,commtype"`
	Subject string    `json:"subject" validate:"required,notblank"`
	Notes   string    `json:"notes"`
	Date    time.Time `json:"date"`
}

func (nc *NewCommunication) Validate(validate *validator.Validate) error {
	nc.Type = core.CleanString(nc.Type, true /* lower */)
	if nc.Type == "" {
		nc.Type = TypeMessage
	}
	nc.Subject = core.CleanString(nc.Subject)
	nc.Notes = core.CleanString(nc.Notes)
	return validate.Struct(nc)
}

// UpdateCommunication defines what may change on a log entry. Blank fields keep their current value.
type UpdateCommunication struct {
	Type    string  `json:"type" validate:"omitempty,commtype"`
	Subject string  `json:"subject"`
	Notes   *string `json:"notes"`
}

func (uc *UpdateCommunication) Validate(validate *validator.Validate) error {
	uc.Type = core.CleanString(uc.Type, true /* lower */)
	uc.Subject = core.CleanString(uc.Subject)
	if uc.Notes != nil {
		n := core.CleanString(*uc.Notes)
		uc.Notes = &n
	}
	return validate.Struct(uc)
}

type QueryFilter struct {
	StudentID int    `query:"student_id"`
	Type      string `query:"type"`
}

func (qf *QueryFilter) Match(c Communication) bool {
	if qf == nil {
		return true
	}
	if qf.StudentID != 0 && c.StudentID != qf.StudentID {
		return false
	}
	if qf.Type != "" && c.Type != qf.Type {
		return false
	}
	return true
}
