package student

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classtrack/core"
)

// Statuses
const (
	StatusActive    = "Active"
	StatusInactive  = "Inactive"
	StatusGraduated = "Graduated"
)

var Statuses = []string{StatusActive, StatusInactive, StatusGraduated}

type Student struct {
	ID           int       `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	GradeLevel   string    `json:"gradeLevel"`
	DateEnrolled core.Date `json:"dateEnrolled"`
	Status       string    `json:"status"`
	ParentName   string    `json:"parentName"`
	ParentEmail  string    `json:"parentEmail"`
	ParentPhone  string    `json:"parentPhone"`
}

func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

func (s Student) IsActive() bool {
	return s.Status == StatusActive
}

func (s Student) Parent() Parent {
	return Parent{
		StudentID:   s.ID,
		ParentName:  s.ParentName,
		ParentEmail: s.ParentEmail,
		ParentPhone: s.ParentPhone,
	}
}

// Parent is the parent/guardian contact held on a Student record.
type Parent struct {
	StudentID   int    `json:"studentId"`
	ParentName  string `json:"parentName"`
	ParentEmail string `json:"parentEmail"`
	ParentPhone string `json:"parentPhone"`
}

func (p Parent) HasEmail() bool { return p.ParentEmail != "" }

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	FirstName    string    `json:"firstName" validate:"required,notblank"`
	LastName     string    `json:"lastName" validate:"required,notblank"`
	Email        string    `json:"email" validate:"required,email"`
	Phone        string    `json:"phone"`
	GradeLevel   string    `json:"gradeLevel" validate:"required,gradelevel"`
	DateEnrolled core.Date `json:"dateEnrolled"`
	Status       string    `json:"status" validate:"omitempty,studentstatus"`
	ParentName   string    `json:"parentName"`
	ParentEmail  string    `json:"parentEmail" validate:"omitempty,email"`
	ParentPhone  string    `json:"parentPhone"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)
	ns.GradeLevel = core.CleanString(ns.GradeLevel)
	ns.Status = core.CleanString(ns.Status)
	if ns.Status == "" {
		ns.Status = StatusActive
	}
	ns.ParentName = core.CleanString(ns.ParentName)
	ns.ParentEmail = core.CleanString(ns.ParentEmail, true /* lower */)
	ns.ParentPhone = core.CleanString(ns.ParentPhone)
	if ns.DateEnrolled.IsZero() {
		ns.DateEnrolled = core.Today()
	}
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Blank fields (nil for the optional contact fields) keep their current value.
type UpdateStudent struct {
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Phone        *string   `json:"phone"`
	GradeLevel   string    `json:"gradeLevel"`
	DateEnrolled core.Date `json:"dateEnrolled"`
	Status       string    `json:"status"`
	ParentName   *string   `json:"parentName"`
	ParentEmail  *string   `json:"parentEmail"`
	ParentPhone  *string   `json:"parentPhone"`
}

// Validate merges the update onto `orig` and validates the resulting record.
func (us *UpdateStudent) Validate(orig Student, validate *validator.Validate) error {
	us.FirstName = keep(core.CleanString(us.FirstName), orig.FirstName)
	us.LastName = keep(core.CleanString(us.LastName), orig.LastName)
	us.Email = keep(core.CleanString(us.Email, true /* lower */), orig.Email)
	us.GradeLevel = keep(core.CleanString(us.GradeLevel), orig.GradeLevel)
	us.Status = keep(core.CleanString(us.Status), orig.Status)
	if us.DateEnrolled.IsZero() {
		us.DateEnrolled = orig.DateEnrolled
	}
	us.Phone = keepPtr(us.Phone, orig.Phone, false)
	us.ParentName = keepPtr(us.ParentName, orig.ParentName, false)
	us.ParentEmail = keepPtr(us.ParentEmail, orig.ParentEmail, true)
	us.ParentPhone = keepPtr(us.ParentPhone, orig.ParentPhone, false)

	merged := NewStudent{
		FirstName:    us.FirstName,
		LastName:     us.LastName,
		Email:        us.Email,
		Phone:        *us.Phone,
		GradeLevel:   us.GradeLevel,
		DateEnrolled: us.DateEnrolled,
		Status:       us.Status,
		ParentName:   *us.ParentName,
		ParentEmail:  *us.ParentEmail,
		ParentPhone:  *us.ParentPhone,
	}
	return validate.Struct(merged)
}

func (us UpdateStudent) apply(s Student) Student {
	s.FirstName = us.FirstName
	s.LastName = us.LastName
	s.Email = us.Email
	s.GradeLevel = us.GradeLevel
	s.Status = us.Status
	s.DateEnrolled = us.DateEnrolled
	s.Phone = *us.Phone
	s.ParentName = *us.ParentName
	s.ParentEmail = *us.ParentEmail
	s.ParentPhone = *us.ParentPhone
	return s
}

// UpdateParent replaces the parent contact of a Student.
type UpdateParent struct {
	ParentName  string `json:"parentName"`
	ParentEmail string `json:"parentEmail" validate:"omitempty,email"`
	ParentPhone string `json:"parentPhone"`
}

func (up *UpdateParent) Validate(validate *validator.Validate) error {
	up.ParentName = core.CleanString(up.ParentName)
	up.ParentEmail = core.CleanString(up.ParentEmail, true /* lower */)
	up.ParentPhone = core.CleanString(up.ParentPhone)
	return validate.Struct(up)
}

type QueryFilter struct {
	Search     string `query:"search"`
	Status     string `query:"status"`
	GradeLevel string `query:"grade_level"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Status == "" && qf.GradeLevel == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = core.CleanString(qf.Status)
	qf.GradeLevel = core.CleanString(qf.GradeLevel)
}

// Match reports whether s satisfies every set field of the filter.
// Search does a case-insensitive match on the full name, the email or the grade level.
func (qf *QueryFilter) Match(s Student) bool {
	if qf == nil {
		return true
	}
	if qf.Search != "" {
		term := strings.ToLower(qf.Search)
		if !(strings.Contains(strings.ToLower(s.FullName()), term) ||
			strings.Contains(strings.ToLower(s.Email), term) ||
			strings.Contains(strings.ToLower(s.GradeLevel), term)) {
			return false
		}
	}
	if qf.Status != "" && !strings.EqualFold(s.Status, qf.Status) {
		return false
	}
	if qf.GradeLevel != "" && s.GradeLevel != qf.GradeLevel {
		return false
	}
	return true
}

func keep(val, orig string) string {
	if val != "" {
		return val
	}
	return orig
}

func keepPtr(val *string, orig string, lower bool) *string {
	if val == nil {
		return &orig
	}
	s := core.CleanString(*val, lower)
	return &s
}
