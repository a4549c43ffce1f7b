package student

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classtrack/core"
)

var (
	studentStatusTag  = "studentstatus"
	studentStatusText = "must be one of: " + strings.Join(Statuses, ", ")
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(studentStatusTag, core.OneOfValidation(Statuses...))
	core.RegisterCustomTranslation(validate, translator, studentStatusTag, studentStatusText)
}
