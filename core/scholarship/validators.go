package scholarship

import (
	"regexp"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/chuo/core"
)

var (
	academicYearTag   = "academicyear"
	academicYearText  = "must be an academic year formatted as YYYY-YY, e.g. 2024-25"
	academicYearRegex = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

	awardedTag  = "awarded"
	awardedText = "award date is required once a scholarship is approved or disbursed"
)

// InitValidators registers the scholarship validations; core.InitValidators must run first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(academicYearTag, academicYearValidation)
	core.RegisterCustomTranslation(validate, translator, academicYearTag, academicYearText)

	validate.RegisterStructValidation(scholarshipStructValidation, NewScholarship{})
	core.RegisterCustomTranslation(validate, translator, awardedTag, awardedText)
}

// IsAcademicYear reports whether s names two consecutive years, as in "2024-25".
func IsAcademicYear(s string) bool {
	m := academicYearRegex.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])
	return (first+1)%100 == second
}

// Custom Validators

func academicYearValidation(fl validator.FieldLevel) bool {
	return IsAcademicYear(fl.Field().String())
}

func scholarshipStructValidation(sl validator.StructLevel) {
	ns, ok := sl.Current().Interface().(NewScholarship)
	if !ok {
		return
	}
	if (ns.Status == StatusApproved || ns.Status == StatusDisbursed) && ns.AwardedOn == nil {
		sl.ReportError(ns.AwardedOn, "awarded_on", "AwardedOn", awardedTag, "")
	}
}
