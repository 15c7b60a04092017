package schedule

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/chuo/core"
)

var (
	rruleTag  = "rrule"
	rruleText = "invalid recurrence rule"

	endDateTag  = "enddate"
	endDateText = "end date cannot be before start date"

	endTimeTag  = "endtime"
	endTimeText = "end time cannot be before start time"

	dateRangeTag  = "daterange"
	dateRangeText = "'to' cannot be before 'from'"
)

// InitValidators registers the schedule validations; core.InitValidators must run first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(rruleTag, rruleValidation)
	core.RegisterCustomTranslation(validate, translator, rruleTag, rruleText)

	validate.RegisterStructValidation(eventStructValidation, NewEvent{})
	core.RegisterCustomTranslation(validate, translator, endDateTag, endDateText)
	core.RegisterCustomTranslation(validate, translator, endTimeTag, endTimeText)

	validate.RegisterStructValidation(conflictFilterStructValidation, ConflictFilter{})
	core.RegisterCustomTranslation(validate, translator, dateRangeTag, dateRangeText)
}

// Custom Validators

func rruleValidation(fl validator.FieldLevel) bool {
	_, err := parseRRule(fl.Field().String())
	return err == nil
}

// eventStructValidation checks that an event does not end before it starts.
// Malformed dates and times are reported by their field validations.
func eventStructValidation(sl validator.StructLevel) {
	evt, ok := sl.Current().Interface().(NewEvent)
	if !ok {
		return
	}
	if !core.IsDate(evt.StartDate) || !core.IsDate(evt.EndDate) {
		return
	}
	if evt.EndDate < evt.StartDate {
		sl.ReportError(evt.EndDate, "end_date", "EndDate", endDateTag, "")
		return
	}
	if evt.EndDate == evt.StartDate && evt.StartTime != nil && evt.EndTime != nil &&
		core.IsClock(*evt.StartTime) && core.IsClock(*evt.EndTime) && *evt.EndTime < *evt.StartTime {
		sl.ReportError(evt.EndTime, "end_time", "EndTime", endTimeTag, "")
	}
}

func conflictFilterStructValidation(sl validator.StructLevel) {
	cf, ok := sl.Current().Interface().(ConflictFilter)
	if !ok {
		return
	}
	if core.IsDate(cf.From) && core.IsDate(cf.To) && cf.To < cf.From {
		sl.ReportError(cf.To, "to", "To", dateRangeTag, "")
	}
}
