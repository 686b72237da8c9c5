package course

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/prefeitura-rio/gorio-admin/core"
)

var (
	modalityTag  = "modality"
	modalityText = "invalid modality"

	courseStatusTag  = "coursestatus"
	courseStatusText = "invalid course status"

	displayStatusTag  = "displaystatus"
	displayStatusText = "invalid display status"

	enrollmentOrderTag  = "enrollmentorder"
	enrollmentOrderText = "enrollment must end after it starts"

	classOrderTag  = "classorder"
	classOrderText = "class must end after it starts"
)

// InitValidators registers the course validations on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(modalityTag, modalityValidation)
	core.RegisterCustomTranslation(validate, translator, modalityTag, modalityText)

	_ = validate.RegisterValidation(courseStatusTag, courseStatusValidation)
	core.RegisterCustomTranslation(validate, translator, courseStatusTag, courseStatusText)

	_ = validate.RegisterValidation(displayStatusTag, displayStatusValidation)
	core.RegisterCustomTranslation(validate, translator, displayStatusTag, displayStatusText)

	validate.RegisterStructValidation(newCourseStructValidation, NewCourse{})
	core.RegisterCustomTranslation(validate, translator, enrollmentOrderTag, enrollmentOrderText)
	validate.RegisterStructValidation(classScheduleStructValidation, ClassSchedule{})
	core.RegisterCustomTranslation(validate, translator, classOrderTag, classOrderText)
}

// Custom Validators

func modalityValidation(fl validator.FieldLevel) bool {
	val := Modality(fl.Field().String())
	for _, m := range Modalities {
		if m == val {
			return true
		}
	}
	return false
}

func courseStatusValidation(fl validator.FieldLevel) bool {
	val := RawStatus(fl.Field().String())
	for _, st := range RawStatuses {
		if st == val {
			return true
		}
	}
	return false
}

func displayStatusValidation(fl validator.FieldLevel) bool {
	val := DisplayStatus(fl.Field().String())
	for _, st := range DisplayValues {
		if st == val {
			return true
		}
	}
	return false
}

// newCourseStructValidation checks that the enrollment window is not reversed.
func newCourseStructValidation(sl validator.StructLevel) {
	nc := sl.Current().Interface().(NewCourse)
	if nc.EnrollmentStart != nil && nc.EnrollmentEnd != nil && nc.EnrollmentEnd.Before(*nc.EnrollmentStart) {
		sl.ReportError(nc.EnrollmentEnd, "enrollmentEnd", "EnrollmentEnd", enrollmentOrderTag, "")
	}
}

func classScheduleStructValidation(sl validator.StructLevel) {
	cs := sl.Current().Interface().(ClassSchedule)
	if cs.Start != nil && cs.End != nil && cs.End.Before(*cs.Start) {
		sl.ReportError(cs.End, "end", "End", classOrderTag, "")
	}
}
