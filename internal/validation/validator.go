package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"notewise/internal/domain"
	"notewise/internal/util"

	"github.com/go-playground/validator/v10"
)

var validULID = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)

// Validator provides request validation functionality
type Validator struct {
	structValidator *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	registerCustomValidators(v)
	return &Validator{structValidator: v}
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("note_length", validateNoteLength)
	validate.RegisterValidation("pdf_data_uri", validatePDFDataURI)

	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateNoteLength(fl validator.FieldLevel) bool {
	_, err := domain.ParseNoteLength(fl.Field().String())
	return err == nil
}

func validatePDFDataURI(fl validator.FieldLevel) bool {
	_, err := util.ParseDataURI(fl.Field().String())
	return err == nil
}

// Validate runs the struct tags and returns domain.ValidationErrors on failure.
func (v *Validator) Validate(s interface{}) error {
	err := v.structValidator.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.NewInvalidInputError(err.Error())
	}

	out := make(domain.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, toValidationError(fe))
	}
	return out
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func toValidationError(fe validator.FieldError) domain.ValidationError {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return domain.NewMissingFieldError(field)
	case "min", "max":
		return outOfRange(field, fe)
	default:
		return domain.NewInvalidFormatError(field, fe.Value())
	}
}

// outOfRange reports numeric bounds directly and string bounds as a length.
func outOfRange(field string, fe validator.FieldError) domain.ValidationError {
	bound, _ := strconv.Atoi(fe.Param())
	value := fe.Value()
	min, max := 1, bound

	switch fe.Kind() {
	case reflect.String, reflect.Slice, reflect.Map:
		value = reflect.ValueOf(fe.Value()).Len()
		if fe.Tag() == "min" {
			min, max = bound, 1<<31-1
		}
	default:
		if fe.Tag() == "min" {
			min, max = bound, bound
		}
	}

	// Quiz sizes share one documented range.
	if field == "numberOfQuestions" {
		min, max = MinQuizQuestions, MaxQuizQuestions
	}
	return domain.NewOutOfRangeError(field, value, min, max)
}

const (
	MinQuizQuestions = 1
	MaxQuizQuestions = 20
)

// ValidateSessionID checks the path parameter of session routes.
func (v *Validator) ValidateSessionID(sessionID string) domain.ValidationErrors {
	var errs domain.ValidationErrors
	if strings.TrimSpace(sessionID) == "" {
		errs = append(errs, domain.NewMissingFieldError("id"))
	} else if !isValidULID(sessionID) {
		errs = append(errs, domain.NewInvalidFormatError("id", sessionID))
	}
	return errs
}

// ValidateExportFormat accepts xlsx (default) and csv.
func (v *Validator) ValidateExportFormat(format string) domain.ValidationErrors {
	switch strings.ToLower(format) {
	case "", "xlsx", "csv":
		return nil
	default:
		return domain.ValidationErrors{domain.NewInvalidFormatError("format", format)}
	}
}

// isValidULID checks Crockford base32 and the decoded timestamp range.
func isValidULID(s string) bool {
	return validULID.MatchString(s) && util.IsULID(s)
}
