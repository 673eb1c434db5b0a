// Package validation rejects malformed student records before they reach
// storage.
//
// The rules live as validate:"..." tags on types.Student and are checked
// by go-playground/validator. This package adds the one rule the library
// lacks (capitalized), turns the library's errors into a flat list of
// field violations with readable messages, and normalizes the accepted
// value (trimmed names, default isActive).
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-registry/internal/types"
)

// Violation is a single failed rule on a single field.
type Violation struct {
	// Field is the dotted JSON path of the field, e.g. "name.firstName".
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned when a candidate record fails one or more rules.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return "validation failed: " + strings.Join(msgs, ", ")
}

// requiredMessages maps a field path to the message reported when the
// field is missing.
var requiredMessages = map[string]string{
	"id":                        "ID is Required",
	"password":                  "Password is Required",
	"name.firstName":            "First name is Required",
	"name.lastName":             "Last name is Required",
	"gender":                    "Gender is Required",
	"email":                     "Email is Required",
	"contactNo":                 "Contact number is Required",
	"emergencyContactNo":        "Emergency contact number is Required",
	"presentAddress":            "Present address is Required",
	"permanentAddress":          "Permanent address is Required",
	"guardian.fatherName":       "Father name is Required",
	"guardian.fatherOccupation": "Father occupation is Required",
	"guardian.fatherContactNo":  "Father contact number is Required",
	"guardian.motherName":       "Mother name is Required",
	"guardian.motherOccupation": "Mother occupation is Required",
	"guardian.motherContactNo":  "Mother contact number is Required",
	"localGuardian.name":        "Local guardian name is Required",
	"localGuardian.occupation":  "Local guardian occupation is Required",
	"localGuardian.contactNo":   "Local guardian contact number is Required",
	"localGuardian.address":     "Local guardian address is Required",
	"isActive":                  "Active status is Required",
}

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves the whole process.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON names so violations line up with the
	// request body the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// RegisterValidation only fails for an empty tag or a built-in name.
	if err := v.RegisterValidation("capitalized", isCapitalized); err != nil {
		panic(err)
	}

	return v
}

// isCapitalized reports whether the first letter of the field equals its
// upper-case form. The rest of the value is left to the user.
func isCapitalized(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(value)
	return unicode.ToUpper(r) == r
}

// Normalize trims the name parts and fills in defaults. It does not check
// any rule.
func Normalize(candidate types.Student) types.Student {
	candidate.Name.FirstName = strings.TrimSpace(candidate.Name.FirstName)
	candidate.Name.MiddleName = strings.TrimSpace(candidate.Name.MiddleName)
	candidate.Name.LastName = strings.TrimSpace(candidate.Name.LastName)

	if candidate.IsActive == "" {
		candidate.IsActive = types.StatusActive
	}

	return candidate
}

// Validate normalizes candidate and checks every rule at once. On success
// it returns the normalized value; otherwise the error is an *Error
// listing every violation.
func Validate(candidate types.Student) (types.Student, error) {
	normalized := Normalize(candidate)

	err := validate.Struct(normalized)
	if err == nil {
		return normalized, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return types.Student{}, fmt.Errorf("validation: %w", err)
	}

	violations := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fieldPath(fe)
		violations = append(violations, Violation{
			Field:   field,
			Message: message(field, fe),
		})
	}

	return types.Student{}, &Error{Violations: violations}
}

// fieldPath strips the root struct name from the error namespace:
// "Student.name.firstName" becomes "name.firstName".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(field string, fe validator.FieldError) string {
	value := fmt.Sprint(fe.Value())

	switch fe.Tag() {
	case "required":
		if msg, ok := requiredMessages[field]; ok {
			return msg
		}
		return fmt.Sprintf("%s is Required", field)
	case "max":
		return fmt.Sprintf("Max Allowed length is %s", fe.Param())
	case "capitalized":
		return fmt.Sprintf("%s is not in capitalize", value)
	case "email":
		return fmt.Sprintf("%s is not a Valid Email Type", value)
	default:
		// alpha, oneof
		return fmt.Sprintf("%s is not valid", value)
	}
}
