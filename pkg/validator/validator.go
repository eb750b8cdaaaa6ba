package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/utafrali/productconsole/pkg/jsend"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	return v
}

// fieldName reports struct fields by their json name, then their env name.
func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"json", "env"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return fld.Name
}

// FieldLevel is the argument passed to custom validation functions.
type FieldLevel = validator.FieldLevel

// RegisterValidation adds a custom tag to the shared validator. It must be
// called before the tag is used, typically from an init function.
func RegisterValidation(tag string, fn func(FieldLevel) bool) error {
	return validate.RegisterValidation(tag, fn)
}

// MustRegister is like RegisterValidation but panics on error.
func MustRegister(tag string, fn func(FieldLevel) bool) {
	if err := RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validator: register %q: %v", tag, err))
	}
}

// Validate validates a struct using go-playground/validator tags.
func Validate(s any) error {
	if err := validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			violations := make([]Violation, 0, len(validationErrors))
			for _, fe := range validationErrors {
				violations = append(violations, Violation{
					Field:   fe.Field(),
					Tag:     fe.Tag(),
					Message: msgForTag(fe),
				})
			}
			return &ValidationError{Violations: violations}
		}
		return err
	}
	return nil
}

// Rule validates a single named value against a comma-separated tag list.
// Messages maps a tag name to the message reported when that tag fails; tags
// without an entry fall back to a generic message.
type Rule struct {
	Field    string
	Tags     string
	Messages map[string]string
}

// Check validates value and returns the violation for the first failing tag,
// or nil when value satisfies every tag.
func (r Rule) Check(value any) *Violation {
	err := validate.Var(value, r.Tags)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return &Violation{Field: r.Field, Tag: "invalid", Message: err.Error()}
	}

	fe := validationErrors[0]
	msg, ok := r.Messages[fe.Tag()]
	if !ok {
		msg = msgForTag(fe)
	}
	return &Violation{Field: r.Field, Tag: fe.Tag(), Message: msg}
}

// Violation is one field-scoped validation failure.
type Violation struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// Violations collects violations in the order they were found.
type Violations []Violation

// Add appends v when it is non-nil.
func (vs *Violations) Add(v *Violation) {
	if v != nil {
		*vs = append(*vs, *v)
	}
}

// Err returns a *ValidationError holding the collected violations, or nil if
// there are none.
func (vs Violations) Err() error {
	if len(vs) == 0 {
		return nil
	}
	return &ValidationError{Violations: vs}
}

// ValidationError is an ordered list of violations.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, fmt.Sprintf("field '%s' %s", v.Field, v.Message))
	}
	return strings.Join(msgs, "; ")
}

// FieldErrors groups the violations per field, fields in first-seen order, in
// the shape of a fail envelope's errors object.
func (e *ValidationError) FieldErrors() jsend.FieldErrors {
	out := jsend.FieldErrors{}
	index := make(map[string]int, len(e.Violations))
	for _, v := range e.Violations {
		i, ok := index[v.Field]
		if !ok {
			i = len(out)
			index[v.Field] = i
			out = append(out, jsend.FieldError{Field: v.Field})
		}
		out[i].Messages = append(out[i].Messages, v.Message)
	}
	return out
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "uuid":
		return "must be a valid UUID"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}

// DecodeJSON decodes a single JSON document from r into dst, rejecting unknown
// fields.
func DecodeJSON(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
