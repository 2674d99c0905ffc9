// Package form decodes and validates the todo create/edit form.
package form

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/jaekwang-park/todo-web/internal/model"
)

// ErrInvalid is matched by every *ValidationError.
var ErrInvalid = errors.New("invalid form")

const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldDueDate     = "due_date"
)

// DueDateInputLayout is the format of an HTML datetime-local input.
const DueDateInputLayout = "2006-01-02T15:04"

// dueDateLayouts are tried in order; zone-less layouts use the caller's location.
var dueDateLayouts = []string{
	DueDateInputLayout,
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	must(v.RegisterValidation("notblank", validators.NotBlank))
	must(v.RegisterValidation("due_date", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if strings.TrimSpace(s) == "" {
			return true
		}
		_, err := ParseDueDate(s, time.UTC)
		return err == nil
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// TodoForm holds the raw submitted values of the todo form.
type TodoForm struct {
	Title       string `form:"title" validate:"required,notblank,max=200"`
	Description string `form:"description"`
	DueDate     string `form:"due_date" validate:"omitempty,due_date"`
}

// Decode reads the todo fields from submitted form values. Other keys are ignored.
func Decode(values url.Values) TodoForm {
	return TodoForm{
		Title:       values.Get(FieldTitle),
		Description: values.Get(FieldDescription),
		DueDate:     values.Get(FieldDueDate),
	}
}

// FromTodo pre-populates a form from a stored todo, rendering the due date in loc.
func FromTodo(t model.Todo, loc *time.Location) TodoForm {
	f := TodoForm{Title: t.Title, Description: t.Description}
	if t.DueDate != nil {
		f.DueDate = t.DueDate.In(loc).Format(DueDateInputLayout)
	}
	return f
}

// Validate checks the form and returns the accepted values unchanged.
// Zone-less due dates are interpreted in loc. On failure the error is a *ValidationError.
func (f TodoForm) Validate(loc *time.Location) (model.TodoFields, error) {
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return model.TodoFields{}, fmt.Errorf("failed to validate form: %w", err)
		}
		return model.TodoFields{}, newValidationError(verrs)
	}

	fields := model.TodoFields{Title: f.Title, Description: f.Description}
	if strings.TrimSpace(f.DueDate) != "" {
		due, err := ParseDueDate(f.DueDate, loc)
		if err != nil {
			return model.TodoFields{}, &ValidationError{FieldErrors: map[string][]string{
				FieldDueDate: {msgInvalidDate},
			}}
		}
		fields.DueDate = &due
	}
	return fields, nil
}

// ParseDueDate parses s with the accepted due date layouts.
func ParseDueDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueDateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date/time %q", s)
}

const (
	msgRequired    = "This field is required."
	msgInvalidDate = "Enter a valid date/time."
)

// ValidationError maps form field names to their error messages.
type ValidationError struct {
	FieldErrors map[string][]string
}

func newValidationError(verrs validator.ValidationErrors) *ValidationError {
	e := &ValidationError{FieldErrors: make(map[string][]string, len(verrs))}
	for _, fe := range verrs {
		e.FieldErrors[fe.Field()] = append(e.FieldErrors[fe.Field()], message(fe))
	}
	return e
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return msgRequired
	case "max":
		s, _ := fe.Value().(string)
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).", fe.Param(), utf8.RuneCountInString(s))
	case "due_date":
		return msgInvalidDate
	default:
		return fmt.Sprintf("Failed on the %q check.", fe.Tag())
	}
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.FieldErrors))
	for field := range e.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e.FieldErrors[field], " "))
	}
	return ErrInvalid.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// Has reports whether field has at least one error.
func (e *ValidationError) Has(field string) bool {
	return len(e.FieldErrors[field]) > 0
}
