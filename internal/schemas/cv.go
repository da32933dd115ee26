package schemas

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/damusix/cv.alonso.network/internal/types"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// messages maps "<json field>|<tag>" to the text shown to the user.
var messages = map[string]string{
	"name|required":     "Name is required",
	"email|required":    "Invalid email address",
	"email|email":       "Invalid email address",
	"phone|required":    "Phone is required",
	"location|required": "Location is required",
	"url|url":           "Invalid url",
	"sections|min":      "CV must have at least one section",
	"id|required":       "Section ID is required",
	"heading|required":  "Section heading is required",
	"items|min":         "Section must have at least one item",
	"title|required":    "Item title is required",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks a CV against the document rules and returns it unchanged on
// success. Every violated field is reported, in document order, as a
// *ValidationError. Validate never panics and has no side effects.
func Validate(cv *types.CVData) (*types.CVData, error) {
	if cv == nil {
		return nil, &ValidationError{Errors: []FieldError{{Field: "(root)", Message: "Required"}}}
	}

	err := validate.Struct(cv)
	if err == nil {
		return cv, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, &ValidationError{Errors: []FieldError{{Field: "(root)", Message: err.Error()}}}
	}

	out := &ValidationError{Errors: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Errors = append(out.Errors, FieldError{
			Field:   dottedPath(fe.Namespace()),
			Message: message(fe),
		})
	}
	return nil, out
}

// dottedPath turns "CVData.sections[0].items[1].title" into "sections.0.items.1.title".
func dottedPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		namespace = namespace[i+1:]
	}
	namespace = strings.ReplaceAll(namespace, "[", ".")
	return strings.ReplaceAll(namespace, "]", "")
}

func message(fe validator.FieldError) string {
	if msg, ok := messages[fe.Field()+"|"+fe.Tag()]; ok {
		return msg
	}
	if fe.Param() != "" {
		return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("failed %s", fe.Tag())
}
