package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	if err := validate.RegisterValidation("notblank", notBlank); err != nil {
		panic(err)
	}
}

// fieldMessages maps a JSON field name and failing tag to the message shown to clients.
var fieldMessages = map[string]map[string]string{
	"title": {
		"required": "Title is required",
		"notblank": "Title is required",
		"min":      "Title must be between 3 and 100 characters",
		"max":      "Title must be between 3 and 100 characters",
	},
	"description": {
		"max": "Description cannot exceed 500 characters",
	},
	"completed": {
		"required": "Completed status is required",
	},
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func message(e validator.FieldError) string {
	if msgs, ok := fieldMessages[e.Field()]; ok {
		if msg, ok := msgs[e.Tag()]; ok {
			return msg
		}
	}
	if e.Param() != "" {
		return fmt.Sprintf("Field '%s' failed '%s=%s'", e.Field(), e.Tag(), e.Param())
	}
	return fmt.Sprintf("Field '%s' failed '%s'", e.Field(), e.Tag())
}

// Struct validates s and returns one message per invalid field, keyed by the
// field's JSON name. A nil map means s is valid.
func Struct(s any) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return map[string]string{"request": err.Error()}
	}

	fields := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		if _, seen := fields[e.Field()]; !seen {
			fields[e.Field()] = message(e)
		}
	}
	return fields
}
