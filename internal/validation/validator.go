// Package validation registers the request validators used by gin binding and
// turns validator errors into client-facing messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	MinRating = 0.0
	MaxRating = 10.0
)

var registerOnce sync.Once

// Register installs the custom tags on gin's default validator. Safe to call
// more than once.
func Register() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin binding engine is not go-playground/validator")
			return
		}
		err = Configure(v)
	})
	return err
}

// Configure adds the custom tags to v and reports JSON (or query) field names in errors.
func Configure(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v.RegisterValidation("rating", validateRating)
}

func validateRating(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		return ValidRating(f.Float())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return ValidRating(float64(f.Int()))
	default:
		return false
	}
}

// ValidRating reports whether r is inside the inclusive 0..10 scale.
func ValidRating(r float64) bool {
	return r >= MinRating && r <= MaxRating
}

var messages = map[string]string{
	"required": "%s is required",
	"email":    "%s must be a valid email address",
	"rating":   "%s must be between 0 and 10",
	"uuid":     "%s must be a valid id",
}

var messagesWithParam = map[string]string{
	"min": "%s must be at least %s",
	"max": "%s must be at most %s",
	"gte": "%s must be greater than or equal to %s",
	"lte": "%s must be less than or equal to %s",
	"gt":  "%s must be greater than %s",
}

// Message renders a binding error as a single line suitable for an
// {"error": ...} body. Non-validator errors (bad JSON) get a generic text.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, translate(fe))
	}
	return strings.Join(parts, "; ")
}

func translate(fe validator.FieldError) string {
	if tmpl, ok := messages[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, fe.Field())
	}
	if tmpl, ok := messagesWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
