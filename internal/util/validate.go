package util

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

var messages = map[string]string{
	"required": "field '%s' is required",
	"max":      "field '%s' must be at most %s characters",
	"min":      "field '%s' must be at least %s characters",
	"oneof":    "field '%s' must be one of: %s",
	"uuid":     "field '%s' must be a UUID",
}

// Validate checks v's struct tags and returns one message naming the first
// offending JSON field, or nil.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	e := verrs[0]
	msg, ok := messages[e.Tag()]
	if !ok {
		return fmt.Errorf("field '%s' is invalid: %s", e.Field(), e.Tag())
	}
	if strings.Count(msg, "%s") == 2 {
		return fmt.Errorf(msg, e.Field(), e.Param())
	}
	return fmt.Errorf(msg, e.Field())
}
