package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"cardledger/internal/apperr"

	playground "github.com/go-playground/validator/v10"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

const minPasswordLength = 8

var (
	once     sync.Once
	instance *playground.Validate
)

func get() *playground.Validate {
	once.Do(func() {
		v := playground.New(playground.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
		_ = v.RegisterValidation("username", func(fl playground.FieldLevel) bool {
			return usernameRegex.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("password", func(fl playground.FieldLevel) bool {
			return len(fl.Field().String()) >= minPasswordLength
		})
		instance = v
	})
	return instance
}

// Struct validates v against its `validate` tags and reports the first
// failing field as a validation error.
func Struct(v any) error {
	err := get().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs playground.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return apperr.Validation(describe(fieldErrs[0]))
	}
	return apperr.Validation(err.Error())
}

func describe(fe playground.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "username":
		return fmt.Sprintf("%s must be 3-30 letters, digits or underscores", field)
	case "password":
		return fmt.Sprintf("%s must be at least %d characters", field, minPasswordLength)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters", field, fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must be numeric", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
