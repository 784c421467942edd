package domain

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// DefaultIDPattern matches the 24 character hex ids issued by the storefront API.
const DefaultIDPattern = `^[0-9a-fA-F]{24}$`

// IDShape decides which product ids are eligible for favorite and cart
// operations.
type IDShape struct {
	re *regexp.Regexp
}

// NewIDShape compiles pattern; an empty pattern selects DefaultIDPattern.
func NewIDShape(pattern string) (*IDShape, error) {
	if pattern == "" {
		pattern = DefaultIDPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid id pattern %q: %w", pattern, err)
	}
	return &IDShape{re: re}, nil
}

// MustIDShape is NewIDShape for patterns known to be valid.
func MustIDShape(pattern string) *IDShape {
	shape, err := NewIDShape(pattern)
	if err != nil {
		panic(err)
	}
	return shape
}

func (s *IDShape) Valid(id string) bool {
	return s.re.MatchString(id)
}

// NewValidator returns a validator with the "catalogid" tag bound to ids.
func NewValidator(ids *IDShape) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("catalogid", func(fl validator.FieldLevel) bool {
		return ids.Valid(fl.Field().String())
	})
	return v
}
