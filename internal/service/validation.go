package service

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/edunotes-api/internal/models"
)

var customValidations = []struct {
	tag string
	fn  validator.Func
}{
	{tag: "semester", fn: func(fl validator.FieldLevel) bool {
		_, err := models.ParseSemester(fl.Field().String())
		return err == nil
	}},
	{tag: "notefile", fn: func(fl validator.FieldLevel) bool {
		_, ok := allowedNoteExtensions[strings.ToLower(filepath.Ext(fl.Field().String()))]
		return ok
	}},
	{tag: "audience", fn: func(fl validator.FieldLevel) bool {
		_, err := models.ParseAudience(fl.Field().String())
		return err == nil
	}},
}

// RegisterValidations installs the custom tags used by the request models.
func RegisterValidations(v *validator.Validate) error {
	for _, cv := range customValidations {
		if err := v.RegisterValidation(cv.tag, cv.fn); err != nil {
			return fmt.Errorf("register %q validation: %w", cv.tag, err)
		}
	}
	return nil
}

// NewValidator returns a validator with the custom tags registered.
func NewValidator() (*validator.Validate, error) {
	v := validator.New()
	if err := RegisterValidations(v); err != nil {
		return nil, err
	}
	return v, nil
}

// defaultValidator backs constructors called without a validator. The tag set is
// fixed, so a registration failure is a programming error.
func defaultValidator() *validator.Validate {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
}
