package handlers

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"moon-casino-backend/internal/fairness"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// RegisterValidators adds the casino's binding tags to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	rules := map[string]validator.Func{
		"coin_side": func(fl validator.FieldLevel) bool {
			_, err := fairness.ParseSide(fl.Field().String())
			return err == nil
		},
		"difficulty": func(fl validator.FieldLevel) bool {
			_, err := fairness.ParseDifficulty(fl.Field().String())
			return err == nil
		},
		"alphanumunderscore": func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validator: %w", tag, err)
		}
	}
	return nil
}
