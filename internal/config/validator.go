package config

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/moadamda/tracker/internal/errorwrapper"
)

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true,
	"warn": true, "error": true, "fatal": true,
}

var validLogFormats = map[string]bool{
	"json": true, "console": true, "text": true,
}

// ValidateConfig performs validation on the TrackerConfig structure
func ValidateConfig(cfg *TrackerConfig) error {
	validate := validator.New()

	// Custom validation: value must be a compilable regular expression
	_ = validate.RegisterValidation("regexp", func(fl validator.FieldLevel) bool {
		pattern := fl.Field().String()
		if pattern == "" {
			return true
		}
		_, err := regexp.Compile(pattern)
		return err == nil
	})

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		return validLogLevels[strings.ToLower(fl.Field().String())]
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		return validLogFormats[strings.ToLower(fl.Field().String())]
	})

	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if ok := isValidationErrors(err, &validationErrors); ok {
			messages := make([]string, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				messages = append(messages, fieldErr.Namespace()+" failed on '"+fieldErr.Tag()+"'")
			}
			return errorwrapper.WrapError(
				errorwrapper.ErrInvalidConfiguration,
				strings.Join(messages, "; "),
			)
		}
		return errorwrapper.WrapError(err, "config validation")
	}

	return nil
}

func isValidationErrors(err error, target *validator.ValidationErrors) bool {
	ve, ok := err.(validator.ValidationErrors)
	if ok {
		*target = ve
	}
	return ok
}
