package provider

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mstgnz/funnelpay/infra/validate"
)

// ConfigFieldError reports one credential or setting that failed validation
type ConfigFieldError struct {
	Gateway string
	Key     string
	Problem string
}

func (e *ConfigFieldError) Error() string {
	return fmt.Sprintf("%s: %s %s", e.Gateway, e.Key, e.Problem)
}

// validator tags for ConfigField.Type; "string" needs no check
var fieldTypeTags = map[string]string{
	"boolean": "boolean",
	"url":     "http_url",
}

// ValidateConfigFields checks config against fields and reports every failing field
// at once. Optional fields are only checked when they hold a value.
func ValidateConfigFields(gateway string, config map[string]string, fields []ConfigField) error {
	var errs []error
	for _, field := range fields {
		if problem := checkField(field, config); problem != "" {
			errs = append(errs, &ConfigFieldError{Gateway: gateway, Key: field.Key, Problem: problem})
		}
	}
	return errors.Join(errs...)
}

func checkField(field ConfigField, config map[string]string) string {
	value, ok := config[field.Key]
	blank := strings.TrimSpace(value) == ""

	switch {
	case blank && !field.Required:
		return ""
	case !ok:
		return "is missing"
	case blank:
		return "is empty"
	}

	if tag := fieldTypeTags[field.Type]; tag != "" {
		if err := validate.Validator().Var(value, tag); err != nil {
			return "must be a valid " + field.Type
		}
	}

	if field.Pattern != "" {
		re, err := regexp.Compile(field.Pattern)
		if err != nil {
			return fmt.Sprintf("has an unusable pattern: %v", err)
		}
		if !re.MatchString(value) {
			return "does not match " + field.Pattern
		}
	}

	switch n := len(value); {
	case field.MinLength > 0 && n < field.MinLength:
		return fmt.Sprintf("must be at least %d characters", field.MinLength)
	case field.MaxLength > 0 && n > field.MaxLength:
		return fmt.Sprintf("must be at most %d characters", field.MaxLength)
	}
	return ""
}
