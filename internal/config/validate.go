package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	structCheck  *validator.Validate
)

// checker returns the shared validator, reporting fields by their TOML names.
func checker() *validator.Validate {
	validateOnce.Do(func() {
		structCheck = validator.New(validator.WithRequiredStructEnabled())
		structCheck.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return structCheck
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	sections := []struct {
		name  string
		value any
	}{
		{"analysis", c.Analysis},
		{"ocr", c.OCR},
		{"frames", c.Frames},
		{"logging", c.Logging},
	}
	for _, section := range sections {
		if err := validateSection(section.name, section.value); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return errors.New("store.path must be set")
	}
	return nil
}

func validateSection(section string, value any) error {
	err := checker().Struct(value)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%s: %w", section, err)
	}
	fe := fieldErrs[0]
	return fmt.Errorf("%s.%s %s", section, fe.Field(), describeRule(fe))
}

func describeRule(fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return "must be set"
	case "gte":
		return "must be >= " + param
	case "lte":
		return "must be <= " + param
	case "gt":
		return "must be > " + param
	case "lt":
		return "must be < " + param
	case "oneof":
		return fmt.Sprintf("must be one of: %s (got %v)", strings.Join(strings.Fields(param), ", "), fe.Value())
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}
