package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/phyten/humanpp/internal/colorutil"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func settingsValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("hexrgb", func(fl validator.FieldLevel) bool {
			return colorutil.ValidHex(fl.Field().String())
		})
		_ = v.RegisterValidation("markeralias", func(fl validator.FieldLevel) bool {
			word := fl.Field().String()
			return word != "" && strings.IndexFunc(word, unicode.IsSpace) < 0
		})
		validate = v
	})
	return validate
}

// Validate checks ranges and enumerations of the resolved settings.
func (s Settings) Validate() error {
	err := settingsValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fmt.Errorf("%s: %s", settingKey(fe.Namespace()), describe(fe)))
	}
	return errors.Join(out...)
}

// settingKey turns "Settings.markers.aliases[foo]" into "markers.aliases[foo]".
func settingKey(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("must be >= %s (got %v)", fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("must be <= %s (got %v)", fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of [%s] (got %q)", fe.Param(), fmt.Sprint(fe.Value()))
	case "hexrgb":
		return fmt.Sprintf("must be a #rrggbb color (got %q)", fmt.Sprint(fe.Value()))
	case "markeralias":
		return fmt.Sprintf("alias must be a single non-empty word (got %q)", fmt.Sprint(fe.Value()))
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
