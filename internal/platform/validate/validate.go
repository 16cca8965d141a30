// Package validate provides the struct validator shared by the engine and
// the catalog loader, with the domain's enum tags registered.
package validate

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/wildtrail/wildtrail/internal/domain"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Get returns the process-wide validator.
func Get() *validator.Validate {
	once.Do(func() {
		instance = newValidator()
	})
	return instance
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json field names so errors read like the wire format.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("event_kind", func(fl validator.FieldLevel) bool {
		return domain.EventKind(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("quality", func(fl validator.FieldLevel) bool {
		return domain.Quality(fl.Field().String()).Valid()
	})
	return v
}

// Struct validates s and flattens validator errors into one message.
func Struct(s interface{}) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%s", strings.Join(parts, "; "))
}
