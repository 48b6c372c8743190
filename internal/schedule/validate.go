package schedule

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/lesson-scheduler/internal/model"
	"github.com/iliyamo/lesson-scheduler/internal/repository"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so 400 payloads match what the client sent
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("naivedate", func(fl validator.FieldLevel) bool {
		return isDate(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

func isDate(s string) bool {
	_, err := time.Parse(model.DateLayout, s)
	return err == nil
}

// check runs struct validation and converts failures into a
// *repository.ValidationError naming every offending field.
func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make([]string, 0, len(ve))
		for _, fe := range ve {
			fields = append(fields, fe.Field())
		}
		return &repository.ValidationError{Fields: fields}
	}
	return err
}

