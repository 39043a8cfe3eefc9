// README: Validator setup with the custom rules booking drafts need.
package booking

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// MinDriverAge is the youngest a rental customer may be.
const MinDriverAge = 21

var rwPhone = regexp.MustCompile(`^\+2507\d{8}$`)

func newValidator(now func() time.Time) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("rwphone", func(fl validator.FieldLevel) bool {
		return rwPhone.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("adult", func(fl validator.FieldLevel) bool {
		dob, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		return ageOn(dob, now()) >= MinDriverAge
	})
	_ = v.RegisterValidation("future", func(fl validator.FieldLevel) bool {
		switch at := fl.Field().Interface().(type) {
		case time.Time:
			return at.After(now())
		case *time.Time:
			return at != nil && at.After(now())
		}
		return false
	})
	return v
}

// ageOn returns completed years between dob and at.
func ageOn(dob, at time.Time) int {
	years := at.Year() - dob.Year()
	if at.Month() < dob.Month() || (at.Month() == dob.Month() && at.Day() < dob.Day()) {
		years--
	}
	return years
}

// firstFieldError names the first failing field, e.g. "contact.phone (rwphone)".
func firstFieldError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	fe := verrs[0]
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	return fmt.Errorf("%w: %s (%s)", ErrValidation, field, fe.Tag())
}
