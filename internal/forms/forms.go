// Package forms validates user input with struct tags and reports one message per field.
package forms

import (
	"errors"
	"reflect"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-playground/validator/v10"
)

// Messages maps "field.tag" (or just "field") to the text shown for that failure.
type Messages map[string]string

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Check returns domain.FieldErrors when form fails validation.
func (v *Validator) Check(form any, msgs Messages) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(domain.FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(msgs, field, fe.Tag())
	}
	return out
}

func message(msgs Messages, field, tag string) string {
	if m, ok := msgs[field+"."+tag]; ok {
		return m
	}
	if m, ok := msgs[field]; ok {
		return m
	}
	return field + " is invalid"
}
