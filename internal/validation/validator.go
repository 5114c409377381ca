// internal/validation/validator.go
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/unclebandit/wealthyelephant-backend/internal/errors"
)

// messages overrides the generated message for field.tag pairs.
var messages = map[string]string{
	"name.min":          "Name must be at least 2 characters",
	"message.min":       "Message must be at least 10 characters",
	"phone.min":         "Phone number must be at least 10 digits",
	"email.email":       "Invalid email address",
	"email.required":    "Email address is required",
	"password.required": "Password is required",
}

// Validator wraps go-playground/validator and reports JSON field names.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// defaulter is implemented by DTOs that fill optional fields before validation.
type defaulter interface {
	ApplyDefaults()
}

// Validate trims strings, applies defaults and checks struct tags.
// A failure is always *appErrors.ValidationError.
func (val *Validator) Validate(req any) error {
	trimStrings(reflect.ValueOf(req))
	if d, ok := req.(defaulter); ok {
		d.ApplyDefaults()
	}

	err := val.v.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &appErrors.ValidationError{}
	for _, fe := range verrs {
		field := fieldPath(fe.Namespace())
		out.Errors = append(out.Errors, appErrors.FieldError{
			Field:   field,
			Message: message(field, fe),
		})
	}
	return out
}

// fieldPath drops the struct name from "ContactRequest.email".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(field string, fe validator.FieldError) string {
	leaf := field
	if i := strings.LastIndex(leaf, "."); i >= 0 {
		leaf = leaf[i+1:]
	}
	if msg, ok := messages[leaf+"."+fe.Tag()]; ok {
		return msg
	}

	label := humanize(leaf)
	switch fe.Tag() {
	case "required", "required_if":
		return label + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "email":
		return "Invalid email address"
	case "url":
		return "Invalid URL"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

// humanize turns "inquiryType" into "Inquiry type" and "blocks[0]" into "Blocks".
func humanize(field string) string {
	if i := strings.Index(field, "["); i >= 0 {
		field = field[:i]
	}
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func trimStrings(v reflect.Value) {
	switch v.Kind() {
	case reflect.Pointer:
		if !v.IsNil() {
			trimStrings(v.Elem())
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).IsExported() {
				trimStrings(v.Field(i))
			}
		}
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			trimStrings(v.Index(i))
		}
	case reflect.String:
		if v.CanSet() {
			v.SetString(strings.TrimSpace(v.String()))
		}
	}
}
