package library

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// entityValidator wraps go-playground/validator and converts its errors into
// ValidationError values.
type entityValidator struct {
	v *validator.Validate
}

var validate = newEntityValidator()

func newEntityValidator() *entityValidator {
	v := validator.New()

	// Report fields by their yaml names, the same ones users see in `show`.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Text records are ';'-joined lines with no escaping.
	_ = v.RegisterValidation("record", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), recordForbidden)
	})

	return &entityValidator{v: v}
}

// recordForbidden lists the characters a text-encoded field cannot carry.
const recordForbidden = fieldSep + "\r\n"

func (ev *entityValidator) check(entity string, s any) error {
	err := ev.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %s: %w", entity, err)
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = friendlyMessage(fe)
	}
	return &ValidationError{Entity: entity, Fields: fields}
}

func friendlyMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "record":
		return "must not contain ';' or line breaks"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}

// checkPublication accepts only Book and Magazine values and validates them.
func (ev *entityValidator) checkPublication(p Publication) error {
	switch p.(type) {
	case Book, Magazine:
		return ev.check("publication", p)
	default:
		return &ValidationError{
			Entity: "publication",
			Fields: map[string]string{"type": fmt.Sprintf("unsupported variant %T", p)},
		}
	}
}

// checkUser validates u and every publication on its lists.
func (ev *entityValidator) checkUser(u *User) error {
	if u == nil {
		return &ValidationError{Entity: "user", Fields: map[string]string{"user": "is required"}}
	}
	if err := ev.check("user", u); err != nil {
		return err
	}
	for _, p := range slices.Concat(u.Borrowed, u.History) {
		if err := ev.checkPublication(p); err != nil {
			return err
		}
	}
	return nil
}
