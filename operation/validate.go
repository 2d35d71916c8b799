package operation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks input against its `validate` struct tags. Failures are
// reported as a ConstraintViolationError whose reason is suitable for the
// wire; inputs that are not structs (or carry no tags) pass trivially.
func Validate(input any) error {
	v := reflect.ValueOf(input)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	err := validate.Struct(v.Interface())
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	reasons := make([]string, len(verrs))
	for i, fe := range verrs {
		reasons[i] = fmt.Sprintf("Value at '%s' failed to satisfy constraint: %s", fe.Field(), fe.Tag())
	}
	return &ConstraintViolationError{
		Reason: fmt.Sprintf("%d validation error(s) detected: %s", len(verrs), strings.Join(reasons, "; ")),
	}
}
