package operation

import (
	"encoding"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
)

// DecodeInput populates dst (a non-nil pointer to a struct) from the
// request's form-encoded body and query string.
//
// Fields are matched to parameters via the `query` struct tag; without a tag
// the field name itself is the parameter name, which matches the protocol's
// UpperCamel parameter convention. Use `query:"-"` to skip a field.
//
// Supported field types: string, bool, integers, unsigned integers, floats,
// types implementing encoding.TextUnmarshaler (including time.Time), and
// slices of any of those (one element per parameter occurrence). Pointer
// fields are allocated when the parameter is present. Absent parameters
// leave the field at its zero value; constraint enforcement is Validate's
// job, not the decoder's.
func DecodeInput(r *http.Request, dst any) error {
	if r == nil {
		return errors.New("operation: decode: nil request")
	}
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return errors.New("operation: decode: dst must be a non-nil pointer")
	}
	root := v.Elem()
	if root.Kind() == reflect.Pointer {
		if root.IsNil() {
			root.Set(reflect.New(root.Type().Elem()))
		}
		root = root.Elem()
	}
	if root.Kind() != reflect.Struct {
		return errors.New("operation: decode: dst must point to a struct")
	}

	// ParseForm merges the form-encoded body with the URL query; body values
	// come first, which gives them precedence for single-valued fields.
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("operation: decode: parse form: %w", err)
	}

	t := root.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("query"); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		values, ok := r.Form[name]
		if !ok || len(values) == 0 {
			continue
		}
		if err := setField(root.Field(i), values); err != nil {
			return fmt.Errorf("operation: decode parameter %q: %w", name, err)
		}
	}
	return nil
}

func setField(field reflect.Value, values []string) error {
	if field.Kind() == reflect.Pointer {
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		field = field.Elem()
	}

	if tu, ok := field.Addr().Interface().(encoding.TextUnmarshaler); ok {
		return tu.UnmarshalText([]byte(values[0]))
	}

	switch field.Kind() {
	case reflect.Slice:
		slice := reflect.MakeSlice(field.Type(), len(values), len(values))
		for i, v := range values {
			if err := setField(slice.Index(i), []string{v}); err != nil {
				return err
			}
		}
		field.Set(slice)
		return nil
	case reflect.String:
		field.SetString(values[0])
		return nil
	case reflect.Bool:
		b, err := strconv.ParseBool(values[0])
		if err != nil {
			return err
		}
		field.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(values[0], 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(values[0], 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(values[0], field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(f)
		return nil
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
}
