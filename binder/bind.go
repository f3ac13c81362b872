package binder

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// lookupFunc returns the raw value for a tagged field.
type lookupFunc func(name string) (string, bool)

// bindStruct walks the exported fields of *v and assigns values for fields
// carrying tagName. Fields without the tag, or tagged "-", are left alone.
func bindStruct(v any, tagName string, lookup lookupFunc, bindErr error) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: target must be a non-nil pointer", bindErr)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("%w: target must be a pointer to struct", bindErr)
	}

	rt := rv.Type()
	for i := range rt.NumField() {
		field := rv.Field(i)
		sf := rt.Field(i)
		if !field.CanSet() {
			continue
		}

		name, ok := fieldName(sf, tagName)
		if !ok {
			continue
		}
		raw, found := lookup(name)
		if !found {
			continue
		}
		if err := setValue(field, raw); err != nil {
			return fmt.Errorf("%w: %s: %v", bindErr, name, err)
		}
	}
	return nil
}

func fieldName(sf reflect.StructField, tagName string) (string, bool) {
	tag, ok := sf.Tag.Lookup(tagName)
	if !ok || tag == "-" {
		return "", false
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		name = strings.ToLower(sf.Name)
	}
	return name, true
}

func setValue(field reflect.Value, raw string) error {
	if field.Kind() == reflect.Pointer {
		if raw == "" {
			return nil
		}
		ptr := reflect.New(field.Type().Elem())
		if err := setValue(ptr.Elem(), raw); err != nil {
			return err
		}
		field.Set(ptr)
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if strings.TrimSpace(raw) == "" {
			field.SetInt(0)
			return nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer %q", raw)
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if strings.TrimSpace(raw) == "" {
			field.SetUint(0)
			return nil
		}
		n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer %q", raw)
		}
		field.SetUint(n)
	case reflect.Bool:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "1", "true", "on", "yes":
			field.SetBool(true)
		case "", "0", "false", "off", "no":
			field.SetBool(false)
		default:
			return fmt.Errorf("invalid boolean %q", raw)
		}
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}
