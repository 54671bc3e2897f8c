// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

// Package form unmarshals url-encoded form values into tagged structs. It is
// the non-JS fallback path of the RSVP form, the JSON API does not use it.
package form

import (
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var uuidType = reflect.TypeOf(uuid.UUID{})

func Unmarshal(input url.Values, target any) error {
	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return &InvalidUnmarshalError{Type: reflect.TypeOf(target)}
	}
	return unmarshalStruct(input, "", val.Elem())
}

func unmarshalStruct(input url.Values, prefix string, v reflect.Value) error {
	ttype := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := ttype.Field(i)
		fieldName := field.Tag.Get("form")
		if fieldName == "" || fieldName == "-" {
			continue
		}
		fieldName = prefix + fieldName
		fieldVal := v.Field(i)

		// Nested structs are addressed with a dotted prefix, except uuids
		// which parse from their text form.
		if field.Type == uuidType {
			raw, ok := first(input, fieldName)
			if !ok || raw == "" {
				continue
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				return err
			}
			fieldVal.Set(reflect.ValueOf(id))
			continue
		}
		if field.Type.Kind() == reflect.Struct {
			if err := unmarshalStruct(input, fieldName+".", fieldVal); err != nil {
				return err
			}
			continue
		}

		switch field.Type.Kind() {
		case reflect.Slice:
			values, exists := input[fieldName]
			if !exists || field.Type.Elem().Kind() != reflect.String {
				continue
			}
			fieldVal.Set(reflect.ValueOf(values))
		case reflect.String:
			if raw, ok := first(input, fieldName); ok {
				fieldVal.SetString(raw)
			}
		case reflect.Bool:
			if raw, ok := first(input, fieldName); ok {
				fieldVal.SetBool(strings.ToLower(raw) == "true")
			}
		case reflect.Int:
			raw, ok := first(input, fieldName)
			if !ok || raw == "" {
				continue
			}
			intValue, err := strconv.Atoi(raw)
			if err != nil {
				return err
			}
			fieldVal.SetInt(int64(intValue))
		case reflect.Float64:
			raw, ok := first(input, fieldName)
			if !ok || raw == "" {
				continue
			}
			floatValue, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return err
			}
			fieldVal.SetFloat(floatValue)
		}
	}
	return nil
}

// first takes only the first submitted value.
func first(input url.Values, key string) (string, bool) {
	value, exists := input[key]
	if !exists || len(value) == 0 {
		return "", false
	}
	return value[0], true
}

type InvalidUnmarshalError struct {
	Type reflect.Type
}

func (e *InvalidUnmarshalError) Error() string {
	if e.Type == nil {
		return "form: Unmarshal(nil)"
	}

	if e.Type.Kind() != reflect.Pointer {
		return "form: Unmarshal(non-pointer " + e.Type.String() + ")"
	}
	return "form: Unmarshal(nil " + e.Type.String() + ")"
}
