package mapper

import (
	"fmt"
	"reflect"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cast"
)

// Stringify renders a property value as the text filters compare against.
// ok is false for nil and for nil pointers, which count as no value.
func Stringify(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case *string:
		if val == nil {
			return "", false
		}
		return *val, true
	case time.Time:
		return val.Format(time.RFC3339Nano), true
	case *time.Time:
		if val == nil {
			return "", false
		}
		return val.Format(time.RFC3339Nano), true
	case []byte:
		if val == nil {
			return "", false
		}
		return string(val), true
	case fmt.Stringer:
		if isNilPointer(v) {
			return "", false
		}
		return val.String(), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "", false
		}
		return Stringify(rv.Elem().Interface())
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if rv.Kind() != reflect.Array && rv.Kind() != reflect.Struct && rv.IsNil() {
			return "", false
		}
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v), true
		}
		return string(data), true
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v), true
	}
	return s, true
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
