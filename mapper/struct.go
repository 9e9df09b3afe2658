package mapper

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/datazip-inc/sieve/filter"
)

// StructBinder resolves filter names against the exported fields of a struct
// type T (or pointer to struct). A name matches a field's json tag or its Go
// name, ignoring case; dotted names walk nested structs.
type StructBinder[T any] struct {
	mappings map[string]string
}

func NewStructBinder[T any](mappings map[string]string) *StructBinder[T] {
	return &StructBinder[T]{mappings: mappings}
}

func (b *StructBinder[T]) Bind(name string) (filter.Accessor[T], error) {
	path := name
	if mapped, ok := b.mappings[name]; ok {
		path = mapped
	}

	typ := reflect.TypeFor[T]()
	var index [][]int
	for _, part := range strings.Split(path, ".") {
		for typ.Kind() == reflect.Pointer {
			typ = typ.Elem()
		}
		if typ.Kind() != reflect.Struct {
			return nil, fmt.Errorf("%w: %q: %s is not a struct", filter.ErrUnresolvableProperty, name, typ)
		}
		field, ok := lookupField(typ, part)
		if !ok {
			return nil, fmt.Errorf("%w: %q has no field %q", filter.ErrUnresolvableProperty, typ.Name(), part)
		}
		index = append(index, field.Index)
		typ = field.Type
	}

	return func(entity T) (string, bool) {
		v := reflect.ValueOf(&entity).Elem()
		for _, idx := range index {
			for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
				if v.IsNil() {
					return "", false
				}
				v = v.Elem()
			}
			var err error
			if v, err = v.FieldByIndexErr(idx); err != nil {
				// nil embedded pointer
				return "", false
			}
		}
		return Stringify(v.Interface())
	}, nil
}

func lookupField(typ reflect.Type, name string) (reflect.StructField, bool) {
	for _, field := range reflect.VisibleFields(typ) {
		if !field.IsExported() || field.Anonymous {
			continue
		}
		tag := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if tag == "-" {
			continue
		}
		if strings.EqualFold(tag, name) || strings.EqualFold(field.Name, name) {
			return field, true
		}
	}
	return reflect.StructField{}, false
}
