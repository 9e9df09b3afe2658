package mapper

import (
	"fmt"
	"strings"

	"github.com/datazip-inc/sieve/filter"
	"github.com/datazip-inc/sieve/types"
)

// RecordBinder resolves filter names against map-backed records.
type RecordBinder struct {
	mappings   map[string]string
	filterable map[string]struct{}
}

// NewRecordBinder builds a binder from the mapping section of a config.
func NewRecordBinder(cfg types.FilterConfig) *RecordBinder {
	binder := &RecordBinder{mappings: cfg.Mappings}
	if len(cfg.Filterable) > 0 {
		binder.filterable = make(map[string]struct{}, len(cfg.Filterable))
		for _, name := range cfg.Filterable {
			binder.filterable[name] = struct{}{}
		}
	}
	return binder
}

// Bind maps name to a column, through Mappings when it has an entry.
// A dotted column ("author.name") walks nested maps.
func (b *RecordBinder) Bind(name string) (filter.Accessor[types.Record], error) {
	if b.filterable != nil {
		if _, ok := b.filterable[name]; !ok {
			return nil, fmt.Errorf("%w: %q is not filterable", filter.ErrUnresolvableProperty, name)
		}
	}

	column := name
	if mapped, ok := b.mappings[name]; ok {
		column = mapped
	}

	if !strings.Contains(column, ".") {
		return func(record types.Record) (string, bool) {
			v, ok := record.Get(column)
			if !ok {
				return "", false
			}
			return Stringify(v)
		}, nil
	}

	path := strings.Split(column, ".")
	return func(record types.Record) (string, bool) {
		// a flat key that happens to contain dots wins over the nested path
		if v, ok := record.Data[column]; ok {
			return Stringify(v)
		}
		v, ok := lookupPath(record.Data, path)
		if !ok {
			return "", false
		}
		return Stringify(v)
	}, nil
}

func lookupPath(data map[string]any, path []string) (any, bool) {
	var current any = data
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = m[key]; !ok {
			return nil, false
		}
	}
	return current, true
}
