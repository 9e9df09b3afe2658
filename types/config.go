package types

// Config is the file passed to `sieve apply --config`.
type Config struct {
	Source SourceConfig `json:"source" validate:"required"`
	Filter FilterConfig `json:"filter"`
}

// FilterConfig maps logical filter names onto record columns.
//
// Mappings renames: a filter on "author" reads column "meta.author_name".
// Filterable, when set, is the complete list of names a filter may use;
// any other name is unresolvable. Unresolved picks what happens then:
// fail (default), skip_property or skip_term. Select, when set, limits the
// columns written for each matching record.
type FilterConfig struct {
	Filter     string            `json:"filter,omitempty"`
	Mappings   map[string]string `json:"mappings,omitempty" validate:"omitempty,dive,keys,required,endkeys,required"`
	Filterable []string          `json:"filterable,omitempty" validate:"omitempty,dive,required"`
	Unresolved string            `json:"unresolved,omitempty" validate:"omitempty,oneof=fail skip_property skip_term"`
	Select     []string          `json:"select,omitempty" validate:"omitempty,dive,required"`
	// Concurrency > 0 materializes the source and evaluates it in parallel.
	Concurrency int `json:"concurrency,omitempty" validate:"gte=0"`
}
