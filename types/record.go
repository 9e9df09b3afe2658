package types

import (
	"github.com/goccy/go-json"
)

// Record is one row read from a source, keyed by column name.
// A missing key and a nil value both mean the column holds no value.
type Record struct {
	Data map[string]any
}

func CreateRecord(data map[string]any) Record {
	if data == nil {
		data = map[string]any{}
	}
	return Record{Data: data}
}

// Get returns the value of column and whether it holds one.
func (r Record) Get(column string) (any, bool) {
	v, ok := r.Data[column]
	return v, ok && v != nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Data)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &r.Data)
}
