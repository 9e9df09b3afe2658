package parquet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/datazip-inc/sieve/source"
	"github.com/datazip-inc/sieve/types"
	"github.com/datazip-inc/sieve/utils"
	"github.com/datazip-inc/sieve/utils/logger"
)

const defaultBatchSize = 512

type Config struct {
	Path      string `json:"path" validate:"required"`
	BatchSize int    `json:"batch_size,omitempty" validate:"gte=0"`
}

func (c *Config) Validate() error {
	return utils.Validate(c)
}

// Parquet reads the rows of a local parquet file. Nested columns are keyed
// by their dotted path; repeated columns become slices.
type Parquet struct {
	config *Config
	file   *os.File
	reader *parquet.Reader
}

func (p *Parquet) GetConfigRef() source.Config {
	p.config = &Config{}
	return p.config
}

func (p *Parquet) Type() string {
	return string(types.Parquet)
}

func (p *Parquet) Setup(_ context.Context) error {
	file, err := os.Open(p.config.Path)
	if err != nil {
		return fmt.Errorf("failed to open file[%s]: %s", p.config.Path, err)
	}
	p.file = file
	p.reader = parquet.NewReader(file)
	return nil
}

func (p *Parquet) Records(ctx context.Context) iter.Seq2[types.Record, error] {
	return ReadRows(ctx, p.reader, p.config.BatchSize)
}

func (p *Parquet) Close(_ context.Context) error {
	return utils.ErrExecSequential(
		func() error {
			if p.reader == nil {
				return nil
			}
			return p.reader.Close()
		},
		func() error {
			if p.file == nil {
				return nil
			}
			return p.file.Close()
		},
	)
}

// ReadRows yields every row of reader as a record, reading batchSize rows
// at a time.
func ReadRows(ctx context.Context, reader *parquet.Reader, batchSize int) iter.Seq2[types.Record, error] {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	columns := columnsOf(reader.Schema())

	return func(yield func(types.Record, error) bool) {
		rows := make([]parquet.Row, batchSize)
		total := 0
		for {
			if err := ctx.Err(); err != nil {
				yield(types.Record{}, err)
				return
			}

			n, err := reader.ReadRows(rows)
			for _, row := range rows[:n] {
				if !yield(rowToRecord(row, columns), nil) {
					return
				}
			}
			total += n

			if errors.Is(err, io.EOF) {
				logger.Debugf("[parquet] finished after %d rows", total)
				return
			}
			if err != nil {
				yield(types.Record{}, fmt.Errorf("failed to read parquet rows: %s", err))
				return
			}
		}
	}
}

type column struct {
	name     string
	repeated bool
}

func columnsOf(schema *parquet.Schema) []column {
	paths := schema.Columns()
	columns := make([]column, len(paths))
	for i, path := range paths {
		leaf, _ := schema.Lookup(path...)
		columns[i] = column{
			name:     strings.Join(path, "."),
			repeated: leaf.MaxRepetitionLevel > 0,
		}
	}
	return columns
}

func rowToRecord(row parquet.Row, columns []column) types.Record {
	data := make(map[string]any, len(columns))
	for _, value := range row {
		if value.IsNull() {
			continue
		}
		col := columns[value.Column()]
		if col.repeated {
			existing, _ := data[col.name].([]any)
			data[col.name] = append(existing, convertValue(value))
			continue
		}
		data[col.name] = convertValue(value)
	}
	return types.CreateRecord(data)
}

func convertValue(value parquet.Value) any {
	switch value.Kind() {
	case parquet.Boolean:
		return value.Boolean()
	case parquet.Int32:
		return value.Int32()
	case parquet.Int64:
		return value.Int64()
	case parquet.Float:
		return value.Float()
	case parquet.Double:
		return value.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(value.ByteArray())
	default:
		return value.String()
	}
}

func init() {
	source.RegisteredSources[types.Parquet] = func() source.Source {
		return &Parquet{}
	}
}
