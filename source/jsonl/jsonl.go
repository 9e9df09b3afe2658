package jsonl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/datazip-inc/sieve/source"
	"github.com/datazip-inc/sieve/types"
	"github.com/datazip-inc/sieve/utils"
	"github.com/datazip-inc/sieve/utils/logger"
)

const s3Scheme = "s3://"

type Config struct {
	// Path is a local file, "-" for stdin, or s3://bucket/key.
	Path   string `json:"path" validate:"required"`
	Region string `json:"region,omitempty"`
}

func (c *Config) Validate() error {
	return utils.Validate(c)
}

// JSONL reads one JSON object per line.
type JSONL struct {
	config *Config
	reader io.ReadCloser
}

func (j *JSONL) GetConfigRef() source.Config {
	j.config = &Config{}
	return j.config
}

func (j *JSONL) Type() string {
	return string(types.JSONL)
}

func (j *JSONL) Setup(ctx context.Context) error {
	switch {
	case j.config.Path == "-":
		j.reader = io.NopCloser(os.Stdin)
	case strings.HasPrefix(j.config.Path, s3Scheme):
		body, err := openS3Object(ctx, j.config.Path, j.config.Region)
		if err != nil {
			return err
		}
		j.reader = body
	default:
		file, err := os.Open(j.config.Path)
		if err != nil {
			return fmt.Errorf("failed to open file[%s]: %s", j.config.Path, err)
		}
		j.reader = file
	}
	return nil
}

func (j *JSONL) Records(ctx context.Context) iter.Seq2[types.Record, error] {
	return Decode(ctx, j.reader)
}

func (j *JSONL) Close(_ context.Context) error {
	if j.reader == nil {
		return nil
	}
	return j.reader.Close()
}

// Decode yields the JSON objects of r in order. Numbers are kept as
// json.Number so large integers compare exactly.
func Decode(ctx context.Context, r io.Reader) iter.Seq2[types.Record, error] {
	return func(yield func(types.Record, error) bool) {
		decoder := json.NewDecoder(r)
		decoder.UseNumber()
		for line := 1; ; line++ {
			if err := ctx.Err(); err != nil {
				yield(types.Record{}, err)
				return
			}

			var data map[string]any
			err := decoder.Decode(&data)
			if errors.Is(err, io.EOF) {
				logger.Debugf("[jsonl] finished after %d records", line-1)
				return
			}
			if err != nil {
				yield(types.Record{}, fmt.Errorf("failed to decode record %d: %s", line, err))
				return
			}
			if !yield(types.CreateRecord(data), nil) {
				return
			}
		}
	}
}

func init() {
	source.RegisteredSources[types.JSONL] = func() source.Source {
		return &JSONL{}
	}
}
