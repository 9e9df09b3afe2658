package sink

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/goccy/go-json"

	"github.com/datazip-inc/sieve/types"
)

// JSONL writes records as newline-delimited JSON.
type JSONL struct {
	buf     *bufio.Writer
	encoder *json.Encoder
	closer  io.Closer
	written atomic.Int64
}

// NewJSONL writes to path, or to w when path is empty or "-".
func NewJSONL(path string, w io.Writer) (*JSONL, error) {
	var closer io.Closer
	if path != "" && path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file[%s]: %s", path, err)
		}
		w, closer = file, file
	}

	buf := bufio.NewWriter(w)
	return &JSONL{
		buf:     buf,
		encoder: json.NewEncoder(buf),
		closer:  closer,
	}, nil
}

func (s *JSONL) Write(record types.Record) error {
	if err := s.encoder.Encode(record); err != nil {
		return fmt.Errorf("failed to write record: %s", err)
	}
	s.written.Add(1)
	return nil
}

func (s *JSONL) Written() int64 {
	return s.written.Load()
}

// Close flushes buffered records and closes the output file, if any.
func (s *JSONL) Close() error {
	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %s", err)
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
