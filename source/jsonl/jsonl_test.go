package jsonl

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datazip-inc/sieve/filter"
	"github.com/datazip-inc/sieve/mapper"
	"github.com/datazip-inc/sieve/source"
	"github.com/datazip-inc/sieve/types"
	"github.com/datazip-inc/sieve/utils"
)

const lines = `{"id": 1, "text": "null at start", "author": {"name": "Dog"}}
{"id": 2, "text": null, "author": {"name": "null"}}
{"id": 12345678901234567890, "text": "big id"}
`

func TestDecode(t *testing.T) {
	var records []types.Record
	for record, err := range Decode(context.Background(), strings.NewReader(lines)) {
		require.NoError(t, err)
		records = append(records, record)
	}

	require.Len(t, records, 3)
	assert.Equal(t, json.Number("1"), records[0].Data["id"])
	_, ok := records[1].Get("text")
	assert.False(t, ok)

	id, ok := mapper.Stringify(records[2].Data["id"])
	require.True(t, ok)
	assert.Equal(t, "12345678901234567890", id)
}

func TestDecodeMalformed(t *testing.T) {
	input := "{\"id\": 1}\n{oops}\n{\"id\": 3}\n"
	var errs []error
	count := 0
	for _, err := range Decode(context.Background(), strings.NewReader(input)) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		count++
	}
	assert.Equal(t, 1, count)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "record 2")
}

func TestDecodeStopsEarly(t *testing.T) {
	count := 0
	for range Decode(context.Background(), strings.NewReader(lines)) {
		count++
		break
	}
	assert.Equal(t, 1, count)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, err := range Decode(ctx, strings.NewReader(lines)) {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestParseS3Path(t *testing.T) {
	bucket, key, err := parseS3Path("s3://logs/2024/comments.jsonl")
	require.NoError(t, err)
	assert.Equal(t, "logs", bucket)
	assert.Equal(t, "2024/comments.jsonl", key)

	for _, path := range []string{"s3://bucket", "s3:///key", "s3://bucket/"} {
		_, _, err := parseS3Path(path)
		assert.Error(t, err, path)
	}
}

func TestJSONLSource(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "comments.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o600))

	keyring, err := utils.NewKeyring(ctx, "test-secret")
	require.NoError(t, err)
	encrypted, err := keyring.EncryptConfig(`{"path": "` + path + `"}`)
	require.NoError(t, err)

	testCases := []struct {
		name      string
		adapter   any
		decrypter source.Decrypter
	}{
		{"plain", map[string]any{"path": path}, nil},
		{"encrypted", encrypted, keyring},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src, err := source.NewSource(ctx, &types.SourceConfig{Type: types.JSONL, Adapter: tc.adapter}, tc.decrypter)
			require.NoError(t, err)
			defer func() { require.NoError(t, src.Close(ctx)) }()

			match, err := filter.Build[types.Record]("text|author.name@=null", mapper.NewRecordBinder(types.FilterConfig{}))
			require.NoError(t, err)

			var ids []string
			for record, err := range filter.ApplySeq2(src.Records(ctx), match) {
				require.NoError(t, err)
				id, _ := mapper.Stringify(record.Data["id"])
				ids = append(ids, id)
			}
			assert.Equal(t, []string{"1", "2"}, ids)
		})
	}
}

func TestJSONLSourceMissingFile(t *testing.T) {
	_, err := source.NewSource(context.Background(), &types.SourceConfig{
		Type:    types.JSONL,
		Adapter: map[string]any{"path": filepath.Join(t.TempDir(), "nope.jsonl")},
	}, nil)
	assert.Error(t, err)

	_, err = source.NewSource(context.Background(), &types.SourceConfig{
		Type:    types.JSONL,
		Adapter: map[string]any{},
	}, nil)
	assert.ErrorContains(t, err, "path is a required field")
}
