package testutils

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datazip-inc/sieve/filter"
	"github.com/datazip-inc/sieve/mapper"
	"github.com/datazip-inc/sieve/source"
	"github.com/datazip-inc/sieve/types"
)

// MatchingIDs runs expr over every record of src and returns the sorted
// string form of the "id" column of the matches.
func MatchingIDs(t *testing.T, src source.Source, expr string) []string {
	t.Helper()
	ctx := context.Background()

	match, err := filter.Build[types.Record](expr, mapper.NewRecordBinder(types.FilterConfig{}))
	require.NoError(t, err)

	var ids []string
	for record, err := range filter.ApplySeq2(src.Records(ctx), match) {
		require.NoError(t, err)
		id, ok := mapper.Stringify(record.Data["id"])
		require.True(t, ok, "record without id: %v", record.Data)
		ids = append(ids, id)
	}
	// numeric order for the fixture's non-negative ids
	slices.SortFunc(ids, func(a, b string) int {
		if len(a) != len(b) {
			return len(a) - len(b)
		}
		return strings.Compare(a, b)
	})
	return ids
}
