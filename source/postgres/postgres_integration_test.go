//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datazip-inc/sieve/source"
	"github.com/datazip-inc/sieve/types"
	"github.com/datazip-inc/sieve/utils/testutils"
)

func seedComments(t *testing.T, connString string) {
	t.Helper()
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, connString)
	require.NoError(t, err)
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, `CREATE TABLE public.comments (id integer PRIMARY KEY, text text, author text NOT NULL)`)
	require.NoError(t, err)
	for _, c := range testutils.Comments() {
		_, err := conn.Exec(ctx, `INSERT INTO public.comments (id, text, author) VALUES ($1, $2, $3)`, c.ID, c.Text, c.Author)
		require.NoError(t, err)
	}
}

func TestPostgresSourceIntegration(t *testing.T) {
	ctx := context.Background()
	connString := testutils.StartPostgres(t)
	seedComments(t, connString)

	src, err := source.NewSource(ctx, &types.SourceConfig{
		Type:    types.Postgres,
		Adapter: map[string]any{"connection_string": connString, "table": "public.comments"},
	}, nil)
	require.NoError(t, err)
	defer func() { require.NoError(t, src.Close(ctx)) }()

	for _, tc := range testutils.FixtureCases {
		t.Run(tc.Filter, func(t *testing.T) {
			assert.Equal(t, tc.Expected, testutils.MatchingIDs(t, src, tc.Filter))
		})
	}
}
