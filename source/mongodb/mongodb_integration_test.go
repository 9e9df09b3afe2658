//go:build integration

package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/datazip-inc/sieve/source"
	"github.com/datazip-inc/sieve/types"
	"github.com/datazip-inc/sieve/utils/testutils"
)

func TestMongoSourceIntegration(t *testing.T) {
	ctx := context.Background()
	uri := testutils.StartMongoDB(t)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	defer func() { _ = client.Disconnect(ctx) }()

	var docs []any
	for _, c := range testutils.Comments() {
		doc := bson.D{{Key: "id", Value: c.ID}, {Key: "author", Value: c.Author}}
		if c.Text != nil {
			doc = append(doc, bson.E{Key: "text", Value: *c.Text})
		}
		docs = append(docs, doc)
	}
	_, err = client.Database("sieve").Collection("comments").InsertMany(ctx, docs)
	require.NoError(t, err)

	src, err := source.NewSource(ctx, &types.SourceConfig{
		Type:    types.MongoDB,
		Adapter: map[string]any{"uri": uri, "database": "sieve", "collection": "comments", "batch_size": 2},
	}, nil)
	require.NoError(t, err)
	defer func() { require.NoError(t, src.Close(ctx)) }()

	for _, tc := range testutils.FixtureCases {
		t.Run(tc.Filter, func(t *testing.T) {
			assert.Equal(t, tc.Expected, testutils.MatchingIDs(t, src, tc.Filter))
		})
	}
}
