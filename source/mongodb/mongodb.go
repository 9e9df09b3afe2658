package mongodb

import (
	"context"
	"fmt"
	"iter"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/ssh"

	"github.com/datazip-inc/sieve/source"
	"github.com/datazip-inc/sieve/types"
	"github.com/datazip-inc/sieve/utils"
	"github.com/datazip-inc/sieve/utils/logger"
)

type Config struct {
	URI        string `json:"uri" validate:"required"`
	Database   string `json:"database" validate:"required"`
	Collection string `json:"collection" validate:"required"`
	BatchSize  int32  `json:"batch_size,omitempty" validate:"gte=0"`

	SSHConfig *utils.SSHConfig `json:"ssh_config,omitempty"`
}

func (c *Config) Validate() error {
	return utils.Validate(c)
}

// Mongo streams every document of a collection.
type Mongo struct {
	config *Config
	client *mongo.Client
	tunnel *ssh.Client
}

func (m *Mongo) GetConfigRef() source.Config {
	m.config = &Config{}
	return m.config
}

func (m *Mongo) Type() string {
	return string(types.MongoDB)
}

func (m *Mongo) Setup(ctx context.Context) error {
	opts := options.Client().ApplyURI(m.config.URI)
	if m.config.SSHConfig != nil {
		tunnel, err := m.config.SSHConfig.Connect()
		if err != nil {
			return err
		}
		m.tunnel = tunnel
		opts.SetDialer(&utils.SSHDialer{Client: tunnel})
		logger.Infof("[mongodb] tunneling through %s", m.config.SSHConfig.Host)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %s", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("failed to ping mongodb: %s", err)
	}
	m.client = client
	return nil
}

func (m *Mongo) Records(ctx context.Context) iter.Seq2[types.Record, error] {
	return func(yield func(types.Record, error) bool) {
		collection := m.client.Database(m.config.Database).Collection(m.config.Collection)
		opts := options.Find()
		if m.config.BatchSize > 0 {
			opts.SetBatchSize(m.config.BatchSize)
		}

		cursor, err := collection.Find(ctx, bson.D{}, opts)
		if err != nil {
			yield(types.Record{}, fmt.Errorf("failed to open cursor on %s.%s: %s", m.config.Database, m.config.Collection, err))
			return
		}
		defer cursor.Close(ctx)

		count := 0
		for cursor.Next(ctx) {
			var doc bson.M
			if err := cursor.Decode(&doc); err != nil {
				yield(types.Record{}, fmt.Errorf("failed to decode document: %s", err))
				return
			}
			count++
			if !yield(types.CreateRecord(toMap(doc)), nil) {
				return
			}
		}
		if err := cursor.Err(); err != nil {
			yield(types.Record{}, fmt.Errorf("cursor failed after %d documents: %s", count, err))
			return
		}
		logger.Debugf("[mongodb] finished after %d documents", count)
	}
}

// toMap converts bson containers to plain maps and slices so nested names
// resolve, and ObjectIDs to their hex form.
func toMap(doc bson.M) map[string]any {
	data := make(map[string]any, len(doc))
	for key, value := range doc {
		data[key] = convert(value)
	}
	return data
}

func convert(value any) any {
	switch v := value.(type) {
	case bson.M:
		return toMap(v)
	case bson.D:
		return toMap(v.Map())
	case bson.A:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = convert(item)
		}
		return out
	case primitive.ObjectID:
		return v.Hex()
	case primitive.DateTime:
		return v.Time().UTC()
	case primitive.Decimal128:
		return v.String()
	default:
		return v
	}
}

func (m *Mongo) Close(ctx context.Context) error {
	return utils.ErrExecSequential(
		func() error {
			if m.client == nil {
				return nil
			}
			return m.client.Disconnect(ctx)
		},
		func() error {
			if m.tunnel == nil {
				return nil
			}
			return m.tunnel.Close()
		},
	)
}

func init() {
	source.RegisteredSources[types.MongoDB] = func() source.Source {
		return &Mongo{}
	}
}
