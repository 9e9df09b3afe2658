package postgres

import (
	"context"
	"fmt"
	"iter"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/ssh"

	"github.com/datazip-inc/sieve/source"
	"github.com/datazip-inc/sieve/types"
	"github.com/datazip-inc/sieve/utils"
	"github.com/datazip-inc/sieve/utils/logger"
)

type Config struct {
	ConnectionString string `json:"connection_string" validate:"required"`
	// Query defaults to selecting every column of Table.
	Query string `json:"query,omitempty" validate:"required_without=Table"`
	Table string `json:"table,omitempty" validate:"required_without=Query"`

	SSLConfig *utils.SSLConfig `json:"ssl,omitempty"`
	SSHConfig *utils.SSHConfig `json:"ssh_config,omitempty"`
}

// Validate also checks the ssl and ssh sections, which the validator walks into.
func (c *Config) Validate() error {
	return utils.Validate(c)
}

// connConfig parses the connection string and applies the ssl section and
// the tunnel, when given.
func (c *Config) connConfig(tunnel *ssh.Client) (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(c.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %s", err)
	}

	if c.SSLConfig != nil {
		tlsConfig, err := c.SSLConfig.TLSConfig(cfg.Host)
		if err != nil {
			return nil, err
		}
		cfg.TLSConfig = tlsConfig
		cfg.Fallbacks = nil
	}

	if tunnel != nil {
		cfg.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return tunnel.DialContext(ctx, network, addr)
		}
		// the host is resolved on the far side of the tunnel
		cfg.LookupFunc = func(_ context.Context, host string) ([]string, error) {
			return []string{host}, nil
		}
	}
	return cfg, nil
}

func (c *Config) query() string {
	if c.Query != "" {
		return c.Query
	}
	return fmt.Sprintf("SELECT * FROM %s", pgx.Identifier(strings.Split(c.Table, ".")).Sanitize())
}

// Postgres streams the rows of a query.
type Postgres struct {
	config *Config
	conn   *pgx.Conn
	tunnel *ssh.Client
}

func (p *Postgres) GetConfigRef() source.Config {
	p.config = &Config{}
	return p.config
}

func (p *Postgres) Type() string {
	return string(types.Postgres)
}

func (p *Postgres) Setup(ctx context.Context) error {
	if p.config.SSHConfig != nil {
		tunnel, err := p.config.SSHConfig.Connect()
		if err != nil {
			return err
		}
		p.tunnel = tunnel
		logger.Infof("[postgres] tunneling through %s", p.config.SSHConfig.Host)
	}

	cfg, err := p.config.connConfig(p.tunnel)
	if err != nil {
		return err
	}
	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %s", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return fmt.Errorf("failed to ping postgres: %s", err)
	}
	p.conn = conn
	return nil
}

func (p *Postgres) Records(ctx context.Context) iter.Seq2[types.Record, error] {
	return func(yield func(types.Record, error) bool) {
		query := p.config.query()
		logger.Debugf("[postgres] running query: %s", query)

		rows, err := p.conn.Query(ctx, query)
		if err != nil {
			yield(types.Record{}, fmt.Errorf("failed to run query: %s", err))
			return
		}
		// closing early releases the connection without draining the result
		defer rows.Close()

		fields := rows.FieldDescriptions()
		for rows.Next() {
			values, err := rows.Values()
			if err != nil {
				yield(types.Record{}, fmt.Errorf("failed to scan row: %s", err))
				return
			}
			data := make(map[string]any, len(fields))
			for i, field := range fields {
				data[field.Name] = values[i]
			}
			if !yield(types.CreateRecord(data), nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(types.Record{}, fmt.Errorf("failed to iterate rows: %s", err))
		}
	}
}

func (p *Postgres) Close(ctx context.Context) error {
	return utils.ErrExecSequential(
		func() error {
			if p.conn == nil {
				return nil
			}
			return p.conn.Close(ctx)
		},
		func() error {
			if p.tunnel == nil {
				return nil
			}
			return p.tunnel.Close()
		},
	)
}

func init() {
	source.RegisteredSources[types.Postgres] = func() source.Source {
		return &Postgres{}
	}
}
