package mysql

import (
	"context"
	"fmt"
	"iter"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/ssh"

	"github.com/datazip-inc/sieve/source"
	"github.com/datazip-inc/sieve/types"
	"github.com/datazip-inc/sieve/utils"
	"github.com/datazip-inc/sieve/utils/logger"
)

type Config struct {
	Host     string `json:"host" validate:"required"`
	Port     int    `json:"port" validate:"required,gt=0"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password"`
	Database string `json:"database" validate:"required"`
	Query    string `json:"query,omitempty" validate:"required_without=Table"`
	Table    string `json:"table,omitempty" validate:"required_without=Query"`

	SSLConfig *utils.SSLConfig `json:"ssl,omitempty"`
	SSHConfig *utils.SSHConfig `json:"ssh_config,omitempty"`
}

func (c *Config) Validate() error {
	return utils.Validate(c)
}

func (c *Config) addr() string {
	return net.JoinHostPort(c.Host, fmt.Sprint(c.Port))
}

// dsn builds the connection string. network and tlsKey name a dialer and a
// TLS config registered with the driver; empty means plain tcp and no TLS.
func (c *Config) dsn(network, tlsKey string) string {
	cfg := mysql.NewConfig()
	cfg.User = c.Username
	cfg.Passwd = c.Password
	cfg.Net = utils.Ternary(network == "", "tcp", network).(string)
	cfg.Addr = c.addr()
	cfg.DBName = c.Database
	cfg.ParseTime = true
	cfg.TLSConfig = tlsKey
	return cfg.FormatDSN()
}

// register hands the ssl section and the tunnel to the driver, which only
// refers to them by name from a DSN.
func (c *Config) register(tunnel *ssh.Client) (network, tlsKey string, err error) {
	name := "sieve-" + c.addr()
	if c.SSLConfig != nil {
		tlsConfig, err := c.SSLConfig.TLSConfig(c.Host)
		if err != nil {
			return "", "", err
		}
		if tlsConfig != nil {
			if err := mysql.RegisterTLSConfig(name, tlsConfig); err != nil {
				return "", "", fmt.Errorf("failed to register tls config: %s", err)
			}
			tlsKey = name
		}
	}
	if tunnel != nil {
		mysql.RegisterDialContext(name, func(ctx context.Context, addr string) (net.Conn, error) {
			return tunnel.DialContext(ctx, "tcp", addr)
		})
		network = name
	}
	return network, tlsKey, nil
}

func (c *Config) query() string {
	if c.Query != "" {
		return c.Query
	}
	return fmt.Sprintf("SELECT * FROM `%s`", strings.ReplaceAll(c.Table, "`", "``"))
}

// MySQL streams the rows of a query.
type MySQL struct {
	config *Config
	client *sqlx.DB
	tunnel *ssh.Client
}

func (m *MySQL) GetConfigRef() source.Config {
	m.config = &Config{}
	return m.config
}

func (m *MySQL) Type() string {
	return string(types.MySQL)
}

func (m *MySQL) Setup(ctx context.Context) error {
	if m.config.SSHConfig != nil {
		tunnel, err := m.config.SSHConfig.Connect()
		if err != nil {
			return err
		}
		m.tunnel = tunnel
		logger.Infof("[mysql] tunneling through %s", m.config.SSHConfig.Host)
	}

	network, tlsKey, err := m.config.register(m.tunnel)
	if err != nil {
		return err
	}
	client, err := sqlx.ConnectContext(ctx, "mysql", m.config.dsn(network, tlsKey))
	if err != nil {
		return fmt.Errorf("failed to connect to mysql: %s", err)
	}
	m.client = client
	return nil
}

func (m *MySQL) Records(ctx context.Context) iter.Seq2[types.Record, error] {
	return func(yield func(types.Record, error) bool) {
		query := m.config.query()
		logger.Debugf("[mysql] running query: %s", query)

		rows, err := m.client.QueryxContext(ctx, query)
		if err != nil {
			yield(types.Record{}, fmt.Errorf("failed to run query: %s", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			data := make(map[string]any)
			if err := rows.MapScan(data); err != nil {
				yield(types.Record{}, fmt.Errorf("failed to scan row: %s", err))
				return
			}
			if !yield(types.CreateRecord(normalize(data)), nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(types.Record{}, fmt.Errorf("failed to iterate rows: %s", err))
		}
	}
}

// normalize turns the []byte the driver returns for text columns into strings.
func normalize(data map[string]any) map[string]any {
	for key, value := range data {
		if raw, ok := value.([]byte); ok {
			data[key] = string(raw)
		}
	}
	return data
}

func (m *MySQL) Close(_ context.Context) error {
	return utils.ErrExecSequential(
		func() error {
			if m.client == nil {
				return nil
			}
			return m.client.Close()
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
	source.RegisteredSources[types.MySQL] = func() source.Source {
		return &MySQL{}
	}
}
