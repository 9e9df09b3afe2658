// Package testutils starts disposable databases for the source integration
// tests and holds the fixture they load.
package testutils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const startupTimeout = 2 * time.Minute

// Endpoint is where a started container can be reached from the test.
type Endpoint struct {
	Host string
	Port int
}

// StartContainer runs req and returns the host side of port. The container
// is terminated when the test ends.
func StartContainer(t *testing.T, req testcontainers.ContainerRequest, port nat.Port) Endpoint {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start %s: %s", req.Image, err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate %s: %s", req.Image, err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get host of %s: %s", req.Image, err)
	}
	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		t.Fatalf("failed to get port %s of %s: %s", port, req.Image, err)
	}
	return Endpoint{Host: host, Port: mapped.Int()}
}

// StartPostgres returns a connection string for a fresh database "sieve".
func StartPostgres(t *testing.T) string {
	t.Helper()
	endpoint := StartContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "sieve",
			"POSTGRES_PASSWORD": "sieve",
			"POSTGRES_DB":       "sieve",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(startupTimeout),
	}, "5432/tcp")

	return fmt.Sprintf("postgres://sieve:sieve@%s:%d/sieve?sslmode=disable", endpoint.Host, endpoint.Port)
}

// StartMySQL returns the endpoint of a fresh database "sieve" with user
// root and password "sieve".
func StartMySQL(t *testing.T) Endpoint {
	t.Helper()
	return StartContainer(t, testcontainers.ContainerRequest{
		Image:        "mysql:8.0",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "sieve",
			"MYSQL_DATABASE":      "sieve",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").
			WithStartupTimeout(startupTimeout),
	}, "3306/tcp")
}

// StartMongoDB returns a connection URI for a standalone server.
func StartMongoDB(t *testing.T) string {
	t.Helper()
	endpoint := StartContainer(t, testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(startupTimeout),
	}, "27017/tcp")

	return fmt.Sprintf("mongodb://%s:%d", endpoint.Host, endpoint.Port)
}
