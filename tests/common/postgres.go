package common

import (
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresUser     = "marketplay"
	postgresPassword = "marketplay"
	postgresDB       = "marketplay"
)

// PostgresContainer is the shared PostgreSQL instance used by store tests.
type PostgresContainer struct {
	*sharedContainer
}

var postgres = &sharedContainer{name: "Postgres", port: "5432/tcp"}

// StartPostgres starts (once per process) a PostgreSQL 16 server.
func StartPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	postgres.start(t, testcontainers.ContainerRequest{
		Image: "postgres:16-alpine",
		Env: map[string]string{
			"POSTGRES_USER":     postgresUser,
			"POSTGRES_PASSWORD": postgresPassword,
			"POSTGRES_DB":       postgresDB,
		},
		// The server logs readiness twice: once for the init run, once for real.
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(60 * time.Second),
	})
	return &PostgresContainer{postgres}
}

// DSN returns a connection string for the container's database.
func (c *PostgresContainer) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, c.host, c.mapped, postgresDB)
}
