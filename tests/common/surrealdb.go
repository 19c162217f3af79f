package common

import (
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SurrealDBContainer is the shared SurrealDB instance used by store tests.
type SurrealDBContainer struct {
	*sharedContainer
}

var surreal = &sharedContainer{name: "SurrealDB", port: "8000/tcp"}

// StartSurrealDB starts (once per process) a SurrealDB server with root/root credentials.
func StartSurrealDB(t *testing.T) *SurrealDBContainer {
	t.Helper()
	surreal.start(t, testcontainers.ContainerRequest{
		Image: "surrealdb/surrealdb:v3.0.0",
		Cmd:   []string{"start", "--user", "root", "--pass", "root"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("8000/tcp"),
			wait.ForLog("Started web server"),
		).WithDeadline(60 * time.Second),
	})
	return &SurrealDBContainer{surreal}
}

// Address returns the WebSocket RPC address for SurrealDB.
func (c *SurrealDBContainer) Address() string {
	return fmt.Sprintf("ws://%s:%s/rpc", c.host, c.mapped)
}
