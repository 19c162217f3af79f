package common

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
)

// sharedContainer starts one container per test process and hands the same
// endpoint to every caller.
type sharedContainer struct {
	name string
	port nat.Port

	once      sync.Once
	container testcontainers.Container
	host      string
	mapped    string
	err       error
}

func (s *sharedContainer) start(t *testing.T, req testcontainers.ContainerRequest) {
	t.Helper()
	RequireDocker(t)

	s.once.Do(func() {
		ctx := context.Background()
		req.ExposedPorts = []string{string(s.port)}

		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err != nil {
			s.err = fmt.Errorf("start %s container: %w", s.name, err)
			return
		}

		host, err := container.Host(ctx)
		if err != nil {
			container.Terminate(ctx)
			s.err = fmt.Errorf("get %s host: %w", s.name, err)
			return
		}

		mappedPort, err := container.MappedPort(ctx, s.port)
		if err != nil {
			container.Terminate(ctx)
			s.err = fmt.Errorf("get %s port: %w", s.name, err)
			return
		}

		s.container, s.host, s.mapped = container, host, mappedPort.Port()
	})

	if s.err != nil {
		t.Fatalf("%s container failed: %v", s.name, s.err)
	}
}

// Cleanup terminates the container. Call from TestMain if needed.
func (s *sharedContainer) Cleanup() {
	if s != nil && s.container != nil {
		s.container.Terminate(context.Background())
	}
}
