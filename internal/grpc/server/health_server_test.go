package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/magabrotheeeer/dues-ledger/internal/grpc/client"
)

func startServer(t *testing.T, checks map[string]Check) (*HealthServer, *client.HealthClient) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewHealthServer(logger, checks)

	lis := bufconn.Listen(1024 * 1024)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.GracefulStop)

	c, err := client.NewHealthClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return srv, c
}

func TestHealthServer_NotServingUntilProbed(t *testing.T) {
	_, c := startServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	serving, err := c.Serving(ctx, ServiceName)
	require.NoError(t, err)
	assert.False(t, serving)
}

func TestHealthServer_Probe(t *testing.T) {
	storageUp := true
	srv, c := startServer(t, map[string]Check{
		"storage": func(context.Context) error {
			if storageUp {
				return nil
			}
			return errors.New("connection refused")
		},
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, srv.Probe(ctx))
	serving, err := c.Serving(ctx, ServiceName)
	require.NoError(t, err)
	assert.True(t, serving)

	storageUp = false
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, srv.Probe(ctx))
	serving, err = c.Serving(ctx, "")
	require.NoError(t, err)
	assert.False(t, serving)
}

func TestHealthServer_UnknownService(t *testing.T) {
	_, c := startServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := c.Serving(ctx, "payments")
	assert.Error(t, err)
}

func TestHealthServer_WatchStopsOnCancel(t *testing.T) {
	srv, _ := startServer(t, map[string]Check{"noop": func(context.Context) error { return nil }})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.Watch(ctx, 10*time.Millisecond)
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}
