package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	hookRan := make(chan struct{})
	hooks := &ShutdownHooks{}
	hooks.AddContext("marker", func(context.Context) error {
		close(hookRan)
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- Serve(ctx, srv, time.Second, hooks) }()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	select {
	case <-hookRan:
	default:
		t.Fatal("shutdown hook did not run")
	}
}

func TestServe_ListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	srv := &http.Server{Addr: ln.Addr().String(), Handler: http.NotFoundHandler()}

	err = Serve(context.Background(), srv, time.Second, nil)
	assert.ErrorContains(t, err, "server listen failed")
}
