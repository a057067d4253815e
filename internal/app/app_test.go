package app

import (
	"context"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeReportsListenFailure(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	t.Cleanup(func() { _ = ln.Close() })

	//nolint:exhaustruct
	srv := &http.Server{Addr: ln.Addr().String()}

	err = serve(srv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run http server on "+ln.Addr().String())
}

func TestServeAfterShutdown(t *testing.T) {
	t.Parallel()

	//nolint:exhaustruct
	srv := &http.Server{Addr: "127.0.0.1:0"}
	require.NoError(t, srv.Shutdown(context.Background()))

	assert.NoError(t, serve(srv))
}
