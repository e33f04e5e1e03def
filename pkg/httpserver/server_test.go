package httpserver_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artfolio/artfolio/pkg/httpserver"
)

func testConfig() httpserver.Config {
	return httpserver.Config{
		Addr:            "127.0.0.1:0",
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		IdleTimeout:     time.Second,
		ShutdownTimeout: time.Second,
	}
}

func TestServerRun(t *testing.T) {
	t.Parallel()

	t.Run("stops on context cancellation", func(t *testing.T) {
		t.Parallel()

		srv := httpserver.New(testConfig())
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			done <- srv.Run(ctx, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		}()

		// Give the listener a moment to come up before canceling.
		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop after context cancellation")
		}
	})

	t.Run("nil handler responds not found", func(t *testing.T) {
		t.Parallel()

		srv := httpserver.New(testConfig())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan error, 1)
		go func() { done <- srv.Run(ctx, nil) }()

		time.Sleep(50 * time.Millisecond)
		cancel()
		require.NoError(t, <-done)
	})

	t.Run("shutdown is safe before run", func(t *testing.T) {
		t.Parallel()

		srv := httpserver.New(testConfig())
		assert.NoError(t, srv.Shutdown(context.Background()))
	})
}
