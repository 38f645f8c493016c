package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"unique/internal/platform/config"
)

func TestNew(t *testing.T) {
	h := http.NotFoundHandler()
	srv := New(config.Server{
		Addr:         ":9090",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
	}, h)

	assert.Equal(t, ":9090", srv.Addr)
	assert.Equal(t, 10*time.Second, srv.ReadTimeout)
	assert.Equal(t, 20*time.Second, srv.WriteTimeout)
	assert.Equal(t, readHeaderTimeout, srv.IdleTimeout)
	assert.Equal(t, readHeaderTimeout, srv.ReadHeaderTimeout)
	assert.Equal(t, 1<<16, srv.MaxHeaderBytes)
}
