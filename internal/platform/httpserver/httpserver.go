// Package httpserver builds the process's *http.Server from configuration.
package httpserver

import (
	"net/http"
	"time"

	"unique/internal/platform/config"
)

const (
	readHeaderTimeout = 5 * time.Second
	maxHeaderBytes    = 1 << 16
)

// New returns a server for handler. Zero timeouts in cfg fall back to the
// header timeout so a misconfigured deployment never runs unbounded.
func New(cfg config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       orDefault(cfg.ReadTimeout),
		WriteTimeout:      orDefault(cfg.WriteTimeout),
		IdleTimeout:       orDefault(cfg.IdleTimeout),
		MaxHeaderBytes:    maxHeaderBytes,
	}
}

func orDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return readHeaderTimeout
	}
	return d
}
