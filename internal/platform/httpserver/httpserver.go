// Package httpserver builds the HTTP server the API runs on.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server tuned for this API. ReadTimeout is generous because
// document uploads stream multi-megabyte multipart bodies; slow-header
// clients are still cut off quickly.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       time.Minute,
	}
}
