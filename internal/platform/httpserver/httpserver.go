package httpserver

import (
	"net/http"
	"time"
)

// New builds the fleet API server. Header reads and idle keep-alives are
// bounded so a stalled client cannot pin a connection; the handlers stay
// unbounded because rental closing may wait on the database.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
