// internal/ingest/httpapi/server.go
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// ServerConfig configures the flash ingestion HTTP server.
type ServerConfig struct {
	ListenAddr   string // default :8088
	API          *API   // required
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

var ErrNilAPI = errors.New("httpapi: api is nil")

// StartServer listens on cfg.ListenAddr and serves the API until ctx is
// cancelled. It returns the bound address and a channel that receives a
// terminal error, if any, and is closed when the server stops.
func StartServer(ctx context.Context, cfg ServerConfig) (net.Addr, <-chan error, error) {
	if cfg.API == nil {
		return nil, nil, ErrNilAPI
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8088"
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return nil, nil, err
	}

	srv := &http.Server{
		Handler:      cfg.API.Handler(),
		ReadTimeout:  durationOr(cfg.ReadTimeout, 10*time.Second),
		WriteTimeout: durationOr(cfg.WriteTimeout, 10*time.Second),
		IdleTimeout:  durationOr(cfg.IdleTimeout, 60*time.Second),
	}

	errCh := make(chan error, 1)
	log := cfg.API.log

	go func() {
		log.Info("httpapi: listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// shutdown watcher
	go func() {
		<-ctx.Done()
		cfg.API.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("httpapi: shutdown", "error", err)
		}
	}()

	return ln.Addr(), errCh, nil
}

func durationOr(v, d time.Duration) time.Duration {
	if v <= 0 {
		return d
	}
	return v
}
