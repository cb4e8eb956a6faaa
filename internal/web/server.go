// Package web serves the daemon's status page, its JSON form and the HID
// report descriptor.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sweeney/stick-mouse/internal/hid"
	"github.com/sweeney/stick-mouse/internal/status"
)

const shutdownTimeout = 2 * time.Second

// Snapshotter is the read side of status.Tracker.
type Snapshotter interface {
	Snapshot() status.Snapshot
}

// Server serves status over HTTP.
type Server struct {
	addr   string
	state  Snapshotter
	logger *slog.Logger
	srv    *http.Server
}

// New returns a Server for addr. Nothing is bound until Run or Serve.
func New(addr string, state Snapshotter, logger *slog.Logger) *Server {
	s := &Server{addr: addr, state: state, logger: logger}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.page)
	mux.HandleFunc("GET /index.html", s.page)
	mux.HandleFunc("GET /index.json", s.json)
	mux.HandleFunc("GET /descriptor.bin", s.descriptor)
	return mux
}

// Run listens on the configured address until ctx is cancelled, then shuts
// the server down.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.logger.Info("http status server listening", "addr", ln.Addr().String())

	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}

// Serve accepts connections on ln. A clean shutdown returns nil.
func (s *Server) Serve(ln net.Listener) error {
	if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) page(w http.ResponseWriter, _ *http.Request) {
	noStore(w, "text/html; charset=utf-8")
	if err := renderHTML(w, s.state.Snapshot()); err != nil {
		s.logger.Debug("render status page", "error", err)
	}
}

func (s *Server) json(w http.ResponseWriter, _ *http.Request) {
	noStore(w, "application/json")
	if _, err := w.Write(status.FormatJSON(s.state.Snapshot())); err != nil {
		s.logger.Debug("write status json", "error", err)
	}
}

func (s *Server) descriptor(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="report_desc"`)
	w.Write(hid.ReportDescriptor)
}

// noStore marks live state as uncacheable.
func noStore(w http.ResponseWriter, contentType string) {
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Cache-Control", "no-store")
}
