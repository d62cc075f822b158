// pkg/server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aleka07/hello-api/pkg/config"
)

// Server owns the application listener and, optionally, the ops listener.
type Server struct {
	cfg    config.Config
	logger logrus.FieldLogger

	app *http.Server
	ops *http.Server // nil when cfg.OpsAddr is empty

	mu       sync.Mutex
	appAddr  net.Addr
	opsAddr  net.Addr
	listenCh chan struct{}
}

// New wires the handlers into http.Servers configured from cfg. ops may be nil.
func New(cfg config.Config, logger logrus.FieldLogger, app, ops http.Handler) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger,
		app: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      app,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		listenCh: make(chan struct{}),
	}
	if cfg.OpsAddr != "" && ops != nil {
		s.ops = &http.Server{
			Addr:              cfg.OpsAddr,
			Handler:           ops,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return s
}

// Listening is closed once every listener is bound.
func (s *Server) Listening() <-chan struct{} {
	return s.listenCh
}

// Addr is the bound application address, nil before Listening fires.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appAddr
}

// OpsAddr is the bound ops address, nil if the ops listener is disabled or not bound yet.
func (s *Server) OpsAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opsAddr
}

// Run binds the listeners, logs the startup line and serves until ctx is done or a
// listener fails. A bind failure is returned without serving anything.
func (s *Server) Run(ctx context.Context) error {
	appLn, err := net.Listen("tcp", s.app.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.app.Addr, err)
	}

	var opsLn net.Listener
	if s.ops != nil {
		opsLn, err = net.Listen("tcp", s.ops.Addr)
		if err != nil {
			appLn.Close()
			return fmt.Errorf("listening on ops address %s: %w", s.ops.Addr, err)
		}
	}

	s.mu.Lock()
	s.appAddr = appLn.Addr()
	if opsLn != nil {
		s.opsAddr = opsLn.Addr()
	}
	s.mu.Unlock()
	close(s.listenCh)

	// Channel to listen for server errors
	serverErrors := make(chan error, 2)

	go func() {
		s.logger.Infof("Server is running on http://localhost:%s", portOf(appLn.Addr()))
		serverErrors <- s.app.Serve(appLn)
	}()
	if opsLn != nil {
		go func() {
			s.logger.WithField("addr", opsLn.Addr().String()).Info("Ops listener serving /metrics and /healthz")
			serverErrors <- s.ops.Serve(opsLn)
		}()
	}

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			s.shutdown()
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("Shutdown requested, draining connections...")
		return s.shutdown()
	}
}

func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	for _, srv := range []*http.Server{s.app, s.ops} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.WithError(err).Error("Graceful shutdown failed, forcing close")
			if closeErr := srv.Close(); closeErr != nil {
				errs = append(errs, closeErr)
			}
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	s.logger.Info("Server shutdown complete.")
	return nil
}

func portOf(addr net.Addr) string {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return strconv.Itoa(tcp.Port)
	}
	_, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return port
}
