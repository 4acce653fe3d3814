package workerhttp

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/ycycse/alluxio/internal/metrics"
	"github.com/ycycse/alluxio/internal/ufs"
	"github.com/ycycse/alluxio/internal/usecase/loadsvc"
	"github.com/ycycse/alluxio/internal/usecase/pagesvc"
)

// ErrServerClosed возвращается из Serve после Shutdown.
var ErrServerClosed = errors.New("workerhttp: server closed")

// Deps — коллабораторы data-plane сервера. Все считаются потокобезопасными;
// сервер не держит своих блокировок поперёк их вызовов.
type Deps struct {
	Pages   pagesvc.Service
	Ufs     ufs.Client
	Loads   loadsvc.Service
	Metrics *metrics.Registry
}

// Server принимает TCP-соединения и ведёт каждое отдельным насосом.
type Server struct {
	Deps
	routes map[routeKey]handlerFunc

	baseCtx context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	ln     net.Listener
	conns  map[net.Conn]struct{}
	closed bool

	wg sync.WaitGroup
}

// NewServer конструирует сервер: таблица маршрутов и метрики воркера
// регистрируются один раз здесь.
func NewServer(deps Deps) *Server {
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewRegistry()
	}
	metrics.RegisterWorkerMetrics(deps.Metrics)

	s := &Server{
		Deps:  deps,
		conns: map[net.Conn]struct{}{},
	}
	s.routes = s.buildRoutes()
	s.baseCtx, s.cancel = context.WithCancel(context.Background())
	return s
}

// ListenAndServe слушает addr и обслуживает соединения до Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve принимает соединения из ln; по одной горутине-насосу на соединение.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = ln.Close()
		return ErrServerClosed
	}
	s.ln = ln
	s.mu.Unlock()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.baseCtx.Done():
				return ErrServerClosed
			default:
				return err
			}
		}

		s.track(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			newConnPump(s, conn).serve(s.baseCtx)
		}()
	}
}

// Addr возвращает адрес слушателя; полезно при эфемерном порте.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown закрывает слушателя и ждёт завершения активных соединений.
// По истечении ctx оставшиеся соединения рвутся принудительно.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	ln := s.ln
	s.mu.Unlock()

	s.cancel()
	if ln != nil {
		_ = ln.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.closeConns()
		return ctx.Err()
	}
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
	}
}
