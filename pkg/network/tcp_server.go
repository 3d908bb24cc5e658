package network

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"

	"treasurehunt/pkg/hunt"
	"treasurehunt/pkg/monitor"
	"treasurehunt/pkg/protocol"
)

type TCPServer struct {
	svc    *hunt.Service
	logger *slog.Logger

	// ctx 在 Close 时取消，正在进行的搜索随之停止
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	listener net.Listener
	closed   bool
	active   map[net.Conn]struct{}
	conns    sync.WaitGroup
}

func NewTCPServer(svc *hunt.Service, logger *slog.Logger) *TCPServer {
	if logger == nil {
		logger = monitor.NopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &TCPServer{
		svc:    svc,
		logger: logger.With("component", "tcp"),
		ctx:    ctx,
		cancel: cancel,
		active: make(map[net.Conn]struct{}),
	}
}

func (s *TCPServer) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Serve accepts connections until the listener is closed by Close.
func (s *TCPServer) Serve(listener net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return listener.Close()
	}
	s.listener = listener
	s.mu.Unlock()
	s.logger.Info("tcp server listening", "addr", listener.Addr().String())

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warn("accept error", "error", err)
			continue
		}
		if !s.track(conn) {
			conn.Close()
			continue
		}
		go func() {
			defer s.untrack(conn)
			s.handleConn(conn)
		}()
	}
}

func (s *TCPServer) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.active[conn] = struct{}{}
	s.conns.Add(1)
	return true
}

func (s *TCPServer) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.active, conn)
	s.mu.Unlock()
	s.conns.Done()
}

// Close stops accepting, cancels running hunts, closes every open connection
// and waits for their handlers to return.
func (s *TCPServer) Close() error {
	s.mu.Lock()
	s.closed = true
	l := s.listener
	for conn := range s.active {
		conn.Close()
	}
	s.mu.Unlock()
	s.cancel()

	var err error
	if l != nil {
		err = l.Close()
	}
	s.conns.Wait()
	return err
}

func (s *TCPServer) handleConn(conn net.Conn) {
	defer conn.Close()
	ctx := s.ctx

	for {
		req, err := protocol.Decode(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Debug("decode error", "remote", conn.RemoteAddr().String(), "error", err)
			}
			return
		}

		var run *hunt.Run
		switch req.Op {
		case protocol.OpHunt:
			params, perr := protocol.DecodeParams(req.Value)
			if perr != nil {
				err = perr
				break
			}
			run, err = s.svc.Run(ctx, params, nil)

		case protocol.OpGetRun:
			run, err = s.svc.Get(ctx, string(req.Key))

		default:
			err = errors.New("unknown op")
		}

		if err != nil {
			err = protocol.Encode(conn, protocol.RespErr, nil, []byte(err.Error()))
		} else {
			body := protocol.EncodeRunResult(protocol.RunResult{
				Params:      run.Params,
				Discoveries: run.Report.Discoveries,
			})
			err = protocol.Encode(conn, protocol.RespVal, []byte(run.ID), body)
		}
		if err != nil {
			s.logger.Debug("write error", "remote", conn.RemoteAddr().String(), "error", err)
			return
		}
	}
}
