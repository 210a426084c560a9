package main

import (
	"context"
	"encoding/json"
	"net"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/mdlayher/vsock"
	"go.uber.org/zap"

	"github.com/cloudx-io/openescrow/contractapi"
)

// Server accepts one JSON request per connection and answers with one JSON
// response.
type Server struct {
	cfg     Config
	service *Service
	logger  *zap.Logger
}

func NewServer(cfg Config, service *Service, logger *zap.Logger) *Server {
	return &Server{cfg: cfg, service: service, logger: logger}
}

func (s *Server) listen() (net.Listener, error) {
	switch s.cfg.Network {
	case "vsock":
		listener, err := vsock.Listen(s.cfg.VsockPort, nil)
		if err != nil {
			return nil, errors.Wrap(err, "create vsock listener")
		}
		return listener, nil
	case "tcp":
		listener, err := net.Listen("tcp", s.cfg.TCPAddr)
		if err != nil {
			return nil, errors.Wrap(err, "create tcp listener")
		}
		return listener, nil
	default:
		return nil, errors.Errorf("unsupported network %q", s.cfg.Network)
	}
}

// Start listens on the configured network and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	listener, err := s.listen()
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		if err := listener.Close(); err != nil {
			s.logger.Error("failed to close listener", zap.Error(err))
		}
	}()

	s.logger.Info("escrow server listening",
		zap.String("network", s.cfg.Network),
		zap.String("addr", listener.Addr().String()))
	return s.Serve(listener)
}

// Serve accepts connections until the listener is closed. At most
// MaxWorkers connections are handled at once; extra connections are closed
// immediately.
func (s *Server) Serve(listener net.Listener) error {
	semaphore := make(chan struct{}, s.cfg.MaxWorkers)
	s.logger.Info("worker pool initialized", zap.Int("max_workers", s.cfg.MaxWorkers))

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Error("failed to accept connection", zap.Error(err))
			continue
		}

		// Acquire worker slot - immediate rejection if pool full
		select {
		case semaphore <- struct{}{}:
			go func(c net.Conn) {
				defer func() { <-semaphore }()
				s.handleConnection(c)
			}(conn)
		default:
			s.logger.Info("no workers available, rejecting connection")
			if err := conn.Close(); err != nil {
				s.logger.Error("failed to close rejected connection", zap.Error(err))
			}
		}
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	requestID := uuid.NewString()
	logger := s.logger.With(zap.String("request_id", requestID))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic recovered in handleConnection", zap.Any("panic", r))
		}
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", zap.Error(err))
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))

	var resp contractapi.Response
	var req contractapi.Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		logger.Error("failed to decode request", zap.Error(err))
		resp = contractapi.Response{
			Type:    "error",
			Message: "failed to decode request: " + err.Error(),
		}
	} else {
		logger.Debug("received request", zap.String("type", req.Type))
		resp = s.service.Handle(context.Background(), req)
	}
	resp.RequestID = requestID

	if err := json.NewEncoder(conn).Encode(resp); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
		return
	}
	logger.Debug("sent response",
		zap.String("type", resp.Type),
		zap.Bool("success", resp.Success),
		zap.Int64("processing_ms", resp.ProcessingTime))
}
