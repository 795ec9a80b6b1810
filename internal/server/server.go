// Package server accepts TCP viewers and drives one streaming session at
// a time over each accepted connection.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/adamdewolf/OpenCentauri-VNC/internal/observability"
	"github.com/adamdewolf/OpenCentauri-VNC/internal/rfb"
)

// Server owns the listening socket. Sessions run sequentially; the gate is
// shared with other transports so a WebSocket viewer also counts.
type Server struct {
	ln     net.Listener
	src    rfb.FrameSource
	gate   *Gate
	name   string
	fps    int
	logger zerolog.Logger
}

func New(port int, src rfb.FrameSource, gate *Gate, name string, fps int, logger zerolog.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("server: listen on %d: %w", port, err)
	}
	return &Server{
		ln:     ln,
		src:    src,
		gate:   gate,
		name:   name,
		fps:    rfb.ClampFPS(fps),
		logger: logger,
	}, nil
}

func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// RunForever accepts viewers until the context is cancelled. Accept
// failures are logged and the loop keeps going; only listener closure
// ends it.
func (s *Server) RunForever(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.ln.Close()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warn().Err(err).Msg("accept failed")
			time.Sleep(100 * time.Millisecond)
			continue
		}
		s.serve(ctx, conn)
	}
}

func (s *Server) serve(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	if !s.gate.TryAcquire() {
		s.logger.Warn().Str("remote", remote).Msg("viewer refused, session already active")
		return
	}
	defer s.gate.Release()

	observability.RecordSessionStart("tcp")
	s.logger.Info().Str("remote", remote).Msg("viewer connected")

	sess := rfb.NewSession(conn, s.src, s.name, s.fps, s.logger)
	err := sess.Run(ctx)

	cause := CauseLabel(err)
	observability.RecordSessionEnd("tcp", cause)
	evt := s.logger.Info()
	if rfb.IsProtocolViolation(err) {
		evt = s.logger.Warn().Err(err)
	}
	evt.Str("remote", remote).Str("cause", cause).Msg("viewer disconnected")
}

// CauseLabel maps a session outcome to a stable metrics label.
func CauseLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case rfb.IsProtocolViolation(err):
		return "protocol"
	default:
		return "transport"
	}
}
