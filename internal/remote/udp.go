package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"beatbox-service/internal/logger"
)

const (
	DefaultAddr = ":12345"

	maxDatagram = 1024
	// readTimeout bounds how long Serve takes to notice cancellation.
	readTimeout = 200 * time.Millisecond
)

type Server struct {
	logger  *logger.Logger
	addr    string
	handler Handler
	conn    net.PacketConn
}

func NewServer(addr string, h Handler, l *logger.Logger) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Server{logger: l, addr: addr, handler: h}
}

// Listen binds the socket. It is separate from Serve so bind errors are
// reported at startup.
func (s *Server) Listen() error {
	conn, err := net.ListenPacket("udp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.addr, err)
	}
	s.conn = conn
	s.logger.Infof("Listening on %s", conn.LocalAddr())
	return nil
}

func (s *Server) Addr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Serve answers one datagram per command until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if s.conn == nil {
		return errors.New("server not listening")
	}

	buf := make([]byte, maxDatagram)
	for {
		if ctx.Err() != nil {
			return nil
		}

		if err := s.conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return fmt.Errorf("failed to set read deadline: %w", err)
		}

		n, from, err := s.conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warnf("Read failed: %v", err)
			continue
		}

		line := strings.TrimSpace(string(buf[:n]))
		s.logger.Debugf("Received %q from %s", line, from)

		reply := Dispatch(s.handler, line)
		if strings.HasPrefix(reply, "error:") {
			s.logger.Warnf("Command %q from %s rejected: %s", line, from, reply)
		}

		if _, err := s.conn.WriteTo([]byte(reply+"\n"), from); err != nil {
			s.logger.Debugf("Failed to reply to %s: %v", from, err)
		}
	}
}

func (s *Server) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
