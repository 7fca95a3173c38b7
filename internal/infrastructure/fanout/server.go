// Package fanout implements the FanOutServer (C5): it binds one TCP port,
// accepts an unbounded number of local consumers, and broadcasts every
// PriceUpdate to all of them under a single mutex.
//
// The accept-loop / newline-delimited-JSON shape is grounded on the
// standalone lyalia123-marketfloww example (plain net.Listen + Accept,
// one JSON object per line); this package generalizes it to a dynamic,
// mutex-guarded consumer set with write-failure pruning, which that
// example's fixed per-connection goroutine doesn't need.
package fanout

import (
	"errors"
	"net"
	"sync"

	"github.com/rs/zerolog/log"

	"mdaggregator/internal/domain/model"
)

// Server accepts TCP consumers on one address and broadcasts PriceUpdate
// records to all of them.
type Server struct {
	addr     string
	listener net.Listener

	mu        sync.Mutex
	consumers []net.Conn
}

// New builds a server bound to no socket yet; call Listen to bind.
func New(addr string) *Server {
	return &Server{addr: addr}
}

// Listen binds the TCP address. Call once before Serve.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp4", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln
	return nil
}

// Serve runs the accept loop until the listener is closed (by Close), and
// then returns nil. Any other accept error ends the loop and is returned.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if isClosedError(err) {
				return nil
			}
			return err
		}
		s.mu.Lock()
		s.consumers = append(s.consumers, conn)
		n := len(s.consumers)
		s.mu.Unlock()
		log.Info().Str("remote", conn.RemoteAddr().String()).Int("consumers", n).Msg("fan-out consumer connected")
	}
}

// Broadcast serializes update once and attempts a blocking write to every
// consumer registered at the instant this call begins. A consumer whose
// write fails is removed before the call returns; no retry, no effect on
// the caller beyond that one consumer's removal (P5, P6).
func (s *Server) Broadcast(update model.PriceUpdate) {
	line := update.ToJSON() + "\n"

	s.mu.Lock()
	defer s.mu.Unlock()

	live := s.consumers[:0]
	for _, c := range s.consumers {
		if _, err := c.Write([]byte(line)); err != nil {
			log.Warn().Str("remote", c.RemoteAddr().String()).Err(err).Msg("fan-out consumer write failed, pruning")
			_ = c.Close()
			continue
		}
		live = append(live, c)
	}
	if len(live) != len(s.consumers) {
		log.Info().Int("consumers", len(live)).Msg("fan-out consumer pruned")
	}
	s.consumers = live
}

// Close stops the accept loop and closes every connected consumer.
func (s *Server) Close() error {
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.consumers {
		_ = c.Close()
	}
	s.consumers = nil
	return err
}

func isClosedError(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
