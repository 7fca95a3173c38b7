// Package session implements the generic WebSocket-over-TLS state machine
// (C2): resolve -> connect -> TLS handshake -> WS handshake -> subscribe ->
// read loop, with fixed-delay bounded reconnection.
//
// The teacher's per-exchange ws_client.go files each reimplement a version
// of this loop inline, collapsing dial+TLS+handshake into one
// websocket.Dialer.DialContext call and using a doubling backoff. This
// package factors the loop out once, generalizes it across every venue via
// port.Parser, and replaces the doubling backoff with the fixed
// 5-second/10-attempt policy the state machine requires.
package session

import (
	"context"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"mdaggregator/internal/application/port"
	"mdaggregator/internal/domain/model"
)

// State is one node of the session state machine.
type State int32

const (
	Idle State = iota
	Resolving
	Connecting
	TlsHandshake
	WsHandshake
	Subscribing
	Streaming
	Backoff
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Resolving:
		return "Resolving"
	case Connecting:
		return "Connecting"
	case TlsHandshake:
		return "TlsHandshake"
	case WsHandshake:
		return "WsHandshake"
	case Subscribing:
		return "Subscribing"
	case Streaming:
		return "Streaming"
	case Backoff:
		return "Backoff"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Defaults per spec §4.2.
const (
	DefaultReconnectDelay       = 5 * time.Second
	DefaultMaxReconnectAttempts = 10
	dialTimeout                 = 10 * time.Second
)

// Session owns one persistent connection to one venue.
type Session struct {
	venue    string
	endpoint port.Endpoint
	parser   port.Parser

	transport   Transport
	retryDelay  time.Duration
	maxAttempts int

	mu       sync.Mutex
	state    State
	attempts int
	conn     net.Conn
	started  bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// Option configures a Session at construction.
type Option func(*Session)

// WithRetryPolicy overrides the fixed delay and attempt cap, for tests and
// for operators per SPEC_FULL §10; defaults match the spec exactly.
func WithRetryPolicy(delay time.Duration, maxAttempts int) Option {
	return func(s *Session) {
		s.retryDelay = delay
		s.maxAttempts = maxAttempts
	}
}

// New builds a Session for one venue.
func New(venue string, endpoint port.Endpoint, parser port.Parser, transport Transport, opts ...Option) *Session {
	s := &Session{
		venue:       venue,
		endpoint:    endpoint,
		parser:      parser,
		transport:   transport,
		retryDelay:  DefaultReconnectDelay,
		maxAttempts: DefaultMaxReconnectAttempts,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Venue returns the exchange name this session serves.
func (s *Session) Venue() string { return s.venue }

// State reports the current state under the session's mutex.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) setConn(c net.Conn) {
	s.mu.Lock()
	s.conn = c
	s.mu.Unlock()
}

// Run arms the session idempotently (a second call is a no-op) and drives
// the state machine Idle->Resolving->...->Stopped until ctx is cancelled,
// Stop is called, or the attempt cap is reached. callback is invoked from
// this goroutine for every successfully parsed frame and must not block.
func (s *Session) Run(ctx context.Context, callback func(model.PriceUpdate)) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer close(s.done)
	defer cancel()

	s.setState(Resolving)

	for {
		if ctx.Err() != nil {
			s.setState(Stopped)
			return
		}

		if stopped := s.connectAndStream(ctx, callback); stopped {
			s.setState(Stopped)
			return
		}

		if ctx.Err() != nil {
			s.setState(Stopped)
			return
		}

		if !s.backoff(ctx) {
			return
		}
	}
}

// connectAndStream runs one full Resolving->Streaming attempt. It returns
// true if the context was cancelled while streaming, false otherwise; a
// cancellation during the dial phases also returns false and is caught by
// Run's context check before Backoff.
func (s *Session) connectAndStream(ctx context.Context, callback func(model.PriceUpdate)) bool {
	dctx, dcancel := context.WithTimeout(ctx, dialTimeout)
	defer dcancel()

	s.setState(Resolving)
	addrs, err := s.transport.Resolve(dctx, s.endpoint.Host)
	if err != nil {
		log.Warn().Str("venue", s.venue).Err(err).Msg("resolve failed")
		return false
	}

	s.setState(Connecting)
	addr := net.JoinHostPort(addrs[0], s.endpoint.Port)
	conn, err := s.transport.Connect(dctx, addr)
	if err != nil {
		log.Warn().Str("venue", s.venue).Err(err).Msg("connect failed")
		return false
	}
	s.setConn(conn)

	s.setState(TlsHandshake)
	tconn, err := s.transport.TLSHandshake(dctx, conn, s.endpoint.Host)
	if err != nil {
		_ = conn.Close()
		s.setConn(nil)
		log.Warn().Str("venue", s.venue).Err(err).Msg("tls handshake failed")
		return false
	}
	s.setConn(tconn)

	s.setState(WsHandshake)
	// tconn already carries TLS, so the upgrade URL uses the ws scheme: with
	// wss, websocket.NewClient would run a second TLS handshake over it.
	u := &url.URL{Scheme: "ws", Host: net.JoinHostPort(s.endpoint.Host, s.endpoint.Port), Path: s.endpoint.Path}
	wsConn, err := s.transport.WSHandshake(dctx, tconn, u)
	if err != nil {
		_ = tconn.Close()
		s.setConn(nil)
		log.Warn().Str("venue", s.venue).Err(err).Msg("ws handshake failed")
		return false
	}
	s.setConn(wsConn.UnderlyingConn())

	s.resetAttempts()
	s.setState(Subscribing)

	if msg := s.parser.SubscribeMessage(); msg != "" {
		if err := wsConn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			_ = wsConn.Close()
			s.setConn(nil)
			log.Warn().Str("venue", s.venue).Err(err).Msg("subscribe write failed")
			return false
		}
	}

	s.setState(Streaming)
	log.Info().Str("venue", s.venue).Msg("streaming")
	err = s.readLoop(ctx, wsConn, callback)
	_ = wsConn.Close()
	s.setConn(nil)

	if ctx.Err() != nil {
		return true
	}
	if err != nil {
		log.Warn().Str("venue", s.venue).Err(err).Msg("stream closed, reconnecting")
	}
	return false
}

// readLoop owns the single outstanding read for this session; each inbound
// message is handed to the parser synchronously. A decode miss is dropped
// without logging per spec §7 (the hot path).
func (s *Session) readLoop(ctx context.Context, conn *websocket.Conn, callback func(model.PriceUpdate)) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		update, ok := s.parser.Parse(frame)
		if !ok {
			continue
		}
		callback(update)
	}
}

func (s *Session) resetAttempts() {
	s.mu.Lock()
	s.attempts = 0
	s.mu.Unlock()
}

// backoff waits retryDelay (or until ctx is cancelled) and returns true if
// the caller should re-enter Resolving, false if the attempt cap has been
// reached and the session is now permanently Stopped.
func (s *Session) backoff(ctx context.Context) bool {
	s.mu.Lock()
	attempts := s.attempts
	s.mu.Unlock()

	if attempts >= s.maxAttempts {
		s.setState(Stopped)
		log.Error().Str("venue", s.venue).Int("attempts", attempts).Msg("permanent failure: reconnect attempt cap reached")
		return false
	}

	s.mu.Lock()
	s.attempts++
	s.mu.Unlock()

	s.setState(Backoff)
	timer := time.NewTimer(s.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		s.setState(Stopped)
		return false
	case <-timer.C:
		return true
	}
}

// Stop cooperatively cancels the session: any in-flight suspension
// (resolve, connect, handshake, read, backoff wait) completes with a
// cancellation error and the session does not reconnect. Stop closes the
// underlying connection directly so a blocked read is interrupted even
// though gorilla/websocket does not honor context cancellation mid-read.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	conn := s.conn
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if conn != nil {
		_ = conn.Close()
	}
}

// Wait blocks until Run has returned.
func (s *Session) Wait() {
	<-s.done
}

// Attempts reports the current reconnect-attempt counter, for tests.
func (s *Session) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}
