package session

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"mdaggregator/internal/application/port"
	"mdaggregator/internal/domain/model"
)

// failResolveTransport fails every Resolve call, driving the session
// straight from Resolving to Backoff every attempt.
type failResolveTransport struct {
	resolveCalls int32
}

func (t *failResolveTransport) Resolve(ctx context.Context, host string) ([]string, error) {
	atomic.AddInt32(&t.resolveCalls, 1)
	return nil, errors.New("simulated resolve failure")
}
func (t *failResolveTransport) Connect(ctx context.Context, addr string) (net.Conn, error) {
	panic("should not be called")
}
func (t *failResolveTransport) TLSHandshake(ctx context.Context, conn net.Conn, host string) (net.Conn, error) {
	panic("should not be called")
}
func (t *failResolveTransport) WSHandshake(ctx context.Context, conn net.Conn, u *url.URL) (*websocket.Conn, error) {
	panic("should not be called")
}

type noopParser struct{}

func (noopParser) SubscribeMessage() string { return "" }
func (noopParser) Parse(frame []byte) (model.PriceUpdate, bool) {
	return model.PriceUpdate{}, false
}

// TestReconnectionCap exercises P3: a session whose every resolve fails
// attempts exactly MaxReconnectAttempts reconnections, then stops.
func TestReconnectionCap(t *testing.T) {
	tr := &failResolveTransport{}
	s := New("TestVenue", port.Endpoint{Host: "example.invalid", Port: "443", Path: "/"}, noopParser{}, tr,
		WithRetryPolicy(time.Millisecond, 10))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.Run(ctx, func(model.PriceUpdate) {})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(4 * time.Second):
		t.Fatal("session did not stop within timeout")
	}

	if got := atomic.LoadInt32(&tr.resolveCalls); got != 11 {
		t.Fatalf("expected 11 resolve attempts (1 initial + 10 reconnections), got %d", got)
	}
	if s.State() != Stopped {
		t.Fatalf("expected Stopped, got %s", s.State())
	}
}

// loopbackTransport resolves and connects to a real local TCP listener
// (an httptest server speaking the WS upgrade handshake) and skips TLS,
// so connectAndStream can be exercised end-to-end against a real
// gorilla/websocket server.
type loopbackTransport struct {
	addr string
}

func (t *loopbackTransport) Resolve(ctx context.Context, host string) ([]string, error) {
	return []string{host}, nil
}
func (t *loopbackTransport) Connect(ctx context.Context, addr string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "tcp", t.addr)
}
func (t *loopbackTransport) TLSHandshake(ctx context.Context, conn net.Conn, host string) (net.Conn, error) {
	return conn, nil
}
func (t *loopbackTransport) WSHandshake(ctx context.Context, conn net.Conn, u *url.URL) (*websocket.Conn, error) {
	wsConn, resp, err := websocket.NewClient(conn, u, nil, 0, 0)
	if resp != nil {
		defer resp.Body.Close()
	}
	return wsConn, err
}

// TestCounterResetOnSuccessfulHandshake exercises P4: a session that
// successfully reaches Subscribing has its attempt counter reset to 0
// even though it had accumulated failures beforehand.
func TestCounterResetOnSuccessfulHandshake(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// noopParser sends no subscribe frame, so close straight away to give
		// the client's read loop a clean disconnect.
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer srv.Close()

	addr := srv.Listener.Addr().String()
	tr := &loopbackTransport{addr: addr}
	s := New("TestVenue", port.Endpoint{Host: "127.0.0.1", Port: "0", Path: "/"}, noopParser{}, tr,
		WithRetryPolicy(time.Millisecond, 10))

	s.mu.Lock()
	s.attempts = 7
	s.mu.Unlock()

	stopped := s.connectAndStream(context.Background(), func(model.PriceUpdate) {})
	if stopped {
		t.Fatal("connectAndStream reported a stop on a clean disconnect")
	}
	if s.Attempts() != 0 {
		t.Fatalf("expected attempt counter reset to 0 after successful handshake, got %d", s.Attempts())
	}
}

func TestCounterResetsIndependently(t *testing.T) {
	tr := &failResolveTransport{}
	s := New("TestVenue", port.Endpoint{Host: "example.invalid", Port: "443", Path: "/"}, noopParser{}, tr,
		WithRetryPolicy(time.Millisecond, 10))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx, func(model.PriceUpdate) {})

	time.Sleep(50 * time.Millisecond)
	if s.Attempts() == 0 {
		t.Fatal("expected attempts to have advanced")
	}

	s.resetAttempts()
	if s.Attempts() != 0 {
		t.Fatalf("expected 0 after reset, got %d", s.Attempts())
	}
	s.Stop()
	s.Wait()
}

func TestStopPreventsFurtherAttempts(t *testing.T) {
	tr := &failResolveTransport{}
	s := New("TestVenue", port.Endpoint{Host: "example.invalid", Port: "443", Path: "/"}, noopParser{}, tr,
		WithRetryPolicy(10*time.Millisecond, 10))

	ctx := context.Background()
	go s.Run(ctx, func(model.PriceUpdate) {})

	time.Sleep(30 * time.Millisecond)
	s.Stop()
	s.Wait()

	if s.State() != Stopped {
		t.Fatalf("expected Stopped after Stop(), got %s", s.State())
	}
	afterStop := atomic.LoadInt32(&tr.resolveCalls)
	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&tr.resolveCalls) != afterStop {
		t.Fatal("session kept resolving after Stop()")
	}
}
