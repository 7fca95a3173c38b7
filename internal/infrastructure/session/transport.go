package session

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// Transport performs the four dial-time phases of the state machine as
// separate, explicitly sequenced calls, rather than the one-shot
// websocket.Dialer.DialContext the teacher's ws_client.go files use. That
// collapses resolve+connect+TLS+handshake into a single call and cannot
// express Resolving/Connecting/TlsHandshake as distinct observable states.
//
// A fake Transport lets tests exercise the reconnect/backoff contract
// (P3, P4) without any real network access.
type Transport interface {
	Resolve(ctx context.Context, host string) ([]string, error)
	Connect(ctx context.Context, addr string) (net.Conn, error)
	TLSHandshake(ctx context.Context, conn net.Conn, host string) (net.Conn, error)
	WSHandshake(ctx context.Context, conn net.Conn, u *url.URL) (*websocket.Conn, error)
}

// netTransport is the production Transport, built from the standard
// library's resolver/dialer plus gorilla/websocket's lower-level
// NewClient, which performs only the HTTP-Upgrade handshake over an
// already-established net.Conn.
type netTransport struct {
	userAgent string
}

func NewTransport(userAgent string) Transport {
	return &netTransport{userAgent: userAgent}
}

func (t *netTransport) Resolve(ctx context.Context, host string) ([]string, error) {
	addrs, err := net.DefaultResolver.LookupHost(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", host, err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("resolve %s: no addresses", host)
	}
	return addrs, nil
}

func (t *netTransport) Connect(ctx context.Context, addr string) (net.Conn, error) {
	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return conn, nil
}

// TLSHandshake sets SNI to host before handshaking, per the spec's explicit
// requirement that a missing SNI counts as a handshake error.
func (t *netTransport) TLSHandshake(ctx context.Context, conn net.Conn, host string) (net.Conn, error) {
	if host == "" {
		return nil, fmt.Errorf("tls handshake: empty SNI host")
	}
	tconn := tls.Client(conn, &tls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
	})
	if err := tconn.HandshakeContext(ctx); err != nil {
		return nil, fmt.Errorf("tls handshake %s: %w", host, err)
	}
	return tconn, nil
}

func (t *netTransport) WSHandshake(ctx context.Context, conn net.Conn, u *url.URL) (*websocket.Conn, error) {
	header := http.Header{}
	if t.userAgent != "" {
		header.Set("User-Agent", t.userAgent)
	}
	deadline, ok := ctx.Deadline()
	if ok {
		_ = conn.SetDeadline(deadline)
	}
	wsConn, resp, err := websocket.NewClient(conn, u, header, 0, 0)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("ws handshake %s: %w", u.String(), err)
	}
	_ = conn.SetDeadline(time.Time{})
	return wsConn, nil
}
