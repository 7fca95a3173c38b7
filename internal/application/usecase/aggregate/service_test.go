package aggregate

import (
	"context"
	"errors"
	"net"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"mdaggregator/internal/infrastructure/config"
	"mdaggregator/internal/infrastructure/session"

	_ "mdaggregator/internal/infrastructure/exchange/binance"
)

// alwaysFailTransport fails resolution immediately, so a session driven by
// it spends the whole test in Resolving/Backoff without touching the
// network.
type alwaysFailTransport struct{}

func (alwaysFailTransport) Resolve(ctx context.Context, host string) ([]string, error) {
	return nil, errors.New("test transport: resolve always fails")
}
func (alwaysFailTransport) Connect(ctx context.Context, addr string) (net.Conn, error) {
	panic("should not be called")
}
func (alwaysFailTransport) TLSHandshake(ctx context.Context, conn net.Conn, host string) (net.Conn, error) {
	panic("should not be called")
}
func (alwaysFailTransport) WSHandshake(ctx context.Context, conn net.Conn, u *url.URL) (*websocket.Conn, error) {
	panic("should not be called")
}

func loadConfig(t *testing.T, body string) *config.Config {
	t.Helper()
	path := t.TempDir() + "/config.toml"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func TestRunShutsDownCleanlyOnContextCancel(t *testing.T) {
	cfg := loadConfig(t, `
[fanout]
addr = "127.0.0.1:0"

[exchange.binance]
enabled = true
`)

	svc, err := New(cfg, func(venue string) session.Transport {
		return alwaysFailTransport{}
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestNewSkipsUnregisteredVenue(t *testing.T) {
	cfg := loadConfig(t, `
[exchange.binance]
enabled = true

[exchange.kraken]
enabled = true
`)
	// Binance is registered via the blank import above; Kraken's package is
	// not imported here, so it is enabled but unregistered and must be
	// skipped, leaving exactly one session.
	svc, err := New(cfg, func(venue string) session.Transport { return alwaysFailTransport{} })
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(svc.sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(svc.sessions))
	}
}
