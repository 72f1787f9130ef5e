package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"flappy-casino/internal/config"
	"flappy-casino/internal/handeval"
	"flappy-casino/internal/ledger"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type memLedger struct {
	mu       sync.Mutex
	balances map[string]int64
}

func newMemLedger(nicks ...string) *memLedger {
	l := &memLedger{balances: map[string]int64{}}
	for _, n := range nicks {
		l.balances[n] = 10_000
	}
	return l
}

func (l *memLedger) balance(nick string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[nick]
}

func (l *memLedger) Authenticate(_ context.Context, nick, pin string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal, ok := l.balances[nick]
	if !ok || pin != "1234" {
		return 0, ledger.ErrInvalidCredentials
	}
	return bal, nil
}

func (l *memLedger) BuyIn(_ context.Context, nick string, amount int64, _ string) (int64, error) {
	return l.move(nick, -amount)
}

func (l *memLedger) Rebuy(_ context.Context, nick string, amount int64, _ string) (int64, error) {
	return l.move(nick, -amount)
}

func (l *memLedger) CashOut(_ context.Context, nick string, chips, _ int64, _ string) (int64, error) {
	return l.move(nick, chips)
}

func (l *memLedger) PayOut(_ context.Context, _ string, payouts []ledger.Payout) error {
	for _, p := range payouts {
		if _, err := l.move(p.Nick, p.Amount); err != nil {
			return err
		}
	}
	return nil
}

func (l *memLedger) Refund(ctx context.Context, handID string, refunds []ledger.Payout) error {
	return l.PayOut(ctx, handID, refunds)
}

func (l *memLedger) move(nick string, delta int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[nick]+delta < 0 {
		return 0, ledger.ErrInsufficientFunds
	}
	l.balances[nick] += delta
	return l.balances[nick], nil
}

func testTableConfig() config.TableConfig {
	return config.TableConfig{
		ID:            "main",
		MaxSeats:      6,
		BuyIn:         500,
		SmallBlind:    10,
		BigBlind:      20,
		TurnTimeout:   30 * time.Second,
		SweepInterval: 2 * time.Second,
		ShowdownPause: 1500 * time.Millisecond,
	}
}

type testServer struct {
	srv    *Server
	http   *httptest.Server
	ledger *memLedger
	url    string
	// stop cancels the session and waits for Run to return. Safe to call
	// more than once.
	stop func()
}

func startServer(t *testing.T, cfg config.ServerConfig, l *memLedger) *testServer {
	t.Helper()
	srv := NewServer(cfg, testTableConfig(), l, handeval.New(), quartz.NewMock(t))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Run(ctx)
	}()
	hs := httptest.NewServer(http.HandlerFunc(srv.HandleWS))
	stop := func() {
		cancel()
		<-done
	}
	t.Cleanup(func() {
		hs.Close()
		stop()
	})
	return &testServer{srv: srv, http: hs, ledger: l, url: "ws" + strings.TrimPrefix(hs.URL, "http"), stop: stop}
}

func dial(t *testing.T, ts *testServer) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(ts.url, nil)
	require.NoError(t, err, "dial")
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendJSON(t *testing.T, conn *websocket.Conn, msg string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)), "write")
}

// expect reads until a message of the given type arrives.
func expect(t *testing.T, conn *websocket.Conn, typ string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		_ = conn.SetReadDeadline(deadline)
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", typ)
		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m), "unmarshal %s", raw)
		if m["type"] == typ {
			return m
		}
	}
}
