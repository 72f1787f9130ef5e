package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"flappy-casino/internal/ledger"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"
)

type cashOut struct {
	Nick     string
	Chips    int64
	BoughtIn int64
}

type fakeLedger struct {
	balances map[string]int64
	pins     map[string]string
	cashOuts []cashOut
	payouts  [][]ledger.Payout
	refunds  [][]ledger.Payout

	failCashOut bool
	failPayOut  bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: map[string]int64{}, pins: map[string]string{}}
}

func (f *fakeLedger) add(nick, pin string, coins int64) {
	f.balances[nick] = coins
	f.pins[nick] = pin
}

func (f *fakeLedger) Authenticate(_ context.Context, nick, pin string) (int64, error) {
	if p, ok := f.pins[nick]; !ok || p != pin {
		return 0, ledger.ErrInvalidCredentials
	}
	return f.balances[nick], nil
}

func (f *fakeLedger) debit(nick string, amount int64) (int64, error) {
	if f.balances[nick] < amount {
		return 0, ledger.ErrInsufficientFunds
	}
	f.balances[nick] -= amount
	return f.balances[nick], nil
}

func (f *fakeLedger) BuyIn(_ context.Context, nick string, amount int64, _ string) (int64, error) {
	return f.debit(nick, amount)
}

func (f *fakeLedger) Rebuy(_ context.Context, nick string, amount int64, _ string) (int64, error) {
	return f.debit(nick, amount)
}

func (f *fakeLedger) CashOut(_ context.Context, nick string, chips, boughtIn int64, _ string) (int64, error) {
	if f.failCashOut {
		return 0, errors.New("connection reset")
	}
	f.cashOuts = append(f.cashOuts, cashOut{Nick: nick, Chips: chips, BoughtIn: boughtIn})
	f.balances[nick] += chips
	return f.balances[nick], nil
}

func (f *fakeLedger) PayOut(_ context.Context, _ string, payouts []ledger.Payout) error {
	if f.failPayOut {
		return errors.New("serialization failure")
	}
	f.payouts = append(f.payouts, payouts)
	for _, p := range payouts {
		f.balances[p.Nick] += p.Amount
	}
	return nil
}

func (f *fakeLedger) Refund(_ context.Context, _ string, refunds []ledger.Payout) error {
	f.refunds = append(f.refunds, refunds)
	for _, p := range refunds {
		f.balances[p.Nick] += p.Amount
	}
	return nil
}

func (f *fakeLedger) lastPayout() map[string]int64 {
	out := map[string]int64{}
	if len(f.payouts) == 0 {
		return out
	}
	for _, p := range f.payouts[len(f.payouts)-1] {
		out[p.Nick] += p.Amount
	}
	return out
}

// highCardRanker scores only the hole cards so tests control winners
// through the deal.
type highCardRanker struct {
	calls int
}

func (r *highCardRanker) Rank(hole, _ []Card) (HandValue, error) {
	r.calls++
	hi, lo := hole[0].Rank, hole[1].Rank
	if lo > hi {
		hi, lo = lo, hi
	}
	return HandValue{Score: int(hi)*100 + int(lo), Name: fmt.Sprintf("%s-%s high", hole[0], hole[1])}, nil
}

type recorder struct {
	msgs map[string][]any
}

func newRecorder() *recorder {
	return &recorder{msgs: map[string][]any{}}
}

func (r *recorder) Send(connID string, msg any) {
	r.msgs[connID] = append(r.msgs[connID], msg)
}

func lastOf[T any](r *recorder, connID string) (T, bool) {
	var zero T
	list := r.msgs[connID]
	for i := len(list) - 1; i >= 0; i-- {
		if m, ok := list[i].(T); ok {
			return m, true
		}
	}
	return zero, false
}

func countOf[T any](r *recorder, connID string) int {
	n := 0
	for _, m := range r.msgs[connID] {
		if _, ok := m.(T); ok {
			n++
		}
	}
	return n
}

type harness struct {
	t      *testing.T
	engine *Engine
	ledger *fakeLedger
	ranker *highCardRanker
	notes  *recorder
	clock  *quartz.Mock
	ctx    context.Context
}

func testConfig() Config {
	return Config{
		TableID:       "main",
		MaxSeats:      6,
		BuyIn:         500,
		SmallBlind:    10,
		BigBlind:      20,
		TurnTimeout:   30 * time.Second,
		ShowdownPause: 1500 * time.Millisecond,
	}
}

func newHarness(t *testing.T, cfg Config, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		ledger: newFakeLedger(),
		ranker: &highCardRanker{},
		notes:  newRecorder(),
		clock:  quartz.NewMock(t),
		ctx:    context.Background(),
	}
	opts = append([]Option{WithClock(h.clock), WithRand(rand.New(rand.NewSource(1)))}, opts...)
	h.engine = NewEngine(cfg, h.ledger, h.ranker, h.notes, opts...)
	return h
}

func conn(nick string) string {
	return "conn-" + nick
}

// seat registers nick with the fake ledger and joins the table.
func (h *harness) seat(nick string) {
	h.t.Helper()
	h.ledger.add(nick, "1234", 10_000)
	require.NoError(h.t, h.engine.Join(h.ctx, conn(nick), nick, "1234"))
}

func (h *harness) ready(nicks ...string) {
	h.t.Helper()
	for _, n := range nicks {
		require.NoError(h.t, h.engine.SetReady(h.ctx, conn(n)))
	}
}

func (h *harness) act(nick string, a ActionType, amount int64) {
	h.t.Helper()
	require.NoError(h.t, h.engine.Act(h.ctx, conn(nick), a, amount))
}

func (h *harness) seatOf(nick string) *Seat {
	h.t.Helper()
	for _, s := range h.engine.Table().Seats {
		if s.Nick == nick {
			return s
		}
	}
	h.t.Fatalf("no seat for %s", nick)
	return nil
}

func (h *harness) active() string {
	t := h.engine.Table()
	if t.ActiveIndex < 0 {
		return ""
	}
	return t.Seats[t.ActiveIndex].Nick
}

func (h *harness) advance(d time.Duration) {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	h.clock.Advance(d).MustWait(ctx)
}

func mustCards(t *testing.T, ss ...string) []Card {
	t.Helper()
	out := make([]Card, 0, len(ss))
	for _, s := range ss {
		c, err := ParseCard(s)
		require.NoError(t, err)
		out = append(out, c)
	}
	return out
}
